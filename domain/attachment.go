package domain

import "time"

// Attachment is a file stored in the blob store and linked to exactly one
// task. StorageKey addresses the blob for deletion and never serializes.
type Attachment struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"taskId"`
	FileName   string    `json:"fileName"`
	FileURL    string    `json:"fileUrl"`
	FileType   string    `json:"fileType"`
	StorageKey string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}
