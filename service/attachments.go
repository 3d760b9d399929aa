package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"

	"tasktrack-api/domain"
)

const attachmentKeyPrefix = "attachments/"

// Upload describes an incoming attachment file.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// attachmentKey builds a collision-resistant storage key under the fixed
// attachments/ directory, keeping the original file name for readability.
func attachmentKey(fileName string) string {
	return attachmentKeyPrefix + uuid.NewString() + "-" + filepath.Base(fileName)
}

// UploadAttachment stores the file in the blob store and records it on the
// task. Anyone who may read the task may attach to it. The size limit is
// enforced before any blob-store call.
func (s *Service) UploadAttachment(ctx context.Context, actor domain.User, taskID string, up Upload) (domain.Attachment, error) {
	task, err := s.store.TaskByID(ctx, taskID)
	if err != nil {
		return domain.Attachment{}, err
	}
	if !domain.CanAddAttachment(actor, task) {
		return domain.Attachment{}, domain.ErrForbidden
	}
	if up.Body == nil || up.FileName == "" {
		return domain.Attachment{}, domain.ValidationError("no file uploaded")
	}
	if up.Size > s.maxUploadBytes {
		return domain.Attachment{}, domain.ValidationError(
			fmt.Sprintf("file exceeds the %d byte upload limit", s.maxUploadBytes))
	}

	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := attachmentKey(up.FileName)

	putCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()
	url, err := s.blobs.Put(putCtx, key, up.Body, contentType)
	if err != nil {
		return domain.Attachment{}, &domain.UploadError{Op: "put", Key: key, Err: err}
	}

	return s.store.AddAttachment(ctx, taskID, domain.Attachment{
		TaskID:     taskID,
		FileName:   filepath.Base(up.FileName),
		FileURL:    url,
		FileType:   contentType,
		StorageKey: key,
	})
}

// DeleteAttachment removes one attachment: blob first, record second, so a
// blob-store failure leaves the record (and a retry possible). Removal is
// restricted to whoever may write the task.
func (s *Service) DeleteAttachment(ctx context.Context, actor domain.User, taskID, attachmentID string) error {
	task, err := s.store.TaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if !domain.CanRemoveAttachment(actor, task) {
		return domain.ErrForbidden
	}
	att, err := s.store.AttachmentByID(ctx, taskID, attachmentID)
	if err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, att.StorageKey); err != nil {
		return &domain.UploadError{Op: "delete", Key: att.StorageKey, Err: err}
	}
	return s.store.RemoveAttachment(ctx, taskID, attachmentID)
}
