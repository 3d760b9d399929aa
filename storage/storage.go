// Package storage persists users, tasks and attachments in a relational
// database through GORM. Record structs are private to this package; every
// operation accepts and returns domain types.
package storage

import (
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tasktrack-api/domain"
)

// Storage provides access to the underlying database.
type Storage struct {
	db *gorm.DB
}

// New opens a Postgres-backed Storage from the given DSN and runs schema
// migration.
func New(dsn string) (*Storage, error) {
	db, err := gorm.Open(postgres.Open(dsn), Config())
	if err != nil {
		return nil, err
	}
	return NewWithDB(db)
}

// Config is the GORM configuration used for every handle, exported so tests
// can open a sqlite-backed handle with identical behavior.
func Config() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// NewWithDB wraps an already-open GORM handle and runs schema migration.
func NewWithDB(db *gorm.DB) (*Storage, error) {
	if err := db.AutoMigrate(&userRecord{}, &taskRecord{}, &attachmentRecord{}); err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

type userRecord struct {
	ID           string `gorm:"primaryKey;size:36"`
	Name         string `gorm:"size:128;not null"`
	Email        string `gorm:"size:191;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:191;not null"`
	Role         string `gorm:"size:16;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRecord) TableName() string { return "users" }

type taskRecord struct {
	ID           string `gorm:"primaryKey;size:36"`
	Title        string `gorm:"size:255;not null"`
	Description  string `gorm:"type:text"`
	Status       string `gorm:"size:16;not null"`
	Priority     string `gorm:"size:16;not null"`
	DueDate      *time.Time
	CreatedByID  string  `gorm:"size:36;not null;index"`
	AssignedToID *string `gorm:"size:36;index"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time

	CreatedBy   userRecord         `gorm:"foreignKey:CreatedByID"`
	AssignedTo  *userRecord        `gorm:"foreignKey:AssignedToID"`
	Attachments []attachmentRecord `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

func (taskRecord) TableName() string { return "tasks" }

type attachmentRecord struct {
	ID         string `gorm:"primaryKey;size:36"`
	TaskID     string `gorm:"size:36;not null;index"`
	FileName   string `gorm:"size:255;not null"`
	FileURL    string `gorm:"size:512;not null"`
	FileType   string `gorm:"size:128;not null"`
	StorageKey string `gorm:"size:512;uniqueIndex;not null"`
	CreatedAt  time.Time
}

func (attachmentRecord) TableName() string { return "attachments" }

func (r userRecord) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         domain.Role(r.Role),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (r userRecord) toSummary() domain.UserSummary {
	return domain.UserSummary{ID: r.ID, Name: r.Name, Email: r.Email}
}

func (r taskRecord) toDomain() domain.Task {
	t := domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.Status(r.Status),
		Priority:    domain.Priority(r.Priority),
		DueDate:     r.DueDate,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	// Associations may not be loaded; fall back to the bare foreign key so
	// identity checks still work.
	if r.CreatedBy.ID != "" {
		t.CreatedBy = r.CreatedBy.toSummary()
	} else {
		t.CreatedBy = domain.UserSummary{ID: r.CreatedByID}
	}
	if r.AssignedTo != nil && r.AssignedTo.ID != "" {
		s := r.AssignedTo.toSummary()
		t.AssignedTo = &s
	} else if r.AssignedToID != nil && *r.AssignedToID != "" {
		t.AssignedTo = &domain.UserSummary{ID: *r.AssignedToID}
	}
	for _, a := range r.Attachments {
		t.Attachments = append(t.Attachments, a.toDomain())
	}
	return t
}

func (r attachmentRecord) toDomain() domain.Attachment {
	return domain.Attachment{
		ID:         r.ID,
		TaskID:     r.TaskID,
		FileName:   r.FileName,
		FileURL:    r.FileURL,
		FileType:   r.FileType,
		StorageKey: r.StorageKey,
		CreatedAt:  r.CreatedAt,
	}
}
