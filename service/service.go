// Package service orchestrates the task store, the blob store and the
// authorization policy. All failures crossing this boundary are one of the
// domain error kinds; no driver error leaks to callers.
package service

import (
	"context"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"tasktrack-api/domain"
)

// Store abstracts persistence for the service.
type Store interface {
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	UserByEmail(ctx context.Context, email string) (domain.User, error)
	UserByID(ctx context.Context, id string) (domain.User, error)

	InsertTask(ctx context.Context, t domain.Task) (domain.Task, error)
	TaskByID(ctx context.Context, id string) (domain.Task, error)
	ListTasks(ctx context.Context, f domain.TaskFilter, page, pageSize int) ([]domain.Task, int64, error)
	UpdateTask(ctx context.Context, id string, p domain.TaskPatch) (domain.Task, error)
	DeleteTask(ctx context.Context, id string) error

	AddAttachment(ctx context.Context, taskID string, a domain.Attachment) (domain.Attachment, error)
	AttachmentByID(ctx context.Context, taskID, attachmentID string) (domain.Attachment, error)
	RemoveAttachment(ctx context.Context, taskID, attachmentID string) error
}

// BlobStore is the opaque put/delete blob service holding attachment bytes.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

const (
	defaultMaxUploadBytes = 10 << 20
	defaultPageSize       = 10
	defaultUploadTimeout  = 30 * time.Second
)

// Config tunes service limits. Zero values fall back to defaults.
type Config struct {
	MaxUploadBytes int64
	PageSize       int
	UploadTimeout  time.Duration
}

// Service exposes the task, attachment and user operations.
type Service struct {
	store          Store
	blobs          BlobStore
	logger         *log.Logger
	maxUploadBytes int64
	pageSize       int
	uploadTimeout  time.Duration
}

// New creates a Service over the given store and blob store.
func New(store Store, blobs BlobStore, logger *log.Logger, cfg Config) *Service {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = defaultUploadTimeout
	}
	return &Service{
		store:          store,
		blobs:          blobs,
		logger:         logger,
		maxUploadBytes: cfg.MaxUploadBytes,
		pageSize:       cfg.PageSize,
		uploadTimeout:  cfg.UploadTimeout,
	}
}
