package api

import (
	"context"

	"tasktrack-api/domain"
	"tasktrack-api/service"
)

// Service abstracts the task service for handlers.
type Service interface {
	Register(ctx context.Context, name, email, password string) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
	ActorByID(ctx context.Context, id string) (domain.User, error)

	CreateTask(ctx context.Context, actor domain.User, draft domain.TaskDraft) (domain.Task, error)
	ListTasks(ctx context.Context, actor domain.User, f domain.TaskFilter, page, pageSize int) (service.TaskList, error)
	GetTask(ctx context.Context, actor domain.User, id string) (domain.Task, error)
	UpdateTask(ctx context.Context, actor domain.User, id string, p domain.TaskPatch) (domain.Task, error)
	DeleteTask(ctx context.Context, actor domain.User, id string) error

	UploadAttachment(ctx context.Context, actor domain.User, taskID string, up service.Upload) (domain.Attachment, error)
	DeleteAttachment(ctx context.Context, actor domain.User, taskID, attachmentID string) error
}

// Authenticator is implemented by types able to issue tokens and extract
// user IDs from Authorization headers.
type Authenticator interface {
	IssueToken(u domain.User) (string, error)
	UserIDFromAuthHeader(string) (string, error)
}

// Throttle limits repeated attempts against one key (for login it is the
// email plus the caller address). A nil Throttle disables limiting.
type Throttle interface {
	// Allow records an attempt and reports whether the key is still under
	// its limit.
	Allow(ctx context.Context, key string) (bool, error)
	// Reset clears the attempt counter, used after a successful login.
	Reset(ctx context.Context, key string) error
}
