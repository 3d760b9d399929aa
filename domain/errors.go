package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrForbidden          = errors.New("forbidden")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a missing or malformed request field.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// UploadError wraps a blob store failure so callers can tell a storage
// outage apart from a client mistake.
type UploadError struct {
	Op  string // "put" or "delete"
	Key string
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("blob %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
