package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status is the task workflow state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority orders tasks by urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the enumerated priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a single tracked work item. CreatedBy is set once at creation and
// never changes; AssignedTo may be set, reassigned or cleared.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      Status       `json:"status"`
	Priority    Priority     `json:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	CreatedBy   UserSummary  `json:"createdBy"`
	AssignedTo  *UserSummary `json:"assignedTo,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TaskDraft carries the caller-supplied fields for task creation. Zero-value
// Status and Priority fall back to their defaults; anything else must be a
// known enum value.
type TaskDraft struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	AssignedTo  string     `json:"assignedTo"`
}

// Validate rejects drafts with an empty title or unrecognized enum values.
func (d TaskDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ValidationError("title is required")
	}
	if d.Status != "" && !d.Status.Valid() {
		return ValidationError(fmt.Sprintf("unknown status %q", d.Status))
	}
	if d.Priority != "" && !d.Priority.Valid() {
		return ValidationError(fmt.Sprintf("unknown priority %q", d.Priority))
	}
	return nil
}

// TaskPatch is a partial update. Nil fields keep the current value; a
// non-nil field overwrites it, so an explicit empty Description clears the
// text and an explicit empty AssignedTo unassigns the task. There is no
// field for the creator, which keeps CreatedBy immutable by construction.
type TaskPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *Status    `json:"status"`
	Priority    *Priority  `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	AssignedTo  *string    `json:"assignedTo"`
}

// Validate rejects patches that would blank the title or set an
// unrecognized enum value.
func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ValidationError("title cannot be empty")
	}
	if p.Status != nil && !p.Status.Valid() {
		return ValidationError(fmt.Sprintf("unknown status %q", *p.Status))
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return ValidationError(fmt.Sprintf("unknown priority %q", *p.Priority))
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.DueDate == nil && p.AssignedTo == nil
}

// Apply merges the patch into the task with shallow-merge semantics: only
// supplied fields overwrite. The assignee is carried as a bare ID; callers
// that need the full summary reload the task afterwards.
func (t *Task) Apply(p TaskPatch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	if p.AssignedTo != nil {
		if *p.AssignedTo == "" {
			t.AssignedTo = nil
		} else {
			t.AssignedTo = &UserSummary{ID: *p.AssignedTo}
		}
	}
}

// TaskFilter narrows a task listing. Zero values mean "no constraint".
// Viewer, when set, restricts results to tasks the given user created or is
// assigned to; callers set it for non-admin actors on top of the explicit
// filters.
type TaskFilter struct {
	Status     Status
	Priority   Priority
	AssignedTo string
	Viewer     string
}

// Validate rejects unrecognized enum values in the filter.
func (f TaskFilter) Validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return ValidationError(fmt.Sprintf("unknown status %q", f.Status))
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return ValidationError(fmt.Sprintf("unknown priority %q", f.Priority))
	}
	return nil
}
