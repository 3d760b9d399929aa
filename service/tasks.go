package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"tasktrack-api/domain"
)

// TaskList is one page of a task listing.
type TaskList struct {
	Tasks []domain.Task
	Page  int
	Pages int
	Total int64
}

// CreateTask validates the draft and inserts a task owned by the actor. Any
// authenticated actor may create; no policy check applies.
func (s *Service) CreateTask(ctx context.Context, actor domain.User, draft domain.TaskDraft) (domain.Task, error) {
	if err := draft.Validate(); err != nil {
		return domain.Task{}, err
	}
	if draft.Status == "" {
		draft.Status = domain.StatusPending
	}
	if draft.Priority == "" {
		draft.Priority = domain.PriorityMedium
	}

	task := domain.Task{
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		Status:      draft.Status,
		Priority:    draft.Priority,
		DueDate:     draft.DueDate,
		CreatedBy:   actor.Summary(),
	}
	if draft.AssignedTo != "" {
		assignee, err := s.store.UserByID(ctx, draft.AssignedTo)
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Task{}, domain.ValidationError("assignee does not exist")
		}
		if err != nil {
			return domain.Task{}, err
		}
		summary := assignee.Summary()
		task.AssignedTo = &summary
	}
	return s.store.InsertTask(ctx, task)
}

// ListTasks returns one page of tasks visible to the actor. Non-admin
// actors only see tasks they created or are assigned to, on top of any
// explicit filters.
func (s *Service) ListTasks(ctx context.Context, actor domain.User, f domain.TaskFilter, page, pageSize int) (TaskList, error) {
	if err := f.Validate(); err != nil {
		return TaskList{}, err
	}
	if actor.Role == domain.RoleAdmin {
		f.Viewer = ""
	} else {
		f.Viewer = actor.ID
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.pageSize
	}

	tasks, total, err := s.store.ListTasks(ctx, f, page, pageSize)
	if err != nil {
		return TaskList{}, err
	}
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return TaskList{Tasks: tasks, Page: page, Pages: pages, Total: total}, nil
}

// GetTask loads one task for the actor, applying the read policy.
func (s *Service) GetTask(ctx context.Context, actor domain.User, id string) (domain.Task, error) {
	task, err := s.store.TaskByID(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if !domain.CanRead(actor, task) {
		return domain.Task{}, domain.ErrForbidden
	}
	return task, nil
}

// UpdateTask applies a partial update under the write policy and returns
// the refreshed task.
func (s *Service) UpdateTask(ctx context.Context, actor domain.User, id string, p domain.TaskPatch) (domain.Task, error) {
	if err := p.Validate(); err != nil {
		return domain.Task{}, err
	}
	task, err := s.store.TaskByID(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if !domain.CanWrite(actor, task) {
		return domain.Task{}, domain.ErrForbidden
	}
	if p.AssignedTo != nil && *p.AssignedTo != "" {
		if _, err := s.store.UserByID(ctx, *p.AssignedTo); errors.Is(err, domain.ErrUserNotFound) {
			return domain.Task{}, domain.ValidationError("assignee does not exist")
		} else if err != nil {
			return domain.Task{}, err
		}
	}
	return s.store.UpdateTask(ctx, id, p)
}

// DeleteTask removes a task with its attachments. Every attachment blob is
// deleted first; the deletions run concurrently and are all attempted, but
// any failure aborts the call before the records are touched, so the task
// and its attachments survive a partial blob-store outage intact.
func (s *Service) DeleteTask(ctx context.Context, actor domain.User, id string) error {
	task, err := s.store.TaskByID(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanWrite(actor, task) {
		return domain.ErrForbidden
	}

	if len(task.Attachments) > 0 {
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			firstErr error
		)
		for _, att := range task.Attachments {
			wg.Add(1)
			go func(a domain.Attachment) {
				defer wg.Done()
				if err := s.blobs.Delete(ctx, a.StorageKey); err != nil {
					s.logger.WithFields(log.Fields{
						"task_id":       id,
						"attachment_id": a.ID,
						"key":           a.StorageKey,
					}).WithError(err).Warn("blob delete failed")
					mu.Lock()
					if firstErr == nil {
						firstErr = &domain.UploadError{Op: "delete", Key: a.StorageKey, Err: err}
					}
					mu.Unlock()
				}
			}(att)
		}
		wg.Wait()
		if firstErr != nil {
			return firstErr
		}
	}

	return s.store.DeleteTask(ctx, id)
}
