package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tasktrack-api/domain"
)

func withTaskAssociations(q *gorm.DB) *gorm.DB {
	return q.Preload("CreatedBy").Preload("AssignedTo").Preload("Attachments")
}

func applyTaskFilter(q *gorm.DB, f domain.TaskFilter) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", string(f.Priority))
	}
	if f.AssignedTo != "" {
		q = q.Where("assigned_to_id = ?", f.AssignedTo)
	}
	if f.Viewer != "" {
		q = q.Where("created_by_id = ? OR assigned_to_id = ?", f.Viewer, f.Viewer)
	}
	return q
}

// InsertTask persists a new task and returns it with related users loaded.
// A zero CreatedAt is filled by the database; a caller-provided one is kept.
func (s *Storage) InsertTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	rec := taskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CreatedByID: t.CreatedBy.ID,
		CreatedAt:   t.CreatedAt,
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if t.AssignedTo != nil && t.AssignedTo.ID != "" {
		id := t.AssignedTo.ID
		rec.AssignedToID = &id
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.Task{}, err
	}
	return s.TaskByID(ctx, rec.ID)
}

// TaskByID loads one task with creator, assignee and attachments.
func (s *Storage) TaskByID(ctx context.Context, id string) (domain.Task, error) {
	var rec taskRecord
	err := withTaskAssociations(s.db.WithContext(ctx)).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	if err != nil {
		return domain.Task{}, err
	}
	return rec.toDomain(), nil
}

// ListTasks returns one page of tasks matching the filter, newest first,
// along with the total match count. Pages are 1-indexed.
func (s *Storage) ListTasks(ctx context.Context, f domain.TaskFilter, page, pageSize int) ([]domain.Task, int64, error) {
	if page < 1 {
		page = 1
	}

	var total int64
	count := applyTaskFilter(s.db.WithContext(ctx).Model(&taskRecord{}), f)
	if err := count.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := applyTaskFilter(s.db.WithContext(ctx), f)
	q = withTaskAssociations(q).
		Order("created_at DESC, id").
		Offset((page - 1) * pageSize).
		Limit(pageSize)

	var recs []taskRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, 0, err
	}

	tasks := make([]domain.Task, 0, len(recs))
	for _, rec := range recs {
		tasks = append(tasks, rec.toDomain())
	}
	return tasks, total, nil
}

// UpdateTask applies a shallow-merge patch to the stored task and returns
// the refreshed task. The creator reference is never touched.
func (s *Storage) UpdateTask(ctx context.Context, id string, p domain.TaskPatch) (domain.Task, error) {
	var rec taskRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	if err != nil {
		return domain.Task{}, err
	}

	t := rec.toDomain()
	t.Apply(p)

	var assignedID *string
	if t.AssignedTo != nil {
		id := t.AssignedTo.ID
		assignedID = &id
	}
	updates := map[string]any{
		"title":          t.Title,
		"description":    t.Description,
		"status":         string(t.Status),
		"priority":       string(t.Priority),
		"due_date":       t.DueDate,
		"assigned_to_id": assignedID,
	}
	if err := s.db.WithContext(ctx).Model(&taskRecord{ID: id}).Updates(updates).Error; err != nil {
		return domain.Task{}, err
	}
	return s.TaskByID(ctx, id)
}

// DeleteTask removes the task and its attachment records in one
// transaction. Blob cleanup is the caller's responsibility and must happen
// before this call.
func (s *Storage) DeleteTask(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&attachmentRecord{}, "task_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&taskRecord{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrTaskNotFound
		}
		return nil
	})
}

// AddAttachment links an uploaded file to a task.
func (s *Storage) AddAttachment(ctx context.Context, taskID string, a domain.Attachment) (domain.Attachment, error) {
	rec := attachmentRecord{
		ID:         a.ID,
		TaskID:     taskID,
		FileName:   a.FileName,
		FileURL:    a.FileURL,
		FileType:   a.FileType,
		StorageKey: a.StorageKey,
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.Attachment{}, err
	}
	return rec.toDomain(), nil
}

// AttachmentByID loads an attachment scoped to the given task. An
// attachment belonging to a different task is reported as not found.
func (s *Storage) AttachmentByID(ctx context.Context, taskID, attachmentID string) (domain.Attachment, error) {
	var rec attachmentRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ? AND task_id = ?", attachmentID, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Attachment{}, domain.ErrAttachmentNotFound
	}
	if err != nil {
		return domain.Attachment{}, err
	}
	return rec.toDomain(), nil
}

// RemoveAttachment deletes one attachment record scoped to the given task.
func (s *Storage) RemoveAttachment(ctx context.Context, taskID, attachmentID string) error {
	res := s.db.WithContext(ctx).Delete(&attachmentRecord{}, "id = ? AND task_id = ?", attachmentID, taskID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAttachmentNotFound
	}
	return nil
}
