package storage

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tasktrack-api/domain"
)

func newTestStore(t *testing.T) *Storage {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), Config())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// In-memory sqlite gives every connection its own database.
	sqlDB.SetMaxOpenConns(1)
	st, err := NewWithDB(db)
	require.NoError(t, err)
	return st
}

func seedUser(t *testing.T, st *Storage, name string, role domain.Role) domain.User {
	t.Helper()
	u, err := st.CreateUser(context.Background(), domain.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
		Role:         role,
	})
	require.NoError(t, err)
	return u
}

func seedTask(t *testing.T, st *Storage, creator domain.User, assignee *domain.User, status domain.Status, priority domain.Priority, createdAt time.Time) domain.Task {
	t.Helper()
	task := domain.Task{
		Title:     "task of " + creator.Name,
		Status:    status,
		Priority:  priority,
		CreatedBy: creator.Summary(),
		CreatedAt: createdAt,
	}
	if assignee != nil {
		s := assignee.Summary()
		task.AssignedTo = &s
	}
	got, err := st.InsertTask(context.Background(), task)
	require.NoError(t, err)
	return got
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	st := newTestStore(t)
	seedUser(t, st, "alice", domain.RoleMember)

	_, err := st.CreateUser(context.Background(), domain.User{
		Name:         "alice2",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Role:         domain.RoleMember,
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUserLookups(t *testing.T) {
	st := newTestStore(t)
	u := seedUser(t, st, "bob", domain.RoleAdmin)

	byEmail, err := st.UserByEmail(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, domain.RoleAdmin, byEmail.Role)

	byID, err := st.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", byID.Name)

	_, err = st.UserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = st.UserByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestInsertTaskLoadsRelatedUsers(t *testing.T) {
	st := newTestStore(t)
	creator := seedUser(t, st, "carol", domain.RoleMember)
	assignee := seedUser(t, st, "dave", domain.RoleMember)

	task := seedTask(t, st, creator, &assignee, domain.StatusPending, domain.PriorityMedium, time.Time{})

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, creator.ID, task.CreatedBy.ID)
	assert.Equal(t, "carol", task.CreatedBy.Name)
	assert.Equal(t, "carol@example.com", task.CreatedBy.Email)
	require.NotNil(t, task.AssignedTo)
	assert.Equal(t, "dave", task.AssignedTo.Name)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestTaskByIDNotFound(t *testing.T) {
	st := newTestStore(t)
	_, err := st.TaskByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestListTasksFiltersAndViewerScoping(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alice := seedUser(t, st, "alice", domain.RoleMember)
	bob := seedUser(t, st, "bob", domain.RoleMember)
	carol := seedUser(t, st, "carol", domain.RoleMember)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	t1 := seedTask(t, st, alice, nil, domain.StatusPending, domain.PriorityHigh, base)
	t2 := seedTask(t, st, bob, &alice, domain.StatusInProgress, domain.PriorityHigh, base.Add(time.Hour))
	t3 := seedTask(t, st, bob, &carol, domain.StatusPending, domain.PriorityLow, base.Add(2*time.Hour))

	// Unfiltered, unscoped: newest first.
	all, total, err := st.ListTasks(ctx, domain.TaskFilter{}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, t3.ID, all[0].ID)
	assert.Equal(t, t1.ID, all[2].ID)

	// Conjunction of explicit filters.
	got, total, err := st.ListTasks(ctx, domain.TaskFilter{Status: domain.StatusPending, Priority: domain.PriorityHigh}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, t1.ID, got[0].ID)

	// Exact assignee match.
	got, total, err = st.ListTasks(ctx, domain.TaskFilter{AssignedTo: alice.ID}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, t2.ID, got[0].ID)

	// Viewer scoping: creator or assignee.
	got, total, err = st.ListTasks(ctx, domain.TaskFilter{Viewer: alice.ID}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	ids := []string{got[0].ID, got[1].ID}
	assert.ElementsMatch(t, []string{t1.ID, t2.ID}, ids)

	// Viewer scoping combined with an explicit filter stays a conjunction.
	_, total, err = st.ListTasks(ctx, domain.TaskFilter{Viewer: alice.ID, Status: domain.StatusInProgress}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestListTasksPaginationLaw(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, st, "eve", domain.RoleMember)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		seedTask(t, st, u, nil, domain.StatusPending, domain.PriorityMedium, base.Add(time.Duration(i)*time.Minute))
	}

	const pageSize = 3
	seen := map[string]bool{}
	collected := 0
	for page := 1; ; page++ {
		tasks, total, err := st.ListTasks(ctx, domain.TaskFilter{}, page, pageSize)
		require.NoError(t, err)
		assert.EqualValues(t, 7, total)
		if len(tasks) == 0 {
			break
		}
		for _, task := range tasks {
			assert.False(t, seen[task.ID], "task %s returned twice", task.ID)
			seen[task.ID] = true
		}
		collected += len(tasks)
	}
	assert.Equal(t, 7, collected)
}

func TestUpdateTaskShallowMerge(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	creator := seedUser(t, st, "frank", domain.RoleMember)
	assignee := seedUser(t, st, "grace", domain.RoleMember)

	task := seedTask(t, st, creator, &assignee, domain.StatusPending, domain.PriorityMedium, time.Time{})
	desc := "details"
	_, err := st.UpdateTask(ctx, task.ID, domain.TaskPatch{Description: &desc})
	require.NoError(t, err)

	status := domain.StatusCompleted
	updated, err := st.UpdateTask(ctx, task.ID, domain.TaskPatch{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, updated.Status)
	assert.Equal(t, "details", updated.Description, "omitted field must keep prior value")
	assert.Equal(t, creator.ID, updated.CreatedBy.ID, "creator is immutable")
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, assignee.ID, updated.AssignedTo.ID)

	// Explicit empty values clear.
	empty := ""
	updated, err = st.UpdateTask(ctx, task.ID, domain.TaskPatch{Description: &empty, AssignedTo: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.Description)
	assert.Nil(t, updated.AssignedTo)

	_, err = st.UpdateTask(ctx, "missing", domain.TaskPatch{Description: &desc})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestDeleteTaskCascadesAttachments(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, st, "henry", domain.RoleMember)
	task := seedTask(t, st, u, nil, domain.StatusPending, domain.PriorityMedium, time.Time{})

	att, err := st.AddAttachment(ctx, task.ID, domain.Attachment{
		FileName:   "a.txt",
		FileURL:    "https://bucket.s3.amazonaws.com/attachments/k1-a.txt",
		FileType:   "text/plain",
		StorageKey: "attachments/k1-a.txt",
	})
	require.NoError(t, err)

	require.NoError(t, st.DeleteTask(ctx, task.ID))

	_, err = st.TaskByID(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	_, err = st.AttachmentByID(ctx, task.ID, att.ID)
	assert.ErrorIs(t, err, domain.ErrAttachmentNotFound)

	assert.ErrorIs(t, st.DeleteTask(ctx, task.ID), domain.ErrTaskNotFound)
}

func TestAttachmentScopedToTask(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, st, "iris", domain.RoleMember)
	task1 := seedTask(t, st, u, nil, domain.StatusPending, domain.PriorityMedium, time.Time{})
	task2 := seedTask(t, st, u, nil, domain.StatusPending, domain.PriorityMedium, time.Time{})

	att, err := st.AddAttachment(ctx, task1.ID, domain.Attachment{
		FileName:   "doc.pdf",
		FileURL:    "https://bucket.s3.amazonaws.com/attachments/k2-doc.pdf",
		FileType:   "application/pdf",
		StorageKey: "attachments/k2-doc.pdf",
	})
	require.NoError(t, err)

	// Lookup through the wrong task behaves as not found.
	_, err = st.AttachmentByID(ctx, task2.ID, att.ID)
	assert.ErrorIs(t, err, domain.ErrAttachmentNotFound)
	assert.ErrorIs(t, st.RemoveAttachment(ctx, task2.ID, att.ID), domain.ErrAttachmentNotFound)

	require.NoError(t, st.RemoveAttachment(ctx, task1.ID, att.ID))
	assert.ErrorIs(t, st.RemoveAttachment(ctx, task1.ID, att.ID), domain.ErrAttachmentNotFound)
}

func TestStorageKeyUnique(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, st, "jack", domain.RoleMember)
	task := seedTask(t, st, u, nil, domain.StatusPending, domain.PriorityMedium, time.Time{})

	att := domain.Attachment{
		FileName:   "x.bin",
		FileURL:    "https://bucket.s3.amazonaws.com/attachments/k3-x.bin",
		FileType:   "application/octet-stream",
		StorageKey: "attachments/k3-x.bin",
	}
	_, err := st.AddAttachment(ctx, task.ID, att)
	require.NoError(t, err)
	_, err = st.AddAttachment(ctx, task.ID, att)
	assert.Error(t, err, "two attachments must never share a storage key")
}
