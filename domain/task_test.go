package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
)

func strPtr(s string) *string          { return &s }
func statusPtr(s Status) *Status       { return &s }
func priorityPtr(p Priority) *Priority { return &p }

func TestApplyMergesOnlySuppliedFields(t *testing.T) {
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	task := Task{
		ID:          "t1",
		Title:       "Fix bug",
		Description: "stack trace attached",
		Status:      StatusPending,
		Priority:    PriorityHigh,
		DueDate:     &due,
		CreatedBy:   UserSummary{ID: "creator"},
		AssignedTo:  &UserSummary{ID: "assignee", Name: "A", Email: "a@example.com"},
	}

	task.Apply(TaskPatch{Status: statusPtr(StatusInProgress)})

	if task.Status != StatusInProgress {
		t.Fatalf("status = %q, want in-progress", task.Status)
	}
	if task.Title != "Fix bug" || task.Description != "stack trace attached" {
		t.Fatal("unrelated fields changed by partial patch")
	}
	if task.Priority != PriorityHigh || task.DueDate == nil || !task.DueDate.Equal(due) {
		t.Fatal("priority or due date changed by partial patch")
	}
	if task.AssignedTo == nil || task.AssignedTo.ID != "assignee" {
		t.Fatal("assignee changed by partial patch")
	}
	if task.CreatedBy.ID != "creator" {
		t.Fatal("creator must never change")
	}
}

func TestApplyExplicitEmptyClearsField(t *testing.T) {
	task := Task{
		Description: "old text",
		AssignedTo:  &UserSummary{ID: "assignee"},
	}

	task.Apply(TaskPatch{Description: strPtr(""), AssignedTo: strPtr("")})

	if task.Description != "" {
		t.Fatalf("description = %q, want cleared", task.Description)
	}
	if task.AssignedTo != nil {
		t.Fatalf("assignee = %+v, want unassigned", task.AssignedTo)
	}
}

func TestApplyReassign(t *testing.T) {
	task := Task{AssignedTo: nil}
	task.Apply(TaskPatch{AssignedTo: strPtr("u2")})
	if task.AssignedTo == nil || task.AssignedTo.ID != "u2" {
		t.Fatalf("assignee = %+v, want u2", task.AssignedTo)
	}
}

func TestDraftValidate(t *testing.T) {
	cases := []struct {
		name  string
		draft TaskDraft
		ok    bool
	}{
		{"minimal", TaskDraft{Title: "t"}, true},
		{"full", TaskDraft{Title: "t", Status: StatusCompleted, Priority: PriorityLow}, true},
		{"empty title", TaskDraft{Title: "   "}, false},
		{"bad status", TaskDraft{Title: "t", Status: "done"}, false},
		{"bad priority", TaskDraft{Title: "t", Priority: "urgent"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.draft.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok {
				var verr ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
			}
		})
	}
}

func TestPatchValidateRejectsUnknownEnums(t *testing.T) {
	if err := (TaskPatch{Status: statusPtr("archived")}).Validate(); err == nil {
		t.Fatal("expected unknown status to be rejected")
	}
	if err := (TaskPatch{Priority: priorityPtr("urgent")}).Validate(); err == nil {
		t.Fatal("expected unknown priority to be rejected")
	}
	if err := (TaskPatch{Title: strPtr("")}).Validate(); err == nil {
		t.Fatal("expected empty title to be rejected")
	}
}

func TestPatchDecodeDistinguishesAbsentFromEmpty(t *testing.T) {
	var p TaskPatch
	if err := sonic.Unmarshal([]byte(`{"description":""}`), &p); err != nil {
		t.Fatalf("unmarshal patch: %v", err)
	}
	if p.Description == nil || *p.Description != "" {
		t.Fatalf("explicit empty description lost: %+v", p.Description)
	}
	if p.Title != nil || p.Status != nil {
		t.Fatal("absent fields must stay nil")
	}
}

func TestTaskMarshalHidesStorageKey(t *testing.T) {
	task := Task{
		ID:    "t1",
		Title: "Title",
		Attachments: []Attachment{{
			ID:         "a1",
			FileName:   "report.pdf",
			FileURL:    "https://bucket.s3.eu-west-1.amazonaws.com/attachments/x-report.pdf",
			StorageKey: "attachments/x-report.pdf",
		}},
	}

	payload, err := sonic.Marshal(task)
	if err != nil {
		t.Fatalf("marshal task: %v", err)
	}
	if strings.Contains(string(payload), "StorageKey") || strings.Contains(string(payload), "storageKey") {
		t.Fatalf("storage key leaked into payload: %s", payload)
	}
}
