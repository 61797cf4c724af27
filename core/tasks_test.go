package core

import (
	"errors"
	"testing"
	"time"

	"taskboard/models"
)

func TestCreateTaskRequiresGroupAffiliation(t *testing.T) {
	_, ledger, _, db := newTestCore(t)
	loner := createTestUser(t, db, "loner")

	_, err := ledger.CreateTask(loner.ID, TaskInput{Title: "Write spec"})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	var count int64
	if err := db.Model(&models.Task{}).Count(&count).Error; err != nil {
		t.Fatalf("count error: %v", err)
	}
	if count != 0 {
		t.Fatalf("no task should be persisted, found %d", count)
	}
}

func TestCreateTaskDefaultsAndRoundTrip(t *testing.T) {
	registry, ledger, _, db := newTestCore(t)
	a := createTestUser(t, db, "alice")

	group, err := registry.CreateGroup("Alpha", []uint{a.ID})
	if err != nil {
		t.Fatalf("CreateGroup error: %v", err)
	}

	due := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	created, err := ledger.CreateTask(a.ID, TaskInput{
		Title:       "Write spec",
		Description: "First draft",
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}
	if created.Status != models.TaskStatusToDo {
		t.Fatalf("expected default status %q, got %q", models.TaskStatusToDo, created.Status)
	}
	if created.GroupID != group.ID {
		t.Fatalf("expected group %d, got %d", group.ID, created.GroupID)
	}
	if created.CreatedBy != a.ID {
		t.Fatalf("expected creator %d, got %d", a.ID, created.CreatedBy)
	}
	if created.AssignedTo != nil {
		t.Fatalf("assignee should default to nil, got %v", *created.AssignedTo)
	}

	got, err := ledger.GetTask(created.ID)
	if err != nil {
		t.Fatalf("GetTask error: %v", err)
	}
	if got.Title != created.Title || got.Description != created.Description ||
		got.Status != created.Status || got.GroupID != created.GroupID ||
		got.CreatedBy != created.CreatedBy {
		t.Fatalf("round-trip mismatch: %+v vs %+v", got, created)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("due date mismatch: %v", got.DueDate)
	}
	if got.Creator == nil || got.Creator.Username != "alice" {
		t.Fatalf("creator not resolved: %+v", got.Creator)
	}
}

func TestCreateTaskStatusValidation(t *testing.T) {
	registry, ledger, _, db := newTestCore(t)
	a := createTestUser(t, db, "alice")
	if _, err := registry.CreateGroup("Alpha", []uint{a.ID}); err != nil {
		t.Fatalf("CreateGroup error: %v", err)
	}

	if _, err := ledger.CreateTask(a.ID, TaskInput{Title: "T", Status: "Bogus"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := ledger.CreateTask(a.ID, TaskInput{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing title, got %v", err)
	}

	task, err := ledger.CreateTask(a.ID, TaskInput{Title: "T", Status: models.TaskStatusInReview})
	if err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}
	if task.Status != models.TaskStatusInReview {
		t.Fatalf("explicit status not kept: %q", task.Status)
	}
}

// The assignee does not have to be a member of the owning group; it only
// has to be a known user.
func TestCreateTaskAssignee(t *testing.T) {
	registry, ledger, _, db := newTestCore(t)
	a := createTestUser(t, db, "alice")
	outsider := createTestUser(t, db, "outsider")
	if _, err := registry.CreateGroup("Alpha", []uint{a.ID}); err != nil {
		t.Fatalf("CreateGroup error: %v", err)
	}

	task, err := ledger.CreateTask(a.ID, TaskInput{Title: "T", AssignedTo: &outsider.ID})
	if err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}
	if task.Assignee == nil || task.Assignee.Username != "outsider" {
		t.Fatalf("assignee not resolved: %+v", task.Assignee)
	}

	unknown := uint(9999)
	if _, err := ledger.CreateTask(a.ID, TaskInput{Title: "T", AssignedTo: &unknown}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown assignee, got %v", err)
	}
}

func TestListTasksForGroupScenario(t *testing.T) {
	registry, ledger, _, db := newTestCore(t)
	a := createTestUser(t, db, "alice")
	b := createTestUser(t, db, "bob")

	group, err := registry.CreateGroup("Alpha", []uint{a.ID, b.ID})
	if err != nil {
		t.Fatalf("CreateGroup error: %v", err)
	}

	task, err := ledger.CreateTask(b.ID, TaskInput{Title: "Write spec"})
	if err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}
	if task.Status != models.TaskStatusToDo || task.GroupID != group.ID || task.CreatedBy != b.ID {
		t.Fatalf("unexpected task: %+v", task)
	}

	tasks, err := ledger.ListTasksForGroup(a.ID)
	if err != nil {
		t.Fatalf("ListTasksForGroup error: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected exactly 1 task, got %d", len(tasks))
	}
	if tasks[0].Title != "Write spec" {
		t.Fatalf("unexpected title %q", tasks[0].Title)
	}
	if tasks[0].Creator == nil || tasks[0].Creator.Username != "bob" {
		t.Fatalf("creator not resolved to bob: %+v", tasks[0].Creator)
	}
}

func TestListTasksForGroupRequiresAffiliation(t *testing.T) {
	_, ledger, _, db := newTestCore(t)
	loner := createTestUser(t, db, "loner")

	if _, err := ledger.ListTasksForGroup(loner.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := ledger.ListTasksForGroup(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestUpdateTask(t *testing.T) {
	registry, ledger, _, db := newTestCore(t)
	a := createTestUser(t, db, "alice")
	b := createTestUser(t, db, "bob")
	if _, err := registry.CreateGroup("Alpha", []uint{a.ID}); err != nil {
		t.Fatalf("CreateGroup error: %v", err)
	}

	task, err := ledger.CreateTask(a.ID, TaskInput{Title: "T"})
	if err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}

	status := models.TaskStatusInProgress
	title := "T2"
	updated, err := ledger.UpdateTask(task.ID, TaskUpdate{
		Title:      &title,
		Status:     &status,
		AssignedTo: &b.ID,
	})
	if err != nil {
		t.Fatalf("UpdateTask error: %v", err)
	}
	if updated.Title != "T2" || updated.Status != models.TaskStatusInProgress {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.Assignee == nil || updated.Assignee.ID != b.ID {
		t.Fatalf("assignee not applied: %+v", updated.Assignee)
	}

	// An invalid status fails and leaves the task untouched.
	bogus := "Bogus"
	if _, err := ledger.UpdateTask(task.ID, TaskUpdate{Status: &bogus}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	got, err := ledger.GetTask(task.ID)
	if err != nil {
		t.Fatalf("GetTask error: %v", err)
	}
	if got.Status != models.TaskStatusInProgress {
		t.Fatalf("status changed despite validation failure: %q", got.Status)
	}

	if _, err := ledger.UpdateTask(9999, TaskUpdate{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTask(t *testing.T) {
	registry, ledger, _, db := newTestCore(t)
	a := createTestUser(t, db, "alice")
	if _, err := registry.CreateGroup("Alpha", []uint{a.ID}); err != nil {
		t.Fatalf("CreateGroup error: %v", err)
	}

	task, err := ledger.CreateTask(a.ID, TaskInput{Title: "T"})
	if err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}

	if err := ledger.DeleteTask(task.ID); err != nil {
		t.Fatalf("DeleteTask error: %v", err)
	}
	if _, err := ledger.GetTask(task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := ledger.DeleteTask(task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestAddAttachmentAppendsInOrder(t *testing.T) {
	registry, ledger, _, db := newTestCore(t)
	a := createTestUser(t, db, "alice")
	if _, err := registry.CreateGroup("Alpha", []uint{a.ID}); err != nil {
		t.Fatalf("CreateGroup error: %v", err)
	}

	task, err := ledger.CreateTask(a.ID, TaskInput{Title: "T"})
	if err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}

	if _, err := ledger.AddAttachment(task.ID, "/uploads/1-spec.pdf"); err != nil {
		t.Fatalf("AddAttachment error: %v", err)
	}
	updated, err := ledger.AddAttachment(task.ID, "/uploads/2-notes.txt")
	if err != nil {
		t.Fatalf("AddAttachment error: %v", err)
	}
	want := []string{"/uploads/1-spec.pdf", "/uploads/2-notes.txt"}
	if len(updated.Attachments) != len(want) {
		t.Fatalf("expected %d attachments, got %d", len(want), len(updated.Attachments))
	}
	for i := range want {
		if updated.Attachments[i] != want[i] {
			t.Fatalf("attachment[%d] = %q, want %q", i, updated.Attachments[i], want[i])
		}
	}

	if _, err := ledger.AddAttachment(9999, "/uploads/x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// Dissolving a group never deletes its tasks; the sweep surfaces them.
func TestOrphanedTasksSurviveGroupDissolution(t *testing.T) {
	registry, ledger, _, db := newTestCore(t)
	a := createTestUser(t, db, "alice")

	group, err := registry.CreateGroup("Alpha", []uint{a.ID})
	if err != nil {
		t.Fatalf("CreateGroup error: %v", err)
	}
	task, err := ledger.CreateTask(a.ID, TaskInput{Title: "Survivor"})
	if err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}

	dissolved, err := registry.LeaveGroup(a.ID)
	if err != nil {
		t.Fatalf("LeaveGroup error: %v", err)
	}
	if !dissolved {
		t.Fatal("group should dissolve")
	}

	got, err := ledger.GetTask(task.ID)
	if err != nil {
		t.Fatalf("task must survive dissolution: %v", err)
	}
	if got.GroupID != group.ID {
		t.Fatalf("task group reference changed: %d", got.GroupID)
	}

	orphans, err := ledger.FindOrphaned()
	if err != nil {
		t.Fatalf("FindOrphaned error: %v", err)
	}
	if len(orphans) != 1 || orphans[0].ID != task.ID {
		t.Fatalf("expected task %d orphaned, got %+v", task.ID, orphans)
	}
}
