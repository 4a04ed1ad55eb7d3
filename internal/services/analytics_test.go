package services

import (
	"testing"
	"time"

	"github.com/tasktrace/tasktrace/internal/models"
	"github.com/tasktrace/tasktrace/pkg/response"
)

func TestProjectStats(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")
	project := createTestProject(t, db, alice, "Apollo", false)
	addTestMember(t, db, project.ID, bob, models.RoleMember)

	// Fixed Monday noon so business-day math is stable
	base := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	overdue := base.Add(-24 * time.Hour)
	dueTomorrow := base.Add(24 * time.Hour)
	farOut := base.Add(30 * 24 * time.Hour)

	seed := []models.Task{
		{ProjectID: project.ID, Name: "done", Status: models.TaskStatusDone, Priority: models.TaskPriorityHigh},
		{ProjectID: project.ID, Name: "canceled", Status: models.TaskStatusCanceled, Priority: models.TaskPriorityLow},
		{ProjectID: project.ID, Name: "late", Status: models.TaskStatusTodo, Priority: models.TaskPriorityMedium, DueDate: &overdue},
		{ProjectID: project.ID, Name: "soon", Status: models.TaskStatusInProgress, Priority: models.TaskPriorityHigh, DueDate: &dueTomorrow},
		{ProjectID: project.ID, Name: "later", Status: models.TaskStatusTodo, Priority: models.TaskPriorityMedium, DueDate: &farOut},
		{ProjectID: project.ID, Name: "no due", Status: models.TaskStatusBacklog, Priority: models.TaskPriorityLow},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed task %s: %v", seed[i].Name, err)
		}
	}

	svc := NewAnalyticsService(db)
	svc.now = func() time.Time { return base }

	stats, err := svc.Stats(project.ID, alice.ID, "NONE")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.TotalTasks != 6 {
		t.Errorf("total = %d, expected 6", stats.TotalTasks)
	}
	if stats.ByStatus[models.TaskStatusTodo] != 2 {
		t.Errorf("TODO count = %d, expected 2", stats.ByStatus[models.TaskStatusTodo])
	}
	if stats.ByPriority[models.TaskPriorityHigh] != 2 {
		t.Errorf("HIGH count = %d, expected 2", stats.ByPriority[models.TaskPriorityHigh])
	}
	if stats.Overdue != 1 {
		t.Errorf("overdue = %d, expected 1", stats.Overdue)
	}
	if stats.DueSoon != 1 {
		t.Errorf("due soon = %d, expected 1", stats.DueSoon)
	}
	if stats.MemberCount != 2 {
		t.Errorf("members = %d, expected 2", stats.MemberCount)
	}

	// 1 done out of 5 countable (canceled excluded)
	if stats.CompletionRate != 0.2 {
		t.Errorf("completion rate = %v, expected 0.2", stats.CompletionRate)
	}
}

func TestProjectStats_RequiresView(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")
	project := createTestProject(t, db, alice, "Private", false)

	svc := NewAnalyticsService(db)
	_, err := svc.Stats(project.ID, bob.ID, "NONE")
	if !response.IsKind(err, response.KindForbidden) {
		t.Errorf("expected FORBIDDEN for non-member, got %v", err)
	}
}

func TestProjectStats_EmptyProject(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com")
	project := createTestProject(t, db, alice, "Empty", false)

	svc := NewAnalyticsService(db)
	stats, err := svc.Stats(project.ID, alice.ID, "US")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalTasks != 0 || stats.CompletionRate != 0 {
		t.Errorf("empty project should report zeros, got %+v", stats)
	}
}
