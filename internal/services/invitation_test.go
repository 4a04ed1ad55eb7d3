package services

import (
	"testing"
	"time"

	"github.com/tasktrace/tasktrace/internal/models"
	"github.com/tasktrace/tasktrace/pkg/response"
)

func TestGenerateCode_CreatesAndOverwrites(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com")
	project := createTestProject(t, db, alice, "Team", false)

	svc := NewInvitationService(db)

	first, err := svc.GenerateCode(project.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(first.Code) != models.CodeLength {
		t.Errorf("code length = %d, expected %d", len(first.Code), models.CodeLength)
	}

	second, err := svc.GenerateCode(project.ID)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("regeneration created a new row: %d vs %d", second.ID, first.ID)
	}
	if second.Code == first.Code {
		t.Error("regeneration should issue a new code")
	}

	var count int64
	db.Model(&models.InvitationCode{}).Where("project_id = ?", project.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 code row per project, got %d", count)
	}
}

func TestGetCode_Missing(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com")
	project := createTestProject(t, db, alice, "Team", false)

	svc := NewInvitationService(db)
	_, err := svc.GetCode(project.ID)
	if !response.IsKind(err, response.KindNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestRedeem(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com")
	carol := createTestUser(t, db, "Carol", "carol@example.com")
	project := createTestProject(t, db, alice, "Team", false)

	svc := NewInvitationService(db)
	invitation, err := svc.GenerateCode(project.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	t.Run("malformed code rejected before lookup", func(t *testing.T) {
		_, err := svc.Redeem(project.ID, "short", carol.ID)
		if !response.IsKind(err, response.KindValidation) {
			t.Errorf("expected VALIDATION, got %v", err)
		}
		_, err = svc.Redeem(project.ID, "abc-1234", carol.ID)
		if !response.IsKind(err, response.KindValidation) {
			t.Errorf("expected VALIDATION for non-alphanumeric, got %v", err)
		}
	})

	t.Run("missing project", func(t *testing.T) {
		_, err := svc.Redeem(999, invitation.Code, carol.ID)
		if !response.IsKind(err, response.KindNotFound) {
			t.Errorf("expected NOT_FOUND, got %v", err)
		}
	})

	t.Run("wrong code", func(t *testing.T) {
		_, err := svc.Redeem(project.ID, "AAAAAAAA", carol.ID)
		if !response.IsKind(err, response.KindNotFound) {
			t.Errorf("expected NOT_FOUND for wrong code, got %v", err)
		}
	})

	t.Run("valid code grants membership", func(t *testing.T) {
		member, err := svc.Redeem(project.ID, invitation.Code, carol.ID)
		if err != nil {
			t.Fatalf("redeem: %v", err)
		}
		if member.Role != models.RoleMember {
			t.Errorf("role = %q, expected MEMBER", member.Role)
		}
	})

	t.Run("redeeming again is a no-op", func(t *testing.T) {
		member, err := svc.Redeem(project.ID, invitation.Code, carol.ID)
		if err != nil {
			t.Fatalf("second redeem: %v", err)
		}
		if member.Role != models.RoleMember {
			t.Errorf("role = %q, expected MEMBER unchanged", member.Role)
		}
		var count int64
		db.Model(&models.Member{}).Where("project_id = ? AND user_id = ?", project.ID, carol.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 membership row, got %d", count)
		}
	})
}

func TestRedeem_ExpiredCode(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com")
	dave := createTestUser(t, db, "Dave", "dave@example.com")
	project := createTestProject(t, db, alice, "Team", false)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewInvitationService(db)
	svc.now = func() time.Time { return base }

	invitation, err := svc.GenerateCode(project.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// One second short of expiry still works for another user
	svc.now = func() time.Time { return base.Add(models.DefaultCodeTTL - time.Second) }
	if _, err := svc.Redeem(project.ID, invitation.Code, dave.ID); err != nil {
		t.Fatalf("redeem before expiry: %v", err)
	}

	erin := createTestUser(t, db, "Erin", "erin@example.com")
	svc.now = func() time.Time { return base.Add(models.DefaultCodeTTL) }
	_, err = svc.Redeem(project.ID, invitation.Code, erin.ID)
	if !response.IsKind(err, response.KindNotFound) {
		t.Errorf("expected NOT_FOUND at exact expiry instant, got %v", err)
	}
}

func TestRedeem_RegenerationInvalidatesOldCode(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com")
	carol := createTestUser(t, db, "Carol", "carol@example.com")
	project := createTestProject(t, db, alice, "Team", false)

	svc := NewInvitationService(db)
	old, err := svc.GenerateCode(project.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	fresh, err := svc.GenerateCode(project.ID)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}

	if _, err := svc.Redeem(project.ID, old.Code, carol.ID); !response.IsKind(err, response.KindNotFound) {
		t.Errorf("old code should be invalid after regeneration, got %v", err)
	}
	if _, err := svc.Redeem(project.ID, fresh.Code, carol.ID); err != nil {
		t.Fatalf("fresh code should redeem: %v", err)
	}
}

func TestPurgeExpired(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")
	p1 := createTestProject(t, db, alice, "Old", false)
	p2 := createTestProject(t, db, bob, "Fresh", false)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewInvitationService(db)

	svc.now = func() time.Time { return base.Add(-30 * 24 * time.Hour) }
	if _, err := svc.GenerateCode(p1.ID); err != nil {
		t.Fatalf("generate old: %v", err)
	}
	svc.now = func() time.Time { return base }
	if _, err := svc.GenerateCode(p2.ID); err != nil {
		t.Fatalf("generate fresh: %v", err)
	}

	removed, err := svc.PurgeExpired(0)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, expected 1", removed)
	}
	if _, err := svc.GetCode(p2.ID); err != nil {
		t.Errorf("fresh code should survive purge: %v", err)
	}
}
