package services

import (
	"testing"

	"github.com/tasktrace/tasktrace/internal/models"
	"github.com/tasktrace/tasktrace/pkg/response"
)

func TestGetMember_AbsentReturnsNil(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com")
	project := createTestProject(t, db, alice, "Team", false)

	svc := NewMembershipService(db)
	member, err := svc.GetMember(project.ID, 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if member != nil {
		t.Errorf("expected nil for absent member, got %+v", member)
	}
}

func TestAddMember_DuplicatePairConflict(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")
	project := createTestProject(t, db, alice, "Team", false)

	svc := NewMembershipService(db)
	if _, err := svc.AddMember(project.ID, bob.ID, models.RoleMember); err != nil {
		t.Fatalf("first add: %v", err)
	}
	_, err := svc.AddMember(project.ID, bob.ID, models.RoleAdmin)
	if !response.IsKind(err, response.KindConflict) {
		t.Errorf("expected CONFLICT for duplicate member pair, got %v", err)
	}
}

func TestAddMember_InvalidRole(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")
	project := createTestProject(t, db, alice, "Team", false)

	svc := NewMembershipService(db)
	_, err := svc.AddMember(project.ID, bob.ID, "SUPERADMIN")
	if !response.IsKind(err, response.KindValidation) {
		t.Errorf("expected VALIDATION for unknown role, got %v", err)
	}
}

func TestListMembers_OrderedByJoin(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")
	carol := createTestUser(t, db, "Carol", "carol@example.com")
	project := createTestProject(t, db, alice, "Team", false)
	addTestMember(t, db, project.ID, bob, models.RoleAdmin)
	addTestMember(t, db, project.ID, carol, models.RoleMember)

	svc := NewMembershipService(db)
	members, err := svc.ListMembers(project.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(members))
	}
	if members[0].UserID != alice.ID {
		t.Errorf("first member should be the owner, got user %d", members[0].UserID)
	}
}

func TestUpdateRole(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")
	carol := createTestUser(t, db, "Carol", "carol@example.com")
	project := createTestProject(t, db, alice, "Team", false)

	svc := NewMembershipService(db)
	owner, _ := svc.GetMember(project.ID, alice.ID)
	bobMember := addTestMember(t, db, project.ID, bob, models.RoleMember)
	carolMember := addTestMember(t, db, project.ID, carol, models.RoleMember)

	t.Run("owner promotes member to admin", func(t *testing.T) {
		updated, err := svc.UpdateRole(project.ID, bobMember.ID, models.RoleAdmin, owner)
		if err != nil {
			t.Fatalf("promote: %v", err)
		}
		if updated.Role != models.RoleAdmin {
			t.Errorf("role = %q, expected ADMIN", updated.Role)
		}
	})

	t.Run("cannot assign owner role", func(t *testing.T) {
		_, err := svc.UpdateRole(project.ID, carolMember.ID, models.RoleOwner, owner)
		if !response.IsKind(err, response.KindForbidden) {
			t.Errorf("expected FORBIDDEN assigning OWNER, got %v", err)
		}
	})

	t.Run("cannot change owner role", func(t *testing.T) {
		_, err := svc.UpdateRole(project.ID, owner.ID, models.RoleMember, owner)
		if !response.IsKind(err, response.KindForbidden) {
			t.Errorf("expected FORBIDDEN demoting OWNER, got %v", err)
		}
	})

	t.Run("missing member", func(t *testing.T) {
		_, err := svc.UpdateRole(project.ID, 999, models.RoleAdmin, owner)
		if !response.IsKind(err, response.KindNotFound) {
			t.Errorf("expected NOT_FOUND, got %v", err)
		}
	})

	t.Run("invalid role", func(t *testing.T) {
		_, err := svc.UpdateRole(project.ID, carolMember.ID, "ROOT", owner)
		if !response.IsKind(err, response.KindValidation) {
			t.Errorf("expected VALIDATION, got %v", err)
		}
	})
}

func TestRemoveMember(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")
	carol := createTestUser(t, db, "Carol", "carol@example.com")
	project := createTestProject(t, db, alice, "Team", false)

	svc := NewMembershipService(db)
	owner, _ := svc.GetMember(project.ID, alice.ID)
	bobMember := addTestMember(t, db, project.ID, bob, models.RoleAdmin)
	carolMember := addTestMember(t, db, project.ID, carol, models.RoleMember)

	t.Run("owner cannot be removed", func(t *testing.T) {
		err := svc.RemoveMember(project.ID, owner.ID, bobMember)
		if !response.IsKind(err, response.KindForbidden) {
			t.Errorf("expected FORBIDDEN removing owner, got %v", err)
		}
	})

	t.Run("self removal rejected", func(t *testing.T) {
		err := svc.RemoveMember(project.ID, bobMember.ID, bobMember)
		if !response.IsKind(err, response.KindForbidden) {
			t.Errorf("expected FORBIDDEN on self removal, got %v", err)
		}
	})

	t.Run("admin removes member", func(t *testing.T) {
		if err := svc.RemoveMember(project.ID, carolMember.ID, bobMember); err != nil {
			t.Fatalf("remove: %v", err)
		}
		member, _ := svc.GetMember(project.ID, carol.ID)
		if member != nil {
			t.Error("member should be gone after removal")
		}
	})

	t.Run("admin cannot remove admin", func(t *testing.T) {
		dave := createTestUser(t, db, "Dave", "dave@example.com")
		daveMember := addTestMember(t, db, project.ID, dave, models.RoleAdmin)
		err := svc.RemoveMember(project.ID, daveMember.ID, bobMember)
		if !response.IsKind(err, response.KindForbidden) {
			t.Errorf("expected FORBIDDEN for admin removing admin, got %v", err)
		}
	})
}

func TestLeave(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")
	project := createTestProject(t, db, alice, "Team", false)
	addTestMember(t, db, project.ID, bob, models.RoleMember)

	svc := NewMembershipService(db)

	t.Run("owner cannot leave", func(t *testing.T) {
		err := svc.Leave(project.ID, alice.ID)
		if !response.IsKind(err, response.KindForbidden) {
			t.Errorf("expected FORBIDDEN for owner leaving, got %v", err)
		}
	})

	t.Run("member leaves", func(t *testing.T) {
		if err := svc.Leave(project.ID, bob.ID); err != nil {
			t.Fatalf("leave: %v", err)
		}
		member, _ := svc.GetMember(project.ID, bob.ID)
		if member != nil {
			t.Error("membership should be gone after leaving")
		}
	})

	t.Run("non-member cannot leave", func(t *testing.T) {
		err := svc.Leave(project.ID, bob.ID)
		if !response.IsKind(err, response.KindNotFound) {
			t.Errorf("expected NOT_FOUND for non-member, got %v", err)
		}
	})
}
