package services

import (
	"testing"
	"time"

	"github.com/tasktrace/tasktrace/internal/config"
	"github.com/tasktrace/tasktrace/internal/models"
	"github.com/tasktrace/tasktrace/internal/utils"
	"github.com/tasktrace/tasktrace/pkg/response"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	utils.SetJWTSecret("test-secret")
	db := newTestDB(t)
	return NewAuthService(db, &config.JWTConfig{
		Secret:            "test-secret",
		ExpireHour:        1,
		RefreshExpireHour: 24,
	})
}

func TestRegister(t *testing.T) {
	svc := newTestAuthService(t)

	user, err := svc.Register(&RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.PasswordHash == "correct horse" {
		t.Error("password must be stored hashed")
	}

	_, err = svc.Register(&RegisterRequest{
		Name:     "Alice Again",
		Email:    "alice@example.com",
		Password: "other password",
	})
	if !response.IsKind(err, response.KindConflict) {
		t.Errorf("expected CONFLICT for duplicate email, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc := newTestAuthService(t)

	if _, err := svc.Register(&RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "correct horse",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		result, err := svc.Login(&LoginRequest{Email: "alice@example.com", Password: "correct horse"}, "127.0.0.1", "test")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if result.AccessToken == "" || result.RefreshToken == "" {
			t.Error("expected both tokens")
		}
		claims, err := utils.ParseToken(result.AccessToken)
		if err != nil {
			t.Fatalf("parse issued token: %v", err)
		}
		if claims.Email != "alice@example.com" {
			t.Errorf("claims email = %q", claims.Email)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(&LoginRequest{Email: "alice@example.com", Password: "nope"}, "", "")
		if !response.IsKind(err, response.KindUnauthorized) {
			t.Errorf("expected UNAUTHORIZED, got %v", err)
		}
	})

	t.Run("unknown email has same error", func(t *testing.T) {
		_, err := svc.Login(&LoginRequest{Email: "ghost@example.com", Password: "nope"}, "", "")
		app := response.AsAppError(err)
		if app.Kind != response.KindUnauthorized || app.Message != "invalid email or password" {
			t.Errorf("unknown email must be indistinguishable, got %v", err)
		}
	})
}

func TestRefresh_Rotation(t *testing.T) {
	svc := newTestAuthService(t)

	if _, err := svc.Register(&RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "correct horse",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	login, err := svc.Login(&LoginRequest{Email: "alice@example.com", Password: "correct horse"}, "", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rotated, err := svc.Refresh(login.RefreshToken, "", "")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == login.RefreshToken {
		t.Error("refresh must rotate the token")
	}

	// The old token is revoked by the rotation
	if _, err := svc.Refresh(login.RefreshToken, "", ""); !response.IsKind(err, response.KindUnauthorized) {
		t.Errorf("expected UNAUTHORIZED for reused token, got %v", err)
	}

	// The new one still works
	if _, err := svc.Refresh(rotated.RefreshToken, "", ""); err != nil {
		t.Errorf("rotated token should refresh: %v", err)
	}
}

func TestRevokeRefreshToken(t *testing.T) {
	svc := newTestAuthService(t)

	if _, err := svc.Register(&RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "correct horse",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	login, err := svc.Login(&LoginRequest{Email: "alice@example.com", Password: "correct horse"}, "", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.RevokeRefreshToken(login.RefreshToken); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.Refresh(login.RefreshToken, "", ""); !response.IsKind(err, response.KindUnauthorized) {
		t.Errorf("expected UNAUTHORIZED after revoke, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := newTestAuthService(t)

	user, err := svc.Register(&RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "old password",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	t.Run("wrong old password", func(t *testing.T) {
		err := svc.ChangePassword(user.ID, &ChangePasswordRequest{OldPassword: "wrong", NewPassword: "new password"})
		if !response.IsKind(err, response.KindUnauthorized) {
			t.Errorf("expected UNAUTHORIZED, got %v", err)
		}
	})

	t.Run("successful change", func(t *testing.T) {
		if err := svc.ChangePassword(user.ID, &ChangePasswordRequest{OldPassword: "old password", NewPassword: "new password"}); err != nil {
			t.Fatalf("change: %v", err)
		}
		if _, err := svc.Login(&LoginRequest{Email: "alice@example.com", Password: "old password"}, "", ""); err == nil {
			t.Error("old password should no longer work")
		}
		if _, err := svc.Login(&LoginRequest{Email: "alice@example.com", Password: "new password"}, "", ""); err != nil {
			t.Errorf("new password should work: %v", err)
		}
	})
}

func TestDeleteAccount_CascadesOwnedProjects(t *testing.T) {
	utils.SetJWTSecret("test-secret")
	db := newTestDB(t)
	svc := NewAuthService(db, &config.JWTConfig{Secret: "test-secret", ExpireHour: 1})

	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")
	owned := createTestProject(t, db, alice, "Owned", false)
	foreign := createTestProject(t, db, bob, "Foreign", false)
	addTestMember(t, db, foreign.ID, alice, models.RoleMember)
	db.Create(&models.Task{ProjectID: owned.ID, Name: "task", Status: models.TaskStatusTodo, Priority: models.TaskPriorityMedium})
	db.Create(&models.RefreshToken{UserID: alice.ID, TokenHash: "h", ExpiresAt: time.Now().Add(time.Hour)})

	if err := svc.DeleteAccount(alice.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	var projects, members, tokens int64
	db.Model(&models.Project{}).Where("owner_id = ?", alice.ID).Count(&projects)
	db.Model(&models.Member{}).Where("user_id = ?", alice.ID).Count(&members)
	db.Model(&models.RefreshToken{}).Where("user_id = ?", alice.ID).Count(&tokens)
	if projects != 0 || members != 0 || tokens != 0 {
		t.Errorf("records left behind: projects=%d members=%d tokens=%d", projects, members, tokens)
	}

	// Bob's project survives untouched
	var foreignCount int64
	db.Model(&models.Project{}).Where("id = ?", foreign.ID).Count(&foreignCount)
	if foreignCount != 1 {
		t.Error("foreign project must not be deleted")
	}
}
