package services

import (
	"testing"

	"github.com/tasktrace/tasktrace/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Member{},
		&models.Task{},
		&models.InvitationCode{},
		&models.MembershipRequest{},
		&models.RefreshToken{},
		&models.ActivityLog{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()
	user := models.User{Name: name, Email: email, PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return &user
}

// createTestProject inserts a project and its OWNER member row.
func createTestProject(t *testing.T, db *gorm.DB, owner *models.User, name string, public bool) *models.Project {
	t.Helper()
	project := models.Project{
		Name:     name,
		Status:   models.ProjectStatusBuilding,
		IsPublic: public,
		OwnerID:  owner.ID,
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("create project %s: %v", name, err)
	}
	member := models.Member{ProjectID: project.ID, UserID: owner.ID, Role: models.RoleOwner}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("create owner member: %v", err)
	}
	return &project
}

func addTestMember(t *testing.T, db *gorm.DB, projectID uint, user *models.User, role string) *models.Member {
	t.Helper()
	member := models.Member{ProjectID: projectID, UserID: user.ID, Role: role}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("add member: %v", err)
	}
	return &member
}
