package models

import (
	"time"

	"gorm.io/gorm"
)

// Project status values.
const (
	ProjectStatusBuilding = "BUILDING"
	ProjectStatusLive     = "LIVE"
)

// Project represents a workspace owning tasks and members. OwnerID is the
// authoritative owner reference; the matching OWNER member row is created
// in the same transaction as the project and never mutated afterwards.
type Project struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Status      string         `gorm:"size:20;default:BUILDING" json:"status"` // BUILDING, LIVE
	IsPublic    bool           `gorm:"default:false" json:"is_public"`
	OwnerID     uint           `gorm:"index;not null" json:"owner_id"`
	Owner       *User          `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }

// IsValidProjectStatus reports whether s is a known project status.
func IsValidProjectStatus(s string) bool {
	return s == ProjectStatusBuilding || s == ProjectStatusLive
}
