package models

import (
	"time"

	"gorm.io/gorm"
)

// Membership request states. PENDING is the only state that may
// transition; APPROVED and REJECTED are terminal.
const (
	RequestPending  = "PENDING"
	RequestApproved = "APPROVED"
	RequestRejected = "REJECTED"
)

// MembershipRequest is an approval-gated petition to join a project. At
// most one PENDING request exists per (project, user) pair; uniqueness is
// enforced by the workflow service since historical rows may accumulate.
type MembershipRequest struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProjectID uint           `gorm:"index:idx_request_project_user;not null" json:"project_id"`
	Project   *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID    uint           `gorm:"index:idx_request_project_user;not null" json:"user_id"`
	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status    string         `gorm:"size:20;default:PENDING;index" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (MembershipRequest) TableName() string { return "membership_requests" }
