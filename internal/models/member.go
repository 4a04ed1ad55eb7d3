package models

import "time"

// Member roles, ordered by capability: OWNER > ADMIN > MEMBER.
const (
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

var roleRank = map[string]int{
	RoleMember: 1,
	RoleAdmin:  2,
	RoleOwner:  3,
}

// RoleRank returns the capability rank of a role, 0 for unknown roles.
func RoleRank(role string) int {
	return roleRank[role]
}

// RoleAtLeast reports whether role has at least the capability of min.
func RoleAtLeast(role, min string) bool {
	return RoleRank(role) >= RoleRank(min)
}

// IsValidRole reports whether role is a known member role.
func IsValidRole(role string) bool {
	return RoleRank(role) > 0
}

// Member binds a user to a project with a role. Exactly one row exists per
// (project, user) pair, and exactly one OWNER row exists per project.
type Member struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"uniqueIndex:idx_member_project_user;not null" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID    uint      `gorm:"uniqueIndex:idx_member_project_user;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      string    `gorm:"size:20;default:MEMBER" json:"role"` // OWNER, ADMIN, MEMBER
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Member) TableName() string { return "members" }
