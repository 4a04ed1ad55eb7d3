package models

import "time"

// Invitation code parameters. Codes are exactly CodeLength characters from
// [0-9A-Za-z] and expire DefaultCodeTTL after generation.
const (
	CodeLength     = 8
	DefaultCodeTTL = 7 * 24 * time.Hour
)

// InvitationCode is the single active shared secret granting immediate
// MEMBER-level entry to a project. One row per project; regeneration
// overwrites code and expiry in place.
type InvitationCode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"uniqueIndex;not null" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Code      string    `gorm:"size:8;not null" json:"code"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InvitationCode) TableName() string { return "invitation_codes" }

// ExpiredAt reports whether the code is expired at the given instant.
func (ic *InvitationCode) ExpiredAt(now time.Time) bool {
	return !now.Before(ic.ExpiresAt)
}
