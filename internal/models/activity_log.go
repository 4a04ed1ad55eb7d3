package models

import "time"

// ActivityLog records a user-visible action against the system, written
// asynchronously by the activity queue and pruned by the cleanup job.
type ActivityLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Level     string    `gorm:"size:20;index" json:"level"` // info, warning, error
	Module    string    `gorm:"size:100;index" json:"module"`
	Action    string    `gorm:"size:200;index" json:"action"`
	Message   string    `gorm:"type:text" json:"message"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	ProjectID *uint     `gorm:"index" json:"project_id"`
	RequestID string    `gorm:"size:36" json:"request_id"`
	IP        string    `gorm:"size:50" json:"ip"`
	UserAgent string    `gorm:"size:500" json:"user_agent"`
	Extra     string    `gorm:"type:text" json:"extra"` // JSON extra data
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (ActivityLog) TableName() string { return "activity_logs" }
