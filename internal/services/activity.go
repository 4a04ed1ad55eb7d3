package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tasktrace/tasktrace/internal/models"
	"github.com/tasktrace/tasktrace/pkg/logger"
	"github.com/tasktrace/tasktrace/pkg/response"
	"gorm.io/gorm"
)

// ActivityEntry is the unit of work pushed through the activity queue.
type ActivityEntry struct {
	Level     string                 `json:"level"`
	Module    string                 `json:"module"`
	Action    string                 `json:"action"`
	Message   string                 `json:"message"`
	UserID    *uint                  `json:"user_id,omitempty"`
	ProjectID *uint                  `json:"project_id,omitempty"`
	RequestID string                 `json:"request_id"`
	IP        string                 `json:"ip"`
	UserAgent string                 `json:"user_agent"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// RecordActivity enqueues an entry onto the global activity queue. Safe to
// call before InitActivityQueue; entries are dropped with a log line.
func RecordActivity(entry *ActivityEntry) {
	queue := GetActivityQueue()
	if queue == nil {
		logger.Warnf("[Activity] queue not initialized, dropping entry: %s/%s", entry.Module, entry.Action)
		return
	}
	if err := queue.Enqueue(entry); err != nil {
		logger.Warnf("[Activity] enqueue failed: %v", err)
	}
}

type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// Persist writes one entry to the activity log table. Called by the queue
// processor, either inline (sync queue) or from the asynq worker.
func (s *ActivityService) Persist(ctx context.Context, entry *ActivityEntry) error {
	var extra string
	if len(entry.Extra) > 0 {
		if data, err := json.Marshal(entry.Extra); err == nil {
			extra = string(data)
		}
	}

	record := models.ActivityLog{
		Level:     entry.Level,
		Module:    entry.Module,
		Action:    entry.Action,
		Message:   entry.Message,
		UserID:    entry.UserID,
		ProjectID: entry.ProjectID,
		RequestID: entry.RequestID,
		IP:        entry.IP,
		UserAgent: entry.UserAgent,
		Extra:     extra,
	}
	return s.db.WithContext(ctx).Create(&record).Error
}

type ActivityListRequest struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Level     string `form:"level"`
	Module    string `form:"module"`
	ProjectID *uint  `form:"project_id"`
}

type ActivityListResponse struct {
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Items    []models.ActivityLog `json:"items"`
}

// ListForProject returns project-scoped activity. The caller must hold
// ADMIN or better on the project.
func (s *ActivityService) ListForProject(projectID, userID uint, req *ActivityListRequest) (*ActivityListResponse, error) {
	policy := NewPolicyService(s.db)
	if _, _, err := policy.Authorize(projectID, userID, ActionViewActivity); err != nil {
		return nil, err
	}

	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 50
	}

	query := s.db.Model(&models.ActivityLog{}).Where("project_id = ?", projectID)
	if req.Level != "" {
		query = query.Where("level = ?", req.Level)
	}
	if req.Module != "" {
		query = query.Where("module = ?", req.Module)
	}

	var total int64
	query.Count(&total)

	var logs []models.ActivityLog
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}

	return &ActivityListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    logs,
	}, nil
}

// Cleanup deletes activity entries older than retentionDays. Returns the
// number of rows removed.
func (s *ActivityService) Cleanup(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
