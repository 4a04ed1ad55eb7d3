package services

import (
	"time"

	"github.com/tasktrace/tasktrace/internal/models"
	"github.com/tasktrace/tasktrace/pkg/response"
	"gorm.io/gorm"
)

type AnalyticsService struct {
	db       *gorm.DB
	policy   *PolicyService
	workdays *WorkdayService
	now      func() time.Time
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{
		db:       db,
		policy:   NewPolicyService(db),
		workdays: NewWorkdayService(),
		now:      time.Now,
	}
}

type ProjectStats struct {
	ProjectID      uint             `json:"project_id"`
	TotalTasks     int64            `json:"total_tasks"`
	ByStatus       map[string]int64 `json:"by_status"`
	ByPriority     map[string]int64 `json:"by_priority"`
	Overdue        int64            `json:"overdue"`
	DueSoon        int64            `json:"due_soon"`
	MemberCount    int64            `json:"member_count"`
	CompletionRate float64          `json:"completion_rate"`
}

type statusCount struct {
	Key   string
	Count int64
}

// Stats aggregates task counts for a project. DueSoon counts open tasks
// whose due date falls within the next three business days of the given
// country calendar.
func (s *AnalyticsService) Stats(projectID, userID uint, countryCode string) (*ProjectStats, error) {
	if _, _, err := s.policy.Authorize(projectID, userID, ActionViewProject); err != nil {
		return nil, err
	}

	stats := &ProjectStats{
		ProjectID:  projectID,
		ByStatus:   make(map[string]int64),
		ByPriority: make(map[string]int64),
	}

	base := func() *gorm.DB {
		return s.db.Model(&models.Task{}).Where("project_id = ?", projectID)
	}

	if err := base().Count(&stats.TotalTasks).Error; err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}

	var byStatus []statusCount
	if err := base().Select("status as key, count(*) as count").
		Group("status").Scan(&byStatus).Error; err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}
	for _, row := range byStatus {
		stats.ByStatus[row.Key] = row.Count
	}

	var byPriority []statusCount
	if err := base().Select("priority as key, count(*) as count").
		Group("priority").Scan(&byPriority).Error; err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}
	for _, row := range byPriority {
		stats.ByPriority[row.Key] = row.Count
	}

	now := s.now()
	openStatuses := []string{models.TaskStatusBacklog, models.TaskStatusTodo, models.TaskStatusInProgress}

	if err := base().
		Where("status IN ? AND due_date IS NOT NULL AND due_date < ?", openStatuses, now).
		Count(&stats.Overdue).Error; err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}

	horizon := s.workdays.AddBusinessDays(now, 3, countryCode)
	if err := base().
		Where("status IN ? AND due_date IS NOT NULL AND due_date >= ? AND due_date <= ?", openStatuses, now, horizon).
		Count(&stats.DueSoon).Error; err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}

	if err := s.db.Model(&models.Member{}).Where("project_id = ?", projectID).
		Count(&stats.MemberCount).Error; err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}

	done := stats.ByStatus[models.TaskStatusDone]
	canceled := stats.ByStatus[models.TaskStatusCanceled]
	denominator := stats.TotalTasks - canceled
	if denominator > 0 {
		stats.CompletionRate = float64(done) / float64(denominator)
	}

	return stats, nil
}
