package services

import (
	"errors"
	"time"

	"github.com/tasktrace/tasktrace/internal/models"
	"github.com/tasktrace/tasktrace/pkg/response"
	"gorm.io/gorm"
)

type TaskService struct {
	db      *gorm.DB
	policy  *PolicyService
	members *MembershipService
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{
		db:      db,
		policy:  NewPolicyService(db),
		members: NewMembershipService(db),
	}
}

type CreateTaskRequest struct {
	Name        string     `json:"name" binding:"required"`
	Label       string     `json:"label"`
	Status      string     `json:"status" binding:"omitempty,oneof=BACKLOG TODO IN_PROGRESS DONE CANCELED"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeID  *uint      `json:"assignee_id"`
}

type UpdateTaskRequest struct {
	Name        string     `json:"name"`
	Label       *string    `json:"label"`
	Status      string     `json:"status" binding:"omitempty,oneof=BACKLOG TODO IN_PROGRESS DONE CANCELED"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeID  *uint      `json:"assignee_id"`
}

type TaskListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status"`
	Priority string `form:"priority"`
	Assignee *uint  `form:"assignee_id"`
}

type TaskListResponse struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Items    []models.Task `json:"items"`
}

// validateAssignee checks the assignee is a member of the same project.
func (s *TaskService) validateAssignee(projectID uint, memberID uint) error {
	var member models.Member
	err := s.db.Where("id = ? AND project_id = ?", memberID, projectID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewValidation("assignee must be a member of the project")
	}
	if err != nil {
		return response.NewDatabaseError(err.Error())
	}
	return nil
}

func (s *TaskService) Create(projectID, userID uint, req *CreateTaskRequest) (*models.Task, error) {
	if _, _, err := s.policy.Authorize(projectID, userID, ActionManageTasks); err != nil {
		return nil, err
	}

	if req.AssigneeID != nil {
		if err := s.validateAssignee(projectID, *req.AssigneeID); err != nil {
			return nil, err
		}
	}

	task := models.Task{
		ProjectID:   projectID,
		Name:        req.Name,
		Label:       req.Label,
		Status:      models.TaskStatusTodo,
		Priority:    models.TaskPriorityMedium,
		Description: req.Description,
		DueDate:     req.DueDate,
		AssigneeID:  req.AssigneeID,
	}
	if req.Status != "" {
		task.Status = req.Status
	}
	if req.Priority != "" {
		task.Priority = req.Priority
	}

	if err := s.db.Create(&task).Error; err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}
	return &task, nil
}

func (s *TaskService) Get(projectID, taskID, userID uint) (*models.Task, error) {
	if _, _, err := s.policy.Authorize(projectID, userID, ActionViewProject); err != nil {
		return nil, err
	}

	var task models.Task
	err := s.db.Preload("Assignee").Preload("Assignee.User").
		Where("id = ? AND project_id = ?", taskID, projectID).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("task not found")
	}
	if err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}
	return &task, nil
}

func (s *TaskService) List(projectID, userID uint, req *TaskListRequest) (*TaskListResponse, error) {
	if _, _, err := s.policy.Authorize(projectID, userID, ActionViewProject); err != nil {
		return nil, err
	}

	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 50
	}

	query := s.db.Model(&models.Task{}).Where("project_id = ?", projectID)
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Priority != "" {
		query = query.Where("priority = ?", req.Priority)
	}
	if req.Assignee != nil {
		query = query.Where("assignee_id = ?", *req.Assignee)
	}

	var total int64
	query.Count(&total)

	var tasks []models.Task
	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("Assignee").Preload("Assignee.User").
		Offset(offset).Limit(req.PageSize).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}

	return &TaskListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    tasks,
	}, nil
}

func (s *TaskService) Update(projectID, taskID, userID uint, req *UpdateTaskRequest) (*models.Task, error) {
	if _, _, err := s.policy.Authorize(projectID, userID, ActionManageTasks); err != nil {
		return nil, err
	}

	var task models.Task
	err := s.db.Where("id = ? AND project_id = ?", taskID, projectID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("task not found")
	}
	if err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Label != nil {
		updates["label"] = *req.Label
	}
	if req.Status != "" {
		if !models.IsValidTaskStatus(req.Status) {
			return nil, response.NewValidation("invalid task status")
		}
		updates["status"] = req.Status
	}
	if req.Priority != "" {
		if !models.IsValidTaskPriority(req.Priority) {
			return nil, response.NewValidation("invalid task priority")
		}
		updates["priority"] = req.Priority
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.DueDate != nil {
		updates["due_date"] = req.DueDate
	}
	if req.AssigneeID != nil {
		if *req.AssigneeID == 0 {
			updates["assignee_id"] = nil
		} else {
			if err := s.validateAssignee(projectID, *req.AssigneeID); err != nil {
				return nil, err
			}
			updates["assignee_id"] = *req.AssigneeID
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(&task).Updates(updates).Error; err != nil {
			return nil, response.NewDatabaseError(err.Error())
		}
	}
	return &task, nil
}

func (s *TaskService) Delete(projectID, taskID, userID uint) error {
	if _, _, err := s.policy.Authorize(projectID, userID, ActionManageTasks); err != nil {
		return err
	}

	result := s.db.Where("id = ? AND project_id = ?", taskID, projectID).Delete(&models.Task{})
	if result.Error != nil {
		return response.NewDatabaseError(result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("task not found")
	}
	return nil
}
