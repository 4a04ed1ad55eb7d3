package services

import (
	"github.com/tasktrace/tasktrace/internal/models"
	"github.com/tasktrace/tasktrace/pkg/response"
	"gorm.io/gorm"
)

type ProjectService struct {
	db     *gorm.DB
	policy *PolicyService
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db, policy: NewPolicyService(db)}
}

type ProjectListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Name     string `form:"name"`
	Status   string `form:"status"`
}

type ProjectListResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Items    []models.Project `json:"items"`
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

type UpdateProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Status      string  `json:"status" binding:"omitempty,oneof=BUILDING LIVE"`
	IsPublic    *bool   `json:"is_public"`
}

// Create inserts a project and its OWNER member row in one transaction so
// the owner reference and the OWNER membership can never diverge.
func (s *ProjectService) Create(req *CreateProjectRequest, ownerID uint) (*models.Project, error) {
	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.ProjectStatusBuilding,
		IsPublic:    req.IsPublic,
		OwnerID:     ownerID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		owner := models.Member{
			ProjectID: project.ID,
			UserID:    ownerID,
			Role:      models.RoleOwner,
		}
		return tx.Create(&owner).Error
	})
	if err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}

	return &project, nil
}

// Get returns a project if the caller may view it.
func (s *ProjectService) Get(projectID, userID uint) (*models.Project, error) {
	project, _, err := s.policy.Authorize(projectID, userID, ActionViewProject)
	if err != nil {
		return nil, err
	}
	return project, nil
}

// ListVisible returns the paginated set of projects the user may see:
// public projects plus those they belong to.
func (s *ProjectService) ListVisible(userID uint, req *ProjectListRequest) (*ProjectListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	memberOf := s.db.Model(&models.Member{}).
		Select("project_id").
		Where("user_id = ?", userID)

	query := s.db.Model(&models.Project{}).
		Where("is_public = ? OR id IN (?)", true, memberOf)

	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	query.Count(&total)

	var projects []models.Project
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}

	return &ProjectListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    projects,
	}, nil
}

// Update changes project details and visibility. ADMIN or better.
func (s *ProjectService) Update(projectID, userID uint, req *UpdateProjectRequest) (*models.Project, error) {
	project, _, err := s.policy.Authorize(projectID, userID, ActionUpdateProject)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != "" {
		if !models.IsValidProjectStatus(req.Status) {
			return nil, response.NewValidation("invalid project status")
		}
		updates["status"] = req.Status
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}

	if len(updates) > 0 {
		if err := s.db.Model(project).Updates(updates).Error; err != nil {
			return nil, response.NewDatabaseError(err.Error())
		}
	}

	return project, nil
}

// Delete removes the project and everything scoped to it: members, tasks,
// invitation code, membership requests. OWNER only.
func (s *ProjectService) Delete(projectID, userID uint) error {
	project, _, err := s.policy.Authorize(projectID, userID, ActionDeleteProject)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Member{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.InvitationCode{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.MembershipRequest{}).Error; err != nil {
			return err
		}
		return tx.Delete(project).Error
	})
	if err != nil {
		return response.NewDatabaseError(err.Error())
	}
	return nil
}
