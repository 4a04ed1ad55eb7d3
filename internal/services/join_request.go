package services

import (
	"errors"

	"github.com/tasktrace/tasktrace/internal/models"
	"github.com/tasktrace/tasktrace/pkg/response"
	"gorm.io/gorm"
)

// JoinRequestService runs the approval-gated membership workflow:
// NoRequest -> PENDING -> {APPROVED, REJECTED}. Terminal states never
// transition; a rejected request blocks resubmission until the requester
// withdraws it.
type JoinRequestService struct {
	db      *gorm.DB
	members *MembershipService
}

func NewJoinRequestService(db *gorm.DB) *JoinRequestService {
	return &JoinRequestService{db: db, members: NewMembershipService(db)}
}

// Submit files a membership request for userID on projectID.
func (s *JoinRequestService) Submit(projectID, userID uint) (*models.MembershipRequest, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, response.NewDatabaseError(err.Error())
	}

	member, err := s.members.GetMember(projectID, userID)
	if err != nil {
		return nil, err
	}
	if member != nil {
		return nil, response.NewConflict("you are already a member of this project")
	}

	var existing models.MembershipRequest
	err = s.db.Where("project_id = ? AND user_id = ? AND status IN ?",
		projectID, userID, []string{models.RequestPending, models.RequestRejected}).
		First(&existing).Error
	if err == nil {
		if existing.Status == models.RequestPending {
			return nil, response.NewConflict("you already have a pending request for this project")
		}
		return nil, response.NewConflict("a rejected request exists; withdraw it before submitting again")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewDatabaseError(err.Error())
	}

	request := models.MembershipRequest{
		ProjectID: projectID,
		UserID:    userID,
		Status:    models.RequestPending,
	}
	if err := s.db.Create(&request).Error; err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}
	return &request, nil
}

// ListForProject returns a project's requests, optionally filtered by
// status. Authorization (OWNER/ADMIN) is decided at the call site.
func (s *JoinRequestService) ListForProject(projectID uint, status string) ([]models.MembershipRequest, error) {
	query := s.db.Where("project_id = ?", projectID).Preload("User")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var requests []models.MembershipRequest
	if err := query.Order("created_at ASC").Find(&requests).Error; err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}
	return requests, nil
}

// ListForUser returns the requests the user has filed, newest first.
func (s *JoinRequestService) ListForUser(userID uint) ([]models.MembershipRequest, error) {
	var requests []models.MembershipRequest
	if err := s.db.Where("user_id = ?", userID).
		Preload("Project").
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}
	return requests, nil
}

// Approve transitions a PENDING request to APPROVED and enrolls the
// requester as MEMBER in one transaction. The status-guarded update doubles
// as an optimistic concurrency check: when two admins race, the second
// write observes a non-PENDING row and fails with FORBIDDEN.
func (s *JoinRequestService) Approve(requestID, actorUserID uint) (*models.MembershipRequest, error) {
	request, err := s.loadForDecision(requestID, actorUserID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.MembershipRequest{}).
			Where("id = ? AND status = ?", request.ID, models.RequestPending).
			Update("status", models.RequestApproved)
		if result.Error != nil {
			return response.NewDatabaseError(result.Error.Error())
		}
		if result.RowsAffected == 0 {
			return response.NewForbidden("request has already been processed")
		}

		// Member insertion is part of the same unit; a failure here rolls
		// the status back so no APPROVED request exists without a member.
		member := models.Member{
			ProjectID: request.ProjectID,
			UserID:    request.UserID,
			Role:      models.RoleMember,
		}
		if err := tx.Create(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return response.NewConflict("requester is already a member of this project")
			}
			return response.NewDatabaseError(err.Error())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	request.Status = models.RequestApproved
	return request, nil
}

// Reject transitions a PENDING request to REJECTED. Same optimistic guard
// as Approve; no membership is created.
func (s *JoinRequestService) Reject(requestID, actorUserID uint) (*models.MembershipRequest, error) {
	request, err := s.loadForDecision(requestID, actorUserID)
	if err != nil {
		return nil, err
	}

	result := s.db.Model(&models.MembershipRequest{}).
		Where("id = ? AND status = ?", request.ID, models.RequestPending).
		Update("status", models.RequestRejected)
	if result.Error != nil {
		return nil, response.NewDatabaseError(result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return nil, response.NewForbidden("request has already been processed")
	}

	request.Status = models.RequestRejected
	return request, nil
}

// Withdraw lets the requester delete their own PENDING or REJECTED
// request. Withdrawing a rejected request is the explicit cleanup that
// re-opens resubmission. Approved requests are history and stay.
func (s *JoinRequestService) Withdraw(requestID, actorUserID uint) error {
	var request models.MembershipRequest
	err := s.db.First(&request, requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewNotFound("request not found")
	}
	if err != nil {
		return response.NewDatabaseError(err.Error())
	}

	if request.UserID != actorUserID {
		return response.NewForbidden("only the requester may withdraw a request")
	}
	if request.Status == models.RequestApproved {
		return response.NewConflict("approved requests cannot be withdrawn")
	}

	if err := s.db.Delete(&request).Error; err != nil {
		return response.NewDatabaseError(err.Error())
	}
	return nil
}

// loadForDecision fetches a request and verifies the actor holds ADMIN or
// better on its project.
func (s *JoinRequestService) loadForDecision(requestID, actorUserID uint) (*models.MembershipRequest, error) {
	var request models.MembershipRequest
	err := s.db.First(&request, requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("request not found")
	}
	if err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}

	actor, err := s.members.GetMember(request.ProjectID, actorUserID)
	if err != nil {
		return nil, err
	}
	if actor == nil || !models.RoleAtLeast(actor.Role, models.RoleAdmin) {
		return nil, response.NewForbidden("insufficient role to process membership requests")
	}

	return &request, nil
}
