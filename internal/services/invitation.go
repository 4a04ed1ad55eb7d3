package services

import (
	"errors"
	"time"

	"github.com/tasktrace/tasktrace/internal/models"
	"github.com/tasktrace/tasktrace/internal/utils"
	"github.com/tasktrace/tasktrace/pkg/response"
	"gorm.io/gorm"
)

// InvitationService manages the single active invitation code per project
// and its redemption. Authorization for code management is decided by the
// policy engine at the call site.
type InvitationService struct {
	db      *gorm.DB
	members *MembershipService
	now     func() time.Time
}

func NewInvitationService(db *gorm.DB) *InvitationService {
	return &InvitationService{
		db:      db,
		members: NewMembershipService(db),
		now:     time.Now,
	}
}

// GenerateCode creates the project's invitation code, or overwrites code
// and expiry in place if one already exists. The previous code is
// invalidated immediately.
func (s *InvitationService) GenerateCode(projectID uint) (*models.InvitationCode, error) {
	code, err := utils.NewInviteCode(models.CodeLength)
	if err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}
	expiresAt := s.now().Add(models.DefaultCodeTTL)

	var existing models.InvitationCode
	dbErr := s.db.Where("project_id = ?", projectID).First(&existing).Error
	if dbErr == nil {
		existing.Code = code
		existing.ExpiresAt = expiresAt
		if err := s.db.Save(&existing).Error; err != nil {
			return nil, response.NewDatabaseError(err.Error())
		}
		return &existing, nil
	}
	if !errors.Is(dbErr, gorm.ErrRecordNotFound) {
		return nil, response.NewDatabaseError(dbErr.Error())
	}

	invitation := models.InvitationCode{
		ProjectID: projectID,
		Code:      code,
		ExpiresAt: expiresAt,
	}
	if err := s.db.Create(&invitation).Error; err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}
	return &invitation, nil
}

// GetCode returns the project's current invitation code, expired or not.
func (s *InvitationService) GetCode(projectID uint) (*models.InvitationCode, error) {
	var invitation models.InvitationCode
	err := s.db.Where("project_id = ?", projectID).First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("no invitation code for this project")
	}
	if err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}
	return &invitation, nil
}

// Redeem exchanges a submitted code for MEMBER-level membership.
//
// Validation happens before any store access. Unknown and expired codes
// are indistinguishable to the caller so codes cannot be probed. Redeeming
// while already a member is a no-op success.
func (s *InvitationService) Redeem(projectID uint, code string, userID uint) (*models.Member, error) {
	if !utils.IsValidInviteCode(code, models.CodeLength) {
		return nil, response.NewValidation("invitation code must be exactly 8 alphanumeric characters")
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, response.NewDatabaseError(err.Error())
	}

	var invitation models.InvitationCode
	err := s.db.Where("project_id = ? AND code = ?", projectID, code).First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("invalid or expired invitation code")
	}
	if err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}
	if invitation.ExpiredAt(s.now()) {
		return nil, response.NewNotFound("invalid or expired invitation code")
	}

	existing, err := s.members.GetMember(projectID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	member, err := s.members.AddMember(projectID, userID, models.RoleMember)
	if err != nil {
		// A concurrent redemption may have inserted the row first;
		// membership is idempotent per user, not a scarce resource.
		if response.IsKind(err, response.KindConflict) {
			return s.members.GetMember(projectID, userID)
		}
		return nil, err
	}
	return member, nil
}

// PurgeExpired deletes codes whose expiry is older than the grace window.
// Expired codes are already unredeemable; this is storage hygiene only.
func (s *InvitationService) PurgeExpired(grace time.Duration) (int64, error) {
	cutoff := s.now().Add(-grace)
	result := s.db.Where("expires_at < ?", cutoff).Delete(&models.InvitationCode{})
	if result.Error != nil {
		return 0, response.NewDatabaseError(result.Error.Error())
	}
	return result.RowsAffected, nil
}
