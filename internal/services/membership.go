package services

import (
	"errors"

	"github.com/tasktrace/tasktrace/internal/models"
	"github.com/tasktrace/tasktrace/pkg/response"
	"gorm.io/gorm"
)

// MembershipService is the authoritative store of who belongs to which
// project at what role. All membership mutations go through it.
type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// GetMember returns the membership of userID in projectID, or nil when
// the user is not a member. The nil result is not an error.
func (s *MembershipService) GetMember(projectID, userID uint) (*models.Member, error) {
	var member models.Member
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}
	return &member, nil
}

// ListMembers returns all members of a project with user info attached.
func (s *MembershipService) ListMembers(projectID uint) ([]models.Member, error) {
	var members []models.Member
	if err := s.db.Where("project_id = ?", projectID).
		Preload("User").
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}
	return members, nil
}

// AddMember inserts a membership row. Fails with CONFLICT when the
// (project, user) pair already has one.
func (s *MembershipService) AddMember(projectID, userID uint, role string) (*models.Member, error) {
	if !models.IsValidRole(role) {
		return nil, response.NewValidation("invalid member role")
	}

	existing, err := s.GetMember(projectID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, response.NewConflict("user is already a member of this project")
	}

	member := models.Member{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}
	if err := s.db.Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflict("user is already a member of this project")
		}
		return nil, response.NewDatabaseError(err.Error())
	}
	return &member, nil
}

// UpdateRole changes a member's role on behalf of actor.
//
// OWNER may reassign any non-owner role; ADMIN may only move other members
// between MEMBER and ADMIN. The OWNER role itself can be neither assigned
// nor taken away here: ownership transfer does not exist as an operation.
func (s *MembershipService) UpdateRole(projectID, memberID uint, newRole string, actor *models.Member) (*models.Member, error) {
	if !models.IsValidRole(newRole) {
		return nil, response.NewValidation("invalid member role")
	}
	if newRole == models.RoleOwner {
		return nil, response.NewForbidden("ownership cannot be reassigned")
	}

	var target models.Member
	err := s.db.Where("id = ? AND project_id = ?", memberID, projectID).First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("member not found in this project")
	}
	if err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}

	if target.Role == models.RoleOwner {
		return nil, response.NewForbidden("the owner's role cannot be changed")
	}

	switch actor.Role {
	case models.RoleOwner:
		// any non-owner reassignment allowed
	case models.RoleAdmin:
		// newRole != OWNER and target is not OWNER, both checked above
	default:
		return nil, response.NewForbidden("insufficient role to change member roles")
	}

	target.Role = newRole
	if err := s.db.Save(&target).Error; err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}
	return &target, nil
}

// RemoveMember deletes a member on behalf of actor. The owner can never be
// removed; self-removal must use Leave; ADMIN may only remove plain
// members.
func (s *MembershipService) RemoveMember(projectID, memberID uint, actor *models.Member) error {
	var target models.Member
	err := s.db.Where("id = ? AND project_id = ?", memberID, projectID).First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewNotFound("member not found in this project")
	}
	if err != nil {
		return response.NewDatabaseError(err.Error())
	}

	if target.Role == models.RoleOwner {
		return response.NewForbidden("the project owner cannot be removed")
	}
	if target.ID == actor.ID {
		return response.NewForbidden("use the leave operation to remove yourself")
	}

	switch actor.Role {
	case models.RoleOwner:
		// any non-owner target allowed
	case models.RoleAdmin:
		if target.Role != models.RoleMember {
			return response.NewForbidden("admins may only remove plain members")
		}
	default:
		return response.NewForbidden("insufficient role to remove members")
	}

	if err := s.db.Delete(&target).Error; err != nil {
		return response.NewDatabaseError(err.Error())
	}
	return nil
}

// Leave removes the caller's own membership. Owners cannot leave; they
// must delete the project instead.
func (s *MembershipService) Leave(projectID, userID uint) error {
	member, err := s.GetMember(projectID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return response.NewNotFound("you are not a member of this project")
	}
	if member.Role == models.RoleOwner {
		return response.NewForbidden("owners cannot leave their project; delete it instead")
	}

	if err := s.db.Delete(member).Error; err != nil {
		return response.NewDatabaseError(err.Error())
	}
	return nil
}
