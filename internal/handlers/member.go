package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tasktrace/tasktrace/internal/middleware"
	"github.com/tasktrace/tasktrace/internal/services"
	"github.com/tasktrace/tasktrace/pkg/response"
	"gorm.io/gorm"
)

type MemberHandler struct {
	memberService *services.MembershipService
	policy        *services.PolicyService
}

func NewMemberHandler(db *gorm.DB) *MemberHandler {
	return &MemberHandler{
		memberService: services.NewMembershipService(db),
		policy:        services.NewPolicyService(db),
	}
}

func memberID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("memberId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid member id")
		return 0, false
	}
	return uint(id), true
}

// List returns a project's members in join order
// GET /api/projects/:id/members
func (h *MemberHandler) List(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	if _, _, err := h.policy.Authorize(id, middleware.GetUserID(c), services.ActionViewProject); err != nil {
		response.Error(c, err)
		return
	}

	members, err := h.memberService.ListMembers(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, members)
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateRole changes a member's role
// PUT /api/projects/:id/members/:memberId/role
func (h *MemberHandler) UpdateRole(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	mid, ok := memberID(c)
	if !ok {
		return
	}

	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	_, actor, err := h.policy.Authorize(id, middleware.GetUserID(c), services.ActionChangeRoles)
	if err != nil {
		response.Error(c, err)
		return
	}

	member, err := h.memberService.UpdateRole(id, mid, req.Role, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, member)
}

// Remove evicts a member from the project
// DELETE /api/projects/:id/members/:memberId
func (h *MemberHandler) Remove(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	mid, ok := memberID(c)
	if !ok {
		return
	}

	_, actor, err := h.policy.Authorize(id, middleware.GetUserID(c), services.ActionRemoveMembers)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.memberService.RemoveMember(id, mid, actor); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "member removed"})
}

// Leave removes the caller's own membership
// POST /api/projects/:id/members/leave
func (h *MemberHandler) Leave(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	if err := h.memberService.Leave(id, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "left project"})
}
