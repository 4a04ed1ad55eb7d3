package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/tasktrace/tasktrace/internal/middleware"
	"github.com/tasktrace/tasktrace/internal/services"
	"github.com/tasktrace/tasktrace/pkg/response"
	"gorm.io/gorm"
)

type InvitationHandler struct {
	invitationService *services.InvitationService
	policy            *services.PolicyService
}

func NewInvitationHandler(db *gorm.DB) *InvitationHandler {
	return &InvitationHandler{
		invitationService: services.NewInvitationService(db),
		policy:            services.NewPolicyService(db),
	}
}

// Generate creates or regenerates the project's invitation code
// POST /api/projects/:id/invitation
func (h *InvitationHandler) Generate(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	if _, _, err := h.policy.Authorize(id, middleware.GetUserID(c), services.ActionManageInvitation); err != nil {
		response.Error(c, err)
		return
	}

	invitation, err := h.invitationService.GenerateCode(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, invitation)
}

// Get returns the project's current invitation code
// GET /api/projects/:id/invitation
func (h *InvitationHandler) Get(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	if _, _, err := h.policy.Authorize(id, middleware.GetUserID(c), services.ActionManageInvitation); err != nil {
		response.Error(c, err)
		return
	}

	invitation, err := h.invitationService.GetCode(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, invitation)
}

type redeemRequest struct {
	Code string `json:"code" binding:"required"`
}

// Redeem exchanges an invitation code for membership
// POST /api/projects/:id/invitation/redeem
func (h *InvitationHandler) Redeem(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.invitationService.Redeem(id, req.Code, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, member)
}
