package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tasktrace/tasktrace/internal/middleware"
	"github.com/tasktrace/tasktrace/internal/services"
	"github.com/tasktrace/tasktrace/pkg/response"
	"gorm.io/gorm"
)

type JoinRequestHandler struct {
	requestService *services.JoinRequestService
	policy         *services.PolicyService
}

func NewJoinRequestHandler(db *gorm.DB) *JoinRequestHandler {
	return &JoinRequestHandler{
		requestService: services.NewJoinRequestService(db),
		policy:         services.NewPolicyService(db),
	}
}

func requestID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("requestId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return 0, false
	}
	return uint(id), true
}

// Submit files a membership request for the caller
// POST /api/projects/:id/requests
func (h *JoinRequestHandler) Submit(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	request, err := h.requestService.Submit(id, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, request)
}

// List returns a project's membership requests
// GET /api/projects/:id/requests?status=PENDING
func (h *JoinRequestHandler) List(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	if _, _, err := h.policy.Authorize(id, middleware.GetUserID(c), services.ActionManageRequests); err != nil {
		response.Error(c, err)
		return
	}

	requests, err := h.requestService.ListForProject(id, c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, requests)
}

// Mine returns the caller's own requests across projects
// GET /api/requests/mine
func (h *JoinRequestHandler) Mine(c *gin.Context) {
	requests, err := h.requestService.ListForUser(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, requests)
}

// Approve accepts a pending request and enrolls the requester
// POST /api/requests/:requestId/approve
func (h *JoinRequestHandler) Approve(c *gin.Context) {
	rid, ok := requestID(c)
	if !ok {
		return
	}

	request, err := h.requestService.Approve(rid, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, request)
}

// Reject declines a pending request
// POST /api/requests/:requestId/reject
func (h *JoinRequestHandler) Reject(c *gin.Context) {
	rid, ok := requestID(c)
	if !ok {
		return
	}

	request, err := h.requestService.Reject(rid, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, request)
}

// Withdraw deletes the caller's own pending or rejected request
// DELETE /api/requests/:requestId
func (h *JoinRequestHandler) Withdraw(c *gin.Context) {
	rid, ok := requestID(c)
	if !ok {
		return
	}

	if err := h.requestService.Withdraw(rid, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "request withdrawn"})
}
