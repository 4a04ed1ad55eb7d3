package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tasktrace/tasktrace/internal/middleware"
	"github.com/tasktrace/tasktrace/internal/services"
	"github.com/tasktrace/tasktrace/pkg/response"
	"gorm.io/gorm"
)

type UserHandler struct {
	authService *services.AuthService
}

func NewUserHandler(db *gorm.DB, authService *services.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// sameUser verifies the :userId route parameter names the session user.
// Users may only operate on their own account; a mismatch is treated as a
// credential problem, not a permission one.
func sameUser(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return 0, false
	}
	if uint(id) != middleware.GetUserID(c) {
		response.Unauthorized(c, "token does not match the requested user")
		return 0, false
	}
	return uint(id), true
}

// Get returns the user's own account
// GET /api/users/:userId
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := sameUser(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUserByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

// Update edits the user's own profile
// PUT /api/users/:userId
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := sameUser(c)
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.authService.UpdateProfile(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

// Delete removes the user's own account and owned projects
// DELETE /api/users/:userId
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := sameUser(c)
	if !ok {
		return
	}

	if err := h.authService.DeleteAccount(id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "account deleted"})
}
