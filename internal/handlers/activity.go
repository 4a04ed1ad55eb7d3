package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/tasktrace/tasktrace/internal/middleware"
	"github.com/tasktrace/tasktrace/internal/services"
	"github.com/tasktrace/tasktrace/pkg/response"
	"gorm.io/gorm"
)

type ActivityHandler struct {
	activityService *services.ActivityService
}

func NewActivityHandler(db *gorm.DB) *ActivityHandler {
	return &ActivityHandler{
		activityService: services.NewActivityService(db),
	}
}

// List returns a project's activity trail, newest first
// GET /api/projects/:id/activity
func (h *ActivityHandler) List(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	var req services.ActivityListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.activityService.ListForProject(id, middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}
