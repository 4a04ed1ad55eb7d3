package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/tasktrace/tasktrace/internal/middleware"
	"github.com/tasktrace/tasktrace/internal/services"
	"github.com/tasktrace/tasktrace/pkg/response"
	"gorm.io/gorm"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
	workdayService   *services.WorkdayService
}

func NewAnalyticsHandler(db *gorm.DB) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: services.NewAnalyticsService(db),
		workdayService:   services.NewWorkdayService(),
	}
}

// Stats returns task statistics for a project
// GET /api/projects/:id/stats?country=US
func (h *AnalyticsHandler) Stats(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	country := c.DefaultQuery("country", "NONE")

	stats, err := h.analyticsService.Stats(id, middleware.GetUserID(c), country)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// Countries lists the calendars available for due-date math
// GET /api/analytics/countries
func (h *AnalyticsHandler) Countries(c *gin.Context) {
	response.Success(c, h.workdayService.SupportedCountries())
}
