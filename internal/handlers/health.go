package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/tasktrace/tasktrace/internal/models"
	"github.com/tasktrace/tasktrace/internal/services"
)

// HealthHandler reports subsystem status.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
// GET /health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	queue := services.GetActivityQueue()
	queueMode := "sync"
	if queue != nil && queue.IsAsync() {
		queueMode = "async (Redis)"
	}

	var pendingRequests int64
	models.GetDB().Model(&models.MembershipRequest{}).
		Where("status = ?", models.RequestPending).
		Count(&pendingRequests)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "tasktrace",
		"components": gin.H{
			"database":         dbStatus,
			"queue_mode":       queueMode,
			"pending_requests": pendingRequests,
		},
	})
}
