package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tasktrace/tasktrace/internal/services"
)

const ContextRequestID = "request_id"

// AuditLog records write operations (POST/PUT/DELETE) to the activity
// trail. Each request gets a correlation id, available to handlers via
// ContextRequestID.
func AuditLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set(ContextRequestID, requestID)

		method := c.Request.Method
		if method != "POST" && method != "PUT" && method != "DELETE" {
			c.Next()
			return
		}

		c.Next()

		// After handler — record the activity entry
		userID := GetUserID(c)
		name := GetName(c)
		status := c.Writer.Status()

		module, action := parseRouteInfo(c.FullPath(), method)

		var uid *uint
		if userID > 0 {
			uid = &userID
		}

		var pid *uint
		if raw := c.Param("id"); raw != "" && strings.Contains(c.FullPath(), "/projects/") {
			if n, err := strconv.ParseUint(raw, 10, 32); err == nil {
				v := uint(n)
				pid = &v
			}
		}

		services.RecordActivity(&services.ActivityEntry{
			Level:     levelForStatus(status),
			Module:    module,
			Action:    action,
			Message:   formatAuditMessage(name, method, c.Request.URL.Path, status),
			UserID:    uid,
			ProjectID: pid,
			RequestID: requestID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Extra: map[string]interface{}{
				"method": method,
				"path":   c.Request.URL.Path,
				"status": status,
			},
		})
	}
}

func levelForStatus(status int) string {
	switch {
	case status >= 500:
		return "error"
	case status >= 400:
		return "warning"
	default:
		return "info"
	}
}

// parseRouteInfo extracts module and action from a Gin route pattern.
// e.g. "/api/projects/:id" + "PUT" → module="projects", action="Update"
func parseRouteInfo(fullPath, method string) (module, action string) {
	path := strings.TrimPrefix(fullPath, "/api/")

	parts := strings.SplitN(path, "/", 2)
	module = parts[0]
	if module == "" {
		module = "unknown"
	}

	switch method {
	case "POST":
		action = "Create"
	case "PUT":
		action = "Update"
	case "DELETE":
		action = "Delete"
	default:
		action = method
	}

	return module, action
}

// formatAuditMessage creates a human-readable activity message.
func formatAuditMessage(name, method, path string, status int) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString(" ")
	b.WriteString(method)
	b.WriteString(" ")
	b.WriteString(path)
	b.WriteString(" -> ")
	if status >= 200 && status < 300 {
		b.WriteString("OK")
	} else {
		b.WriteString("Failed")
	}
	return b.String()
}
