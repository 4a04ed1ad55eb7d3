package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tasktrace/tasktrace/internal/middleware"
	"github.com/tasktrace/tasktrace/internal/services"
	"github.com/tasktrace/tasktrace/pkg/response"
	"gorm.io/gorm"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(db *gorm.DB) *TaskHandler {
	return &TaskHandler{
		taskService: services.NewTaskService(db),
	}
}

func taskID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("taskId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return 0, false
	}
	return uint(id), true
}

// List returns a project's tasks with optional filters
// GET /api/projects/:id/tasks
func (h *TaskHandler) List(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	var req services.TaskListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.taskService.List(id, middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// GetByID returns one task
// GET /api/projects/:id/tasks/:taskId
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	tid, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.Get(id, tid, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, task)
}

// Create adds a task to the project
// POST /api/projects/:id/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Create(id, middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, task)
}

// Update modifies a task
// PUT /api/projects/:id/tasks/:taskId
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	tid, ok := taskID(c)
	if !ok {
		return
	}

	var req services.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Update(id, tid, middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, task)
}

// Delete removes a task
// DELETE /api/projects/:id/tasks/:taskId
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	tid, ok := taskID(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(id, tid, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "task deleted"})
}
