package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"task-automation-api/internal/dto"
	"task-automation-api/internal/response"
	"task-automation-api/internal/service"
)

// TaskHandler handles task HTTP requests
type TaskHandler struct {
	tasks   service.TaskService
	buttons service.TaskButtonService
	rules   service.TaskRuleService
}

// NewTaskHandler creates a new instance of TaskHandler
func NewTaskHandler(tasks service.TaskService, buttons service.TaskButtonService, rules service.TaskRuleService) *TaskHandler {
	return &TaskHandler{tasks: tasks, buttons: buttons, rules: rules}
}

// CreateTask handles POST /tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), &req, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, task)
}

// GetTask handles GET /tasks/:taskId
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := parseUUIDParam(c, "taskId")
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c.Request.Context(), taskID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, task)
}

// ListTasks handles GET /projects/:projectId/tasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	projectID, ok := parseUUIDParam(c, "projectId")
	if !ok {
		return
	}

	tasks, err := h.tasks.ListTasks(c.Request.Context(), projectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, tasks)
}

// UpdateTask handles PATCH /tasks/:taskId
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	taskID, ok := parseUUIDParam(c, "taskId")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), taskID, &req, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/:taskId
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, ok := parseUUIDParam(c, "taskId")
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(c.Request.Context(), taskID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, nil)
}

// AddLabel handles POST /tasks/:taskId/labels
func (h *TaskHandler) AddLabel(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	taskID, ok := parseUUIDParam(c, "taskId")
	if !ok {
		return
	}

	var req dto.TaskLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}
	labelID, _ := uuid.Parse(req.LabelID)

	if err := h.tasks.AddLabel(c.Request.Context(), taskID, labelID, userID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, nil)
}

// RemoveLabel handles DELETE /tasks/:taskId/labels/:labelId
func (h *TaskHandler) RemoveLabel(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	taskID, ok := parseUUIDParam(c, "taskId")
	if !ok {
		return
	}
	labelID, ok := parseUUIDParam(c, "labelId")
	if !ok {
		return
	}

	if err := h.tasks.RemoveLabel(c.Request.Context(), taskID, labelID, userID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, nil)
}

// SetRecurrence handles PUT /tasks/:taskId/recurrence
func (h *TaskHandler) SetRecurrence(c *gin.Context) {
	taskID, ok := parseUUIDParam(c, "taskId")
	if !ok {
		return
	}

	var req dto.RecurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}

	if err := h.tasks.SetRecurrence(c.Request.Context(), taskID, &req); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, nil)
}

// ListVisibleButtons handles GET /tasks/:taskId/buttons
func (h *TaskHandler) ListVisibleButtons(c *gin.Context) {
	taskID, ok := parseUUIDParam(c, "taskId")
	if !ok {
		return
	}

	buttons, err := h.buttons.VisibleButtons(c.Request.Context(), taskID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	responses := make([]*dto.TaskButtonResponse, len(buttons))
	for i, button := range buttons {
		responses[i] = dto.ToTaskButtonResponse(button)
	}
	response.SendSuccess(c, http.StatusOK, responses)
}

// GetTaskLogs handles GET /tasks/:taskId/automation-logs
func (h *TaskHandler) GetTaskLogs(c *gin.Context) {
	taskID, ok := parseUUIDParam(c, "taskId")
	if !ok {
		return
	}

	logs, err := h.rules.GetTaskLogs(c.Request.Context(), taskID, 0)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, logs)
}
