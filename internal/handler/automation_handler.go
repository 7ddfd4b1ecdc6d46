package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"task-automation-api/internal/dto"
	"task-automation-api/internal/response"
	"task-automation-api/internal/service"
)

// AutomationHandler handles task automation rule and button HTTP requests
type AutomationHandler struct {
	rules   service.TaskRuleService
	buttons service.TaskButtonService
}

// NewAutomationHandler creates a new instance of AutomationHandler
func NewAutomationHandler(rules service.TaskRuleService, buttons service.TaskButtonService) *AutomationHandler {
	return &AutomationHandler{rules: rules, buttons: buttons}
}

// CreateRule handles POST /automation/rules
func (h *AutomationHandler) CreateRule(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}

	rule, err := h.rules.CreateRule(c.Request.Context(), &req, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, rule)
}

// GetRule handles GET /automation/rules/:ruleId
func (h *AutomationHandler) GetRule(c *gin.Context) {
	ruleID, ok := parseUUIDParam(c, "ruleId")
	if !ok {
		return
	}

	rule, err := h.rules.GetRule(c.Request.Context(), ruleID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, rule)
}

// ListRules handles GET /organizations/:orgId/automation/rules
func (h *AutomationHandler) ListRules(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "orgId")
	if !ok {
		return
	}

	rules, err := h.rules.ListRules(c.Request.Context(), orgID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, rules)
}

// UpdateRule handles PATCH /automation/rules/:ruleId
func (h *AutomationHandler) UpdateRule(c *gin.Context) {
	ruleID, ok := parseUUIDParam(c, "ruleId")
	if !ok {
		return
	}

	var req dto.UpdateTaskRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}

	rule, err := h.rules.UpdateRule(c.Request.Context(), ruleID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, rule)
}

// DeleteRule handles DELETE /automation/rules/:ruleId
func (h *AutomationHandler) DeleteRule(c *gin.Context) {
	ruleID, ok := parseUUIDParam(c, "ruleId")
	if !ok {
		return
	}

	if err := h.rules.DeleteRule(c.Request.Context(), ruleID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, nil)
}

// GetRuleLogs handles GET /automation/rules/:ruleId/logs
func (h *AutomationHandler) GetRuleLogs(c *gin.Context) {
	ruleID, ok := parseUUIDParam(c, "ruleId")
	if !ok {
		return
	}

	logs, err := h.rules.GetRuleLogs(c.Request.Context(), ruleID, 0)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, logs)
}

// CreateButton handles POST /automation/buttons
func (h *AutomationHandler) CreateButton(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTaskButtonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}

	button, err := h.rules.CreateButton(c.Request.Context(), &req, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, button)
}

// ListButtons handles GET /organizations/:orgId/automation/buttons
func (h *AutomationHandler) ListButtons(c *gin.Context) {
	orgID, ok := parseUUIDParam(c, "orgId")
	if !ok {
		return
	}

	buttons, err := h.rules.ListButtons(c.Request.Context(), orgID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, buttons)
}

// DeleteButton handles DELETE /automation/buttons/:buttonId
func (h *AutomationHandler) DeleteButton(c *gin.Context) {
	buttonID, ok := parseUUIDParam(c, "buttonId")
	if !ok {
		return
	}

	if err := h.rules.DeleteButton(c.Request.Context(), buttonID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, nil)
}

// ExecuteButton handles POST /automation/buttons/:buttonId/execute
func (h *AutomationHandler) ExecuteButton(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	buttonID, ok := parseUUIDParam(c, "buttonId")
	if !ok {
		return
	}

	var req dto.ExecuteTaskButtonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}
	taskID, _ := uuid.Parse(req.TaskID)

	executed, err := h.buttons.ExecuteButton(c.Request.Context(), buttonID, taskID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.ExecuteButtonResponse{Executed: executed})
}
