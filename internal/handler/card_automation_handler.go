package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"task-automation-api/internal/dto"
	"task-automation-api/internal/response"
	"task-automation-api/internal/service"
)

// CardAutomationHandler handles card automation rule and button HTTP requests
type CardAutomationHandler struct {
	rules   service.CardRuleService
	buttons service.CardButtonService
}

// NewCardAutomationHandler creates a new instance of CardAutomationHandler
func NewCardAutomationHandler(rules service.CardRuleService, buttons service.CardButtonService) *CardAutomationHandler {
	return &CardAutomationHandler{rules: rules, buttons: buttons}
}

// CreateRule handles POST /card-automation/rules
func (h *CardAutomationHandler) CreateRule(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCardRuleRequest
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

// GetRule handles GET /card-automation/rules/:ruleId
func (h *CardAutomationHandler) GetRule(c *gin.Context) {
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

// ListRules handles GET /boards/:boardId/card-automation/rules
func (h *CardAutomationHandler) ListRules(c *gin.Context) {
	boardID, ok := parseUUIDParam(c, "boardId")
	if !ok {
		return
	}

	rules, err := h.rules.ListRules(c.Request.Context(), boardID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, rules)
}

// DeleteRule handles DELETE /card-automation/rules/:ruleId
func (h *CardAutomationHandler) DeleteRule(c *gin.Context) {
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

// CreateButton handles POST /card-automation/buttons
func (h *CardAutomationHandler) CreateButton(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCardButtonRequest
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

// ListButtons handles GET /boards/:boardId/card-automation/buttons
func (h *CardAutomationHandler) ListButtons(c *gin.Context) {
	boardID, ok := parseUUIDParam(c, "boardId")
	if !ok {
		return
	}

	buttons, err := h.rules.ListButtons(c.Request.Context(), boardID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, buttons)
}

// DeleteButton handles DELETE /card-automation/buttons/:buttonId
func (h *CardAutomationHandler) DeleteButton(c *gin.Context) {
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

// ExecuteButton handles POST /card-automation/buttons/:buttonId/execute
func (h *CardAutomationHandler) ExecuteButton(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	buttonID, ok := parseUUIDParam(c, "buttonId")
	if !ok {
		return
	}

	var req dto.ExecuteCardButtonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}
	cardID, _ := uuid.Parse(req.CardID)

	executed, err := h.buttons.ExecuteButton(c.Request.Context(), buttonID, cardID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.ExecuteButtonResponse{Executed: executed})
}
