package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"task-automation-api/internal/dto"
	"task-automation-api/internal/response"
	"task-automation-api/internal/service"
)

// CardHandler handles board card HTTP requests
type CardHandler struct {
	cards service.CardService
	rules service.CardRuleService
}

// NewCardHandler creates a new instance of CardHandler
func NewCardHandler(cards service.CardService, rules service.CardRuleService) *CardHandler {
	return &CardHandler{cards: cards, rules: rules}
}

// CreateCard handles POST /cards
func (h *CardHandler) CreateCard(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}

	card, err := h.cards.CreateCard(c.Request.Context(), &req, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, card)
}

// GetCard handles GET /cards/:cardId
func (h *CardHandler) GetCard(c *gin.Context) {
	cardID, ok := parseUUIDParam(c, "cardId")
	if !ok {
		return
	}

	card, err := h.cards.GetCard(c.Request.Context(), cardID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, card)
}

// ListCards handles GET /columns/:columnId/cards
func (h *CardHandler) ListCards(c *gin.Context) {
	columnID, ok := parseUUIDParam(c, "columnId")
	if !ok {
		return
	}

	cards, err := h.cards.ListCards(c.Request.Context(), columnID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, cards)
}

// UpdateCard handles PATCH /cards/:cardId
func (h *CardHandler) UpdateCard(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	cardID, ok := parseUUIDParam(c, "cardId")
	if !ok {
		return
	}

	var req dto.UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}

	card, err := h.cards.UpdateCard(c.Request.Context(), cardID, &req, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, card)
}

// MoveCard handles POST /cards/:cardId/move
func (h *CardHandler) MoveCard(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	cardID, ok := parseUUIDParam(c, "cardId")
	if !ok {
		return
	}

	var req dto.MoveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}

	card, err := h.cards.MoveCard(c.Request.Context(), cardID, &req, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, card)
}

// DeleteCard handles DELETE /cards/:cardId
func (h *CardHandler) DeleteCard(c *gin.Context) {
	cardID, ok := parseUUIDParam(c, "cardId")
	if !ok {
		return
	}

	if err := h.cards.DeleteCard(c.Request.Context(), cardID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, nil)
}

// AddLabel handles POST /cards/:cardId/labels
func (h *CardHandler) AddLabel(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	cardID, ok := parseUUIDParam(c, "cardId")
	if !ok {
		return
	}

	var req dto.CardLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}
	labelID, _ := uuid.Parse(req.LabelID)

	if err := h.cards.AddLabel(c.Request.Context(), cardID, labelID, userID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, nil)
}

// RemoveLabel handles DELETE /cards/:cardId/labels/:labelId
func (h *CardHandler) RemoveLabel(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	cardID, ok := parseUUIDParam(c, "cardId")
	if !ok {
		return
	}
	labelID, ok := parseUUIDParam(c, "labelId")
	if !ok {
		return
	}

	if err := h.cards.RemoveLabel(c.Request.Context(), cardID, labelID, userID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, nil)
}

// GetCardLogs handles GET /cards/:cardId/automation-logs
func (h *CardHandler) GetCardLogs(c *gin.Context) {
	cardID, ok := parseUUIDParam(c, "cardId")
	if !ok {
		return
	}

	logs, err := h.rules.GetCardLogs(c.Request.Context(), cardID, 0)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, logs)
}
