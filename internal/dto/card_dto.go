package dto

import (
	"time"

	"github.com/google/uuid"

	"task-automation-api/internal/domain"
)

// CreateCardRequest represents the request to create a new card
type CreateCardRequest struct {
	ColumnID    string     `json:"columnId" binding:"required,uuid"`
	Title       string     `json:"title" binding:"required,max=255"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	AssigneeID  *string    `json:"assigneeId" binding:"omitempty,uuid"`
}

// UpdateCardRequest represents the request to update a card
type UpdateCardRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=255"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	AssigneeID  *string    `json:"assigneeId" binding:"omitempty,uuid"`
}

// MoveCardRequest represents the request to move a card to another column
type MoveCardRequest struct {
	ColumnID string `json:"columnId" binding:"required,uuid"`
}

// CardLabelRequest represents a card label attach or detach request
type CardLabelRequest struct {
	LabelID string `json:"labelId" binding:"required,uuid"`
}

// CardResponse represents the card response
type CardResponse struct {
	CardID      uuid.UUID  `json:"cardId"`
	ColumnID    uuid.UUID  `json:"columnId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	SortOrder   int        `json:"sortOrder"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	AssigneeID  *uuid.UUID `json:"assigneeId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ToCardResponse converts a card domain model to its response DTO
func ToCardResponse(card *domain.BoardCard) *CardResponse {
	return &CardResponse{
		CardID:      card.ID,
		ColumnID:    card.ColumnID,
		Title:       card.Title,
		Description: card.Description,
		SortOrder:   card.SortOrder,
		DueDate:     card.DueDate,
		AssigneeID:  card.AssigneeID,
		CreatedAt:   card.CreatedAt,
		UpdatedAt:   card.UpdatedAt,
	}
}
