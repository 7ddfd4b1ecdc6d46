package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"task-automation-api/internal/domain"
	"task-automation-api/internal/dto"
	"task-automation-api/internal/repository"
	"task-automation-api/internal/response"
)

// CardService defines the interface for board card business logic. Like
// TaskService, mutations fire the corresponding automation triggers.
type CardService interface {
	CreateCard(ctx context.Context, req *dto.CreateCardRequest, userID uuid.UUID) (*dto.CardResponse, error)
	GetCard(ctx context.Context, id uuid.UUID) (*dto.CardResponse, error)
	ListCards(ctx context.Context, columnID uuid.UUID) ([]*dto.CardResponse, error)
	UpdateCard(ctx context.Context, id uuid.UUID, req *dto.UpdateCardRequest, userID uuid.UUID) (*dto.CardResponse, error)
	MoveCard(ctx context.Context, id uuid.UUID, req *dto.MoveCardRequest, userID uuid.UUID) (*dto.CardResponse, error)
	DeleteCard(ctx context.Context, id uuid.UUID) error
	AddLabel(ctx context.Context, cardID, labelID, userID uuid.UUID) error
	RemoveLabel(ctx context.Context, cardID, labelID, userID uuid.UUID) error
}

// cardServiceImpl is the implementation of CardService
type cardServiceImpl struct {
	cards      repository.CardRepository
	boards     repository.BoardRepository
	labels     repository.CardLabelRepository
	automation CardAutomationService
	logger     *zap.Logger
}

// NewCardService creates a new instance of CardService
func NewCardService(
	cards repository.CardRepository,
	boards repository.BoardRepository,
	labels repository.CardLabelRepository,
	automation CardAutomationService,
	logger *zap.Logger,
) CardService {
	return &cardServiceImpl{
		cards:      cards,
		boards:     boards,
		labels:     labels,
		automation: automation,
		logger:     logger,
	}
}

// CreateCard creates a card at the end of its column and fires the
// card-created trigger.
func (s *cardServiceImpl) CreateCard(ctx context.Context, req *dto.CreateCardRequest, userID uuid.UUID) (*dto.CardResponse, error) {
	columnID, err := uuid.Parse(req.ColumnID)
	if err != nil {
		return nil, response.NewValidationError("Invalid column ID", err.Error())
	}
	if _, err := s.boards.FindColumnByID(ctx, columnID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Column not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch column", err.Error())
	}

	maxSort, err := s.cards.MaxSortOrderInColumn(ctx, columnID, nil)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to determine sort order", err.Error())
	}

	card := &domain.BoardCard{
		ColumnID:    columnID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		SortOrder:   maxSort + 1,
		CreatedByID: userID,
	}
	if req.AssigneeID != nil {
		assignee, err := uuid.Parse(*req.AssigneeID)
		if err != nil {
			return nil, response.NewValidationError("Invalid assignee ID", err.Error())
		}
		card.AssigneeID = &assignee
	}
	if err := s.cards.Create(ctx, card); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create card", err.Error())
	}

	s.fireTrigger("card_created", card.ID, func() error {
		_, err := s.automation.TriggerCardCreated(ctx, card.ID, userID)
		return err
	})

	return dto.ToCardResponse(card), nil
}

// GetCard retrieves a card by ID
func (s *cardServiceImpl) GetCard(ctx context.Context, id uuid.UUID) (*dto.CardResponse, error) {
	card, err := s.cards.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Card not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch card", err.Error())
	}
	return dto.ToCardResponse(card), nil
}

// ListCards retrieves all cards of a column in sort order
func (s *cardServiceImpl) ListCards(ctx context.Context, columnID uuid.UUID) ([]*dto.CardResponse, error) {
	cards, err := s.cards.FindByColumnID(ctx, columnID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch cards", err.Error())
	}
	responses := make([]*dto.CardResponse, len(cards))
	for i, card := range cards {
		responses[i] = dto.ToCardResponse(card)
	}
	return responses, nil
}

// UpdateCard applies the requested changes and fires the card-updated trigger
func (s *cardServiceImpl) UpdateCard(ctx context.Context, id uuid.UUID, req *dto.UpdateCardRequest, userID uuid.UUID) (*dto.CardResponse, error) {
	card, err := s.cards.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Card not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch card", err.Error())
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
		card.Title = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
		card.Description = *req.Description
	}
	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
		card.DueDate = req.DueDate
	}
	if req.AssigneeID != nil {
		assignee, err := uuid.Parse(*req.AssigneeID)
		if err != nil {
			return nil, response.NewValidationError("Invalid assignee ID", err.Error())
		}
		fields["assignee_id"] = assignee
		card.AssigneeID = &assignee
	}

	if err := s.cards.UpdateFields(ctx, id, fields); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update card", err.Error())
	}

	s.fireTrigger("card_updated", id, func() error {
		_, err := s.automation.TriggerCardUpdated(ctx, id, userID)
		return err
	})

	return dto.ToCardResponse(card), nil
}

// MoveCard moves a card to another column on the same board, appending it to
// the target column, and fires the card-moved trigger with both columns.
func (s *cardServiceImpl) MoveCard(ctx context.Context, id uuid.UUID, req *dto.MoveCardRequest, userID uuid.UUID) (*dto.CardResponse, error) {
	targetColumnID, err := uuid.Parse(req.ColumnID)
	if err != nil {
		return nil, response.NewValidationError("Invalid column ID", err.Error())
	}

	card, err := s.cards.FindByIDWithColumn(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Card not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch card", err.Error())
	}
	fromColumnID := card.ColumnID

	if _, err := s.boards.FindColumnByIDInBoard(ctx, targetColumnID, card.Column.BoardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewValidationError("Target column is not on the card's board", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch column", err.Error())
	}

	maxSort, err := s.cards.MaxSortOrderInColumn(ctx, targetColumnID, &card.ID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to determine sort order", err.Error())
	}
	newSort := maxSort + 1

	if err := s.cards.UpdateFields(ctx, id, map[string]interface{}{
		"column_id":  targetColumnID,
		"sort_order": newSort,
	}); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to move card", err.Error())
	}
	card.ColumnID = targetColumnID
	card.SortOrder = newSort

	s.fireTrigger("card_moved", id, func() error {
		_, err := s.automation.TriggerCardMoved(ctx, id, userID, fromColumnID, targetColumnID)
		return err
	})

	return dto.ToCardResponse(card), nil
}

// DeleteCard soft deletes a card
func (s *cardServiceImpl) DeleteCard(ctx context.Context, id uuid.UUID) error {
	if _, err := s.cards.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFoundError("Card not found", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to fetch card", err.Error())
	}
	if err := s.cards.Delete(ctx, id); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete card", err.Error())
	}
	return nil
}

// AddLabel attaches a board label to a card and fires the label-added trigger
func (s *cardServiceImpl) AddLabel(ctx context.Context, cardID, labelID, userID uuid.UUID) error {
	card, err := s.cards.FindByIDWithColumn(ctx, cardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFoundError("Card not found", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to fetch card", err.Error())
	}

	if _, err := s.labels.FindByIDInBoard(ctx, labelID, card.Column.BoardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFoundError("Label not found on board", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to fetch label", err.Error())
	}

	if err := s.labels.AssignLabel(ctx, cardID, labelID); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to assign label", err.Error())
	}

	s.fireTrigger("label_added", cardID, func() error {
		_, err := s.automation.TriggerLabelAdded(ctx, cardID, userID, labelID)
		return err
	})
	return nil
}

// RemoveLabel detaches a label from a card and fires the label-removed trigger
func (s *cardServiceImpl) RemoveLabel(ctx context.Context, cardID, labelID, userID uuid.UUID) error {
	if err := s.labels.UnassignLabel(ctx, cardID, labelID); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to remove label", err.Error())
	}
	s.fireTrigger("label_removed", cardID, func() error {
		_, err := s.automation.TriggerLabelRemoved(ctx, cardID, userID, labelID)
		return err
	})
	return nil
}

func (s *cardServiceImpl) fireTrigger(name string, cardID uuid.UUID, fn func() error) {
	if err := fn(); err != nil {
		s.logger.Error("Automation trigger failed",
			zap.String("trigger", name),
			zap.String("card_id", cardID.String()),
			zap.Error(err),
		)
	}
}
