package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"task-automation-api/internal/domain"
	"task-automation-api/internal/dto"
	"task-automation-api/internal/repository"
	"task-automation-api/internal/response"
)

// CardRuleService defines the interface for managing card automation rules
// and buttons.
type CardRuleService interface {
	CreateRule(ctx context.Context, req *dto.CreateCardRuleRequest, userID uuid.UUID) (*dto.CardRuleResponse, error)
	GetRule(ctx context.Context, id uuid.UUID) (*dto.CardRuleResponse, error)
	ListRules(ctx context.Context, boardID uuid.UUID) ([]*dto.CardRuleResponse, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error
	GetCardLogs(ctx context.Context, cardID uuid.UUID, limit int) ([]*dto.AutomationLogResponse, error)

	CreateButton(ctx context.Context, req *dto.CreateCardButtonRequest, userID uuid.UUID) (*dto.CardButtonResponse, error)
	ListButtons(ctx context.Context, boardID uuid.UUID) ([]*dto.CardButtonResponse, error)
	DeleteButton(ctx context.Context, id uuid.UUID) error
}

// cardRuleServiceImpl is the implementation of CardRuleService
type cardRuleServiceImpl struct {
	rules repository.CardAutomationRepository
}

// NewCardRuleService creates a new instance of CardRuleService
func NewCardRuleService(rules repository.CardAutomationRepository) CardRuleService {
	return &cardRuleServiceImpl{rules: rules}
}

// validCardActionTypes mirrors the card executor's registry
var validCardActionTypes = map[domain.CardActionType]struct{}{
	domain.CardActionMoveCard:         {},
	domain.CardActionMoveToTop:        {},
	domain.CardActionMoveToBottom:     {},
	domain.CardActionAssignUser:       {},
	domain.CardActionUnassignUser:     {},
	domain.CardActionAddLabel:         {},
	domain.CardActionRemoveLabel:      {},
	domain.CardActionSetDueDate:       {},
	domain.CardActionClearDueDate:     {},
	domain.CardActionSendNotification: {},
	domain.CardActionPostComment:      {},
}

func buildCardActions(requests []dto.ActionRequest) ([]domain.CardAutomationAction, error) {
	actions := make([]domain.CardAutomationAction, len(requests))
	for i, req := range requests {
		actionType := domain.CardActionType(req.ActionType)
		if _, ok := validCardActionTypes[actionType]; !ok {
			return nil, response.NewValidationError(fmt.Sprintf("Unknown action type: %s", req.ActionType), "")
		}
		actions[i] = domain.CardAutomationAction{
			ActionType:   actionType,
			ActionConfig: datatypes.JSON(req.ActionConfig),
			SortOrder:    req.SortOrder,
		}
	}
	return actions, nil
}

// CreateRule creates a card automation rule with its actions
func (s *cardRuleServiceImpl) CreateRule(ctx context.Context, req *dto.CreateCardRuleRequest, userID uuid.UUID) (*dto.CardRuleResponse, error) {
	boardID, err := uuid.Parse(req.BoardID)
	if err != nil {
		return nil, response.NewValidationError("Invalid board ID", err.Error())
	}

	triggerType := domain.CardTriggerType(req.TriggerType)
	if !domain.ValidCardTriggerType(triggerType) {
		return nil, response.NewValidationError(fmt.Sprintf("Unknown trigger type: %s", req.TriggerType), "")
	}

	actions, err := buildCardActions(req.Actions)
	if err != nil {
		return nil, err
	}

	rule := &domain.CardAutomationRule{
		BoardID:       boardID,
		Name:          req.Name,
		Description:   req.Description,
		TriggerType:   triggerType,
		TriggerConfig: datatypes.JSON(req.TriggerConfig),
		IsActive:      true,
		CreatedByID:   userID,
		Actions:       actions,
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if err := s.rules.CreateRule(ctx, rule); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create rule", err.Error())
	}
	return dto.ToCardRuleResponse(rule), nil
}

// GetRule retrieves a rule by ID
func (s *cardRuleServiceImpl) GetRule(ctx context.Context, id uuid.UUID) (*dto.CardRuleResponse, error) {
	rule, err := s.rules.FindRuleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Rule not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch rule", err.Error())
	}
	return dto.ToCardRuleResponse(rule), nil
}

// ListRules retrieves all rules of a board
func (s *cardRuleServiceImpl) ListRules(ctx context.Context, boardID uuid.UUID) ([]*dto.CardRuleResponse, error) {
	rules, err := s.rules.FindRulesByBoard(ctx, boardID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch rules", err.Error())
	}
	responses := make([]*dto.CardRuleResponse, len(rules))
	for i, rule := range rules {
		responses[i] = dto.ToCardRuleResponse(rule)
	}
	return responses, nil
}

// DeleteRule deletes a rule with its actions
func (s *cardRuleServiceImpl) DeleteRule(ctx context.Context, id uuid.UUID) error {
	if _, err := s.rules.FindRuleByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFoundError("Rule not found", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to fetch rule", err.Error())
	}
	if err := s.rules.DeleteRule(ctx, id); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete rule", err.Error())
	}
	return nil
}

// GetCardLogs retrieves the most recent automation log entries for a card
func (s *cardRuleServiceImpl) GetCardLogs(ctx context.Context, cardID uuid.UUID, limit int) ([]*dto.AutomationLogResponse, error) {
	logs, err := s.rules.FindLogsByCard(ctx, cardID, limit)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch logs", err.Error())
	}
	responses := make([]*dto.AutomationLogResponse, len(logs))
	for i, log := range logs {
		responses[i] = dto.ToCardLogResponse(log)
	}
	return responses, nil
}

// CreateButton creates a card button with its actions
func (s *cardRuleServiceImpl) CreateButton(ctx context.Context, req *dto.CreateCardButtonRequest, userID uuid.UUID) (*dto.CardButtonResponse, error) {
	boardID, err := uuid.Parse(req.BoardID)
	if err != nil {
		return nil, response.NewValidationError("Invalid board ID", err.Error())
	}

	validated, err := buildCardActions(req.Actions)
	if err != nil {
		return nil, err
	}
	actions := make([]domain.CardButtonAction, len(validated))
	for i, a := range validated {
		actions[i] = domain.CardButtonAction{
			ActionType:   a.ActionType,
			ActionConfig: a.ActionConfig,
			SortOrder:    a.SortOrder,
		}
	}

	button := &domain.CardButton{
		BoardID:     boardID,
		Name:        req.Name,
		IsActive:    true,
		CreatedByID: userID,
		Actions:     actions,
	}
	if req.Icon != "" {
		button.Icon = req.Icon
	}
	if req.Color != "" {
		button.Color = req.Color
	}

	if err := s.rules.CreateButton(ctx, button); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create button", err.Error())
	}
	return dto.ToCardButtonResponse(button), nil
}

// ListButtons retrieves all buttons of a board
func (s *cardRuleServiceImpl) ListButtons(ctx context.Context, boardID uuid.UUID) ([]*dto.CardButtonResponse, error) {
	buttons, err := s.rules.FindButtonsByBoard(ctx, boardID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch buttons", err.Error())
	}
	responses := make([]*dto.CardButtonResponse, len(buttons))
	for i, button := range buttons {
		responses[i] = dto.ToCardButtonResponse(button)
	}
	return responses, nil
}

// DeleteButton deletes a button with its actions
func (s *cardRuleServiceImpl) DeleteButton(ctx context.Context, id uuid.UUID) error {
	if _, err := s.rules.FindButtonByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFoundError("Button not found", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to fetch button", err.Error())
	}
	if err := s.rules.DeleteButton(ctx, id); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete button", err.Error())
	}
	return nil
}
