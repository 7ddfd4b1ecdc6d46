package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"task-automation-api/internal/repository"
)

// CardButtonService executes manually-triggered card buttons. Execution
// semantics match TaskButtonService: one transaction, no audit logs, and a
// boolean result.
type CardButtonService interface {
	ExecuteButton(ctx context.Context, buttonID, cardID, triggeredBy uuid.UUID) (bool, error)
}

// cardButtonServiceImpl is the default implementation of CardButtonService
type cardButtonServiceImpl struct {
	db       *gorm.DB
	cards    repository.CardRepository
	rules    repository.CardAutomationRepository
	executor *CardActionExecutor
	metrics  AutomationMetrics
	logger   *zap.Logger
}

// NewCardButtonService creates a new instance of CardButtonService.
// metrics may be nil.
func NewCardButtonService(
	db *gorm.DB,
	cards repository.CardRepository,
	rules repository.CardAutomationRepository,
	executor *CardActionExecutor,
	metrics AutomationMetrics,
	logger *zap.Logger,
) CardButtonService {
	return &cardButtonServiceImpl{
		db:       db,
		cards:    cards,
		rules:    rules,
		executor: executor,
		metrics:  metrics,
		logger:   logger,
	}
}

// ExecuteButton runs a button's actions against a card. The button must be
// active and belong to the card's board; anything else returns false without
// an error, as does a failed (rolled back) execution.
func (s *cardButtonServiceImpl) ExecuteButton(ctx context.Context, buttonID, cardID, triggeredBy uuid.UUID) (bool, error) {
	button, err := s.rules.FindActiveButtonByID(ctx, buttonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.reject(), nil
		}
		return false, err
	}

	card, err := s.cards.FindByIDWithColumn(ctx, cardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.reject(), nil
		}
		return false, err
	}

	if button.BoardID != card.Column.BoardID {
		return s.reject(), nil
	}

	execErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCard, err := repository.NewCardRepository(tx).FindByIDWithColumn(ctx, cardID)
		if err != nil {
			return err
		}
		for i := range button.Actions {
			action := &button.Actions[i]
			if err := s.executor.Execute(ctx, tx, action.ActionType, action.ActionConfig, txCard, triggeredBy); err != nil {
				return err
			}
		}
		return nil
	})
	if execErr != nil {
		s.logger.Warn("Button execution failed",
			zap.String("button_id", buttonID.String()),
			zap.String("card_id", cardID.String()),
			zap.Error(execErr),
		)
		return s.reject(), nil
	}

	if s.metrics != nil {
		s.metrics.RecordButtonExecution("card", true)
	}
	return true, nil
}

func (s *cardButtonServiceImpl) reject() bool {
	if s.metrics != nil {
		s.metrics.RecordButtonExecution("card", false)
	}
	return false
}
