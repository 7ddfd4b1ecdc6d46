package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"task-automation-api/internal/domain"
	"task-automation-api/internal/repository"
)

// CardAutomationService evaluates and executes card automation rules. It
// mirrors TaskAutomationService with board scoping instead of organization
// and project scoping.
type CardAutomationService interface {
	TriggerCardCreated(ctx context.Context, cardID, triggeredBy uuid.UUID) ([]*domain.CardAutomationLog, error)
	TriggerCardUpdated(ctx context.Context, cardID, triggeredBy uuid.UUID) ([]*domain.CardAutomationLog, error)
	TriggerCardMoved(ctx context.Context, cardID, triggeredBy, fromColumnID, toColumnID uuid.UUID) ([]*domain.CardAutomationLog, error)
	TriggerLabelAdded(ctx context.Context, cardID, triggeredBy, labelID uuid.UUID) ([]*domain.CardAutomationLog, error)
	TriggerLabelRemoved(ctx context.Context, cardID, triggeredBy, labelID uuid.UUID) ([]*domain.CardAutomationLog, error)
	TriggerDueDateApproaching(ctx context.Context, cardID uuid.UUID, daysUntilDue int) ([]*domain.CardAutomationLog, error)
	TriggerDueDateReached(ctx context.Context, cardID uuid.UUID) ([]*domain.CardAutomationLog, error)
	TriggerDueDateOverdue(ctx context.Context, cardID uuid.UUID, daysOverdue int) ([]*domain.CardAutomationLog, error)
}

// cardAutomationServiceImpl is the default implementation of CardAutomationService
type cardAutomationServiceImpl struct {
	db       *gorm.DB
	cards    repository.CardRepository
	rules    repository.CardAutomationRepository
	executor *CardActionExecutor
	metrics  AutomationMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewCardAutomationService creates a new instance of CardAutomationService.
// metrics may be nil.
func NewCardAutomationService(
	db *gorm.DB,
	cards repository.CardRepository,
	rules repository.CardAutomationRepository,
	executor *CardActionExecutor,
	metrics AutomationMetrics,
	logger *zap.Logger,
) CardAutomationService {
	return &cardAutomationServiceImpl{
		db:       db,
		cards:    cards,
		rules:    rules,
		executor: executor,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *cardAutomationServiceImpl) TriggerCardCreated(ctx context.Context, cardID, triggeredBy uuid.UUID) ([]*domain.CardAutomationLog, error) {
	return s.fire(ctx, cardID, triggeredBy, CardEvent{Type: domain.CardTriggerCardCreated})
}

func (s *cardAutomationServiceImpl) TriggerCardUpdated(ctx context.Context, cardID, triggeredBy uuid.UUID) ([]*domain.CardAutomationLog, error) {
	return s.fire(ctx, cardID, triggeredBy, CardEvent{Type: domain.CardTriggerCardUpdated})
}

func (s *cardAutomationServiceImpl) TriggerCardMoved(ctx context.Context, cardID, triggeredBy, fromColumnID, toColumnID uuid.UUID) ([]*domain.CardAutomationLog, error) {
	return s.fire(ctx, cardID, triggeredBy, CardEvent{
		Type:         domain.CardTriggerCardMoved,
		FromColumnID: &fromColumnID,
		ToColumnID:   &toColumnID,
	})
}

func (s *cardAutomationServiceImpl) TriggerLabelAdded(ctx context.Context, cardID, triggeredBy, labelID uuid.UUID) ([]*domain.CardAutomationLog, error) {
	return s.fire(ctx, cardID, triggeredBy, CardEvent{
		Type:    domain.CardTriggerLabelAdded,
		LabelID: &labelID,
	})
}

func (s *cardAutomationServiceImpl) TriggerLabelRemoved(ctx context.Context, cardID, triggeredBy, labelID uuid.UUID) ([]*domain.CardAutomationLog, error) {
	return s.fire(ctx, cardID, triggeredBy, CardEvent{
		Type:    domain.CardTriggerLabelRemoved,
		LabelID: &labelID,
	})
}

func (s *cardAutomationServiceImpl) TriggerDueDateApproaching(ctx context.Context, cardID uuid.UUID, daysUntilDue int) ([]*domain.CardAutomationLog, error) {
	return s.fire(ctx, cardID, uuid.Nil, CardEvent{
		Type:         domain.CardTriggerDueDateApproaching,
		DaysUntilDue: &daysUntilDue,
	})
}

func (s *cardAutomationServiceImpl) TriggerDueDateReached(ctx context.Context, cardID uuid.UUID) ([]*domain.CardAutomationLog, error) {
	return s.fire(ctx, cardID, uuid.Nil, CardEvent{Type: domain.CardTriggerDueDateReached})
}

func (s *cardAutomationServiceImpl) TriggerDueDateOverdue(ctx context.Context, cardID uuid.UUID, daysOverdue int) ([]*domain.CardAutomationLog, error) {
	return s.fire(ctx, cardID, uuid.Nil, CardEvent{
		Type:        domain.CardTriggerDueDateOverdue,
		DaysOverdue: &daysOverdue,
	})
}

// fire runs every matching active rule on the card's board. Each rule gets a
// fresh read of the card and its own transaction.
func (s *cardAutomationServiceImpl) fire(ctx context.Context, cardID, triggeredBy uuid.UUID, event CardEvent) ([]*domain.CardAutomationLog, error) {
	card, err := s.cards.FindByIDWithColumn(ctx, cardID)
	if err != nil {
		return nil, err
	}

	rules, err := s.rules.FindActiveRulesByTrigger(ctx, card.Column.BoardID, event.Type)
	if err != nil {
		return nil, err
	}

	logs := make([]*domain.CardAutomationLog, 0, len(rules))
	for _, rule := range rules {
		if !cardRuleMatches(rule, event) {
			continue
		}
		logs = append(logs, s.executeRule(ctx, rule, cardID, triggeredBy))
	}
	return logs, nil
}

func (s *cardAutomationServiceImpl) executeRule(ctx context.Context, rule *domain.CardAutomationRule, cardID, triggeredBy uuid.UUID) *domain.CardAutomationLog {
	execErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card, err := repository.NewCardRepository(tx).FindByIDWithColumn(ctx, cardID)
		if err != nil {
			return err
		}
		for i := range rule.Actions {
			action := &rule.Actions[i]
			if err := s.executor.Execute(ctx, tx, action.ActionType, action.ActionConfig, card, triggeredBy); err != nil {
				return err
			}
		}
		return nil
	})

	entry := &domain.CardAutomationLog{
		RuleID:     rule.ID,
		CardID:     cardID,
		Status:     domain.AutomationLogSuccess,
		Message:    "Rule executed successfully",
		ExecutedAt: s.now(),
	}
	if execErr != nil {
		entry.Status = domain.AutomationLogFailed
		entry.Message = execErr.Error()
		s.logger.Warn("Automation rule failed",
			zap.String("rule_id", rule.ID.String()),
			zap.String("card_id", cardID.String()),
			zap.Error(execErr),
		)
	}

	if err := s.rules.CreateLog(ctx, entry); err != nil {
		s.logger.Error("Failed to write automation log",
			zap.String("rule_id", rule.ID.String()),
			zap.Error(err),
		)
	}
	if s.metrics != nil {
		s.metrics.RecordRuleExecution("card", string(entry.Status))
	}
	return entry
}
