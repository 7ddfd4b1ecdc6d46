package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-automation-api/internal/domain"
)

// CardAutomationRepository defines the interface for card automation rule,
// log, and button data access.
type CardAutomationRepository interface {
	CreateRule(ctx context.Context, rule *domain.CardAutomationRule) error
	FindRuleByID(ctx context.Context, id uuid.UUID) (*domain.CardAutomationRule, error)
	FindRulesByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.CardAutomationRule, error)
	FindActiveRulesByTrigger(ctx context.Context, boardID uuid.UUID, trigger domain.CardTriggerType) ([]*domain.CardAutomationRule, error)
	UpdateRule(ctx context.Context, rule *domain.CardAutomationRule) error
	DeleteRule(ctx context.Context, id uuid.UUID) error

	CreateLog(ctx context.Context, log *domain.CardAutomationLog) error
	FindLogsByCard(ctx context.Context, cardID uuid.UUID, limit int) ([]*domain.CardAutomationLog, error)

	CreateButton(ctx context.Context, button *domain.CardButton) error
	FindButtonByID(ctx context.Context, id uuid.UUID) (*domain.CardButton, error)
	FindActiveButtonByID(ctx context.Context, id uuid.UUID) (*domain.CardButton, error)
	FindButtonsByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.CardButton, error)
	UpdateButton(ctx context.Context, button *domain.CardButton) error
	DeleteButton(ctx context.Context, id uuid.UUID) error
}

// cardAutomationRepositoryImpl is the GORM implementation of CardAutomationRepository
type cardAutomationRepositoryImpl struct {
	db *gorm.DB
}

// NewCardAutomationRepository creates a new instance of CardAutomationRepository
func NewCardAutomationRepository(db *gorm.DB) CardAutomationRepository {
	return &cardAutomationRepositoryImpl{db: db}
}

// CreateRule creates a new rule together with its actions
func (r *cardAutomationRepositoryImpl) CreateRule(ctx context.Context, rule *domain.CardAutomationRule) error {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return err
	}
	return nil
}

// FindRuleByID finds a rule by ID with its actions preloaded in execution order
func (r *cardAutomationRepositoryImpl) FindRuleByID(ctx context.Context, id uuid.UUID) (*domain.CardAutomationRule, error) {
	var rule domain.CardAutomationRule
	if err := r.db.WithContext(ctx).
		Preload("Actions", orderedActions).
		First(&rule, id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

// FindRulesByBoard finds all rules on a board
func (r *cardAutomationRepositoryImpl) FindRulesByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.CardAutomationRule, error) {
	var rules []*domain.CardAutomationRule
	if err := r.db.WithContext(ctx).
		Preload("Actions", orderedActions).
		Where("board_id = ?", boardID).
		Order("created_at ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// FindActiveRulesByTrigger finds the active rules on a board for a trigger
// type, actions preloaded in execution order.
func (r *cardAutomationRepositoryImpl) FindActiveRulesByTrigger(ctx context.Context, boardID uuid.UUID, trigger domain.CardTriggerType) ([]*domain.CardAutomationRule, error) {
	var rules []*domain.CardAutomationRule
	if err := r.db.WithContext(ctx).
		Preload("Actions", orderedActions).
		Where("board_id = ? AND trigger_type = ? AND is_active = ?", boardID, trigger, true).
		Order("created_at ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// UpdateRule saves the full rule record
func (r *cardAutomationRepositoryImpl) UpdateRule(ctx context.Context, rule *domain.CardAutomationRule) error {
	if err := r.db.WithContext(ctx).Save(rule).Error; err != nil {
		return err
	}
	return nil
}

// DeleteRule soft deletes a rule and its actions
func (r *cardAutomationRepositoryImpl) DeleteRule(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rule_id = ?", id).Delete(&domain.CardAutomationAction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.CardAutomationRule{}, id).Error
	})
}

// CreateLog creates an automation log entry
func (r *cardAutomationRepositoryImpl) CreateLog(ctx context.Context, log *domain.CardAutomationLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return err
	}
	return nil
}

// FindLogsByCard finds the most recent log entries for a card
func (r *cardAutomationRepositoryImpl) FindLogsByCard(ctx context.Context, cardID uuid.UUID, limit int) ([]*domain.CardAutomationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []*domain.CardAutomationLog
	if err := r.db.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("executed_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// CreateButton creates a new button together with its actions
func (r *cardAutomationRepositoryImpl) CreateButton(ctx context.Context, button *domain.CardButton) error {
	if err := r.db.WithContext(ctx).Create(button).Error; err != nil {
		return err
	}
	return nil
}

// FindButtonByID finds a button by ID with its actions preloaded
func (r *cardAutomationRepositoryImpl) FindButtonByID(ctx context.Context, id uuid.UUID) (*domain.CardButton, error) {
	var button domain.CardButton
	if err := r.db.WithContext(ctx).
		Preload("Actions", orderedActions).
		First(&button, id).Error; err != nil {
		return nil, err
	}
	return &button, nil
}

// FindActiveButtonByID finds a button by ID only when it is active
func (r *cardAutomationRepositoryImpl) FindActiveButtonByID(ctx context.Context, id uuid.UUID) (*domain.CardButton, error) {
	var button domain.CardButton
	if err := r.db.WithContext(ctx).
		Preload("Actions", orderedActions).
		Where("id = ? AND is_active = ?", id, true).
		First(&button).Error; err != nil {
		return nil, err
	}
	return &button, nil
}

// FindButtonsByBoard finds all buttons on a board
func (r *cardAutomationRepositoryImpl) FindButtonsByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.CardButton, error) {
	var buttons []*domain.CardButton
	if err := r.db.WithContext(ctx).
		Preload("Actions", orderedActions).
		Where("board_id = ?", boardID).
		Order("created_at ASC").
		Find(&buttons).Error; err != nil {
		return nil, err
	}
	return buttons, nil
}

// UpdateButton saves the full button record
func (r *cardAutomationRepositoryImpl) UpdateButton(ctx context.Context, button *domain.CardButton) error {
	if err := r.db.WithContext(ctx).Save(button).Error; err != nil {
		return err
	}
	return nil
}

// DeleteButton soft deletes a button and its actions
func (r *cardAutomationRepositoryImpl) DeleteButton(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("button_id = ?", id).Delete(&domain.CardButtonAction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.CardButton{}, id).Error
	})
}
