package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-automation-api/internal/domain"
)

// TaskAutomationRepository defines the interface for task automation rule,
// action, and log data access.
type TaskAutomationRepository interface {
	CreateRule(ctx context.Context, rule *domain.TaskAutomationRule) error
	FindRuleByID(ctx context.Context, id uuid.UUID) (*domain.TaskAutomationRule, error)
	FindRulesByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*domain.TaskAutomationRule, error)
	FindActiveRulesByTrigger(ctx context.Context, organizationID, projectID uuid.UUID, trigger domain.TaskTriggerType) ([]*domain.TaskAutomationRule, error)
	UpdateRule(ctx context.Context, rule *domain.TaskAutomationRule) error
	DeleteRule(ctx context.Context, id uuid.UUID) error
	ReplaceActions(ctx context.Context, ruleID uuid.UUID, actions []domain.TaskAutomationAction) error

	CreateLog(ctx context.Context, log *domain.TaskAutomationLog) error
	FindLogsByTask(ctx context.Context, taskID uuid.UUID, limit int) ([]*domain.TaskAutomationLog, error)
	FindLogsByRule(ctx context.Context, ruleID uuid.UUID, limit int) ([]*domain.TaskAutomationLog, error)
}

// taskAutomationRepositoryImpl is the GORM implementation of TaskAutomationRepository
type taskAutomationRepositoryImpl struct {
	db *gorm.DB
}

// NewTaskAutomationRepository creates a new instance of TaskAutomationRepository
func NewTaskAutomationRepository(db *gorm.DB) TaskAutomationRepository {
	return &taskAutomationRepositoryImpl{db: db}
}

func orderedActions(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, created_at ASC")
}

// CreateRule creates a new rule together with its actions
func (r *taskAutomationRepositoryImpl) CreateRule(ctx context.Context, rule *domain.TaskAutomationRule) error {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return err
	}
	return nil
}

// FindRuleByID finds a rule by ID with its actions preloaded in execution order
func (r *taskAutomationRepositoryImpl) FindRuleByID(ctx context.Context, id uuid.UUID) (*domain.TaskAutomationRule, error) {
	var rule domain.TaskAutomationRule
	if err := r.db.WithContext(ctx).
		Preload("Actions", orderedActions).
		First(&rule, id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

// FindRulesByOrganization finds all rules in an organization
func (r *taskAutomationRepositoryImpl) FindRulesByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*domain.TaskAutomationRule, error) {
	var rules []*domain.TaskAutomationRule
	if err := r.db.WithContext(ctx).
		Preload("Actions", orderedActions).
		Where("organization_id = ?", organizationID).
		Order("created_at ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// FindActiveRulesByTrigger finds the active rules a trigger event must be
// evaluated against: rules in the task's organization, for the trigger type,
// that are either org-wide or bound to the task's project. Actions come
// preloaded in execution order.
func (r *taskAutomationRepositoryImpl) FindActiveRulesByTrigger(ctx context.Context, organizationID, projectID uuid.UUID, trigger domain.TaskTriggerType) ([]*domain.TaskAutomationRule, error) {
	var rules []*domain.TaskAutomationRule
	if err := r.db.WithContext(ctx).
		Preload("Actions", orderedActions).
		Where("organization_id = ? AND trigger_type = ? AND is_active = ?", organizationID, trigger, true).
		Where("project_id IS NULL OR project_id = ?", projectID).
		Order("created_at ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// UpdateRule saves the full rule record
func (r *taskAutomationRepositoryImpl) UpdateRule(ctx context.Context, rule *domain.TaskAutomationRule) error {
	if err := r.db.WithContext(ctx).Save(rule).Error; err != nil {
		return err
	}
	return nil
}

// DeleteRule soft deletes a rule and its actions
func (r *taskAutomationRepositoryImpl) DeleteRule(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rule_id = ?", id).Delete(&domain.TaskAutomationAction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.TaskAutomationRule{}, id).Error
	})
}

// ReplaceActions swaps a rule's action list atomically
func (r *taskAutomationRepositoryImpl) ReplaceActions(ctx context.Context, ruleID uuid.UUID, actions []domain.TaskAutomationAction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rule_id = ?", ruleID).Delete(&domain.TaskAutomationAction{}).Error; err != nil {
			return err
		}
		for i := range actions {
			actions[i].RuleID = ruleID
		}
		if len(actions) == 0 {
			return nil
		}
		return tx.Create(&actions).Error
	})
}

// CreateLog creates an automation log entry
func (r *taskAutomationRepositoryImpl) CreateLog(ctx context.Context, log *domain.TaskAutomationLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return err
	}
	return nil
}

// FindLogsByTask finds the most recent log entries for a task
func (r *taskAutomationRepositoryImpl) FindLogsByTask(ctx context.Context, taskID uuid.UUID, limit int) ([]*domain.TaskAutomationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []*domain.TaskAutomationLog
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("executed_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// FindLogsByRule finds the most recent log entries for a rule
func (r *taskAutomationRepositoryImpl) FindLogsByRule(ctx context.Context, ruleID uuid.UUID, limit int) ([]*domain.TaskAutomationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []*domain.TaskAutomationLog
	if err := r.db.WithContext(ctx).
		Where("rule_id = ?", ruleID).
		Order("executed_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
