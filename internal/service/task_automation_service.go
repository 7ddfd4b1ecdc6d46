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

// AutomationMetrics records automation business metrics. Implemented by the
// metrics package; a nil recorder disables recording.
type AutomationMetrics interface {
	RecordRuleExecution(engine, status string)
	RecordButtonExecution(engine string, executed bool)
	RecordRecurrenceSpawned()
}

// TaskAutomationService evaluates and executes task automation rules. Each
// Trigger method corresponds to one event in a task's lifecycle; callers fire
// them after the originating change has been committed.
//
// Rule failures never propagate to the caller. A failed rule rolls back its
// own actions, is recorded in the returned logs, and the remaining rules
// still run.
type TaskAutomationService interface {
	TriggerTaskCreated(ctx context.Context, taskID, triggeredBy uuid.UUID) ([]*domain.TaskAutomationLog, error)
	TriggerTaskUpdated(ctx context.Context, taskID, triggeredBy uuid.UUID) ([]*domain.TaskAutomationLog, error)
	TriggerTaskCompleted(ctx context.Context, taskID, triggeredBy uuid.UUID) ([]*domain.TaskAutomationLog, error)
	TriggerStatusChanged(ctx context.Context, taskID, triggeredBy uuid.UUID, from, to domain.TaskStatus) ([]*domain.TaskAutomationLog, error)
	TriggerPriorityChanged(ctx context.Context, taskID, triggeredBy uuid.UUID, to domain.TaskPriority) ([]*domain.TaskAutomationLog, error)
	TriggerLabelAdded(ctx context.Context, taskID, triggeredBy, labelID uuid.UUID) ([]*domain.TaskAutomationLog, error)
	TriggerLabelRemoved(ctx context.Context, taskID, triggeredBy, labelID uuid.UUID) ([]*domain.TaskAutomationLog, error)
	TriggerAssignedToUser(ctx context.Context, taskID, triggeredBy, assignedTo uuid.UUID) ([]*domain.TaskAutomationLog, error)
	TriggerDueDateApproaching(ctx context.Context, taskID uuid.UUID, daysUntilDue int) ([]*domain.TaskAutomationLog, error)
	TriggerDueDateReached(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskAutomationLog, error)
	TriggerDueDateOverdue(ctx context.Context, taskID uuid.UUID, daysOverdue int) ([]*domain.TaskAutomationLog, error)
}

// taskAutomationServiceImpl is the default implementation of TaskAutomationService
type taskAutomationServiceImpl struct {
	db       *gorm.DB
	tasks    repository.TaskRepository
	rules    repository.TaskAutomationRepository
	executor *TaskActionExecutor
	metrics  AutomationMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewTaskAutomationService creates a new instance of TaskAutomationService.
// metrics may be nil.
func NewTaskAutomationService(
	db *gorm.DB,
	tasks repository.TaskRepository,
	rules repository.TaskAutomationRepository,
	executor *TaskActionExecutor,
	metrics AutomationMetrics,
	logger *zap.Logger,
) TaskAutomationService {
	return &taskAutomationServiceImpl{
		db:       db,
		tasks:    tasks,
		rules:    rules,
		executor: executor,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *taskAutomationServiceImpl) TriggerTaskCreated(ctx context.Context, taskID, triggeredBy uuid.UUID) ([]*domain.TaskAutomationLog, error) {
	return s.fire(ctx, taskID, triggeredBy, TaskEvent{Type: domain.TaskTriggerTaskCreated})
}

func (s *taskAutomationServiceImpl) TriggerTaskUpdated(ctx context.Context, taskID, triggeredBy uuid.UUID) ([]*domain.TaskAutomationLog, error) {
	return s.fire(ctx, taskID, triggeredBy, TaskEvent{Type: domain.TaskTriggerTaskUpdated})
}

func (s *taskAutomationServiceImpl) TriggerTaskCompleted(ctx context.Context, taskID, triggeredBy uuid.UUID) ([]*domain.TaskAutomationLog, error) {
	return s.fire(ctx, taskID, triggeredBy, TaskEvent{Type: domain.TaskTriggerTaskCompleted})
}

func (s *taskAutomationServiceImpl) TriggerStatusChanged(ctx context.Context, taskID, triggeredBy uuid.UUID, from, to domain.TaskStatus) ([]*domain.TaskAutomationLog, error) {
	return s.fire(ctx, taskID, triggeredBy, TaskEvent{
		Type:       domain.TaskTriggerStatusChanged,
		FromStatus: &from,
		ToStatus:   &to,
	})
}

func (s *taskAutomationServiceImpl) TriggerPriorityChanged(ctx context.Context, taskID, triggeredBy uuid.UUID, to domain.TaskPriority) ([]*domain.TaskAutomationLog, error) {
	return s.fire(ctx, taskID, triggeredBy, TaskEvent{
		Type:       domain.TaskTriggerPriorityChanged,
		ToPriority: &to,
	})
}

func (s *taskAutomationServiceImpl) TriggerLabelAdded(ctx context.Context, taskID, triggeredBy, labelID uuid.UUID) ([]*domain.TaskAutomationLog, error) {
	return s.fire(ctx, taskID, triggeredBy, TaskEvent{
		Type:    domain.TaskTriggerLabelAdded,
		LabelID: &labelID,
	})
}

func (s *taskAutomationServiceImpl) TriggerLabelRemoved(ctx context.Context, taskID, triggeredBy, labelID uuid.UUID) ([]*domain.TaskAutomationLog, error) {
	return s.fire(ctx, taskID, triggeredBy, TaskEvent{
		Type:    domain.TaskTriggerLabelRemoved,
		LabelID: &labelID,
	})
}

func (s *taskAutomationServiceImpl) TriggerAssignedToUser(ctx context.Context, taskID, triggeredBy, assignedTo uuid.UUID) ([]*domain.TaskAutomationLog, error) {
	return s.fire(ctx, taskID, triggeredBy, TaskEvent{
		Type:           domain.TaskTriggerAssignedToUser,
		AssignedUserID: &assignedTo,
	})
}

func (s *taskAutomationServiceImpl) TriggerDueDateApproaching(ctx context.Context, taskID uuid.UUID, daysUntilDue int) ([]*domain.TaskAutomationLog, error) {
	return s.fire(ctx, taskID, uuid.Nil, TaskEvent{
		Type:         domain.TaskTriggerDueDateApproaching,
		DaysUntilDue: &daysUntilDue,
	})
}

func (s *taskAutomationServiceImpl) TriggerDueDateReached(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskAutomationLog, error) {
	return s.fire(ctx, taskID, uuid.Nil, TaskEvent{Type: domain.TaskTriggerDueDateReached})
}

func (s *taskAutomationServiceImpl) TriggerDueDateOverdue(ctx context.Context, taskID uuid.UUID, daysOverdue int) ([]*domain.TaskAutomationLog, error) {
	return s.fire(ctx, taskID, uuid.Nil, TaskEvent{
		Type:        domain.TaskTriggerDueDateOverdue,
		DaysOverdue: &daysOverdue,
	})
}

// fire runs every matching active rule against the task. Rules execute in
// isolation: each one gets a fresh read of the task and its own transaction,
// so a failed rule leaves no partial writes behind and later rules see only
// committed state.
func (s *taskAutomationServiceImpl) fire(ctx context.Context, taskID, triggeredBy uuid.UUID, event TaskEvent) ([]*domain.TaskAutomationLog, error) {
	task, err := s.tasks.FindByIDWithProject(ctx, taskID)
	if err != nil {
		return nil, err
	}

	rules, err := s.rules.FindActiveRulesByTrigger(ctx, task.Project.OrganizationID, task.ProjectID, event.Type)
	if err != nil {
		return nil, err
	}

	logs := make([]*domain.TaskAutomationLog, 0, len(rules))
	for _, rule := range rules {
		if !taskRuleMatches(rule, event) {
			continue
		}
		logs = append(logs, s.executeRule(ctx, rule, taskID, triggeredBy))
	}
	return logs, nil
}

// executeRule runs one rule's actions in a single transaction and writes the
// audit log entry afterwards, outside the transaction, so failed executions
// are recorded too.
func (s *taskAutomationServiceImpl) executeRule(ctx context.Context, rule *domain.TaskAutomationRule, taskID, triggeredBy uuid.UUID) *domain.TaskAutomationLog {
	execErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := repository.NewTaskRepository(tx).FindByIDWithProject(ctx, taskID)
		if err != nil {
			return err
		}
		for i := range rule.Actions {
			action := &rule.Actions[i]
			if err := s.executor.Execute(ctx, tx, action.ActionType, action.ActionConfig, task, triggeredBy); err != nil {
				return err
			}
		}
		return nil
	})

	entry := &domain.TaskAutomationLog{
		RuleID:     rule.ID,
		TaskID:     taskID,
		Status:     domain.AutomationLogSuccess,
		Message:    "Rule executed successfully",
		ExecutedAt: s.now(),
	}
	if execErr != nil {
		entry.Status = domain.AutomationLogFailed
		entry.Message = execErr.Error()
		s.logger.Warn("Automation rule failed",
			zap.String("rule_id", rule.ID.String()),
			zap.String("task_id", taskID.String()),
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
		s.metrics.RecordRuleExecution("task", string(entry.Status))
	}
	return entry
}
