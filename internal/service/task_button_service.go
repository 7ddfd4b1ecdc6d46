package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"task-automation-api/internal/domain"
	"task-automation-api/internal/repository"
)

// TaskButtonService executes manually-triggered task buttons and evaluates
// their visibility predicates.
//
// Button execution differs from rule execution in two ways: all of a
// button's actions run in one transaction (all or nothing), and no audit log
// rows are written. The boolean result tells the caller whether the button
// actually ran.
type TaskButtonService interface {
	ExecuteButton(ctx context.Context, buttonID, taskID, triggeredBy uuid.UUID) (bool, error)
	VisibleButtons(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskButton, error)
}

// taskButtonServiceImpl is the default implementation of TaskButtonService
type taskButtonServiceImpl struct {
	db       *gorm.DB
	tasks    repository.TaskRepository
	buttons  repository.TaskButtonRepository
	labels   repository.TaskLabelRepository
	executor *TaskActionExecutor
	metrics  AutomationMetrics
	logger   *zap.Logger
}

// NewTaskButtonService creates a new instance of TaskButtonService.
// metrics may be nil.
func NewTaskButtonService(
	db *gorm.DB,
	tasks repository.TaskRepository,
	buttons repository.TaskButtonRepository,
	labels repository.TaskLabelRepository,
	executor *TaskActionExecutor,
	metrics AutomationMetrics,
	logger *zap.Logger,
) TaskButtonService {
	return &taskButtonServiceImpl{
		db:       db,
		tasks:    tasks,
		buttons:  buttons,
		labels:   labels,
		executor: executor,
		metrics:  metrics,
		logger:   logger,
	}
}

// ExecuteButton runs a button's actions against a task. Returns false
// without error when the button is missing, inactive, or out of scope for
// the task, and when any action fails (the whole execution rolls back).
func (s *taskButtonServiceImpl) ExecuteButton(ctx context.Context, buttonID, taskID, triggeredBy uuid.UUID) (bool, error) {
	button, err := s.buttons.FindActiveByID(ctx, buttonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.reject(), nil
		}
		return false, err
	}

	task, err := s.tasks.FindByIDWithProject(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.reject(), nil
		}
		return false, err
	}

	if button.OrganizationID != task.Project.OrganizationID {
		return s.reject(), nil
	}
	if button.ProjectID != nil && *button.ProjectID != task.ProjectID {
		return s.reject(), nil
	}

	execErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txTask, err := repository.NewTaskRepository(tx).FindByIDWithProject(ctx, taskID)
		if err != nil {
			return err
		}
		for i := range button.Actions {
			action := &button.Actions[i]
			if err := s.executor.Execute(ctx, tx, action.ActionType, action.ActionConfig, txTask, triggeredBy); err != nil {
				return err
			}
		}
		return nil
	})
	if execErr != nil {
		s.logger.Warn("Button execution failed",
			zap.String("button_id", buttonID.String()),
			zap.String("task_id", taskID.String()),
			zap.Error(execErr),
		)
		return s.reject(), nil
	}

	if s.metrics != nil {
		s.metrics.RecordButtonExecution("task", true)
	}
	return true, nil
}

func (s *taskButtonServiceImpl) reject() bool {
	if s.metrics != nil {
		s.metrics.RecordButtonExecution("task", false)
	}
	return false
}

// VisibleButtons returns the active buttons of the task's organization that
// pass their display predicates for this task.
func (s *taskButtonServiceImpl) VisibleButtons(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskButton, error) {
	task, err := s.tasks.FindByIDWithProject(ctx, taskID)
	if err != nil {
		return nil, err
	}

	buttons, err := s.buttons.FindByOrganization(ctx, task.Project.OrganizationID)
	if err != nil {
		return nil, err
	}

	labels, err := s.labels.FindLabelsByTaskID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	labelSet := make(map[uuid.UUID]struct{}, len(labels))
	for _, l := range labels {
		labelSet[l.ID] = struct{}{}
	}

	visible := make([]*domain.TaskButton, 0, len(buttons))
	for _, b := range buttons {
		if !b.IsActive {
			continue
		}
		if b.ProjectID != nil && *b.ProjectID != task.ProjectID {
			continue
		}
		if !buttonVisibleForTask(b, task, labelSet) {
			continue
		}
		visible = append(visible, b)
	}
	return visible, nil
}

// buttonVisibleForTask evaluates a button's display predicates. Empty
// show_on lists match every value.
func buttonVisibleForTask(button *domain.TaskButton, task *domain.Task, labels map[uuid.UUID]struct{}) bool {
	if statuses := decodeStringList(button.ShowOnStatus); len(statuses) > 0 {
		if !containsString(statuses, string(task.Status)) {
			return false
		}
	}
	if priorities := decodeStringList(button.ShowOnPriority); len(priorities) > 0 {
		if !containsString(priorities, string(task.Priority)) {
			return false
		}
	}
	if button.ShowWhenHasLabelID != nil {
		if _, has := labels[*button.ShowWhenHasLabelID]; !has {
			return false
		}
	}
	if button.HideWhenHasLabelID != nil {
		if _, has := labels[*button.HideWhenHasLabelID]; has {
			return false
		}
	}
	return true
}

func decodeStringList(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
