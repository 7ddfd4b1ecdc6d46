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

// RecurrenceService spawns the next occurrence of a recurring task when the
// current one is completed. The task service calls HandleTaskCompleted
// explicitly from its completion path; recurrence never runs as a side
// effect of an ordinary save.
type RecurrenceService interface {
	HandleTaskCompleted(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)
}

// recurrenceServiceImpl is the default implementation of RecurrenceService
type recurrenceServiceImpl struct {
	db        *gorm.DB
	tasks     repository.TaskRepository
	recurring repository.RecurringTaskRepository
	metrics   AutomationMetrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewRecurrenceService creates a new instance of RecurrenceService.
// metrics may be nil.
func NewRecurrenceService(
	db *gorm.DB,
	tasks repository.TaskRepository,
	recurring repository.RecurringTaskRepository,
	metrics AutomationMetrics,
	logger *zap.Logger,
) RecurrenceService {
	return &recurrenceServiceImpl{
		db:        db,
		tasks:     tasks,
		recurring: recurring,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleTaskCompleted creates the successor of a completed recurring task.
// Returns (nil, nil) when the task does not recur or a stop condition holds:
// the recurrence end date has passed, the chain has reached its maximum
// number of occurrences, or the task carries neither a due date nor a
// scheduled start to advance from.
func (s *recurrenceServiceImpl) HandleTaskCompleted(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	settings, err := s.recurring.FindByTaskID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if settings == nil || !settings.IsRecurring {
		return nil, nil
	}

	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	// The chain root is the first task of the chain. Settings created on
	// the first link carry no parent.
	chainRoot := taskID
	if settings.ParentID != nil {
		chainRoot = *settings.ParentID
	}

	if settings.EndDate != nil && s.now().After(*settings.EndDate) {
		return nil, nil
	}

	if settings.MaxOccurrences != nil {
		successors, err := s.tasks.CountByRecurrenceParent(ctx, chainRoot)
		if err != nil {
			return nil, err
		}
		// The root itself counts as the first occurrence.
		if successors+1 >= int64(*settings.MaxOccurrences) {
			return nil, nil
		}
	}

	if task.DueDate == nil && task.ScheduledStart == nil {
		return nil, nil
	}

	interval := settings.Interval
	if interval <= 0 {
		interval = 1
	}

	var next *domain.Task
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txTasks := repository.NewTaskRepository(tx)

		maxSort, err := txTasks.MaxSortOrderInProject(ctx, task.ProjectID)
		if err != nil {
			return err
		}

		successor := &domain.Task{
			ProjectID:          task.ProjectID,
			Title:              task.Title,
			Subtitle:           task.Subtitle,
			Description:        task.Description,
			Status:             domain.TaskStatusTodo,
			Priority:           task.Priority,
			AssignedToID:       task.AssignedToID,
			DurationMinutes:    task.DurationMinutes,
			Progress:           0,
			SortOrder:          maxSort + 1,
			RecurrenceParentID: &chainRoot,
		}
		if task.DueDate != nil {
			due := advanceDate(*task.DueDate, settings.Frequency, interval)
			successor.DueDate = &due
		}
		if task.ScheduledStart != nil {
			start := advanceDate(*task.ScheduledStart, settings.Frequency, interval)
			successor.ScheduledStart = &start
		}
		if err := txTasks.Create(ctx, successor); err != nil {
			return err
		}

		nextSettings := &domain.RecurringTask{
			TaskID:         successor.ID,
			IsRecurring:    true,
			Frequency:      settings.Frequency,
			Interval:       settings.Interval,
			EndDate:        settings.EndDate,
			MaxOccurrences: settings.MaxOccurrences,
			ParentID:       &chainRoot,
		}
		if err := repository.NewRecurringTaskRepository(tx).Create(ctx, nextSettings); err != nil {
			return err
		}

		next = successor
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.logger.Info("Spawned recurring task successor",
		zap.String("completed_task_id", taskID.String()),
		zap.String("successor_id", next.ID.String()),
		zap.String("chain_root", chainRoot.String()),
	)
	if s.metrics != nil {
		s.metrics.RecordRecurrenceSpawned()
	}
	return next, nil
}

// advanceDate moves a date forward by interval units of the given frequency.
// Monthly advancement uses calendar months, so Jan 31 plus one month lands
// on the normalized Mar 2/3 the standard library produces.
func advanceDate(base time.Time, frequency domain.RecurrenceFrequency, interval int) time.Time {
	switch frequency {
	case domain.RecurrenceWeekly:
		return base.AddDate(0, 0, 7*interval)
	case domain.RecurrenceMonthly:
		return base.AddDate(0, interval, 0)
	default:
		return base.AddDate(0, 0, interval)
	}
}
