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

// TaskService defines the interface for task business logic. Mutations fire
// the corresponding automation triggers after the change is saved; trigger
// failures are logged and never fail the originating request.
type TaskService interface {
	CreateTask(ctx context.Context, req *dto.CreateTaskRequest, userID uuid.UUID) (*dto.TaskResponse, error)
	GetTask(ctx context.Context, id uuid.UUID) (*dto.TaskResponse, error)
	ListTasks(ctx context.Context, projectID uuid.UUID) ([]*dto.TaskResponse, error)
	UpdateTask(ctx context.Context, id uuid.UUID, req *dto.UpdateTaskRequest, userID uuid.UUID) (*dto.TaskResponse, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	AddLabel(ctx context.Context, taskID, labelID, userID uuid.UUID) error
	RemoveLabel(ctx context.Context, taskID, labelID, userID uuid.UUID) error
	SetRecurrence(ctx context.Context, taskID uuid.UUID, req *dto.RecurrenceRequest) error
}

// taskServiceImpl is the implementation of TaskService
type taskServiceImpl struct {
	tasks      repository.TaskRepository
	projects   repository.ProjectRepository
	labels     repository.TaskLabelRepository
	recurring  repository.RecurringTaskRepository
	automation TaskAutomationService
	recurrence RecurrenceService
	logger     *zap.Logger
}

// NewTaskService creates a new instance of TaskService
func NewTaskService(
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	labels repository.TaskLabelRepository,
	recurring repository.RecurringTaskRepository,
	automation TaskAutomationService,
	recurrence RecurrenceService,
	logger *zap.Logger,
) TaskService {
	return &taskServiceImpl{
		tasks:      tasks,
		projects:   projects,
		labels:     labels,
		recurring:  recurring,
		automation: automation,
		recurrence: recurrence,
		logger:     logger,
	}
}

// CreateTask creates a task at the end of its project's sort order and fires
// the task-created trigger.
func (s *taskServiceImpl) CreateTask(ctx context.Context, req *dto.CreateTaskRequest, userID uuid.UUID) (*dto.TaskResponse, error) {
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return nil, response.NewValidationError("Invalid project ID", err.Error())
	}
	assignedTo, err := uuid.Parse(req.AssignedToID)
	if err != nil {
		return nil, response.NewValidationError("Invalid assignee ID", err.Error())
	}

	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Project not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch project", err.Error())
	}

	priority := domain.TaskPriorityMedium
	if req.Priority != "" {
		priority = domain.TaskPriority(req.Priority)
	}

	maxSort, err := s.tasks.MaxSortOrderInProject(ctx, projectID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to determine sort order", err.Error())
	}

	task := &domain.Task{
		ProjectID:       projectID,
		Title:           req.Title,
		Subtitle:        req.Subtitle,
		Description:     req.Description,
		Status:          domain.TaskStatusTodo,
		Priority:        priority,
		DueDate:         req.DueDate,
		ScheduledStart:  req.ScheduledStart,
		DurationMinutes: req.DurationMinutes,
		AssignedToID:    assignedTo,
		SortOrder:       maxSort + 1,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create task", err.Error())
	}

	s.fireTrigger("task_created", task.ID, func() error {
		_, err := s.automation.TriggerTaskCreated(ctx, task.ID, userID)
		return err
	})

	return dto.ToTaskResponse(task), nil
}

// GetTask retrieves a task by ID
func (s *taskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*dto.TaskResponse, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Task not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch task", err.Error())
	}
	return dto.ToTaskResponse(task), nil
}

// ListTasks retrieves all non-archived tasks of a project
func (s *taskServiceImpl) ListTasks(ctx context.Context, projectID uuid.UUID) ([]*dto.TaskResponse, error) {
	tasks, err := s.tasks.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch tasks", err.Error())
	}
	responses := make([]*dto.TaskResponse, len(tasks))
	for i, task := range tasks {
		responses[i] = dto.ToTaskResponse(task)
	}
	return responses, nil
}

// UpdateTask applies the requested changes and fires the triggers the change
// implies: task-updated always, plus status-changed, priority-changed, and
// assigned-to-user when those fields transition. Completing a task also
// fires task-completed and asks the recurrence service for a successor.
func (s *taskServiceImpl) UpdateTask(ctx context.Context, id uuid.UUID, req *dto.UpdateTaskRequest, userID uuid.UUID) (*dto.TaskResponse, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Task not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch task", err.Error())
	}

	oldStatus := task.Status
	oldPriority := task.Priority
	oldAssignee := task.AssignedToID

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
		task.Title = *req.Title
	}
	if req.Subtitle != nil {
		fields["subtitle"] = *req.Subtitle
		task.Subtitle = *req.Subtitle
	}
	if req.Description != nil {
		fields["description"] = *req.Description
		task.Description = *req.Description
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		if !domain.ValidTaskStatus(status) {
			return nil, response.NewValidationError("Invalid task status", *req.Status)
		}
		fields["status"] = status
		task.Status = status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		if !domain.ValidTaskPriority(priority) {
			return nil, response.NewValidationError("Invalid task priority", *req.Priority)
		}
		fields["priority"] = priority
		task.Priority = priority
	}
	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
		task.DueDate = req.DueDate
	}
	if req.ScheduledStart != nil {
		fields["scheduled_start"] = *req.ScheduledStart
		task.ScheduledStart = req.ScheduledStart
	}
	if req.DurationMinutes != nil {
		fields["duration_minutes"] = *req.DurationMinutes
		task.DurationMinutes = req.DurationMinutes
	}
	if req.AssignedToID != nil {
		assignee, err := uuid.Parse(*req.AssignedToID)
		if err != nil {
			return nil, response.NewValidationError("Invalid assignee ID", err.Error())
		}
		fields["assigned_to_id"] = assignee
		task.AssignedToID = assignee
	}
	if req.Progress != nil {
		fields["progress"] = *req.Progress
		task.Progress = *req.Progress
	}

	if err := s.tasks.UpdateFields(ctx, id, fields); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update task", err.Error())
	}

	s.fireTrigger("task_updated", id, func() error {
		_, err := s.automation.TriggerTaskUpdated(ctx, id, userID)
		return err
	})
	if task.Status != oldStatus {
		s.fireTrigger("status_changed", id, func() error {
			_, err := s.automation.TriggerStatusChanged(ctx, id, userID, oldStatus, task.Status)
			return err
		})
		if task.Status == domain.TaskStatusDone {
			s.fireTrigger("task_completed", id, func() error {
				_, err := s.automation.TriggerTaskCompleted(ctx, id, userID)
				return err
			})
			if _, err := s.recurrence.HandleTaskCompleted(ctx, id); err != nil {
				s.logger.Error("Failed to spawn recurring task successor",
					zap.String("task_id", id.String()),
					zap.Error(err),
				)
			}
		}
	}
	if task.Priority != oldPriority {
		s.fireTrigger("priority_changed", id, func() error {
			_, err := s.automation.TriggerPriorityChanged(ctx, id, userID, task.Priority)
			return err
		})
	}
	if task.AssignedToID != oldAssignee {
		s.fireTrigger("assigned_to_user", id, func() error {
			_, err := s.automation.TriggerAssignedToUser(ctx, id, userID, task.AssignedToID)
			return err
		})
	}

	return dto.ToTaskResponse(task), nil
}

// DeleteTask soft deletes a task
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if _, err := s.tasks.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFoundError("Task not found", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to fetch task", err.Error())
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete task", err.Error())
	}
	return nil
}

// AddLabel attaches an organization label to a task and fires the
// label-added trigger.
func (s *taskServiceImpl) AddLabel(ctx context.Context, taskID, labelID, userID uuid.UUID) error {
	task, err := s.tasks.FindByIDWithProject(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFoundError("Task not found", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to fetch task", err.Error())
	}

	if _, err := s.labels.FindByIDInOrganization(ctx, labelID, task.Project.OrganizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFoundError("Label not found in organization", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to fetch label", err.Error())
	}

	if err := s.labels.AssignLabel(ctx, taskID, labelID); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to assign label", err.Error())
	}

	s.fireTrigger("label_added", taskID, func() error {
		_, err := s.automation.TriggerLabelAdded(ctx, taskID, userID, labelID)
		return err
	})
	return nil
}

// RemoveLabel detaches a label from a task and fires the label-removed trigger
func (s *taskServiceImpl) RemoveLabel(ctx context.Context, taskID, labelID, userID uuid.UUID) error {
	if err := s.labels.UnassignLabel(ctx, taskID, labelID); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to remove label", err.Error())
	}
	s.fireTrigger("label_removed", taskID, func() error {
		_, err := s.automation.TriggerLabelRemoved(ctx, taskID, userID, labelID)
		return err
	})
	return nil
}

// SetRecurrence creates or updates the recurrence settings of a task
func (s *taskServiceImpl) SetRecurrence(ctx context.Context, taskID uuid.UUID, req *dto.RecurrenceRequest) error {
	if _, err := s.tasks.FindByID(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFoundError("Task not found", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to fetch task", err.Error())
	}

	interval := req.Interval
	if interval <= 0 {
		interval = 1
	}
	frequency := domain.RecurrenceFrequency(req.Frequency)
	if req.IsRecurring && frequency == "" {
		return response.NewValidationError("Frequency is required for recurring tasks", "")
	}

	existing, err := s.recurring.FindByTaskID(ctx, taskID)
	if err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to fetch recurrence settings", err.Error())
	}

	if existing == nil {
		settings := &domain.RecurringTask{
			TaskID:         taskID,
			IsRecurring:    req.IsRecurring,
			Frequency:      frequency,
			Interval:       interval,
			EndDate:        req.EndDate,
			MaxOccurrences: req.MaxOccurrences,
		}
		if err := s.recurring.Create(ctx, settings); err != nil {
			return response.NewAppError(response.ErrCodeInternal, "Failed to create recurrence settings", err.Error())
		}
		return nil
	}

	existing.IsRecurring = req.IsRecurring
	existing.Frequency = frequency
	existing.Interval = interval
	existing.EndDate = req.EndDate
	existing.MaxOccurrences = req.MaxOccurrences
	if err := s.recurring.Update(ctx, existing); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to update recurrence settings", err.Error())
	}
	return nil
}

// fireTrigger runs an automation trigger and logs failures without
// propagating them; automation never breaks the originating request.
func (s *taskServiceImpl) fireTrigger(name string, taskID uuid.UUID, fn func() error) {
	if err := fn(); err != nil {
		s.logger.Error("Automation trigger failed",
			zap.String("trigger", name),
			zap.String("task_id", taskID.String()),
			zap.Error(err),
		)
	}
}
