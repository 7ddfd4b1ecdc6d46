package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"task-automation-api/internal/client"
	"task-automation-api/internal/domain"
	"task-automation-api/internal/repository"
)

// Default action config values applied when a key is absent
const (
	defaultDueDateOffsetDays  = 3
	defaultCalendarOffsetDays = 1
	defaultCalendarDuration   = 60
)

// taskActionConfig is the decoded form of an action's action_config JSON
type taskActionConfig struct {
	Status            *string `json:"status,omitempty"`
	Priority          *string `json:"priority,omitempty"`
	UserID            *string `json:"user_id,omitempty"`
	AssignTriggeredBy *bool   `json:"assign_triggered_by,omitempty"`
	LabelID           *string `json:"label_id,omitempty"`
	DaysOffset        *int    `json:"days_offset,omitempty"`
	ProjectID         *string `json:"project_id,omitempty"`
	Message           *string `json:"message,omitempty"`
	Comment           *string `json:"comment,omitempty"`
	DurationMinutes   *int    `json:"duration_minutes,omitempty"`
}

func decodeTaskActionConfig(raw datatypes.JSON) taskActionConfig {
	var cfg taskActionConfig
	if len(raw) == 0 {
		return cfg
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return taskActionConfig{}
	}
	return cfg
}

// taskActionContext bundles the state one action handler operates on. The
// repositories are bound to the executing rule's transaction.
type taskActionContext struct {
	tasks       repository.TaskRepository
	labels      repository.TaskLabelRepository
	projects    repository.ProjectRepository
	task        *domain.Task
	cfg         taskActionConfig
	triggeredBy uuid.UUID
}

type taskActionHandler func(ctx context.Context, ac *taskActionContext) error

// TaskActionExecutor dispatches task actions to their handlers. The handler
// registry is built once at construction and never mutated afterwards, so
// concurrent rule executions can share one executor.
type TaskActionExecutor struct {
	users    client.UserClient
	logger   *zap.Logger
	now      func() time.Time
	handlers map[domain.TaskActionType]taskActionHandler
}

// NewTaskActionExecutor creates a task action executor. users may be nil, in
// which case assign-user skips the active check.
func NewTaskActionExecutor(users client.UserClient, logger *zap.Logger) *TaskActionExecutor {
	e := &TaskActionExecutor{
		users:  users,
		logger: logger,
		now:    time.Now,
	}
	e.handlers = map[domain.TaskActionType]taskActionHandler{
		domain.TaskActionChangeStatus:     e.changeStatus,
		domain.TaskActionSetPriority:      e.setPriority,
		domain.TaskActionAssignUser:       e.assignUser,
		domain.TaskActionUnassignUser:     e.unassignUser,
		domain.TaskActionAddLabel:         e.addLabel,
		domain.TaskActionRemoveLabel:      e.removeLabel,
		domain.TaskActionSetDueDate:       e.setDueDate,
		domain.TaskActionClearDueDate:     e.clearDueDate,
		domain.TaskActionMoveToProject:    e.moveToProject,
		domain.TaskActionSendNotification: e.sendNotification,
		domain.TaskActionPostComment:      e.postComment,
		domain.TaskActionAddToCalendar:    e.addToCalendar,
		domain.TaskActionArchiveTask:      e.archiveTask,
	}
	return e
}

// Execute runs one action against a task inside the given transaction. The
// task must have its Project preloaded so label and project scope checks can
// resolve the organization. Later actions of the same rule observe the
// mutations earlier ones made.
func (e *TaskActionExecutor) Execute(ctx context.Context, tx *gorm.DB, actionType domain.TaskActionType, config datatypes.JSON, task *domain.Task, triggeredBy uuid.UUID) error {
	handler, ok := e.handlers[actionType]
	if !ok {
		return fmt.Errorf("unknown action type: %s", actionType)
	}

	ac := &taskActionContext{
		tasks:       repository.NewTaskRepository(tx),
		labels:      repository.NewTaskLabelRepository(tx),
		projects:    repository.NewProjectRepository(tx),
		task:        task,
		cfg:         decodeTaskActionConfig(config),
		triggeredBy: triggeredBy,
	}
	return handler(ctx, ac)
}

// changeStatus sets the task status. An absent or unknown status value makes
// the action a silent no-op rather than failing the rule.
func (e *TaskActionExecutor) changeStatus(ctx context.Context, ac *taskActionContext) error {
	if ac.cfg.Status == nil {
		return nil
	}
	status := domain.TaskStatus(*ac.cfg.Status)
	if !domain.ValidTaskStatus(status) {
		e.logger.Debug("Ignoring change_status action with unknown status",
			zap.String("status", *ac.cfg.Status),
			zap.String("task_id", ac.task.ID.String()),
		)
		return nil
	}
	if err := ac.tasks.UpdateFields(ctx, ac.task.ID, map[string]interface{}{"status": status}); err != nil {
		return err
	}
	ac.task.Status = status
	return nil
}

// setPriority sets the task priority, silently ignoring unknown values
func (e *TaskActionExecutor) setPriority(ctx context.Context, ac *taskActionContext) error {
	if ac.cfg.Priority == nil {
		return nil
	}
	priority := domain.TaskPriority(*ac.cfg.Priority)
	if !domain.ValidTaskPriority(priority) {
		e.logger.Debug("Ignoring set_priority action with unknown priority",
			zap.String("priority", *ac.cfg.Priority),
			zap.String("task_id", ac.task.ID.String()),
		)
		return nil
	}
	if err := ac.tasks.UpdateFields(ctx, ac.task.ID, map[string]interface{}{"priority": priority}); err != nil {
		return err
	}
	ac.task.Priority = priority
	return nil
}

// assignUser assigns the task either to the user who triggered the rule or
// to a configured user. Configured users must exist and be active; anything
// else is a silent no-op.
func (e *TaskActionExecutor) assignUser(ctx context.Context, ac *taskActionContext) error {
	var target uuid.UUID

	switch {
	case ac.cfg.AssignTriggeredBy != nil && *ac.cfg.AssignTriggeredBy:
		if ac.triggeredBy == uuid.Nil {
			return nil
		}
		target = ac.triggeredBy
	case ac.cfg.UserID != nil:
		parsed, err := uuid.Parse(*ac.cfg.UserID)
		if err != nil {
			return nil
		}
		if e.users != nil {
			user, err := e.users.GetUser(ctx, parsed)
			if err != nil || !user.IsActive {
				e.logger.Debug("Skipping assign_user for unavailable or inactive user",
					zap.String("user_id", parsed.String()),
				)
				return nil
			}
		}
		target = parsed
	default:
		return nil
	}

	if err := ac.tasks.UpdateFields(ctx, ac.task.ID, map[string]interface{}{"assigned_to_id": target}); err != nil {
		return err
	}
	ac.task.AssignedToID = target
	return nil
}

// unassignUser is a documented no-op for tasks: the assignee column is not
// nullable, so there is no unassigned state to move the task into.
func (e *TaskActionExecutor) unassignUser(ctx context.Context, ac *taskActionContext) error {
	e.logger.Debug("unassign_user has no effect on tasks",
		zap.String("task_id", ac.task.ID.String()),
	)
	return nil
}

// addLabel attaches a label to the task after checking the label belongs to
// the task's organization. Already-attached labels are left alone.
func (e *TaskActionExecutor) addLabel(ctx context.Context, ac *taskActionContext) error {
	labelID, ok := e.resolveLabel(ctx, ac)
	if !ok {
		return nil
	}
	return ac.labels.AssignLabel(ctx, ac.task.ID, labelID)
}

// removeLabel detaches a label from the task if present
func (e *TaskActionExecutor) removeLabel(ctx context.Context, ac *taskActionContext) error {
	if ac.cfg.LabelID == nil {
		return nil
	}
	labelID, err := uuid.Parse(*ac.cfg.LabelID)
	if err != nil {
		return nil
	}
	return ac.labels.UnassignLabel(ctx, ac.task.ID, labelID)
}

// resolveLabel parses and scope-checks the configured label. Missing config,
// a malformed ID, or a label outside the task's organization all report !ok.
func (e *TaskActionExecutor) resolveLabel(ctx context.Context, ac *taskActionContext) (uuid.UUID, bool) {
	if ac.cfg.LabelID == nil {
		return uuid.Nil, false
	}
	labelID, err := uuid.Parse(*ac.cfg.LabelID)
	if err != nil {
		return uuid.Nil, false
	}
	if _, err := ac.labels.FindByIDInOrganization(ctx, labelID, ac.task.Project.OrganizationID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			e.logger.Warn("Label scope check failed", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return labelID, true
}

// setDueDate sets the due date to now plus the configured offset
func (e *TaskActionExecutor) setDueDate(ctx context.Context, ac *taskActionContext) error {
	offset := defaultDueDateOffsetDays
	if ac.cfg.DaysOffset != nil {
		offset = *ac.cfg.DaysOffset
	}
	due := e.now().AddDate(0, 0, offset)
	if err := ac.tasks.UpdateFields(ctx, ac.task.ID, map[string]interface{}{"due_date": due}); err != nil {
		return err
	}
	ac.task.DueDate = &due
	return nil
}

// clearDueDate removes the due date
func (e *TaskActionExecutor) clearDueDate(ctx context.Context, ac *taskActionContext) error {
	if err := ac.tasks.UpdateFields(ctx, ac.task.ID, map[string]interface{}{"due_date": nil}); err != nil {
		return err
	}
	ac.task.DueDate = nil
	return nil
}

// moveToProject moves the task to another project in the same organization
// and appends it to the end of that project's sort order. Cross-organization
// targets are silently ignored.
func (e *TaskActionExecutor) moveToProject(ctx context.Context, ac *taskActionContext) error {
	if ac.cfg.ProjectID == nil {
		return nil
	}
	projectID, err := uuid.Parse(*ac.cfg.ProjectID)
	if err != nil {
		return nil
	}
	if projectID == ac.task.ProjectID {
		return nil
	}

	target, err := ac.projects.FindByIDInOrganization(ctx, projectID, ac.task.Project.OrganizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			e.logger.Debug("Skipping move_to_project outside organization",
				zap.String("project_id", projectID.String()),
			)
			return nil
		}
		return err
	}

	maxSort, err := ac.tasks.MaxSortOrderInProject(ctx, target.ID)
	if err != nil {
		return err
	}
	newSort := maxSort + 1

	if err := ac.tasks.UpdateFields(ctx, ac.task.ID, map[string]interface{}{
		"project_id": target.ID,
		"sort_order": newSort,
	}); err != nil {
		return err
	}
	ac.task.ProjectID = target.ID
	ac.task.Project = *target
	ac.task.SortOrder = newSort
	return nil
}

// sendNotification records the intent; delivery is handled elsewhere
func (e *TaskActionExecutor) sendNotification(ctx context.Context, ac *taskActionContext) error {
	message := ""
	if ac.cfg.Message != nil {
		message = *ac.cfg.Message
	}
	e.logger.Info("Automation notification",
		zap.String("task_id", ac.task.ID.String()),
		zap.String("message", message),
	)
	return nil
}

// postComment records the intent; the comment surface lives in another service
func (e *TaskActionExecutor) postComment(ctx context.Context, ac *taskActionContext) error {
	comment := ""
	if ac.cfg.Comment != nil {
		comment = *ac.cfg.Comment
	}
	e.logger.Info("Automation comment",
		zap.String("task_id", ac.task.ID.String()),
		zap.String("comment", comment),
	)
	return nil
}

// addToCalendar schedules the task if it has no scheduled start yet
func (e *TaskActionExecutor) addToCalendar(ctx context.Context, ac *taskActionContext) error {
	if ac.task.ScheduledStart != nil {
		return nil
	}
	offset := defaultCalendarOffsetDays
	if ac.cfg.DaysOffset != nil {
		offset = *ac.cfg.DaysOffset
	}
	duration := defaultCalendarDuration
	if ac.cfg.DurationMinutes != nil {
		duration = *ac.cfg.DurationMinutes
	}

	start := e.now().AddDate(0, 0, offset)
	if err := ac.tasks.UpdateFields(ctx, ac.task.ID, map[string]interface{}{
		"scheduled_start":  start,
		"duration_minutes": duration,
	}); err != nil {
		return err
	}
	ac.task.ScheduledStart = &start
	ac.task.DurationMinutes = &duration
	return nil
}

// archiveTask archives the task, recording when and by whom. Already
// archived tasks are left untouched so repeated runs stay idempotent.
func (e *TaskActionExecutor) archiveTask(ctx context.Context, ac *taskActionContext) error {
	if ac.task.IsArchived {
		return nil
	}
	archivedAt := e.now()
	fields := map[string]interface{}{
		"is_archived": true,
		"archived_at": archivedAt,
	}
	var archivedBy *uuid.UUID
	if ac.triggeredBy != uuid.Nil {
		by := ac.triggeredBy
		archivedBy = &by
		fields["archived_by_id"] = by
	}
	if err := ac.tasks.UpdateFields(ctx, ac.task.ID, fields); err != nil {
		return err
	}
	ac.task.IsArchived = true
	ac.task.ArchivedAt = &archivedAt
	ac.task.ArchivedByID = archivedBy
	return nil
}
