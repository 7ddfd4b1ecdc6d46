package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TaskTriggerType enumerates the events that can fire a task automation rule
type TaskTriggerType string

const (
	TaskTriggerTaskCreated        TaskTriggerType = "task_created"
	TaskTriggerStatusChanged      TaskTriggerType = "status_changed"
	TaskTriggerTaskUpdated        TaskTriggerType = "task_updated"
	TaskTriggerTaskCompleted      TaskTriggerType = "task_completed"
	TaskTriggerLabelAdded         TaskTriggerType = "label_added"
	TaskTriggerLabelRemoved       TaskTriggerType = "label_removed"
	TaskTriggerAssignedToUser     TaskTriggerType = "assigned_to_user"
	TaskTriggerPriorityChanged    TaskTriggerType = "priority_changed"
	TaskTriggerDueDateApproaching TaskTriggerType = "due_date_approaching"
	TaskTriggerDueDateReached     TaskTriggerType = "due_date_reached"
	TaskTriggerDueDateOverdue     TaskTriggerType = "due_date_overdue"
)

// ValidTaskTriggerType reports whether t is a known task trigger type
func ValidTaskTriggerType(t TaskTriggerType) bool {
	switch t {
	case TaskTriggerTaskCreated, TaskTriggerStatusChanged, TaskTriggerTaskUpdated,
		TaskTriggerTaskCompleted, TaskTriggerLabelAdded, TaskTriggerLabelRemoved,
		TaskTriggerAssignedToUser, TaskTriggerPriorityChanged,
		TaskTriggerDueDateApproaching, TaskTriggerDueDateReached, TaskTriggerDueDateOverdue:
		return true
	}
	return false
}

// TaskActionType enumerates the actions a task rule or button can run.
// The enum is shared between TaskAutomationAction and TaskButtonAction.
type TaskActionType string

const (
	TaskActionChangeStatus     TaskActionType = "change_status"
	TaskActionSetPriority      TaskActionType = "set_priority"
	TaskActionAssignUser       TaskActionType = "assign_user"
	TaskActionUnassignUser     TaskActionType = "unassign_user"
	TaskActionAddLabel         TaskActionType = "add_label"
	TaskActionRemoveLabel      TaskActionType = "remove_label"
	TaskActionSetDueDate       TaskActionType = "set_due_date"
	TaskActionClearDueDate     TaskActionType = "clear_due_date"
	TaskActionMoveToProject    TaskActionType = "move_to_project"
	TaskActionSendNotification TaskActionType = "send_notification"
	TaskActionPostComment      TaskActionType = "post_comment"
	TaskActionAddToCalendar    TaskActionType = "add_to_calendar"
	TaskActionArchiveTask      TaskActionType = "archive_task"
)

// AutomationLogStatus is the outcome recorded for one rule execution attempt
type AutomationLogStatus string

const (
	AutomationLogSuccess AutomationLogStatus = "success"
	AutomationLogFailed  AutomationLogStatus = "failed"
	AutomationLogSkipped AutomationLogStatus = "skipped"
)

// TaskAutomationRule is a declarative trigger/filter/action rule scoped to an
// organization and optionally narrowed to a single project (nil = org-wide).
type TaskAutomationRule struct {
	BaseModel
	OrganizationID uuid.UUID            `gorm:"type:uuid;not null;index:idx_task_automation_rules_org" json:"organization_id"`
	ProjectID      *uuid.UUID           `gorm:"type:uuid;index:idx_task_automation_rules_project" json:"project_id,omitempty"`
	Name           string               `gorm:"type:varchar(255);not null" json:"name"`
	Description    string               `gorm:"type:text" json:"description"`
	TriggerType    TaskTriggerType      `gorm:"type:varchar(32);not null;index:idx_task_automation_rules_trigger" json:"trigger_type"`
	TriggerConfig  datatypes.JSON       `gorm:"type:jsonb" json:"trigger_config"`
	IsActive       bool                 `gorm:"default:true;index:idx_task_automation_rules_active" json:"is_active"`
	CreatedByID    uuid.UUID            `gorm:"type:uuid;not null" json:"created_by_id"`
	Actions        []TaskAutomationAction `gorm:"foreignKey:RuleID;constraint:OnDelete:CASCADE" json:"actions,omitempty"`
}

// TableName specifies the table name for TaskAutomationRule
func (TaskAutomationRule) TableName() string {
	return "task_automation_rules"
}

// TaskAutomationAction is one ordered action owned by a rule
type TaskAutomationAction struct {
	BaseModel
	RuleID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_task_automation_actions_rule" json:"rule_id"`
	ActionType   TaskActionType `gorm:"type:varchar(32);not null" json:"action_type"`
	ActionConfig datatypes.JSON `gorm:"type:jsonb" json:"action_config"`
	SortOrder    int            `gorm:"default:0" json:"sort_order"`
}

// TableName specifies the table name for TaskAutomationAction
func (TaskAutomationAction) TableName() string {
	return "task_automation_actions"
}

// TaskAutomationLog is the immutable audit record of one rule execution.
// Created only by the automation engine, never mutated afterwards.
type TaskAutomationLog struct {
	BaseModel
	RuleID     uuid.UUID           `gorm:"type:uuid;not null;index:idx_task_automation_logs_rule" json:"rule_id"`
	TaskID     uuid.UUID           `gorm:"type:uuid;not null;index:idx_task_automation_logs_task" json:"task_id"`
	Status     AutomationLogStatus `gorm:"type:varchar(16);not null" json:"status"`
	Message    string              `gorm:"type:text" json:"message"`
	ExecutedAt time.Time           `gorm:"type:timestamp;not null;index:idx_task_automation_logs_executed_at" json:"executed_at"`
	Rule       TaskAutomationRule  `gorm:"foreignKey:RuleID;constraint:OnDelete:CASCADE" json:"rule,omitempty"`
	Task       Task                `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"task,omitempty"`
}

// TableName specifies the table name for TaskAutomationLog
func (TaskAutomationLog) TableName() string {
	return "task_automation_logs"
}

// TaskButton is the manually-triggered twin of TaskAutomationRule. It has no
// trigger; instead it carries display predicates the view layer evaluates to
// decide whether to show the button on a given task.
type TaskButton struct {
	BaseModel
	OrganizationID      uuid.UUID        `gorm:"type:uuid;not null;index:idx_task_buttons_org" json:"organization_id"`
	ProjectID           *uuid.UUID       `gorm:"type:uuid;index:idx_task_buttons_project" json:"project_id,omitempty"`
	Name                string           `gorm:"type:varchar(100);not null" json:"name"`
	Icon                string           `gorm:"type:varchar(50);not null;default:'play'" json:"icon"`
	Color               string           `gorm:"type:varchar(20);not null;default:'indigo'" json:"color"`
	IsActive            bool             `gorm:"default:true" json:"is_active"`
	ShowOnStatus        datatypes.JSON   `gorm:"type:jsonb" json:"show_on_status"`
	ShowOnPriority      datatypes.JSON   `gorm:"type:jsonb" json:"show_on_priority"`
	ShowWhenHasLabelID  *uuid.UUID       `gorm:"type:uuid" json:"show_when_has_label_id,omitempty"`
	HideWhenHasLabelID  *uuid.UUID       `gorm:"type:uuid" json:"hide_when_has_label_id,omitempty"`
	CreatedByID         uuid.UUID        `gorm:"type:uuid;not null" json:"created_by_id"`
	Actions             []TaskButtonAction `gorm:"foreignKey:ButtonID;constraint:OnDelete:CASCADE" json:"actions,omitempty"`
}

// TableName specifies the table name for TaskButton
func (TaskButton) TableName() string {
	return "task_buttons"
}

// TaskButtonAction is one ordered action owned by a button
type TaskButtonAction struct {
	BaseModel
	ButtonID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_task_button_actions_button" json:"button_id"`
	ActionType   TaskActionType `gorm:"type:varchar(32);not null" json:"action_type"`
	ActionConfig datatypes.JSON `gorm:"type:jsonb" json:"action_config"`
	SortOrder    int            `gorm:"default:0" json:"sort_order"`
}

// TableName specifies the table name for TaskButtonAction
func (TaskButtonAction) TableName() string {
	return "task_button_actions"
}
