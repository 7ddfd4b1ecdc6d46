package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStatus represents the workflow status of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// ValidTaskStatus reports whether s is a known task status
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// ValidTaskPriority reports whether p is a known task priority
func ValidTaskPriority(p TaskPriority) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task is the primary mutable work item automation rules act on.
// AssignedToID is not nullable; the unassign-user action is therefore a
// documented no-op for tasks (cards differ, see BoardCard).
type Task struct {
	BaseModel
	ProjectID          uuid.UUID    `gorm:"type:uuid;not null;index:idx_tasks_project_id" json:"project_id"`
	Title              string       `gorm:"type:varchar(255);not null" json:"title"`
	Subtitle           string       `gorm:"type:varchar(255)" json:"subtitle"`
	Description        string       `gorm:"type:text" json:"description"`
	Status             TaskStatus   `gorm:"type:varchar(20);not null;default:'TODO';index:idx_tasks_status" json:"status"`
	Priority           TaskPriority `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
	DueDate            *time.Time   `gorm:"type:timestamp;index:idx_tasks_due_date" json:"due_date,omitempty"`
	ScheduledStart     *time.Time   `gorm:"type:timestamp" json:"scheduled_start,omitempty"`
	DurationMinutes    *int         `gorm:"" json:"duration_minutes,omitempty"`
	AssignedToID       uuid.UUID    `gorm:"type:uuid;not null;index:idx_tasks_assigned_to" json:"assigned_to_id"`
	Progress           int          `gorm:"default:0" json:"progress"`
	SortOrder          int          `gorm:"default:0;index:idx_tasks_sort_order" json:"sort_order"`
	IsArchived         bool         `gorm:"default:false;index:idx_tasks_is_archived" json:"is_archived"`
	ArchivedAt         *time.Time   `gorm:"type:timestamp" json:"archived_at,omitempty"`
	ArchivedByID       *uuid.UUID   `gorm:"type:uuid" json:"archived_by_id,omitempty"`
	RecurrenceParentID *uuid.UUID   `gorm:"type:uuid;index:idx_tasks_recurrence_parent" json:"recurrence_parent_id,omitempty"`
	Project            Project      `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"project,omitempty"`
}

// TableName specifies the table name for Task
func (Task) TableName() string {
	return "tasks"
}

// RecurrenceFrequency represents the unit a recurring task advances by
type RecurrenceFrequency string

const (
	RecurrenceDaily   RecurrenceFrequency = "DAILY"
	RecurrenceWeekly  RecurrenceFrequency = "WEEKLY"
	RecurrenceMonthly RecurrenceFrequency = "MONTHLY"
)

// RecurringTask holds the recurrence settings attached one-to-one to a task.
// ParentID references the chain root (the first task of the chain); it is
// nil only on the chain's first link.
type RecurringTask struct {
	BaseModel
	TaskID         uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:uq_recurring_tasks_task" json:"task_id"`
	IsRecurring    bool                `gorm:"default:false" json:"is_recurring"`
	Frequency      RecurrenceFrequency `gorm:"type:varchar(20)" json:"frequency"`
	Interval       int                 `gorm:"default:1" json:"interval"`
	EndDate        *time.Time          `gorm:"type:timestamp" json:"end_date,omitempty"`
	MaxOccurrences *int                `gorm:"" json:"max_occurrences,omitempty"`
	ParentID       *uuid.UUID          `gorm:"type:uuid;index:idx_recurring_tasks_parent" json:"parent_id,omitempty"`
	Task           Task                `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"task,omitempty"`
}

// TableName specifies the table name for RecurringTask
func (RecurringTask) TableName() string {
	return "recurring_tasks"
}

// TaskLabel is an organization-scoped label attachable to tasks
type TaskLabel struct {
	BaseModel
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index:idx_task_labels_organization_id;uniqueIndex:uq_task_labels_org_name" json:"organization_id"`
	Name           string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_task_labels_org_name" json:"name"`
	Color          string    `gorm:"type:varchar(20);not null;default:'gray'" json:"color"`
}

// TableName specifies the table name for TaskLabel
func (TaskLabel) TableName() string {
	return "task_labels"
}

// TaskLabelAssignment is the m2m through table between tasks and labels.
// No soft delete: removal hard-deletes the row so re-attaching the same
// pair never collides with the unique index.
type TaskLabelAssignment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"type:timestamp;not null" json:"created_at"`
	TaskID    uuid.UUID `gorm:"type:uuid;not null;index:idx_task_label_assignments_task;uniqueIndex:uq_task_label_assignments" json:"task_id"`
	LabelID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_task_label_assignments" json:"label_id"`
	Task      Task      `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"task,omitempty"`
	Label     TaskLabel `gorm:"foreignKey:LabelID;constraint:OnDelete:CASCADE" json:"label,omitempty"`
}

// BeforeCreate generates the UUID primary key if not already set
func (a *TaskLabelAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for TaskLabelAssignment
func (TaskLabelAssignment) TableName() string {
	return "task_label_assignments"
}
