package dto

import (
	"time"

	"github.com/google/uuid"

	"task-automation-api/internal/domain"
)

// CreateTaskRequest represents the request to create a new task
type CreateTaskRequest struct {
	ProjectID       string     `json:"projectId" binding:"required,uuid"`
	Title           string     `json:"title" binding:"required,max=255"`
	Subtitle        string     `json:"subtitle" binding:"omitempty,max=255"`
	Description     string     `json:"description"`
	Priority        string     `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate         *time.Time `json:"dueDate"`
	ScheduledStart  *time.Time `json:"scheduledStart"`
	DurationMinutes *int       `json:"durationMinutes"`
	AssignedToID    string     `json:"assignedToId" binding:"required,uuid"`
}

// UpdateTaskRequest represents the request to update a task. Nil fields are
// left unchanged.
type UpdateTaskRequest struct {
	Title           *string    `json:"title" binding:"omitempty,max=255"`
	Subtitle        *string    `json:"subtitle" binding:"omitempty,max=255"`
	Description     *string    `json:"description"`
	Status          *string    `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority        *string    `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate         *time.Time `json:"dueDate"`
	ScheduledStart  *time.Time `json:"scheduledStart"`
	DurationMinutes *int       `json:"durationMinutes"`
	AssignedToID    *string    `json:"assignedToId" binding:"omitempty,uuid"`
	Progress        *int       `json:"progress" binding:"omitempty,min=0,max=100"`
}

// TaskLabelRequest represents a label attach or detach request
type TaskLabelRequest struct {
	LabelID string `json:"labelId" binding:"required,uuid"`
}

// RecurrenceRequest represents the request to configure task recurrence
type RecurrenceRequest struct {
	IsRecurring    bool       `json:"isRecurring"`
	Frequency      string     `json:"frequency" binding:"omitempty,oneof=DAILY WEEKLY MONTHLY"`
	Interval       int        `json:"interval" binding:"omitempty,min=1"`
	EndDate        *time.Time `json:"endDate"`
	MaxOccurrences *int       `json:"maxOccurrences" binding:"omitempty,min=1"`
}

// TaskResponse represents the task response
type TaskResponse struct {
	TaskID             uuid.UUID  `json:"taskId"`
	ProjectID          uuid.UUID  `json:"projectId"`
	Title              string     `json:"title"`
	Subtitle           string     `json:"subtitle,omitempty"`
	Description        string     `json:"description,omitempty"`
	Status             string     `json:"status"`
	Priority           string     `json:"priority"`
	DueDate            *time.Time `json:"dueDate,omitempty"`
	ScheduledStart     *time.Time `json:"scheduledStart,omitempty"`
	DurationMinutes    *int       `json:"durationMinutes,omitempty"`
	AssignedToID       uuid.UUID  `json:"assignedToId"`
	Progress           int        `json:"progress"`
	SortOrder          int        `json:"sortOrder"`
	IsArchived         bool       `json:"isArchived"`
	ArchivedAt         *time.Time `json:"archivedAt,omitempty"`
	RecurrenceParentID *uuid.UUID `json:"recurrenceParentId,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// ToTaskResponse converts a task domain model to its response DTO
func ToTaskResponse(task *domain.Task) *TaskResponse {
	return &TaskResponse{
		TaskID:             task.ID,
		ProjectID:          task.ProjectID,
		Title:              task.Title,
		Subtitle:           task.Subtitle,
		Description:        task.Description,
		Status:             string(task.Status),
		Priority:           string(task.Priority),
		DueDate:            task.DueDate,
		ScheduledStart:     task.ScheduledStart,
		DurationMinutes:    task.DurationMinutes,
		AssignedToID:       task.AssignedToID,
		Progress:           task.Progress,
		SortOrder:          task.SortOrder,
		IsArchived:         task.IsArchived,
		ArchivedAt:         task.ArchivedAt,
		RecurrenceParentID: task.RecurrenceParentID,
		CreatedAt:          task.CreatedAt,
		UpdatedAt:          task.UpdatedAt,
	}
}

// LabelResponse represents a label response
type LabelResponse struct {
	LabelID uuid.UUID `json:"labelId"`
	Name    string    `json:"name"`
	Color   string    `json:"color"`
}

// ToTaskLabelResponse converts a task label domain model to its response DTO
func ToTaskLabelResponse(label *domain.TaskLabel) *LabelResponse {
	return &LabelResponse{
		LabelID: label.ID,
		Name:    label.Name,
		Color:   label.Color,
	}
}
