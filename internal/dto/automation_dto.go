package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"task-automation-api/internal/domain"
)

// ActionRequest represents one action inside a rule or button request
type ActionRequest struct {
	ActionType   string          `json:"actionType" binding:"required"`
	ActionConfig json.RawMessage `json:"actionConfig"`
	SortOrder    int             `json:"sortOrder"`
}

// CreateTaskRuleRequest represents the request to create a task automation rule
type CreateTaskRuleRequest struct {
	OrganizationID string          `json:"organizationId" binding:"required,uuid"`
	ProjectID      *string         `json:"projectId" binding:"omitempty,uuid"`
	Name           string          `json:"name" binding:"required,max=255"`
	Description    string          `json:"description"`
	TriggerType    string          `json:"triggerType" binding:"required"`
	TriggerConfig  json.RawMessage `json:"triggerConfig"`
	IsActive       *bool           `json:"isActive"`
	Actions        []ActionRequest `json:"actions" binding:"required,min=1"`
}

// UpdateTaskRuleRequest represents the request to update a task automation
// rule. Nil fields are left unchanged; a non-nil Actions replaces the whole
// action list.
type UpdateTaskRuleRequest struct {
	Name          *string          `json:"name" binding:"omitempty,max=255"`
	Description   *string          `json:"description"`
	TriggerType   *string          `json:"triggerType"`
	TriggerConfig json.RawMessage  `json:"triggerConfig"`
	IsActive      *bool            `json:"isActive"`
	Actions       *[]ActionRequest `json:"actions"`
}

// ActionResponse represents one action inside a rule or button response
type ActionResponse struct {
	ActionID     uuid.UUID       `json:"actionId"`
	ActionType   string          `json:"actionType"`
	ActionConfig json.RawMessage `json:"actionConfig,omitempty"`
	SortOrder    int             `json:"sortOrder"`
}

// TaskRuleResponse represents the task automation rule response
type TaskRuleResponse struct {
	RuleID         uuid.UUID        `json:"ruleId"`
	OrganizationID uuid.UUID        `json:"organizationId"`
	ProjectID      *uuid.UUID       `json:"projectId,omitempty"`
	Name           string           `json:"name"`
	Description    string           `json:"description,omitempty"`
	TriggerType    string           `json:"triggerType"`
	TriggerConfig  json.RawMessage  `json:"triggerConfig,omitempty"`
	IsActive       bool             `json:"isActive"`
	Actions        []ActionResponse `json:"actions"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// ToTaskRuleResponse converts a rule domain model to its response DTO
func ToTaskRuleResponse(rule *domain.TaskAutomationRule) *TaskRuleResponse {
	actions := make([]ActionResponse, len(rule.Actions))
	for i, a := range rule.Actions {
		actions[i] = ActionResponse{
			ActionID:     a.ID,
			ActionType:   string(a.ActionType),
			ActionConfig: json.RawMessage(a.ActionConfig),
			SortOrder:    a.SortOrder,
		}
	}
	return &TaskRuleResponse{
		RuleID:         rule.ID,
		OrganizationID: rule.OrganizationID,
		ProjectID:      rule.ProjectID,
		Name:           rule.Name,
		Description:    rule.Description,
		TriggerType:    string(rule.TriggerType),
		TriggerConfig:  json.RawMessage(rule.TriggerConfig),
		IsActive:       rule.IsActive,
		Actions:        actions,
		CreatedAt:      rule.CreatedAt,
		UpdatedAt:      rule.UpdatedAt,
	}
}

// AutomationLogResponse represents one automation audit log entry
type AutomationLogResponse struct {
	LogID      uuid.UUID `json:"logId"`
	RuleID     uuid.UUID `json:"ruleId"`
	EntityID   uuid.UUID `json:"entityId"`
	Status     string    `json:"status"`
	Message    string    `json:"message,omitempty"`
	ExecutedAt time.Time `json:"executedAt"`
}

// ToTaskLogResponse converts a task automation log to its response DTO
func ToTaskLogResponse(log *domain.TaskAutomationLog) *AutomationLogResponse {
	return &AutomationLogResponse{
		LogID:      log.ID,
		RuleID:     log.RuleID,
		EntityID:   log.TaskID,
		Status:     string(log.Status),
		Message:    log.Message,
		ExecutedAt: log.ExecutedAt,
	}
}

// ToCardLogResponse converts a card automation log to its response DTO
func ToCardLogResponse(log *domain.CardAutomationLog) *AutomationLogResponse {
	return &AutomationLogResponse{
		LogID:      log.ID,
		RuleID:     log.RuleID,
		EntityID:   log.CardID,
		Status:     string(log.Status),
		Message:    log.Message,
		ExecutedAt: log.ExecutedAt,
	}
}

// CreateTaskButtonRequest represents the request to create a task button
type CreateTaskButtonRequest struct {
	OrganizationID     string          `json:"organizationId" binding:"required,uuid"`
	ProjectID          *string         `json:"projectId" binding:"omitempty,uuid"`
	Name               string          `json:"name" binding:"required,max=100"`
	Icon               string          `json:"icon" binding:"omitempty,max=50"`
	Color              string          `json:"color" binding:"omitempty,max=20"`
	ShowOnStatus       []string        `json:"showOnStatus" binding:"omitempty,dive,oneof=TODO IN_PROGRESS DONE"`
	ShowOnPriority     []string        `json:"showOnPriority" binding:"omitempty,dive,oneof=LOW MEDIUM HIGH"`
	ShowWhenHasLabelID *string         `json:"showWhenHasLabelId" binding:"omitempty,uuid"`
	HideWhenHasLabelID *string         `json:"hideWhenHasLabelId" binding:"omitempty,uuid"`
	Actions            []ActionRequest `json:"actions" binding:"required,min=1"`
}

// ExecuteTaskButtonRequest represents the request to run a button on a task
type ExecuteTaskButtonRequest struct {
	TaskID string `json:"taskId" binding:"required,uuid"`
}

// TaskButtonResponse represents the task button response
type TaskButtonResponse struct {
	ButtonID       uuid.UUID        `json:"buttonId"`
	OrganizationID uuid.UUID        `json:"organizationId"`
	ProjectID      *uuid.UUID       `json:"projectId,omitempty"`
	Name           string           `json:"name"`
	Icon           string           `json:"icon"`
	Color          string           `json:"color"`
	IsActive       bool             `json:"isActive"`
	Actions        []ActionResponse `json:"actions"`
}

// ToTaskButtonResponse converts a button domain model to its response DTO
func ToTaskButtonResponse(button *domain.TaskButton) *TaskButtonResponse {
	actions := make([]ActionResponse, len(button.Actions))
	for i, a := range button.Actions {
		actions[i] = ActionResponse{
			ActionID:     a.ID,
			ActionType:   string(a.ActionType),
			ActionConfig: json.RawMessage(a.ActionConfig),
			SortOrder:    a.SortOrder,
		}
	}
	return &TaskButtonResponse{
		ButtonID:       button.ID,
		OrganizationID: button.OrganizationID,
		ProjectID:      button.ProjectID,
		Name:           button.Name,
		Icon:           button.Icon,
		Color:          button.Color,
		IsActive:       button.IsActive,
		Actions:        actions,
	}
}

// ExecuteButtonResponse reports whether a button actually ran
type ExecuteButtonResponse struct {
	Executed bool `json:"executed"`
}

// CreateCardRuleRequest represents the request to create a card automation rule
type CreateCardRuleRequest struct {
	BoardID       string          `json:"boardId" binding:"required,uuid"`
	Name          string          `json:"name" binding:"required,max=255"`
	Description   string          `json:"description"`
	TriggerType   string          `json:"triggerType" binding:"required"`
	TriggerConfig json.RawMessage `json:"triggerConfig"`
	IsActive      *bool           `json:"isActive"`
	Actions       []ActionRequest `json:"actions" binding:"required,min=1"`
}

// CardRuleResponse represents the card automation rule response
type CardRuleResponse struct {
	RuleID        uuid.UUID        `json:"ruleId"`
	BoardID       uuid.UUID        `json:"boardId"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	TriggerType   string           `json:"triggerType"`
	TriggerConfig json.RawMessage  `json:"triggerConfig,omitempty"`
	IsActive      bool             `json:"isActive"`
	Actions       []ActionResponse `json:"actions"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// ToCardRuleResponse converts a card rule domain model to its response DTO
func ToCardRuleResponse(rule *domain.CardAutomationRule) *CardRuleResponse {
	actions := make([]ActionResponse, len(rule.Actions))
	for i, a := range rule.Actions {
		actions[i] = ActionResponse{
			ActionID:     a.ID,
			ActionType:   string(a.ActionType),
			ActionConfig: json.RawMessage(a.ActionConfig),
			SortOrder:    a.SortOrder,
		}
	}
	return &CardRuleResponse{
		RuleID:        rule.ID,
		BoardID:       rule.BoardID,
		Name:          rule.Name,
		Description:   rule.Description,
		TriggerType:   string(rule.TriggerType),
		TriggerConfig: json.RawMessage(rule.TriggerConfig),
		IsActive:      rule.IsActive,
		Actions:       actions,
		CreatedAt:     rule.CreatedAt,
		UpdatedAt:     rule.UpdatedAt,
	}
}

// CreateCardButtonRequest represents the request to create a card button
type CreateCardButtonRequest struct {
	BoardID string          `json:"boardId" binding:"required,uuid"`
	Name    string          `json:"name" binding:"required,max=100"`
	Icon    string          `json:"icon" binding:"omitempty,max=50"`
	Color   string          `json:"color" binding:"omitempty,max=20"`
	Actions []ActionRequest `json:"actions" binding:"required,min=1"`
}

// ExecuteCardButtonRequest represents the request to run a button on a card
type ExecuteCardButtonRequest struct {
	CardID string `json:"cardId" binding:"required,uuid"`
}

// CardButtonResponse represents the card button response
type CardButtonResponse struct {
	ButtonID uuid.UUID        `json:"buttonId"`
	BoardID  uuid.UUID        `json:"boardId"`
	Name     string           `json:"name"`
	Icon     string           `json:"icon"`
	Color    string           `json:"color"`
	IsActive bool             `json:"isActive"`
	Actions  []ActionResponse `json:"actions"`
}

// ToCardButtonResponse converts a card button domain model to its response DTO
func ToCardButtonResponse(button *domain.CardButton) *CardButtonResponse {
	actions := make([]ActionResponse, len(button.Actions))
	for i, a := range button.Actions {
		actions[i] = ActionResponse{
			ActionID:     a.ID,
			ActionType:   string(a.ActionType),
			ActionConfig: json.RawMessage(a.ActionConfig),
			SortOrder:    a.SortOrder,
		}
	}
	return &CardButtonResponse{
		ButtonID: button.ID,
		BoardID:  button.BoardID,
		Name:     button.Name,
		Icon:     button.Icon,
		Color:    button.Color,
		IsActive: button.IsActive,
		Actions:  actions,
	}
}
