package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"task-automation-api/internal/domain"
	"task-automation-api/internal/dto"
	"task-automation-api/internal/repository"
	"task-automation-api/internal/response"
)

// TaskRuleService defines the interface for managing task automation rules
// and buttons. The automation engine only reads this data; all writes come
// through here.
type TaskRuleService interface {
	CreateRule(ctx context.Context, req *dto.CreateTaskRuleRequest, userID uuid.UUID) (*dto.TaskRuleResponse, error)
	GetRule(ctx context.Context, id uuid.UUID) (*dto.TaskRuleResponse, error)
	ListRules(ctx context.Context, organizationID uuid.UUID) ([]*dto.TaskRuleResponse, error)
	UpdateRule(ctx context.Context, id uuid.UUID, req *dto.UpdateTaskRuleRequest) (*dto.TaskRuleResponse, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error
	GetTaskLogs(ctx context.Context, taskID uuid.UUID, limit int) ([]*dto.AutomationLogResponse, error)
	GetRuleLogs(ctx context.Context, ruleID uuid.UUID, limit int) ([]*dto.AutomationLogResponse, error)

	CreateButton(ctx context.Context, req *dto.CreateTaskButtonRequest, userID uuid.UUID) (*dto.TaskButtonResponse, error)
	ListButtons(ctx context.Context, organizationID uuid.UUID) ([]*dto.TaskButtonResponse, error)
	DeleteButton(ctx context.Context, id uuid.UUID) error
}

// taskRuleServiceImpl is the implementation of TaskRuleService
type taskRuleServiceImpl struct {
	rules   repository.TaskAutomationRepository
	buttons repository.TaskButtonRepository
}

// NewTaskRuleService creates a new instance of TaskRuleService
func NewTaskRuleService(rules repository.TaskAutomationRepository, buttons repository.TaskButtonRepository) TaskRuleService {
	return &taskRuleServiceImpl{rules: rules, buttons: buttons}
}

// validTaskActionTypes mirrors the executor's registry for request validation
var validTaskActionTypes = map[domain.TaskActionType]struct{}{
	domain.TaskActionChangeStatus:     {},
	domain.TaskActionSetPriority:      {},
	domain.TaskActionAssignUser:       {},
	domain.TaskActionUnassignUser:     {},
	domain.TaskActionAddLabel:         {},
	domain.TaskActionRemoveLabel:      {},
	domain.TaskActionSetDueDate:       {},
	domain.TaskActionClearDueDate:     {},
	domain.TaskActionMoveToProject:    {},
	domain.TaskActionSendNotification: {},
	domain.TaskActionPostComment:      {},
	domain.TaskActionAddToCalendar:    {},
	domain.TaskActionArchiveTask:      {},
}

func buildTaskActions(requests []dto.ActionRequest) ([]domain.TaskAutomationAction, error) {
	actions := make([]domain.TaskAutomationAction, len(requests))
	for i, req := range requests {
		actionType := domain.TaskActionType(req.ActionType)
		if _, ok := validTaskActionTypes[actionType]; !ok {
			return nil, response.NewValidationError(fmt.Sprintf("Unknown action type: %s", req.ActionType), "")
		}
		actions[i] = domain.TaskAutomationAction{
			ActionType:   actionType,
			ActionConfig: datatypes.JSON(req.ActionConfig),
			SortOrder:    req.SortOrder,
		}
	}
	return actions, nil
}

// CreateRule creates a task automation rule with its actions
func (s *taskRuleServiceImpl) CreateRule(ctx context.Context, req *dto.CreateTaskRuleRequest, userID uuid.UUID) (*dto.TaskRuleResponse, error) {
	organizationID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		return nil, response.NewValidationError("Invalid organization ID", err.Error())
	}

	triggerType := domain.TaskTriggerType(req.TriggerType)
	if !domain.ValidTaskTriggerType(triggerType) {
		return nil, response.NewValidationError(fmt.Sprintf("Unknown trigger type: %s", req.TriggerType), "")
	}

	actions, err := buildTaskActions(req.Actions)
	if err != nil {
		return nil, err
	}

	rule := &domain.TaskAutomationRule{
		OrganizationID: organizationID,
		Name:           req.Name,
		Description:    req.Description,
		TriggerType:    triggerType,
		TriggerConfig:  datatypes.JSON(req.TriggerConfig),
		IsActive:       true,
		CreatedByID:    userID,
		Actions:        actions,
	}
	if req.ProjectID != nil {
		projectID, err := uuid.Parse(*req.ProjectID)
		if err != nil {
			return nil, response.NewValidationError("Invalid project ID", err.Error())
		}
		rule.ProjectID = &projectID
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if err := s.rules.CreateRule(ctx, rule); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create rule", err.Error())
	}
	return dto.ToTaskRuleResponse(rule), nil
}

// GetRule retrieves a rule by ID
func (s *taskRuleServiceImpl) GetRule(ctx context.Context, id uuid.UUID) (*dto.TaskRuleResponse, error) {
	rule, err := s.rules.FindRuleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Rule not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch rule", err.Error())
	}
	return dto.ToTaskRuleResponse(rule), nil
}

// ListRules retrieves all rules of an organization
func (s *taskRuleServiceImpl) ListRules(ctx context.Context, organizationID uuid.UUID) ([]*dto.TaskRuleResponse, error) {
	rules, err := s.rules.FindRulesByOrganization(ctx, organizationID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch rules", err.Error())
	}
	responses := make([]*dto.TaskRuleResponse, len(rules))
	for i, rule := range rules {
		responses[i] = dto.ToTaskRuleResponse(rule)
	}
	return responses, nil
}

// UpdateRule applies the requested changes to a rule. A non-nil action list
// replaces all existing actions.
func (s *taskRuleServiceImpl) UpdateRule(ctx context.Context, id uuid.UUID, req *dto.UpdateTaskRuleRequest) (*dto.TaskRuleResponse, error) {
	rule, err := s.rules.FindRuleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Rule not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch rule", err.Error())
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Description != nil {
		rule.Description = *req.Description
	}
	if req.TriggerType != nil {
		triggerType := domain.TaskTriggerType(*req.TriggerType)
		if !domain.ValidTaskTriggerType(triggerType) {
			return nil, response.NewValidationError(fmt.Sprintf("Unknown trigger type: %s", *req.TriggerType), "")
		}
		rule.TriggerType = triggerType
	}
	if req.TriggerConfig != nil {
		rule.TriggerConfig = datatypes.JSON(req.TriggerConfig)
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if req.Actions != nil {
		actions, err := buildTaskActions(*req.Actions)
		if err != nil {
			return nil, err
		}
		if err := s.rules.ReplaceActions(ctx, id, actions); err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to replace actions", err.Error())
		}
		rule.Actions = actions
	}

	// Avoid re-saving associations the ReplaceActions call already wrote.
	saved := rule.Actions
	rule.Actions = nil
	if err := s.rules.UpdateRule(ctx, rule); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update rule", err.Error())
	}
	rule.Actions = saved

	return dto.ToTaskRuleResponse(rule), nil
}

// DeleteRule deletes a rule with its actions
func (s *taskRuleServiceImpl) DeleteRule(ctx context.Context, id uuid.UUID) error {
	if _, err := s.rules.FindRuleByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFoundError("Rule not found", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to fetch rule", err.Error())
	}
	if err := s.rules.DeleteRule(ctx, id); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete rule", err.Error())
	}
	return nil
}

// GetTaskLogs retrieves the most recent automation log entries for a task
func (s *taskRuleServiceImpl) GetTaskLogs(ctx context.Context, taskID uuid.UUID, limit int) ([]*dto.AutomationLogResponse, error) {
	logs, err := s.rules.FindLogsByTask(ctx, taskID, limit)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch logs", err.Error())
	}
	responses := make([]*dto.AutomationLogResponse, len(logs))
	for i, log := range logs {
		responses[i] = dto.ToTaskLogResponse(log)
	}
	return responses, nil
}

// GetRuleLogs retrieves the most recent automation log entries for a rule
func (s *taskRuleServiceImpl) GetRuleLogs(ctx context.Context, ruleID uuid.UUID, limit int) ([]*dto.AutomationLogResponse, error) {
	logs, err := s.rules.FindLogsByRule(ctx, ruleID, limit)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch logs", err.Error())
	}
	responses := make([]*dto.AutomationLogResponse, len(logs))
	for i, log := range logs {
		responses[i] = dto.ToTaskLogResponse(log)
	}
	return responses, nil
}

// CreateButton creates a task button with its actions
func (s *taskRuleServiceImpl) CreateButton(ctx context.Context, req *dto.CreateTaskButtonRequest, userID uuid.UUID) (*dto.TaskButtonResponse, error) {
	organizationID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		return nil, response.NewValidationError("Invalid organization ID", err.Error())
	}

	actionRequests := make([]dto.ActionRequest, len(req.Actions))
	copy(actionRequests, req.Actions)
	validated, err := buildTaskActions(actionRequests)
	if err != nil {
		return nil, err
	}
	actions := make([]domain.TaskButtonAction, len(validated))
	for i, a := range validated {
		actions[i] = domain.TaskButtonAction{
			ActionType:   a.ActionType,
			ActionConfig: a.ActionConfig,
			SortOrder:    a.SortOrder,
		}
	}

	button := &domain.TaskButton{
		OrganizationID: organizationID,
		Name:           req.Name,
		IsActive:       true,
		CreatedByID:    userID,
		Actions:        actions,
	}
	if req.Icon != "" {
		button.Icon = req.Icon
	}
	if req.Color != "" {
		button.Color = req.Color
	}
	if req.ProjectID != nil {
		projectID, err := uuid.Parse(*req.ProjectID)
		if err != nil {
			return nil, response.NewValidationError("Invalid project ID", err.Error())
		}
		button.ProjectID = &projectID
	}
	if len(req.ShowOnStatus) > 0 {
		button.ShowOnStatus = mustJSONList(req.ShowOnStatus)
	}
	if len(req.ShowOnPriority) > 0 {
		button.ShowOnPriority = mustJSONList(req.ShowOnPriority)
	}
	if req.ShowWhenHasLabelID != nil {
		labelID, err := uuid.Parse(*req.ShowWhenHasLabelID)
		if err != nil {
			return nil, response.NewValidationError("Invalid label ID", err.Error())
		}
		button.ShowWhenHasLabelID = &labelID
	}
	if req.HideWhenHasLabelID != nil {
		labelID, err := uuid.Parse(*req.HideWhenHasLabelID)
		if err != nil {
			return nil, response.NewValidationError("Invalid label ID", err.Error())
		}
		button.HideWhenHasLabelID = &labelID
	}

	if err := s.buttons.Create(ctx, button); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create button", err.Error())
	}
	return dto.ToTaskButtonResponse(button), nil
}

// ListButtons retrieves all buttons of an organization
func (s *taskRuleServiceImpl) ListButtons(ctx context.Context, organizationID uuid.UUID) ([]*dto.TaskButtonResponse, error) {
	buttons, err := s.buttons.FindByOrganization(ctx, organizationID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch buttons", err.Error())
	}
	responses := make([]*dto.TaskButtonResponse, len(buttons))
	for i, button := range buttons {
		responses[i] = dto.ToTaskButtonResponse(button)
	}
	return responses, nil
}

// DeleteButton deletes a button with its actions
func (s *taskRuleServiceImpl) DeleteButton(ctx context.Context, id uuid.UUID) error {
	if _, err := s.buttons.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFoundError("Button not found", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to fetch button", err.Error())
	}
	if err := s.buttons.Delete(ctx, id); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete button", err.Error())
	}
	return nil
}
