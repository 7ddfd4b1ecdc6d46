package service

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"task-automation-api/internal/domain"
)

// Default filter values applied when the trigger config omits a key
const (
	defaultDaysBefore        = 3
	defaultTriggerEveryNDays = 1
)

// triggerConfig is the decoded form of a rule's trigger_config JSON. All
// fields are optional; a nil pointer means the key was absent and the
// corresponding constraint does not apply.
type triggerConfig struct {
	LabelID           *string `json:"label_id,omitempty"`
	ToStatus          *string `json:"to_status,omitempty"`
	FromStatus        *string `json:"from_status,omitempty"`
	ToPriority        *string `json:"to_priority,omitempty"`
	ToColumnID        *string `json:"to_column_id,omitempty"`
	FromColumnID      *string `json:"from_column_id,omitempty"`
	UserID            *string `json:"user_id,omitempty"`
	DaysBefore        *int    `json:"days_before,omitempty"`
	TriggerEveryNDays *int    `json:"trigger_every_n_days,omitempty"`
}

// decodeTriggerConfig parses raw trigger config JSON. Empty or malformed
// config decodes to the zero value, which matches everything.
func decodeTriggerConfig(raw datatypes.JSON) triggerConfig {
	var cfg triggerConfig
	if len(raw) == 0 {
		return cfg
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return triggerConfig{}
	}
	return cfg
}

// TaskEvent carries the context of one task trigger firing. Only the fields
// relevant to the trigger type are set; the rest stay nil.
type TaskEvent struct {
	Type           domain.TaskTriggerType
	LabelID        *uuid.UUID
	FromStatus     *domain.TaskStatus
	ToStatus       *domain.TaskStatus
	ToPriority     *domain.TaskPriority
	AssignedUserID *uuid.UUID
	DaysUntilDue   *int
	DaysOverdue    *int
}

// CardEvent carries the context of one card trigger firing
type CardEvent struct {
	Type         domain.CardTriggerType
	LabelID      *uuid.UUID
	FromColumnID *uuid.UUID
	ToColumnID   *uuid.UUID
	DaysUntilDue *int
	DaysOverdue  *int
}

// labelMatches reports whether a label event passes the rule's label filter.
// A config without label_id matches any label. IDs are compared by their
// canonical string form.
func labelMatches(cfg triggerConfig, labelID *uuid.UUID) bool {
	if cfg.LabelID == nil {
		return true
	}
	if labelID == nil {
		return false
	}
	return labelID.String() == *cfg.LabelID
}

// statusMatches reports whether a status change passes the rule's status
// filter. to_status and from_status are independent optional constraints
// joined by AND.
func statusMatches(cfg triggerConfig, from, to *domain.TaskStatus) bool {
	if cfg.ToStatus != nil {
		if to == nil || string(*to) != *cfg.ToStatus {
			return false
		}
	}
	if cfg.FromStatus != nil {
		if from == nil || string(*from) != *cfg.FromStatus {
			return false
		}
	}
	return true
}

// priorityMatches reports whether a priority change passes the rule's filter.
// Only the resulting priority is constrainable.
func priorityMatches(cfg triggerConfig, to *domain.TaskPriority) bool {
	if cfg.ToPriority == nil {
		return true
	}
	if to == nil {
		return false
	}
	return string(*to) == *cfg.ToPriority
}

// columnMatches reports whether a card move passes the rule's column filter.
// to_column_id and from_column_id are independent optional constraints.
func columnMatches(cfg triggerConfig, from, to *uuid.UUID) bool {
	if cfg.ToColumnID != nil {
		if to == nil || to.String() != *cfg.ToColumnID {
			return false
		}
	}
	if cfg.FromColumnID != nil {
		if from == nil || from.String() != *cfg.FromColumnID {
			return false
		}
	}
	return true
}

// assignedUserMatches reports whether an assignment event passes the rule's
// user filter. A config without user_id matches any assignee.
func assignedUserMatches(cfg triggerConfig, userID *uuid.UUID) bool {
	if cfg.UserID == nil {
		return true
	}
	if userID == nil {
		return false
	}
	return userID.String() == *cfg.UserID
}

// daysThresholdMatches reports whether an approaching due date is exactly at
// the configured threshold. Rules fire on the configured day only, not every
// day inside the window.
func daysThresholdMatches(cfg triggerConfig, daysUntilDue *int) bool {
	if daysUntilDue == nil {
		return false
	}
	threshold := defaultDaysBefore
	if cfg.DaysBefore != nil {
		threshold = *cfg.DaysBefore
	}
	return *daysUntilDue == threshold
}

// intervalMatches reports whether an overdue task is at a repeat boundary.
// A non-positive configured interval behaves as 1 (fire every day).
func intervalMatches(cfg triggerConfig, daysOverdue *int) bool {
	if daysOverdue == nil {
		return false
	}
	every := defaultTriggerEveryNDays
	if cfg.TriggerEveryNDays != nil && *cfg.TriggerEveryNDays > 0 {
		every = *cfg.TriggerEveryNDays
	}
	return *daysOverdue%every == 0
}

// taskRuleMatches evaluates a task rule's trigger filter against an event.
// Trigger types without a filter always match.
func taskRuleMatches(rule *domain.TaskAutomationRule, event TaskEvent) bool {
	cfg := decodeTriggerConfig(rule.TriggerConfig)

	switch event.Type {
	case domain.TaskTriggerLabelAdded, domain.TaskTriggerLabelRemoved:
		return labelMatches(cfg, event.LabelID)
	case domain.TaskTriggerStatusChanged:
		return statusMatches(cfg, event.FromStatus, event.ToStatus)
	case domain.TaskTriggerPriorityChanged:
		return priorityMatches(cfg, event.ToPriority)
	case domain.TaskTriggerAssignedToUser:
		return assignedUserMatches(cfg, event.AssignedUserID)
	case domain.TaskTriggerDueDateApproaching:
		return daysThresholdMatches(cfg, event.DaysUntilDue)
	case domain.TaskTriggerDueDateOverdue:
		return intervalMatches(cfg, event.DaysOverdue)
	default:
		return true
	}
}

// cardRuleMatches evaluates a card rule's trigger filter against an event
func cardRuleMatches(rule *domain.CardAutomationRule, event CardEvent) bool {
	cfg := decodeTriggerConfig(rule.TriggerConfig)

	switch event.Type {
	case domain.CardTriggerLabelAdded, domain.CardTriggerLabelRemoved:
		return labelMatches(cfg, event.LabelID)
	case domain.CardTriggerCardMoved:
		return columnMatches(cfg, event.FromColumnID, event.ToColumnID)
	case domain.CardTriggerDueDateApproaching:
		return daysThresholdMatches(cfg, event.DaysUntilDue)
	case domain.CardTriggerDueDateOverdue:
		return intervalMatches(cfg, event.DaysOverdue)
	default:
		return true
	}
}
