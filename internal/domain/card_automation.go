package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CardTriggerType enumerates the events that can fire a card automation rule
type CardTriggerType string

const (
	CardTriggerCardCreated        CardTriggerType = "card_created"
	CardTriggerCardMoved          CardTriggerType = "card_moved"
	CardTriggerCardUpdated        CardTriggerType = "card_updated"
	CardTriggerLabelAdded         CardTriggerType = "label_added"
	CardTriggerLabelRemoved       CardTriggerType = "label_removed"
	CardTriggerDueDateApproaching CardTriggerType = "due_date_approaching"
	CardTriggerDueDateReached     CardTriggerType = "due_date_reached"
	CardTriggerDueDateOverdue     CardTriggerType = "due_date_overdue"
)

// ValidCardTriggerType reports whether t is a known card trigger type
func ValidCardTriggerType(t CardTriggerType) bool {
	switch t {
	case CardTriggerCardCreated, CardTriggerCardMoved, CardTriggerCardUpdated,
		CardTriggerLabelAdded, CardTriggerLabelRemoved,
		CardTriggerDueDateApproaching, CardTriggerDueDateReached, CardTriggerDueDateOverdue:
		return true
	}
	return false
}

// CardActionType enumerates the actions a card rule or button can run
type CardActionType string

const (
	CardActionMoveCard         CardActionType = "move_card"
	CardActionMoveToTop        CardActionType = "move_to_top"
	CardActionMoveToBottom     CardActionType = "move_to_bottom"
	CardActionAssignUser       CardActionType = "assign_user"
	CardActionUnassignUser     CardActionType = "unassign_user"
	CardActionAddLabel         CardActionType = "add_label"
	CardActionRemoveLabel      CardActionType = "remove_label"
	CardActionSetDueDate       CardActionType = "set_due_date"
	CardActionClearDueDate     CardActionType = "clear_due_date"
	CardActionSendNotification CardActionType = "send_notification"
	CardActionPostComment      CardActionType = "post_comment"
)

// CardAutomationRule is a declarative trigger/filter/action rule scoped to a board
type CardAutomationRule struct {
	BaseModel
	BoardID       uuid.UUID            `gorm:"type:uuid;not null;index:idx_card_automation_rules_board" json:"board_id"`
	Name          string               `gorm:"type:varchar(255);not null" json:"name"`
	Description   string               `gorm:"type:text" json:"description"`
	TriggerType   CardTriggerType      `gorm:"type:varchar(32);not null;index:idx_card_automation_rules_trigger" json:"trigger_type"`
	TriggerConfig datatypes.JSON       `gorm:"type:jsonb" json:"trigger_config"`
	IsActive      bool                 `gorm:"default:true;index:idx_card_automation_rules_active" json:"is_active"`
	CreatedByID   uuid.UUID            `gorm:"type:uuid;not null" json:"created_by_id"`
	Actions       []CardAutomationAction `gorm:"foreignKey:RuleID;constraint:OnDelete:CASCADE" json:"actions,omitempty"`
}

// TableName specifies the table name for CardAutomationRule
func (CardAutomationRule) TableName() string {
	return "card_automation_rules"
}

// CardAutomationAction is one ordered action owned by a card rule
type CardAutomationAction struct {
	BaseModel
	RuleID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_card_automation_actions_rule" json:"rule_id"`
	ActionType   CardActionType `gorm:"type:varchar(32);not null" json:"action_type"`
	ActionConfig datatypes.JSON `gorm:"type:jsonb" json:"action_config"`
	SortOrder    int            `gorm:"default:0" json:"sort_order"`
}

// TableName specifies the table name for CardAutomationAction
func (CardAutomationAction) TableName() string {
	return "card_automation_actions"
}

// CardAutomationLog is the immutable audit record of one card rule execution
type CardAutomationLog struct {
	BaseModel
	RuleID     uuid.UUID           `gorm:"type:uuid;not null;index:idx_card_automation_logs_rule" json:"rule_id"`
	CardID     uuid.UUID           `gorm:"type:uuid;not null;index:idx_card_automation_logs_card" json:"card_id"`
	Status     AutomationLogStatus `gorm:"type:varchar(16);not null" json:"status"`
	Message    string              `gorm:"type:text" json:"message"`
	ExecutedAt time.Time           `gorm:"type:timestamp;not null;index:idx_card_automation_logs_executed_at" json:"executed_at"`
	Rule       CardAutomationRule  `gorm:"foreignKey:RuleID;constraint:OnDelete:CASCADE" json:"rule,omitempty"`
	Card       BoardCard           `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE" json:"card,omitempty"`
}

// TableName specifies the table name for CardAutomationLog
func (CardAutomationLog) TableName() string {
	return "card_automation_logs"
}

// CardButton is the manually-triggered twin of CardAutomationRule
type CardButton struct {
	BaseModel
	BoardID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_card_buttons_board" json:"board_id"`
	Name        string           `gorm:"type:varchar(100);not null" json:"name"`
	Icon        string           `gorm:"type:varchar(50);not null;default:'play'" json:"icon"`
	Color       string           `gorm:"type:varchar(20);not null;default:'indigo'" json:"color"`
	IsActive    bool             `gorm:"default:true" json:"is_active"`
	CreatedByID uuid.UUID        `gorm:"type:uuid;not null" json:"created_by_id"`
	Actions     []CardButtonAction `gorm:"foreignKey:ButtonID;constraint:OnDelete:CASCADE" json:"actions,omitempty"`
}

// TableName specifies the table name for CardButton
func (CardButton) TableName() string {
	return "card_buttons"
}

// CardButtonAction is one ordered action owned by a card button
type CardButtonAction struct {
	BaseModel
	ButtonID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_card_button_actions_button" json:"button_id"`
	ActionType   CardActionType `gorm:"type:varchar(32);not null" json:"action_type"`
	ActionConfig datatypes.JSON `gorm:"type:jsonb" json:"action_config"`
	SortOrder    int            `gorm:"default:0" json:"sort_order"`
}

// TableName specifies the table name for CardButtonAction
func (CardButtonAction) TableName() string {
	return "card_button_actions"
}
