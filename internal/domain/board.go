package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Board represents a kanban board within an organization
type Board struct {
	BaseModel
	OrganizationID uuid.UUID     `gorm:"type:uuid;not null;index:idx_boards_organization_id" json:"organization_id"`
	Title          string        `gorm:"type:varchar(255);not null" json:"title"`
	CreatedByID    uuid.UUID     `gorm:"type:uuid;not null" json:"created_by_id"`
	Columns        []BoardColumn `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"columns,omitempty"`
	Labels         []CardLabel   `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"labels,omitempty"`
}

// TableName specifies the table name for Board
func (Board) TableName() string {
	return "boards"
}

// BoardColumn is an ordered lane of cards on a board
type BoardColumn struct {
	BaseModel
	BoardID   uuid.UUID   `gorm:"type:uuid;not null;index:idx_board_columns_board_id" json:"board_id"`
	Title     string      `gorm:"type:varchar(255);not null" json:"title"`
	SortOrder int         `gorm:"default:0" json:"sort_order"`
	Cards     []BoardCard `gorm:"foreignKey:ColumnID;constraint:OnDelete:CASCADE" json:"cards,omitempty"`
}

// TableName specifies the table name for BoardColumn
func (BoardColumn) TableName() string {
	return "board_columns"
}

// BoardCard is the mutable card entity card automation rules act on.
// Unlike Task, AssigneeID is nullable so unassign-user actually clears it.
type BoardCard struct {
	BaseModel
	ColumnID    uuid.UUID   `gorm:"type:uuid;not null;index:idx_board_cards_column_id" json:"column_id"`
	Title       string      `gorm:"type:varchar(255);not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	SortOrder   int         `gorm:"default:0;index:idx_board_cards_sort_order" json:"sort_order"`
	DueDate     *time.Time  `gorm:"type:timestamp;index:idx_board_cards_due_date" json:"due_date,omitempty"`
	AssigneeID  *uuid.UUID  `gorm:"type:uuid;index:idx_board_cards_assignee_id" json:"assignee_id,omitempty"`
	CreatedByID uuid.UUID   `gorm:"type:uuid;not null" json:"created_by_id"`
	Column      BoardColumn `gorm:"foreignKey:ColumnID;constraint:OnDelete:CASCADE" json:"column,omitempty"`
}

// TableName specifies the table name for BoardCard
func (BoardCard) TableName() string {
	return "board_cards"
}

// CardLabel is a board-scoped label attachable to cards
type CardLabel struct {
	BaseModel
	BoardID uuid.UUID `gorm:"type:uuid;not null;index:idx_card_labels_board_id;uniqueIndex:uq_card_labels_board_name" json:"board_id"`
	Name    string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_card_labels_board_name" json:"name"`
	Color   string    `gorm:"type:varchar(20);not null;default:'gray'" json:"color"`
}

// TableName specifies the table name for CardLabel
func (CardLabel) TableName() string {
	return "card_labels"
}

// CardLabelAssignment is the m2m through table between cards and labels.
// No soft delete: removal hard-deletes the row so re-attaching the same
// pair never collides with the unique index.
type CardLabelAssignment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"type:timestamp;not null" json:"created_at"`
	CardID    uuid.UUID `gorm:"type:uuid;not null;index:idx_card_label_assignments_card;uniqueIndex:uq_card_label_assignments" json:"card_id"`
	LabelID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_card_label_assignments" json:"label_id"`
	Card      BoardCard `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE" json:"card,omitempty"`
	Label     CardLabel `gorm:"foreignKey:LabelID;constraint:OnDelete:CASCADE" json:"label,omitempty"`
}

// BeforeCreate generates the UUID primary key if not already set
func (a *CardLabelAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for CardLabelAssignment
func (CardLabelAssignment) TableName() string {
	return "card_label_assignments"
}
