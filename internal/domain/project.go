package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus represents the lifecycle status of a project
type ProjectStatus string

const (
	ProjectStatusPlanned   ProjectStatus = "PLANNED"
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusCancelled ProjectStatus = "CANCELLED"
)

// Project represents a project entity within an organization
type Project struct {
	BaseModel
	OrganizationID uuid.UUID     `gorm:"type:uuid;not null;index:idx_projects_organization_id" json:"organization_id"`
	Title          string        `gorm:"type:varchar(255);not null" json:"title"`
	Description    string        `gorm:"type:text" json:"description"`
	Status         ProjectStatus `gorm:"type:varchar(20);not null;default:'PLANNED'" json:"status"`
	StartDate      *time.Time    `gorm:"type:timestamp" json:"start_date,omitempty"`
	EndDate        *time.Time    `gorm:"type:timestamp" json:"end_date,omitempty"`
	CreatedByID    uuid.UUID     `gorm:"type:uuid;not null" json:"created_by_id"`
	IsArchived     bool          `gorm:"default:false;index:idx_projects_is_archived" json:"is_archived"`
	ArchivedAt     *time.Time    `gorm:"type:timestamp" json:"archived_at,omitempty"`
	Tasks          []Task        `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
}

// TableName specifies the table name for Project
func (Project) TableName() string {
	return "projects"
}
