package dto

import (
	"time"

	"github.com/google/uuid"

	"task-automation-api/internal/domain"
)

// CreateProjectRequest is a request to create a project
type CreateProjectRequest struct {
	OrganizationID string `json:"organizationId" binding:"required,uuid"`
	Title          string `json:"title" binding:"required,max=255"`
	Description    string `json:"description"`
}

// ProjectResponse is a project API response
type ProjectResponse struct {
	ProjectID      uuid.UUID `json:"projectId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ToProjectResponse converts a Project to ProjectResponse
func ToProjectResponse(project *domain.Project) *ProjectResponse {
	return &ProjectResponse{
		ProjectID:      project.ID,
		OrganizationID: project.OrganizationID,
		Title:          project.Title,
		Description:    project.Description,
		Status:         string(project.Status),
		CreatedAt:      project.CreatedAt,
	}
}

// CreateBoardRequest is a request to create a board
type CreateBoardRequest struct {
	OrganizationID string `json:"organizationId" binding:"required,uuid"`
	Title          string `json:"title" binding:"required,max=255"`
}

// BoardColumnResponse is a board column API response
type BoardColumnResponse struct {
	ColumnID  uuid.UUID `json:"columnId"`
	BoardID   uuid.UUID `json:"boardId"`
	Title     string    `json:"title"`
	SortOrder int       `json:"sortOrder"`
}

// BoardResponse is a board API response including its columns
type BoardResponse struct {
	BoardID        uuid.UUID             `json:"boardId"`
	OrganizationID uuid.UUID             `json:"organizationId"`
	Title          string                `json:"title"`
	Columns        []BoardColumnResponse `json:"columns"`
	CreatedAt      time.Time             `json:"createdAt"`
}

// ToBoardResponse converts a Board to BoardResponse
func ToBoardResponse(board *domain.Board) *BoardResponse {
	columns := make([]BoardColumnResponse, len(board.Columns))
	for i, column := range board.Columns {
		columns[i] = BoardColumnResponse{
			ColumnID:  column.ID,
			BoardID:   column.BoardID,
			Title:     column.Title,
			SortOrder: column.SortOrder,
		}
	}
	return &BoardResponse{
		BoardID:        board.ID,
		OrganizationID: board.OrganizationID,
		Title:          board.Title,
		Columns:        columns,
		CreatedAt:      board.CreatedAt,
	}
}

// CreateColumnRequest is a request to create a board column
type CreateColumnRequest struct {
	Title     string `json:"title" binding:"required,max=255"`
	SortOrder int    `json:"sortOrder"`
}

// CreateLabelRequest is a request to create a task or card label
type CreateLabelRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Color string `json:"color" binding:"omitempty,max=20"`
}
