package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-automation-api/internal/domain"
	"task-automation-api/internal/dto"
	"task-automation-api/internal/repository"
	"task-automation-api/internal/response"
)

// WorkspaceService covers the supporting structure the automation engine
// operates inside: projects, boards, columns, and labels. These are plain
// CRUD operations without automation side effects.
type WorkspaceService interface {
	CreateProject(ctx context.Context, organizationID uuid.UUID, title, description string, userID uuid.UUID) (*domain.Project, error)
	ListProjects(ctx context.Context, organizationID uuid.UUID) ([]*domain.Project, error)

	CreateBoard(ctx context.Context, organizationID uuid.UUID, title string, userID uuid.UUID) (*domain.Board, error)
	GetBoard(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	CreateColumn(ctx context.Context, boardID uuid.UUID, title string, sortOrder int) (*domain.BoardColumn, error)

	CreateTaskLabel(ctx context.Context, organizationID uuid.UUID, name, color string) (*dto.LabelResponse, error)
	ListTaskLabels(ctx context.Context, organizationID uuid.UUID) ([]*dto.LabelResponse, error)
	CreateCardLabel(ctx context.Context, boardID uuid.UUID, name, color string) (*dto.LabelResponse, error)
	ListCardLabels(ctx context.Context, boardID uuid.UUID) ([]*dto.LabelResponse, error)
}

// workspaceServiceImpl is the implementation of WorkspaceService
type workspaceServiceImpl struct {
	projects   repository.ProjectRepository
	boards     repository.BoardRepository
	taskLabels repository.TaskLabelRepository
	cardLabels repository.CardLabelRepository
}

// NewWorkspaceService creates a new instance of WorkspaceService
func NewWorkspaceService(
	projects repository.ProjectRepository,
	boards repository.BoardRepository,
	taskLabels repository.TaskLabelRepository,
	cardLabels repository.CardLabelRepository,
) WorkspaceService {
	return &workspaceServiceImpl{
		projects:   projects,
		boards:     boards,
		taskLabels: taskLabels,
		cardLabels: cardLabels,
	}
}

// CreateProject creates a project in an organization
func (s *workspaceServiceImpl) CreateProject(ctx context.Context, organizationID uuid.UUID, title, description string, userID uuid.UUID) (*domain.Project, error) {
	project := &domain.Project{
		OrganizationID: organizationID,
		Title:          title,
		Description:    description,
		Status:         domain.ProjectStatusActive,
		CreatedByID:    userID,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create project", err.Error())
	}
	return project, nil
}

// ListProjects retrieves all projects of an organization
func (s *workspaceServiceImpl) ListProjects(ctx context.Context, organizationID uuid.UUID) ([]*domain.Project, error) {
	projects, err := s.projects.FindByOrganizationID(ctx, organizationID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch projects", err.Error())
	}
	return projects, nil
}

// CreateBoard creates a board in an organization
func (s *workspaceServiceImpl) CreateBoard(ctx context.Context, organizationID uuid.UUID, title string, userID uuid.UUID) (*domain.Board, error) {
	board := &domain.Board{
		OrganizationID: organizationID,
		Title:          title,
		CreatedByID:    userID,
	}
	if err := s.boards.Create(ctx, board); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create board", err.Error())
	}
	return board, nil
}

// GetBoard retrieves a board with its columns
func (s *workspaceServiceImpl) GetBoard(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	board, err := s.boards.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Board not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch board", err.Error())
	}
	return board, nil
}

// CreateColumn creates a column on a board
func (s *workspaceServiceImpl) CreateColumn(ctx context.Context, boardID uuid.UUID, title string, sortOrder int) (*domain.BoardColumn, error) {
	if _, err := s.boards.FindByID(ctx, boardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Board not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch board", err.Error())
	}
	column := &domain.BoardColumn{
		BoardID:   boardID,
		Title:     title,
		SortOrder: sortOrder,
	}
	if err := s.boards.CreateColumn(ctx, column); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create column", err.Error())
	}
	return column, nil
}

// CreateTaskLabel creates an organization-scoped task label
func (s *workspaceServiceImpl) CreateTaskLabel(ctx context.Context, organizationID uuid.UUID, name, color string) (*dto.LabelResponse, error) {
	if name == "" {
		return nil, response.NewValidationError("Label name is required", "")
	}
	label := &domain.TaskLabel{
		OrganizationID: organizationID,
		Name:           name,
	}
	if color != "" {
		label.Color = color
	}
	if err := s.taskLabels.Create(ctx, label); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create label", err.Error())
	}
	return dto.ToTaskLabelResponse(label), nil
}

// ListTaskLabels retrieves all task labels of an organization
func (s *workspaceServiceImpl) ListTaskLabels(ctx context.Context, organizationID uuid.UUID) ([]*dto.LabelResponse, error) {
	labels, err := s.taskLabels.FindByOrganizationID(ctx, organizationID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch labels", err.Error())
	}
	responses := make([]*dto.LabelResponse, len(labels))
	for i, label := range labels {
		responses[i] = dto.ToTaskLabelResponse(label)
	}
	return responses, nil
}

// CreateCardLabel creates a board-scoped card label
func (s *workspaceServiceImpl) CreateCardLabel(ctx context.Context, boardID uuid.UUID, name, color string) (*dto.LabelResponse, error) {
	if name == "" {
		return nil, response.NewValidationError("Label name is required", "")
	}
	label := &domain.CardLabel{
		BoardID: boardID,
		Name:    name,
	}
	if color != "" {
		label.Color = color
	}
	if err := s.cardLabels.Create(ctx, label); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create label", err.Error())
	}
	return &dto.LabelResponse{LabelID: label.ID, Name: label.Name, Color: label.Color}, nil
}

// ListCardLabels retrieves all card labels of a board
func (s *workspaceServiceImpl) ListCardLabels(ctx context.Context, boardID uuid.UUID) ([]*dto.LabelResponse, error) {
	labels, err := s.cardLabels.FindByBoardID(ctx, boardID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch labels", err.Error())
	}
	responses := make([]*dto.LabelResponse, len(labels))
	for i, label := range labels {
		responses[i] = &dto.LabelResponse{LabelID: label.ID, Name: label.Name, Color: label.Color}
	}
	return responses, nil
}
