package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-automation-api/internal/domain"
)

// BoardRepository defines the interface for board and column data access
type BoardRepository interface {
	Create(ctx context.Context, board *domain.Board) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	FindByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]*domain.Board, error)
	Delete(ctx context.Context, id uuid.UUID) error

	CreateColumn(ctx context.Context, column *domain.BoardColumn) error
	FindColumnByID(ctx context.Context, id uuid.UUID) (*domain.BoardColumn, error)
	FindColumnByIDInBoard(ctx context.Context, id, boardID uuid.UUID) (*domain.BoardColumn, error)
	FindColumnsByBoardID(ctx context.Context, boardID uuid.UUID) ([]*domain.BoardColumn, error)
}

// boardRepositoryImpl is the GORM implementation of BoardRepository
type boardRepositoryImpl struct {
	db *gorm.DB
}

// NewBoardRepository creates a new instance of BoardRepository
func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &boardRepositoryImpl{db: db}
}

// Create creates a new board
func (r *boardRepositoryImpl) Create(ctx context.Context, board *domain.Board) error {
	if err := r.db.WithContext(ctx).Create(board).Error; err != nil {
		return err
	}
	return nil
}

// FindByID finds a board by its ID with columns preloaded in display order
func (r *boardRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	var board domain.Board
	if err := r.db.WithContext(ctx).
		Preload("Columns", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		First(&board, id).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

// FindByOrganizationID finds all boards in an organization
func (r *boardRepositoryImpl) FindByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]*domain.Board, error) {
	var boards []*domain.Board
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

// Delete soft deletes a board by ID
func (r *boardRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&domain.Board{}, id).Error; err != nil {
		return err
	}
	return nil
}

// CreateColumn creates a new board column
func (r *boardRepositoryImpl) CreateColumn(ctx context.Context, column *domain.BoardColumn) error {
	if err := r.db.WithContext(ctx).Create(column).Error; err != nil {
		return err
	}
	return nil
}

// FindColumnByID finds a column by its ID
func (r *boardRepositoryImpl) FindColumnByID(ctx context.Context, id uuid.UUID) (*domain.BoardColumn, error) {
	var column domain.BoardColumn
	if err := r.db.WithContext(ctx).First(&column, id).Error; err != nil {
		return nil, err
	}
	return &column, nil
}

// FindColumnByIDInBoard finds a column by ID only when it belongs to the
// given board. Card moves validate the target column through this scope check.
func (r *boardRepositoryImpl) FindColumnByIDInBoard(ctx context.Context, id, boardID uuid.UUID) (*domain.BoardColumn, error) {
	var column domain.BoardColumn
	if err := r.db.WithContext(ctx).
		Where("id = ? AND board_id = ?", id, boardID).
		First(&column).Error; err != nil {
		return nil, err
	}
	return &column, nil
}

// FindColumnsByBoardID finds all columns of a board in display order
func (r *boardRepositoryImpl) FindColumnsByBoardID(ctx context.Context, boardID uuid.UUID) ([]*domain.BoardColumn, error) {
	var columns []*domain.BoardColumn
	if err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("sort_order ASC").
		Find(&columns).Error; err != nil {
		return nil, err
	}
	return columns, nil
}
