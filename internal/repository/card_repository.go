package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-automation-api/internal/domain"
)

// CardRepository defines the interface for board card data access
type CardRepository interface {
	Create(ctx context.Context, card *domain.BoardCard) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.BoardCard, error)
	FindByIDWithColumn(ctx context.Context, id uuid.UUID) (*domain.BoardCard, error)
	FindByColumnID(ctx context.Context, columnID uuid.UUID) ([]*domain.BoardCard, error)
	Update(ctx context.Context, card *domain.BoardCard) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	MaxSortOrderInColumn(ctx context.Context, columnID uuid.UUID, excludeCardID *uuid.UUID) (int, error)
	MinSortOrderInColumn(ctx context.Context, columnID uuid.UUID, excludeCardID *uuid.UUID) (int, error)
	FindWithDueDates(ctx context.Context) ([]*domain.BoardCard, error)
}

// cardRepositoryImpl is the GORM implementation of CardRepository
type cardRepositoryImpl struct {
	db *gorm.DB
}

// NewCardRepository creates a new instance of CardRepository
func NewCardRepository(db *gorm.DB) CardRepository {
	return &cardRepositoryImpl{db: db}
}

// Create creates a new card
func (r *cardRepositoryImpl) Create(ctx context.Context, card *domain.BoardCard) error {
	if err := r.db.WithContext(ctx).Create(card).Error; err != nil {
		return err
	}
	return nil
}

// FindByID finds a card by its ID
func (r *cardRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.BoardCard, error) {
	var card domain.BoardCard
	if err := r.db.WithContext(ctx).First(&card, id).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// FindByIDWithColumn finds a card by ID with its column preloaded. The
// automation engine needs the column to resolve the card's board scope.
func (r *cardRepositoryImpl) FindByIDWithColumn(ctx context.Context, id uuid.UUID) (*domain.BoardCard, error) {
	var card domain.BoardCard
	if err := r.db.WithContext(ctx).
		Preload("Column").
		First(&card, id).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// FindByColumnID finds all cards in a column ordered by sort order
func (r *cardRepositoryImpl) FindByColumnID(ctx context.Context, columnID uuid.UUID) ([]*domain.BoardCard, error) {
	var cards []*domain.BoardCard
	if err := r.db.WithContext(ctx).
		Where("column_id = ?", columnID).
		Order("sort_order ASC, created_at ASC").
		Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

// Update saves the full card record
func (r *cardRepositoryImpl) Update(ctx context.Context, card *domain.BoardCard) error {
	if err := r.db.WithContext(ctx).Save(card).Error; err != nil {
		return err
	}
	return nil
}

// UpdateFields updates only the given columns of a card
func (r *cardRepositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Model(&domain.BoardCard{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return err
	}
	return nil
}

// Delete soft deletes a card by ID
func (r *cardRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&domain.BoardCard{}, id).Error; err != nil {
		return err
	}
	return nil
}

// MaxSortOrderInColumn returns the highest sort order among the cards of a
// column, or -1 when there are none. The card being repositioned can be
// excluded so it does not count against itself.
func (r *cardRepositoryImpl) MaxSortOrderInColumn(ctx context.Context, columnID uuid.UUID, excludeCardID *uuid.UUID) (int, error) {
	var result struct {
		MaxSort *int
	}
	query := r.db.WithContext(ctx).
		Model(&domain.BoardCard{}).
		Select("MAX(sort_order) as max_sort").
		Where("column_id = ?", columnID)
	if excludeCardID != nil {
		query = query.Where("id <> ?", *excludeCardID)
	}
	if err := query.Scan(&result).Error; err != nil {
		return 0, err
	}
	if result.MaxSort == nil {
		return -1, nil
	}
	return *result.MaxSort, nil
}

// MinSortOrderInColumn returns the lowest sort order among the cards of a
// column, or -1 when there are none, optionally excluding one card.
func (r *cardRepositoryImpl) MinSortOrderInColumn(ctx context.Context, columnID uuid.UUID, excludeCardID *uuid.UUID) (int, error) {
	var result struct {
		MinSort *int
	}
	query := r.db.WithContext(ctx).
		Model(&domain.BoardCard{}).
		Select("MIN(sort_order) as min_sort").
		Where("column_id = ?", columnID)
	if excludeCardID != nil {
		query = query.Where("id <> ?", *excludeCardID)
	}
	if err := query.Scan(&result).Error; err != nil {
		return 0, err
	}
	if result.MinSort == nil {
		return -1, nil
	}
	return *result.MinSort, nil
}

// FindWithDueDates finds all cards that have a due date, with their column
// preloaded so the caller can resolve board scope.
func (r *cardRepositoryImpl) FindWithDueDates(ctx context.Context) ([]*domain.BoardCard, error) {
	var cards []*domain.BoardCard
	if err := r.db.WithContext(ctx).
		Preload("Column").
		Where("due_date IS NOT NULL").
		Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}
