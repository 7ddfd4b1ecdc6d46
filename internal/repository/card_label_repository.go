package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-automation-api/internal/domain"
)

// CardLabelRepository defines the interface for card label data access
type CardLabelRepository interface {
	Create(ctx context.Context, label *domain.CardLabel) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.CardLabel, error)
	FindByIDInBoard(ctx context.Context, id, boardID uuid.UUID) (*domain.CardLabel, error)
	FindByBoardID(ctx context.Context, boardID uuid.UUID) ([]*domain.CardLabel, error)
	Delete(ctx context.Context, id uuid.UUID) error

	HasLabel(ctx context.Context, cardID, labelID uuid.UUID) (bool, error)
	AssignLabel(ctx context.Context, cardID, labelID uuid.UUID) error
	UnassignLabel(ctx context.Context, cardID, labelID uuid.UUID) error
	FindLabelsByCardID(ctx context.Context, cardID uuid.UUID) ([]*domain.CardLabel, error)
}

// cardLabelRepositoryImpl is the GORM implementation of CardLabelRepository
type cardLabelRepositoryImpl struct {
	db *gorm.DB
}

// NewCardLabelRepository creates a new instance of CardLabelRepository
func NewCardLabelRepository(db *gorm.DB) CardLabelRepository {
	return &cardLabelRepositoryImpl{db: db}
}

// Create creates a new label
func (r *cardLabelRepositoryImpl) Create(ctx context.Context, label *domain.CardLabel) error {
	if err := r.db.WithContext(ctx).Create(label).Error; err != nil {
		return err
	}
	return nil
}

// FindByID finds a label by its ID
func (r *cardLabelRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.CardLabel, error) {
	var label domain.CardLabel
	if err := r.db.WithContext(ctx).First(&label, id).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

// FindByIDInBoard finds a label by ID only when it belongs to the given board
func (r *cardLabelRepositoryImpl) FindByIDInBoard(ctx context.Context, id, boardID uuid.UUID) (*domain.CardLabel, error) {
	var label domain.CardLabel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND board_id = ?", id, boardID).
		First(&label).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

// FindByBoardID finds all labels on a board
func (r *cardLabelRepositoryImpl) FindByBoardID(ctx context.Context, boardID uuid.UUID) ([]*domain.CardLabel, error) {
	var labels []*domain.CardLabel
	if err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("name ASC").
		Find(&labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}

// Delete soft deletes a label by ID
func (r *cardLabelRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&domain.CardLabel{}, id).Error; err != nil {
		return err
	}
	return nil
}

// HasLabel reports whether a card currently carries a label
func (r *cardLabelRepositoryImpl) HasLabel(ctx context.Context, cardID, labelID uuid.UUID) (bool, error) {
	var assignment domain.CardLabelAssignment
	err := r.db.WithContext(ctx).
		Where("card_id = ? AND label_id = ?", cardID, labelID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// AssignLabel attaches a label to a card, leaving existing assignments alone
func (r *cardLabelRepositoryImpl) AssignLabel(ctx context.Context, cardID, labelID uuid.UUID) error {
	has, err := r.HasLabel(ctx, cardID, labelID)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	assignment := &domain.CardLabelAssignment{
		CardID:  cardID,
		LabelID: labelID,
	}
	if err := r.db.WithContext(ctx).Create(assignment).Error; err != nil {
		return err
	}
	return nil
}

// UnassignLabel detaches a label from a card if the assignment exists
func (r *cardLabelRepositoryImpl) UnassignLabel(ctx context.Context, cardID, labelID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("card_id = ? AND label_id = ?", cardID, labelID).
		Delete(&domain.CardLabelAssignment{}).Error; err != nil {
		return err
	}
	return nil
}

// FindLabelsByCardID finds all labels currently attached to a card
func (r *cardLabelRepositoryImpl) FindLabelsByCardID(ctx context.Context, cardID uuid.UUID) ([]*domain.CardLabel, error) {
	var labels []*domain.CardLabel
	if err := r.db.WithContext(ctx).
		Joins("JOIN card_label_assignments ON card_label_assignments.label_id = card_labels.id").
		Where("card_label_assignments.card_id = ?", cardID).
		Find(&labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}
