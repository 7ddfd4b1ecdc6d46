package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-automation-api/internal/domain"
)

// TaskButtonRepository defines the interface for task button data access
type TaskButtonRepository interface {
	Create(ctx context.Context, button *domain.TaskButton) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.TaskButton, error)
	FindActiveByID(ctx context.Context, id uuid.UUID) (*domain.TaskButton, error)
	FindByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*domain.TaskButton, error)
	Update(ctx context.Context, button *domain.TaskButton) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// taskButtonRepositoryImpl is the GORM implementation of TaskButtonRepository
type taskButtonRepositoryImpl struct {
	db *gorm.DB
}

// NewTaskButtonRepository creates a new instance of TaskButtonRepository
func NewTaskButtonRepository(db *gorm.DB) TaskButtonRepository {
	return &taskButtonRepositoryImpl{db: db}
}

// Create creates a new button together with its actions
func (r *taskButtonRepositoryImpl) Create(ctx context.Context, button *domain.TaskButton) error {
	if err := r.db.WithContext(ctx).Create(button).Error; err != nil {
		return err
	}
	return nil
}

// FindByID finds a button by ID with its actions preloaded in execution order
func (r *taskButtonRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.TaskButton, error) {
	var button domain.TaskButton
	if err := r.db.WithContext(ctx).
		Preload("Actions", orderedActions).
		First(&button, id).Error; err != nil {
		return nil, err
	}
	return &button, nil
}

// FindActiveByID finds a button by ID only when it is active
func (r *taskButtonRepositoryImpl) FindActiveByID(ctx context.Context, id uuid.UUID) (*domain.TaskButton, error) {
	var button domain.TaskButton
	if err := r.db.WithContext(ctx).
		Preload("Actions", orderedActions).
		Where("id = ? AND is_active = ?", id, true).
		First(&button).Error; err != nil {
		return nil, err
	}
	return &button, nil
}

// FindByOrganization finds all buttons in an organization
func (r *taskButtonRepositoryImpl) FindByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*domain.TaskButton, error) {
	var buttons []*domain.TaskButton
	if err := r.db.WithContext(ctx).
		Preload("Actions", orderedActions).
		Where("organization_id = ?", organizationID).
		Order("created_at ASC").
		Find(&buttons).Error; err != nil {
		return nil, err
	}
	return buttons, nil
}

// Update saves the full button record
func (r *taskButtonRepositoryImpl) Update(ctx context.Context, button *domain.TaskButton) error {
	if err := r.db.WithContext(ctx).Save(button).Error; err != nil {
		return err
	}
	return nil
}

// Delete soft deletes a button and its actions
func (r *taskButtonRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("button_id = ?", id).Delete(&domain.TaskButtonAction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.TaskButton{}, id).Error
	})
}
