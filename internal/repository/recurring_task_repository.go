package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-automation-api/internal/domain"
)

// RecurringTaskRepository defines the interface for recurrence settings data access
type RecurringTaskRepository interface {
	Create(ctx context.Context, recurring *domain.RecurringTask) error
	FindByTaskID(ctx context.Context, taskID uuid.UUID) (*domain.RecurringTask, error)
	Update(ctx context.Context, recurring *domain.RecurringTask) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// recurringTaskRepositoryImpl is the GORM implementation of RecurringTaskRepository
type recurringTaskRepositoryImpl struct {
	db *gorm.DB
}

// NewRecurringTaskRepository creates a new instance of RecurringTaskRepository
func NewRecurringTaskRepository(db *gorm.DB) RecurringTaskRepository {
	return &recurringTaskRepositoryImpl{db: db}
}

// Create creates recurrence settings for a task
func (r *recurringTaskRepositoryImpl) Create(ctx context.Context, recurring *domain.RecurringTask) error {
	if err := r.db.WithContext(ctx).Create(recurring).Error; err != nil {
		return err
	}
	return nil
}

// FindByTaskID finds the recurrence settings attached to a task. Returns
// (nil, nil) when the task has none; most tasks do not recur.
func (r *recurringTaskRepositoryImpl) FindByTaskID(ctx context.Context, taskID uuid.UUID) (*domain.RecurringTask, error) {
	var recurring domain.RecurringTask
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		First(&recurring).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &recurring, nil
}

// Update saves the full recurrence record
func (r *recurringTaskRepositoryImpl) Update(ctx context.Context, recurring *domain.RecurringTask) error {
	if err := r.db.WithContext(ctx).Save(recurring).Error; err != nil {
		return err
	}
	return nil
}

// Delete soft deletes recurrence settings by ID
func (r *recurringTaskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&domain.RecurringTask{}, id).Error; err != nil {
		return err
	}
	return nil
}
