package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-automation-api/internal/domain"
)

// TaskLabelRepository defines the interface for task label data access,
// covering both labels and their assignments to tasks.
type TaskLabelRepository interface {
	Create(ctx context.Context, label *domain.TaskLabel) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.TaskLabel, error)
	FindByIDInOrganization(ctx context.Context, id, organizationID uuid.UUID) (*domain.TaskLabel, error)
	FindByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]*domain.TaskLabel, error)
	Delete(ctx context.Context, id uuid.UUID) error

	HasLabel(ctx context.Context, taskID, labelID uuid.UUID) (bool, error)
	AssignLabel(ctx context.Context, taskID, labelID uuid.UUID) error
	UnassignLabel(ctx context.Context, taskID, labelID uuid.UUID) error
	FindLabelsByTaskID(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskLabel, error)
}

// taskLabelRepositoryImpl is the GORM implementation of TaskLabelRepository
type taskLabelRepositoryImpl struct {
	db *gorm.DB
}

// NewTaskLabelRepository creates a new instance of TaskLabelRepository
func NewTaskLabelRepository(db *gorm.DB) TaskLabelRepository {
	return &taskLabelRepositoryImpl{db: db}
}

// Create creates a new label
func (r *taskLabelRepositoryImpl) Create(ctx context.Context, label *domain.TaskLabel) error {
	if err := r.db.WithContext(ctx).Create(label).Error; err != nil {
		return err
	}
	return nil
}

// FindByID finds a label by its ID
func (r *taskLabelRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.TaskLabel, error) {
	var label domain.TaskLabel
	if err := r.db.WithContext(ctx).First(&label, id).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

// FindByIDInOrganization finds a label by ID only when it belongs to the
// given organization. Label actions validate scope through this lookup.
func (r *taskLabelRepositoryImpl) FindByIDInOrganization(ctx context.Context, id, organizationID uuid.UUID) (*domain.TaskLabel, error) {
	var label domain.TaskLabel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&label).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

// FindByOrganizationID finds all labels in an organization
func (r *taskLabelRepositoryImpl) FindByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]*domain.TaskLabel, error) {
	var labels []*domain.TaskLabel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("name ASC").
		Find(&labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}

// Delete soft deletes a label by ID
func (r *taskLabelRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&domain.TaskLabel{}, id).Error; err != nil {
		return err
	}
	return nil
}

// HasLabel reports whether a task currently carries a label
func (r *taskLabelRepositoryImpl) HasLabel(ctx context.Context, taskID, labelID uuid.UUID) (bool, error) {
	var assignment domain.TaskLabelAssignment
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND label_id = ?", taskID, labelID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// AssignLabel attaches a label to a task. Already-assigned labels are left
// alone so repeated rule runs stay idempotent.
func (r *taskLabelRepositoryImpl) AssignLabel(ctx context.Context, taskID, labelID uuid.UUID) error {
	has, err := r.HasLabel(ctx, taskID, labelID)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	assignment := &domain.TaskLabelAssignment{
		TaskID:  taskID,
		LabelID: labelID,
	}
	if err := r.db.WithContext(ctx).Create(assignment).Error; err != nil {
		return err
	}
	return nil
}

// UnassignLabel detaches a label from a task if the assignment exists
func (r *taskLabelRepositoryImpl) UnassignLabel(ctx context.Context, taskID, labelID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("task_id = ? AND label_id = ?", taskID, labelID).
		Delete(&domain.TaskLabelAssignment{}).Error; err != nil {
		return err
	}
	return nil
}

// FindLabelsByTaskID finds all labels currently attached to a task
func (r *taskLabelRepositoryImpl) FindLabelsByTaskID(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskLabel, error) {
	var labels []*domain.TaskLabel
	if err := r.db.WithContext(ctx).
		Joins("JOIN task_label_assignments ON task_label_assignments.label_id = task_labels.id").
		Where("task_label_assignments.task_id = ?", taskID).
		Find(&labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}
