package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-automation-api/internal/domain"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	FindByIDWithProject(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	MaxSortOrderInProject(ctx context.Context, projectID uuid.UUID) (int, error)
	CountByRecurrenceParent(ctx context.Context, parentID uuid.UUID) (int64, error)
	FindWithDueDates(ctx context.Context) ([]*domain.Task, error)
}

// taskRepositoryImpl is the GORM implementation of TaskRepository
type taskRepositoryImpl struct {
	db *gorm.DB
}

// NewTaskRepository creates a new instance of TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepositoryImpl{db: db}
}

// Create creates a new task
func (r *taskRepositoryImpl) Create(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return err
	}
	return nil
}

// FindByID finds a task by its ID
func (r *taskRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByIDWithProject finds a task by ID with its project preloaded
func (r *taskRepositoryImpl) FindByIDWithProject(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).
		Preload("Project").
		First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByProjectID finds all non-archived tasks in a project ordered by sort order
func (r *taskRepositoryImpl) FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*domain.Task, error) {
	var tasks []*domain.Task
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND is_archived = ?", projectID, false).
		Order("sort_order ASC, created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update saves the full task record
func (r *taskRepositoryImpl) Update(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return err
	}
	return nil
}

// UpdateFields updates only the given columns of a task. Action handlers use
// this so one action never overwrites fields written by an earlier action.
func (r *taskRepositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return err
	}
	return nil
}

// Delete soft deletes a task by ID
func (r *taskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&domain.Task{}, id).Error; err != nil {
		return err
	}
	return nil
}

// MaxSortOrderInProject returns the highest sort order among tasks in a
// project, or -1 when the project has no tasks.
func (r *taskRepositoryImpl) MaxSortOrderInProject(ctx context.Context, projectID uuid.UUID) (int, error) {
	var result struct {
		MaxSort *int
	}
	if err := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Select("MAX(sort_order) as max_sort").
		Where("project_id = ?", projectID).
		Scan(&result).Error; err != nil {
		return 0, err
	}
	if result.MaxSort == nil {
		return -1, nil
	}
	return *result.MaxSort, nil
}

// CountByRecurrenceParent counts tasks belonging to a recurrence chain root
func (r *taskRepositoryImpl) CountByRecurrenceParent(ctx context.Context, parentID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("recurrence_parent_id = ?", parentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindWithDueDates finds all non-archived, non-done tasks that have a due date
func (r *taskRepositoryImpl) FindWithDueDates(ctx context.Context) ([]*domain.Task, error) {
	var tasks []*domain.Task
	if err := r.db.WithContext(ctx).
		Preload("Project").
		Where("due_date IS NOT NULL AND is_archived = ? AND status <> ?", false, domain.TaskStatusDone).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
