package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"task-automation-api/internal/client"
	"task-automation-api/internal/domain"
)

// MockUserClient is a mock implementation of client.UserClient
type MockUserClient struct {
	GetUserFunc       func(ctx context.Context, userID uuid.UUID) (*client.User, error)
	ValidateTokenFunc func(ctx context.Context, token string) (*client.AuthData, error)
}

func (m *MockUserClient) GetUser(ctx context.Context, userID uuid.UUID) (*client.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, userID)
	}
	return &client.User{ID: userID, IsActive: true}, nil
}

func (m *MockUserClient) ValidateToken(ctx context.Context, token string) (*client.AuthData, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, token)
	}
	return &client.AuthData{}, nil
}

func loadTaskWithProject(t *testing.T, db *gorm.DB, id uuid.UUID) *domain.Task {
	t.Helper()
	var task domain.Task
	require.NoError(t, db.Preload("Project").First(&task, id).Error)
	return &task
}

func TestTaskActionExecutor_ChangeStatus(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	seeded := seedTask(t, db, project.ID)
	task := loadTaskWithProject(t, db, seeded.ID)

	executor := NewTaskActionExecutor(nil, zap.NewNop())
	ctx := context.Background()

	err := executor.Execute(ctx, db, domain.TaskActionChangeStatus,
		mustJSON(t, map[string]string{"status": "DONE"}), task, uuid.New())
	require.NoError(t, err)

	// Both the database row and the in-memory task reflect the change
	assert.Equal(t, domain.TaskStatusDone, task.Status)
	var stored domain.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, domain.TaskStatusDone, stored.Status)
}

func TestTaskActionExecutor_InvalidConfigIsNoOp(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	seeded := seedTask(t, db, project.ID)
	task := loadTaskWithProject(t, db, seeded.ID)

	executor := NewTaskActionExecutor(nil, zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		name       string
		actionType domain.TaskActionType
		config     map[string]interface{}
	}{
		{"unknown status value", domain.TaskActionChangeStatus, map[string]interface{}{"status": "BOGUS"}},
		{"missing status key", domain.TaskActionChangeStatus, map[string]interface{}{}},
		{"unknown priority value", domain.TaskActionSetPriority, map[string]interface{}{"priority": "URGENT"}},
		{"malformed label id", domain.TaskActionAddLabel, map[string]interface{}{"label_id": "not-a-uuid"}},
		{"missing project id", domain.TaskActionMoveToProject, map[string]interface{}{}},
		{"malformed user id", domain.TaskActionAssignUser, map[string]interface{}{"user_id": "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := executor.Execute(ctx, db, tt.actionType, mustJSON(t, tt.config), task, uuid.New())
			require.NoError(t, err)
		})
	}

	// Nothing changed
	var stored domain.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, domain.TaskStatusTodo, stored.Status)
	assert.Equal(t, domain.TaskPriorityMedium, stored.Priority)
	assert.Equal(t, project.ID, stored.ProjectID)
}

func TestTaskActionExecutor_UnknownActionType(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	seeded := seedTask(t, db, project.ID)
	task := loadTaskWithProject(t, db, seeded.ID)

	executor := NewTaskActionExecutor(nil, zap.NewNop())
	err := executor.Execute(context.Background(), db, domain.TaskActionType("explode"), nil, task, uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action type")
}

func TestTaskActionExecutor_AssignTriggeredBy(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	seeded := seedTask(t, db, project.ID)
	task := loadTaskWithProject(t, db, seeded.ID)

	executor := NewTaskActionExecutor(nil, zap.NewNop())
	ctx := context.Background()
	actor := uuid.New()

	err := executor.Execute(ctx, db, domain.TaskActionAssignUser,
		mustJSON(t, map[string]bool{"assign_triggered_by": true}), task, actor)
	require.NoError(t, err)
	assert.Equal(t, actor, task.AssignedToID)

	// Without an actor (scheduled trigger) the action is a no-op
	original := task.AssignedToID
	err = executor.Execute(ctx, db, domain.TaskActionAssignUser,
		mustJSON(t, map[string]bool{"assign_triggered_by": true}), task, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, original, task.AssignedToID)
}

func TestTaskActionExecutor_AssignUser_InactiveSkipped(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	seeded := seedTask(t, db, project.ID)
	task := loadTaskWithProject(t, db, seeded.ID)
	original := task.AssignedToID

	target := uuid.New()
	users := &MockUserClient{
		GetUserFunc: func(ctx context.Context, userID uuid.UUID) (*client.User, error) {
			return &client.User{ID: userID, IsActive: false}, nil
		},
	}

	executor := NewTaskActionExecutor(users, zap.NewNop())
	err := executor.Execute(context.Background(), db, domain.TaskActionAssignUser,
		mustJSON(t, map[string]string{"user_id": target.String()}), task, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, original, task.AssignedToID)
}

func TestTaskActionExecutor_AddLabel_ScopeChecked(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	otherOrg := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	seeded := seedTask(t, db, project.ID)
	task := loadTaskWithProject(t, db, seeded.ID)

	inScope := seedTaskLabel(t, db, org.ID, "urgent")
	outOfScope := seedTaskLabel(t, db, otherOrg.ID, "foreign")

	executor := NewTaskActionExecutor(nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, executor.Execute(ctx, db, domain.TaskActionAddLabel,
		mustJSON(t, map[string]string{"label_id": inScope.ID.String()}), task, uuid.New()))
	require.NoError(t, executor.Execute(ctx, db, domain.TaskActionAddLabel,
		mustJSON(t, map[string]string{"label_id": outOfScope.ID.String()}), task, uuid.New()))

	var assignments []domain.TaskLabelAssignment
	require.NoError(t, db.Where("task_id = ?", task.ID).Find(&assignments).Error)
	require.Len(t, assignments, 1)
	assert.Equal(t, inScope.ID, assignments[0].LabelID)

	// Adding the same label again stays idempotent
	require.NoError(t, executor.Execute(ctx, db, domain.TaskActionAddLabel,
		mustJSON(t, map[string]string{"label_id": inScope.ID.String()}), task, uuid.New()))
	require.NoError(t, db.Where("task_id = ?", task.ID).Find(&assignments).Error)
	assert.Len(t, assignments, 1)
}

func TestTaskActionExecutor_DueDateActions(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	seeded := seedTask(t, db, project.ID)
	task := loadTaskWithProject(t, db, seeded.ID)

	executor := NewTaskActionExecutor(nil, zap.NewNop())
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	executor.now = func() time.Time { return base }
	ctx := context.Background()

	// Default offset is 3 days
	require.NoError(t, executor.Execute(ctx, db, domain.TaskActionSetDueDate, nil, task, uuid.New()))
	require.NotNil(t, task.DueDate)
	assert.Equal(t, base.AddDate(0, 0, 3), *task.DueDate)

	// Explicit offset
	require.NoError(t, executor.Execute(ctx, db, domain.TaskActionSetDueDate,
		mustJSON(t, map[string]int{"days_offset": 10}), task, uuid.New()))
	assert.Equal(t, base.AddDate(0, 0, 10), *task.DueDate)

	require.NoError(t, executor.Execute(ctx, db, domain.TaskActionClearDueDate, nil, task, uuid.New()))
	assert.Nil(t, task.DueDate)
	var stored domain.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Nil(t, stored.DueDate)
}

func TestTaskActionExecutor_MoveToProject(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	otherOrg := seedOrganization(t, db)
	source := seedProject(t, db, org.ID)
	target := seedProject(t, db, org.ID)
	foreign := seedProject(t, db, otherOrg.ID)

	// Existing task in the target project occupies sort order 0
	seedTask(t, db, target.ID)
	seeded := seedTask(t, db, source.ID)
	task := loadTaskWithProject(t, db, seeded.ID)

	executor := NewTaskActionExecutor(nil, zap.NewNop())
	ctx := context.Background()

	// Cross-organization move is silently skipped
	require.NoError(t, executor.Execute(ctx, db, domain.TaskActionMoveToProject,
		mustJSON(t, map[string]string{"project_id": foreign.ID.String()}), task, uuid.New()))
	assert.Equal(t, source.ID, task.ProjectID)

	// Same-organization move appends to the target's sort order
	require.NoError(t, executor.Execute(ctx, db, domain.TaskActionMoveToProject,
		mustJSON(t, map[string]string{"project_id": target.ID.String()}), task, uuid.New()))
	assert.Equal(t, target.ID, task.ProjectID)
	assert.Equal(t, 1, task.SortOrder)
}

func TestTaskActionExecutor_AddToCalendar(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	seeded := seedTask(t, db, project.ID)
	task := loadTaskWithProject(t, db, seeded.ID)

	executor := NewTaskActionExecutor(nil, zap.NewNop())
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	executor.now = func() time.Time { return base }
	ctx := context.Background()

	require.NoError(t, executor.Execute(ctx, db, domain.TaskActionAddToCalendar, nil, task, uuid.New()))
	require.NotNil(t, task.ScheduledStart)
	assert.Equal(t, base.AddDate(0, 0, 1), *task.ScheduledStart)
	require.NotNil(t, task.DurationMinutes)
	assert.Equal(t, 60, *task.DurationMinutes)

	// Already scheduled tasks are left alone
	existing := *task.ScheduledStart
	require.NoError(t, executor.Execute(ctx, db, domain.TaskActionAddToCalendar,
		mustJSON(t, map[string]int{"days_offset": 5}), task, uuid.New()))
	assert.Equal(t, existing, *task.ScheduledStart)
}

func TestTaskActionExecutor_ArchiveTask(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	seeded := seedTask(t, db, project.ID)
	task := loadTaskWithProject(t, db, seeded.ID)

	executor := NewTaskActionExecutor(nil, zap.NewNop())
	ctx := context.Background()
	actor := uuid.New()

	require.NoError(t, executor.Execute(ctx, db, domain.TaskActionArchiveTask, nil, task, actor))
	assert.True(t, task.IsArchived)
	require.NotNil(t, task.ArchivedByID)
	assert.Equal(t, actor, *task.ArchivedByID)

	var stored domain.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.True(t, stored.IsArchived)
	assert.NotNil(t, stored.ArchivedAt)
}

func TestTaskActionExecutor_UnassignUserIsNoOp(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	seeded := seedTask(t, db, project.ID)
	task := loadTaskWithProject(t, db, seeded.ID)
	original := task.AssignedToID

	executor := NewTaskActionExecutor(nil, zap.NewNop())
	require.NoError(t, executor.Execute(context.Background(), db, domain.TaskActionUnassignUser, nil, task, uuid.New()))
	assert.Equal(t, original, task.AssignedToID)
}
