package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"task-automation-api/internal/domain"
	"task-automation-api/internal/repository"
)

func newTaskButtons(t *testing.T, db *gorm.DB, m AutomationMetrics) TaskButtonService {
	t.Helper()
	return NewTaskButtonService(
		db,
		repository.NewTaskRepository(db),
		repository.NewTaskButtonRepository(db),
		repository.NewTaskLabelRepository(db),
		NewTaskActionExecutor(nil, zap.NewNop()),
		m,
		zap.NewNop(),
	)
}

func seedTaskButton(t *testing.T, db *gorm.DB, button domain.TaskButton) *domain.TaskButton {
	t.Helper()
	if button.Name == "" {
		button.Name = "Button"
	}
	button.IsActive = true
	button.CreatedByID = uuid.New()
	require.NoError(t, db.Create(&button).Error)
	return &button
}

func TestTaskButton_ExecuteRunsAllActions(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	task := seedTask(t, db, project.ID)

	button := seedTaskButton(t, db, domain.TaskButton{
		OrganizationID: org.ID,
		Actions: []domain.TaskButtonAction{
			{
				ActionType:   domain.TaskActionChangeStatus,
				ActionConfig: mustJSON(t, map[string]string{"status": "DONE"}),
				SortOrder:    0,
			},
			{
				ActionType: domain.TaskActionArchiveTask,
				SortOrder:  1,
			},
		},
	})

	m := newRecordingMetrics()
	svc := newTaskButtons(t, db, m)

	executed, err := svc.ExecuteButton(context.Background(), button.ID, task.ID, uuid.New())
	require.NoError(t, err)
	assert.True(t, executed)

	var stored domain.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, domain.TaskStatusDone, stored.Status)
	assert.True(t, stored.IsArchived)

	// Buttons leave no audit log rows
	var logCount int64
	require.NoError(t, db.Model(&domain.TaskAutomationLog{}).Count(&logCount).Error)
	assert.EqualValues(t, 0, logCount)
	assert.Equal(t, 1, m.executed)
}

func TestTaskButton_FailureRollsBackEverything(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	task := seedTask(t, db, project.ID)

	button := seedTaskButton(t, db, domain.TaskButton{
		OrganizationID: org.ID,
		Actions: []domain.TaskButtonAction{
			{
				ActionType:   domain.TaskActionChangeStatus,
				ActionConfig: mustJSON(t, map[string]string{"status": "DONE"}),
				SortOrder:    0,
			},
			{
				ActionType: domain.TaskActionType("explode"),
				SortOrder:  1,
			},
		},
	})

	m := newRecordingMetrics()
	svc := newTaskButtons(t, db, m)

	executed, err := svc.ExecuteButton(context.Background(), button.ID, task.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, executed)

	// The status change from the first action was rolled back
	var stored domain.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, domain.TaskStatusTodo, stored.Status)
	assert.Equal(t, 1, m.rejected)
}

func TestTaskButton_ScopeRejections(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	otherOrg := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	otherProject := seedProject(t, db, org.ID)
	task := seedTask(t, db, project.ID)

	m := newRecordingMetrics()
	svc := newTaskButtons(t, db, m)
	ctx := context.Background()

	t.Run("missing button", func(t *testing.T) {
		executed, err := svc.ExecuteButton(ctx, uuid.New(), task.ID, uuid.New())
		require.NoError(t, err)
		assert.False(t, executed)
	})

	t.Run("inactive button", func(t *testing.T) {
		button := seedTaskButton(t, db, domain.TaskButton{OrganizationID: org.ID})
		require.NoError(t, db.Model(&domain.TaskButton{}).
			Where("id = ?", button.ID).Update("is_active", false).Error)

		executed, err := svc.ExecuteButton(ctx, button.ID, task.ID, uuid.New())
		require.NoError(t, err)
		assert.False(t, executed)
	})

	t.Run("different organization", func(t *testing.T) {
		button := seedTaskButton(t, db, domain.TaskButton{OrganizationID: otherOrg.ID})
		executed, err := svc.ExecuteButton(ctx, button.ID, task.ID, uuid.New())
		require.NoError(t, err)
		assert.False(t, executed)
	})

	t.Run("different project", func(t *testing.T) {
		button := seedTaskButton(t, db, domain.TaskButton{
			OrganizationID: org.ID,
			ProjectID:      &otherProject.ID,
		})
		executed, err := svc.ExecuteButton(ctx, button.ID, task.ID, uuid.New())
		require.NoError(t, err)
		assert.False(t, executed)
	})

	assert.Equal(t, 4, m.rejected)
	assert.Equal(t, 0, m.executed)
}

func TestTaskButton_VisibleButtons(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	otherProject := seedProject(t, db, org.ID)
	task := seedTask(t, db, project.ID)

	blockedLabel := seedTaskLabel(t, db, org.ID, "blocked")
	reviewLabel := seedTaskLabel(t, db, org.ID, "review")

	// Attach the blocked label to the task
	require.NoError(t, db.Create(&domain.TaskLabelAssignment{
		TaskID:  task.ID,
		LabelID: blockedLabel.ID,
	}).Error)

	alwaysVisible := seedTaskButton(t, db, domain.TaskButton{OrganizationID: org.ID})
	matchingStatus := seedTaskButton(t, db, domain.TaskButton{
		OrganizationID: org.ID,
		ShowOnStatus:   mustJSON(t, []string{"TODO", "IN_PROGRESS"}),
	})
	wrongStatus := seedTaskButton(t, db, domain.TaskButton{
		OrganizationID: org.ID,
		ShowOnStatus:   mustJSON(t, []string{"DONE"}),
	})
	wrongPriority := seedTaskButton(t, db, domain.TaskButton{
		OrganizationID: org.ID,
		ShowOnPriority: mustJSON(t, []string{"HIGH"}),
	})
	requiresLabel := seedTaskButton(t, db, domain.TaskButton{
		OrganizationID:     org.ID,
		ShowWhenHasLabelID: &blockedLabel.ID,
	})
	requiresMissingLabel := seedTaskButton(t, db, domain.TaskButton{
		OrganizationID:     org.ID,
		ShowWhenHasLabelID: &reviewLabel.ID,
	})
	hiddenByLabel := seedTaskButton(t, db, domain.TaskButton{
		OrganizationID:     org.ID,
		HideWhenHasLabelID: &blockedLabel.ID,
	})
	otherProjectButton := seedTaskButton(t, db, domain.TaskButton{
		OrganizationID: org.ID,
		ProjectID:      &otherProject.ID,
	})

	svc := newTaskButtons(t, db, nil)
	visible, err := svc.VisibleButtons(context.Background(), task.ID)
	require.NoError(t, err)

	visibleIDs := make(map[uuid.UUID]bool, len(visible))
	for _, b := range visible {
		visibleIDs[b.ID] = true
	}

	assert.True(t, visibleIDs[alwaysVisible.ID])
	assert.True(t, visibleIDs[matchingStatus.ID])
	assert.True(t, visibleIDs[requiresLabel.ID])
	assert.False(t, visibleIDs[wrongStatus.ID])
	assert.False(t, visibleIDs[wrongPriority.ID])
	assert.False(t, visibleIDs[requiresMissingLabel.ID])
	assert.False(t, visibleIDs[hiddenByLabel.ID])
	assert.False(t, visibleIDs[otherProjectButton.ID])
}
