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

func newTaskAutomation(t *testing.T, db *gorm.DB, m AutomationMetrics) TaskAutomationService {
	t.Helper()
	return NewTaskAutomationService(
		db,
		repository.NewTaskRepository(db),
		repository.NewTaskAutomationRepository(db),
		NewTaskActionExecutor(nil, zap.NewNop()),
		m,
		zap.NewNop(),
	)
}

func TestTaskAutomation_StatusChangeRuleExecutes(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	task := seedTask(t, db, project.ID)

	rule := seedTaskRule(t, db, org.ID, nil, domain.TaskTriggerStatusChanged,
		mustJSON(t, map[string]string{"to_status": "DONE"}),
		domain.TaskAutomationAction{
			ActionType:   domain.TaskActionSetPriority,
			ActionConfig: mustJSON(t, map[string]string{"priority": "HIGH"}),
			SortOrder:    0,
		},
		domain.TaskAutomationAction{
			ActionType: domain.TaskActionArchiveTask,
			SortOrder:  1,
		},
	)

	m := newRecordingMetrics()
	svc := newTaskAutomation(t, db, m)

	logs, err := svc.TriggerStatusChanged(context.Background(), task.ID, uuid.New(),
		domain.TaskStatusTodo, domain.TaskStatusDone)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.AutomationLogSuccess, logs[0].Status)
	assert.Equal(t, "Rule executed successfully", logs[0].Message)
	assert.Equal(t, rule.ID, logs[0].RuleID)

	var stored domain.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, domain.TaskPriorityHigh, stored.Priority)
	assert.True(t, stored.IsArchived)

	// Audit log row persisted
	var count int64
	require.NoError(t, db.Model(&domain.TaskAutomationLog{}).
		Where("rule_id = ? AND task_id = ? AND status = ?", rule.ID, task.ID, domain.AutomationLogSuccess).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, 1, m.rules["task/success"])
}

func TestTaskAutomation_FilterMissProducesNoLog(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	task := seedTask(t, db, project.ID)

	seedTaskRule(t, db, org.ID, nil, domain.TaskTriggerStatusChanged,
		mustJSON(t, map[string]string{"to_status": "DONE"}),
		domain.TaskAutomationAction{
			ActionType:   domain.TaskActionSetPriority,
			ActionConfig: mustJSON(t, map[string]string{"priority": "HIGH"}),
		},
	)

	svc := newTaskAutomation(t, db, nil)
	logs, err := svc.TriggerStatusChanged(context.Background(), task.ID, uuid.New(),
		domain.TaskStatusTodo, domain.TaskStatusInProgress)
	require.NoError(t, err)
	assert.Empty(t, logs)

	var count int64
	require.NoError(t, db.Model(&domain.TaskAutomationLog{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestTaskAutomation_FailedRuleRollsBackAndLaterRulesRun(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	task := seedTask(t, db, project.ID)

	// First rule: a real mutation followed by an unknown action type, so the
	// whole transaction must roll back.
	failing := seedTaskRule(t, db, org.ID, nil, domain.TaskTriggerTaskCompleted, nil,
		domain.TaskAutomationAction{
			ActionType:   domain.TaskActionSetPriority,
			ActionConfig: mustJSON(t, map[string]string{"priority": "HIGH"}),
			SortOrder:    0,
		},
		domain.TaskAutomationAction{
			ActionType: domain.TaskActionType("explode"),
			SortOrder:  1,
		},
	)
	// Second rule still runs after the first one fails
	succeeding := seedTaskRule(t, db, org.ID, nil, domain.TaskTriggerTaskCompleted, nil,
		domain.TaskAutomationAction{
			ActionType: domain.TaskActionArchiveTask,
		},
	)

	m := newRecordingMetrics()
	svc := newTaskAutomation(t, db, m)

	logs, err := svc.TriggerTaskCompleted(context.Background(), task.ID, uuid.New())
	require.NoError(t, err)
	require.Len(t, logs, 2)

	byRule := make(map[uuid.UUID]*domain.TaskAutomationLog, 2)
	for _, l := range logs {
		byRule[l.RuleID] = l
	}
	require.Contains(t, byRule, failing.ID)
	require.Contains(t, byRule, succeeding.ID)
	assert.Equal(t, domain.AutomationLogFailed, byRule[failing.ID].Status)
	assert.Contains(t, byRule[failing.ID].Message, "unknown action type")
	assert.Equal(t, domain.AutomationLogSuccess, byRule[succeeding.ID].Status)

	// The failed rule's priority change was rolled back; the succeeding
	// rule's archive went through.
	var stored domain.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, domain.TaskPriorityMedium, stored.Priority)
	assert.True(t, stored.IsArchived)

	assert.Equal(t, 1, m.rules["task/failed"])
	assert.Equal(t, 1, m.rules["task/success"])
}

func TestTaskAutomation_ProjectScopedRuleSelection(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	otherProject := seedProject(t, db, org.ID)
	task := seedTask(t, db, project.ID)

	// Org-wide rule applies; the other project's rule does not
	orgWide := seedTaskRule(t, db, org.ID, nil, domain.TaskTriggerTaskCreated, nil,
		domain.TaskAutomationAction{ActionType: domain.TaskActionPostComment})
	seedTaskRule(t, db, org.ID, &otherProject.ID, domain.TaskTriggerTaskCreated, nil,
		domain.TaskAutomationAction{ActionType: domain.TaskActionPostComment})
	scoped := seedTaskRule(t, db, org.ID, &project.ID, domain.TaskTriggerTaskCreated, nil,
		domain.TaskAutomationAction{ActionType: domain.TaskActionPostComment})

	svc := newTaskAutomation(t, db, nil)
	logs, err := svc.TriggerTaskCreated(context.Background(), task.ID, uuid.New())
	require.NoError(t, err)
	require.Len(t, logs, 2)

	ruleIDs := []uuid.UUID{logs[0].RuleID, logs[1].RuleID}
	assert.Contains(t, ruleIDs, orgWide.ID)
	assert.Contains(t, ruleIDs, scoped.ID)
}

func TestTaskAutomation_InactiveRuleIgnored(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	task := seedTask(t, db, project.ID)

	rule := seedTaskRule(t, db, org.ID, nil, domain.TaskTriggerTaskCreated, nil,
		domain.TaskAutomationAction{ActionType: domain.TaskActionArchiveTask})
	require.NoError(t, db.Model(&domain.TaskAutomationRule{}).
		Where("id = ?", rule.ID).Update("is_active", false).Error)

	svc := newTaskAutomation(t, db, nil)
	logs, err := svc.TriggerTaskCreated(context.Background(), task.ID, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, logs)

	var stored domain.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.False(t, stored.IsArchived)
}

func TestTaskAutomation_MissingTaskFails(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskAutomation(t, db, nil)

	_, err := svc.TriggerTaskCreated(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTaskAutomation_AssignedUserFilter(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	task := seedTask(t, db, project.ID)
	alice := uuid.New()
	bob := uuid.New()

	seedTaskRule(t, db, org.ID, nil, domain.TaskTriggerAssignedToUser,
		mustJSON(t, map[string]string{"user_id": alice.String()}),
		domain.TaskAutomationAction{
			ActionType:   domain.TaskActionSetPriority,
			ActionConfig: mustJSON(t, map[string]string{"priority": "HIGH"}),
		},
	)

	svc := newTaskAutomation(t, db, nil)
	ctx := context.Background()

	// Assigning someone else misses the rule's user filter
	logs, err := svc.TriggerAssignedToUser(ctx, task.ID, uuid.New(), bob)
	require.NoError(t, err)
	assert.Empty(t, logs)

	logs, err = svc.TriggerAssignedToUser(ctx, task.ID, uuid.New(), alice)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.AutomationLogSuccess, logs[0].Status)

	var stored domain.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, domain.TaskPriorityHigh, stored.Priority)
}

func TestTaskAutomation_LabelAddedFilter(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	task := seedTask(t, db, project.ID)
	label := seedTaskLabel(t, db, org.ID, "urgent")
	other := seedTaskLabel(t, db, org.ID, "later")

	seedTaskRule(t, db, org.ID, nil, domain.TaskTriggerLabelAdded,
		mustJSON(t, map[string]string{"label_id": label.ID.String()}),
		domain.TaskAutomationAction{
			ActionType:   domain.TaskActionSetPriority,
			ActionConfig: mustJSON(t, map[string]string{"priority": "HIGH"}),
		},
	)

	svc := newTaskAutomation(t, db, nil)
	ctx := context.Background()

	logs, err := svc.TriggerLabelAdded(ctx, task.ID, uuid.New(), other.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)

	logs, err = svc.TriggerLabelAdded(ctx, task.ID, uuid.New(), label.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.AutomationLogSuccess, logs[0].Status)

	var stored domain.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, domain.TaskPriorityHigh, stored.Priority)
}
