package job

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"task-automation-api/internal/database"
	"task-automation-api/internal/domain"
	"task-automation-api/internal/repository"
	"task-automation-api/internal/service"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newJob(t *testing.T, db *gorm.DB, now time.Time) *DueDateJob {
	t.Helper()
	taskAutomation := service.NewTaskAutomationService(
		db,
		repository.NewTaskRepository(db),
		repository.NewTaskAutomationRepository(db),
		service.NewTaskActionExecutor(nil, zap.NewNop()),
		nil,
		zap.NewNop(),
	)
	cardAutomation := service.NewCardAutomationService(
		db,
		repository.NewCardRepository(db),
		repository.NewCardAutomationRepository(db),
		service.NewCardActionExecutor(nil, zap.NewNop()),
		nil,
		zap.NewNop(),
	)
	j := NewDueDateJob(
		repository.NewTaskRepository(db),
		repository.NewCardRepository(db),
		taskAutomation,
		cardAutomation,
		nil,
		zap.NewNop(),
	)
	j.now = func() time.Time { return now }
	return j
}

func rawJSON(t *testing.T, v interface{}) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return datatypes.JSON(raw)
}

func TestDaysUntil(t *testing.T) {
	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		due  time.Time
		want int
	}{
		{"due later today", time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC), 0},
		{"due tomorrow morning", time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC), 1},
		{"due in three days", time.Date(2026, 9, 3, 12, 0, 0, 0, time.UTC), 3},
		{"overdue yesterday", time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC), -1},
		{"overdue last week", time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), -7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, daysUntil(today, tt.due))
		})
	}
}

func TestTruncateToDay(t *testing.T) {
	ts := time.Date(2026, 8, 31, 17, 45, 12, 999, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), truncateToDay(ts))
}

func TestDueDateJob_FiresApproachingTrigger(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

	org := &domain.Organization{Name: "Acme", Slug: "acme-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(org).Error)
	project := &domain.Project{OrganizationID: org.ID, Title: "P", Status: domain.ProjectStatusActive, CreatedByID: uuid.New()}
	require.NoError(t, db.Create(project).Error)

	due := now.AddDate(0, 0, 2)
	task := &domain.Task{
		ProjectID:    project.ID,
		Title:        "Ship it",
		Status:       domain.TaskStatusTodo,
		Priority:     domain.TaskPriorityMedium,
		AssignedToID: uuid.New(),
		DueDate:      &due,
	}
	require.NoError(t, db.Create(task).Error)

	// Matching threshold fires, the stricter one does not
	matching := &domain.TaskAutomationRule{
		OrganizationID: org.ID,
		Name:           "Escalate near due",
		TriggerType:    domain.TaskTriggerDueDateApproaching,
		TriggerConfig:  rawJSON(t, map[string]int{"days_before": 2}),
		IsActive:       true,
		CreatedByID:    uuid.New(),
		Actions: []domain.TaskAutomationAction{{
			ActionType:   domain.TaskActionSetPriority,
			ActionConfig: rawJSON(t, map[string]string{"priority": "HIGH"}),
		}},
	}
	require.NoError(t, db.Create(matching).Error)
	other := &domain.TaskAutomationRule{
		OrganizationID: org.ID,
		Name:           "Day-before nudge",
		TriggerType:    domain.TaskTriggerDueDateApproaching,
		TriggerConfig:  rawJSON(t, map[string]int{"days_before": 1}),
		IsActive:       true,
		CreatedByID:    uuid.New(),
		Actions: []domain.TaskAutomationAction{{
			ActionType: domain.TaskActionArchiveTask,
		}},
	}
	require.NoError(t, db.Create(other).Error)

	newJob(t, db, now).Run()

	var stored domain.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, domain.TaskPriorityHigh, stored.Priority)
	assert.False(t, stored.IsArchived)

	var logs []domain.TaskAutomationLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, matching.ID, logs[0].RuleID)
	assert.Equal(t, domain.AutomationLogSuccess, logs[0].Status)
}

func TestDueDateJob_FiresOverdueCardTrigger(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

	org := &domain.Organization{Name: "Acme", Slug: "acme-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(org).Error)
	board := &domain.Board{OrganizationID: org.ID, Title: "Board", CreatedByID: uuid.New()}
	require.NoError(t, db.Create(board).Error)
	column := &domain.BoardColumn{BoardID: board.ID, Title: "Doing", SortOrder: 0}
	require.NoError(t, db.Create(column).Error)

	due := now.AddDate(0, 0, -3)
	card := &domain.BoardCard{ColumnID: column.ID, Title: "Late card", CreatedByID: uuid.New(), DueDate: &due}
	require.NoError(t, db.Create(card).Error)

	rule := &domain.CardAutomationRule{
		BoardID:       board.ID,
		Name:          "Push out overdue",
		TriggerType:   domain.CardTriggerDueDateOverdue,
		TriggerConfig: rawJSON(t, map[string]int{"every": 3}),
		IsActive:      true,
		CreatedByID:   uuid.New(),
		Actions: []domain.CardAutomationAction{{
			ActionType:   domain.CardActionSetDueDate,
			ActionConfig: rawJSON(t, map[string]int{"days_offset": 7}),
		}},
	}
	require.NoError(t, db.Create(rule).Error)

	newJob(t, db, now).Run()

	var stored domain.BoardCard
	require.NoError(t, db.First(&stored, card.ID).Error)
	require.NotNil(t, stored.DueDate)
	assert.True(t, stored.DueDate.After(now), "due date should have been pushed into the future")

	var logCount int64
	require.NoError(t, db.Model(&domain.CardAutomationLog{}).
		Where("rule_id = ?", rule.ID).Count(&logCount).Error)
	assert.EqualValues(t, 1, logCount)
}

func TestDueDateJob_SkipsDoneAndUndatedTasks(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

	org := &domain.Organization{Name: "Acme", Slug: "acme-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(org).Error)
	project := &domain.Project{OrganizationID: org.ID, Title: "P", Status: domain.ProjectStatusActive, CreatedByID: uuid.New()}
	require.NoError(t, db.Create(project).Error)

	due := now
	doneTask := &domain.Task{
		ProjectID:    project.ID,
		Title:        "Done already",
		Status:       domain.TaskStatusDone,
		Priority:     domain.TaskPriorityMedium,
		AssignedToID: uuid.New(),
		DueDate:      &due,
	}
	require.NoError(t, db.Create(doneTask).Error)
	undated := &domain.Task{
		ProjectID:    project.ID,
		Title:        "No due date",
		Status:       domain.TaskStatusTodo,
		Priority:     domain.TaskPriorityMedium,
		AssignedToID: uuid.New(),
	}
	require.NoError(t, db.Create(undated).Error)

	rule := &domain.TaskAutomationRule{
		OrganizationID: org.ID,
		Name:           "On due day",
		TriggerType:    domain.TaskTriggerDueDateReached,
		IsActive:       true,
		CreatedByID:    uuid.New(),
		Actions: []domain.TaskAutomationAction{{
			ActionType: domain.TaskActionArchiveTask,
		}},
	}
	require.NoError(t, db.Create(rule).Error)

	newJob(t, db, now).Run()

	var logCount int64
	require.NoError(t, db.Model(&domain.TaskAutomationLog{}).Count(&logCount).Error)
	assert.EqualValues(t, 0, logCount)
}
