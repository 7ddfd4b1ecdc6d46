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

	"task-automation-api/internal/domain"
	"task-automation-api/internal/repository"
)

func newRecurrence(t *testing.T, db *gorm.DB, m AutomationMetrics) *recurrenceServiceImpl {
	t.Helper()
	svc := NewRecurrenceService(
		db,
		repository.NewTaskRepository(db),
		repository.NewRecurringTaskRepository(db),
		m,
		zap.NewNop(),
	)
	return svc.(*recurrenceServiceImpl)
}

func seedRecurring(t *testing.T, db *gorm.DB, taskID uuid.UUID, settings domain.RecurringTask) *domain.RecurringTask {
	t.Helper()
	settings.TaskID = taskID
	settings.IsRecurring = true
	require.NoError(t, db.Create(&settings).Error)
	return &settings
}

func TestAdvanceDate(t *testing.T) {
	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		frequency domain.RecurrenceFrequency
		interval  int
		base      time.Time
		want      time.Time
	}{
		{"daily", domain.RecurrenceDaily, 1, base, base.AddDate(0, 0, 1)},
		{"daily interval 3", domain.RecurrenceDaily, 3, base, base.AddDate(0, 0, 3)},
		{"weekly", domain.RecurrenceWeekly, 1, base, base.AddDate(0, 0, 7)},
		{"weekly interval 2", domain.RecurrenceWeekly, 2, base, base.AddDate(0, 0, 14)},
		{"monthly", domain.RecurrenceMonthly, 1, base, time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)},
		{
			// Jan 31 + 1 month normalizes past the end of February
			"monthly end-of-month normalization",
			domain.RecurrenceMonthly, 1,
			time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, advanceDate(tt.base, tt.frequency, tt.interval))
		})
	}
}

func TestRecurrence_NonRecurringTaskSpawnsNothing(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	task := seedTask(t, db, project.ID)

	svc := newRecurrence(t, db, nil)
	next, err := svc.HandleTaskCompleted(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestRecurrence_SpawnsSuccessor(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	task := seedTask(t, db, project.ID)

	due := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	duration := 45
	require.NoError(t, db.Model(&domain.Task{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
		"due_date":         due,
		"priority":         domain.TaskPriorityHigh,
		"duration_minutes": duration,
		"status":           domain.TaskStatusDone,
		"progress":         100,
	}).Error)

	seedRecurring(t, db, task.ID, domain.RecurringTask{
		Frequency: domain.RecurrenceWeekly,
		Interval:  1,
	})

	m := newRecordingMetrics()
	svc := newRecurrence(t, db, m)
	next, err := svc.HandleTaskCompleted(context.Background(), task.ID)
	require.NoError(t, err)
	require.NotNil(t, next)

	assert.Equal(t, task.Title, next.Title)
	assert.Equal(t, domain.TaskStatusTodo, next.Status)
	assert.Equal(t, domain.TaskPriorityHigh, next.Priority)
	assert.Equal(t, task.AssignedToID, next.AssignedToID)
	assert.Equal(t, 0, next.Progress)
	require.NotNil(t, next.DueDate)
	assert.Equal(t, due.AddDate(0, 0, 7), *next.DueDate)
	require.NotNil(t, next.RecurrenceParentID)
	assert.Equal(t, task.ID, *next.RecurrenceParentID)

	// Successor carries its own settings pointing at the chain root
	var nextSettings domain.RecurringTask
	require.NoError(t, db.Where("task_id = ?", next.ID).First(&nextSettings).Error)
	assert.True(t, nextSettings.IsRecurring)
	require.NotNil(t, nextSettings.ParentID)
	assert.Equal(t, task.ID, *nextSettings.ParentID)

	assert.Equal(t, 1, m.recurrences)
}

func TestRecurrence_EndDatePassedStopsChain(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	task := seedTask(t, db, project.ID)
	require.NoError(t, db.Model(&domain.Task{}).Where("id = ?", task.ID).
		Update("due_date", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)).Error)

	seedRecurring(t, db, task.ID, domain.RecurringTask{
		Frequency: domain.RecurrenceDaily,
		Interval:  1,
		EndDate:   timePtr(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
	})

	svc := newRecurrence(t, db, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC) }

	next, err := svc.HandleTaskCompleted(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestRecurrence_MaxOccurrencesStopsChain(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	root := seedTask(t, db, project.ID)
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(&domain.Task{}).Where("id = ?", root.ID).Update("due_date", due).Error)

	max := 3
	seedRecurring(t, db, root.ID, domain.RecurringTask{
		Frequency:      domain.RecurrenceDaily,
		Interval:       1,
		MaxOccurrences: &max,
	})

	svc := newRecurrence(t, db, nil)
	ctx := context.Background()

	// Occurrence 2
	second, err := svc.HandleTaskCompleted(ctx, root.ID)
	require.NoError(t, err)
	require.NotNil(t, second)

	// Occurrence 3
	third, err := svc.HandleTaskCompleted(ctx, second.ID)
	require.NoError(t, err)
	require.NotNil(t, third)

	// The chain holds 3 occurrences now; no fourth is spawned
	fourth, err := svc.HandleTaskCompleted(ctx, third.ID)
	require.NoError(t, err)
	assert.Nil(t, fourth)

	var successors int64
	require.NoError(t, db.Model(&domain.Task{}).
		Where("recurrence_parent_id = ?", root.ID).Count(&successors).Error)
	assert.EqualValues(t, 2, successors)
}

func TestRecurrence_NoDatesStopsChain(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	task := seedTask(t, db, project.ID)

	seedRecurring(t, db, task.ID, domain.RecurringTask{
		Frequency: domain.RecurrenceDaily,
		Interval:  1,
	})

	svc := newRecurrence(t, db, nil)
	next, err := svc.HandleTaskCompleted(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestRecurrence_ScheduledStartAdvances(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	task := seedTask(t, db, project.ID)
	start := time.Date(2026, 5, 4, 14, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(&domain.Task{}).Where("id = ?", task.ID).
		Update("scheduled_start", start).Error)

	seedRecurring(t, db, task.ID, domain.RecurringTask{
		Frequency: domain.RecurrenceMonthly,
		Interval:  2,
	})

	svc := newRecurrence(t, db, nil)
	next, err := svc.HandleTaskCompleted(context.Background(), task.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	require.NotNil(t, next.ScheduledStart)
	assert.Equal(t, start.AddDate(0, 2, 0), *next.ScheduledStart)
	assert.Nil(t, next.DueDate)
}

func TestRecurrence_NonPositiveIntervalBehavesAsOne(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	project := seedProject(t, db, org.ID)
	task := seedTask(t, db, project.ID)
	due := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(&domain.Task{}).Where("id = ?", task.ID).Update("due_date", due).Error)

	seedRecurring(t, db, task.ID, domain.RecurringTask{
		Frequency: domain.RecurrenceDaily,
		Interval:  0,
	})

	svc := newRecurrence(t, db, nil)
	next, err := svc.HandleTaskCompleted(context.Background(), task.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	require.NotNil(t, next.DueDate)
	assert.Equal(t, due.AddDate(0, 0, 1), *next.DueDate)
}
