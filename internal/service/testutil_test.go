package service

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"task-automation-api/internal/database"
	"task-automation-api/internal/domain"
)

// newTestDB creates an in-memory SQLite database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// recordingMetrics captures automation metric calls for assertions
type recordingMetrics struct {
	mu          sync.Mutex
	rules       map[string]int // engine+status
	executed    int
	rejected    int
	recurrences int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{rules: make(map[string]int)}
}

func (m *recordingMetrics) RecordRuleExecution(engine, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[engine+"/"+status]++
}

func (m *recordingMetrics) RecordButtonExecution(engine string, executed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if executed {
		m.executed++
	} else {
		m.rejected++
	}
}

func (m *recordingMetrics) RecordRecurrenceSpawned() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recurrences++
}

func mustJSON(t *testing.T, v interface{}) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return datatypes.JSON(raw)
}

func seedOrganization(t *testing.T, db *gorm.DB) *domain.Organization {
	t.Helper()
	org := &domain.Organization{Name: "Acme", Slug: "acme-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(org).Error)
	return org
}

func seedProject(t *testing.T, db *gorm.DB, orgID uuid.UUID) *domain.Project {
	t.Helper()
	project := &domain.Project{
		OrganizationID: orgID,
		Title:          "Project",
		Status:         domain.ProjectStatusActive,
		CreatedByID:    uuid.New(),
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

func seedTask(t *testing.T, db *gorm.DB, projectID uuid.UUID) *domain.Task {
	t.Helper()
	task := &domain.Task{
		ProjectID:    projectID,
		Title:        "Task",
		Status:       domain.TaskStatusTodo,
		Priority:     domain.TaskPriorityMedium,
		AssignedToID: uuid.New(),
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func seedTaskLabel(t *testing.T, db *gorm.DB, orgID uuid.UUID, name string) *domain.TaskLabel {
	t.Helper()
	label := &domain.TaskLabel{OrganizationID: orgID, Name: name, Color: "gray"}
	require.NoError(t, db.Create(label).Error)
	return label
}

func seedTaskRule(t *testing.T, db *gorm.DB, orgID uuid.UUID, projectID *uuid.UUID, trigger domain.TaskTriggerType, triggerConfig datatypes.JSON, actions ...domain.TaskAutomationAction) *domain.TaskAutomationRule {
	t.Helper()
	rule := &domain.TaskAutomationRule{
		OrganizationID: orgID,
		ProjectID:      projectID,
		Name:           "Rule",
		TriggerType:    trigger,
		TriggerConfig:  triggerConfig,
		IsActive:       true,
		CreatedByID:    uuid.New(),
		Actions:        actions,
	}
	require.NoError(t, db.Create(rule).Error)
	return rule
}

func seedBoard(t *testing.T, db *gorm.DB, orgID uuid.UUID) *domain.Board {
	t.Helper()
	board := &domain.Board{OrganizationID: orgID, Title: "Board", CreatedByID: uuid.New()}
	require.NoError(t, db.Create(board).Error)
	return board
}

func seedColumn(t *testing.T, db *gorm.DB, boardID uuid.UUID, title string, sortOrder int) *domain.BoardColumn {
	t.Helper()
	column := &domain.BoardColumn{BoardID: boardID, Title: title, SortOrder: sortOrder}
	require.NoError(t, db.Create(column).Error)
	return column
}

func seedCard(t *testing.T, db *gorm.DB, columnID uuid.UUID) *domain.BoardCard {
	t.Helper()
	card := &domain.BoardCard{ColumnID: columnID, Title: "Card", CreatedByID: uuid.New()}
	require.NoError(t, db.Create(card).Error)
	return card
}

func seedCardRule(t *testing.T, db *gorm.DB, boardID uuid.UUID, trigger domain.CardTriggerType, triggerConfig datatypes.JSON, actions ...domain.CardAutomationAction) *domain.CardAutomationRule {
	t.Helper()
	rule := &domain.CardAutomationRule{
		BoardID:       boardID,
		Name:          "Card rule",
		TriggerType:   trigger,
		TriggerConfig: triggerConfig,
		IsActive:      true,
		CreatedByID:   uuid.New(),
		Actions:       actions,
	}
	require.NoError(t, db.Create(rule).Error)
	return rule
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func timePtr(ts time.Time) *time.Time { return &ts }
