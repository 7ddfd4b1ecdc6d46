package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"task-automation-api/internal/domain"
)

func statusPtr(s domain.TaskStatus) *domain.TaskStatus { return &s }

func priorityPtr(p domain.TaskPriority) *domain.TaskPriority { return &p }

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }

func TestLabelMatches(t *testing.T) {
	labelID := uuid.New()
	otherID := uuid.New()

	tests := []struct {
		name    string
		cfg     triggerConfig
		labelID *uuid.UUID
		want    bool
	}{
		{
			name:    "no filter matches any label",
			cfg:     triggerConfig{},
			labelID: uuidPtr(labelID),
			want:    true,
		},
		{
			name:    "matching label",
			cfg:     triggerConfig{LabelID: strPtr(labelID.String())},
			labelID: uuidPtr(labelID),
			want:    true,
		},
		{
			name:    "different label",
			cfg:     triggerConfig{LabelID: strPtr(labelID.String())},
			labelID: uuidPtr(otherID),
			want:    false,
		},
		{
			name:    "filter set but event carries no label",
			cfg:     triggerConfig{LabelID: strPtr(labelID.String())},
			labelID: nil,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, labelMatches(tt.cfg, tt.labelID))
		})
	}
}

func TestStatusMatches(t *testing.T) {
	tests := []struct {
		name string
		cfg  triggerConfig
		from *domain.TaskStatus
		to   *domain.TaskStatus
		want bool
	}{
		{
			name: "no constraints match any transition",
			cfg:  triggerConfig{},
			from: statusPtr(domain.TaskStatusTodo),
			to:   statusPtr(domain.TaskStatusDone),
			want: true,
		},
		{
			name: "to_status matches",
			cfg:  triggerConfig{ToStatus: strPtr("DONE")},
			from: statusPtr(domain.TaskStatusTodo),
			to:   statusPtr(domain.TaskStatusDone),
			want: true,
		},
		{
			name: "to_status mismatch",
			cfg:  triggerConfig{ToStatus: strPtr("DONE")},
			from: statusPtr(domain.TaskStatusTodo),
			to:   statusPtr(domain.TaskStatusInProgress),
			want: false,
		},
		{
			name: "both constraints AND together",
			cfg:  triggerConfig{FromStatus: strPtr("TODO"), ToStatus: strPtr("DONE")},
			from: statusPtr(domain.TaskStatusTodo),
			to:   statusPtr(domain.TaskStatusDone),
			want: true,
		},
		{
			name: "from_status mismatch fails even when to_status matches",
			cfg:  triggerConfig{FromStatus: strPtr("IN_PROGRESS"), ToStatus: strPtr("DONE")},
			from: statusPtr(domain.TaskStatusTodo),
			to:   statusPtr(domain.TaskStatusDone),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusMatches(tt.cfg, tt.from, tt.to))
		})
	}
}

func TestPriorityMatches(t *testing.T) {
	assert.True(t, priorityMatches(triggerConfig{}, priorityPtr(domain.TaskPriorityLow)))
	assert.True(t, priorityMatches(triggerConfig{ToPriority: strPtr("HIGH")}, priorityPtr(domain.TaskPriorityHigh)))
	assert.False(t, priorityMatches(triggerConfig{ToPriority: strPtr("HIGH")}, priorityPtr(domain.TaskPriorityLow)))
	assert.False(t, priorityMatches(triggerConfig{ToPriority: strPtr("HIGH")}, nil))
}

func TestColumnMatches(t *testing.T) {
	colA := uuid.New()
	colB := uuid.New()

	tests := []struct {
		name string
		cfg  triggerConfig
		from *uuid.UUID
		to   *uuid.UUID
		want bool
	}{
		{
			name: "no constraints",
			cfg:  triggerConfig{},
			from: uuidPtr(colA),
			to:   uuidPtr(colB),
			want: true,
		},
		{
			name: "to_column matches",
			cfg:  triggerConfig{ToColumnID: strPtr(colB.String())},
			from: uuidPtr(colA),
			to:   uuidPtr(colB),
			want: true,
		},
		{
			name: "to_column mismatch",
			cfg:  triggerConfig{ToColumnID: strPtr(colB.String())},
			from: uuidPtr(colB),
			to:   uuidPtr(colA),
			want: false,
		},
		{
			name: "from and to constraints AND together",
			cfg:  triggerConfig{FromColumnID: strPtr(colA.String()), ToColumnID: strPtr(colB.String())},
			from: uuidPtr(colA),
			to:   uuidPtr(colB),
			want: true,
		},
		{
			name: "from_column mismatch",
			cfg:  triggerConfig{FromColumnID: strPtr(colB.String()), ToColumnID: strPtr(colB.String())},
			from: uuidPtr(colA),
			to:   uuidPtr(colB),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, columnMatches(tt.cfg, tt.from, tt.to))
		})
	}
}

func TestDaysThresholdMatches(t *testing.T) {
	// Default threshold is 3 days before the due date
	assert.True(t, daysThresholdMatches(triggerConfig{}, intPtr(3)))
	assert.False(t, daysThresholdMatches(triggerConfig{}, intPtr(2)))
	assert.False(t, daysThresholdMatches(triggerConfig{}, intPtr(4)))

	assert.True(t, daysThresholdMatches(triggerConfig{DaysBefore: intPtr(7)}, intPtr(7)))
	assert.False(t, daysThresholdMatches(triggerConfig{DaysBefore: intPtr(7)}, intPtr(3)))
	assert.False(t, daysThresholdMatches(triggerConfig{}, nil))
}

func TestIntervalMatches(t *testing.T) {
	// Default interval fires every day
	assert.True(t, intervalMatches(triggerConfig{}, intPtr(1)))
	assert.True(t, intervalMatches(triggerConfig{}, intPtr(5)))

	every3 := triggerConfig{TriggerEveryNDays: intPtr(3)}
	assert.True(t, intervalMatches(every3, intPtr(3)))
	assert.True(t, intervalMatches(every3, intPtr(6)))
	assert.False(t, intervalMatches(every3, intPtr(4)))

	// Non-positive intervals behave as 1
	assert.True(t, intervalMatches(triggerConfig{TriggerEveryNDays: intPtr(0)}, intPtr(5)))
	assert.True(t, intervalMatches(triggerConfig{TriggerEveryNDays: intPtr(-2)}, intPtr(5)))

	assert.False(t, intervalMatches(triggerConfig{}, nil))
}

func TestDecodeTriggerConfig_Malformed(t *testing.T) {
	// Malformed JSON decodes to the zero config, which matches everything
	cfg := decodeTriggerConfig(datatypes.JSON(`{not json`))
	assert.Equal(t, triggerConfig{}, cfg)

	cfg = decodeTriggerConfig(nil)
	assert.Equal(t, triggerConfig{}, cfg)
}

func TestTaskRuleMatches_UnfilteredTriggers(t *testing.T) {
	// Trigger types without a filter always match, whatever the config says
	rule := &domain.TaskAutomationRule{
		TriggerType:   domain.TaskTriggerTaskCreated,
		TriggerConfig: mustJSON(t, map[string]string{"to_status": "DONE"}),
	}
	assert.True(t, taskRuleMatches(rule, TaskEvent{Type: domain.TaskTriggerTaskCreated}))
	assert.True(t, taskRuleMatches(rule, TaskEvent{Type: domain.TaskTriggerTaskCompleted}))
	assert.True(t, taskRuleMatches(rule, TaskEvent{Type: domain.TaskTriggerDueDateReached}))
}

func TestAssignedUserMatches(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()

	tests := []struct {
		name   string
		cfg    triggerConfig
		userID *uuid.UUID
		want   bool
	}{
		{"no filter matches any assignee", triggerConfig{}, uuidPtr(alice), true},
		{"no filter matches missing assignee", triggerConfig{}, nil, true},
		{"matching user", triggerConfig{UserID: strPtr(alice.String())}, uuidPtr(alice), true},
		{"different user", triggerConfig{UserID: strPtr(alice.String())}, uuidPtr(bob), false},
		{"filter set but assignee missing", triggerConfig{UserID: strPtr(alice.String())}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, assignedUserMatches(tt.cfg, tt.userID))
		})
	}
}

func TestTaskRuleMatches_AssignedUserFilter(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	rule := &domain.TaskAutomationRule{
		TriggerType:   domain.TaskTriggerAssignedToUser,
		TriggerConfig: mustJSON(t, map[string]string{"user_id": alice.String()}),
	}

	assert.True(t, taskRuleMatches(rule, TaskEvent{
		Type:           domain.TaskTriggerAssignedToUser,
		AssignedUserID: uuidPtr(alice),
	}))
	assert.False(t, taskRuleMatches(rule, TaskEvent{
		Type:           domain.TaskTriggerAssignedToUser,
		AssignedUserID: uuidPtr(bob),
	}))
}

func TestCardRuleMatches_ColumnFilter(t *testing.T) {
	colDone := uuid.New()
	colTodo := uuid.New()
	rule := &domain.CardAutomationRule{
		TriggerType:   domain.CardTriggerCardMoved,
		TriggerConfig: mustJSON(t, map[string]string{"to_column_id": colDone.String()}),
	}

	assert.True(t, cardRuleMatches(rule, CardEvent{
		Type:         domain.CardTriggerCardMoved,
		FromColumnID: uuidPtr(colTodo),
		ToColumnID:   uuidPtr(colDone),
	}))
	assert.False(t, cardRuleMatches(rule, CardEvent{
		Type:         domain.CardTriggerCardMoved,
		FromColumnID: uuidPtr(colDone),
		ToColumnID:   uuidPtr(colTodo),
	}))
}

// Overdue rules with trigger_every_n_days=n fire exactly on multiples of n
func TestProperty_IntervalMatchesMultiples(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("fires exactly on multiples of the interval", prop.ForAll(
		func(every int, daysOverdue int) bool {
			cfg := triggerConfig{TriggerEveryNDays: &every}
			return intervalMatches(cfg, &daysOverdue) == (daysOverdue%every == 0)
		},
		gen.IntRange(1, 30),
		gen.IntRange(1, 365),
	))

	properties.TestingRun(t)
}

// The label filter is exact: only the configured label's canonical UUID
// string passes.
func TestProperty_LabelMatchesExact(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("only the configured label matches", prop.ForAll(
		func(seed int64) bool {
			configured := uuid.New()
			other := uuid.New()
			cfg := triggerConfig{LabelID: strPtr(configured.String())}
			return labelMatches(cfg, &configured) && !labelMatches(cfg, &other)
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}
