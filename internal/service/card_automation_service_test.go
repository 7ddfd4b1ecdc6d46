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

func newCardAutomation(t *testing.T, db *gorm.DB, m AutomationMetrics) CardAutomationService {
	t.Helper()
	return NewCardAutomationService(
		db,
		repository.NewCardRepository(db),
		repository.NewCardAutomationRepository(db),
		NewCardActionExecutor(nil, zap.NewNop()),
		m,
		zap.NewNop(),
	)
}

func TestCardAutomation_MoveTriggerWithColumnFilter(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	board := seedBoard(t, db, org.ID)
	todo := seedColumn(t, db, board.ID, "To Do", 0)
	doing := seedColumn(t, db, board.ID, "Doing", 1)
	done := seedColumn(t, db, board.ID, "Done", 2)
	card := seedCard(t, db, done.ID)

	actor := uuid.New()
	// Rule fires only for moves into the done column, assigning the mover
	rule := seedCardRule(t, db, board.ID, domain.CardTriggerCardMoved,
		mustJSON(t, map[string]string{"to_column_id": done.ID.String()}),
		domain.CardAutomationAction{
			ActionType:   domain.CardActionAssignUser,
			ActionConfig: mustJSON(t, map[string]bool{"assign_triggered_by": true}),
		},
	)

	m := newRecordingMetrics()
	svc := newCardAutomation(t, db, m)
	ctx := context.Background()

	logs, err := svc.TriggerCardMoved(ctx, card.ID, actor, todo.ID, done.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, rule.ID, logs[0].RuleID)
	assert.Equal(t, domain.AutomationLogSuccess, logs[0].Status)
	assert.Equal(t, "Rule executed successfully", logs[0].Message)

	var stored domain.BoardCard
	require.NoError(t, db.First(&stored, card.ID).Error)
	require.NotNil(t, stored.AssigneeID)
	assert.Equal(t, actor, *stored.AssigneeID)
	assert.Equal(t, 1, m.rules["card/success"])

	// A move into a different column misses the filter and leaves no log
	logs, err = svc.TriggerCardMoved(ctx, card.ID, actor, done.ID, doing.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)

	var logCount int64
	require.NoError(t, db.Model(&domain.CardAutomationLog{}).Count(&logCount).Error)
	assert.EqualValues(t, 1, logCount)
}

func TestCardAutomation_FailedRuleRollsBack(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	board := seedBoard(t, db, org.ID)
	column := seedColumn(t, db, board.ID, "To Do", 0)
	card := seedCard(t, db, column.ID)

	rule := seedCardRule(t, db, board.ID, domain.CardTriggerCardCreated, nil,
		domain.CardAutomationAction{
			ActionType:   domain.CardActionAssignUser,
			ActionConfig: mustJSON(t, map[string]bool{"assign_triggered_by": true}),
			SortOrder:    0,
		},
		domain.CardAutomationAction{
			ActionType: domain.CardActionType("explode"),
			SortOrder:  1,
		},
	)

	svc := newCardAutomation(t, db, nil)
	logs, err := svc.TriggerCardCreated(context.Background(), card.ID, uuid.New())
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, rule.ID, logs[0].RuleID)
	assert.Equal(t, domain.AutomationLogFailed, logs[0].Status)
	assert.Contains(t, logs[0].Message, "unknown action type")

	// The assignment rolled back with the rest of the rule
	var stored domain.BoardCard
	require.NoError(t, db.First(&stored, card.ID).Error)
	assert.Nil(t, stored.AssigneeID)
}

func TestCardAutomation_RulesScopedToBoard(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	board := seedBoard(t, db, org.ID)
	otherBoard := seedBoard(t, db, org.ID)
	column := seedColumn(t, db, board.ID, "To Do", 0)
	card := seedCard(t, db, column.ID)

	// Rule on another board must not fire for this card
	seedCardRule(t, db, otherBoard.ID, domain.CardTriggerCardCreated, nil,
		domain.CardAutomationAction{ActionType: domain.CardActionPostComment})

	svc := newCardAutomation(t, db, nil)
	logs, err := svc.TriggerCardCreated(context.Background(), card.ID, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestCardActionExecutor_MoveCardWithinBoard(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	board := seedBoard(t, db, org.ID)
	otherBoard := seedBoard(t, db, org.ID)
	source := seedColumn(t, db, board.ID, "To Do", 0)
	target := seedColumn(t, db, board.ID, "Done", 1)
	foreign := seedColumn(t, db, otherBoard.ID, "Elsewhere", 0)

	seedCard(t, db, target.ID) // occupies sort order 0 in the target column
	seeded := seedCard(t, db, source.ID)

	var card domain.BoardCard
	require.NoError(t, db.Preload("Column").First(&card, seeded.ID).Error)

	executor := NewCardActionExecutor(nil, zap.NewNop())
	ctx := context.Background()

	// Cross-board move is silently skipped
	require.NoError(t, executor.Execute(ctx, db, domain.CardActionMoveCard,
		mustJSON(t, map[string]string{"column_id": foreign.ID.String()}), &card, uuid.New()))
	assert.Equal(t, source.ID, card.ColumnID)

	// Same-board move appends to the target column
	require.NoError(t, executor.Execute(ctx, db, domain.CardActionMoveCard,
		mustJSON(t, map[string]string{"column_id": target.ID.String()}), &card, uuid.New()))
	assert.Equal(t, target.ID, card.ColumnID)
	assert.Equal(t, 1, card.SortOrder)
}

func TestCardActionExecutor_ReorderActions(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	board := seedBoard(t, db, org.ID)
	column := seedColumn(t, db, board.ID, "To Do", 0)

	first := seedCard(t, db, column.ID)
	require.NoError(t, db.Model(&domain.BoardCard{}).Where("id = ?", first.ID).Update("sort_order", 0).Error)
	second := seedCard(t, db, column.ID)
	require.NoError(t, db.Model(&domain.BoardCard{}).Where("id = ?", second.ID).Update("sort_order", 1).Error)

	var card domain.BoardCard
	require.NoError(t, db.Preload("Column").First(&card, second.ID).Error)

	executor := NewCardActionExecutor(nil, zap.NewNop())
	ctx := context.Background()

	// Top of a column whose minimum is 0 stays at 0
	require.NoError(t, executor.Execute(ctx, db, domain.CardActionMoveToTop, nil, &card, uuid.New()))
	assert.Equal(t, 0, card.SortOrder)

	require.NoError(t, executor.Execute(ctx, db, domain.CardActionMoveToBottom, nil, &card, uuid.New()))
	assert.Equal(t, 1, card.SortOrder)
}

func TestCardActionExecutor_UnassignClearsAssignee(t *testing.T) {
	db := newTestDB(t)
	org := seedOrganization(t, db)
	board := seedBoard(t, db, org.ID)
	column := seedColumn(t, db, board.ID, "To Do", 0)
	seeded := seedCard(t, db, column.ID)

	assignee := uuid.New()
	require.NoError(t, db.Model(&domain.BoardCard{}).Where("id = ?", seeded.ID).
		Update("assignee_id", assignee).Error)

	var card domain.BoardCard
	require.NoError(t, db.Preload("Column").First(&card, seeded.ID).Error)
	require.NotNil(t, card.AssigneeID)

	executor := NewCardActionExecutor(nil, zap.NewNop())
	require.NoError(t, executor.Execute(context.Background(), db, domain.CardActionUnassignUser, nil, &card, uuid.New()))
	assert.Nil(t, card.AssigneeID)

	var stored domain.BoardCard
	require.NoError(t, db.First(&stored, card.ID).Error)
	assert.Nil(t, stored.AssigneeID)
}
