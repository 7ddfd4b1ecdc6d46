package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"task-automation-api/internal/client"
	"task-automation-api/internal/domain"
	"task-automation-api/internal/repository"
)

// cardActionConfig is the decoded form of a card action's action_config JSON
type cardActionConfig struct {
	ColumnID          *string `json:"column_id,omitempty"`
	UserID            *string `json:"user_id,omitempty"`
	AssignTriggeredBy *bool   `json:"assign_triggered_by,omitempty"`
	LabelID           *string `json:"label_id,omitempty"`
	DaysOffset        *int    `json:"days_offset,omitempty"`
	Message           *string `json:"message,omitempty"`
	Comment           *string `json:"comment,omitempty"`
}

func decodeCardActionConfig(raw datatypes.JSON) cardActionConfig {
	var cfg cardActionConfig
	if len(raw) == 0 {
		return cfg
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cardActionConfig{}
	}
	return cfg
}

// cardActionContext bundles the state one card action handler operates on.
// The card must carry its Column so handlers can resolve the board scope.
type cardActionContext struct {
	cards       repository.CardRepository
	labels      repository.CardLabelRepository
	boards      repository.BoardRepository
	card        *domain.BoardCard
	cfg         cardActionConfig
	triggeredBy uuid.UUID
}

type cardActionHandler func(ctx context.Context, ac *cardActionContext) error

// CardActionExecutor dispatches card actions to their handlers. Like its
// task counterpart the registry is immutable after construction.
type CardActionExecutor struct {
	users    client.UserClient
	logger   *zap.Logger
	now      func() time.Time
	handlers map[domain.CardActionType]cardActionHandler
}

// NewCardActionExecutor creates a card action executor. users may be nil.
func NewCardActionExecutor(users client.UserClient, logger *zap.Logger) *CardActionExecutor {
	e := &CardActionExecutor{
		users:  users,
		logger: logger,
		now:    time.Now,
	}
	e.handlers = map[domain.CardActionType]cardActionHandler{
		domain.CardActionMoveCard:         e.moveCard,
		domain.CardActionMoveToTop:        e.moveToTop,
		domain.CardActionMoveToBottom:     e.moveToBottom,
		domain.CardActionAssignUser:       e.assignUser,
		domain.CardActionUnassignUser:     e.unassignUser,
		domain.CardActionAddLabel:         e.addLabel,
		domain.CardActionRemoveLabel:      e.removeLabel,
		domain.CardActionSetDueDate:       e.setDueDate,
		domain.CardActionClearDueDate:     e.clearDueDate,
		domain.CardActionSendNotification: e.sendNotification,
		domain.CardActionPostComment:      e.postComment,
	}
	return e
}

// Execute runs one action against a card inside the given transaction
func (e *CardActionExecutor) Execute(ctx context.Context, tx *gorm.DB, actionType domain.CardActionType, config datatypes.JSON, card *domain.BoardCard, triggeredBy uuid.UUID) error {
	handler, ok := e.handlers[actionType]
	if !ok {
		return fmt.Errorf("unknown action type: %s", actionType)
	}

	ac := &cardActionContext{
		cards:       repository.NewCardRepository(tx),
		labels:      repository.NewCardLabelRepository(tx),
		boards:      repository.NewBoardRepository(tx),
		card:        card,
		cfg:         decodeCardActionConfig(config),
		triggeredBy: triggeredBy,
	}
	return handler(ctx, ac)
}

// moveCard moves the card to another column on the same board, appending it
// to the end of that column. Columns on other boards are silently ignored.
func (e *CardActionExecutor) moveCard(ctx context.Context, ac *cardActionContext) error {
	if ac.cfg.ColumnID == nil {
		return nil
	}
	columnID, err := uuid.Parse(*ac.cfg.ColumnID)
	if err != nil {
		return nil
	}
	if columnID == ac.card.ColumnID {
		return nil
	}

	target, err := ac.boards.FindColumnByIDInBoard(ctx, columnID, ac.card.Column.BoardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			e.logger.Debug("Skipping move_card outside board",
				zap.String("column_id", columnID.String()),
			)
			return nil
		}
		return err
	}

	maxSort, err := ac.cards.MaxSortOrderInColumn(ctx, target.ID, &ac.card.ID)
	if err != nil {
		return err
	}
	newSort := maxSort + 1

	if err := ac.cards.UpdateFields(ctx, ac.card.ID, map[string]interface{}{
		"column_id":  target.ID,
		"sort_order": newSort,
	}); err != nil {
		return err
	}
	ac.card.ColumnID = target.ID
	ac.card.Column = *target
	ac.card.SortOrder = newSort
	return nil
}

// moveToTop repositions the card above every other card in its column.
// Sort orders never go negative.
func (e *CardActionExecutor) moveToTop(ctx context.Context, ac *cardActionContext) error {
	minSort, err := ac.cards.MinSortOrderInColumn(ctx, ac.card.ColumnID, &ac.card.ID)
	if err != nil {
		return err
	}
	newSort := 0
	if minSort > 0 {
		newSort = minSort - 1
	}
	if err := ac.cards.UpdateFields(ctx, ac.card.ID, map[string]interface{}{"sort_order": newSort}); err != nil {
		return err
	}
	ac.card.SortOrder = newSort
	return nil
}

// moveToBottom repositions the card below every other card in its column
func (e *CardActionExecutor) moveToBottom(ctx context.Context, ac *cardActionContext) error {
	maxSort, err := ac.cards.MaxSortOrderInColumn(ctx, ac.card.ColumnID, &ac.card.ID)
	if err != nil {
		return err
	}
	newSort := maxSort + 1
	if err := ac.cards.UpdateFields(ctx, ac.card.ID, map[string]interface{}{"sort_order": newSort}); err != nil {
		return err
	}
	ac.card.SortOrder = newSort
	return nil
}

// assignUser assigns the card either to the user who triggered the rule or
// to a configured active user, mirroring the task action of the same name.
func (e *CardActionExecutor) assignUser(ctx context.Context, ac *cardActionContext) error {
	var target uuid.UUID

	switch {
	case ac.cfg.AssignTriggeredBy != nil && *ac.cfg.AssignTriggeredBy:
		if ac.triggeredBy == uuid.Nil {
			return nil
		}
		target = ac.triggeredBy
	case ac.cfg.UserID != nil:
		parsed, err := uuid.Parse(*ac.cfg.UserID)
		if err != nil {
			return nil
		}
		if e.users != nil {
			user, err := e.users.GetUser(ctx, parsed)
			if err != nil || !user.IsActive {
				e.logger.Debug("Skipping assign_user for unavailable or inactive user",
					zap.String("user_id", parsed.String()),
				)
				return nil
			}
		}
		target = parsed
	default:
		return nil
	}

	if err := ac.cards.UpdateFields(ctx, ac.card.ID, map[string]interface{}{"assignee_id": target}); err != nil {
		return err
	}
	ac.card.AssigneeID = &target
	return nil
}

// unassignUser clears the card's assignee. Cards, unlike tasks, have a
// nullable assignee column so this action has a real effect here.
func (e *CardActionExecutor) unassignUser(ctx context.Context, ac *cardActionContext) error {
	if ac.card.AssigneeID == nil {
		return nil
	}
	if err := ac.cards.UpdateFields(ctx, ac.card.ID, map[string]interface{}{"assignee_id": nil}); err != nil {
		return err
	}
	ac.card.AssigneeID = nil
	return nil
}

// addLabel attaches a label after checking it belongs to the card's board
func (e *CardActionExecutor) addLabel(ctx context.Context, ac *cardActionContext) error {
	labelID, ok := e.resolveLabel(ctx, ac)
	if !ok {
		return nil
	}
	return ac.labels.AssignLabel(ctx, ac.card.ID, labelID)
}

// removeLabel detaches a label from the card if present
func (e *CardActionExecutor) removeLabel(ctx context.Context, ac *cardActionContext) error {
	if ac.cfg.LabelID == nil {
		return nil
	}
	labelID, err := uuid.Parse(*ac.cfg.LabelID)
	if err != nil {
		return nil
	}
	return ac.labels.UnassignLabel(ctx, ac.card.ID, labelID)
}

func (e *CardActionExecutor) resolveLabel(ctx context.Context, ac *cardActionContext) (uuid.UUID, bool) {
	if ac.cfg.LabelID == nil {
		return uuid.Nil, false
	}
	labelID, err := uuid.Parse(*ac.cfg.LabelID)
	if err != nil {
		return uuid.Nil, false
	}
	if _, err := ac.labels.FindByIDInBoard(ctx, labelID, ac.card.Column.BoardID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			e.logger.Warn("Label scope check failed", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return labelID, true
}

// setDueDate sets the due date to now plus the configured offset
func (e *CardActionExecutor) setDueDate(ctx context.Context, ac *cardActionContext) error {
	offset := defaultDueDateOffsetDays
	if ac.cfg.DaysOffset != nil {
		offset = *ac.cfg.DaysOffset
	}
	due := e.now().AddDate(0, 0, offset)
	if err := ac.cards.UpdateFields(ctx, ac.card.ID, map[string]interface{}{"due_date": due}); err != nil {
		return err
	}
	ac.card.DueDate = &due
	return nil
}

// clearDueDate removes the due date
func (e *CardActionExecutor) clearDueDate(ctx context.Context, ac *cardActionContext) error {
	if err := ac.cards.UpdateFields(ctx, ac.card.ID, map[string]interface{}{"due_date": nil}); err != nil {
		return err
	}
	ac.card.DueDate = nil
	return nil
}

// sendNotification records the intent; delivery is handled elsewhere
func (e *CardActionExecutor) sendNotification(ctx context.Context, ac *cardActionContext) error {
	message := ""
	if ac.cfg.Message != nil {
		message = *ac.cfg.Message
	}
	e.logger.Info("Automation notification",
		zap.String("card_id", ac.card.ID.String()),
		zap.String("message", message),
	)
	return nil
}

// postComment records the intent; the comment surface lives in another service
func (e *CardActionExecutor) postComment(ctx context.Context, ac *cardActionContext) error {
	comment := ""
	if ac.cfg.Comment != nil {
		comment = *ac.cfg.Comment
	}
	e.logger.Info("Automation comment",
		zap.String("card_id", ac.card.ID.String()),
		zap.String("comment", comment),
	)
	return nil
}
