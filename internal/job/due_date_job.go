package job

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"task-automation-api/internal/domain"
	"task-automation-api/internal/repository"
	"task-automation-api/internal/service"
)

// dedupeTTL keeps a fired trigger marked long enough to cover clock drift
// between daily runs.
const dedupeTTL = 36 * time.Hour

// DueDateJob scans tasks and cards with due dates and fires the
// time-based automation triggers: approaching, reached, and overdue.
// It implements cron.Job.
type DueDateJob struct {
	tasks          repository.TaskRepository
	cards          repository.CardRepository
	taskAutomation service.TaskAutomationService
	cardAutomation service.CardAutomationService
	redis          *redis.Client
	logger         *zap.Logger
	now            func() time.Time
}

// NewDueDateJob creates a new DueDateJob instance. redis may be nil, in
// which case runs are not deduplicated across replicas.
func NewDueDateJob(
	tasks repository.TaskRepository,
	cards repository.CardRepository,
	taskAutomation service.TaskAutomationService,
	cardAutomation service.CardAutomationService,
	redisClient *redis.Client,
	logger *zap.Logger,
) *DueDateJob {
	return &DueDateJob{
		tasks:          tasks,
		cards:          cards,
		taskAutomation: taskAutomation,
		cardAutomation: cardAutomation,
		redis:          redisClient,
		logger:         logger,
		now:            time.Now,
	}
}

// Run executes one scan over all open tasks and cards with due dates
func (j *DueDateJob) Run() {
	ctx := context.Background()
	today := truncateToDay(j.now())

	j.logger.Info("Starting due date scan")

	taskCount := j.scanTasks(ctx, today)
	cardCount := j.scanCards(ctx, today)

	j.logger.Info("Due date scan completed",
		zap.Int("tasks_fired", taskCount),
		zap.Int("cards_fired", cardCount),
	)
}

func (j *DueDateJob) scanTasks(ctx context.Context, today time.Time) int {
	tasks, err := j.tasks.FindWithDueDates(ctx)
	if err != nil {
		j.logger.Error("Failed to load tasks with due dates", zap.Error(err))
		return 0
	}

	fired := 0
	for _, task := range tasks {
		days := daysUntil(today, *task.DueDate)

		var trigger domain.TaskTriggerType
		switch {
		case days > 0:
			trigger = domain.TaskTriggerDueDateApproaching
		case days == 0:
			trigger = domain.TaskTriggerDueDateReached
		default:
			trigger = domain.TaskTriggerDueDateOverdue
		}

		if !j.claim(ctx, "task", task.ID.String(), string(trigger), today) {
			continue
		}

		var fireErr error
		switch trigger {
		case domain.TaskTriggerDueDateApproaching:
			_, fireErr = j.taskAutomation.TriggerDueDateApproaching(ctx, task.ID, days)
		case domain.TaskTriggerDueDateReached:
			_, fireErr = j.taskAutomation.TriggerDueDateReached(ctx, task.ID)
		case domain.TaskTriggerDueDateOverdue:
			_, fireErr = j.taskAutomation.TriggerDueDateOverdue(ctx, task.ID, -days)
		}
		if fireErr != nil {
			j.logger.Error("Failed to fire due date trigger",
				zap.String("task_id", task.ID.String()),
				zap.String("trigger", string(trigger)),
				zap.Error(fireErr),
			)
			continue
		}
		fired++
	}
	return fired
}

func (j *DueDateJob) scanCards(ctx context.Context, today time.Time) int {
	cards, err := j.cards.FindWithDueDates(ctx)
	if err != nil {
		j.logger.Error("Failed to load cards with due dates", zap.Error(err))
		return 0
	}

	fired := 0
	for _, card := range cards {
		days := daysUntil(today, *card.DueDate)

		var trigger domain.CardTriggerType
		switch {
		case days > 0:
			trigger = domain.CardTriggerDueDateApproaching
		case days == 0:
			trigger = domain.CardTriggerDueDateReached
		default:
			trigger = domain.CardTriggerDueDateOverdue
		}

		if !j.claim(ctx, "card", card.ID.String(), string(trigger), today) {
			continue
		}

		var fireErr error
		switch trigger {
		case domain.CardTriggerDueDateApproaching:
			_, fireErr = j.cardAutomation.TriggerDueDateApproaching(ctx, card.ID, days)
		case domain.CardTriggerDueDateReached:
			_, fireErr = j.cardAutomation.TriggerDueDateReached(ctx, card.ID)
		case domain.CardTriggerDueDateOverdue:
			_, fireErr = j.cardAutomation.TriggerDueDateOverdue(ctx, card.ID, -days)
		}
		if fireErr != nil {
			j.logger.Error("Failed to fire due date trigger",
				zap.String("card_id", card.ID.String()),
				zap.String("trigger", string(trigger)),
				zap.Error(fireErr),
			)
			continue
		}
		fired++
	}
	return fired
}

// claim marks an entity/trigger pair as fired for the day. Returns true when
// this run owns the firing. Without redis every run claims everything.
func (j *DueDateJob) claim(ctx context.Context, engine, entityID, trigger string, day time.Time) bool {
	if j.redis == nil {
		return true
	}
	key := fmt.Sprintf("automation:duedate:%s:%s:%s:%s", engine, entityID, trigger, day.Format("2006-01-02"))
	ok, err := j.redis.SetNX(ctx, key, 1, dedupeTTL).Result()
	if err != nil {
		j.logger.Warn("Due date dedupe unavailable, firing anyway",
			zap.String("key", key),
			zap.Error(err),
		)
		return true
	}
	return ok
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysUntil returns whole days from today to the due date. Negative means
// overdue.
func daysUntil(today time.Time, due time.Time) int {
	dueDay := truncateToDay(due.In(today.Location()))
	return int(dueDay.Sub(today).Hours() / 24)
}
