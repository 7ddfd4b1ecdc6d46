package metrics

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BusinessCollector periodically refreshes business gauges from the database
type BusinessCollector struct {
	db       *gorm.DB
	metrics  *Metrics
	logger   *zap.Logger
	interval time.Duration
	done     chan struct{}
}

// NewBusinessCollector creates a business metrics collector
func NewBusinessCollector(db *gorm.DB, m *Metrics, logger *zap.Logger, interval time.Duration) *BusinessCollector {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &BusinessCollector{
		db:       db,
		metrics:  m,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins periodic collection in a background goroutine
func (c *BusinessCollector) Start() {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.done:
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *BusinessCollector) Stop() {
	close(c.done)
}

func (c *BusinessCollector) collect() {
	var taskRules int64
	if err := c.db.Table("task_automation_rules").
		Where("is_active = ? AND deleted_at IS NULL", true).
		Count(&taskRules).Error; err != nil {
		c.logger.Warn("Failed to count active task rules", zap.Error(err))
	} else {
		c.metrics.SetActiveRules(EngineTask, taskRules)
	}

	var cardRules int64
	if err := c.db.Table("card_automation_rules").
		Where("is_active = ? AND deleted_at IS NULL", true).
		Count(&cardRules).Error; err != nil {
		c.logger.Warn("Failed to count active card rules", zap.Error(err))
	} else {
		c.metrics.SetActiveRules(EngineCard, cardRules)
	}

	var tasks int64
	if err := c.db.Table("tasks").
		Where("is_archived = ? AND deleted_at IS NULL", false).
		Count(&tasks).Error; err != nil {
		c.logger.Warn("Failed to count tasks", zap.Error(err))
	} else {
		c.metrics.SetTasksTotal(tasks)
	}
}
