package database

import (
	"fmt"

	"gorm.io/gorm"

	"task-automation-api/internal/domain"
)

// AutoMigrate runs GORM auto-migration for all domain models.
// It creates tables, indexes, and foreign key constraints based on
// the struct definitions in the domain package.
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&domain.Organization{},
		&domain.Project{},
		&domain.Task{},
		&domain.RecurringTask{},
		&domain.TaskLabel{},
		&domain.TaskLabelAssignment{},
		&domain.TaskAutomationRule{},
		&domain.TaskAutomationAction{},
		&domain.TaskAutomationLog{},
		&domain.TaskButton{},
		&domain.TaskButtonAction{},
		&domain.Board{},
		&domain.BoardColumn{},
		&domain.BoardCard{},
		&domain.CardLabel{},
		&domain.CardLabelAssignment{},
		&domain.CardAutomationRule{},
		&domain.CardAutomationAction{},
		&domain.CardAutomationLog{},
		&domain.CardButton{},
		&domain.CardButtonAction{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}

	return nil
}
