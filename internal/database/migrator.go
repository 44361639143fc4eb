package database

import (
	conndomain "gullak/internal/module/connection/domain"
	goaldomain "gullak/internal/module/goal/domain"
	userdomain "gullak/internal/module/identify/user/domain"
	streakdomain "gullak/internal/module/streak/domain"
	txndomain "gullak/internal/module/transaction/domain"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate applies the schema for every persisted entity.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&userdomain.User{},
		&conndomain.Connection{},
		&goaldomain.Goal{},
		&txndomain.ManualTransaction{},
		&streakdomain.UserStreak{},
	)
	if err != nil {
		logger.Error("Migration failed", zap.Error(err))
		return err
	}

	logger.Info("Migrations completed")
	return nil
}
