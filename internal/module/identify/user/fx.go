package user

import (
	conndomain "gullak/internal/module/connection/domain"
	goaldomain "gullak/internal/module/goal/domain"
	"gullak/internal/module/identify/user/repository"
	"gullak/internal/module/identify/user/service"
	streakdomain "gullak/internal/module/streak/domain"
	txndomain "gullak/internal/module/transaction/domain"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module provides user lifecycle operations.
var Module = fx.Module("user",
	fx.Provide(
		provideRepository,
		provideService,
	),
)

func provideRepository(db *gorm.DB) repository.Repository {
	return repository.New(db)
}

// Deleting a user cascades every entity it owns.
func provideService(repo repository.Repository, db *gorm.DB, logger *zap.Logger) service.Service {
	owned := []service.OwnedEntity{
		&goaldomain.Goal{},
		&conndomain.Connection{},
		&txndomain.ManualTransaction{},
		&streakdomain.UserStreak{},
	}
	return service.New(repo, db, owned, logger)
}
