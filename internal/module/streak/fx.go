package streak

import (
	"gullak/internal/module/streak/repository"
	"gullak/internal/module/streak/service"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module provides streak tracking.
var Module = fx.Module("streak",
	fx.Provide(
		provideRepository,
		provideService,
	),
)

func provideRepository(db *gorm.DB) repository.Repository {
	return repository.New(db)
}

func provideService(repo repository.Repository, logger *zap.Logger) service.Service {
	return service.New(repo, logger)
}
