package goal

import (
	"gullak/internal/config"
	advisordomain "gullak/internal/module/advisor/domain"
	"gullak/internal/module/goal/repository"
	"gullak/internal/module/goal/service"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module provides the goal repository and lifecycle controller.
var Module = fx.Module("goal",
	fx.Provide(
		provideRepository,
		provideLifecycleController,
	),
)

func provideRepository(db *gorm.DB) repository.Repository {
	return repository.New(db)
}

func provideLifecycleController(
	cfg *config.Config,
	repo repository.Repository,
	advisor advisordomain.Advisor,
	logger *zap.Logger,
) service.LifecycleController {
	return service.NewLifecycleController(repo, advisor, cfg.Advisor.RefineBootstrap, logger)
}
