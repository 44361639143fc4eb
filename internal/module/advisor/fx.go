package advisor

import (
	"time"

	"gullak/internal/config"
	"gullak/internal/module/advisor/domain"
	"gullak/internal/module/advisor/provider"
	"gullak/internal/module/advisor/service"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the policy advisor. Without an API key the mock provider
// is wired in, which keeps local runs and tests off the network.
var Module = fx.Module("advisor",
	fx.Provide(
		provideProvider,
		provideCooldown,
		provideAdvisor,
	),
)

func provideProvider(cfg *config.Config, logger *zap.Logger) (domain.Provider, error) {
	if cfg.Advisor.APIKey == "" {
		logger.Warn("no Gemini API key configured, advisor uses the mock provider")
		return provider.NewMockProvider(), nil
	}
	return provider.NewGenAIProvider(&provider.GenAIConfig{
		APIKey: cfg.Advisor.APIKey,
		Models: cfg.Advisor.Models,
	})
}

func provideCooldown(cfg *config.Config, client *redis.Client, logger *zap.Logger) domain.CooldownStore {
	if client == nil {
		return service.NewMemoryCooldown()
	}
	return service.NewRedisCooldown(client, logger)
}

func provideAdvisor(
	cfg *config.Config,
	prov domain.Provider,
	cooldown domain.CooldownStore,
	logger *zap.Logger,
) domain.Advisor {
	return service.New(prov, cooldown, service.Config{
		Timeout:  time.Duration(cfg.Advisor.TimeoutSec) * time.Second,
		Cooldown: time.Duration(cfg.Advisor.CooldownSec) * time.Second,
	}, logger)
}
