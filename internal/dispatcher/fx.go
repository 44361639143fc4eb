package dispatcher

import (
	"context"
	"time"

	"gullak/internal/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the background task dispatcher with lifecycle hooks.
var Module = fx.Module("dispatcher",
	fx.Provide(provideDispatcher),
	fx.Invoke(registerLifecycle),
)

func provideDispatcher(cfg *config.Config, logger *zap.Logger) *Dispatcher {
	return New(Config{
		QueueSize:   cfg.Dispatcher.QueueSize,
		TaskTimeout: time.Duration(cfg.Dispatcher.TaskTimeoutSec) * time.Second,
		IdleTTL:     time.Duration(cfg.Dispatcher.IdleTTLSec) * time.Second,
	}, logger)
}

func registerLifecycle(lc fx.Lifecycle, d *Dispatcher) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return d.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return d.Stop(ctx)
		},
	})
}
