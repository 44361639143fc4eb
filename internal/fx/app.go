package fx

import (
	"context"
	"fmt"
	"net/http"

	"gullak/internal/config"
	"gullak/internal/database"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AppModule runs migrations and starts the HTTP server. Route registration
// happens inside each feature module's fx.Invoke.
var AppModule = fx.Module("app",
	fx.Invoke(
		RunMigrations,
		StartServer,
	),
)

// RunMigrations applies the schema before the server starts.
func RunMigrations(db *gorm.DB, logger *zap.Logger) error {
	return database.Migrate(db, logger)
}

// StartServer starts the HTTP server with lifecycle management
func StartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
) {
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down HTTP server...")
			return srv.Shutdown(ctx)
		},
	})
}
