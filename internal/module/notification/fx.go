package notification

import (
	"gullak/internal/config"
	"gullak/internal/module/notification/domain"
	"gullak/internal/module/notification/service"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides outbound email.
var Module = fx.Module("notification",
	fx.Provide(provideEmailSender),
)

func provideEmailSender(cfg *config.Config, logger *zap.Logger) service.EmailSender {
	return service.NewEmailService(domain.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromEmail:    cfg.Email.FromEmail,
		FromName:     cfg.Email.FromName,
	}, logger)
}
