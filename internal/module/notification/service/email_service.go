package service

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"

	"gullak/internal/apperr"
	"gullak/internal/module/notification/domain"

	"go.uber.org/zap"
)

// Inline plain-text templates, one per email type. The full HTML template
// system lives outside this service.
var (
	incomeAllocatedTmpl = template.Must(template.New("income_allocated").Parse(
		`Hi {{.UserName}},

We received ₹{{printf "%.2f" .IncomeAmount.Float64}} and put it to work:
{{range .Allocations}}  - {{.GoalName}}: ₹{{printf "%.2f" .Amount.Float64}} ({{printf "%.1f" .Percent}}%)
{{end}}
Total saved: ₹{{printf "%.2f" .TotalAllocated.Float64}}
Left for you: ₹{{printf "%.2f" .Remaining.Float64}}

Keep it up!
`))

	spendingActivityTmpl = template.Must(template.New("spending_activity").Parse(
		`Hi {{.UserName}},

New spending recorded: ₹{{printf "%.2f" .Amount.Float64}} on {{.Category}}{{if .Description}} ({{.Description}}){{end}}.
This month so far: ₹{{printf "%.2f" .MonthTotal.Float64}}{{if .Budget.IsPositive}} of your ₹{{printf "%.2f" .Budget.Float64}} budget — ₹{{printf "%.2f" .RemainingBudget.Float64}} remaining{{end}}.
`))

	budgetWarningTmpl = template.Must(template.New("budget_warning").Parse(
		`Hi {{.UserName}},

Heads up: you have used over 90% of this month's budget.
Spent: ₹{{printf "%.2f" .MonthTotal.Float64}} of ₹{{printf "%.2f" .Budget.Float64}} (₹{{printf "%.2f" .Remaining.Float64}} left).
`))

	budgetExceededTmpl = template.Must(template.New("budget_exceeded").Parse(
		`Hi {{.UserName}},

You have exceeded this month's budget.
Spent: ₹{{printf "%.2f" .MonthTotal.Float64}} of ₹{{printf "%.2f" .Budget.Float64}} (₹{{printf "%.2f" .Overshoot.Float64}} over).
`))
)

type emailService struct {
	config domain.EmailConfig
	logger *zap.Logger
}

// NewEmailService creates the SMTP-backed email sender. Without SMTP
// credentials it runs in development mode and only logs.
func NewEmailService(config domain.EmailConfig, logger *zap.Logger) EmailSender {
	return &emailService{config: config, logger: logger.Named("email")}
}

func (es *emailService) SendIncomeAllocated(_ context.Context, email domain.IncomeAllocatedEmail) error {
	return es.send(email.Email, "Your income was allocated to your goals", incomeAllocatedTmpl, email)
}

func (es *emailService) SendSpendingActivity(_ context.Context, email domain.SpendingActivityEmail) error {
	return es.send(email.Email, "New spending activity", spendingActivityTmpl, email)
}

func (es *emailService) SendBudgetWarning(_ context.Context, email domain.BudgetWarningEmail) error {
	return es.send(email.Email, "Budget warning: 90% used", budgetWarningTmpl, email)
}

func (es *emailService) SendBudgetExceeded(_ context.Context, email domain.BudgetExceededEmail) error {
	return es.send(email.Email, "Budget exceeded", budgetExceededTmpl, email)
}

func (es *emailService) send(to, subject string, tmpl *template.Template, data any) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return apperr.EmailDispatchFailure("failed to render email body").WithErr(err)
	}

	// Development mode - just log
	if es.config.SMTPUsername == "" || es.config.SMTPPassword == "" {
		es.logger.Info("Email skipped (dev mode)",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.String("body", body.String()),
		)
		return nil
	}

	from := fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail)
	message := fmt.Sprintf("From: %s\r\n", from)
	message += fmt.Sprintf("To: %s\r\n", to)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "MIME-Version: 1.0\r\n"
	message += "Content-Type: text/plain; charset=UTF-8\r\n"
	message += "\r\n"
	message += body.String()

	auth := smtp.PlainAuth("", es.config.SMTPUsername, es.config.SMTPPassword, es.config.SMTPHost)
	addr := fmt.Sprintf("%s:%d", es.config.SMTPHost, es.config.SMTPPort)

	if err := smtp.SendMail(addr, auth, es.config.FromEmail, []string{to}, []byte(message)); err != nil {
		return apperr.EmailDispatchFailure("failed to send email").WithErr(err)
	}
	return nil
}
