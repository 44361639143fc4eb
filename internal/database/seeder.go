package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gullak/internal/apperr"
	"gullak/internal/config"
	"gullak/internal/istime"
	conndomain "gullak/internal/module/connection/domain"
	goaldomain "gullak/internal/module/goal/domain"
	userrepo "gullak/internal/module/identify/user/repository"
	userservice "gullak/internal/module/identify/user/service"
	streakdomain "gullak/internal/module/streak/domain"
	txndomain "gullak/internal/module/transaction/domain"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seed creates a demo user and writes demo payment-source snapshots into
// the configured snapshot directory, so a fresh install can exercise the
// whole sync-and-allocate pipeline without any external data.
func Seed(db *gorm.DB, cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()
	repo := userrepo.New(db)
	users := userservice.New(repo, db, []userservice.OwnedEntity{
		&goaldomain.Goal{},
		&conndomain.Connection{},
		&txndomain.ManualTransaction{},
		&streakdomain.UserStreak{},
	}, logger)

	demo, err := users.Create(ctx, cfg.Seeding.DemoEmail, cfg.Seeding.DemoPassword)
	switch {
	case apperr.IsConflict(err):
		logger.Info("Demo user already exists, skipping user seed")
	case err != nil:
		return fmt.Errorf("failed to create demo user: %w", err)
	default:
		demo.FirstName = "Demo"
		demo.Location = "Bengaluru"
		if err := users.Update(ctx, demo); err != nil {
			return err
		}
		logger.Info("Demo user created",
			zap.String("email", demo.Email),
			zap.String("user_id", demo.ID.String()),
		)
	}

	return seedSnapshots(cfg.Snapshots.Dir, logger)
}

type snapshotTxn struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Timestamp   string  `json:"timestamp"`
	Status      string  `json:"status"`
}

type snapshotEntry struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
}

type snapshotDoc struct {
	AccountID      string          `json:"account_id"`
	Status         string          `json:"status"`
	Balance        float64         `json:"balance"`
	Transactions   []snapshotTxn   `json:"transactions"`
	Entries        []snapshotEntry `json:"entries"`
	MonthlySummary map[string]any  `json:"monthly_summary"`
}

// seedSnapshots writes one demo document per well-known source.
func seedSnapshots(dir string, logger *zap.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	now := istime.Now()
	ts := func(daysAgo int) string {
		return now.AddDate(0, 0, -daysAgo).Format(time.RFC3339)
	}

	docs := map[string]snapshotDoc{
		"phonepe.json": {
			AccountID: "phonepe_demo_001",
			Status:    "active",
			Balance:   18500,
			Transactions: []snapshotTxn{
				{ID: "txn_recent_001", Type: "credit", Amount: 850, Description: "Delivery payout", Timestamp: ts(1), Status: "completed"},
				{ID: "txn_recent_002", Type: "credit", Amount: 1200, Description: "Ride earnings", Timestamp: ts(2), Status: "completed"},
				{ID: "txn_recent_003", Type: "debit", Amount: 240, Description: "Grocery store", Timestamp: ts(1), Status: "completed"},
			},
			MonthlySummary: map[string]any{"total_credits": 2050, "total_debits": 240},
		},
		"gpay.json": {
			AccountID: "gpay_demo_001",
			Status:    "active",
			Balance:   9200,
			Transactions: []snapshotTxn{
				{ID: "txn_recent_101", Type: "credit", Amount: 600, Description: "Delivery payout", Timestamp: ts(1), Status: "completed"},
				{ID: "txn_recent_102", Type: "debit", Amount: 180, Description: "Mobile recharge", Timestamp: ts(3), Status: "completed"},
			},
			MonthlySummary: map[string]any{"total_credits": 600, "total_debits": 180},
		},
		"cash_income.json": {
			AccountID: "cash_demo_001",
			Status:    "active",
			Entries: []snapshotEntry{
				{ID: "entry_recent_001", Amount: 500, Description: "Cash tips", Date: now.AddDate(0, 0, -1).Format("2006-01-02"), Category: "cash_income"},
			},
			MonthlySummary: map[string]any{"total_entries": 500},
		},
		"testincome.json": {
			AccountID: "test_income_001",
			Status:    "active",
			Transactions: []snapshotTxn{
				{ID: "txn_recent_900", Type: "credit", Amount: 10000, Description: "Test income credit", Timestamp: ts(0), Status: "completed"},
			},
		},
		"testspend.json": {
			AccountID: "test_spend_001",
			Status:    "active",
			Transactions: []snapshotTxn{
				{ID: "txn_recent_950", Type: "debit", Amount: 2500, Description: "Test rent payment", Timestamp: ts(0), Status: "completed"},
			},
		},
	}

	for name, doc := range docs {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		raw, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			return fmt.Errorf("failed to write snapshot %s: %w", name, err)
		}
		logger.Info("Seeded snapshot", zap.String("file", name))
	}
	return nil
}
