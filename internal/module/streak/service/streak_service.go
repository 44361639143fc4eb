// Package service tracks daily savings and transaction streaks, helping
// gig workers build consistent financial habits. Day boundaries are IST
// calendar days.
package service

import (
	"context"
	"fmt"
	"time"

	"gullak/internal/istime"
	"gullak/internal/module/streak/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Result reports the state of one streak after a recording call.
type Result struct {
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	IsNewRecord   bool   `json:"is_new_record"`
	Message       string `json:"message"`
}

// StreakInfo is the read-side view of one streak. Current is displayed as
// 0 once the streak is broken, without rewriting the stored counter — the
// stored value only changes on the next recording event.
type StreakInfo struct {
	Current   int        `json:"current"`
	Longest   int        `json:"longest"`
	TotalDays int        `json:"total_days"`
	IsActive  bool       `json:"is_active"`
	LastDate  *time.Time `json:"last_date,omitempty"`
}

// Snapshot is both streaks together.
type Snapshot struct {
	Savings     StreakInfo `json:"savings_streak"`
	Transaction StreakInfo `json:"transaction_streak"`
}

// Service is the streak module's public contract.
type Service interface {
	// RecordSaving updates the savings streak when an allocation commits.
	RecordSaving(ctx context.Context, userID uuid.UUID) (Result, error)
	// RecordTransaction updates the tracking streak when the user logs a
	// manual transaction.
	RecordTransaction(ctx context.Context, userID uuid.UUID) (Result, error)
	// GetSnapshot returns both streaks with broken streaks displayed as 0.
	GetSnapshot(ctx context.Context, userID uuid.UUID) (*Snapshot, error)
}

type streakService struct {
	repo   repository.Repository
	logger *zap.Logger
}

func New(repo repository.Repository, logger *zap.Logger) Service {
	return &streakService{repo: repo, logger: logger.Named("streak")}
}

// advance applies the continuation rules to one streak counter given the
// last activity date: same day is a no-op, yesterday increments, anything
// older (or nothing) resets to 1.
func advance(current int, last *time.Time, today time.Time) (next int, counted bool) {
	if last == nil {
		return 1, true
	}
	lastDay := istime.StartOfDay(*last)
	switch {
	case lastDay.Equal(today):
		return current, false
	case lastDay.Equal(today.AddDate(0, 0, -1)):
		return current + 1, true
	default:
		return 1, true
	}
}

func (s *streakService) RecordSaving(ctx context.Context, userID uuid.UUID) (Result, error) {
	streak, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	today := istime.Today()
	next, counted := advance(streak.SavingsStreak, streak.LastSavingsDate, today)
	if !counted {
		return Result{
			CurrentStreak: streak.SavingsStreak,
			LongestStreak: streak.LongestSavings,
			Message:       fmt.Sprintf("Keep it up! You're on a %d-day savings streak! 🔥", streak.SavingsStreak),
		}, nil
	}

	streak.SavingsStreak = next
	isNewRecord := false
	if streak.SavingsStreak > streak.LongestSavings {
		streak.LongestSavings = streak.SavingsStreak
		isNewRecord = true
	}
	now := istime.Now()
	streak.LastSavingsDate = &now
	streak.TotalSavingsDays++

	if err := s.repo.Update(ctx, streak); err != nil {
		return Result{}, err
	}

	message := fmt.Sprintf("🎉 %d-day savings streak!", streak.SavingsStreak)
	switch {
	case isNewRecord:
		message += " New personal record! 🏆"
	case streak.SavingsStreak >= 30:
		message += " You're a savings champion! 🥇"
	case streak.SavingsStreak >= 7:
		message += " Amazing consistency! 💪"
	}

	return Result{
		CurrentStreak: streak.SavingsStreak,
		LongestStreak: streak.LongestSavings,
		IsNewRecord:   isNewRecord,
		Message:       message,
	}, nil
}

func (s *streakService) RecordTransaction(ctx context.Context, userID uuid.UUID) (Result, error) {
	streak, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	today := istime.Today()
	next, counted := advance(streak.TransactionStreak, streak.LastTransactionDate, today)
	if !counted {
		return Result{
			CurrentStreak: streak.TransactionStreak,
			LongestStreak: streak.LongestTransaction,
			Message:       fmt.Sprintf("Keep tracking! %d-day streak! 📊", streak.TransactionStreak),
		}, nil
	}

	streak.TransactionStreak = next
	isNewRecord := false
	if streak.TransactionStreak > streak.LongestTransaction {
		streak.LongestTransaction = streak.TransactionStreak
		isNewRecord = true
	}
	now := istime.Now()
	streak.LastTransactionDate = &now
	streak.TotalTransactionDays++

	if err := s.repo.Update(ctx, streak); err != nil {
		return Result{}, err
	}

	message := fmt.Sprintf("📊 %d-day tracking streak!", streak.TransactionStreak)
	switch {
	case isNewRecord:
		message += " New record! 🏆"
	case streak.TransactionStreak >= 7:
		message += " Great habit! 💪"
	}

	return Result{
		CurrentStreak: streak.TransactionStreak,
		LongestStreak: streak.LongestTransaction,
		IsNewRecord:   isNewRecord,
		Message:       message,
	}, nil
}

// isActive reports whether last activity was today or yesterday in IST.
func isActive(last *time.Time, today time.Time) bool {
	if last == nil {
		return false
	}
	lastDay := istime.StartOfDay(*last)
	return lastDay.Equal(today) || lastDay.Equal(today.AddDate(0, 0, -1))
}

func (s *streakService) GetSnapshot(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	streak, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := istime.Today()
	savingsActive := isActive(streak.LastSavingsDate, today)
	txnActive := isActive(streak.LastTransactionDate, today)

	savingsCurrent := 0
	if savingsActive {
		savingsCurrent = streak.SavingsStreak
	}
	txnCurrent := 0
	if txnActive {
		txnCurrent = streak.TransactionStreak
	}

	return &Snapshot{
		Savings: StreakInfo{
			Current:   savingsCurrent,
			Longest:   streak.LongestSavings,
			TotalDays: streak.TotalSavingsDays,
			IsActive:  savingsActive,
			LastDate:  streak.LastSavingsDate,
		},
		Transaction: StreakInfo{
			Current:   txnCurrent,
			Longest:   streak.LongestTransaction,
			TotalDays: streak.TotalTransactionDays,
			IsActive:  txnActive,
			LastDate:  streak.LastTransactionDate,
		},
	}, nil
}
