package service

import (
	"time"

	"gullak/internal/istime"
	"gullak/internal/module/connection/domain"
)

// sectionsPresent records which sections a snapshot document actually
// carried, so the merge can distinguish "absent" from "present but empty".
type sectionsPresent struct {
	Transactions bool
	Entries      bool
	Summary      bool
	AccountID    bool
	Status       bool
	Balance      bool
}

// mergePayload reconciles the persisted payload P with a freshly loaded
// snapshot F. It is a pure function; all IST conversion and payload
// normalization lives in this file, not in the service methods.
//
// Rules:
//  1. allocated_transaction_ids from P survives any replacement, unioned
//     with F's (F typically has none).
//  2. transactions/entries/monthly_summary are replaced from F when F
//     carries them, otherwise P's are kept.
//  3. account_id/status/balance are copied from F only when absent in P.
func mergePayload(p domain.Payload, f domain.Payload, present sectionsPresent) domain.Payload {
	merged := p

	merged.AllocatedTransactionIDs = p.AllocatedTransactionIDs.Union(f.AllocatedTransactionIDs)

	if present.Transactions {
		merged.Transactions = f.Transactions
	}
	if present.Entries {
		merged.Entries = f.Entries
	}
	if present.Summary {
		merged.MonthlySummary = f.MonthlySummary
	}

	if merged.AccountID == "" && present.AccountID {
		merged.AccountID = f.AccountID
	}
	if merged.Status == "" && present.Status {
		merged.Status = f.Status
	}
	if merged.Balance.IsZero() && present.Balance {
		merged.Balance = f.Balance
	}

	if merged.Transactions == nil {
		merged.Transactions = []domain.Transaction{}
	}
	if merged.Entries == nil {
		merged.Entries = []domain.Entry{}
	}
	if merged.MonthlySummary == nil {
		merged.MonthlySummary = map[string]any{}
	}
	return merged
}

// eligibleIncome computes the new-income diff. A transaction t is emitted
// iff all of:
//   - t.type = credit and t.amount > 0
//   - t.id is not already in the allocated set
//   - t.timestamp > max(connectionCreatedAt, previousLastSync), OR
//     t.timestamp is in the future (a scheduled deposit)
//   - t.timestamp > connectionCreatedAt (hard floor, strict — rows dated at
//     or before connection creation never allocate, which stops
//     reconnect-replay)
//
// A nil previousLastSync means "no previous sync" (first sync ever).
func eligibleIncome(all []domain.Transaction, allocated domain.TransactionIDSet, connectionCreatedAt time.Time, previousLastSync *time.Time) []domain.Transaction {
	createdIST := istime.In(connectionCreatedAt)
	now := istime.Now()

	floor := createdIST
	if previousLastSync != nil {
		prevIST := istime.In(*previousLastSync)
		if prevIST.After(floor) {
			floor = prevIST
		}
	}

	out := make([]domain.Transaction, 0)
	for _, t := range all {
		if t.Type != domain.TransactionCredit {
			continue
		}
		if !t.Amount.IsPositive() {
			continue
		}
		if allocated.Has(t.ID) {
			continue
		}
		ts := istime.In(t.Timestamp)
		if !ts.After(createdIST) {
			continue
		}
		isFuture := ts.After(now)
		if !ts.After(floor) && !isFuture {
			continue
		}
		out = append(out, t)
	}
	return out
}

// eligibleExpense computes the debit diff used for spending notifications:
// debits with timestamp >= previousLastSync - 5 minutes, or the last seven
// days when there was no previous sync.
func eligibleExpense(all []domain.Transaction, previousLastSync *time.Time) []domain.Transaction {
	now := istime.Now()
	var floor time.Time
	if previousLastSync != nil {
		floor = istime.In(*previousLastSync).Add(-5 * time.Minute)
	} else {
		floor = now.AddDate(0, 0, -7)
	}

	out := make([]domain.Transaction, 0)
	for _, t := range all {
		if t.Type != domain.TransactionDebit {
			continue
		}
		ts := istime.In(t.Timestamp)
		if !ts.Before(floor) {
			out = append(out, t)
		}
	}
	return out
}
