// Package service implements the connection sync engine: for a
// (user, connection) pair it reconciles the persisted payload with a freshly
// loaded source snapshot and identifies new income/expense transactions.
// It never allocates income itself — that happens asynchronously on the
// dispatcher, keeping the HTTP path non-blocking.
package service

import (
	"context"
	"encoding/json"

	"gullak/internal/apperr"
	"gullak/internal/istime"
	"gullak/internal/module/connection/domain"
	"gullak/internal/module/connection/repository"
	"gullak/internal/module/connection/snapshot"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the connection sync engine's public contract.
type Service interface {
	// CreateConnection creates a new connection, or reuses a disconnected
	// row of the same display name. Reconnecting keeps the payload and the
	// allocated id set intact.
	CreateConnection(ctx context.Context, userID uuid.UUID, displayName string, connType domain.ConnectionType) (*domain.Connection, error)

	// Disconnect soft-disconnects a connection: status flips, row retained.
	Disconnect(ctx context.Context, userID, connectionID uuid.UUID) (*domain.Connection, error)

	// Sync reconciles the connection's payload with the source snapshot and
	// returns the connection plus the new-income and new-expense diff sets.
	Sync(ctx context.Context, userID, connectionID uuid.UUID) (*domain.Connection, []domain.Transaction, []domain.Transaction, error)

	GetByID(ctx context.Context, userID, connectionID uuid.UUID) (*domain.Connection, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Connection, error)
}

type syncService struct {
	repo   repository.Repository
	reader *snapshot.Reader
	logger *zap.Logger
}

func NewService(repo repository.Repository, reader *snapshot.Reader, logger *zap.Logger) Service {
	return &syncService{repo: repo, reader: reader, logger: logger.Named("connection.sync")}
}

func (s *syncService) CreateConnection(ctx context.Context, userID uuid.UUID, displayName string, connType domain.ConnectionType) (*domain.Connection, error) {
	existing, err := s.repo.GetByDisplayName(ctx, userID, displayName)
	if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}

	if existing != nil {
		if existing.Status == domain.ConnectionStatusConnected {
			return nil, apperr.Conflict("connection is already connected")
		}
		// Reconnect-reuse: status flips back to connected, the payload and
		// allocated_transaction_ids carry over untouched.
		existing.Status = domain.ConnectionStatusConnected
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		s.logger.Info("reused disconnected connection on reconnect",
			zap.String("connection_id", existing.ID.String()),
			zap.String("display_name", displayName),
		)
		return existing, nil
	}

	c := &domain.Connection{
		ID:          uuid.New(),
		UserID:      userID,
		DisplayName: displayName,
		Type:        connType,
		Status:      domain.ConnectionStatusConnected,
		Payload:     domain.EmptyPayload(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *syncService) Disconnect(ctx context.Context, userID, connectionID uuid.UUID) (*domain.Connection, error) {
	c, err := s.repo.GetByID(ctx, userID, connectionID)
	if err != nil {
		return nil, err
	}
	c.Status = domain.ConnectionStatusDisconnected
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *syncService) GetByID(ctx context.Context, userID, connectionID uuid.UUID) (*domain.Connection, error) {
	return s.repo.GetByID(ctx, userID, connectionID)
}

func (s *syncService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Connection, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Sync reads the source snapshot, merges it into the persisted payload and
// computes the eligibility diffs. A missing or unparsable snapshot is
// recovered locally: the existing payload is kept, last_sync still advances,
// and the failure is only logged.
func (s *syncService) Sync(ctx context.Context, userID, connectionID uuid.UUID) (*domain.Connection, []domain.Transaction, []domain.Transaction, error) {
	c, err := s.repo.GetByID(ctx, userID, connectionID)
	if err != nil {
		return nil, nil, nil, err
	}

	previousLastSync := c.LastSyncAt
	doc, err := s.reader.Read(c.DisplayName)
	now := istime.Now()

	if err != nil {
		if apperr.IsSnapshotMissing(err) || apperr.IsSnapshotInvalid(err) {
			s.logger.Warn("snapshot unavailable, keeping last-known payload",
				zap.String("connection_id", c.ID.String()),
				zap.Error(err),
			)
			c.LastSyncAt = &now
			if updErr := s.repo.Update(ctx, c); updErr != nil {
				return nil, nil, nil, updErr
			}
			return c, nil, nil, nil
		}
		return nil, nil, nil, err
	}

	fresh, present := snapshotToPayload(doc)
	c.Payload = mergePayload(c.Payload, fresh, present)
	c.LastSyncAt = &now

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, nil, nil, err
	}

	allCredits := c.Payload.AllCreditTransactions(istime.In)
	newIncome := eligibleIncome(allCredits, c.Payload.AllocatedTransactionIDs, c.CreatedAt, previousLastSync)
	newExpense := eligibleExpense(c.Payload.Transactions, previousLastSync)

	s.logger.Info("sync completed",
		zap.String("connection_id", c.ID.String()),
		zap.Int("new_income_count", len(newIncome)),
		zap.Int("new_expense_count", len(newExpense)),
	)

	return c, newIncome, newExpense, nil
}

// snapshotToPayload lifts a parsed snapshot document into a payload, and
// reports which sections the document actually carried so the merge knows
// what to replace and what to keep.
func snapshotToPayload(doc *snapshot.Document) (domain.Payload, sectionsPresent) {
	p := domain.EmptyPayload()
	p.AccountID = doc.AccountID
	p.Status = doc.Status
	p.Balance = doc.Balance

	for _, t := range doc.Transactions {
		if t.Timestamp.IsZero() {
			// Undated rows would be classified as "new" forever; they are
			// rejected at the parse boundary instead of defaulted to now.
			continue
		}
		p.Transactions = append(p.Transactions, domain.Transaction{
			ID:          t.ID,
			Type:        domain.TransactionType(t.Type),
			Amount:      t.Amount,
			Description: t.Description,
			Timestamp:   t.Timestamp,
			Status:      t.Status,
		})
	}
	for _, e := range doc.Entries {
		p.Entries = append(p.Entries, domain.Entry{
			ID:          e.ID,
			Amount:      e.Amount,
			Description: e.Description,
			Date:        e.Date,
			Category:    e.Category,
		})
	}
	if len(doc.Monthly) > 0 {
		var summary map[string]any
		if err := json.Unmarshal(doc.Monthly, &summary); err == nil {
			p.MonthlySummary = summary
		}
	}
	return p, sectionsPresent{
		Transactions: doc.Transactions != nil,
		Entries:      doc.Entries != nil,
		Summary:      len(doc.Monthly) > 0,
		AccountID:    doc.AccountID != "",
		Status:       doc.Status != "",
		Balance:      !doc.Balance.IsZero(),
	}
}
