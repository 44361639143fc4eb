package domain

import (
	"encoding/json"
	"sort"
	"time"

	"gullak/internal/money"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConnectionType tags the kind of payment source behind a Connection.
type ConnectionType string

const (
	ConnectionTypeUPI    ConnectionType = "upi"
	ConnectionTypeBank   ConnectionType = "bank"
	ConnectionTypeManual ConnectionType = "manual"
	ConnectionTypeTest   ConnectionType = "test"
)

// ConnectionStatus is connected or disconnected; Disconnect is soft, the row
// is always retained so reconnecting reuses the row.
type ConnectionStatus string

const (
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
)

// Connection is a persisted relationship between a user and a (mocked)
// payment source, carrying a Payload of transactions plus allocation
// metadata. The payload is a typed record at the storage boundary:
// PayloadJSON is the column, Payload is the in-memory,
// unambiguous type hydrated by the repository.
type Connection struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID        `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	DisplayName string           `gorm:"type:varchar(255);not null;column:display_name" json:"display_name"`
	Type        ConnectionType   `gorm:"type:varchar(20);not null;column:type" json:"type"`
	Status      ConnectionStatus `gorm:"type:varchar(20);not null;default:'connected';column:status" json:"status"`

	PayloadJSON datatypes.JSON `gorm:"type:jsonb;column:payload" json:"-"`
	Payload     Payload        `gorm:"-" json:"payload"`

	LastSyncAt *time.Time `gorm:"column:last_sync_at" json:"last_sync_at,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index;column:deleted_at" json:"-"`
}

func (Connection) TableName() string { return "connections" }

// HydratePayload unmarshals PayloadJSON into Payload. Called by the
// repository immediately after a row is read.
func (c *Connection) HydratePayload() error {
	if len(c.PayloadJSON) == 0 {
		c.Payload = EmptyPayload()
		return nil
	}
	return json.Unmarshal(c.PayloadJSON, &c.Payload)
}

// SerializePayload marshals Payload into PayloadJSON. Called by the
// repository immediately before a row is written.
func (c *Connection) SerializePayload() error {
	b, err := json.Marshal(c.Payload)
	if err != nil {
		return err
	}
	c.PayloadJSON = datatypes.JSON(b)
	return nil
}

// TransactionType is credit (income candidate) or debit (expense).
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// Transaction is one entry in a Connection's transaction stream.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      money.Amount    `json:"amount"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"timestamp"`
	Status      string          `json:"status"`
}

// Entry is the cash-style presentation of the same logical stream used by
// sources like "Cash Income". Entries carry no explicit type — they are
// always lifted to credit transactions at ingestion time.
type Entry struct {
	ID          string       `json:"id"`
	Amount      money.Amount `json:"amount"`
	Description string       `json:"description"`
	Date        string       `json:"date"` // YYYY-MM-DD
	Category    string       `json:"category"`
}

// TransactionIDSet is the set of transaction ids already consumed by a
// successful Allocate call. It is the single source of truth for
// at-most-once allocation: a genuine set in memory, never a
// list with possible duplicates, serialized as a JSON array of strings.
type TransactionIDSet map[string]struct{}

func NewTransactionIDSet(ids ...string) TransactionIDSet {
	s := make(TransactionIDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s TransactionIDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s TransactionIDSet) Add(id string) {
	s[id] = struct{}{}
}

// Union returns a new set containing every id from s and other.
func (s TransactionIDSet) Union(other TransactionIDSet) TransactionIDSet {
	out := make(TransactionIDSet, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

func (s TransactionIDSet) MarshalJSON() ([]byte, error) {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return json.Marshal(ids)
}

func (s *TransactionIDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewTransactionIDSet(ids...)
	return nil
}

// Payload is the structured source document: the two
// presentations of the transaction stream, derived monthly aggregates,
// source-specific metadata, and the allocation id set.
type Payload struct {
	Transactions            []Transaction    `json:"transactions"`
	Entries                 []Entry          `json:"entries"`
	MonthlySummary          map[string]any   `json:"monthly_summary"`
	AccountID               string           `json:"account_id,omitempty"`
	Balance                 money.Amount     `json:"balance"`
	Status                  string           `json:"status,omitempty"`
	AllocatedTransactionIDs TransactionIDSet `json:"allocated_transaction_ids"`
	Metadata                map[string]any   `json:"metadata,omitempty"`
}

// EmptyPayload is the skeleton used when a Connection has no persisted
// payload yet.
func EmptyPayload() Payload {
	return Payload{
		Transactions:            []Transaction{},
		Entries:                 []Entry{},
		MonthlySummary:          map[string]any{},
		AllocatedTransactionIDs: NewTransactionIDSet(),
	}
}

// AllCreditTransactions returns Transactions plus Entries lifted to credit
// transactions with timestamp = start-of-day IST.
func (p Payload) AllCreditTransactions(istOf func(time.Time) time.Time) []Transaction {
	out := make([]Transaction, 0, len(p.Transactions)+len(p.Entries))
	for _, t := range p.Transactions {
		if t.Type != TransactionCredit {
			continue
		}
		out = append(out, t)
	}
	for _, e := range p.Entries {
		ts, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			continue
		}
		out = append(out, Transaction{
			ID:          e.ID,
			Type:        TransactionCredit,
			Amount:      e.Amount,
			Description: e.Description,
			Timestamp:   istOf(ts),
			Status:      "posted",
		})
	}
	return out
}
