// Package snapshot reads the mock payment-source documents: flat JSON
// files on disk, one per Connection display name, standing in for a real
// payment gateway.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gullak/internal/apperr"
	"gullak/internal/money"
)

// nameToFile maps well-known source display names to snapshot filenames.
var nameToFile = map[string]string{
	"PhonePe":     "phonepe.json",
	"Google Pay":  "gpay.json",
	"GPay":        "gpay.json",
	"Paytm":       "paytm.json",
	"HDFC Bank":   "hdfc.json",
	"ICICI Bank":  "icici.json",
	"SBI Bank":    "sbi.json",
	"Cash Income": "cash_income.json",
	"testincome":  "testincome.json",
	"testspend":   "testspend.json",
}

// FileNameFor resolves a Connection display name to its snapshot filename,
// falling back to lowercase-with-underscores + ".json".
func FileNameFor(displayName string) string {
	if f, ok := nameToFile[displayName]; ok {
		return f
	}
	fallback := strings.ToLower(strings.Join(strings.Fields(displayName), "_"))
	return fallback + ".json"
}

// Document is the on-disk shape of a source snapshot.
type Document struct {
	AccountID    string          `json:"account_id"`
	Status       string          `json:"status"`
	Balance      money.Amount    `json:"balance"`
	Transactions []RawTxn        `json:"transactions"`
	Entries      []RawEntry      `json:"entries"`
	Monthly      json.RawMessage `json:"monthly_summary"`
}

type RawTxn struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	Amount      money.Amount `json:"amount"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
	Status      string       `json:"status"`
}

type RawEntry struct {
	ID          string       `json:"id"`
	Amount      money.Amount `json:"amount"`
	Description string       `json:"description"`
	Date        string       `json:"date"`
	Category    string       `json:"category"`
}

// Reader loads source snapshots from a configured directory.
type Reader struct {
	Dir string
}

func NewReader(dir string) *Reader {
	return &Reader{Dir: dir}
}

// Read loads and parses the snapshot for the given Connection display name.
// It returns apperr.SnapshotMissing if the file does not exist, and
// apperr.SnapshotInvalid on a parse failure. Both are recoverable: the
// sync engine keeps the last-known payload and still advances last_sync.
func (r *Reader) Read(displayName string) (*Document, error) {
	path := filepath.Join(r.Dir, FileNameFor(displayName))
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.SnapshotMissing(fmt.Sprintf("snapshot file not found: %s", path)).WithErr(err)
		}
		return nil, apperr.SnapshotInvalid(fmt.Sprintf("snapshot file unreadable: %s", path)).WithErr(err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperr.SnapshotInvalid(fmt.Sprintf("snapshot file %s is not valid JSON", path)).WithErr(err)
	}
	return &doc, nil
}
