// Package domain contains the document number series model.
package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Counter is the per-series issuance state. One row per document series,
// incremented atomically inside the issuing transaction.
type Counter struct {
	Series    string    `gorm:"primaryKey;type:text"`
	LastValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Counter) TableName() string { return "document_counters" }

// Series describes one document number series. LegacyTable/LegacyColumn point
// at the documents already issued before the counter row existed; the first
// issuance seeds the counter from the most recent of them.
type Series struct {
	Name         string
	Prefix       string
	Width        int
	LegacyTable  string
	LegacyColumn string
}

var (
	Invoices      = Series{Name: "invoices", Prefix: "MEP", Width: 6, LegacyTable: "invoices", LegacyColumn: "invoice_no"}
	Receipts      = Series{Name: "receipts", Prefix: "RCPT", Width: 6, LegacyTable: "payments", LegacyColumn: "receipt_no"}
	DispatchNotes = Series{Name: "dispatch_notes", Prefix: "DN", Width: 6, LegacyTable: "dispatch_notes", LegacyColumn: "dispatch_no"}
)

// Format renders a counter value as a document number, e.g. MEP-000042.
func (s Series) Format(value int64) string {
	return fmt.Sprintf("%s-%0*d", s.Prefix, s.Width, value)
}

// ParseSuffix extracts the numeric counter value from an issued document
// number. A malformed suffix means the series data is corrupt; issuance must
// halt rather than guess.
func (s Series) ParseSuffix(number string) (int64, error) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, fmt.Errorf("%w: series %s has document number %q", ErrSeriesCorrupted, s.Name, number)
	}
	value, err := strconv.ParseInt(number[idx+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: series %s has document number %q", ErrSeriesCorrupted, s.Name, number)
	}
	return value, nil
}
