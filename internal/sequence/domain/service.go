package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrSeriesCorrupted means an already-issued document number has a
	// non-numeric suffix. Fatal for the series: no further numbers are issued.
	ErrSeriesCorrupted = errors.New("document series corrupted")

	// ErrConflict means issuance kept losing the counter race after retries.
	ErrConflict = errors.New("sequence conflict")
)

type Service interface {
	// NextInTx issues the next number of the series inside the caller's
	// transaction. The counter increment commits or rolls back with it.
	NextInTx(ctx context.Context, tx *gorm.DB, series Series) (string, error)

	// Next issues the next number in its own transaction.
	Next(ctx context.Context, series Series) (string, error)

	// Peek returns the number the next issuance would produce without
	// consuming it.
	Peek(ctx context.Context, series Series) (string, error)
}
