package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidInvoiceID = errors.New("invalid invoice id")
	ErrInvoiceNotFound  = errors.New("invoice not found")
)

type IssueOrUpdateRequest struct {
	InvoiceID   string `json:"invoiceId"`
	SpecialNote string `json:"specialNote"`
}

type Service interface {
	// IssueOrUpdate creates the note for an invoice, or updates the special
	// note in place when one exists. The dispatch number is assigned once.
	IssueOrUpdate(ctx context.Context, req IssueOrUpdateRequest) (*DispatchNote, error)

	// GetByInvoice returns the note, or nil when the invoice has not been
	// dispatched yet. Absence is a normal state, not an error.
	GetByInvoice(ctx context.Context, invoiceID string) (*DispatchNote, error)
}
