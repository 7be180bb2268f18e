package domain

import (
	"context"
	"errors"
	"time"

	invoicedomain "github.com/mepworks/invoicing/internal/invoice/domain"
	"github.com/shopspring/decimal"
)

var ErrConflict = errors.New("payment write conflict")

type ApplyPaymentRequest struct {
	InvoiceID     string
	AmountPaid    decimal.Decimal
	PaymentMethod string
	ChequeNo      string
	ChequeBank    string
	ChequeDate    *time.Time
}

// ApplyPaymentResult mirrors the create-payment response shape: the receipt
// and the invoice as it stands after the decrement.
type ApplyPaymentResult struct {
	Payment        Payment               `json:"payment"`
	UpdatedInvoice invoicedomain.Invoice `json:"updatedInvoice"`
}

type Service interface {
	// Apply records a payment and atomically moves the invoice's balance to
	// advance. The balance check and the decrement are one operation; two
	// concurrent payments can never overdraw the invoice.
	Apply(ctx context.Context, req ApplyPaymentRequest) (*ApplyPaymentResult, error)

	// History returns all payments for an invoice, oldest first.
	History(ctx context.Context, invoiceID string) ([]Payment, error)
}
