package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("invoice not found")
	ErrInvalidID = errors.New("invalid invoice id")
	ErrConflict  = errors.New("invoice write conflict")
)

// FieldError describes one offending request field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError carries every offending field of a rejected request.
type ValidationError struct {
	Fields []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

func (e *ValidationError) Add(field, code, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Code: code, Message: message})
}

func (e *ValidationError) HasErrors() bool { return len(e.Fields) > 0 }

// NewValidationError builds a single-field validation error.
func NewValidationError(field, code, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Code: code, Message: message}}}
}

type CreateInvoiceItem struct {
	Description  string          `json:"description"`
	QuantityType string          `json:"quantityType"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitRate     decimal.Decimal `json:"unitRate"`
	ItemDiscount decimal.Decimal `json:"itemDiscount"`
}

type CreateInvoiceRequest struct {
	CustomerName    string              `json:"customerName"`
	CustomerAddress string              `json:"customerAddress"`
	Telephone       string              `json:"telephone"`
	Email           string              `json:"email"`
	PaymentType     string              `json:"paymentType"`
	Date            time.Time           `json:"date"`
	QuotationNo     string              `json:"quotationNo"`
	PONo            string              `json:"poNo"`
	ChequeNo        string              `json:"chequeNo"`
	ChequeBank      string              `json:"chequeBank"`
	ChequeDate      *time.Time          `json:"chequeDate"`
	Items           []CreateInvoiceItem `json:"items"`
	DiscountPercent decimal.Decimal     `json:"discountPercent"`
	Advance         decimal.Decimal     `json:"advance"`
}

type ListInvoiceRequest struct {
	Search      string
	PaymentType string
	StartDate   *time.Time
	EndDate     *time.Time
	Sort        string
	Limit       int
}

// InvoiceSummary is a list row annotated with dispatch state and status.
type InvoiceSummary struct {
	Invoice
	HasDispatchNote bool   `json:"hasDispatchNote"`
	InvoiceStatus   Status `json:"status"`
}

// StatsBucket is one dashboard aggregate.
type StatsBucket struct {
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

type DashboardStats struct {
	DailySales             StatsBucket `json:"dailySales"`
	MonthlySales           StatsBucket `json:"monthlySales"`
	TotalOutstandingCredit StatsBucket `json:"totalOutstandingCredit"`
}

// SalesPoint is one day of the 30-day sales series.
type SalesPoint struct {
	Date       string          `json:"date"`
	TotalSales decimal.Decimal `json:"totalSales"`
}

type StatusCounts struct {
	Paid    int64 `json:"paid"`
	Partial int64 `json:"partial"`
	Unpaid  int64 `json:"unpaid"`
}

// CreditExposure is the derived read model over unsettled credit invoices.
type CreditExposure struct {
	Invoices         []Invoice       `json:"invoices"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	GetByID(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) ([]InvoiceSummary, error)
	ListByPhone(ctx context.Context, phone string) ([]Invoice, error)
	NextInvoiceNo(ctx context.Context) (string, error)
	Stats(ctx context.Context) (DashboardStats, error)
	SalesOverTime(ctx context.Context) ([]SalesPoint, error)
	StatusCounts(ctx context.Context) (StatusCounts, error)
	OutstandingCredit(ctx context.Context) (CreditExposure, error)
}
