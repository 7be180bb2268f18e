// Package domain contains persistence models for the invoice ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PaymentType is how an invoice is settled at creation time.
type PaymentType string

const (
	PaymentTypeCash   PaymentType = "Cash"
	PaymentTypeCredit PaymentType = "Credit"
	PaymentTypeCheck  PaymentType = "Check"
	PaymentTypeOnline PaymentType = "Online"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentTypeCash, PaymentTypeCredit, PaymentTypeCheck, PaymentTypeOnline:
		return true
	default:
		return false
	}
}

// QuantityUnit is the unit a line item is measured in.
type QuantityUnit string

const (
	UnitNOS    QuantityUnit = "NOS"
	UnitMeters QuantityUnit = "meters"
	UnitFeet   QuantityUnit = "feet"
)

func (u QuantityUnit) Valid() bool {
	switch u {
	case UnitNOS, UnitMeters, UnitFeet:
		return true
	default:
		return false
	}
}

// Status is the settlement state derived from balance and grand total.
type Status string

const (
	StatusPaid    Status = "paid"
	StatusPartial Status = "partial"
	StatusUnpaid  Status = "unpaid"
)

// StatusOf is the canonical status derivation. Order matters: paid wins over
// partial, partial over unpaid.
func StatusOf(balance, grandTotal decimal.Decimal) Status {
	if balance.LessThanOrEqual(decimal.Zero) {
		return StatusPaid
	}
	if balance.LessThan(grandTotal) {
		return StatusPartial
	}
	return StatusUnpaid
}

// Invoice represents one sale. Monetary invariants:
//
//	total      = Σ item amounts
//	discount   = total × discountPercent / 100 (stored as a currency amount)
//	grandTotal = total − discount
//	balance    = grandTotal − advance, at all times
//
// Advance and balance are mutated only by payment application.
type Invoice struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	InvoiceNo       string            `gorm:"type:text;not null;uniqueIndex" json:"invoiceNo"`
	CustomerName    string            `gorm:"type:text;not null" json:"customerName"`
	CustomerAddress string            `gorm:"type:text" json:"customerAddress,omitempty"`
	Telephone       string            `gorm:"type:text;index" json:"telephone,omitempty"`
	Email           string            `gorm:"type:text" json:"email,omitempty"`
	PaymentType     PaymentType       `gorm:"type:text;not null;index" json:"paymentType"`
	Date            time.Time         `gorm:"not null;index" json:"date"`
	QuotationNo     string            `gorm:"type:text" json:"quotationNo,omitempty"`
	PONo            string            `gorm:"column:po_no;type:text" json:"poNo,omitempty"`
	ChequeNo        string            `gorm:"type:text" json:"chequeNo,omitempty"`
	ChequeBank      string            `gorm:"type:text" json:"chequeBank,omitempty"`
	ChequeDate      *time.Time        `gorm:"" json:"chequeDate,omitempty"`
	Items           []InvoiceItem     `gorm:"foreignKey:InvoiceID" json:"items"`
	Total           decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"total"`
	DiscountPercent decimal.Decimal   `gorm:"type:decimal(5,2);not null;default:0" json:"discountPercent"`
	Discount        decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0" json:"discount"`
	GrandTotal      decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"grandTotal"`
	Advance         decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0" json:"advance"`
	Balance         decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"createdAt"`
	UpdatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// Status derives the settlement state of the invoice.
func (i Invoice) Status() Status { return StatusOf(i.Balance, i.GrandTotal) }

// InvoiceItem represents a line on an invoice.
type InvoiceItem struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID    snowflake.ID    `gorm:"not null;index" json:"invoiceId"`
	Description  string          `gorm:"type:text;not null" json:"description"`
	QuantityType QuantityUnit    `gorm:"type:text;not null" json:"quantityType"`
	Quantity     decimal.Decimal `gorm:"type:decimal(15,3);not null" json:"quantity"`
	UnitRate     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"unitRate"`
	ItemDiscount decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"itemDiscount"`
	UnitAmount   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"unitAmount"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }
