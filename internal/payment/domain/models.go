// Package domain contains persistence models for payments.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Method is how a settlement was made. Unlike invoice payment types there is
// no Credit here: a payment always moves money.
type Method string

const (
	MethodCash   Method = "Cash"
	MethodCheck  Method = "Check"
	MethodOnline Method = "Online"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCheck, MethodOnline:
		return true
	default:
		return false
	}
}

// Payment is one settlement event against exactly one invoice. Immutable once
// written; the invoice's advance/balance pair is co-updated in the same
// transaction.
type Payment struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	ReceiptNo     string          `gorm:"type:text;not null;uniqueIndex" json:"receiptNo"`
	InvoiceID     snowflake.ID    `gorm:"not null;index" json:"invoiceId"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amountPaid"`
	PaymentMethod Method          `gorm:"type:text;not null" json:"paymentMethod"`
	PaymentDate   time.Time       `gorm:"not null;index" json:"paymentDate"`
	ChequeNo      string          `gorm:"type:text" json:"chequeNo,omitempty"`
	ChequeBank    string          `gorm:"type:text" json:"chequeBank,omitempty"`
	ChequeDate    *time.Time      `gorm:"" json:"chequeDate,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
