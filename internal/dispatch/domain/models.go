// Package domain contains persistence models for dispatch notes.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// DispatchNote is the goods-handover record for an invoice. At most one note
// exists per invoice; its number never changes once issued.
type DispatchNote struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	DispatchNo  string       `gorm:"type:text;not null;uniqueIndex" json:"dispatchNo"`
	InvoiceID   snowflake.ID `gorm:"not null;uniqueIndex" json:"invoiceId"`
	SpecialNote string       `gorm:"type:text;not null;default:''" json:"specialNote"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (DispatchNote) TableName() string { return "dispatch_notes" }
