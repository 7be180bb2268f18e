package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, note *DispatchNote) error
	FindByInvoice(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (*DispatchNote, error)
	UpdateSpecialNote(ctx context.Context, db *gorm.DB, id snowflake.ID, specialNote string) error
}
