package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ListFilter is the repository-level shape of a list query.
type ListFilter struct {
	Search      string
	PaymentType PaymentType
	StartDate   *time.Time
	EndDate     *time.Time
	SortByDate  bool
	Limit       int
}

// SaleRow is the minimal projection used by the sales-over-time series.
type SaleRow struct {
	Date       time.Time
	GrandTotal decimal.Decimal
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Invoice, error)
	ListByPhone(ctx context.Context, db *gorm.DB, phone string) ([]*Invoice, error)
	ListOutstandingCredit(ctx context.Context, db *gorm.DB) ([]*Invoice, error)
	DispatchedInvoiceIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) (map[snowflake.ID]bool, error)
	SalesBucket(ctx context.Context, db *gorm.DB, since time.Time) (StatsBucket, error)
	OutstandingCreditBucket(ctx context.Context, db *gorm.DB) (StatsBucket, error)
	SalesSince(ctx context.Context, db *gorm.DB, since time.Time) ([]SaleRow, error)
	StatusCounts(ctx context.Context, db *gorm.DB) (StatusCounts, error)
}
