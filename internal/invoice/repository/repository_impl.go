package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mepworks/invoicing/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).
		Preload("Items").
		First(&invoice, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := db.WithContext(ctx).Model(&domain.Invoice{}).Preload("Items")

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		stmt = stmt.Where("LOWER(invoice_no) LIKE ? OR LOWER(customer_name) LIKE ?", pattern, pattern)
	}
	if filter.PaymentType != "" {
		stmt = stmt.Where("payment_type = ?", filter.PaymentType)
	}
	if filter.StartDate != nil {
		stmt = stmt.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		stmt = stmt.Where("date <= ?", *filter.EndDate)
	}
	if filter.SortByDate {
		stmt = stmt.Order("date desc")
	} else {
		stmt = stmt.Order("created_at desc")
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	if err := stmt.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) ListByPhone(ctx context.Context, db *gorm.DB, phone string) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Preload("Items").
		Where("telephone = ?", phone).
		Order("created_at desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) ListOutstandingCredit(ctx context.Context, db *gorm.DB) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Preload("Items").
		Where("payment_type = ? AND balance > 0", domain.PaymentTypeCredit).
		Order("date asc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// DispatchedInvoiceIDs reports which of the given invoices already carry a
// dispatch note. Queried directly so the list annotation stays one query.
func (r *repo) DispatchedInvoiceIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) (map[snowflake.ID]bool, error) {
	dispatched := make(map[snowflake.ID]bool, len(ids))
	if len(ids) == 0 {
		return dispatched, nil
	}

	var rows []int64
	err := db.WithContext(ctx).
		Raw("SELECT invoice_id FROM dispatch_notes WHERE invoice_id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, id := range rows {
		dispatched[snowflake.ID(id)] = true
	}
	return dispatched, nil
}

func (r *repo) SalesBucket(ctx context.Context, db *gorm.DB, since time.Time) (domain.StatsBucket, error) {
	var bucket domain.StatsBucket
	err := db.WithContext(ctx).
		Raw("SELECT COALESCE(SUM(grand_total), 0) AS total, COUNT(*) AS count FROM invoices WHERE date >= ?", since).
		Scan(&bucket).Error
	return bucket, err
}

func (r *repo) OutstandingCreditBucket(ctx context.Context, db *gorm.DB) (domain.StatsBucket, error) {
	var bucket domain.StatsBucket
	err := db.WithContext(ctx).
		Raw("SELECT COALESCE(SUM(balance), 0) AS total, COUNT(*) AS count FROM invoices WHERE payment_type = ? AND balance > 0", domain.PaymentTypeCredit).
		Scan(&bucket).Error
	return bucket, err
}

func (r *repo) SalesSince(ctx context.Context, db *gorm.DB, since time.Time) ([]domain.SaleRow, error) {
	var rows []domain.SaleRow
	err := db.WithContext(ctx).
		Raw("SELECT date, grand_total FROM invoices WHERE date >= ? ORDER BY date ASC", since).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) StatusCounts(ctx context.Context, db *gorm.DB) (domain.StatusCounts, error) {
	var counts domain.StatusCounts
	err := db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(CASE WHEN balance <= 0 THEN 1 ELSE 0 END), 0) AS paid,
			COALESCE(SUM(CASE WHEN balance > 0 AND balance < grand_total THEN 1 ELSE 0 END), 0) AS partial,
			COALESCE(SUM(CASE WHEN balance > 0 AND balance >= grand_total THEN 1 ELSE 0 END), 0) AS unpaid
		FROM invoices`).
		Scan(&counts).Error
	return counts, err
}
