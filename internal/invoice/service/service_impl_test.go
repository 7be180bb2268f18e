package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	dispatchdomain "github.com/mepworks/invoicing/internal/dispatch/domain"
	dispatchrepo "github.com/mepworks/invoicing/internal/dispatch/repository"
	invoicedomain "github.com/mepworks/invoicing/internal/invoice/domain"
	invoicerepo "github.com/mepworks/invoicing/internal/invoice/repository"
	"github.com/mepworks/invoicing/internal/invoice/service"
	paymentdomain "github.com/mepworks/invoicing/internal/payment/domain"
	sequencedomain "github.com/mepworks/invoicing/internal/sequence/domain"
	sequenceservice "github.com/mepworks/invoicing/internal/sequence/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db           *gorm.DB
	svc          invoicedomain.Service
	dispatchRepo dispatchdomain.Repository
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_inv_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.AutoMigrate(
		&sequencedomain.Counter{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&paymentdomain.Payment{},
		&dispatchdomain.DispatchNote{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	dispatchRepo := dispatchrepo.Provide()
	svc := service.New(service.Params{
		DB:           conn,
		Log:          zap.NewNop(),
		GenID:        node,
		Repo:         invoicerepo.Provide(),
		DispatchRepo: dispatchRepo,
		Sequences:    sequenceservice.New(sequenceservice.Params{DB: conn, Log: zap.NewNop()}),
		Location:     time.UTC,
	})

	return testEnv{db: conn, svc: svc, dispatchRepo: dispatchRepo}
}

func creditInvoiceRequest() invoicedomain.CreateInvoiceRequest {
	return invoicedomain.CreateInvoiceRequest{
		CustomerName: "Acme Engineering",
		Telephone:    "0771234567",
		PaymentType:  "Credit",
		Items: []invoicedomain.CreateInvoiceItem{
			{
				Description:  "Cable tray",
				QuantityType: "meters",
				Quantity:     decimal.NewFromInt(2),
				UnitRate:     decimal.NewFromInt(100),
			},
		},
		DiscountPercent: decimal.NewFromInt(10),
		Advance:         decimal.NewFromInt(50),
	}
}

func TestCreateComputesDerivedFields(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	invoice, err := env.svc.Create(ctx, creditInvoiceRequest())
	require.NoError(t, err)

	assert.Equal(t, "MEP-000001", invoice.InvoiceNo)
	assert.True(t, invoice.Total.Equal(decimal.NewFromInt(200)), "total = %s", invoice.Total)
	assert.True(t, invoice.Discount.Equal(decimal.NewFromInt(20)), "discount = %s", invoice.Discount)
	assert.True(t, invoice.GrandTotal.Equal(decimal.NewFromInt(180)), "grandTotal = %s", invoice.GrandTotal)
	assert.True(t, invoice.Advance.Equal(decimal.NewFromInt(50)), "advance = %s", invoice.Advance)
	assert.True(t, invoice.Balance.Equal(decimal.NewFromInt(130)), "balance = %s", invoice.Balance)
	assert.Equal(t, invoicedomain.StatusPartial, invoice.Status())
	require.Len(t, invoice.Items, 1)
	assert.True(t, invoice.Items[0].UnitAmount.Equal(decimal.NewFromInt(200)))
}

func TestCreateReservesDispatchNumber(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	invoice, err := env.svc.Create(ctx, creditInvoiceRequest())
	require.NoError(t, err)

	note, err := env.dispatchRepo.FindByInvoice(ctx, env.db, invoice.ID)
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, "DN-000001", note.DispatchNo)
	assert.Empty(t, note.SpecialNote)
}

func TestCreateCashSettlesInFull(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	req := creditInvoiceRequest()
	req.PaymentType = "Cash"
	req.Advance = decimal.Zero

	invoice, err := env.svc.Create(ctx, req)
	require.NoError(t, err)

	assert.True(t, invoice.Advance.Equal(invoice.GrandTotal))
	assert.True(t, invoice.Balance.IsZero())
	assert.Equal(t, invoicedomain.StatusPaid, invoice.Status())
}

func TestCreateCollectsAllValidationErrors(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		PaymentType:     "Barter",
		DiscountPercent: decimal.NewFromInt(150),
	})
	require.Error(t, err)

	vErr, ok := err.(*invoicedomain.ValidationError)
	require.True(t, ok, "expected validation error, got %T", err)

	fields := make(map[string]bool)
	for _, f := range vErr.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["customerName"])
	assert.True(t, fields["paymentType"])
	assert.True(t, fields["discountPercent"])
	assert.True(t, fields["items"])
}

func TestCreateRejectsAdvanceExceedingGrandTotal(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	req := creditInvoiceRequest()
	req.Advance = decimal.NewFromInt(500)

	_, err := env.svc.Create(ctx, req)
	require.Error(t, err)
	vErr, ok := err.(*invoicedomain.ValidationError)
	require.True(t, ok)
	require.Len(t, vErr.Fields, 1)
	assert.Equal(t, "advance", vErr.Fields[0].Field)
}

func TestListAnnotatesAndFilters(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, creditInvoiceRequest())
	require.NoError(t, err)

	cash := creditInvoiceRequest()
	cash.CustomerName = "Lanka Hardware"
	cash.PaymentType = "Cash"
	cash.Advance = decimal.Zero
	_, err = env.svc.Create(ctx, cash)
	require.NoError(t, err)

	all, err := env.svc.List(ctx, invoicedomain.ListInvoiceRequest{PaymentType: "All"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, summary := range all {
		assert.True(t, summary.HasDispatchNote)
	}

	cashOnly, err := env.svc.List(ctx, invoicedomain.ListInvoiceRequest{PaymentType: "Cash"})
	require.NoError(t, err)
	require.Len(t, cashOnly, 1)
	assert.Equal(t, "Lanka Hardware", cashOnly[0].CustomerName)
	assert.Equal(t, invoicedomain.StatusPaid, cashOnly[0].InvoiceStatus)

	searched, err := env.svc.List(ctx, invoicedomain.ListInvoiceRequest{Search: "acme"})
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, "Acme Engineering", searched[0].CustomerName)

	_, err = env.svc.List(ctx, invoicedomain.ListInvoiceRequest{PaymentType: "Barter"})
	require.Error(t, err)
}

func TestNextInvoiceNoPeeks(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	next, err := env.svc.NextInvoiceNo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "MEP-000001", next)

	invoice, err := env.svc.Create(ctx, creditInvoiceRequest())
	require.NoError(t, err)
	assert.Equal(t, "MEP-000001", invoice.InvoiceNo)

	next, err = env.svc.NextInvoiceNo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "MEP-000002", next)
}

func TestGetByIDUnknown(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.GetByID(ctx, "999999999999")
	assert.ErrorIs(t, err, invoicedomain.ErrNotFound)

	_, err = env.svc.GetByID(ctx, "not-a-number")
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidID)
}

func TestListByPhone(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, creditInvoiceRequest())
	require.NoError(t, err)

	mine, err := env.svc.ListByPhone(ctx, "0771234567")
	require.NoError(t, err)
	require.Len(t, mine, 1)

	none, err := env.svc.ListByPhone(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOutstandingCredit(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, creditInvoiceRequest())
	require.NoError(t, err)

	cash := creditInvoiceRequest()
	cash.PaymentType = "Cash"
	cash.Advance = decimal.Zero
	_, err = env.svc.Create(ctx, cash)
	require.NoError(t, err)

	exposure, err := env.svc.OutstandingCredit(ctx)
	require.NoError(t, err)
	require.Len(t, exposure.Invoices, 1)
	assert.True(t, exposure.TotalOutstanding.Equal(decimal.NewFromInt(130)), "outstanding = %s", exposure.TotalOutstanding)
}

func TestStatusCounts(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, creditInvoiceRequest())
	require.NoError(t, err)

	cash := creditInvoiceRequest()
	cash.PaymentType = "Cash"
	cash.Advance = decimal.Zero
	_, err = env.svc.Create(ctx, cash)
	require.NoError(t, err)

	unpaid := creditInvoiceRequest()
	unpaid.Advance = decimal.Zero
	_, err = env.svc.Create(ctx, unpaid)
	require.NoError(t, err)

	counts, err := env.svc.StatusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Paid)
	assert.Equal(t, int64(1), counts.Partial)
	assert.Equal(t, int64(1), counts.Unpaid)
}

func TestSalesOverTimeBucketsByDay(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, creditInvoiceRequest())
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, creditInvoiceRequest())
	require.NoError(t, err)

	points, err := env.svc.SalesOverTime(ctx)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.True(t, points[0].TotalSales.Equal(decimal.NewFromInt(360)), "totalSales = %s", points[0].TotalSales)
}

func TestStats(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, creditInvoiceRequest())
	require.NoError(t, err)

	stats, err := env.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.DailySales.Count)
	assert.True(t, stats.DailySales.Total.Equal(decimal.NewFromInt(180)))
	assert.Equal(t, int64(1), stats.MonthlySales.Count)
	assert.Equal(t, int64(1), stats.TotalOutstandingCredit.Count)
	assert.True(t, stats.TotalOutstandingCredit.Total.Equal(decimal.NewFromInt(130)))
}
