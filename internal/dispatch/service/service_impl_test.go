package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/mepworks/invoicing/internal/config"
	"github.com/mepworks/invoicing/internal/dispatch/domain"
	dispatchrepo "github.com/mepworks/invoicing/internal/dispatch/repository"
	invoicedomain "github.com/mepworks/invoicing/internal/invoice/domain"
	invoicerepo "github.com/mepworks/invoicing/internal/invoice/repository"
	"github.com/mepworks/invoicing/internal/notification"
	paymentdomain "github.com/mepworks/invoicing/internal/payment/domain"
	sequencedomain "github.com/mepworks/invoicing/internal/sequence/domain"
	sequenceservice "github.com/mepworks/invoicing/internal/sequence/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type captureSender struct {
	mu       sync.Mutex
	messages []notification.Message
	err      error
	panics   bool
}

func (s *captureSender) Send(ctx context.Context, msg notification.Message) error {
	if s.panics {
		panic("sender exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return s.err
}

func (s *captureSender) sent() []notification.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notification.Message(nil), s.messages...)
}

func setupTestService(t *testing.T, sender notification.Sender) (*Service, *gorm.DB, invoicedomain.Repository) {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_disp_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
		&domain.DispatchNote{},
	))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	invoiceRepo := invoicerepo.Provide()
	svc := New(Params{
		Config:      config.Config{SMSCountryRegion: "LK", SMSSenderName: "MEP"},
		DB:          conn,
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        dispatchrepo.Provide(),
		InvoiceRepo: invoiceRepo,
		Sequences:   sequenceservice.New(sequenceservice.Params{DB: conn, Log: zap.NewNop()}),
		Sender:      sender,
	}).(*Service)

	return svc, conn, invoiceRepo
}

func insertInvoice(t *testing.T, conn *gorm.DB, repo invoicedomain.Repository, phone string) *invoicedomain.Invoice {
	t.Helper()

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)

	now := time.Now().UTC()
	invoice := &invoicedomain.Invoice{
		ID:           node.Generate(),
		InvoiceNo:    fmt.Sprintf("MEP-%06d", time.Now().UnixNano()%1000000),
		CustomerName: "Acme Engineering",
		Telephone:    phone,
		PaymentType:  invoicedomain.PaymentTypeCredit,
		Date:         now,
		Total:        decimal.NewFromInt(100),
		GrandTotal:   decimal.NewFromInt(100),
		Balance:      decimal.NewFromInt(100),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.Insert(context.Background(), conn, invoice))
	return invoice
}

func TestIssueCreatesNoteAndNotifies(t *testing.T) {
	sender := &captureSender{}
	svc, conn, invoiceRepo := setupTestService(t, sender)
	ctx := context.Background()
	invoice := insertInvoice(t, conn, invoiceRepo, "0771234567")

	note, err := svc.IssueOrUpdate(ctx, domain.IssueOrUpdateRequest{
		InvoiceID:   invoice.ID.String(),
		SpecialNote: "Deliver before noon",
	})
	require.NoError(t, err)
	assert.Equal(t, "DN-000001", note.DispatchNo)
	assert.Equal(t, "Deliver before noon", note.SpecialNote)

	svc.notifyWG.Wait()
	messages := sender.sent()
	require.Len(t, messages, 1)
	assert.Equal(t, "+94771234567", messages[0].To)
	assert.Contains(t, messages[0].Body, invoice.InvoiceNo)
	assert.Contains(t, messages[0].Body, "DN-000001")
}

func TestIssueUpdatesInPlaceKeepingNumber(t *testing.T) {
	sender := &captureSender{}
	svc, conn, invoiceRepo := setupTestService(t, sender)
	ctx := context.Background()
	invoice := insertInvoice(t, conn, invoiceRepo, "")

	first, err := svc.IssueOrUpdate(ctx, domain.IssueOrUpdateRequest{
		InvoiceID:   invoice.ID.String(),
		SpecialNote: "original",
	})
	require.NoError(t, err)

	second, err := svc.IssueOrUpdate(ctx, domain.IssueOrUpdateRequest{
		InvoiceID:   invoice.ID.String(),
		SpecialNote: "amended",
	})
	require.NoError(t, err)

	assert.Equal(t, first.DispatchNo, second.DispatchNo)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "amended", second.SpecialNote)

	var count int64
	require.NoError(t, conn.Model(&domain.DispatchNote{}).Where("invoice_id = ?", invoice.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIssueSkipsNotificationWithoutPhone(t *testing.T) {
	sender := &captureSender{}
	svc, conn, invoiceRepo := setupTestService(t, sender)
	ctx := context.Background()
	invoice := insertInvoice(t, conn, invoiceRepo, "")

	_, err := svc.IssueOrUpdate(ctx, domain.IssueOrUpdateRequest{InvoiceID: invoice.ID.String()})
	require.NoError(t, err)

	svc.notifyWG.Wait()
	assert.Empty(t, sender.sent())
}

func TestIssueContainsSenderPanic(t *testing.T) {
	sender := &captureSender{panics: true}
	svc, conn, invoiceRepo := setupTestService(t, sender)
	ctx := context.Background()
	invoice := insertInvoice(t, conn, invoiceRepo, "0771234567")

	note, err := svc.IssueOrUpdate(ctx, domain.IssueOrUpdateRequest{InvoiceID: invoice.ID.String()})
	require.NoError(t, err)
	require.NotNil(t, note)

	// The committed note survives the notification blowing up.
	svc.notifyWG.Wait()
	stored, err := svc.GetByInvoice(ctx, invoice.ID.String())
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestIssueFailedSendDoesNotPropagate(t *testing.T) {
	sender := &captureSender{err: errors.New("gateway down")}
	svc, conn, invoiceRepo := setupTestService(t, sender)
	ctx := context.Background()
	invoice := insertInvoice(t, conn, invoiceRepo, "0771234567")

	_, err := svc.IssueOrUpdate(ctx, domain.IssueOrUpdateRequest{InvoiceID: invoice.ID.String()})
	require.NoError(t, err)
	svc.notifyWG.Wait()
}

type gatedSender struct {
	release chan struct{}
}

func (s *gatedSender) Send(ctx context.Context, msg notification.Message) error {
	<-s.release
	return nil
}

func TestDrainWaitsForInFlightNotification(t *testing.T) {
	sender := &gatedSender{release: make(chan struct{})}
	svc, conn, invoiceRepo := setupTestService(t, sender)
	ctx := context.Background()
	invoice := insertInvoice(t, conn, invoiceRepo, "0771234567")

	_, err := svc.IssueOrUpdate(ctx, domain.IssueOrUpdateRequest{InvoiceID: invoice.ID.String()})
	require.NoError(t, err)

	shortCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.Drain(shortCtx), context.DeadlineExceeded)

	close(sender.release)
	require.NoError(t, svc.Drain(ctx))
}

func TestIssueUnknownInvoice(t *testing.T) {
	sender := &captureSender{}
	svc, _, _ := setupTestService(t, sender)

	_, err := svc.IssueOrUpdate(context.Background(), domain.IssueOrUpdateRequest{InvoiceID: "999999999999"})
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)

	_, err = svc.IssueOrUpdate(context.Background(), domain.IssueOrUpdateRequest{InvoiceID: "garbage"})
	assert.ErrorIs(t, err, domain.ErrInvalidInvoiceID)
}

func TestGetByInvoiceAbsentIsNil(t *testing.T) {
	sender := &captureSender{}
	svc, conn, invoiceRepo := setupTestService(t, sender)
	invoice := insertInvoice(t, conn, invoiceRepo, "")

	note, err := svc.GetByInvoice(context.Background(), invoice.ID.String())
	require.NoError(t, err)
	assert.Nil(t, note)
}
