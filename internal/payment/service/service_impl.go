package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/mepworks/invoicing/internal/invoice/domain"
	"github.com/mepworks/invoicing/internal/payment/domain"
	sequencedomain "github.com/mepworks/invoicing/internal/sequence/domain"
	"github.com/mepworks/invoicing/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxApplyAttempts = 3

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	InvoiceRepo invoicedomain.Repository
	Sequences   sequencedomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	invoiceRepo invoicedomain.Repository
	sequences   sequencedomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payment.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		invoiceRepo: p.InvoiceRepo,
		sequences:   p.Sequences,
	}
}

// Apply performs the check-and-decrement against the stored balance, not a
// client-supplied one. The guard lives inside the UPDATE itself: zero rows
// affected means the invoice is missing or the amount exceeds the current
// balance, and nothing was mutated either way.
func (s *Service) Apply(ctx context.Context, req domain.ApplyPaymentRequest) (*domain.ApplyPaymentResult, error) {
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(req.InvoiceID))
	if err != nil || invoiceID == 0 {
		return nil, invoicedomain.ErrInvalidID
	}
	if err := validateApply(req); err != nil {
		return nil, err
	}

	var result *domain.ApplyPaymentResult
	var lastErr error
	for attempt := 1; attempt <= maxApplyAttempts; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			now := time.Now().UTC()
			res := tx.WithContext(ctx).
				Model(&invoicedomain.Invoice{}).
				Where("id = ? AND balance >= ?", invoiceID, req.AmountPaid).
				Updates(map[string]interface{}{
					"advance":    gorm.Expr("advance + ?", req.AmountPaid),
					"balance":    gorm.Expr("balance - ?", req.AmountPaid),
					"updated_at": now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				invoice, findErr := s.invoiceRepo.FindByID(ctx, tx, invoiceID)
				if findErr != nil {
					return findErr
				}
				if invoice == nil {
					return invoicedomain.ErrNotFound
				}
				return invoicedomain.NewValidationError("amountPaid", "exceeds_balance", "amount paid exceeds the invoice balance")
			}

			receiptNo, txErr := s.sequences.NextInTx(ctx, tx, sequencedomain.Receipts)
			if txErr != nil {
				return txErr
			}

			payment := domain.Payment{
				ID:            s.genID.Generate(),
				ReceiptNo:     receiptNo,
				InvoiceID:     invoiceID,
				AmountPaid:    req.AmountPaid,
				PaymentMethod: domain.Method(req.PaymentMethod),
				PaymentDate:   now,
				ChequeNo:      strings.TrimSpace(req.ChequeNo),
				ChequeBank:    strings.TrimSpace(req.ChequeBank),
				ChequeDate:    req.ChequeDate,
				CreatedAt:     now,
			}
			if txErr := s.repo.Insert(ctx, tx, &payment); txErr != nil {
				return txErr
			}

			invoice, txErr := s.invoiceRepo.FindByID(ctx, tx, invoiceID)
			if txErr != nil {
				return txErr
			}
			if invoice == nil {
				return invoicedomain.ErrNotFound
			}

			result = &domain.ApplyPaymentResult{Payment: payment, UpdatedInvoice: *invoice}
			return nil
		})
		if err == nil {
			return result, nil
		}
		if !db.IsBusyErr(err) && !db.IsDuplicateKeyErr(err) {
			return nil, err
		}
		lastErr = err
		s.log.Warn("payment apply retry",
			zap.String("invoice_id", invoiceID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		time.Sleep(time.Duration(attempt) * 5 * time.Millisecond)
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrConflict, lastErr)
}

func (s *Service) History(ctx context.Context, invoiceID string) ([]domain.Payment, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(invoiceID))
	if err != nil || parsed == 0 {
		return nil, invoicedomain.ErrInvalidID
	}
	return s.repo.ListByInvoice(ctx, s.db, parsed)
}

func validateApply(req domain.ApplyPaymentRequest) error {
	vErr := &invoicedomain.ValidationError{}

	if !req.AmountPaid.IsPositive() {
		vErr.Add("amountPaid", "out_of_range", "amount paid must be greater than zero")
	}
	method := domain.Method(req.PaymentMethod)
	if !method.Valid() {
		vErr.Add("paymentMethod", "invalid_method", "payment method must be Cash, Check or Online")
	}
	if method == domain.MethodCheck {
		if strings.TrimSpace(req.ChequeNo) == "" {
			vErr.Add("chequeNo", "required", "cheque number is required for check payments")
		}
		if strings.TrimSpace(req.ChequeBank) == "" {
			vErr.Add("chequeBank", "required", "cheque bank is required for check payments")
		}
		if req.ChequeDate == nil {
			vErr.Add("chequeDate", "required", "cheque date is required for check payments")
		}
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
