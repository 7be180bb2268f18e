package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/mepworks/invoicing/internal/config"
	"github.com/mepworks/invoicing/internal/dispatch/domain"
	invoicedomain "github.com/mepworks/invoicing/internal/invoice/domain"
	"github.com/mepworks/invoicing/internal/notification"
	sequencedomain "github.com/mepworks/invoicing/internal/sequence/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const notifyTimeout = 10 * time.Second

type Params struct {
	fx.In

	Lc          fx.Lifecycle `optional:"true"`
	Config      config.Config
	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	InvoiceRepo invoicedomain.Repository
	Sequences   sequencedomain.Service
	Sender      notification.Sender
}

type Service struct {
	cfg         config.Config
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	invoiceRepo invoicedomain.Repository
	sequences   sequencedomain.Service
	sender      notification.Sender

	notifyWG sync.WaitGroup
}

func New(p Params) domain.Service {
	s := &Service{
		cfg:         p.Config,
		db:          p.DB,
		log:         p.Log.Named("dispatch.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		invoiceRepo: p.InvoiceRepo,
		sequences:   p.Sequences,
		sender:      p.Sender,
	}
	if p.Lc != nil {
		p.Lc.Append(fx.Hook{OnStop: s.Drain})
	}
	return s
}

// Drain blocks until every in-flight dispatch notification has finished, or
// the context expires. Registered as the shutdown hook so committed notes do
// not lose their SMS when the server stops.
func (s *Service) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.notifyWG.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) IssueOrUpdate(ctx context.Context, req domain.IssueOrUpdateRequest) (*domain.DispatchNote, error) {
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(req.InvoiceID))
	if err != nil || invoiceID == 0 {
		return nil, domain.ErrInvalidInvoiceID
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrInvoiceNotFound
	}

	specialNote := strings.TrimSpace(req.SpecialNote)

	var note *domain.DispatchNote
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, txErr := s.repo.FindByInvoice(ctx, tx, invoiceID)
		if txErr != nil {
			return txErr
		}
		if existing != nil {
			if txErr := s.repo.UpdateSpecialNote(ctx, tx, existing.ID, specialNote); txErr != nil {
				return txErr
			}
			existing.SpecialNote = specialNote
			note = existing
			return nil
		}

		// Invoices predating the placeholder scheme have no note row yet.
		dispatchNo, txErr := s.sequences.NextInTx(ctx, tx, sequencedomain.DispatchNotes)
		if txErr != nil {
			return txErr
		}
		now := time.Now().UTC()
		created := domain.DispatchNote{
			ID:          s.genID.Generate(),
			DispatchNo:  dispatchNo,
			InvoiceID:   invoiceID,
			SpecialNote: specialNote,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if txErr := s.repo.Insert(ctx, tx, &created); txErr != nil {
			return txErr
		}
		note = &created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyWG.Add(1)
	go s.notify(*note, *invoice)

	return note, nil
}

func (s *Service) GetByInvoice(ctx context.Context, invoiceID string) (*domain.DispatchNote, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(invoiceID))
	if err != nil || parsed == 0 {
		return nil, domain.ErrInvalidInvoiceID
	}
	return s.repo.FindByInvoice(ctx, s.db, parsed)
}

// notify sends the dispatch SMS off the request path. A missing or invalid
// customer phone skips the send; a sender failure or panic is logged and
// never affects the committed note.
func (s *Service) notify(note domain.DispatchNote, invoice invoicedomain.Invoice) {
	defer s.notifyWG.Done()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("dispatch notification panic",
				zap.String("dispatch_no", note.DispatchNo),
				zap.Any("panic", r),
			)
		}
	}()

	phone := strings.TrimSpace(invoice.Telephone)
	if phone == "" {
		s.log.Info("dispatch notification skipped, no customer phone",
			zap.String("dispatch_no", note.DispatchNo),
			zap.String("invoice_no", invoice.InvoiceNo),
		)
		return
	}

	to, err := notification.Normalize(phone, s.cfg.SMSCountryRegion)
	if err != nil {
		s.log.Warn("dispatch notification skipped, unusable phone",
			zap.String("dispatch_no", note.DispatchNo),
			zap.String("invoice_no", invoice.InvoiceNo),
			zap.Error(err),
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	msg := notification.Message{
		Ref:  uuid.New(),
		To:   to,
		Body: fmt.Sprintf("Your order %s has been dispatched. Dispatch note %s.", invoice.InvoiceNo, note.DispatchNo),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.log.Error("dispatch notification failed",
			zap.String("ref", msg.Ref.String()),
			zap.String("dispatch_no", note.DispatchNo),
			zap.Error(err),
		)
	}
}
