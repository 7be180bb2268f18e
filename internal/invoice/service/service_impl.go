package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	dispatchdomain "github.com/mepworks/invoicing/internal/dispatch/domain"
	"github.com/mepworks/invoicing/internal/invoice/domain"
	sequencedomain "github.com/mepworks/invoicing/internal/sequence/domain"
	"github.com/mepworks/invoicing/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxCreateAttempts = 3

var oneHundred = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	DispatchRepo dispatchdomain.Repository
	Sequences    sequencedomain.Service
	Location     *time.Location
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	dispatchRepo dispatchdomain.Repository
	sequences    sequencedomain.Service
	loc          *time.Location
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("invoice.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		dispatchRepo: p.DispatchRepo,
		sequences:    p.Sequences,
		loc:          p.Location,
	}
}

// Create validates the submission, computes the derived monetary fields and
// persists the invoice together with its dispatch-number placeholder in one
// transaction. Two sequence numbers are consumed: invoice and dispatch.
func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (*domain.Invoice, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	items := make([]domain.InvoiceItem, 0, len(req.Items))
	total := decimal.Zero
	for _, item := range req.Items {
		amount := lineAmount(item.Quantity, item.UnitRate, item.ItemDiscount)
		total = total.Add(amount)
		items = append(items, domain.InvoiceItem{
			ID:           s.genID.Generate(),
			Description:  strings.TrimSpace(item.Description),
			QuantityType: domain.QuantityUnit(item.QuantityType),
			Quantity:     item.Quantity,
			UnitRate:     item.UnitRate,
			ItemDiscount: item.ItemDiscount,
			UnitAmount:   amount,
		})
	}

	discount := total.Mul(req.DiscountPercent).Div(oneHundred).Round(2)
	grandTotal := total.Sub(discount)

	advance := req.Advance
	if domain.PaymentType(req.PaymentType) == domain.PaymentTypeCash {
		// Cash sales settle in full at creation; no balance may be created.
		advance = grandTotal
	} else {
		if advance.IsNegative() {
			return nil, domain.NewValidationError("advance", "invalid_advance", "advance must not be negative")
		}
		if advance.GreaterThan(grandTotal) {
			return nil, domain.NewValidationError("advance", "advance_exceeds_grand_total", "advance must not exceed grand total")
		}
	}
	balance := grandTotal.Sub(advance)

	date := req.Date
	if date.IsZero() {
		date = time.Now().In(s.loc)
	}

	now := time.Now().UTC()
	invoice := &domain.Invoice{
		ID:              s.genID.Generate(),
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerAddress: strings.TrimSpace(req.CustomerAddress),
		Telephone:       strings.TrimSpace(req.Telephone),
		Email:           strings.TrimSpace(req.Email),
		PaymentType:     domain.PaymentType(req.PaymentType),
		Date:            date,
		QuotationNo:     strings.TrimSpace(req.QuotationNo),
		PONo:            strings.TrimSpace(req.PONo),
		ChequeNo:        strings.TrimSpace(req.ChequeNo),
		ChequeBank:      strings.TrimSpace(req.ChequeBank),
		ChequeDate:      req.ChequeDate,
		Items:           items,
		Total:           total,
		DiscountPercent: req.DiscountPercent,
		Discount:        discount,
		GrandTotal:      grandTotal,
		Advance:         advance,
		Balance:         balance,
		Metadata:        datatypes.JSONMap{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var lastErr error
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			invoiceNo, txErr := s.sequences.NextInTx(ctx, tx, sequencedomain.Invoices)
			if txErr != nil {
				return txErr
			}
			invoice.InvoiceNo = invoiceNo

			if txErr := s.repo.Insert(ctx, tx, invoice); txErr != nil {
				return txErr
			}

			// Invoice creation also reserves the dispatch number so the
			// dispatch note only ever updates in place afterwards.
			dispatchNo, txErr := s.sequences.NextInTx(ctx, tx, sequencedomain.DispatchNotes)
			if txErr != nil {
				return txErr
			}
			return s.dispatchRepo.Insert(ctx, tx, &dispatchdomain.DispatchNote{
				ID:          s.genID.Generate(),
				DispatchNo:  dispatchNo,
				InvoiceID:   invoice.ID,
				SpecialNote: "",
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		})
		if err == nil {
			return invoice, nil
		}
		if !db.IsBusyErr(err) && !db.IsDuplicateKeyErr(err) {
			return nil, err
		}
		lastErr = err
		s.log.Warn("invoice create retry", zap.Int("attempt", attempt), zap.Error(err))
		time.Sleep(time.Duration(attempt) * 5 * time.Millisecond)
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrConflict, lastErr)
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}

	invoice, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) ([]domain.InvoiceSummary, error) {
	filter := domain.ListFilter{
		Search:     strings.TrimSpace(req.Search),
		StartDate:  req.StartDate,
		SortByDate: req.Sort == "date",
		Limit:      req.Limit,
	}
	if t := strings.TrimSpace(req.PaymentType); t != "" && !strings.EqualFold(t, "All") {
		paymentType := domain.PaymentType(t)
		if !paymentType.Valid() {
			return nil, domain.NewValidationError("paymentType", "invalid_payment_type", "invalid payment type")
		}
		filter.PaymentType = paymentType
	}
	if req.EndDate != nil {
		// End date is inclusive for the whole day in the dashboard timezone.
		// The range edges are deliberately asymmetric: startDate filters from
		// UTC midnight, endDate from local end-of-day, matching the filter
		// behavior existing clients depend on.
		endOfDay := req.EndDate.In(s.loc)
		endOfDay = time.Date(endOfDay.Year(), endOfDay.Month(), endOfDay.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), s.loc)
		filter.EndDate = &endOfDay
	}

	invoices, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]snowflake.ID, 0, len(invoices))
	for _, invoice := range invoices {
		ids = append(ids, invoice.ID)
	}
	dispatched, err := s.repo.DispatchedInvoiceIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.InvoiceSummary, 0, len(invoices))
	for _, invoice := range invoices {
		summaries = append(summaries, domain.InvoiceSummary{
			Invoice:         *invoice,
			HasDispatchNote: dispatched[invoice.ID],
			InvoiceStatus:   invoice.Status(),
		})
	}
	return summaries, nil
}

func (s *Service) ListByPhone(ctx context.Context, phone string) ([]domain.Invoice, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return []domain.Invoice{}, nil
	}

	items, err := s.repo.ListByPhone(ctx, s.db, phone)
	if err != nil {
		return nil, err
	}
	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		invoices = append(invoices, *item)
	}
	return invoices, nil
}

func (s *Service) NextInvoiceNo(ctx context.Context) (string, error) {
	return s.sequences.Peek(ctx, sequencedomain.Invoices)
}

func (s *Service) Stats(ctx context.Context) (domain.DashboardStats, error) {
	now := time.Now().In(s.loc)
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)

	daily, err := s.repo.SalesBucket(ctx, s.db, startOfToday)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	monthly, err := s.repo.SalesBucket(ctx, s.db, startOfMonth)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	credit, err := s.repo.OutstandingCreditBucket(ctx, s.db)
	if err != nil {
		return domain.DashboardStats{}, err
	}

	return domain.DashboardStats{
		DailySales:             daily,
		MonthlySales:           monthly,
		TotalOutstandingCredit: credit,
	}, nil
}

// SalesOverTime buckets the last 30 days of sales by local calendar day.
// Grouping happens in Go so the query stays portable across dialects.
func (s *Service) SalesOverTime(ctx context.Context) ([]domain.SalesPoint, error) {
	since := time.Now().In(s.loc).AddDate(0, 0, -30)
	rows, err := s.repo.SalesSince(ctx, s.db, since)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	days := make([]string, 0)
	for _, row := range rows {
		day := row.Date.In(s.loc).Format("2006-01-02")
		if _, seen := totals[day]; !seen {
			days = append(days, day)
		}
		totals[day] = totals[day].Add(row.GrandTotal)
	}

	points := make([]domain.SalesPoint, 0, len(days))
	for _, day := range days {
		points = append(points, domain.SalesPoint{Date: day, TotalSales: totals[day]})
	}
	return points, nil
}

func (s *Service) StatusCounts(ctx context.Context) (domain.StatusCounts, error) {
	return s.repo.StatusCounts(ctx, s.db)
}

func (s *Service) OutstandingCredit(ctx context.Context) (domain.CreditExposure, error) {
	items, err := s.repo.ListOutstandingCredit(ctx, s.db)
	if err != nil {
		return domain.CreditExposure{}, err
	}

	invoices := make([]domain.Invoice, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		invoices = append(invoices, *item)
		total = total.Add(item.Balance)
	}
	return domain.CreditExposure{Invoices: invoices, TotalOutstanding: total}, nil
}

// lineAmount computes quantity × unitRate × (1 − discount/100), rounded to
// cents.
func lineAmount(quantity, unitRate, itemDiscount decimal.Decimal) decimal.Decimal {
	gross := quantity.Mul(unitRate)
	discount := gross.Mul(itemDiscount).Div(oneHundred)
	return gross.Sub(discount).Round(2)
}

func validateCreate(req domain.CreateInvoiceRequest) error {
	vErr := &domain.ValidationError{}

	if strings.TrimSpace(req.CustomerName) == "" {
		vErr.Add("customerName", "required", "customer name is required")
	}
	if !domain.PaymentType(req.PaymentType).Valid() {
		vErr.Add("paymentType", "invalid_payment_type", "payment type must be Cash, Credit, Check or Online")
	}
	if req.DiscountPercent.IsNegative() || req.DiscountPercent.GreaterThan(oneHundred) {
		vErr.Add("discountPercent", "out_of_range", "discount percent must be between 0 and 100")
	}
	if len(req.Items) == 0 {
		vErr.Add("items", "required", "at least one line item is required")
	}
	for i, item := range req.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		if strings.TrimSpace(item.Description) == "" {
			vErr.Add(prefix+"description", "required", "description is required")
		}
		if !domain.QuantityUnit(item.QuantityType).Valid() {
			vErr.Add(prefix+"quantityType", "invalid_unit", "quantity type must be NOS, meters or feet")
		}
		if item.Quantity.IsNegative() {
			vErr.Add(prefix+"quantity", "out_of_range", "quantity must not be negative")
		}
		if item.UnitRate.IsNegative() {
			vErr.Add(prefix+"unitRate", "out_of_range", "unit rate must not be negative")
		}
		if item.ItemDiscount.IsNegative() || item.ItemDiscount.GreaterThan(oneHundred) {
			vErr.Add(prefix+"itemDiscount", "out_of_range", "item discount must be between 0 and 100")
		}
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
