package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mepworks/invoicing/internal/sequence/domain"
	"github.com/mepworks/invoicing/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxIssueAttempts = 5

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(p Params) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("sequence.service"),
	}
}

// NextInTx increments the series counter with a single conditional UPDATE so
// concurrent issuers serialize on the counter row. The row is created lazily,
// seeded from the most recently issued legacy document.
func (s *Service) NextInTx(ctx context.Context, tx *gorm.DB, series domain.Series) (string, error) {
	for attempt := 0; attempt < 2; attempt++ {
		res := tx.WithContext(ctx).
			Model(&domain.Counter{}).
			Where("series = ?", series.Name).
			Update("last_value", gorm.Expr("last_value + 1"))
		if res.Error != nil {
			return "", res.Error
		}

		if res.RowsAffected > 0 {
			var counter domain.Counter
			if err := tx.WithContext(ctx).First(&counter, "series = ?", series.Name).Error; err != nil {
				return "", err
			}
			return series.Format(counter.LastValue), nil
		}

		seed, err := s.seedValue(ctx, tx, series)
		if err != nil {
			return "", err
		}
		counter := domain.Counter{Series: series.Name, LastValue: seed + 1, UpdatedAt: time.Now().UTC()}
		if err := tx.WithContext(ctx).Create(&counter).Error; err != nil {
			if db.IsDuplicateKeyErr(err) {
				// Lost the first-use race; the row exists now.
				continue
			}
			return "", err
		}
		return series.Format(counter.LastValue), nil
	}
	return "", domain.ErrConflict
}

func (s *Service) Next(ctx context.Context, series domain.Series) (string, error) {
	var number string
	for attempt := 1; attempt <= maxIssueAttempts; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			issued, txErr := s.NextInTx(ctx, tx, series)
			if txErr != nil {
				return txErr
			}
			number = issued
			return nil
		})
		if err == nil {
			return number, nil
		}
		if !db.IsBusyErr(err) && !db.IsDuplicateKeyErr(err) {
			return "", err
		}
		s.log.Warn("sequence issuance retry",
			zap.String("series", series.Name),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		time.Sleep(time.Duration(attempt) * 5 * time.Millisecond)
	}
	return "", fmt.Errorf("%w: series %s", domain.ErrConflict, series.Name)
}

func (s *Service) Peek(ctx context.Context, series domain.Series) (string, error) {
	var counter domain.Counter
	err := s.db.WithContext(ctx).First(&counter, "series = ?", series.Name).Error
	if err == nil {
		return series.Format(counter.LastValue + 1), nil
	}
	if err != gorm.ErrRecordNotFound {
		return "", err
	}

	seed, err := s.seedValue(ctx, s.db, series)
	if err != nil {
		return "", err
	}
	return series.Format(seed + 1), nil
}

// seedValue reads the most recently issued document of the series. Returns 0
// for an empty series and ErrSeriesCorrupted for an unparseable number.
func (s *Service) seedValue(ctx context.Context, tx *gorm.DB, series domain.Series) (int64, error) {
	var last string
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at DESC LIMIT 1", series.LegacyColumn, series.LegacyTable)
	err := tx.WithContext(ctx).Raw(query).Scan(&last).Error
	if err != nil {
		return 0, err
	}
	if last == "" {
		return 0, nil
	}

	value, err := series.ParseSuffix(last)
	if err != nil {
		s.log.Error("refusing to issue from corrupted series",
			zap.String("series", series.Name),
			zap.String("last_number", last),
		)
		return 0, err
	}
	return value, nil
}
