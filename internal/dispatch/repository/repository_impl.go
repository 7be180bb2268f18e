package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mepworks/invoicing/internal/dispatch/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, note *domain.DispatchNote) error {
	return db.WithContext(ctx).Create(note).Error
}

func (r *repo) FindByInvoice(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (*domain.DispatchNote, error) {
	var note domain.DispatchNote
	err := db.WithContext(ctx).Where("invoice_id = ?", invoiceID).First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *repo) UpdateSpecialNote(ctx context.Context, db *gorm.DB, id snowflake.ID, specialNote string) error {
	return db.WithContext(ctx).
		Model(&domain.DispatchNote{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"special_note": specialNote,
			"updated_at":   time.Now().UTC(),
		}).Error
}
