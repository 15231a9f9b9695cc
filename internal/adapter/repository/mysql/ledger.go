package mysql

import (
	"context"
	"time"

	ledgerDomain "lendingops-backend/internal/domain/ledger"

	"gorm.io/gorm"
)

type LedgerRepository struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) *LedgerRepository { return &LedgerRepository{db: db} }

func (r *LedgerRepository) Create(ctx context.Context, rec *ledgerDomain.Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *LedgerRepository) ListBetween(ctx context.Context, from, to time.Time) ([]ledgerDomain.Record, error) {
	var out []ledgerDomain.Record
	q := r.db.WithContext(ctx).Where("paid_at < ?", to)
	if !from.IsZero() {
		q = q.Where("paid_at >= ?", from)
	}
	return out, q.Order("paid_at ASC, id ASC").Find(&out).Error
}

func (r *LedgerRepository) ListByInstrument(ctx context.Context, instrumentID string) ([]ledgerDomain.Record, error) {
	var out []ledgerDomain.Record
	res := r.db.WithContext(ctx).
		Where("instrument_id = ?", instrumentID).
		Order("paid_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}
