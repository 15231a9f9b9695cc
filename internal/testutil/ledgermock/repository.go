package ledgermock

import (
	"context"
	"time"

	domain "lendingops-backend/internal/domain/ledger"
)

var _ domain.Repository = (*Repo)(nil)

type Repo struct {
	CreateFn           func(ctx context.Context, r *domain.Record) error
	ListBetweenFn      func(ctx context.Context, from, to time.Time) ([]domain.Record, error)
	ListByInstrumentFn func(ctx context.Context, instrumentID string) ([]domain.Record, error)
}

func (m *Repo) Create(ctx context.Context, r *domain.Record) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Record, error) {
	if m.ListBetweenFn != nil {
		return m.ListBetweenFn(ctx, from, to)
	}
	return nil, nil
}

func (m *Repo) ListByInstrument(ctx context.Context, instrumentID string) ([]domain.Record, error) {
	if m.ListByInstrumentFn != nil {
		return m.ListByInstrumentFn(ctx, instrumentID)
	}
	return nil, nil
}
