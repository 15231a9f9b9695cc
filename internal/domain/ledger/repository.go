package ledger

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, r *Record) error
	// ListBetween returns records with from <= PaidAt < to, oldest first. A zero from is unbounded.
	ListBetween(ctx context.Context, from, to time.Time) ([]Record, error)
	ListByInstrument(ctx context.Context, instrumentID string) ([]Record, error)
}
