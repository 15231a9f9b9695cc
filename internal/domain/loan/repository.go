package loan

import (
	"context"

	"lendingops-backend/internal/domain/schedule"
)

type Repository interface {
	Create(ctx context.Context, l *BorrowerLoan) error
	GetByLoanID(ctx context.Context, loanID string) (*BorrowerLoan, error)
	// GetByLoanIDForUpdate row-locks the loan until the surrounding transaction ends.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*BorrowerLoan, error)
	// List returns loans in any status when statuses is empty.
	List(ctx context.Context, statuses ...Status) ([]BorrowerLoan, error)
	// SetEntryStatus is the only post-creation write to a schedule.
	SetEntryStatus(ctx context.Context, loanID string, seq int, st schedule.EntryStatus) error
}
