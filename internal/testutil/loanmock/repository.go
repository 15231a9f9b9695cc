package loanmock

import (
	"context"

	domain "lendingops-backend/internal/domain/loan"
	"lendingops-backend/internal/domain/schedule"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only methods you need are included; add more as tests require.
type Repo struct {
	CreateFn         func(ctx context.Context, l *domain.BorrowerLoan) error
	GetByLoanIDFn    func(ctx context.Context, loanID string) (*domain.BorrowerLoan, error)
	GetForUpdateFn   func(ctx context.Context, loanID string) (*domain.BorrowerLoan, error)
	ListFn           func(ctx context.Context, statuses ...domain.Status) ([]domain.BorrowerLoan, error)
	SetEntryStatusFn func(ctx context.Context, loanID string, seq int, st schedule.EntryStatus) error
}

func (m *Repo) Create(ctx context.Context, l *domain.BorrowerLoan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.BorrowerLoan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled // or errors.New("not implemented")
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.BorrowerLoan, error) {
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, statuses ...domain.Status) ([]domain.BorrowerLoan, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, statuses...)
	}
	return nil, nil
}

func (m *Repo) SetEntryStatus(ctx context.Context, loanID string, seq int, st schedule.EntryStatus) error {
	if m.SetEntryStatusFn != nil {
		return m.SetEntryStatusFn(ctx, loanID, seq, st)
	}
	return nil
}
