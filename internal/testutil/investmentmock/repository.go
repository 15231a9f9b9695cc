package investmentmock

import (
	"context"

	domain "lendingops-backend/internal/domain/investment"
	"lendingops-backend/internal/domain/schedule"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn            func(ctx context.Context, v *domain.InvestorInvestment) error
	GetByInvestmentIDFn func(ctx context.Context, investmentID string) (*domain.InvestorInvestment, error)
	GetForUpdateFn      func(ctx context.Context, investmentID string) (*domain.InvestorInvestment, error)
	ListFn              func(ctx context.Context, statuses ...domain.Status) ([]domain.InvestorInvestment, error)
	SetEntryStatusFn    func(ctx context.Context, investmentID string, seq int, st schedule.EntryStatus) error
}

func (m *Repo) Create(ctx context.Context, v *domain.InvestorInvestment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, v)
	}
	return nil
}

func (m *Repo) GetByInvestmentID(ctx context.Context, investmentID string) (*domain.InvestorInvestment, error) {
	if m.GetByInvestmentIDFn != nil {
		return m.GetByInvestmentIDFn(ctx, investmentID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByInvestmentIDForUpdate(ctx context.Context, investmentID string) (*domain.InvestorInvestment, error) {
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, investmentID)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, statuses ...domain.Status) ([]domain.InvestorInvestment, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, statuses...)
	}
	return nil, nil
}

func (m *Repo) SetEntryStatus(ctx context.Context, investmentID string, seq int, st schedule.EntryStatus) error {
	if m.SetEntryStatusFn != nil {
		return m.SetEntryStatusFn(ctx, investmentID, seq, st)
	}
	return nil
}
