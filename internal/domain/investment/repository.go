package investment

import (
	"context"

	"lendingops-backend/internal/domain/schedule"
)

type Repository interface {
	Create(ctx context.Context, v *InvestorInvestment) error
	GetByInvestmentID(ctx context.Context, investmentID string) (*InvestorInvestment, error)
	GetByInvestmentIDForUpdate(ctx context.Context, investmentID string) (*InvestorInvestment, error)
	List(ctx context.Context, statuses ...Status) ([]InvestorInvestment, error)
	SetEntryStatus(ctx context.Context, investmentID string, seq int, st schedule.EntryStatus) error
}
