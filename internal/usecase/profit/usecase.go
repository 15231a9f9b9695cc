package profit

import (
	"context"
	"time"

	"lendingops-backend/internal/domain/investment"
	"lendingops-backend/internal/domain/ledger"
	"lendingops-backend/internal/domain/loan"
	domain "lendingops-backend/internal/domain/profit"
)

type Usecase struct {
	loans         loan.Repository
	investments   investment.Repository
	ledger        ledger.Repository
	defaultMonths int
	now           func() time.Time
}

func NewUsecase(loans loan.Repository, investments investment.Repository, l ledger.Repository, defaultMonths int) *Usecase {
	return &Usecase{loans: loans, investments: investments, ledger: l, defaultMonths: defaultMonths, now: time.Now}
}

// Snapshot recomputes the portfolio figures from the stored instruments and ledger. months <= 0
// uses the configured series length.
func (u *Usecase) Snapshot(ctx context.Context, months int) (*domain.Snapshot, error) {
	if months <= 0 {
		months = u.defaultMonths
	}
	now := u.now().UTC()

	loans, err := u.loans.List(ctx)
	if err != nil {
		return nil, err
	}
	invs, err := u.investments.List(ctx)
	if err != nil {
		return nil, err
	}
	// everything realised up to the end of the current month
	end := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	records, err := u.ledger.ListBetween(ctx, time.Time{}, end)
	if err != nil {
		return nil, err
	}

	s := domain.Aggregate(domain.Input{
		Loans:       loans,
		Investments: invs,
		Records:     records,
		Months:      months,
		Now:         now,
	})
	return &s, nil
}
