package investment

import (
	"context"
	"fmt"
	"time"

	"lendingops-backend/internal/domain/investment"
	"lendingops-backend/internal/domain/ledger"
	"lendingops-backend/internal/domain/schedule"
	"lendingops-backend/internal/domain/uow"
	"lendingops-backend/pkg/id"
)

type Usecase struct {
	repo  investment.Repository
	uow   uow.UnitOfWork
	newID func() string
	now   func() time.Time
}

func NewUsecase(r investment.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{repo: r, uow: tx, newID: id.NewID32, now: time.Now}
}

func (u *Usecase) Get(ctx context.Context, investmentID string) (*investment.InvestorInvestment, error) {
	return u.repo.GetByInvestmentID(ctx, investmentID)
}

func (u *Usecase) List(ctx context.Context, statuses ...investment.Status) ([]investment.InvestorInvestment, error) {
	return u.repo.List(ctx, statuses...)
}

// RecordPayout appends a payout to the ledger and settles the payout entry it covers.
func (u *Usecase) RecordPayout(ctx context.Context, in PayoutInput) (*ledger.Record, error) {
	if in.PaidAt.IsZero() {
		in.PaidAt = u.now()
	}
	rec := &ledger.Record{
		RecordID:       u.newID(),
		Kind:           ledger.KindPayout,
		InstrumentID:   in.InvestmentID,
		SequenceNumber: in.SequenceNumber,
		Interest:       in.Interest,
		Principal:      in.Principal,
		PaidAt:         in.PaidAt.UTC(),
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		v, err := r.Investments.GetByInvestmentIDForUpdate(ctx, in.InvestmentID)
		if err != nil {
			return err
		}
		if in.SequenceNumber > len(v.PayoutSchedule) {
			return fmt.Errorf("%w: investment %s has %d entries", investment.ErrScheduleEntry, v.InvestmentID, len(v.PayoutSchedule))
		}
		prior, err := r.Ledger.ListByInstrument(ctx, v.InvestmentID)
		if err != nil {
			return err
		}
		if err := r.Ledger.Create(ctx, rec); err != nil {
			return err
		}
		entry := v.PayoutSchedule[in.SequenceNumber-1]
		st := ledger.Settlement(entry, ledger.PaidFor(append(prior, *rec), in.SequenceNumber))
		if st == entry.Status {
			return nil
		}
		return r.Investments.SetEntryStatus(ctx, v.InvestmentID, in.SequenceNumber, st)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// MarkOverdue flips every Upcoming payout of an active investment that fell due before asOf's
// day to Overdue.
func (u *Usecase) MarkOverdue(ctx context.Context, asOf time.Time) (int, error) {
	active, err := u.repo.List(ctx, investment.StatusActive)
	if err != nil {
		return 0, err
	}
	marked := 0
	for _, candidate := range active {
		if len(schedule.OverdueSeqs(candidate.PayoutSchedule, asOf)) == 0 {
			continue
		}
		n := 0
		err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
			v, err := r.Investments.GetByInvestmentIDForUpdate(ctx, candidate.InvestmentID)
			if err != nil {
				return err
			}
			for _, seq := range schedule.OverdueSeqs(v.PayoutSchedule, asOf) {
				if err := r.Investments.SetEntryStatus(ctx, v.InvestmentID, seq, schedule.StatusOverdue); err != nil {
					return err
				}
				n++
			}
			return nil
		})
		if err != nil {
			return marked, fmt.Errorf("mark investment %s overdue: %w", candidate.InvestmentID, err)
		}
		marked += n
	}
	return marked, nil
}
