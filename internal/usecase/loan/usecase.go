package loan

import (
	"context"
	"fmt"
	"time"

	"lendingops-backend/internal/domain/ledger"
	"lendingops-backend/internal/domain/loan"
	"lendingops-backend/internal/domain/schedule"
	"lendingops-backend/internal/domain/uow"
	"lendingops-backend/pkg/id"
)

type Usecase struct {
	repo  loan.Repository
	uow   uow.UnitOfWork
	newID func() string
	now   func() time.Time
}

func NewUsecase(r loan.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{repo: r, uow: tx, newID: id.NewID32, now: time.Now}
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*loan.BorrowerLoan, error) {
	return u.repo.GetByLoanID(ctx, loanID)
}

func (u *Usecase) List(ctx context.Context, statuses ...loan.Status) ([]loan.BorrowerLoan, error) {
	return u.repo.List(ctx, statuses...)
}

// RecordCollection appends a collection to the ledger and settles the schedule entry it pays.
// The loan row stays locked while prior records are summed, so concurrent collections settle in turn.
func (u *Usecase) RecordCollection(ctx context.Context, in CollectionInput) (*ledger.Record, error) {
	if in.PaidAt.IsZero() {
		in.PaidAt = u.now()
	}
	rec := &ledger.Record{
		RecordID:       u.newID(),
		Kind:           ledger.KindCollection,
		InstrumentID:   in.LoanID,
		SequenceNumber: in.SequenceNumber,
		Interest:       in.Interest,
		Principal:      in.Principal,
		PaidAt:         in.PaidAt.UTC(),
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, in.LoanID)
		if err != nil {
			return err
		}
		if in.SequenceNumber > len(l.RepaymentSchedule) {
			return fmt.Errorf("%w: loan %s has %d entries", loan.ErrScheduleEntry, l.LoanID, len(l.RepaymentSchedule))
		}
		prior, err := r.Ledger.ListByInstrument(ctx, l.LoanID)
		if err != nil {
			return err
		}
		if err := r.Ledger.Create(ctx, rec); err != nil {
			return err
		}
		entry := l.RepaymentSchedule[in.SequenceNumber-1]
		st := ledger.Settlement(entry, ledger.PaidFor(append(prior, *rec), in.SequenceNumber))
		if st == entry.Status {
			return nil
		}
		return r.Loans.SetEntryStatus(ctx, l.LoanID, in.SequenceNumber, st)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// MarkOverdue flips every Upcoming repayment of an active loan that fell due before asOf's day
// to Overdue. It returns how many entries changed.
func (u *Usecase) MarkOverdue(ctx context.Context, asOf time.Time) (int, error) {
	active, err := u.repo.List(ctx, loan.StatusActive)
	if err != nil {
		return 0, err
	}
	marked := 0
	for _, candidate := range active {
		if len(schedule.OverdueSeqs(candidate.RepaymentSchedule, asOf)) == 0 {
			continue
		}
		n := 0
		err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
			l, err := r.Loans.GetByLoanIDForUpdate(ctx, candidate.LoanID)
			if err != nil {
				return err
			}
			for _, seq := range schedule.OverdueSeqs(l.RepaymentSchedule, asOf) {
				if err := r.Loans.SetEntryStatus(ctx, l.LoanID, seq, schedule.StatusOverdue); err != nil {
					return err
				}
				n++
			}
			return nil
		})
		if err != nil {
			return marked, fmt.Errorf("mark loan %s overdue: %w", candidate.LoanID, err)
		}
		marked += n
	}
	return marked, nil
}
