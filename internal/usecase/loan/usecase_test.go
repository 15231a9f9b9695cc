package loan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"lendingops-backend/internal/domain/ledger"
	domain "lendingops-backend/internal/domain/loan"
	"lendingops-backend/internal/domain/schedule"
	"lendingops-backend/internal/domain/uow"
	"lendingops-backend/internal/testutil/ledgermock"
	"lendingops-backend/internal/testutil/loanmock"
	"lendingops-backend/internal/testutil/uowmock"
)

func activeLoan() *domain.BorrowerLoan {
	s, _ := schedule.Generate(schedule.Input{
		Principal:    decimal.NewFromInt(500000),
		RatePercent:  decimal.NewFromInt(12),
		RateType:     schedule.RateYearly,
		TenureMonths: 3,
		Frequency:    schedule.FrequencyMonthly,
		StartDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Style:        schedule.StyleInterestOnly,
	})
	l := &domain.BorrowerLoan{LoanID: "LN-1", Status: domain.StatusActive}
	l.ApplySchedule(s)
	return l
}

type fixture struct {
	prior   []ledger.Record
	created []*ledger.Record
	status  map[int]schedule.EntryStatus
	calls   []string
}

// recorded is what ListByInstrument sees: seeded records plus everything created since.
func (f *fixture) recorded() []ledger.Record {
	out := append([]ledger.Record(nil), f.prior...)
	for _, r := range f.created {
		out = append(out, *r)
	}
	return out
}

func newUsecase(f *fixture, l *domain.BorrowerLoan) *Usecase {
	get := func(_ context.Context, id string) (*domain.BorrowerLoan, error) {
		if l == nil || id != l.LoanID {
			return nil, domain.ErrNotFound
		}
		return l, nil
	}
	loans := &loanmock.Repo{
		GetByLoanIDFn: get,
		GetForUpdateFn: func(ctx context.Context, id string) (*domain.BorrowerLoan, error) {
			f.calls = append(f.calls, "lock")
			return get(ctx, id)
		},
		SetEntryStatusFn: func(_ context.Context, _ string, seq int, st schedule.EntryStatus) error {
			f.status[seq] = st
			return nil
		},
	}
	repos := uow.Repos{
		Loans: loans,
		Ledger: &ledgermock.Repo{
			ListByInstrumentFn: func(context.Context, string) ([]ledger.Record, error) {
				f.calls = append(f.calls, "list")
				return f.recorded(), nil
			},
			CreateFn: func(_ context.Context, r *ledger.Record) error {
				f.created = append(f.created, r)
				return nil
			},
		},
	}
	uc := NewUsecase(loans, uowmock.Passthrough(repos))
	uc.newID = func() string { return "rec" }
	return uc
}

func TestRecordCollection(t *testing.T) {
	paidAt := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		prior      []ledger.Record
		in         CollectionInput
		wantErr    error
		wantStatus schedule.EntryStatus // "" means no status write
	}{
		{
			name:       "full interest settles the entry",
			in:         CollectionInput{LoanID: "LN-1", SequenceNumber: 1, Interest: decimal.NewFromInt(5000), PaidAt: paidAt},
			wantStatus: schedule.StatusPaid,
		},
		{
			name:       "short payment is partial",
			in:         CollectionInput{LoanID: "LN-1", SequenceNumber: 1, Interest: decimal.NewFromInt(1000), PaidAt: paidAt},
			wantStatus: schedule.StatusPartial,
		},
		{
			name:       "prior partial plus remainder settles",
			prior:      []ledger.Record{{SequenceNumber: 2, Interest: decimal.NewFromInt(3000)}},
			in:         CollectionInput{LoanID: "LN-1", SequenceNumber: 2, Interest: decimal.NewFromInt(2000), PaidAt: paidAt},
			wantStatus: schedule.StatusPaid,
		},
		{
			name:       "terminal entry needs principal too",
			in:         CollectionInput{LoanID: "LN-1", SequenceNumber: 3, Interest: decimal.NewFromInt(5000), PaidAt: paidAt},
			wantStatus: schedule.StatusPartial,
		},
		{
			name:    "sequence beyond the schedule",
			in:      CollectionInput{LoanID: "LN-1", SequenceNumber: 4, Interest: decimal.NewFromInt(1), PaidAt: paidAt},
			wantErr: domain.ErrScheduleEntry,
		},
		{
			name:    "nothing paid",
			in:      CollectionInput{LoanID: "LN-1", SequenceNumber: 1, PaidAt: paidAt},
			wantErr: ledger.ErrInvalidRecord,
		},
		{
			name:    "unknown loan",
			in:      CollectionInput{LoanID: "LN-X", SequenceNumber: 1, Interest: decimal.NewFromInt(1), PaidAt: paidAt},
			wantErr: domain.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fixture{prior: tt.prior, status: map[int]schedule.EntryStatus{}}
			uc := newUsecase(f, activeLoan())

			rec, err := uc.RecordCollection(context.Background(), tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				if len(f.created) != 0 {
					t.Fatalf("failed collection must not be recorded")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Kind != ledger.KindCollection || len(f.created) != 1 {
				t.Fatalf("unexpected record: %+v", rec)
			}
			if got := f.status[tt.in.SequenceNumber]; got != tt.wantStatus {
				t.Fatalf("entry status = %q, want %q", got, tt.wantStatus)
			}
		})
	}
}

func TestRecordCollection_LocksLoanBeforeSummingPriorRecords(t *testing.T) {
	f := &fixture{status: map[int]schedule.EntryStatus{}}
	uc := newUsecase(f, activeLoan())
	part := CollectionInput{LoanID: "LN-1", SequenceNumber: 1, Interest: decimal.NewFromInt(3000)}

	if _, err := uc.RecordCollection(context.Background(), part); err != nil {
		t.Fatalf("first collection: %v", err)
	}
	if f.status[1] != schedule.StatusPartial {
		t.Fatalf("after 60%%: status = %q", f.status[1])
	}
	if _, err := uc.RecordCollection(context.Background(), part); err != nil {
		t.Fatalf("second collection: %v", err)
	}
	if f.status[1] != schedule.StatusPaid {
		t.Fatalf("after 120%%: status = %q, want Paid", f.status[1])
	}
	want := []string{"lock", "list", "lock", "list"}
	if len(f.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", f.calls, want)
	}
	for i := range want {
		if f.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", f.calls, want)
		}
	}
}

func TestGetAndList(t *testing.T) {
	f := &fixture{status: map[int]schedule.EntryStatus{}}
	uc := newUsecase(f, activeLoan())

	got, err := uc.Get(context.Background(), "LN-1")
	if err != nil || got.LoanID != "LN-1" {
		t.Fatalf("Get: %v %+v", err, got)
	}
	if _, err := uc.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if list, err := uc.List(context.Background(), domain.StatusActive); err != nil || list != nil {
		t.Fatalf("List default mock: %v %v", list, err)
	}
}

func TestMarkOverdue(t *testing.T) {
	l := activeLoan()
	l.RepaymentSchedule[0].Status = schedule.StatusPaid
	status := map[int]schedule.EntryStatus{}
	var locked []string
	loans := &loanmock.Repo{
		ListFn: func(_ context.Context, st ...domain.Status) ([]domain.BorrowerLoan, error) {
			if len(st) != 1 || st[0] != domain.StatusActive {
				t.Fatalf("only active loans are swept, got %v", st)
			}
			return []domain.BorrowerLoan{*l, {LoanID: "LN-EMPTY"}}, nil
		},
		GetForUpdateFn: func(_ context.Context, id string) (*domain.BorrowerLoan, error) {
			locked = append(locked, id)
			return l, nil
		},
		SetEntryStatusFn: func(_ context.Context, _ string, seq int, st schedule.EntryStatus) error {
			status[seq] = st
			return nil
		},
	}
	uc := NewUsecase(loans, uowmock.Passthrough(uow.Repos{Loans: loans}))

	// due dates are Feb 1, Mar 1 and Apr 1
	n, err := uc.MarkOverdue(context.Background(), time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("MarkOverdue: %v", err)
	}
	if n != 1 || status[2] != schedule.StatusOverdue || len(status) != 1 {
		t.Fatalf("marked %d, statuses %v", n, status)
	}
	if len(locked) != 1 || locked[0] != "LN-1" {
		t.Fatalf("locked %v, want only LN-1", locked)
	}
}

func TestMarkOverdue_ListFailure(t *testing.T) {
	boom := errors.New("db down")
	loans := &loanmock.Repo{ListFn: func(context.Context, ...domain.Status) ([]domain.BorrowerLoan, error) { return nil, boom }}
	uc := NewUsecase(loans, uowmock.New())
	if _, err := uc.MarkOverdue(context.Background(), time.Now()); !errors.Is(err, boom) {
		t.Fatalf("want %v, got %v", boom, err)
	}
}
