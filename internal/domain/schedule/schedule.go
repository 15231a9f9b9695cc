// Package schedule turns an instrument's principal terms into its repayment or payout schedule.
//
// Generation is pure: the same Input always yields the same Schedule, and entries are never
// recomputed after an instrument is created. Only Entry.Status is written afterwards, by the ledger.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidInput = errors.New("invalid schedule input")

type RateType string

const (
	RateMonthly RateType = "monthly"
	RateYearly  RateType = "yearly"
)

type Frequency string

const (
	FrequencyMonthly    Frequency = "Monthly"
	FrequencyQuarterly  Frequency = "Quarterly"
	FrequencyHalfYearly Frequency = "Half-Yearly"
	FrequencyYearly     Frequency = "Yearly"
	FrequencyOnMaturity Frequency = "on_maturity"
)

// ParseFrequency accepts the canonical codes plus the lowercase spellings investor payouts use.
func ParseFrequency(s string) (Frequency, bool) {
	switch s {
	case "Monthly", "monthly":
		return FrequencyMonthly, true
	case "Quarterly", "quarterly":
		return FrequencyQuarterly, true
	case "Half-Yearly", "half_yearly", "half-yearly":
		return FrequencyHalfYearly, true
	case "Yearly", "yearly":
		return FrequencyYearly, true
	case "on_maturity", "On-Maturity", "Bullet":
		return FrequencyOnMaturity, true
	}
	return "", false
}

type Style string

const (
	StyleInterestOnly Style = "Interest-Only"
	StyleBullet       Style = "Bullet"
)

type EntryStatus string

const (
	StatusUpcoming EntryStatus = "Upcoming"
	StatusPaid     EntryStatus = "Paid"
	StatusOverdue  EntryStatus = "Overdue"
	StatusPartial  EntryStatus = "Partial"
)

type Input struct {
	Principal    decimal.Decimal
	RatePercent  decimal.Decimal
	RateType     RateType
	TenureMonths int
	Frequency    Frequency
	StartDate    time.Time
	Style        Style
}

type Entry struct {
	SequenceNumber     int             `json:"sequenceNumber"`
	DueDate            time.Time       `json:"dueDate"`
	InterestComponent  decimal.Decimal `json:"interestComponent"`
	PrincipalComponent decimal.Decimal `json:"principalComponent"`
	TotalDue           decimal.Decimal `json:"totalDue"`
	IsTerminalEntry    bool            `json:"isTerminalEntry"`
	Status             EntryStatus     `json:"status"`
}

type Schedule struct {
	MonthlyInterest decimal.Decimal
	PeriodMonths    int
	Entries         []Entry
	TotalInterest   decimal.Decimal
	// TotalRepayable for loans, total payout for investments.
	TotalRepayable decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Round2 rounds half away from zero to cents, which is half-up for the non-negative amounts here.
func Round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// MonthlyRate normalises a percentage rate to a monthly decimal fraction.
func MonthlyRate(ratePercent decimal.Decimal, rt RateType) decimal.Decimal {
	r := ratePercent.Div(hundred)
	if rt == RateYearly {
		r = ratePercent.Div(decimal.NewFromInt(12)).Div(hundred)
	}
	return r
}

// PeriodMonths is the length of one schedule period.
func PeriodMonths(f Frequency, tenureMonths int) (int, bool) {
	switch f {
	case FrequencyMonthly:
		return 1, true
	case FrequencyQuarterly:
		return 3, true
	case FrequencyHalfYearly:
		return 6, true
	case FrequencyYearly:
		return 12, true
	case FrequencyOnMaturity:
		return tenureMonths, true
	}
	return 0, false
}

func (in Input) validate() error {
	switch {
	case !in.Principal.IsPositive():
		return fmt.Errorf("%w: principal must be positive", ErrInvalidInput)
	case in.RatePercent.IsNegative():
		return fmt.Errorf("%w: rate must not be negative", ErrInvalidInput)
	case in.TenureMonths <= 0:
		return fmt.Errorf("%w: tenure must be at least one month", ErrInvalidInput)
	case in.RateType != RateMonthly && in.RateType != RateYearly:
		return fmt.Errorf("%w: unknown rate type %q", ErrInvalidInput, in.RateType)
	case in.Style != StyleInterestOnly && in.Style != StyleBullet:
		return fmt.Errorf("%w: unknown repayment style %q", ErrInvalidInput, in.Style)
	case in.StartDate.IsZero():
		return fmt.Errorf("%w: start date required", ErrInvalidInput)
	}
	if _, ok := PeriodMonths(in.Frequency, in.TenureMonths); !ok {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidInput, in.Frequency)
	}
	return nil
}

// Generate builds the schedule. Interest-Only and Bullet both hold principal until the terminal
// entry; nothing amortises before maturity. When the tenure is not a whole number of periods the
// terminal period is shortened to the months that remain.
func Generate(in Input) (*Schedule, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	period, _ := PeriodMonths(in.Frequency, in.TenureMonths)
	monthly := Round2(in.Principal.Mul(MonthlyRate(in.RatePercent, in.RateType)))
	n := (in.TenureMonths + period - 1) / period

	s := &Schedule{
		MonthlyInterest: monthly,
		PeriodMonths:    period,
		Entries:         make([]Entry, 0, n),
		TotalInterest:   decimal.Zero,
	}
	for i := 1; i <= n; i++ {
		months := period
		offset := i * period
		terminal := i == n
		if terminal && offset > in.TenureMonths {
			months = in.TenureMonths - (i-1)*period
			offset = in.TenureMonths
		}
		e := Entry{
			SequenceNumber:     i,
			DueDate:            AddMonths(in.StartDate, offset),
			InterestComponent:  Round2(monthly.Mul(decimal.NewFromInt(int64(months)))),
			PrincipalComponent: decimal.Zero,
			IsTerminalEntry:    terminal,
			Status:             StatusUpcoming,
		}
		if terminal {
			e.PrincipalComponent = in.Principal
		}
		e.TotalDue = e.InterestComponent.Add(e.PrincipalComponent)
		s.TotalInterest = s.TotalInterest.Add(e.InterestComponent)
		s.Entries = append(s.Entries, e)
	}
	s.TotalRepayable = s.TotalInterest.Add(in.Principal)
	return s, nil
}

// AddMonths moves t forward by n calendar months, clamping to the last day of the target month
// (Jan 31 + 1 month is Feb 28/29, not Mar 3).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// OverdueSeqs lists the Upcoming entries whose due date is before asOf's day.
// Paid and Partial entries are left to the ledger.
func OverdueSeqs(entries []Entry, asOf time.Time) []int {
	y, m, d := asOf.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	var out []int
	for _, e := range entries {
		if e.Status == StatusUpcoming && e.DueDate.Before(today) {
			out = append(out, e.SequenceNumber)
		}
	}
	return out
}
