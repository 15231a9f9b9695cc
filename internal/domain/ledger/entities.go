package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"lendingops-backend/internal/domain/schedule"
)

var ErrInvalidRecord = errors.New("invalid ledger record")

type Kind string

const (
	// KindCollection is money received from a borrower.
	KindCollection Kind = "collection"
	// KindPayout is money paid to an investor.
	KindPayout Kind = "payout"
)

// Table: ledger_records
type Record struct {
	ID             uint64          `gorm:"primaryKey;column:id" json:"-"`
	RecordID       string          `gorm:"column:record_id;size:32;uniqueIndex" json:"id"`
	Kind           Kind            `gorm:"column:kind;size:16;not null;index:idx_ledger_kind_date" json:"kind"`
	InstrumentID   string          `gorm:"column:instrument_id;size:32;not null;index" json:"instrumentId"`
	SequenceNumber int             `gorm:"column:sequence_number" json:"sequenceNumber"`
	Interest       decimal.Decimal `gorm:"column:interest;type:decimal(18,2)" json:"interest"`
	Principal      decimal.Decimal `gorm:"column:principal;type:decimal(18,2)" json:"principal"`
	PaidAt         time.Time       `gorm:"column:paid_at;not null;index:idx_ledger_kind_date" json:"paidAt"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (Record) TableName() string { return "ledger_records" }

// Total is what changed hands in this record.
func (r Record) Total() decimal.Decimal { return r.Interest.Add(r.Principal) }

// Validate checks a record before it is stored.
func (r Record) Validate() error {
	switch {
	case r.Kind != KindCollection && r.Kind != KindPayout:
		return fmt.Errorf("%w: kind %q", ErrInvalidRecord, r.Kind)
	case r.SequenceNumber < 1:
		return fmt.Errorf("%w: sequence number must be >= 1", ErrInvalidRecord)
	case r.Interest.IsNegative() || r.Principal.IsNegative():
		return fmt.Errorf("%w: amounts must not be negative", ErrInvalidRecord)
	case !r.Total().IsPositive():
		return fmt.Errorf("%w: nothing was paid", ErrInvalidRecord)
	case r.PaidAt.IsZero():
		return fmt.Errorf("%w: paid_at is required", ErrInvalidRecord)
	}
	return nil
}

// PaidFor sums what the records settle against schedule entry seq.
func PaidFor(records []Record, seq int) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		if r.SequenceNumber == seq {
			sum = sum.Add(r.Total())
		}
	}
	return sum
}

// Settlement is the status of entry once paid has been received against it.
func Settlement(entry schedule.Entry, paid decimal.Decimal) schedule.EntryStatus {
	switch {
	case paid.GreaterThanOrEqual(entry.TotalDue):
		return schedule.StatusPaid
	case paid.IsPositive():
		return schedule.StatusPartial
	}
	return entry.Status
}
