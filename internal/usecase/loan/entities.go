package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

// CollectionInput records money received from a borrower against one schedule entry.
type CollectionInput struct {
	LoanID         string
	SequenceNumber int
	Interest       decimal.Decimal
	Principal      decimal.Decimal
	PaidAt         time.Time
}
