package investment

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayoutInput records money paid to an investor against one schedule entry.
type PayoutInput struct {
	InvestmentID   string
	SequenceNumber int
	Interest       decimal.Decimal
	Principal      decimal.Decimal
	PaidAt         time.Time
}
