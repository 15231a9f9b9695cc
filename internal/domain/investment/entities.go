package investment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lendingops-backend/internal/domain/schedule"
)

var (
	ErrNotFound      = errors.New("investment not found")
	ErrScheduleEntry = errors.New("schedule entry not found")
)

type Status string

const (
	StatusActive    Status = "Active"
	StatusMatured   Status = "Matured"
	StatusClosed    Status = "Closed"
	StatusWithdrawn Status = "Withdrawn"
)

// LinkedBorrower records which loan draws on this investment. Stored only.
type LinkedBorrower struct {
	LoanID string          `json:"loanId"`
	Amount decimal.Decimal `json:"amount"`
}

// Table: investor_investments
type InvestorInvestment struct {
	ID           uint64 `gorm:"primaryKey;column:id" json:"-"`
	InvestmentID string `gorm:"column:investment_id;size:32;uniqueIndex" json:"id"`
	InquiryID    string `gorm:"column:inquiry_id;size:32;uniqueIndex" json:"inquiryId"`

	InvestedAmount  decimal.Decimal    `gorm:"column:invested_amount;type:decimal(18,2)" json:"investedAmount"`
	InterestRate    decimal.Decimal    `gorm:"column:interest_rate;type:decimal(8,4)" json:"interestRate"`
	RateType        schedule.RateType  `gorm:"column:rate_type;size:8" json:"rateType"`
	TenureMonths    int                `gorm:"column:tenure_months" json:"tenure"`
	PayoutFrequency schedule.Frequency `gorm:"column:payout_frequency;size:16" json:"payoutFrequency"`
	StartDate       time.Time          `gorm:"column:start_date" json:"startDate"`

	MonthlyInterest decimal.Decimal `gorm:"column:monthly_interest;type:decimal(18,2)" json:"monthlyInterest"`
	TotalInterest   decimal.Decimal `gorm:"column:total_interest;type:decimal(18,2)" json:"totalInterest"`
	TotalPayout     decimal.Decimal `gorm:"column:total_payout;type:decimal(18,2)" json:"totalPayout"`

	PayoutSchedule  datatypes.JSONSlice[schedule.Entry] `gorm:"column:payout_schedule" json:"payoutSchedule"`
	LinkedBorrowers datatypes.JSONSlice[LinkedBorrower] `gorm:"column:linked_borrowers" json:"linkedBorrowers"`

	Status    Status         `gorm:"column:status;size:16;not null;index" json:"status"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (InvestorInvestment) TableName() string { return "investor_investments" }

func (v *InvestorInvestment) ApplySchedule(s *schedule.Schedule) {
	v.MonthlyInterest = s.MonthlyInterest
	v.TotalInterest = s.TotalInterest
	v.TotalPayout = s.TotalRepayable
	v.PayoutSchedule = append(datatypes.JSONSlice[schedule.Entry](nil), s.Entries...)
}
