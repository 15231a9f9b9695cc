package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lendingops-backend/internal/domain/schedule"
)

var (
	ErrNotFound      = errors.New("loan not found")
	ErrScheduleEntry = errors.New("schedule entry not found")
)

type Status string

const (
	StatusActive       Status = "Active"
	StatusClosed       Status = "Closed"
	StatusDefaulted    Status = "Defaulted"
	StatusRestructured Status = "Restructured"
)

// Allocation is one funding source behind a loan. Stored as given, never computed here.
type Allocation struct {
	InvestmentID string          `json:"investmentId"`
	Amount       decimal.Decimal `json:"amount"`
}

// Table: borrower_loans
type BorrowerLoan struct {
	ID         uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID     string `gorm:"column:loan_id;size:32;uniqueIndex" json:"id"`
	InquiryID  string `gorm:"column:inquiry_id;size:32;uniqueIndex" json:"inquiryId"`
	ProposalID string `gorm:"column:proposal_id;size:32" json:"proposalId,omitempty"`

	ApprovedAmount     decimal.Decimal    `gorm:"column:approved_amount;type:decimal(18,2)" json:"approvedAmount"`
	InterestRate       decimal.Decimal    `gorm:"column:interest_rate;type:decimal(8,4)" json:"interestRate"`
	RateType           schedule.RateType  `gorm:"column:rate_type;size:8" json:"rateType"`
	TenureMonths       int                `gorm:"column:tenure_months" json:"tenure"`
	RepaymentType      schedule.Style     `gorm:"column:repayment_type;size:16" json:"repaymentType"`
	RepaymentFrequency schedule.Frequency `gorm:"column:repayment_frequency;size:16" json:"repaymentFrequency"`
	StartDate          time.Time          `gorm:"column:start_date" json:"startDate"`

	MonthlyInterest decimal.Decimal `gorm:"column:monthly_interest;type:decimal(18,2)" json:"monthlyInterest"`
	TotalInterest   decimal.Decimal `gorm:"column:total_interest;type:decimal(18,2)" json:"totalInterest"`
	TotalRepayable  decimal.Decimal `gorm:"column:total_repayable;type:decimal(18,2)" json:"totalRepayable"`

	RepaymentSchedule datatypes.JSONSlice[schedule.Entry] `gorm:"column:repayment_schedule" json:"repaymentSchedule"`
	InvestorMapping   datatypes.JSONSlice[Allocation]     `gorm:"column:investor_mapping" json:"investorMapping"`

	Status    Status         `gorm:"column:status;size:16;not null;index" json:"status"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (BorrowerLoan) TableName() string { return "borrower_loans" }

// ApplySchedule fills the computed fields of l from a generated schedule.
func (l *BorrowerLoan) ApplySchedule(s *schedule.Schedule) {
	l.MonthlyInterest = s.MonthlyInterest
	l.TotalInterest = s.TotalInterest
	l.TotalRepayable = s.TotalRepayable
	l.RepaymentSchedule = append(datatypes.JSONSlice[schedule.Entry](nil), s.Entries...)
}
