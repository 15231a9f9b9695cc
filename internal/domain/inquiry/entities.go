package inquiry

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("inquiry not found")
	ErrInvalidTransition = errors.New("invalid stage transition")
	// ErrStaleState means the caller acted on a snapshot that no longer matches the stored inquiry.
	ErrStaleState = errors.New("inquiry state is stale")
)

type Type string

const (
	TypeBorrower Type = "Borrower"
	TypeInvestor Type = "Investor"
)

type Priority string

const (
	PriorityHot  Priority = "Hot"
	PriorityWarm Priority = "Warm"
	PriorityCold Priority = "Cold"
)

const ActionStageChange = "stage_change"

// ActivityLog is one append-only history line; ordering by ChangedAt reconstructs the stage history.
type ActivityLog struct {
	Action    string    `json:"action"`
	OldStage  Stage     `json:"oldStage"`
	NewStage  Stage     `json:"newStage"`
	ChangedAt time.Time `json:"changedAt"`
}

// Table: inquiries
type Inquiry struct {
	ID        uint64   `gorm:"primaryKey;column:id" json:"-"`
	InquiryID string   `gorm:"column:inquiry_id;size:32;uniqueIndex" json:"id"`
	Type      Type     `gorm:"column:type;size:16;not null;index:idx_inquiries_type_stage" json:"type"`
	Name      string   `gorm:"column:name;size:255" json:"name"`
	Email     string   `gorm:"column:email;size:255" json:"email"`
	Phone     string   `gorm:"column:phone;size:64" json:"phone"`
	Company   string   `gorm:"column:company;size:255" json:"company,omitempty"`
	Priority  Priority `gorm:"column:priority;size:8;default:'Warm'" json:"priority"`
	Stage     Stage    `gorm:"column:stage;size:32;not null;index:idx_inquiries_type_stage" json:"stage"`

	LoanAmount       decimal.Decimal `gorm:"column:loan_amount;type:decimal(18,2)" json:"loanAmount"`
	InvestmentAmount decimal.Decimal `gorm:"column:investment_amount;type:decimal(18,2)" json:"investmentAmount"`
	InterestRate     decimal.Decimal `gorm:"column:interest_rate;type:decimal(8,4)" json:"interestRate"`
	TenureMonths     int             `gorm:"column:tenure_months" json:"tenure"`
	Frequency        string          `gorm:"column:frequency;size:16" json:"frequency"`

	ActivityLogs datatypes.JSONSlice[ActivityLog] `gorm:"column:activity_logs" json:"activityLogs"`

	// owned by the document subsystem, displayed only
	CombinedReportMarkdown string `gorm:"column:combined_report_markdown;type:text" json:"combinedReportMarkdown,omitempty"`
	ProfileScore           *int   `gorm:"column:profile_score" json:"profileScore,omitempty"`

	// set once the matching instrument is created
	LoanID       string `gorm:"column:loan_id;size:32" json:"loanId,omitempty"`
	InvestmentID string `gorm:"column:investment_id;size:32" json:"investmentId,omitempty"`

	Version   int64          `gorm:"column:version;not null;default:0" json:"version"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Inquiry) TableName() string { return "inquiries" }

// Clone copies the inquiry including its activity log so callers can mutate it freely.
func (i *Inquiry) Clone() *Inquiry {
	c := *i
	c.ActivityLogs = append(datatypes.JSONSlice[ActivityLog](nil), i.ActivityLogs...)
	return &c
}

// WriteStage moves the inquiry to next and appends the stage_change log entry.
func (i *Inquiry) WriteStage(next Stage, now time.Time) ActivityLog {
	entry := ActivityLog{Action: ActionStageChange, OldStage: i.Stage, NewStage: next, ChangedAt: now.UTC()}
	i.Stage = next
	i.ActivityLogs = append(i.ActivityLogs, entry)
	return entry
}

// InstrumentID is the loan or investment created for the inquiry, empty before approval.
func (i *Inquiry) InstrumentID() string {
	if i.Type == TypeInvestor {
		return i.InvestmentID
	}
	return i.LoanID
}
