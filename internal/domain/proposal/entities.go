package proposal

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var (
	ErrNotFound           = errors.New("proposal not found")
	ErrOpenProposalExists = errors.New("an open proposal already exists for this inquiry")
	ErrNotOpen            = errors.New("proposal is not open")
	// ErrAlreadyAccepted blocks new proposals once terms were agreed, keeping Accepted unique.
	ErrAlreadyAccepted = errors.New("inquiry already has an accepted proposal")
	ErrInvalidTerms    = errors.New("invalid proposal terms")
)

type Status string

const (
	StatusSent     Status = "Sent"
	StatusAccepted Status = "Accepted"
	StatusRejected Status = "Rejected"
	StatusCounter  Status = "Counter"
	StatusExpired  Status = "Expired"
)

// Open reports whether negotiation can still continue on a proposal in this status.
func (s Status) Open() bool { return s == StatusSent || s == StatusCounter }

// Terms is one set of loan terms. RateType is "monthly" or "yearly".
type Terms struct {
	Amount       decimal.Decimal `json:"amount"`
	Rate         decimal.Decimal `json:"rate"`
	RateType     string          `json:"rateType,omitempty"`
	TenureMonths int             `json:"tenure"`
	Frequency    string          `json:"frequency"`
}

// Complete reports whether the terms carry enough to build a schedule.
func (t Terms) Complete() bool {
	return t.Amount.IsPositive() && !t.Rate.IsNegative() && !t.Rate.IsZero() && t.TenureMonths > 0 && t.Frequency != ""
}

type HistoryEntry struct {
	Action    Status    `json:"action"`
	Terms     Terms     `json:"terms"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Table: proposals
type Proposal struct {
	ID         uint64 `gorm:"primaryKey;column:id" json:"-"`
	ProposalID string `gorm:"column:proposal_id;size:32;uniqueIndex" json:"id"`
	InquiryID  string `gorm:"column:inquiry_id;size:32;not null;index" json:"inquiryId"`

	OriginalTerms datatypes.JSONType[Terms] `gorm:"column:original_terms" json:"originalTerms"`
	ProposedTerms datatypes.JSONType[Terms] `gorm:"column:proposed_terms" json:"proposedTerms"`
	Notes         string                    `gorm:"column:notes;type:text" json:"notes,omitempty"`

	Status      Status                            `gorm:"column:status;size:16;not null;index" json:"status"`
	History     datatypes.JSONSlice[HistoryEntry] `gorm:"column:history" json:"history"`
	SentAt      time.Time                         `gorm:"column:sent_at" json:"sentAt"`
	RespondedAt *time.Time                        `gorm:"column:responded_at" json:"respondedAt,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Proposal) TableName() string { return "proposals" }

// CurrentTerms are the terms on the table right now: the latest history entry's.
func (p *Proposal) CurrentTerms() Terms {
	if n := len(p.History); n > 0 {
		return p.History[n-1].Terms
	}
	return p.ProposedTerms.Data()
}

// LastActivity is when the proposal was last touched.
func (p *Proposal) LastActivity() time.Time {
	if n := len(p.History); n > 0 {
		return p.History[n-1].Timestamp
	}
	return p.SentAt
}

func jsonTerms(t Terms) datatypes.JSONType[Terms] { return datatypes.NewJSONType(t) }
