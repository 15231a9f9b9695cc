// Package pipeline is the stage state machine for borrower and investor inquiries.
//
// Transition never performs I/O. It returns the next inquiry snapshot and, for the two terminal
// agreements, an instrument to create; the caller persists both in one transaction and stamps the
// created identity back with Outcome.Stamp.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"lendingops-backend/internal/domain/inquiry"
	"lendingops-backend/internal/domain/investment"
	"lendingops-backend/internal/domain/loan"
	"lendingops-backend/internal/domain/proposal"
	"lendingops-backend/internal/domain/schedule"
)

var (
	ErrProposalNotAccepted  = errors.New("inquiry has no accepted proposal")
	ErrMissingApprovalTerms = errors.New("approval terms are incomplete")
)

// gates maps each pipeline to the stage that creates its instrument.
var gates = map[inquiry.Type]inquiry.Stage{
	inquiry.TypeBorrower: inquiry.StageApproved,
	inquiry.TypeInvestor: inquiry.StageAgreementDone,
}

type Kind string

const (
	KindNoOp             Kind = "noop"
	KindStageChanged     Kind = "stage_changed"
	KindStartNegotiation Kind = "start_negotiation"
	KindNeedsInput       Kind = "needs_input"
	KindCreateLoan       Kind = "create_loan"
	KindCreateInvestment Kind = "create_investment"
)

// LoanTerms confirm a borrower approval. Zero fields fall back to the accepted proposal.
type LoanTerms struct {
	Amount        decimal.Decimal
	Rate          decimal.Decimal
	RateType      schedule.RateType
	TenureMonths  int
	Frequency     schedule.Frequency
	RepaymentType schedule.Style
	StartDate     time.Time
}

// InvestmentTerms confirm an investor agreement. Amount falls back to the inquiry's.
type InvestmentTerms struct {
	Amount          decimal.Decimal
	Rate            decimal.Decimal
	RateType        schedule.RateType
	TenureMonths    int
	PayoutFrequency schedule.Frequency
	StartDate       time.Time
}

type Request struct {
	Target inquiry.Stage
	// ExpectedStage is the stage the caller believes the inquiry is in; empty skips the check.
	ExpectedStage   inquiry.Stage
	LoanTerms       *LoanTerms
	InvestmentTerms *InvestmentTerms
	Now             time.Time
}

// Guards carries the facts a transition depends on that are not part of the inquiry record.
type Guards struct {
	AcceptedProposal *proposal.Proposal
}

type Outcome struct {
	Kind Kind
	// Inquiry is the next snapshot. It is a copy; the input inquiry is never mutated.
	Inquiry *inquiry.Inquiry
	Log     *inquiry.ActivityLog
	// Required lists the fields the caller must supply on a NeedsInput outcome.
	Required   []string
	Loan       *loan.BorrowerLoan
	Investment *investment.InvestorInvestment
}

// Wrote reports whether the outcome changes the stored inquiry.
func (o *Outcome) Wrote() bool { return o.Log != nil }

// Stamp records the identity the persistence layer gave the created instrument.
func (o *Outcome) Stamp(instrumentID string) {
	switch o.Kind {
	case KindCreateLoan:
		o.Loan.LoanID = instrumentID
		o.Inquiry.LoanID = instrumentID
	case KindCreateInvestment:
		o.Investment.InvestmentID = instrumentID
		o.Inquiry.InvestmentID = instrumentID
	}
}

// Transition decides what moving cur to req.Target means.
func Transition(cur *inquiry.Inquiry, req Request, g Guards) (*Outcome, error) {
	if !inquiry.ValidType(cur.Type) {
		return nil, fmt.Errorf("%w: unknown inquiry type %q", inquiry.ErrInvalidTransition, cur.Type)
	}
	if !inquiry.ValidStage(cur.Type, req.Target) {
		return nil, fmt.Errorf("%w: %q is not a %s stage", inquiry.ErrInvalidTransition, req.Target, cur.Type)
	}
	if req.ExpectedStage != "" && req.ExpectedStage != cur.Stage {
		return nil, fmt.Errorf("%w: expected %s, found %s", inquiry.ErrStaleState, req.ExpectedStage, cur.Stage)
	}
	if req.Target == cur.Stage {
		return &Outcome{Kind: KindNoOp, Inquiry: cur.Clone()}, nil
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	if err := checkGate(cur, req.Target); err != nil {
		return nil, err
	}

	switch {
	case cur.Type == inquiry.TypeBorrower && req.Target == inquiry.StageProposed:
		// the stage is written when a proposal is actually sent
		return &Outcome{Kind: KindStartNegotiation, Inquiry: cur.Clone()}, nil
	case cur.Type == inquiry.TypeBorrower && req.Target == inquiry.StageApproved && cur.LoanID == "":
		return approveBorrower(cur, req, g, now)
	case cur.Type == inquiry.TypeInvestor && req.Target == inquiry.StageAgreementDone && cur.InvestmentID == "":
		return agreeInvestor(cur, req, now)
	}
	return write(cur, req.Target, KindStageChanged, now), nil
}

// checkGate rejects moves beyond the instrument stage while no instrument exists.
func checkGate(cur *inquiry.Inquiry, target inquiry.Stage) error {
	gate := gates[cur.Type]
	if stageIndex(cur.Type, target) <= stageIndex(cur.Type, gate) || cur.InstrumentID() != "" {
		return nil
	}
	return fmt.Errorf("%w: %s requires passing %s first", inquiry.ErrInvalidTransition, target, gate)
}

func stageIndex(t inquiry.Type, s inquiry.Stage) int {
	for i, st := range inquiry.Stages(t) {
		if st == s {
			return i
		}
	}
	return -1
}

func write(cur *inquiry.Inquiry, to inquiry.Stage, k Kind, now time.Time) *Outcome {
	next := cur.Clone()
	entry := next.WriteStage(to, now)
	return &Outcome{Kind: k, Inquiry: next, Log: &entry}
}

func approveBorrower(cur *inquiry.Inquiry, req Request, g Guards, now time.Time) (*Outcome, error) {
	p := g.AcceptedProposal
	if p == nil || p.Status != proposal.StatusAccepted || p.InquiryID != cur.InquiryID {
		return nil, ErrProposalNotAccepted
	}
	t := loanTermsFrom(p.CurrentTerms(), now)
	if req.LoanTerms != nil {
		t = mergeLoanTerms(t, *req.LoanTerms)
	}
	if missing := t.missing(); len(missing) > 0 {
		if req.LoanTerms == nil {
			return &Outcome{Kind: KindNeedsInput, Inquiry: cur.Clone(), Required: missing}, nil
		}
		return nil, fmt.Errorf("%w: missing %v", ErrMissingApprovalTerms, missing)
	}
	sched, err := schedule.Generate(schedule.Input{
		Principal:    t.Amount,
		RatePercent:  t.Rate,
		RateType:     t.RateType,
		TenureMonths: t.TenureMonths,
		Frequency:    t.Frequency,
		StartDate:    t.StartDate,
		Style:        t.RepaymentType,
	})
	if err != nil {
		return nil, err
	}
	l := &loan.BorrowerLoan{
		InquiryID:          cur.InquiryID,
		ProposalID:         p.ProposalID,
		ApprovedAmount:     t.Amount,
		InterestRate:       t.Rate,
		RateType:           t.RateType,
		TenureMonths:       t.TenureMonths,
		RepaymentType:      t.RepaymentType,
		RepaymentFrequency: t.Frequency,
		StartDate:          t.StartDate,
		Status:             loan.StatusActive,
	}
	l.ApplySchedule(sched)

	out := write(cur, inquiry.StageApproved, KindCreateLoan, now)
	out.Loan = l
	return out, nil
}

func agreeInvestor(cur *inquiry.Inquiry, req Request, now time.Time) (*Outcome, error) {
	if req.InvestmentTerms == nil {
		required := []string{"rate", "tenure", "payoutFrequency"}
		if !cur.InvestmentAmount.IsPositive() {
			required = append([]string{"amount"}, required...)
		}
		return &Outcome{Kind: KindNeedsInput, Inquiry: cur.Clone(), Required: required}, nil
	}
	t := *req.InvestmentTerms
	if t.Amount.IsZero() {
		t.Amount = cur.InvestmentAmount
	}
	if t.RateType == "" {
		t.RateType = schedule.RateYearly
	}
	if t.StartDate.IsZero() {
		t.StartDate = startOfDay(now)
	}
	var missing []string
	if !t.Amount.IsPositive() {
		missing = append(missing, "amount")
	}
	if !t.Rate.IsPositive() {
		missing = append(missing, "rate")
	}
	if t.TenureMonths <= 0 {
		missing = append(missing, "tenure")
	}
	if t.PayoutFrequency == "" {
		missing = append(missing, "payoutFrequency")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %v", ErrMissingApprovalTerms, missing)
	}
	sched, err := schedule.Generate(schedule.Input{
		Principal:    t.Amount,
		RatePercent:  t.Rate,
		RateType:     t.RateType,
		TenureMonths: t.TenureMonths,
		Frequency:    t.PayoutFrequency,
		StartDate:    t.StartDate,
		Style:        schedule.StyleInterestOnly,
	})
	if err != nil {
		return nil, err
	}
	v := &investment.InvestorInvestment{
		InquiryID:       cur.InquiryID,
		InvestedAmount:  t.Amount,
		InterestRate:    t.Rate,
		RateType:        t.RateType,
		TenureMonths:    t.TenureMonths,
		PayoutFrequency: t.PayoutFrequency,
		StartDate:       t.StartDate,
		Status:          investment.StatusActive,
	}
	v.ApplySchedule(sched)

	out := write(cur, inquiry.StageAgreementDone, KindCreateInvestment, now)
	out.Investment = v
	return out, nil
}

func loanTermsFrom(pt proposal.Terms, now time.Time) LoanTerms {
	t := LoanTerms{
		Amount:        pt.Amount,
		Rate:          pt.Rate,
		RateType:      schedule.RateType(pt.RateType),
		TenureMonths:  pt.TenureMonths,
		RepaymentType: schedule.StyleInterestOnly,
		StartDate:     startOfDay(now),
	}
	if t.RateType == "" {
		t.RateType = schedule.RateYearly
	}
	if f, ok := schedule.ParseFrequency(pt.Frequency); ok {
		t.Frequency = f
	}
	return t
}

func mergeLoanTerms(base, over LoanTerms) LoanTerms {
	if !over.Amount.IsZero() {
		base.Amount = over.Amount
	}
	if !over.Rate.IsZero() {
		base.Rate = over.Rate
	}
	if over.RateType != "" {
		base.RateType = over.RateType
	}
	if over.TenureMonths != 0 {
		base.TenureMonths = over.TenureMonths
	}
	if over.Frequency != "" {
		base.Frequency = over.Frequency
	}
	if over.RepaymentType != "" {
		base.RepaymentType = over.RepaymentType
	}
	if !over.StartDate.IsZero() {
		base.StartDate = over.StartDate
	}
	return base
}

func (t LoanTerms) missing() []string {
	var m []string
	if !t.Amount.IsPositive() {
		m = append(m, "amount")
	}
	if !t.Rate.IsPositive() {
		m = append(m, "rate")
	}
	if t.TenureMonths <= 0 {
		m = append(m, "tenure")
	}
	if t.Frequency == "" {
		m = append(m, "frequency")
	}
	return m
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
