package http

import (
	"context"
	stdhttp "net/http"
	"testing"

	"github.com/shopspring/decimal"

	"lendingops-backend/internal/domain/inquiry"
	"lendingops-backend/internal/domain/investment"
	"lendingops-backend/internal/domain/loan"
	"lendingops-backend/internal/domain/proposal"
	"lendingops-backend/internal/domain/uow"
	"lendingops-backend/internal/testutil/inquirymock"
	"lendingops-backend/internal/testutil/investmentmock"
	"lendingops-backend/internal/testutil/loanmock"
	"lendingops-backend/internal/testutil/uowmock"
	inquiryUC "lendingops-backend/internal/usecase/inquiry"
	pipelineUC "lendingops-backend/internal/usecase/pipeline"
	"lendingops-backend/pkg/logger"
)

// memStore keeps inquiries, proposals and created instruments in memory behind the function-field mocks.
type memStore struct {
	rows        map[string]*inquiry.Inquiry
	loans       []loan.BorrowerLoan
	investments []investment.InvestorInvestment
	proposals   []proposal.Proposal
}

func newMemStore(seed ...*inquiry.Inquiry) *memStore {
	m := &memStore{rows: map[string]*inquiry.Inquiry{}}
	for _, i := range seed {
		m.rows[i.InquiryID] = i
	}
	return m
}

func (m *memStore) repo() *inquirymock.Repo {
	get := func(_ context.Context, id string) (*inquiry.Inquiry, error) {
		i, ok := m.rows[id]
		if !ok {
			return nil, inquiry.ErrNotFound
		}
		return i.Clone(), nil
	}
	return &inquirymock.Repo{
		CreateFn: func(_ context.Context, i *inquiry.Inquiry) error {
			m.rows[i.InquiryID] = i.Clone()
			return nil
		},
		GetByInquiryIDFn:          get,
		GetByInquiryIDForUpdateFn: get,
		SaveFn: func(_ context.Context, i *inquiry.Inquiry) error {
			i.Version++
			m.rows[i.InquiryID] = i.Clone()
			return nil
		},
		ListByTypeFn: func(_ context.Context, t inquiry.Type) ([]inquiry.Inquiry, error) {
			var out []inquiry.Inquiry
			for _, i := range m.rows {
				if i.Type == t {
					out = append(out, *i)
				}
			}
			return out, nil
		},
	}
}

func (m *memStore) repos() uow.Repos {
	return uow.Repos{
		Inquiries: m.repo(),
		Proposals: m.proposalRepo(),
		Loans: &loanmock.Repo{CreateFn: func(_ context.Context, l *loan.BorrowerLoan) error {
			m.loans = append(m.loans, *l)
			return nil
		}},
		Investments: &investmentmock.Repo{CreateFn: func(_ context.Context, v *investment.InvestorInvestment) error {
			m.investments = append(m.investments, *v)
			return nil
		}},
	}
}

func (m *memStore) handler() *InquiryHandler {
	r := m.repos()
	tx := uowmock.Passthrough(r)
	return NewInquiryHandler(inquiryUC.NewUsecase(r.Inquiries, tx), pipelineUC.NewUsecase(tx, logger.Nop()), logger.Nop())
}

func TestInquiryCreate(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{"borrower", map[string]any{"type": "Borrower", "name": "Ayu", "loanAmount": "600000", "frequency": "monthly"}, stdhttp.StatusCreated},
		{"investor hot", map[string]any{"type": "Investor", "name": "Budi", "priority": "Hot", "investmentAmount": 500000}, stdhttp.StatusCreated},
		{"missing name", map[string]any{"type": "Borrower"}, stdhttp.StatusUnprocessableEntity},
		{"unknown type", map[string]any{"type": "Lender", "name": "X"}, stdhttp.StatusUnprocessableEntity},
		{"bad frequency", map[string]any{"type": "Borrower", "name": "X", "frequency": "Weekly"}, stdhttp.StatusUnprocessableEntity},
		{"negative amount", map[string]any{"type": "Borrower", "name": "X", "loanAmount": -1}, stdhttp.StatusUnprocessableEntity},
		{"malformed json", `{"type":`, stdhttp.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMemStore()
			c, rec := newCtx(newEchoWithValidator(), stdhttp.MethodPost, "/inquiries", tt.body)

			if err := m.handler().Create(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d body=%s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != stdhttp.StatusCreated {
				if len(m.rows) != 0 {
					t.Fatalf("nothing should be stored on failure")
				}
				return
			}
			got := decode[inquiry.Inquiry](t, rec)
			if got.Stage != inquiry.StageNew || len(got.InquiryID) != 32 {
				t.Fatalf("unexpected inquiry: %+v", got)
			}
			if got.Priority == "" {
				t.Fatalf("priority must default")
			}
		})
	}
}

func TestInquiryCreate_NormalizesFrequency(t *testing.T) {
	m := newMemStore()
	c, rec := newCtx(newEchoWithValidator(), stdhttp.MethodPost, "/inquiries",
		map[string]any{"type": "Borrower", "name": "Ayu", "frequency": "half_yearly"})
	_ = m.handler().Create(c)

	got := decode[inquiry.Inquiry](t, rec)
	if got.Frequency != "Half-Yearly" || got.Priority != inquiry.PriorityWarm {
		t.Fatalf("frequency=%q priority=%q", got.Frequency, got.Priority)
	}
}

func TestInquiryGet(t *testing.T) {
	m := newMemStore(&inquiry.Inquiry{InquiryID: "INQ-1", Type: inquiry.TypeBorrower, Stage: inquiry.StageNew, Name: "Ayu"})
	h := m.handler()

	c, rec := newCtx(newEchoWithValidator(), stdhttp.MethodGet, "/inquiries/INQ-1", nil, "inquiry_id", "INQ-1")
	_ = h.Get(c)
	if rec.Code != stdhttp.StatusOK || decode[inquiry.Inquiry](t, rec).Name != "Ayu" {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}

	c, rec = newCtx(newEchoWithValidator(), stdhttp.MethodGet, "/inquiries/nope", nil, "inquiry_id", "nope")
	_ = h.Get(c)
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("missing inquiry: status = %d", rec.Code)
	}
}

func TestInquiryUpdate(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantName   string
		wantStage  inquiry.Stage
	}{
		{"rename", map[string]any{"name": "Ayu Lestari", "priority": "Hot"}, stdhttp.StatusOK, "Ayu Lestari", inquiry.StageMeeting},
		{"stage is not editable", map[string]any{"stage": "APPROVED"}, stdhttp.StatusUnprocessableEntity, "Ayu", inquiry.StageMeeting},
		{"bad email", map[string]any{"email": "nope"}, stdhttp.StatusUnprocessableEntity, "Ayu", inquiry.StageMeeting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMemStore(&inquiry.Inquiry{InquiryID: "INQ-1", Type: inquiry.TypeBorrower, Stage: inquiry.StageMeeting, Name: "Ayu"})
			c, rec := newCtx(newEchoWithValidator(), stdhttp.MethodPatch, "/inquiries/INQ-1", tt.body, "inquiry_id", "INQ-1")

			_ = m.handler().Update(c)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d body=%s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			stored := m.rows["INQ-1"]
			if stored.Name != tt.wantName || stored.Stage != tt.wantStage {
				t.Fatalf("stored = %q/%s", stored.Name, stored.Stage)
			}
		})
	}
}

func TestInquiryPipeline(t *testing.T) {
	m := newMemStore(
		&inquiry.Inquiry{InquiryID: "B1", Type: inquiry.TypeBorrower, Stage: inquiry.StageNew},
		&inquiry.Inquiry{InquiryID: "B2", Type: inquiry.TypeBorrower, Stage: inquiry.StageVerified},
		&inquiry.Inquiry{InquiryID: "V1", Type: inquiry.TypeInvestor, Stage: inquiry.StageNew},
	)
	h := m.handler()

	c, rec := newCtx(newEchoWithValidator(), stdhttp.MethodGet, "/pipeline/borrower", nil, "type", "borrower")
	_ = h.Pipeline(c)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	board := decode[struct {
		Type   inquiry.Type            `json:"type"`
		Stages []inquiryUC.StageColumn `json:"stages"`
	}](t, rec)
	if board.Type != inquiry.TypeBorrower || len(board.Stages) != len(inquiry.Stages(inquiry.TypeBorrower)) {
		t.Fatalf("unexpected board: %+v", board)
	}
	if board.Stages[0].Count != 1 || board.Stages[4].Stage != inquiry.StageVerified || board.Stages[4].Count != 1 {
		t.Fatalf("unexpected columns: %+v", board.Stages)
	}

	c, rec = newCtx(newEchoWithValidator(), stdhttp.MethodGet, "/pipeline/lenders", nil, "type", "lenders")
	_ = h.Pipeline(c)
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("unknown type: status = %d", rec.Code)
	}
}

func TestInquiryTransition(t *testing.T) {
	borrowerAt := func(s inquiry.Stage) *inquiry.Inquiry {
		return &inquiry.Inquiry{InquiryID: "INQ-1", Type: inquiry.TypeBorrower, Stage: s, Version: 3}
	}
	investorAt := func(s inquiry.Stage) *inquiry.Inquiry {
		return &inquiry.Inquiry{InquiryID: "INQ-1", Type: inquiry.TypeInvestor, Stage: s, InvestmentAmount: decimal.NewFromInt(500000)}
	}

	tests := []struct {
		name        string
		seed        *inquiry.Inquiry
		body        any
		wantStatus  int
		wantOutcome string
		wantStage   inquiry.Stage
	}{
		{"forward move", borrowerAt(inquiry.StageNew), map[string]any{"stage": "CONTACTED"}, stdhttp.StatusOK, "stage_changed", inquiry.StageContacted},
		{"same stage is noop", borrowerAt(inquiry.StageNew), map[string]any{"stage": "NEW"}, stdhttp.StatusOK, "noop", inquiry.StageNew},
		{"proposed starts negotiation", borrowerAt(inquiry.StageVerified), map[string]any{"stage": "PROPOSED"}, stdhttp.StatusOK, "start_negotiation", inquiry.StageVerified},
		{"unknown stage", borrowerAt(inquiry.StageNew), map[string]any{"stage": "RATE_DISCUSSED"}, stdhttp.StatusUnprocessableEntity, "", inquiry.StageNew},
		{"stale expected stage", borrowerAt(inquiry.StageMeeting), map[string]any{"stage": "VERIFIED", "expectedStage": "NEW"}, stdhttp.StatusConflict, "", inquiry.StageMeeting},
		{"stale expected version", borrowerAt(inquiry.StageMeeting), map[string]any{"stage": "VERIFIED", "expectedVersion": 2}, stdhttp.StatusConflict, "", inquiry.StageMeeting},
		{"approve without accepted proposal", borrowerAt(inquiry.StageProposed), map[string]any{"stage": "APPROVED"}, stdhttp.StatusConflict, "", inquiry.StageProposed},
		{"agreement asks for terms", investorAt(inquiry.StageRateDiscussed), map[string]any{"stage": "AGREEMENT_DONE"}, stdhttp.StatusOK, "needs_input", inquiry.StageRateDiscussed},
		{
			"agreement creates investment", investorAt(inquiry.StageRateDiscussed),
			map[string]any{"stage": "AGREEMENT_DONE", "investmentTerms": map[string]any{"rate": 8, "tenure": 12, "payoutFrequency": "quarterly"}},
			stdhttp.StatusOK, "create_investment", inquiry.StageAgreementDone,
		},
		{"missing stage", borrowerAt(inquiry.StageNew), map[string]any{}, stdhttp.StatusUnprocessableEntity, "", inquiry.StageNew},
		{"disbursed before any loan", borrowerAt(inquiry.StageVerified), map[string]any{"stage": "DISBURSED"}, stdhttp.StatusUnprocessableEntity, "", inquiry.StageVerified},
		{"fund received before any investment", investorAt(inquiry.StageNew), map[string]any{"stage": "FUND_RECEIVED"}, stdhttp.StatusUnprocessableEntity, "", inquiry.StageNew},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMemStore(tt.seed)
			c, rec := newCtx(newEchoWithValidator(), stdhttp.MethodPost, "/inquiries/INQ-1/transitions", tt.body, "inquiry_id", "INQ-1")

			if err := m.handler().Transition(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d body=%s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantOutcome != "" {
				got := decode[pipelineUC.TransitionDTO](t, rec)
				if string(got.Outcome) != tt.wantOutcome {
					t.Fatalf("outcome = %s, want %s", got.Outcome, tt.wantOutcome)
				}
			}
			if s := m.rows["INQ-1"].Stage; s != tt.wantStage {
				t.Fatalf("stored stage = %s, want %s", s, tt.wantStage)
			}
		})
	}
}

func TestInquiryTransition_InvestmentLinked(t *testing.T) {
	m := newMemStore(&inquiry.Inquiry{InquiryID: "INQ-1", Type: inquiry.TypeInvestor, Stage: inquiry.StageRateDiscussed})
	c, rec := newCtx(newEchoWithValidator(), stdhttp.MethodPost, "/inquiries/INQ-1/transitions", map[string]any{
		"stage":           "AGREEMENT_DONE",
		"investmentTerms": map[string]any{"amount": "250000", "rate": "9.5", "tenure": 6, "payoutFrequency": "Monthly", "startDate": "2026-01-15"},
	}, "inquiry_id", "INQ-1")

	_ = m.handler().Transition(c)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if len(m.investments) != 1 {
		t.Fatalf("investments = %d, want 1", len(m.investments))
	}
	v := m.investments[0]
	if m.rows["INQ-1"].InvestmentID != v.InvestmentID || v.InvestmentID == "" {
		t.Fatalf("inquiry not linked: %q vs %q", m.rows["INQ-1"].InvestmentID, v.InvestmentID)
	}
	if len(v.PayoutSchedule) != 6 || !v.InvestedAmount.Equal(decimal.NewFromInt(250000)) {
		t.Fatalf("unexpected investment: %d entries, amount %s", len(v.PayoutSchedule), v.InvestedAmount)
	}
}
