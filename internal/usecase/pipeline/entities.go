package pipeline

import (
	"lendingops-backend/internal/domain/inquiry"
	"lendingops-backend/internal/domain/investment"
	"lendingops-backend/internal/domain/loan"
	domain "lendingops-backend/internal/domain/pipeline"
)

type TransitionInput struct {
	InquiryID     string
	Target        inquiry.Stage
	ExpectedStage inquiry.Stage
	// ExpectedVersion, when set, must equal the stored inquiry version.
	ExpectedVersion *int64
	LoanTerms       *domain.LoanTerms
	InvestmentTerms *domain.InvestmentTerms
}

type TransitionDTO struct {
	Outcome    domain.Kind                    `json:"outcome"`
	Inquiry    *inquiry.Inquiry               `json:"inquiry"`
	Required   []string                       `json:"required,omitempty"`
	Loan       *loan.BorrowerLoan             `json:"loan,omitempty"`
	Investment *investment.InvestorInvestment `json:"investment,omitempty"`
}
