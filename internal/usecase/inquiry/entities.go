package inquiry

import (
	"github.com/shopspring/decimal"

	domain "lendingops-backend/internal/domain/inquiry"
)

type CreateInput struct {
	Type             domain.Type
	Name             string
	Email            string
	Phone            string
	Company          string
	Priority         domain.Priority
	LoanAmount       decimal.Decimal
	InvestmentAmount decimal.Decimal
	InterestRate     decimal.Decimal
	TenureMonths     int
	Frequency        string
}

// UpdateInput edits contact and money fields. Nil fields are left alone; the stage is never
// editable here.
type UpdateInput struct {
	Name             *string
	Email            *string
	Phone            *string
	Company          *string
	Priority         *domain.Priority
	LoanAmount       *decimal.Decimal
	InvestmentAmount *decimal.Decimal
	InterestRate     *decimal.Decimal
	TenureMonths     *int
	Frequency        *string
}

// StageColumn is one column of the pipeline board.
type StageColumn struct {
	Stage     domain.Stage     `json:"stage"`
	Count     int              `json:"count"`
	Inquiries []domain.Inquiry `json:"inquiries"`
}
