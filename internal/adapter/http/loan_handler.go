package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"lendingops-backend/internal/domain/investment"
	"lendingops-backend/internal/domain/loan"
	investmentUC "lendingops-backend/internal/usecase/investment"
	loanUC "lendingops-backend/internal/usecase/loan"
	"lendingops-backend/pkg/logger"
)

// LoanHandler serves both instrument kinds: borrower loans and investor investments.
type LoanHandler struct {
	loans       *loanUC.Usecase
	investments *investmentUC.Usecase
	log         *logger.Logger
}

func NewLoanHandler(loans *loanUC.Usecase, investments *investmentUC.Usecase, log *logger.Logger) *LoanHandler {
	return &LoanHandler{loans: loans, investments: investments, log: log}
}

type ledgerEntryReq struct {
	SequenceNumber int             `json:"sequenceNumber" validate:"required,gte=1"`
	Interest       decimal.Decimal `json:"interest"       validate:"gte=0,dec2"`
	Principal      decimal.Decimal `json:"principal"      validate:"gte=0,dec2"`
	// RFC 3339; empty means now
	PaidAt string `json:"paidAt" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

func (r ledgerEntryReq) paidAt() time.Time {
	t, _ := time.Parse(time.RFC3339, r.PaidAt)
	return t
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	out, err := h.loans.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) ListLoans(c echo.Context) error {
	var statuses []loan.Status
	if s := c.QueryParam("status"); s != "" {
		statuses = append(statuses, loan.Status(s))
	}
	out, err := h.loans.List(c.Request().Context(), statuses...)
	if err != nil {
		return fail(c, h.log, err)
	}
	if out == nil {
		out = []loan.BorrowerLoan{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) RecordCollection(c echo.Context) error {
	var req ledgerEntryReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.loans.RecordCollection(c.Request().Context(), loanUC.CollectionInput{
		LoanID:         c.Param("loan_id"),
		SequenceNumber: req.SequenceNumber,
		Interest:       req.Interest,
		Principal:      req.Principal,
		PaidAt:         req.paidAt(),
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *LoanHandler) GetInvestment(c echo.Context) error {
	out, err := h.investments.Get(c.Request().Context(), c.Param("investment_id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) ListInvestments(c echo.Context) error {
	var statuses []investment.Status
	if s := c.QueryParam("status"); s != "" {
		statuses = append(statuses, investment.Status(s))
	}
	out, err := h.investments.List(c.Request().Context(), statuses...)
	if err != nil {
		return fail(c, h.log, err)
	}
	if out == nil {
		out = []investment.InvestorInvestment{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) RecordPayout(c echo.Context) error {
	var req ledgerEntryReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.investments.RecordPayout(c.Request().Context(), investmentUC.PayoutInput{
		InvestmentID:   c.Param("investment_id"),
		SequenceNumber: req.SequenceNumber,
		Interest:       req.Interest,
		Principal:      req.Principal,
		PaidAt:         req.paidAt(),
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, out)
}
