package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"lendingops-backend/internal/domain/proposal"
	proposalUC "lendingops-backend/internal/usecase/proposal"
	"lendingops-backend/pkg/logger"
)

type ProposalHandler struct {
	uc  *proposalUC.Usecase
	log *logger.Logger
}

func NewProposalHandler(uc *proposalUC.Usecase, log *logger.Logger) *ProposalHandler {
	return &ProposalHandler{uc: uc, log: log}
}

type termsReq struct {
	Amount    decimal.Decimal `json:"amount"    validate:"gt=0,dec2"`
	Rate      decimal.Decimal `json:"rate"      validate:"gt=0,lte=100"`
	RateType  string          `json:"rateType"  validate:"omitempty,oneof=monthly yearly"`
	Tenure    int             `json:"tenure"    validate:"gt=0,lte=600"`
	Frequency string          `json:"frequency" validate:"required,frequency"`
}

func (t termsReq) terms() proposal.Terms {
	rt := t.RateType
	if rt == "" {
		rt = "yearly"
	}
	return proposal.Terms{
		Amount:       t.Amount,
		Rate:         t.Rate,
		RateType:     rt,
		TenureMonths: t.Tenure,
		Frequency:    normalizeFrequency(t.Frequency),
	}
}

type sendProposalReq struct {
	Original *termsReq `json:"originalTerms"`
	Proposed termsReq  `json:"proposedTerms"`
	Notes    string    `json:"notes" validate:"lte=2000"`
}

type counterProposalReq struct {
	Terms termsReq `json:"terms"`
	Notes string   `json:"notes" validate:"lte=2000"`
}

func (h *ProposalHandler) Send(c echo.Context) error {
	var req sendProposalReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	in := proposalUC.SendInput{
		InquiryID: c.Param("inquiry_id"),
		Proposed:  req.Proposed.terms(),
		Notes:     req.Notes,
	}
	if req.Original != nil {
		o := req.Original.terms()
		in.Original = &o
	}
	out, err := h.uc.Send(c.Request().Context(), in)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ProposalHandler) List(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), c.Param("inquiry_id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	if out == nil {
		out = []proposal.Proposal{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProposalHandler) Accept(c echo.Context) error {
	out, err := h.uc.Accept(c.Request().Context(), c.Param("proposal_id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProposalHandler) Reject(c echo.Context) error {
	out, err := h.uc.Reject(c.Request().Context(), c.Param("proposal_id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProposalHandler) Counter(c echo.Context) error {
	var req counterProposalReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.uc.Counter(c.Request().Context(), proposalUC.CounterInput{
		ProposalID: c.Param("proposal_id"),
		Terms:      req.Terms.terms(),
		Notes:      req.Notes,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}
