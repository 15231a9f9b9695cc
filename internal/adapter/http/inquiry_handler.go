package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"lendingops-backend/internal/domain/inquiry"
	domainPipeline "lendingops-backend/internal/domain/pipeline"
	"lendingops-backend/internal/domain/schedule"
	inquiryUC "lendingops-backend/internal/usecase/inquiry"
	pipelineUC "lendingops-backend/internal/usecase/pipeline"
	"lendingops-backend/pkg/logger"
)

type InquiryHandler struct {
	inquiries *inquiryUC.Usecase
	pipeline  *pipelineUC.Usecase
	log       *logger.Logger
}

func NewInquiryHandler(inquiries *inquiryUC.Usecase, pipeline *pipelineUC.Usecase, log *logger.Logger) *InquiryHandler {
	return &InquiryHandler{inquiries: inquiries, pipeline: pipeline, log: log}
}

type createInquiryReq struct {
	Type             string          `json:"type"             validate:"required,oneof=Borrower Investor"`
	Name             string          `json:"name"             validate:"required"`
	Email            string          `json:"email"            validate:"omitempty,email"`
	Phone            string          `json:"phone"`
	Company          string          `json:"company"`
	Priority         string          `json:"priority"         validate:"omitempty,oneof=Hot Warm Cold"`
	LoanAmount       decimal.Decimal `json:"loanAmount"       validate:"gte=0,dec2"`
	InvestmentAmount decimal.Decimal `json:"investmentAmount" validate:"gte=0,dec2"`
	InterestRate     decimal.Decimal `json:"interestRate"     validate:"gte=0,lte=100"`
	Tenure           int             `json:"tenure"           validate:"gte=0,lte=600"`
	Frequency        string          `json:"frequency"        validate:"omitempty,frequency"`
}

type updateInquiryReq struct {
	Name             *string          `json:"name"`
	Email            *string          `json:"email"            validate:"omitempty,email"`
	Phone            *string          `json:"phone"`
	Company          *string          `json:"company"`
	Priority         *string          `json:"priority"         validate:"omitempty,oneof=Hot Warm Cold"`
	LoanAmount       *decimal.Decimal `json:"loanAmount"       validate:"omitempty,gte=0,dec2"`
	InvestmentAmount *decimal.Decimal `json:"investmentAmount" validate:"omitempty,gte=0,dec2"`
	InterestRate     *decimal.Decimal `json:"interestRate"     validate:"omitempty,gte=0,lte=100"`
	Tenure           *int             `json:"tenure"           validate:"omitempty,gte=0,lte=600"`
	Frequency        *string          `json:"frequency"        validate:"omitempty,frequency"`
	// rejected: stages only move through transitions
	Stage *string `json:"stage" validate:"isdefault"`
}

type loanTermsReq struct {
	Amount        decimal.Decimal `json:"amount"        validate:"gte=0,dec2"`
	Rate          decimal.Decimal `json:"rate"          validate:"gte=0,lte=100"`
	RateType      string          `json:"rateType"      validate:"omitempty,oneof=monthly yearly"`
	Tenure        int             `json:"tenure"        validate:"gte=0,lte=600"`
	Frequency     string          `json:"frequency"     validate:"omitempty,frequency"`
	RepaymentType string          `json:"repaymentType" validate:"omitempty,oneof=Interest-Only Bullet"`
	StartDate     string          `json:"startDate"     validate:"omitempty,datetime=2006-01-02"`
}

type investmentTermsReq struct {
	Amount          decimal.Decimal `json:"amount"          validate:"gte=0,dec2"`
	Rate            decimal.Decimal `json:"rate"            validate:"gte=0,lte=100"`
	RateType        string          `json:"rateType"        validate:"omitempty,oneof=monthly yearly"`
	Tenure          int             `json:"tenure"          validate:"gte=0,lte=600"`
	PayoutFrequency string          `json:"payoutFrequency" validate:"omitempty,frequency"`
	StartDate       string          `json:"startDate"       validate:"omitempty,datetime=2006-01-02"`
}

type transitionReq struct {
	// not validated here: malformed codes are the pipeline's to reject
	Stage           string              `json:"stage"           validate:"required"`
	ExpectedStage   string              `json:"expectedStage"`
	ExpectedVersion *int64              `json:"expectedVersion"`
	LoanTerms       *loanTermsReq       `json:"loanTerms"`
	InvestmentTerms *investmentTermsReq `json:"investmentTerms"`
}

func (h *InquiryHandler) Create(c echo.Context) error {
	var req createInquiryReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.inquiries.Create(c.Request().Context(), inquiryUC.CreateInput{
		Type:             inquiry.Type(req.Type),
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		Company:          req.Company,
		Priority:         inquiry.Priority(req.Priority),
		LoanAmount:       req.LoanAmount,
		InvestmentAmount: req.InvestmentAmount,
		InterestRate:     req.InterestRate,
		TenureMonths:     req.Tenure,
		Frequency:        normalizeFrequency(req.Frequency),
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *InquiryHandler) Get(c echo.Context) error {
	out, err := h.inquiries.Get(c.Request().Context(), c.Param("inquiry_id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InquiryHandler) Update(c echo.Context) error {
	var req updateInquiryReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	in := inquiryUC.UpdateInput{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		Company:          req.Company,
		LoanAmount:       req.LoanAmount,
		InvestmentAmount: req.InvestmentAmount,
		InterestRate:     req.InterestRate,
		TenureMonths:     req.Tenure,
	}
	if req.Priority != nil {
		p := inquiry.Priority(*req.Priority)
		in.Priority = &p
	}
	if req.Frequency != nil {
		f := normalizeFrequency(*req.Frequency)
		in.Frequency = &f
	}
	out, err := h.inquiries.Update(c.Request().Context(), c.Param("inquiry_id"), in)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Pipeline serves the board for /pipeline/borrower or /pipeline/investor.
func (h *InquiryHandler) Pipeline(c echo.Context) error {
	var t inquiry.Type
	switch strings.ToLower(c.Param("type")) {
	case "borrower", "borrowers":
		t = inquiry.TypeBorrower
	case "investor", "investors":
		t = inquiry.TypeInvestor
	default:
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "type must be borrower or investor"})
	}
	cols, err := h.inquiries.PipelineView(c.Request().Context(), t)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"type": t, "stages": cols})
}

func (h *InquiryHandler) Transition(c echo.Context) error {
	var req transitionReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	in := pipelineUC.TransitionInput{
		InquiryID:       c.Param("inquiry_id"),
		Target:          inquiry.Stage(req.Stage),
		ExpectedStage:   inquiry.Stage(req.ExpectedStage),
		ExpectedVersion: req.ExpectedVersion,
	}
	if lt := req.LoanTerms; lt != nil {
		in.LoanTerms = &domainPipeline.LoanTerms{
			Amount:        lt.Amount,
			Rate:          lt.Rate,
			RateType:      schedule.RateType(lt.RateType),
			TenureMonths:  lt.Tenure,
			Frequency:     schedule.Frequency(normalizeFrequency(lt.Frequency)),
			RepaymentType: schedule.Style(lt.RepaymentType),
			StartDate:     parseDate(lt.StartDate),
		}
	}
	if it := req.InvestmentTerms; it != nil {
		in.InvestmentTerms = &domainPipeline.InvestmentTerms{
			Amount:          it.Amount,
			Rate:            it.Rate,
			RateType:        schedule.RateType(it.RateType),
			TenureMonths:    it.Tenure,
			PayoutFrequency: schedule.Frequency(normalizeFrequency(it.PayoutFrequency)),
			StartDate:       parseDate(it.StartDate),
		}
	}
	out, err := h.pipeline.RequestTransition(c.Request().Context(), in)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// normalizeFrequency stores the canonical spelling; validation already rejected unknown ones.
func normalizeFrequency(s string) string {
	if f, ok := schedule.ParseFrequency(s); ok {
		return string(f)
	}
	return s
}

// parseDate reads an already validated YYYY-MM-DD; empty gives the zero time.
func parseDate(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}
