package http

import (
	"github.com/labstack/echo/v4"
)

// Handlers bundles everything Register mounts.
type Handlers struct {
	Base        *Handler
	Inquiries   *InquiryHandler
	Proposals   *ProposalHandler
	Instruments *LoanHandler
}

// Register mounts the API. idem guards every mutating route.
func Register(e *echo.Echo, h Handlers, idem echo.MiddlewareFunc) {
	e.GET("/health", h.Base.Health)
	e.GET("/profit", h.Base.Profit)

	e.POST("/inquiries", h.Inquiries.Create, idem)
	e.GET("/inquiries/:inquiry_id", h.Inquiries.Get)
	e.PATCH("/inquiries/:inquiry_id", h.Inquiries.Update, idem)
	e.POST("/inquiries/:inquiry_id/transitions", h.Inquiries.Transition, idem)
	e.GET("/pipeline/:type", h.Inquiries.Pipeline)

	e.POST("/inquiries/:inquiry_id/proposals", h.Proposals.Send, idem)
	e.GET("/inquiries/:inquiry_id/proposals", h.Proposals.List)
	e.POST("/proposals/:proposal_id/accept", h.Proposals.Accept, idem)
	e.POST("/proposals/:proposal_id/reject", h.Proposals.Reject, idem)
	e.POST("/proposals/:proposal_id/counter", h.Proposals.Counter, idem)

	e.GET("/loans", h.Instruments.ListLoans)
	e.GET("/loans/:loan_id", h.Instruments.GetLoan)
	e.POST("/loans/:loan_id/collections", h.Instruments.RecordCollection, idem)
	e.GET("/investments", h.Instruments.ListInvestments)
	e.GET("/investments/:investment_id", h.Instruments.GetInvestment)
	e.POST("/investments/:investment_id/payouts", h.Instruments.RecordPayout, idem)
}
