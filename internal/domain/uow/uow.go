package uow

import (
	"context"

	"lendingops-backend/internal/domain/inquiry"
	"lendingops-backend/internal/domain/investment"
	"lendingops-backend/internal/domain/ledger"
	"lendingops-backend/internal/domain/loan"
	"lendingops-backend/internal/domain/proposal"
)

// Repos are bound to the transaction that handed them out.
type Repos struct {
	Inquiries   inquiry.Repository
	Proposals   proposal.Repository
	Loans       loan.Repository
	Investments investment.Repository
	Ledger      ledger.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the inquiry row first, then pass it in; every write for one inquiry goes through here
	WithinInquiryTx(ctx context.Context, inquiryID string, fn func(r Repos, i *inquiry.Inquiry) error) error
}
