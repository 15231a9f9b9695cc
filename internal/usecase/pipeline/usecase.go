package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lendingops-backend/internal/domain/inquiry"
	domain "lendingops-backend/internal/domain/pipeline"
	"lendingops-backend/internal/domain/proposal"
	"lendingops-backend/internal/domain/uow"
	"lendingops-backend/pkg/id"
	"lendingops-backend/pkg/logger"
)

type Usecase struct {
	uow   uow.UnitOfWork
	log   *logger.Logger
	newID func() string
	now   func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, log *logger.Logger) *Usecase {
	return &Usecase{uow: tx, log: log, newID: id.NewID32, now: time.Now}
}

// RequestTransition locks the inquiry, decides the transition and persists its outcome in one
// transaction. NeedsInput, StartNegotiation and NoOp outcomes write nothing.
func (u *Usecase) RequestTransition(ctx context.Context, in TransitionInput) (*TransitionDTO, error) {
	var out *domain.Outcome

	err := u.uow.WithinInquiryTx(ctx, in.InquiryID, func(r uow.Repos, cur *inquiry.Inquiry) error {
		if in.ExpectedVersion != nil && *in.ExpectedVersion != cur.Version {
			return fmt.Errorf("%w: expected version %d, found %d", inquiry.ErrStaleState, *in.ExpectedVersion, cur.Version)
		}

		var g domain.Guards
		if cur.Type == inquiry.TypeBorrower && in.Target == inquiry.StageApproved {
			ps, err := r.Proposals.ListByInquiryID(ctx, cur.InquiryID)
			if err != nil {
				return err
			}
			g.AcceptedProposal = proposal.NewNegotiation(cur.InquiryID, ps, u.newID).Accepted()
		}

		o, err := domain.Transition(cur, domain.Request{
			Target:          in.Target,
			ExpectedStage:   in.ExpectedStage,
			LoanTerms:       in.LoanTerms,
			InvestmentTerms: in.InvestmentTerms,
			Now:             u.now(),
		}, g)
		if err != nil {
			if errors.Is(err, inquiry.ErrInvalidTransition) {
				u.log.WithFields(map[string]any{
					"inquiry_id": cur.InquiryID,
					"stage":      cur.Stage,
					"target":     in.Target,
				}).Warn("transition rejected")
			}
			return err
		}
		out = o
		if !o.Wrote() {
			return nil
		}

		switch o.Kind {
		case domain.KindCreateLoan:
			o.Stamp(u.newID())
			if err := r.Loans.Create(ctx, o.Loan); err != nil {
				return err
			}
			u.log.WithFields(map[string]any{"inquiry_id": cur.InquiryID, "loan_id": o.Loan.LoanID}).Info("loan created")
		case domain.KindCreateInvestment:
			o.Stamp(u.newID())
			if err := r.Investments.Create(ctx, o.Investment); err != nil {
				return err
			}
			u.log.WithFields(map[string]any{"inquiry_id": cur.InquiryID, "investment_id": o.Investment.InvestmentID}).Info("investment created")
		}
		return r.Inquiries.Save(ctx, o.Inquiry)
	})
	if err != nil {
		return nil, err
	}

	return &TransitionDTO{
		Outcome:    out.Kind,
		Inquiry:    out.Inquiry,
		Required:   out.Required,
		Loan:       out.Loan,
		Investment: out.Investment,
	}, nil
}
