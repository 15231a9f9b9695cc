package proposal

import (
	"context"
	"fmt"
	"time"

	"lendingops-backend/internal/domain/inquiry"
	domain "lendingops-backend/internal/domain/proposal"
	"lendingops-backend/internal/domain/uow"
	"lendingops-backend/pkg/id"
	"lendingops-backend/pkg/logger"
)

type Usecase struct {
	proposals domain.Repository
	uow       uow.UnitOfWork
	log       *logger.Logger
	newID     func() string
	now       func() time.Time
}

func NewUsecase(proposals domain.Repository, tx uow.UnitOfWork, log *logger.Logger) *Usecase {
	return &Usecase{proposals: proposals, uow: tx, log: log, newID: id.NewID32, now: time.Now}
}

// Send opens a new proposal. The inquiry's stage is left alone until approval.
func (u *Usecase) Send(ctx context.Context, in SendInput) (*domain.Proposal, error) {
	if !in.Proposed.Complete() {
		return nil, fmt.Errorf("%w: proposed terms are incomplete", domain.ErrInvalidTerms)
	}
	var out *domain.Proposal

	err := u.uow.WithinInquiryTx(ctx, in.InquiryID, func(r uow.Repos, inq *inquiry.Inquiry) error {
		if inq.Type != inquiry.TypeBorrower {
			return fmt.Errorf("%w: proposals are for borrower inquiries", inquiry.ErrInvalidTransition)
		}
		n, err := u.negotiation(ctx, r, inq.InquiryID)
		if err != nil {
			return err
		}
		original := termsOf(inq)
		if in.Original != nil {
			original = *in.Original
		}
		now := u.now()
		p, err := n.Send(original, in.Proposed, in.Notes, now)
		if err != nil {
			return err
		}
		if err := r.Proposals.Create(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.WithFields(map[string]any{"inquiry_id": in.InquiryID, "proposal_id": out.ProposalID}).Info("proposal sent")
	return out, nil
}

func (u *Usecase) Accept(ctx context.Context, proposalID string) (*domain.Proposal, error) {
	return u.respond(ctx, proposalID, func(n *domain.Negotiation, now time.Time) (*domain.Proposal, error) {
		return n.Accept(proposalID, now)
	})
}

func (u *Usecase) Reject(ctx context.Context, proposalID string) (*domain.Proposal, error) {
	return u.respond(ctx, proposalID, func(n *domain.Negotiation, now time.Time) (*domain.Proposal, error) {
		return n.Reject(proposalID, now)
	})
}

func (u *Usecase) Counter(ctx context.Context, in CounterInput) (*domain.Proposal, error) {
	if !in.Terms.Complete() {
		return nil, fmt.Errorf("%w: counter terms are incomplete", domain.ErrInvalidTerms)
	}
	return u.respond(ctx, in.ProposalID, func(n *domain.Negotiation, now time.Time) (*domain.Proposal, error) {
		return n.Counter(in.ProposalID, in.Terms, in.Notes, now)
	})
}

func (u *Usecase) List(ctx context.Context, inquiryID string) ([]domain.Proposal, error) {
	return u.proposals.ListByInquiryID(ctx, inquiryID)
}

// ExpireStale closes every open proposal whose last activity is before cutoff. Proposals that
// moved on in the meantime are skipped. It returns how many were expired.
func (u *Usecase) ExpireStale(ctx context.Context, cutoff time.Time) (int, error) {
	stale, err := u.proposals.ListOpenBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, s := range stale {
		p, err := u.respond(ctx, s.ProposalID, func(n *domain.Negotiation, now time.Time) (*domain.Proposal, error) {
			p := findOpen(n, s.ProposalID)
			if p == nil || !p.LastActivity().Before(cutoff) {
				return nil, nil
			}
			return n.Expire(s.ProposalID, now)
		})
		if err != nil {
			u.log.WithError(err).WithField("proposal_id", s.ProposalID).Warn("expire proposal")
			continue
		}
		if p != nil {
			expired++
		}
	}
	return expired, nil
}

// respond applies one negotiation step to an existing proposal under the inquiry lock. A step
// returning a nil proposal changes nothing.
func (u *Usecase) respond(ctx context.Context, proposalID string, step func(*domain.Negotiation, time.Time) (*domain.Proposal, error)) (*domain.Proposal, error) {
	p, err := u.proposals.GetByProposalID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	var out *domain.Proposal

	err = u.uow.WithinInquiryTx(ctx, p.InquiryID, func(r uow.Repos, _ *inquiry.Inquiry) error {
		n, err := u.negotiation(ctx, r, p.InquiryID)
		if err != nil {
			return err
		}
		changed, err := step(n, u.now())
		if err != nil || changed == nil {
			return err
		}
		if err := r.Proposals.Save(ctx, changed); err != nil {
			return err
		}
		out = changed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Usecase) negotiation(ctx context.Context, r uow.Repos, inquiryID string) (*domain.Negotiation, error) {
	ps, err := r.Proposals.ListByInquiryID(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	return domain.NewNegotiation(inquiryID, ps, u.newID), nil
}

func findOpen(n *domain.Negotiation, proposalID string) *domain.Proposal {
	if p := n.Open(); p != nil && p.ProposalID == proposalID {
		return p
	}
	return nil
}

func termsOf(inq *inquiry.Inquiry) domain.Terms {
	return domain.Terms{
		Amount:       inq.LoanAmount,
		Rate:         inq.InterestRate,
		RateType:     "yearly",
		TenureMonths: inq.TenureMonths,
		Frequency:    inq.Frequency,
	}
}
