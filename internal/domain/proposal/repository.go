package proposal

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p *Proposal) error
	Save(ctx context.Context, p *Proposal) error
	GetByProposalID(ctx context.Context, proposalID string) (*Proposal, error)
	// ListByInquiryID returns every proposal for the inquiry, oldest first.
	ListByInquiryID(ctx context.Context, inquiryID string) ([]Proposal, error)
	// ListOpenBefore returns open proposals whose last activity is older than cutoff.
	ListOpenBefore(ctx context.Context, cutoff time.Time) ([]Proposal, error)
}
