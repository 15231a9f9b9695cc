package proposalmock

import (
	"context"
	"time"

	domain "lendingops-backend/internal/domain/proposal"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn          func(ctx context.Context, p *domain.Proposal) error
	SaveFn            func(ctx context.Context, p *domain.Proposal) error
	GetByProposalIDFn func(ctx context.Context, proposalID string) (*domain.Proposal, error)
	ListByInquiryIDFn func(ctx context.Context, inquiryID string) ([]domain.Proposal, error)
	ListOpenBeforeFn  func(ctx context.Context, cutoff time.Time) ([]domain.Proposal, error)
}

func (m *Repo) Create(ctx context.Context, p *domain.Proposal) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, p *domain.Proposal) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByProposalID(ctx context.Context, proposalID string) (*domain.Proposal, error) {
	if m.GetByProposalIDFn != nil {
		return m.GetByProposalIDFn(ctx, proposalID)
	}
	return nil, context.Canceled
}

// ListByInquiryID defaults to an empty history.
func (m *Repo) ListByInquiryID(ctx context.Context, inquiryID string) ([]domain.Proposal, error) {
	if m.ListByInquiryIDFn != nil {
		return m.ListByInquiryIDFn(ctx, inquiryID)
	}
	return nil, nil
}

func (m *Repo) ListOpenBefore(ctx context.Context, cutoff time.Time) ([]domain.Proposal, error) {
	if m.ListOpenBeforeFn != nil {
		return m.ListOpenBeforeFn(ctx, cutoff)
	}
	return nil, nil
}
