package mysql

import (
	"context"
	"time"

	proposalDomain "lendingops-backend/internal/domain/proposal"

	"gorm.io/gorm"
)

type ProposalRepository struct{ db *gorm.DB }

func NewProposalRepository(db *gorm.DB) *ProposalRepository { return &ProposalRepository{db: db} }

func (r *ProposalRepository) Create(ctx context.Context, p *proposalDomain.Proposal) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProposalRepository) Save(ctx context.Context, p *proposalDomain.Proposal) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProposalRepository) GetByProposalID(ctx context.Context, proposalID string) (*proposalDomain.Proposal, error) {
	var out proposalDomain.Proposal
	res := r.db.WithContext(ctx).Where("proposal_id = ?", proposalID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, proposalDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ProposalRepository) ListByInquiryID(ctx context.Context, inquiryID string) ([]proposalDomain.Proposal, error) {
	var out []proposalDomain.Proposal
	res := r.db.WithContext(ctx).
		Where("inquiry_id = ?", inquiryID).
		Order("sent_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *ProposalRepository) ListOpenBefore(ctx context.Context, cutoff time.Time) ([]proposalDomain.Proposal, error) {
	var out []proposalDomain.Proposal
	res := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?",
			[]proposalDomain.Status{proposalDomain.StatusSent, proposalDomain.StatusCounter}, cutoff).
		Order("updated_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}
