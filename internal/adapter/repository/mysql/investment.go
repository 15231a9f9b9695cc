package mysql

import (
	"context"

	investmentDomain "lendingops-backend/internal/domain/investment"
	"lendingops-backend/internal/domain/schedule"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvestmentRepository struct{ db *gorm.DB }

func NewInvestmentRepository(db *gorm.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

func (r *InvestmentRepository) Create(ctx context.Context, v *investmentDomain.InvestorInvestment) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *InvestmentRepository) GetByInvestmentID(ctx context.Context, investmentID string) (*investmentDomain.InvestorInvestment, error) {
	var out investmentDomain.InvestorInvestment
	res := r.db.WithContext(ctx).Where("investment_id = ?", investmentID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, investmentDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *InvestmentRepository) GetByInvestmentIDForUpdate(ctx context.Context, investmentID string) (*investmentDomain.InvestorInvestment, error) {
	var out investmentDomain.InvestorInvestment
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("investment_id = ?", investmentID).
		First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, investmentDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *InvestmentRepository) List(ctx context.Context, statuses ...investmentDomain.Status) ([]investmentDomain.InvestorInvestment, error) {
	var out []investmentDomain.InvestorInvestment
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	return out, q.Find(&out).Error
}

func (r *InvestmentRepository) SetEntryStatus(ctx context.Context, investmentID string, seq int, st schedule.EntryStatus) error {
	var v investmentDomain.InvestorInvestment
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("investment_id = ?", investmentID).
		First(&v)
	if res.Error != nil {
		return notFound(res.Error, investmentDomain.ErrNotFound)
	}
	if seq < 1 || seq > len(v.PayoutSchedule) {
		return investmentDomain.ErrScheduleEntry
	}
	v.PayoutSchedule[seq-1].Status = st
	return r.db.WithContext(ctx).Model(&v).Update("payout_schedule", v.PayoutSchedule).Error
}
