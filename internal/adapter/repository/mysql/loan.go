package mysql

import (
	"context"

	loanDomain "lendingops-backend/internal/domain/loan"
	"lendingops-backend/internal/domain/schedule"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.BorrowerLoan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.BorrowerLoan, error) {
	var out loanDomain.BorrowerLoan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, loanDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.BorrowerLoan, error) {
	var out loanDomain.BorrowerLoan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, loanDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *LoanRepository) List(ctx context.Context, statuses ...loanDomain.Status) ([]loanDomain.BorrowerLoan, error) {
	var out []loanDomain.BorrowerLoan
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	return out, q.Find(&out).Error
}

func (r *LoanRepository) SetEntryStatus(ctx context.Context, loanID string, seq int, st schedule.EntryStatus) error {
	var l loanDomain.BorrowerLoan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&l)
	if res.Error != nil {
		return notFound(res.Error, loanDomain.ErrNotFound)
	}
	if seq < 1 || seq > len(l.RepaymentSchedule) {
		return loanDomain.ErrScheduleEntry
	}
	l.RepaymentSchedule[seq-1].Status = st
	return r.db.WithContext(ctx).Model(&l).Update("repayment_schedule", l.RepaymentSchedule).Error
}
