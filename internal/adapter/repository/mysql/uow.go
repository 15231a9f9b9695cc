package mysql

import (
	"context"

	"lendingops-backend/internal/domain/inquiry"
	"lendingops-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Inquiries:   &InquiryRepository{db: tx},
		Proposals:   &ProposalRepository{db: tx},
		Loans:       &LoanRepository{db: tx},
		Investments: &InvestmentRepository{db: tx},
		Ledger:      &LedgerRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	})
}

func (u *GormUoW) WithinInquiryTx(ctx context.Context, inquiryID string, fn func(r uow.Repos, i *inquiry.Inquiry) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		// lock the inquiry row up-front so concurrent transitions serialize
		i, err := r.Inquiries.GetByInquiryIDForUpdate(ctx, inquiryID)
		if err != nil {
			return err
		}
		return fn(r, i)
	})
}
