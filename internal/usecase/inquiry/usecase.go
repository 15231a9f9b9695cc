package inquiry

import (
	"context"
	"fmt"
	"time"

	domain "lendingops-backend/internal/domain/inquiry"
	"lendingops-backend/internal/domain/uow"
	"lendingops-backend/pkg/id"
)

type Usecase struct {
	repo  domain.Repository
	uow   uow.UnitOfWork
	newID func() string
	now   func() time.Time
}

func NewUsecase(r domain.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{repo: r, uow: tx, newID: id.NewID32, now: time.Now}
}

// Create registers a new inquiry at stage NEW.
func (u *Usecase) Create(ctx context.Context, in CreateInput) (*domain.Inquiry, error) {
	if !domain.ValidType(in.Type) {
		return nil, fmt.Errorf("%w: unknown inquiry type %q", domain.ErrInvalidTransition, in.Type)
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityWarm
	}
	i := &domain.Inquiry{
		InquiryID:        u.newID(),
		Type:             in.Type,
		Name:             in.Name,
		Email:            in.Email,
		Phone:            in.Phone,
		Company:          in.Company,
		Priority:         in.Priority,
		Stage:            domain.StageNew,
		LoanAmount:       in.LoanAmount,
		InvestmentAmount: in.InvestmentAmount,
		InterestRate:     in.InterestRate,
		TenureMonths:     in.TenureMonths,
		Frequency:        in.Frequency,
	}
	if err := u.repo.Create(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

func (u *Usecase) Get(ctx context.Context, inquiryID string) (*domain.Inquiry, error) {
	return u.repo.GetByInquiryID(ctx, inquiryID)
}

func (u *Usecase) Update(ctx context.Context, inquiryID string, in UpdateInput) (*domain.Inquiry, error) {
	var out *domain.Inquiry
	err := u.uow.WithinInquiryTx(ctx, inquiryID, func(r uow.Repos, i *domain.Inquiry) error {
		apply(i, in)
		if err := r.Inquiries.Save(ctx, i); err != nil {
			return err
		}
		out = i
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PipelineView groups every inquiry of t by stage, in pipeline order. Empty stages are kept.
func (u *Usecase) PipelineView(ctx context.Context, t domain.Type) ([]StageColumn, error) {
	stages := domain.Stages(t)
	if stages == nil {
		return nil, fmt.Errorf("%w: unknown inquiry type %q", domain.ErrInvalidTransition, t)
	}
	all, err := u.repo.ListByType(ctx, t)
	if err != nil {
		return nil, err
	}
	cols := make([]StageColumn, len(stages))
	index := make(map[domain.Stage]int, len(stages))
	for i, s := range stages {
		cols[i] = StageColumn{Stage: s, Inquiries: []domain.Inquiry{}}
		index[s] = i
	}
	for _, inq := range all {
		i, ok := index[inq.Stage]
		if !ok {
			continue
		}
		cols[i].Inquiries = append(cols[i].Inquiries, inq)
		cols[i].Count++
	}
	return cols, nil
}

func apply(i *domain.Inquiry, in UpdateInput) {
	if in.Name != nil {
		i.Name = *in.Name
	}
	if in.Email != nil {
		i.Email = *in.Email
	}
	if in.Phone != nil {
		i.Phone = *in.Phone
	}
	if in.Company != nil {
		i.Company = *in.Company
	}
	if in.Priority != nil {
		i.Priority = *in.Priority
	}
	if in.LoanAmount != nil {
		i.LoanAmount = *in.LoanAmount
	}
	if in.InvestmentAmount != nil {
		i.InvestmentAmount = *in.InvestmentAmount
	}
	if in.InterestRate != nil {
		i.InterestRate = *in.InterestRate
	}
	if in.TenureMonths != nil {
		i.TenureMonths = *in.TenureMonths
	}
	if in.Frequency != nil {
		i.Frequency = *in.Frequency
	}
}
