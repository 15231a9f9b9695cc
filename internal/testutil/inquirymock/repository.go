package inquirymock

import (
	"context"

	domain "lendingops-backend/internal/domain/inquiry"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return context.Canceled; unset writes succeed.
type Repo struct {
	CreateFn                  func(ctx context.Context, i *domain.Inquiry) error
	GetByInquiryIDFn          func(ctx context.Context, inquiryID string) (*domain.Inquiry, error)
	GetByInquiryIDForUpdateFn func(ctx context.Context, inquiryID string) (*domain.Inquiry, error)
	SaveFn                    func(ctx context.Context, i *domain.Inquiry) error
	ListByTypeFn              func(ctx context.Context, t domain.Type) ([]domain.Inquiry, error)
}

func (m *Repo) Create(ctx context.Context, i *domain.Inquiry) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, i)
	}
	return nil
}

func (m *Repo) GetByInquiryID(ctx context.Context, inquiryID string) (*domain.Inquiry, error) {
	if m.GetByInquiryIDFn != nil {
		return m.GetByInquiryIDFn(ctx, inquiryID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByInquiryIDForUpdate(ctx context.Context, inquiryID string) (*domain.Inquiry, error) {
	if m.GetByInquiryIDForUpdateFn != nil {
		return m.GetByInquiryIDForUpdateFn(ctx, inquiryID)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, i *domain.Inquiry) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, i)
	}
	return nil
}

func (m *Repo) ListByType(ctx context.Context, t domain.Type) ([]domain.Inquiry, error) {
	if m.ListByTypeFn != nil {
		return m.ListByTypeFn(ctx, t)
	}
	return nil, context.Canceled
}
