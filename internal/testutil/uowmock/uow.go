package uowmock

import (
	"context"
	"errors"

	"lendingops-backend/internal/domain/inquiry"
	"lendingops-backend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn        func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinInquiryTxFn func(ctx context.Context, inquiryID string, fn func(r uow.Repos, i *inquiry.Inquiry) error) error
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinInquiryTx(fn func(context.Context, string, func(uow.Repos, *inquiry.Inquiry) error) error) *UoW {
	m.WithinInquiryTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Passthrough runs every callback against r without a transaction. WithinInquiryTx loads the
// inquiry through r.Inquiries.GetByInquiryIDForUpdate like the real one does.
func Passthrough(r uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error { return fn(r) },
		WithinInquiryTxFn: func(ctx context.Context, inquiryID string, fn func(uow.Repos, *inquiry.Inquiry) error) error {
			i, err := r.Inquiries.GetByInquiryIDForUpdate(ctx, inquiryID)
			if err != nil {
				return err
			}
			return fn(r, i)
		},
	}
}

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinInquiryTx(ctx context.Context, inquiryID string, fn func(r uow.Repos, i *inquiry.Inquiry) error) error {
	if m.WithinInquiryTxFn != nil {
		return m.WithinInquiryTxFn(ctx, inquiryID, fn)
	}
	return errUnimplemented
}
