package inquiry

import "context"

type Repository interface {
	Create(ctx context.Context, i *Inquiry) error
	GetByInquiryID(ctx context.Context, inquiryID string) (*Inquiry, error)
	// lock the row for the rest of the transaction
	GetByInquiryIDForUpdate(ctx context.Context, inquiryID string) (*Inquiry, error)
	// Save is optimistic: it fails with ErrStaleState when the stored version moved on.
	Save(ctx context.Context, i *Inquiry) error
	ListByType(ctx context.Context, t Type) ([]Inquiry, error)
}
