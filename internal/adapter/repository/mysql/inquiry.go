package mysql

import (
	"context"

	inquiryDomain "lendingops-backend/internal/domain/inquiry"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InquiryRepository struct{ db *gorm.DB }

func NewInquiryRepository(db *gorm.DB) *InquiryRepository { return &InquiryRepository{db: db} }

func (r *InquiryRepository) Create(ctx context.Context, i *inquiryDomain.Inquiry) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *InquiryRepository) GetByInquiryID(ctx context.Context, inquiryID string) (*inquiryDomain.Inquiry, error) {
	var out inquiryDomain.Inquiry
	res := r.db.WithContext(ctx).Where("inquiry_id = ?", inquiryID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, inquiryDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *InquiryRepository) GetByInquiryIDForUpdate(ctx context.Context, inquiryID string) (*inquiryDomain.Inquiry, error) {
	var out inquiryDomain.Inquiry
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("inquiry_id = ?", inquiryID).
		First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, inquiryDomain.ErrNotFound)
	}
	return &out, nil
}

// Save writes every mutable column guarded by the version the caller read.
func (r *InquiryRepository) Save(ctx context.Context, i *inquiryDomain.Inquiry) error {
	prev := i.Version
	i.Version = prev + 1
	res := r.db.WithContext(ctx).Model(i).
		Where("inquiry_id = ? AND version = ?", i.InquiryID, prev).
		Select("*").
		Omit("id", "inquiry_id", "created_at", "deleted_at").
		Updates(i)
	if res.Error != nil {
		i.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		i.Version = prev
		return inquiryDomain.ErrStaleState
	}
	return nil
}

func (r *InquiryRepository) ListByType(ctx context.Context, t inquiryDomain.Type) ([]inquiryDomain.Inquiry, error) {
	var out []inquiryDomain.Inquiry
	res := r.db.WithContext(ctx).
		Where("type = ?", t).
		Order("updated_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}
