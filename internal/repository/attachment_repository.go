package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"colistrack/internal/model"
)

// AttachmentRepository defines attachment metadata persistence.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *model.Attachment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Attachment, error)
	ListByPackage(ctx context.Context, packageID uuid.UUID) ([]model.Attachment, error)
}

type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository builds a GORM-backed repository.
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *model.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *attachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Attachment, error) {
	var attachment model.Attachment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) ListByPackage(ctx context.Context, packageID uuid.UUID) ([]model.Attachment, error) {
	var attachments []model.Attachment
	if err := r.db.WithContext(ctx).
		Where("package_id = ?", packageID).
		Order("uploaded_at DESC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}
