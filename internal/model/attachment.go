package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment kinds, mirrored in the blob store path layout.
const (
	AttachmentInvoice       = "invoice"
	AttachmentDeliveryProof = "delivery-proof"
	AttachmentPackagePhoto  = "package-photo"
)

// ValidAttachmentKind reports whether k is a known attachment kind.
func ValidAttachmentKind(k string) bool {
	switch k {
	case AttachmentInvoice, AttachmentDeliveryProof, AttachmentPackagePhoto:
		return true
	}
	return false
}

// Attachment records a stored file tied to a package. The bytes live in the
// blob store under ObjectKey; this row carries the metadata.
type Attachment struct {
	ID          uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	PackageID   uuid.UUID `json:"package_id" gorm:"type:char(36);not null;index"`
	Kind        string    `json:"kind" gorm:"size:32;not null"`
	FileName    string    `json:"file_name" gorm:"size:255;not null"`
	ObjectKey   string    `json:"object_key" gorm:"size:512;not null"`
	ContentType string    `json:"content_type" gorm:"size:128;not null"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedBy  uuid.UUID `json:"uploaded_by" gorm:"type:char(36)"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// BeforeCreate sets UUID before creating the record.
func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
