package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	apperrors "colistrack/internal/errors"
	"colistrack/internal/model"
	"colistrack/internal/repository"
	"colistrack/internal/storage"
)

// UploadInput carries one incoming file.
type UploadInput struct {
	Kind        string
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// AttachmentService stores package documents (invoices, delivery proofs,
// photos) in the blob store and records their metadata.
type AttachmentService interface {
	Upload(ctx context.Context, packageID uuid.UUID, input UploadInput, uploadedBy uuid.UUID) (*model.Attachment, error)
	ListByPackage(ctx context.Context, packageID uuid.UUID) ([]model.Attachment, error)
	Open(ctx context.Context, id uuid.UUID) (*model.Attachment, io.ReadCloser, error)
}

type attachmentService struct {
	repo        repository.AttachmentRepository
	packageRepo repository.PackageRepository
	store       *storage.Store
}

// NewAttachmentService creates a new attachment service.
func NewAttachmentService(repo repository.AttachmentRepository, packageRepo repository.PackageRepository, store *storage.Store) AttachmentService {
	return &attachmentService{
		repo:        repo,
		packageRepo: packageRepo,
		store:       store,
	}
}

// allowedTypes returns the content-type allow-list for an attachment kind.
// Photos take images only; invoices and delivery proofs also take PDFs.
func allowedTypes(kind string) []string {
	if kind == model.AttachmentPackagePhoto {
		return storage.AllowedImageTypes
	}
	return storage.AllowedDocumentTypes
}

// Upload validates the file against the kind's allow-list and the size cap,
// writes the bytes to the blob store, then records the metadata row. The
// package must exist; the two writes after that are independent.
func (s *attachmentService) Upload(ctx context.Context, packageID uuid.UUID, input UploadInput, uploadedBy uuid.UUID) (*model.Attachment, error) {
	if !model.ValidAttachmentKind(input.Kind) {
		return nil, fmt.Errorf("%w: unknown kind %q", apperrors.ErrFileTypeNotAllowed, input.Kind)
	}
	if !storage.ValidType(input.ContentType, allowedTypes(input.Kind)) {
		return nil, apperrors.ErrFileTypeNotAllowed
	}
	if !storage.ValidSize(input.Size) {
		return nil, apperrors.ErrFileTooLarge
	}

	if _, err := s.packageRepo.FindByID(ctx, packageID); err != nil {
		return nil, apperrors.ErrPackageNotFound
	}

	key := storage.ObjectKey(input.Kind, packageID.String(), input.FileName)
	written, err := s.store.Save(key, io.LimitReader(input.Content, storage.MaxFileSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	attachment := &model.Attachment{
		ID:          uuid.New(),
		PackageID:   packageID,
		Kind:        input.Kind,
		FileName:    input.FileName,
		ObjectKey:   key,
		ContentType: input.ContentType,
		SizeBytes:   written,
		UploadedBy:  uploadedBy,
		UploadedAt:  time.Now(),
	}

	if err := s.repo.Create(ctx, attachment); err != nil {
		// The stored bytes are orphaned on purpose: the two writes are not
		// transactional.
		return nil, fmt.Errorf("record attachment: %w", err)
	}

	return attachment, nil
}

func (s *attachmentService) ListByPackage(ctx context.Context, packageID uuid.UUID) ([]model.Attachment, error) {
	return s.repo.ListByPackage(ctx, packageID)
}

// Open returns the metadata and a reader over the stored bytes.
func (s *attachmentService) Open(ctx context.Context, id uuid.UUID) (*model.Attachment, io.ReadCloser, error) {
	attachment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, apperrors.ErrAttachmentNotFound
	}
	reader, err := s.store.Open(attachment.ObjectKey)
	if err != nil {
		return nil, nil, fmt.Errorf("open stored file: %w", err)
	}
	return attachment, reader, nil
}
