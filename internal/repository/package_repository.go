package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"colistrack/internal/model"
)

// PackageRepository defines package persistence operations.
type PackageRepository interface {
	Create(ctx context.Context, pkg *model.Package) error
	// UpdateFields applies a partial-field merge by primary key. The caller
	// stamps updated_at through the field map.
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Package, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*model.Package, error)
	ListByOwner(ctx context.Context, userTrackingID string) ([]model.Package, error)
	ListAll(ctx context.Context) ([]model.Package, error)
	Stats(ctx context.Context) (*model.PackageStats, error)
}

type packageRepository struct {
	db *gorm.DB
}

// NewPackageRepository builds a GORM-backed repository.
func NewPackageRepository(db *gorm.DB) PackageRepository {
	return &packageRepository{db: db}
}

func (r *packageRepository) Create(ctx context.Context, pkg *model.Package) error {
	return r.db.WithContext(ctx).Create(pkg).Error
}

func (r *packageRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Package{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Delete hard-deletes by ID. Deleting a missing ID is a no-op success.
func (r *packageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Package{}, "id = ?", id).Error
}

func (r *packageRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Package, error) {
	var pkg model.Package
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&pkg).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}

// FindByTrackingNumber is a point lookup; returns gorm.ErrRecordNotFound
// when no package carries the number.
func (r *packageRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*model.Package, error) {
	var pkg model.Package
	if err := r.db.WithContext(ctx).Where("tracking_number = ?", trackingNumber).First(&pkg).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *packageRepository) ListByOwner(ctx context.Context, userTrackingID string) ([]model.Package, error) {
	var packages []model.Package
	if err := r.db.WithContext(ctx).
		Where("user_tracking_id = ?", userTrackingID).
		Order("created_at DESC").
		Find(&packages).Error; err != nil {
		return nil, err
	}
	return packages, nil
}

func (r *packageRepository) ListAll(ctx context.Context) ([]model.Package, error) {
	var packages []model.Package
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&packages).Error; err != nil {
		return nil, err
	}
	return packages, nil
}

func (r *packageRepository) Stats(ctx context.Context) (*model.PackageStats, error) {
	var stats model.PackageStats
	db := r.db.WithContext(ctx).Model(&model.Package{})

	if err := db.Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	counts := []struct {
		column string
		value  string
		target *int64
	}{
		{"status", model.StatusPending, &stats.Pending},
		{"status", model.StatusInTransit, &stats.InTransit},
		{"status", model.StatusCustoms, &stats.Customs},
		{"status", model.StatusDelivered, &stats.Delivered},
		{"status", model.StatusLost, &stats.Lost},
		{"transport_type", model.TransportMaritime, &stats.Maritime},
		{"transport_type", model.TransportAerien, &stats.Aerien},
	}
	for _, c := range counts {
		if err := r.db.WithContext(ctx).Model(&model.Package{}).
			Where(c.column+" = ?", c.value).
			Count(c.target).Error; err != nil {
			return nil, err
		}
	}
	return &stats, nil
}
