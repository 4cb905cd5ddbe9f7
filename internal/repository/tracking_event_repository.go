package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"colistrack/internal/model"
)

// TrackingEventRepository defines history persistence operations. The log is
// append-only: there are no update or delete methods.
type TrackingEventRepository interface {
	Append(ctx context.Context, event *model.TrackingEvent) error
	ListByPackage(ctx context.Context, packageID uuid.UUID) ([]model.TrackingEvent, error)
}

type trackingEventRepository struct {
	db *gorm.DB
}

// NewTrackingEventRepository builds a GORM-backed repository.
func NewTrackingEventRepository(db *gorm.DB) TrackingEventRepository {
	return &trackingEventRepository{db: db}
}

func (r *trackingEventRepository) Append(ctx context.Context, event *model.TrackingEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *trackingEventRepository) ListByPackage(ctx context.Context, packageID uuid.UUID) ([]model.TrackingEvent, error) {
	var events []model.TrackingEvent
	if err := r.db.WithContext(ctx).
		Where("package_id = ?", packageID).
		Order("timestamp DESC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
