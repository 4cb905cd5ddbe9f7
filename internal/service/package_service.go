package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "colistrack/internal/errors"
	"colistrack/internal/events"
	"colistrack/internal/model"
	"colistrack/internal/repository"
)

// defaultCurrency backs the user creation path, which zero-fills value.
const defaultCurrency = "USD"

// CreatePackageInput is the full attribute set accepted from an admin.
type CreatePackageInput struct {
	TrackingNumber    string
	UserTrackingID    string
	Origin            string
	Destination       string
	Status            string
	TransportType     string
	WeightKg          float64
	LengthCm          float64
	WidthCm           float64
	HeightCm          float64
	Description       string
	Value             decimal.Decimal
	Currency          string
	ShippingDate      time.Time
	EstimatedDelivery *time.Time
	CurrentLocation   string
	Notes             string
}

// UserCreatePackageInput is the reduced set accepted from a user registering
// their own shipment. Everything else is defaulted server-side.
type UserCreatePackageInput struct {
	TrackingNumber string
	Origin         string
	Destination    string
	TransportType  string
	Description    string
}

// UpdatePackageInput is a partial-field merge; nil fields stay untouched.
type UpdatePackageInput struct {
	Origin            *string
	Destination       *string
	Status            *string
	TransportType     *string
	WeightKg          *float64
	LengthCm          *float64
	WidthCm           *float64
	HeightCm          *float64
	Description       *string
	Value             *decimal.Decimal
	Currency          *string
	ShippingDate      *time.Time
	EstimatedDelivery *time.Time
	ActualDelivery    *time.Time
	CurrentLocation   *string
	Notes             *string
}

// PackageService implements the package lifecycle: creation on the admin and
// user paths, reads, partial updates with status transition checks, hard
// deletes, append-only history, and the admin stats aggregate.
type PackageService interface {
	Create(ctx context.Context, input CreatePackageInput, createdBy uuid.UUID) (*model.Package, error)
	CreateForUser(ctx context.Context, input UserCreatePackageInput, ownerTrackingID string, createdBy uuid.UUID) (*model.Package, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Package, error)
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*model.Package, error)
	ListByOwner(ctx context.Context, userTrackingID string) ([]model.Package, error)
	ListAll(ctx context.Context) ([]model.Package, error)
	Update(ctx context.Context, id uuid.UUID, input UpdatePackageInput) (*model.Package, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AppendHistory(ctx context.Context, packageID uuid.UUID, status, location, description string, createdBy uuid.UUID) (*model.TrackingEvent, error)
	ListHistory(ctx context.Context, packageID uuid.UUID) ([]model.TrackingEvent, error)
	Stats(ctx context.Context) (*model.PackageStats, error)
}

type packageService struct {
	packageRepo repository.PackageRepository
	eventRepo   repository.TrackingEventRepository
	userRepo    repository.UserRepository
	publisher   events.Publisher
}

// NewPackageService creates a new package service.
func NewPackageService(
	packageRepo repository.PackageRepository,
	eventRepo repository.TrackingEventRepository,
	userRepo repository.UserRepository,
	publisher events.Publisher,
) PackageService {
	return &packageService{
		packageRepo: packageRepo,
		eventRepo:   eventRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// Create stores a package from the admin path. Required fields are the
// tracking number, owner identifier, origin and destination; the owner must
// reference an existing user-role account. Status defaults to pending when
// omitted and may otherwise be any valid value (admins back-fill shipments
// already underway).
func (s *packageService) Create(ctx context.Context, input CreatePackageInput, createdBy uuid.UUID) (*model.Package, error) {
	if input.TrackingNumber == "" || input.UserTrackingID == "" || input.Origin == "" || input.Destination == "" {
		return nil, fmt.Errorf("%w: tracking number, owner, origin and destination", apperrors.ErrMissingRequiredFields)
	}

	status := input.Status
	if status == "" {
		status = model.StatusPending
	}
	if !model.ValidStatus(status) {
		return nil, apperrors.ErrInvalidStatus
	}
	transport := input.TransportType
	if transport == "" {
		transport = model.TransportMaritime
	}
	if !model.ValidTransport(transport) {
		return nil, apperrors.ErrInvalidTransport
	}

	owner, err := s.userRepo.FindByTrackingID(ctx, input.UserTrackingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnknownOwner
		}
		return nil, fmt.Errorf("resolve owner: %w", err)
	}
	if owner.Role != model.RoleUser {
		return nil, apperrors.ErrUnknownOwner
	}

	if err := s.ensureTrackingNumberFree(ctx, input.TrackingNumber); err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	shippingDate := input.ShippingDate
	if shippingDate.IsZero() {
		shippingDate = time.Now()
	}

	pkg := &model.Package{
		ID:                uuid.New(),
		TrackingNumber:    input.TrackingNumber,
		UserTrackingID:    input.UserTrackingID,
		Origin:            input.Origin,
		Destination:       input.Destination,
		Status:            status,
		TransportType:     transport,
		WeightKg:          input.WeightKg,
		LengthCm:          input.LengthCm,
		WidthCm:           input.WidthCm,
		HeightCm:          input.HeightCm,
		Description:       input.Description,
		Value:             input.Value,
		Currency:          currency,
		ShippingDate:      shippingDate,
		EstimatedDelivery: input.EstimatedDelivery,
		CurrentLocation:   input.CurrentLocation,
		Notes:             input.Notes,
		CreatedBy:         createdBy,
	}

	if err := s.packageRepo.Create(ctx, pkg); err != nil {
		return nil, fmt.Errorf("create package: %w", err)
	}

	s.publisher.PublishPackageEvent(ctx, events.PackageEvent{
		Kind:           events.KindCreated,
		PackageID:      pkg.ID.String(),
		UserTrackingID: pkg.UserTrackingID,
		Snapshot:       events.SnapshotOf(pkg),
	})

	return pkg, nil
}

// CreateForUser stores a package on behalf of its owner. The owner identifier
// and defaults are injected server-side regardless of what the caller sends:
// status pending, zero weight/dimensions/value, USD, shipping date now.
func (s *packageService) CreateForUser(ctx context.Context, input UserCreatePackageInput, ownerTrackingID string, createdBy uuid.UUID) (*model.Package, error) {
	if ownerTrackingID == "" {
		return nil, apperrors.ErrMissingTrackingID
	}
	if input.TrackingNumber == "" || input.Origin == "" || input.Destination == "" {
		return nil, fmt.Errorf("%w: tracking number, origin and destination", apperrors.ErrMissingRequiredFields)
	}
	transport := input.TransportType
	if transport == "" {
		transport = model.TransportMaritime
	}
	if !model.ValidTransport(transport) {
		return nil, apperrors.ErrInvalidTransport
	}

	if err := s.ensureTrackingNumberFree(ctx, input.TrackingNumber); err != nil {
		return nil, err
	}

	pkg := &model.Package{
		ID:             uuid.New(),
		TrackingNumber: input.TrackingNumber,
		UserTrackingID: ownerTrackingID,
		Origin:         input.Origin,
		Destination:    input.Destination,
		Status:         model.StatusPending,
		TransportType:  transport,
		Description:    input.Description,
		Value:          decimal.Zero,
		Currency:       defaultCurrency,
		ShippingDate:   time.Now(),
		CreatedBy:      createdBy,
	}

	if err := s.packageRepo.Create(ctx, pkg); err != nil {
		return nil, fmt.Errorf("create package: %w", err)
	}

	s.publisher.PublishPackageEvent(ctx, events.PackageEvent{
		Kind:           events.KindCreated,
		PackageID:      pkg.ID.String(),
		UserTrackingID: pkg.UserTrackingID,
		Snapshot:       events.SnapshotOf(pkg),
	})

	return pkg, nil
}

func (s *packageService) ensureTrackingNumberFree(ctx context.Context, trackingNumber string) error {
	_, err := s.packageRepo.FindByTrackingNumber(ctx, trackingNumber)
	if err == nil {
		return apperrors.ErrDuplicateTrackingNumber
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return fmt.Errorf("check tracking number: %w", err)
}

func (s *packageService) GetByID(ctx context.Context, id uuid.UUID) (*model.Package, error) {
	pkg, err := s.packageRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPackageNotFound
		}
		return nil, err
	}
	return pkg, nil
}

func (s *packageService) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*model.Package, error) {
	pkg, err := s.packageRepo.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPackageNotFound
		}
		return nil, err
	}
	return pkg, nil
}

func (s *packageService) ListByOwner(ctx context.Context, userTrackingID string) ([]model.Package, error) {
	return s.packageRepo.ListByOwner(ctx, userTrackingID)
}

func (s *packageService) ListAll(ctx context.Context) ([]model.Package, error) {
	return s.packageRepo.ListAll(ctx)
}

// Update applies a partial-field merge. updated_at is stamped on every call,
// whatever the field set. A status change must follow the shipment lifecycle;
// moving to delivered stamps the actual delivery date when the caller did not
// supply one.
func (s *packageService) Update(ctx context.Context, id uuid.UUID, input UpdatePackageInput) (*model.Package, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if input.Status != nil {
		if !model.ValidStatus(*input.Status) {
			return nil, apperrors.ErrInvalidStatus
		}
		if !model.CanTransition(current.Status, *input.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, current.Status, *input.Status)
		}
		fields["status"] = *input.Status
		if *input.Status == model.StatusDelivered && input.ActualDelivery == nil {
			now := time.Now()
			fields["actual_delivery"] = &now
		}
	}
	if input.TransportType != nil {
		if !model.ValidTransport(*input.TransportType) {
			return nil, apperrors.ErrInvalidTransport
		}
		fields["transport_type"] = *input.TransportType
	}
	if input.Origin != nil {
		fields["origin"] = *input.Origin
	}
	if input.Destination != nil {
		fields["destination"] = *input.Destination
	}
	if input.WeightKg != nil {
		fields["weight_kg"] = *input.WeightKg
	}
	if input.LengthCm != nil {
		fields["length_cm"] = *input.LengthCm
	}
	if input.WidthCm != nil {
		fields["width_cm"] = *input.WidthCm
	}
	if input.HeightCm != nil {
		fields["height_cm"] = *input.HeightCm
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Value != nil {
		fields["value"] = *input.Value
	}
	if input.Currency != nil {
		fields["currency"] = *input.Currency
	}
	if input.ShippingDate != nil {
		fields["shipping_date"] = *input.ShippingDate
	}
	if input.EstimatedDelivery != nil {
		fields["estimated_delivery"] = input.EstimatedDelivery
	}
	if input.ActualDelivery != nil {
		fields["actual_delivery"] = input.ActualDelivery
	}
	if input.CurrentLocation != nil {
		fields["current_location"] = *input.CurrentLocation
	}
	if input.Notes != nil {
		fields["notes"] = *input.Notes
	}

	if err := s.packageRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("update package: %w", err)
	}

	updated, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishPackageEvent(ctx, events.PackageEvent{
		Kind:           events.KindUpdated,
		PackageID:      updated.ID.String(),
		UserTrackingID: updated.UserTrackingID,
		Snapshot:       events.SnapshotOf(updated),
	})

	return updated, nil
}

// Delete hard-deletes a package. Deleting an ID that no longer exists is a
// no-op success.
func (s *packageService) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := s.packageRepo.FindByID(ctx, id)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := s.packageRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete package: %w", err)
	}

	if current != nil {
		s.publisher.PublishPackageEvent(ctx, events.PackageEvent{
			Kind:           events.KindDeleted,
			PackageID:      id.String(),
			UserTrackingID: current.UserTrackingID,
		})
	}

	return nil
}

// AppendHistory records an immutable tracking event. The parent package is
// not required to exist and the entry's status is not validated against it;
// history is a raw event log.
func (s *packageService) AppendHistory(ctx context.Context, packageID uuid.UUID, status, location, description string, createdBy uuid.UUID) (*model.TrackingEvent, error) {
	event := &model.TrackingEvent{
		ID:          uuid.New(),
		PackageID:   packageID,
		Status:      status,
		Location:    location,
		Description: description,
		Timestamp:   time.Now(),
		CreatedBy:   createdBy,
	}

	if err := s.eventRepo.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("append tracking history: %w", err)
	}

	notification := events.PackageEvent{
		Kind:      events.KindHistoryAdded,
		PackageID: packageID.String(),
	}
	if pkg, err := s.packageRepo.FindByID(ctx, packageID); err == nil {
		notification.UserTrackingID = pkg.UserTrackingID
	}
	s.publisher.PublishPackageEvent(ctx, notification)

	return event, nil
}

func (s *packageService) ListHistory(ctx context.Context, packageID uuid.UUID) ([]model.TrackingEvent, error) {
	return s.eventRepo.ListByPackage(ctx, packageID)
}

func (s *packageService) Stats(ctx context.Context) (*model.PackageStats, error) {
	return s.packageRepo.Stats(ctx)
}
