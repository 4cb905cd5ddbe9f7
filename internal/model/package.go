package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Package status values.
const (
	StatusPending   = "pending"
	StatusInTransit = "in_transit"
	StatusCustoms   = "customs"
	StatusDelivered = "delivered"
	StatusLost      = "lost"
)

// Transport types.
const (
	TransportMaritime = "maritime"
	TransportAerien   = "aerien"
)

// ValidStatus reports whether s is a known package status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInTransit, StatusCustoms, StatusDelivered, StatusLost:
		return true
	}
	return false
}

// ValidTransport reports whether t is a known transport type.
func ValidTransport(t string) bool {
	return t == TransportMaritime || t == TransportAerien
}

// CanTransition reports whether a package may move from one status to
// another. The lifecycle is pending -> in_transit -> customs -> delivered,
// with lost reachable from any non-terminal state. Delivered and lost are
// terminal.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusInTransit || to == StatusLost
	case StatusInTransit:
		return to == StatusCustoms || to == StatusLost
	case StatusCustoms:
		return to == StatusDelivered || to == StatusLost
	}
	return false
}

// Package represents one shipment being tracked. The tracking number is the
// carrier-facing reference; UserTrackingID links to the owning account's
// tracking identifier.
type Package struct {
	ID             uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	TrackingNumber string          `json:"tracking_number" gorm:"uniqueIndex;size:64;not null"`
	UserTrackingID string          `json:"user_tracking_id" gorm:"size:16;not null;index"`
	Origin         string          `json:"origin" gorm:"size:255;not null"`
	Destination    string          `json:"destination" gorm:"size:255;not null"`
	Status         string          `json:"status" gorm:"size:16;not null;default:'pending';index"`
	TransportType  string          `json:"transport_type" gorm:"size:16;not null;default:'maritime'"`
	WeightKg       float64         `json:"weight"`
	LengthCm       float64         `json:"length"`
	WidthCm        float64         `json:"width"`
	HeightCm       float64         `json:"height"`
	Description    string          `json:"description" gorm:"type:text"`
	Value             decimal.Decimal `json:"value" gorm:"type:decimal(12,2)"`
	Currency          string          `json:"currency" gorm:"size:8;default:'USD'"`
	ShippingDate      time.Time       `json:"shipping_date"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery,omitempty"`
	ActualDelivery    *time.Time      `json:"actual_delivery,omitempty"`
	CurrentLocation   string          `json:"current_location,omitempty" gorm:"size:255"`
	Notes             string          `json:"notes,omitempty" gorm:"type:text"`
	CreatedBy         uuid.UUID       `json:"created_by" gorm:"type:char(36)"`
	CreatedAt         time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Package) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TrackingEvent is an append-only history entry attached to a package.
// Entries are never updated or deleted.
type TrackingEvent struct {
	ID          uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	PackageID   uuid.UUID `json:"package_id" gorm:"type:char(36);not null;index"`
	Status      string    `json:"status" gorm:"size:32;not null"`
	Location    string    `json:"location" gorm:"size:255"`
	Description string    `json:"description" gorm:"type:text"`
	Timestamp   time.Time `json:"timestamp" gorm:"index"`
	CreatedBy   uuid.UUID `json:"created_by" gorm:"type:char(36)"`
}

// BeforeCreate sets UUID before creating the record.
func (e *TrackingEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// PackageStats aggregates counts for the admin dashboard.
type PackageStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	InTransit int64 `json:"in_transit"`
	Customs   int64 `json:"customs"`
	Delivered int64 `json:"delivered"`
	Lost      int64 `json:"lost"`
	Maritime  int64 `json:"maritime"`
	Aerien    int64 `json:"aerien"`
}
