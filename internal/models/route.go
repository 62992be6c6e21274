package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SeatType classifies a seat for pricing purposes
type SeatType string

const (
	SeatTypeStandard SeatType = "STANDARD"
	SeatTypeVIP      SeatType = "VIP"
	SeatTypeDouble   SeatType = "DOUBLE"
	SeatTypeLuxury   SeatType = "LUXURY"
)

// ValidSeatTypes lists every seat type accepted by the platform
var ValidSeatTypes = []SeatType{SeatTypeStandard, SeatTypeVIP, SeatTypeDouble, SeatTypeLuxury}

// IsValid reports whether the seat type is one of the known values
func (t SeatType) IsValid() bool {
	for _, v := range ValidSeatTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Route represents a connection between two stations with a base fare.
// Routes are soft-deleted; schedules may still reference them.
type Route struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	DepartureStationID uuid.UUID  `json:"departure_station_id" db:"departure_station_id"`
	ArrivalStationID   uuid.UUID  `json:"arrival_station_id" db:"arrival_station_id"`
	Price              float64    `json:"price" db:"price"`       // Base fare
	Duration           int        `json:"duration" db:"duration"` // Minutes
	Distance           float64    `json:"distance" db:"distance"` // Kilometers
	CompanyID          *uuid.UUID `json:"company_id,omitempty" db:"company_id"`
	DeletedAt          *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// SeatTypePrice is a per-route surcharge for a seat type.
// At most one row exists per (route_id, seat_type); writes are upserts.
type SeatTypePrice struct {
	ID        uuid.UUID `json:"id" db:"id"`
	RouteID   uuid.UUID `json:"route_id" db:"route_id"`
	SeatType  SeatType  `json:"seat_type" db:"seat_type"`
	Price     float64   `json:"price" db:"price"` // Surcharge on top of route base fare
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateRouteRequest represents the request to create a route
type CreateRouteRequest struct {
	DepartureStationID string  `json:"departure_station_id" binding:"required,uuid"`
	ArrivalStationID   string  `json:"arrival_station_id" binding:"required,uuid"`
	Price              float64 `json:"price" binding:"required,gte=0"`
	Duration           int     `json:"duration" binding:"required,gt=0"`
	Distance           float64 `json:"distance" binding:"required,gt=0"`
	CompanyID          *string `json:"company_id,omitempty"`
}

// UpsertSeatTypePriceRequest sets or replaces the surcharge for one seat type
type UpsertSeatTypePriceRequest struct {
	SeatType SeatType `json:"seat_type" binding:"required"`
	Price    float64  `json:"price" binding:"gte=0"`
}

// Validate checks the seat type against the known set
func (r *UpsertSeatTypePriceRequest) Validate() error {
	if !r.SeatType.IsValid() {
		return errors.New("invalid seat type")
	}
	return nil
}
