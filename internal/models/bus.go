package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SeatStatus represents the sale status of a seat
type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "AVAILABLE"
	SeatStatusBooked    SeatStatus = "BOOKED"
)

// FloorLayout is an explicit grid definition for one floor of a bus.
// When configured it overrides grid inference for seats whose number
// starts with Prefix.
type FloorLayout struct {
	Prefix  string `json:"prefix"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Label   string `json:"label,omitempty"`
}

// SeatLayoutConfig is the optional per-floor layout stored on a bus as JSONB
type SeatLayoutConfig []FloorLayout

// Value implements driver.Valuer for JSONB storage
func (c SeatLayoutConfig) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner for JSONB columns
func (c *SeatLayoutConfig) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type for SeatLayoutConfig: %T", value)
	}
	return json.Unmarshal(b, c)
}

// FloorFor returns the layout configured for the given floor prefix, if any
func (c SeatLayoutConfig) FloorFor(prefix string) *FloorLayout {
	for i := range c {
		if c[i].Prefix == prefix {
			return &c[i]
		}
	}
	return nil
}

// Bus represents a vehicle with a fixed seat capacity
type Bus struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	CompanyID        *uuid.UUID       `json:"company_id,omitempty" db:"company_id"`
	LicensePlate     string           `json:"license_plate" db:"license_plate"`
	Capacity         int              `json:"capacity" db:"capacity"`
	FloorCount       int              `json:"floor_count" db:"floor_count"`
	SeatLayoutConfig SeatLayoutConfig `json:"seat_layout_config,omitempty" db:"seat_layout_config"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// Seat represents one sellable seat on a bus.
// (bus_id, seat_number) is unique.
type Seat struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	BusID            uuid.UUID  `json:"bus_id" db:"bus_id"`
	SeatNumber       string     `json:"seat_number" db:"seat_number"` // Floor-prefixed, e.g. A01, B12
	SeatType         SeatType   `json:"seat_type" db:"seat_type"`
	Status           SeatStatus `json:"status" db:"status"`
	PriceForSeatType *float64   `json:"price_for_seat_type,omitempty" db:"price_for_seat_type"` // Cached surcharge
	IsHidden         bool       `json:"is_hidden" db:"is_hidden"` // Excluded from sale but still occupies a grid slot
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// SeatPosition is a seat's resolved place in the floor/row/column grid
type SeatPosition struct {
	Floor  string `json:"floor"`
	Row    int    `json:"row"`
	Column int    `json:"column"`
}

// PositionedSeat is a seat enriched with grid position and effective price,
// the shape returned by the seat/price query surface.
type PositionedSeat struct {
	Seat
	Position       SeatPosition `json:"position"`
	EffectivePrice float64      `json:"effective_price"` // Base fare + resolved surcharge
}

// FloorGrid is the rendered layout of one floor
type FloorGrid struct {
	Floor   string           `json:"floor"`
	Label   string           `json:"label,omitempty"`
	Rows    int              `json:"rows"`
	Columns int              `json:"columns"`
	Seats   []PositionedSeat `json:"seats"`
}

// CreateBusRequest represents the request to register a bus
type CreateBusRequest struct {
	LicensePlate     string           `json:"license_plate" binding:"required"`
	Capacity         int              `json:"capacity" binding:"required,gt=0"`
	FloorCount       int              `json:"floor_count" binding:"gte=0"`
	SeatLayoutConfig SeatLayoutConfig `json:"seat_layout_config,omitempty"`
	CompanyID        *string          `json:"company_id,omitempty"`
}

// Validate checks the optional explicit layout: every floor needs a prefix
// and a positive grid, or seat placement has nothing to divide by.
func (r *CreateBusRequest) Validate() error {
	for i, floor := range r.SeatLayoutConfig {
		if floor.Prefix == "" {
			return fmt.Errorf("seat layout floor %d: prefix is required", i)
		}
		if floor.Rows < 1 || floor.Columns < 1 {
			return fmt.Errorf("seat layout floor %q: rows and columns must be at least 1", floor.Prefix)
		}
	}
	return nil
}

// CreateSeatRequest represents the request to add a seat to a bus
type CreateSeatRequest struct {
	SeatNumber string   `json:"seat_number" binding:"required"`
	SeatType   SeatType `json:"seat_type" binding:"required"`
	IsHidden   bool     `json:"is_hidden"`
}

// Validate checks the seat type against the known set
func (r *CreateSeatRequest) Validate() error {
	if !r.SeatType.IsValid() {
		return fmt.Errorf("invalid seat type: %s", r.SeatType)
	}
	return nil
}
