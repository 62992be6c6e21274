package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/busline/booking-backend/internal/models"
)

// BusRepository handles bus and seat database operations
type BusRepository struct {
	db DB
}

// NewBusRepository creates a new bus repository
func NewBusRepository(db DB) *BusRepository {
	return &BusRepository{db: db}
}

// Create inserts a new bus
func (r *BusRepository) Create(bus *models.Bus) error {
	if bus.ID == uuid.Nil {
		bus.ID = uuid.New()
	}
	now := time.Now()
	bus.CreatedAt = now
	bus.UpdatedAt = now

	query := `
		INSERT INTO buses (
			id, company_id, license_plate, capacity, floor_count,
			seat_layout_config, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(query,
		bus.ID,
		bus.CompanyID,
		bus.LicensePlate,
		bus.Capacity,
		bus.FloorCount,
		bus.SeatLayoutConfig,
		bus.CreatedAt,
		bus.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bus: %w", err)
	}

	return nil
}

// GetByID returns a bus by ID
func (r *BusRepository) GetByID(id uuid.UUID) (*models.Bus, error) {
	query := `
		SELECT id, company_id, license_plate, capacity, floor_count,
			   seat_layout_config, created_at, updated_at
		FROM buses
		WHERE id = $1
	`

	var bus models.Bus
	err := r.db.Get(&bus, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBusNotFound
		}
		return nil, fmt.Errorf("failed to get bus: %w", err)
	}

	return &bus, nil
}

// CreateSeat adds one seat to a bus. The (bus_id, seat_number) unique
// constraint rejects duplicates.
func (r *BusRepository) CreateSeat(seat *models.Seat) error {
	if seat.ID == uuid.Nil {
		seat.ID = uuid.New()
	}
	if seat.Status == "" {
		seat.Status = models.SeatStatusAvailable
	}
	now := time.Now()
	seat.CreatedAt = now
	seat.UpdatedAt = now

	query := `
		INSERT INTO seats (
			id, bus_id, seat_number, seat_type, status,
			price_for_seat_type, is_hidden, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(query,
		seat.ID,
		seat.BusID,
		seat.SeatNumber,
		seat.SeatType,
		seat.Status,
		seat.PriceForSeatType,
		seat.IsHidden,
		seat.CreatedAt,
		seat.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return ErrDuplicateSeatNumber
		}
		return fmt.Errorf("failed to create seat: %w", err)
	}

	return nil
}

// GetSeatByID returns a single seat
func (r *BusRepository) GetSeatByID(id uuid.UUID) (*models.Seat, error) {
	query := `
		SELECT id, bus_id, seat_number, seat_type, status,
			   price_for_seat_type, is_hidden, created_at, updated_at
		FROM seats
		WHERE id = $1
	`

	var seat models.Seat
	err := r.db.Get(&seat, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, fmt.Errorf("failed to get seat: %w", err)
	}

	return &seat, nil
}

// GetSeatsByBusID returns every seat of a bus, hidden ones included so the
// grid still has their slots. Buses are small, no pagination.
func (r *BusRepository) GetSeatsByBusID(busID uuid.UUID) ([]models.Seat, error) {
	query := `
		SELECT id, bus_id, seat_number, seat_type, status,
			   price_for_seat_type, is_hidden, created_at, updated_at
		FROM seats
		WHERE bus_id = $1
		ORDER BY seat_number
	`

	var seats []models.Seat
	if err := r.db.Select(&seats, query, busID); err != nil {
		return nil, fmt.Errorf("failed to get seats: %w", err)
	}

	return seats, nil
}
