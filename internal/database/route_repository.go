package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/busline/booking-backend/internal/models"
)

// RouteRepository handles route and seat-type price database operations
type RouteRepository struct {
	db DB
}

// NewRouteRepository creates a new route repository
func NewRouteRepository(db DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// Create inserts a new route
func (r *RouteRepository) Create(route *models.Route) error {
	if route.ID == uuid.Nil {
		route.ID = uuid.New()
	}
	now := time.Now()
	route.CreatedAt = now
	route.UpdatedAt = now

	query := `
		INSERT INTO routes (
			id, departure_station_id, arrival_station_id, price,
			duration, distance, company_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(query,
		route.ID,
		route.DepartureStationID,
		route.ArrivalStationID,
		route.Price,
		route.Duration,
		route.Distance,
		route.CompanyID,
		route.CreatedAt,
		route.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create route: %w", err)
	}

	return nil
}

// GetByID returns a route that has not been soft-deleted
func (r *RouteRepository) GetByID(id uuid.UUID) (*models.Route, error) {
	query := `
		SELECT id, departure_station_id, arrival_station_id, price,
			   duration, distance, company_id, deleted_at, created_at, updated_at
		FROM routes
		WHERE id = $1 AND deleted_at IS NULL
	`

	var route models.Route
	err := r.db.Get(&route, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("failed to get route: %w", err)
	}

	return &route, nil
}

// UpdateBaseFare changes a route's base fare. Issued tickets are unaffected
// because their price is snapshotted at booking time.
func (r *RouteRepository) UpdateBaseFare(id uuid.UUID, price float64) error {
	result, err := r.db.Exec(`
		UPDATE routes SET price = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id, price)
	if err != nil {
		return fmt.Errorf("failed to update route fare: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return ErrRouteNotFound
	}

	return nil
}

// SoftDelete marks a route deleted without removing the row; schedules keep
// referencing it.
func (r *RouteRepository) SoftDelete(id uuid.UUID) error {
	result, err := r.db.Exec(`
		UPDATE routes SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete route: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return ErrRouteNotFound
	}

	return nil
}

// UpsertSeatTypePrice sets the surcharge for (route, seat type), replacing
// any existing row. The (route_id, seat_type) unique constraint guarantees
// at most one row per pair.
func (r *RouteRepository) UpsertSeatTypePrice(routeID uuid.UUID, seatType models.SeatType, price float64) (*models.SeatTypePrice, error) {
	query := `
		INSERT INTO seat_type_prices (id, route_id, seat_type, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (route_id, seat_type)
		DO UPDATE SET price = EXCLUDED.price, updated_at = NOW()
		RETURNING id, route_id, seat_type, price, created_at, updated_at
	`

	var stp models.SeatTypePrice
	err := r.db.Get(&stp, query, uuid.New(), routeID, seatType, price)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert seat type price: %w", err)
	}

	return &stp, nil
}

// GetSeatTypePrices returns all configured surcharges for a route
func (r *RouteRepository) GetSeatTypePrices(routeID uuid.UUID) ([]models.SeatTypePrice, error) {
	query := `
		SELECT id, route_id, seat_type, price, created_at, updated_at
		FROM seat_type_prices
		WHERE route_id = $1
		ORDER BY seat_type
	`

	var prices []models.SeatTypePrice
	if err := r.db.Select(&prices, query, routeID); err != nil {
		return nil, fmt.Errorf("failed to get seat type prices: %w", err)
	}

	return prices, nil
}
