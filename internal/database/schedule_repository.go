package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/busline/booking-backend/internal/models"
)

// execer is the subset of DB / sqlx.Tx needed by the capacity statements so
// they can run standalone or inside a booking transaction.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// reserveQuery decrements the seat counter only when enough seats remain and
// the schedule is not cancelled, flipping status to FULL when the counter
// reaches zero. The check and the decrement are one statement so two
// concurrent reservations of the last seat cannot both succeed.
const reserveQuery = `
	UPDATE schedules
	SET available_seat = available_seat - $2,
		status = CASE WHEN available_seat - $2 = 0 THEN 'FULL' ELSE status END,
		updated_at = NOW()
	WHERE id = $1 AND status <> 'CANCELLED' AND available_seat >= $2
`

// releaseQuery increments the counter capped at total_seats and reverts FULL
// to AVAILABLE when seats become free again. Cancelled schedules are left
// untouched.
const releaseQuery = `
	UPDATE schedules
	SET status = CASE WHEN status = 'FULL' AND LEAST(available_seat + $2, total_seats) > 0
			THEN 'AVAILABLE' ELSE status END,
		available_seat = LEAST(available_seat + $2, total_seats),
		updated_at = NOW()
	WHERE id = $1 AND status <> 'CANCELLED'
`

// ScheduleRepository handles schedule database operations
type ScheduleRepository struct {
	db DB
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create inserts a new schedule with a full seat pool
func (r *ScheduleRepository) Create(schedule *models.Schedule) error {
	if schedule.ID == uuid.Nil {
		schedule.ID = uuid.New()
	}
	schedule.AvailableSeat = schedule.TotalSeats
	schedule.Status = models.ScheduleStatusAvailable
	now := time.Now()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	query := `
		INSERT INTO schedules (
			id, route_id, bus_id, start_date, end_date,
			departure_time, arrival_time, available_seat, total_seats,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(query,
		schedule.ID,
		schedule.RouteID,
		schedule.BusID,
		schedule.StartDate,
		schedule.EndDate,
		schedule.DepartureTime,
		schedule.ArrivalTime,
		schedule.AvailableSeat,
		schedule.TotalSeats,
		schedule.Status,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}

	return nil
}

// GetByID returns a schedule by ID
func (r *ScheduleRepository) GetByID(id uuid.UUID) (*models.Schedule, error) {
	query := `
		SELECT id, route_id, bus_id, start_date, end_date,
			   departure_time, arrival_time, available_seat, total_seats,
			   status, created_at, updated_at
		FROM schedules
		WHERE id = $1
	`

	var schedule models.Schedule
	err := r.db.Get(&schedule, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	return &schedule, nil
}

// Reserve atomically takes count seats from the schedule's pool
func (r *ScheduleRepository) Reserve(scheduleID uuid.UUID, count int) error {
	return reserveSeats(r.db, scheduleID, count)
}

// ReserveTx runs the same atomic reservation inside an open transaction
func (r *ScheduleRepository) ReserveTx(tx execer, scheduleID uuid.UUID, count int) error {
	return reserveSeats(tx, scheduleID, count)
}

func reserveSeats(e execer, scheduleID uuid.UUID, count int) error {
	result, err := e.Exec(reserveQuery, scheduleID, count)
	if err != nil {
		return fmt.Errorf("failed to reserve seats: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		// Either the schedule does not exist, is cancelled, or the pool is
		// short. All three refuse the booking; callers that care can look
		// the schedule up.
		return ErrInsufficientCapacity
	}

	return nil
}

// Release returns count seats to the schedule's pool, capped at total_seats.
// A cancelled schedule is a silent no-op.
func (r *ScheduleRepository) Release(scheduleID uuid.UUID, count int) error {
	return releaseSeats(r.db, scheduleID, count)
}

// ReleaseTx runs the release inside an open transaction
func (r *ScheduleRepository) ReleaseTx(tx execer, scheduleID uuid.UUID, count int) error {
	return releaseSeats(tx, scheduleID, count)
}

func releaseSeats(e execer, scheduleID uuid.UUID, count int) error {
	_, err := e.Exec(releaseQuery, scheduleID, count)
	if err != nil {
		return fmt.Errorf("failed to release seats: %w", err)
	}
	return nil
}

// Cancel marks the schedule CANCELLED. Terminal; the seat counter is left
// as-is since cancellation only gates future bookings.
func (r *ScheduleRepository) Cancel(scheduleID uuid.UUID) error {
	result, err := r.db.Exec(`
		UPDATE schedules SET status = 'CANCELLED', updated_at = NOW()
		WHERE id = $1
	`, scheduleID)
	if err != nil {
		return fmt.Errorf("failed to cancel schedule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return ErrScheduleNotFound
	}

	return nil
}
