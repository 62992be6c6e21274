package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/busline/booking-backend/internal/models"
)

// TicketRepository handles ticket database operations. Every mutation that
// touches both a ticket and its schedule's seat pool runs in one transaction
// so the counter, the seat row and the ticket row never drift apart.
type TicketRepository struct {
	db           DB
	scheduleRepo *ScheduleRepository
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db DB, scheduleRepo *ScheduleRepository) *TicketRepository {
	return &TicketRepository{db: db, scheduleRepo: scheduleRepo}
}

// CreateWithReservation inserts the ticket, books its seat and takes one
// seat from the schedule pool, all atomically. Both succeed or both fail.
func (r *TicketRepository) CreateWithReservation(ticket *models.Ticket) error {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	ticket.Status = models.TicketStatusBooked
	if ticket.PaymentStatus == "" {
		ticket.PaymentStatus = models.TicketPaymentPending
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.scheduleRepo.ReserveTx(tx, ticket.ScheduleID, 1); err != nil {
		return err
	}

	// The seat flips to BOOKED only from AVAILABLE; a hidden seat is never
	// sellable even though it occupies a grid slot.
	result, err := tx.Exec(`
		UPDATE seats SET status = 'BOOKED', updated_at = NOW()
		WHERE id = $1 AND status = 'AVAILABLE' AND is_hidden = FALSE
	`, ticket.SeatID)
	if err != nil {
		return fmt.Errorf("failed to book seat: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return ErrSeatUnavailable
	}

	_, err = tx.Exec(`
		INSERT INTO tickets (
			id, user_id, schedule_id, seat_id, ticket_code,
			seat_type, price, departure_time, arrival_time,
			status, payment_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		ticket.ID,
		ticket.UserID,
		ticket.ScheduleID,
		ticket.SeatID,
		ticket.TicketCode,
		ticket.SeatType,
		ticket.Price,
		ticket.DepartureTime,
		ticket.ArrivalTime,
		ticket.Status,
		ticket.PaymentStatus,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "tickets_ticket_code_key") {
			return ErrDuplicateTicketCode
		}
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}

	return nil
}

// CancelWithRelease flips a BOOKED ticket to CANCELLED and returns its seat
// to the schedule pool in the same transaction.
func (r *TicketRepository) CancelWithRelease(ticketID uuid.UUID) (*models.Ticket, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ticket models.Ticket
	err = tx.QueryRowx(`
		UPDATE tickets
		SET status = 'CANCELLED', cancelled_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'BOOKED'
		RETURNING id, user_id, schedule_id, seat_id, ticket_code,
				  seat_type, price, departure_time, arrival_time,
				  status, payment_status, payment_ref, paid_at, cancelled_at,
				  created_at, updated_at
	`, ticketID).StructScan(&ticket)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to cancel ticket: %w", err)
	}

	if _, err := tx.Exec(`
		UPDATE seats SET status = 'AVAILABLE', updated_at = NOW()
		WHERE id = $1
	`, ticket.SeatID); err != nil {
		return nil, fmt.Errorf("failed to free seat: %w", err)
	}

	if err := r.scheduleRepo.ReleaseTx(tx, ticket.ScheduleID, 1); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	return &ticket, nil
}

// GetByID returns a ticket by internal ID
func (r *TicketRepository) GetByID(id uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.db.Get(&ticket, selectTicket+` WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return &ticket, nil
}

// GetByCode returns a ticket by its public code
func (r *TicketRepository) GetByCode(code string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.db.Get(&ticket, selectTicket+` WHERE ticket_code = $1`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return &ticket, nil
}

// GetByCodeAndPhone is the public lookup: the code must exist AND the phone
// must match the owning user exactly. Anything else is a plain not-found so
// the endpoint leaks nothing about which half was wrong.
func (r *TicketRepository) GetByCodeAndPhone(code, phone string) (*models.Ticket, error) {
	query := `
		SELECT t.id, t.user_id, t.schedule_id, t.seat_id, t.ticket_code,
			   t.seat_type, t.price, t.departure_time, t.arrival_time,
			   t.status, t.payment_status, t.payment_ref, t.paid_at, t.cancelled_at,
			   t.created_at, t.updated_at
		FROM tickets t
		JOIN users u ON u.id = t.user_id
		WHERE t.ticket_code = $1 AND u.phone = $2
	`

	var ticket models.Ticket
	err := r.db.Get(&ticket, query, code, phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to look up ticket: %w", err)
	}

	return &ticket, nil
}

// MarkPaid records a successful gateway payment against the ticket
func (r *TicketRepository) MarkPaid(ticketCode, paymentRef string) error {
	result, err := r.db.Exec(`
		UPDATE tickets
		SET payment_status = 'PAID', payment_ref = $2, paid_at = NOW(), updated_at = NOW()
		WHERE ticket_code = $1 AND status = 'BOOKED'
	`, ticketCode, paymentRef)
	if err != nil {
		return fmt.Errorf("failed to mark ticket paid: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return ErrTicketNotFound
	}

	return nil
}

// MarkPaymentFailed records a gateway-reported failure, cancels the pending
// ticket and frees its seat so the inventory is not burned by an abandoned
// payment.
func (r *TicketRepository) MarkPaymentFailed(ticketCode string) (*models.Ticket, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ticket models.Ticket
	err = tx.QueryRowx(`
		UPDATE tickets
		SET payment_status = 'FAILED', status = 'CANCELLED',
			cancelled_at = NOW(), updated_at = NOW()
		WHERE ticket_code = $1 AND status = 'BOOKED'
		RETURNING id, user_id, schedule_id, seat_id, ticket_code,
				  seat_type, price, departure_time, arrival_time,
				  status, payment_status, payment_ref, paid_at, cancelled_at,
				  created_at, updated_at
	`, ticketCode).StructScan(&ticket)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to fail ticket payment: %w", err)
	}

	if _, err := tx.Exec(`
		UPDATE seats SET status = 'AVAILABLE', updated_at = NOW()
		WHERE id = $1
	`, ticket.SeatID); err != nil {
		return nil, fmt.Errorf("failed to free seat: %w", err)
	}

	if err := r.scheduleRepo.ReleaseTx(tx, ticket.ScheduleID, 1); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment failure: %w", err)
	}

	return &ticket, nil
}

const selectTicket = `
	SELECT id, user_id, schedule_id, seat_id, ticket_code,
		   seat_type, price, departure_time, arrival_time,
		   status, payment_status, payment_ref, paid_at, cancelled_at,
		   created_at, updated_at
	FROM tickets`
