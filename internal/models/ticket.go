package models

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus represents the lifecycle state of a ticket
type TicketStatus string

const (
	TicketStatusBooked    TicketStatus = "BOOKED"
	TicketStatusCancelled TicketStatus = "CANCELLED"
)

// TicketPaymentStatus tracks the payment side of a ticket
type TicketPaymentStatus string

const (
	TicketPaymentPending TicketPaymentStatus = "PENDING"
	TicketPaymentPaid    TicketPaymentStatus = "PAID"
	TicketPaymentFailed  TicketPaymentStatus = "FAILED"
)

// Ticket binds a user, a schedule and a seat. Departure/arrival times, seat
// type and price are snapshots taken at booking time; later route or price
// edits never change an issued ticket. TicketCode is unique and publicly
// lookup-able together with the owner's phone.
type Ticket struct {
	ID            uuid.UUID           `json:"id" db:"id"`
	UserID        uuid.UUID           `json:"user_id" db:"user_id"`
	ScheduleID    uuid.UUID           `json:"schedule_id" db:"schedule_id"`
	SeatID        uuid.UUID           `json:"seat_id" db:"seat_id"`
	TicketCode    string              `json:"ticket_code" db:"ticket_code"`
	SeatType      SeatType            `json:"seat_type" db:"seat_type"`
	Price         float64             `json:"price" db:"price"`
	DepartureTime time.Time           `json:"departure_time" db:"departure_time"`
	ArrivalTime   time.Time           `json:"arrival_time" db:"arrival_time"`
	Status        TicketStatus        `json:"status" db:"status"`
	PaymentStatus TicketPaymentStatus `json:"payment_status" db:"payment_status"`
	PaymentRef    *string             `json:"payment_ref,omitempty" db:"payment_ref"` // Gateway transaction number
	PaidAt        *time.Time          `json:"paid_at,omitempty" db:"paid_at"`
	CancelledAt   *time.Time          `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`
}

// CreateTicketRequest represents the request to book a seat
type CreateTicketRequest struct {
	ScheduleID string `json:"schedule_id" binding:"required,uuid"`
	SeatID     string `json:"seat_id" binding:"required,uuid"`
	// Optional caller-supplied code; generated when empty
	TicketCode string `json:"ticket_code,omitempty"`
}

// TicketLookupRequest is the public, unauthenticated lookup input
type TicketLookupRequest struct {
	TicketCode string `json:"ticket_code" form:"ticket_code" binding:"required"`
	Phone      string `json:"phone" form:"phone" binding:"required"`
}

// Quote is the price breakdown returned before booking
type Quote struct {
	ScheduleID uuid.UUID `json:"schedule_id"`
	SeatID     uuid.UUID `json:"seat_id"`
	SeatNumber string    `json:"seat_number"`
	SeatType   SeatType  `json:"seat_type"`
	BaseFare   float64   `json:"base_fare"`
	Surcharge  float64   `json:"surcharge"`
	Total      float64   `json:"total"`
}
