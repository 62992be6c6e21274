package database

import (
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors surfaced by repositories. Services and handlers match on
// these with errors.Is to map storage outcomes onto the API error taxonomy.
var (
	ErrRouteNotFound        = errors.New("route not found")
	ErrBusNotFound          = errors.New("bus not found")
	ErrSeatNotFound         = errors.New("seat not found")
	ErrScheduleNotFound     = errors.New("schedule not found")
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrInsufficientCapacity = errors.New("insufficient seat capacity")
	ErrDuplicateSeatNumber  = errors.New("seat number already exists for this bus")
	ErrDuplicateTicketCode  = errors.New("ticket code already exists")
	ErrDuplicatePhone       = errors.New("phone number already registered")
	ErrSeatUnavailable      = errors.New("seat is not available")
)

// pq unique_violation
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a unique-constraint violation,
// optionally restricted to a named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != uniqueViolationCode {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
