package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/busline/booking-backend/internal/database"
	"github.com/busline/booking-backend/internal/services"
	"github.com/busline/booking-backend/pkg/vnpay"
)

// respondError maps the error taxonomy onto HTTP statuses. Verification
// failures on the payment callback are always reported as failures, never
// silently folded into a success response.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrInsufficientCapacity):
		c.JSON(http.StatusConflict, gin.H{"error": "No seats available on this schedule"})
	case errors.Is(err, database.ErrSeatUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "Seat is not available"})
	case errors.Is(err, database.ErrDuplicateSeatNumber),
		errors.Is(err, database.ErrDuplicateTicketCode),
		errors.Is(err, database.ErrDuplicatePhone):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrRouteNotFound),
		errors.Is(err, database.ErrBusNotFound),
		errors.Is(err, database.ErrSeatNotFound),
		errors.Is(err, database.ErrScheduleNotFound),
		errors.Is(err, database.ErrTicketNotFound),
		errors.Is(err, database.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, vnpay.ErrMissingSignature),
		errors.Is(err, vnpay.ErrSignatureMismatch),
		errors.Is(err, vnpay.ErrMalformedCallback),
		errors.Is(err, services.ErrAmountMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment verification failed"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
