package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/busline/booking-backend/internal/middleware"
	"github.com/busline/booking-backend/internal/models"
	"github.com/busline/booking-backend/internal/services"
	"github.com/busline/booking-backend/internal/utils"
)

// BookingHandler handles the booking flow: quote, initiate, gateway callback
type BookingHandler struct {
	orchestrator *services.BookingOrchestratorService
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(orchestrator *services.BookingOrchestratorService) *BookingHandler {
	return &BookingHandler{orchestrator: orchestrator}
}

// Quote prices one seat on one schedule without reserving anything
// GET /api/v1/bookings/quote?schedule_id=...&seat_id=...
func (h *BookingHandler) Quote(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Query("schedule_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}
	seatID, err := uuid.Parse(c.Query("seat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid seat ID"})
		return
	}

	quote, err := h.orchestrator.Quote(scheduleID, seatID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// Initiate books a seat and returns the signed payment redirect
// POST /api/v1/bookings
func (h *BookingHandler) Initiate(c *gin.Context) {
	user, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req models.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	redirect, err := h.orchestrator.InitiateBooking(user.UserID, &req, utils.GetRealIP(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, redirect)
}

// PaymentTrail returns the audit trail of gateway interactions for one of
// the caller's tickets
// GET /api/v1/tickets/:id/payments
func (h *BookingHandler) PaymentTrail(c *gin.Context) {
	user, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket ID"})
		return
	}

	ticket, trail, err := h.orchestrator.PaymentTrail(ticketID)
	if err != nil {
		respondError(c, err)
		return
	}
	if ticket.UserID != user.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Ticket belongs to another user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticket_code": ticket.TicketCode,
		"events":      trail,
	})
}

// Callback receives the gateway's signed return redirect. The gateway calls
// it without authentication; the HMAC signature is the trust boundary.
// GET /api/v1/payments/callback
func (h *BookingHandler) Callback(c *gin.Context) {
	params := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	outcome, err := h.orchestrator.HandleCallback(params, utils.GetRealIP(c), utils.GetUserAgent(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}
