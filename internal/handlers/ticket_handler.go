package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/busline/booking-backend/internal/middleware"
	"github.com/busline/booking-backend/internal/models"
	"github.com/busline/booking-backend/internal/services"
)

// TicketHandler handles ticket lookup, cancellation and the e-ticket PDF
type TicketHandler struct {
	ticketService *services.TicketService
	pdfService    *services.TicketPDFService
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(ticketService *services.TicketService, pdfService *services.TicketPDFService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService, pdfService: pdfService}
}

// Get returns one ticket owned by the caller
// GET /api/v1/tickets/:id
func (h *TicketHandler) Get(c *gin.Context) {
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

	ticket, err := h.ticketService.GetByID(ticketID)
	if err != nil {
		respondError(c, err)
		return
	}
	if ticket.UserID != user.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Ticket belongs to another user"})
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// Cancel cancels the caller's ticket and releases its seat
// POST /api/v1/tickets/:id/cancel
func (h *TicketHandler) Cancel(c *gin.Context) {
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

	ticket, err := h.ticketService.GetByID(ticketID)
	if err != nil {
		respondError(c, err)
		return
	}
	if ticket.UserID != user.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Ticket belongs to another user"})
		return
	}

	cancelled, err := h.ticketService.Cancel(ticketID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cancelled)
}

// Lookup finds a ticket by code and booking phone. Public endpoint for
// passengers without an account session.
// GET /api/v1/tickets/lookup?ticket_code=...&phone=...
func (h *TicketHandler) Lookup(c *gin.Context) {
	var req models.TicketLookupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.ticketService.Lookup(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// Download returns the e-ticket PDF for a paid ticket
// GET /api/v1/tickets/:id/pdf
func (h *TicketHandler) Download(c *gin.Context) {
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

	ticket, err := h.ticketService.GetByID(ticketID)
	if err != nil {
		respondError(c, err)
		return
	}
	if ticket.UserID != user.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Ticket belongs to another user"})
		return
	}

	pdf, filename, err := h.pdfService.GenerateETicket(ticketID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
