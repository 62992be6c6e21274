package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/busline/booking-backend/internal/models"
	"github.com/busline/booking-backend/internal/services"
)

// BusHandler handles bus registration and seat inventory
type BusHandler struct {
	fleetService *services.FleetService
}

// NewBusHandler creates a new BusHandler
func NewBusHandler(fleetService *services.FleetService) *BusHandler {
	return &BusHandler{fleetService: fleetService}
}

// Create registers a bus
// POST /api/v1/buses
func (h *BusHandler) Create(c *gin.Context) {
	var req models.CreateBusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bus, err := h.fleetService.CreateBus(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bus)
}

// Get returns one bus
// GET /api/v1/buses/:id
func (h *BusHandler) Get(c *gin.Context) {
	busID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bus ID"})
		return
	}

	bus, err := h.fleetService.GetBus(busID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bus)
}

// AddSeat adds one seat to a bus
// POST /api/v1/buses/:id/seats
func (h *BusHandler) AddSeat(c *gin.Context) {
	busID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bus ID"})
		return
	}

	var req models.CreateSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seat, err := h.fleetService.AddSeat(busID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, seat)
}

// ListSeats lists every seat of a bus, hidden seats included
// GET /api/v1/buses/:id/seats
func (h *BusHandler) ListSeats(c *gin.Context) {
	busID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bus ID"})
		return
	}

	seats, err := h.fleetService.ListSeats(busID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"seats": seats,
		"count": len(seats),
	})
}
