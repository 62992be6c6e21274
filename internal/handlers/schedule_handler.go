package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/busline/booking-backend/internal/models"
	"github.com/busline/booking-backend/internal/services"
)

// ScheduleHandler handles schedule lifecycle and the seat map
type ScheduleHandler struct {
	capacityService *services.CapacityService
	topology        *services.SeatTopologyService
}

// NewScheduleHandler creates a new ScheduleHandler
func NewScheduleHandler(capacityService *services.CapacityService, topology *services.SeatTopologyService) *ScheduleHandler {
	return &ScheduleHandler{capacityService: capacityService, topology: topology}
}

// Create opens a schedule for sale
// POST /api/v1/schedules
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req models.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedule, err := h.capacityService.CreateSchedule(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, schedule)
}

// Get returns one schedule with its live seat counter
// GET /api/v1/schedules/:id
func (h *ScheduleHandler) Get(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	schedule, err := h.capacityService.GetSchedule(scheduleID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// Cancel takes a schedule off sale
// POST /api/v1/schedules/:id/cancel
func (h *ScheduleHandler) Cancel(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	if err := h.capacityService.Cancel(scheduleID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Schedule cancelled"})
}

// SeatMap renders the per-floor seat grid with effective prices
// GET /api/v1/schedules/:id/seats
func (h *ScheduleHandler) SeatMap(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	schedule, err := h.capacityService.GetSchedule(scheduleID)
	if err != nil {
		respondError(c, err)
		return
	}

	grids, err := h.topology.ResolveGrid(schedule.BusID, schedule.RouteID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"schedule_id":    scheduleID,
		"available_seat": schedule.AvailableSeat,
		"floors":         grids,
	})
}
