package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/busline/booking-backend/internal/models"
	"github.com/busline/booking-backend/internal/services"
)

// RouteHandler handles route administration and public route pricing
type RouteHandler struct {
	fleetService *services.FleetService
	topology     *services.SeatTopologyService
}

// NewRouteHandler creates a new RouteHandler
func NewRouteHandler(fleetService *services.FleetService, topology *services.SeatTopologyService) *RouteHandler {
	return &RouteHandler{fleetService: fleetService, topology: topology}
}

// Create registers a route
// POST /api/v1/routes
func (h *RouteHandler) Create(c *gin.Context) {
	var req models.CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	route, err := h.fleetService.CreateRoute(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, route)
}

// Get returns one route
// GET /api/v1/routes/:id
func (h *RouteHandler) Get(c *gin.Context) {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	route, err := h.fleetService.GetRoute(routeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, route)
}

// UpdateBaseFareRequest carries the new base fare
type UpdateBaseFareRequest struct {
	Price float64 `json:"price" binding:"gte=0"`
}

// UpdateBaseFare changes a route's base fare
// PATCH /api/v1/routes/:id/price
func (h *RouteHandler) UpdateBaseFare(c *gin.Context) {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	var req UpdateBaseFareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.fleetService.UpdateBaseFare(routeID, req.Price); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Base fare updated"})
}

// UpsertSeatTypePrice sets or replaces a seat-type surcharge on a route
// PUT /api/v1/routes/:id/seat-type-prices
func (h *RouteHandler) UpsertSeatTypePrice(c *gin.Context) {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	var req models.UpsertSeatTypePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stp, err := h.fleetService.UpsertSeatTypePrice(routeID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stp)
}

// Delete soft-deletes a route
// DELETE /api/v1/routes/:id
func (h *RouteHandler) Delete(c *gin.Context) {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	if err := h.fleetService.DeleteRoute(routeID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Route deleted"})
}

// FromPrice returns the route's advertised "from" price for listings
// GET /api/v1/routes/:id/from-price
func (h *RouteHandler) FromPrice(c *gin.Context) {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	price, err := h.topology.DisplayFromPrice(routeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"route_id":   routeID,
		"from_price": price,
	})
}
