package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/busline/booking-backend/internal/database"
	"github.com/busline/booking-backend/internal/models"
)

// FleetService owns route and bus administration: route base fares,
// per-seat-type surcharges, bus registration and seat inventory.
type FleetService struct {
	routeRepo *database.RouteRepository
	busRepo   *database.BusRepository
	logger    *logrus.Logger
}

// NewFleetService creates a new fleet service
func NewFleetService(
	routeRepo *database.RouteRepository,
	busRepo *database.BusRepository,
	logger *logrus.Logger,
) *FleetService {
	return &FleetService{
		routeRepo: routeRepo,
		busRepo:   busRepo,
		logger:    logger,
	}
}

// CreateRoute registers a route between two stations with its base fare
func (s *FleetService) CreateRoute(req *models.CreateRouteRequest) (*models.Route, error) {
	depID, err := uuid.Parse(req.DepartureStationID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid departure station id", ErrValidation)
	}
	arrID, err := uuid.Parse(req.ArrivalStationID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid arrival station id", ErrValidation)
	}
	if depID == arrID {
		return nil, fmt.Errorf("%w: departure and arrival stations must differ", ErrValidation)
	}

	route := &models.Route{
		DepartureStationID: depID,
		ArrivalStationID:   arrID,
		Price:              req.Price,
		Duration:           req.Duration,
		Distance:           req.Distance,
	}
	if req.CompanyID != nil {
		companyID, err := uuid.Parse(*req.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid company id", ErrValidation)
		}
		route.CompanyID = &companyID
	}

	if err := s.routeRepo.Create(route); err != nil {
		return nil, fmt.Errorf("failed to create route: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"route_id":  route.ID,
		"base_fare": route.Price,
	}).Info("Route created")

	return route, nil
}

// GetRoute returns a route by ID; soft-deleted routes are not found
func (s *FleetService) GetRoute(routeID uuid.UUID) (*models.Route, error) {
	return s.routeRepo.GetByID(routeID)
}

// UpdateBaseFare changes the route's base fare. Existing tickets keep the
// price snapshotted at booking time.
func (s *FleetService) UpdateBaseFare(routeID uuid.UUID, price float64) error {
	if price < 0 {
		return fmt.Errorf("%w: base fare must not be negative", ErrValidation)
	}
	if err := s.routeRepo.UpdateBaseFare(routeID, price); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"route_id":  routeID,
		"base_fare": price,
	}).Info("Route base fare updated")
	return nil
}

// UpsertSeatTypePrice sets or replaces the surcharge for one seat type on a
// route. At most one surcharge row exists per (route, seat type).
func (s *FleetService) UpsertSeatTypePrice(routeID uuid.UUID, req *models.UpsertSeatTypePriceRequest) (*models.SeatTypePrice, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: surcharge must not be negative", ErrValidation)
	}

	// Reject writes against deleted routes.
	if _, err := s.routeRepo.GetByID(routeID); err != nil {
		return nil, err
	}

	stp, err := s.routeRepo.UpsertSeatTypePrice(routeID, req.SeatType, req.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert seat type price: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"route_id":  routeID,
		"seat_type": req.SeatType,
		"surcharge": req.Price,
	}).Info("Seat type surcharge upserted")

	return stp, nil
}

// DeleteRoute soft-deletes a route. Schedules already created against it
// keep running; the route just stops appearing in lookups.
func (s *FleetService) DeleteRoute(routeID uuid.UUID) error {
	if err := s.routeRepo.SoftDelete(routeID); err != nil {
		return err
	}
	s.logger.WithField("route_id", routeID).Info("Route deleted")
	return nil
}

// CreateBus registers a vehicle
func (s *FleetService) CreateBus(req *models.CreateBusRequest) (*models.Bus, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	bus := &models.Bus{
		LicensePlate:     req.LicensePlate,
		Capacity:         req.Capacity,
		FloorCount:       req.FloorCount,
		SeatLayoutConfig: req.SeatLayoutConfig,
	}
	if bus.FloorCount == 0 {
		bus.FloorCount = 1
	}
	if req.CompanyID != nil {
		companyID, err := uuid.Parse(*req.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid company id", ErrValidation)
		}
		bus.CompanyID = &companyID
	}

	if err := s.busRepo.Create(bus); err != nil {
		return nil, fmt.Errorf("failed to create bus: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"bus_id":        bus.ID,
		"license_plate": bus.LicensePlate,
		"capacity":      bus.Capacity,
	}).Info("Bus created")

	return bus, nil
}

// GetBus returns a bus by ID
func (s *FleetService) GetBus(busID uuid.UUID) (*models.Bus, error) {
	return s.busRepo.GetByID(busID)
}

// AddSeat adds one seat to a bus. Seat numbers are unique per bus; adding
// more seats than the bus capacity is rejected.
func (s *FleetService) AddSeat(busID uuid.UUID, req *models.CreateSeatRequest) (*models.Seat, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	bus, err := s.busRepo.GetByID(busID)
	if err != nil {
		return nil, err
	}

	existing, err := s.busRepo.GetSeatsByBusID(busID)
	if err != nil {
		return nil, fmt.Errorf("failed to count seats: %w", err)
	}
	if len(existing) >= bus.Capacity {
		return nil, fmt.Errorf("%w: bus already holds %d of %d seats", ErrValidation, len(existing), bus.Capacity)
	}

	seat := &models.Seat{
		BusID:      busID,
		SeatNumber: req.SeatNumber,
		SeatType:   req.SeatType,
		Status:     models.SeatStatusAvailable,
		IsHidden:   req.IsHidden,
	}
	if err := s.busRepo.CreateSeat(seat); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"bus_id":      busID,
		"seat_number": seat.SeatNumber,
		"seat_type":   seat.SeatType,
	}).Info("Seat added")

	return seat, nil
}

// ListSeats returns every seat of a bus, hidden seats included
func (s *FleetService) ListSeats(busID uuid.UUID) ([]models.Seat, error) {
	if _, err := s.busRepo.GetByID(busID); err != nil {
		return nil, err
	}
	return s.busRepo.GetSeatsByBusID(busID)
}
