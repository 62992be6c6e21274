package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/busline/booking-backend/internal/database"
	"github.com/busline/booking-backend/internal/models"
)

// ErrValidation marks malformed or out-of-range input. Callers report it and
// never retry.
var ErrValidation = errors.New("validation error")

// CapacityService owns schedule creation rules and the seat counter's
// lifecycle. The counter itself is mutated by single atomic statements in
// the schedule repository; this service adds the cross-entity checks.
type CapacityService struct {
	scheduleRepo *database.ScheduleRepository
	routeRepo    *database.RouteRepository
	busRepo      *database.BusRepository
	logger       *logrus.Logger
}

// NewCapacityService creates a new capacity service
func NewCapacityService(
	scheduleRepo *database.ScheduleRepository,
	routeRepo *database.RouteRepository,
	busRepo *database.BusRepository,
	logger *logrus.Logger,
) *CapacityService {
	return &CapacityService{
		scheduleRepo: scheduleRepo,
		routeRepo:    routeRepo,
		busRepo:      busRepo,
		logger:       logger,
	}
}

// CreateSchedule validates and creates a schedule with a full seat pool
func (s *CapacityService) CreateSchedule(req *models.CreateScheduleRequest) (*models.Schedule, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	routeID, err := uuid.Parse(req.RouteID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid route id", ErrValidation)
	}
	busID, err := uuid.Parse(req.BusID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid bus id", ErrValidation)
	}

	route, err := s.routeRepo.GetByID(routeID)
	if err != nil {
		return nil, err
	}
	bus, err := s.busRepo.GetByID(busID)
	if err != nil {
		return nil, err
	}

	// The bus must be operated by the company that owns the route
	if route.CompanyID != nil && bus.CompanyID != nil && *route.CompanyID != *bus.CompanyID {
		return nil, fmt.Errorf("%w: bus does not belong to the route's company", ErrValidation)
	}

	if req.TotalSeats > bus.Capacity {
		return nil, fmt.Errorf("%w: total seats %d exceed bus capacity %d", ErrValidation, req.TotalSeats, bus.Capacity)
	}

	schedule := &models.Schedule{
		RouteID:       routeID,
		BusID:         busID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		TotalSeats:    req.TotalSeats,
	}

	if err := s.scheduleRepo.Create(schedule); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"schedule_id": schedule.ID,
		"route_id":    routeID,
		"bus_id":      busID,
		"total_seats": schedule.TotalSeats,
	}).Info("Schedule created")

	return schedule, nil
}

// Reserve takes count seats from the schedule's pool. Fails with
// ErrInsufficientCapacity when the pool is short or the schedule is
// cancelled; never retried by callers since a retry could double-book.
func (s *CapacityService) Reserve(scheduleID uuid.UUID, count int) error {
	if count <= 0 {
		return fmt.Errorf("%w: reserve count must be positive", ErrValidation)
	}
	if err := s.scheduleRepo.Reserve(scheduleID, count); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"schedule_id": scheduleID,
		"count":       count,
	}).Info("Seats reserved")

	return nil
}

// Release returns count seats to the pool, capped at the schedule's total
func (s *CapacityService) Release(scheduleID uuid.UUID, count int) error {
	if count <= 0 {
		return fmt.Errorf("%w: release count must be positive", ErrValidation)
	}
	if err := s.scheduleRepo.Release(scheduleID, count); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"schedule_id": scheduleID,
		"count":       count,
	}).Info("Seats released")

	return nil
}

// Cancel marks the schedule CANCELLED. One-way; the counter is untouched.
func (s *CapacityService) Cancel(scheduleID uuid.UUID) error {
	if err := s.scheduleRepo.Cancel(scheduleID); err != nil {
		return err
	}

	s.logger.WithField("schedule_id", scheduleID).Info("Schedule cancelled")
	return nil
}

// GetSchedule returns one schedule
func (s *CapacityService) GetSchedule(scheduleID uuid.UUID) (*models.Schedule, error) {
	return s.scheduleRepo.GetByID(scheduleID)
}

// departureInFuture is the booking precondition shared with the ticket
// lifecycle.
func departureInFuture(departure time.Time) bool {
	return departure.After(time.Now())
}
