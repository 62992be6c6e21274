package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/busline/booking-backend/internal/database"
	"github.com/busline/booking-backend/internal/models"
	"github.com/busline/booking-backend/pkg/validator"
)

const ticketCodeRandomChars = 4

// TicketService handles the ticket lifecycle: booking, cancellation and the
// public code+phone lookup.
type TicketService struct {
	ticketRepo   *database.TicketRepository
	scheduleRepo *database.ScheduleRepository
	busRepo      *database.BusRepository
	topology     *SeatTopologyService
	phones       *validator.PhoneValidator
	logger       *logrus.Logger
}

// NewTicketService creates a new ticket service
func NewTicketService(
	ticketRepo *database.TicketRepository,
	scheduleRepo *database.ScheduleRepository,
	busRepo *database.BusRepository,
	topology *SeatTopologyService,
	logger *logrus.Logger,
) *TicketService {
	return &TicketService{
		ticketRepo:   ticketRepo,
		scheduleRepo: scheduleRepo,
		busRepo:      busRepo,
		topology:     topology,
		phones:       validator.NewPhoneValidator(),
		logger:       logger,
	}
}

// Create books a seat on a schedule for a user. The price, seat type and
// travel times are snapshotted onto the ticket so later route or surcharge
// edits never change what was sold. The ticket insert and the schedule's
// seat reservation commit together or not at all.
func (s *TicketService) Create(userID uuid.UUID, req *models.CreateTicketRequest) (*models.Ticket, error) {
	scheduleID, err := uuid.Parse(req.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid schedule id", ErrValidation)
	}
	seatID, err := uuid.Parse(req.SeatID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid seat id", ErrValidation)
	}

	schedule, err := s.scheduleRepo.GetByID(scheduleID)
	if err != nil {
		return nil, err
	}

	if !departureInFuture(schedule.DepartureTime) {
		return nil, fmt.Errorf("%w: departure time is in the past", ErrValidation)
	}
	if !schedule.ArrivalTime.After(schedule.DepartureTime) {
		return nil, fmt.Errorf("%w: arrival time is not after departure", ErrValidation)
	}

	seat, err := s.busRepo.GetSeatByID(seatID)
	if err != nil {
		return nil, err
	}
	if seat.BusID != schedule.BusID {
		return nil, fmt.Errorf("%w: seat does not belong to the schedule's bus", ErrValidation)
	}
	if seat.IsHidden || seat.Status != models.SeatStatusAvailable {
		return nil, database.ErrSeatUnavailable
	}

	base, surcharge, err := s.topology.EffectivePrice(seat, schedule.RouteID)
	if err != nil {
		return nil, err
	}

	// Codes are stored upper-case; Lookup normalizes its input the same way.
	ticket := &models.Ticket{
		UserID:        userID,
		ScheduleID:    scheduleID,
		SeatID:        seatID,
		TicketCode:    strings.ToUpper(strings.TrimSpace(req.TicketCode)),
		SeatType:      seat.SeatType,
		Price:         base + surcharge,
		DepartureTime: schedule.DepartureTime,
		ArrivalTime:   schedule.ArrivalTime,
	}
	generated := ticket.TicketCode == ""
	if generated {
		ticket.TicketCode = generateTicketCode()
	}

	err = s.ticketRepo.CreateWithReservation(ticket)
	if errors.Is(err, database.ErrDuplicateTicketCode) && generated {
		// One retry with a fresh code; a second collision surfaces as the
		// conflict it is.
		ticket.ID = uuid.Nil
		ticket.TicketCode = generateTicketCode()
		err = s.ticketRepo.CreateWithReservation(ticket)
	}
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"ticket_id":   ticket.ID,
		"ticket_code": ticket.TicketCode,
		"schedule_id": scheduleID,
		"seat_id":     seatID,
		"price":       ticket.Price,
	}).Info("Ticket created")

	return ticket, nil
}

// Cancel transitions a BOOKED ticket to CANCELLED and returns its seat to
// the schedule pool in the same transaction.
func (s *TicketService) Cancel(ticketID uuid.UUID) (*models.Ticket, error) {
	ticket, err := s.ticketRepo.CancelWithRelease(ticketID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"ticket_id":   ticket.ID,
		"ticket_code": ticket.TicketCode,
		"schedule_id": ticket.ScheduleID,
	}).Info("Ticket cancelled, seat released")

	return ticket, nil
}

// Lookup is the public, unauthenticated path: both the code and the owner's
// phone must match exactly or the result is a plain not-found.
func (s *TicketService) Lookup(req *models.TicketLookupRequest) (*models.Ticket, error) {
	phone, err := s.phones.Validate(req.Phone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	code := strings.ToUpper(strings.TrimSpace(req.TicketCode))
	if code == "" {
		return nil, fmt.Errorf("%w: ticket code is required", ErrValidation)
	}

	return s.ticketRepo.GetByCodeAndPhone(code, phone)
}

// GetByID returns one ticket
func (s *TicketService) GetByID(ticketID uuid.UUID) (*models.Ticket, error) {
	return s.ticketRepo.GetByID(ticketID)
}

// generateTicketCode builds a human-readable code: the current timestamp in
// base 36 followed by 4 random base-36 characters, upper-cased. Uniqueness
// is enforced by the storage layer, not checked here.
func generateTicketCode() string {
	code := strconv.FormatInt(time.Now().UnixMilli(), 36) + randomBase36(ticketCodeRandomChars)
	return strings.ToUpper(code)
}

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomBase36(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(base36Alphabet))))
		if err != nil {
			// crypto/rand only fails when the platform source is broken;
			// fall back to a time-derived character rather than panic.
			idx = big.NewInt(time.Now().UnixNano() % int64(len(base36Alphabet)))
		}
		b.WriteByte(base36Alphabet[idx.Int64()])
	}
	return b.String()
}
