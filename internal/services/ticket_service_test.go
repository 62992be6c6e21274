package services

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busline/booking-backend/internal/database"
	"github.com/busline/booking-backend/internal/models"
)

type ticketServiceFixture struct {
	service    *TicketService
	routeRepo  *database.RouteRepository
	mock       sqlmock.Sqlmock
	userID     uuid.UUID
	scheduleID uuid.UUID
	busID      uuid.UUID
	routeID    uuid.UUID
	seatID     uuid.UUID
}

func newTicketServiceFixture(t *testing.T) *ticketServiceFixture {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db := &database.PostgresDB{DB: sqlx.NewDb(sqlDB, "sqlmock")}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	routeRepo := database.NewRouteRepository(db)
	busRepo := database.NewBusRepository(db)
	scheduleRepo := database.NewScheduleRepository(db)
	ticketRepo := database.NewTicketRepository(db, scheduleRepo)
	topology := NewSeatTopologyService(busRepo, routeRepo, logger)

	return &ticketServiceFixture{
		service:    NewTicketService(ticketRepo, scheduleRepo, busRepo, topology, logger),
		routeRepo:  routeRepo,
		mock:       mock,
		userID:     uuid.New(),
		scheduleID: uuid.New(),
		busID:      uuid.New(),
		routeID:    uuid.New(),
		seatID:     uuid.New(),
	}
}

// expectSchedule queues the schedule load with the given departure offset
func (f *ticketServiceFixture) expectSchedule(departureIn time.Duration) {
	now := time.Now()
	dep := now.Add(departureIn)
	f.mock.ExpectQuery(`FROM schedules`).
		WithArgs(f.scheduleID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "route_id", "bus_id", "start_date", "end_date",
			"departure_time", "arrival_time", "available_seat", "total_seats",
			"status", "created_at", "updated_at",
		}).AddRow(
			f.scheduleID, f.routeID, f.busID, now, now.Add(48*time.Hour),
			dep, dep.Add(5*time.Hour), 10, 40,
			"AVAILABLE", now, now,
		))
}

// expectSeat queues the seat load
func (f *ticketServiceFixture) expectSeat(busID uuid.UUID, seatType models.SeatType, status models.SeatStatus, hidden bool) {
	now := time.Now()
	f.mock.ExpectQuery(`FROM seats`).
		WithArgs(f.seatID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "bus_id", "seat_number", "seat_type", "status",
			"price_for_seat_type", "is_hidden", "created_at", "updated_at",
		}).AddRow(
			f.seatID, busID, "A05", seatType, status,
			nil, hidden, now, now,
		))
}

// expectPricing queues the route and surcharge loads backing EffectivePrice
func (f *ticketServiceFixture) expectPricing(baseFare float64, surcharges map[models.SeatType]float64) {
	now := time.Now()
	f.mock.ExpectQuery(`FROM routes`).
		WithArgs(f.routeID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "departure_station_id", "arrival_station_id", "price",
			"duration", "distance", "company_id", "deleted_at", "created_at", "updated_at",
		}).AddRow(
			f.routeID, uuid.New(), uuid.New(), baseFare,
			300, 280.5, nil, nil, now, now,
		))

	rows := sqlmock.NewRows([]string{"id", "route_id", "seat_type", "price", "created_at", "updated_at"})
	for seatType, price := range surcharges {
		rows.AddRow(uuid.New(), f.routeID, seatType, price, now, now)
	}
	f.mock.ExpectQuery(`FROM seat_type_prices`).
		WithArgs(f.routeID).
		WillReturnRows(rows)
}

// expectBookingTx queues the reservation transaction
func (f *ticketServiceFixture) expectBookingTx(insertErr error) {
	f.mock.ExpectBegin()
	f.mock.ExpectExec(`UPDATE schedules`).
		WithArgs(f.scheduleID, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec(`UPDATE seats SET status = 'BOOKED'`).
		WithArgs(f.seatID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if insertErr != nil {
		f.mock.ExpectExec(`INSERT INTO tickets`).WillReturnError(insertErr)
		f.mock.ExpectRollback()
		return
	}
	f.mock.ExpectExec(`INSERT INTO tickets`).WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()
}

func (f *ticketServiceFixture) request() *models.CreateTicketRequest {
	return &models.CreateTicketRequest{
		ScheduleID: f.scheduleID.String(),
		SeatID:     f.seatID.String(),
	}
}

func TestTicketCreate(t *testing.T) {
	t.Run("Snapshots Price And Times", func(t *testing.T) {
		f := newTicketServiceFixture(t)
		f.expectSchedule(24 * time.Hour)
		f.expectSeat(f.busID, models.SeatTypeVIP, models.SeatStatusAvailable, false)
		f.expectPricing(100000, map[models.SeatType]float64{models.SeatTypeVIP: 50000})
		f.expectBookingTx(nil)

		ticket, err := f.service.Create(f.userID, f.request())
		require.NoError(t, err)
		assert.Equal(t, float64(150000), ticket.Price)
		assert.Equal(t, models.SeatTypeVIP, ticket.SeatType)
		assert.NotEmpty(t, ticket.TicketCode)
		assert.Equal(t, f.userID, ticket.UserID)
		assert.True(t, ticket.DepartureTime.After(time.Now()))

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Past Departure Rejected", func(t *testing.T) {
		f := newTicketServiceFixture(t)
		f.expectSchedule(-time.Hour)

		ticket, err := f.service.Create(f.userID, f.request())
		assert.ErrorIs(t, err, ErrValidation)
		assert.Nil(t, ticket)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Seat On Another Bus Rejected", func(t *testing.T) {
		f := newTicketServiceFixture(t)
		f.expectSchedule(24 * time.Hour)
		f.expectSeat(uuid.New(), models.SeatTypeStandard, models.SeatStatusAvailable, false)

		ticket, err := f.service.Create(f.userID, f.request())
		assert.ErrorIs(t, err, ErrValidation)
		assert.Nil(t, ticket)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Hidden Seat Not Sellable", func(t *testing.T) {
		f := newTicketServiceFixture(t)
		f.expectSchedule(24 * time.Hour)
		f.expectSeat(f.busID, models.SeatTypeStandard, models.SeatStatusAvailable, true)

		ticket, err := f.service.Create(f.userID, f.request())
		assert.ErrorIs(t, err, database.ErrSeatUnavailable)
		assert.Nil(t, ticket)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Booked Seat Not Sellable", func(t *testing.T) {
		f := newTicketServiceFixture(t)
		f.expectSchedule(24 * time.Hour)
		f.expectSeat(f.busID, models.SeatTypeStandard, models.SeatStatusBooked, false)

		ticket, err := f.service.Create(f.userID, f.request())
		assert.ErrorIs(t, err, database.ErrSeatUnavailable)
		assert.Nil(t, ticket)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Generated Code Collision Retried Once", func(t *testing.T) {
		f := newTicketServiceFixture(t)
		f.expectSchedule(24 * time.Hour)
		f.expectSeat(f.busID, models.SeatTypeStandard, models.SeatStatusAvailable, false)
		f.expectPricing(100000, nil)
		f.expectBookingTx(&pq.Error{Code: "23505", Constraint: "tickets_ticket_code_key"})
		f.expectBookingTx(nil)

		ticket, err := f.service.Create(f.userID, f.request())
		require.NoError(t, err)
		assert.NotEmpty(t, ticket.TicketCode)
		assert.Equal(t, float64(100000), ticket.Price)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Caller Supplied Code Upper Cased", func(t *testing.T) {
		f := newTicketServiceFixture(t)
		f.expectSchedule(24 * time.Hour)
		f.expectSeat(f.busID, models.SeatTypeStandard, models.SeatStatusAvailable, false)
		f.expectPricing(100000, nil)
		f.expectBookingTx(nil)

		req := f.request()
		req.TicketCode = " mbok7f2qabcd "

		ticket, err := f.service.Create(f.userID, req)
		require.NoError(t, err)
		assert.Equal(t, "MBOK7F2QABCD", ticket.TicketCode)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Caller Supplied Code Never Retried", func(t *testing.T) {
		f := newTicketServiceFixture(t)
		f.expectSchedule(24 * time.Hour)
		f.expectSeat(f.busID, models.SeatTypeStandard, models.SeatStatusAvailable, false)
		f.expectPricing(100000, nil)
		f.expectBookingTx(&pq.Error{Code: "23505", Constraint: "tickets_ticket_code_key"})

		req := f.request()
		req.TicketCode = "TAKEN123"

		ticket, err := f.service.Create(f.userID, req)
		assert.ErrorIs(t, err, database.ErrDuplicateTicketCode)
		assert.Nil(t, ticket)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestTicketPriceSnapshotImmutable(t *testing.T) {
	f := newTicketServiceFixture(t)
	f.expectSchedule(24 * time.Hour)
	f.expectSeat(f.busID, models.SeatTypeVIP, models.SeatStatusAvailable, false)
	f.expectPricing(100000, map[models.SeatType]float64{models.SeatTypeVIP: 50000})
	f.expectBookingTx(nil)

	ticket, err := f.service.Create(f.userID, f.request())
	require.NoError(t, err)
	require.Equal(t, float64(150000), ticket.Price)

	// The operator raises the base fare after the sale.
	f.mock.ExpectExec(`UPDATE routes`).
		WithArgs(f.routeID, float64(250000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, f.routeRepo.UpdateBaseFare(f.routeID, 250000))

	// Re-reading the ticket touches only the tickets table; the sold price
	// is the one snapshotted at booking time, not a recomputation.
	now := time.Now()
	f.mock.ExpectQuery(`FROM tickets`).
		WithArgs(ticket.ID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "schedule_id", "seat_id", "ticket_code",
			"seat_type", "price", "departure_time", "arrival_time",
			"status", "payment_status", "payment_ref", "paid_at", "cancelled_at",
			"created_at", "updated_at",
		}).AddRow(
			ticket.ID, f.userID, f.scheduleID, f.seatID, ticket.TicketCode,
			"VIP", ticket.Price, ticket.DepartureTime, ticket.ArrivalTime,
			"BOOKED", "PENDING", nil, nil, nil,
			now, now,
		))

	reread, err := f.service.GetByID(ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(150000), reread.Price)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestTicketLookup(t *testing.T) {
	t.Run("Normalizes Code And Phone", func(t *testing.T) {
		f := newTicketServiceFixture(t)
		now := time.Now()

		f.mock.ExpectQuery(`FROM tickets t`).
			WithArgs("MBOK7F2QABCD", "0912345678").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "schedule_id", "seat_id", "ticket_code",
				"seat_type", "price", "departure_time", "arrival_time",
				"status", "payment_status", "payment_ref", "paid_at", "cancelled_at",
				"created_at", "updated_at",
			}).AddRow(
				uuid.New(), f.userID, f.scheduleID, f.seatID, "MBOK7F2QABCD",
				"STANDARD", 100000, now.Add(24*time.Hour), now.Add(29*time.Hour),
				"BOOKED", "PAID", "14226112", now, nil,
				now, now,
			))

		ticket, err := f.service.Lookup(&models.TicketLookupRequest{
			TicketCode: "  mbok7f2qabcd ",
			Phone:      "+84912345678",
		})
		require.NoError(t, err)
		assert.Equal(t, "MBOK7F2QABCD", ticket.TicketCode)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Invalid Phone Rejected Before Hitting Storage", func(t *testing.T) {
		f := newTicketServiceFixture(t)

		ticket, err := f.service.Lookup(&models.TicketLookupRequest{
			TicketCode: "MBOK7F2QABCD",
			Phone:      "12345",
		})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Nil(t, ticket)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestGenerateTicketCode(t *testing.T) {
	code := generateTicketCode()
	assert.NotEmpty(t, code)
	assert.Equal(t, strings.ToUpper(code), code)

	// Codes embed a millisecond timestamp, so two calls in a loop still
	// collide only on the random suffix.
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[generateTicketCode()] = true
	}
	assert.Greater(t, len(seen), 90)
}
