package services

import (
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busline/booking-backend/internal/database"
	"github.com/busline/booking-backend/internal/models"
)

type fleetFixture struct {
	service *FleetService
	mock    sqlmock.Sqlmock
}

func newFleetFixture(t *testing.T) *fleetFixture {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db := &database.PostgresDB{DB: sqlx.NewDb(sqlDB, "sqlmock")}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	service := NewFleetService(
		database.NewRouteRepository(db),
		database.NewBusRepository(db),
		logger,
	)
	return &fleetFixture{service: service, mock: mock}
}

func TestCreateBus(t *testing.T) {
	t.Run("Stores Explicit Layout", func(t *testing.T) {
		f := newFleetFixture(t)
		f.mock.ExpectExec(`INSERT INTO buses`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		bus, err := f.service.CreateBus(&models.CreateBusRequest{
			LicensePlate: "51B-12345",
			Capacity:     40,
			SeatLayoutConfig: models.SeatLayoutConfig{
				{Prefix: "A", Rows: 5, Columns: 4, Label: "Lower deck"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, bus.FloorCount)
		require.Len(t, bus.SeatLayoutConfig, 1)
		assert.Equal(t, 4, bus.SeatLayoutConfig[0].Columns)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Rejects Zero Column Layout", func(t *testing.T) {
		f := newFleetFixture(t)

		bus, err := f.service.CreateBus(&models.CreateBusRequest{
			LicensePlate: "51B-12345",
			Capacity:     40,
			SeatLayoutConfig: models.SeatLayoutConfig{
				{Prefix: "A", Rows: 5, Columns: 0},
			},
		})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Nil(t, bus)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Rejects Zero Row Layout", func(t *testing.T) {
		f := newFleetFixture(t)

		bus, err := f.service.CreateBus(&models.CreateBusRequest{
			LicensePlate: "51B-12345",
			Capacity:     40,
			SeatLayoutConfig: models.SeatLayoutConfig{
				{Prefix: "B", Rows: 0, Columns: 4},
			},
		})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Nil(t, bus)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Rejects Layout Without Prefix", func(t *testing.T) {
		f := newFleetFixture(t)

		bus, err := f.service.CreateBus(&models.CreateBusRequest{
			LicensePlate: "51B-12345",
			Capacity:     40,
			SeatLayoutConfig: models.SeatLayoutConfig{
				{Rows: 5, Columns: 4},
			},
		})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Nil(t, bus)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}
