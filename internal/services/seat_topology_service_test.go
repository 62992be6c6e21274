package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busline/booking-backend/internal/models"
)

func seatsNumbered(prefix string, count int) []models.Seat {
	seats := make([]models.Seat, count)
	for i := range seats {
		seats[i] = models.Seat{
			SeatNumber: fmt.Sprintf("%s%02d", prefix, i+1),
			SeatType:   models.SeatTypeStandard,
			Status:     models.SeatStatusAvailable,
		}
	}
	return seats
}

func TestInferColumns(t *testing.T) {
	tests := []struct {
		name     string
		seats    []models.Seat
		expected int
	}{
		{
			name:     "Twenty seats pick four columns",
			seats:    seatsNumbered("A", 20),
			expected: 4,
		},
		{
			name:     "Twelve seats pick three columns",
			seats:    seatsNumbered("A", 12),
			expected: 3,
		},
		{
			name:     "Fifteen seats pick three columns",
			seats:    seatsNumbered("B", 15),
			expected: 3,
		},
		{
			name:     "No parseable ordinals fall back to default",
			seats:    []models.Seat{{SeatNumber: "FRONT"}, {SeatNumber: "REAR"}},
			expected: 5,
		},
		{
			name: "Gapped ordinals are penalized the same for every candidate",
			seats: []models.Seat{
				{SeatNumber: "A01"}, {SeatNumber: "A02"}, {SeatNumber: "A05"},
				{SeatNumber: "A09"}, {SeatNumber: "A11"}, {SeatNumber: "A14"},
			},
			expected: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, inferColumns(tt.seats))
		})
	}
}

func TestInferColumnsDeterministic(t *testing.T) {
	seats := seatsNumbered("A", 20)
	first := inferColumns(seats)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, inferColumns(seats))
	}
}

func TestFloorPrefix(t *testing.T) {
	tests := []struct {
		seatNumber string
		expected   string
	}{
		{"A01", "A"},
		{"b12", "B"},
		{"VIP3", "VIP"},
		{"17", "A"},
		{"", "A"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, floorPrefix(tt.seatNumber), "seat %q", tt.seatNumber)
	}
}

func TestParseOrdinal(t *testing.T) {
	tests := []struct {
		seatNumber string
		expected   int
	}{
		{"A01", 1},
		{"A20", 20},
		{"B7", 7},
		{"A00", 0},
		{"FRONT", 0},
		{"", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseOrdinal(tt.seatNumber), "seat %q", tt.seatNumber)
	}
}

func TestBuildGrids(t *testing.T) {
	t.Run("Two Floors Sorted By Prefix", func(t *testing.T) {
		seats := append(seatsNumbered("B", 10), seatsNumbered("A", 20)...)

		grids := buildGrids(seats, nil, 100000, nil)
		require.Len(t, grids, 2)

		assert.Equal(t, "A", grids[0].Floor)
		assert.Equal(t, 4, grids[0].Columns)
		assert.Equal(t, 5, grids[0].Rows)
		assert.Len(t, grids[0].Seats, 20)

		assert.Equal(t, "B", grids[1].Floor)
		assert.Len(t, grids[1].Seats, 10)
	})

	t.Run("Positions Follow Ordinals Row-Major", func(t *testing.T) {
		grids := buildGrids(seatsNumbered("A", 20), nil, 100000, nil)
		require.Len(t, grids, 1)

		// 4 columns: A01 at (1,1), A05 starts row 2, A20 closes row 5.
		bySeat := make(map[string]models.SeatPosition)
		for _, ps := range grids[0].Seats {
			bySeat[ps.SeatNumber] = ps.Position
		}
		assert.Equal(t, models.SeatPosition{Floor: "A", Row: 1, Column: 1}, bySeat["A01"])
		assert.Equal(t, models.SeatPosition{Floor: "A", Row: 2, Column: 1}, bySeat["A05"])
		assert.Equal(t, models.SeatPosition{Floor: "A", Row: 5, Column: 4}, bySeat["A20"])
	})

	t.Run("Explicit Layout Overrides Inference", func(t *testing.T) {
		layout := models.SeatLayoutConfig{
			{Prefix: "A", Rows: 7, Columns: 5, Label: "Lower deck"},
		}

		grids := buildGrids(seatsNumbered("A", 20), layout, 100000, nil)
		require.Len(t, grids, 1)

		assert.Equal(t, 5, grids[0].Columns)
		assert.Equal(t, 7, grids[0].Rows)
		assert.Equal(t, "Lower deck", grids[0].Label)
	})

	t.Run("Zero Column Layout Falls Back To Inference", func(t *testing.T) {
		layout := models.SeatLayoutConfig{
			{Prefix: "A", Rows: 5, Columns: 0},
		}

		grids := buildGrids(seatsNumbered("A", 10), layout, 100000, nil)
		require.Len(t, grids, 1)

		assert.Equal(t, 5, grids[0].Columns)
		assert.Equal(t, 2, grids[0].Rows)
		assert.Len(t, grids[0].Seats, 10)
	})

	t.Run("Hidden Seats Keep Their Slot", func(t *testing.T) {
		seats := seatsNumbered("A", 12)
		seats[4].IsHidden = true

		grids := buildGrids(seats, nil, 100000, nil)
		require.Len(t, grids, 1)
		assert.Len(t, grids[0].Seats, 12)

		for _, ps := range grids[0].Seats {
			if ps.SeatNumber == "A05" {
				assert.True(t, ps.IsHidden)
				assert.Equal(t, 2, ps.Position.Row)
			}
		}
	})

	t.Run("Effective Prices Carry The Surcharge", func(t *testing.T) {
		seats := seatsNumbered("A", 4)
		seats[0].SeatType = models.SeatTypeVIP

		surcharges := map[models.SeatType]float64{
			models.SeatTypeVIP: 50000,
		}

		grids := buildGrids(seats, nil, 100000, surcharges)
		require.Len(t, grids, 1)

		for _, ps := range grids[0].Seats {
			if ps.SeatType == models.SeatTypeVIP {
				assert.Equal(t, float64(150000), ps.EffectivePrice)
			} else {
				assert.Equal(t, float64(100000), ps.EffectivePrice)
			}
		}
	})
}

func TestResolveSurcharge(t *testing.T) {
	cached := 70000.0
	surcharges := map[models.SeatType]float64{
		models.SeatTypeVIP: 50000,
	}

	t.Run("Seat Cache Wins", func(t *testing.T) {
		seat := &models.Seat{SeatType: models.SeatTypeVIP, PriceForSeatType: &cached}
		assert.Equal(t, 70000.0, resolveSurcharge(seat, surcharges))
	})

	t.Run("Route Seat Type Price", func(t *testing.T) {
		seat := &models.Seat{SeatType: models.SeatTypeVIP}
		assert.Equal(t, 50000.0, resolveSurcharge(seat, surcharges))
	})

	t.Run("No Configuration Means Zero", func(t *testing.T) {
		seat := &models.Seat{SeatType: models.SeatTypeLuxury}
		assert.Equal(t, 0.0, resolveSurcharge(seat, surcharges))
	})
}

func TestDisplayFromPrice(t *testing.T) {
	tests := []struct {
		name     string
		baseFare float64
		prices   []models.SeatTypePrice
		expected float64
	}{
		{
			name:     "No surcharges shows base fare",
			baseFare: 100000,
			expected: 100000,
		},
		{
			name:     "Standard surcharge preferred",
			baseFare: 100000,
			prices: []models.SeatTypePrice{
				{SeatType: models.SeatTypeVIP, Price: 50000},
				{SeatType: models.SeatTypeStandard, Price: 10000},
			},
			expected: 110000,
		},
		{
			name:     "Minimum surcharge when no standard row",
			baseFare: 100000,
			prices: []models.SeatTypePrice{
				{SeatType: models.SeatTypeVIP, Price: 50000},
				{SeatType: models.SeatTypeDouble, Price: 30000},
			},
			expected: 130000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, displayFromPrice(tt.baseFare, tt.prices))
		})
	}
}
