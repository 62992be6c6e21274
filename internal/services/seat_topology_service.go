package services

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/busline/booking-backend/internal/database"
	"github.com/busline/booking-backend/internal/models"
)

// Candidate column counts tried during grid inference, in tie-break order
var candidateColumns = []int{3, 4, 5, 6, 7, 8}

const (
	defaultColumns = 5
	// Penalty applied when the parsed ordinals don't form a clean
	// contiguous block that fits the candidate grid
	nonContiguousPenalty = 10
)

// SeatTopologyService turns a bus's flat seat list into a floor/row/column
// grid and resolves each seat's effective price against a route.
type SeatTopologyService struct {
	busRepo   *database.BusRepository
	routeRepo *database.RouteRepository
	logger    *logrus.Logger
}

// NewSeatTopologyService creates a new seat topology service
func NewSeatTopologyService(busRepo *database.BusRepository, routeRepo *database.RouteRepository, logger *logrus.Logger) *SeatTopologyService {
	return &SeatTopologyService{
		busRepo:   busRepo,
		routeRepo: routeRepo,
		logger:    logger,
	}
}

// ResolveGrid returns the bus's seats grouped per floor with grid positions
// and effective prices for the given route. A bus without seats yields an
// empty slice so the caller can render "no layout configured".
func (s *SeatTopologyService) ResolveGrid(busID, routeID uuid.UUID) ([]models.FloorGrid, error) {
	bus, err := s.busRepo.GetByID(busID)
	if err != nil {
		return nil, err
	}

	route, err := s.routeRepo.GetByID(routeID)
	if err != nil {
		return nil, err
	}

	seats, err := s.busRepo.GetSeatsByBusID(busID)
	if err != nil {
		return nil, err
	}
	if len(seats) == 0 {
		return []models.FloorGrid{}, nil
	}

	surcharges, err := s.surchargesByType(routeID)
	if err != nil {
		return nil, err
	}

	grids := buildGrids(seats, bus.SeatLayoutConfig, route.Price, surcharges)

	s.logger.WithFields(logrus.Fields{
		"bus_id":   busID,
		"route_id": routeID,
		"floors":   len(grids),
		"seats":    len(seats),
	}).Debug("Resolved seat grid")

	return grids, nil
}

// EffectivePrice resolves one seat's booking price: route base fare plus the
// surcharge, in precedence order seat-cached price, then the route's
// seat-type price row, then zero.
func (s *SeatTopologyService) EffectivePrice(seat *models.Seat, routeID uuid.UUID) (base, surcharge float64, err error) {
	route, err := s.routeRepo.GetByID(routeID)
	if err != nil {
		return 0, 0, err
	}

	surcharges, err := s.surchargesByType(routeID)
	if err != nil {
		return 0, 0, err
	}

	return route.Price, resolveSurcharge(seat, surcharges), nil
}

// DisplayFromPrice computes the route's advertised "from" price: base fare
// plus the STANDARD surcharge when configured, else the minimum configured
// surcharge, else the base fare alone. A display heuristic only — booking
// always prices through EffectivePrice.
func (s *SeatTopologyService) DisplayFromPrice(routeID uuid.UUID) (float64, error) {
	route, err := s.routeRepo.GetByID(routeID)
	if err != nil {
		return 0, err
	}

	prices, err := s.routeRepo.GetSeatTypePrices(routeID)
	if err != nil {
		return 0, err
	}

	return displayFromPrice(route.Price, prices), nil
}

func (s *SeatTopologyService) surchargesByType(routeID uuid.UUID) (map[models.SeatType]float64, error) {
	prices, err := s.routeRepo.GetSeatTypePrices(routeID)
	if err != nil {
		return nil, err
	}

	byType := make(map[models.SeatType]float64, len(prices))
	for _, p := range prices {
		byType[p.SeatType] = p.Price
	}
	return byType, nil
}

func displayFromPrice(baseFare float64, prices []models.SeatTypePrice) float64 {
	if len(prices) == 0 {
		return baseFare
	}

	min := prices[0].Price
	for _, p := range prices {
		if p.SeatType == models.SeatTypeStandard {
			return baseFare + p.Price
		}
		if p.Price < min {
			min = p.Price
		}
	}
	return baseFare + min
}

func resolveSurcharge(seat *models.Seat, surcharges map[models.SeatType]float64) float64 {
	if seat.PriceForSeatType != nil {
		return *seat.PriceForSeatType
	}
	if price, ok := surcharges[seat.SeatType]; ok {
		return price
	}
	return 0
}

// buildGrids partitions seats into floors by seat-number prefix and places
// each seat on its floor's grid.
func buildGrids(seats []models.Seat, layout models.SeatLayoutConfig, baseFare float64, surcharges map[models.SeatType]float64) []models.FloorGrid {
	floors := make(map[string][]models.Seat)
	var order []string
	for _, seat := range seats {
		prefix := floorPrefix(seat.SeatNumber)
		if _, seen := floors[prefix]; !seen {
			order = append(order, prefix)
		}
		floors[prefix] = append(floors[prefix], seat)
	}
	sort.Strings(order)

	grids := make([]models.FloorGrid, 0, len(order))
	for _, prefix := range order {
		grids = append(grids, buildFloorGrid(prefix, floors[prefix], layout.FloorFor(prefix), baseFare, surcharges))
	}
	return grids
}

func buildFloorGrid(prefix string, seats []models.Seat, explicit *models.FloorLayout, baseFare float64, surcharges map[models.SeatType]float64) models.FloorGrid {
	ordinals := make([]int, len(seats))
	for i, seat := range seats {
		n := parseOrdinal(seat.SeatNumber)
		if n <= 0 {
			// Malformed numbers still render, placed by their list index
			n = i + 1
		}
		ordinals[i] = n
	}

	var columns int
	label := ""
	// A stored layout with a non-positive column count cannot place seats;
	// such floors go through inference instead.
	usable := explicit != nil && explicit.Columns >= 1
	if usable {
		columns = explicit.Columns
		label = explicit.Label
	} else {
		columns = inferColumns(seats)
	}

	grid := models.FloorGrid{
		Floor:   prefix,
		Label:   label,
		Columns: columns,
		Seats:   make([]models.PositionedSeat, 0, len(seats)),
	}

	maxRow := 0
	for i, seat := range seats {
		row := (ordinals[i]-1)/columns + 1
		col := (ordinals[i]-1)%columns + 1
		if row > maxRow {
			maxRow = row
		}
		grid.Seats = append(grid.Seats, models.PositionedSeat{
			Seat: seat,
			Position: models.SeatPosition{
				Floor:  prefix,
				Row:    row,
				Column: col,
			},
			EffectivePrice: baseFare + resolveSurcharge(&seat, surcharges),
		})
	}

	grid.Rows = maxRow
	if usable && explicit.Rows > grid.Rows {
		grid.Rows = explicit.Rows
	}

	return grid
}

// inferColumns picks a column count for a floor from the fixed candidate set
// by minimizing |seatCount - rows*columns|, penalized unless the parsed
// ordinals form a contiguous run [min..max] that fits the grid. The first
// candidate reaching the minimum cost in ascending order wins.
func inferColumns(seats []models.Seat) int {
	ordinals := parsedOrdinals(seats)
	if len(ordinals) == 0 {
		return defaultColumns
	}

	seatCount := len(ordinals)
	contiguous, max := contiguousRun(ordinals)

	best := candidateColumns[0]
	bestCost := -1
	for _, cols := range candidateColumns {
		rows := (seatCount + cols - 1) / cols
		cells := rows * cols
		cost := cells - seatCount
		if cost < 0 {
			cost = -cost
		}
		if !(contiguous && max <= cells) {
			cost += nonContiguousPenalty
		}
		if bestCost < 0 || cost < bestCost {
			best = cols
			bestCost = cost
		}
	}
	return best
}

func parsedOrdinals(seats []models.Seat) []int {
	var ordinals []int
	for _, seat := range seats {
		if n := parseOrdinal(seat.SeatNumber); n > 0 {
			ordinals = append(ordinals, n)
		}
	}
	return ordinals
}

// contiguousRun reports whether the ordinals cover [min..max] without gaps
// or duplicates, and returns the maximum ordinal.
func contiguousRun(ordinals []int) (bool, int) {
	seen := make(map[int]bool, len(ordinals))
	min, max := ordinals[0], ordinals[0]
	for _, n := range ordinals {
		if seen[n] {
			return false, maxOf(ordinals)
		}
		seen[n] = true
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	return max-min+1 == len(ordinals), max
}

func maxOf(ordinals []int) int {
	max := ordinals[0]
	for _, n := range ordinals {
		if n > max {
			max = n
		}
	}
	return max
}

// floorPrefix returns the leading alphabetic run of a seat number, the floor
// key. Numbers without a prefix land on floor "A".
func floorPrefix(seatNumber string) string {
	i := 0
	for i < len(seatNumber) && unicode.IsLetter(rune(seatNumber[i])) {
		i++
	}
	if i == 0 {
		return "A"
	}
	return strings.ToUpper(seatNumber[:i])
}

// parseOrdinal extracts the trailing digits of a seat number as its ordinal
// position. Returns 0 when nothing parses or the value is zero.
func parseOrdinal(seatNumber string) int {
	end := len(seatNumber)
	start := end
	for start > 0 && seatNumber[start-1] >= '0' && seatNumber[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0
	}
	n, err := strconv.Atoi(seatNumber[start:end])
	if err != nil {
		return 0
	}
	return n
}
