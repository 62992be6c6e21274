package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ScheduleStatus represents the sale status of a schedule
type ScheduleStatus string

const (
	ScheduleStatusAvailable ScheduleStatus = "AVAILABLE"
	ScheduleStatusFull      ScheduleStatus = "FULL"
	ScheduleStatusCancelled ScheduleStatus = "CANCELLED" // Terminal
)

// Schedule is one scheduled run of a bus on a route with its own seat inventory.
// AvailableSeat never exceeds TotalSeats and never goes negative; the status
// flips AVAILABLE ⇄ FULL as the counter crosses zero. CANCELLED is one-way.
type Schedule struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	RouteID       uuid.UUID      `json:"route_id" db:"route_id"`
	BusID         uuid.UUID      `json:"bus_id" db:"bus_id"`
	StartDate     time.Time      `json:"start_date" db:"start_date"`
	EndDate       time.Time      `json:"end_date" db:"end_date"`
	DepartureTime time.Time      `json:"departure_time" db:"departure_time"`
	ArrivalTime   time.Time      `json:"arrival_time" db:"arrival_time"`
	AvailableSeat int            `json:"available_seat" db:"available_seat"`
	TotalSeats    int            `json:"total_seats" db:"total_seats"`
	Status        ScheduleStatus `json:"status" db:"status"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// CreateScheduleRequest represents the request to create a schedule
type CreateScheduleRequest struct {
	RouteID       string    `json:"route_id" binding:"required,uuid"`
	BusID         string    `json:"bus_id" binding:"required,uuid"`
	StartDate     time.Time `json:"start_date" binding:"required"`
	EndDate       time.Time `json:"end_date" binding:"required"`
	DepartureTime time.Time `json:"departure_time" binding:"required"`
	ArrivalTime   time.Time `json:"arrival_time" binding:"required"`
	TotalSeats    int       `json:"total_seats" binding:"required,gt=0"`
}

// Validate checks the request's internal date/time consistency.
// Cross-entity rules (bus capacity, company ownership) are checked by the
// capacity service against the loaded records.
func (r *CreateScheduleRequest) Validate() error {
	if r.EndDate.Before(r.StartDate) {
		return errors.New("end date must not be before start date")
	}
	if !r.ArrivalTime.After(r.DepartureTime) {
		return errors.New("arrival time must be after departure time")
	}
	dep := r.DepartureTime
	if dep.Before(r.StartDate) || dep.After(r.EndDate.Add(24*time.Hour)) {
		return errors.New("departure must fall within the schedule validity window")
	}
	return nil
}
