package service

import (
	"fmt"
	"time"

	"clinic-appointment-service/internal/domain/entity"
)

const (
	minYear = 1
	maxYear = 9999
)

// SlotGenerator expands a calendar year into available slots on the time grid.
// It performs no I/O.
type SlotGenerator struct {
	grid       *TimeGrid
	providerID string
}

func NewSlotGenerator(grid *TimeGrid, providerID string) *SlotGenerator {
	return &SlotGenerator{grid: grid, providerID: providerID}
}

// GenerateYear returns one available slot per (day, grid time) of year,
// ordered by date then time.
func (g *SlotGenerator) GenerateYear(year int) ([]entity.AppointmentSlot, error) {
	if year < minYear || year > maxYear {
		return nil, fmt.Errorf("%w: year %d outside %d-%d", ErrInvalidRange, year, minYear, maxYear)
	}

	first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(1, 0, 0)

	times := g.grid.Times()
	slots := make([]entity.AppointmentSlot, 0, DaysInYear(year)*len(times))
	for day := first; day.Before(next); day = day.AddDate(0, 0, 1) {
		date := day.Format(DateLayout)
		for _, clock := range times {
			slots = append(slots, entity.AppointmentSlot{
				SlotID:     entity.SlotIDFor(date, clock),
				SlotDate:   date,
				SlotTime:   clock,
				Status:     entity.SlotStatusAvailable,
				ProviderID: g.providerID,
			})
		}
	}
	return slots, nil
}

// DaysInYear returns 365 or 366.
func DaysInYear(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}
