package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidRange is returned for a grid window or calendar year that cannot produce slots
	ErrInvalidRange = errors.New("invalid range")
	// ErrInvalidTime is returned for a time of day that is not HH:MM or HH:MM:00
	ErrInvalidTime = errors.New("invalid time of day, use HH:MM")
)

const (
	clockLayout        = "15:04"
	clockSecondsLayout = "15:04:05"
	DateLayout         = "2006-01-02"
)

// TimeGrid is the ordered list of times of day at which slots exist.
// The same grid is shared by slot generation and the availability query.
type TimeGrid struct {
	times []string
	index map[string]struct{}
}

// NewTimeGrid builds a grid from start to end inclusive, stepping by interval.
// The window must be a whole number of intervals.
func NewTimeGrid(start, end string, interval time.Duration) (*TimeGrid, error) {
	startAt, err := time.Parse(clockLayout, start)
	if err != nil {
		return nil, fmt.Errorf("%w: start %q: %v", ErrInvalidRange, start, err)
	}
	endAt, err := time.Parse(clockLayout, end)
	if err != nil {
		return nil, fmt.Errorf("%w: end %q: %v", ErrInvalidRange, end, err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive", ErrInvalidRange)
	}
	if !startAt.Before(endAt) {
		return nil, fmt.Errorf("%w: start %s is not before end %s", ErrInvalidRange, start, end)
	}
	window := endAt.Sub(startAt)
	if window%interval != 0 {
		return nil, fmt.Errorf("%w: interval %s does not divide %s-%s", ErrInvalidRange, interval, start, end)
	}

	grid := &TimeGrid{index: make(map[string]struct{})}
	for t := startAt; !t.After(endAt); t = t.Add(interval) {
		clock := t.Format(clockLayout)
		grid.times = append(grid.times, clock)
		grid.index[clock] = struct{}{}
	}
	return grid, nil
}

// Times returns a copy of the grid in ascending order.
func (g *TimeGrid) Times() []string {
	out := make([]string, len(g.times))
	copy(out, g.times)
	return out
}

func (g *TimeGrid) Len() int {
	return len(g.times)
}

// Contains reports whether clock (already normalized) is a grid time.
func (g *TimeGrid) Contains(clock string) bool {
	_, ok := g.index[clock]
	return ok
}

// NormalizeClock turns "HH:MM" or "HH:MM:SS" with zero seconds into "HH:MM".
func NormalizeClock(value string) (string, error) {
	if t, err := time.Parse(clockLayout, value); err == nil {
		return t.Format(clockLayout), nil
	}
	t, err := time.Parse(clockSecondsLayout, value)
	if err != nil || t.Second() != 0 {
		return "", ErrInvalidTime
	}
	return t.Format(clockLayout), nil
}

// ValidDate reports whether value is a real YYYY-MM-DD calendar date.
func ValidDate(value string) bool {
	_, err := time.Parse(DateLayout, value)
	return err == nil
}
