package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultGrid(t *testing.T) *TimeGrid {
	t.Helper()
	grid, err := NewTimeGrid("09:00", "17:30", 30*time.Minute)
	require.NoError(t, err)
	return grid
}

func TestNewTimeGrid_DefaultWindow(t *testing.T) {
	grid := defaultGrid(t)

	times := grid.Times()
	require.Len(t, times, 18)
	assert.Equal(t, "09:00", times[0])
	assert.Equal(t, "17:30", times[len(times)-1])
	assert.True(t, grid.Contains("12:30"))
	assert.False(t, grid.Contains("12:15"))
	assert.False(t, grid.Contains("18:00"))
}

func TestNewTimeGrid_RejectsBadWindows(t *testing.T) {
	cases := []struct {
		name     string
		start    string
		end      string
		interval time.Duration
	}{
		{"interval does not divide window", "09:00", "17:30", 45 * time.Minute},
		{"start after end", "18:00", "09:00", 30 * time.Minute},
		{"zero interval", "09:00", "17:30", 0},
		{"malformed start", "9am", "17:30", 30 * time.Minute},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTimeGrid(tc.start, tc.end, tc.interval)
			assert.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}

func TestTimeGrid_TimesReturnsCopy(t *testing.T) {
	grid := defaultGrid(t)

	times := grid.Times()
	times[0] = "00:00"
	assert.Equal(t, "09:00", grid.Times()[0])
}

func TestNormalizeClock(t *testing.T) {
	clock, err := NormalizeClock("14:30")
	require.NoError(t, err)
	assert.Equal(t, "14:30", clock)

	clock, err = NormalizeClock("14:30:00")
	require.NoError(t, err)
	assert.Equal(t, "14:30", clock)

	_, err = NormalizeClock("14:30:15")
	assert.ErrorIs(t, err, ErrInvalidTime)

	_, err = NormalizeClock("25:00")
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2024-02-29"))
	assert.False(t, ValidDate("2025-02-29"))
	assert.False(t, ValidDate("01/06/2025"))
}
