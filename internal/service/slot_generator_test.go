package service

import (
	"testing"

	"clinic-appointment-service/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotGenerator_GenerateYear(t *testing.T) {
	generator := NewSlotGenerator(defaultGrid(t), "dr-test")

	slots, err := generator.GenerateYear(2025)
	require.NoError(t, err)
	require.Len(t, slots, 365*18)

	first := slots[0]
	assert.Equal(t, "2025-01-01-09:00", first.SlotID)
	assert.Equal(t, "2025-01-01", first.SlotDate)
	assert.Equal(t, "09:00", first.SlotTime)
	assert.Equal(t, entity.SlotStatusAvailable, first.Status)
	assert.Nil(t, first.PatientID)
	assert.Equal(t, "dr-test", first.ProviderID)

	last := slots[len(slots)-1]
	assert.Equal(t, "2025-12-31-17:30", last.SlotID)

	seen := make(map[string]struct{}, len(slots))
	for i, s := range slots {
		_, dup := seen[s.SlotID]
		require.False(t, dup, "duplicate slot id %s", s.SlotID)
		seen[s.SlotID] = struct{}{}
		if i > 0 {
			prev := slots[i-1]
			ordered := prev.SlotDate < s.SlotDate || (prev.SlotDate == s.SlotDate && prev.SlotTime < s.SlotTime)
			require.True(t, ordered, "slots out of order at %d", i)
		}
	}
}

func TestSlotGenerator_LeapYear(t *testing.T) {
	generator := NewSlotGenerator(defaultGrid(t), "dr-test")

	slots, err := generator.GenerateYear(2024)
	require.NoError(t, err)
	assert.Len(t, slots, 366*18)
	assert.Equal(t, 366, DaysInYear(2024))
}

func TestSlotGenerator_IsDeterministic(t *testing.T) {
	generator := NewSlotGenerator(defaultGrid(t), "dr-test")

	a, err := generator.GenerateYear(2026)
	require.NoError(t, err)
	b, err := generator.GenerateYear(2026)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSlotGenerator_RejectsYearOutOfRange(t *testing.T) {
	generator := NewSlotGenerator(defaultGrid(t), "dr-test")

	_, err := generator.GenerateYear(0)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = generator.GenerateYear(10000)
	assert.ErrorIs(t, err, ErrInvalidRange)
}
