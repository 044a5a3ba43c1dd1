package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SlotStatus represents the lifecycle state of an appointment slot
type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
	SlotStatusLocked    SlotStatus = "locked"
)

// IsValid reports whether s is one of the known slot states
func (s SlotStatus) IsValid() bool {
	switch s {
	case SlotStatusAvailable, SlotStatusBooked, SlotStatusLocked:
		return true
	}
	return false
}

// AppointmentSlot is one bookable (date, time) cell of the clinic calendar.
// PatientID is set if and only if Status is booked.
type AppointmentSlot struct {
	SlotID     string     `gorm:"type:varchar(32);primaryKey" json:"slot_id"`
	SlotDate   string     `gorm:"type:varchar(10);not null;uniqueIndex:idx_slot_date_time,priority:1" json:"slot_date"`
	SlotTime   string     `gorm:"type:varchar(5);not null;uniqueIndex:idx_slot_date_time,priority:2" json:"slot_time"`
	Status     SlotStatus `gorm:"type:varchar(16);not null;default:'available';index" json:"status"`
	PatientID  *uuid.UUID `gorm:"type:uuid;index" json:"patient_id,omitempty"`
	ProviderID string     `gorm:"type:varchar(64);not null" json:"provider_id"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AppointmentSlot) TableName() string {
	return "appointment_slots"
}

// SlotIDFor builds the deterministic slot identifier, e.g. 2025-06-01-14:30
func SlotIDFor(date, clock string) string {
	return fmt.Sprintf("%s-%s", date, clock)
}

// IsAvailable checks if slot can be booked
func (s *AppointmentSlot) IsAvailable() bool {
	return s.Status == SlotStatusAvailable
}

// IsBooked checks if slot holds a patient
func (s *AppointmentSlot) IsBooked() bool {
	return s.Status == SlotStatusBooked
}

// IsLocked checks if slot was blocked by an administrator
func (s *AppointmentSlot) IsLocked() bool {
	return s.Status == SlotStatusLocked
}
