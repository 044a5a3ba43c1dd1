package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type GenerateSlotsRequest struct {
	Year   int  `json:"year" validate:"required,gte=1,lte=9999"`
	Strict bool `json:"strict"`
}

type UpdateSlotStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SlotListQuery carries the admin listing filters parsed from the query string.
type SlotListQuery struct {
	Status string
	Date   string // Format: YYYY-MM-DD
	From   string // Format: YYYY-MM-DD
	To     string // Format: YYYY-MM-DD
	Page   int
	Limit  int
}

// Response DTOs

type GenerateSlotsResponse struct {
	Year      int   `json:"year"`
	Generated int   `json:"generated"`
	Inserted  int64 `json:"inserted"`
	Skipped   int64 `json:"skipped"`
}

type SlotResponse struct {
	SlotID     string     `json:"slot_id"`
	SlotDate   string     `json:"slot_date"`
	SlotTime   string     `json:"slot_time"`
	Status     string     `json:"status"`
	PatientID  *uuid.UUID `json:"patient_id"`
	ProviderID string     `json:"provider_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type SlotDetailResponse struct {
	SlotResponse
	Patient *PatientResponse `json:"patient,omitempty"`
}

type SlotListResponse struct {
	Slots []SlotResponse `json:"slots"`
	Total int64          `json:"total"`
	Page  int            `json:"-"`
	Limit int            `json:"-"`
}
