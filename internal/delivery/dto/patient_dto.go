package dto

import (
	"time"

	"github.com/google/uuid"
)

// Response DTOs

type InsuranceResponse struct {
	HasInsurance bool    `json:"has_insurance"`
	Company      *string `json:"company"`
	PolicyNumber *string `json:"policy_number"`
}

type PatientResponse struct {
	ID                uuid.UUID         `json:"id"`
	Name              string            `json:"name"`
	Phone             string            `json:"phone"`
	Email             string            `json:"email"`
	IdentityNumber    string            `json:"identity_number"`
	AppointmentDate   string            `json:"appointment_date"`
	AppointmentTime   string            `json:"appointment_time"`
	Reason            string            `json:"reason"`
	PreferredProvider string            `json:"preferred_provider,omitempty"`
	Notes             string            `json:"notes,omitempty"`
	Insurance         InsuranceResponse `json:"insurance"`
	ConsentGiven      bool              `json:"consent_given"`
	ReminderMethod    string            `json:"reminder_method"`
	SlotID            string            `json:"slot_id"`
	BookedAt          time.Time         `json:"booked_at"`
}

type PatientListResponse struct {
	Patients []PatientResponse `json:"patients"`
	Total    int64             `json:"total"`
	Page     int               `json:"-"`
	Limit    int               `json:"-"`
}
