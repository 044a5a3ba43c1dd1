package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// BookAppointmentRequest is the public intake form.
// Insurance company and policy number are ignored unless has_insurance is true.
type BookAppointmentRequest struct {
	PatientName           string  `json:"patient_name" validate:"required,max=150"`
	PhoneNumber           string  `json:"phone_number" validate:"required,min=6,max=20"`
	Email                 string  `json:"email" validate:"required,email,max=255"`
	IdentityNumber        string  `json:"identity_number" validate:"required,max=50"`
	AppointmentDate       string  `json:"appointment_date" validate:"required,datetime=2006-01-02"` // Format: YYYY-MM-DD
	AppointmentTime       string  `json:"appointment_time" validate:"required,clock"`               // Format: HH:MM or HH:MM:SS
	AppointmentReason     string  `json:"appointment_reason" validate:"required,max=1000"`
	PreferredDoctor       string  `json:"preferred_doctor" validate:"omitempty,max=150"`
	AdditionalNotes       string  `json:"additional_notes" validate:"omitempty,max=2000"`
	HasInsurance          bool    `json:"has_insurance"`
	InsuranceCompany      *string `json:"insurance_company" validate:"omitempty,max=150"`
	InsurancePolicyNumber *string `json:"insurance_policy_number" validate:"omitempty,max=100"`
	AgreeToTerms          bool    `json:"agree_to_terms" validate:"accepted"`
	ReminderMethod        string  `json:"reminder_method" validate:"required,oneof=email sms whatsapp phone"`
}

// Response DTOs

type BookAppointmentResponse struct {
	SlotID          string    `json:"slot_id"`
	PatientID       uuid.UUID `json:"patient_id"`
	AppointmentDate string    `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	Status          string    `json:"status"`
	BookedAt        time.Time `json:"booked_at"`
}

type AvailableTimesResponse struct {
	Date           string   `json:"date"`
	AvailableTimes []string `json:"available_times"`
}
