package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reminder methods a patient can choose at intake
const (
	ReminderMethodEmail    = "email"
	ReminderMethodSMS      = "sms"
	ReminderMethodWhatsApp = "whatsapp"
	ReminderMethodPhone    = "phone"
)

// Insurance details; Company and PolicyNumber are nil whenever HasInsurance is false
type Insurance struct {
	HasInsurance bool    `gorm:"not null;default:false" json:"has_insurance"`
	Company      *string `gorm:"type:varchar(150)" json:"company"`
	PolicyNumber *string `gorm:"type:varchar(100)" json:"policy_number"`
}

// Patient is the intake record created together with a booking
type Patient struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string    `gorm:"type:varchar(150);not null" json:"name"`
	Phone             string    `gorm:"type:varchar(20);not null" json:"phone"`
	Email             string    `gorm:"type:varchar(255);not null;index" json:"email"`
	IdentityNumber    string    `gorm:"type:varchar(50);not null" json:"identity_number"`
	AppointmentDate   string    `gorm:"type:varchar(10);not null" json:"appointment_date"`
	AppointmentTime   string    `gorm:"type:varchar(5);not null" json:"appointment_time"`
	Reason            string    `gorm:"type:text;not null" json:"reason"`
	PreferredProvider string    `gorm:"type:varchar(150)" json:"preferred_provider,omitempty"`
	Notes             string    `gorm:"type:text" json:"notes,omitempty"`
	Insurance         Insurance `gorm:"embedded;embeddedPrefix:insurance_" json:"insurance"`
	ConsentGiven      bool      `gorm:"not null" json:"consent_given"`
	ReminderMethod    string    `gorm:"type:varchar(16);not null" json:"reminder_method"`
	SlotID            string    `gorm:"type:varchar(32);not null;index" json:"slot_id"`
	BookedAt          time.Time `gorm:"autoCreateTime" json:"booked_at"`
}

func (Patient) TableName() string {
	return "patients"
}

func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
