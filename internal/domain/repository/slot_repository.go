package repository

import (
	"errors"

	"clinic-appointment-service/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrStatusConflict is returned by a conditional update that matched no row in the expected state
	ErrStatusConflict = errors.New("slot status changed concurrently")
	// ErrDuplicateSlot is returned when an insert collides with an existing (date, time) slot
	ErrDuplicateSlot = errors.New("slot already exists")
)

// DuplicatePolicy decides what InsertMany does with slots that already exist
type DuplicatePolicy int

const (
	// DuplicateSkip leaves existing rows untouched and inserts the rest
	DuplicateSkip DuplicatePolicy = iota
	// DuplicateReject fails the whole batch on the first collision
	DuplicateReject
)

type SlotRepository interface {
	InsertMany(db *gorm.DB, slots []entity.AppointmentSlot, policy DuplicatePolicy) (int64, error)
	FindByID(db *gorm.DB, slotID string) (*entity.AppointmentSlot, error)
	FindByDateTime(db *gorm.DB, date, clock string) (*entity.AppointmentSlot, error)
	FindByDate(db *gorm.DB, date string) ([]entity.AppointmentSlot, error)
	FindByStatus(db *gorm.DB, status entity.SlotStatus) ([]entity.AppointmentSlot, error)
	FindAll(db *gorm.DB, filter *entity.SlotFilter, limit, offset int) ([]entity.AppointmentSlot, int64, error)
	UpdateStatus(db *gorm.DB, slotID string, expected, next entity.SlotStatus, patientID *uuid.UUID) error
	ForceStatus(db *gorm.DB, slotID string, next entity.SlotStatus) (int64, error)
	DeleteUnbooked(db *gorm.DB, slotID string) (int64, error)
}
