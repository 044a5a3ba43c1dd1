package repository

import (
	"clinic-appointment-service/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PatientRepository interface {
	Create(db *gorm.DB, patient *entity.Patient) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Patient, error)
	FindBySlotID(db *gorm.DB, slotID string) ([]entity.Patient, error)
	FindAll(db *gorm.DB, limit, offset int) ([]entity.Patient, int64, error)
}
