package repository

import (
	"errors"
	"strings"
	"time"

	"clinic-appointment-service/internal/domain/entity"
	domainRepo "clinic-appointment-service/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// insertBatchSize keeps a full calendar year well under the driver's bind parameter limit per statement
const insertBatchSize = 500

type slotRepository struct{}

func NewSlotRepository() domainRepo.SlotRepository {
	return &slotRepository{}
}

func (r *slotRepository) InsertMany(db *gorm.DB, slots []entity.AppointmentSlot, policy domainRepo.DuplicatePolicy) (int64, error) {
	if len(slots) == 0 {
		return 0, nil
	}

	if policy == domainRepo.DuplicateSkip {
		result := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&slots, insertBatchSize)
		if result.Error != nil {
			return 0, result.Error
		}
		return result.RowsAffected, nil
	}

	var inserted int64
	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.CreateInBatches(&slots, insertBatchSize)
		if result.Error != nil {
			return result.Error
		}
		inserted = result.RowsAffected
		return nil
	})
	if err != nil {
		if isDuplicateKeyError(err) {
			return 0, domainRepo.ErrDuplicateSlot
		}
		return 0, err
	}
	return inserted, nil
}

func (r *slotRepository) FindByID(db *gorm.DB, slotID string) (*entity.AppointmentSlot, error) {
	var slot entity.AppointmentSlot
	err := db.Where("slot_id = ?", slotID).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepository) FindByDateTime(db *gorm.DB, date, clock string) (*entity.AppointmentSlot, error) {
	var slot entity.AppointmentSlot
	err := db.Where("slot_date = ? AND slot_time = ?", date, clock).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepository) FindByDate(db *gorm.DB, date string) ([]entity.AppointmentSlot, error) {
	var slots []entity.AppointmentSlot
	err := db.Where("slot_date = ?", date).Order("slot_time ASC").Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *slotRepository) FindByStatus(db *gorm.DB, status entity.SlotStatus) ([]entity.AppointmentSlot, error) {
	var slots []entity.AppointmentSlot
	err := db.Where("status = ?", status).Order("slot_date ASC, slot_time ASC").Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// FindAll returns one page of slots matching filter together with the total match count.
func (r *slotRepository) FindAll(db *gorm.DB, filter *entity.SlotFilter, limit, offset int) ([]entity.AppointmentSlot, int64, error) {
	var total int64
	if err := applySlotFilter(db.Model(&entity.AppointmentSlot{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var slots []entity.AppointmentSlot
	err := applySlotFilter(db, filter).
		Order("slot_date ASC, slot_time ASC").
		Limit(limit).
		Offset(offset).
		Find(&slots).Error
	if err != nil {
		return nil, 0, err
	}
	return slots, total, nil
}

// UpdateStatus moves a slot from expected to next only if it is still in expected.
// This is the write that decides every booking race.
func (r *slotRepository) UpdateStatus(db *gorm.DB, slotID string, expected, next entity.SlotStatus, patientID *uuid.UUID) error {
	var patientValue interface{}
	if patientID != nil {
		patientValue = *patientID
	}

	result := db.Model(&entity.AppointmentSlot{}).
		Where("slot_id = ? AND status = ?", slotID, expected).
		Updates(map[string]interface{}{
			"status":     next,
			"patient_id": patientValue,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrStatusConflict
	}
	return nil
}

// ForceStatus overwrites the status without checking the current one, except that
// a booked slot is never locked: that write matches no row.
func (r *slotRepository) ForceStatus(db *gorm.DB, slotID string, next entity.SlotStatus) (int64, error) {
	values := map[string]interface{}{
		"status":     next,
		"updated_at": time.Now(),
	}
	if next != entity.SlotStatusBooked {
		values["patient_id"] = nil
	}

	query := db.Model(&entity.AppointmentSlot{}).Where("slot_id = ?", slotID)
	if next == entity.SlotStatusLocked {
		query = query.Where("status <> ?", entity.SlotStatusBooked)
	}
	result := query.Updates(values)
	return result.RowsAffected, result.Error
}

// DeleteUnbooked removes the slot unless it is booked at the moment of the delete.
func (r *slotRepository) DeleteUnbooked(db *gorm.DB, slotID string) (int64, error) {
	affected := db.Where("slot_id = ? AND status <> ?", slotID, entity.SlotStatusBooked).Delete(&entity.AppointmentSlot{})
	return affected.RowsAffected, affected.Error
}

func applySlotFilter(query *gorm.DB, filter *entity.SlotFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Date != "" {
		query = query.Where("slot_date = ?", filter.Date)
	}
	if filter.From != "" {
		query = query.Where("slot_date >= ?", filter.From)
	}
	if filter.To != "" {
		query = query.Where("slot_date <= ?", filter.To)
	}
	return query
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
