package repository

import (
	"testing"

	"clinic-appointment-service/internal/domain/entity"
	domainRepo "clinic-appointment-service/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&entity.AppointmentSlot{}, &entity.Patient{}, &entity.AuditLog{}))
	return db
}

func slot(date, clock string, status entity.SlotStatus) entity.AppointmentSlot {
	return entity.AppointmentSlot{
		SlotID:     entity.SlotIDFor(date, clock),
		SlotDate:   date,
		SlotTime:   clock,
		Status:     status,
		ProviderID: "dr-test",
	}
}

func TestSlotRepository_InsertManySkipsDuplicates(t *testing.T) {
	db := newTestDB(t)
	repo := NewSlotRepository()

	first := []entity.AppointmentSlot{
		slot("2025-06-01", "09:00", entity.SlotStatusAvailable),
		slot("2025-06-01", "09:30", entity.SlotStatusAvailable),
	}
	inserted, err := repo.InsertMany(db, first, domainRepo.DuplicateSkip)
	require.NoError(t, err)
	assert.Equal(t, int64(2), inserted)

	// lock one slot, then regenerate: the locked row must survive untouched
	_, err = repo.ForceStatus(db, "2025-06-01-09:00", entity.SlotStatusLocked)
	require.NoError(t, err)

	second := []entity.AppointmentSlot{
		slot("2025-06-01", "09:00", entity.SlotStatusAvailable),
		slot("2025-06-01", "09:30", entity.SlotStatusAvailable),
		slot("2025-06-01", "10:00", entity.SlotStatusAvailable),
	}
	inserted, err = repo.InsertMany(db, second, domainRepo.DuplicateSkip)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)

	locked, err := repo.FindByID(db, "2025-06-01-09:00")
	require.NoError(t, err)
	require.NotNil(t, locked)
	assert.Equal(t, entity.SlotStatusLocked, locked.Status)

	var count int64
	require.NoError(t, db.Model(&entity.AppointmentSlot{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestSlotRepository_InsertManyRejectRollsBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewSlotRepository()

	_, err := repo.InsertMany(db, []entity.AppointmentSlot{slot("2025-06-01", "10:00", entity.SlotStatusAvailable)}, domainRepo.DuplicateSkip)
	require.NoError(t, err)

	batch := []entity.AppointmentSlot{
		slot("2025-06-01", "09:00", entity.SlotStatusAvailable),
		slot("2025-06-01", "10:00", entity.SlotStatusAvailable),
	}
	_, err = repo.InsertMany(db, batch, domainRepo.DuplicateReject)
	assert.ErrorIs(t, err, domainRepo.ErrDuplicateSlot)

	missing, err := repo.FindByID(db, "2025-06-01-09:00")
	require.NoError(t, err)
	assert.Nil(t, missing, "rejected batch must not leave partial rows")
}

func TestSlotRepository_FindByDateTime(t *testing.T) {
	db := newTestDB(t)
	repo := NewSlotRepository()

	_, err := repo.InsertMany(db, []entity.AppointmentSlot{slot("2025-06-01", "14:30", entity.SlotStatusAvailable)}, domainRepo.DuplicateSkip)
	require.NoError(t, err)

	found, err := repo.FindByDateTime(db, "2025-06-01", "14:30")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "2025-06-01-14:30", found.SlotID)

	notFound, err := repo.FindByDateTime(db, "2025-06-01", "15:00")
	require.NoError(t, err)
	assert.Nil(t, notFound)
}

func TestSlotRepository_UpdateStatusIsConditional(t *testing.T) {
	db := newTestDB(t)
	repo := NewSlotRepository()

	_, err := repo.InsertMany(db, []entity.AppointmentSlot{slot("2025-06-01", "09:00", entity.SlotStatusAvailable)}, domainRepo.DuplicateSkip)
	require.NoError(t, err)

	patientID := uuid.New()
	err = repo.UpdateStatus(db, "2025-06-01-09:00", entity.SlotStatusAvailable, entity.SlotStatusBooked, &patientID)
	require.NoError(t, err)

	booked, err := repo.FindByID(db, "2025-06-01-09:00")
	require.NoError(t, err)
	assert.Equal(t, entity.SlotStatusBooked, booked.Status)
	require.NotNil(t, booked.PatientID)
	assert.Equal(t, patientID, *booked.PatientID)

	other := uuid.New()
	err = repo.UpdateStatus(db, "2025-06-01-09:00", entity.SlotStatusAvailable, entity.SlotStatusBooked, &other)
	assert.ErrorIs(t, err, domainRepo.ErrStatusConflict)

	unchanged, err := repo.FindByID(db, "2025-06-01-09:00")
	require.NoError(t, err)
	assert.Equal(t, patientID, *unchanged.PatientID)
}

func TestSlotRepository_ForceStatusClearsPatient(t *testing.T) {
	db := newTestDB(t)
	repo := NewSlotRepository()

	_, err := repo.InsertMany(db, []entity.AppointmentSlot{slot("2025-06-01", "09:00", entity.SlotStatusAvailable)}, domainRepo.DuplicateSkip)
	require.NoError(t, err)
	patientID := uuid.New()
	require.NoError(t, repo.UpdateStatus(db, "2025-06-01-09:00", entity.SlotStatusAvailable, entity.SlotStatusBooked, &patientID))

	affected, err := repo.ForceStatus(db, "2025-06-01-09:00", entity.SlotStatusAvailable)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	released, err := repo.FindByID(db, "2025-06-01-09:00")
	require.NoError(t, err)
	assert.Equal(t, entity.SlotStatusAvailable, released.Status)
	assert.Nil(t, released.PatientID)

	affected, err = repo.ForceStatus(db, "2025-06-01-23:00", entity.SlotStatusLocked)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestSlotRepository_ForceStatusNeverLocksBookedSlot(t *testing.T) {
	db := newTestDB(t)
	repo := NewSlotRepository()

	_, err := repo.InsertMany(db, []entity.AppointmentSlot{slot("2025-06-01", "09:00", entity.SlotStatusAvailable)}, domainRepo.DuplicateSkip)
	require.NoError(t, err)
	patientID := uuid.New()
	require.NoError(t, repo.UpdateStatus(db, "2025-06-01-09:00", entity.SlotStatusAvailable, entity.SlotStatusBooked, &patientID))

	affected, err := repo.ForceStatus(db, "2025-06-01-09:00", entity.SlotStatusLocked)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	booked, err := repo.FindByID(db, "2025-06-01-09:00")
	require.NoError(t, err)
	assert.Equal(t, entity.SlotStatusBooked, booked.Status)
	require.NotNil(t, booked.PatientID)
	assert.Equal(t, patientID, *booked.PatientID)
}

func TestSlotRepository_FindAllFiltersAndPaginates(t *testing.T) {
	db := newTestDB(t)
	repo := NewSlotRepository()

	slots := []entity.AppointmentSlot{
		slot("2025-06-01", "09:00", entity.SlotStatusAvailable),
		slot("2025-06-01", "09:30", entity.SlotStatusLocked),
		slot("2025-06-02", "09:00", entity.SlotStatusAvailable),
		slot("2025-06-03", "09:00", entity.SlotStatusLocked),
	}
	_, err := repo.InsertMany(db, slots, domainRepo.DuplicateSkip)
	require.NoError(t, err)

	page, total, err := repo.FindAll(db, &entity.SlotFilter{Status: entity.SlotStatusLocked}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, page, 1)
	assert.Equal(t, "2025-06-01-09:30", page[0].SlotID)

	ranged, total, err := repo.FindAll(db, &entity.SlotFilter{From: "2025-06-02", To: "2025-06-03"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, ranged, 2)

	byStatus, err := repo.FindByStatus(db, entity.SlotStatusAvailable)
	require.NoError(t, err)
	require.Len(t, byStatus, 2)
	assert.Equal(t, "2025-06-01-09:00", byStatus[0].SlotID)
	assert.Equal(t, "2025-06-02-09:00", byStatus[1].SlotID)

	day, err := repo.FindByDate(db, "2025-06-01")
	require.NoError(t, err)
	assert.Len(t, day, 2)
}

func TestSlotRepository_DeleteUnbooked(t *testing.T) {
	db := newTestDB(t)
	repo := NewSlotRepository()

	_, err := repo.InsertMany(db, []entity.AppointmentSlot{
		slot("2025-06-01", "09:00", entity.SlotStatusAvailable),
		slot("2025-06-01", "09:30", entity.SlotStatusAvailable),
	}, domainRepo.DuplicateSkip)
	require.NoError(t, err)

	affected, err := repo.DeleteUnbooked(db, "2025-06-01-09:00")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.DeleteUnbooked(db, "2025-06-01-09:00")
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	patientID := uuid.New()
	require.NoError(t, repo.UpdateStatus(db, "2025-06-01-09:30", entity.SlotStatusAvailable, entity.SlotStatusBooked, &patientID))
	affected, err = repo.DeleteUnbooked(db, "2025-06-01-09:30")
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected, "booked slot must survive")
}
