package repository

import (
	"testing"

	"clinic-appointment-service/internal/domain/entity"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakePatient(slotID string) *entity.Patient {
	return &entity.Patient{
		Name:            gofakeit.Name(),
		Phone:           gofakeit.Phone(),
		Email:           gofakeit.Email(),
		IdentityNumber:  gofakeit.DigitN(16),
		AppointmentDate: "2025-06-01",
		AppointmentTime: "09:00",
		Reason:          "Consultation about " + gofakeit.Word(),
		ConsentGiven:    true,
		ReminderMethod:  entity.ReminderMethodEmail,
		SlotID:          slotID,
	}
}

func TestPatientRepository_CreateAssignsIDAndKeepsNullInsurance(t *testing.T) {
	db := newTestDB(t)
	repo := NewPatientRepository()

	patient := fakePatient("2025-06-01-09:00")
	require.NoError(t, repo.Create(db, patient))
	assert.NotEqual(t, uuid.Nil, patient.ID)

	found, err := repo.FindByID(db, patient.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, patient.Email, found.Email)
	assert.False(t, found.Insurance.HasInsurance)
	assert.Nil(t, found.Insurance.Company)
	assert.Nil(t, found.Insurance.PolicyNumber)
	assert.False(t, found.BookedAt.IsZero())

	missing, err := repo.FindByID(db, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPatientRepository_FindBySlotIDAndFindAll(t *testing.T) {
	db := newTestDB(t)
	repo := NewPatientRepository()

	require.NoError(t, repo.Create(db, fakePatient("2025-06-01-09:00")))
	require.NoError(t, repo.Create(db, fakePatient("2025-06-01-09:00")))
	require.NoError(t, repo.Create(db, fakePatient("2025-06-01-09:30")))

	history, err := repo.FindBySlotID(db, "2025-06-01-09:00")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	page, total, err := repo.FindAll(db, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)
}

func TestAuditLogRepository_CreateAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewAuditLogRepository()

	actor := uuid.New()
	log := &entity.AuditLog{
		ActorID: &actor,
		Action:  entity.AuditActionSlotStatusUpdate,
		Metadata: entity.JSON{
			"entity":    entity.AuditEntitySlot,
			"entity_id": "2025-06-01-09:00",
		},
	}
	require.NoError(t, repo.Create(db, log))
	require.NotZero(t, log.ID)

	found, err := repo.FindByID(db, log.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "2025-06-01-09:00", found.Metadata["entity_id"])
	require.NotNil(t, found.ActorID)
	assert.Equal(t, actor, *found.ActorID)

	logs, total, err := repo.FindAll(db, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, logs, 1)

	missing, err := repo.FindByID(db, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
