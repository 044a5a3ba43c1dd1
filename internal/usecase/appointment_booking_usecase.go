package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"clinic-appointment-service/internal/converter"
	"clinic-appointment-service/internal/delivery/dto"
	"clinic-appointment-service/internal/domain/entity"
	"clinic-appointment-service/internal/domain/repository"
	"clinic-appointment-service/internal/service"
	"clinic-appointment-service/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrSlotNotFound    = errors.New("slot not found")
	ErrSlotUnavailable = errors.New("slot is not available")
	ErrSlotConflict    = errors.New("slot was taken by a concurrent request")
)

// ValidationError lists every rejected intake field with a readable message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

const eventPublishTimeout = 5 * time.Second

type AppointmentBookingUsecase interface {
	BookAppointment(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.BookAppointmentResponse, error)
}

type appointmentBookingUsecase struct {
	db             *gorm.DB
	log            *logrus.Logger
	validator      *validator.CustomValidator
	slotRepo       repository.SlotRepository
	patientRepo    repository.PatientRepository
	auditService   service.AuditService
	locker         service.LockerService
	guardTTL       time.Duration
	eventPublisher service.BookingEventPublisher
}

// NewAppointmentBookingUsecase wires the booking transaction.
// locker may be nil, in which case only the database guards the slot.
func NewAppointmentBookingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	validator *validator.CustomValidator,
	slotRepo repository.SlotRepository,
	patientRepo repository.PatientRepository,
	auditService service.AuditService,
	locker service.LockerService,
	guardTTL time.Duration,
	eventPublisher service.BookingEventPublisher,
) AppointmentBookingUsecase {
	return &appointmentBookingUsecase{
		db:             db,
		log:            log,
		validator:      validator,
		slotRepo:       slotRepo,
		patientRepo:    patientRepo,
		auditService:   auditService,
		locker:         locker,
		guardTTL:       guardTTL,
		eventPublisher: eventPublisher,
	}
}

// BookAppointment atomically moves a slot from available to booked and stores the patient.
//
// Flow:
// 1. Validate intake and normalize the requested time
// 2. Look up the slot; missing -> ErrSlotNotFound, not available -> ErrSlotUnavailable
// 3. Optional Redis guard on the slot (fast-fail only)
// 4. In one DB transaction: insert patient, conditional update available->booked, audit
// 5. If the conditional update matched no row -> rollback, ErrSlotConflict
// 6. After commit, publish appointment.booked (best effort)
func (u *appointmentBookingUsecase) BookAppointment(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.BookAppointmentResponse, error) {
	// Step 1: Validate intake
	if err := u.validator.Validate(req); err != nil {
		return nil, &ValidationError{Fields: u.validator.FormatValidationErrors(err)}
	}

	clock, err := service.NormalizeClock(req.AppointmentTime)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"appointment_time": err.Error()}}
	}

	// Step 2: Resolve the slot (early exit only, the conditional update decides)
	slot, err := u.slotRepo.FindByDateTime(u.db.WithContext(ctx), req.AppointmentDate, clock)
	if err != nil {
		u.log.Warnf("Failed to find slot %s %s: %+v", req.AppointmentDate, clock, err)
		return nil, err
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	if !slot.IsAvailable() {
		return nil, ErrSlotUnavailable
	}

	// Step 3: Redis guard
	release, err := u.acquireGuard(ctx, slot.SlotID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Step 4: Patient + status change in one transaction
	patient := converter.BookAppointmentRequestToPatient(req, slot)

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		u.log.Warnf("Failed to begin booking transaction: %+v", tx.Error)
		return nil, tx.Error
	}
	defer tx.Rollback()

	if err := u.patientRepo.Create(tx, patient); err != nil {
		u.log.Warnf("Failed to create patient for slot %s: %+v", slot.SlotID, err)
		return nil, err
	}

	err = u.slotRepo.UpdateStatus(tx, slot.SlotID, entity.SlotStatusAvailable, entity.SlotStatusBooked, &patient.ID)
	if err != nil {
		// Step 5: lost the race, the deferred rollback drops the patient row
		if errors.Is(err, repository.ErrStatusConflict) {
			u.log.Infof("Booking conflict on slot %s, request rolled back", slot.SlotID)
			return nil, ErrSlotConflict
		}
		u.log.Warnf("Failed to book slot %s: %+v", slot.SlotID, err)
		return nil, err
	}

	newValue := map[string]interface{}{
		"status":     entity.SlotStatusBooked,
		"patient_id": patient.ID.String(),
	}
	if err := u.auditService.LogUpdate(ctx, tx, nil, entity.AuditActionAppointmentBook, entity.AuditEntitySlot, slot.SlotID, string(entity.SlotStatusAvailable), newValue); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit booking for slot %s: %+v", slot.SlotID, err)
		return nil, err
	}

	u.log.Infof("Appointment booked: slot=%s, patient=%s", slot.SlotID, patient.ID)

	// Step 6: notify
	u.publishBooked(slot, patient)

	return &dto.BookAppointmentResponse{
		SlotID:          slot.SlotID,
		PatientID:       patient.ID,
		AppointmentDate: slot.SlotDate,
		AppointmentTime: slot.SlotTime,
		Status:          string(entity.SlotStatusBooked),
		BookedAt:        patient.BookedAt,
	}, nil
}

// acquireGuard takes the per-slot Redis lock when a locker is configured.
// A Redis failure degrades to the database guard instead of failing the booking.
func (u *appointmentBookingUsecase) acquireGuard(ctx context.Context, slotID string) (func(), error) {
	noop := func() {}
	if u.locker == nil {
		return noop, nil
	}

	key := service.SlotLockKey(slotID)
	acquired, token, err := u.locker.TryLock(ctx, key, u.guardTTL)
	if err != nil {
		u.log.Warnf("Booking guard unavailable for slot %s, relying on database: %+v", slotID, err)
		return noop, nil
	}
	if !acquired {
		return nil, ErrSlotConflict
	}

	return func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
		defer cancel()
		if err := u.locker.Unlock(unlockCtx, key, token); err != nil {
			u.log.Warnf("Failed to release booking guard for slot %s (expires on its own): %+v", slotID, err)
		}
	}, nil
}

func (u *appointmentBookingUsecase) publishBooked(slot *entity.AppointmentSlot, patient *entity.Patient) {
	if u.eventPublisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
	defer cancel()

	event := &service.AppointmentBookedEvent{
		EventID:        uuid.NewString(),
		SlotID:         slot.SlotID,
		PatientID:      patient.ID.String(),
		Date:           slot.SlotDate,
		Time:           slot.SlotTime,
		PatientName:    patient.Name,
		Email:          patient.Email,
		Phone:          patient.Phone,
		ReminderMethod: patient.ReminderMethod,
		BookedAt:       patient.BookedAt,
	}
	if err := u.eventPublisher.PublishAppointmentBooked(ctx, event); err != nil {
		u.log.Warnf("Failed to publish booking event for slot %s (non-fatal): %+v", slot.SlotID, err)
	}
}
