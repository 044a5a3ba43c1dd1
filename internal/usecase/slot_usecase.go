package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"clinic-appointment-service/internal/converter"
	"clinic-appointment-service/internal/delivery/dto"
	"clinic-appointment-service/internal/domain/entity"
	"clinic-appointment-service/internal/domain/repository"
	"clinic-appointment-service/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidStatus     = errors.New("invalid slot status, use available, booked or locked")
	ErrInvalidTransition = errors.New("slot status transition not allowed")
	ErrSlotHasPatient    = errors.New("slot holds a booking")
	ErrDuplicateSlot     = errors.New("slots already exist for this year")
	ErrInvalidRange      = service.ErrInvalidRange
)

type SlotUsecase interface {
	GenerateYear(ctx context.Context, year int, strict bool) (*dto.GenerateSlotsResponse, error)
	UpdateSlotStatus(ctx context.Context, slotID string, status string) (*dto.SlotResponse, error)
	GetAvailableTimes(ctx context.Context, date string) (*dto.AvailableTimesResponse, error)
	ListSlots(ctx context.Context, query *dto.SlotListQuery) (*dto.SlotListResponse, error)
	ListSlotsByStatus(ctx context.Context, status string) (*dto.SlotListResponse, error)
	GetSlot(ctx context.Context, slotID string) (*dto.SlotDetailResponse, error)
	DeleteSlot(ctx context.Context, slotID string) error
}

type slotUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	slotRepo     repository.SlotRepository
	patientRepo  repository.PatientRepository
	auditService service.AuditService
	grid         *service.TimeGrid
	generator    *service.SlotGenerator
	hideLocked   bool
}

// NewSlotUsecase builds the admin and availability operations.
// grid must be the same instance the generator was built from.
func NewSlotUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	slotRepo repository.SlotRepository,
	patientRepo repository.PatientRepository,
	auditService service.AuditService,
	grid *service.TimeGrid,
	generator *service.SlotGenerator,
	hideLocked bool,
) SlotUsecase {
	return &slotUsecase{
		db:           db,
		log:          log,
		slotRepo:     slotRepo,
		patientRepo:  patientRepo,
		auditService: auditService,
		grid:         grid,
		generator:    generator,
		hideLocked:   hideLocked,
	}
}

// GenerateYear inserts every grid slot of year. Existing slots are left as they are
// unless strict is set, in which case any collision aborts the whole year.
func (u *slotUsecase) GenerateYear(ctx context.Context, year int, strict bool) (*dto.GenerateSlotsResponse, error) {
	slots, err := u.generator.GenerateYear(year)
	if err != nil {
		return nil, err
	}

	policy := repository.DuplicateSkip
	if strict {
		policy = repository.DuplicateReject
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	inserted, err := u.slotRepo.InsertMany(tx, slots, policy)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateSlot) {
			return nil, ErrDuplicateSlot
		}
		u.log.Warnf("Failed to insert slots for year %d: %+v", year, err)
		return nil, err
	}

	summary := map[string]interface{}{
		"generated": len(slots),
		"inserted":  inserted,
		"strict":    strict,
	}
	if err := u.auditService.LogCreate(ctx, tx, actorFromContext(ctx), entity.AuditActionSlotGenerate, entity.AuditEntityCalendar, strconv.Itoa(year), summary); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit slot generation for year %d: %+v", year, err)
		return nil, err
	}

	u.log.Infof("Slots generated: year=%d, inserted=%d, skipped=%d", year, inserted, int64(len(slots))-inserted)

	return &dto.GenerateSlotsResponse{
		Year:      year,
		Generated: len(slots),
		Inserted:  inserted,
		Skipped:   int64(len(slots)) - inserted,
	}, nil
}

// UpdateSlotStatus is the administrative override. The write is unconditional
// (last writer wins); only transitions that keep booked <=> patient are accepted.
func (u *slotUsecase) UpdateSlotStatus(ctx context.Context, slotID string, status string) (*dto.SlotResponse, error) {
	next := entity.SlotStatus(status)
	if !next.IsValid() {
		return nil, ErrInvalidStatus
	}

	slot, err := u.slotRepo.FindByID(u.db.WithContext(ctx), slotID)
	if err != nil {
		u.log.Warnf("Failed to find slot %s: %+v", slotID, err)
		return nil, err
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}

	if err := checkTransition(slot.Status, next); err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	affected, err := u.slotRepo.ForceStatus(tx, slotID, next)
	if err != nil {
		u.log.Warnf("Failed to update slot %s status: %+v", slotID, err)
		return nil, err
	}
	if affected == 0 {
		// booked or removed since the read above
		current, err := u.slotRepo.FindByID(tx, slotID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrSlotNotFound
		}
		return nil, ErrInvalidTransition
	}

	oldValue := map[string]interface{}{"status": slot.Status}
	if slot.PatientID != nil {
		oldValue["patient_id"] = slot.PatientID.String()
	}
	newValue := map[string]interface{}{"status": next}
	if err := u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionSlotStatusUpdate, entity.AuditEntitySlot, slotID, oldValue, newValue); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit status update for slot %s: %+v", slotID, err)
		return nil, err
	}

	u.log.Infof("Slot status updated: slot=%s, %s -> %s", slotID, slot.Status, next)

	slot.Status = next
	slot.PatientID = nil
	slot.UpdatedAt = time.Now()
	return converter.SlotToResponse(slot), nil
}

// checkTransition allows available<->locked and booked->available.
// Nothing may set booked here because there would be no patient behind it.
func checkTransition(from, to entity.SlotStatus) error {
	if to == entity.SlotStatusBooked {
		return ErrInvalidTransition
	}
	if from == entity.SlotStatusBooked && to == entity.SlotStatusLocked {
		return ErrInvalidTransition
	}
	return nil
}

// GetAvailableTimes returns the grid times of date not taken by a booking.
// Dates that were never generated report the full grid.
func (u *slotUsecase) GetAvailableTimes(ctx context.Context, date string) (*dto.AvailableTimesResponse, error) {
	if !service.ValidDate(date) {
		return nil, &ValidationError{Fields: map[string]string{"date": "date must be a date in YYYY-MM-DD format"}}
	}

	slots, err := u.slotRepo.FindByDate(u.db.WithContext(ctx), date)
	if err != nil {
		u.log.Warnf("Failed to find slots for %s: %+v", date, err)
		return nil, err
	}

	taken := make(map[string]struct{}, len(slots))
	for _, slot := range slots {
		if slot.IsBooked() || (u.hideLocked && slot.IsLocked()) {
			taken[slot.SlotTime] = struct{}{}
		}
	}

	available := make([]string, 0, u.grid.Len())
	for _, clock := range u.grid.Times() {
		if _, ok := taken[clock]; !ok {
			available = append(available, clock)
		}
	}

	return &dto.AvailableTimesResponse{
		Date:           date,
		AvailableTimes: available,
	}, nil
}

func (u *slotUsecase) ListSlots(ctx context.Context, query *dto.SlotListQuery) (*dto.SlotListResponse, error) {
	filter := &entity.SlotFilter{
		Status: entity.SlotStatus(query.Status),
		Date:   query.Date,
		From:   query.From,
		To:     query.To,
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	fields := make(map[string]string)
	for name, value := range map[string]string{"date": query.Date, "from": query.From, "to": query.To} {
		if value != "" && !service.ValidDate(value) {
			fields[name] = name + " must be a date in YYYY-MM-DD format"
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	page, limit, offset := normalizePage(query.Page, query.Limit)

	slots, total, err := u.slotRepo.FindAll(u.db.WithContext(ctx), filter, limit, offset)
	if err != nil {
		u.log.Warnf("Failed to list slots: %+v", err)
		return nil, err
	}

	return &dto.SlotListResponse{
		Slots: converter.SlotsToResponses(slots),
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (u *slotUsecase) ListSlotsByStatus(ctx context.Context, status string) (*dto.SlotListResponse, error) {
	slotStatus := entity.SlotStatus(status)
	if !slotStatus.IsValid() {
		return nil, ErrInvalidStatus
	}

	slots, err := u.slotRepo.FindByStatus(u.db.WithContext(ctx), slotStatus)
	if err != nil {
		u.log.Warnf("Failed to find %s slots: %+v", status, err)
		return nil, err
	}

	return &dto.SlotListResponse{
		Slots: converter.SlotsToResponses(slots),
		Total: int64(len(slots)),
	}, nil
}

func (u *slotUsecase) GetSlot(ctx context.Context, slotID string) (*dto.SlotDetailResponse, error) {
	slot, err := u.slotRepo.FindByID(u.db.WithContext(ctx), slotID)
	if err != nil {
		u.log.Warnf("Failed to find slot %s: %+v", slotID, err)
		return nil, err
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}

	var patient *entity.Patient
	if slot.IsBooked() && slot.PatientID != nil {
		patient, err = u.patientRepo.FindByID(u.db.WithContext(ctx), *slot.PatientID)
		if err != nil {
			u.log.Warnf("Failed to find patient %s of slot %s: %+v", slot.PatientID, slotID, err)
			return nil, err
		}
	}

	return converter.SlotToDetailResponse(slot, patient), nil
}

// DeleteSlot removes an unbooked slot; booked slots must be released first.
func (u *slotUsecase) DeleteSlot(ctx context.Context, slotID string) error {
	slot, err := u.slotRepo.FindByID(u.db.WithContext(ctx), slotID)
	if err != nil {
		u.log.Warnf("Failed to find slot %s: %+v", slotID, err)
		return err
	}
	if slot == nil {
		return ErrSlotNotFound
	}
	if slot.IsBooked() {
		return ErrSlotHasPatient
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()

	affected, err := u.slotRepo.DeleteUnbooked(tx, slotID)
	if err != nil {
		u.log.Warnf("Failed to delete slot %s: %+v", slotID, err)
		return err
	}
	if affected == 0 {
		// booked or removed since the read above
		return ErrSlotConflict
	}

	if err := u.auditService.LogDelete(ctx, tx, actorFromContext(ctx), entity.AuditActionSlotDelete, entity.AuditEntitySlot, slotID, converter.SlotToResponse(slot)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit delete of slot %s: %+v", slotID, err)
		return err
	}

	u.log.Infof("Slot deleted: %s", slotID)
	return nil
}
