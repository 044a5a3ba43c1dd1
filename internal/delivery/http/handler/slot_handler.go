package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"clinic-appointment-service/internal/delivery/dto"
	"clinic-appointment-service/internal/usecase"
	"clinic-appointment-service/pkg/response"
	"clinic-appointment-service/pkg/validator"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type SlotHandler struct {
	slotUsecase usecase.SlotUsecase
	validator   *validator.CustomValidator
	log         *logrus.Logger
}

func NewSlotHandler(slotUsecase usecase.SlotUsecase, validator *validator.CustomValidator, log *logrus.Logger) *SlotHandler {
	return &SlotHandler{
		slotUsecase: slotUsecase,
		validator:   validator,
		log:         log,
	}
}

func (h *SlotHandler) GenerateSlots(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.slotUsecase.GenerateYear(r.Context(), req.Year, req.Strict)
	if err != nil {
		h.writeSlotError(w, err, "Failed to generate slots")
		return
	}

	response.Success(w, http.StatusCreated, "Slots generated successfully", result)
}

func (h *SlotHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	page, limit, err := parsePagination(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	q := r.URL.Query()
	query := &dto.SlotListQuery{
		Status: q.Get("status"),
		Date:   q.Get("date"),
		From:   q.Get("from"),
		To:     q.Get("to"),
		Page:   page,
		Limit:  limit,
	}

	slots, err := h.slotUsecase.ListSlots(r.Context(), query)
	if err != nil {
		h.writeSlotError(w, err, "Failed to get slots")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Slots retrieved successfully", slots.Slots, response.NewMeta(slots.Page, slots.Limit, slots.Total))
}

func (h *SlotHandler) ListSlotsByStatus(w http.ResponseWriter, r *http.Request) {
	slots, err := h.slotUsecase.ListSlotsByStatus(r.Context(), mux.Vars(r)["status"])
	if err != nil {
		h.writeSlotError(w, err, "Failed to get slots")
		return
	}

	response.Success(w, http.StatusOK, "Slots retrieved successfully", slots)
}

func (h *SlotHandler) GetSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := h.slotUsecase.GetSlot(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeSlotError(w, err, "Failed to get slot")
		return
	}

	response.Success(w, http.StatusOK, "Slot retrieved successfully", slot)
}

func (h *SlotHandler) UpdateSlotStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateSlotStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	slot, err := h.slotUsecase.UpdateSlotStatus(r.Context(), mux.Vars(r)["id"], req.Status)
	if err != nil {
		h.writeSlotError(w, err, "Failed to update slot status")
		return
	}

	response.Success(w, http.StatusOK, "Slot status updated successfully", slot)
}

func (h *SlotHandler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	if err := h.slotUsecase.DeleteSlot(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeSlotError(w, err, "Failed to delete slot")
		return
	}

	response.Success(w, http.StatusOK, "Slot deleted successfully", nil)
}

func (h *SlotHandler) writeSlotError(w http.ResponseWriter, err error, fallback string) {
	var validationErr *usecase.ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.ValidationError(w, validationErr.Fields)
	case errors.Is(err, usecase.ErrInvalidStatus):
		response.BadRequest(w, "Invalid slot status, use available, booked or locked")
	case errors.Is(err, usecase.ErrInvalidRange):
		response.BadRequest(w, "Year is out of range")
	case errors.Is(err, usecase.ErrSlotNotFound):
		response.NotFound(w, "Slot not found")
	case errors.Is(err, usecase.ErrInvalidTransition):
		response.Conflict(w, "Slot status transition not allowed")
	case errors.Is(err, usecase.ErrSlotHasPatient):
		response.Conflict(w, "Slot holds a booking, release it first")
	case errors.Is(err, usecase.ErrSlotConflict):
		response.Conflict(w, "Slot changed concurrently, retry")
	case errors.Is(err, usecase.ErrDuplicateSlot):
		response.Conflict(w, "Slots already exist for this year")
	default:
		h.log.Errorf("%s: %+v", fallback, err)
		response.InternalServerError(w, fallback)
	}
}
