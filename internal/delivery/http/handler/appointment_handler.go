package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"clinic-appointment-service/internal/delivery/dto"
	"clinic-appointment-service/internal/usecase"
	"clinic-appointment-service/pkg/response"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// AppointmentHandler serves the public booking form.
type AppointmentHandler struct {
	bookingUsecase usecase.AppointmentBookingUsecase
	slotUsecase    usecase.SlotUsecase
	log            *logrus.Logger
}

func NewAppointmentHandler(bookingUsecase usecase.AppointmentBookingUsecase, slotUsecase usecase.SlotUsecase, log *logrus.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		bookingUsecase: bookingUsecase,
		slotUsecase:    slotUsecase,
		log:            log,
	}
}

func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	booking, err := h.bookingUsecase.BookAppointment(r.Context(), &req)
	if err != nil {
		var validationErr *usecase.ValidationError
		switch {
		case errors.As(err, &validationErr):
			response.ValidationError(w, validationErr.Fields)
		case errors.Is(err, usecase.ErrSlotNotFound):
			response.NotFound(w, "No appointment slot exists for this date and time")
		case errors.Is(err, usecase.ErrSlotUnavailable):
			response.Conflict(w, "This time slot is already booked or unavailable")
		case errors.Is(err, usecase.ErrSlotConflict):
			response.Conflict(w, "This time slot was just taken, please choose another time")
		default:
			h.log.Errorf("Failed to book appointment: %+v", err)
			response.InternalServerError(w, "Failed to book appointment")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", booking)
}

func (h *AppointmentHandler) GetAvailableTimes(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]

	availability, err := h.slotUsecase.GetAvailableTimes(r.Context(), date)
	if err != nil {
		var validationErr *usecase.ValidationError
		if errors.As(err, &validationErr) {
			response.ValidationError(w, validationErr.Fields)
			return
		}
		h.log.Errorf("Failed to get available times for %s: %+v", date, err)
		response.InternalServerError(w, "Failed to get available times")
		return
	}

	response.Success(w, http.StatusOK, "Available times retrieved successfully", availability)
}
