package converter

import (
	"clinic-appointment-service/internal/delivery/dto"
	"clinic-appointment-service/internal/domain/entity"
)

// SlotToResponse converts an AppointmentSlot entity to SlotResponse DTO
func SlotToResponse(slot *entity.AppointmentSlot) *dto.SlotResponse {
	if slot == nil {
		return nil
	}

	return &dto.SlotResponse{
		SlotID:     slot.SlotID,
		SlotDate:   slot.SlotDate,
		SlotTime:   slot.SlotTime,
		Status:     string(slot.Status),
		PatientID:  slot.PatientID,
		ProviderID: slot.ProviderID,
		CreatedAt:  slot.CreatedAt,
		UpdatedAt:  slot.UpdatedAt,
	}
}

// SlotsToResponses converts a slice of AppointmentSlot entities to slice of SlotResponse DTOs
func SlotsToResponses(slots []entity.AppointmentSlot) []dto.SlotResponse {
	responses := make([]dto.SlotResponse, len(slots))
	for i := range slots {
		responses[i] = *SlotToResponse(&slots[i])
	}
	return responses
}

// SlotToDetailResponse attaches the current patient, when there is one
func SlotToDetailResponse(slot *entity.AppointmentSlot, patient *entity.Patient) *dto.SlotDetailResponse {
	if slot == nil {
		return nil
	}

	return &dto.SlotDetailResponse{
		SlotResponse: *SlotToResponse(slot),
		Patient:      PatientToResponse(patient),
	}
}
