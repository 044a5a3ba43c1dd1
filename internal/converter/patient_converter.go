package converter

import (
	"clinic-appointment-service/internal/delivery/dto"
	"clinic-appointment-service/internal/domain/entity"
)

// PatientToResponse converts a Patient entity to PatientResponse DTO
func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	return &dto.PatientResponse{
		ID:                patient.ID,
		Name:              patient.Name,
		Phone:             patient.Phone,
		Email:             patient.Email,
		IdentityNumber:    patient.IdentityNumber,
		AppointmentDate:   patient.AppointmentDate,
		AppointmentTime:   patient.AppointmentTime,
		Reason:            patient.Reason,
		PreferredProvider: patient.PreferredProvider,
		Notes:             patient.Notes,
		Insurance: dto.InsuranceResponse{
			HasInsurance: patient.Insurance.HasInsurance,
			Company:      patient.Insurance.Company,
			PolicyNumber: patient.Insurance.PolicyNumber,
		},
		ConsentGiven:   patient.ConsentGiven,
		ReminderMethod: patient.ReminderMethod,
		SlotID:         patient.SlotID,
		BookedAt:       patient.BookedAt,
	}
}

// PatientsToResponses converts a slice of Patient entities to slice of PatientResponse DTOs
func PatientsToResponses(patients []entity.Patient) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, len(patients))
	for i := range patients {
		responses[i] = *PatientToResponse(&patients[i])
	}
	return responses
}

// BookAppointmentRequestToPatient builds the intake record for slot.
// Insurance details are dropped unless the patient declared insurance.
func BookAppointmentRequestToPatient(req *dto.BookAppointmentRequest, slot *entity.AppointmentSlot) *entity.Patient {
	insurance := entity.Insurance{HasInsurance: req.HasInsurance}
	if req.HasInsurance {
		insurance.Company = req.InsuranceCompany
		insurance.PolicyNumber = req.InsurancePolicyNumber
	}

	return &entity.Patient{
		Name:              req.PatientName,
		Phone:             req.PhoneNumber,
		Email:             req.Email,
		IdentityNumber:    req.IdentityNumber,
		AppointmentDate:   slot.SlotDate,
		AppointmentTime:   slot.SlotTime,
		Reason:            req.AppointmentReason,
		PreferredProvider: req.PreferredDoctor,
		Notes:             req.AdditionalNotes,
		Insurance:         insurance,
		ConsentGiven:      req.AgreeToTerms,
		ReminderMethod:    req.ReminderMethod,
		SlotID:            slot.SlotID,
	}
}
