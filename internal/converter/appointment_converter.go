package converter

import (
	"hospital-intake-api/internal/delivery/dto"
	"hospital-intake-api/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to its response
// DTO, resolving patient and doctor display names when preloaded.
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:              appointment.ID,
		PatientID:       appointment.PatientID,
		PatientName:     appointment.Patient.User.FullName,
		DoctorID:        appointment.DoctorID,
		DoctorName:      appointment.Doctor.User.FullName,
		AppointmentDate: appointment.AppointmentDate.Format("2006-01-02"),
		StartTime:       appointment.StartTime,
		EndTime:         appointment.EndTime,
		Status:          string(appointment.Status),
		Notes:           appointment.Notes,
		IsFollowUp:      appointment.IsFollowUp,
		CreatedAt:       appointment.CreatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i, appointment := range appointments {
		responses[i] = *AppointmentToResponse(&appointment)
	}
	return responses
}

// TimeSlotsToResponses converts derived TimeSlot values
func TimeSlotsToResponses(slots []entity.TimeSlot) []dto.TimeSlotResponse {
	responses := make([]dto.TimeSlotResponse, len(slots))
	for i, slot := range slots {
		responses[i] = dto.TimeSlotResponse{
			Date:        slot.Date.Format("2006-01-02"),
			StartTime:   slot.StartTime,
			EndTime:     slot.EndTime,
			IsAvailable: slot.IsAvailable,
		}
	}
	return responses
}
