package converter

import (
	"hospital-intake-api/internal/delivery/dto"
	"hospital-intake-api/internal/domain/entity"
)

// PatientToResponse converts a PatientProfile (with preloaded User) to
// its response DTO.
func PatientToResponse(profile *entity.PatientProfile) *dto.PatientResponse {
	if profile == nil {
		return nil
	}

	return &dto.PatientResponse{
		ID:          profile.UserID,
		Name:        profile.User.FullName,
		Age:         profile.Age,
		Symptoms:    profile.Symptoms,
		PhoneNumber: profile.PhoneNumber,
		Email:       profile.Email,
		Address:     profile.Address,
		CreatedAt:   profile.CreatedAt,
		UpdatedAt:   profile.UpdatedAt,
	}
}

// PatientsToResponses converts a slice of PatientProfile entities
func PatientsToResponses(profiles []entity.PatientProfile) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, len(profiles))
	for i, profile := range profiles {
		responses[i] = *PatientToResponse(&profile)
	}
	return responses
}
