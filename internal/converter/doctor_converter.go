package converter

import (
	"hospital-intake-api/internal/delivery/dto"
	"hospital-intake-api/internal/domain/entity"
)

// DoctorToResponse converts a DoctorProfile (with preloaded User) to
// its response DTO.
func DoctorToResponse(profile *entity.DoctorProfile) *dto.DoctorResponse {
	if profile == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:          profile.UserID,
		Username:    profile.User.Username,
		Name:        profile.User.FullName,
		Specialty:   profile.Specialty,
		PhoneNumber: profile.PhoneNumber,
		Email:       profile.Email,
		IsActive:    profile.User.IsActive,
	}
}

// DoctorsToResponses converts a slice of DoctorProfile entities
func DoctorsToResponses(profiles []entity.DoctorProfile) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(profiles))
	for i, profile := range profiles {
		responses[i] = *DoctorToResponse(&profile)
	}
	return responses
}

// AvailabilityRuleToResponse converts a DoctorAvailability row
func AvailabilityRuleToResponse(rule *entity.DoctorAvailability) *dto.AvailabilityRuleResponse {
	if rule == nil {
		return nil
	}

	return &dto.AvailabilityRuleResponse{
		ID:        rule.ID,
		DoctorID:  rule.DoctorID,
		DayOfWeek: int(rule.DayOfWeek),
		StartTime: rule.StartTime,
		EndTime:   rule.EndTime,
		IsActive:  rule.IsActive,
	}
}

// AvailabilityRulesToResponses converts a slice of DoctorAvailability rows
func AvailabilityRulesToResponses(rules []entity.DoctorAvailability) []dto.AvailabilityRuleResponse {
	responses := make([]dto.AvailabilityRuleResponse, len(rules))
	for i, rule := range rules {
		responses[i] = *AvailabilityRuleToResponse(&rule)
	}
	return responses
}
