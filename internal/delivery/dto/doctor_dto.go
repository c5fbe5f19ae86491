package dto

import (
	"github.com/google/uuid"
)

// Request DTOs

type CreateDoctorRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=100"`
	Password    string `json:"password" validate:"required,min=6"`
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Specialty   string `json:"specialty" validate:"required,max=100"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=20"`
	Email       string `json:"email" validate:"omitempty,email,max=200"`
}

type UpdateDoctorRequest struct {
	Name        string `json:"name" validate:"omitempty,min=2,max=100"`
	Specialty   string `json:"specialty" validate:"omitempty,max=100"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=20"`
	Email       string `json:"email" validate:"omitempty,email,max=200"`
	IsActive    *bool  `json:"is_active" validate:"omitempty"`
}

type SetAvailabilityRequest struct {
	DayOfWeek int    `json:"day_of_week" validate:"gte=0,lte=6"`
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm"`
	IsActive  *bool  `json:"is_active" validate:"omitempty"`
}

// Response DTOs

type DoctorResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Name        string    `json:"name"`
	Specialty   string    `json:"specialty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Email       string    `json:"email,omitempty"`
	IsActive    bool      `json:"is_active"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}

type AvailabilityRuleResponse struct {
	ID        int       `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	DayOfWeek int       `json:"day_of_week"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	IsActive  bool      `json:"is_active"`
}

type AvailabilityRuleListResponse struct {
	Rules []AvailabilityRuleResponse `json:"rules"`
	Total int                        `json:"total"`
}
