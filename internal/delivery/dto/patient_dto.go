package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreatePatientRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Age         int    `json:"age" validate:"gte=0,lte=150"`
	Symptoms    string `json:"symptoms" validate:"omitempty,max=500"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=20"`
	Email       string `json:"email" validate:"omitempty,email,max=200"`
	Address     string `json:"address" validate:"omitempty,max=500"`
}

type UpdatePatientRequest struct {
	Name        string `json:"name" validate:"omitempty,min=2,max=100"`
	Age         *int   `json:"age" validate:"omitempty,gte=0,lte=150"`
	Symptoms    string `json:"symptoms" validate:"omitempty,max=500"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=20"`
	Email       string `json:"email" validate:"omitempty,email,max=200"`
	Address     string `json:"address" validate:"omitempty,max=500"`
}

// Response DTOs

type PatientResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Age         int       `json:"age"`
	Symptoms    string    `json:"symptoms,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Email       string    `json:"email,omitempty"`
	Address     string    `json:"address,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PatientIntakeResponse is returned on intake only: the generated login
// and one-time password are handed to the patient by the clerk and are
// never persisted or logged in clear text.
type PatientIntakeResponse struct {
	Patient           PatientResponse `json:"patient"`
	Username          string          `json:"username"`
	TemporaryPassword string          `json:"temporary_password"`
}

type PatientListResponse struct {
	Patients []PatientResponse `json:"patients"`
	Total    int               `json:"total"`
}
