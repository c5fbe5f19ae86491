package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "Scheduled"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
)

// Appointment represents one scheduled patient/doctor encounter.
// AppointmentDate holds the calendar date only; StartTime/EndTime are
// zero-padded HH:MM clock values, so lexicographic comparison is
// time-of-day comparison.
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID        uuid.UUID         `gorm:"type:uuid;not null;index:idx_appointments_doctor_date" json:"doctor_id"`
	AppointmentDate time.Time         `gorm:"type:date;not null;index:idx_appointments_doctor_date" json:"appointment_date"`
	StartTime       string            `gorm:"type:time;not null" json:"start_time"`
	EndTime         string            `gorm:"type:time;not null" json:"end_time"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;default:'Scheduled';index" json:"status"`
	Notes           string            `gorm:"type:varchar(500)" json:"notes,omitempty"`
	IsFollowUp      bool              `gorm:"not null;default:false" json:"is_follow_up"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Patient PatientProfile `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  DoctorProfile  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AfterFind truncates clock values back to HH:MM. Postgres time columns
// scan as "HH:MM:SS[.ffffff]", which would break lexicographic
// comparison against HH:MM values at touching boundaries.
func (a *Appointment) AfterFind(tx *gorm.DB) error {
	a.StartTime = clockHHMM(a.StartTime)
	a.EndTime = clockHHMM(a.EndTime)
	return nil
}

func clockHHMM(s string) string {
	if len(s) > 5 {
		return s[:5]
	}
	return s
}

// OverlapsRange reports whether the appointment intersects the half-open
// interval [start, end). Touching endpoints do not overlap.
func (a *Appointment) OverlapsRange(start, end string) bool {
	return a.StartTime < end && start < a.EndTime
}

// IsCancelled checks if the appointment has been cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// Cancel changes appointment status to cancelled
func (a *Appointment) Cancel() {
	a.Status = AppointmentStatusCancelled
}
