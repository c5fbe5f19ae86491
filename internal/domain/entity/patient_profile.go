package entity

import (
	"time"

	"github.com/google/uuid"
)

// PatientProfile represents patient-specific intake data
type PatientProfile struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Age         int       `gorm:"not null" json:"age"`
	Symptoms    string    `gorm:"type:varchar(500)" json:"symptoms,omitempty"`
	PhoneNumber string    `gorm:"type:varchar(20);index" json:"phone_number,omitempty"`
	Email       string    `gorm:"type:varchar(200)" json:"email,omitempty"`
	Address     string    `gorm:"type:varchar(500)" json:"address,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User         User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Appointments []Appointment `gorm:"foreignKey:PatientID" json:"appointments,omitempty"`
}

func (PatientProfile) TableName() string {
	return "patient_profiles"
}
