package entity

import "github.com/google/uuid"

// DoctorProfile represents doctor-specific profile data
type DoctorProfile struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Specialty   string    `gorm:"type:varchar(100);not null;index" json:"specialty"`
	PhoneNumber string    `gorm:"type:varchar(20)" json:"phone_number,omitempty"`
	Email       string    `gorm:"type:varchar(200);index" json:"email,omitempty"`

	// Relationships
	User           User                 `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Appointments   []Appointment        `gorm:"foreignKey:DoctorID" json:"appointments,omitempty"`
	Availabilities []DoctorAvailability `gorm:"foreignKey:DoctorID" json:"availabilities,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}
