package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DoctorAvailability is a weekly working-hours declaration for a doctor.
// The slot grid currently runs on a fixed operating window and does not
// consult these rows; they are managed so per-doctor hours can be wired
// into availability later.
type DoctorAvailability struct {
	ID        int          `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"doctor_id"`
	DayOfWeek time.Weekday `gorm:"not null" json:"day_of_week"`
	StartTime string       `gorm:"type:time;not null" json:"start_time"`
	EndTime   string       `gorm:"type:time;not null" json:"end_time"`
	IsActive  bool         `gorm:"not null;default:true" json:"is_active"`

	// Relationships
	Doctor DoctorProfile `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (DoctorAvailability) TableName() string {
	return "doctor_availabilities"
}

// AfterFind truncates clock values back to HH:MM, same as Appointment.
func (d *DoctorAvailability) AfterFind(tx *gorm.DB) error {
	d.StartTime = clockHHMM(d.StartTime)
	d.EndTime = clockHHMM(d.EndTime)
	return nil
}
