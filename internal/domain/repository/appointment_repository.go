package repository

import (
	"time"

	"hospital-intake-api/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentRepository is the booking store boundary consumed by the
// scheduling engine. All date parameters are date-only values.
type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindAll(db *gorm.DB) ([]entity.Appointment, error)
	// FindByDoctorAndDate returns a doctor's appointments on a date,
	// excluding a status when excludeStatus is non-empty.
	FindByDoctorAndDate(db *gorm.DB, doctorID uuid.UUID, date time.Time, excludeStatus entity.AppointmentStatus) ([]entity.Appointment, error)
	// FindScheduledByDate returns Scheduled appointments on a date
	// ordered by date then start time ascending.
	FindScheduledByDate(db *gorm.DB, date time.Time) ([]entity.Appointment, error)
	// CancelScheduled flips status to Cancelled only when not already
	// cancelled. Affected rows: 1 = cancelled, 0 = missing or already
	// cancelled.
	CancelScheduled(db *gorm.DB, id uuid.UUID) (int64, error)
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
	ExistsByPatient(db *gorm.DB, patientID uuid.UUID) (bool, error)
	ExistsScheduledByDoctorFrom(db *gorm.DB, doctorID uuid.UUID, from time.Time) (bool, error)
}
