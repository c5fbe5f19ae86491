package repository

import (
	"hospital-intake-api/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorProfileRepository interface {
	Create(db *gorm.DB, profile *entity.DoctorProfile) error
	FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error)
	FindAllActive(db *gorm.DB) ([]entity.DoctorProfile, error)
	Search(db *gorm.DB, term string) ([]entity.DoctorProfile, error)
	ExistsByEmail(db *gorm.DB, email string, excludeUserID uuid.UUID) (bool, error)
	Update(db *gorm.DB, profile *entity.DoctorProfile) error
}
