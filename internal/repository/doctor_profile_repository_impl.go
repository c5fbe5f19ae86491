package repository

import (
	"errors"
	"strings"

	"hospital-intake-api/internal/domain/entity"
	domainRepo "hospital-intake-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorProfileRepository struct{}

func NewDoctorProfileRepository() domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{}
}

func (r *doctorProfileRepository) Create(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Create(profile).Error
}

func (r *doctorProfileRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := db.Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *doctorProfileRepository) FindAllActive(db *gorm.DB) ([]entity.DoctorProfile, error) {
	var profiles []entity.DoctorProfile
	err := db.
		Joins("JOIN users ON users.id = doctor_profiles.user_id").
		Where("users.is_active = ?", true).
		Preload("User").
		Order("user_id ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *doctorProfileRepository) Search(db *gorm.DB, term string) ([]entity.DoctorProfile, error) {
	var profiles []entity.DoctorProfile
	pattern := "%" + strings.ToLower(term) + "%"
	err := db.
		Joins("JOIN users ON users.id = doctor_profiles.user_id").
		Where("LOWER(users.full_name) LIKE ? OR LOWER(doctor_profiles.phone_number) LIKE ?", pattern, pattern).
		Preload("User").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *doctorProfileRepository) ExistsByEmail(db *gorm.DB, email string, excludeUserID uuid.UUID) (bool, error) {
	var count int64
	query := db.Model(&entity.DoctorProfile{}).Where("email = ?", email)
	if excludeUserID != uuid.Nil {
		query = query.Where("user_id != ?", excludeUserID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *doctorProfileRepository) Update(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Omit("User").Save(profile).Error
}
