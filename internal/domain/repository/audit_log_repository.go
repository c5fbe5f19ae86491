package repository

import (
	"hospital-intake-api/internal/domain/entity"

	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(db *gorm.DB, log *entity.AuditLog) error
	// FindAll returns logs newest first, optionally filtered by action,
	// with the total count before paging.
	FindAll(db *gorm.DB, action string, limit, offset int) ([]entity.AuditLog, int64, error)
	FindByID(db *gorm.DB, id int64) (*entity.AuditLog, error)
}
