package usecase

import (
	"context"
	"errors"
	"time"

	"hospital-intake-api/internal/converter"
	"hospital-intake-api/internal/delivery/dto"
	"hospital-intake-api/internal/domain/entity"
	"hospital-intake-api/internal/domain/repository"
	"hospital-intake-api/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrDoctorNotFound        = errors.New("doctor not found")
	ErrDoctorHasAppointments = errors.New("doctor has scheduled appointments")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrAvailabilityNotFound  = errors.New("availability rule not found")
)

type DoctorUsecase interface {
	GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*dto.DoctorResponse, error)
	SearchDoctors(ctx context.Context, term string) (*dto.DoctorListResponse, error)
	CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	UpdateDoctor(ctx context.Context, id uuid.UUID, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error)
	DeactivateDoctor(ctx context.Context, id uuid.UUID) error
	SetAvailability(ctx context.Context, doctorID uuid.UUID, req *dto.SetAvailabilityRequest) (*dto.AvailabilityRuleResponse, error)
	ListAvailability(ctx context.Context, doctorID uuid.UUID) (*dto.AvailabilityRuleListResponse, error)
	DeleteAvailability(ctx context.Context, doctorID uuid.UUID, ruleID int) error
}

type doctorUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	userRepo          repository.UserRepository
	doctorProfileRepo repository.DoctorProfileRepository
	availabilityRepo  repository.DoctorAvailabilityRepository
	appointmentRepo   repository.AppointmentRepository
	auditService      service.AuditService
}

func NewDoctorUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	availabilityRepo repository.DoctorAvailabilityRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
) DoctorUsecase {
	return &doctorUsecase{
		db:                db,
		log:               log,
		userRepo:          userRepo,
		doctorProfileRepo: doctorProfileRepo,
		availabilityRepo:  availabilityRepo,
		appointmentRepo:   appointmentRepo,
		auditService:      auditService,
	}
}

func (u *doctorUsecase) GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	profiles, err := u.doctorProfileRepo.FindAllActive(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list doctors: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(profiles),
		Total:   len(profiles),
	}, nil
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, id uuid.UUID) (*dto.DoctorResponse, error) {
	profile, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", id, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorToResponse(profile), nil
}

func (u *doctorUsecase) SearchDoctors(ctx context.Context, term string) (*dto.DoctorListResponse, error) {
	profiles, err := u.doctorProfileRepo.Search(u.db.WithContext(ctx), term)
	if err != nil {
		u.log.Warnf("Failed to search doctors: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(profiles),
		Total:   len(profiles),
	}, nil
}

func (u *doctorUsecase) CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	if req.Email != "" {
		taken, err := u.doctorProfileRepo.ExistsByEmail(u.db.WithContext(ctx), req.Email, uuid.Nil)
		if err != nil {
			u.log.Warnf("Failed to check doctor email: %+v", err)
			return nil, err
		}
		if taken {
			return nil, ErrEmailAlreadyExists
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user := &entity.User{
		RoleID:   entity.RoleIDDoctor,
		Username: req.Username,
		Password: string(hashedPassword),
		FullName: req.Name,
		IsActive: true,
	}

	if err := u.userRepo.Create(tx, user); err != nil {
		if isDuplicateKeyError(err, "username") {
			return nil, ErrUsernameAlreadyExists
		}
		u.log.Warnf("Failed to create doctor user: %+v", err)
		return nil, err
	}

	profile := &entity.DoctorProfile{
		UserID:      user.ID,
		Specialty:   req.Specialty,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
	}

	if err := u.doctorProfileRepo.Create(tx, profile); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create doctor profile: %+v", err)
		return nil, err
	}

	profile.User = *user
	actorID := actorFromContext(ctx)
	if err := u.auditService.LogCreate(tx, actorID, entity.AuditActionDoctorCreate, "doctor", user.ID.String(), converter.DoctorToResponse(profile)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Doctor created: id=%s", user.ID)
	return converter.DoctorToResponse(profile), nil
}

func (u *doctorUsecase) UpdateDoctor(ctx context.Context, id uuid.UUID, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error) {
	profile, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", id, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	if req.Email != "" && req.Email != profile.Email {
		taken, err := u.doctorProfileRepo.ExistsByEmail(u.db.WithContext(ctx), req.Email, id)
		if err != nil {
			u.log.Warnf("Failed to check doctor email: %+v", err)
			return nil, err
		}
		if taken {
			return nil, ErrEmailAlreadyExists
		}
	}

	oldValue := converter.DoctorToResponse(profile)

	if req.Specialty != "" {
		profile.Specialty = req.Specialty
	}
	if req.PhoneNumber != "" {
		profile.PhoneNumber = req.PhoneNumber
	}
	if req.Email != "" {
		profile.Email = req.Email
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.doctorProfileRepo.Update(tx, profile); err != nil {
		u.log.Warnf("Failed to update doctor %s: %+v", id, err)
		return nil, err
	}

	userChanged := false
	if req.Name != "" && req.Name != profile.User.FullName {
		profile.User.FullName = req.Name
		userChanged = true
	}
	if req.IsActive != nil && *req.IsActive != profile.User.IsActive {
		profile.User.IsActive = *req.IsActive
		userChanged = true
	}
	if userChanged {
		if err := u.userRepo.Update(tx, &profile.User); err != nil {
			u.log.Warnf("Failed to update doctor user %s: %+v", id, err)
			return nil, err
		}
	}

	actorID := actorFromContext(ctx)
	if err := u.auditService.LogUpdate(tx, actorID, entity.AuditActionDoctorUpdate, "doctor", id.String(), oldValue, converter.DoctorToResponse(profile)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorToResponse(profile), nil
}

// DeactivateDoctor soft-deletes by flipping the account inactive.
// Refused while the doctor still has Scheduled appointments today or
// later; past and cancelled bookings do not block it.
func (u *doctorUsecase) DeactivateDoctor(ctx context.Context, id uuid.UUID) error {
	profile, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", id, err)
		return err
	}
	if profile == nil {
		return ErrDoctorNotFound
	}

	today := normalizeDate(time.Now())
	hasUpcoming, err := u.appointmentRepo.ExistsScheduledByDoctorFrom(u.db.WithContext(ctx), id, today)
	if err != nil {
		u.log.Warnf("Failed to check doctor appointments: %+v", err)
		return err
	}
	if hasUpcoming {
		return ErrDoctorHasAppointments
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile.User.IsActive = false
	if err := u.userRepo.Update(tx, &profile.User); err != nil {
		u.log.Warnf("Failed to deactivate doctor %s: %+v", id, err)
		return err
	}

	actorID := actorFromContext(ctx)
	if err := u.auditService.LogUpdate(tx, actorID, entity.AuditActionDoctorDeactivate, "doctor", id.String(), map[string]bool{"is_active": true}, map[string]bool{"is_active": false}); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.log.Infof("Doctor deactivated: id=%s", id)
	return nil
}

func (u *doctorUsecase) SetAvailability(ctx context.Context, doctorID uuid.UUID, req *dto.SetAvailabilityRequest) (*dto.AvailabilityRuleResponse, error) {
	profile, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	start, err := parseClock(req.StartTime)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}
	end, err := parseClock(req.EndTime)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}
	if start >= end {
		return nil, ErrInvalidTimeRange
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	rule := &entity.DoctorAvailability{
		DoctorID:  doctorID,
		DayOfWeek: time.Weekday(req.DayOfWeek),
		StartTime: formatClock(start),
		EndTime:   formatClock(end),
		IsActive:  isActive,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.availabilityRepo.Create(tx, rule); err != nil {
		u.log.Warnf("Failed to create availability rule: %+v", err)
		return nil, err
	}

	actorID := actorFromContext(ctx)
	if err := u.auditService.LogCreate(tx, actorID, entity.AuditActionAvailabilitySet, "doctor_availability", doctorID.String(), converter.AvailabilityRuleToResponse(rule)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.AvailabilityRuleToResponse(rule), nil
}

func (u *doctorUsecase) ListAvailability(ctx context.Context, doctorID uuid.UUID) (*dto.AvailabilityRuleListResponse, error) {
	profile, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	rules, err := u.availabilityRepo.FindByDoctorID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to list availability rules: %+v", err)
		return nil, err
	}

	return &dto.AvailabilityRuleListResponse{
		Rules: converter.AvailabilityRulesToResponses(rules),
		Total: len(rules),
	}, nil
}

func (u *doctorUsecase) DeleteAvailability(ctx context.Context, doctorID uuid.UUID, ruleID int) error {
	rule, err := u.availabilityRepo.FindByID(u.db.WithContext(ctx), ruleID)
	if err != nil {
		u.log.Warnf("Failed to find availability rule %d: %+v", ruleID, err)
		return err
	}
	if rule == nil || rule.DoctorID != doctorID {
		return ErrAvailabilityNotFound
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.availabilityRepo.Delete(tx, ruleID)
	if err != nil {
		u.log.Warnf("Failed to delete availability rule %d: %+v", ruleID, err)
		return err
	}
	if affected == 0 {
		return ErrAvailabilityNotFound
	}

	actorID := actorFromContext(ctx)
	if err := u.auditService.LogDelete(tx, actorID, entity.AuditActionAvailabilityDelete, "doctor_availability", doctorID.String(), converter.AvailabilityRuleToResponse(rule)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}
