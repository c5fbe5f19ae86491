package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

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
	ErrPatientNotFound        = errors.New("patient not found")
	ErrPatientHasAppointments = errors.New("patient has existing appointments")
)

const passwordAlphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ23456789"

type PatientUsecase interface {
	GetAllPatients(ctx context.Context) (*dto.PatientListResponse, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*dto.PatientResponse, error)
	SearchPatients(ctx context.Context, term string) (*dto.PatientListResponse, error)
	CreatePatient(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientIntakeResponse, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error)
	DeletePatient(ctx context.Context, id uuid.UUID) error
}

type patientUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	userRepo           repository.UserRepository
	patientProfileRepo repository.PatientProfileRepository
	appointmentRepo    repository.AppointmentRepository
	auditService       service.AuditService
}

func NewPatientUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	patientProfileRepo repository.PatientProfileRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
) PatientUsecase {
	return &patientUsecase{
		db:                 db,
		log:                log,
		userRepo:           userRepo,
		patientProfileRepo: patientProfileRepo,
		appointmentRepo:    appointmentRepo,
		auditService:       auditService,
	}
}

func (u *patientUsecase) GetAllPatients(ctx context.Context) (*dto.PatientListResponse, error) {
	profiles, err := u.patientProfileRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list patients: %+v", err)
		return nil, err
	}

	return &dto.PatientListResponse{
		Patients: converter.PatientsToResponses(profiles),
		Total:    len(profiles),
	}, nil
}

func (u *patientUsecase) GetPatient(ctx context.Context, id uuid.UUID) (*dto.PatientResponse, error) {
	profile, err := u.patientProfileRepo.FindByUserID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", id, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrPatientNotFound
	}

	return converter.PatientToResponse(profile), nil
}

func (u *patientUsecase) SearchPatients(ctx context.Context, term string) (*dto.PatientListResponse, error) {
	profiles, err := u.patientProfileRepo.Search(u.db.WithContext(ctx), term)
	if err != nil {
		u.log.Warnf("Failed to search patients: %+v", err)
		return nil, err
	}

	return &dto.PatientListResponse{
		Patients: converter.PatientsToResponses(profiles),
		Total:    len(profiles),
	}, nil
}

// CreatePatient registers a walk-in: a patient user with generated
// credentials plus the intake profile, in one transaction. The
// temporary password exists only in the response; the store keeps the
// bcrypt hash and nothing is logged.
func (u *patientUsecase) CreatePatient(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientIntakeResponse, error) {
	username, err := u.generateUsername(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	tempPassword, err := generatePassword(10)
	if err != nil {
		u.log.Warnf("Failed to generate password: %+v", err)
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user := &entity.User{
		RoleID:   entity.RoleIDPatient,
		Username: username,
		Password: string(hashedPassword),
		FullName: req.Name,
		IsActive: true,
	}

	if err := u.userRepo.Create(tx, user); err != nil {
		if isDuplicateKeyError(err, "username") {
			return nil, ErrUsernameAlreadyExists
		}
		u.log.Warnf("Failed to create patient user: %+v", err)
		return nil, err
	}

	profile := &entity.PatientProfile{
		UserID:      user.ID,
		Age:         req.Age,
		Symptoms:    req.Symptoms,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Address:     req.Address,
	}

	if err := u.patientProfileRepo.Create(tx, profile); err != nil {
		u.log.Warnf("Failed to create patient profile: %+v", err)
		return nil, err
	}

	profile.User = *user
	actorID := actorFromContext(ctx)
	if err := u.auditService.LogCreate(tx, actorID, entity.AuditActionPatientCreate, "patient", user.ID.String(), converter.PatientToResponse(profile)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Patient registered: id=%s", user.ID)
	return &dto.PatientIntakeResponse{
		Patient:           *converter.PatientToResponse(profile),
		Username:          username,
		TemporaryPassword: tempPassword,
	}, nil
}

func (u *patientUsecase) UpdatePatient(ctx context.Context, id uuid.UUID, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error) {
	profile, err := u.patientProfileRepo.FindByUserID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", id, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrPatientNotFound
	}

	oldValue := converter.PatientToResponse(profile)

	if req.Age != nil {
		profile.Age = *req.Age
	}
	if req.Symptoms != "" {
		profile.Symptoms = req.Symptoms
	}
	if req.PhoneNumber != "" {
		profile.PhoneNumber = req.PhoneNumber
	}
	if req.Email != "" {
		profile.Email = req.Email
	}
	if req.Address != "" {
		profile.Address = req.Address
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.patientProfileRepo.Update(tx, profile); err != nil {
		u.log.Warnf("Failed to update patient %s: %+v", id, err)
		return nil, err
	}

	if req.Name != "" && req.Name != profile.User.FullName {
		profile.User.FullName = req.Name
		if err := u.userRepo.Update(tx, &profile.User); err != nil {
			u.log.Warnf("Failed to update patient user %s: %+v", id, err)
			return nil, err
		}
	}

	actorID := actorFromContext(ctx)
	if err := u.auditService.LogUpdate(tx, actorID, entity.AuditActionPatientUpdate, "patient", id.String(), oldValue, converter.PatientToResponse(profile)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.PatientToResponse(profile), nil
}

// DeletePatient removes the intake record. Refused while any
// appointment references the patient, cancelled ones included, so the
// booking history stays consistent.
func (u *patientUsecase) DeletePatient(ctx context.Context, id uuid.UUID) error {
	profile, err := u.patientProfileRepo.FindByUserID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", id, err)
		return err
	}
	if profile == nil {
		return ErrPatientNotFound
	}

	hasAppointments, err := u.appointmentRepo.ExistsByPatient(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to check patient appointments: %+v", err)
		return err
	}
	if hasAppointments {
		return ErrPatientHasAppointments
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if _, err := u.patientProfileRepo.Delete(tx, id); err != nil {
		u.log.Warnf("Failed to delete patient profile %s: %+v", id, err)
		return err
	}

	if _, err := u.userRepo.Delete(tx, id); err != nil {
		u.log.Warnf("Failed to delete patient user %s: %+v", id, err)
		return err
	}

	actorID := actorFromContext(ctx)
	if err := u.auditService.LogDelete(tx, actorID, entity.AuditActionPatientDelete, "patient", id.String(), converter.PatientToResponse(profile)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.log.Infof("Patient deleted: id=%s", id)
	return nil
}

// generateUsername derives a login from the patient name plus a random
// 4-digit suffix, retrying on the rare collision.
func (u *patientUsecase) generateUsername(ctx context.Context, name string) (string, error) {
	base := strings.ToLower(strings.Join(strings.Fields(name), ""))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, base)
	if len(base) > 10 {
		base = base[:10]
	}
	if base == "" {
		base = "patient"
	}

	for attempt := 0; attempt < 5; attempt++ {
		suffix, err := rand.Int(rand.Reader, big.NewInt(10000))
		if err != nil {
			return "", err
		}
		candidate := fmt.Sprintf("%s%04d", base, suffix.Int64())

		existing, err := u.userRepo.FindByUsername(u.db.WithContext(ctx), candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
	}

	return "", errors.New("could not generate a unique username")
}

func generatePassword(length int) (string, error) {
	chars := make([]byte, length)
	for i := range chars {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordAlphabet))))
		if err != nil {
			return "", err
		}
		chars[i] = passwordAlphabet[n.Int64()]
	}
	return string(chars), nil
}
