package usecase

import (
	"context"
	"errors"
	"time"

	"hospital-intake-api/config"
	"hospital-intake-api/internal/converter"
	"hospital-intake-api/internal/delivery/dto"
	"hospital-intake-api/internal/delivery/http/middleware"
	"hospital-intake-api/internal/domain/entity"
	"hospital-intake-api/internal/domain/repository"
	"hospital-intake-api/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrAppointmentCancelled    = errors.New("appointment is already cancelled")
	ErrSlotUnavailable         = errors.New("the selected time slot is not available")
	ErrInvalidAppointmentDate  = errors.New("invalid appointment date format, use YYYY-MM-DD")
	ErrInvalidTimeFormat       = errors.New("invalid time format, use HH:MM")
	ErrInvalidTimeRange        = errors.New("start time must be before end time")
	ErrInvalidSchedulingWindow = errors.New("invalid scheduling window configuration")
)

// AppointmentUsecase is the scheduling engine: overlap checking, slot
// grid generation, today's schedule, and the booking/cancel/delete
// paths. "Available" always means no non-cancelled appointment occupies
// the interval; this is the only implementation of that rule.
type AppointmentUsecase interface {
	IsSlotAvailable(ctx context.Context, doctorID uuid.UUID, date time.Time, startTime, endTime string) (bool, error)
	GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) (*dto.AvailabilityResponse, error)
	GetTodaysAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
	GetAllAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, id uuid.UUID) error
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
}

type appointmentUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	appointmentRepo    repository.AppointmentRepository
	patientProfileRepo repository.PatientProfileRepository
	doctorProfileRepo  repository.DoctorProfileRepository
	slotLocks          *service.SlotLockService
	auditService       service.AuditService

	windowStart int
	windowEnd   int
	slotMinutes int
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	patientProfileRepo repository.PatientProfileRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	slotLocks *service.SlotLockService,
	auditService service.AuditService,
	cfg config.SchedulingConfig,
) (AppointmentUsecase, error) {
	windowStart, err := parseClock(cfg.WindowStart)
	if err != nil {
		return nil, ErrInvalidSchedulingWindow
	}
	windowEnd, err := parseClock(cfg.WindowEnd)
	if err != nil {
		return nil, ErrInvalidSchedulingWindow
	}
	if windowStart >= windowEnd || cfg.SlotMinutes <= 0 {
		return nil, ErrInvalidSchedulingWindow
	}

	return &appointmentUsecase{
		db:                 db,
		log:                log,
		appointmentRepo:    appointmentRepo,
		patientProfileRepo: patientProfileRepo,
		doctorProfileRepo:  doctorProfileRepo,
		slotLocks:          slotLocks,
		auditService:       auditService,
		windowStart:        windowStart,
		windowEnd:          windowEnd,
		slotMinutes:        cfg.SlotMinutes,
	}, nil
}

// IsSlotAvailable reports whether no non-cancelled appointment of the
// doctor on the date intersects [startTime, endTime). Read-only; the
// caller is responsible for validating the doctor reference and the
// time range.
func (u *appointmentUsecase) IsSlotAvailable(ctx context.Context, doctorID uuid.UUID, date time.Time, startTime, endTime string) (bool, error) {
	existing, err := u.appointmentRepo.FindByDoctorAndDate(
		u.db.WithContext(ctx), doctorID, normalizeDate(date), entity.AppointmentStatusCancelled)
	if err != nil {
		u.log.Warnf("Failed to load appointments for availability check: %+v", err)
		return false, err
	}

	return !hasConflict(existing, startTime, endTime), nil
}

// GetAvailableSlots generates the fixed slot grid for a doctor/date.
// A doctor with no appointments yields an all-available grid.
func (u *appointmentUsecase) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) (*dto.AvailabilityResponse, error) {
	day := normalizeDate(date)

	existing, err := u.appointmentRepo.FindByDoctorAndDate(
		u.db.WithContext(ctx), doctorID, day, entity.AppointmentStatusCancelled)
	if err != nil {
		u.log.Warnf("Failed to load appointments for slot grid: %+v", err)
		return nil, err
	}

	slots := buildSlotGrid(existing, day, u.windowStart, u.windowEnd, u.slotMinutes)

	return &dto.AvailabilityResponse{
		DoctorID: doctorID,
		Date:     day.Format("2006-01-02"),
		Slots:    converter.TimeSlotsToResponses(slots),
	}, nil
}

// GetTodaysAppointments returns today's Scheduled appointments ordered
// by start time, with display names resolved. Cancelled bookings are
// excluded from the day view.
func (u *appointmentUsecase) GetTodaysAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	today := normalizeDate(time.Now())

	appointments, err := u.appointmentRepo.FindScheduledByDate(u.db.WithContext(ctx), today)
	if err != nil {
		u.log.Warnf("Failed to load today's appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) GetAllAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to load appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	return converter.AppointmentToResponse(appointment), nil
}

// CreateAppointment books a slot. The overlap check and the insert run
// under the doctor/date lock so concurrent requests for the same day
// serialize; the store-level exclusion constraint catches writers in
// other processes and is reported as the same conflict.
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	date, err := time.Parse("2006-01-02", req.AppointmentDate)
	if err != nil {
		return nil, ErrInvalidAppointmentDate
	}
	day := normalizeDate(date)

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
	startTime := formatClock(start)
	endTime := formatClock(end)

	// Validate references before taking the lock
	patient, err := u.patientProfileRepo.FindByUserID(u.db.WithContext(ctx), req.PatientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", req.PatientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	doctor, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	unlock := u.slotLocks.Lock(req.DoctorID, day)
	defer unlock()

	existing, err := u.appointmentRepo.FindByDoctorAndDate(
		u.db.WithContext(ctx), req.DoctorID, day, entity.AppointmentStatusCancelled)
	if err != nil {
		u.log.Warnf("Failed to load appointments for overlap check: %+v", err)
		return nil, err
	}
	if hasConflict(existing, startTime, endTime) {
		return nil, ErrSlotUnavailable
	}

	appointment := &entity.Appointment{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: day,
		StartTime:       startTime,
		EndTime:         endTime,
		Status:          entity.AppointmentStatusScheduled,
		Notes:           req.Notes,
		IsFollowUp:      req.IsFollowUp,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		if isExclusionError(err, "appointments_no_overlap") {
			return nil, ErrSlotUnavailable
		}
		// References checked above can still vanish before the insert
		if isForeignKeyError(err, "patient") {
			return nil, ErrPatientNotFound
		}
		if isForeignKeyError(err, "doctor") {
			return nil, ErrDoctorNotFound
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	actorID := actorFromContext(ctx)
	if err := u.auditService.LogCreate(tx, actorID, entity.AuditActionAppointmentCreate, "appointment", appointment.ID.String(), converter.AppointmentToResponse(appointment)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		if isExclusionError(err, "appointments_no_overlap") {
			return nil, ErrSlotUnavailable
		}
		u.log.Warnf("Failed to commit appointment: %+v", err)
		return nil, err
	}

	// Reload with patient/doctor names for the response
	created, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointment.ID)
	if err != nil || created == nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", appointment.ID, err)
		return converter.AppointmentToResponse(appointment), nil
	}

	u.log.Infof("Appointment created: id=%s, doctor=%s, date=%s, slot=%s-%s",
		appointment.ID, req.DoctorID, day.Format("2006-01-02"), startTime, endTime)
	return converter.AppointmentToResponse(created), nil
}

// CancelAppointment flips status to Cancelled. Cancel-and-recreate is
// the only reschedule path; the freed interval becomes bookable again.
func (u *appointmentUsecase) CancelAppointment(ctx context.Context, id uuid.UUID) error {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}
	if appointment.IsCancelled() {
		return ErrAppointmentCancelled
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.appointmentRepo.CancelScheduled(tx, id)
	if err != nil {
		u.log.Warnf("Failed to cancel appointment %s: %+v", id, err)
		return err
	}
	if affected == 0 {
		// Lost a cancel race
		return ErrAppointmentCancelled
	}

	actorID := actorFromContext(ctx)
	oldValue := converter.AppointmentToResponse(appointment)
	appointment.Cancel()
	if err := u.auditService.LogUpdate(tx, actorID, entity.AuditActionAppointmentCancel, "appointment", id.String(), oldValue, converter.AppointmentToResponse(appointment)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit cancel: %+v", err)
		return err
	}

	u.log.Infof("Appointment cancelled: id=%s", id)
	return nil
}

func (u *appointmentUsecase) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.appointmentRepo.Delete(tx, id)
	if err != nil {
		u.log.Warnf("Failed to delete appointment %s: %+v", id, err)
		return err
	}
	if affected == 0 {
		return ErrAppointmentNotFound
	}

	actorID := actorFromContext(ctx)
	if err := u.auditService.LogDelete(tx, actorID, entity.AuditActionAppointmentDelete, "appointment", id.String(), converter.AppointmentToResponse(appointment)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit delete: %+v", err)
		return err
	}

	u.log.Infof("Appointment deleted: id=%s", id)
	return nil
}

// actorFromContext resolves the authenticated user for audit entries,
// nil when the call is unauthenticated (e.g. internal jobs).
func actorFromContext(ctx context.Context) *uuid.UUID {
	if userID, ok := middleware.GetUserIDFromContext(ctx); ok {
		return &userID
	}
	return nil
}
