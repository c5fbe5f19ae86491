package usecase

import (
	"context"
	"testing"
	"time"

	"hospital-intake-api/internal/delivery/dto"
	"hospital-intake-api/internal/domain/entity"
	"hospital-intake-api/internal/repository"
	"hospital-intake-api/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func newDoctorUsecase(t *testing.T) (DoctorUsecase, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	auditService := service.NewAuditService(log, repository.NewAuditLogRepository())
	uc := NewDoctorUsecase(
		db, log,
		repository.NewUserRepository(),
		repository.NewDoctorProfileRepository(),
		repository.NewDoctorAvailabilityRepository(),
		repository.NewAppointmentRepository(),
		auditService,
	)
	return uc, db
}

func createTestDoctor(t *testing.T, uc DoctorUsecase, username, name string) *dto.DoctorResponse {
	t.Helper()
	doctor, err := uc.CreateDoctor(context.Background(), &dto.CreateDoctorRequest{
		Username:  username,
		Password:  "secret123",
		Name:      name,
		Specialty: "Cardiology",
	})
	if err != nil {
		t.Fatalf("failed to create doctor %s: %v", username, err)
	}
	return doctor
}

func TestCreateDoctor(t *testing.T) {
	uc, _ := newDoctorUsecase(t)
	ctx := context.Background()

	doctor := createTestDoctor(t, uc, "drsmith", "Dr. Smith")

	if doctor.Name != "Dr. Smith" || doctor.Specialty != "Cardiology" {
		t.Errorf("doctor = %+v", doctor)
	}
	if !doctor.IsActive {
		t.Error("new doctor should be active")
	}

	got, err := uc.GetDoctor(ctx, doctor.ID)
	if err != nil {
		t.Fatalf("failed to fetch doctor: %v", err)
	}
	if got.Username != "drsmith" {
		t.Errorf("username = %q", got.Username)
	}
}

func TestCreateDoctorDuplicateEmail(t *testing.T) {
	uc, _ := newDoctorUsecase(t)
	ctx := context.Background()

	_, err := uc.CreateDoctor(ctx, &dto.CreateDoctorRequest{
		Username: "drsmith", Password: "secret123", Name: "Dr. Smith",
		Specialty: "Cardiology", Email: "smith@clinic.test",
	})
	if err != nil {
		t.Fatalf("failed to create doctor: %v", err)
	}

	_, err = uc.CreateDoctor(ctx, &dto.CreateDoctorRequest{
		Username: "drsmith2", Password: "secret123", Name: "Dr. Smithson",
		Specialty: "Cardiology", Email: "smith@clinic.test",
	})
	if err != ErrEmailAlreadyExists {
		t.Errorf("got %v, want ErrEmailAlreadyExists", err)
	}
}

func TestDeactivateDoctorGuard(t *testing.T) {
	uc, db := newDoctorUsecase(t)
	ctx := context.Background()

	doctor := createTestDoctor(t, uc, "drsmith", "Dr. Smith")

	patientUser := &entity.User{RoleID: entity.RoleIDPatient, Username: "pat1", Password: "x", FullName: "Pat One", IsActive: true}
	if err := db.Create(patientUser).Error; err != nil {
		t.Fatalf("failed to create patient: %v", err)
	}
	if err := db.Create(&entity.PatientProfile{UserID: patientUser.ID}).Error; err != nil {
		t.Fatalf("failed to create patient profile: %v", err)
	}

	upcoming := &entity.Appointment{
		PatientID:       patientUser.ID,
		DoctorID:        doctor.ID,
		AppointmentDate: normalizeDate(time.Now().AddDate(0, 0, 3)),
		StartTime:       "09:00",
		EndTime:         "09:30",
		Status:          entity.AppointmentStatusScheduled,
	}
	if err := db.Create(upcoming).Error; err != nil {
		t.Fatalf("failed to create appointment: %v", err)
	}

	if err := uc.DeactivateDoctor(ctx, doctor.ID); err != ErrDoctorHasAppointments {
		t.Errorf("got %v, want ErrDoctorHasAppointments", err)
	}

	// A cancelled future appointment does not block
	if err := db.Model(upcoming).Update("status", entity.AppointmentStatusCancelled).Error; err != nil {
		t.Fatalf("failed to cancel appointment: %v", err)
	}
	if err := uc.DeactivateDoctor(ctx, doctor.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	// Deactivated doctors drop out of the active listing
	list, err := uc.GetAllDoctors(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if list.Total != 0 {
		t.Errorf("active list has %d doctors, want 0", list.Total)
	}
}

func TestDeactivateDoctorNotFound(t *testing.T) {
	uc, _ := newDoctorUsecase(t)

	if err := uc.DeactivateDoctor(context.Background(), uuid.New()); err != ErrDoctorNotFound {
		t.Errorf("got %v, want ErrDoctorNotFound", err)
	}
}

func TestDoctorAvailabilityRules(t *testing.T) {
	uc, _ := newDoctorUsecase(t)
	ctx := context.Background()

	doctor := createTestDoctor(t, uc, "drsmith", "Dr. Smith")

	rule, err := uc.SetAvailability(ctx, doctor.ID, &dto.SetAvailabilityRequest{
		DayOfWeek: 1,
		StartTime: "08:00",
		EndTime:   "12:00",
	})
	if err != nil {
		t.Fatalf("failed to set availability: %v", err)
	}
	if rule.DayOfWeek != 1 || rule.StartTime != "08:00" || rule.EndTime != "12:00" {
		t.Errorf("rule = %+v", rule)
	}
	if !rule.IsActive {
		t.Error("rule should default to active")
	}

	_, err = uc.SetAvailability(ctx, doctor.ID, &dto.SetAvailabilityRequest{
		DayOfWeek: 1, StartTime: "12:00", EndTime: "08:00",
	})
	if err != ErrInvalidTimeRange {
		t.Errorf("inverted rule: got %v, want ErrInvalidTimeRange", err)
	}

	list, err := uc.ListAvailability(ctx, doctor.ID)
	if err != nil {
		t.Fatalf("failed to list rules: %v", err)
	}
	if list.Total != 1 {
		t.Fatalf("rule count = %d, want 1", list.Total)
	}

	if err := uc.DeleteAvailability(ctx, doctor.ID, rule.ID); err != nil {
		t.Fatalf("failed to delete rule: %v", err)
	}

	// Deleting a rule through the wrong doctor is a not-found
	other := createTestDoctor(t, uc, "drother", "Dr. Other")
	rule2, err := uc.SetAvailability(ctx, doctor.ID, &dto.SetAvailabilityRequest{
		DayOfWeek: 2, StartTime: "08:00", EndTime: "12:00",
	})
	if err != nil {
		t.Fatalf("failed to set availability: %v", err)
	}
	if err := uc.DeleteAvailability(ctx, other.ID, rule2.ID); err != ErrAvailabilityNotFound {
		t.Errorf("cross-doctor delete: got %v, want ErrAvailabilityNotFound", err)
	}
}

func TestUpdateDoctor(t *testing.T) {
	uc, _ := newDoctorUsecase(t)
	ctx := context.Background()

	doctor := createTestDoctor(t, uc, "drsmith", "Dr. Smith")

	updated, err := uc.UpdateDoctor(ctx, doctor.ID, &dto.UpdateDoctorRequest{
		Specialty:   "Neurology",
		PhoneNumber: "555-0100",
	})
	if err != nil {
		t.Fatalf("failed to update doctor: %v", err)
	}
	if updated.Specialty != "Neurology" || updated.PhoneNumber != "555-0100" {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.Name != "Dr. Smith" {
		t.Errorf("name changed to %q", updated.Name)
	}
}
