package usecase

import (
	"context"
	"testing"

	"hospital-intake-api/internal/delivery/dto"
	"hospital-intake-api/internal/domain/entity"
	"hospital-intake-api/internal/repository"
	"hospital-intake-api/internal/service"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newPatientUsecase(t *testing.T) (PatientUsecase, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	auditService := service.NewAuditService(log, repository.NewAuditLogRepository())
	uc := NewPatientUsecase(
		db, log,
		repository.NewUserRepository(),
		repository.NewPatientProfileRepository(),
		repository.NewAppointmentRepository(),
		auditService,
	)
	return uc, db
}

func TestCreatePatientIntake(t *testing.T) {
	uc, db := newPatientUsecase(t)
	ctx := context.Background()

	intake, err := uc.CreatePatient(ctx, &dto.CreatePatientRequest{
		Name:     "Maria Gonzalez Rivera",
		Age:      52,
		Symptoms: "chest pain",
	})
	if err != nil {
		t.Fatalf("failed to register patient: %v", err)
	}

	if intake.Patient.Name != "Maria Gonzalez Rivera" {
		t.Errorf("name = %q", intake.Patient.Name)
	}
	if intake.Patient.Age != 52 {
		t.Errorf("age = %d", intake.Patient.Age)
	}
	if intake.Username == "" || intake.TemporaryPassword == "" {
		t.Fatal("intake must return generated credentials")
	}

	// Store keeps only the bcrypt hash of the one-time password
	var user entity.User
	if err := db.Where("username = ?", intake.Username).First(&user).Error; err != nil {
		t.Fatalf("generated user not persisted: %v", err)
	}
	if user.RoleID != entity.RoleIDPatient {
		t.Errorf("role ID = %d, want patient", user.RoleID)
	}
	if user.Password == intake.TemporaryPassword {
		t.Error("password stored in clear text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(intake.TemporaryPassword)); err != nil {
		t.Errorf("stored hash does not match the issued password: %v", err)
	}
}

func TestCreatePatientUsernamesDiffer(t *testing.T) {
	uc, _ := newPatientUsecase(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		intake, err := uc.CreatePatient(ctx, &dto.CreatePatientRequest{Name: "John Smith", Age: 40})
		if err != nil {
			t.Fatalf("failed to register patient: %v", err)
		}
		if seen[intake.Username] {
			t.Fatalf("duplicate username issued: %s", intake.Username)
		}
		seen[intake.Username] = true
	}
}

func TestUpdatePatient(t *testing.T) {
	uc, _ := newPatientUsecase(t)
	ctx := context.Background()

	intake, err := uc.CreatePatient(ctx, &dto.CreatePatientRequest{Name: "John Smith", Age: 40})
	if err != nil {
		t.Fatalf("failed to register patient: %v", err)
	}

	age := 41
	updated, err := uc.UpdatePatient(ctx, intake.Patient.ID, &dto.UpdatePatientRequest{
		Age:      &age,
		Symptoms: "migraine",
	})
	if err != nil {
		t.Fatalf("failed to update patient: %v", err)
	}
	if updated.Age != 41 || updated.Symptoms != "migraine" {
		t.Errorf("update not applied: age=%d symptoms=%q", updated.Age, updated.Symptoms)
	}
	// Untouched fields survive
	if updated.Name != "John Smith" {
		t.Errorf("name changed to %q", updated.Name)
	}
}

func TestDeletePatientBlockedByAppointments(t *testing.T) {
	uc, db := newPatientUsecase(t)
	ctx := context.Background()

	intake, err := uc.CreatePatient(ctx, &dto.CreatePatientRequest{Name: "John Smith", Age: 40})
	if err != nil {
		t.Fatalf("failed to register patient: %v", err)
	}

	doctorUser := &entity.User{RoleID: entity.RoleIDDoctor, Username: "drwho", Password: "x", FullName: "Dr. Who", IsActive: true}
	if err := db.Create(doctorUser).Error; err != nil {
		t.Fatalf("failed to create doctor: %v", err)
	}
	if err := db.Create(&entity.DoctorProfile{UserID: doctorUser.ID, Specialty: "Neurology"}).Error; err != nil {
		t.Fatalf("failed to create doctor profile: %v", err)
	}

	appointment := &entity.Appointment{
		PatientID:       intake.Patient.ID,
		DoctorID:        doctorUser.ID,
		AppointmentDate: normalizeDate(mustDate(t, "2026-09-07")),
		StartTime:       "09:00",
		EndTime:         "09:30",
		Status:          entity.AppointmentStatusCancelled,
	}
	if err := db.Create(appointment).Error; err != nil {
		t.Fatalf("failed to create appointment: %v", err)
	}

	// Even a cancelled appointment blocks deletion
	if err := uc.DeletePatient(ctx, intake.Patient.ID); err != ErrPatientHasAppointments {
		t.Errorf("got %v, want ErrPatientHasAppointments", err)
	}

	if err := db.Delete(appointment).Error; err != nil {
		t.Fatalf("failed to remove appointment: %v", err)
	}
	if err := uc.DeletePatient(ctx, intake.Patient.ID); err != nil {
		t.Errorf("delete after history cleared failed: %v", err)
	}

	if _, err := uc.GetPatient(ctx, intake.Patient.ID); err != ErrPatientNotFound {
		t.Errorf("after delete: got %v, want ErrPatientNotFound", err)
	}
}

func TestSearchPatients(t *testing.T) {
	uc, _ := newPatientUsecase(t)
	ctx := context.Background()

	names := []string{"Alice Brown", "Bob Brown", "Carol White"}
	for _, name := range names {
		if _, err := uc.CreatePatient(ctx, &dto.CreatePatientRequest{Name: name, Age: 30}); err != nil {
			t.Fatalf("failed to register %s: %v", name, err)
		}
	}

	// Matching is case-insensitive regardless of the stored casing
	for _, term := range []string{"Brown", "brown", "BROWN"} {
		result, err := uc.SearchPatients(ctx, term)
		if err != nil {
			t.Fatalf("search for %q failed: %v", term, err)
		}
		if result.Total != 2 {
			t.Errorf("search for %q returned %d, want 2", term, result.Total)
		}
	}

	all, err := uc.GetAllPatients(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if all.Total != 3 {
		t.Errorf("list returned %d, want 3", all.Total)
	}
}
