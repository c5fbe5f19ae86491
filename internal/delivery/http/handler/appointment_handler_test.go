package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hospital-intake-api/internal/delivery/dto"
	"hospital-intake-api/internal/usecase"
	"hospital-intake-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// stubAppointmentUsecase returns canned errors so the handler's status
// mapping can be exercised without a database.
type stubAppointmentUsecase struct {
	createErr error
	cancelErr error
}

func (s *stubAppointmentUsecase) IsSlotAvailable(ctx context.Context, doctorID uuid.UUID, date time.Time, startTime, endTime string) (bool, error) {
	return true, nil
}

func (s *stubAppointmentUsecase) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) (*dto.AvailabilityResponse, error) {
	return &dto.AvailabilityResponse{DoctorID: doctorID, Date: date.Format("2006-01-02")}, nil
}

func (s *stubAppointmentUsecase) GetTodaysAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	return &dto.AppointmentListResponse{}, nil
}

func (s *stubAppointmentUsecase) GetAllAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	return &dto.AppointmentListResponse{}, nil
}

func (s *stubAppointmentUsecase) GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	return nil, usecase.ErrAppointmentNotFound
}

func (s *stubAppointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &dto.AppointmentResponse{ID: uuid.New()}, nil
}

func (s *stubAppointmentUsecase) CancelAppointment(ctx context.Context, id uuid.UUID) error {
	return s.cancelErr
}

func (s *stubAppointmentUsecase) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	return nil
}

func validCreateBody() string {
	return `{
		"patient_id": "` + uuid.New().String() + `",
		"doctor_id": "` + uuid.New().String() + `",
		"appointment_date": "2026-09-07",
		"start_time": "09:00",
		"end_time": "09:30"
	}`
}

func TestCreateStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"created", nil, http.StatusCreated},
		{"slot conflict", usecase.ErrSlotUnavailable, http.StatusConflict},
		{"unknown patient", usecase.ErrPatientNotFound, http.StatusNotFound},
		{"unknown doctor", usecase.ErrDoctorNotFound, http.StatusNotFound},
		{"bad range", usecase.ErrInvalidTimeRange, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAppointmentHandler(&stubAppointmentUsecase{createErr: tt.err}, validator.NewValidator())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(validCreateBody()))
			rec := httptest.NewRecorder()

			h.Create(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestCreateRejectsMalformedBody(t *testing.T) {
	h := NewAppointmentHandler(&stubAppointmentUsecase{}, validator.NewValidator())

	cases := []string{
		"{not json",
		`{"patient_id": "` + uuid.New().String() + `", "doctor_id": "` + uuid.New().String() + `", "appointment_date": "bogus", "start_time": "09:00", "end_time": "09:30"}`,
		`{"patient_id": "` + uuid.New().String() + `", "doctor_id": "` + uuid.New().String() + `", "appointment_date": "2026-09-07", "start_time": "25:61", "end_time": "09:30"}`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.Create(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestCancelStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"cancelled", nil, http.StatusOK},
		{"not found", usecase.ErrAppointmentNotFound, http.StatusNotFound},
		{"already cancelled", usecase.ErrAppointmentCancelled, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAppointmentHandler(&stubAppointmentUsecase{cancelErr: tt.err}, validator.NewValidator())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/"+uuid.New().String()+"/cancel", nil)
			req = mux.SetURLVars(req, map[string]string{"id": uuid.New().String()})
			rec := httptest.NewRecorder()

			h.Cancel(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
