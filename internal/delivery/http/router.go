package http

import (
	"net/http"

	"hospital-intake-api/internal/delivery/http/handler"
	"hospital-intake-api/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	authHandler        *handler.AuthHandler
	appointmentHandler *handler.AppointmentHandler
	patientHandler     *handler.PatientHandler
	doctorHandler      *handler.DoctorHandler
	userHandler        *handler.UserHandler
	auditLogHandler    *handler.AuditLogHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	appointmentHandler *handler.AppointmentHandler,
	patientHandler *handler.PatientHandler,
	doctorHandler *handler.DoctorHandler,
	userHandler *handler.UserHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		authHandler:        authHandler,
		appointmentHandler: appointmentHandler,
		patientHandler:     patientHandler,
		doctorHandler:      doctorHandler,
		userHandler:        userHandler,
		auditLogHandler:    auditLogHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Appointments: any authenticated staff can read and book; hard
	// delete is a front-desk correction tool.
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.HandleFunc("", r.appointmentHandler.GetAll).Methods(http.MethodGet)
	appointments.HandleFunc("", r.appointmentHandler.Create).Methods(http.MethodPost)
	appointments.HandleFunc("/today", r.appointmentHandler.GetToday).Methods(http.MethodGet)
	appointments.HandleFunc("/availability", r.appointmentHandler.GetAvailability).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}", r.appointmentHandler.GetByID).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}/cancel", r.appointmentHandler.Cancel).Methods(http.MethodPost)

	appointmentAdmin := api.PathPrefix("/appointments").Subrouter()
	appointmentAdmin.Use(r.authMiddleware.Authenticate)
	appointmentAdmin.Use(middleware.RequireFrontDesk)
	appointmentAdmin.HandleFunc("/{id}", r.appointmentHandler.Delete).Methods(http.MethodDelete)

	// Patient intake (front desk)
	patients := api.PathPrefix("/patients").Subrouter()
	patients.Use(r.authMiddleware.Authenticate)
	patients.Use(middleware.RequireFrontDesk)
	patients.HandleFunc("", r.patientHandler.GetAll).Methods(http.MethodGet)
	patients.HandleFunc("", r.patientHandler.Create).Methods(http.MethodPost)
	patients.HandleFunc("/{id}", r.patientHandler.GetByID).Methods(http.MethodGet)
	patients.HandleFunc("/{id}", r.patientHandler.Update).Methods(http.MethodPut)

	patientAdmin := api.PathPrefix("/patients").Subrouter()
	patientAdmin.Use(r.authMiddleware.Authenticate)
	patientAdmin.Use(middleware.RequireAdmin)
	patientAdmin.HandleFunc("/{id}", r.patientHandler.Delete).Methods(http.MethodDelete)

	// Doctor directory (front desk reads, admin manages)
	doctors := api.PathPrefix("/doctors").Subrouter()
	doctors.Use(r.authMiddleware.Authenticate)
	doctors.Use(middleware.RequireFrontDesk)
	doctors.HandleFunc("", r.doctorHandler.GetAll).Methods(http.MethodGet)
	doctors.HandleFunc("/{id}", r.doctorHandler.GetByID).Methods(http.MethodGet)
	doctors.HandleFunc("/{id}/availability", r.doctorHandler.ListAvailability).Methods(http.MethodGet)

	doctorAdmin := api.PathPrefix("/doctors").Subrouter()
	doctorAdmin.Use(r.authMiddleware.Authenticate)
	doctorAdmin.Use(middleware.RequireAdmin)
	doctorAdmin.HandleFunc("", r.doctorHandler.Create).Methods(http.MethodPost)
	doctorAdmin.HandleFunc("/{id}", r.doctorHandler.Update).Methods(http.MethodPut)
	doctorAdmin.HandleFunc("/{id}", r.doctorHandler.Deactivate).Methods(http.MethodDelete)
	doctorAdmin.HandleFunc("/{id}/availability", r.doctorHandler.SetAvailability).Methods(http.MethodPost)
	doctorAdmin.HandleFunc("/{id}/availability/{ruleId}", r.doctorHandler.DeleteAvailability).Methods(http.MethodDelete)

	// User administration (admin only)
	users := api.PathPrefix("/users").Subrouter()
	users.Use(r.authMiddleware.Authenticate)
	users.Use(middleware.RequireAdmin)
	users.HandleFunc("", r.userHandler.GetAll).Methods(http.MethodGet)
	users.HandleFunc("", r.userHandler.Create).Methods(http.MethodPost)
	users.HandleFunc("/{id}", r.userHandler.GetByID).Methods(http.MethodGet)
	users.HandleFunc("/{id}", r.userHandler.Update).Methods(http.MethodPut)
	users.HandleFunc("/{id}", r.userHandler.Delete).Methods(http.MethodDelete)

	// Audit trail (admin only)
	auditLogs := api.PathPrefix("/audit-logs").Subrouter()
	auditLogs.Use(r.authMiddleware.Authenticate)
	auditLogs.Use(middleware.RequireAdmin)
	auditLogs.HandleFunc("", r.auditLogHandler.GetAll).Methods(http.MethodGet)
	auditLogs.HandleFunc("/{id}", r.auditLogHandler.GetByID).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
