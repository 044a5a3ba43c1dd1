package http

import (
	"net/http"

	"clinic-appointment-service/internal/delivery/http/handler"
	"clinic-appointment-service/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	appointmentHandler *handler.AppointmentHandler
	slotHandler        *handler.SlotHandler
	patientHandler     *handler.PatientHandler
	auditLogHandler    *handler.AuditLogHandler
	healthHandler      *handler.HealthHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
	loggingMiddleware  *middleware.LoggingMiddleware
	rateLimiter        *middleware.RateLimiter
}

func NewRouter(
	appointmentHandler *handler.AppointmentHandler,
	slotHandler *handler.SlotHandler,
	patientHandler *handler.PatientHandler,
	auditLogHandler *handler.AuditLogHandler,
	healthHandler *handler.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	loggingMiddleware *middleware.LoggingMiddleware,
	rateLimiter *middleware.RateLimiter,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		appointmentHandler: appointmentHandler,
		slotHandler:        slotHandler,
		patientHandler:     patientHandler,
		auditLogHandler:    auditLogHandler,
		healthHandler:      healthHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
		loggingMiddleware:  loggingMiddleware,
		rateLimiter:        rateLimiter,
	}
}

func (r *Router) Setup() *mux.Router {
	r.router.Use(middleware.RequestID)
	r.router.Use(r.loggingMiddleware.Handle)
	r.router.Use(r.corsMiddleware.Handle)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthHandler.Liveness).Methods(http.MethodGet)
	api.HandleFunc("/health/ready", r.healthHandler.Readiness).Methods(http.MethodGet)

	// Appointment routes (public, rate limited)
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.rateLimiter.Limit)
	appointments.HandleFunc("", r.appointmentHandler.BookAppointment).Methods(http.MethodPost, http.MethodOptions)
	appointments.HandleFunc("/available-times/{date}", r.appointmentHandler.GetAvailableTimes).Methods(http.MethodGet, http.MethodOptions)

	// Back-office routes (protected)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)

	// Slot management: writes are admin only, reads are open to staff
	admin.Handle("/slots/generate", adminOnly(r.slotHandler.GenerateSlots)).Methods(http.MethodPost)
	admin.Handle("/slots", backOffice(r.slotHandler.ListSlots)).Methods(http.MethodGet)
	admin.Handle("/slots/status/{status}", backOffice(r.slotHandler.ListSlotsByStatus)).Methods(http.MethodGet)
	admin.Handle("/slots/{id}", backOffice(r.slotHandler.GetSlot)).Methods(http.MethodGet)
	admin.Handle("/slots/{id}/status", adminOnly(r.slotHandler.UpdateSlotStatus)).Methods(http.MethodPut)
	admin.Handle("/slots/{id}", adminOnly(r.slotHandler.DeleteSlot)).Methods(http.MethodDelete)

	// Patients
	admin.Handle("/patients", backOffice(r.patientHandler.ListPatients)).Methods(http.MethodGet)
	admin.Handle("/patients/{id}", backOffice(r.patientHandler.GetPatient)).Methods(http.MethodGet)

	// Audit logs (admin)
	admin.Handle("/audit-logs", adminOnly(r.auditLogHandler.GetAllAuditLogs)).Methods(http.MethodGet)
	admin.Handle("/audit-logs/{id}", adminOnly(r.auditLogHandler.GetAuditLog)).Methods(http.MethodGet)

	return r.router
}

func adminOnly(h http.HandlerFunc) http.Handler {
	return middleware.RequireAdmin(h)
}

func backOffice(h http.HandlerFunc) http.Handler {
	return middleware.RequireAdminOrStaff(h)
}
