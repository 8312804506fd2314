package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CoderAK123/smart-clinic-management/internal/domain"
	"github.com/CoderAK123/smart-clinic-management/internal/service"
	"github.com/CoderAK123/smart-clinic-management/pkg/health"
	"github.com/CoderAK123/smart-clinic-management/pkg/middleware"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	AuthService         *service.AuthService
	DoctorService       *service.DoctorService
	PatientService      *service.PatientService
	AppointmentService  *service.AppointmentService
	PrescriptionService *service.PrescriptionService
	HealthHandler       *health.Handler
	Logger              *slog.Logger
	CORSConfig          middleware.CORSConfig

	// APIPrefix is the mount point for versioned routes, e.g. "/api/v1".
	APIPrefix string
}

// NewRouter creates a chi router with all clinic service routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(deps.CORSConfig))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.PrometheusMetrics("clinic"))
	r.Use(middleware.Tracing("clinic"))
	r.Use(middleware.RequestLogger(deps.Logger))

	// Health check endpoints
	r.Get("/health/live", deps.HealthHandler.LivenessHandler())
	r.Get("/health/ready", deps.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	prefix := deps.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.PatientService, deps.Logger)
	doctorHandler := NewDoctorHandler(deps.DoctorService, deps.Logger)
	patientHandler := NewPatientHandler(deps.PatientService, deps.Logger)
	appointmentHandler := NewAppointmentHandler(deps.AppointmentService, deps.PatientService, deps.DoctorService, deps.Logger)
	prescriptionHandler := NewPrescriptionHandler(deps.PrescriptionService, deps.Logger)

	requireAdmin := middleware.RequireRole(deps.AuthService.Authorize, domain.RoleAdmin)
	requireDoctor := middleware.RequireRole(deps.AuthService.Authorize, domain.RoleDoctor)
	requirePatient := middleware.RequireRole(deps.AuthService.Authorize, domain.RolePatient)
	requireAny := middleware.RequireRole(deps.AuthService.AuthorizeAny, "")

	// Auth endpoints (public)
	r.Route(prefix+"/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/admin/login", authHandler.AdminLogin)
		r.Post("/doctor/login", authHandler.DoctorLogin)
		r.Post("/patient/login", authHandler.PatientLogin)
		r.Post("/patient/register", authHandler.RegisterPatient)
	})

	// Doctor catalog and management
	r.Route(prefix+"/doctors", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public listing and filter
		r.With(middleware.CacheControl(60)).Get("/", doctorHandler.List)
		r.Get("/filter", doctorHandler.Filter)

		// Any authenticated account
		r.With(requireAny).Get("/{id}", doctorHandler.Get)
		r.With(requireAny).Get("/{id}/availability", doctorHandler.Availability)

		// Admin management
		r.With(requireAdmin).Post("/", doctorHandler.Create)
		r.With(requireAdmin).Put("/{id}", doctorHandler.Update)
		r.With(requireAdmin).Delete("/{id}", doctorHandler.Delete)
	})

	// Appointments
	r.Route(prefix+"/appointments", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Patient booking flow
		r.With(requirePatient).Post("/", appointmentHandler.Book)
		r.With(requirePatient).Get("/check", appointmentHandler.CheckSlot)
		r.With(requirePatient).Put("/{id}", appointmentHandler.Update)
		r.With(requirePatient).Delete("/{id}", appointmentHandler.Cancel)

		// Doctor schedule
		r.With(requireDoctor).Get("/", appointmentHandler.ListForDoctor)
		r.With(requireDoctor).Patch("/{id}/status", appointmentHandler.UpdateStatus)
	})

	// Patient self-service
	r.Route(prefix+"/patients", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(requirePatient)

		r.Get("/me", patientHandler.Profile)
		r.Get("/me/appointments", patientHandler.History)
	})

	// Prescriptions
	r.Route(prefix+"/prescriptions", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.With(requireDoctor).Post("/", prescriptionHandler.Issue)
		r.With(requireAny).Get("/appointment/{appointmentId}", prescriptionHandler.GetByAppointment)
	})

	return r
}
