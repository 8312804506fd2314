package http

import (
	"log/slog"
	"net/http"

	"github.com/CoderAK123/smart-clinic-management/internal/domain"
	"github.com/CoderAK123/smart-clinic-management/internal/service"
	"github.com/CoderAK123/smart-clinic-management/pkg/httputil"
	"github.com/CoderAK123/smart-clinic-management/pkg/middleware"
)

// PatientHandler handles HTTP requests for the patient self-service endpoints.
type PatientHandler struct {
	service *service.PatientService
	logger  *slog.Logger
}

// NewPatientHandler creates a new patient HTTP handler.
func NewPatientHandler(svc *service.PatientService, logger *slog.Logger) *PatientHandler {
	return &PatientHandler{service: svc, logger: logger}
}

// Profile handles GET /api/v1/patients/me.
func (h *PatientHandler) Profile(w http.ResponseWriter, r *http.Request) {
	patient, ok := h.resolvePatient(w, r)
	if !ok {
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: patient})
}

// History handles GET /api/v1/patients/me/appointments. The condition query
// parameter narrows the listing to past (completed) or future (scheduled)
// appointments; doctorName filters by doctor name substring.
func (h *PatientHandler) History(w http.ResponseWriter, r *http.Request) {
	patient, ok := h.resolvePatient(w, r)
	if !ok {
		return
	}

	history, err := h.service.AppointmentHistory(r.Context(), patient.ID, service.HistoryInput{
		Condition:  r.URL.Query().Get("condition"),
		DoctorName: r.URL.Query().Get("doctorName"),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: history})
}

func (h *PatientHandler) resolvePatient(w http.ResponseWriter, r *http.Request) (*domain.Patient, bool) {
	email := middleware.SubjectFromContext(r.Context())
	if email == "" {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
		})
		return nil, false
	}

	p, err := h.service.Profile(r.Context(), email)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return nil, false
	}

	return p, true
}
