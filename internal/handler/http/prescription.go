package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CoderAK123/smart-clinic-management/internal/service"
	"github.com/CoderAK123/smart-clinic-management/pkg/httputil"
	"github.com/CoderAK123/smart-clinic-management/pkg/validator"
)

// PrescriptionHandler handles HTTP requests for prescription endpoints.
type PrescriptionHandler struct {
	service *service.PrescriptionService
	logger  *slog.Logger
}

// NewPrescriptionHandler creates a new prescription HTTP handler.
func NewPrescriptionHandler(svc *service.PrescriptionService, logger *slog.Logger) *PrescriptionHandler {
	return &PrescriptionHandler{service: svc, logger: logger}
}

// IssuePrescriptionRequest is the request body for issuing a prescription.
type IssuePrescriptionRequest struct {
	AppointmentID string `json:"appointment_id" validate:"required,uuid"`
	PatientName   string `json:"patient_name" validate:"required,min=2,max=100"`
	Medication    string `json:"medication" validate:"required,min=1,max=500"`
	DoctorNotes   string `json:"doctor_notes" validate:"max=2000"`
}

// Issue handles POST /api/v1/prescriptions.
func (h *PrescriptionHandler) Issue(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req IssuePrescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	prescription, err := h.service.Issue(r.Context(), service.IssuePrescriptionInput{
		AppointmentID: req.AppointmentID,
		PatientName:   req.PatientName,
		Medication:    req.Medication,
		DoctorNotes:   req.DoctorNotes,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: prescription})
}

// GetByAppointment handles GET /api/v1/prescriptions/appointment/{appointmentId}.
func (h *PrescriptionHandler) GetByAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "appointmentId"))
	if !ok {
		return
	}

	prescription, err := h.service.GetByAppointment(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: prescription})
}
