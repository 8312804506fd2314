package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CoderAK123/smart-clinic-management/internal/service"
	"github.com/CoderAK123/smart-clinic-management/pkg/httputil"
	"github.com/CoderAK123/smart-clinic-management/pkg/middleware"
	"github.com/CoderAK123/smart-clinic-management/pkg/validator"
)

// AppointmentHandler handles HTTP requests for appointment endpoints.
type AppointmentHandler struct {
	service        *service.AppointmentService
	patientService *service.PatientService
	doctorService  *service.DoctorService
	logger         *slog.Logger
}

// NewAppointmentHandler creates a new appointment HTTP handler.
func NewAppointmentHandler(
	svc *service.AppointmentService,
	patientService *service.PatientService,
	doctorService *service.DoctorService,
	logger *slog.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		service:        svc,
		patientService: patientService,
		doctorService:  doctorService,
		logger:         logger,
	}
}

// --- Request DTOs ---

// BookAppointmentRequest is the JSON request body for booking an appointment.
type BookAppointmentRequest struct {
	DoctorID        string    `json:"doctor_id" validate:"required,uuid"`
	AppointmentTime time.Time `json:"appointment_time" validate:"required"`
}

// UpdateAppointmentRequest is the JSON request body for rescheduling an
// appointment. Nil fields are left unchanged.
type UpdateAppointmentRequest struct {
	DoctorID        *string    `json:"doctor_id" validate:"omitempty,uuid"`
	AppointmentTime *time.Time `json:"appointment_time"`
}

// UpdateStatusRequest is the JSON request body for changing an appointment's status.
type UpdateStatusRequest struct {
	Status int `json:"status" validate:"oneof=0 1"`
}

// SlotCheckResponse is the advisory verdict for a requested slot: 1 when the
// time is declared by the doctor, 0 when it is not, -1 when the doctor is
// unknown.
type SlotCheckResponse struct {
	DoctorID string `json:"doctor_id"`
	Result   int    `json:"result"`
}

// --- Handlers ---

// Book handles POST /api/v1/appointments
func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request) {
	patient, ok := h.resolvePatient(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req BookAppointmentRequest
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

	appointment, err := h.service.Book(r.Context(), service.BookAppointmentInput{
		DoctorID:        req.DoctorID,
		PatientID:       patient.ID,
		AppointmentTime: req.AppointmentTime,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: appointment})
}

// CheckSlot handles GET /api/v1/appointments/check
func (h *AppointmentHandler) CheckSlot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	doctorID, ok := httputil.ParseUUID(w, q.Get("doctorId"))
	if !ok {
		return
	}

	at, err := time.Parse(time.RFC3339, q.Get("time"))
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "time must use the RFC 3339 format"},
		})
		return
	}

	result, err := h.service.ValidateSlot(r.Context(), doctorID.String(), at)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: SlotCheckResponse{
		DoctorID: doctorID.String(),
		Result:   result,
	}})
}

// Update handles PUT /api/v1/appointments/{id}
func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	patient, ok := h.resolvePatient(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req UpdateAppointmentRequest
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

	appointment, err := h.service.Update(r.Context(), id.String(), patient.ID, service.UpdateAppointmentInput{
		DoctorID:        req.DoctorID,
		AppointmentTime: req.AppointmentTime,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: appointment})
}

// Cancel handles DELETE /api/v1/appointments/{id}
func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	patient, ok := h.resolvePatient(w, r)
	if !ok {
		return
	}

	if err := h.service.Cancel(r.Context(), id.String(), patient.ID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "cancelled"}})
}

// ListForDoctor handles GET /api/v1/appointments
func (h *AppointmentHandler) ListForDoctor(w http.ResponseWriter, r *http.Request) {
	doctor, ok := h.resolveDoctor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	date := time.Now().UTC()
	if dateParam := q.Get("date"); dateParam != "" {
		parsed, err := time.Parse(dateLayout, dateParam)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "date must use the YYYY-MM-DD format"},
			})
			return
		}
		date = parsed
	}

	details, err := h.service.ListForDoctor(r.Context(), doctor.ID, date, q.Get("patientName"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: details})
}

// UpdateStatus handles PATCH /api/v1/appointments/{id}/status
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	doctor, ok := h.resolveDoctor(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req UpdateStatusRequest
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

	if err := h.service.ChangeStatus(r.Context(), id.String(), doctor.ID, req.Status); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"id": id.String(), "status": req.Status}})
}

// --- Subject resolution helpers ---

// resolvePatient maps the token subject to a patient account.
func (h *AppointmentHandler) resolvePatient(w http.ResponseWriter, r *http.Request) (patient *patientIdentity, ok bool) {
	email := middleware.SubjectFromContext(r.Context())
	if email == "" {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
		})
		return nil, false
	}

	p, err := h.patientService.Profile(r.Context(), email)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return nil, false
	}

	return &patientIdentity{ID: p.ID, Name: p.Name}, true
}

// resolveDoctor maps the token subject to a doctor account.
func (h *AppointmentHandler) resolveDoctor(w http.ResponseWriter, r *http.Request) (doctor *doctorIdentity, ok bool) {
	email := middleware.SubjectFromContext(r.Context())
	if email == "" {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
		})
		return nil, false
	}

	d, err := h.doctorService.ProfileByEmail(r.Context(), email)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return nil, false
	}

	return &doctorIdentity{ID: d.ID, Name: d.Name}, true
}

type patientIdentity struct {
	ID   string
	Name string
}

type doctorIdentity struct {
	ID   string
	Name string
}
