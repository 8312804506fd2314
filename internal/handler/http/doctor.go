package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CoderAK123/smart-clinic-management/internal/service"
	"github.com/CoderAK123/smart-clinic-management/pkg/httputil"
	"github.com/CoderAK123/smart-clinic-management/pkg/pagination"
	"github.com/CoderAK123/smart-clinic-management/pkg/validator"
)

// dateLayout is the query string format for calendar dates.
const dateLayout = "2006-01-02"

// DoctorHandler handles HTTP requests for doctor endpoints.
type DoctorHandler struct {
	service *service.DoctorService
	logger  *slog.Logger
}

// NewDoctorHandler creates a new doctor HTTP handler.
func NewDoctorHandler(svc *service.DoctorService, logger *slog.Logger) *DoctorHandler {
	return &DoctorHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CreateDoctorRequest is the JSON request body for registering a doctor.
type CreateDoctorRequest struct {
	Name           string   `json:"name" validate:"required,min=1,max=100"`
	Specialty      string   `json:"specialty" validate:"required"`
	Email          string   `json:"email" validate:"required,email"`
	Phone          string   `json:"phone"`
	Password       string   `json:"password" validate:"required,min=8"`
	AvailableTimes []string `json:"available_times"`
}

// UpdateDoctorRequest is the JSON request body for updating a doctor.
type UpdateDoctorRequest struct {
	Name           *string   `json:"name" validate:"omitempty,min=1,max=100"`
	Specialty      *string   `json:"specialty"`
	Phone          *string   `json:"phone"`
	AvailableTimes *[]string `json:"available_times"`
}

// AvailabilityResponse lists a doctor's free slots on a date.
type AvailabilityResponse struct {
	DoctorID       string   `json:"doctor_id"`
	Date           string   `json:"date"`
	AvailableSlots []string `json:"available_slots"`
}

// --- Handlers ---

// List handles GET /api/v1/doctors
func (h *DoctorHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	doctors, total, err := h.service.List(r.Context(), params.PerPage, params.Offset)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(doctors, int(total), params.Page, params.PerPage))
}

// Filter handles GET /api/v1/doctors/filter
func (h *DoctorHandler) Filter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	doctors, err := h.service.Filter(r.Context(), service.FilterDoctorsInput{
		Name:      q.Get("name"),
		Specialty: q.Get("specialty"),
		TimeOfDay: q.Get("timeOfDay"),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: doctors})
}

// Get handles GET /api/v1/doctors/{id}
func (h *DoctorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	doctor, err := h.service.Get(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: doctor})
}

// Availability handles GET /api/v1/doctors/{id}/availability
func (h *DoctorHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	dateParam := r.URL.Query().Get("date")
	date := time.Now().UTC()
	if dateParam != "" {
		parsed, err := time.Parse(dateLayout, dateParam)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "date must use the YYYY-MM-DD format"},
			})
			return
		}
		date = parsed
	}

	slots, err := h.service.Availability(r.Context(), id.String(), date)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: AvailabilityResponse{
		DoctorID:       id.String(),
		Date:           date.Format(dateLayout),
		AvailableSlots: slots,
	}})
}

// Create handles POST /api/v1/doctors
func (h *DoctorHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req CreateDoctorRequest
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

	doctor, err := h.service.Register(r.Context(), service.RegisterDoctorInput{
		Name:           req.Name,
		Specialty:      req.Specialty,
		Email:          req.Email,
		Phone:          req.Phone,
		Password:       req.Password,
		AvailableTimes: req.AvailableTimes,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: doctor})
}

// Update handles PUT /api/v1/doctors/{id}
func (h *DoctorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req UpdateDoctorRequest
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

	doctor, err := h.service.Update(r.Context(), id.String(), service.UpdateDoctorInput{
		Name:           req.Name,
		Specialty:      req.Specialty,
		Phone:          req.Phone,
		AvailableTimes: req.AvailableTimes,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: doctor})
}

// Delete handles DELETE /api/v1/doctors/{id}
func (h *DoctorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}
