package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/CoderAK123/smart-clinic-management/internal/cache"
	"github.com/CoderAK123/smart-clinic-management/internal/domain"
	"github.com/CoderAK123/smart-clinic-management/internal/event"
	"github.com/CoderAK123/smart-clinic-management/internal/repository"
	apperrors "github.com/CoderAK123/smart-clinic-management/pkg/errors"
)

// Slot validation results returned by ValidateSlot.
const (
	SlotUnknownDoctor = -1
	SlotNotDeclared   = 0
	SlotDeclared      = 1
)

// conflictWindow is how close, on either side, another appointment with the
// same doctor may start before a reschedule is rejected. A start exactly one
// hour away is allowed.
const conflictWindow = 59 * time.Minute

// AppointmentService implements the business logic for booking,
// rescheduling, and cancelling appointments.
type AppointmentService struct {
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorRepository
	availability    *cache.AvailabilityCache
	producer        *event.Producer
	logger          *slog.Logger
}

// NewAppointmentService creates a new appointment service.
func NewAppointmentService(
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	availability *cache.AvailabilityCache,
	producer *event.Producer,
	logger *slog.Logger,
) *AppointmentService {
	return &AppointmentService{
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		availability:    availability,
		producer:        producer,
		logger:          logger,
	}
}

// BookAppointmentInput holds the parameters for booking an appointment.
type BookAppointmentInput struct {
	DoctorID        string
	PatientID       string
	AppointmentTime time.Time
}

// UpdateAppointmentInput holds the parameters for rescheduling an
// appointment. Nil fields are left unchanged.
type UpdateAppointmentInput struct {
	DoctorID        *string
	AppointmentTime *time.Time
}

// Book creates a new scheduled appointment. The booking itself is
// unconditional: callers are expected to consult Availability or
// ValidateSlot first, and overlap checks apply only on reschedule.
func (s *AppointmentService) Book(ctx context.Context, input BookAppointmentInput) (*domain.Appointment, error) {
	if input.DoctorID == "" {
		return nil, apperrors.InvalidInput("doctor id is required")
	}
	if input.AppointmentTime.IsZero() {
		return nil, apperrors.InvalidInput("appointment time is required")
	}

	now := time.Now().UTC()
	appointment := &domain.Appointment{
		ID:              uuid.New().String(),
		DoctorID:        input.DoctorID,
		PatientID:       input.PatientID,
		AppointmentTime: input.AppointmentTime.UTC(),
		Status:          domain.StatusScheduled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.appointmentRepo.Create(ctx, appointment); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.invalidateAvailability(ctx, appointment.DoctorID, appointment.AppointmentTime)

	// Publish booking event (non-blocking on failure).
	if err := s.producer.PublishAppointmentBooked(ctx, appointment); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish appointment.booked event",
			slog.String("appointment_id", appointment.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "appointment booked",
		slog.String("appointment_id", appointment.ID),
		slog.String("doctor_id", appointment.DoctorID),
		slog.Time("appointment_time", appointment.AppointmentTime),
	)

	return appointment, nil
}

// ValidateSlot reports whether the requested time matches one of the
// doctor's declared slots. It returns SlotUnknownDoctor when the doctor
// does not exist, SlotDeclared when the time of day is declared, and
// SlotNotDeclared otherwise. The verdict is advisory; it ignores existing
// bookings. The requested time is normalized to UTC first, the same zone
// Book stores and Availability subtracts in.
func (s *AppointmentService) ValidateSlot(ctx context.Context, doctorID string, at time.Time) (int, error) {
	doctor, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return SlotUnknownDoctor, nil
		}
		return 0, fmt.Errorf("get doctor: %w", err)
	}

	at = at.UTC()
	want := at.Hour()*60 + at.Minute()
	for _, slot := range doctor.AvailableTimes {
		minutes, err := domain.ParseSlot(slot)
		if err != nil {
			continue
		}
		if minutes == want {
			return SlotDeclared, nil
		}
	}

	return SlotNotDeclared, nil
}

// Get retrieves an appointment by ID.
func (s *AppointmentService) Get(ctx context.Context, id string) (*domain.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", id)
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}

	return appointment, nil
}

// Update reschedules an appointment on behalf of the patient who booked it.
// The new time is rejected when the target doctor already has another
// appointment starting less than an hour away on either side.
func (s *AppointmentService) Update(ctx context.Context, id, patientID string, input UpdateAppointmentInput) (*domain.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", id)
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}

	if appointment.PatientID != patientID {
		return nil, apperrors.Unauthorized("appointment belongs to another patient")
	}

	oldDoctorID := appointment.DoctorID
	oldTime := appointment.AppointmentTime

	if input.DoctorID != nil {
		appointment.DoctorID = *input.DoctorID
	}
	if input.AppointmentTime != nil {
		appointment.AppointmentTime = input.AppointmentTime.UTC()
	}

	conflict, err := s.hasConflict(ctx, appointment)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, apperrors.Conflict("doctor already has an appointment near the requested time")
	}

	if err := s.appointmentRepo.Update(ctx, appointment); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	s.invalidateAvailability(ctx, oldDoctorID, oldTime)
	s.invalidateAvailability(ctx, appointment.DoctorID, appointment.AppointmentTime)

	if err := s.producer.PublishAppointmentUpdated(ctx, appointment); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish appointment.updated event",
			slog.String("appointment_id", appointment.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "appointment rescheduled",
		slog.String("appointment_id", appointment.ID),
		slog.Time("appointment_time", appointment.AppointmentTime),
	)

	return appointment, nil
}

// Cancel removes an appointment on behalf of the patient who booked it.
func (s *AppointmentService) Cancel(ctx context.Context, id, patientID string) error {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("appointment", id)
		}
		return fmt.Errorf("get appointment: %w", err)
	}

	if appointment.PatientID != patientID {
		return apperrors.Unauthorized("appointment belongs to another patient")
	}

	if err := s.appointmentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}

	s.invalidateAvailability(ctx, appointment.DoctorID, appointment.AppointmentTime)

	if err := s.producer.PublishAppointmentCancelled(ctx, appointment); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish appointment.cancelled event",
			slog.String("appointment_id", appointment.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "appointment cancelled",
		slog.String("appointment_id", appointment.ID),
	)

	return nil
}

// ListForDoctor returns the doctor's appointments on the given date with
// patient details, optionally narrowed by a case-insensitive patient name
// substring.
func (s *AppointmentService) ListForDoctor(ctx context.Context, doctorID string, date time.Time, patientName string) ([]domain.AppointmentDetail, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	details, err := s.appointmentRepo.ListDetailedForDoctor(ctx, doctorID, dayStart, dayStart.AddDate(0, 0, 1), patientName)
	if err != nil {
		return nil, fmt.Errorf("list doctor appointments: %w", err)
	}

	return details, nil
}

// ChangeStatus updates the status of an appointment belonging to the doctor.
func (s *AppointmentService) ChangeStatus(ctx context.Context, id, doctorID string, status int) error {
	if status != domain.StatusScheduled && status != domain.StatusCompleted {
		return apperrors.InvalidInput("status must be 0 (scheduled) or 1 (completed)")
	}

	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("appointment", id)
		}
		return fmt.Errorf("get appointment: %w", err)
	}

	if appointment.DoctorID != doctorID {
		return apperrors.Unauthorized("appointment belongs to another doctor")
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}

	s.logger.InfoContext(ctx, "appointment status changed",
		slog.String("appointment_id", id),
		slog.Int("status", status),
	)

	return nil
}

// hasConflict reports whether the target doctor has another appointment,
// excluding this one, starting within conflictWindow of the requested time.
func (s *AppointmentService) hasConflict(ctx context.Context, appointment *domain.Appointment) (bool, error) {
	from := appointment.AppointmentTime.Add(-conflictWindow)
	to := appointment.AppointmentTime.Add(conflictWindow + time.Minute)

	nearby, err := s.appointmentRepo.ListByDoctorBetween(ctx, appointment.DoctorID, from, to)
	if err != nil {
		return false, fmt.Errorf("list nearby appointments: %w", err)
	}

	for _, other := range nearby {
		if other.ID != appointment.ID {
			return true, nil
		}
	}

	return false, nil
}

func (s *AppointmentService) invalidateAvailability(ctx context.Context, doctorID string, at time.Time) {
	if s.availability == nil {
		return
	}
	if err := s.availability.Invalidate(ctx, doctorID, at); err != nil {
		s.logger.WarnContext(ctx, "availability cache invalidation failed",
			slog.String("doctor_id", doctorID),
			slog.String("error", err.Error()),
		)
	}
}
