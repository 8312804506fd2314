package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/CoderAK123/smart-clinic-management/internal/domain"
	"github.com/CoderAK123/smart-clinic-management/internal/repository"
	apperrors "github.com/CoderAK123/smart-clinic-management/pkg/errors"
)

// PrescriptionService implements the business logic for issuing and
// retrieving prescriptions. At most one prescription exists per appointment.
type PrescriptionService struct {
	prescriptionRepo repository.PrescriptionRepository
	appointmentRepo  repository.AppointmentRepository
	logger           *slog.Logger
}

// NewPrescriptionService creates a new prescription service.
func NewPrescriptionService(
	prescriptionRepo repository.PrescriptionRepository,
	appointmentRepo repository.AppointmentRepository,
	logger *slog.Logger,
) *PrescriptionService {
	return &PrescriptionService{
		prescriptionRepo: prescriptionRepo,
		appointmentRepo:  appointmentRepo,
		logger:           logger,
	}
}

// IssuePrescriptionInput holds the parameters for issuing a prescription.
type IssuePrescriptionInput struct {
	AppointmentID string
	PatientName   string
	Medication    string
	DoctorNotes   string
}

// Issue creates a prescription for an appointment. Issuing a second
// prescription for the same appointment is rejected.
func (s *PrescriptionService) Issue(ctx context.Context, input IssuePrescriptionInput) (*domain.Prescription, error) {
	if input.AppointmentID == "" {
		return nil, apperrors.InvalidInput("appointment id is required")
	}
	if input.Medication == "" {
		return nil, apperrors.InvalidInput("medication is required")
	}

	if _, err := s.appointmentRepo.GetByID(ctx, input.AppointmentID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", input.AppointmentID)
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}

	if _, err := s.prescriptionRepo.GetByAppointmentID(ctx, input.AppointmentID); err == nil {
		return nil, apperrors.AlreadyExists("prescription", "appointment_id", input.AppointmentID)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check existing prescription: %w", err)
	}

	prescription := &domain.Prescription{
		ID:            uuid.New().String(),
		AppointmentID: input.AppointmentID,
		PatientName:   input.PatientName,
		Medication:    input.Medication,
		DoctorNotes:   input.DoctorNotes,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.prescriptionRepo.Create(ctx, prescription); err != nil {
		return nil, fmt.Errorf("create prescription: %w", err)
	}

	s.logger.InfoContext(ctx, "prescription issued",
		slog.String("prescription_id", prescription.ID),
		slog.String("appointment_id", prescription.AppointmentID),
	)

	return prescription, nil
}

// GetByAppointment retrieves the prescription issued for an appointment.
func (s *PrescriptionService) GetByAppointment(ctx context.Context, appointmentID string) (*domain.Prescription, error) {
	prescription, err := s.prescriptionRepo.GetByAppointmentID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("prescription", appointmentID)
		}
		return nil, fmt.Errorf("get prescription: %w", err)
	}

	return prescription, nil
}
