package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/CoderAK123/smart-clinic-management/internal/domain"
	"github.com/CoderAK123/smart-clinic-management/internal/repository"
	apperrors "github.com/CoderAK123/smart-clinic-management/pkg/errors"
)

// History filter values accepted by AppointmentHistory.
const (
	HistoryPast   = "past"
	HistoryFuture = "future"
)

// PatientService implements the business logic for patient accounts and
// their appointment history.
type PatientService struct {
	patientRepo     repository.PatientRepository
	appointmentRepo repository.AppointmentRepository
	logger          *slog.Logger
}

// NewPatientService creates a new patient service.
func NewPatientService(
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRepository,
	logger *slog.Logger,
) *PatientService {
	return &PatientService{
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
		logger:          logger,
	}
}

// RegisterPatientInput holds the parameters for registering a new patient.
type RegisterPatientInput struct {
	Name     string
	Email    string
	Phone    string
	Address  string
	Password string
}

// HistoryInput holds the criteria for a patient's appointment history.
// Condition selects past (completed) or future (scheduled) appointments;
// empty means both. DoctorName optionally narrows by a case-insensitive
// doctor name substring.
type HistoryInput struct {
	Condition  string
	DoctorName string
}

// Register creates a new patient account. Registration is rejected when a
// patient already holds the email or the phone number.
func (s *PatientService) Register(ctx context.Context, input RegisterPatientInput) (*domain.Patient, error) {
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if input.Password == "" {
		return nil, apperrors.InvalidInput("password is required")
	}

	exists, err := s.patientRepo.ExistsByEmailOrPhone(ctx, input.Email, input.Phone)
	if err != nil {
		return nil, fmt.Errorf("check patient existence: %w", err)
	}
	if exists {
		return nil, apperrors.AlreadyExists("patient", "email or phone", input.Email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	patient := &domain.Patient{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		Address:      input.Address,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}

	s.logger.InfoContext(ctx, "patient registered",
		slog.String("patient_id", patient.ID),
	)

	return patient, nil
}

// Profile retrieves a patient by the email carried in their token subject.
func (s *PatientService) Profile(ctx context.Context, email string) (*domain.Patient, error) {
	patient, err := s.patientRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("patient", email)
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}

	return patient, nil
}

// AppointmentHistory returns the patient's appointments with doctor details.
// Condition "past" selects completed appointments and "future" selects
// scheduled ones; anything else besides empty is rejected.
func (s *PatientService) AppointmentHistory(ctx context.Context, patientID string, input HistoryInput) ([]domain.AppointmentDetail, error) {
	var status *int
	switch strings.ToLower(strings.TrimSpace(input.Condition)) {
	case "":
		// No status filter.
	case HistoryPast:
		completed := domain.StatusCompleted
		status = &completed
	case HistoryFuture:
		scheduled := domain.StatusScheduled
		status = &scheduled
	default:
		return nil, apperrors.InvalidInput("condition must be past or future")
	}

	details, err := s.appointmentRepo.ListDetailedForPatient(ctx, patientID, status, input.DoctorName)
	if err != nil {
		return nil, fmt.Errorf("list patient appointments: %w", err)
	}

	return details, nil
}
