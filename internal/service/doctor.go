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

	"github.com/CoderAK123/smart-clinic-management/internal/cache"
	"github.com/CoderAK123/smart-clinic-management/internal/domain"
	"github.com/CoderAK123/smart-clinic-management/internal/event"
	"github.com/CoderAK123/smart-clinic-management/internal/repository"
	apperrors "github.com/CoderAK123/smart-clinic-management/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// TimeOfDay filter values accepted by Filter.
const (
	TimeOfDayAM = "am"
	TimeOfDayPM = "pm"
)

// DoctorService implements the business logic for doctor management,
// discovery, and availability.
type DoctorService struct {
	doctorRepo      repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
	availability    *cache.AvailabilityCache
	producer        *event.Producer
	logger          *slog.Logger
}

// NewDoctorService creates a new doctor service.
func NewDoctorService(
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
	availability *cache.AvailabilityCache,
	producer *event.Producer,
	logger *slog.Logger,
) *DoctorService {
	return &DoctorService{
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		availability:    availability,
		producer:        producer,
		logger:          logger,
	}
}

// RegisterDoctorInput holds the parameters for registering a new doctor.
type RegisterDoctorInput struct {
	Name           string
	Specialty      string
	Email          string
	Phone          string
	Password       string
	AvailableTimes []string
}

// UpdateDoctorInput holds the parameters for updating a doctor. Nil fields
// are left unchanged.
type UpdateDoctorInput struct {
	Name           *string
	Specialty      *string
	Phone          *string
	AvailableTimes *[]string
}

// FilterDoctorsInput holds the criteria for filtering doctors.
type FilterDoctorsInput struct {
	Name      string
	Specialty string
	TimeOfDay string
}

// Register creates a new doctor account.
func (s *DoctorService) Register(ctx context.Context, input RegisterDoctorInput) (*domain.Doctor, error) {
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if input.Password == "" {
		return nil, apperrors.InvalidInput("password is required")
	}
	for _, slot := range input.AvailableTimes {
		if _, err := domain.ParseSlot(slot); err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid available time %q", slot))
		}
	}

	if _, err := s.doctorRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.AlreadyExists("doctor", "email", input.Email)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check doctor email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	doctor := &domain.Doctor{
		ID:             uuid.New().String(),
		Name:           input.Name,
		Specialty:      input.Specialty,
		Email:          input.Email,
		Phone:          input.Phone,
		PasswordHash:   string(hashedPassword),
		AvailableTimes: input.AvailableTimes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.doctorRepo.Create(ctx, doctor); err != nil {
		return nil, fmt.Errorf("create doctor: %w", err)
	}

	s.logger.InfoContext(ctx, "doctor registered",
		slog.String("doctor_id", doctor.ID),
		slog.String("specialty", doctor.Specialty),
	)

	return doctor, nil
}

// Get retrieves a doctor by ID.
func (s *DoctorService) Get(ctx context.Context, id string) (*domain.Doctor, error) {
	doctor, err := s.doctorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", id)
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}

	return doctor, nil
}

// ProfileByEmail retrieves a doctor by the email carried in their token subject.
func (s *DoctorService) ProfileByEmail(ctx context.Context, email string) (*domain.Doctor, error) {
	doctor, err := s.doctorRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", email)
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}

	return doctor, nil
}

// List returns a page of doctors and the total count.
func (s *DoctorService) List(ctx context.Context, limit, offset int) ([]domain.Doctor, int64, error) {
	doctors, err := s.doctorRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list doctors: %w", err)
	}

	total, err := s.doctorRepo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count doctors: %w", err)
	}

	return doctors, total, nil
}

// Filter returns doctors matching the given name, specialty, and time of day
// criteria. Every criterion is optional; an empty criterion matches all
// doctors. TimeOfDay accepts "am" (any declared slot before noon) or "pm"
// (any declared slot after noon), case-insensitively. A slot at exactly
// noon satisfies neither.
func (s *DoctorService) Filter(ctx context.Context, input FilterDoctorsInput) ([]domain.Doctor, error) {
	timeOfDay := strings.ToLower(strings.TrimSpace(input.TimeOfDay))
	if timeOfDay != "" && timeOfDay != TimeOfDayAM && timeOfDay != TimeOfDayPM {
		return nil, apperrors.InvalidInput("timeOfDay must be AM or PM")
	}

	doctors, err := s.doctorRepo.Filter(ctx, input.Name, input.Specialty)
	if err != nil {
		return nil, fmt.Errorf("filter doctors: %w", err)
	}

	if timeOfDay == "" {
		return doctors, nil
	}

	filtered := make([]domain.Doctor, 0, len(doctors))
	for _, d := range doctors {
		switch timeOfDay {
		case TimeOfDayAM:
			if d.HasMorningSlot() {
				filtered = append(filtered, d)
			}
		case TimeOfDayPM:
			if d.HasAfternoonSlot() {
				filtered = append(filtered, d)
			}
		}
	}

	return filtered, nil
}

// Update modifies an existing doctor.
func (s *DoctorService) Update(ctx context.Context, id string, input UpdateDoctorInput) (*domain.Doctor, error) {
	doctor, err := s.doctorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", id)
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}

	if input.Name != nil {
		doctor.Name = *input.Name
	}
	if input.Specialty != nil {
		doctor.Specialty = *input.Specialty
	}
	if input.Phone != nil {
		doctor.Phone = *input.Phone
	}
	if input.AvailableTimes != nil {
		for _, slot := range *input.AvailableTimes {
			if _, err := domain.ParseSlot(slot); err != nil {
				return nil, apperrors.InvalidInput(fmt.Sprintf("invalid available time %q", slot))
			}
		}
		doctor.AvailableTimes = *input.AvailableTimes
	}

	if err := s.doctorRepo.Update(ctx, doctor); err != nil {
		return nil, fmt.Errorf("update doctor: %w", err)
	}

	if input.AvailableTimes != nil {
		s.invalidateDoctorAvailability(ctx, doctor.ID)
	}

	s.logger.InfoContext(ctx, "doctor updated",
		slog.String("doctor_id", doctor.ID),
	)

	return doctor, nil
}

// Delete removes a doctor and every appointment booked with them.
func (s *DoctorService) Delete(ctx context.Context, id string) error {
	doctor, err := s.doctorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("doctor", id)
		}
		return fmt.Errorf("get doctor: %w", err)
	}

	if err := s.appointmentRepo.DeleteByDoctorID(ctx, id); err != nil {
		return fmt.Errorf("delete doctor appointments: %w", err)
	}

	if err := s.doctorRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}

	s.invalidateDoctorAvailability(ctx, id)

	// Publish removal event (non-blocking on failure).
	if err := s.producer.PublishDoctorRemoved(ctx, doctor); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish doctor.removed event",
			slog.String("doctor_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "doctor deleted",
		slog.String("doctor_id", id),
	)

	return nil
}

// Availability returns the doctor's free slots on the given date: the
// declared slots minus those whose time of day already carries a booking.
// An unknown doctor yields an empty list rather than an error.
func (s *DoctorService) Availability(ctx context.Context, doctorID string, date time.Time) ([]string, error) {
	if s.availability != nil {
		if slots, err := s.availability.Get(ctx, doctorID, date); err == nil {
			return slots, nil
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "availability cache read failed",
				slog.String("doctor_id", doctorID),
				slog.String("error", err.Error()),
			)
		}
	}

	doctor, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	booked, err := s.appointmentRepo.ListByDoctorBetween(ctx, doctorID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("list booked appointments: %w", err)
	}

	bookedTimes := make([]time.Time, 0, len(booked))
	for _, a := range booked {
		bookedTimes = append(bookedTimes, a.AppointmentTime)
	}

	slots := doctor.FreeSlots(bookedTimes)

	if s.availability != nil {
		if err := s.availability.Set(ctx, doctorID, date, slots); err != nil {
			s.logger.WarnContext(ctx, "availability cache write failed",
				slog.String("doctor_id", doctorID),
				slog.String("error", err.Error()),
			)
		}
	}

	return slots, nil
}

func (s *DoctorService) invalidateDoctorAvailability(ctx context.Context, doctorID string) {
	if s.availability == nil {
		return
	}
	if err := s.availability.InvalidateDoctor(ctx, doctorID); err != nil {
		s.logger.WarnContext(ctx, "availability cache invalidation failed",
			slog.String("doctor_id", doctorID),
			slog.String("error", err.Error()),
		)
	}
}
