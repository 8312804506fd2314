package repository

import (
	"context"
	"time"

	"github.com/CoderAK123/smart-clinic-management/internal/domain"
)

// AdminRepository defines the interface for admin account persistence.
type AdminRepository interface {
	// GetByUsername retrieves an admin by their login username.
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
}

// DoctorRepository defines the interface for doctor persistence operations.
type DoctorRepository interface {
	// Create inserts a new doctor into the store.
	Create(ctx context.Context, doctor *domain.Doctor) error

	// GetByID retrieves a doctor by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Doctor, error)

	// GetByEmail retrieves a doctor by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.Doctor, error)

	// List returns a page of doctors ordered by name.
	List(ctx context.Context, limit, offset int) ([]domain.Doctor, error)

	// Count returns the total number of doctors.
	Count(ctx context.Context) (int64, error)

	// Filter returns doctors matching the given criteria. An empty name
	// matches every name; an empty specialty matches every specialty.
	// Name matching is a case-insensitive substring match, specialty
	// matching is a case-insensitive exact match.
	Filter(ctx context.Context, name, specialty string) ([]domain.Doctor, error)

	// Update modifies an existing doctor in the store.
	Update(ctx context.Context, doctor *domain.Doctor) error

	// Delete removes a doctor from the store by their identifier.
	Delete(ctx context.Context, id string) error
}

// PatientRepository defines the interface for patient persistence operations.
type PatientRepository interface {
	// Create inserts a new patient into the store.
	Create(ctx context.Context, patient *domain.Patient) error

	// GetByID retrieves a patient by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Patient, error)

	// GetByEmail retrieves a patient by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.Patient, error)

	// ExistsByEmailOrPhone reports whether a patient with the given email
	// or phone number is already registered.
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
}

// AppointmentRepository defines the interface for appointment persistence operations.
type AppointmentRepository interface {
	// Create inserts a new appointment into the store.
	Create(ctx context.Context, appointment *domain.Appointment) error

	// GetByID retrieves an appointment by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)

	// Update modifies an existing appointment in the store.
	Update(ctx context.Context, appointment *domain.Appointment) error

	// UpdateStatus sets the status of an appointment.
	UpdateStatus(ctx context.Context, id string, status int) error

	// Delete removes an appointment from the store by its identifier.
	Delete(ctx context.Context, id string) error

	// DeleteByDoctorID removes all appointments booked with the given doctor.
	DeleteByDoctorID(ctx context.Context, doctorID string) error

	// ListByDoctorBetween returns appointments for the doctor whose start
	// time falls within [from, to).
	ListByDoctorBetween(ctx context.Context, doctorID string, from, to time.Time) ([]domain.Appointment, error)

	// ListDetailedForDoctor returns appointments for the doctor within
	// [from, to) joined with patient details, optionally filtered by a
	// case-insensitive patient name substring.
	ListDetailedForDoctor(ctx context.Context, doctorID string, from, to time.Time, patientName string) ([]domain.AppointmentDetail, error)

	// ListDetailedForPatient returns the patient's appointments joined
	// with doctor details, optionally filtered by status and by a
	// case-insensitive doctor name substring.
	ListDetailedForPatient(ctx context.Context, patientID string, status *int, doctorName string) ([]domain.AppointmentDetail, error)
}

// PrescriptionRepository defines the interface for prescription persistence operations.
type PrescriptionRepository interface {
	// Create inserts a new prescription into the store.
	Create(ctx context.Context, prescription *domain.Prescription) error

	// GetByAppointmentID retrieves the prescription issued for an appointment.
	GetByAppointmentID(ctx context.Context, appointmentID string) (*domain.Prescription, error)
}
