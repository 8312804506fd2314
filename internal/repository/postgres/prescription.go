package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/CoderAK123/smart-clinic-management/internal/domain"
	"github.com/CoderAK123/smart-clinic-management/pkg/database"
	apperrors "github.com/CoderAK123/smart-clinic-management/pkg/errors"
)

// PrescriptionRepository implements repository.PrescriptionRepository using PostgreSQL.
type PrescriptionRepository struct {
	db database.DBTX
}

// NewPrescriptionRepository creates a new PostgreSQL-backed prescription repository.
func NewPrescriptionRepository(db database.DBTX) *PrescriptionRepository {
	return &PrescriptionRepository{db: db}
}

// Create inserts a new prescription into the database.
func (r *PrescriptionRepository) Create(ctx context.Context, p *domain.Prescription) error {
	query := `
		INSERT INTO prescriptions (id, appointment_id, patient_name, medication, doctor_notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.AppointmentID,
		p.PatientName,
		p.Medication,
		p.DoctorNotes,
		p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("prescription", "appointment_id", p.AppointmentID)
		}
		return fmt.Errorf("insert prescription: %w", err)
	}

	return nil
}

// GetByAppointmentID retrieves the prescription issued for an appointment.
func (r *PrescriptionRepository) GetByAppointmentID(ctx context.Context, appointmentID string) (*domain.Prescription, error) {
	query := `
		SELECT id, appointment_id, patient_name, medication, doctor_notes, created_at
		FROM prescriptions
		WHERE appointment_id = $1`

	var p domain.Prescription
	err := r.db.QueryRow(ctx, query, appointmentID).Scan(
		&p.ID,
		&p.AppointmentID,
		&p.PatientName,
		&p.Medication,
		&p.DoctorNotes,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan prescription: %w", err)
	}

	return &p, nil
}
