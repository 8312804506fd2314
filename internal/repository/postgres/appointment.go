package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/CoderAK123/smart-clinic-management/internal/domain"
	"github.com/CoderAK123/smart-clinic-management/pkg/database"
	apperrors "github.com/CoderAK123/smart-clinic-management/pkg/errors"
)

// AppointmentRepository implements repository.AppointmentRepository using PostgreSQL.
type AppointmentRepository struct {
	db database.DBTX
}

// NewAppointmentRepository creates a new PostgreSQL-backed appointment repository.
func NewAppointmentRepository(db database.DBTX) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Create inserts a new appointment into the database.
func (r *AppointmentRepository) Create(ctx context.Context, a *domain.Appointment) error {
	query := `
		INSERT INTO appointments (id, doctor_id, patient_id, appointment_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		a.ID,
		a.DoctorID,
		a.PatientID,
		a.AppointmentTime,
		a.Status,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}

	return nil
}

// GetByID retrieves an appointment by its ID.
func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, appointment_time, status, created_at, updated_at
		FROM appointments
		WHERE id = $1`

	var a domain.Appointment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.AppointmentTime,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan appointment: %w", err)
	}

	return &a, nil
}

// Update modifies an existing appointment in the database.
func (r *AppointmentRepository) Update(ctx context.Context, a *domain.Appointment) error {
	a.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE appointments
		SET doctor_id = $1, appointment_time = $2, status = $3, updated_at = $4
		WHERE id = $5`

	ct, err := r.db.Exec(ctx, query,
		a.DoctorID,
		a.AppointmentTime,
		a.Status,
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("appointment", a.ID)
	}

	return nil
}

// UpdateStatus sets the status of an appointment.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, status int) error {
	query := `UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3`

	ct, err := r.db.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("appointment", id)
	}

	return nil
}

// Delete removes an appointment from the database by its ID.
func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM appointments WHERE id = $1`

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("appointment", id)
	}

	return nil
}

// DeleteByDoctorID removes all appointments booked with the given doctor.
// Deleting zero rows is not an error; the doctor may simply have none.
func (r *AppointmentRepository) DeleteByDoctorID(ctx context.Context, doctorID string) error {
	query := `DELETE FROM appointments WHERE doctor_id = $1`

	_, err := r.db.Exec(ctx, query, doctorID)
	if err != nil {
		return fmt.Errorf("delete appointments by doctor: %w", err)
	}

	return nil
}

// ListByDoctorBetween returns appointments for the doctor whose start time
// falls within [from, to).
func (r *AppointmentRepository) ListByDoctorBetween(ctx context.Context, doctorID string, from, to time.Time) (_ []domain.Appointment, err error) {
	query := `
		SELECT id, doctor_id, patient_id, appointment_time, status, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1 AND appointment_time >= $2 AND appointment_time < $3
		ORDER BY appointment_time`

	ctx, end := database.TraceQuery(ctx, "ListAppointmentsByDoctorBetween", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var appointments []domain.Appointment
	for rows.Next() {
		var a domain.Appointment
		if err := rows.Scan(
			&a.ID,
			&a.DoctorID,
			&a.PatientID,
			&a.AppointmentTime,
			&a.Status,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan appointment row: %w", err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointment rows: %w", err)
	}

	if appointments == nil {
		appointments = []domain.Appointment{}
	}

	return appointments, nil
}

// ListDetailedForDoctor returns appointments for the doctor within [from, to)
// joined with patient details, optionally filtered by a case-insensitive
// patient name substring.
func (r *AppointmentRepository) ListDetailedForDoctor(ctx context.Context, doctorID string, from, to time.Time, patientName string) (_ []domain.AppointmentDetail, err error) {
	query := `
		SELECT a.id, a.doctor_id, d.name, a.patient_id, p.name, p.email, p.phone, p.address, a.appointment_time, a.status
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		JOIN patients p ON p.id = a.patient_id
		WHERE a.doctor_id = $1 AND a.appointment_time >= $2 AND a.appointment_time < $3
		  AND ($4 = '' OR p.name ILIKE '%' || $4 || '%')
		ORDER BY a.appointment_time`

	ctx, end := database.TraceQuery(ctx, "ListDetailedAppointmentsForDoctor", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, doctorID, from, to, patientName)
	if err != nil {
		return nil, fmt.Errorf("list doctor appointments: %w", err)
	}
	defer rows.Close()

	return collectAppointmentDetails(rows)
}

// ListDetailedForPatient returns the patient's appointments joined with
// doctor details, optionally filtered by status and by a case-insensitive
// doctor name substring.
func (r *AppointmentRepository) ListDetailedForPatient(ctx context.Context, patientID string, status *int, doctorName string) (_ []domain.AppointmentDetail, err error) {
	query := `
		SELECT a.id, a.doctor_id, d.name, a.patient_id, p.name, p.email, p.phone, p.address, a.appointment_time, a.status
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		JOIN patients p ON p.id = a.patient_id
		WHERE a.patient_id = $1
		  AND ($2::int IS NULL OR a.status = $2)
		  AND ($3 = '' OR d.name ILIKE '%' || $3 || '%')
		ORDER BY a.appointment_time`

	ctx, end := database.TraceQuery(ctx, "ListDetailedAppointmentsForPatient", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, patientID, status, doctorName)
	if err != nil {
		return nil, fmt.Errorf("list patient appointments: %w", err)
	}
	defer rows.Close()

	return collectAppointmentDetails(rows)
}

func collectAppointmentDetails(rows pgx.Rows) ([]domain.AppointmentDetail, error) {
	var details []domain.AppointmentDetail
	for rows.Next() {
		var d domain.AppointmentDetail
		if err := rows.Scan(
			&d.ID,
			&d.DoctorID,
			&d.DoctorName,
			&d.PatientID,
			&d.PatientName,
			&d.PatientEmail,
			&d.PatientPhone,
			&d.PatientAddress,
			&d.AppointmentTime,
			&d.Status,
		); err != nil {
			return nil, fmt.Errorf("scan appointment detail row: %w", err)
		}
		d.EndTime = d.AppointmentTime.Add(domain.AppointmentDuration)
		details = append(details, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointment detail rows: %w", err)
	}

	if details == nil {
		details = []domain.AppointmentDetail{}
	}

	return details, nil
}
