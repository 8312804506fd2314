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

const doctorColumns = `id, name, specialty, email, phone, password_hash, available_times, created_at, updated_at`

// DoctorRepository implements repository.DoctorRepository using PostgreSQL.
type DoctorRepository struct {
	db database.DBTX
}

// NewDoctorRepository creates a new PostgreSQL-backed doctor repository.
func NewDoctorRepository(db database.DBTX) *DoctorRepository {
	return &DoctorRepository{db: db}
}

// Create inserts a new doctor into the database.
func (r *DoctorRepository) Create(ctx context.Context, d *domain.Doctor) error {
	query := `
		INSERT INTO doctors (id, name, specialty, email, phone, password_hash, available_times, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		d.ID,
		d.Name,
		d.Specialty,
		d.Email,
		d.Phone,
		d.PasswordHash,
		d.AvailableTimes,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("doctor", "email", d.Email)
		}
		return fmt.Errorf("insert doctor: %w", err)
	}

	return nil
}

// GetByID retrieves a doctor by their ID.
func (r *DoctorRepository) GetByID(ctx context.Context, id string) (*domain.Doctor, error) {
	query := `
		SELECT ` + doctorColumns + `
		FROM doctors
		WHERE id = $1`

	return r.scanDoctor(ctx, query, id)
}

// GetByEmail retrieves a doctor by their email address.
func (r *DoctorRepository) GetByEmail(ctx context.Context, email string) (*domain.Doctor, error) {
	query := `
		SELECT ` + doctorColumns + `
		FROM doctors
		WHERE email = $1`

	return r.scanDoctor(ctx, query, email)
}

// List returns a page of doctors ordered by name.
func (r *DoctorRepository) List(ctx context.Context, limit, offset int) ([]domain.Doctor, error) {
	query := `
		SELECT ` + doctorColumns + `
		FROM doctors
		ORDER BY name, id
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()

	return collectDoctors(rows)
}

// Count returns the total number of doctors.
func (r *DoctorRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count doctors: %w", err)
	}

	return count, nil
}

// Filter returns doctors matching the name and specialty criteria. An empty
// name matches every name and an empty specialty matches every specialty, so
// filtering with both empty lists all doctors.
func (r *DoctorRepository) Filter(ctx context.Context, name, specialty string) ([]domain.Doctor, error) {
	query := `
		SELECT ` + doctorColumns + `
		FROM doctors
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR LOWER(specialty) = LOWER($2))
		ORDER BY name, id`

	rows, err := r.db.Query(ctx, query, name, specialty)
	if err != nil {
		return nil, fmt.Errorf("filter doctors: %w", err)
	}
	defer rows.Close()

	return collectDoctors(rows)
}

// Update modifies an existing doctor in the database.
func (r *DoctorRepository) Update(ctx context.Context, d *domain.Doctor) error {
	d.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE doctors
		SET name = $1, specialty = $2, email = $3, phone = $4, password_hash = $5,
		    available_times = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.db.Exec(ctx, query,
		d.Name,
		d.Specialty,
		d.Email,
		d.Phone,
		d.PasswordHash,
		d.AvailableTimes,
		d.UpdatedAt,
		d.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("doctor", "email", d.Email)
		}
		return fmt.Errorf("update doctor: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("doctor", d.ID)
	}

	return nil
}

// Delete removes a doctor from the database by their ID.
func (r *DoctorRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM doctors WHERE id = $1`

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("doctor", id)
	}

	return nil
}

// scanDoctor is a helper that executes a query expected to return a single doctor row.
func (r *DoctorRepository) scanDoctor(ctx context.Context, query string, args ...any) (*domain.Doctor, error) {
	var d domain.Doctor

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&d.ID,
		&d.Name,
		&d.Specialty,
		&d.Email,
		&d.Phone,
		&d.PasswordHash,
		&d.AvailableTimes,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan doctor: %w", err)
	}

	return &d, nil
}

func collectDoctors(rows pgx.Rows) ([]domain.Doctor, error) {
	var doctors []domain.Doctor
	for rows.Next() {
		var d domain.Doctor
		if err := rows.Scan(
			&d.ID,
			&d.Name,
			&d.Specialty,
			&d.Email,
			&d.Phone,
			&d.PasswordHash,
			&d.AvailableTimes,
			&d.CreatedAt,
			&d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan doctor row: %w", err)
		}
		doctors = append(doctors, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate doctor rows: %w", err)
	}

	if doctors == nil {
		doctors = []domain.Doctor{}
	}

	return doctors, nil
}
