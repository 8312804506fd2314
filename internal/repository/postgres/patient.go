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

// PatientRepository implements repository.PatientRepository using PostgreSQL.
type PatientRepository struct {
	db database.DBTX
}

// NewPatientRepository creates a new PostgreSQL-backed patient repository.
func NewPatientRepository(db database.DBTX) *PatientRepository {
	return &PatientRepository{db: db}
}

// Create inserts a new patient into the database.
func (r *PatientRepository) Create(ctx context.Context, p *domain.Patient) error {
	query := `
		INSERT INTO patients (id, name, email, phone, address, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Email,
		p.Phone,
		p.Address,
		p.PasswordHash,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("patient", "email", p.Email)
		}
		return fmt.Errorf("insert patient: %w", err)
	}

	return nil
}

// GetByID retrieves a patient by their ID.
func (r *PatientRepository) GetByID(ctx context.Context, id string) (*domain.Patient, error) {
	query := `
		SELECT id, name, email, phone, address, password_hash, created_at, updated_at
		FROM patients
		WHERE id = $1`

	return r.scanPatient(ctx, query, id)
}

// GetByEmail retrieves a patient by their email address.
func (r *PatientRepository) GetByEmail(ctx context.Context, email string) (*domain.Patient, error) {
	query := `
		SELECT id, name, email, phone, address, password_hash, created_at, updated_at
		FROM patients
		WHERE email = $1`

	return r.scanPatient(ctx, query, email)
}

// ExistsByEmailOrPhone reports whether a patient with the given email or
// phone number is already registered.
func (r *PatientRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM patients WHERE email = $1 OR phone = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, email, phone).Scan(&exists); err != nil {
		return false, fmt.Errorf("check patient existence: %w", err)
	}

	return exists, nil
}

// scanPatient is a helper that executes a query expected to return a single patient row.
func (r *PatientRepository) scanPatient(ctx context.Context, query string, args ...any) (*domain.Patient, error) {
	var p domain.Patient

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.Address,
		&p.PasswordHash,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan patient: %w", err)
	}

	return &p, nil
}
