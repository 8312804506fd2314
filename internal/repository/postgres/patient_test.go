package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CoderAK123/smart-clinic-management/internal/domain"
	apperrors "github.com/CoderAK123/smart-clinic-management/pkg/errors"
)

func newPatientTestFixture(t *testing.T) (*PatientRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewPatientRepository(mock)
	return repo, mock
}

func samplePatient() *domain.Patient {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Patient{
		ID:           "p-1234",
		Name:         "Amy Pond",
		Email:        "amy@example.com",
		Phone:        "+15550101",
		Address:      "12 Leadworth Ln",
		PasswordHash: "hash-abc",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func patientRow(p *domain.Patient) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "email", "phone", "address",
		"password_hash", "created_at", "updated_at",
	}).AddRow(
		p.ID, p.Name, p.Email, p.Phone, p.Address,
		p.PasswordHash, p.CreatedAt, p.UpdatedAt,
	)
}

func TestPatientRepository_Create_Success(t *testing.T) {
	repo, mock := newPatientTestFixture(t)
	defer mock.Close()

	p := samplePatient()

	mock.ExpectExec("INSERT INTO patients").
		WithArgs(
			p.ID, p.Name, p.Email, p.Phone, p.Address,
			p.PasswordHash, p.CreatedAt, p.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), p)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepository_Create_Duplicate(t *testing.T) {
	repo, mock := newPatientTestFixture(t)
	defer mock.Close()

	p := samplePatient()

	mock.ExpectExec("INSERT INTO patients").
		WithArgs(
			p.ID, p.Name, p.Email, p.Phone, p.Address,
			p.PasswordHash, p.CreatedAt, p.UpdatedAt,
		).
		WillReturnError(fmt.Errorf("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists), "expected ErrAlreadyExists, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepository_GetByEmail_Success(t *testing.T) {
	repo, mock := newPatientTestFixture(t)
	defer mock.Close()

	p := samplePatient()

	mock.ExpectQuery("SELECT .+ FROM patients WHERE email =").
		WithArgs(p.Email).
		WillReturnRows(patientRow(p))

	got, err := repo.GetByEmail(context.Background(), p.Email)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Name, got.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepository_GetByEmail_NotFound(t *testing.T) {
	repo, mock := newPatientTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM patients WHERE email =").
		WithArgs("ghost@example.com").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepository_ExistsByEmailOrPhone(t *testing.T) {
	repo, mock := newPatientTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("amy@example.com", "+15550101").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmailOrPhone(context.Background(), "amy@example.com", "+15550101")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
