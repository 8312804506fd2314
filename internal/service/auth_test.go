package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/CoderAK123/smart-clinic-management/internal/domain"
	apperrors "github.com/CoderAK123/smart-clinic-management/pkg/errors"
)

func newTestAuthService(
	adminRepo *mockAdminRepository,
	doctorRepo *mockDoctorRepository,
	patientRepo *mockPatientRepository,
) *AuthService {
	return NewAuthService(adminRepo, doctorRepo, patientRepo, newTestTokenManager(), newTestLogger())
}

func sampleAuthDoctor() *domain.Doctor {
	now := time.Now().UTC()
	return &domain.Doctor{
		ID:             "d-1",
		Name:           "Gregory House",
		Specialty:      "diagnostics",
		Email:          "house@clinic.example",
		PasswordHash:   hashForTest("lupus123"),
		AvailableTimes: []string{"09:00", "10:00"},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// --- Login Tests ---

func TestAdminLogin_Success(t *testing.T) {
	adminRepo := new(mockAdminRepository)
	svc := newTestAuthService(adminRepo, new(mockDoctorRepository), new(mockPatientRepository))

	adminRepo.On("GetByUsername", mock.Anything, "admin").Return(&domain.Admin{
		ID:           "adm-1",
		Username:     "admin",
		PasswordHash: hashForTest("sekrit"),
	}, nil)

	token, err := svc.AdminLogin(context.Background(), LoginInput{Identifier: "admin", Password: "sekrit"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := newTestTokenManager().Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	adminRepo.AssertExpectations(t)
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	adminRepo := new(mockAdminRepository)
	svc := newTestAuthService(adminRepo, new(mockDoctorRepository), new(mockPatientRepository))

	adminRepo.On("GetByUsername", mock.Anything, "admin").Return(&domain.Admin{
		Username:     "admin",
		PasswordHash: hashForTest("sekrit"),
	}, nil)

	_, err := svc.AdminLogin(context.Background(), LoginInput{Identifier: "admin", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestAdminLogin_UnknownUsername(t *testing.T) {
	adminRepo := new(mockAdminRepository)
	svc := newTestAuthService(adminRepo, new(mockDoctorRepository), new(mockPatientRepository))

	adminRepo.On("GetByUsername", mock.Anything, "ghost").Return(nil, apperrors.ErrNotFound)

	_, err := svc.AdminLogin(context.Background(), LoginInput{Identifier: "ghost", Password: "whatever"})
	require.Error(t, err)
	// Unknown account and wrong password are indistinguishable to the caller.
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestDoctorLogin_Success(t *testing.T) {
	doctorRepo := new(mockDoctorRepository)
	svc := newTestAuthService(new(mockAdminRepository), doctorRepo, new(mockPatientRepository))

	doctorRepo.On("GetByEmail", mock.Anything, "house@clinic.example").Return(sampleAuthDoctor(), nil)

	token, err := svc.DoctorLogin(context.Background(), LoginInput{Identifier: "house@clinic.example", Password: "lupus123"})
	require.NoError(t, err)

	claims, err := newTestTokenManager().Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "house@clinic.example", claims.Subject)
	assert.Equal(t, domain.RoleDoctor, claims.Role)
}

func TestPatientLogin_MissingFields(t *testing.T) {
	svc := newTestAuthService(new(mockAdminRepository), new(mockDoctorRepository), new(mockPatientRepository))

	_, err := svc.PatientLogin(context.Background(), LoginInput{Identifier: "", Password: "pw"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

// --- Authorize Tests ---

func TestAuthorize_Success(t *testing.T) {
	doctorRepo := new(mockDoctorRepository)
	svc := newTestAuthService(new(mockAdminRepository), doctorRepo, new(mockPatientRepository))

	doctorRepo.On("GetByEmail", mock.Anything, "house@clinic.example").Return(sampleAuthDoctor(), nil)

	token, err := newTestTokenManager().Generate("house@clinic.example", domain.RoleDoctor)
	require.NoError(t, err)

	claims, err := svc.Authorize(context.Background(), token, domain.RoleDoctor)
	require.NoError(t, err)
	assert.Equal(t, "house@clinic.example", claims.Subject)
}

func TestAuthorize_SubjectNotInStore(t *testing.T) {
	doctorRepo := new(mockDoctorRepository)
	svc := newTestAuthService(new(mockAdminRepository), doctorRepo, new(mockPatientRepository))

	doctorRepo.On("GetByEmail", mock.Anything, "ghost@clinic.example").Return(nil, apperrors.ErrNotFound)

	token, err := newTestTokenManager().Generate("ghost@clinic.example", domain.RoleDoctor)
	require.NoError(t, err)

	_, err = svc.Authorize(context.Background(), token, domain.RoleDoctor)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

// A token whose subject exists in the required role's store passes the gate
// even when it was issued with a different role claim. Authorization rests
// on the store lookup, not the claim.
func TestAuthorize_RoleClaimNotChecked(t *testing.T) {
	doctorRepo := new(mockDoctorRepository)
	svc := newTestAuthService(new(mockAdminRepository), doctorRepo, new(mockPatientRepository))

	doctorRepo.On("GetByEmail", mock.Anything, "house@clinic.example").Return(sampleAuthDoctor(), nil)

	token, err := newTestTokenManager().Generate("house@clinic.example", domain.RolePatient)
	require.NoError(t, err)

	claims, err := svc.Authorize(context.Background(), token, domain.RoleDoctor)
	require.NoError(t, err)
	assert.Equal(t, domain.RolePatient, claims.Role)
}

func TestAuthorize_InvalidToken(t *testing.T) {
	svc := newTestAuthService(new(mockAdminRepository), new(mockDoctorRepository), new(mockPatientRepository))

	_, err := svc.Authorize(context.Background(), "not-a-token", domain.RoleDoctor)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestAuthorizeAny_Patient(t *testing.T) {
	adminRepo := new(mockAdminRepository)
	doctorRepo := new(mockDoctorRepository)
	patientRepo := new(mockPatientRepository)
	svc := newTestAuthService(adminRepo, doctorRepo, patientRepo)

	adminRepo.On("GetByUsername", mock.Anything, "amy@example.com").Return(nil, apperrors.ErrNotFound)
	doctorRepo.On("GetByEmail", mock.Anything, "amy@example.com").Return(nil, apperrors.ErrNotFound)
	patientRepo.On("GetByEmail", mock.Anything, "amy@example.com").Return(&domain.Patient{
		ID:    "p-1",
		Email: "amy@example.com",
	}, nil)

	claims, err := svc.AuthorizeAny(context.Background(), mustToken(t, "amy@example.com", domain.RolePatient), "")
	require.NoError(t, err)
	assert.Equal(t, "amy@example.com", claims.Subject)
}

func mustToken(t *testing.T, subject, role string) string {
	t.Helper()
	token, err := newTestTokenManager().Generate(subject, role)
	require.NoError(t, err)
	return token
}
