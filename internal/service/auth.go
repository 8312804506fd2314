package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/CoderAK123/smart-clinic-management/internal/auth"
	"github.com/CoderAK123/smart-clinic-management/internal/domain"
	"github.com/CoderAK123/smart-clinic-management/internal/repository"
	apperrors "github.com/CoderAK123/smart-clinic-management/pkg/errors"
	"github.com/CoderAK123/smart-clinic-management/pkg/middleware"
)

// invalidCredentials is the message returned for every failed login so a
// caller cannot distinguish an unknown account from a wrong password.
const invalidCredentials = "invalid credentials"

// AuthService implements login and token validation for all three roles.
type AuthService struct {
	adminRepo   repository.AdminRepository
	doctorRepo  repository.DoctorRepository
	patientRepo repository.PatientRepository
	tokens      *auth.TokenManager
	logger      *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	adminRepo repository.AdminRepository,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	tokens *auth.TokenManager,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		adminRepo:   adminRepo,
		doctorRepo:  doctorRepo,
		patientRepo: patientRepo,
		tokens:      tokens,
		logger:      logger,
	}
}

// LoginInput holds the parameters for a login attempt. Identifier is the
// admin username or the doctor/patient email.
type LoginInput struct {
	Identifier string
	Password   string
}

// AdminLogin authenticates an admin by username and returns a signed token.
func (s *AuthService) AdminLogin(ctx context.Context, input LoginInput) (string, error) {
	if input.Identifier == "" || input.Password == "" {
		return "", apperrors.InvalidInput("username and password are required")
	}

	admin, err := s.adminRepo.GetByUsername(ctx, input.Identifier)
	if err != nil {
		return "", apperrors.Unauthorized(invalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password)); err != nil {
		return "", apperrors.Unauthorized(invalidCredentials)
	}

	token, err := s.tokens.Generate(admin.Username, domain.RoleAdmin)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	s.logger.InfoContext(ctx, "admin logged in",
		slog.String("username", admin.Username),
	)

	return token, nil
}

// DoctorLogin authenticates a doctor by email and returns a signed token.
func (s *AuthService) DoctorLogin(ctx context.Context, input LoginInput) (string, error) {
	if input.Identifier == "" || input.Password == "" {
		return "", apperrors.InvalidInput("email and password are required")
	}

	doctor, err := s.doctorRepo.GetByEmail(ctx, input.Identifier)
	if err != nil {
		return "", apperrors.Unauthorized(invalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(doctor.PasswordHash), []byte(input.Password)); err != nil {
		return "", apperrors.Unauthorized(invalidCredentials)
	}

	token, err := s.tokens.Generate(doctor.Email, domain.RoleDoctor)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	s.logger.InfoContext(ctx, "doctor logged in",
		slog.String("doctor_id", doctor.ID),
	)

	return token, nil
}

// PatientLogin authenticates a patient by email and returns a signed token.
func (s *AuthService) PatientLogin(ctx context.Context, input LoginInput) (string, error) {
	if input.Identifier == "" || input.Password == "" {
		return "", apperrors.InvalidInput("email and password are required")
	}

	patient, err := s.patientRepo.GetByEmail(ctx, input.Identifier)
	if err != nil {
		return "", apperrors.Unauthorized(invalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(patient.PasswordHash), []byte(input.Password)); err != nil {
		return "", apperrors.Unauthorized(invalidCredentials)
	}

	token, err := s.tokens.Generate(patient.Email, domain.RolePatient)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	s.logger.InfoContext(ctx, "patient logged in",
		slog.String("patient_id", patient.ID),
	)

	return token, nil
}

// Authorize decodes the token and verifies that its subject exists in the
// store for the required role. The role claim embedded in the token is
// informational only; gate decisions rest on which store the subject is
// looked up in.
func (s *AuthService) Authorize(ctx context.Context, token, requiredRole string) (*middleware.Claims, error) {
	claims, err := s.tokens.Decode(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}

	exists, err := s.subjectExists(ctx, claims.Subject, requiredRole)
	if err != nil {
		return nil, fmt.Errorf("look up token subject: %w", err)
	}
	if !exists {
		return nil, apperrors.Unauthorized("token subject is not a registered " + requiredRole)
	}

	return &middleware.Claims{
		Subject: claims.Subject,
		Role:    claims.Role,
	}, nil
}

// AuthorizeAny decodes the token and accepts it if its subject exists in any
// of the three account stores. Used for endpoints open to every signed-in
// role. The role argument is ignored; it exists to satisfy the
// middleware.Authorizer signature.
func (s *AuthService) AuthorizeAny(ctx context.Context, token, _ string) (*middleware.Claims, error) {
	claims, err := s.tokens.Decode(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}

	for _, role := range domain.ValidRoles() {
		exists, err := s.subjectExists(ctx, claims.Subject, role)
		if err != nil {
			return nil, fmt.Errorf("look up token subject: %w", err)
		}
		if exists {
			return &middleware.Claims{
				Subject: claims.Subject,
				Role:    claims.Role,
			}, nil
		}
	}

	return nil, apperrors.Unauthorized("token subject is not a registered account")
}

func (s *AuthService) subjectExists(ctx context.Context, subject, role string) (bool, error) {
	var err error
	switch role {
	case domain.RoleAdmin:
		_, err = s.adminRepo.GetByUsername(ctx, subject)
	case domain.RoleDoctor:
		_, err = s.doctorRepo.GetByEmail(ctx, subject)
	case domain.RolePatient:
		_, err = s.patientRepo.GetByEmail(ctx, subject)
	default:
		return false, nil
	}

	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
