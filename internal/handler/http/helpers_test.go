package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/CoderAK123/smart-clinic-management/internal/auth"
	"github.com/CoderAK123/smart-clinic-management/internal/domain"
	"github.com/CoderAK123/smart-clinic-management/internal/event"
	"github.com/CoderAK123/smart-clinic-management/internal/service"
	"github.com/CoderAK123/smart-clinic-management/pkg/httputil"
	pkgkafka "github.com/CoderAK123/smart-clinic-management/pkg/kafka"
	"github.com/CoderAK123/smart-clinic-management/pkg/middleware"
)

// ============================================================================
// Mock repositories
// ============================================================================

type mockAdminRepository struct {
	mock.Mock
}

func (m *mockAdminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

type mockDoctorRepository struct {
	mock.Mock
}

func (m *mockDoctorRepository) Create(ctx context.Context, doctor *domain.Doctor) error {
	args := m.Called(ctx, doctor)
	return args.Error(0)
}

func (m *mockDoctorRepository) GetByID(ctx context.Context, id string) (*domain.Doctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Doctor), args.Error(1)
}

func (m *mockDoctorRepository) GetByEmail(ctx context.Context, email string) (*domain.Doctor, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Doctor), args.Error(1)
}

func (m *mockDoctorRepository) List(ctx context.Context, limit, offset int) ([]domain.Doctor, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.Doctor), args.Error(1)
}

func (m *mockDoctorRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockDoctorRepository) Filter(ctx context.Context, name, specialty string) ([]domain.Doctor, error) {
	args := m.Called(ctx, name, specialty)
	return args.Get(0).([]domain.Doctor), args.Error(1)
}

func (m *mockDoctorRepository) Update(ctx context.Context, doctor *domain.Doctor) error {
	args := m.Called(ctx, doctor)
	return args.Error(0)
}

func (m *mockDoctorRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockPatientRepository struct {
	mock.Mock
}

func (m *mockPatientRepository) Create(ctx context.Context, patient *domain.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *mockPatientRepository) GetByID(ctx context.Context, id string) (*domain.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patient), args.Error(1)
}

func (m *mockPatientRepository) GetByEmail(ctx context.Context, email string) (*domain.Patient, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patient), args.Error(1)
}

func (m *mockPatientRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	args := m.Called(ctx, email, phone)
	return args.Bool(0), args.Error(1)
}

type mockAppointmentRepository struct {
	mock.Mock
}

func (m *mockAppointmentRepository) Create(ctx context.Context, appointment *domain.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *mockAppointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *mockAppointmentRepository) Update(ctx context.Context, appointment *domain.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *mockAppointmentRepository) UpdateStatus(ctx context.Context, id string, status int) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockAppointmentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAppointmentRepository) DeleteByDoctorID(ctx context.Context, doctorID string) error {
	args := m.Called(ctx, doctorID)
	return args.Error(0)
}

func (m *mockAppointmentRepository) ListByDoctorBetween(ctx context.Context, doctorID string, from, to time.Time) ([]domain.Appointment, error) {
	args := m.Called(ctx, doctorID, from, to)
	return args.Get(0).([]domain.Appointment), args.Error(1)
}

func (m *mockAppointmentRepository) ListDetailedForDoctor(ctx context.Context, doctorID string, from, to time.Time, patientName string) ([]domain.AppointmentDetail, error) {
	args := m.Called(ctx, doctorID, from, to, patientName)
	return args.Get(0).([]domain.AppointmentDetail), args.Error(1)
}

func (m *mockAppointmentRepository) ListDetailedForPatient(ctx context.Context, patientID string, status *int, doctorName string) ([]domain.AppointmentDetail, error) {
	args := m.Called(ctx, patientID, status, doctorName)
	return args.Get(0).([]domain.AppointmentDetail), args.Error(1)
}

type mockPrescriptionRepository struct {
	mock.Mock
}

func (m *mockPrescriptionRepository) Create(ctx context.Context, prescription *domain.Prescription) error {
	args := m.Called(ctx, prescription)
	return args.Error(0)
}

func (m *mockPrescriptionRepository) GetByAppointmentID(ctx context.Context, appointmentID string) (*domain.Prescription, error) {
	args := m.Called(ctx, appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Prescription), args.Error(1)
}

// ============================================================================
// Test helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEventProducer() *event.Producer {
	logger := testLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	return event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
}

func testTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("test-secret-key-for-testing-32-by", auth.DefaultTokenExpiry)
}

// hashPassword hashes at minimum cost to keep tests fast.
func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// asSubject injects authenticated claims into the request context, the way
// the auth middleware does after validating a token.
func asSubject(req *http.Request, subject, role string) *http.Request {
	ctx := middleware.ContextWithClaims(req.Context(), &middleware.Claims{Subject: subject, Role: role})
	return req.WithContext(ctx)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

// ============================================================================
// Fixtures
// ============================================================================

const (
	testDoctorID      = "550e8400-e29b-41d4-a716-446655440001"
	testPatientID     = "550e8400-e29b-41d4-a716-446655440002"
	testAppointmentID = "550e8400-e29b-41d4-a716-446655440003"
)

func sampleDoctor() *domain.Doctor {
	now := time.Now().UTC()
	return &domain.Doctor{
		ID:             testDoctorID,
		Name:           "Dr. Asha Rao",
		Specialty:      "Cardiology",
		Email:          "asha.rao@clinic.test",
		Phone:          "+1-555-0101",
		AvailableTimes: []string{"09:00", "10:00", "11:00", "14:00"},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func sampleAdmin(t *testing.T, password string) *domain.Admin {
	t.Helper()
	return &domain.Admin{
		ID:           "550e8400-e29b-41d4-a716-446655440000",
		Username:     "admin",
		PasswordHash: hashPassword(t, password),
		CreatedAt:    time.Now().UTC(),
	}
}

func samplePatient() *domain.Patient {
	now := time.Now().UTC()
	return &domain.Patient{
		ID:        testPatientID,
		Name:      "John Miller",
		Email:     "john.miller@example.com",
		Phone:     "+1-555-0202",
		Address:   "12 Elm Street",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func sampleAppointment() *domain.Appointment {
	now := time.Now().UTC()
	return &domain.Appointment{
		ID:              testAppointmentID,
		DoctorID:        testDoctorID,
		PatientID:       testPatientID,
		AppointmentTime: now.Add(48 * time.Hour).Truncate(time.Hour),
		Status:          domain.StatusScheduled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// ============================================================================
// Service builders over mock repositories
// ============================================================================

func testAuthService(adminRepo *mockAdminRepository, doctorRepo *mockDoctorRepository, patientRepo *mockPatientRepository) *service.AuthService {
	return service.NewAuthService(adminRepo, doctorRepo, patientRepo, testTokenManager(), testLogger())
}

func testDoctorService(doctorRepo *mockDoctorRepository, appointmentRepo *mockAppointmentRepository) *service.DoctorService {
	return service.NewDoctorService(doctorRepo, appointmentRepo, nil, testEventProducer(), testLogger())
}

func testPatientService(patientRepo *mockPatientRepository, appointmentRepo *mockAppointmentRepository) *service.PatientService {
	return service.NewPatientService(patientRepo, appointmentRepo, testLogger())
}

func testAppointmentService(appointmentRepo *mockAppointmentRepository, doctorRepo *mockDoctorRepository) *service.AppointmentService {
	return service.NewAppointmentService(appointmentRepo, doctorRepo, nil, testEventProducer(), testLogger())
}

func testPrescriptionService(prescriptionRepo *mockPrescriptionRepository, appointmentRepo *mockAppointmentRepository) *service.PrescriptionService {
	return service.NewPrescriptionService(prescriptionRepo, appointmentRepo, testLogger())
}
