package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/CoderAK123/smart-clinic-management/internal/auth"
	"github.com/CoderAK123/smart-clinic-management/internal/domain"
	"github.com/CoderAK123/smart-clinic-management/internal/event"
	pkgkafka "github.com/CoderAK123/smart-clinic-management/pkg/kafka"
)

// --- Mock Admin Repository ---

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

// --- Mock Doctor Repository ---

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

// --- Mock Patient Repository ---

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

// --- Mock Appointment Repository ---

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

// --- Mock Prescription Repository ---

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

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("test-secret-key-for-testing-32-by", auth.DefaultTokenExpiry)
}

func newTestEventProducer() *event.Producer {
	logger := newTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

func strPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// hashForTest creates a bcrypt hash with cost 4 for fast tests.
func hashForTest(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), 4)
	if err != nil {
		panic(err)
	}
	return string(h)
}
