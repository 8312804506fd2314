package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/CoderAK123/smart-clinic-management/internal/domain"
	pkgkafka "github.com/CoderAK123/smart-clinic-management/pkg/kafka"
)

// Kafka topics for clinic domain events.
var (
	TopicAppointmentBooked    = pkgkafka.Topic("appointment", "booked")
	TopicAppointmentUpdated   = pkgkafka.Topic("appointment", "updated")
	TopicAppointmentCancelled = pkgkafka.Topic("appointment", "cancelled")
	TopicDoctorRemoved        = pkgkafka.Topic("doctor", "removed")
)

// Aggregate type constants.
const (
	AggregateTypeAppointment = "appointment"
	AggregateTypeDoctor      = "doctor"
)

// Source identifier for events originating from the clinic service.
const SourceClinicService = "clinic-service"

// AppointmentData is the payload for appointment lifecycle events.
type AppointmentData struct {
	ID              string    `json:"id"`
	DoctorID        string    `json:"doctor_id"`
	PatientID       string    `json:"patient_id"`
	AppointmentTime time.Time `json:"appointment_time"`
	Status          int       `json:"status"`
}

// DoctorRemovedData is the payload for a doctor.removed event.
type DoctorRemovedData struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

// Producer publishes clinic domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the clinic service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishAppointmentBooked publishes an appointment.booked event.
func (p *Producer) PublishAppointmentBooked(ctx context.Context, a *domain.Appointment) error {
	return p.publishAppointment(ctx, TopicAppointmentBooked, a)
}

// PublishAppointmentUpdated publishes an appointment.updated event.
func (p *Producer) PublishAppointmentUpdated(ctx context.Context, a *domain.Appointment) error {
	return p.publishAppointment(ctx, TopicAppointmentUpdated, a)
}

// PublishAppointmentCancelled publishes an appointment.cancelled event.
func (p *Producer) PublishAppointmentCancelled(ctx context.Context, a *domain.Appointment) error {
	return p.publishAppointment(ctx, TopicAppointmentCancelled, a)
}

func (p *Producer) publishAppointment(ctx context.Context, topic string, a *domain.Appointment) error {
	data := AppointmentData{
		ID:              a.ID,
		DoctorID:        a.DoctorID,
		PatientID:       a.PatientID,
		AppointmentTime: a.AppointmentTime,
		Status:          a.Status,
	}

	event, err := pkgkafka.NewEvent(topic, a.ID, AggregateTypeAppointment, SourceClinicService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published appointment event",
		slog.String("topic", topic),
		slog.String("appointment_id", a.ID),
		slog.String("doctor_id", a.DoctorID),
	)

	return nil
}

// PublishDoctorRemoved publishes a doctor.removed event.
func (p *Producer) PublishDoctorRemoved(ctx context.Context, d *domain.Doctor) error {
	data := DoctorRemovedData{
		ID:        d.ID,
		Name:      d.Name,
		Specialty: d.Specialty,
	}

	event, err := pkgkafka.NewEvent(TopicDoctorRemoved, d.ID, AggregateTypeDoctor, SourceClinicService, data)
	if err != nil {
		return fmt.Errorf("create doctor.removed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicDoctorRemoved, event); err != nil {
		return fmt.Errorf("publish doctor.removed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published doctor.removed event",
		slog.String("doctor_id", d.ID),
	)

	return nil
}
