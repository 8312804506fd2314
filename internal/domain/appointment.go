package domain

import "time"

// Appointment status values. Bookings start scheduled; doctors mark them
// completed after the visit.
const (
	StatusScheduled = 0
	StatusCompleted = 1
)

// AppointmentDuration is the fixed length of a visit.
const AppointmentDuration = time.Hour

// Appointment links a patient to a doctor at a point in time.
type Appointment struct {
	ID              string    `json:"id"`
	DoctorID        string    `json:"doctor_id"`
	PatientID       string    `json:"patient_id"`
	AppointmentTime time.Time `json:"appointment_time"`
	Status          int       `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EndTime returns the end of the visit window.
func (a *Appointment) EndTime() time.Time {
	return a.AppointmentTime.Add(AppointmentDuration)
}

// AppointmentDetail is an appointment flattened with doctor and patient
// display fields, used for schedule and history listings.
type AppointmentDetail struct {
	ID              string    `json:"id"`
	DoctorID        string    `json:"doctor_id"`
	DoctorName      string    `json:"doctor_name"`
	PatientID       string    `json:"patient_id"`
	PatientName     string    `json:"patient_name"`
	PatientEmail    string    `json:"patient_email"`
	PatientPhone    string    `json:"patient_phone"`
	PatientAddress  string    `json:"patient_address,omitempty"`
	AppointmentTime time.Time `json:"appointment_time"`
	EndTime         time.Time `json:"end_time"`
	Status          int       `json:"status"`
}
