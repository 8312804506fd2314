package domain

import (
	"fmt"
	"time"
)

// noonMinutes is 12:00 expressed as minutes since midnight.
const noonMinutes = 12 * 60

// Doctor represents a practicing doctor with declared working slots.
type Doctor struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Specialty    string    `json:"specialty"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	// AvailableTimes is the declared list of bookable slot start times in
	// "HH:MM" 24-hour format, kept in declaration order.
	AvailableTimes []string  `json:"available_times"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ParseSlot parses an "HH:MM" 24-hour slot string into minutes since midnight.
// Both fields must be zero-padded; partial values and trailing text are
// rejected.
func ParseSlot(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse slot %q: %w", s, err)
	}
	if t.Format("15:04") != s {
		return 0, fmt.Errorf("parse slot %q: want HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// HasMorningSlot reports whether any declared slot starts strictly before noon.
// A slot at exactly 12:00 counts as neither morning nor afternoon.
func (d *Doctor) HasMorningSlot() bool {
	for _, s := range d.AvailableTimes {
		if m, err := ParseSlot(s); err == nil && m < noonMinutes {
			return true
		}
	}
	return false
}

// HasAfternoonSlot reports whether any declared slot starts strictly after noon.
func (d *Doctor) HasAfternoonSlot() bool {
	for _, s := range d.AvailableTimes {
		if m, err := ParseSlot(s); err == nil && m > noonMinutes {
			return true
		}
	}
	return false
}

// FreeSlots returns the declared slots with the given booked times removed.
// Booked times are compared by UTC time of day only, so bookings on the
// target date knock out the matching declared slot regardless of date
// arithmetic or the zone the driver decoded them in. Order of the declared
// list is preserved.
func (d *Doctor) FreeSlots(booked []time.Time) []string {
	taken := make(map[int]struct{}, len(booked))
	for _, t := range booked {
		t = t.UTC()
		taken[t.Hour()*60+t.Minute()] = struct{}{}
	}

	free := make([]string, 0, len(d.AvailableTimes))
	for _, s := range d.AvailableTimes {
		m, err := ParseSlot(s)
		if err != nil {
			continue
		}
		if _, ok := taken[m]; !ok {
			free = append(free, s)
		}
	}
	return free
}
