package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Slot is a single bookable working hour in a doctor's timetable. A doctor
// has at most one slot per start time, and retained slots are always at
// least an hour apart.
type Slot struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	StartTime time.Time `json:"start"`
	Reserved  bool      `json:"reserved"`
}

// Appointment links a customer to a reserved slot. Each slot backs at most
// one appointment.
type Appointment struct {
	ID          uuid.UUID `json:"id"`
	ClinicID    uuid.UUID `json:"clinic_id"`
	DoctorID    uuid.UUID `json:"doctor_id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	TimetableID uuid.UUID `json:"timetable_id"`
	StartTime   time.Time `json:"start"`
	CreatedAt   time.Time `json:"created_at"`
}
