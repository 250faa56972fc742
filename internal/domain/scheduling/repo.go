package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SlotRepository persists timetable slots.
type SlotRepository interface {
	Create(ctx context.Context, sl *Slot) error
	GetByID(ctx context.Context, id uuid.UUID) (*Slot, error)
	GetByDoctorAndStart(ctx context.Context, doctorID uuid.UUID, start time.Time) (*Slot, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Slot, error)
	ListReservedByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Slot, error)
	DeleteFreeByDoctor(ctx context.Context, doctorID uuid.UUID) error

	// Reserve flips a free slot to reserved atomically. It returns
	// ErrSlotReserved when the slot was already taken and ErrNotFound when
	// the slot does not exist.
	Reserve(ctx context.Context, id uuid.UUID) error

	// Free marks a slot as not reserved. Freeing an already-free slot is a
	// no-op.
	Free(ctx context.Context, id uuid.UUID) error

	// LockDoctor serializes timetable writes for one doctor within the
	// current transaction.
	LockDoctor(ctx context.Context, doctorID uuid.UUID) error
}

// AppointmentRepository persists appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ExistsForPair(ctx context.Context, doctorID, customerID uuid.UUID) (bool, error)
}

// DoctorDirectory resolves doctors to their clinic. Implemented by the
// identity domain.
type DoctorDirectory interface {
	// ClinicIDByDoctor returns the clinic a doctor belongs to, or
	// ErrNotFound when no such doctor exists.
	ClinicIDByDoctor(ctx context.Context, doctorID uuid.UUID) (uuid.UUID, error)
}
