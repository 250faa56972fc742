package scheduling

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

// minSlotSpacing is the smallest allowed distance between two retained
// working-hour starts for one doctor.
const minSlotSpacing = time.Hour

// TxRunner runs fn atomically. Production wiring uses db.WithTx; tests use a
// pass-through.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	tx           TxRunner
	slots        SlotRepository
	appointments AppointmentRepository
	doctors      DoctorDirectory
}

func NewService(tx TxRunner, slots SlotRepository, appointments AppointmentRepository, doctors DoctorDirectory) *Service {
	return &Service{tx: tx, slots: slots, appointments: appointments, doctors: doctors}
}

// -- Timetable --

// SetWorkingHours replaces a doctor's free slots with the desired set of
// working-hour starts. Reserved slots are never dropped: their starts are
// folded into the desired set before validation, so a customer's booking
// survives any timetable rewrite. Either the whole new timetable is applied
// or nothing changes.
func (s *Service) SetWorkingHours(ctx context.Context, doctorID uuid.UUID, desired []time.Time) ([]*Slot, error) {
	if _, err := s.doctors.ClinicIDByDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	var out []*Slot
	err := s.tx(ctx, func(ctx context.Context) error {
		if err := s.slots.LockDoctor(ctx, doctorID); err != nil {
			return err
		}

		reserved, err := s.slots.ListReservedByDoctor(ctx, doctorID)
		if err != nil {
			return err
		}

		merged := mergeStarts(desired, reserved)
		if err := validateSpacing(merged); err != nil {
			return err
		}

		if err := s.slots.DeleteFreeByDoctor(ctx, doctorID); err != nil {
			return err
		}

		for _, start := range merged {
			existing, err := s.slots.GetByDoctorAndStart(ctx, doctorID, start)
			if err == nil {
				out = append(out, existing)
				continue
			}
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			sl := &Slot{DoctorID: doctorID, StartTime: start}
			if err := s.slots.Create(ctx, sl); err != nil {
				return err
			}
			out = append(out, sl)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetWorkingHoursForClinic is SetWorkingHours with an ownership check: a
// clinic may only edit the timetable of its own doctors. A foreign doctor is
// reported as absent.
func (s *Service) SetWorkingHoursForClinic(ctx context.Context, clinicID, doctorID uuid.UUID, desired []time.Time) ([]*Slot, error) {
	if err := s.checkDoctorOwnership(ctx, clinicID, doctorID); err != nil {
		return nil, err
	}
	return s.SetWorkingHours(ctx, doctorID, desired)
}

func (s *Service) Timetable(ctx context.Context, doctorID uuid.UUID) ([]*Slot, error) {
	if _, err := s.doctors.ClinicIDByDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.slots.ListByDoctor(ctx, doctorID)
}

func (s *Service) TimetableForClinic(ctx context.Context, clinicID, doctorID uuid.UUID) ([]*Slot, error) {
	if err := s.checkDoctorOwnership(ctx, clinicID, doctorID); err != nil {
		return nil, err
	}
	return s.slots.ListByDoctor(ctx, doctorID)
}

func (s *Service) checkDoctorOwnership(ctx context.Context, clinicID, doctorID uuid.UUID) error {
	owner, err := s.doctors.ClinicIDByDoctor(ctx, doctorID)
	if err != nil {
		return err
	}
	if owner != clinicID {
		// Hide foreign doctors entirely.
		return ErrNotFound
	}
	return nil
}

// mergeStarts unions the desired starts with the starts of reserved slots.
// Desired order is preserved, duplicates are collapsed, and reserved starts
// missing from the desired set are appended.
func mergeStarts(desired []time.Time, reserved []*Slot) []time.Time {
	seen := make(map[time.Time]bool, len(desired)+len(reserved))
	merged := make([]time.Time, 0, len(desired)+len(reserved))
	for _, start := range desired {
		start = start.UTC()
		if seen[start] {
			continue
		}
		seen[start] = true
		merged = append(merged, start)
	}
	for _, sl := range reserved {
		start := sl.StartTime.UTC()
		if seen[start] {
			continue
		}
		seen[start] = true
		merged = append(merged, start)
	}
	return merged
}

// validateSpacing rejects any pair of starts closer than minSlotSpacing.
// Exactly an hour apart is allowed.
func validateSpacing(starts []time.Time) error {
	if len(starts) < 2 {
		return nil
	}
	sorted := make([]time.Time, len(starts))
	copy(sorted, starts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	for i := 0; i < len(sorted)-1; i++ {
		if sorted[i+1].Sub(sorted[i]) < minSlotSpacing {
			return ErrOverlappingSlots
		}
	}
	return nil
}

// -- Appointments --

// Book reserves a free slot for a customer. The appointment row is inserted
// before the reserved flag flips; if the flip loses the race the insert
// rolls back with it.
func (s *Service) Book(ctx context.Context, customerID, slotID uuid.UUID) (*Appointment, error) {
	var appt *Appointment
	err := s.tx(ctx, func(ctx context.Context) error {
		sl, err := s.slots.GetByID(ctx, slotID)
		if err != nil {
			return err
		}
		if sl.Reserved {
			return ErrSlotReserved
		}

		clinicID, err := s.doctors.ClinicIDByDoctor(ctx, sl.DoctorID)
		if err != nil {
			return err
		}

		appt = &Appointment{
			ClinicID:    clinicID,
			DoctorID:    sl.DoctorID,
			CustomerID:  customerID,
			TimetableID: sl.ID,
			StartTime:   sl.StartTime,
		}
		if err := s.appointments.Create(ctx, appt); err != nil {
			return err
		}
		return s.slots.Reserve(ctx, sl.ID)
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// Cancel frees the slot and removes the appointment. A foreign appointment
// is reported as absent rather than forbidden.
func (s *Service) Cancel(ctx context.Context, customerID, appointmentID uuid.UUID) error {
	return s.tx(ctx, func(ctx context.Context) error {
		appt, err := s.appointments.GetByID(ctx, appointmentID)
		if err != nil {
			return err
		}
		if appt.CustomerID != customerID {
			return ErrNotFound
		}
		if err := s.slots.Free(ctx, appt.TimetableID); err != nil {
			return err
		}
		return s.appointments.Delete(ctx, appt.ID)
	})
}

func (s *Service) AppointmentsByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByCustomer(ctx, customerID, limit, offset)
}

func (s *Service) AppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) AppointmentsByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByClinic(ctx, clinicID, limit, offset)
}

func (s *Service) AppointmentsForClinicDoctor(ctx context.Context, clinicID, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	if err := s.checkDoctorOwnership(ctx, clinicID, doctorID); err != nil {
		return nil, 0, err
	}
	return s.appointments.ListByDoctor(ctx, doctorID, limit, offset)
}

// HasAppointmentBetween reports whether the doctor and customer share at
// least one appointment. Used to gate chat creation.
func (s *Service) HasAppointmentBetween(ctx context.Context, doctorID, customerID uuid.UUID) (bool, error) {
	return s.appointments.ExistsForPair(ctx, doctorID, customerID)
}
