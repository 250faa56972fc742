package scheduling

import "errors"

var (
	// ErrNotFound covers absent slots, doctors, and appointments, including
	// appointments that exist but belong to another customer.
	ErrNotFound = errors.New("not found")

	// ErrSlotReserved is returned when booking a slot that is already taken.
	ErrSlotReserved = errors.New("timetable is already reserved")

	// ErrOverlappingSlots is returned when a desired timetable would place
	// two working hours less than an hour apart.
	ErrOverlappingSlots = errors.New("working hours overlap")
)
