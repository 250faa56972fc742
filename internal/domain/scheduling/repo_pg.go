package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinichub/clinichub/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Slot Repository ===========

type slotRepoPG struct{ pool *pgxpool.Pool }

func NewSlotRepoPG(pool *pgxpool.Pool) SlotRepository { return &slotRepoPG{pool: pool} }

func (r *slotRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const slotCols = `id, doctor_id, start_time, reserved`

func (r *slotRepoPG) scanSlot(row pgx.Row) (*Slot, error) {
	var sl Slot
	err := row.Scan(&sl.ID, &sl.DoctorID, &sl.StartTime, &sl.Reserved)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sl, nil
}

func (r *slotRepoPG) Create(ctx context.Context, sl *Slot) error {
	if sl.ID == uuid.Nil {
		sl.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO timetable (id, doctor_id, start_time, reserved)
		VALUES ($1,$2,$3,$4)`,
		sl.ID, sl.DoctorID, sl.StartTime, sl.Reserved)
	return err
}

func (r *slotRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	return r.scanSlot(r.conn(ctx).QueryRow(ctx, `SELECT `+slotCols+` FROM timetable WHERE id = $1`, id))
}

func (r *slotRepoPG) GetByDoctorAndStart(ctx context.Context, doctorID uuid.UUID, start time.Time) (*Slot, error) {
	return r.scanSlot(r.conn(ctx).QueryRow(ctx,
		`SELECT `+slotCols+` FROM timetable WHERE doctor_id = $1 AND start_time = $2`, doctorID, start))
}

func (r *slotRepoPG) list(ctx context.Context, query string, args ...interface{}) ([]*Slot, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Slot
	for rows.Next() {
		var sl Slot
		if err := rows.Scan(&sl.ID, &sl.DoctorID, &sl.StartTime, &sl.Reserved); err != nil {
			return nil, err
		}
		items = append(items, &sl)
	}
	return items, rows.Err()
}

func (r *slotRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Slot, error) {
	return r.list(ctx, `SELECT `+slotCols+` FROM timetable WHERE doctor_id = $1 ORDER BY start_time ASC`, doctorID)
}

func (r *slotRepoPG) ListReservedByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Slot, error) {
	return r.list(ctx, `SELECT `+slotCols+` FROM timetable WHERE doctor_id = $1 AND reserved ORDER BY start_time ASC`, doctorID)
}

func (r *slotRepoPG) DeleteFreeByDoctor(ctx context.Context, doctorID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM timetable WHERE doctor_id = $1 AND NOT reserved`, doctorID)
	return err
}

func (r *slotRepoPG) Reserve(ctx context.Context, id uuid.UUID) error {
	// Compare-and-swap: only a free slot can be taken, so two concurrent
	// bookers cannot both win.
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE timetable SET reserved = TRUE WHERE id = $1 AND NOT reserved`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.conn(ctx).QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM timetable WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrSlotReserved
	}
	return nil
}

func (r *slotRepoPG) Free(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE timetable SET reserved = FALSE WHERE id = $1`, id)
	return err
}

func (r *slotRepoPG) LockDoctor(ctx context.Context, doctorID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, doctorID)
	return err
}

// =========== Appointment Repository ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apptCols = `a.id, a.clinic_id, a.doctor_id, a.customer_id, a.timetable_id, t.start_time, a.created_at`

func (r *appointmentRepoPG) scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.ClinicID, &a.DoctorID, &a.CustomerID, &a.TimetableID, &a.StartTime, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (id, clinic_id, doctor_id, customer_id, timetable_id)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		a.ID, a.ClinicID, a.DoctorID, a.CustomerID, a.TimetableID).Scan(&a.CreatedAt)
	// Two bookers can both read the slot as free before either commits. The
	// loser then blocks on the winner's uncommitted row and fails here, on
	// the timetable_id unique constraint, before it ever reaches the CAS on
	// timetable.reserved. Surface that as the slot being taken.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uq_appointments_timetable" {
		return ErrSlotReserved
	}
	return err
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scanAppt(r.conn(ctx).QueryRow(ctx, `
		SELECT `+apptCols+` FROM appointments a
		JOIN timetable t ON t.id = a.timetable_id
		WHERE a.id = $1`, id))
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	return err
}

func (r *appointmentRepoPG) listBy(ctx context.Context, column string, id uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE `+column+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointments a
		JOIN timetable t ON t.id = a.timetable_id
		WHERE a.`+column+` = $1
		ORDER BY t.start_time ASC LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.ClinicID, &a.DoctorID, &a.CustomerID, &a.TimetableID, &a.StartTime, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &a)
	}
	return items, total, rows.Err()
}

func (r *appointmentRepoPG) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.listBy(ctx, "customer_id", customerID, limit, offset)
}

func (r *appointmentRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.listBy(ctx, "doctor_id", doctorID, limit, offset)
}

func (r *appointmentRepoPG) ListByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.listBy(ctx, "clinic_id", clinicID, limit, offset)
}

func (r *appointmentRepoPG) ExistsForPair(ctx context.Context, doctorID, customerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM appointments WHERE doctor_id = $1 AND customer_id = $2)`,
		doctorID, customerID).Scan(&exists)
	return exists, err
}
