package identity

import (
	"context"
	"errors"

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

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

func notFoundOr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// =========== User Repository ===========

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository { return &userRepoPG{pool: pool} }

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	err := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, role)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at`,
		u.ID, u.Email, u.PasswordHash, u.Role).Scan(&u.CreatedAt)
	// The service checks the email before inserting, but two concurrent
	// registrations can both pass that check. The unique index on email is
	// the backstop; report its violation as the email being taken.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	return err
}

func (r *userRepoPG) scan(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, notFoundOr(err)
	}
	return &u, nil
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.scan(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, email, password_hash, role, created_at FROM users WHERE id = $1`, id))
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.scan(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, email, password_hash, role, created_at FROM users WHERE email = $1`, email))
}

// =========== Clinic Repository ===========

type clinicRepoPG struct{ pool *pgxpool.Pool }

func NewClinicRepoPG(pool *pgxpool.Pool) ClinicRepository { return &clinicRepoPG{pool: pool} }

func (r *clinicRepoPG) Create(ctx context.Context, c *Clinic) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO clinics (id, name, description) VALUES ($1,$2,$3)`,
		c.ID, c.Name, c.Description)
	return err
}

func (r *clinicRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	var c Clinic
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT c.id, c.name, c.description, u.email
		FROM clinics c JOIN users u ON u.id = c.id
		WHERE c.id = $1`, id).Scan(&c.ID, &c.Name, &c.Description, &c.Email)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &c, nil
}

func (r *clinicRepoPG) Update(ctx context.Context, c *Clinic) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE clinics SET name = $2, description = $3 WHERE id = $1`,
		c.ID, c.Name, c.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *clinicRepoPG) List(ctx context.Context, limit, offset int) ([]*Clinic, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM clinics`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, name, description FROM clinics
		ORDER BY name ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Clinic
	for rows.Next() {
		var c Clinic
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, 0, err
		}
		items = append(items, &c)
	}
	return items, total, rows.Err()
}

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

const doctorCols = `id, clinic_id, first_name, last_name, speciality`

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO doctors (id, clinic_id, first_name, last_name, speciality)
		VALUES ($1,$2,$3,$4,$5)`,
		d.ID, d.ClinicID, d.FirstName, d.LastName, d.Speciality)
	return err
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	var d Doctor
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id).
		Scan(&d.ID, &d.ClinicID, &d.FirstName, &d.LastName, &d.Speciality)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &d, nil
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE doctors SET first_name = $2, last_name = $3, speciality = $4
		WHERE id = $1`,
		d.ID, d.FirstName, d.LastName, d.Speciality)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *doctorRepoPG) collect(rows pgx.Rows) ([]*Doctor, error) {
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.ClinicID, &d.FirstName, &d.LastName, &d.Speciality); err != nil {
			return nil, err
		}
		items = append(items, &d)
	}
	return items, rows.Err()
}

func (r *doctorRepoPG) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*Doctor, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+doctorCols+` FROM doctors WHERE clinic_id = $1 ORDER BY last_name, first_name`, clinicID)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *doctorRepoPG) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+doctorCols+` FROM doctors ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// =========== Customer Repository ===========

type customerRepoPG struct{ pool *pgxpool.Pool }

func NewCustomerRepoPG(pool *pgxpool.Pool) CustomerRepository { return &customerRepoPG{pool: pool} }

func (r *customerRepoPG) Create(ctx context.Context, c *Customer) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO customers (id, first_name, last_name, age, weight, height, gender)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.FirstName, c.LastName, c.Age, c.Weight, c.Height, c.Gender)
	return err
}

func (r *customerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	var c Customer
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, first_name, last_name, age, weight, height, gender
		FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.FirstName, &c.LastName, &c.Age, &c.Weight, &c.Height, &c.Gender)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &c, nil
}

func (r *customerRepoPG) Update(ctx context.Context, c *Customer) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE customers SET first_name = $2, last_name = $3, age = $4,
			weight = $5, height = $6, gender = $7
		WHERE id = $1`,
		c.ID, c.FirstName, c.LastName, c.Age, c.Weight, c.Height, c.Gender)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
