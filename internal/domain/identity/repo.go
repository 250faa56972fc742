package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists authentication records.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// ClinicRepository persists clinic profiles. The profile id equals the
// owning user's id.
type ClinicRepository interface {
	Create(ctx context.Context, c *Clinic) error
	GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error)
	Update(ctx context.Context, c *Clinic) error
	List(ctx context.Context, limit, offset int) ([]*Clinic, int, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*Doctor, error)
	List(ctx context.Context, limit, offset int) ([]*Doctor, int, error)
}

type CustomerRepository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	Update(ctx context.Context, c *Customer) error
}
