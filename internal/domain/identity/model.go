package identity

import (
	"time"

	"github.com/google/uuid"
)

// User is the authentication record behind every principal. Profile rows
// (Clinic, Doctor, Customer) share the user's id.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type Clinic struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Email       string    `json:"email,omitempty"`
}

type Doctor struct {
	ID         uuid.UUID `json:"id"`
	ClinicID   uuid.UUID `json:"clinic_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Speciality string    `json:"speciality"`
	Email      string    `json:"email,omitempty"`
}

type Customer struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Age       int       `json:"age"`
	Weight    float64   `json:"weight"`
	Height    float64   `json:"height"`
	Gender    string    `json:"gender"`
	Email     string    `json:"email,omitempty"`
}

// Registration payloads.

type RegisterCustomerInput struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Age       int     `json:"age"`
	Weight    float64 `json:"weight"`
	Height    float64 `json:"height"`
	Gender    string  `json:"gender"`
}

type RegisterClinicInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type RegisterDoctorInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Speciality string `json:"speciality"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the authentication response: a signed bearer token plus the role
// it carries.
type Session struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Profile updates merge only the fields present in the request body; nil
// means "leave unchanged".

type ClinicUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type DoctorUpdate struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Speciality *string `json:"speciality"`
}

type CustomerUpdate struct {
	FirstName *string  `json:"first_name"`
	LastName  *string  `json:"last_name"`
	Age       *int     `json:"age"`
	Weight    *float64 `json:"weight"`
	Height    *float64 `json:"height"`
	Gender    *string  `json:"gender"`
}
