package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinichub/clinichub/internal/platform/auth"
)

// TxRunner runs fn atomically. Registration writes two rows (user + profile)
// and must not leave one without the other.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	tx        TxRunner
	users     UserRepository
	clinics   ClinicRepository
	doctors   DoctorRepository
	customers CustomerRepository
	issuer    *auth.TokenIssuer
}

func NewService(tx TxRunner, users UserRepository, clinics ClinicRepository,
	doctors DoctorRepository, customers CustomerRepository, issuer *auth.TokenIssuer) *Service {
	return &Service{tx: tx, users: users, clinics: clinics, doctors: doctors,
		customers: customers, issuer: issuer}
}

// -- Registration and login --

func (s *Service) RegisterCustomer(ctx context.Context, in RegisterCustomerInput) (*Session, error) {
	if in.Email == "" || in.Password == "" || in.FirstName == "" || in.LastName == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.createUser(ctx, in.Email, in.Password, auth.RoleCustomer, func(ctx context.Context, userID uuid.UUID) error {
		return s.customers.Create(ctx, &Customer{
			ID:        userID,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Age:       in.Age,
			Weight:    in.Weight,
			Height:    in.Height,
			Gender:    in.Gender,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

func (s *Service) RegisterClinic(ctx context.Context, in RegisterClinicInput) (*Session, error) {
	if in.Email == "" || in.Password == "" || in.Name == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.createUser(ctx, in.Email, in.Password, auth.RoleClinic, func(ctx context.Context, userID uuid.UUID) error {
		return s.clinics.Create(ctx, &Clinic{
			ID:          userID,
			Name:        in.Name,
			Description: in.Description,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

// RegisterDoctor creates a doctor account under the given clinic. Only the
// clinic itself may call this.
func (s *Service) RegisterDoctor(ctx context.Context, clinicID uuid.UUID, in RegisterDoctorInput) (*Session, error) {
	if in.Email == "" || in.Password == "" || in.FirstName == "" || in.LastName == "" || in.Speciality == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.clinics.GetByID(ctx, clinicID); err != nil {
		return nil, err
	}
	user, err := s.createUser(ctx, in.Email, in.Password, auth.RoleDoctor, func(ctx context.Context, userID uuid.UUID) error {
		return s.doctors.Create(ctx, &Doctor{
			ID:         userID,
			ClinicID:   clinicID,
			FirstName:  in.FirstName,
			LastName:   in.LastName,
			Speciality: in.Speciality,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

func (s *Service) createUser(ctx context.Context, email, password, role string,
	createProfile func(ctx context.Context, userID uuid.UUID) error) (*User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{Email: email, PasswordHash: string(hash), Role: role}
	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		return createProfile(ctx, user.ID)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, creds Credentials) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, creds.Email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(user)
}

func (s *Service) session(user *User) (*Session, error) {
	token, err := s.issuer.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Role: user.Role}, nil
}

// -- Profiles --

func (s *Service) ClinicByID(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	return s.clinics.GetByID(ctx, id)
}

func (s *Service) UpdateClinic(ctx context.Context, id uuid.UUID, upd ClinicUpdate) (*Clinic, error) {
	clinic, err := s.clinics.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		clinic.Name = *upd.Name
	}
	if upd.Description != nil {
		clinic.Description = *upd.Description
	}
	if err := s.clinics.Update(ctx, clinic); err != nil {
		return nil, err
	}
	return clinic, nil
}

func (s *Service) DoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

// DoctorForClinic resolves a doctor only when it belongs to the given clinic;
// foreign doctors are reported as absent.
func (s *Service) DoctorForClinic(ctx context.Context, clinicID, doctorID uuid.UUID) (*Doctor, error) {
	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if doctor.ClinicID != clinicID {
		return nil, ErrNotFound
	}
	return doctor, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, upd DoctorUpdate) (*Doctor, error) {
	doctor, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.FirstName != nil {
		doctor.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		doctor.LastName = *upd.LastName
	}
	if upd.Speciality != nil {
		doctor.Speciality = *upd.Speciality
	}
	if err := s.doctors.Update(ctx, doctor); err != nil {
		return nil, err
	}
	return doctor, nil
}

func (s *Service) CustomerByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return s.customers.GetByID(ctx, id)
}

func (s *Service) UpdateCustomer(ctx context.Context, id uuid.UUID, upd CustomerUpdate) (*Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.FirstName != nil {
		customer.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		customer.LastName = *upd.LastName
	}
	if upd.Age != nil {
		customer.Age = *upd.Age
	}
	if upd.Weight != nil {
		customer.Weight = *upd.Weight
	}
	if upd.Height != nil {
		customer.Height = *upd.Height
	}
	if upd.Gender != nil {
		customer.Gender = *upd.Gender
	}
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// -- Directory --

func (s *Service) Clinics(ctx context.Context, limit, offset int) ([]*Clinic, int, error) {
	return s.clinics.List(ctx, limit, offset)
}

func (s *Service) Doctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, limit, offset)
}

func (s *Service) DoctorsByClinic(ctx context.Context, clinicID uuid.UUID) ([]*Doctor, error) {
	if _, err := s.clinics.GetByID(ctx, clinicID); err != nil {
		return nil, err
	}
	return s.doctors.ListByClinic(ctx, clinicID)
}

// ClinicIDByDoctor resolves a doctor to its clinic. The scheduling and chat
// domains depend on this lookup through their own narrow interfaces.
func (s *Service) ClinicIDByDoctor(ctx context.Context, doctorID uuid.UUID) (uuid.UUID, error) {
	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return uuid.Nil, err
	}
	return doctor.ClinicID, nil
}

// CustomerExists reports whether a customer profile is present.
func (s *Service) CustomerExists(ctx context.Context, customerID uuid.UUID) (bool, error) {
	_, err := s.customers.GetByID(ctx, customerID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
