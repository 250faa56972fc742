package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/clinichub/clinichub/internal/platform/auth"
)

type Service struct {
	chats        ChatRepository
	messages     MessageRepository
	appointments AppointmentChecker
	doctors      DoctorDirectory
	customers    CustomerDirectory
}

func NewService(chats ChatRepository, messages MessageRepository,
	appointments AppointmentChecker, doctors DoctorDirectory, customers CustomerDirectory) *Service {
	return &Service{chats: chats, messages: messages, appointments: appointments,
		doctors: doctors, customers: customers}
}

// OpenChatAsCustomer creates the chat between the customer and the given
// doctor, or returns the existing one. A shared appointment is required.
func (s *Service) OpenChatAsCustomer(ctx context.Context, customerID, doctorID uuid.UUID) (*Chat, error) {
	clinicID, err := s.doctors.ClinicIDByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return s.openChat(ctx, clinicID, doctorID, customerID)
}

// OpenChatAsDoctor is the doctor-initiated counterpart.
func (s *Service) OpenChatAsDoctor(ctx context.Context, doctorID, customerID uuid.UUID) (*Chat, error) {
	ok, err := s.customers.CustomerExists(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	clinicID, err := s.doctors.ClinicIDByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return s.openChat(ctx, clinicID, doctorID, customerID)
}

func (s *Service) openChat(ctx context.Context, clinicID, doctorID, customerID uuid.UUID) (*Chat, error) {
	ok, err := s.appointments.HasAppointmentBetween(ctx, doctorID, customerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoAppointment
	}

	existing, err := s.chats.GetByPair(ctx, doctorID, customerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	ch := &Chat{ClinicID: clinicID, DoctorID: doctorID, CustomerID: customerID}
	if err := s.chats.Create(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *Service) ChatsByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Chat, error) {
	return s.chats.ListByCustomer(ctx, customerID)
}

func (s *Service) ChatsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Chat, error) {
	return s.chats.ListByDoctor(ctx, doctorID)
}

// MessagesAsCustomer lists a chat's messages for its customer side. A chat
// belonging to someone else is reported as absent.
func (s *Service) MessagesAsCustomer(ctx context.Context, customerID, chatID uuid.UUID) ([]*Message, error) {
	ch, err := s.chatOwnedBy(ctx, chatID, customerID, auth.RoleCustomer)
	if err != nil {
		return nil, err
	}
	return s.messages.ListByChat(ctx, ch.ID)
}

func (s *Service) MessagesAsDoctor(ctx context.Context, doctorID, chatID uuid.UUID) ([]*Message, error) {
	ch, err := s.chatOwnedBy(ctx, chatID, doctorID, auth.RoleDoctor)
	if err != nil {
		return nil, err
	}
	return s.messages.ListByChat(ctx, ch.ID)
}

// PostMessageAsCustomer appends a message and returns the full thread, which
// is what clients render after sending.
func (s *Service) PostMessageAsCustomer(ctx context.Context, customerID, chatID uuid.UUID, text string) ([]*Message, error) {
	return s.postMessage(ctx, chatID, customerID, auth.RoleCustomer, text)
}

func (s *Service) PostMessageAsDoctor(ctx context.Context, doctorID, chatID uuid.UUID, text string) ([]*Message, error) {
	return s.postMessage(ctx, chatID, doctorID, auth.RoleDoctor, text)
}

func (s *Service) postMessage(ctx context.Context, chatID, principal uuid.UUID, role, text string) ([]*Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	ch, err := s.chatOwnedBy(ctx, chatID, principal, role)
	if err != nil {
		return nil, err
	}
	msg := &Message{ChatID: ch.ID, SenderRole: role, Text: text}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return s.messages.ListByChat(ctx, ch.ID)
}

func (s *Service) chatOwnedBy(ctx context.Context, chatID, principal uuid.UUID, role string) (*Chat, error) {
	ch, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	var owner uuid.UUID
	switch role {
	case auth.RoleCustomer:
		owner = ch.CustomerID
	case auth.RoleDoctor:
		owner = ch.DoctorID
	}
	if owner != principal {
		return nil, ErrNotFound
	}
	return ch, nil
}
