package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinichub/clinichub/internal/platform/auth"
)

type mockChatRepo struct {
	chats map[uuid.UUID]*Chat
}

func newMockChatRepo() *mockChatRepo {
	return &mockChatRepo{chats: make(map[uuid.UUID]*Chat)}
}

func (m *mockChatRepo) Create(ctx context.Context, ch *Chat) error {
	if ch.ID == uuid.Nil {
		ch.ID = uuid.New()
	}
	ch.CreatedAt = time.Now()
	cp := *ch
	m.chats[ch.ID] = &cp
	return nil
}

func (m *mockChatRepo) GetByID(ctx context.Context, id uuid.UUID) (*Chat, error) {
	ch, ok := m.chats[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *ch
	return &cp, nil
}

func (m *mockChatRepo) GetByPair(ctx context.Context, doctorID, customerID uuid.UUID) (*Chat, error) {
	for _, ch := range m.chats {
		if ch.DoctorID == doctorID && ch.CustomerID == customerID {
			cp := *ch
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockChatRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Chat, error) {
	var out []*Chat
	for _, ch := range m.chats {
		if ch.DoctorID == doctorID {
			cp := *ch
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockChatRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Chat, error) {
	var out []*Chat
	for _, ch := range m.chats {
		if ch.CustomerID == customerID {
			cp := *ch
			out = append(out, &cp)
		}
	}
	return out, nil
}

type mockMessageRepo struct {
	messages []*Message
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *Message) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	msg.SentAt = time.Now()
	cp := *msg
	m.messages = append(m.messages, &cp)
	return nil
}

func (m *mockMessageRepo) ListByChat(ctx context.Context, chatID uuid.UUID) ([]*Message, error) {
	var out []*Message
	for _, msg := range m.messages {
		if msg.ChatID == chatID {
			cp := *msg
			out = append(out, &cp)
		}
	}
	return out, nil
}

type mockAppointments struct {
	pairs map[[2]uuid.UUID]bool
}

func (m *mockAppointments) HasAppointmentBetween(ctx context.Context, doctorID, customerID uuid.UUID) (bool, error) {
	return m.pairs[[2]uuid.UUID{doctorID, customerID}], nil
}

type mockDoctors struct {
	clinics map[uuid.UUID]uuid.UUID
}

func (m *mockDoctors) ClinicIDByDoctor(ctx context.Context, doctorID uuid.UUID) (uuid.UUID, error) {
	cid, ok := m.clinics[doctorID]
	if !ok {
		return uuid.Nil, ErrNotFound
	}
	return cid, nil
}

type mockCustomers struct {
	known map[uuid.UUID]bool
}

func (m *mockCustomers) CustomerExists(ctx context.Context, customerID uuid.UUID) (bool, error) {
	return m.known[customerID], nil
}

type chatEnv struct {
	svc        *Service
	chats      *mockChatRepo
	messages   *mockMessageRepo
	appts      *mockAppointments
	doctorID   uuid.UUID
	customerID uuid.UUID
	clinicID   uuid.UUID
}

func newChatEnv() *chatEnv {
	env := &chatEnv{
		chats:      newMockChatRepo(),
		messages:   &mockMessageRepo{},
		doctorID:   uuid.New(),
		customerID: uuid.New(),
		clinicID:   uuid.New(),
	}
	env.appts = &mockAppointments{pairs: map[[2]uuid.UUID]bool{
		{env.doctorID, env.customerID}: true,
	}}
	doctors := &mockDoctors{clinics: map[uuid.UUID]uuid.UUID{env.doctorID: env.clinicID}}
	customers := &mockCustomers{known: map[uuid.UUID]bool{env.customerID: true}}
	env.svc = NewService(env.chats, env.messages, env.appts, doctors, customers)
	return env
}

func TestOpenChatAsCustomer_CreatesChat(t *testing.T) {
	env := newChatEnv()

	ch, err := env.svc.OpenChatAsCustomer(context.Background(), env.customerID, env.doctorID)
	if err != nil {
		t.Fatalf("OpenChatAsCustomer() error: %v", err)
	}
	if ch.DoctorID != env.doctorID || ch.CustomerID != env.customerID || ch.ClinicID != env.clinicID {
		t.Errorf("unexpected chat parties: %+v", ch)
	}
}

func TestOpenChatAsCustomer_ReturnsExisting(t *testing.T) {
	env := newChatEnv()

	first, err := env.svc.OpenChatAsCustomer(context.Background(), env.customerID, env.doctorID)
	if err != nil {
		t.Fatalf("first open error: %v", err)
	}
	second, err := env.svc.OpenChatAsCustomer(context.Background(), env.customerID, env.doctorID)
	if err != nil {
		t.Fatalf("second open error: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected the same chat, got %s and %s", first.ID, second.ID)
	}
	if len(env.chats.chats) != 1 {
		t.Errorf("expected exactly one chat, found %d", len(env.chats.chats))
	}
}

func TestOpenChatAsCustomer_NoAppointment(t *testing.T) {
	env := newChatEnv()
	env.appts.pairs = nil

	_, err := env.svc.OpenChatAsCustomer(context.Background(), env.customerID, env.doctorID)
	if !errors.Is(err, ErrNoAppointment) {
		t.Fatalf("expected ErrNoAppointment, got %v", err)
	}
}

func TestOpenChatAsCustomer_UnknownDoctor(t *testing.T) {
	env := newChatEnv()

	_, err := env.svc.OpenChatAsCustomer(context.Background(), env.customerID, uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenChatAsDoctor_UnknownCustomer(t *testing.T) {
	env := newChatEnv()

	_, err := env.svc.OpenChatAsDoctor(context.Background(), env.doctorID, uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenChatAsDoctor_SamePairAsCustomerSide(t *testing.T) {
	env := newChatEnv()

	fromCustomer, err := env.svc.OpenChatAsCustomer(context.Background(), env.customerID, env.doctorID)
	if err != nil {
		t.Fatalf("customer open error: %v", err)
	}
	fromDoctor, err := env.svc.OpenChatAsDoctor(context.Background(), env.doctorID, env.customerID)
	if err != nil {
		t.Fatalf("doctor open error: %v", err)
	}
	if fromCustomer.ID != fromDoctor.ID {
		t.Errorf("expected both sides to share one chat")
	}
}

func TestPostMessage_RoundTrip(t *testing.T) {
	env := newChatEnv()

	ch, err := env.svc.OpenChatAsCustomer(context.Background(), env.customerID, env.doctorID)
	if err != nil {
		t.Fatalf("open error: %v", err)
	}

	thread, err := env.svc.PostMessageAsCustomer(context.Background(), env.customerID, ch.ID, "hello doctor")
	if err != nil {
		t.Fatalf("PostMessageAsCustomer() error: %v", err)
	}
	if len(thread) != 1 || thread[0].SenderRole != auth.RoleCustomer {
		t.Fatalf("unexpected thread after first message: %+v", thread)
	}

	thread, err = env.svc.PostMessageAsDoctor(context.Background(), env.doctorID, ch.ID, "hello")
	if err != nil {
		t.Fatalf("PostMessageAsDoctor() error: %v", err)
	}
	if len(thread) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(thread))
	}
	if thread[1].SenderRole != auth.RoleDoctor {
		t.Errorf("second message sender = %s, want %s", thread[1].SenderRole, auth.RoleDoctor)
	}
}

func TestPostMessage_EmptyTextRejected(t *testing.T) {
	env := newChatEnv()

	ch, err := env.svc.OpenChatAsCustomer(context.Background(), env.customerID, env.doctorID)
	if err != nil {
		t.Fatalf("open error: %v", err)
	}

	_, err = env.svc.PostMessageAsCustomer(context.Background(), env.customerID, ch.ID, "   ")
	if !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestPostMessage_ForeignChatHidden(t *testing.T) {
	env := newChatEnv()

	ch, err := env.svc.OpenChatAsCustomer(context.Background(), env.customerID, env.doctorID)
	if err != nil {
		t.Fatalf("open error: %v", err)
	}

	_, err = env.svc.PostMessageAsCustomer(context.Background(), uuid.New(), ch.ID, "hi")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign customer, got %v", err)
	}
	_, err = env.svc.MessagesAsDoctor(context.Background(), uuid.New(), ch.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign doctor, got %v", err)
	}
}
