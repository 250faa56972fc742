package chat

import (
	"time"

	"github.com/google/uuid"
)

// Chat links one doctor and one customer. At most one chat exists per pair.
type Chat struct {
	ID         uuid.UUID `json:"id"`
	ClinicID   uuid.UUID `json:"clinic_id"`
	DoctorID   uuid.UUID `json:"doctor_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type Message struct {
	ID         uuid.UUID `json:"id"`
	ChatID     uuid.UUID `json:"chat_id"`
	SenderRole string    `json:"sender_role"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"sent_at"`
}
