package chat

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

// =========== Chat Repository ===========

type chatRepoPG struct{ pool *pgxpool.Pool }

func NewChatRepoPG(pool *pgxpool.Pool) ChatRepository { return &chatRepoPG{pool: pool} }

func (r *chatRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const chatCols = `id, clinic_id, doctor_id, customer_id, created_at`

func (r *chatRepoPG) scan(row pgx.Row) (*Chat, error) {
	var ch Chat
	err := row.Scan(&ch.ID, &ch.ClinicID, &ch.DoctorID, &ch.CustomerID, &ch.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *chatRepoPG) Create(ctx context.Context, ch *Chat) error {
	if ch.ID == uuid.Nil {
		ch.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO chats (id, clinic_id, doctor_id, customer_id)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at`,
		ch.ID, ch.ClinicID, ch.DoctorID, ch.CustomerID).Scan(&ch.CreatedAt)
}

func (r *chatRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Chat, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+chatCols+` FROM chats WHERE id = $1`, id))
}

func (r *chatRepoPG) GetByPair(ctx context.Context, doctorID, customerID uuid.UUID) (*Chat, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+chatCols+` FROM chats WHERE doctor_id = $1 AND customer_id = $2`,
		doctorID, customerID))
}

func (r *chatRepoPG) list(ctx context.Context, query string, args ...interface{}) ([]*Chat, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Chat
	for rows.Next() {
		var ch Chat
		if err := rows.Scan(&ch.ID, &ch.ClinicID, &ch.DoctorID, &ch.CustomerID, &ch.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &ch)
	}
	return items, rows.Err()
}

func (r *chatRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Chat, error) {
	return r.list(ctx, `SELECT `+chatCols+` FROM chats WHERE doctor_id = $1 ORDER BY created_at DESC`, doctorID)
}

func (r *chatRepoPG) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Chat, error) {
	return r.list(ctx, `SELECT `+chatCols+` FROM chats WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
}

// =========== Message Repository ===========

type messageRepoPG struct{ pool *pgxpool.Pool }

func NewMessageRepoPG(pool *pgxpool.Pool) MessageRepository { return &messageRepoPG{pool: pool} }

func (r *messageRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *messageRepoPG) Create(ctx context.Context, m *Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO messages (id, chat_id, sender_role, text)
		VALUES ($1,$2,$3,$4)
		RETURNING sent_at`,
		m.ID, m.ChatID, m.SenderRole, m.Text).Scan(&m.SentAt)
}

func (r *messageRepoPG) ListByChat(ctx context.Context, chatID uuid.UUID) ([]*Message, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, chat_id, sender_role, text, sent_at
		FROM messages WHERE chat_id = $1 ORDER BY sent_at ASC`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderRole, &m.Text, &m.SentAt); err != nil {
			return nil, err
		}
		items = append(items, &m)
	}
	return items, rows.Err()
}
