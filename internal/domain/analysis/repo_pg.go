package analysis

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) CreateBatch(ctx context.Context, items []*Analysis) error {
	for _, a := range items {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO analyses (id, customer_id, name, value, unit, taken_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			a.ID, a.CustomerID, a.Name, a.Value, a.Unit, a.Date)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	var a Analysis
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, customer_id, name, value, unit, taken_at
		FROM analyses WHERE id = $1`, id).
		Scan(&a.ID, &a.CustomerID, &a.Name, &a.Value, &a.Unit, &a.Date)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Analysis, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, customer_id, name, value, unit, taken_at
		FROM analyses WHERE customer_id = $1
		ORDER BY name ASC, taken_at ASC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Analysis
	for rows.Next() {
		var a Analysis
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.Name, &a.Value, &a.Unit, &a.Date); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	return err
}
