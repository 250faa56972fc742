package analysis

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateBatch(ctx context.Context, items []*Analysis) error
	GetByID(ctx context.Context, id uuid.UUID) (*Analysis, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Analysis, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
