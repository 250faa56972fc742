package analysis

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Add stores a batch of analysis entries for the customer.
func (s *Service) Add(ctx context.Context, customerID uuid.UUID, inputs []Input) ([]*Analysis, error) {
	items := make([]*Analysis, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, &Analysis{
			CustomerID: customerID,
			Name:       in.Name,
			Value:      in.Value,
			Unit:       in.Unit,
			Date:       in.Date,
		})
	}
	if err := s.repo.CreateBatch(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Grouped returns the customer's analyses as one series per name. The unit is
// taken from the first entry of each series.
func (s *Service) Grouped(ctx context.Context, customerID uuid.UUID) ([]*Group, error) {
	items, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*Group)
	var groups []*Group
	for _, a := range items {
		g, ok := byName[a.Name]
		if !ok {
			g = &Group{Name: a.Name, Unit: a.Unit}
			byName[a.Name] = g
			groups = append(groups, g)
		}
		g.Values = append(g.Values, GroupValue{ID: a.ID, Value: a.Value, Date: a.Date})
	}
	return groups, nil
}

// Delete removes an entry. Unlike the rest of the API, a foreign entry is
// reported as forbidden rather than hidden.
func (s *Service) Delete(ctx context.Context, customerID, id uuid.UUID) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.CustomerID != customerID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}
