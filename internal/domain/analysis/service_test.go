package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	items map[uuid.UUID]*Analysis
	order []uuid.UUID
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Analysis)}
}

func (m *mockRepo) CreateBatch(ctx context.Context, items []*Analysis) error {
	for _, a := range items {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		cp := *a
		m.items[a.ID] = &cp
		m.order = append(m.order, a.ID)
	}
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Analysis, error) {
	var out []*Analysis
	for _, id := range m.order {
		a, ok := m.items[id]
		if !ok || a.CustomerID != customerID {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 8, 0, 0, 0, time.UTC)
}

func TestAdd_StoresBatchForCustomer(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	customerID := uuid.New()

	items, err := svc.Add(context.Background(), customerID, []Input{
		{Name: "hemoglobin", Value: "140", Unit: "g/l", Date: day(1)},
		{Name: "glucose", Value: "5.2", Unit: "mmol/l", Date: day(1)},
	})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	for _, a := range items {
		if a.CustomerID != customerID {
			t.Errorf("item not linked to customer: %+v", a)
		}
		if a.ID == uuid.Nil {
			t.Error("item id not assigned")
		}
	}
}

func TestGrouped_SeriesPerName(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	customerID := uuid.New()

	_, err := svc.Add(context.Background(), customerID, []Input{
		{Name: "hemoglobin", Value: "140", Unit: "g/l", Date: day(1)},
		{Name: "hemoglobin", Value: "138", Unit: "g/l", Date: day(10)},
		{Name: "glucose", Value: "5.2", Unit: "mmol/l", Date: day(1)},
	})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	groups, err := svc.Grouped(context.Background(), customerID)
	if err != nil {
		t.Fatalf("Grouped() error: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	byName := make(map[string]*Group)
	for _, g := range groups {
		byName[g.Name] = g
	}
	hb := byName["hemoglobin"]
	if hb == nil || len(hb.Values) != 2 || hb.Unit != "g/l" {
		t.Errorf("unexpected hemoglobin series: %+v", hb)
	}
	gl := byName["glucose"]
	if gl == nil || len(gl.Values) != 1 {
		t.Errorf("unexpected glucose series: %+v", gl)
	}
}

func TestGrouped_OtherCustomersExcluded(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	customerID := uuid.New()

	if _, err := svc.Add(context.Background(), uuid.New(), []Input{
		{Name: "hemoglobin", Value: "120", Unit: "g/l", Date: day(1)},
	}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	groups, err := svc.Grouped(context.Background(), customerID)
	if err != nil {
		t.Fatalf("Grouped() error: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("expected no groups, got %d", len(groups))
	}
}

func TestDelete_RemovesOwnEntry(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	customerID := uuid.New()

	items, err := svc.Add(context.Background(), customerID, []Input{
		{Name: "hemoglobin", Value: "140", Unit: "g/l", Date: day(1)},
	})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	if err := svc.Delete(context.Background(), customerID, items[0].ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), items[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected entry to be gone, got %v", err)
	}
}

func TestDelete_ForeignEntryForbidden(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	items, err := svc.Add(context.Background(), uuid.New(), []Input{
		{Name: "hemoglobin", Value: "140", Unit: "g/l", Date: day(1)},
	})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	err = svc.Delete(context.Background(), uuid.New(), items[0].ID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := repo.GetByID(context.Background(), items[0].ID); err != nil {
		t.Error("entry deleted despite forbidden error")
	}
}

func TestDelete_MissingEntry(t *testing.T) {
	svc := NewService(newMockRepo())
	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
