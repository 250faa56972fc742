package analysis

import (
	"time"

	"github.com/google/uuid"
)

// Analysis is a single lab result entry belonging to a customer.
type Analysis struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Name       string    `json:"name"`
	Value      string    `json:"value"`
	Unit       string    `json:"unit"`
	Date       time.Time `json:"date"`
}

type Input struct {
	Name  string    `json:"name"`
	Value string    `json:"value"`
	Unit  string    `json:"unit"`
	Date  time.Time `json:"date"`
}

// Group is the list shape clients render: one series per analysis name.
type Group struct {
	Name   string       `json:"name"`
	Unit   string       `json:"unit"`
	Values []GroupValue `json:"values"`
}

type GroupValue struct {
	ID    uuid.UUID `json:"id"`
	Value string    `json:"value"`
	Date  time.Time `json:"date"`
}
