package db

import (
	"encoding/json"
	"testing"
)

func TestPoolStats_JSONShape(t *testing.T) {
	stats := &PoolStats{
		TotalConns:      10,
		IdleConns:       5,
		AcquiredConns:   5,
		MaxConns:        20,
		AcquireCount:    100,
		AcquireDuration: "1.5s",
		Healthy:         true,
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		t.Fatalf("marshal pool stats: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal pool stats: %v", err)
	}

	for _, key := range []string{
		"total_conns", "idle_conns", "acquired_conns", "max_conns",
		"acquire_count", "acquire_duration", "healthy",
	} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing %q in pool stats JSON", key)
		}
	}
	if decoded["healthy"] != true {
		t.Errorf("expected healthy true, got %v", decoded["healthy"])
	}
}

func TestHealthReport_OmitsEmptyError(t *testing.T) {
	raw, err := json.Marshal(healthReport{Status: "healthy", Pool: &PoolStats{}})
	if err != nil {
		t.Fatalf("marshal health report: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal health report: %v", err)
	}
	if _, ok := decoded["error"]; ok {
		t.Error("expected error field to be omitted when empty")
	}
	if decoded["status"] != "healthy" {
		t.Errorf("expected status healthy, got %v", decoded["status"])
	}
}
