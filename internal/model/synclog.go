package model

import (
	"encoding/json"
	"time"
)

const (
	SyncTypeFull        = "full"
	SyncTypeIncremental = "incremental"

	SyncRunRunning = "running"
	SyncRunSuccess = "success"
	SyncRunFailed  = "failed"

	SyncTriggerSystem = "system"
	SyncTriggerUser   = "user"
)

// SyncLog is one row per sync invocation, kept for audit. The engine
// writes it twice: once at start (running) and once at the end.
type SyncLog struct {
	ID           int64           `json:"id"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	TriggeredBy  string          `json:"triggered_by"`
	StartedAt    time.Time       `json:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	Stats        json.RawMessage `json:"stats,omitempty"`
}

// EntityStats holds the per-entity-type counters for one run.
type EntityStats struct {
	Synced      int        `json:"synced"`
	Updated     int        `json:"updated"`
	Failed      int        `json:"failed"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// SyncStats aggregates counters keyed by entity type
// (schedules, cases, judges, court_rooms, case_types).
type SyncStats map[string]*EntityStats

// Start registers an entity type and stamps its start time.
func (s SyncStats) Start(entity string) *EntityStats {
	now := time.Now()
	st := &EntityStats{StartedAt: &now}
	s[entity] = st
	return st
}

// Finish stamps the completion time, also on failed batches so the
// persisted stats still show how far the run got.
func (e *EntityStats) Finish() {
	now := time.Now()
	e.CompletedAt = &now
}

func (s SyncStats) Marshal() json.RawMessage {
	b, err := json.Marshal(s)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}
