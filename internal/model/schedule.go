package model

import "time"

// ScheduleStatus is the local vocabulary for court schedule states.
// SIPP emits free-text status values; the mapper normalizes them here.
type ScheduleStatus string

const (
	ScheduleScheduled ScheduleStatus = "scheduled"
	ScheduleOngoing   ScheduleStatus = "ongoing"
	ScheduleCompleted ScheduleStatus = "completed"
	SchedulePostponed ScheduleStatus = "postponed"
	ScheduleCancelled ScheduleStatus = "cancelled"
)

// Record-level sync bookkeeping, shared by all synced entity tables.
const (
	SyncStatePending = "pending"
	SyncStateSynced  = "synced"
	SyncStateError   = "error"
)

type CourtSchedule struct {
	ID         int64          `json:"id"`
	SippID     string         `json:"sipp_id"`
	CaseNumber string         `json:"case_number"`
	CaseTitle  string         `json:"case_title"`
	CaseType   string         `json:"case_type"`
	JudgeName  string         `json:"judge_name"`
	CourtRoom  string         `json:"court_room"`
	Date       *string        `json:"date"` // YYYY-MM-DD
	Time       *string        `json:"time"` // HH:MM:SS
	Agenda     string         `json:"agenda"`
	Status     ScheduleStatus `json:"status"`

	SyncStatus   string     `json:"sync_status"`
	LastSyncedAt *time.Time `json:"last_synced_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
