package model

import "time"

// Judges, court rooms and case types are small reference tables pulled
// whole from SIPP on every full sync. Their natural keys are name/code,
// not a numeric SIPP id.

type Judge struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	NIP      string `json:"nip"`
	Rank     string `json:"rank"`
	Position string `json:"position"`

	SyncStatus   string     `json:"sync_status"`
	LastSyncedAt *time.Time `json:"last_synced_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CourtRoom struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`

	SyncStatus   string     `json:"sync_status"`
	LastSyncedAt *time.Time `json:"last_synced_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CaseType struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`

	SyncStatus   string     `json:"sync_status"`
	LastSyncedAt *time.Time `json:"last_synced_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
