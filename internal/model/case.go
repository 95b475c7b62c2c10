package model

import "time"

type CaseStatus string

const (
	CaseOpen      CaseStatus = "open"
	CaseOngoing   CaseStatus = "ongoing"
	CaseCompleted CaseStatus = "completed"
	CaseClosed    CaseStatus = "closed"
)

type CourtCase struct {
	ID           int64      `json:"id"`
	SippCaseID   string     `json:"sipp_case_id"`
	CaseNumber   string     `json:"case_number"`
	Title        string     `json:"title"`
	CaseType     string     `json:"case_type"`
	Plaintiff    string     `json:"plaintiff"`
	Defendant    string     `json:"defendant"`
	JudgeName    string     `json:"judge_name"`
	RegisterDate *string    `json:"register_date"` // YYYY-MM-DD
	Status       CaseStatus `json:"status"`
	Notes        string     `json:"notes"`

	SyncStatus   string     `json:"sync_status"`
	LastSyncedAt *time.Time `json:"last_synced_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
