package model

import (
	"encoding/json"
	"time"
)

const NotificationSyncFailed = "sipp_sync_failed"

// AdminNotification mirrors the notifications table consumed by the
// admin panel. Sync failures fan out one row per admin.
type AdminNotification struct {
	ID        string          `json:"id"`
	AdminID   string          `json:"admin_id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
