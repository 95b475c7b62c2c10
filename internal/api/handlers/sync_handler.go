package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yudhap12/go-sipp-backend/internal/model"
	"github.com/yudhap12/go-sipp-backend/internal/repository"
	"github.com/yudhap12/go-sipp-backend/internal/service"
)

// ISyncService lets the handler run against the real engine or a mock.
type ISyncService interface {
	FullSync(ctx context.Context, triggeredBy string, window service.DateWindow) (*service.SyncResult, error)
	IncrementalSync(ctx context.Context, since *time.Time, triggeredBy string) (*service.SyncResult, error)
	IsRunning() bool
}

type SyncHandler struct {
	Sync ISyncService
	Repo *repository.PostgresRepo
	Log  *logrus.Logger
}

func NewSyncHandler(s ISyncService, r *repository.PostgresRepo, log *logrus.Logger) *SyncHandler {
	return &SyncHandler{Sync: s, Repo: r, Log: log}
}

// TriggerFullSync starts a full sync in the background and answers
// immediately. Optional ?date_from=YYYY-MM-DD&date_to=YYYY-MM-DD
// queries bound the schedule fetches to a hearing-date window.
// POST /api/v1/sync/full
func (h *SyncHandler) TriggerFullSync(c *gin.Context) {
	if h.Sync.IsRunning() {
		c.JSON(http.StatusConflict, service.SyncResult{Success: false, Message: "Sync is already running"})
		return
	}

	var window service.DateWindow
	if raw := c.Query("date_from"); raw != "" {
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date_from must be YYYY-MM-DD"})
			return
		}
		window.From = raw
	}
	if raw := c.Query("date_to"); raw != "" {
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date_to must be YYYY-MM-DD"})
			return
		}
		window.To = raw
	}

	go func() {
		// fresh context, the request one dies with the response
		if _, err := h.Sync.FullSync(context.Background(), model.SyncTriggerUser, window); err != nil {
			h.Log.Errorf("background full sync: %v", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "Full sync has been started in the background."})
}

// TriggerIncrementalSync starts an incremental sync. An optional
// ?since=RFC3339 query overrides the reference timestamp.
// POST /api/v1/sync/incremental
func (h *SyncHandler) TriggerIncrementalSync(c *gin.Context) {
	if h.Sync.IsRunning() {
		c.JSON(http.StatusConflict, service.SyncResult{Success: false, Message: "Sync is already running"})
		return
	}

	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be RFC3339"})
			return
		}
		since = &parsed
	}

	go func() {
		if _, err := h.Sync.IncrementalSync(context.Background(), since, model.SyncTriggerUser); err != nil {
			h.Log.Errorf("background incremental sync: %v", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "Incremental sync has been started in the background."})
}

// GetSyncStatus reports whether a run is in flight plus the most recent
// log row. GET /api/v1/sync/status
func (h *SyncHandler) GetSyncStatus(c *gin.Context) {
	history, err := h.Repo.GetSyncHistory(c.Request.Context(), 1)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get sync status"})
		return
	}

	var last *model.SyncLog
	if len(history) > 0 {
		last = &history[0]
	}
	c.JSON(http.StatusOK, gin.H{
		"running":  h.Sync.IsRunning(),
		"last_run": last,
	})
}

// GetSyncHistory returns recent sync log rows, newest first.
// GET /api/v1/sync/history
func (h *SyncHandler) GetSyncHistory(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
		return
	}

	history, err := h.Repo.GetSyncHistory(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get sync history"})
		return
	}

	c.JSON(http.StatusOK, history)
}
