package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yudhap12/go-sipp-backend/internal/model"
)

type NotificationStore interface {
	GetAdmins(ctx context.Context) ([]model.Admin, error)
	CreateNotification(ctx context.Context, n *model.AdminNotification) error
}

// AdminNotifier writes one notification row per admin on terminal sync
// failure. Delivery is best-effort: every error here is logged and
// swallowed so notification problems can never mask the sync failure.
type AdminNotifier struct {
	store   NotificationStore
	log     *logrus.Logger
	enabled bool
}

func NewAdminNotifier(store NotificationStore, log *logrus.Logger, enabled bool) *AdminNotifier {
	return &AdminNotifier{store: store, log: log, enabled: enabled}
}

func (n *AdminNotifier) NotifyFailure(ctx context.Context, syncType string, cause error, stats model.SyncStats) {
	if !n.enabled {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"sync_type": syncType,
		"error":     cause.Error(),
		"stats":     stats,
	})
	if err != nil {
		n.log.Errorf("marshal failure notification: %v", err)
		return
	}

	admins, err := n.store.GetAdmins(ctx)
	if err != nil {
		n.log.Errorf("load admins for failure notification: %v", err)
		return
	}

	for _, admin := range admins {
		note := &model.AdminNotification{
			ID:        uuid.NewString(),
			AdminID:   admin.ID,
			Type:      model.NotificationSyncFailed,
			Data:      payload,
			CreatedAt: time.Now(),
		}
		if err := n.store.CreateNotification(ctx, note); err != nil {
			n.log.WithField("admin_id", admin.ID).Errorf("store failure notification: %v", err)
		}
	}
}
