package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yudhap12/go-sipp-backend/internal/mapper"
	"github.com/yudhap12/go-sipp-backend/internal/model"
	"github.com/yudhap12/go-sipp-backend/internal/sipp"
)

// SIPPClient is the remote case-management API consumed by the engine.
// Implemented by sipp.Client; tests substitute a fake.
type SIPPClient interface {
	GetSchedules(ctx context.Context, f sipp.Filters) (*sipp.Page, error)
	GetCases(ctx context.Context, f sipp.Filters) (*sipp.Page, error)
	GetJudges(ctx context.Context) ([]map[string]interface{}, error)
	GetCourtRooms(ctx context.Context) ([]map[string]interface{}, error)
	GetCaseTypes(ctx context.Context) ([]map[string]interface{}, error)
}

// EntityStore is the write surface the engine sees inside one entity
// type's transaction. Find methods return (nil, nil) when no row
// matches the natural key.
type EntityStore interface {
	FindScheduleBySippID(ctx context.Context, sippID string) (*model.CourtSchedule, error)
	CreateSchedule(ctx context.Context, sch *model.CourtSchedule) error
	UpdateSchedule(ctx context.Context, sch *model.CourtSchedule) error

	FindCaseBySippID(ctx context.Context, sippCaseID string) (*model.CourtCase, error)
	CreateCase(ctx context.Context, cs *model.CourtCase) error
	UpdateCase(ctx context.Context, cs *model.CourtCase) error

	FindJudgeByName(ctx context.Context, name string) (*model.Judge, error)
	CreateJudge(ctx context.Context, j *model.Judge) error
	UpdateJudge(ctx context.Context, j *model.Judge) error

	FindCourtRoomByName(ctx context.Context, name string) (*model.CourtRoom, error)
	CreateCourtRoom(ctx context.Context, r *model.CourtRoom) error
	UpdateCourtRoom(ctx context.Context, r *model.CourtRoom) error

	FindCaseTypeByCode(ctx context.Context, code string) (*model.CaseType, error)
	CreateCaseType(ctx context.Context, ct *model.CaseType) error
	UpdateCaseType(ctx context.Context, ct *model.CaseType) error
}

// Store is the persistence port of the orchestrator. WithTx runs fn
// inside one database transaction; an error from fn rolls everything
// back.
type Store interface {
	WithTx(ctx context.Context, fn func(EntityStore) error) error
	CreateSyncLog(ctx context.Context, syncType, triggeredBy string) (int64, error)
	FinishSyncLog(ctx context.Context, id int64, status string, errorMessage *string, stats []byte) error
	LastSuccessfulSyncAt(ctx context.Context) (*time.Time, error)
}

// FailureNotifier is told about terminal sync failures. Implementations
// must not return errors upstream; delivery problems are theirs to log.
type FailureNotifier interface {
	NotifyFailure(ctx context.Context, syncType string, cause error, stats model.SyncStats)
}

type SyncResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	LogID   int64           `json:"log_id,omitempty"`
	Stats   model.SyncStats `json:"stats,omitempty"`
}

// SyncService reconciles SIPP records against the local database. One
// logical worker: a second full/incremental call while a run is in
// flight gets an "already running" result instead of queueing.
type SyncService struct {
	client    SIPPClient
	store     Store
	notifier  FailureNotifier
	log       *logrus.Logger
	batchSize int
	strategy  ConflictStrategy

	running atomic.Bool
}

func NewSyncService(client SIPPClient, store Store, notifier FailureNotifier, log *logrus.Logger, batchSize int, strategy ConflictStrategy) *SyncService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &SyncService{
		client:    client,
		store:     store,
		notifier:  notifier,
		log:       log,
		batchSize: batchSize,
		strategy:  strategy,
	}
}

func (s *SyncService) IsRunning() bool {
	return s.running.Load()
}

// DateWindow bounds a full sync's schedule fetches to hearing dates
// inside [From, To]. Zero values leave the bound open.
type DateWindow struct {
	From string
	To   string
}

// FullSync reconciles the complete remote dataset, entity types in
// fixed order, each in its own transaction. A transport failure on one
// entity type aborts the rest of the sequence; batches already
// committed stay committed.
func (s *SyncService) FullSync(ctx context.Context, triggeredBy string, window DateWindow) (*SyncResult, error) {
	return s.run(ctx, model.SyncTypeFull, triggeredBy, func(ctx context.Context, stats model.SyncStats) error {
		if err := s.syncSchedules(ctx, stats, sipp.Filters{DateFrom: window.From, DateTo: window.To}); err != nil {
			return err
		}
		if err := s.syncCases(ctx, stats, sipp.Filters{}); err != nil {
			return err
		}
		if err := s.syncJudges(ctx, stats); err != nil {
			return err
		}
		if err := s.syncCourtRooms(ctx, stats); err != nil {
			return err
		}
		return s.syncCaseTypes(ctx, stats)
	})
}

// IncrementalSync restricts schedules and cases to records updated
// since the reference timestamp. Judges, court rooms and case types
// are small reference tables refreshed only by full sync.
func (s *SyncService) IncrementalSync(ctx context.Context, since *time.Time, triggeredBy string) (*SyncResult, error) {
	return s.run(ctx, model.SyncTypeIncremental, triggeredBy, func(ctx context.Context, stats model.SyncStats) error {
		resolved := s.resolveSince(ctx, since)
		f := sipp.Filters{UpdatedSince: resolved.UTC().Format(time.RFC3339)}
		if err := s.syncSchedules(ctx, stats, f); err != nil {
			return err
		}
		return s.syncCases(ctx, stats, f)
	})
}

// resolveSince: explicit argument, else completion time of the last
// successful run, else one hour back as bootstrap.
func (s *SyncService) resolveSince(ctx context.Context, since *time.Time) time.Time {
	if since != nil {
		return *since
	}
	last, err := s.store.LastSuccessfulSyncAt(ctx)
	if err != nil {
		s.log.Warnf("could not resolve last successful sync: %v", err)
	}
	if last != nil {
		return *last
	}
	return time.Now().Add(-1 * time.Hour)
}

func (s *SyncService) run(ctx context.Context, syncType, triggeredBy string, fn func(context.Context, model.SyncStats) error) (*SyncResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return &SyncResult{Success: false, Message: "Sync is already running"}, nil
	}
	defer s.running.Store(false)

	logID, err := s.store.CreateSyncLog(ctx, syncType, triggeredBy)
	if err != nil {
		return nil, fmt.Errorf("create sync log: %w", err)
	}

	s.log.WithFields(logrus.Fields{"type": syncType, "log_id": logID}).Info("sync started")

	stats := model.SyncStats{}
	if runErr := fn(ctx, stats); runErr != nil {
		msg := runErr.Error()
		if err := s.store.FinishSyncLog(ctx, logID, model.SyncRunFailed, &msg, stats.Marshal()); err != nil {
			s.log.Errorf("mark sync log %d failed: %v", logID, err)
		}
		if s.notifier != nil {
			s.notifier.NotifyFailure(ctx, syncType, runErr, stats)
		}
		s.log.WithField("log_id", logID).Errorf("sync failed: %v", runErr)
		return nil, runErr
	}

	if err := s.store.FinishSyncLog(ctx, logID, model.SyncRunSuccess, nil, stats.Marshal()); err != nil {
		return nil, fmt.Errorf("finish sync log %d: %w", logID, err)
	}

	s.log.WithField("log_id", logID).Info("sync completed")
	return &SyncResult{
		Success: true,
		Message: fmt.Sprintf("%s sync completed", syncType),
		LogID:   logID,
		Stats:   stats,
	}, nil
}

func (s *SyncService) syncSchedules(ctx context.Context, stats model.SyncStats, base sipp.Filters) error {
	st := stats.Start("schedules")
	defer st.Finish()

	return s.store.WithTx(ctx, func(es EntityStore) error {
		page := 1
		for {
			f := base
			f.Page = page
			f.Limit = s.batchSize

			pg, err := s.client.GetSchedules(ctx, f)
			if err != nil {
				return fmt.Errorf("fetch schedules page %d: %w", page, err)
			}
			for _, rec := range pg.Records {
				s.upsertSchedule(ctx, es, rec, st)
			}
			if !pg.HasMore {
				return nil
			}
			page++
		}
	})
}

func (s *SyncService) syncCases(ctx context.Context, stats model.SyncStats, base sipp.Filters) error {
	st := stats.Start("cases")
	defer st.Finish()

	return s.store.WithTx(ctx, func(es EntityStore) error {
		page := 1
		for {
			f := base
			f.Page = page
			f.Limit = s.batchSize

			pg, err := s.client.GetCases(ctx, f)
			if err != nil {
				return fmt.Errorf("fetch cases page %d: %w", page, err)
			}
			for _, rec := range pg.Records {
				s.upsertCase(ctx, es, rec, st)
			}
			if !pg.HasMore {
				return nil
			}
			page++
		}
	})
}

func (s *SyncService) syncJudges(ctx context.Context, stats model.SyncStats) error {
	st := stats.Start("judges")
	defer st.Finish()

	records, err := s.client.GetJudges(ctx)
	if err != nil {
		return fmt.Errorf("fetch judges: %w", err)
	}
	return s.store.WithTx(ctx, func(es EntityStore) error {
		for _, rec := range records {
			s.upsertJudge(ctx, es, rec, st)
		}
		return nil
	})
}

func (s *SyncService) syncCourtRooms(ctx context.Context, stats model.SyncStats) error {
	st := stats.Start("court_rooms")
	defer st.Finish()

	records, err := s.client.GetCourtRooms(ctx)
	if err != nil {
		return fmt.Errorf("fetch court rooms: %w", err)
	}
	return s.store.WithTx(ctx, func(es EntityStore) error {
		for _, rec := range records {
			s.upsertCourtRoom(ctx, es, rec, st)
		}
		return nil
	})
}

func (s *SyncService) syncCaseTypes(ctx context.Context, stats model.SyncStats) error {
	st := stats.Start("case_types")
	defer st.Finish()

	records, err := s.client.GetCaseTypes(ctx)
	if err != nil {
		return fmt.Errorf("fetch case types: %w", err)
	}
	return s.store.WithTx(ctx, func(es EntityStore) error {
		for _, rec := range records {
			s.upsertCaseType(ctx, es, rec, st)
		}
		return nil
	})
}

// Per-record upserts. A bad record is counted and logged, never
// allowed to stop the rest of the batch.

func (s *SyncService) upsertSchedule(ctx context.Context, es EntityStore, rec map[string]interface{}, st *model.EntityStats) {
	key := mapper.ScheduleKey(rec)
	if key == "" {
		st.Failed++
		s.log.Warn("schedule record without sipp_id, skipped")
		return
	}

	existing, err := es.FindScheduleBySippID(ctx, key)
	if err != nil {
		st.Failed++
		s.log.WithField("sipp_id", key).Errorf("lookup schedule: %v", err)
		return
	}

	incoming := mapper.MapSchedule(rec, time.Now())

	if existing == nil {
		if err := es.CreateSchedule(ctx, &incoming); err != nil {
			st.Failed++
			s.log.WithField("sipp_id", key).Errorf("create schedule: %v", err)
			return
		}
		st.Synced++
		return
	}

	if !s.strategy.Overwrites() {
		if s.strategy == Manual {
			s.log.WithField("sipp_id", key).Info("schedule update held for manual review")
		}
		return
	}

	incoming.ID = existing.ID
	if err := es.UpdateSchedule(ctx, &incoming); err != nil {
		st.Failed++
		s.log.WithField("sipp_id", key).Errorf("update schedule: %v", err)
		return
	}
	st.Updated++
}

func (s *SyncService) upsertCase(ctx context.Context, es EntityStore, rec map[string]interface{}, st *model.EntityStats) {
	key := mapper.CaseKey(rec)
	if key == "" {
		st.Failed++
		s.log.Warn("case record without sipp_case_id, skipped")
		return
	}

	existing, err := es.FindCaseBySippID(ctx, key)
	if err != nil {
		st.Failed++
		s.log.WithField("sipp_case_id", key).Errorf("lookup case: %v", err)
		return
	}

	incoming := mapper.MapCase(rec, time.Now())

	if existing == nil {
		if err := es.CreateCase(ctx, &incoming); err != nil {
			st.Failed++
			s.log.WithField("sipp_case_id", key).Errorf("create case: %v", err)
			return
		}
		st.Synced++
		return
	}

	if !s.strategy.Overwrites() {
		if s.strategy == Manual {
			s.log.WithField("sipp_case_id", key).Info("case update held for manual review")
		}
		return
	}

	incoming.ID = existing.ID
	if err := es.UpdateCase(ctx, &incoming); err != nil {
		st.Failed++
		s.log.WithField("sipp_case_id", key).Errorf("update case: %v", err)
		return
	}
	st.Updated++
}

func (s *SyncService) upsertJudge(ctx context.Context, es EntityStore, rec map[string]interface{}, st *model.EntityStats) {
	key := mapper.JudgeKey(rec)
	if key == "" {
		st.Failed++
		s.log.Warn("judge record without name, skipped")
		return
	}

	existing, err := es.FindJudgeByName(ctx, key)
	if err != nil {
		st.Failed++
		s.log.WithField("name", key).Errorf("lookup judge: %v", err)
		return
	}

	incoming := mapper.MapJudge(rec, time.Now())

	if existing == nil {
		if err := es.CreateJudge(ctx, &incoming); err != nil {
			st.Failed++
			s.log.WithField("name", key).Errorf("create judge: %v", err)
			return
		}
		st.Synced++
		return
	}

	if !s.strategy.Overwrites() {
		return
	}

	incoming.ID = existing.ID
	if err := es.UpdateJudge(ctx, &incoming); err != nil {
		st.Failed++
		s.log.WithField("name", key).Errorf("update judge: %v", err)
		return
	}
	st.Updated++
}

func (s *SyncService) upsertCourtRoom(ctx context.Context, es EntityStore, rec map[string]interface{}, st *model.EntityStats) {
	key := mapper.CourtRoomKey(rec)
	if key == "" {
		st.Failed++
		s.log.Warn("court room record without name, skipped")
		return
	}

	existing, err := es.FindCourtRoomByName(ctx, key)
	if err != nil {
		st.Failed++
		s.log.WithField("name", key).Errorf("lookup court room: %v", err)
		return
	}

	incoming := mapper.MapCourtRoom(rec, time.Now())

	if existing == nil {
		if err := es.CreateCourtRoom(ctx, &incoming); err != nil {
			st.Failed++
			s.log.WithField("name", key).Errorf("create court room: %v", err)
			return
		}
		st.Synced++
		return
	}

	if !s.strategy.Overwrites() {
		return
	}

	incoming.ID = existing.ID
	if err := es.UpdateCourtRoom(ctx, &incoming); err != nil {
		st.Failed++
		s.log.WithField("name", key).Errorf("update court room: %v", err)
		return
	}
	st.Updated++
}

func (s *SyncService) upsertCaseType(ctx context.Context, es EntityStore, rec map[string]interface{}, st *model.EntityStats) {
	key := mapper.CaseTypeKey(rec)
	if key == "" {
		st.Failed++
		s.log.Warn("case type record without code, skipped")
		return
	}

	existing, err := es.FindCaseTypeByCode(ctx, key)
	if err != nil {
		st.Failed++
		s.log.WithField("code", key).Errorf("lookup case type: %v", err)
		return
	}

	incoming := mapper.MapCaseType(rec, time.Now())

	if existing == nil {
		if err := es.CreateCaseType(ctx, &incoming); err != nil {
			st.Failed++
			s.log.WithField("code", key).Errorf("create case type: %v", err)
			return
		}
		st.Synced++
		return
	}

	if !s.strategy.Overwrites() {
		return
	}

	incoming.ID = existing.ID
	if err := es.UpdateCaseType(ctx, &incoming); err != nil {
		st.Failed++
		s.log.WithField("code", key).Errorf("update case type: %v", err)
		return
	}
	st.Updated++
}
