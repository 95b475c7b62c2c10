package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yudhap12/go-sipp-backend/internal/model"
	"github.com/yudhap12/go-sipp-backend/internal/sipp"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeClient serves canned pages. A 1-based page index in caseErrPage
// makes that cases fetch fail with a transport error.
type fakeClient struct {
	mu sync.Mutex

	schedulePages [][]map[string]interface{}
	casePages     [][]map[string]interface{}
	judges        []map[string]interface{}
	rooms         []map[string]interface{}
	types         []map[string]interface{}

	caseErrPage int

	scheduleFetches int
	caseFetches     int
	refFetches      int
	scheduleFilters []sipp.Filters

	// when set, GetSchedules blocks until released; started is closed
	// on the first blocked call
	block   chan struct{}
	started chan struct{}
	once    sync.Once
}

func pageAt(pages [][]map[string]interface{}, n int) *sipp.Page {
	if n < 1 || n > len(pages) {
		return &sipp.Page{}
	}
	return &sipp.Page{Records: pages[n-1], HasMore: n < len(pages)}
}

func (c *fakeClient) GetSchedules(ctx context.Context, f sipp.Filters) (*sipp.Page, error) {
	c.mu.Lock()
	c.scheduleFetches++
	c.scheduleFilters = append(c.scheduleFilters, f)
	block := c.block
	c.mu.Unlock()

	if block != nil {
		c.once.Do(func() { close(c.started) })
		<-block
	}
	return pageAt(c.schedulePages, f.Page), nil
}

func (c *fakeClient) GetCases(ctx context.Context, f sipp.Filters) (*sipp.Page, error) {
	c.mu.Lock()
	c.caseFetches++
	errPage := c.caseErrPage
	c.mu.Unlock()

	if errPage > 0 && f.Page == errPage {
		return nil, errors.New("connection reset")
	}
	return pageAt(c.casePages, f.Page), nil
}

func (c *fakeClient) GetJudges(ctx context.Context) ([]map[string]interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refFetches++
	return c.judges, nil
}

func (c *fakeClient) GetCourtRooms(ctx context.Context) ([]map[string]interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refFetches++
	return c.rooms, nil
}

func (c *fakeClient) GetCaseTypes(ctx context.Context) ([]map[string]interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refFetches++
	return c.types, nil
}

type fakeLog struct {
	id          int64
	syncType    string
	triggeredBy string
	status      string
	errMsg      *string
	stats       []byte
}

// fakeStore keeps entities in maps keyed by natural key. WithTx
// snapshots the maps and restores them when fn fails, mimicking a
// rollback.
type fakeStore struct {
	schedules map[string]*model.CourtSchedule
	cases     map[string]*model.CourtCase
	judges    map[string]*model.Judge
	rooms     map[string]*model.CourtRoom
	types     map[string]*model.CaseType

	nextID      int64
	logs        []fakeLog
	lastSuccess *time.Time

	// when set, Create for this natural key fails the way a rejected
	// statement would, without touching the store
	writeErrKey string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		schedules: map[string]*model.CourtSchedule{},
		cases:     map[string]*model.CourtCase{},
		judges:    map[string]*model.Judge{},
		rooms:     map[string]*model.CourtRoom{},
		types:     map[string]*model.CaseType{},
	}
}

func snapshot[T any](m map[string]*T) map[string]*T {
	out := make(map[string]*T, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(EntityStore) error) error {
	schedules := snapshot(s.schedules)
	cases := snapshot(s.cases)
	judges := snapshot(s.judges)
	rooms := snapshot(s.rooms)
	types := snapshot(s.types)

	if err := fn(s); err != nil {
		s.schedules = schedules
		s.cases = cases
		s.judges = judges
		s.rooms = rooms
		s.types = types
		return err
	}
	return nil
}

func (s *fakeStore) CreateSyncLog(ctx context.Context, syncType, triggeredBy string) (int64, error) {
	s.nextID++
	s.logs = append(s.logs, fakeLog{id: s.nextID, syncType: syncType, triggeredBy: triggeredBy, status: model.SyncRunRunning})
	return s.nextID, nil
}

func (s *fakeStore) FinishSyncLog(ctx context.Context, id int64, status string, errorMessage *string, stats []byte) error {
	for i := range s.logs {
		if s.logs[i].id == id {
			s.logs[i].status = status
			s.logs[i].errMsg = errorMessage
			s.logs[i].stats = stats
			return nil
		}
	}
	return errors.New("log not found")
}

func (s *fakeStore) LastSuccessfulSyncAt(ctx context.Context) (*time.Time, error) {
	return s.lastSuccess, nil
}

func (s *fakeStore) FindScheduleBySippID(ctx context.Context, sippID string) (*model.CourtSchedule, error) {
	if sch, ok := s.schedules[sippID]; ok {
		cp := *sch
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeStore) CreateSchedule(ctx context.Context, sch *model.CourtSchedule) error {
	if s.writeErrKey != "" && sch.SippID == s.writeErrKey {
		return errors.New("duplicate key value violates unique constraint")
	}
	s.nextID++
	cp := *sch
	cp.ID = s.nextID
	s.schedules[sch.SippID] = &cp
	return nil
}

func (s *fakeStore) UpdateSchedule(ctx context.Context, sch *model.CourtSchedule) error {
	cp := *sch
	s.schedules[sch.SippID] = &cp
	return nil
}

func (s *fakeStore) FindCaseBySippID(ctx context.Context, sippCaseID string) (*model.CourtCase, error) {
	if cs, ok := s.cases[sippCaseID]; ok {
		cp := *cs
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeStore) CreateCase(ctx context.Context, cs *model.CourtCase) error {
	if s.writeErrKey != "" && cs.SippCaseID == s.writeErrKey {
		return errors.New("duplicate key value violates unique constraint")
	}
	s.nextID++
	cp := *cs
	cp.ID = s.nextID
	s.cases[cs.SippCaseID] = &cp
	return nil
}

func (s *fakeStore) UpdateCase(ctx context.Context, cs *model.CourtCase) error {
	cp := *cs
	s.cases[cs.SippCaseID] = &cp
	return nil
}

func (s *fakeStore) FindJudgeByName(ctx context.Context, name string) (*model.Judge, error) {
	if j, ok := s.judges[name]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeStore) CreateJudge(ctx context.Context, j *model.Judge) error {
	s.nextID++
	cp := *j
	cp.ID = s.nextID
	s.judges[j.Name] = &cp
	return nil
}

func (s *fakeStore) UpdateJudge(ctx context.Context, j *model.Judge) error {
	cp := *j
	s.judges[j.Name] = &cp
	return nil
}

func (s *fakeStore) FindCourtRoomByName(ctx context.Context, name string) (*model.CourtRoom, error) {
	if r, ok := s.rooms[name]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeStore) CreateCourtRoom(ctx context.Context, r *model.CourtRoom) error {
	s.nextID++
	cp := *r
	cp.ID = s.nextID
	s.rooms[r.Name] = &cp
	return nil
}

func (s *fakeStore) UpdateCourtRoom(ctx context.Context, r *model.CourtRoom) error {
	cp := *r
	s.rooms[r.Name] = &cp
	return nil
}

func (s *fakeStore) FindCaseTypeByCode(ctx context.Context, code string) (*model.CaseType, error) {
	if ct, ok := s.types[code]; ok {
		cp := *ct
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeStore) CreateCaseType(ctx context.Context, ct *model.CaseType) error {
	s.nextID++
	cp := *ct
	cp.ID = s.nextID
	s.types[ct.Code] = &cp
	return nil
}

func (s *fakeStore) UpdateCaseType(ctx context.Context, ct *model.CaseType) error {
	cp := *ct
	s.types[ct.Code] = &cp
	return nil
}

type notifyCall struct {
	syncType string
	cause    error
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (n *fakeNotifier) NotifyFailure(ctx context.Context, syncType string, cause error, stats model.SyncStats) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{syncType: syncType, cause: cause})
}

func schedRec(id, number string) map[string]interface{} {
	return map[string]interface{}{"sipp_id": id, "nomor_perkara": number, "tahapan": "dijadwalkan"}
}

func caseRec(id, number string) map[string]interface{} {
	return map[string]interface{}{"perkara_id": id, "nomor_perkara": number, "status_perkara": "pemeriksaan"}
}

func newService(client *fakeClient, store *fakeStore, notifier *fakeNotifier, batchSize int, strategy ConflictStrategy) *SyncService {
	return NewSyncService(client, store, notifier, testLogger(), batchSize, strategy)
}

func TestFullSync_CreatesAllEntityTypes(t *testing.T) {
	client := &fakeClient{
		schedulePages: [][]map[string]interface{}{
			{schedRec("s1", "1/Pdt.G/2024"), schedRec("s2", "2/Pdt.G/2024")},
			{schedRec("s3", "3/Pdt.G/2024")},
		},
		casePages: [][]map[string]interface{}{
			{caseRec("c1", "1/Pdt.G/2024")},
		},
		judges: []map[string]interface{}{{"name": "H. Ahmad"}},
		rooms:  []map[string]interface{}{{"name": "Cakra 1"}},
		types:  []map[string]interface{}{{"code": "PDT.G", "name": "Perdata Gugatan"}},
	}
	store := newFakeStore()

	svc := newService(client, store, &fakeNotifier{}, 2, LatestWins)
	res, err := svc.FullSync(context.Background(), model.SyncTriggerUser, DateWindow{})
	require.NoError(t, err)
	require.True(t, res.Success)

	assert.Len(t, store.schedules, 3)
	assert.Len(t, store.cases, 1)
	assert.Len(t, store.judges, 1)
	assert.Len(t, store.rooms, 1)
	assert.Len(t, store.types, 1)

	// pagination walked both schedule pages
	assert.Equal(t, 2, client.scheduleFetches)

	require.Contains(t, res.Stats, "schedules")
	assert.Equal(t, 3, res.Stats["schedules"].Synced)
	assert.Equal(t, 0, res.Stats["schedules"].Failed)

	require.Len(t, store.logs, 1)
	assert.Equal(t, model.SyncRunSuccess, store.logs[0].status)
	assert.Equal(t, model.SyncTypeFull, store.logs[0].syncType)
	assert.Equal(t, model.SyncTriggerUser, store.logs[0].triggeredBy)
}

func TestFullSync_IdempotentUnderLatestWins(t *testing.T) {
	client := &fakeClient{
		schedulePages: [][]map[string]interface{}{{schedRec("s1", "1/Pdt.G/2024")}},
		casePages:     [][]map[string]interface{}{{caseRec("c1", "1/Pdt.G/2024")}},
	}
	store := newFakeStore()
	svc := newService(client, store, &fakeNotifier{}, 10, LatestWins)

	_, err := svc.FullSync(context.Background(), model.SyncTriggerSystem, DateWindow{})
	require.NoError(t, err)
	res, err := svc.FullSync(context.Background(), model.SyncTriggerSystem, DateWindow{})
	require.NoError(t, err)

	// same natural keys, no duplicate rows
	assert.Len(t, store.schedules, 1)
	assert.Len(t, store.cases, 1)
	assert.Equal(t, 0, res.Stats["schedules"].Synced)
	assert.Equal(t, 1, res.Stats["schedules"].Updated)
}

func TestFullSync_LocalWinsKeepsExistingRows(t *testing.T) {
	client := &fakeClient{
		casePages: [][]map[string]interface{}{{
			map[string]interface{}{"perkara_id": "c1", "catatan": "versi SIPP"},
		}},
	}
	store := newFakeStore()
	store.cases["c1"] = &model.CourtCase{ID: 7, SippCaseID: "c1", Notes: "catatan panitera"}

	svc := newService(client, store, &fakeNotifier{}, 10, LocalWins)
	res, err := svc.FullSync(context.Background(), model.SyncTriggerUser, DateWindow{})
	require.NoError(t, err)

	assert.Equal(t, "catatan panitera", store.cases["c1"].Notes)
	assert.Equal(t, 0, res.Stats["cases"].Updated)
	assert.Equal(t, 0, res.Stats["cases"].Synced)
}

func TestFullSync_ManualHoldsExistingRows(t *testing.T) {
	client := &fakeClient{
		schedulePages: [][]map[string]interface{}{{schedRec("s1", "9/Pdt.G/2024")}},
	}
	store := newFakeStore()
	store.schedules["s1"] = &model.CourtSchedule{ID: 3, SippID: "s1", CaseNumber: "edited locally"}

	svc := newService(client, store, &fakeNotifier{}, 10, Manual)
	res, err := svc.FullSync(context.Background(), model.SyncTriggerUser, DateWindow{})
	require.NoError(t, err)

	assert.Equal(t, "edited locally", store.schedules["s1"].CaseNumber)
	assert.Equal(t, 0, res.Stats["schedules"].Updated)
}

func TestFullSync_RemoteWinsOverwrites(t *testing.T) {
	client := &fakeClient{
		schedulePages: [][]map[string]interface{}{{schedRec("s1", "9/Pdt.G/2024")}},
	}
	store := newFakeStore()
	store.schedules["s1"] = &model.CourtSchedule{ID: 3, SippID: "s1", CaseNumber: "edited locally"}

	svc := newService(client, store, &fakeNotifier{}, 10, RemoteWins)
	res, err := svc.FullSync(context.Background(), model.SyncTriggerUser, DateWindow{})
	require.NoError(t, err)

	assert.Equal(t, "9/Pdt.G/2024", store.schedules["s1"].CaseNumber)
	assert.Equal(t, int64(3), store.schedules["s1"].ID)
	assert.Equal(t, 1, res.Stats["schedules"].Updated)
}

func TestFullSync_RecordWithoutKeyIsCountedNotFatal(t *testing.T) {
	client := &fakeClient{
		schedulePages: [][]map[string]interface{}{{
			map[string]interface{}{"nomor_perkara": "no key here"},
			schedRec("s2", "2/Pdt.G/2024"),
		}},
	}
	store := newFakeStore()

	svc := newService(client, store, &fakeNotifier{}, 10, LatestWins)
	res, err := svc.FullSync(context.Background(), model.SyncTriggerUser, DateWindow{})
	require.NoError(t, err)
	require.True(t, res.Success)

	assert.Len(t, store.schedules, 1)
	assert.Equal(t, 1, res.Stats["schedules"].Failed)
	assert.Equal(t, 1, res.Stats["schedules"].Synced)
}

func TestFullSync_RecordWriteErrorDoesNotFailRun(t *testing.T) {
	client := &fakeClient{
		schedulePages: [][]map[string]interface{}{{
			schedRec("s1", "1/Pdt.G/2024"),
			schedRec("s2", "2/Pdt.G/2024"),
			schedRec("s3", "3/Pdt.G/2024"),
		}},
	}
	store := newFakeStore()
	store.writeErrKey = "s2"
	notifier := &fakeNotifier{}

	svc := newService(client, store, notifier, 10, LatestWins)
	res, err := svc.FullSync(context.Background(), model.SyncTriggerUser, DateWindow{})
	require.NoError(t, err)
	require.True(t, res.Success)

	// the rejected record is counted, the rest of the batch commits
	assert.Len(t, store.schedules, 2)
	assert.Equal(t, 1, res.Stats["schedules"].Failed)
	assert.Equal(t, 2, res.Stats["schedules"].Synced)

	require.Len(t, store.logs, 1)
	assert.Equal(t, model.SyncRunSuccess, store.logs[0].status)
	assert.Empty(t, notifier.calls)
}

func TestFullSync_TransportErrorRollsBackEntityBatch(t *testing.T) {
	client := &fakeClient{
		schedulePages: [][]map[string]interface{}{{schedRec("s1", "1/Pdt.G/2024")}},
		casePages: [][]map[string]interface{}{
			{caseRec("c1", "1/Pdt.G/2024")},
			{caseRec("c2", "2/Pdt.G/2024")},
		},
		caseErrPage: 2,
	}
	store := newFakeStore()
	notifier := &fakeNotifier{}

	svc := newService(client, store, notifier, 1, LatestWins)
	res, err := svc.FullSync(context.Background(), model.SyncTriggerUser, DateWindow{})
	require.Error(t, err)
	assert.Nil(t, res)

	// schedules committed in their own transaction, the broken cases
	// batch rolled back whole
	assert.Len(t, store.schedules, 1)
	assert.Len(t, store.cases, 0)

	// reference tables never reached
	assert.Equal(t, 0, client.refFetches)

	require.Len(t, store.logs, 1)
	assert.Equal(t, model.SyncRunFailed, store.logs[0].status)
	require.NotNil(t, store.logs[0].errMsg)
	assert.Contains(t, *store.logs[0].errMsg, "fetch cases page 2")

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, model.SyncTypeFull, notifier.calls[0].syncType)
}

func TestFullSync_ForwardsScheduleDateWindow(t *testing.T) {
	client := &fakeClient{
		schedulePages: [][]map[string]interface{}{{schedRec("s1", "1/Pdt.G/2024")}},
	}
	store := newFakeStore()

	svc := newService(client, store, &fakeNotifier{}, 10, LatestWins)
	window := DateWindow{From: "2024-03-01", To: "2024-03-31"}
	_, err := svc.FullSync(context.Background(), model.SyncTriggerUser, window)
	require.NoError(t, err)

	require.NotEmpty(t, client.scheduleFilters)
	assert.Equal(t, "2024-03-01", client.scheduleFilters[0].DateFrom)
	assert.Equal(t, "2024-03-31", client.scheduleFilters[0].DateTo)
}

func TestIncrementalSync_OnlySchedulesAndCases(t *testing.T) {
	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	client := &fakeClient{
		schedulePages: [][]map[string]interface{}{{schedRec("s1", "1/Pdt.G/2024")}},
		casePages:     [][]map[string]interface{}{{caseRec("c1", "1/Pdt.G/2024")}},
		judges:        []map[string]interface{}{{"name": "H. Ahmad"}},
	}
	store := newFakeStore()

	svc := newService(client, store, &fakeNotifier{}, 10, LatestWins)
	res, err := svc.IncrementalSync(context.Background(), &since, model.SyncTriggerSystem)
	require.NoError(t, err)
	require.True(t, res.Success)

	assert.Equal(t, 0, client.refFetches)
	assert.Len(t, store.judges, 0)

	require.NotEmpty(t, client.scheduleFilters)
	assert.Equal(t, "2024-03-01T00:00:00Z", client.scheduleFilters[0].UpdatedSince)

	require.Len(t, store.logs, 1)
	assert.Equal(t, model.SyncTypeIncremental, store.logs[0].syncType)
}

func TestIncrementalSync_SinceFallsBackToLastSuccess(t *testing.T) {
	last := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	client := &fakeClient{}
	store := newFakeStore()
	store.lastSuccess = &last

	svc := newService(client, store, &fakeNotifier{}, 10, LatestWins)
	_, err := svc.IncrementalSync(context.Background(), nil, model.SyncTriggerSystem)
	require.NoError(t, err)

	require.NotEmpty(t, client.scheduleFilters)
	assert.Equal(t, "2024-03-10T08:00:00Z", client.scheduleFilters[0].UpdatedSince)
}

func TestSync_MutualExclusion(t *testing.T) {
	client := &fakeClient{
		block:         make(chan struct{}),
		started:       make(chan struct{}),
		schedulePages: [][]map[string]interface{}{{schedRec("s1", "1/Pdt.G/2024")}},
	}
	store := newFakeStore()
	svc := newService(client, store, &fakeNotifier{}, 10, LatestWins)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.FullSync(context.Background(), model.SyncTriggerUser, DateWindow{})
	}()

	<-client.started
	assert.True(t, svc.IsRunning())

	res, err := svc.IncrementalSync(context.Background(), nil, model.SyncTriggerUser)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Sync is already running", res.Message)

	// the rejected attempt must not have opened a second log row
	assert.Len(t, store.logs, 1)

	close(client.block)
	<-done
	assert.False(t, svc.IsRunning())
}
