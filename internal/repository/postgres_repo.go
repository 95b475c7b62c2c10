package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/lib/pq"

	"github.com/yudhap12/go-sipp-backend/internal/config"
	"github.com/yudhap12/go-sipp-backend/internal/model"
	"github.com/yudhap12/go-sipp-backend/internal/service"
)

type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepoFromConfig(cfg *config.Config) (*PostgresRepo, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	// ping
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &PostgresRepo{DB: db}, nil
}

func (r *PostgresRepo) RunMigrations(ctx context.Context) error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
		`CREATE TABLE IF NOT EXISTS admins (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            username VARCHAR(100) UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ DEFAULT now()
        );`,
		`CREATE TABLE IF NOT EXISTS court_schedules (
            id BIGSERIAL PRIMARY KEY,
            sipp_id TEXT UNIQUE NOT NULL,
            case_number TEXT,
            case_title TEXT,
            case_type TEXT,
            judge_name TEXT,
            court_room TEXT,
            hearing_date TEXT,
            hearing_time TEXT,
            agenda TEXT,
            status TEXT NOT NULL DEFAULT 'scheduled',
            sync_status TEXT NOT NULL DEFAULT 'pending',
            last_synced_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ DEFAULT now(),
            updated_at TIMESTAMPTZ DEFAULT now()
        );`,
		`CREATE TABLE IF NOT EXISTS court_cases (
            id BIGSERIAL PRIMARY KEY,
            sipp_case_id TEXT UNIQUE NOT NULL,
            case_number TEXT,
            title TEXT,
            case_type TEXT,
            plaintiff TEXT,
            defendant TEXT,
            judge_name TEXT,
            register_date TEXT,
            status TEXT NOT NULL DEFAULT 'open',
            notes TEXT,
            sync_status TEXT NOT NULL DEFAULT 'pending',
            last_synced_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ DEFAULT now(),
            updated_at TIMESTAMPTZ DEFAULT now()
        );`,
		`CREATE TABLE IF NOT EXISTS judges (
            id BIGSERIAL PRIMARY KEY,
            name TEXT UNIQUE NOT NULL,
            nip TEXT,
            rank TEXT,
            position TEXT,
            sync_status TEXT NOT NULL DEFAULT 'pending',
            last_synced_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ DEFAULT now(),
            updated_at TIMESTAMPTZ DEFAULT now()
        );`,
		`CREATE TABLE IF NOT EXISTS court_rooms (
            id BIGSERIAL PRIMARY KEY,
            name TEXT UNIQUE NOT NULL,
            location TEXT,
            sync_status TEXT NOT NULL DEFAULT 'pending',
            last_synced_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ DEFAULT now(),
            updated_at TIMESTAMPTZ DEFAULT now()
        );`,
		`CREATE TABLE IF NOT EXISTS case_types (
            id BIGSERIAL PRIMARY KEY,
            code TEXT UNIQUE NOT NULL,
            name TEXT,
            description TEXT,
            sync_status TEXT NOT NULL DEFAULT 'pending',
            last_synced_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ DEFAULT now(),
            updated_at TIMESTAMPTZ DEFAULT now()
        );`,
		`CREATE TABLE IF NOT EXISTS sync_logs (
            id BIGSERIAL PRIMARY KEY,
            sync_type TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'running',
            triggered_by TEXT NOT NULL DEFAULT 'system',
            started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            completed_at TIMESTAMPTZ,
            error_message TEXT,
            stats JSONB
        );`,
		`CREATE TABLE IF NOT EXISTS notifications (
            id UUID PRIMARY KEY,
            admin_id UUID REFERENCES admins(id) ON DELETE CASCADE,
            type TEXT NOT NULL,
            data JSONB,
            read_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ DEFAULT now()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_court_schedules_hearing_date ON court_schedules (hearing_date);`,
		`CREATE INDEX IF NOT EXISTS idx_court_cases_case_number ON court_cases (case_number);`,
	}
	for _, q := range queries {
		if _, err := r.DB.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// WithTx runs fn inside one transaction. The sync engine uses this as
// the per-entity-type batch boundary: any error from fn rolls the
// whole batch back.
func (r *PostgresRepo) WithTx(ctx context.Context, fn func(service.EntityStore) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&entityTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// entityTx binds the entity write surface to one open transaction.
type entityTx struct {
	tx *sql.Tx
}

// exec wraps a single record's write in a savepoint. Without it, a
// failed statement (say a constraint violation on one record) would
// poison the whole transaction: Postgres rejects every later statement
// in an aborted tx and the final commit fails. Rolling back to the
// savepoint keeps the record-level failure recoverable so the rest of
// the batch can proceed.
func (e *entityTx) exec(ctx context.Context, query string, args ...interface{}) error {
	if _, err := e.tx.ExecContext(ctx, "SAVEPOINT record_write"); err != nil {
		return err
	}
	if _, err := e.tx.ExecContext(ctx, query, args...); err != nil {
		if _, rbErr := e.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT record_write"); rbErr != nil {
			return rbErr
		}
		return err
	}
	_, err := e.tx.ExecContext(ctx, "RELEASE SAVEPOINT record_write")
	return err
}

const scheduleColumns = `id, sipp_id, case_number, case_title, case_type, judge_name, court_room,
        hearing_date, hearing_time, agenda, status, sync_status, last_synced_at, created_at, updated_at`

func scanSchedule(row *sql.Row) (*model.CourtSchedule, error) {
	var s model.CourtSchedule
	var status string
	var hearingDate, hearingTime sql.NullString
	var lastSyncedAt sql.NullTime

	err := row.Scan(
		&s.ID, &s.SippID, &s.CaseNumber, &s.CaseTitle, &s.CaseType, &s.JudgeName, &s.CourtRoom,
		&hearingDate, &hearingTime, &s.Agenda, &status, &s.SyncStatus, &lastSyncedAt,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.Status = model.ScheduleStatus(status)
	if hearingDate.Valid {
		s.Date = &hearingDate.String
	}
	if hearingTime.Valid {
		s.Time = &hearingTime.String
	}
	if lastSyncedAt.Valid {
		t := lastSyncedAt.Time
		s.LastSyncedAt = &t
	}
	return &s, nil
}

func (e *entityTx) FindScheduleBySippID(ctx context.Context, sippID string) (*model.CourtSchedule, error) {
	row := e.tx.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM court_schedules WHERE sipp_id = $1 LIMIT 1`, sippID)
	return scanSchedule(row)
}

func (e *entityTx) CreateSchedule(ctx context.Context, s *model.CourtSchedule) error {
	return e.exec(ctx, `
        INSERT INTO court_schedules (
            sipp_id, case_number, case_title, case_type, judge_name, court_room,
            hearing_date, hearing_time, agenda, status, sync_status, last_synced_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		s.SippID, s.CaseNumber, s.CaseTitle, s.CaseType, s.JudgeName, s.CourtRoom,
		nullString(s.Date), nullString(s.Time), s.Agenda, string(s.Status),
		s.SyncStatus, nullTime(s.LastSyncedAt),
	)
}

func (e *entityTx) UpdateSchedule(ctx context.Context, s *model.CourtSchedule) error {
	return e.exec(ctx, `
        UPDATE court_schedules SET
            case_number = $2,
            case_title = $3,
            case_type = $4,
            judge_name = $5,
            court_room = $6,
            hearing_date = $7,
            hearing_time = $8,
            agenda = $9,
            status = $10,
            sync_status = $11,
            last_synced_at = $12,
            updated_at = now()
        WHERE id = $1`,
		s.ID, s.CaseNumber, s.CaseTitle, s.CaseType, s.JudgeName, s.CourtRoom,
		nullString(s.Date), nullString(s.Time), s.Agenda, string(s.Status),
		s.SyncStatus, nullTime(s.LastSyncedAt),
	)
}

const caseColumns = `id, sipp_case_id, case_number, title, case_type, plaintiff, defendant,
        judge_name, register_date, status, notes, sync_status, last_synced_at, created_at, updated_at`

func scanCase(row *sql.Row) (*model.CourtCase, error) {
	var c model.CourtCase
	var status string
	var registerDate sql.NullString
	var lastSyncedAt sql.NullTime

	err := row.Scan(
		&c.ID, &c.SippCaseID, &c.CaseNumber, &c.Title, &c.CaseType, &c.Plaintiff, &c.Defendant,
		&c.JudgeName, &registerDate, &status, &c.Notes, &c.SyncStatus, &lastSyncedAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.Status = model.CaseStatus(status)
	if registerDate.Valid {
		c.RegisterDate = &registerDate.String
	}
	if lastSyncedAt.Valid {
		t := lastSyncedAt.Time
		c.LastSyncedAt = &t
	}
	return &c, nil
}

func (e *entityTx) FindCaseBySippID(ctx context.Context, sippCaseID string) (*model.CourtCase, error) {
	row := e.tx.QueryRowContext(ctx,
		`SELECT `+caseColumns+` FROM court_cases WHERE sipp_case_id = $1 LIMIT 1`, sippCaseID)
	return scanCase(row)
}

func (e *entityTx) CreateCase(ctx context.Context, c *model.CourtCase) error {
	return e.exec(ctx, `
        INSERT INTO court_cases (
            sipp_case_id, case_number, title, case_type, plaintiff, defendant,
            judge_name, register_date, status, notes, sync_status, last_synced_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		c.SippCaseID, c.CaseNumber, c.Title, c.CaseType, c.Plaintiff, c.Defendant,
		c.JudgeName, nullString(c.RegisterDate), string(c.Status), c.Notes,
		c.SyncStatus, nullTime(c.LastSyncedAt),
	)
}

func (e *entityTx) UpdateCase(ctx context.Context, c *model.CourtCase) error {
	return e.exec(ctx, `
        UPDATE court_cases SET
            case_number = $2,
            title = $3,
            case_type = $4,
            plaintiff = $5,
            defendant = $6,
            judge_name = $7,
            register_date = $8,
            status = $9,
            notes = $10,
            sync_status = $11,
            last_synced_at = $12,
            updated_at = now()
        WHERE id = $1`,
		c.ID, c.CaseNumber, c.Title, c.CaseType, c.Plaintiff, c.Defendant,
		c.JudgeName, nullString(c.RegisterDate), string(c.Status), c.Notes,
		c.SyncStatus, nullTime(c.LastSyncedAt),
	)
}

func (e *entityTx) FindJudgeByName(ctx context.Context, name string) (*model.Judge, error) {
	row := e.tx.QueryRowContext(ctx, `
        SELECT id, name, nip, rank, position, sync_status, last_synced_at, created_at, updated_at
        FROM judges WHERE name = $1 LIMIT 1`, name)

	var j model.Judge
	var lastSyncedAt sql.NullTime
	err := row.Scan(&j.ID, &j.Name, &j.NIP, &j.Rank, &j.Position, &j.SyncStatus, &lastSyncedAt, &j.CreatedAt, &j.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastSyncedAt.Valid {
		t := lastSyncedAt.Time
		j.LastSyncedAt = &t
	}
	return &j, nil
}

func (e *entityTx) CreateJudge(ctx context.Context, j *model.Judge) error {
	return e.exec(ctx, `
        INSERT INTO judges (name, nip, rank, position, sync_status, last_synced_at)
        VALUES ($1,$2,$3,$4,$5,$6)`,
		j.Name, j.NIP, j.Rank, j.Position, j.SyncStatus, nullTime(j.LastSyncedAt),
	)
}

func (e *entityTx) UpdateJudge(ctx context.Context, j *model.Judge) error {
	return e.exec(ctx, `
        UPDATE judges SET
            nip = $2, rank = $3, position = $4,
            sync_status = $5, last_synced_at = $6, updated_at = now()
        WHERE id = $1`,
		j.ID, j.NIP, j.Rank, j.Position, j.SyncStatus, nullTime(j.LastSyncedAt),
	)
}

func (e *entityTx) FindCourtRoomByName(ctx context.Context, name string) (*model.CourtRoom, error) {
	row := e.tx.QueryRowContext(ctx, `
        SELECT id, name, location, sync_status, last_synced_at, created_at, updated_at
        FROM court_rooms WHERE name = $1 LIMIT 1`, name)

	var cr model.CourtRoom
	var lastSyncedAt sql.NullTime
	err := row.Scan(&cr.ID, &cr.Name, &cr.Location, &cr.SyncStatus, &lastSyncedAt, &cr.CreatedAt, &cr.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastSyncedAt.Valid {
		t := lastSyncedAt.Time
		cr.LastSyncedAt = &t
	}
	return &cr, nil
}

func (e *entityTx) CreateCourtRoom(ctx context.Context, cr *model.CourtRoom) error {
	return e.exec(ctx, `
        INSERT INTO court_rooms (name, location, sync_status, last_synced_at)
        VALUES ($1,$2,$3,$4)`,
		cr.Name, cr.Location, cr.SyncStatus, nullTime(cr.LastSyncedAt),
	)
}

func (e *entityTx) UpdateCourtRoom(ctx context.Context, cr *model.CourtRoom) error {
	return e.exec(ctx, `
        UPDATE court_rooms SET
            location = $2, sync_status = $3, last_synced_at = $4, updated_at = now()
        WHERE id = $1`,
		cr.ID, cr.Location, cr.SyncStatus, nullTime(cr.LastSyncedAt),
	)
}

func (e *entityTx) FindCaseTypeByCode(ctx context.Context, code string) (*model.CaseType, error) {
	row := e.tx.QueryRowContext(ctx, `
        SELECT id, code, name, description, sync_status, last_synced_at, created_at, updated_at
        FROM case_types WHERE code = $1 LIMIT 1`, code)

	var ct model.CaseType
	var lastSyncedAt sql.NullTime
	err := row.Scan(&ct.ID, &ct.Code, &ct.Name, &ct.Description, &ct.SyncStatus, &lastSyncedAt, &ct.CreatedAt, &ct.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastSyncedAt.Valid {
		t := lastSyncedAt.Time
		ct.LastSyncedAt = &t
	}
	return &ct, nil
}

func (e *entityTx) CreateCaseType(ctx context.Context, ct *model.CaseType) error {
	return e.exec(ctx, `
        INSERT INTO case_types (code, name, description, sync_status, last_synced_at)
        VALUES ($1,$2,$3,$4,$5)`,
		ct.Code, ct.Name, ct.Description, ct.SyncStatus, nullTime(ct.LastSyncedAt),
	)
}

func (e *entityTx) UpdateCaseType(ctx context.Context, ct *model.CaseType) error {
	return e.exec(ctx, `
        UPDATE case_types SET
            name = $2, description = $3, sync_status = $4, last_synced_at = $5, updated_at = now()
        WHERE id = $1`,
		ct.ID, ct.Name, ct.Description, ct.SyncStatus, nullTime(ct.LastSyncedAt),
	)
}

// Sync log bookkeeping.

func (r *PostgresRepo) CreateSyncLog(ctx context.Context, syncType, triggeredBy string) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
        INSERT INTO sync_logs (sync_type, status, triggered_by)
        VALUES ($1, 'running', $2)
        RETURNING id`, syncType, triggeredBy).Scan(&id)
	return id, err
}

func (r *PostgresRepo) FinishSyncLog(ctx context.Context, id int64, status string, errorMessage *string, stats []byte) error {
	_, err := r.DB.ExecContext(ctx, `
        UPDATE sync_logs SET
            status = $2,
            completed_at = now(),
            error_message = $3,
            stats = $4
        WHERE id = $1`,
		id, status, nullString(errorMessage), stats,
	)
	return err
}

func (r *PostgresRepo) LastSuccessfulSyncAt(ctx context.Context) (*time.Time, error) {
	row := r.DB.QueryRowContext(ctx, `
        SELECT completed_at FROM sync_logs
        WHERE status = 'success' AND completed_at IS NOT NULL
        ORDER BY completed_at DESC LIMIT 1`)

	var completedAt time.Time
	err := row.Scan(&completedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &completedAt, nil
}

func (r *PostgresRepo) GetSyncHistory(ctx context.Context, limit int) ([]model.SyncLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, sync_type, status, triggered_by, started_at, completed_at, error_message, stats
        FROM sync_logs
        ORDER BY started_at DESC
        LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.SyncLog{}
	for rows.Next() {
		var l model.SyncLog
		var completedAt sql.NullTime
		var errorMessage sql.NullString
		var stats []byte

		if err := rows.Scan(&l.ID, &l.Type, &l.Status, &l.TriggeredBy, &l.StartedAt, &completedAt, &errorMessage, &stats); err != nil {
			return nil, err
		}
		if completedAt.Valid {
			t := completedAt.Time
			l.CompletedAt = &t
		}
		if errorMessage.Valid {
			m := errorMessage.String
			l.ErrorMessage = &m
		}
		l.Stats = stats
		out = append(out, l)
	}
	return out, rows.Err()
}

// Admins and notifications.

func (r *PostgresRepo) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	row := r.DB.QueryRowContext(ctx, `
        SELECT id, username, password_hash, created_at
        FROM admins WHERE username = $1 LIMIT 1`, username)

	var a model.Admin
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PostgresRepo) GetAdmins(ctx context.Context) ([]model.Admin, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, username, password_hash, created_at FROM admins ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Admin
	for rows.Next() {
		var a model.Admin
		if err := rows.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) UpsertAdmin(ctx context.Context, username, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO admins (username, password_hash)
        VALUES ($1, $2)
        ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
		username, passwordHash,
	)
	return err
}

func (r *PostgresRepo) CreateNotification(ctx context.Context, n *model.AdminNotification) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO notifications (id, admin_id, type, data, created_at)
        VALUES ($1, $2, $3, $4, $5)`,
		n.ID, n.AdminID, n.Type, []byte(n.Data), n.CreatedAt,
	)
	return err
}

// Read side for the HTTP API.

func (r *PostgresRepo) ListSchedules(ctx context.Context, date string, limit int) ([]model.CourtSchedule, error) {
	if limit <= 0 {
		limit = 100
	}

	q := `SELECT ` + scheduleColumns + ` FROM court_schedules`
	args := []interface{}{}
	if date != "" {
		q += ` WHERE hearing_date = $1`
		args = append(args, date)
	}
	q += ` ORDER BY hearing_date DESC, hearing_time ASC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CourtSchedule{}
	for rows.Next() {
		var s model.CourtSchedule
		var status string
		var hearingDate, hearingTime sql.NullString
		var lastSyncedAt sql.NullTime

		if err := rows.Scan(
			&s.ID, &s.SippID, &s.CaseNumber, &s.CaseTitle, &s.CaseType, &s.JudgeName, &s.CourtRoom,
			&hearingDate, &hearingTime, &s.Agenda, &status, &s.SyncStatus, &lastSyncedAt,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		s.Status = model.ScheduleStatus(status)
		if hearingDate.Valid {
			v := hearingDate.String
			s.Date = &v
		}
		if hearingTime.Valid {
			v := hearingTime.String
			s.Time = &v
		}
		if lastSyncedAt.Valid {
			t := lastSyncedAt.Time
			s.LastSyncedAt = &t
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ListCases(ctx context.Context, status string, limit int) ([]model.CourtCase, error) {
	if limit <= 0 {
		limit = 100
	}

	q := `SELECT ` + caseColumns + ` FROM court_cases`
	args := []interface{}{}
	if status != "" {
		q += ` WHERE status = $1`
		args = append(args, status)
	}
	q += ` ORDER BY register_date DESC NULLS LAST LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CourtCase{}
	for rows.Next() {
		var c model.CourtCase
		var st string
		var registerDate sql.NullString
		var lastSyncedAt sql.NullTime

		if err := rows.Scan(
			&c.ID, &c.SippCaseID, &c.CaseNumber, &c.Title, &c.CaseType, &c.Plaintiff, &c.Defendant,
			&c.JudgeName, &registerDate, &st, &c.Notes, &c.SyncStatus, &lastSyncedAt,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		c.Status = model.CaseStatus(st)
		if registerDate.Valid {
			v := registerDate.String
			c.RegisterDate = &v
		}
		if lastSyncedAt.Valid {
			t := lastSyncedAt.Time
			c.LastSyncedAt = &t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) GetCaseByNumber(ctx context.Context, caseNumber string) (*model.CourtCase, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+caseColumns+` FROM court_cases WHERE case_number = $1 LIMIT 1`, caseNumber)
	return scanCase(row)
}

func (r *PostgresRepo) ListJudges(ctx context.Context) ([]model.Judge, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, name, nip, rank, position, sync_status, last_synced_at, created_at, updated_at
        FROM judges ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Judge{}
	for rows.Next() {
		var j model.Judge
		var lastSyncedAt sql.NullTime
		if err := rows.Scan(&j.ID, &j.Name, &j.NIP, &j.Rank, &j.Position, &j.SyncStatus, &lastSyncedAt, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		if lastSyncedAt.Valid {
			t := lastSyncedAt.Time
			j.LastSyncedAt = &t
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ListCourtRooms(ctx context.Context) ([]model.CourtRoom, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, name, location, sync_status, last_synced_at, created_at, updated_at
        FROM court_rooms ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CourtRoom{}
	for rows.Next() {
		var cr model.CourtRoom
		var lastSyncedAt sql.NullTime
		if err := rows.Scan(&cr.ID, &cr.Name, &cr.Location, &cr.SyncStatus, &lastSyncedAt, &cr.CreatedAt, &cr.UpdatedAt); err != nil {
			return nil, err
		}
		if lastSyncedAt.Valid {
			t := lastSyncedAt.Time
			cr.LastSyncedAt = &t
		}
		out = append(out, cr)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ListCaseTypes(ctx context.Context) ([]model.CaseType, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, code, name, description, sync_status, last_synced_at, created_at, updated_at
        FROM case_types ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CaseType{}
	for rows.Next() {
		var ct model.CaseType
		var lastSyncedAt sql.NullTime
		if err := rows.Scan(&ct.ID, &ct.Code, &ct.Name, &ct.Description, &ct.SyncStatus, &lastSyncedAt, &ct.CreatedAt, &ct.UpdatedAt); err != nil {
			return nil, err
		}
		if lastSyncedAt.Valid {
			t := lastSyncedAt.Time
			ct.LastSyncedAt = &t
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

// Case statistics. register_date is stored normalized (YYYY-MM-DD) so
// year and month filters are plain prefix matches.

func (r *PostgresRepo) CountCases(ctx context.Context, year int) (int64, error) {
	var total int64
	err := r.DB.QueryRowContext(ctx, `
        SELECT COUNT(*) FROM court_cases WHERE left(register_date, 4) = $1`,
		strconv.Itoa(year)).Scan(&total)
	return total, err
}

func (r *PostgresRepo) CountCasesByType(ctx context.Context, year int) ([]model.CaseTypeCount, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT case_type, COUNT(*) AS total
        FROM court_cases
        WHERE left(register_date, 4) = $1
        GROUP BY case_type
        ORDER BY total DESC`, strconv.Itoa(year))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CaseTypeCount{}
	for rows.Next() {
		var c model.CaseTypeCount
		if err := rows.Scan(&c.CaseType, &c.Total); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) CountCasesByStatus(ctx context.Context, year int) ([]model.CaseStatusCount, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT status, COUNT(*) AS total
        FROM court_cases
        WHERE left(register_date, 4) = $1
        GROUP BY status
        ORDER BY total DESC`, strconv.Itoa(year))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CaseStatusCount{}
	for rows.Next() {
		var c model.CaseStatusCount
		if err := rows.Scan(&c.Status, &c.Total); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) CountCasesByMonth(ctx context.Context, year int) ([]model.MonthlyCaseCount, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT left(register_date, 7) AS month, COUNT(*) AS total
        FROM court_cases
        WHERE left(register_date, 4) = $1
        GROUP BY month
        ORDER BY month`, strconv.Itoa(year))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.MonthlyCaseCount{}
	for rows.Next() {
		var c model.MonthlyCaseCount
		if err := rows.Scan(&c.Month, &c.Total); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
