// Package mapper translates raw SIPP records into local models. SIPP
// exports the same entity under two naming schemes (English keys on the
// REST path, Indonesian keys on the legacy export path), so every field
// is resolved through an ordered candidate list.
package mapper

import (
	"fmt"
	"strings"
	"time"

	"github.com/yudhap12/go-sipp-backend/internal/model"
)

// Candidate key chains per target field. First non-empty wins.
var (
	scheduleKeyChain = []string{"sipp_id", "id", "jadwal_id"}
	caseKeyChain     = []string{"sipp_case_id", "id", "perkara_id"}

	caseNumberChain = []string{"case_number", "nomor_perkara"}
	caseTitleChain  = []string{"case_title", "title", "judul_perkara", "para_pihak"}
	caseTypeChain   = []string{"case_type", "jenis_perkara"}
	judgeNameChain  = []string{"judge_name", "judge", "hakim", "nama_hakim"}
	courtRoomChain  = []string{"court_room", "room", "ruangan", "ruang_sidang"}
	agendaChain     = []string{"agenda", "agenda_sidang", "keterangan"}
	dateChain       = []string{"date", "tanggal", "tanggal_sidang"}
	timeChain       = []string{"time", "jam", "jam_sidang"}
	statusChain     = []string{"status", "status_perkara", "tahapan"}

	plaintiffChain    = []string{"plaintiff", "penggugat", "pemohon"}
	defendantChain    = []string{"defendant", "tergugat", "termohon"}
	registerDateChain = []string{"register_date", "tanggal_pendaftaran", "tanggal_register"}
	notesChain        = []string{"notes", "catatan"}

	judgeRefNameChain  = []string{"name", "nama", "nama_hakim"}
	judgeNIPChain      = []string{"nip"}
	judgeRankChain     = []string{"rank", "golongan", "pangkat"}
	judgePositionChain = []string{"position", "jabatan"}

	roomNameChain     = []string{"name", "nama", "nama_ruangan"}
	roomLocationChain = []string{"location", "lokasi", "lantai"}

	caseTypeCodeChain = []string{"code", "kode"}
	caseTypeNameChain = []string{"name", "nama", "jenis"}
	caseTypeDescChain = []string{"description", "keterangan"}
)

// scheduleStatusVocab maps remote status strings to the local enum.
// Unknown values fall back to scheduled.
var scheduleStatusVocab = map[string]model.ScheduleStatus{
	"scheduled":    model.ScheduleScheduled,
	"dijadwalkan":  model.ScheduleScheduled,
	"ongoing":      model.ScheduleOngoing,
	"berlangsung":  model.ScheduleOngoing,
	"sidang":       model.ScheduleOngoing,
	"completed":    model.ScheduleCompleted,
	"selesai":      model.ScheduleCompleted,
	"postponed":    model.SchedulePostponed,
	"ditunda":      model.SchedulePostponed,
	"tunda":        model.SchedulePostponed,
	"cancelled":    model.ScheduleCancelled,
	"dibatalkan":   model.ScheduleCancelled,
	"batal_sidang": model.ScheduleCancelled,
}

// caseStatusVocab maps SIPP case stages to the local enum. "putus" is
// a decided case, "minutasi" and "dicabut" close the file. Unknown
// values fall back to open.
var caseStatusVocab = map[string]model.CaseStatus{
	"open":        model.CaseOpen,
	"pendaftaran": model.CaseOpen,
	"terdaftar":   model.CaseOpen,
	"ongoing":     model.CaseOngoing,
	"pemeriksaan": model.CaseOngoing,
	"persidangan": model.CaseOngoing,
	"mediasi":     model.CaseOngoing,
	"completed":   model.CaseCompleted,
	"putus":       model.CaseCompleted,
	"putusan":     model.CaseCompleted,
	"closed":      model.CaseClosed,
	"minutasi":    model.CaseClosed,
	"dicabut":     model.CaseClosed,
	"arsip":       model.CaseClosed,
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02-01-2006",
	"02/01/2006",
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"15.04",
}

// FirstString resolves a field through its candidate key chain,
// returning "" when no candidate has a usable value.
func FirstString(rec map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s := asString(rec[k]); s != "" {
			return s
		}
	}
	return ""
}

func asString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}

// NormalizeDate parses any of the known SIPP date shapes into
// YYYY-MM-DD. Unparseable input yields nil, never an error: dates are
// optional on schedules and cases.
func NormalizeDate(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			s := t.Format("2006-01-02")
			return &s
		}
	}
	return nil
}

// NormalizeTime parses to HH:MM:SS, nil on failure.
func NormalizeTime(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			s := t.Format("15:04:05")
			return &s
		}
	}
	return nil
}

func MapScheduleStatus(raw string) model.ScheduleStatus {
	if st, ok := scheduleStatusVocab[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return st
	}
	return model.ScheduleScheduled
}

func MapCaseStatus(raw string) model.CaseStatus {
	if st, ok := caseStatusVocab[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return st
	}
	return model.CaseOpen
}

// Natural key extraction. Empty string means the record cannot be
// correlated and must be counted as failed by the upsert engine.

func ScheduleKey(rec map[string]interface{}) string {
	return FirstString(rec, scheduleKeyChain...)
}

func CaseKey(rec map[string]interface{}) string {
	return FirstString(rec, caseKeyChain...)
}

func JudgeKey(rec map[string]interface{}) string {
	return FirstString(rec, judgeRefNameChain...)
}

func CourtRoomKey(rec map[string]interface{}) string {
	return FirstString(rec, roomNameChain...)
}

func CaseTypeKey(rec map[string]interface{}) string {
	if code := FirstString(rec, caseTypeCodeChain...); code != "" {
		return code
	}
	return FirstString(rec, caseTypeNameChain...)
}

// MapSchedule builds a local schedule from a raw record. The record is
// stamped synced with last_synced_at=now so the flags land in the same
// write as the payload fields.
func MapSchedule(rec map[string]interface{}, now time.Time) model.CourtSchedule {
	return model.CourtSchedule{
		SippID:       ScheduleKey(rec),
		CaseNumber:   FirstString(rec, caseNumberChain...),
		CaseTitle:    FirstString(rec, caseTitleChain...),
		CaseType:     FirstString(rec, caseTypeChain...),
		JudgeName:    FirstString(rec, judgeNameChain...),
		CourtRoom:    FirstString(rec, courtRoomChain...),
		Date:         NormalizeDate(FirstString(rec, dateChain...)),
		Time:         NormalizeTime(FirstString(rec, timeChain...)),
		Agenda:       FirstString(rec, agendaChain...),
		Status:       MapScheduleStatus(FirstString(rec, statusChain...)),
		SyncStatus:   model.SyncStateSynced,
		LastSyncedAt: &now,
	}
}

func MapCase(rec map[string]interface{}, now time.Time) model.CourtCase {
	return model.CourtCase{
		SippCaseID:   CaseKey(rec),
		CaseNumber:   FirstString(rec, caseNumberChain...),
		Title:        FirstString(rec, caseTitleChain...),
		CaseType:     FirstString(rec, caseTypeChain...),
		Plaintiff:    FirstString(rec, plaintiffChain...),
		Defendant:    FirstString(rec, defendantChain...),
		JudgeName:    FirstString(rec, judgeNameChain...),
		RegisterDate: NormalizeDate(FirstString(rec, registerDateChain...)),
		Status:       MapCaseStatus(FirstString(rec, statusChain...)),
		Notes:        FirstString(rec, notesChain...),
		SyncStatus:   model.SyncStateSynced,
		LastSyncedAt: &now,
	}
}

func MapJudge(rec map[string]interface{}, now time.Time) model.Judge {
	return model.Judge{
		Name:         JudgeKey(rec),
		NIP:          FirstString(rec, judgeNIPChain...),
		Rank:         FirstString(rec, judgeRankChain...),
		Position:     FirstString(rec, judgePositionChain...),
		SyncStatus:   model.SyncStateSynced,
		LastSyncedAt: &now,
	}
}

func MapCourtRoom(rec map[string]interface{}, now time.Time) model.CourtRoom {
	return model.CourtRoom{
		Name:         CourtRoomKey(rec),
		Location:     FirstString(rec, roomLocationChain...),
		SyncStatus:   model.SyncStateSynced,
		LastSyncedAt: &now,
	}
}

func MapCaseType(rec map[string]interface{}, now time.Time) model.CaseType {
	return model.CaseType{
		Code:         CaseTypeKey(rec),
		Name:         FirstString(rec, caseTypeNameChain...),
		Description:  FirstString(rec, caseTypeDescChain...),
		SyncStatus:   model.SyncStateSynced,
		LastSyncedAt: &now,
	}
}
