package out_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	attendanceadapter "worktime/internal/modules/attendance/adapter/out"
	"worktime/internal/modules/attendance/domain"
	apperrors "worktime/internal/platform/errors"
	"worktime/internal/platform/sqlite"
	"worktime/internal/platform/tx"
)

func TestSQLiteStoreRecordRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "worktime.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	store, err := attendanceadapter.NewSQLiteStore(ctx, db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.Load(ctx, "2026-03-02"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	record := domain.Record{
		Day:          "2026-03-02",
		HasCheckedIn: true,
		InOvertime:   true,
		CheckInTime:  "07:58",
		ServerOffset: -1500 * time.Millisecond,
		UpdatedAt:    time.Date(2026, 3, 2, 18, 1, 0, 0, time.UTC),
	}
	if err := tx.NewSQLManager(db).Within(ctx, func(ctx context.Context) error {
		return store.Save(ctx, record)
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(ctx, "2026-03-02")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Day != record.Day || !got.HasCheckedIn || got.HasCheckedOut || !got.InOvertime || got.CheckInTime != "07:58" {
		t.Fatalf("unexpected record %+v", got)
	}
	if got.ServerOffset != record.ServerOffset || !got.UpdatedAt.Equal(record.UpdatedAt) {
		t.Fatalf("offset or timestamp lost: %+v", got)
	}
}

func TestSQLiteStoreJournalNewestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "worktime.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	store, err := attendanceadapter.NewSQLiteStore(ctx, db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"01A", "01B", "01C"} {
		entry := domain.Entry{ID: id, RequestID: "req-" + id, Kind: domain.KindCheckIn, Day: "2026-03-02", At: at.Add(time.Duration(i) * time.Minute), OK: i == 2, Message: "m" + id}
		if err := store.Append(ctx, entry); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	entries, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "01C" || entries[1].ID != "01B" {
		t.Fatalf("unexpected order %+v", entries)
	}
	if !entries[0].OK || entries[1].OK || entries[0].Kind != domain.KindCheckIn || !entries[0].At.Equal(at.Add(2*time.Minute)) {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
}
