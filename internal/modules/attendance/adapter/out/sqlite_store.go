package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"worktime/internal/modules/attendance/domain"
	apperrors "worktime/internal/platform/errors"
	"worktime/internal/platform/tx"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// SQLiteStore keeps one record per day and an append-only journal of submissions.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	const records = `
CREATE TABLE IF NOT EXISTS attendance_records (
  day TEXT PRIMARY KEY,
  has_checked_in INTEGER NOT NULL,
  has_checked_out INTEGER NOT NULL,
  in_overtime INTEGER NOT NULL,
  checkin_time TEXT NOT NULL,
  checkout_time TEXT NOT NULL,
  server_offset_ms INTEGER NOT NULL,
  updated_at TEXT NOT NULL
);
`
	const journal = `
CREATE TABLE IF NOT EXISTS attendance_journal (
  id TEXT PRIMARY KEY,
  request_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  day TEXT NOT NULL,
  at TEXT NOT NULL,
  ok INTEGER NOT NULL,
  message TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, records); err != nil {
		return fmt.Errorf("create attendance_records table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, journal); err != nil {
		return fmt.Errorf("create attendance_journal table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, day string) (domain.Record, error) {
	const query = `
SELECT day, has_checked_in, has_checked_out, in_overtime, checkin_time, checkout_time, server_offset_ms, updated_at
FROM attendance_records WHERE day = ?`
	var (
		record    domain.Record
		offsetMS  int64
		updatedAt string
	)
	err := tx.From(ctx, s.db).QueryRowContext(ctx, query, day).Scan(
		&record.Day,
		&record.HasCheckedIn,
		&record.HasCheckedOut,
		&record.InOvertime,
		&record.CheckInTime,
		&record.CheckOutTime,
		&offsetMS,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, apperrors.ErrNotFound
	}
	if err != nil {
		return domain.Record{}, fmt.Errorf("load attendance record %s: %w", day, err)
	}
	record.ServerOffset = time.Duration(offsetMS) * time.Millisecond
	record.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return record, nil
}

func (s *SQLiteStore) Save(ctx context.Context, record domain.Record) error {
	if record.Day == "" {
		return fmt.Errorf("%w: attendance record without day", apperrors.ErrInvalidInput)
	}
	const stmt = `
INSERT INTO attendance_records (day, has_checked_in, has_checked_out, in_overtime, checkin_time, checkout_time, server_offset_ms, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(day) DO UPDATE SET
  has_checked_in=excluded.has_checked_in,
  has_checked_out=excluded.has_checked_out,
  in_overtime=excluded.in_overtime,
  checkin_time=excluded.checkin_time,
  checkout_time=excluded.checkout_time,
  server_offset_ms=excluded.server_offset_ms,
  updated_at=excluded.updated_at;
`
	_, err := tx.From(ctx, s.db).ExecContext(ctx, stmt,
		record.Day,
		record.HasCheckedIn,
		record.HasCheckedOut,
		record.InOvertime,
		record.CheckInTime,
		record.CheckOutTime,
		record.ServerOffset.Milliseconds(),
		record.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("save attendance record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, entry domain.Entry) error {
	const stmt = `
INSERT INTO attendance_journal (id, request_id, kind, day, at, ok, message)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.From(ctx, s.db).ExecContext(ctx, stmt,
		entry.ID,
		entry.RequestID,
		string(entry.Kind),
		entry.Day,
		entry.At.Format(timeLayout),
		entry.OK,
		entry.Message,
	)
	if err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

// Recent lists the newest entries first. Ids are ULIDs, so id order is time order.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]domain.Entry, error) {
	const query = `
SELECT id, request_id, kind, day, at, ok, message
FROM attendance_journal ORDER BY id DESC LIMIT ?`
	rows, err := tx.From(ctx, s.db).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	out := []domain.Entry{}
	for rows.Next() {
		var (
			entry domain.Entry
			kind  string
			at    string
		)
		if err := rows.Scan(&entry.ID, &entry.RequestID, &kind, &entry.Day, &at, &entry.OK, &entry.Message); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entry.Kind = domain.Kind(kind)
		entry.At, _ = time.Parse(timeLayout, at)
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return out, nil
}
