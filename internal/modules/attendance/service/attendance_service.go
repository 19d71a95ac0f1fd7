package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"worktime/internal/modules/attendance/domain"
	attendanceout "worktime/internal/modules/attendance/port/out"
	"worktime/internal/platform/clock"
	apperrors "worktime/internal/platform/errors"
	"worktime/internal/platform/id"
	"worktime/internal/platform/log"
	"worktime/internal/platform/tx"
)

type Options struct {
	Location          *time.Location
	Schedule          domain.Schedule
	OvertimeStartHour int
}

// Overview is today's record with everything derived from it and the clock.
type Overview struct {
	Record       domain.Record
	OvertimeOpen bool
	Sections     domain.Sections
	Late         domain.LateStatus
	HasLate      bool
	ServerNow    time.Time
}

type Outcome struct {
	Record    domain.Record
	Message   string
	RequestID string

	// Warning is set when the server accepted but the local copy could not be saved.
	Warning string
}

type AttendanceService struct {
	clock      clock.Clock
	entryIDs   id.Generator
	requestIDs id.Generator
	submitter  attendanceout.Submitter
	records    attendanceout.RecordStore
	journal    attendanceout.Journal
	tx         tx.Manager
	opts       Options

	// unsaved holds an accepted record whose save failed, so the session still
	// sees the server's state.
	mu         sync.Mutex
	unsaved    domain.Record
	hasUnsaved bool
}

func NewAttendanceService(
	clock clock.Clock,
	entryIDs id.Generator,
	requestIDs id.Generator,
	submitter attendanceout.Submitter,
	records attendanceout.RecordStore,
	journal attendanceout.Journal,
	txManager tx.Manager,
	opts Options,
) *AttendanceService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if txManager == nil {
		txManager = tx.NoopManager{}
	}
	return &AttendanceService{
		clock:      clock,
		entryIDs:   entryIDs,
		requestIDs: requestIDs,
		submitter:  submitter,
		records:    records,
		journal:    journal,
		tx:         txManager,
		opts:       opts,
	}
}

func (s *AttendanceService) localNow() time.Time {
	return s.clock.Now().In(s.opts.Location)
}

func (s *AttendanceService) Today(ctx context.Context) (domain.Record, error) {
	day := domain.DayKey(s.localNow())
	s.mu.Lock()
	if s.hasUnsaved && s.unsaved.Day == day {
		record := s.unsaved
		s.mu.Unlock()
		return record, nil
	}
	s.mu.Unlock()
	record, err := s.records.Load(ctx, day)
	if errors.Is(err, apperrors.ErrNotFound) {
		return domain.Record{Day: day}, nil
	}
	if err != nil {
		return domain.Record{}, err
	}
	return record, nil
}

func (s *AttendanceService) Overview(ctx context.Context) (Overview, error) {
	record, err := s.Today(ctx)
	if err != nil {
		return Overview{}, err
	}
	now := s.localNow()
	open := domain.OvertimeOpen(record, now.Hour(), s.opts.OvertimeStartHour)
	out := Overview{
		Record:       record,
		OvertimeOpen: open,
		Sections:     domain.SectionsFor(record, open),
		ServerNow:    now.Add(record.ServerOffset),
	}
	if !record.HasCheckedIn {
		out.Late, out.HasLate = s.opts.Schedule.Late(out.ServerNow)
	}
	return out, nil
}

func (s *AttendanceService) OvertimeStartHour() int {
	return s.opts.OvertimeStartHour
}

// Submit posts kind and, on success, applies the response to today's record.
// A rejected submission is journaled and leaves the record untouched.
func (s *AttendanceService) Submit(ctx context.Context, kind domain.Kind, payload domain.Payload) (Outcome, error) {
	record, err := s.Today(ctx)
	if err != nil {
		return Outcome{}, err
	}
	requestID := s.requestIDs.New()
	result, err := s.submitter.Submit(ctx, kind, requestID, payload)
	now := s.clock.Now()
	if err != nil {
		log.Warn(log.Fields{"kind": kind, "request_id": requestID, "error": err.Error()}, "[attendance.Submit] submission rejected")
		entry := domain.Entry{ID: s.entryIDs.New(), RequestID: requestID, Kind: kind, Day: record.Day, At: now, Message: domain.UserMessage(err)}
		if journalErr := s.journal.Append(ctx, entry); journalErr != nil {
			log.Warn(log.Fields{"kind": kind, "error": journalErr.Error()}, "[attendance.Submit] journal append failed")
		}
		return Outcome{}, err
	}

	next := record.Apply(kind, result, now)
	message := result.Message
	if message == "" {
		message = kind.SuccessMessage()
	}
	entry := domain.Entry{ID: s.entryIDs.New(), RequestID: requestID, Kind: kind, Day: record.Day, At: now, OK: true, Message: message}
	err = s.tx.Within(ctx, func(ctx context.Context) error {
		if err := s.records.Save(ctx, next); err != nil {
			return err
		}
		return s.journal.Append(ctx, entry)
	})
	if err != nil {
		log.ErrorWithTraceID(log.Fields{"kind": kind, log.RequestIDKey: requestID, "error": err.Error()}, "[attendance.Submit] persist record failed")
		s.mu.Lock()
		s.unsaved, s.hasUnsaved = next, true
		s.mu.Unlock()
		return Outcome{Record: next, Message: message, RequestID: requestID, Warning: domain.MessageNotSavedLocally}, nil
	}
	s.mu.Lock()
	s.hasUnsaved = false
	s.mu.Unlock()
	log.Info(log.Fields{"kind": kind, "request_id": requestID, "day": next.Day}, "[attendance.Submit] submission accepted")
	return Outcome{Record: next, Message: message, RequestID: requestID}, nil
}

func (s *AttendanceService) Journal(ctx context.Context, limit int) ([]domain.Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.journal.Recent(ctx, limit)
}
