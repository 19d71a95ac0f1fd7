package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "worktime/internal/platform/errors"
)

type Kind string

const (
	KindCheckIn       Kind = "check-in"
	KindCheckOut      Kind = "check-out"
	KindOvertimeStart Kind = "overtime"
	KindOvertimeEnd   Kind = "overtime-end"
)

func (k Kind) Endpoint() string {
	switch k {
	case KindCheckIn:
		return "/absen/checkin"
	case KindCheckOut:
		return "/absen/checkout"
	case KindOvertimeStart:
		return "/absen/overtime"
	case KindOvertimeEnd:
		return "/absen/overtime-end"
	default:
		return ""
	}
}

func ParseKind(raw string) (Kind, error) {
	switch Kind(raw) {
	case KindCheckIn, KindCheckOut, KindOvertimeStart, KindOvertimeEnd:
		return Kind(raw), nil
	case "checkin":
		return KindCheckIn, nil
	case "checkout":
		return KindCheckOut, nil
	default:
		return "", fmt.Errorf("%w: unknown attendance kind %q", apperrors.ErrInvalidInput, raw)
	}
}

// Messages shown when the server omits one.
const (
	MessageCheckedIn     = "Absen masuk berhasil."
	MessageCheckedOut    = "Absen keluar berhasil."
	MessageOvertimeOn    = "Absen lembur aktif."
	MessageOvertimeEnded = "Absen keluar lembur berhasil."
	MessageDefaultError  = "Terjadi kesalahan."

	MessageNoLocation        = "Lokasi belum tersedia."
	MessageNoCheckInPhoto    = "Ambil foto absen terlebih dahulu."
	MessageCheckInFirst      = "Absen masuk dulu sebelum lembur."
	MessageNotCheckedIn      = "Belum absen masuk."
	MessageNoOvertimePhoto   = "Ambil bukti lembur terlebih dahulu."
	MessageAlreadyCheckedIn  = "Sudah absen masuk."
	MessageAlreadyCheckedOut = "Sudah absen keluar."
	MessageNotInOvertime     = "Belum absen lembur."
	MessageOvertimeClosed    = "Lembur hanya tersedia mulai jam %02d.00."
	MessageAlreadyOvertime   = "Lembur sudah aktif."
	MessageNotSavedLocally   = "Tercatat di server, tetapi gagal disimpan di perangkat."
)

func (k Kind) SuccessMessage() string {
	switch k {
	case KindCheckIn:
		return MessageCheckedIn
	case KindCheckOut:
		return MessageCheckedOut
	case KindOvertimeStart:
		return MessageOvertimeOn
	case KindOvertimeEnd:
		return MessageOvertimeEnded
	default:
		return ""
	}
}

// RefreshesPresence reports whether the presence gates must be recomputed after a successful submission.
func (k Kind) RefreshesPresence() bool {
	return k != KindOvertimeStart
}

// Record is today's attendance state as last known by this client.
type Record struct {
	Day           string
	HasCheckedIn  bool
	HasCheckedOut bool
	InOvertime    bool
	CheckInTime   string
	CheckOutTime  string
	ServerOffset  time.Duration
	UpdatedAt     time.Time
}

func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Apply returns the record after a successful submission of kind.
func (r Record) Apply(kind Kind, result Result, now time.Time) Record {
	next := r
	switch kind {
	case KindCheckIn:
		next.HasCheckedIn = true
		if result.CheckInTime != "" {
			next.CheckInTime = result.CheckInTime
		}
	case KindCheckOut:
		next.HasCheckedOut = true
		if result.CheckOutTime != "" {
			next.CheckOutTime = result.CheckOutTime
		}
	case KindOvertimeStart:
		next.InOvertime = true
	case KindOvertimeEnd:
		next.InOvertime = false
		next.HasCheckedOut = true
		if result.CheckOutTime != "" {
			next.CheckOutTime = result.CheckOutTime
		}
	}
	if !result.ServerTime.IsZero() {
		next.ServerOffset = result.ServerTime.Sub(now)
	}
	next.UpdatedAt = now
	return next
}

type Gates struct {
	CheckIn     bool
	CheckOut    bool
	Overtime    bool
	OvertimeEnd bool
}

// OvertimeOpen is evaluated against the device clock's local hour.
// TODO: use the server-corrected clock here once the backend exposes the office timezone.
func OvertimeOpen(r Record, localHour, startHour int) bool {
	return localHour >= startHour && r.HasCheckedIn && !r.InOvertime
}

type Sections struct {
	ShowCheckIn     bool
	CheckInNote     string
	ShowCheckOut    bool
	CheckOutNote    string
	ShowOvertime    bool
	ShowOvertimeEnd bool
}

func SectionsFor(r Record, overtimeOpen bool) Sections {
	s := Sections{
		ShowCheckIn:     !r.HasCheckedIn,
		ShowCheckOut:    !r.InOvertime && !r.HasCheckedOut,
		ShowOvertime:    overtimeOpen,
		ShowOvertimeEnd: r.InOvertime,
	}
	if r.HasCheckedIn {
		s.CheckInNote = MessageAlreadyCheckedIn
		if r.CheckInTime != "" {
			s.CheckInNote = fmt.Sprintf("Sudah absen masuk jam %s.", r.CheckInTime)
		}
	}
	if r.HasCheckedOut && !r.InOvertime {
		s.CheckOutNote = MessageAlreadyCheckedOut
		if r.CheckOutTime != "" {
			s.CheckOutNote = fmt.Sprintf("Sudah absen keluar jam %s.", r.CheckOutTime)
		}
	}
	return s
}

type Schedule struct {
	WorkStart     string
	LateTolerance time.Duration
}

type LateStatus struct {
	Late bool
	Text string
}

// Late compares now with today's work start plus tolerance. now should already be server-corrected.
func (s Schedule) Late(now time.Time) (LateStatus, bool) {
	h, m, sec, ok := parseClock(s.WorkStart)
	if !ok {
		return LateStatus{}, false
	}
	start := time.Date(now.Year(), now.Month(), now.Day(), h, m, sec, 0, now.Location())
	diff := int64(now.Sub(start)/time.Second) - int64(s.LateTolerance/time.Second)
	if diff > 0 {
		return LateStatus{Late: true, Text: "Telat " + FormatDuration(diff)}, true
	}
	if diff < 0 {
		diff = -diff
	}
	return LateStatus{Text: fmt.Sprintf("Belum telat · Mulai %s · %s", s.WorkStart, FormatDuration(diff))}, true
}

func parseClock(raw string) (int, int, int, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, false
	}
	values := [3]int{}
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return 0, 0, 0, false
		}
		values[i] = v
	}
	if values[0] > 23 || values[1] > 59 || values[2] > 59 {
		return 0, 0, 0, false
	}
	return values[0], values[1], values[2], true
}

func FormatDuration(totalSeconds int64) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	return fmt.Sprintf("%d jam %d menit %d detik", totalSeconds/3600, (totalSeconds%3600)/60, totalSeconds%60)
}

// Position is the fix attached to a submission.
type Position struct {
	Lat               float64
	Lng               float64
	Accuracy          int
	PositionTimestamp int64
	FixAgeMS          int64
	Address           string
}

// Payload is what a submission carries. A nil Position sends no location fields.
type Payload struct {
	Position *Position
	Photo    string
}

type Result struct {
	Message      string
	CheckInTime  string
	CheckOutTime string
	ServerTime   time.Time
}

// SubmitError carries the message to show the user for a rejected submission.
type SubmitError struct {
	Status  int
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	if e.Message == "" {
		return MessageDefaultError
	}
	return e.Message
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text to show for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var submitErr *SubmitError
	if errors.As(err, &submitErr) {
		return submitErr.Error()
	}
	var actionErr *ActionError
	if errors.As(err, &actionErr) {
		return actionErr.Message
	}
	return MessageDefaultError
}

// ActionError is a client-side gate refusing an action before anything is sent.
type ActionError struct {
	Kind    Kind
	Message string
}

func (e *ActionError) Error() string {
	return e.Message
}

func (e *ActionError) Unwrap() error {
	return apperrors.ErrActionNotAllowed
}

func Refuse(kind Kind, message string) error {
	return &ActionError{Kind: kind, Message: message}
}

// Entry is one journaled submission attempt.
type Entry struct {
	ID        string
	RequestID string
	Kind      Kind
	Day       string
	At        time.Time
	OK        bool
	Message   string
}
