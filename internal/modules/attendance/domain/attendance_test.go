package domain_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"worktime/internal/modules/attendance/domain"
	apperrors "worktime/internal/platform/errors"
)

func TestApplyUpdatesRecordPerKind(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	rec := domain.Record{Day: "2026-03-02"}

	rec = rec.Apply(domain.KindCheckIn, domain.Result{CheckInTime: "08:00"}, now)
	if !rec.HasCheckedIn || rec.CheckInTime != "08:00" {
		t.Fatalf("check-in not applied: %+v", rec)
	}
	rec = rec.Apply(domain.KindOvertimeStart, domain.Result{}, now)
	if !rec.InOvertime || rec.HasCheckedOut {
		t.Fatalf("overtime start not applied: %+v", rec)
	}
	rec = rec.Apply(domain.KindOvertimeEnd, domain.Result{CheckOutTime: "21:10"}, now)
	if rec.InOvertime || !rec.HasCheckedOut || rec.CheckOutTime != "21:10" {
		t.Fatalf("overtime end not applied: %+v", rec)
	}

	kept := domain.Record{Day: "d", HasCheckedIn: true, CheckInTime: "07:55"}.Apply(domain.KindCheckIn, domain.Result{}, now)
	if kept.CheckInTime != "07:55" {
		t.Fatalf("empty response time must keep the cached one, got %q", kept.CheckInTime)
	}
}

func TestApplyLearnsServerOffset(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	rec := domain.Record{}.Apply(domain.KindCheckOut, domain.Result{ServerTime: now.Add(90 * time.Second)}, now)
	if rec.ServerOffset != 90*time.Second {
		t.Fatalf("expected 90s offset, got %s", rec.ServerOffset)
	}
}

func TestOvertimeOpen(t *testing.T) {
	t.Parallel()
	in := domain.Record{HasCheckedIn: true}
	if domain.OvertimeOpen(in, 17, 18) {
		t.Fatalf("overtime must stay closed before 18")
	}
	if !domain.OvertimeOpen(in, 18, 18) {
		t.Fatalf("overtime must open at 18")
	}
	if domain.OvertimeOpen(domain.Record{}, 20, 18) {
		t.Fatalf("overtime requires check-in")
	}
	if domain.OvertimeOpen(domain.Record{HasCheckedIn: true, InOvertime: true}, 20, 18) {
		t.Fatalf("overtime cannot start twice")
	}
}

func TestSectionsFor(t *testing.T) {
	t.Parallel()
	fresh := domain.SectionsFor(domain.Record{}, false)
	if !fresh.ShowCheckIn || !fresh.ShowCheckOut || fresh.ShowOvertime || fresh.ShowOvertimeEnd || fresh.CheckInNote != "" {
		t.Fatalf("unexpected fresh sections %+v", fresh)
	}

	in := domain.SectionsFor(domain.Record{HasCheckedIn: true, CheckInTime: "08:01"}, true)
	if in.ShowCheckIn || in.CheckInNote != "Sudah absen masuk jam 08:01." || !in.ShowOvertime {
		t.Fatalf("unexpected checked-in sections %+v", in)
	}

	overtime := domain.SectionsFor(domain.Record{HasCheckedIn: true, HasCheckedOut: true, InOvertime: true}, false)
	if overtime.ShowCheckOut || overtime.CheckOutNote != "" || !overtime.ShowOvertimeEnd {
		t.Fatalf("unexpected overtime sections %+v", overtime)
	}

	out := domain.SectionsFor(domain.Record{HasCheckedIn: true, HasCheckedOut: true}, false)
	if out.ShowCheckOut || out.CheckOutNote != "Sudah absen keluar." {
		t.Fatalf("unexpected checked-out sections %+v", out)
	}
}

func TestLateStatus(t *testing.T) {
	t.Parallel()
	schedule := domain.Schedule{WorkStart: "08:00:00", LateTolerance: 15 * time.Minute}
	cases := []struct {
		now  time.Time
		late bool
		text string
	}{
		{time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC), false, "Belum telat · Mulai 08:00:00 · 1 jam 15 menit 0 detik"},
		{time.Date(2026, 3, 2, 8, 15, 0, 0, time.UTC), false, "Belum telat · Mulai 08:00:00 · 0 jam 0 menit 0 detik"},
		{time.Date(2026, 3, 2, 9, 20, 5, 0, time.UTC), true, "Telat 1 jam 5 menit 5 detik"},
	}
	for _, tc := range cases {
		status, ok := schedule.Late(tc.now)
		if !ok {
			t.Fatalf("schedule should parse")
		}
		if status.Late != tc.late || status.Text != tc.text {
			t.Fatalf("at %s: got %+v", tc.now.Format(time.Kitchen), status)
		}
	}
	if _, ok := (domain.Schedule{WorkStart: "late"}).Late(time.Now()); ok {
		t.Fatalf("invalid work start must yield no status")
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()
	if got := domain.FormatDuration(3725); got != "1 jam 2 menit 5 detik" {
		t.Fatalf("unexpected duration %q", got)
	}
	if got := domain.FormatDuration(-4); got != "0 jam 0 menit 0 detik" {
		t.Fatalf("negative durations clamp to zero, got %q", got)
	}
}

func TestUserMessage(t *testing.T) {
	t.Parallel()
	if got := domain.UserMessage(&domain.SubmitError{Status: 422, Message: "Di luar jam kerja."}); got != "Di luar jam kerja." {
		t.Fatalf("server message lost: %q", got)
	}
	if got := domain.UserMessage(fmt.Errorf("wrap: %w", &domain.SubmitError{Status: 500})); got != domain.MessageDefaultError {
		t.Fatalf("expected default message, got %q", got)
	}
	refusal := domain.Refuse(domain.KindCheckIn, domain.MessageNoCheckInPhoto)
	if got := domain.UserMessage(refusal); got != domain.MessageNoCheckInPhoto {
		t.Fatalf("unexpected refusal message %q", got)
	}
	if !errors.Is(refusal, apperrors.ErrActionNotAllowed) {
		t.Fatalf("refusal must classify as ErrActionNotAllowed")
	}
	if got := domain.UserMessage(errors.New("dial tcp: refused")); got != domain.MessageDefaultError {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestKindEndpoints(t *testing.T) {
	t.Parallel()
	want := map[domain.Kind]string{
		domain.KindCheckIn:       "/absen/checkin",
		domain.KindCheckOut:      "/absen/checkout",
		domain.KindOvertimeStart: "/absen/overtime",
		domain.KindOvertimeEnd:   "/absen/overtime-end",
	}
	for kind, endpoint := range want {
		if kind.Endpoint() != endpoint {
			t.Fatalf("%s: got %s", kind, kind.Endpoint())
		}
	}
	if _, err := domain.ParseKind("lunch"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
