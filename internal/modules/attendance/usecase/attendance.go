package usecase

import (
	"context"
	"errors"
	"fmt"

	"worktime/internal/modules/attendance/domain"
	"worktime/internal/modules/attendance/dto"
	attendancein "worktime/internal/modules/attendance/port/in"
	"worktime/internal/modules/attendance/service"
	capturein "worktime/internal/modules/capture/port/in"
	presencedto "worktime/internal/modules/presence/dto"
	presencein "worktime/internal/modules/presence/port/in"
	apperrors "worktime/internal/platform/errors"
)

const (
	photoTargetCheckIn  = "checkin"
	photoTargetOvertime = "overtime"
)

type Interactor struct {
	svc      *service.AttendanceService
	presence presencein.Usecase
	capture  capturein.Usecase
}

func NewInteractor(svc *service.AttendanceService, presence presencein.Usecase, capture capturein.Usecase) attendancein.Usecase {
	return &Interactor{svc: svc, presence: presence, capture: capture}
}

func (i *Interactor) Status(ctx context.Context) (dto.StatusOutput, error) {
	overview, err := i.svc.Overview(ctx)
	if err != nil {
		return dto.StatusOutput{}, err
	}
	gates, err := i.presence.Gates(ctx, presencedto.GateInput{
		HasCheckedIn:  overview.Record.HasCheckedIn,
		HasCheckedOut: overview.Record.HasCheckedOut,
	})
	if err != nil {
		return dto.StatusOutput{}, err
	}
	return dto.StatusOutput{
		Record: toRecord(overview.Record),
		Gates: dto.GatesOutput{
			CheckIn:     gates.CheckIn,
			CheckOut:    gates.CheckOut,
			Overtime:    overview.OvertimeOpen,
			OvertimeEnd: overview.Record.InOvertime,
		},
		Sections: dto.SectionsOutput{
			ShowCheckIn:     overview.Sections.ShowCheckIn,
			CheckInNote:     overview.Sections.CheckInNote,
			ShowCheckOut:    overview.Sections.ShowCheckOut,
			CheckOutNote:    overview.Sections.CheckOutNote,
			ShowOvertime:    overview.Sections.ShowOvertime,
			ShowOvertimeEnd: overview.Sections.ShowOvertimeEnd,
		},
		LateStatus:  overview.Late.Text,
		Late:        overview.Late.Late,
		Explanation: gates.Explanation,
		ServerNow:   overview.ServerNow,
	}, nil
}

func (i *Interactor) CheckIn(ctx context.Context) (dto.SubmitOutput, error) {
	kind := domain.KindCheckIn
	position, err := i.requirePosition(ctx, kind)
	if err != nil {
		return dto.SubmitOutput{}, err
	}
	record, err := i.svc.Today(ctx)
	if err != nil {
		return dto.SubmitOutput{}, err
	}
	if record.HasCheckedIn {
		return dto.SubmitOutput{}, domain.Refuse(kind, domain.MessageAlreadyCheckedIn)
	}
	if err := i.requireGate(ctx, kind, record); err != nil {
		return dto.SubmitOutput{}, err
	}
	photo, err := i.photo(ctx, kind, photoTargetCheckIn, domain.MessageNoCheckInPhoto)
	if err != nil {
		return dto.SubmitOutput{}, err
	}
	return i.submit(ctx, kind, domain.Payload{Position: position, Photo: photo})
}

func (i *Interactor) CheckOut(ctx context.Context) (dto.SubmitOutput, error) {
	kind := domain.KindCheckOut
	position, err := i.requirePosition(ctx, kind)
	if err != nil {
		return dto.SubmitOutput{}, err
	}
	record, err := i.svc.Today(ctx)
	if err != nil {
		return dto.SubmitOutput{}, err
	}
	if record.HasCheckedOut {
		return dto.SubmitOutput{}, domain.Refuse(kind, domain.MessageAlreadyCheckedOut)
	}
	if err := i.requireGate(ctx, kind, record); err != nil {
		return dto.SubmitOutput{}, err
	}
	return i.submit(ctx, kind, domain.Payload{Position: position})
}

func (i *Interactor) StartOvertime(ctx context.Context) (dto.SubmitOutput, error) {
	kind := domain.KindOvertimeStart
	overview, err := i.svc.Overview(ctx)
	if err != nil {
		return dto.SubmitOutput{}, err
	}
	switch {
	case !overview.Record.HasCheckedIn:
		return dto.SubmitOutput{}, domain.Refuse(kind, domain.MessageCheckInFirst)
	case overview.Record.InOvertime:
		return dto.SubmitOutput{}, domain.Refuse(kind, domain.MessageAlreadyOvertime)
	case !overview.OvertimeOpen:
		return dto.SubmitOutput{}, domain.Refuse(kind, fmt.Sprintf(domain.MessageOvertimeClosed, i.svc.OvertimeStartHour()))
	}
	photo, err := i.photo(ctx, kind, photoTargetOvertime, domain.MessageNoOvertimePhoto)
	if err != nil {
		return dto.SubmitOutput{}, err
	}
	position, err := i.optionalPosition(ctx)
	if err != nil {
		return dto.SubmitOutput{}, err
	}
	return i.submit(ctx, kind, domain.Payload{Position: position, Photo: photo})
}

func (i *Interactor) EndOvertime(ctx context.Context) (dto.SubmitOutput, error) {
	kind := domain.KindOvertimeEnd
	record, err := i.svc.Today(ctx)
	if err != nil {
		return dto.SubmitOutput{}, err
	}
	if !record.InOvertime {
		return dto.SubmitOutput{}, domain.Refuse(kind, domain.MessageNotInOvertime)
	}
	position, err := i.optionalPosition(ctx)
	if err != nil {
		return dto.SubmitOutput{}, err
	}
	return i.submit(ctx, kind, domain.Payload{Position: position})
}

func (i *Interactor) Journal(ctx context.Context, limit int) ([]dto.JournalEntry, error) {
	entries, err := i.svc.Journal(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.JournalEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, dto.JournalEntry{
			ID:        entry.ID,
			RequestID: entry.RequestID,
			Kind:      string(entry.Kind),
			At:        entry.At,
			OK:        entry.OK,
			Message:   entry.Message,
		})
	}
	return out, nil
}

func (i *Interactor) submit(ctx context.Context, kind domain.Kind, payload domain.Payload) (dto.SubmitOutput, error) {
	outcome, err := i.svc.Submit(ctx, kind, payload)
	if err != nil {
		return dto.SubmitOutput{}, err
	}
	status, err := i.Status(ctx)
	if err != nil {
		return dto.SubmitOutput{}, err
	}
	return dto.SubmitOutput{
		Kind:            string(kind),
		Message:         outcome.Message,
		RequestID:       outcome.RequestID,
		Warning:         outcome.Warning,
		RefreshPresence: kind.RefreshesPresence(),
		Status:          status,
	}, nil
}

func (i *Interactor) requireGate(ctx context.Context, kind domain.Kind, record domain.Record) error {
	gates, err := i.presence.Gates(ctx, presencedto.GateInput{HasCheckedIn: record.HasCheckedIn, HasCheckedOut: record.HasCheckedOut})
	if err != nil {
		return err
	}
	enabled := gates.CheckIn
	if kind == domain.KindCheckOut {
		enabled = gates.CheckOut
	}
	if enabled {
		return nil
	}
	if kind == domain.KindCheckOut && !record.HasCheckedIn {
		return domain.Refuse(kind, domain.MessageNotCheckedIn)
	}
	if gates.Explanation == "" {
		return domain.Refuse(kind, domain.MessageNoLocation)
	}
	return domain.Refuse(kind, gates.Explanation)
}

func (i *Interactor) requirePosition(ctx context.Context, kind domain.Kind) (*domain.Position, error) {
	position, err := i.optionalPosition(ctx)
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, domain.Refuse(kind, domain.MessageNoLocation)
	}
	return position, nil
}

func (i *Interactor) optionalPosition(ctx context.Context) (*domain.Position, error) {
	fix, err := i.presence.LatestFix(ctx)
	if errors.Is(err, apperrors.ErrNoFix) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.Position{
		Lat:               fix.Lat,
		Lng:               fix.Lng,
		Accuracy:          fix.AccuracyMeters,
		PositionTimestamp: fix.Timestamp.UnixMilli(),
		FixAgeMS:          fix.Age.Milliseconds(),
		Address:           fix.Address,
	}, nil
}

func (i *Interactor) photo(ctx context.Context, kind domain.Kind, target, missing string) (string, error) {
	photo, err := i.capture.Photo(ctx, target)
	if errors.Is(err, apperrors.ErrNoPhoto) {
		return "", domain.Refuse(kind, missing)
	}
	if err != nil {
		return "", err
	}
	return photo.DataURL, nil
}

func toRecord(r domain.Record) dto.RecordOutput {
	return dto.RecordOutput{
		Day:           r.Day,
		HasCheckedIn:  r.HasCheckedIn,
		HasCheckedOut: r.HasCheckedOut,
		InOvertime:    r.InOvertime,
		CheckInTime:   r.CheckInTime,
		CheckOutTime:  r.CheckOutTime,
	}
}
