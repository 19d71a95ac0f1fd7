package in

import (
	"context"
	"fmt"

	"worktime/internal/modules/attendance/dto"
	attendancein "worktime/internal/modules/attendance/port/in"
	apperrors "worktime/internal/platform/errors"
)

type CLIHandler struct {
	usecase attendancein.Usecase
}

func NewCLIHandler(usecase attendancein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Status(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) CheckIn(ctx context.Context) (dto.SubmitOutput, error) {
	return h.usecase.CheckIn(ctx)
}

func (h CLIHandler) CheckOut(ctx context.Context) (dto.SubmitOutput, error) {
	return h.usecase.CheckOut(ctx)
}

func (h CLIHandler) StartOvertime(ctx context.Context) (dto.SubmitOutput, error) {
	return h.usecase.StartOvertime(ctx)
}

func (h CLIHandler) EndOvertime(ctx context.Context) (dto.SubmitOutput, error) {
	return h.usecase.EndOvertime(ctx)
}

// Submit dispatches by action identifier.
func (h CLIHandler) Submit(ctx context.Context, action string) (dto.SubmitOutput, error) {
	switch action {
	case "checkin":
		return h.usecase.CheckIn(ctx)
	case "checkout":
		return h.usecase.CheckOut(ctx)
	case "overtime":
		return h.usecase.StartOvertime(ctx)
	case "overtime-end":
		return h.usecase.EndOvertime(ctx)
	default:
		return dto.SubmitOutput{}, fmt.Errorf("%w: unknown attendance action %q", apperrors.ErrInvalidInput, action)
	}
}

func (h CLIHandler) Journal(ctx context.Context, limit int) ([]dto.JournalEntry, error) {
	return h.usecase.Journal(ctx, limit)
}
