package in

import (
	"context"

	"worktime/internal/modules/attendance/dto"
)

type Usecase interface {
	Status(ctx context.Context) (dto.StatusOutput, error)
	CheckIn(ctx context.Context) (dto.SubmitOutput, error)
	CheckOut(ctx context.Context) (dto.SubmitOutput, error)
	StartOvertime(ctx context.Context) (dto.SubmitOutput, error)
	EndOvertime(ctx context.Context) (dto.SubmitOutput, error)
	Journal(ctx context.Context, limit int) ([]dto.JournalEntry, error)
}
