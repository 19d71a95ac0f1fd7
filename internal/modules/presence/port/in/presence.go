package in

import (
	"context"

	"worktime/internal/modules/presence/dto"
)

type Usecase interface {
	Refresh(ctx context.Context) (dto.VerdictOutput, error)
	ResolveAddress(ctx context.Context, generation uint64) (dto.VerdictOutput, bool, error)
	Latest(ctx context.Context) (dto.VerdictOutput, error)
	LatestFix(ctx context.Context) (dto.FixOutput, error)
	Gates(ctx context.Context, input dto.GateInput) (dto.GateOutput, error)
}
