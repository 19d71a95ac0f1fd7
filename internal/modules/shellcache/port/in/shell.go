package in

import (
	"context"

	"worktime/internal/modules/shellcache/dto"
)

type Usecase interface {
	Install(ctx context.Context) (dto.InstallOutput, error)
	Activate(ctx context.Context) (dto.ActivateOutput, error)
	Fetch(ctx context.Context, input dto.FetchInput) (dto.FetchOutput, error)
	Status(ctx context.Context) (dto.StatusOutput, error)
}
