package in

import (
	"context"

	"worktime/internal/modules/presence/dto"
	presencein "worktime/internal/modules/presence/port/in"
)

type CLIHandler struct {
	usecase presencein.Usecase
}

func NewCLIHandler(usecase presencein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Refresh(ctx context.Context) (dto.VerdictOutput, error) {
	return h.usecase.Refresh(ctx)
}

func (h CLIHandler) ResolveAddress(ctx context.Context, generation uint64) (dto.VerdictOutput, bool, error) {
	return h.usecase.ResolveAddress(ctx, generation)
}

func (h CLIHandler) Latest(ctx context.Context) (dto.VerdictOutput, error) {
	return h.usecase.Latest(ctx)
}

func (h CLIHandler) Gates(ctx context.Context, input dto.GateInput) (dto.GateOutput, error) {
	return h.usecase.Gates(ctx, input)
}

// Check refreshes and waits for the address, for one-shot command output.
func (h CLIHandler) Check(ctx context.Context) (dto.VerdictOutput, error) {
	verdict, err := h.usecase.Refresh(ctx)
	if err != nil {
		return dto.VerdictOutput{}, err
	}
	if !verdict.HasFix {
		return verdict, nil
	}
	resolved, _, err := h.usecase.ResolveAddress(ctx, verdict.Generation)
	if err != nil {
		return dto.VerdictOutput{}, err
	}
	return resolved, nil
}
