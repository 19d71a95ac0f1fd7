package in

import (
	"context"

	"worktime/internal/modules/driver/dto"
	driverin "worktime/internal/modules/driver/port/in"
)

type CLIHandler struct {
	usecase driverin.Usecase
}

func NewCLIHandler(usecase driverin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Info(ctx context.Context) (dto.DriverInfo, error) {
	return h.usecase.Info(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) (dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}

func (h CLIHandler) Shutdown(ctx context.Context) error {
	return h.usecase.Shutdown(ctx)
}
