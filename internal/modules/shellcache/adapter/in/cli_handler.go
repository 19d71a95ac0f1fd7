package in

import (
	"context"

	"worktime/internal/modules/shellcache/dto"
	shellin "worktime/internal/modules/shellcache/port/in"
)

type CLIHandler struct {
	usecase shellin.Usecase
}

func NewCLIHandler(usecase shellin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Install(ctx context.Context) (dto.InstallOutput, error) {
	return h.usecase.Install(ctx)
}

func (h CLIHandler) Activate(ctx context.Context) (dto.ActivateOutput, error) {
	return h.usecase.Activate(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

// Serve blocks until ctx is done or the listener fails.
func (h CLIHandler) Serve(ctx context.Context, listen, origin string) error {
	app := NewFiberApp(h.usecase, origin)
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listen)
	}()
	select {
	case <-ctx.Done():
		return app.Shutdown()
	case err := <-errCh:
		return err
	}
}
