package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	attendanceinadapter "worktime/internal/modules/attendance/adapter/in"
	attendanceoutadapter "worktime/internal/modules/attendance/adapter/out"
	attendancedomain "worktime/internal/modules/attendance/domain"
	attendanceservice "worktime/internal/modules/attendance/service"
	attendanceusecase "worktime/internal/modules/attendance/usecase"
	captureinadapter "worktime/internal/modules/capture/adapter/in"
	captureoutadapter "worktime/internal/modules/capture/adapter/out"
	captureservice "worktime/internal/modules/capture/service"
	captureusecase "worktime/internal/modules/capture/usecase"
	driverinadapter "worktime/internal/modules/driver/adapter/in"
	driveroutadapter "worktime/internal/modules/driver/adapter/out"
	driverservice "worktime/internal/modules/driver/service"
	driverusecase "worktime/internal/modules/driver/usecase"
	presenceinadapter "worktime/internal/modules/presence/adapter/in"
	presenceoutadapter "worktime/internal/modules/presence/adapter/out"
	presencedomain "worktime/internal/modules/presence/domain"
	presenceout "worktime/internal/modules/presence/port/out"
	presenceservice "worktime/internal/modules/presence/service"
	presenceusecase "worktime/internal/modules/presence/usecase"
	shellinadapter "worktime/internal/modules/shellcache/adapter/in"
	shelloutadapter "worktime/internal/modules/shellcache/adapter/out"
	shellservice "worktime/internal/modules/shellcache/service"
	shellusecase "worktime/internal/modules/shellcache/usecase"
	"worktime/internal/platform/clock"
	"worktime/internal/platform/config"
	"worktime/internal/platform/id"
	"worktime/internal/platform/log"
	"worktime/internal/platform/sqlite"
	"worktime/internal/platform/tx"
	uiapp "worktime/internal/ui/app"
)

type App struct {
	PresenceCLI   presenceinadapter.CLIHandler
	CaptureCLI    captureinadapter.CLIHandler
	DriverCLI     driverinadapter.CLIHandler
	AttendanceCLI attendanceinadapter.CLIHandler
	ShellCLI      shellinadapter.CLIHandler

	Config config.Config
	db     *sql.DB
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	clk := clock.SystemClock{}

	db, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	driverUC := driverusecase.NewInteractor(driverservice.NewDriverService(
		driveroutadapter.NewConfigManifestStore(cfg.Driver),
		driveroutadapter.NewGRPCHost(),
	))

	presenceUC := presenceusecase.NewInteractor(presenceservice.NewPresenceService(
		clk,
		officeSite(cfg.Office),
		presenceoutadapter.NewDriverLocationSampler(driverUC),
		presenceoutadapter.NewHTTPAddressLookup(cfg.Geocode.URL, cfg.Geocode.UserAgent, cfg.Geocode.RatePerSecond, 0),
		presenceout.DefaultSampleOptions(),
	), clk)

	captureUC := captureusecase.NewInteractor(captureservice.NewSessionManager(
		captureoutadapter.NewDriverCamera(driverUC),
		captureoutadapter.NewBellShutter(os.Stderr),
		captureoutadapter.NewDiskPhotoArchive(cfg.PhotoDir),
		clk,
	))

	store, err := attendanceoutadapter.NewSQLiteStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("new attendance store: %w", err)
	}
	backendTimeout := time.Duration(cfg.Backend.TimeoutSeconds) * time.Second
	attendanceUC := attendanceusecase.NewInteractor(
		attendanceservice.NewAttendanceService(
			clk,
			id.NewULID(),
			id.UUID{},
			attendanceoutadapter.NewHTTPSubmitter(cfg.Backend.BaseURL, cfg.Backend.CSRFToken, backendTimeout),
			store,
			store,
			tx.NewSQLManager(db),
			attendanceservice.Options{
				Location: time.Local,
				Schedule: attendancedomain.Schedule{
					WorkStart:     cfg.Schedule.WorkStart,
					LateTolerance: time.Duration(cfg.Schedule.LateToleranceMinutes) * time.Minute,
				},
				OvertimeStartHour: cfg.Schedule.OvertimeStartHour,
			},
		),
		presenceUC,
		captureUC,
	)

	assets, err := shelloutadapter.NewSQLiteAssetStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("new shell asset store: %w", err)
	}
	shellUC := shellusecase.NewInteractor(shellservice.NewShellService(
		clk,
		assets,
		shelloutadapter.NewHTTPOrigin(backendTimeout),
		cfg.Shell.Origin,
	))

	return &App{
		PresenceCLI:   presenceinadapter.NewCLIHandler(presenceUC),
		CaptureCLI:    captureinadapter.NewCLIHandler(captureUC),
		DriverCLI:     driverinadapter.NewCLIHandler(driverUC),
		AttendanceCLI: attendanceinadapter.NewCLIHandler(attendanceUC),
		ShellCLI:      shellinadapter.NewCLIHandler(shellUC),
		Config:        cfg,
		db:            db,
	}, nil
}

// Close stops the device driver and releases the database.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = a.CaptureCLI.Close(ctx)
	var errs []error
	if err := a.DriverCLI.Shutdown(ctx); err != nil {
		log.Warn(log.Fields{"error": err}, "[bootstrap.Close] driver shutdown failed")
		errs = append(errs, err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.PresenceCLI, app.CaptureCLI, app.AttendanceCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func officeSite(o config.Office) presencedomain.OfficeSite {
	return presencedomain.OfficeSite{
		Center:            presencedomain.Coordinate{Lat: o.Latitude, Lng: o.Longitude},
		RadiusMeters:      o.RadiusMeters,
		MaxAccuracyMeters: o.MaxAccuracyMeters,
		MaxFixAge:         time.Duration(o.MaxFixAgeMillis) * time.Millisecond,
	}
}
