package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"worktime/internal/bootstrap"
	attendancedto "worktime/internal/modules/attendance/dto"
	presencedto "worktime/internal/modules/presence/dto"
	"worktime/internal/platform/config"
	"worktime/internal/platform/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	dataDir    string
	configFile string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "worktime",
		Short:         "Office attendance client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data", defaultDataDir(), "data directory")
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (default <data>/worktime.yaml)")

	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newPresenceCmd(flags))
	root.AddCommand(newCameraCmd(flags))
	root.AddCommand(newAttendCmd(flags))
	root.AddCommand(newDriverCmd(flags))
	root.AddCommand(newShellCmd(flags))
	return root
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "worktime")
	}
	return ".worktime"
}

// loadApp reads config, routes logs and wires the application. The returned
// closer releases both.
func loadApp(ctx context.Context, flags *rootFlags, interactive bool) (*bootstrap.App, io.Closer, error) {
	cfg, err := config.Load(flags.dataDir, flags.configFile)
	if err != nil {
		return nil, nil, err
	}
	logCloser, err := log.Setup(log.Options{Dir: cfg.LogDir, Level: cfg.LogLevel, Stderr: !interactive})
	if err != nil {
		return nil, nil, err
	}
	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		_ = logCloser.Close()
		return nil, nil, err
	}
	return app, closerFunc(func() error {
		err := app.Close()
		_ = logCloser.Close()
		return err
	}), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newTUICmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the attendance terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, closer, err := loadApp(cmd.Context(), flags, true)
			if err != nil {
				return err
			}
			defer closer.Close()
			return bootstrap.RunTUI(app)
		},
	}
}

func newPresenceCmd(flags *rootFlags) *cobra.Command {
	presence := &cobra.Command{Use: "presence", Short: "Location presence checks"}
	presence.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Sample the device location and evaluate it against the office",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, closer, err := loadApp(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer closer.Close()
			verdict, err := app.PresenceCLI.Check(cmd.Context())
			if err != nil {
				return err
			}
			printVerdict(cmd.OutOrStdout(), verdict)
			return nil
		},
	})
	return presence
}

func printVerdict(w io.Writer, v presencedto.VerdictOutput) {
	_, _ = fmt.Fprintf(w, "allowed=%t kind=%s\n%s\n", v.Allowed, v.Kind, v.Explanation)
	if !v.HasFix {
		return
	}
	_, _ = fmt.Fprintf(w, "position=%s distance=%.0fm accuracy=%dm age=%s\n", v.CoordinateText, v.DistanceMeters, v.AccuracyMeters, v.Age.Truncate(time.Millisecond))
	if v.Address != "" {
		_, _ = fmt.Fprintf(w, "address=%s\n", v.Address)
	}
}

func newCameraCmd(flags *rootFlags) *cobra.Command {
	camera := &cobra.Command{Use: "camera", Short: "Camera capture"}

	camera.AddCommand(&cobra.Command{
		Use:   "devices",
		Short: "List video inputs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, closer, err := loadApp(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer closer.Close()
			devices, err := app.CaptureCLI.ListDevices(cmd.Context())
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no video inputs")
				return nil
			}
			for _, d := range devices {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", d.DeviceID, d.Label)
			}
			return nil
		},
	})

	var target string
	captureCmd := &cobra.Command{
		Use:   "capture --target <checkin|overtime>",
		Short: "Capture and keep one photo",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, closer, err := loadApp(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer closer.Close()
			out, err := app.CaptureCLI.CaptureOnce(cmd.Context(), target)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "captured %s %dx%d device=%s bytes=%d\n", out.Photo.Target, out.Photo.Width, out.Photo.Height, out.Photo.DeviceID, len(out.Photo.JPEG))
			return nil
		},
	}
	captureCmd.Flags().StringVar(&target, "target", "checkin", "photo slot: checkin|overtime")
	camera.AddCommand(captureCmd)
	return camera
}

func newAttendCmd(flags *rootFlags) *cobra.Command {
	attend := &cobra.Command{Use: "attend", Short: "Attendance actions"}

	attend.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show today's attendance record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, closer, err := loadApp(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer closer.Close()
			status, err := app.AttendanceCLI.Status(cmd.Context())
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	})

	var limit int
	journal := &cobra.Command{
		Use:   "journal",
		Short: "List recent submissions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, closer, err := loadApp(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer closer.Close()
			entries, err := app.AttendanceCLI.Journal(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no submissions")
				return nil
			}
			for _, e := range entries {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tok=%t\t%s\n", e.At.Local().Format("2006-01-02 15:04:05"), e.Kind, e.OK, e.Message)
			}
			return nil
		},
	}
	journal.Flags().IntVar(&limit, "limit", 20, "number of entries")
	attend.AddCommand(journal)

	for _, action := range []struct {
		use, short string
		requireFix bool
		photo      string
	}{
		{"checkin", "Check in with a fresh location and photo", true, "checkin"},
		{"checkout", "Check out with a fresh location", true, ""},
		{"overtime", "Start overtime with a proof photo", false, "overtime"},
		{"overtime-end", "End overtime", false, ""},
	} {
		action := action
		attend.AddCommand(&cobra.Command{
			Use:   action.use,
			Short: action.short,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				app, closer, err := loadApp(ctx, flags, false)
				if err != nil {
					return err
				}
				defer closer.Close()
				// a one-shot process has no earlier sample or photo to reuse
				verdict, err := app.PresenceCLI.Check(ctx)
				switch {
				case err == nil:
					printVerdict(cmd.ErrOrStderr(), verdict)
				case action.requireFix:
					return err
				default:
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "location unavailable: %v\n", err)
				}
				if action.photo != "" {
					if _, err := app.CaptureCLI.CaptureOnce(ctx, action.photo); err != nil {
						return err
					}
				}
				out, err := app.AttendanceCLI.Submit(ctx, action.use)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (request %s)\n", out.Message, out.RequestID)
				if out.Warning != "" {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", out.Warning)
				}
				return nil
			},
		})
	}
	return attend
}

func printStatus(w io.Writer, s attendancedto.StatusOutput) {
	r := s.Record
	_, _ = fmt.Fprintf(w, "day=%s checked_in=%t checked_out=%t overtime=%t\n", r.Day, r.HasCheckedIn, r.HasCheckedOut, r.InOvertime)
	if r.CheckInTime != "" {
		_, _ = fmt.Fprintf(w, "check_in=%s\n", r.CheckInTime)
	}
	if r.CheckOutTime != "" {
		_, _ = fmt.Fprintf(w, "check_out=%s\n", r.CheckOutTime)
	}
	if s.LateStatus != "" {
		_, _ = fmt.Fprintln(w, s.LateStatus)
	}
	_, _ = fmt.Fprintf(w, "gates checkin=%t checkout=%t overtime=%t overtime_end=%t\n", s.Gates.CheckIn, s.Gates.CheckOut, s.Gates.Overtime, s.Gates.OvertimeEnd)
	if s.Explanation != "" {
		_, _ = fmt.Fprintln(w, s.Explanation)
	}
}

func newDriverCmd(flags *rootFlags) *cobra.Command {
	driver := &cobra.Command{Use: "driver", Short: "Device driver operations"}
	driver.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show the configured device driver",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, closer, err := loadApp(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer closer.Close()
			info, err := app.DriverCLI.Info(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t binary=%s capabilities=%s\n", info.Name, info.Version, info.Enabled, info.Binary, strings.Join(info.Capabilities, ","))
			return nil
		},
	})
	driver.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate the driver checksum and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, closer, err := loadApp(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer closer.Close()
			r, err := app.DriverCLI.Doctor(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
			if r.Error != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	})
	return driver
}

func newShellCmd(flags *rootFlags) *cobra.Command {
	shell := &cobra.Command{Use: "shell", Short: "Offline app shell cache"}

	shell.AddCommand(&cobra.Command{
		Use:   "install",
		Short: "Fetch and store the app shell assets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, closer, err := loadApp(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer closer.Close()
			out, err := app.ShellCLI.Install(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "cache=%s stored=%d skipped=%d\n", out.Cache, len(out.Stored), len(out.Skipped))
			for asset, reason := range out.Skipped {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %s\n", asset, reason)
			}
			return nil
		},
	})

	shell.AddCommand(&cobra.Command{
		Use:   "activate",
		Short: "Drop caches from older shell versions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, closer, err := loadApp(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer closer.Close()
			out, err := app.ShellCLI.Activate(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "cache=%s deleted=%s\n", out.Cache, strings.Join(out.Deleted, ","))
			return nil
		},
	})

	var listen string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the app shell cache-first on a local port",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			app, closer, err := loadApp(ctx, flags, false)
			if err != nil {
				return err
			}
			defer closer.Close()
			if listen == "" {
				listen = app.Config.Shell.Listen
			}
			log.Info(log.Fields{"listen": listen, "origin": app.Config.Shell.Origin}, "[shell.serve] listening")
			return app.ShellCLI.Serve(ctx, listen, app.Config.Shell.Origin)
		},
	}
	serve.Flags().StringVar(&listen, "listen", "", "listen address (default from config)")
	shell.AddCommand(serve)
	return shell
}
