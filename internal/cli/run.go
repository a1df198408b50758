package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/arena"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/config"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/controller"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/dispatcher"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/influx"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/logging"
	intotel "github.com/nath88d/CC7711-Projeto-Robos/internal/otel"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/status"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/storage"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/storage/memory"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/worker"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds the final metric export.
const shutdownTimeout = 5 * time.Second

var runFlags struct {
	configDir string
	seed      int64
	maxTicks  uint64
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the controller in the simulated arena",
	Long: `Loads boxguard.cfg.json from the config directory (defaults apply when
it is missing), sets up logging, metrics and storage, then runs the control
loop until the arena reaches its tick limit or the process is interrupted.

The run is always ended cleanly: queued records are flushed, the storage
backend finalizes its output and a summary is printed.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runFlags.configDir, "config-dir", ".", "directory containing "+config.FileName)
	runCmd.Flags().Int64Var(&runFlags.seed, "seed", 0, "perturbation seed (overrides controller.seed)")
	runCmd.Flags().Uint64Var(&runFlags.maxTicks, "max-ticks", 0, "stop after this many ticks (overrides arena.maxTicks)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	loadErr := config.Load(runFlags.configDir)
	if loadErr != nil && !config.IsNotFound(loadErr) {
		return loadErr
	}
	settings, err := config.Current()
	if err != nil {
		return err
	}
	if loadErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s not found in %s, using defaults\n", config.FileName, runFlags.configDir)
	}

	if cmd.Flags().Changed("seed") {
		settings.Controller.Seed = runFlags.seed
	}
	if cmd.Flags().Changed("max-ticks") {
		settings.Arena.MaxTicks = runFlags.maxTicks
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := runSession(ctx, settings)
	if err != nil {
		return err
	}
	return printRunResult(cmd.OutOrStdout(), res)
}

// runResult is what a finished session reports back to the command.
type runResult struct {
	RunID        string
	Seed         int64
	Summary      core.RunSummary
	ExportPath   string
	DroppedTicks uint64
	Interrupted  bool
}

// runSession wires every component for one run, drives the loop and tears
// everything down in reverse order.
func runSession(ctx context.Context, s config.Settings) (runResult, error) {
	start := time.Now()
	res := runResult{RunID: uuid.NewString()}

	if err := os.MkdirAll(s.LogsDir, 0755); err != nil {
		return res, fmt.Errorf("failed to create logs directory: %w", err)
	}
	logFile, err := os.Create(logging.LogFilePath(s.LogsDir, appName, start))
	if err != nil {
		return res, fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()

	var extra []slog.Handler
	var graylogErr error
	if s.Graylog.Enabled {
		gh, err := logging.NewGraylogHandler(s.Graylog.Address, s.LogLevel)
		if err != nil {
			graylogErr = err
		} else {
			defer gh.Close()
			extra = append(extra, gh)
		}
	}

	slogManager := logging.NewSlogManager()
	slogManager.Setup(logFile, s.LogLevel, extra...)

	// the loop does not exist yet when the first records are written
	var current atomic.Pointer[controller.Loop]
	slogManager.SetContextProvider(func() []slog.Attr {
		l := current.Load()
		if l == nil {
			return nil
		}
		snap := l.Snapshot()
		return []slog.Attr{
			slog.Uint64("tick", snap.Tick),
			slog.String("mode", snap.Mode.String()),
		}
	})
	logger := slogManager.Logger()
	if graylogErr != nil {
		logger.Warn("Graylog disabled", "error", graylogErr)
	}
	zl := logging.NewZerolog(logFile, s.LogLevel)

	var metricWriter io.Writer
	if s.OTel.Enabled {
		metricWriter = os.Stdout
		if s.OTel.OutputFile != "" {
			f, err := os.Create(s.OTel.OutputFile)
			if err != nil {
				return res, fmt.Errorf("failed to create metric file: %w", err)
			}
			defer f.Close()
			metricWriter = f
		}
	}
	provider, err := intotel.New(intotel.Config{
		Enabled:        s.OTel.Enabled,
		ServiceName:    s.OTel.ServiceName,
		ExportInterval: s.OTel.ExportInterval,
		MetricWriter:   metricWriter,
	})
	if err != nil {
		return res, err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(sctx); err != nil {
			logger.Error("Failed to shut down metrics", "error", err)
		}
	}()

	backend, err := storage.NewBackend(s.Storage, s.DB, logger)
	if err != nil {
		return res, err
	}
	if mem, ok := backend.(*memory.Backend); ok {
		mem.SetVersion(Version)
	}
	if err := backend.Init(); err != nil {
		return res, fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("Failed to close storage", "error", err)
		}
	}()
	logger.Info("Storage initialized", "type", s.Storage.Type)

	var points worker.PointWriter
	if s.Influx.Enabled {
		im := influx.NewManager(zl, s.Influx)
		if err := im.Connect(ctx); err != nil {
			logger.Warn("Influx telemetry disabled", "error", err)
		} else {
			points = im
		}
		defer func() {
			if err := im.Close(); err != nil {
				logger.Error("Failed to close influx manager", "error", err)
			}
		}()
	}

	d, err := dispatcher.New(logging.NewDispatcherLogger(zl))
	if err != nil {
		return res, fmt.Errorf("failed to create dispatcher: %w", err)
	}
	defer d.Close()

	workers := worker.NewManager(worker.Dependencies{Logger: logger, Points: points}, backend)
	workers.RegisterHandlers(d)

	world, err := arena.New(s.Arena)
	if err != nil {
		return res, err
	}

	res.Seed = s.Controller.Seed
	if res.Seed == 0 {
		res.Seed = start.UnixNano()
	}

	loop, err := controller.New(controller.Dependencies{
		Robot:      world.Robot(),
		Supervisor: world.Supervisor(),
		Prefix:     s.Controller.TrackedPrefix,
		Timestep:   controller.DefaultTimestep,
		Rand:       rand.New(rand.NewSource(res.Seed)),
		Logger:     logger,
		Sink:       worker.NewPublisher(d, logger),
		RunID:      res.RunID,
	})
	if err != nil {
		return res, fmt.Errorf("failed to start controller: %w", err)
	}
	current.Store(loop)

	run := core.Run{
		ID:             res.RunID,
		StartTime:      start,
		Timestep:       controller.DefaultTimestep,
		Seed:           res.Seed,
		TrackedObjects: loop.Monitor().Names(),
		Version:        Version,
	}
	if err := backend.StartRun(&run); err != nil {
		return res, fmt.Errorf("failed to start run: %w", err)
	}

	var statusSvc *status.Service
	if s.Status.Enabled {
		deps := status.Dependencies{
			Logger:   logger,
			Loop:     loop,
			Path:     s.Status.Path,
			Interval: s.Status.Interval,
		}
		if ws, ok := backend.(status.WriteStats); ok {
			deps.Writes = ws
		}
		statusSvc = status.NewService(deps)
		if err := statusSvc.Start(); err != nil {
			logger.Warn("Status file disabled", "error", err)
		}
		defer statusSvc.Stop()
	}

	logger.Info("Run started", "seed", res.Seed, "maxTicks", s.Arena.MaxTicks, "metrics", provider.Enabled())
	runErr := loop.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		logger.Info("Run interrupted")
		res.Interrupted = true
		runErr = nil
	}

	if statusSvc != nil {
		statusSvc.Stop()
	}
	// drain queued ticks into the backend before the run is closed
	d.Close()
	if st, ok := d.Stats(worker.CommandTick); ok {
		res.DroppedTicks = st.Dropped
	}

	res.Summary = loop.Summary()
	res.Summary.EndTime = time.Now()
	if err := backend.EndRun(res.Summary); err != nil {
		return res, errors.Join(runErr, fmt.Errorf("failed to end run: %w", err))
	}
	if exp, ok := backend.(storage.Exportable); ok {
		res.ExportPath = exp.GetExportedFilePath()
	}

	logger.Info("Run finished",
		"ticks", res.Summary.Ticks,
		"alerted", res.Summary.Alerted,
		"recorded", workers.Recorded(),
		"pointsFailed", workers.PointsFailed())
	return res, runErr
}

func printRunResult(w io.Writer, res runResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Run:\t%s\n", res.RunID)
	fmt.Fprintf(tw, "Seed:\t%d\n", res.Seed)
	fmt.Fprintf(tw, "Ticks:\t%d\n", res.Summary.Ticks)
	if res.Summary.Alerted {
		fmt.Fprintf(tw, "Alert:\tyes (tick %d)\n", res.Summary.AlertTick)
	} else {
		fmt.Fprintf(tw, "Alert:\tno\n")
	}
	fmt.Fprintf(tw, "Stuck ticks:\t%d\n", res.Summary.StuckTicks)
	fmt.Fprintf(tw, "Perturbations:\t%d\n", res.Summary.Perturbations)
	if res.DroppedTicks > 0 {
		fmt.Fprintf(tw, "Dropped records:\t%d\n", res.DroppedTicks)
	}
	if res.ExportPath != "" {
		fmt.Fprintf(tw, "Recording:\t%s\n", res.ExportPath)
	}
	if res.Interrupted {
		fmt.Fprintf(tw, "Interrupted:\tyes\n")
	}
	return tw.Flush()
}
