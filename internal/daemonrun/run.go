// Package daemonrun boots the daemon process: environment validation,
// logging, controller wiring, IPC, and the signal-driven shutdown path.
package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"solshift/internal/config"
	"solshift/internal/daemon"
	"solshift/internal/deps"
	"solshift/internal/hyprsunset"
	"solshift/internal/instance"
	"solshift/internal/ipc"
	"solshift/internal/logging"
	"solshift/internal/scheduler"
	"solshift/internal/solar"
)

// Options configures daemon process runtime behavior.
type Options struct {
	// LogLevel overrides the configured level when non-empty.
	LogLevel string
	// EnvFile is an optional dotenv file loaded before environment
	// validation, for launches outside a Hyprland session environment.
	EnvFile string
	// SocketPath overrides the control socket location for the IPC server.
	SocketPath string
}

// Run starts the solshift daemon runtime loop and blocks until shutdown.
// A second live instance is a clean exit, not an error.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return fmt.Errorf("load env file %s: %w", opts.EnvFile, err)
		}
	} else {
		// A .env next to the working directory is optional.
		_ = godotenv.Load()
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logPath := filepath.Join(cfg.Paths.LogDir, "solshift.log")
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(logging.String(logging.FieldRunID, uuid.NewString()))

	runtimeDir, err := hyprsunset.RuntimeDir()
	if err != nil {
		logger.Error("resolve runtime directory", logging.Error(err))
		return err
	}

	almanac, err := solar.New(solar.Location{
		Latitude:  cfg.Location.Latitude,
		Longitude: cfg.Location.Longitude,
		Altitude:  cfg.Location.Altitude,
	})
	if err != nil {
		logger.Error("invalid location", logging.Error(err))
		return fmt.Errorf("construct almanac: %w", err)
	}

	controller, err := buildController(signalCtx, cfg, logger)
	if err != nil {
		logger.Error("control channel setup", logging.Error(err))
		return err
	}

	sched := scheduler.New(almanac, controller, cfg.Filter.NightTemperature,
		scheduler.Options{DriftDelay: cfg.DriftDelay()}, logger)

	lockPath := filepath.Join(runtimeDir, "solshift.lock")
	d, err := daemon.New(sched, lockPath, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	// Start before touching the pid file or control socket so a second
	// instance never stomps on files the running daemon owns.
	if err := d.Start(signalCtx); err != nil {
		if errors.Is(err, instance.ErrAlreadyRunning) {
			logger.Info("another solshift instance holds the lock; exiting",
				logging.String("lock", lockPath))
			return nil
		}
		return fmt.Errorf("start daemon: %w", err)
	}

	pidPath := filepath.Join(runtimeDir, "solshift.pid")
	if err := writePIDFile(pidPath); err != nil {
		d.Stop()
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	socketPath := opts.SocketPath
	if socketPath == "" {
		socketPath = filepath.Join(runtimeDir, "solshift.sock")
	}
	ipcServer, err := ipc.NewServer(signalCtx, socketPath, d, cancel, logger)
	if err != nil {
		d.Stop()
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	<-signalCtx.Done()
	logger.Info("solshift daemon shutting down")
	d.Stop()
	return nil
}

func buildController(ctx context.Context, cfg *config.Config, logger *slog.Logger) (hyprsunset.Controller, error) {
	switch cfg.Hyprsunset.Mode {
	case config.ModeProcess:
		statuses := deps.CheckBinaries([]deps.Requirement{deps.Hyprsunset(cfg.Hyprsunset.Binary, false)})
		if len(statuses) > 0 && !statuses[0].Available {
			return nil, fmt.Errorf("process mode requires hyprsunset: %s", statuses[0].Detail)
		}
		return hyprsunset.NewProcessController(cfg.Hyprsunset.Binary,
			hyprsunset.ProcessOptions{RestartDelay: cfg.ProcessRestartDelay()}, logger), nil

	case config.ModeSocket:
		statuses := deps.CheckBinaries([]deps.Requirement{deps.Hyprsunset(cfg.Hyprsunset.Binary, true)})
		if len(statuses) > 0 && !statuses[0].Available {
			logger.Warn("hyprsunset binary not found; relying on an externally started instance",
				logging.String("binary", cfg.Hyprsunset.Binary))
		}
		sockPath, err := hyprsunset.SocketPath()
		if err != nil {
			return nil, err
		}
		if err := hyprsunset.WaitForSocket(ctx, sockPath,
			cfg.Hyprsunset.SocketWaitAttempts, cfg.SocketWaitInterval(), logger); err != nil {
			return nil, err
		}
		return hyprsunset.NewSocketClient(sockPath,
			hyprsunset.SocketOptions{ReadTimeout: cfg.CommandTimeout()}, logger), nil

	default:
		return nil, fmt.Errorf("unknown hyprsunset mode %q", cfg.Hyprsunset.Mode)
	}
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
