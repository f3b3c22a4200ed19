package hyprsunset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"solshift/internal/logging"
)

// ProcessController drives hyprsunset by respawning it with a mode flag
// instead of speaking the socket protocol. Each command terminates any
// running instance by name, waits briefly for it to exit, then starts a
// detached replacement.
type ProcessController struct {
	binary       string
	restartDelay time.Duration
	logger       *slog.Logger
}

// ProcessOptions tune restart behavior.
type ProcessOptions struct {
	RestartDelay time.Duration
}

const defaultRestartDelay = 500 * time.Millisecond

// NewProcessController returns a controller for the given binary. The
// binary must be on PATH; availability is checked at daemon startup.
func NewProcessController(binary string, opts ProcessOptions, logger *slog.Logger) *ProcessController {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	restartDelay := opts.RestartDelay
	if restartDelay <= 0 {
		restartDelay = defaultRestartDelay
	}
	return &ProcessController{
		binary:       binary,
		restartDelay: restartDelay,
		logger:       logging.WithComponent(logger, "hyprsunset"),
	}
}

// Enable restarts hyprsunset with the given color temperature.
func (p *ProcessController) Enable(ctx context.Context, temperature int) error {
	return p.respawn(ctx, "--temperature", strconv.Itoa(temperature))
}

// Disable restarts hyprsunset in identity mode (no filter).
func (p *ProcessController) Disable(ctx context.Context) error {
	return p.respawn(ctx, "--identity")
}

func (p *ProcessController) respawn(ctx context.Context, args ...string) error {
	if err := p.terminateRunning(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.restartDelay):
	}

	cmd := exec.Command(p.binary, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.binary, err)
	}
	p.logger.Debug("controller respawned",
		logging.Int("pid", cmd.Process.Pid),
		logging.String("mode", strings.Join(args, " ")),
	)
	return cmd.Process.Release()
}

// terminateRunning sends SIGTERM to every process whose command name matches
// the controller binary. A vanished process is not an error.
func (p *ProcessController) terminateRunning() error {
	pids, err := findProcessesByName(filepath.Base(p.binary))
	if err != nil {
		return fmt.Errorf("scan for running %s: %w", p.binary, err)
	}
	for _, pid := range pids {
		if err := unix.Kill(pid, unix.SIGTERM); err != nil && !errors.Is(err, unix.ESRCH) {
			p.logger.Warn("terminate running controller",
				logging.Int("pid", pid),
				logging.Error(err),
			)
		}
	}
	return nil
}

func findProcessesByName(name string) ([]int, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, err
	}

	self := os.Getpid()
	var pids []int
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid == self {
			continue
		}
		comm, err := os.ReadFile(filepath.Join("/proc", entry.Name(), "comm"))
		if err != nil {
			// Process exited mid-scan.
			continue
		}
		if strings.TrimSpace(string(comm)) == name {
			pids = append(pids, pid)
		}
	}
	return pids, nil
}
