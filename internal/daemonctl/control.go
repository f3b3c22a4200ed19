// Package daemonctl drives the daemon lifecycle from the CLI process:
// spawning a detached daemon, waiting for its control socket, and the
// stop/restart flows.
package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"solshift/internal/ipc"
)

// ErrDaemonNotRunning indicates the control socket is unreachable.
var ErrDaemonNotRunning = errors.New("daemon not running")

const pollInterval = 200 * time.Millisecond

// LaunchOptions carries the flags forwarded to the spawned daemon process.
type LaunchOptions struct {
	SocketPath string
	ConfigPath string
}

type StartState string

const (
	StartStateStarted        StartState = "started"
	StartStateAlreadyRunning StartState = "already_running"
)

// StartResult reports how a start request was satisfied.
type StartResult struct {
	State    StartState
	Launched bool
}

// StopResult reports how the daemon was brought down.
type StopResult struct {
	StopAcknowledged bool
	ForcedKill       bool
	PID              int
}

// RestartResult combines the stop and start halves of a restart.
type RestartResult struct {
	WasRunning bool
	Stop       StopResult
	Start      StartResult
}

// DefaultSocketPath returns the control socket location under the user
// runtime directory.
func DefaultSocketPath() (string, error) {
	runtimeDir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR"))
	if runtimeDir == "" {
		return "", fmt.Errorf("XDG_RUNTIME_DIR is not set")
	}
	return filepath.Join(runtimeDir, "solshift.sock"), nil
}

// Launch spawns `solshift run` detached from the calling process.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return fmt.Errorf("resolve executable: executable path is empty")
	}

	args := []string{"run"}
	if socket := strings.TrimSpace(opts.SocketPath); socket != "" {
		args = append(args, "--socket", socket)
	}
	if cfg := strings.TrimSpace(opts.ConfigPath); cfg != "" {
		args = append(args, "--config", cfg)
	}

	proc := exec.Command(executablePath, args...)
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

// EnsureStarted launches the daemon unless one already answers on the
// socket, then waits for the new process to report running.
func EnsureStarted(socketPath, executablePath string, opts LaunchOptions, waitTimeout time.Duration) (StartResult, error) {
	if up, _, err := running(socketPath); err == nil && up {
		return StartResult{State: StartStateAlreadyRunning}, nil
	}

	if err := Launch(executablePath, opts); err != nil {
		return StartResult{}, err
	}

	deadline := time.Now().Add(waitTimeout)
	var lastErr error
	for time.Now().Before(deadline) {
		up, _, err := running(socketPath)
		if err == nil && up {
			return StartResult{State: StartStateStarted, Launched: true}, nil
		}
		lastErr = err
		time.Sleep(pollInterval)
	}
	if lastErr == nil {
		lastErr = errors.New("daemon never reported running")
	}
	return StartResult{}, fmt.Errorf("daemon failed to start: %w", lastErr)
}

// StopAndTerminate asks the daemon to stop over IPC and falls back to
// killing the process when it still reports running after gracePeriod.
// Transient status errors during teardown are retried; only an error that
// persists through the grace period is returned.
func StopAndTerminate(socketPath string, gracePeriod time.Duration) (StopResult, error) {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		if isDaemonUnavailable(err) {
			return StopResult{}, ErrDaemonNotRunning
		}
		return StopResult{}, err
	}
	var pid int
	var lockPath string
	if status, statusErr := client.Status(); statusErr == nil && status != nil {
		pid = status.PID
		lockPath = status.LockPath
	}
	resp, err := client.Stop()
	client.Close()
	if err != nil {
		return StopResult{}, err
	}
	result := StopResult{PID: pid, StopAcknowledged: resp != nil && resp.Stopped}

	deadline := time.Now().Add(gracePeriod)
	var lastErr error
	for time.Now().Before(deadline) {
		up, livePID, err := running(socketPath)
		switch {
		case err != nil:
			lastErr = err
		case !up:
			return result, nil
		default:
			lastErr = nil
			if livePID > 0 {
				pid = livePID
			}
		}
		time.Sleep(pollInterval)
	}
	if lastErr != nil {
		return result, fmt.Errorf("confirm daemon shutdown: %w", lastErr)
	}

	pidPath := filepath.Join(filepath.Dir(socketPath), "solshift.pid")
	killedPID, killErr := forceKill(pidPath, lockPath, pid)
	if killErr != nil {
		return result, fmt.Errorf("daemon did not stop: %w", killErr)
	}
	_ = os.Remove(socketPath)
	result.ForcedKill = true
	result.PID = killedPID
	return result, nil
}

// Restart stops the daemon if running, then ensures it is started.
func Restart(socketPath, executablePath string, opts LaunchOptions, stopGracePeriod, startWaitTimeout time.Duration) (RestartResult, error) {
	stopResult, stopErr := StopAndTerminate(socketPath, stopGracePeriod)
	if stopErr != nil && !errors.Is(stopErr, ErrDaemonNotRunning) {
		return RestartResult{}, stopErr
	}

	startResult, err := EnsureStarted(socketPath, executablePath, opts, startWaitTimeout)
	if err != nil {
		return RestartResult{}, err
	}

	return RestartResult{
		WasRunning: stopErr == nil,
		Stop:       stopResult,
		Start:      startResult,
	}, nil
}

// running reports whether a daemon answers Status with Running=true on the
// socket. An unreachable socket counts as not running.
func running(socketPath string) (bool, int, error) {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		if isDaemonUnavailable(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	defer client.Close()
	status, err := client.Status()
	if err != nil {
		return false, 0, err
	}
	return status.Running, status.PID, nil
}

func forceKill(pidPath, lockPath string, fallbackPID int) (int, error) {
	pid := fallbackPID
	if data, err := os.ReadFile(pidPath); err == nil {
		if parsed, parseErr := strconv.Atoi(strings.TrimSpace(string(data))); parseErr == nil && parsed > 0 {
			pid = parsed
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("read pid file %q: %w", pidPath, err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("daemon pid unknown (pid file: %s)", pidPath)
	}
	if pid == os.Getpid() {
		return 0, fmt.Errorf("refusing to kill current process (pid %d)", pid)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("locate daemon process %d: %w", pid, err)
	}
	if err := proc.Kill(); err != nil {
		return 0, fmt.Errorf("kill daemon process %d: %w", pid, err)
	}
	_ = os.Remove(pidPath)
	if lockPath != "" {
		_ = os.Remove(lockPath)
	}
	return pid, nil
}

func isDaemonUnavailable(err error) bool {
	return os.IsNotExist(err) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, syscall.ENOENT) ||
		errors.Is(err, syscall.ECONNREFUSED)
}
