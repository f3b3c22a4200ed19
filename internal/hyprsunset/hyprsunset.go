// Package hyprsunset drives the external display-color controller. Two
// bindings expose the same contract: SocketClient speaks hyprsunset's line
// protocol over its unix socket, ProcessController restarts the binary with
// a mode flag. The daemon treats every channel failure as recoverable and
// retries on the next scheduling cycle.
package hyprsunset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Controller applies filter commands to a hyprsunset instance. At most one
// command is in flight at a time; the scheduler issues them from a single
// control flow.
type Controller interface {
	Enable(ctx context.Context, temperature int) error
	Disable(ctx context.Context) error
}

// DefaultBinary is the controller executable name.
const DefaultBinary = "hyprsunset"

var (
	errNoRuntimeDir = errors.New("XDG_RUNTIME_DIR is not set")
	errNoSignature  = errors.New("HYPRLAND_INSTANCE_SIGNATURE is not set")
)

// RuntimeDir returns the session runtime directory. Its absence is a fatal
// startup condition.
func RuntimeDir() (string, error) {
	dir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR"))
	if dir == "" {
		return "", errNoRuntimeDir
	}
	return dir, nil
}

// SocketPath resolves the hyprsunset control socket from the session
// environment. Both variables are required.
func SocketPath() (string, error) {
	runtimeDir, err := RuntimeDir()
	if err != nil {
		return "", err
	}
	signature := strings.TrimSpace(os.Getenv("HYPRLAND_INSTANCE_SIGNATURE"))
	if signature == "" {
		return "", errNoSignature
	}
	return filepath.Join(runtimeDir, "hypr", signature, ".hyprsunset.sock"), nil
}

func enableCommand(temperature int) string {
	return fmt.Sprintf("temperature %d", temperature)
}

const disableCommand = "identity"
