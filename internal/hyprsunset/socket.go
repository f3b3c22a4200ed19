package hyprsunset

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"solshift/internal/logging"
)

// SocketClient sends filter commands over hyprsunset's control socket. Every
// command opens a fresh connection: hyprsunset may be restarted between
// scheduling cycles, so no handle is held across the sleep interval.
type SocketClient struct {
	path        string
	readTimeout time.Duration
	logger      *slog.Logger
}

// SocketOptions tune the per-command channel behavior.
type SocketOptions struct {
	// ReadTimeout bounds how long a command may block on an unresponsive
	// peer. The protocol is send-only; no acknowledgement is awaited.
	ReadTimeout time.Duration
}

const defaultReadTimeout = 500 * time.Millisecond

// NewSocketClient returns a client bound to the socket at path.
func NewSocketClient(path string, opts SocketOptions, logger *slog.Logger) *SocketClient {
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}
	return &SocketClient{
		path:        path,
		readTimeout: readTimeout,
		logger:      logging.WithComponent(logger, "hyprsunset"),
	}
}

// Enable sets the filter to the given color temperature.
func (c *SocketClient) Enable(ctx context.Context, temperature int) error {
	return c.send(ctx, enableCommand(temperature))
}

// Disable resets the display to identity (no filter).
func (c *SocketClient) Disable(ctx context.Context) error {
	return c.send(ctx, disableCommand)
}

func (c *SocketClient) send(ctx context.Context, command string) error {
	dialer := net.Dialer{Timeout: c.readTimeout * 2}
	conn, err := dialer.DialContext(ctx, "unix", c.path)
	if err != nil {
		return fmt.Errorf("connect to hyprsunset socket %s: %w", c.path, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.readTimeout)); err != nil {
		return fmt.Errorf("set socket deadline: %w", err)
	}
	if _, err := conn.Write([]byte(command)); err != nil {
		return fmt.Errorf("send %q to hyprsunset: %w", command, err)
	}
	c.logger.Debug("command sent", logging.String("command", command))
	return nil
}

// WaitForSocket polls for the control socket to appear, with a bounded retry
// budget. hyprsunset creates the socket asynchronously at session start, so
// the daemon may simply be ahead of it.
func WaitForSocket(ctx context.Context, path string, attempts int, interval time.Duration, logger *slog.Logger) error {
	logger = logging.WithComponent(logger, "hyprsunset")
	for attempt := 1; attempt <= attempts; attempt++ {
		if _, err := os.Stat(path); err == nil {
			logger.Debug("control socket present", logging.String("socket", path))
			return nil
		}
		logger.Info("control socket not present yet",
			logging.String("socket", path),
			logging.Int("attempt", attempt),
			logging.Int("attempts", attempts),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("control socket %s did not appear after %d attempts", path, attempts)
}
