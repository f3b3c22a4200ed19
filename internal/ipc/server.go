package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"solshift/internal/daemon"
	"solshift/internal/logging"
	"solshift/internal/scheduler"
)

// Server exposes daemon control via JSON-RPC over a unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path. shutdown is
// invoked when a client requests Stop, so IPC stop and OS signals drain
// through the same cancellation source.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, shutdown context.CancelFunc, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	svc := &service{daemon: d, shutdown: shutdown, logger: logging.WithComponent(logger, "ipc")}
	if err := rpcServer.RegisterName("Solshift", svc); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
		)
	}
}

type service struct {
	daemon   *daemon.Daemon
	shutdown context.CancelFunc
	logger   *slog.Logger
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status()
	resp.Running = status.Running
	resp.PID = status.PID
	resp.LockPath = status.LockPath
	fillSnapshot(resp, status.Snapshot)
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.logger.Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	if s.shutdown != nil {
		s.shutdown()
	}
	s.logger.Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) Reapply(_ ReapplyRequest, resp *ReapplyResponse) error {
	s.logger.Debug("reapply requested")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snap, err := s.daemon.Reapply(ctx)
	resp.Phase = snap.Phase.String()
	resp.FilterEnabled = snap.FilterEnabled
	if err != nil {
		resp.Message = err.Error()
		return nil
	}
	resp.Message = "filter command applied"
	s.logger.Info("filter reapplied via IPC",
		logging.String(logging.FieldEventType, "filter_reapply"),
		logging.String(logging.FieldPhase, resp.Phase))
	return nil
}

func fillSnapshot(resp *StatusResponse, snap scheduler.Snapshot) {
	if snap.UpdatedAt.IsZero() {
		return
	}
	resp.Phase = snap.Phase.String()
	resp.FilterEnabled = snap.FilterEnabled
	resp.Sunrise = snap.Sunrise.UTC().Format(time.RFC3339)
	resp.Sunset = snap.Sunset.UTC().Format(time.RFC3339)
	resp.NextWake = snap.NextWake.UTC().Format(time.RFC3339)
	resp.LastError = snap.LastError
}
