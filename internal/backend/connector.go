package backend

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"mcpgateway/internal/config"
	"mcpgateway/internal/mcpclient"
	"mcpgateway/pkg/logging"

	"github.com/cenkalti/backoff/v5"
)

// DefaultInitializeTimeout bounds the MCP handshake for a single backend.
const DefaultInitializeTimeout = 15 * time.Second

// DefaultListenerProbeBudget is the overall time allowed for the SSE
// local-launch listener to start accepting connections.
const DefaultListenerProbeBudget = 5 * time.Second

// Session is one connected, initialized MCP backend: its client and,
// for locally-launched backends, the supervised subprocess that must be
// torn down alongside it. Connect either returns a fully usable Session or
// releases everything it acquired and returns an error — callers never see
// a half-acquired Session.
type Session struct {
	Name    string
	Client  mcpclient.MCPClient
	process *Process
}

// Close releases everything this session owns, in acquire order reversed:
// the MCP client first (it may still be writing to the subprocess's stdin),
// then the supervised process if one exists.
func (s *Session) Close(ctx context.Context) {
	if s.Client != nil {
		if err := s.Client.Close(); err != nil {
			logging.Debug("Connector", "error closing client for %s: %v", s.Name, err)
		}
	}
	if s.process != nil {
		if err := s.process.Stop(ctx); err != nil {
			logging.Warn("Connector", "error stopping local process for %s: %v", s.Name, err)
		}
	}
}

// Connect establishes one backend's session per its configuration. For
// stdio backends the subprocess is owned and managed internally by
// mark3labs/mcp-go's stdio client. For SSE backends with a localLaunch
// companion, Connect starts the supervised process first, probes the
// listener with exponential backoff before dialing, and registers the
// process for teardown before the SSE handshake is attempted — so a
// failed handshake never leaks the child process.
func Connect(ctx context.Context, name string, cfg config.BackendConfig) (*Session, error) {
	switch cfg.Type {
	case config.BackendStdio:
		return connectStdio(ctx, name, cfg)
	case config.BackendSSE:
		return connectSSE(ctx, name, cfg)
	default:
		return nil, fmt.Errorf("backend %s: unsupported type %q", name, cfg.Type)
	}
}

func connectStdio(ctx context.Context, name string, cfg config.BackendConfig) (*Session, error) {
	client := mcpclient.NewStdioClientWithEnv(cfg.Command, cfg.Args, cfg.Env)

	initCtx, cancel := ensureDeadline(ctx, DefaultInitializeTimeout)
	defer cancel()

	if err := client.Initialize(initCtx); err != nil {
		return nil, fmt.Errorf("backend %s: %w", name, err)
	}

	return &Session{Name: name, Client: client}, nil
}

func connectSSE(ctx context.Context, name string, cfg config.BackendConfig) (*Session, error) {
	var proc *Process

	if cfg.LocalLaunch != nil {
		proc = NewProcess(name, cfg.LocalLaunch.Command, cfg.LocalLaunch.Args, cfg.LocalLaunch.Env)
		if err := proc.Start(); err != nil {
			return nil, fmt.Errorf("backend %s: failed to launch local process: %w", name, err)
		}

		if err := probeListener(ctx, cfg.URL, DefaultListenerProbeBudget); err != nil {
			_ = proc.Stop(ctx)
			return nil, fmt.Errorf("backend %s: local server never became reachable: %w", name, err)
		}
	}

	client := mcpclient.NewSSEClient(cfg.URL)

	initCtx, cancel := ensureDeadline(ctx, DefaultInitializeTimeout)
	defer cancel()

	if err := client.Initialize(initCtx); err != nil {
		if proc != nil {
			_ = proc.Stop(ctx)
		}
		return nil, fmt.Errorf("backend %s: %w", name, err)
	}

	return &Session{Name: name, Client: client, process: proc}, nil
}

// probeListener dials the SSE URL's host:port with exponential backoff
// until a TCP connection succeeds or budget is exhausted, so a local-launch
// backend's process is never assumed ready before its listener actually is.
func probeListener(ctx context.Context, rawURL string, budget time.Duration) error {
	addr, err := hostPort(rawURL)
	if err != nil {
		return err
	}

	probeCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	_, err = backoff.Retry(probeCtx, func() (struct{}, error) {
		conn, dialErr := net.DialTimeout("tcp", addr, 500*time.Millisecond)
		if dialErr != nil {
			return struct{}{}, dialErr
		}
		_ = conn.Close()
		return struct{}{}, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()))

	return err
}

func hostPort(rawURL string) (string, error) {
	withoutScheme := rawURL
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(rawURL, scheme) {
			withoutScheme = strings.TrimPrefix(rawURL, scheme)
			break
		}
	}
	host := withoutScheme
	if idx := strings.IndexAny(host, "/?"); idx != -1 {
		host = host[:idx]
	}
	if !strings.Contains(host, ":") {
		if strings.HasPrefix(rawURL, "https://") {
			host += ":443"
		} else {
			host += ":80"
		}
	}
	return host, nil
}

func ensureDeadline(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
