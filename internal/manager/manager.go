// Package manager implements the client manager: it owns every backend
// connection's full lifecycle, from concurrent startup through ordered
// shutdown.
package manager

import (
	"context"
	"sync"

	"mcpgateway/internal/backend"
	"mcpgateway/internal/config"
	"mcpgateway/pkg/logging"

	"golang.org/x/sync/errgroup"
)

// Manager starts every configured backend concurrently, tracks which ones
// connected successfully, and tears every acquired resource down in
// reverse acquisition order on Stop. A single backend failing to connect
// is logged and skipped — it never prevents its siblings from starting,
// matching `_start_single_server`'s own per-backend exception handling.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*backend.Session
	order    []string

	cancelPending context.CancelFunc
}

// New creates an empty Manager.
func New() *Manager {
	return &Manager{sessions: make(map[string]*backend.Session)}
}

// StartAll connects every backend in cfg concurrently via errgroup.Group
// and waits for the whole fan-out to finish. Each connector goroutine
// contains its own error (logs it and returns nil to the group) so that
// errgroup's first-error short-circuit never fires mid-fan-out; a backend
// that fails to connect is simply absent from the Manager's session set
// afterward.
func (m *Manager) StartAll(ctx context.Context, cfg config.GatewayConfig) error {
	pendingCtx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancelPending = cancel
	m.mu.Unlock()

	g, gctx := errgroup.WithContext(pendingCtx)

	for name, backendCfg := range cfg {
		name, backendCfg := name, backendCfg
		g.Go(func() error {
			session, err := backend.Connect(gctx, name, backendCfg)
			if err != nil {
				logging.Error("ClientManager", err, "backend %s failed to start", name)
				return nil
			}

			m.mu.Lock()
			m.sessions[name] = session
			m.order = append(m.order, name)
			m.mu.Unlock()

			logging.Info("ClientManager", "backend %s connected", name)
			return nil
		})
	}

	return g.Wait()
}

// Get returns the session for a connected backend, if any.
func (m *Manager) Get(name string) (*backend.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[name]
	return s, ok
}

// SessionCount reports how many backends are currently connected.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Names returns the names of every connected backend.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.sessions))
	for name := range m.sessions {
		names = append(names, name)
	}
	return names
}

// Stop cancels any startup still in flight, then closes every connected
// session in the reverse of the order it connected in.
func (m *Manager) Stop(ctx context.Context) {
	m.mu.Lock()
	if m.cancelPending != nil {
		m.cancelPending()
	}
	order := append([]string(nil), m.order...)
	sessions := m.sessions
	m.sessions = make(map[string]*backend.Session)
	m.order = nil
	m.mu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		session, ok := sessions[name]
		if !ok {
			continue
		}
		logging.Debug("ClientManager", "stopping backend %s", name)
		session.Close(ctx)
	}
}
