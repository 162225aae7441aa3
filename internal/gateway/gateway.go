// Package gateway wires the client manager, capability registry and
// forwarding engine together into the startup/shutdown orchestration, and
// registers the aggregated capabilities with mark3labs/mcp-go's
// server.MCPServer so they're reachable over the front-facing transport.
package gateway

import (
	"context"
	"fmt"

	"mcpgateway/internal/config"
	"mcpgateway/internal/forward"
	"mcpgateway/internal/manager"
	"mcpgateway/internal/mcpclient"
	"mcpgateway/internal/registry"
	"mcpgateway/pkg/logging"
	gatewaystrings "mcpgateway/pkg/strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Gateway owns one run of the backend fabric: connect every backend,
// discover their capabilities, publish them to the front-facing MCP
// server, and tear everything down in reverse order on Stop.
type Gateway struct {
	cfg     config.GatewayConfig
	manager *manager.Manager
	reg     *registry.Registry
	engine  *forward.Engine
	metrics *Metrics
}

// New builds a Gateway for the given configuration and collision policy.
// reg is the Prometheus registerer the gateway's metrics attach to.
func New(cfg config.GatewayConfig, prefixMode registry.PrefixMode, reg prometheus.Registerer) *Gateway {
	m := manager.New()
	capReg := registry.New(prefixMode)
	metrics := NewMetrics(reg)
	engine := forward.New(capReg, sessionAdapter{m}, metrics)

	return &Gateway{cfg: cfg, manager: m, reg: capReg, engine: engine, metrics: metrics}
}

// sessionAdapter satisfies forward.SessionSource over *manager.Manager,
// which returns a *backend.Session rather than a bare mcpclient.MCPClient.
type sessionAdapter struct{ m *manager.Manager }

func (s sessionAdapter) Get(name string) (mcpclient.MCPClient, bool) {
	session, ok := s.m.Get(name)
	if !ok {
		return nil, false
	}
	return session.Client, true
}

// Start connects every configured backend, discovers their capabilities,
// and leaves the Gateway ready to serve. Per-backend connect failures are
// logged and skipped. Start fails with a backend-kind forward.Error when one
// or more backends are configured but none connected (an empty
// configuration still succeeds), and otherwise only if discovery cannot run.
func (g *Gateway) Start(ctx context.Context) error {
	if err := g.manager.StartAll(ctx, g.cfg); err != nil {
		return fmt.Errorf("failed to start backends: %w", err)
	}

	for _, name := range allBackendNames(g.cfg) {
		_, connected := g.manager.Get(name)
		g.metrics.ObserveConnect(name, connected)
	}

	if len(g.cfg) > 0 && g.manager.SessionCount() == 0 {
		return forward.NewError(forward.KindBackend, "", fmt.Errorf("%d backend(s) configured but none connected", len(g.cfg)))
	}

	sessions := make(map[string]mcpclient.MCPClient, g.manager.SessionCount())
	for _, name := range g.manager.Names() {
		if s, ok := g.manager.Get(name); ok {
			sessions[name] = s.Client
		}
	}

	if err := g.reg.DiscoverAndRegister(ctx, sessions); err != nil {
		return fmt.Errorf("failed to discover capabilities: %w", err)
	}

	g.metrics.SetCapabilityCounts(len(g.reg.Tools()), len(g.reg.Resources()), len(g.reg.Prompts()))

	logging.Info("Gateway", "ready: %d/%d backends connected, %d tools, %d resources, %d prompts",
		g.manager.SessionCount(), len(g.cfg), len(g.reg.Tools()), len(g.reg.Resources()), len(g.reg.Prompts()))

	for _, tool := range g.reg.Tools() {
		logging.Debug("Gateway", "tool %s: %s", tool.Name,
			gatewaystrings.TruncateDescription(tool.Description, gatewaystrings.DefaultDescriptionMaxLen))
	}

	return nil
}

// Stop tears down every connected backend in reverse acquisition order.
func (g *Gateway) Stop(ctx context.Context) {
	g.manager.Stop(ctx)
}

// Engine exposes the forwarding engine for the front-facing server to wire
// into mcp-go tool/resource/prompt handlers.
func (g *Gateway) Engine() *forward.Engine { return g.engine }

func allBackendNames(cfg config.GatewayConfig) []string {
	names := make([]string, 0, len(cfg))
	for name := range cfg {
		names = append(names, name)
	}
	return names
}
