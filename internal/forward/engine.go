package forward

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"mcpgateway/internal/mcpclient"
	"mcpgateway/internal/registry"
	"mcpgateway/pkg/logging"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// SessionSource resolves a backend name to its live client, the only
// dependency the forwarding engine has on the client manager — kept as an
// interface so tests can substitute a fake without a real manager.Manager.
type SessionSource interface {
	Get(name string) (mcpclient.MCPClient, bool)
}

// Metrics receives forwarded-call outcomes; nil is a valid, no-op Metrics.
type Metrics interface {
	ObserveForward(backend string, kind Kind, duration time.Duration)
}

// Engine forwards calls addressed by a capability's exposed name to its
// owning backend, after resolving that name through the registry.
type Engine struct {
	registry *registry.Registry
	sessions SessionSource
	metrics  Metrics
}

// New creates a forwarding engine over the given registry and session
// source. metrics may be nil.
func New(reg *registry.Registry, sessions SessionSource, metrics Metrics) *Engine {
	return &Engine{registry: reg, sessions: sessions, metrics: metrics}
}

// ListTools returns every aggregated tool, without touching any backend. It
// fails with an internal error if discovery has never run.
func (e *Engine) ListTools() ([]mcp.Tool, error) {
	if !e.registry.Populated() {
		return nil, newError(KindInternal, "", fmt.Errorf("capability registry not populated"))
	}
	return e.registry.Tools(), nil
}

// ListResources returns every aggregated resource, without touching any
// backend. It fails with an internal error if discovery has never run.
func (e *Engine) ListResources() ([]mcp.Resource, error) {
	if !e.registry.Populated() {
		return nil, newError(KindInternal, "", fmt.Errorf("capability registry not populated"))
	}
	return e.registry.Resources(), nil
}

// ListPrompts returns every aggregated prompt, without touching any backend.
// It fails with an internal error if discovery has never run.
func (e *Engine) ListPrompts() ([]mcp.Prompt, error) {
	if !e.registry.Populated() {
		return nil, newError(KindInternal, "", fmt.Errorf("capability registry not populated"))
	}
	return e.registry.Prompts(), nil
}

// CallTool forwards a tool call to its owning backend and returns the
// content array, unwrapping mcp-go's *mcp.CallToolResult after validating it.
func (e *Engine) CallTool(ctx context.Context, exposedName string, args map[string]interface{}) ([]mcp.Content, error) {
	entry, client, err := e.resolve(exposedName)
	if err != nil {
		return nil, err
	}

	correlationID := uuid.NewString()
	start := time.Now()
	logging.Debug("Forwarder", "[%s] call_tool %s -> %s/%s", correlationID, exposedName, entry.Backend, entry.OriginalName)

	result, err := client.CallTool(ctx, entry.OriginalName, args)
	kind := e.record(entry.Backend, start, err)
	if err != nil {
		return nil, newError(kind, entry.Backend, err)
	}
	if result == nil {
		return nil, newError(KindBackend, entry.Backend, fmt.Errorf("backend returned no result"))
	}
	return result.Content, nil
}

// ReadResource forwards a resource read to its owning backend.
func (e *Engine) ReadResource(ctx context.Context, exposedURI string) (*mcp.ReadResourceResult, error) {
	entry, client, err := e.resolve(exposedURI)
	if err != nil {
		return nil, err
	}

	correlationID := uuid.NewString()
	start := time.Now()
	logging.Debug("Forwarder", "[%s] read_resource %s -> %s/%s", correlationID, exposedURI, entry.Backend, entry.OriginalName)

	result, err := client.ReadResource(ctx, entry.OriginalName)
	kind := e.record(entry.Backend, start, err)
	if err != nil {
		return nil, newError(kind, entry.Backend, err)
	}
	return result, nil
}

// GetPrompt forwards a prompt fetch to its owning backend.
func (e *Engine) GetPrompt(ctx context.Context, exposedName string, args map[string]interface{}) (*mcp.GetPromptResult, error) {
	entry, client, err := e.resolve(exposedName)
	if err != nil {
		return nil, err
	}

	correlationID := uuid.NewString()
	start := time.Now()
	logging.Debug("Forwarder", "[%s] get_prompt %s -> %s/%s", correlationID, exposedName, entry.Backend, entry.OriginalName)

	result, err := client.GetPrompt(ctx, entry.OriginalName, args)
	kind := e.record(entry.Backend, start, err)
	if err != nil {
		return nil, newError(kind, entry.Backend, err)
	}
	return result, nil
}

func (e *Engine) resolve(exposedName string) (registry.RoutingEntry, mcpclient.MCPClient, error) {
	entry, ok := e.registry.Resolve(exposedName)
	if !ok {
		return registry.RoutingEntry{}, nil, newError(KindNotFound, "", fmt.Errorf("capability %q does not exist", exposedName))
	}

	client, ok := e.sessions.Get(entry.Backend)
	if !ok {
		return registry.RoutingEntry{}, nil, newError(KindUnavailable, entry.Backend, fmt.Errorf("backend %s is not connected", entry.Backend))
	}

	return entry, client, nil
}

func (e *Engine) record(backend string, start time.Time, err error) Kind {
	kind := classify(err)
	if e.metrics != nil {
		e.metrics.ObserveForward(backend, kind, time.Since(start))
	}
	return kind
}

// classify maps a raw backend-call error onto the gateway's taxonomy: a
// deadline exceeded becomes "timeout", a connection-level failure becomes
// "transport", everything else is wrapped as "backend" while preserving
// the cause for errors.Is/As.
func classify(err error) Kind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	msg := err.Error()
	for _, marker := range []string{"connection refused", "broken pipe", "connection reset", "EOF", "use of closed network connection"} {
		if strings.Contains(msg, marker) {
			return KindTransport
		}
	}

	return KindBackend
}
