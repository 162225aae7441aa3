package gateway

import (
	"context"
	"testing"
	"time"

	"mcpgateway/internal/config"
	"mcpgateway/internal/forward"
	"mcpgateway/internal/registry"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_StartWithAllBackendsUnreachableFails(t *testing.T) {
	cfg := config.GatewayConfig{
		"broken": {Type: config.BackendStdio, Command: "/nonexistent/binary"},
	}
	g := New(cfg, registry.PrefixNone, prometheus.NewRegistry())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := g.Start(ctx)
	require.Error(t, err)
	var fwdErr *forward.Error
	require.ErrorAs(t, err, &fwdErr)
	assert.Equal(t, forward.KindBackend, fwdErr.Kind)

	g.Stop(context.Background())
}

func TestGateway_StartWithEmptyConfigSucceeds(t *testing.T) {
	g := New(config.GatewayConfig{}, registry.PrefixNone, prometheus.NewRegistry())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, g.Start(ctx))
	tools, err := g.engine.ListTools()
	require.NoError(t, err)
	assert.Empty(t, tools)

	g.Stop(context.Background())
}

func TestSessionAdapter_UnknownBackend(t *testing.T) {
	g := New(config.GatewayConfig{}, registry.PrefixNone, prometheus.NewRegistry())
	adapter := sessionAdapter{g.manager}
	_, ok := adapter.Get("missing")
	assert.False(t, ok)
}
