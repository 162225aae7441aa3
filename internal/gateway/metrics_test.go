package gateway

import (
	"testing"
	"time"

	"mcpgateway/internal/forward"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_ObserveConnectAndForward(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveConnect("svc", true)
	m.ObserveConnect("other", false)
	m.SetCapabilityCounts(3, 1, 0)
	m.ObserveForward("svc", forward.KindTimeout, 10*time.Millisecond)

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}
