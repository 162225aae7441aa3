package backend

import (
	"context"
	"net"
	"testing"
	"time"

	"mcpgateway/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostPort(t *testing.T) {
	cases := map[string]string{
		"http://127.0.0.1:9000/sse":  "127.0.0.1:9000",
		"https://example.com/sse":    "example.com:443",
		"http://example.com/sse":     "example.com:80",
		"http://localhost:8080":      "localhost:8080",
		"http://127.0.0.1:9000?a=1":  "127.0.0.1:9000",
	}
	for url, expected := range cases {
		got, err := hostPort(url)
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	}
}

func TestProbeListener_SucceedsOnceListening(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, acceptErr := ln.Accept()
		if acceptErr == nil {
			conn.Close()
		}
	}()

	url := "http://" + ln.Addr().String() + "/sse"
	err = probeListener(context.Background(), url, 2*time.Second)
	assert.NoError(t, err)
}

func TestProbeListener_FailsWhenNothingListens(t *testing.T) {
	err := probeListener(context.Background(), "http://127.0.0.1:1/sse", 300*time.Millisecond)
	assert.Error(t, err)
}

func TestConnect_UnsupportedTypeIsRejected(t *testing.T) {
	_, err := Connect(context.Background(), "broken", config.BackendConfig{Type: "websocket"})
	assert.Error(t, err)
}

func TestConnect_StdioBadCommandFails(t *testing.T) {
	_, err := Connect(context.Background(), "bad", config.BackendConfig{
		Type:    config.BackendStdio,
		Command: "/nonexistent/path/to/binary",
	})
	assert.Error(t, err)
}
