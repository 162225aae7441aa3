package backend

import (
	"bytes"
	"context"
	"testing"
	"time"

	"mcpgateway/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_StartAndStopGraceful(t *testing.T) {
	var buf bytes.Buffer
	logging.InitForCLI(logging.LevelDebug, &buf)

	p := NewProcess("echoer", "sh", []string{"-c", "echo hello; sleep 30"}, nil)
	require.NoError(t, p.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, p.Stop(ctx))
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "echoer-stdout")
}

func TestProcess_StopOnAlreadyExitedProcessIsNoOp(t *testing.T) {
	p := NewProcess("quick", "true", nil, nil)
	require.NoError(t, p.Start())

	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, p.Stop(ctx))
}

func TestProcess_StopBeforeStartIsNoOp(t *testing.T) {
	p := &Process{backend: "never-started"}
	p.cmd = nil
	assert.NoError(t, p.Stop(context.Background()))
}
