package mcpclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStdioClient_OperationsFailBeforeInitialize(t *testing.T) {
	c := NewStdioClientWithEnv("/bin/true", nil, nil)
	ctx := context.Background()

	_, err := c.ListTools(ctx)
	assert.Error(t, err)

	_, err = c.CallTool(ctx, "anything", nil)
	assert.Error(t, err)

	_, err = c.ListResources(ctx)
	assert.Error(t, err)

	_, err = c.ReadResource(ctx, "res://x")
	assert.Error(t, err)

	_, err = c.ListPrompts(ctx)
	assert.Error(t, err)

	_, err = c.GetPrompt(ctx, "p", nil)
	assert.Error(t, err)

	assert.Error(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestSSEClient_OperationsFailBeforeInitialize(t *testing.T) {
	c := NewSSEClient("http://127.0.0.1:0/sse")
	ctx := context.Background()

	_, err := c.ListTools(ctx)
	assert.Error(t, err)
	assert.Error(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestStdioClient_GetStderrBeforeConnectReturnsFalse(t *testing.T) {
	c := NewStdioClientWithEnv("/bin/true", nil, nil)
	_, ok := c.GetStderr()
	assert.False(t, ok)
}
