package config

// BackendType distinguishes the two transport kinds a backend entry can
// configure.
type BackendType string

const (
	// BackendStdio launches a local subprocess and speaks MCP over its
	// stdin/stdout.
	BackendStdio BackendType = "stdio"
	// BackendSSE connects to a remote (or locally launched) server over
	// Server-Sent Events.
	BackendSSE BackendType = "sse"
)

// LocalLaunch describes a companion process the gateway spawns itself
// before dialing an SSE backend, e.g. a local dev server that exposes MCP
// over SSE on loopback. Present only when the SSE backend's process is
// managed by the gateway rather than already running.
type LocalLaunch struct {
	Command string            `json:"command" validate:"required"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// BackendConfig is a single entry of the gateway's configuration file,
// keyed by backend name. Type selects which field group is used: an sse
// entry names its companion process only through LocalLaunch, and a
// top-level command/args/env on an sse entry is neither used nor rejected.
type BackendConfig struct {
	Type BackendType `json:"type" validate:"required,oneof=stdio sse"`

	// stdio fields
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`

	// sse fields
	URL         string       `json:"url,omitempty"`
	LocalLaunch *LocalLaunch `json:"localLaunch,omitempty"`
}

// GatewayConfig is the top-level decoded configuration file: a map from
// backend name to its configuration.
type GatewayConfig map[string]BackendConfig
