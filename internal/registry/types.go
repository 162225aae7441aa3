// Package registry implements the capability registry: it discovers every
// connected backend's tools, resources and prompts concurrently, applies
// the gateway's naming/collision policy, and answers the aggregated
// lookups the forwarding engine and the front-facing server need.
package registry

// PrefixMode selects how a capability's exposed name is derived from its
// backend-local name. PrefixNone (the default) applies first-wins
// collision resolution; PrefixBackendName exposes every capability as
// "backendName/originalName" instead, removing collisions entirely.
type PrefixMode int

const (
	PrefixNone PrefixMode = iota
	PrefixBackendName
)

// Kind identifies which of the three capability lists an entry belongs to.
type Kind string

const (
	KindTool     Kind = "tool"
	KindResource Kind = "resource"
	KindPrompt   Kind = "prompt"
)

// RoutingEntry records which backend, and under which original name, an
// exposed capability name resolves to.
type RoutingEntry struct {
	Backend      string
	OriginalName string
	Kind         Kind
}
