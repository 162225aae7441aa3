package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"mcpgateway/internal/mcpclient"
	"mcpgateway/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"
)

// capabilityFetchTimeout bounds a single list call.
const capabilityFetchTimeout = 10 * time.Second

// Registry holds the gateway's aggregated view of every connected
// backend's capabilities.
type Registry struct {
	prefixMode PrefixMode

	mu        sync.RWMutex
	populated bool
	tools     []mcp.Tool
	resources []mcp.Resource
	prompts   []mcp.Prompt
	routing   map[string]RoutingEntry
}

// New creates an empty Registry using the given collision policy.
func New(prefixMode PrefixMode) *Registry {
	return &Registry{prefixMode: prefixMode, routing: make(map[string]RoutingEntry)}
}

// fetchedCapabilities holds one backend's raw discovery results, before
// collision resolution and renaming.
type fetchedCapabilities struct {
	name      string
	tools     []mcp.Tool
	resources []mcp.Resource
	prompts   []mcp.Prompt
}

// DiscoverAndRegister clears any previously aggregated state and rebuilds
// it from scratch. It queries every backend's ListTools/ListResources/
// ListPrompts concurrently — one errgroup task per backend × capability
// type — but registration itself happens afterward, sequentially, in a
// fixed backend order (sorted by name). This keeps first-wins collision
// resolution and aggregated list order deterministic regardless of which
// backend's goroutine happens to finish first. A single backend's single
// capability-type failure (timeout or protocol error) is logged and
// treated as an empty result for that pairing; it never aborts discovery
// for any other backend or capability type.
func (r *Registry) DiscoverAndRegister(ctx context.Context, sessions map[string]mcpclient.MCPClient) error {
	r.mu.Lock()
	r.tools = nil
	r.resources = nil
	r.prompts = nil
	r.routing = make(map[string]RoutingEntry)
	r.mu.Unlock()

	names := make([]string, 0, len(sessions))
	for name := range sessions {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]fetchedCapabilities, len(names))
	g, gctx := errgroup.WithContext(ctx)

	for i, name := range names {
		i, name := i, name
		client := sessions[name]
		results[i].name = name

		g.Go(func() error {
			tools, err := fetchWithTimeout(gctx, func(c context.Context) ([]mcp.Tool, error) { return client.ListTools(c) })
			if err != nil {
				logging.Warn("Registry", "backend %s: list_tools failed: %v", name, err)
				return nil
			}
			results[i].tools = tools
			return nil
		})

		g.Go(func() error {
			resources, err := fetchWithTimeout(gctx, func(c context.Context) ([]mcp.Resource, error) { return client.ListResources(c) })
			if err != nil {
				logging.Warn("Registry", "backend %s: list_resources failed: %v", name, err)
				return nil
			}
			results[i].resources = resources
			return nil
		})

		g.Go(func() error {
			prompts, err := fetchWithTimeout(gctx, func(c context.Context) ([]mcp.Prompt, error) { return client.ListPrompts(c) })
			if err != nil {
				logging.Warn("Registry", "backend %s: list_prompts failed: %v", name, err)
				return nil
			}
			results[i].prompts = prompts
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, res := range results {
		for _, tool := range res.tools {
			r.register(res.name, tool.Name, KindTool, func(exposed string) {
				r.tools = append(r.tools, renameTool(tool, exposed))
			})
		}
		for _, resource := range res.resources {
			r.register(res.name, resource.URI, KindResource, func(exposed string) {
				r.resources = append(r.resources, renameResource(resource, exposed))
			})
		}
		for _, prompt := range res.prompts {
			r.register(res.name, prompt.Name, KindPrompt, func(exposed string) {
				r.prompts = append(r.prompts, renamePrompt(prompt, exposed))
			})
		}
	}

	r.populated = true

	return nil
}

// Populated reports whether DiscoverAndRegister has ever completed, as
// opposed to the registry being empty because discovery produced zero
// capabilities.
func (r *Registry) Populated() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.populated
}

// register applies the exposed-name and collision policy for a single
// capability and, if it wins, invokes add to append it to the aggregated
// list. Callers must hold r.mu. First-wins: an exposed name already
// claimed by a different backend is a conflict (logged, skipped); claimed
// again by the same backend under the same original name is a harmless
// duplicate (logged, skipped); otherwise the capability is registered.
func (r *Registry) register(backendName, originalName string, kind Kind, add func(exposed string)) {
	exposed := r.exposedName(backendName, originalName)

	existing, collides := r.routing[exposed]
	if collides {
		if existing.Backend == backendName && existing.OriginalName == originalName {
			logging.Debug("Registry", "duplicate %s %q from backend %s ignored", kind, exposed, backendName)
		} else {
			logging.Warn("Registry", "%s name collision: %q already registered from backend %s, backend %s's %q skipped",
				kind, exposed, existing.Backend, backendName, originalName)
		}
		return
	}
	r.routing[exposed] = RoutingEntry{Backend: backendName, OriginalName: originalName, Kind: kind}

	add(exposed)
}

func (r *Registry) exposedName(backendName, originalName string) string {
	if r.prefixMode == PrefixBackendName {
		return backendName + "/" + originalName
	}
	return originalName
}

// Tools returns every aggregated tool under its exposed name.
func (r *Registry) Tools() []mcp.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]mcp.Tool(nil), r.tools...)
}

// Resources returns every aggregated resource.
func (r *Registry) Resources() []mcp.Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]mcp.Resource(nil), r.resources...)
}

// Prompts returns every aggregated prompt under its exposed name.
func (r *Registry) Prompts() []mcp.Prompt {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]mcp.Prompt(nil), r.prompts...)
}

// Resolve maps an exposed capability name back to its owning backend and
// original name. ok is false when no capability is registered under that
// exposed name.
func (r *Registry) Resolve(exposed string) (RoutingEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.routing[exposed]
	return entry, ok
}

func fetchWithTimeout[T any](ctx context.Context, fetch func(context.Context) ([]T, error)) ([]T, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, capabilityFetchTimeout)
	defer cancel()

	items, err := fetch(fetchCtx)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	return items, nil
}

func renameTool(tool mcp.Tool, exposed string) mcp.Tool {
	tool.Name = exposed
	return tool
}

func renamePrompt(prompt mcp.Prompt, exposed string) mcp.Prompt {
	prompt.Name = exposed
	return prompt
}

func renameResource(resource mcp.Resource, exposed string) mcp.Resource {
	resource.URI = exposed
	return resource
}
