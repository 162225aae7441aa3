package gateway

import (
	"context"
	"fmt"
	"net/http"

	"mcpgateway/pkg/logging"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// BuildMCPServer registers every aggregated tool, resource and prompt with
// a fresh mcp-go server.MCPServer, each as a thin closure over the
// forwarding engine.
func (g *Gateway) BuildMCPServer() *server.MCPServer {
	mcpServer := server.NewMCPServer(
		"mcpgateway", "1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
		server.WithPromptCapabilities(true),
	)

	toolList, err := g.engine.ListTools()
	if err != nil {
		logging.Error("Gateway", err, "failed to list tools")
	}
	var tools []server.ServerTool
	for _, tool := range toolList {
		tools = append(tools, server.ServerTool{
			Tool:    tool,
			Handler: g.toolHandler(tool.Name),
		})
	}
	if len(tools) > 0 {
		mcpServer.AddTools(tools...)
	}

	resources, err := g.engine.ListResources()
	if err != nil {
		logging.Error("Gateway", err, "failed to list resources")
	}
	for _, resource := range resources {
		mcpServer.AddResource(resource, g.resourceHandler(resource.URI))
	}

	prompts, err := g.engine.ListPrompts()
	if err != nil {
		logging.Error("Gateway", err, "failed to list prompts")
	}
	for _, prompt := range prompts {
		mcpServer.AddPrompt(prompt, g.promptHandler(prompt.Name))
	}

	return mcpServer
}

func (g *Gateway) toolHandler(exposedName string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := req.Params.Arguments.(map[string]interface{})
		content, err := g.engine.CallTool(ctx, exposedName, args)
		if err != nil {
			logging.Warn("Gateway", "tool %s failed: %v", exposedName, err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return &mcp.CallToolResult{Content: content}, nil
	}
}

func (g *Gateway) resourceHandler(exposedURI string) func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		result, err := g.engine.ReadResource(ctx, exposedURI)
		if err != nil {
			return nil, err
		}
		return result.Contents, nil
	}
}

func (g *Gateway) promptHandler(exposedName string) func(context.Context, mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		args := make(map[string]interface{}, len(req.Params.Arguments))
		for k, v := range req.Params.Arguments {
			args[k] = v
		}
		return g.engine.GetPrompt(ctx, exposedName, args)
	}
}

// HTTPHandler mounts the mcp-go SSE server behind a chi router with a
// health endpoint — the front-facing surface external collaborators reach.
func (g *Gateway) HTTPHandler(baseURL string) http.Handler {
	mcpServer := g.BuildMCPServer()
	sseServer := server.NewSSEServer(mcpServer, server.WithBaseURL(baseURL))

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok: %d backends connected\n", g.manager.SessionCount())
	})
	r.Mount("/", sseServer)

	return r
}
