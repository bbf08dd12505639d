// Package tool dispatches MCP tool calls and resource reads to the
// Gmail and PostgreSQL backends.
package tool

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// adapter is one backend behind the router. Tool names carry the
// backend prefix, resource URIs carry the backend scheme.
type adapter interface {
	Name() string
	Prefix() string
	Scheme() string
	Ready() bool
	Tools() []*mcp.Tool
	CallTool(ctx context.Context, name string, args map[string]any) (any, error)
	Resources() []*mcp.Resource
	ReadResource(ctx context.Context, uri string) (any, error)
}

// Router routes tool calls by name prefix and resource reads by URI
// scheme, independent of the transport the request arrived on.
type Router struct {
	adapters []adapter
}

func NewRouter(adapters ...adapter) *Router {
	return &Router{adapters: adapters}
}

// Tools returns the aggregated catalog. Backends without credentials
// contribute nothing.
func (r *Router) Tools() []*mcp.Tool {
	var tools []*mcp.Tool
	for _, a := range r.adapters {
		if !a.Ready() {
			continue
		}
		tools = append(tools, a.Tools()...)
	}

	return tools
}

// CallTool routes a call to the backend owning the name prefix. The
// configuration check runs before name resolution: calling any tool of
// an unconfigured backend reports ErrNotConfigured, even for names the
// backend never exposed.
func (r *Router) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	slog.Info("tool call", "tool", name, "arguments", args)

	for _, a := range r.adapters {
		if !strings.HasPrefix(name, a.Prefix()) {
			continue
		}
		if !a.Ready() {
			return nil, fmt.Errorf("%s: %w", a.Name(), ErrNotConfigured)
		}

		start := time.Now()
		res, err := a.CallTool(ctx, name, args)

		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		slog.Info("tool call finished", "tool", name, "outcome", outcome, "duration_ms", time.Since(start).Milliseconds())

		return res, err
	}

	return nil, fmt.Errorf("%s: %w", name, ErrUnknownTool)
}

// Resources returns every backend's resource list, configured or not.
func (r *Router) Resources() []*mcp.Resource {
	var resources []*mcp.Resource
	for _, a := range r.adapters {
		resources = append(resources, a.Resources()...)
	}

	return resources
}

// ReadResource routes a read to the backend owning the URI scheme.
func (r *Router) ReadResource(ctx context.Context, uri string) (any, error) {
	slog.Info("resource read", "uri", uri)

	for _, a := range r.adapters {
		if !strings.HasPrefix(uri, a.Scheme()+"://") {
			continue
		}

		return a.ReadResource(ctx, uri)
	}

	return nil, fmt.Errorf("%s: %w", uri, ErrUnknownResource)
}
