package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerName and ServerVersion identify the server during the MCP handshake.
const (
	ServerName    = "gmail-postgres-mcp"
	ServerVersion = "v1.0.0"
)

// NewServer builds an MCP server over the router. The advertised tool
// catalog is fixed at construction: backends configured later appear on
// servers built afterwards, such as fresh SSE connections.
func NewServer(router *Router) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: ServerVersion}, nil)

	for _, t := range router.Tools() {
		mcp.AddTool(server, t, func(ctx context.Context, _ *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
			res, err := router.CallTool(ctx, t.Name, args)
			if err != nil {
				return nil, nil, err
			}

			return textResult(res), nil, nil
		})
	}

	for _, res := range router.Resources() {
		server.AddResource(res, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			payload, err := router.ReadResource(ctx, req.Params.URI)
			if err != nil {
				return nil, err
			}

			data, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("json.MarshalIndent failed: %w", err)
			}

			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{URI: req.Params.URI, MIMEType: res.MIMEType, Text: string(data)},
				},
			}, nil
		})
	}

	return server
}

func textResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("failed to encode result: %v", err)}},
			IsError: true,
		}
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}
}
