// Package httpserver exposes the MCP server over HTTP: an SSE endpoint,
// a streamable endpoint, health and metadata routes, and the OAuth
// callback.
package httpserver

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/gmail-postgres-mcp/internal/tool"
)

// Config carries the HTTP surface settings.
type Config struct {
	// APIKey protects every route except /health and /oauth when set.
	APIKey string
}

// NewHandler builds the HTTP surface. Every /sse and /mcp connection
// gets its own MCP server instance, so backends configured after
// startup appear on connections opened later.
func NewHandler(cfg Config, router *tool.Router, oauthHandler http.Handler) http.Handler {
	newServer := func(*http.Request) *mcp.Server { return tool.NewServer(router) }

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/", handleMetadata(router))
	mux.Handle("/sse", logSSEConnections(mcp.NewSSEHandler(newServer)))
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(newServer, nil))
	mux.HandleFunc("/message", handleMessage)
	if oauthHandler != nil {
		mux.Handle("/oauth", oauthHandler)
	}

	var handler http.Handler = mux
	handler = requireAPIKey(cfg.APIKey, handler)
	handler = allowCORS(handler)

	return handler
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func handleMetadata(router *tool.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		tools := make([]string, 0)
		for _, t := range router.Tools() {
			tools = append(tools, t.Name)
		}
		resources := make([]string, 0)
		for _, res := range router.Resources() {
			resources = append(resources, res.URI)
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"name":      tool.ServerName,
			"version":   tool.ServerVersion,
			"tools":     tools,
			"resources": resources,
		})
	}
}

// handleMessage acknowledges posted protocol messages; the actual
// traffic of legacy SSE clients flows over the event stream.
func handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func logSSEConnections(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		connID := uuid.NewString()
		start := time.Now()
		slog.Info("sse connection opened", "conn_id", connID, "remote_addr", r.RemoteAddr)

		next.ServeHTTP(w, r)

		slog.Info("sse connection closed", "conn_id", connID, "duration", time.Since(start))
	})
}

func requireAPIKey(key string, next http.Handler) http.Handler {
	if key == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health stays open for probes, /oauth for the browser consent flow.
		if r.URL.Path == "/health" || r.URL.Path == "/oauth" {
			next.ServeHTTP(w, r)
			return
		}

		provided := r.Header.Get("X-API-Key")
		if provided == "" {
			provided = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func allowCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, Mcp-Session-Id, Last-Event-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writing response failed", "error", err)
	}
}
