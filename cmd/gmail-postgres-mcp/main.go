// Gmail and PostgreSQL MCP server exposing both backends through Model Context Protocol.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/gmail-postgres-mcp/internal/auth"
	"github.com/hal9000y/gmail-postgres-mcp/internal/config"
	"github.com/hal9000y/gmail-postgres-mcp/internal/gservice"
	"github.com/hal9000y/gmail-postgres-mcp/internal/httpserver"
	"github.com/hal9000y/gmail-postgres-mcp/internal/pgservice"
	"github.com/hal9000y/gmail-postgres-mcp/internal/tool"
)

func main() {
	if err := run(); err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	httpAddr := flag.String("http-addr", "", "HTTP server listen addr, defaults to HOST:PORT from the environment")
	oauthTokenFile := flag.String("oauth-token-file", "./data/gmail-postgres-mcp-token.json", "Path to cache google oauth token, empty to avoid storing")
	envFile := flag.String("env-file", "", "Path to env file")
	enableStdio := flag.Bool("stdio", false, "Enable stdio transport for MCP (moves logging to stderr)")
	logFile := flag.String("log-file", "", "Path to log file (defaults to stdout, or stderr with -stdio)")

	flag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			return fmt.Errorf("godotenv.Load failed: %w", err)
		}
	}

	persistLogs, err := setupLogger(*enableStdio, *logFile)
	if err != nil {
		return err
	}
	defer persistLogs()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load failed: %w", err)
	}
	slog.Info("configuration loaded", "config", cfg)

	addr := *httpAddr
	if addr == "" {
		addr = cfg.ListenAddr()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("net.Listen failed: %w", err)
	}

	oauthCfg := buildOAuthConfig(cfg)
	tok, err := auth.NewToken(oauthCfg, *oauthTokenFile)
	if err != nil {
		return fmt.Errorf("auth.NewToken failed: %w", err)
	}
	tok.SeedRefreshToken(cfg.GmailRefreshToken)

	defer func() {
		slog.Info("persisting token if exists")
		if err := tok.Persist(); err != nil {
			slog.Error("tok.Persist failed", "error", err)
		}
	}()

	pgSvc, err := pgservice.New(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("pgservice.New failed: %w", err)
	}
	defer pgSvc.Close()

	gmailAdapter, err := tool.NewGmail(gservice.NewGmail(oauthCfg, tok))
	if err != nil {
		return fmt.Errorf("tool.NewGmail failed: %w", err)
	}
	pgAdapter, err := tool.NewPostgres(pgSvc, cfg.PostgresHost, cfg.PostgresDatabase)
	if err != nil {
		return fmt.Errorf("tool.NewPostgres failed: %w", err)
	}
	router := tool.NewRouter(gmailAdapter, pgAdapter)

	handler := httpserver.NewHandler(
		httpserver.Config{APIKey: cfg.APIKey},
		router,
		auth.NewHTTPHandler(tok),
	)
	srv := &http.Server{Handler: handler}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM, syscall.SIGINT)

	if _, err := tok.OAuthToken(); errors.Is(err, auth.ErrTokenNotSet) &&
		cfg.GmailConfigured() && strings.HasPrefix(oauthCfg.RedirectURL, "http") {
		openBrowser(oauthCfg.RedirectURL)
	}

	stopHTTP, errHTTPCh := serveHTTP(srv, ln)
	defer stopHTTP()

	var errStdioCh <-chan error
	if *enableStdio {
		var stopStdio func()
		stopStdio, errStdioCh = serveStdio(tool.NewServer(router))
		defer stopStdio()
	}

	select {
	case err := <-errHTTPCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case err := <-errStdioCh:
		if err != nil {
			return fmt.Errorf("stdio transport failed: %w", err)
		}
	case <-shutdown:
		slog.Info("shutdown signal received")
	}

	return nil
}

func serveStdio(srv *mcp.Server) (func(), <-chan error) {
	errStdioCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer close(errStdioCh)
		slog.Info("starting stdio transport")

		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			errStdioCh <- fmt.Errorf("srv.Run failed: %w", err)
		}
	}()

	return func() {
		cancel()

		<-errStdioCh
		slog.Info("stdio transport stopped")
	}, errStdioCh
}

func serveHTTP(srv *http.Server, ln net.Listener) (func(), <-chan error) {
	errHTTPCh := make(chan error, 1)
	go func() {
		defer close(errHTTPCh)

		slog.Info("starting http server", "addr", ln.Addr().String())

		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("srv.Serve failed: %w", err)
			slog.Error("http server stopped", "error", err)
			errHTTPCh <- err
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("srv.Shutdown failed", "error", err)
		}

		<-errHTTPCh
		slog.Info("http server stopped")
	}, errHTTPCh
}

func buildOAuthConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GmailClientID,
		ClientSecret: cfg.GmailClientSecret,
		RedirectURL:  cfg.GmailRedirectURI,
		Scopes:       []string{gmail.GmailModifyScope},
		Endpoint:     google.Endpoint,
	}
}

func setupLogger(enableStdio bool, logFile string) (func(), error) {
	var out io.Writer = os.Stdout
	if enableStdio {
		// Stdout carries the MCP protocol when stdio transport is on.
		out = os.Stderr
	}

	cleanup := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		cleanup = func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "f.Close failed: %v\n", err)
			}
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, nil)))

	return cleanup, nil
}

func openBrowser(url string) {
	url = fmt.Sprintf("%s?redirect=1", url)
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		slog.Warn("could not open browser automatically, copy the link into a browser", "error", err, "url", url)
	}
}
