// CLAUDE:SUMMARY Entry point for the testweave MCP service — stdio or QUIC transport, optional HTTP status server.
package main

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/testweave/audit"
	"github.com/hazyhaar/testweave/dbopen"
	"github.com/hazyhaar/testweave/mcpquic"
	"github.com/hazyhaar/testweave/weave"
)

var serverImpl = &mcp.Implementation{
	Name:    "testweave",
	Version: "1.0.0",
}

func main() {
	configPath := env("CONFIG", "")
	mcpTransport := env("MCP_TRANSPORT", "stdio")
	httpAddr := env("HTTP_ADDR", "")
	logLevel := env("LOG_LEVEL", "info")

	// Logging goes to stderr: stdout is the MCP wire in stdio mode.
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Config: YAML file if given, env overrides on top.
	cfg := &weave.Config{}
	if configPath != "" {
		loaded, err := weave.LoadConfigFile(configPath)
		if err != nil {
			slog.Error("load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	applyEnvOverrides(cfg)

	// Service options.
	var opts []weave.Option

	// Audit DB.
	if cfg.DBPath != "" {
		db, err := dbopen.Open(cfg.DBPath, dbopen.WithMkdirAll())
		if err != nil {
			slog.Error("audit db", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		auditLogger := audit.NewSQLiteLogger(db)
		if err := auditLogger.Init(); err != nil {
			slog.Error("audit init", "error", err)
			os.Exit(1)
		}
		defer auditLogger.Close()
		opts = append(opts, weave.WithAuditLogger(auditLogger))
	}

	// Weave service.
	w := weave.New(cfg, logger, opts...)
	if err := w.Start(ctx); err != nil {
		slog.Error("weave start", "error", err)
		os.Exit(1)
	}
	defer w.Close()

	mcpSrv := mcp.NewServer(serverImpl, nil)
	w.RegisterMCP(mcpSrv)

	// Optional HTTP status server.
	if httpAddr != "" {
		httpSrv := &http.Server{
			Addr:              httpAddr,
			Handler:           w.NewRouter(),
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		go func() {
			slog.Info("http status server starting", "addr", httpAddr)
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("http server", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			httpSrv.Shutdown(shutdownCtx)
		}()
	}

	switch mcpTransport {
	case "quic":
		quicAddr := env("MCP_QUIC_ADDR", ":9444")
		certFile := env("TLS_CERT", "")
		keyFile := env("TLS_KEY", "")

		var tlsCfg *tls.Config
		var err error
		if certFile != "" && keyFile != "" {
			tlsCfg, err = mcpquic.ServerTLSConfig(certFile, keyFile)
		} else {
			tlsCfg, err = mcpquic.SelfSignedTLSConfig()
		}
		if err != nil {
			slog.Error("MCP QUIC TLS", "error", err)
			os.Exit(1)
		}

		ql, err := mcpquic.NewListener(quicAddr, tlsCfg, mcpSrv, logger)
		if err != nil {
			slog.Error("MCP QUIC listener", "error", err)
			os.Exit(1)
		}
		defer ql.Close()

		slog.Info("MCP QUIC serving", "addr", quicAddr)
		if err := ql.Serve(ctx); err != nil && ctx.Err() == nil {
			slog.Error("MCP QUIC", "error", err)
			os.Exit(1)
		}

	default:
		slog.Info("MCP stdio serving")
		if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("MCP stdio", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("server stopped")
}

// applyEnvOverrides layers environment variables over the file config.
func applyEnvOverrides(cfg *weave.Config) {
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TEST_ID_ATTRIBUTE"); v != "" {
		cfg.TestIDAttribute = v
	}
	if v := os.Getenv("BROWSER_REMOTE_URL"); v != "" {
		cfg.Browser.RemoteURL = v
	}
	if v := os.Getenv("BROWSER_HEADFUL"); v != "" {
		cfg.Browser.Headful, _ = strconv.ParseBool(v)
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
