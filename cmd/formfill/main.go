// Command formfill is the form autofill agent.
//
// Usage:
//
//	formfill -config formfill.yaml           # run against a configured page
//	formfill -url https://example.com/apply  # quick single-page session
//	formfill -url https://... -once          # fill once, print the report, exit
//	formfill -url https://... -mcp           # expose tools over MCP stdio
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/formfill/autofill"
	"github.com/hazyhaar/formfill/browser"
	"github.com/hazyhaar/formfill/fields"
	"github.com/hazyhaar/formfill/fill"
	"github.com/hazyhaar/formfill/history"
	"github.com/hazyhaar/formfill/idgen"
	"github.com/hazyhaar/formfill/profile"
)

func main() {
	configPath := flag.String("config", "", "path to formfill.yaml config file")
	pageURL := flag.String("url", "", "page to open (overrides config)")
	dbPath := flag.String("db", "", "profile database path (overrides config)")
	listen := flag.String("listen", "", "HTTP control endpoint address (overrides config)")
	once := flag.Bool("once", false, "fill once, print the report to stdout, and exit")
	mcpMode := flag.Bool("mcp", false, "serve MCP tools on stdio")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *pageURL, *dbPath, *listen, *once, *mcpMode); err != nil {
		logger.Error("formfill: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, pageURL, dbPath, listen string, once, mcpMode bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if pageURL != "" {
		cfg.Page.URL = pageURL
	}
	if dbPath != "" {
		cfg.Profiles.DB = dbPath
	}
	if listen != "" {
		cfg.HTTP.Listen = listen
	}
	if cfg.Page.URL == "" {
		fmt.Fprintln(os.Stderr, "usage: formfill -config <file> | -url <url> [-once|-mcp]")
		os.Exit(1)
	}
	if cfg.Page.ID == "" {
		cfg.Page.ID = idgen.New()
	}

	profiles, err := profile.Open(cfg.Profiles.DB, profile.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("open profiles: %w", err)
	}
	defer profiles.Close()

	var hist *history.Log
	if !cfg.History.Disabled {
		hist, err = history.Open(cfg.History.DB, history.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer hist.Close()
		if err := hist.Cleanup(ctx, history.RetentionConfig{Days: cfg.History.RetentionDays}); err != nil {
			logger.Warn("history cleanup failed", "error", err)
		}
	}

	mgr := browser.NewManager(browser.Config{
		RemoteURL:       cfg.Browser.Remote,
		Headless:        cfg.HeadlessEnabled(),
		MemoryLimit:     cfg.Browser.MemoryLimit,
		RecycleInterval: cfg.Browser.RecycleInterval.Std(),
		Logger:          logger,
	})
	if _, err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer mgr.Close()

	tab, err := browser.OpenTab(ctx, mgr, cfg.Page.URL, cfg.Page.ID)
	if err != nil {
		return fmt.Errorf("open tab: %w", err)
	}
	defer tab.Close()

	fillCfg := fill.Config{
		VerifyDelay: cfg.Fill.VerifyDelay.Std(),
		Logger:      logger,
	}
	if cfg.Fill.ReducedEvents {
		fillCfg.Text = fill.ReducedPolicy
		fillCfg.Select = fill.ReducedPolicy
	}

	agent := autofill.New(autofill.Config{
		Tab:      tab,
		Profiles: profiles,
		History:  hist,
		Fields: fields.Config{
			BatchSize: cfg.Fields.BatchSize,
			CacheTTL:  cfg.Fields.CacheTTL.Std(),
			Logger:    logger,
		},
		Fill: fillCfg,
		Rescan: autofill.RescanConfig{
			Window:    cfg.Rescan.Window.Std(),
			MaxBuffer: cfg.Rescan.MaxBuffer,
		},
		Notifications: cfg.Notifications,
		Logger:        logger,
	})

	if once {
		return runOnce(ctx, agent)
	}

	if err := agent.Watch(); err != nil {
		return fmt.Errorf("watch page: %w", err)
	}
	defer agent.Stop()

	if mcpMode {
		return runMCP(ctx, agent)
	}
	return runHTTP(ctx, logger, agent, cfg.HTTP.Listen)
}

func loadConfig(path string) (*autofill.FileConfig, error) {
	if path != "" {
		return autofill.LoadConfigFile(path)
	}
	return autofill.DefaultConfig(), nil
}

func runOnce(ctx context.Context, agent *autofill.Agent) error {
	rep, err := agent.HandleCommand(ctx, autofill.Command{Action: autofill.ActionAutofill})
	if err != nil {
		return fmt.Errorf("autofill: %w", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func runMCP(ctx context.Context, agent *autofill.Agent) error {
	srv := mcp.NewServer(&mcp.Implementation{Name: "formfill", Version: "0.1.0"}, nil)
	agent.RegisterMCP(srv)
	return srv.Run(ctx, &mcp.StdioTransport{})
}

func runHTTP(ctx context.Context, logger *slog.Logger, agent *autofill.Agent, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           autofill.NewRouter(agent),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("formfill: control endpoint listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
