// ABOUTME: Entry point for the openclaw-assistant local API server
// ABOUTME: Wires the tool invoker, message stores, and aggregator together

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/golatam/sirenko-openclaw/internal/aggregate"
	"github.com/golatam/sirenko-openclaw/internal/config"
	"github.com/golatam/sirenko-openclaw/internal/httpapi"
	"github.com/golatam/sirenko-openclaw/internal/mcp"
	"github.com/golatam/sirenko-openclaw/internal/msgstore"
	"github.com/golatam/sirenko-openclaw/internal/tools"
	"github.com/golatam/sirenko-openclaw/internal/transport"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                                _
  ___  _ __   ___ _ __   ___| | __ ___      __
 / _ \| '_ \ / _ \ '_ \ / __| |/ _' \ \ /\ / /
| (_) | |_) |  __/ | | | (__| | (_| |\ V  V /
 \___/| .__/ \___|_| |_|\___|_|\__,_| \_/\_/
      |_|
`

// getConfigPath returns the path to the assistant config file.
// Priority: OPENCLAW_CONFIG env var > XDG_CONFIG_HOME/openclaw/assistant.yaml > ~/.config/openclaw/assistant.yaml
func getConfigPath() string {
	if envPath := os.Getenv("OPENCLAW_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "assistant.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "openclaw", "assistant.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: openclaw-assistant <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the assistant API server")
		fmt.Println("  health   Check assistant health")
		fmt.Println("  tools    List the operations the assistant exposes")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "health":
		err = runHealth(ctx)
	case "tools":
		err = runTools()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	// Version info
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)

	// Startup info
	green := color.New(color.FgGreen)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Endpoint:  %s\n", cfg.Endpoint.URL)
	for _, store := range cfg.Stores {
		green.Print("    ▶ ")
		fmt.Printf("Store:     %s (%s)\n", store.Name, store.URL)
	}
	fmt.Println()

	logger.Info("starting openclaw-assistant",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"endpoint", cfg.Endpoint.URL,
		"stores", len(cfg.Stores),
	)

	handler, err := buildHandler(cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildHandler assembles the transport, invoker, store clients, aggregator,
// and operation service behind the API handler.
func buildHandler(cfg *config.Config, logger *slog.Logger) (http.Handler, error) {
	var opts []transport.Option
	opts = append(opts, transport.WithLogger(logger))
	if cfg.Endpoint.Timeout > 0 {
		opts = append(opts, transport.WithTimeout(cfg.Endpoint.Timeout))
	}
	if cfg.Endpoint.MaxRetries > 0 {
		opts = append(opts, transport.WithMaxRetries(cfg.Endpoint.MaxRetries))
	}
	if cfg.Endpoint.BackoffBase > 0 {
		opts = append(opts, transport.WithBackoffBase(cfg.Endpoint.BackoffBase))
	}
	tr := transport.NewClient(opts...)

	invoker, err := mcp.NewClient(mcp.Config{
		EndpointURL:     cfg.Endpoint.URL,
		Transport:       tr,
		Logger:          logger,
		ClientName:      "openclaw-assistant",
		ClientVersion:   version,
		ProtocolVersion: cfg.Endpoint.ProtocolVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("creating tool invoker: %w", err)
	}

	backends := []aggregate.Backend{
		tools.NewMailBackend(cfg.Mail.Channel, invoker),
	}
	for _, sc := range cfg.Stores {
		store, err := msgstore.NewClient(msgstore.Config{
			Name:      sc.Name,
			BaseURL:   sc.URL,
			Transport: tr,
			Logger:    logger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating store client %s: %w", sc.Name, err)
		}
		backends = append(backends, tools.NewStoreBackend(store))
	}

	service, err := tools.NewService(tools.Config{
		Tools:      invoker,
		Aggregator: aggregate.New(backends, logger),
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating service: %w", err)
	}

	api := httpapi.NewServer(httpapi.Config{
		Service: service,
		Logger:  logger,
		Metrics: httpapi.MetricsConfig{Enabled: cfg.Metrics.Enabled, Path: cfg.Metrics.Path},
	})
	return api.Handler(), nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

func runHealth(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func runTools() error {
	for _, def := range tools.Definitions() {
		fmt.Printf("%-24s %s\n", def.Name, def.Description)
	}
	return nil
}
