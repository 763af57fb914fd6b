// ABOUTME: Entry point for the rosterd REST server
// ABOUTME: Provides serve, init, and health subcommands

package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/rosterd/rosterd/internal/api"
	"github.com/rosterd/rosterd/internal/auth"
	"github.com/rosterd/rosterd/internal/config"
	"github.com/rosterd/rosterd/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

// getConfigPath returns the path to the rosterd config file.
// Priority: ROSTERD_CONFIG env var > XDG_CONFIG_HOME/rosterd/rosterd.yaml > ~/.config/rosterd/rosterd.yaml
func getConfigPath() string {
	if envPath := os.Getenv("ROSTERD_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "rosterd.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "rosterd", "rosterd.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: rosterd <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the REST server")
		fmt.Println("  init     Create a starter config file")
		fmt.Println("  health   Check server health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
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

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	gray := color.New(color.FgHiBlack)
	gray.Printf("rosterd %s\n", version)
	green.Print("  ▶ ")
	fmt.Printf("Config:   %s\n", configPath)
	green.Print("  ▶ ")
	fmt.Printf("HTTP:     %s\n", cfg.Server.HTTPAddr)
	green.Print("  ▶ ")
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	fmt.Println()

	logger.Info("starting rosterd",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
	)

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	seeds := make([]auth.Seed, 0, len(cfg.Principals))
	for _, p := range cfg.Principals {
		seeds = append(seeds, auth.Seed{
			Username:    p.Username,
			Password:    p.Password,
			Authorities: p.Authorities,
			Disabled:    p.Disabled,
		})
	}
	creds, err := auth.NewCredentialStore(seeds)
	if err != nil {
		return fmt.Errorf("building credential store: %w", err)
	}

	codec := auth.NewTokenCodec([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenValidity)

	whitelist := cfg.Auth.BasicAuthorities
	if len(whitelist) == 0 {
		whitelist = []string{auth.AuthorityAdmin}
	}

	server := api.NewServer(st, creds, codec, logger)
	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: server.Router(whitelist),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	return httpServer.Shutdown(shutdownCtx)
}

func runInit() error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return fmt.Errorf("generating secret: %w", err)
	}
	secret := base64.StdEncoding.EncodeToString(secretBytes)

	starter := fmt.Sprintf(`server:
  http_addr: ":8080"

database:
  path: %s

auth:
  jwt_secret: %q
  token_validity: 15m
  basic_authorities: [ADMIN]

principals:
  - username: admin
    password: ${ROSTERD_ADMIN_PASSWORD}
    authorities: [ADMIN, READ, WRITE]
  - username: public
    password: ${ROSTERD_PUBLIC_PASSWORD}
    authorities: [USER, READ]

logging:
  level: info
  format: text
`, filepath.Join(filepath.Dir(configPath), "rosterd.db"), secret)

	if err := os.WriteFile(configPath, []byte(starter), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	color.Green("Created %s", configPath)
	fmt.Println("Set ROSTERD_ADMIN_PASSWORD and ROSTERD_PUBLIC_PASSWORD before starting.")
	return nil
}

func runHealth(ctx context.Context) error {
	addr := os.Getenv("ROSTERD_ADDR")
	if addr == "" {
		addr = "http://localhost:8080"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr+"/healthz", nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		color.Red("unhealthy: %s", resp.Status)
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	color.Green("healthy: %s", string(body))
	return nil
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
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
