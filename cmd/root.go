// ABOUTME: Root command for the quill CLI
// ABOUTME: Handles global flags, configuration and wiring of the client stack

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/markalston/quill/internal/auth"
	"github.com/markalston/quill/internal/client"
	"github.com/markalston/quill/internal/config"
	"github.com/markalston/quill/internal/logger"
	"github.com/markalston/quill/internal/posts"
	"github.com/markalston/quill/internal/session"
	"github.com/markalston/quill/internal/storage"
)

var (
	apiURL     string
	jsonOutput bool
	storeKind  string
	configDir  string
	verbose    bool
)

// Exit codes shared by every command
const (
	exitOK       = 0
	exitRejected = 1
	exitError    = 2
)

// logoutGrace bounds how long a command waits for the background logout call
const logoutGrace = 2 * time.Second

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Terminal client for the quill blog",
	Long: `quill signs in to a blog backend, lists and reads posts, and lets
authenticated users write, edit, delete and like them.

Run "quill tui" for the interactive interface.

Environment Variables:
  QUILL_API_URL       Backend API URL (default: http://localhost:8080/api)
  QUILL_STORE         Identity store: sqlite, file or memory (default: sqlite)
  QUILL_CONFIG_DIR    Config directory (default: $XDG_CONFIG_HOME/quill)
  QUILL_HTTP_TIMEOUT  Per-request timeout, e.g. 10s (default: none)
  LOG_LEVEL           debug, info, warn, error (default: info)
  LOG_FORMAT          text or json (default: text)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides QUILL_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "", "Identity store: sqlite, file or memory (overrides QUILL_STORE)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (overrides QUILL_CONFIG_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr instead of the debug log")
}

// runWithSignals runs fn with a context canceled on SIGINT or SIGTERM and
// exits with its code when non-zero
func runWithSignals(fn func(ctx context.Context) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	exitCode := fn(ctx)
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// loadConfig layers command-line flags on top of the loaded configuration
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return cfg, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if storeKind != "" {
		cfg.Store = storeKind
	}
	cfg.Sanitize()
	return cfg, nil
}

// GetAPIURL returns the API URL from flag, env, config file, or default (in priority order)
func GetAPIURL() string {
	cfg, err := loadConfig()
	if err != nil {
		if apiURL != "" {
			return apiURL
		}
		return client.DefaultBaseURL
	}
	return cfg.APIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// app holds the collaborators shared by every command
type app struct {
	cfg        config.Config
	logger     *slog.Logger
	client     *client.Client
	identities *storage.Identities
	session    *session.Store
	auth       *auth.Controller
	posts      *posts.Repository

	closers []func() error
}

// newApp loads configuration and wires storage, session and services.
// The caller must Close the returned app.
func newApp(ctx context.Context) (*app, error) {
	return openApp(ctx, verbose)
}

// openApp is newApp with explicit control over stderr logging
func openApp(ctx context.Context, stderrLogs bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	kind, err := cfg.StoreKind()
	if err != nil {
		return nil, err
	}

	log, closeLog, err := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Dir:    cfg.ConfigDir,
		Stderr: stderrLogs,
	})
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: log, closers: []func() error{closeLog}}

	store, closeStore, err := storage.Open(ctx, kind, cfg.ConfigDir)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open %s store: %w", kind, err)
	}
	a.closers = append(a.closers, closeStore)

	a.identities = storage.NewIdentities(store, log)
	a.client = client.New(cfg.APIURL,
		client.WithTokenSource(a.identities),
		client.WithLogger(log),
		client.WithTimeout(cfg.HTTPTimeout),
	)
	a.session = session.New()
	if err := a.session.Restore(ctx, a.identities); err != nil {
		log.Warn("cannot restore session", "error", err)
	}
	a.auth = auth.NewController(auth.NewAPIBackend(a.client), a.identities, a.session, log)
	a.posts = posts.NewRepository(a.client, log)

	log.Debug("quill started", "api_url", cfg.APIURL, "store", kind, "config_dir", cfg.ConfigDir)
	return a, nil
}

// Close waits briefly for background work and releases resources in
// reverse order of acquisition.
func (a *app) Close() {
	if a.auth != nil {
		ctx, cancel := context.WithTimeout(context.Background(), logoutGrace)
		a.auth.Wait(ctx)
		cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
}
