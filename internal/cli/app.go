package cli

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/portscout/portscout/internal/catalog"
	"github.com/portscout/portscout/internal/config"
	"github.com/portscout/portscout/internal/events"
	"github.com/portscout/portscout/internal/logging"
	"github.com/portscout/portscout/internal/prefs"
)

// app bundles the wired pieces a command works with.
type app struct {
	cfg      *config.Config
	profiles *config.ProfileStore
	pub      *events.InMemoryPublisher
	store    prefs.Store
	source   *catalog.HTTPSource
	manager  *prefs.Manager

	closers []func() error
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loader := config.NewLoader()
	if path, _ := cmd.Flags().GetString("config"); strings.TrimSpace(path) != "" {
		loader.SetConfigFile(strings.TrimSpace(path))
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, Exitf(ExitCodeFailure, "load config: %v", err)
	}
	return cfg, nil
}

func initCLILogging(cfg *config.Config) {
	logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       os.Stderr,
		EnableCaller: cfg.Logging.EnableCaller,
	})
}

// initTUILogging routes logs to a file. The terminal belongs to the
// renderer while the TUI runs, so nothing may log to it.
func initTUILogging(cfg *config.Config) (io.WriteCloser, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, Exitf(ExitCodeFailure, "prepare data directories: %v", err)
	}
	out, err := logging.FileOutput(cfg.LogFilePath())
	if err != nil {
		return nil, Exitf(ExitCodeFailure, "open log file: %v", err)
	}
	logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       "json",
		Output:       out,
		EnableCaller: cfg.Logging.EnableCaller,
	})
	return out, nil
}

func profileStoreFor(cfg *config.Config) *config.ProfileStore {
	return config.NewProfileStore(filepath.Join(cfg.Global.ConfigDir, "profile.yaml"))
}

// resolveAgentURL picks the scan agent: --agent flag, then the saved
// profile, then config.
func resolveAgentURL(cmd *cobra.Command, cfg *config.Config, profiles *config.ProfileStore) string {
	if flagURL, _ := cmd.Flags().GetString("agent"); strings.TrimSpace(flagURL) != "" {
		return strings.TrimSpace(flagURL)
	}
	if profile, err := profiles.Load(); err == nil && profile.HasAgent() {
		return profile.AgentURL
	}
	return cfg.Agent.URL
}

func newApp(cmd *cobra.Command, cfg *config.Config) (*app, error) {
	a := &app{
		cfg:      cfg,
		profiles: profileStoreFor(cfg),
		pub:      events.NewInMemoryPublisher(),
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, Exitf(ExitCodeFailure, "prepare data directories: %v", err)
	}

	store, err := a.openStore(cmd.Context())
	if err != nil {
		return nil, err
	}
	a.store = store

	source, err := catalog.NewHTTPSource(
		resolveAgentURL(cmd, cfg, a.profiles),
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.Agent.Timeout}),
		catalog.WithPublisher(a.pub),
	)
	if err != nil {
		return nil, Exitf(ExitCodeFailure, "agent url: %v", err)
	}
	a.source = source

	a.manager = prefs.NewManager(store, source, prefs.WithPublisher(a.pub))
	return a, nil
}

func (a *app) openStore(ctx context.Context) (prefs.Store, error) {
	switch a.cfg.Prefs.Backend {
	case config.PrefsBackendSQLite:
		store, err := prefs.OpenSQLiteStore(ctx, a.cfg.PrefsPath())
		if err != nil {
			return nil, Exitf(ExitCodeFailure, "open preference database: %v", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		store, err := prefs.NewFileStore(a.cfg.PrefsPath())
		if err != nil {
			return nil, Exitf(ExitCodeFailure, "open preference file: %v", err)
		}
		return store, nil
	}
}

// refreshCatalog fetches once, bounded by the configured agent timeout.
// Callers decide whether an unreachable agent is fatal; preference
// commands keep working from the saved list.
func (a *app) refreshCatalog(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Agent.Timeout)
	defer cancel()
	return a.source.Refresh(ctx)
}

// Close releases everything the app opened.
func (a *app) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.pub.Close()
	return firstErr
}
