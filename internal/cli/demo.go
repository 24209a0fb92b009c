package cli

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/portscout/portscout/internal/agentsim"
	"github.com/portscout/portscout/internal/catalog"
	"github.com/portscout/portscout/internal/events"
	"github.com/portscout/portscout/internal/gridtui"
	"github.com/portscout/portscout/internal/prefs"
)

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the TUI against a built-in demo agent",
		Long: "Starts a loopback scan agent with canned inventory and opens the TUI\n" +
			"against it. Preferences live in a throwaway directory, so playing\n" +
			"with the demo never touches your real settings.",
		Args: argsNone(),
		RunE: runDemo,
	}
}

func runDemo(cmd *cobra.Command, _ []string) error {
	if !hasTTY() {
		return Exitf(ExitCodeFailure, "the demo requires an interactive terminal")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logFile, err := initTUILogging(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()

	sim, err := agentsim.New()
	if err != nil {
		return Exitf(ExitCodeFailure, "start demo agent: %v", err)
	}
	if err := sim.Start("127.0.0.1:0"); err != nil {
		return Exitf(ExitCodeFailure, "start demo agent: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = sim.Shutdown(ctx)
	}()

	tmpDir, err := os.MkdirTemp("", "portscout-demo-*")
	if err != nil {
		return Exitf(ExitCodeFailure, "create demo workspace: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	store, err := prefs.NewFileStore(filepath.Join(tmpDir, "settings.json"))
	if err != nil {
		return Exitf(ExitCodeFailure, "create demo store: %v", err)
	}

	pub := events.NewInMemoryPublisher()
	defer pub.Close()

	source, err := catalog.NewHTTPSource(sim.BaseURL(),
		catalog.WithHTTPClient(&http.Client{Timeout: 5 * time.Second}),
		catalog.WithPublisher(pub))
	if err != nil {
		return Exitf(ExitCodeFailure, "connect to demo agent: %v", err)
	}

	manager := prefs.NewManager(store, source, prefs.WithPublisher(pub))

	return gridtui.Run(gridtui.Config{
		Manager:         manager,
		Source:          source,
		Publisher:       pub,
		AgentURL:        source.AgentURL(),
		Theme:           cfg.TUI.Theme,
		RefreshInterval: cfg.TUI.RefreshInterval,
		PollInterval:    10 * time.Second,
		PollTimeout:     5 * time.Second,
		Version:         cmd.Root().Version,
	})
}
