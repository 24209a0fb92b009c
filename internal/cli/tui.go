package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/portscout/portscout/internal/gridtui"
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive device grid",
		Args:  argsNone(),
		RunE:  runTUI,
	}
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if !hasTTY() {
		return Exitf(ExitCodeFailure, "the TUI requires an interactive terminal; try `portscout grid`")
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

	a, err := newApp(cmd, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return gridtui.Run(gridtui.Config{
		Manager:         a.manager,
		Source:          a.source,
		Publisher:       a.pub,
		AgentURL:        a.source.AgentURL(),
		Theme:           cfg.TUI.Theme,
		RefreshInterval: cfg.TUI.RefreshInterval,
		PollInterval:    cfg.Agent.PollInterval,
		PollTimeout:     cfg.Agent.Timeout,
		Version:         cmd.Root().Version,
	})
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
