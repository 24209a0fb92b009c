package cli

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/portscout/portscout/internal/catalog"
	"github.com/portscout/portscout/internal/config"
)

func newAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent [url]",
		Short: "Show or switch the remembered scan agent",
		Long: "With no arguments, shows which scan agent portscout will talk to and\n" +
			"where that choice comes from. With a URL, pins that agent for this\n" +
			"machine until --clear; the pin survives across sessions.",
		Args: argsMax(1),
		RunE: runAgent,
	}
	cmd.Flags().String("name", "", "Label for the pinned agent")
	cmd.Flags().Bool("clear", false, "Forget the pinned agent and use the configured one")
	cmd.Flags().Bool("no-check", false, "Pin without probing the agent first")
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	initCLILogging(cfg)

	profiles := profileStoreFor(cfg)
	clear, _ := cmd.Flags().GetBool("clear")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	switch {
	case clear && len(args) > 0:
		return usageError(cmd, "provide a URL or --clear, not both")

	case clear:
		if err := profiles.Clear(); err != nil {
			return Exitf(ExitCodeFailure, "clear agent selection: %v", err)
		}
		if jsonOutput {
			return writeJSON(cmd, map[string]string{"url": cfg.Agent.URL, "source": "config"})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "agent selection cleared; using %s\n", cfg.Agent.URL)
		return nil

	case len(args) == 1:
		return pinAgent(cmd, cfg, profiles, args[0])

	default:
		return showAgent(cmd, cfg, profiles)
	}
}

func pinAgent(cmd *cobra.Command, cfg *config.Config, profiles *config.ProfileStore, rawURL string) error {
	agentURL := strings.TrimSpace(rawURL)
	source, err := catalog.NewHTTPSource(agentURL,
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.Agent.Timeout}))
	if err != nil {
		return usageError(cmd, "invalid agent url %q: %v", rawURL, err)
	}

	noCheck, _ := cmd.Flags().GetBool("no-check")
	agentVersion := ""
	if !noCheck {
		ctx, cancel := timeoutContext(cmd, cfg)
		defer cancel()
		if err := source.Refresh(ctx); err != nil {
			return Exitf(ExitCodeAgentUnreachable,
				"agent at %s did not respond: %v (use --no-check to pin anyway)", agentURL, err)
		}
		agentVersion = source.Snapshot().AgentVersion
	}

	name, _ := cmd.Flags().GetString("name")
	profile, err := profiles.Load()
	if err != nil {
		return Exitf(ExitCodeFailure, "load profile: %v", err)
	}
	profile.SetAgent(strings.TrimSpace(name), source.AgentURL())
	if err := profiles.Save(profile); err != nil {
		return Exitf(ExitCodeFailure, "save profile: %v", err)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(cmd, map[string]string{
			"url":          profile.AgentURL,
			"name":         profile.AgentName,
			"agentVersion": agentVersion,
			"source":       "profile",
		})
	}
	if agentVersion != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "pinned %s (agent version %s)\n", profile.String(), agentVersion)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "pinned %s\n", profile.String())
	}
	return nil
}

func showAgent(cmd *cobra.Command, cfg *config.Config, profiles *config.ProfileStore) error {
	profile, err := profiles.Load()
	if err != nil {
		return Exitf(ExitCodeFailure, "load profile: %v", err)
	}

	agentURL, from := cfg.Agent.URL, "config"
	if profile.HasAgent() {
		agentURL, from = profile.AgentURL, "profile"
	}
	if flagURL, _ := cmd.Flags().GetString("agent"); strings.TrimSpace(flagURL) != "" {
		agentURL, from = strings.TrimSpace(flagURL), "flag"
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(cmd, map[string]string{
			"url":    agentURL,
			"source": from,
			"name":   profile.AgentName,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "agent: %s (from %s)\n", agentURL, from)
	return nil
}

func timeoutContext(cmd *cobra.Command, cfg *config.Config) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), cfg.Agent.Timeout)
}
