package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the portscout CLI.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portscout",
		Short: "Terminal companion for network device rollouts",
		Long: "portscout talks to a scan agent on the deployment network and shows\n" +
			"the discovered devices in a grid you can shape: pick columns, order\n" +
			"them, and keep those choices across sessions and agent upgrades.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	cmd.PersistentFlags().String("config", "", "Config file path")
	cmd.PersistentFlags().String("agent", "", "Scan agent URL (overrides profile and config)")

	cmd.AddCommand(
		newColumnsCmd(),
		newUsernameCmd(),
		newAgentCmd(),
		newGridCmd(),
		newTUICmd(),
		newDemoCmd(),
		newVersionCmd(version),
	)

	return cmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the portscout version",
		Args:  argsNone(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "portscout %s\n", version)
			return nil
		},
	}
}
