package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newUsernameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "username [value]",
		Short: "Show or set the SSH username offered on device rows",
		Args:  argsMax(1),
		RunE:  runUsername,
	}
	cmd.Flags().Bool("clear", false, "Remove the stored username")
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func runUsername(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	initCLILogging(cfg)

	clear, _ := cmd.Flags().GetBool("clear")
	if clear && len(args) > 0 {
		return usageError(cmd, "provide a value or --clear, not both")
	}

	a, err := newApp(cmd, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	jsonOutput, _ := cmd.Flags().GetBool("json")

	switch {
	case clear:
		if err := a.manager.SetSSHUsername(ctx, ""); err != nil {
			return Exitf(ExitCodeFailure, "clear username: %v", err)
		}
		if jsonOutput {
			return writeJSON(cmd, map[string]string{"sshUsername": ""})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "username cleared")
		return nil

	case len(args) == 1:
		value := strings.TrimSpace(args[0])
		if value == "" {
			return usageError(cmd, "username must not be blank; use --clear to remove it")
		}
		if err := a.manager.SetSSHUsername(ctx, value); err != nil {
			return Exitf(ExitCodeFailure, "set username: %v", err)
		}
		if jsonOutput {
			return writeJSON(cmd, map[string]string{"sshUsername": value})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "username set to %q\n", value)
		return nil

	default:
		current := a.manager.SSHUsername(ctx)
		if jsonOutput {
			return writeJSON(cmd, map[string]string{"sshUsername": current})
		}
		if current == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "(not set)")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), current)
		return nil
	}
}
