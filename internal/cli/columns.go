package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/portscout/portscout/internal/category"
	"github.com/portscout/portscout/internal/models"
	"github.com/portscout/portscout/internal/prefs"
)

func newColumnsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns",
		Short: "Inspect and adjust the device grid columns",
	}
	cmd.AddCommand(
		newColumnsListCmd(),
		newColumnsToggleCmd(),
		newColumnsMoveCmd(),
		newColumnsResetCmd(),
	)
	return cmd
}

func newColumnsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the working column list",
		Args:  argsNone(),
		RunE:  runColumnsList,
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	cmd.Flags().Bool("enabled-only", false, "Only show enabled columns")
	return cmd
}

type columnRow struct {
	Position int    `json:"position"`
	ID       string `json:"id"`
	Label    string `json:"label"`
	Enabled  bool   `json:"enabled"`
	Category string `json:"category"`
}

func columnRows(cols []models.GridColumn, enabledOnly bool) []columnRow {
	rows := make([]columnRow, 0, len(cols))
	for _, col := range cols {
		if enabledOnly && !col.Enabled {
			continue
		}
		rows = append(rows, columnRow{
			Position: len(rows) + 1,
			ID:       col.ID,
			Label:    col.DisplayLabel(),
			Enabled:  col.Enabled,
			Category: category.Classify(col.ID),
		})
	}
	return rows
}

func runColumnsList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	initCLILogging(cfg)

	a, err := newApp(cmd, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	refreshErr := a.refreshCatalog(ctx)

	cols, err := a.manager.Columns(ctx)
	switch {
	case errors.Is(err, prefs.ErrCatalogUnavailable):
		if len(cols) == 0 {
			return Exitf(ExitCodeAgentUnreachable,
				"scan agent unreachable and no saved columns: %v", refreshErr)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "scan agent unreachable; showing saved preferences")
	case err != nil:
		return Exitf(ExitCodeFailure, "load columns: %v", err)
	}

	enabledOnly, _ := cmd.Flags().GetBool("enabled-only")
	rows := columnRows(cols, enabledOnly)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(cmd, rows)
	}

	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, []string{
			strconv.Itoa(row.Position),
			row.ID,
			row.Label,
			formatYesNo(row.Enabled),
			category.LabelFor(row.Category),
		})
	}
	layout := newTableLayout("#", "ID", "LABEL", "ENABLED", "CATEGORY").rightAligned(0)
	return layout.write(cmd.OutOrStdout(), table)
}

func newColumnsToggleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle <column-id>",
		Short: "Flip a column between shown and hidden",
		Args:  argsExact(1),
		RunE:  runColumnsToggle,
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func runColumnsToggle(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	initCLILogging(cfg)

	a, err := newApp(cmd, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	_ = a.refreshCatalog(ctx)

	columnID := args[0]
	cols, err := a.manager.Columns(ctx)
	if err != nil && !errors.Is(err, prefs.ErrCatalogUnavailable) {
		return Exitf(ExitCodeFailure, "load columns: %v", err)
	}
	if findColumn(cols, columnID) == -1 {
		return Exitf(ExitCodeFailure, "unknown column %q", columnID)
	}

	next, err := a.manager.Toggle(ctx, columnID)
	if err != nil {
		return Exitf(ExitCodeFailure, "toggle %q: %v", columnID, err)
	}

	enabled := next[findColumn(next, columnID)].Enabled
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(cmd, map[string]any{"id": columnID, "enabled": enabled})
	}
	state := "hidden"
	if enabled {
		state = "shown"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%q is now %s\n", columnID, state)
	return nil
}

func newColumnsMoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <column-id> <position>",
		Short: "Move a column to a 1-based position in the list",
		Args:  argsExact(2),
		RunE:  runColumnsMove,
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func runColumnsMove(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	initCLILogging(cfg)

	position, err := strconv.Atoi(args[1])
	if err != nil || position < 1 {
		return usageError(cmd, "position must be a positive number, got %q", args[1])
	}

	a, err := newApp(cmd, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	_ = a.refreshCatalog(ctx)

	columnID := args[0]
	cols, err := a.manager.Columns(ctx)
	if err != nil && !errors.Is(err, prefs.ErrCatalogUnavailable) {
		return Exitf(ExitCodeFailure, "load columns: %v", err)
	}
	from := findColumn(cols, columnID)
	if from == -1 {
		return Exitf(ExitCodeFailure, "unknown column %q", columnID)
	}

	next, err := a.manager.Move(ctx, from, position-1)
	if err != nil {
		return Exitf(ExitCodeFailure, "move %q: %v", columnID, err)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(cmd, columnRows(next, false))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "moved %q to position %d\n",
		columnID, findColumn(next, columnID)+1)
	return nil
}

func newColumnsResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the scan agent's default columns",
		Args:  argsNone(),
		RunE:  runColumnsReset,
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func runColumnsReset(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	initCLILogging(cfg)

	a, err := newApp(cmd, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	_ = a.refreshCatalog(ctx)

	// Reset needs the agent's defaults; the manager retries the fetch
	// itself if the first one failed.
	cols, err := a.manager.ResetToDefault(ctx)
	if errors.Is(err, prefs.ErrCatalogUnavailable) {
		return Exitf(ExitCodeAgentUnreachable, "cannot reset: scan agent unreachable")
	}
	if err != nil {
		return Exitf(ExitCodeFailure, "reset columns: %v", err)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(cmd, columnRows(cols, false))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "restored %d default columns\n", len(cols))
	return nil
}

func findColumn(cols []models.GridColumn, id string) int {
	for i, col := range cols {
		if col.ID == id {
			return i
		}
	}
	return -1
}

func writeJSON(cmd *cobra.Command, v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return Exitf(ExitCodeFailure, "encode output: %v", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(payload))
	return nil
}
