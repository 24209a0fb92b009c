package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/portscout/portscout/internal/reconcile"
)

func newGridCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Render the device grid once and exit",
		Args:  argsNone(),
		RunE:  runGrid,
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func runGrid(cmd *cobra.Command, _ []string) error {
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
	if err := a.refreshCatalog(ctx); err != nil {
		return Exitf(ExitCodeAgentUnreachable, "scan agent unreachable: %v", err)
	}

	cols, err := a.manager.Columns(ctx)
	if err != nil {
		return Exitf(ExitCodeFailure, "load columns: %v", err)
	}
	enabled := reconcile.Enabled(cols)

	snap := a.source.Snapshot()

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		type gridDevice struct {
			ID     string            `json:"id"`
			Fields map[string]string `json:"fields"`
		}
		out := struct {
			AgentVersion string       `json:"agentVersion,omitempty"`
			Devices      []gridDevice `json:"devices"`
		}{AgentVersion: snap.AgentVersion}
		for _, device := range snap.Devices {
			fields := make(map[string]string, len(enabled))
			for _, col := range enabled {
				if value := device.Field(col.ID); value != "" {
					fields[col.ID] = value
				}
			}
			out.Devices = append(out.Devices, gridDevice{ID: device.ID, Fields: fields})
		}
		return writeJSON(cmd, out)
	}

	headers := make([]string, 0, len(enabled)+1)
	headers = append(headers, "#")
	for _, col := range enabled {
		headers = append(headers, col.DisplayLabel())
	}

	rows := make([][]string, 0, len(snap.Devices))
	for i, device := range snap.Devices {
		row := make([]string, 0, len(enabled)+1)
		row = append(row, strconv.Itoa(i+1))
		for _, col := range enabled {
			row = append(row, device.Field(col.ID))
		}
		rows = append(rows, row)
	}

	layout := newTableLayout(headers...).rightAligned(0)
	return layout.write(cmd.OutOrStdout(), rows)
}
