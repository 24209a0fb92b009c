package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/portscout/portscout/internal/agentsim"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// setupCLIEnv isolates every path the CLI touches inside a temp dir.
func setupCLIEnv(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, ".config"))
	t.Setenv("PORTSCOUT_GLOBAL_DATA_DIR", filepath.Join(tmp, "data"))
	t.Setenv("PORTSCOUT_GLOBAL_CONFIG_DIR", filepath.Join(tmp, "config"))
	t.Setenv("PORTSCOUT_LOGGING_LEVEL", "error")
	return tmp
}

func startSim(t *testing.T) *agentsim.Server {
	t.Helper()
	sim, err := agentsim.New()
	require.NoError(t, err)
	require.NoError(t, sim.Start("127.0.0.1:0"))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = sim.Shutdown(ctx)
	})
	t.Setenv("PORTSCOUT_AGENT_URL", sim.BaseURL())
	return sim
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd("test")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func decodeRows(t *testing.T, raw string) []columnRow {
	t.Helper()
	var rows []columnRow
	require.NoError(t, json.Unmarshal([]byte(raw), &rows))
	return rows
}

func TestRootCommandLayout(t *testing.T) {
	root := newRootCmd("dev")

	for _, path := range [][]string{
		{"columns", "list"},
		{"columns", "toggle"},
		{"columns", "move"},
		{"columns", "reset"},
		{"username"},
		{"agent"},
		{"grid"},
		{"tui"},
		{"demo"},
		{"version"},
	} {
		found, _, err := root.Find(path)
		require.NoError(t, err, "command %v", path)
		require.Equal(t, path[len(path)-1], found.Name())
	}
}

func TestVersionCommand(t *testing.T) {
	setupCLIEnv(t)

	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	require.Equal(t, "portscout test\n", out)
}

func TestColumnsLifecycle(t *testing.T) {
	setupCLIEnv(t)
	startSim(t)

	out, _, err := runCLI(t, "columns", "list", "--json")
	require.NoError(t, err)
	rows := decodeRows(t, out)
	require.Len(t, rows, 13)
	require.Equal(t, "Device Name", rows[0].ID)
	require.Equal(t, "identity", rows[0].Category)

	out, _, err = runCLI(t, "columns", "toggle", "VLAN")
	require.NoError(t, err)
	require.Contains(t, out, `"VLAN" is now shown`)

	out, _, err = runCLI(t, "columns", "move", "IP Address", "1")
	require.NoError(t, err)
	require.Contains(t, out, `moved "IP Address" to position 1`)

	out, _, err = runCLI(t, "columns", "list", "--json")
	require.NoError(t, err)
	rows = decodeRows(t, out)
	require.Equal(t, "IP Address", rows[0].ID)
	vlan := rows[rowIndex(t, rows, "VLAN")]
	require.True(t, vlan.Enabled)

	out, _, err = runCLI(t, "columns", "reset")
	require.NoError(t, err)
	require.Contains(t, out, "restored 13 default columns")

	out, _, err = runCLI(t, "columns", "list", "--json")
	require.NoError(t, err)
	rows = decodeRows(t, out)
	require.Equal(t, "Device Name", rows[0].ID)
	require.False(t, rows[rowIndex(t, rows, "VLAN")].Enabled)
}

func rowIndex(t *testing.T, rows []columnRow, id string) int {
	t.Helper()
	for i, row := range rows {
		if row.ID == id {
			return i
		}
	}
	t.Fatalf("column %q not in rows", id)
	return -1
}

func TestColumnsListEnabledOnly(t *testing.T) {
	setupCLIEnv(t)
	startSim(t)

	out, _, err := runCLI(t, "columns", "list", "--json", "--enabled-only")
	require.NoError(t, err)
	rows := decodeRows(t, out)
	require.Len(t, rows, 6)
	for _, row := range rows {
		require.True(t, row.Enabled)
	}
}

func TestColumnsListOfflineShowsSaved(t *testing.T) {
	setupCLIEnv(t)
	startSim(t)

	_, _, err := runCLI(t, "columns", "toggle", "VLAN")
	require.NoError(t, err)

	// Point at a port nothing listens on.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	deadURL := "http://" + ln.Addr().String()
	require.NoError(t, ln.Close())
	t.Setenv("PORTSCOUT_AGENT_URL", deadURL)

	out, errOut, err := runCLI(t, "columns", "list", "--json")
	require.NoError(t, err)
	require.Contains(t, errOut, "scan agent unreachable")
	rows := decodeRows(t, out)
	require.True(t, rows[rowIndex(t, rows, "VLAN")].Enabled)
}

func TestColumnsToggleUnknown(t *testing.T) {
	setupCLIEnv(t)
	startSim(t)

	_, _, err := runCLI(t, "columns", "toggle", "Bogus Column")
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, ExitCodeFailure, exitErr.Code)
	require.Contains(t, exitErr.Error(), "unknown column")
}

func TestColumnsMoveRejectsBadPosition(t *testing.T) {
	setupCLIEnv(t)

	_, _, err := runCLI(t, "columns", "move", "IP Address", "zero")
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, ExitCodeUsage, exitErr.Code)
	require.True(t, exitErr.Printed)
}

func TestUsernameRoundTrip(t *testing.T) {
	setupCLIEnv(t)

	out, _, err := runCLI(t, "username")
	require.NoError(t, err)
	require.Equal(t, "(not set)\n", out)

	out, _, err = runCLI(t, "username", "installer")
	require.NoError(t, err)
	require.Contains(t, out, `username set to "installer"`)

	out, _, err = runCLI(t, "username", "--json")
	require.NoError(t, err)
	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.Equal(t, "installer", payload["sshUsername"])

	out, _, err = runCLI(t, "username", "--clear")
	require.NoError(t, err)
	require.Contains(t, out, "username cleared")

	out, _, err = runCLI(t, "username")
	require.NoError(t, err)
	require.Equal(t, "(not set)\n", out)
}

func TestUsernameValueAndClearConflict(t *testing.T) {
	setupCLIEnv(t)

	_, _, err := runCLI(t, "username", "installer", "--clear")
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, ExitCodeUsage, exitErr.Code)
}

func TestAgentPinShowClear(t *testing.T) {
	setupCLIEnv(t)
	sim := startSim(t)

	// The env var would otherwise win over everything in show output;
	// drop it so the test exercises profile-vs-config resolution.
	t.Setenv("PORTSCOUT_AGENT_URL", "")

	out, _, err := runCLI(t, "agent", sim.BaseURL(), "--name", "lab")
	require.NoError(t, err)
	require.Contains(t, out, "pinned agent:lab")
	require.Contains(t, out, "agent version 1.4.0-sim")

	out, _, err = runCLI(t, "agent")
	require.NoError(t, err)
	require.Contains(t, out, sim.BaseURL())
	require.Contains(t, out, "(from profile)")

	out, _, err = runCLI(t, "agent", "--clear")
	require.NoError(t, err)
	require.Contains(t, out, "agent selection cleared")

	out, _, err = runCLI(t, "agent")
	require.NoError(t, err)
	require.Contains(t, out, "(from config)")
}

func TestAgentPinUnreachableFailsWithoutNoCheck(t *testing.T) {
	setupCLIEnv(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	deadURL := "http://" + ln.Addr().String()
	require.NoError(t, ln.Close())

	_, _, err = runCLI(t, "agent", deadURL)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, ExitCodeAgentUnreachable, exitErr.Code)

	out, _, err := runCLI(t, "agent", deadURL, "--no-check", "--name", "future-site")
	require.NoError(t, err)
	require.Contains(t, out, "pinned agent:future-site")
}

func TestGridRendersDevices(t *testing.T) {
	setupCLIEnv(t)
	startSim(t)

	out, _, err := runCLI(t, "grid")
	require.NoError(t, err)
	require.Contains(t, out, "ap-wh1-01")
	require.Contains(t, out, "Device Name")
	// Disabled columns stay out of the grid.
	require.NotContains(t, out, "VLAN")
}

func TestGridJSONLimitsFieldsToEnabledColumns(t *testing.T) {
	setupCLIEnv(t)
	startSim(t)

	out, _, err := runCLI(t, "grid", "--json")
	require.NoError(t, err)

	var payload struct {
		AgentVersion string `json:"agentVersion"`
		Devices      []struct {
			ID     string            `json:"id"`
			Fields map[string]string `json:"fields"`
		} `json:"devices"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.Equal(t, "1.4.0-sim", payload.AgentVersion)
	require.Len(t, payload.Devices, 10)
	for _, device := range payload.Devices {
		require.NotContains(t, device.Fields, "VLAN")
	}
}

func TestGridAgentUnreachable(t *testing.T) {
	setupCLIEnv(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	deadURL := "http://" + ln.Addr().String()
	require.NoError(t, ln.Close())
	t.Setenv("PORTSCOUT_AGENT_URL", deadURL)

	_, _, err = runCLI(t, "grid")
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, ExitCodeAgentUnreachable, exitErr.Code)
}

func TestExitfCarriesCode(t *testing.T) {
	err := Exitf(ExitCodeAgentUnreachable, "agent %s gone", "lab")
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, ExitCodeAgentUnreachable, exitErr.Code)
	require.False(t, exitErr.Printed)
	require.Equal(t, "agent lab gone", exitErr.Error())
}
