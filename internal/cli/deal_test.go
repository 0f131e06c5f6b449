package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/orim/internal/store"
)

const testMapPath = "testdata/verdant.yaml"

// writeConfig writes a settings TOML file into a temp dir.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orim.toml")
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

func TestDealDryRun(t *testing.T) {
	withoutColor(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewDealCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--node", "0,0", "--direction", "north", "--map", testMapPath})

	err := cmd.Execute()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Deal at 0,0 heading north (meadow)")
	assert.Contains(t, out, "Tableaus:")
	assert.Contains(t, out, "Foundations:")
	assert.Contains(t, out, "Karma check: 3 playable / 2 required")
	assert.Contains(t, out, "✓ Deal accepted")
	assert.Contains(t, out, "Fingerprint: ")
	// Dry runs journal nothing
	assert.NotContains(t, out, "Session:")
}

func TestDealDryRunJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewDealCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--node", "0,0", "--direction", "north", "--map", testMapPath})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)

	dataMap, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "0,0", dataMap["node"])
	assert.Equal(t, "north", dataMap["direction"])
	assert.Equal(t, "meadow", dataMap["biome"])
	assert.NotEmpty(t, dataMap["fingerprint"])
	assert.Nil(t, dataMap["session_token"])

	check, ok := dataMap["check"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), check["playable"])
	assert.Equal(t, float64(2), check["required"])
	assert.Equal(t, true, check["accepted"])
}

func TestDealDeterministicFingerprint(t *testing.T) {
	fingerprint := func() string {
		buf := &bytes.Buffer{}
		rootOpts := &RootOptions{Format: "json"}
		cmd := NewDealCommand(rootOpts)
		cmd.SetOut(buf)
		cmd.SetArgs([]string{"--node", "1,1", "--direction", "west", "--map", testMapPath})
		require.NoError(t, cmd.Execute())

		var resp CLIResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		dataMap := resp.Data.(map[string]any)
		return dataMap["fingerprint"].(string)
	}

	first := fingerprint()
	second := fingerprint()
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestDealRejected(t *testing.T) {
	withoutColor(t)
	configPath := writeConfig(t, "[rules]\nkarma_minimum = 99\n")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Config: configPath}
	cmd := NewDealCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--node", "0,0", "--direction", "north", "--map", testMapPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deal rejected: 3 playable of 99 required")
	assert.Contains(t, buf.String(), "✗ Deal rejected")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestDealRejectedJSON(t *testing.T) {
	configPath := writeConfig(t, "[rules]\nkarma_minimum = 99\n")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json", Config: configPath}
	cmd := NewDealCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--node", "0,0", "--direction", "north", "--map", testMapPath})

	err := cmd.Execute()
	require.Error(t, err)

	var resp CLIResponse
	jsonErr := json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, jsonErr)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeDealRejected, resp.Error.Code)
	// The rejected layout still rides along for inspection
	require.NotNil(t, resp.Data)
	dataMap := resp.Data.(map[string]any)
	check := dataMap["check"].(map[string]any)
	assert.Equal(t, false, check["accepted"])
}

func TestDealUnknownNode(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewDealCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--node", "9,9", "--direction", "north", "--map", testMapPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E009")
	assert.Contains(t, buf.String(), `node "9,9" is not on map "verdant_reach"`)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDealMissingMap(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewDealCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--node", "0,0", "--direction", "north", "--map", "/nonexistent/map.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E009")
	assert.Contains(t, buf.String(), "loading world map")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDealRequiredFlags(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewDealCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--map", testMapPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestDealJournaled(t *testing.T) {
	withoutColor(t)
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewDealCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--node", "0,0", "--direction", "north", "--map", testMapPath, "--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Session: ")
	assert.Contains(t, buf.String(), "Deal id: ")

	// The journal holds the session row and the deal row.
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	deals, err := st.ReadAllDeals(ctx)
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, "0,0", deals[0].NodeKey)
	assert.Equal(t, "north", deals[0].Direction)
	assert.Equal(t, 3, deals[0].Playable)
	assert.Equal(t, 2, deals[0].Required)
	assert.True(t, deals[0].Accepted)
	// Session row takes seq 1, the deal takes seq 2
	assert.Equal(t, int64(2), deals[0].Seq)

	sess, err := st.ReadSession(ctx, deals[0].SessionToken)
	require.NoError(t, err)
	assert.Equal(t, "verdant_reach", sess.MapName)
	assert.Equal(t, int64(1), sess.CreatedSeq)
}

func TestDealJournaledTwiceResumesClock(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	run := func() {
		buf := &bytes.Buffer{}
		rootOpts := &RootOptions{Format: "text"}
		cmd := NewDealCommand(rootOpts)
		cmd.SetOut(buf)
		cmd.SetArgs([]string{"--node", "1,0", "--direction", "south", "--map", testMapPath, "--db", dbPath})
		require.NoError(t, cmd.Execute())
	}

	run()
	run()

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	deals, err := st.ReadAllDeals(context.Background())
	require.NoError(t, err)
	require.Len(t, deals, 2)

	// Second invocation resumes after the recorded rows: seqs 1,2 then 3,4.
	assert.Equal(t, int64(2), deals[0].Seq)
	assert.Equal(t, int64(4), deals[1].Seq)

	// Same node and direction regenerate the same layout.
	assert.Equal(t, deals[0].Fingerprint, deals[1].Fingerprint)
	assert.NotEqual(t, deals[0].ID, deals[1].ID)
}

func TestDealJournaledVerbose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	stdoutBuf := &bytes.Buffer{}
	stderrBuf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Verbose: true}
	cmd := NewDealCommand(rootOpts)
	cmd.SetOut(stdoutBuf)
	cmd.SetErr(stderrBuf)
	cmd.SetArgs([]string{"--node", "0,0", "--direction", "north", "--map", testMapPath, "--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	// Session logs go to stderr
	assert.Contains(t, stderrBuf.String(), "session started")
	assert.Contains(t, stderrBuf.String(), "deal recorded")
}
