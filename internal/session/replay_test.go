package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/orim/internal/config"
)

const missingNodeMapYAML = `name: verdant_reach
cells:
  - {col: 0, row: 0, difficulty: 1, biome: meadow}
`

const changedBiomeMapYAML = `name: verdant_reach
cells:
  - {col: 0, row: 0, difficulty: 1, biome: crag}
  - {col: 1, row: 0, difficulty: 2, biome: grove}
  - {col: 0, row: 1, difficulty: 2, biome: shore}
`

func acceptAllSettings() config.Settings {
	settings := config.Default()
	settings.Rules.KarmaMinimum = 0
	return settings
}

func TestReplay_EmptyJournal(t *testing.T) {
	sess, _ := newTestSession(t, config.Default(), "session-a")

	report, err := sess.Replay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Checked)
	assert.Equal(t, 0, report.Matched)
	assert.NotNil(t, report.Divergent)
	assert.True(t, report.Clean())
}

func TestReplay_CleanJournal(t *testing.T) {
	sess, _ := newTestSession(t, acceptAllSettings(), "session-a")
	ctx := context.Background()

	_, err := sess.Begin(ctx)
	require.NoError(t, err)
	for _, step := range []struct{ node, direction string }{
		{"0,0", "north"},
		{"1,0", "south"},
		{"0,1", "east"},
	} {
		_, err := sess.Deal(ctx, step.node, step.direction)
		require.NoError(t, err)
	}

	report, err := sess.Replay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, 3, report.Matched)
	assert.True(t, report.Clean())
}

func TestReplay_UsesRecordedSettings(t *testing.T) {
	sess, st := newTestSession(t, acceptAllSettings(), "session-a")
	ctx := context.Background()

	_, err := sess.Begin(ctx)
	require.NoError(t, err)
	_, err = sess.Deal(ctx, "0,0", "north")
	require.NoError(t, err)

	// Replaying with different current settings still matches: shapes
	// come from the recorded snapshot.
	altered := config.Default()
	altered.Deal.Tableaus = 2
	altered.Deal.CardsPerTableau = 7
	verifier := New(st, altered, loadTestMap(t, testMapYAML))

	report, err := verifier.Replay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 1, report.Matched)
	assert.True(t, report.Clean())
}

func TestReplay_DetectsMissingNode(t *testing.T) {
	sess, st := newTestSession(t, acceptAllSettings(), "session-a")
	ctx := context.Background()

	_, err := sess.Begin(ctx)
	require.NoError(t, err)
	_, err = sess.Deal(ctx, "0,0", "north")
	require.NoError(t, err)
	dropped, err := sess.Deal(ctx, "1,0", "south")
	require.NoError(t, err)

	// The shrunk map no longer has node 1,0.
	verifier := New(st, acceptAllSettings(), loadTestMap(t, missingNodeMapYAML))

	report, err := verifier.Replay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 1, report.Matched)
	assert.False(t, report.Clean())

	require.Len(t, report.Divergent, 1)
	div := report.Divergent[0]
	assert.Equal(t, dropped.ID, div.DealID)
	assert.Equal(t, "1,0", div.NodeKey)
	assert.Equal(t, "south", div.Direction)
	assert.Contains(t, div.Reason, `node "1,0" is not on map`)
}

func TestReplay_DetectsBiomeChange(t *testing.T) {
	sess, st := newTestSession(t, acceptAllSettings(), "session-a")
	ctx := context.Background()

	_, err := sess.Begin(ctx)
	require.NoError(t, err)
	_, err = sess.Deal(ctx, "0,0", "north")
	require.NoError(t, err)

	// Node 0,0 was meadow at record time; the edited map makes it crag,
	// which changes the element palette and so the generated layout.
	verifier := New(st, acceptAllSettings(), loadTestMap(t, changedBiomeMapYAML))

	report, err := verifier.Replay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	assert.False(t, report.Clean())

	require.Len(t, report.Divergent, 1)
	assert.Contains(t, report.Divergent[0].Reason, "regenerated layout hashes to")
}

func TestReplay_DetectsTamperedLayout(t *testing.T) {
	sess, st := newTestSession(t, acceptAllSettings(), "session-a")
	ctx := context.Background()

	_, err := sess.Begin(ctx)
	require.NoError(t, err)
	deal, err := sess.Deal(ctx, "0,0", "north")
	require.NoError(t, err)

	// Edit the stored layout bytes behind the store's back.
	_, err = st.DB().ExecContext(ctx,
		`UPDATE deals SET layout_json = ? WHERE id = ?`,
		`{"foundations":[],"tableaus":[]}`, deal.ID)
	require.NoError(t, err)

	report, err := sess.Replay(ctx)
	require.NoError(t, err)
	assert.False(t, report.Clean())

	require.Len(t, report.Divergent, 1)
	assert.Contains(t, report.Divergent[0].Reason, "stored layout hashes to")
}

func TestReplay_SpansSessions(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	sessA := New(st, acceptAllSettings(), loadTestMap(t, testMapYAML),
		WithTokenGenerator(NewFixedGenerator("session-a")),
	)
	_, err := sessA.Begin(ctx)
	require.NoError(t, err)
	_, err = sessA.Deal(ctx, "0,0", "north")
	require.NoError(t, err)

	// A later session with its own shape shares the journal.
	narrower := acceptAllSettings()
	narrower.Deal.Tableaus = 3
	sessB := New(st, narrower, loadTestMap(t, testMapYAML),
		WithTokenGenerator(NewFixedGenerator("session-b")),
	)
	require.NoError(t, sessB.Resume(ctx))
	_, err = sessB.Begin(ctx)
	require.NoError(t, err)
	_, err = sessB.Deal(ctx, "1,0", "south")
	require.NoError(t, err)

	report, err := sessB.Replay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 2, report.Matched)
	assert.True(t, report.Clean())
}
