package session

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/orim/internal/config"
	"github.com/roach88/orim/internal/rules"
	"github.com/roach88/orim/internal/store"
	"github.com/roach88/orim/internal/worldgen"
	"github.com/roach88/orim/internal/worldmap"
)

const testMapYAML = `name: verdant_reach
cells:
  - {col: 0, row: 0, difficulty: 1, biome: meadow}
  - {col: 1, row: 0, difficulty: 2, biome: grove}
  - {col: 0, row: 1, difficulty: 2, biome: shore}
`

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func loadTestMap(t *testing.T, yamlText string) *worldmap.Map {
	t.Helper()
	m, err := worldmap.Load(strings.NewReader(yamlText))
	require.NoError(t, err)
	return m
}

func newTestSession(t *testing.T, settings config.Settings, tokens ...string) (*Session, *store.Store) {
	t.Helper()
	st := newTestStore(t)
	sess := New(st, settings, loadTestMap(t, testMapYAML),
		WithTokenGenerator(NewFixedGenerator(tokens...)),
	)
	return sess, st
}

// writeFixtureDeal journals a handcrafted layout so play legality is
// known in advance instead of depending on generated cards.
func writeFixtureDeal(t *testing.T, st *store.Store, sessionToken string, tableaus []rules.Tableau, foundations []rules.Foundation, seq int64) string {
	t.Helper()
	id := store.DealID(sessionToken, "0,0", "north", seq)
	err := st.WriteDeal(context.Background(), store.Deal{
		ID:           id,
		SessionToken: sessionToken,
		NodeKey:      "0,0",
		Direction:    "north",
		LayoutJSON:   string(worldgen.EncodeLayout(tableaus, foundations)),
		Fingerprint:  worldgen.LayoutFingerprint(tableaus, foundations),
		Playable:     1,
		Required:     0,
		Accepted:     true,
		Seq:          seq,
	})
	require.NoError(t, err)
	return id
}

func TestBegin_WritesSessionRow(t *testing.T) {
	sess, st := newTestSession(t, config.Default(), "session-a")
	ctx := context.Background()

	token, err := sess.Begin(ctx)
	require.NoError(t, err)
	assert.Equal(t, "session-a", token)
	assert.Equal(t, "session-a", sess.Token())

	rec, err := st.ReadSession(ctx, "session-a")
	require.NoError(t, err)
	assert.Equal(t, "verdant_reach", rec.MapName)
	assert.Equal(t, int64(1), rec.CreatedSeq)

	// The snapshot is canonical JSON: sorted keys, no whitespace.
	assert.Equal(t,
		`{"deal":{"cards_per_tableau":4,"foundations":3,"tableaus":5},"rules":{"karma_minimum":2}}`,
		rec.SettingsJSON)
}

func TestBegin_DefaultGeneratorIssuesUUIDv7(t *testing.T) {
	st := newTestStore(t)
	sess := New(st, config.Default(), loadTestMap(t, testMapYAML))

	token, err := sess.Begin(context.Background())
	require.NoError(t, err)

	parsed, err := uuid.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestDeal_RecordsDeal(t *testing.T) {
	settings := config.Default()
	settings.Rules.KarmaMinimum = 0 // accept every deal
	sess, st := newTestSession(t, settings, "session-a")
	ctx := context.Background()

	_, err := sess.Begin(ctx)
	require.NoError(t, err)

	res, err := sess.Deal(ctx, "0,0", "north")
	require.NoError(t, err)

	assert.Len(t, res.Tableaus, 5)
	assert.Len(t, res.Foundations, 3)
	assert.True(t, res.Check.Accepted)
	assert.Equal(t, 0, res.Check.Required)
	assert.Len(t, res.Fingerprint, 64)
	assert.Equal(t, int64(2), res.Seq)
	assert.Equal(t, store.DealID("session-a", "0,0", "north", 2), res.ID)

	rec, err := st.ReadDeal(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "session-a", rec.SessionToken)
	assert.Equal(t, "0,0", rec.NodeKey)
	assert.Equal(t, "north", rec.Direction)
	assert.Equal(t, res.Fingerprint, rec.Fingerprint)
	assert.Equal(t, res.Check.Playable, rec.Playable)
	assert.True(t, rec.Accepted)
	assert.Equal(t, string(worldgen.EncodeLayout(res.Tableaus, res.Foundations)), rec.LayoutJSON)
}

func TestDeal_MatchesDirectGeneration(t *testing.T) {
	sess, _ := newTestSession(t, config.Default(), "session-a")
	ctx := context.Background()

	_, err := sess.Begin(ctx)
	require.NoError(t, err)

	res, err := sess.Deal(ctx, "0,0", "north")
	require.NoError(t, err)

	// Node 0,0 is meadow; the session adds nothing beyond worldgen.
	shape := worldgen.DealShape{Tableaus: 5, CardsPerTableau: 4, Foundations: 3}
	palette := worldmap.BiomeMeadow.ElementPalette()
	assert.Equal(t, worldgen.DealTableaus("0,0", "north", shape, palette), res.Tableaus)
	assert.Equal(t, worldgen.DealFoundations("0,0", "north", 3, palette), res.Foundations)
}

func TestDeal_RejectedDealIsJournaled(t *testing.T) {
	settings := config.Default()
	settings.Rules.KarmaMinimum = 99 // impossible with five tableaus
	sess, st := newTestSession(t, settings, "session-a")
	ctx := context.Background()

	_, err := sess.Begin(ctx)
	require.NoError(t, err)

	res, err := sess.Deal(ctx, "1,0", "south")
	require.NoError(t, err)
	assert.False(t, res.Check.Accepted)
	assert.Equal(t, 99, res.Check.Required)

	rec, err := st.ReadDeal(ctx, res.ID)
	require.NoError(t, err)
	assert.False(t, rec.Accepted)
	assert.Equal(t, 99, rec.Required)
}

func TestDeal_RequiresBegin(t *testing.T) {
	sess, _ := newTestSession(t, config.Default(), "session-a")

	_, err := sess.Deal(context.Background(), "0,0", "north")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no active session")
}

func TestDeal_UnknownNode(t *testing.T) {
	sess, _ := newTestSession(t, config.Default(), "session-a")
	ctx := context.Background()

	_, err := sess.Begin(ctx)
	require.NoError(t, err)

	_, err = sess.Deal(ctx, "9,9", "north")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `node "9,9" is not on map "verdant_reach"`)
}

func TestDeal_EmptyDirection(t *testing.T) {
	sess, _ := newTestSession(t, config.Default(), "session-a")
	ctx := context.Background()

	_, err := sess.Begin(ctx)
	require.NoError(t, err)

	_, err = sess.Deal(ctx, "0,0", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "direction must be non-empty")
}

func TestDeal_FingerprintStableAcrossSessions(t *testing.T) {
	ctx := context.Background()

	sessA, _ := newTestSession(t, config.Default(), "session-a")
	_, err := sessA.Begin(ctx)
	require.NoError(t, err)
	dealA, err := sessA.Deal(ctx, "0,1", "east")
	require.NoError(t, err)

	sessB, _ := newTestSession(t, config.Default(), "session-b")
	_, err = sessB.Begin(ctx)
	require.NoError(t, err)
	dealB, err := sessB.Deal(ctx, "0,1", "east")
	require.NoError(t, err)

	// Layout depends only on node, direction, biome, and shape.
	assert.Equal(t, dealA.Fingerprint, dealB.Fingerprint)

	// Identity depends on the session token too.
	assert.NotEqual(t, dealA.ID, dealB.ID)
}

func TestPlay_LegalPlayRecorded(t *testing.T) {
	sess, st := newTestSession(t, config.Default(), "session-a")
	ctx := context.Background()

	_, err := sess.Begin(ctx)
	require.NoError(t, err)

	five := rules.Card{Rank: 5, Element: rules.ElementFire}
	six := rules.Card{Rank: 6, Element: rules.ElementWater}
	nine := rules.Card{Rank: 9, Element: rules.ElementNature}
	tableaus := []rules.Tableau{{Cards: []rules.Card{five}}}
	foundations := []rules.Foundation{{Top: &six}, {Top: &nine}}
	dealID := writeFixtureDeal(t, st, "session-a", tableaus, foundations, 2)
	sess.Clock().ResumeFrom(2)

	res, err := sess.Play(ctx, dealID, 0, 0)
	require.NoError(t, err)
	assert.True(t, res.Legal)
	assert.Equal(t, five, res.Card)
	assert.Equal(t, int64(3), res.Seq)
	assert.Equal(t, store.PlayID(dealID, 0, 0, 3), res.ID)

	plays, err := st.ReadPlays(ctx, dealID)
	require.NoError(t, err)
	require.Len(t, plays, 1)
	assert.Equal(t, res.ID, plays[0].ID)
	assert.Equal(t, 5, plays[0].CardRank)
	assert.Equal(t, "fire", plays[0].CardElement)
	assert.True(t, plays[0].Legal)
}

func TestPlay_IllegalPlayRecordedNotErrored(t *testing.T) {
	sess, st := newTestSession(t, config.Default(), "session-a")
	ctx := context.Background()

	_, err := sess.Begin(ctx)
	require.NoError(t, err)

	five := rules.Card{Rank: 5, Element: rules.ElementFire}
	six := rules.Card{Rank: 6, Element: rules.ElementWater}
	nine := rules.Card{Rank: 9, Element: rules.ElementNature}
	tableaus := []rules.Tableau{{Cards: []rules.Card{five}}}
	foundations := []rules.Foundation{{Top: &six}, {Top: &nine}}
	dealID := writeFixtureDeal(t, st, "session-a", tableaus, foundations, 2)
	sess.Clock().ResumeFrom(2)

	// Rank 5 onto rank 9 is not adjacent on the wheel.
	res, err := sess.Play(ctx, dealID, 0, 1)
	require.NoError(t, err)
	assert.False(t, res.Legal)

	plays, err := st.ReadPlays(ctx, dealID)
	require.NoError(t, err)
	require.Len(t, plays, 1)
	assert.False(t, plays[0].Legal)
}

func TestPlay_BoundsChecked(t *testing.T) {
	sess, st := newTestSession(t, config.Default(), "session-a")
	ctx := context.Background()

	_, err := sess.Begin(ctx)
	require.NoError(t, err)

	five := rules.Card{Rank: 5, Element: rules.ElementFire}
	six := rules.Card{Rank: 6, Element: rules.ElementWater}
	tableaus := []rules.Tableau{{Cards: []rules.Card{five}}}
	foundations := []rules.Foundation{{Top: &six}, {Top: nil}}
	dealID := writeFixtureDeal(t, st, "session-a", tableaus, foundations, 2)
	sess.Clock().ResumeFrom(2)

	tests := []struct {
		name       string
		tableau    int
		foundation int
		wantErr    string
	}{
		{"negative tableau", -1, 0, "tableau index -1 out of range"},
		{"tableau too high", 1, 0, "tableau index 1 out of range"},
		{"negative foundation", 0, -1, "foundation index -1 out of range"},
		{"foundation too high", 0, 2, "foundation index 2 out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sess.Play(ctx, dealID, tt.tableau, tt.foundation)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	// Nothing was journaled for the rejected attempts.
	plays, err := st.ReadPlays(ctx, dealID)
	require.NoError(t, err)
	assert.Empty(t, plays)
}

func TestPlay_UnknownDeal(t *testing.T) {
	sess, _ := newTestSession(t, config.Default(), "session-a")

	_, err := sess.Play(context.Background(), "no-such-deal", 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load deal no-such-deal")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestPlay_EmptyTableau(t *testing.T) {
	sess, st := newTestSession(t, config.Default(), "session-a")
	ctx := context.Background()

	_, err := sess.Begin(ctx)
	require.NoError(t, err)

	six := rules.Card{Rank: 6, Element: rules.ElementWater}
	tableaus := []rules.Tableau{{Cards: []rules.Card{}}}
	foundations := []rules.Foundation{{Top: &six}}
	dealID := writeFixtureDeal(t, st, "session-a", tableaus, foundations, 2)
	sess.Clock().ResumeFrom(2)

	_, err = sess.Play(ctx, dealID, 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tableau 0 is empty")
}

func TestResume_ContinuesAfterRecordedRows(t *testing.T) {
	sess, st := newTestSession(t, config.Default(), "session-a")
	ctx := context.Background()

	_, err := sess.Begin(ctx)
	require.NoError(t, err)
	_, err = sess.Deal(ctx, "0,0", "north")
	require.NoError(t, err)

	// A second session over the same journal resumes past seq 2.
	reopened := New(st, config.Default(), loadTestMap(t, testMapYAML),
		WithTokenGenerator(NewFixedGenerator("session-b")),
	)
	require.NoError(t, reopened.Resume(ctx))
	assert.Equal(t, int64(2), reopened.Clock().Current())

	token, err := reopened.Begin(ctx)
	require.NoError(t, err)

	rec, err := st.ReadSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.CreatedSeq)
}
