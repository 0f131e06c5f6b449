package cli

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/orim/internal/rules"
)

// withoutColor forces plain output for string assertions and restores
// the global afterwards.
func withoutColor(t *testing.T) {
	t.Helper()
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })
}

func TestCardLabel(t *testing.T) {
	withoutColor(t)

	label := cardLabel(rules.Card{Rank: 3, Element: rules.ElementNature})
	assert.Equal(t, "3 nature", label)

	label = cardLabel(rules.Card{Rank: rules.RankWild, Element: rules.ElementFire})
	assert.Equal(t, "wild fire", label)
}

func TestColorizeMultiplier(t *testing.T) {
	t.Run("no_color", func(t *testing.T) {
		withoutColor(t)
		assert.Equal(t, "2.0", colorizeMultiplier(2.0, "2.0"))
		assert.Equal(t, "0.5", colorizeMultiplier(0.5, "0.5"))
		assert.Equal(t, "1.0", colorizeMultiplier(1.0, "1.0"))
	})

	t.Run("colored", func(t *testing.T) {
		old := color.NoColor
		color.NoColor = false
		t.Cleanup(func() { color.NoColor = old })

		assert.Contains(t, colorizeMultiplier(2.0, "2.0"), "\x1b[32m")
		assert.Contains(t, colorizeMultiplier(0.5, "0.5"), "\x1b[31m")
		// Neutral multipliers stay unstyled
		assert.Equal(t, "1.0", colorizeMultiplier(1.0, "1.0"))
	})
}

func TestTableauViews(t *testing.T) {
	tableaus := []rules.Tableau{
		{Cards: []rules.Card{
			{Rank: 5, Element: rules.ElementFire},
			{Rank: 3, Element: rules.ElementNature},
		}},
		{},
	}

	views := tableauViews(tableaus)
	require.Len(t, views, 2)
	require.Len(t, views[0], 2)
	assert.Equal(t, CardView{Rank: 5, Element: "fire"}, views[0][0])
	assert.Equal(t, CardView{Rank: 3, Element: "nature"}, views[0][1])
	assert.Empty(t, views[1])
}

func TestFoundationViews(t *testing.T) {
	foundations := []rules.Foundation{
		{Top: &rules.Card{Rank: 7, Element: rules.ElementStorm}},
		{ActorBound: true},
		{},
	}

	views := foundationViews(foundations)
	require.Len(t, views, 3)

	require.NotNil(t, views[0].Top)
	assert.Equal(t, 7, views[0].Top.Rank)
	assert.Equal(t, "storm", views[0].Top.Element)

	assert.Nil(t, views[1].Top)
	assert.True(t, views[1].ActorBound)

	assert.Nil(t, views[2].Top)
	assert.False(t, views[2].ActorBound)
}

func TestRenderTableaus(t *testing.T) {
	withoutColor(t)

	buf := &bytes.Buffer{}
	renderTableaus(buf, []rules.Tableau{
		{Cards: []rules.Card{
			{Rank: 2, Element: rules.ElementWater},
			{Rank: 9, Element: rules.ElementDark},
		}},
		{},
	})

	out := buf.String()
	assert.Contains(t, out, "Tableaus:")
	assert.Contains(t, out, "[0] 2 water, 9 dark ← top")
	assert.Contains(t, out, "[1] (empty)")
}

func TestRenderFoundations(t *testing.T) {
	withoutColor(t)

	buf := &bytes.Buffer{}
	renderFoundations(buf, []rules.Foundation{
		{Top: &rules.Card{Rank: 4, Element: rules.ElementLight}},
		{ActorBound: true},
		{},
	})

	out := buf.String()
	assert.Contains(t, out, "Foundations:")
	assert.Contains(t, out, "[0] 4 light")
	assert.Contains(t, out, "[1] (actor)")
	assert.Contains(t, out, "[2] (empty)")
}

func TestRenderCheck(t *testing.T) {
	buf := &bytes.Buffer{}
	renderCheck(buf, rules.DealCheck{Playable: 3, Required: 2, Accepted: true})
	assert.Contains(t, buf.String(), "Karma check: 3 playable / 2 required")
	assert.Contains(t, buf.String(), "✓ Deal accepted")

	buf.Reset()
	renderCheck(buf, rules.DealCheck{Playable: 1, Required: 2, Accepted: false})
	assert.Contains(t, buf.String(), "✗ Deal rejected")
}
