package namematch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"trade_pilot/internal/domain/service/namematch"
)

func TestNormalize(t *testing.T) {
	rq := require.New(t)

	rq.Equal("ironore", namematch.Normalize("  Iron\n  ORE "))
	rq.Equal("adept'shunterhood", namematch.Normalize("Adept's\nHunter Hood"))
	rq.Equal("ab", namematch.Normalize("Ａ b"))
}

func TestSimilarity(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name     string
		sensed   string
		expected string
		score    float64
	}{
		{name: "Identical", sensed: "Iron Ore", expected: "Iron Ore", score: 100},
		{name: "Case and whitespace", sensed: "IRON\nore", expected: "Iron Ore", score: 100},
		{name: "Both empty", sensed: "", expected: "", score: 100},
		{name: "Sensed empty", sensed: "", expected: "Iron Ore", score: 0},
		{name: "One substitution in seven", sensed: "Iron 0re", expected: "Iron Ore", score: 100 * 12.0 / 14.0},
		{name: "Disjoint", sensed: "xyz", expected: "abc", score: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			rq.InDelta(tc.score, namematch.Similarity(tc.sensed, tc.expected), 1e-9)
		})
	}
}

func TestMatcherThresholdBoundary(t *testing.T) {
	rq := require.New(t)

	m := namematch.NewMatcher(0)
	rq.Equal(namematch.DefaultThreshold, m.Threshold)

	for _, name := range []string{"Iron Ore", "Adept's Hunter Hood", "x"} {
		score, ok := m.Match(name, name)
		rq.Equal(100.0, score)
		rq.True(ok)
	}

	// 13 significant characters: one OCR substitution keeps 12/13 ≈ 92.3.
	score, ok := m.Match("Steel8arLarge", "SteelBarLarge")
	rq.InDelta(100*24.0/26.0, score, 1e-9)
	rq.True(ok)

	// A dropped character in a short name still passes: 2*6/13 ≈ 92.3.
	_, ok = m.Match("Iron Or", "Iron Ore")
	rq.True(ok)

	// A substitution in a 7-character name falls below: 12/14 ≈ 85.7.
	_, ok = m.Match("Iron 0re", "Iron Ore")
	rq.False(ok)

	_, ok = m.Match("Copper Ore", "Iron Ore")
	rq.False(ok)
}
