package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	cases := []struct {
		name    string
		receipt string
		list    string
		want    MatchKind
	}{
		{"identical", "milk", "milk", MatchExact},
		{"case and punctuation", "MILK!", "milk", MatchExact},
		{"size tokens stripped", "Eggs 12ct", "eggs", MatchExact},
		{"substring containment", "Milk", "milk - whole gallon", MatchFuzzy},
		{"token overlap above threshold", "vanilla greek yogurt", "greek yogurt", MatchFuzzy},
		{"overlap at threshold is not enough", "chicken breast", "chicken thighs", MatchNone},
		{"unrelated", "paper towels", "milk", MatchNone},
		{"empty receipt name", "", "milk", MatchNone},
		{"both empty", "", "", MatchNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.receipt, tc.list)
			assert.Equal(t, tc.want, got.Kind)
		})
	}
}

func TestScoreConfidence(t *testing.T) {
	exact := Score("milk", "Milk")
	assert.Equal(t, MatchExact, exact.Kind)
	assert.Equal(t, 1.0, exact.Confidence)

	fuzzy := Score("dark chocolate almonds", "chocolate almonds")
	assert.Equal(t, MatchFuzzy, fuzzy.Kind)
	assert.Greater(t, fuzzy.Confidence, 0.0)
	assert.LessOrEqual(t, fuzzy.Confidence, 1.0)
}

func TestTokenOverlap(t *testing.T) {
	// Shared tokens divided by the token count of the shorter name.
	assert.InDelta(t, 1.0, tokenOverlap("greek yogurt", "vanilla greek yogurt"), 1e-9)
	assert.InDelta(t, 0.5, tokenOverlap("chicken breast", "chicken thighs"), 1e-9)
	assert.InDelta(t, 0.0, tokenOverlap("milk", "eggs"), 1e-9)
}
