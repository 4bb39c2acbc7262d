package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "MILK", "milk"},
		{"strips punctuation and size words", "Milk - Whole Gallon", "milk whole"},
		{"strips count tokens", "Eggs 12ct", "eggs"},
		{"strips glued size suffix", "OJ 64oz", "oj"},
		{"strips bare numbers", "Bananas 2 lb", "bananas"},
		{"collapses whitespace", "  peanut   butter  ", "peanut butter"},
		{"empty", "", ""},
		{"only size tokens", "12ct gallon", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Milk - Whole Gallon",
		"EGGS 12ct!!",
		"organic bananas 2 lb",
		"",
		"Trail Mix (Large Bag)",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}
