package engine

import (
	"strings"
	"unicode"
)

// Tokens that describe packaging or size rather than the product itself.
// "Milk - Whole Gallon" and "milk" should compare equal after stripping these.
var sizeTokens = map[string]bool{
	"gallon":  true,
	"gallons": true,
	"gal":     true,
	"quart":   true,
	"qt":      true,
	"pint":    true,
	"pt":      true,
	"oz":      true,
	"ounce":   true,
	"ounces":  true,
	"lb":      true,
	"lbs":     true,
	"pound":   true,
	"pounds":  true,
	"kg":      true,
	"g":       true,
	"ml":      true,
	"l":       true,
	"liter":   true,
	"litre":   true,
	"ct":      true,
	"count":   true,
	"pk":      true,
	"pack":    true,
	"pkg":     true,
	"dozen":   true,
	"each":    true,
	"ea":      true,
	"small":   true,
	"medium":  true,
	"large":   true,
	"xl":      true,
}

// Normalize canonicalizes a free-text item name for comparison: lower-case,
// punctuation stripped, packaging/size tokens removed, whitespace collapsed.
// It is total (empty in, empty out) and idempotent.
func Normalize(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	var kept []string
	for _, tok := range strings.Fields(b.String()) {
		if sizeTokens[tok] {
			continue
		}
		if isCountToken(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// isCountToken reports whether tok is a bare number or a number glued to a
// size suffix, e.g. "12", "12ct", "64oz", "2pk".
func isCountToken(tok string) bool {
	i := 0
	for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		i++
	}
	if i == 0 {
		return false
	}
	return i == len(tok) || sizeTokens[tok[i:]]
}
