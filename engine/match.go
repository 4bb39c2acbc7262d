package engine

import "strings"

// MatchKind classifies how a receipt line relates to a shopping-list entry.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchFuzzy
	MatchExact
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// overlapThreshold is the minimum token-overlap ratio for a fuzzy match.
const overlapThreshold = 0.5

// MatchScore is the result of scoring one receipt line against one shopping item.
type MatchScore struct {
	Kind       MatchKind
	Confidence float64
}

// Score compares a receipt line name against a shopping-list item name.
// Exact means the normalized forms are equal. Fuzzy means one normalized form
// contains the other, or their token-overlap ratio (shared tokens over tokens
// in the shorter name) exceeds the threshold. Total over any pair of strings.
func Score(receiptName, listName string) MatchScore {
	a := Normalize(receiptName)
	b := Normalize(listName)

	if a == "" || b == "" {
		return MatchScore{Kind: MatchNone}
	}
	if a == b {
		return MatchScore{Kind: MatchExact, Confidence: 1}
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return MatchScore{Kind: MatchFuzzy, Confidence: 0.9}
	}
	if ratio := tokenOverlap(a, b); ratio > overlapThreshold {
		return MatchScore{Kind: MatchFuzzy, Confidence: ratio}
	}
	return MatchScore{Kind: MatchNone}
}

// tokenOverlap returns shared whitespace-delimited tokens divided by the token
// count of the shorter name.
func tokenOverlap(a, b string) float64 {
	ta := strings.Fields(a)
	tb := strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	set := make(map[string]bool, len(ta))
	for _, t := range ta {
		set[t] = true
	}
	shared := 0
	for _, t := range tb {
		if set[t] {
			shared++
			set[t] = false // count each token once
		}
	}

	shorter := len(ta)
	if len(tb) < shorter {
		shorter = len(tb)
	}
	return float64(shared) / float64(shorter)
}
