package reconcile

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizePostcode strips all whitespace and uppercases the remainder.
// Applied identically to both sides before comparison, and idempotent.
func NormalizePostcode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// normalizeLoose prepares a string for fuzzy comparison: canonical
// composition first so precomposed and combining forms compare equal,
// then trim and lowercase.
func normalizeLoose(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// Similarity scores two strings in [0,100] after loose normalization.
// Equal strings (including both empty) score 100, a single empty side
// scores 0, anything else is derived from the edit distance:
// 100 * (maxLen - distance) / maxLen. The measure is symmetric.
func Similarity(a, b string) float64 {
	a = normalizeLoose(a)
	b = normalizeLoose(b)

	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	ar := []rune(a)
	br := []rune(b)
	maxLen := len(ar)
	if len(br) > maxLen {
		maxLen = len(br)
	}
	d := editDistance(ar, br)
	return 100 * float64(maxLen-d) / float64(maxLen)
}

// editDistance is the classic Levenshtein distance: unit-cost inserts,
// deletes and substitutions over full strings, no transposition.
func editDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
