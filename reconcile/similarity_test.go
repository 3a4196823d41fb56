package reconcile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePostcode(t *testing.T) {
	t.Run("strips whitespace and uppercases", func(t *testing.T) {
		require.Equal(t, "SW1A2AA", NormalizePostcode("sw1a 2aa"))
		require.Equal(t, "SW1A2AA", NormalizePostcode(" SW1A\t2AA "))
	})

	t.Run("is idempotent", func(t *testing.T) {
		inputs := []string{"sw1a 2aa", "  EC1V 9BB ", "10115", "", " \t "}
		for _, in := range inputs {
			once := NormalizePostcode(in)
			require.Equal(t, once, NormalizePostcode(once))
		}
	})
}

func TestSimilarity(t *testing.T) {
	t.Run("identical non-empty strings score 100", func(t *testing.T) {
		for _, s := range []string{"smith", "a", "High Street 12", "Müller"} {
			require.Equal(t, 100.0, Similarity(s, s))
		}
	})

	t.Run("both empty score 100", func(t *testing.T) {
		require.Equal(t, 100.0, Similarity("", ""))
		require.Equal(t, 100.0, Similarity("  ", "\t"))
	})

	t.Run("one empty side scores 0", func(t *testing.T) {
		require.Equal(t, 0.0, Similarity("smith", ""))
		require.Equal(t, 0.0, Similarity("", "smith"))
		require.Equal(t, 0.0, Similarity("   ", "smith"))
	})

	t.Run("is symmetric", func(t *testing.T) {
		pairs := [][2]string{
			{"smith", "smyth"},
			{"elizabeth", "elisabet"},
			{"12 high street", "12 High St"},
			{"", "x"},
			{"kitten", "sitting"},
		}
		for _, p := range pairs {
			require.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]),
				"Similarity(%q, %q) should be symmetric", p[0], p[1])
		}
	})

	t.Run("known edit distances", func(t *testing.T) {
		tests := []struct {
			a, b     string
			expected float64
		}{
			// one substitution over five characters
			{"Smith", "Smyth", 80},
			// case and surrounding whitespace are normalized away
			{"  SMITH ", "smith", 100},
			// three edits over seven characters
			{"kitten", "sitting", 100 * 4.0 / 7.0},
			// completely different, same length
			{"abc", "xyz", 0},
		}
		for _, tt := range tests {
			require.InDelta(t, tt.expected, Similarity(tt.a, tt.b), 1e-9,
				"Similarity(%q, %q)", tt.a, tt.b)
		}
	})

	t.Run("scores stay within bounds", func(t *testing.T) {
		pairs := [][2]string{
			{"a", "abcdefghij"},
			{"Straße", "Strasse"},
			{"x", "y"},
		}
		for _, p := range pairs {
			score := Similarity(p[0], p[1])
			require.GreaterOrEqual(t, score, 0.0)
			require.LessOrEqual(t, score, 100.0)
		}
	})

	t.Run("combining and precomposed characters compare equal", func(t *testing.T) {
		// "é" as a single rune vs "e" plus a combining acute accent
		require.Equal(t, 100.0, Similarity("café", "café"))
	})
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"smith", "smyth", 1},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, editDistance([]rune(tt.a), []rune(tt.b)),
			"editDistance(%q, %q)", tt.a, tt.b)
	}
}
