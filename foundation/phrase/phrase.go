// Package phrase generates random phrases used as filler block payloads.
package phrase

import (
	"math/rand/v2"
	"strings"
)

// DefaultWords is the number of words used when filling an empty payload.
const DefaultWords = 20

var words = []string{
	"apple", "banana", "cherry", "date", "elderberry", "fig", "grape",
	"huckleberry", "kiwi", "lemon", "mango", "nectarine", "orange", "peach",
	"plum", "quince", "raspberry", "strawberry", "tangerine", "ugli fruit",
	"watermelon",
}

// Words returns the list of words phrases are built from.
func Words() []string {
	out := make([]string, len(words))
	copy(out, words)
	return out
}

// New returns a phrase of n randomly chosen words separated by a space.
func New(n int) string {
	if n <= 0 {
		return ""
	}

	parts := make([]string, n)
	for i := range parts {
		parts[i] = words[rand.IntN(len(words))]
	}

	return strings.Join(parts, " ")
}
