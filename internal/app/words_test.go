package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomWords(t *testing.T) {
	t.Parallel()

	words := RandomWords(4)
	assert.Len(t, words, 4)

	seen := make(map[string]bool)
	for _, w := range words {
		assert.Contains(t, WordPool, w)
		assert.False(t, seen[w], "duplicate word %q", w)
		seen[w] = true
	}
}

func TestRandomWordsClampsToPool(t *testing.T) {
	t.Parallel()

	words := RandomWords(len(WordPool) + 50)
	assert.Len(t, words, len(WordPool))
}
