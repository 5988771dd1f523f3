package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	count := 1000

	for range count {
		v, err := Generate(Community)
		require.NoError(t, err)
		assert.False(t, seen[v], "ID should be unique: %s", v)
		seen[v] = true
	}

	assert.Len(t, seen, count)
}

func TestGenerate_Format(t *testing.T) {
	prefixes := []Prefix{User, Book, Review, Genre, Community, Membership, Post, Comment, Token}

	for _, p := range prefixes {
		t.Run(string(p), func(t *testing.T) {
			v, err := Generate(p)
			require.NoError(t, err)

			require.True(t, strings.HasPrefix(v, string(p)+"-"))
			body := strings.TrimPrefix(v, string(p)+"-")
			assert.Len(t, body, length)
			for _, r := range body {
				assert.True(t, strings.ContainsRune(alphabet, r), "unexpected rune %q in %s", r, v)
			}
		})
	}
}

func TestHasPrefix(t *testing.T) {
	v := MustGenerate(Post)

	assert.True(t, HasPrefix(v, Post))
	assert.False(t, HasPrefix(v, Comment))
	assert.False(t, HasPrefix("post-short", Post))
	assert.False(t, HasPrefix("", Post))
}
