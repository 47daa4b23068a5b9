package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/importls/importls/internal/pathtemplate"
)

func TestFindMatch(t *testing.T) {
	tokens, err := pathtemplate.Parse("/x/:module@:version/:path*")
	require.NoError(t, err)

	tests := []struct {
		name    string
		path    string
		wantLen int
	}{
		{name: "full match", path: "/x/a@v1.0.0/lib/main.ts", wantLen: 5},
		{name: "module and separator", path: "/x/a@", wantLen: 3},
		{name: "module only", path: "/x/a", wantLen: 2},
		{name: "literal only", path: "/x/", wantLen: 1},
		{name: "no match", path: "/y/a", wantLen: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, match, err := findMatch(tokens, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, n)
			if tt.wantLen == 0 {
				assert.Nil(t, match)
			} else {
				assert.NotNil(t, match)
			}
		})
	}
}

func TestCompletorTypeAt(t *testing.T) {
	tokens, err := pathtemplate.Parse("/x/:module@:version/:path*")
	require.NoError(t, err)

	match := func(t *testing.T, path string) *pathtemplate.MatchResult {
		t.Helper()
		_, m, err := findMatch(tokens, path)
		require.NoError(t, err)
		require.NotNil(t, m)
		return m
	}

	t.Run("inside leading literal", func(t *testing.T) {
		c := completorTypeAt(1, tokens, match(t, "/x/a@"))
		lit, ok := c.(literalCompletor)
		require.True(t, ok)
		assert.Equal(t, "/x", lit.text)
	})

	t.Run("inside module prefix", func(t *testing.T) {
		c := completorTypeAt(2, tokens, match(t, "/x/a@"))
		key, ok := c.(keyCompletor)
		require.True(t, ok)
		assert.Equal(t, "module", key.key.Name)
		assert.Equal(t, "/", key.prefix)
		assert.Equal(t, 1, key.index)
	})

	t.Run("after module prefix with empty value", func(t *testing.T) {
		c := completorTypeAt(3, tokens, match(t, "/x/"))
		key, ok := c.(keyCompletor)
		require.True(t, ok)
		assert.Equal(t, "module", key.key.Name)
		assert.Empty(t, key.prefix)
	})

	t.Run("after version separator", func(t *testing.T) {
		c := completorTypeAt(5, tokens, match(t, "/x/a@"))
		key, ok := c.(keyCompletor)
		require.True(t, ok)
		assert.Equal(t, "version", key.key.Name)
		assert.Equal(t, 3, key.index)
	})

	t.Run("inside module value", func(t *testing.T) {
		c := completorTypeAt(4, tokens, match(t, "/x/a@"))
		key, ok := c.(keyCompletor)
		require.True(t, ok)
		assert.Equal(t, "module", key.key.Name)
	})

	t.Run("after trailing slash targets path key", func(t *testing.T) {
		c := completorTypeAt(12, tokens, match(t, "/x/a@v1.0.0/"))
		key, ok := c.(keyCompletor)
		require.True(t, ok)
		assert.Equal(t, "path", key.key.Name)
		assert.Equal(t, 4, key.index)
	})

	t.Run("suffixed repeat counts each span once", func(t *testing.T) {
		// Grouped repeated key with an explicit suffix: every span of
		// "/x/a;/b;" must be attributed exactly once, so the cursor at the
		// very end lands on the suffix literal, not past it.
		suffixed, err := pathtemplate.Parse("/x{/:seg;}*")
		require.NoError(t, err)
		_, m, err := findMatch(suffixed, "/x/a;/b;")
		require.NoError(t, err)
		require.NotNil(t, m)

		c := completorTypeAt(8, suffixed, m)
		lit, ok := c.(literalCompletor)
		require.True(t, ok)
		assert.Equal(t, ";", lit.text)

		c = completorTypeAt(5, suffixed, m)
		key, ok := c.(keyCompletor)
		require.True(t, ok)
		assert.Equal(t, "seg", key.key.Name)
	})

	t.Run("inside path value", func(t *testing.T) {
		c := completorTypeAt(15, tokens, match(t, "/x/a@v1.0.0/lib/main.ts"))
		key, ok := c.(keyCompletor)
		require.True(t, ok)
		assert.Equal(t, "path", key.key.Name)
	})
}
