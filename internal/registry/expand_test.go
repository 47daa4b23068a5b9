package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/importls/importls/internal/ierrors"
	"github.com/importls/importls/internal/pathtemplate"
)

func TestEncodeComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "v1.0.0", want: "v1.0.0"},
		{in: "a@v1.0.0", want: "a%40v1.0.0"},
		{in: "lib/main.ts", want: "lib%2Fmain.ts"},
		{in: "a b", want: "a%20b"},
		{in: "safe-name_123~", want: "safe-name_123~"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, encodeComponent(tt.in))
	}
}

func TestEndpointURL(t *testing.T) {
	tokens, err := pathtemplate.Parse("/:module@:version/:path*")
	require.NoError(t, err)
	matcher, err := pathtemplate.NewMatcher(tokens[:3])
	require.NoError(t, err)
	match, ok := matcher.Match("/x@a@v1.0.0")
	require.True(t, ok)

	t.Run("raw substitution", func(t *testing.T) {
		u, err := endpointURL("https://api.example.com/${module}/versions", tokens, match)
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/x/versions", u.String())
	})

	t.Run("encoded substitution", func(t *testing.T) {
		u, err := endpointURL("https://api.example.com/${module}/${{version}}/paths", tokens, match)
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/x/a%40v1.0.0/paths", u.String())
	})

	t.Run("relative endpoint rejected", func(t *testing.T) {
		_, err := endpointURL("/api/${module}/versions", tokens, match)
		require.Error(t, err)
		var tmplErr *ierrors.TemplateError
		require.ErrorAs(t, err, &tmplErr)
		assert.Equal(t, "TEMPLATE_ERROR", tmplErr.Code())
	})
}
