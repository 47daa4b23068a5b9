package registry

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/importls/importls/internal/ierrors"
	"github.com/importls/importls/internal/pathtemplate"
)

// componentUnsafe reports whether a byte must be percent-encoded by the
// ${{name}} substitution syntax. The class covers control bytes plus every
// character reserved in a path component.
func componentUnsafe(c byte) bool {
	if c < 0x20 || c == 0x7f {
		return true
	}
	switch c {
	case ' ', '"', '#', '<', '>', '?', '`', '{', '}', '/', ':', ';',
		'=', '@', '[', '\\', ']', '^', '|', '$', '&', '+', ',':
		return true
	}
	return false
}

// encodeComponent percent-encodes every path-unsafe byte of s.
func encodeComponent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if componentUnsafe(s[i]) {
			fmt.Fprintf(&b, "%%%02X", s[i])
		} else {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// endpointURL renders a variable's endpoint URL template into a fetchable
// URL, substituting every captured parameter: ${name} receives the raw
// rendered value and ${{name}} the percent-encoded one. List-valued captures
// render per their declaring key's formatting.
func endpointURL(urlTemplate string, tokens []pathtemplate.Token, match *pathtemplate.MatchResult) (*url.URL, error) {
	rendered := urlTemplate
	for name, value := range match.Params {
		var key *pathtemplate.Key
		for _, t := range tokens {
			if t.IsKey() && t.Key.Name == name {
				key = t.Key
				break
			}
		}
		text := value.Render(key)
		rendered = strings.ReplaceAll(rendered, "${"+name+"}", text)
		rendered = strings.ReplaceAll(rendered, "${{"+name+"}}", encodeComponent(text))
	}
	u, err := url.Parse(rendered)
	if err != nil {
		return nil, ierrors.NewTemplateError(urlTemplate,
			fmt.Sprintf("endpoint %q does not parse", rendered), err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, ierrors.NewTemplateError(urlTemplate,
			fmt.Sprintf("endpoint %q is not an absolute URL", rendered), nil)
	}
	return u, nil
}
