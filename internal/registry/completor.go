package registry

import (
	"strings"
	"unicode/utf8"

	"github.com/importls/importls/internal/pathtemplate"
)

// completor classifies what the edit cursor is positioned over: literal text
// from the schema, or a key whose candidate values can be fetched. The
// variant set is fixed; consumers switch over it exhaustively.
type completor interface {
	isCompletor()
}

// literalCompletor means the cursor is inside fixed schema text; the
// remaining literal is the only sensible suggestion.
type literalCompletor struct {
	text string
}

// keyCompletor means the cursor is inside a key's prefix or value span.
// prefix is non-empty only when the cursor fell inside the prefix itself;
// index is the key token's position in the schema.
type keyCompletor struct {
	key    *pathtemplate.Key
	prefix string
	index  int
}

func (literalCompletor) isCompletor() {}
func (keyCompletor) isCompletor()     {}

// findMatch finds the longest token prefix that matches path, trying the full
// sequence first and shortening by one token per attempt. A partially typed
// path fails the full schema but still matches a prefix of it, which is what
// lets completions target the next unfilled segment. Returns the prefix
// length together with the captures; a zero length means nothing matched.
func findMatch(tokens []pathtemplate.Token, path string) (int, *pathtemplate.MatchResult, error) {
	for n := len(tokens); n > 0; n-- {
		matcher, err := pathtemplate.NewMatcher(tokens[:n])
		if err != nil {
			return 0, nil, err
		}
		if m, ok := matcher.Match(path); ok {
			return n, m, nil
		}
	}
	return 0, nil, nil
}

// completorTypeAt resolves which token covers the character offset within a
// composed path, walking the full token sequence and accumulating the
// character length of each span: literal text, key prefix, rendered key value
// and key suffix. Keys missing from the match render as empty, so the first
// unfilled key claims the offset right at the end of the matched text. A nil
// return means the offset sits on an ambiguous boundary and the caller should
// contribute nothing.
func completorTypeAt(offset int, tokens []pathtemplate.Token, match *pathtemplate.MatchResult) completor {
	length := 0
	for index, t := range tokens {
		if !t.IsKey() {
			length += utf8.RuneCountInString(t.Text)
			if offset < length {
				return literalCompletor{text: t.Text}
			}
			continue
		}
		k := t.Key
		if k.Prefix != "" {
			length += utf8.RuneCountInString(k.Prefix)
			if offset < length {
				return keyCompletor{key: k, prefix: k.Prefix, index: index}
			}
		}
		if offset < length {
			return nil
		}
		var rendered string
		if v, ok := match.Get(k.Name); ok {
			rendered = v.Render(k)
			if v.Repeated {
				// The first segment's prefix and the last segment's suffix
				// are counted by their own spans above and below.
				rendered = strings.TrimPrefix(rendered, k.Prefix)
				rendered = strings.TrimSuffix(rendered, k.Suffix)
			}
		}
		length += utf8.RuneCountInString(rendered)
		if offset <= length {
			return keyCompletor{key: k, index: index}
		}
		if k.Suffix != "" {
			length += utf8.RuneCountInString(k.Suffix)
			if offset <= length {
				return literalCompletor{text: k.Suffix}
			}
		}
	}
	return nil
}
