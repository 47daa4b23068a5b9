package pathtemplate

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher matches candidate paths against a compiled token sequence. The
// pattern is anchored on both ends and tolerates one trailing delimiter, so a
// path such as "/x/" matches the sequence compiled from "/x".
type Matcher struct {
	re   *regexp.Regexp
	keys []*Key
}

// NewMatcher builds a matcher for a token sequence. The sequence may be any
// prefix of a parsed template, which is how partially typed paths are matched
// against progressively shorter schema prefixes.
func NewMatcher(tokens []Token) (*Matcher, error) {
	var b strings.Builder
	b.WriteString("(?i)^")
	keys := writePattern(&b, tokens)
	b.WriteString("[/#?]?$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("compiling matcher: %w", err)
	}
	return &Matcher{re: re, keys: keys}, nil
}

// writePattern appends the regular expression for the token sequence to b and
// returns the keys in capture-group order.
func writePattern(b *strings.Builder, tokens []Token) []*Key {
	var keys []*Key
	for _, t := range tokens {
		if !t.IsKey() {
			b.WriteString(regexp.QuoteMeta(t.Text))
			continue
		}
		k := t.Key
		prefix := regexp.QuoteMeta(k.Prefix)
		suffix := regexp.QuoteMeta(k.Suffix)
		if k.Pattern == "" {
			// Delimiter-only group, nothing to capture.
			fmt.Fprintf(b, "(?:%s%s)%s", prefix, suffix, k.Modifier)
			continue
		}
		keys = append(keys, k)
		switch {
		case prefix == "" && suffix == "":
			if k.Repeats() {
				fmt.Fprintf(b, "((?:%s)%s)", k.Pattern, k.Modifier)
			} else {
				fmt.Fprintf(b, "(%s)%s", k.Pattern, k.Modifier)
			}
		case k.Repeats():
			mod := ""
			if k.Modifier == "*" {
				mod = "?"
			}
			fmt.Fprintf(b, "(?:%s((?:%s)(?:%s%s(?:%s))*)%s)%s",
				prefix, k.Pattern, suffix, prefix, k.Pattern, suffix, mod)
		default:
			fmt.Fprintf(b, "(?:%s(%s)%s)%s", prefix, k.Pattern, suffix, k.Modifier)
		}
	}
	return keys
}

// Match matches a path against the token sequence, capturing a value for
// every key that participated in the match.
func (m *Matcher) Match(path string) (*MatchResult, bool) {
	sub := m.re.FindStringSubmatch(path)
	if sub == nil {
		return nil, false
	}
	result := &MatchResult{
		Path:   sub[0],
		Params: make(map[string]Value, len(m.keys)),
	}
	for i, k := range m.keys {
		raw := sub[i+1]
		if raw == "" {
			// Optional key that did not participate.
			continue
		}
		result.Params[k.Name] = ValueForKey(raw, k)
	}
	return result, true
}
