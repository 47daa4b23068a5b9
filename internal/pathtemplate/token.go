// Package pathtemplate compiles Express-style path templates into tokens and
// provides matching of paths against token sequences and rendering of token
// sequences back into concrete paths.
//
// A template is a sequence of literal text and named parameters:
//
//	/:module@:version/:path*
//	/x/{:module}@{:version}?
//
// Named parameters capture one path segment by default and may carry a
// modifier: "?" (optional), "*" (zero or more) or "+" (one or more). Grouped
// parameters ({prefix:name suffix}) declare explicit prefix and suffix
// delimiters; outside groups a "." or "/" immediately before a parameter
// becomes its prefix.
package pathtemplate

import "strings"

// Token is one compiled unit of a template: fixed literal text or a named
// parameter. Exactly one of Text and Key is meaningful; Key is nil for
// literals.
type Token struct {
	Text string
	Key  *Key
}

// IsKey reports whether the token is a named parameter.
func (t Token) IsKey() bool {
	return t.Key != nil
}

// Literal builds a literal token.
func Literal(text string) Token {
	return Token{Text: text}
}

// Key describes a named parameter of a template.
type Key struct {
	// Name identifies the parameter. Unnamed pattern groups get a decimal
	// positional name.
	Name string
	// Prefix and Suffix are fixed delimiter text around each captured
	// segment.
	Prefix string
	Suffix string
	// Pattern is the regular expression one segment must match. Empty for
	// delimiter-only groups.
	Pattern string
	// Modifier is "", "?", "*" or "+".
	Modifier string
}

// Repeats reports whether the key captures a list of segments.
func (k *Key) Repeats() bool {
	return k.Modifier == "*" || k.Modifier == "+"
}

// Optional reports whether the key may be absent from a matching path.
func (k *Key) Optional() bool {
	return k.Modifier == "*" || k.Modifier == "?"
}

// Value holds a captured parameter value. Repeated keys capture an ordered
// list of segments, everything else a single segment.
type Value struct {
	Segments []string
	Repeated bool
}

// NewValue builds a single-segment value.
func NewValue(s string) Value {
	return Value{Segments: []string{s}}
}

// NewListValue builds a repeated value from segments.
func NewListValue(segments []string) Value {
	return Value{Segments: segments, Repeated: true}
}

// ValueForKey converts raw text into a value for the given key. For repeating
// keys the text is split on the key's inner separator (suffix followed by
// prefix), mirroring how repeated captures are laid out in a path.
func ValueForKey(raw string, k *Key) Value {
	if k == nil || !k.Repeats() {
		return NewValue(raw)
	}
	sep := k.Suffix + k.Prefix
	if sep == "" {
		return NewListValue([]string{raw})
	}
	return NewListValue(strings.Split(raw, sep))
}

// Render returns the path representation of the value. Repeated values render
// every segment wrapped in the key's prefix and suffix; single values render
// the bare segment.
func (v Value) Render(k *Key) string {
	if !v.Repeated {
		if len(v.Segments) == 0 {
			return ""
		}
		return v.Segments[0]
	}
	prefix, suffix := "", ""
	if k != nil {
		prefix, suffix = k.Prefix, k.Suffix
	}
	var b strings.Builder
	for _, s := range v.Segments {
		b.WriteString(prefix)
		b.WriteString(s)
		b.WriteString(suffix)
	}
	return b.String()
}

// MatchResult maps key names to the values captured from a path.
type MatchResult struct {
	// Path is the portion of the input consumed by the match.
	Path string
	// Params holds the captured value for every key that matched.
	Params map[string]Value
}

// Get returns the captured value for a key name.
func (m *MatchResult) Get(name string) (Value, bool) {
	v, ok := m.Params[name]
	return v, ok
}
