package pathtemplate

import (
	"fmt"
	"regexp"
)

// Compiler renders a token sequence back into a concrete path by substituting
// parameter values. Like Matcher, it accepts any prefix of a parsed template.
type Compiler struct {
	tokens   []Token
	validate map[string]*regexp.Regexp
}

// NewCompiler builds a compiler for a token sequence.
func NewCompiler(tokens []Token) (*Compiler, error) {
	validate := make(map[string]*regexp.Regexp)
	for _, t := range tokens {
		if !t.IsKey() || t.Key.Pattern == "" {
			continue
		}
		re, err := regexp.Compile("(?i)^(?:" + t.Key.Pattern + ")$")
		if err != nil {
			return nil, fmt.Errorf("compiling pattern for %q: %w", t.Key.Name, err)
		}
		validate[t.Key.Name] = re
	}
	return &Compiler{tokens: tokens, validate: validate}, nil
}

// ToPath renders the token sequence with the given parameter values. Missing
// values are only tolerated for optional keys; every rendered segment must
// satisfy its key's pattern.
func (c *Compiler) ToPath(params map[string]Value) (string, error) {
	var b []byte
	for _, t := range c.tokens {
		if !t.IsKey() {
			b = append(b, t.Text...)
			continue
		}
		k := t.Key
		if k.Pattern == "" {
			if !k.Optional() {
				b = append(b, k.Prefix...)
				b = append(b, k.Suffix...)
			}
			continue
		}
		v, ok := params[k.Name]
		if !ok || len(v.Segments) == 0 {
			if k.Optional() {
				continue
			}
			return "", fmt.Errorf("missing value for %q", k.Name)
		}
		if len(v.Segments) > 1 && !k.Repeats() {
			return "", fmt.Errorf("expected %q to not repeat", k.Name)
		}
		for _, seg := range v.Segments {
			if re := c.validate[k.Name]; re != nil && !re.MatchString(seg) {
				return "", fmt.Errorf("value %q for %q does not match %q",
					seg, k.Name, k.Pattern)
			}
			b = append(b, k.Prefix...)
			b = append(b, seg...)
			b = append(b, k.Suffix...)
		}
	}
	return string(b), nil
}
