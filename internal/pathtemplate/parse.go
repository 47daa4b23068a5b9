package pathtemplate

import (
	"fmt"
	"strconv"
	"strings"
)

// defaultPattern matches a single path segment: everything up to the next
// delimiter character.
const defaultPattern = `[^/#?]+?`

// prefixChars are the characters that, when immediately preceding a bare
// parameter, become its prefix instead of literal text.
const prefixChars = "./"

type lexKind int

const (
	lexOpen lexKind = iota
	lexClose
	lexName
	lexPattern
	lexChar
	lexEscapedChar
	lexModifier
	lexEnd
)

type lexToken struct {
	kind  lexKind
	index int
	value string
}

func isNameChar(c byte) bool {
	return c == '_' ||
		(c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z')
}

// lex splits a template string into lexer tokens.
func lex(template string) ([]lexToken, error) {
	var out []lexToken
	i := 0
	for i < len(template) {
		switch c := template[i]; c {
		case '*', '+', '?':
			out = append(out, lexToken{lexModifier, i, string(c)})
			i++
		case '\\':
			if i+1 >= len(template) {
				return nil, fmt.Errorf("trailing escape at %d", i)
			}
			out = append(out, lexToken{lexEscapedChar, i, string(template[i+1])})
			i += 2
		case '{':
			out = append(out, lexToken{lexOpen, i, string(c)})
			i++
		case '}':
			out = append(out, lexToken{lexClose, i, string(c)})
			i++
		case ':':
			j := i + 1
			for j < len(template) && isNameChar(template[j]) {
				j++
			}
			if j == i+1 {
				return nil, fmt.Errorf("missing parameter name at %d", i)
			}
			out = append(out, lexToken{lexName, i, template[i+1 : j]})
			i = j
		case '(':
			var pattern strings.Builder
			count := 1
			j := i + 1
			if j < len(template) && template[j] == '?' {
				return nil, fmt.Errorf("pattern cannot start with \"?\" at %d", j)
			}
			for j < len(template) {
				if template[j] == '\\' {
					if j+1 >= len(template) {
						return nil, fmt.Errorf("trailing escape at %d", j)
					}
					pattern.WriteString(template[j : j+2])
					j += 2
					continue
				}
				if template[j] == ')' {
					count--
					if count == 0 {
						j++
						break
					}
				} else if template[j] == '(' {
					count++
					if j+1 >= len(template) || template[j+1] != '?' {
						return nil, fmt.Errorf("capturing groups are not allowed at %d", j)
					}
				}
				pattern.WriteByte(template[j])
				j++
			}
			if count != 0 {
				return nil, fmt.Errorf("unbalanced pattern at %d", i)
			}
			if pattern.Len() == 0 {
				return nil, fmt.Errorf("missing pattern at %d", i)
			}
			out = append(out, lexToken{lexPattern, i, pattern.String()})
			i = j
		default:
			out = append(out, lexToken{lexChar, i, string(c)})
			i++
		}
	}
	out = append(out, lexToken{lexEnd, len(template), ""})
	return out, nil
}

// Parse compiles a template string into an ordered token sequence.
func Parse(template string) ([]Token, error) {
	lexed, err := lex(template)
	if err != nil {
		return nil, err
	}

	var result []Token
	var path strings.Builder
	groupKey := 0
	pos := 0

	tryConsume := func(kind lexKind) (string, bool) {
		if lexed[pos].kind == kind {
			v := lexed[pos].value
			pos++
			return v, true
		}
		return "", false
	}
	mustConsume := func(kind lexKind, what string) error {
		if _, ok := tryConsume(kind); !ok {
			return fmt.Errorf("unexpected %q at %d, expected %s",
				lexed[pos].value, lexed[pos].index, what)
		}
		return nil
	}
	consumeText := func() string {
		var b strings.Builder
		for {
			if v, ok := tryConsume(lexChar); ok {
				b.WriteString(v)
				continue
			}
			if v, ok := tryConsume(lexEscapedChar); ok {
				b.WriteString(v)
				continue
			}
			return b.String()
		}
	}
	flushPath := func() {
		if path.Len() > 0 {
			result = append(result, Literal(path.String()))
			path.Reset()
		}
	}

	for {
		char, hasChar := tryConsume(lexChar)
		name, hasName := tryConsume(lexName)
		pattern, hasPattern := tryConsume(lexPattern)

		if hasName || hasPattern {
			prefix := char
			if !strings.Contains(prefixChars, prefix) {
				path.WriteString(prefix)
				prefix = ""
			}
			flushPath()
			if name == "" {
				name = strconv.Itoa(groupKey)
				groupKey++
			}
			if !hasPattern {
				pattern = defaultPattern
			}
			modifier, _ := tryConsume(lexModifier)
			result = append(result, Token{Key: &Key{
				Name:     name,
				Prefix:   prefix,
				Pattern:  pattern,
				Modifier: modifier,
			}})
			continue
		}

		if hasChar {
			path.WriteString(char)
			continue
		}
		if v, ok := tryConsume(lexEscapedChar); ok {
			path.WriteString(v)
			continue
		}
		flushPath()

		if _, ok := tryConsume(lexOpen); ok {
			prefix := consumeText()
			name, _ := tryConsume(lexName)
			pattern, _ := tryConsume(lexPattern)
			suffix := consumeText()
			if err := mustConsume(lexClose, `"}"`); err != nil {
				return nil, err
			}
			if name == "" && pattern != "" {
				name = strconv.Itoa(groupKey)
				groupKey++
			}
			if name != "" && pattern == "" {
				pattern = defaultPattern
			}
			modifier, _ := tryConsume(lexModifier)
			result = append(result, Token{Key: &Key{
				Name:     name,
				Prefix:   prefix,
				Suffix:   suffix,
				Pattern:  pattern,
				Modifier: modifier,
			}})
			continue
		}

		if err := mustConsume(lexEnd, "end of template"); err != nil {
			return nil, err
		}
		return result, nil
	}
}

// KeyNames returns the names of the key tokens in sequence order. Duplicates
// are preserved positionally.
func KeyNames(tokens []Token) []string {
	var names []string
	for _, t := range tokens {
		if t.IsKey() {
			names = append(names, t.Key.Name)
		}
	}
	return names
}
