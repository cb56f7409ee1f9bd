package store

import (
	"fmt"
	"strings"
)

// Render rewrites #{name} placeholders in text into positional ? markers
// and resolves each name against param with Lookup. Anything after a comma
// inside the braces (#{id,jdbcType=INTEGER}) is ignored. Placeholders
// inside quoted strings, quoted identifiers and comments are left alone.
func Render(text string, param any) (string, []any, error) {
	const (
		sText = iota
		sSQ   // '...'
		sDQ   // "..."
		sBT   // `...`
		sLC   // -- ...
		sBC   // /* ... */
	)

	var buf strings.Builder
	buf.Grow(len(text))
	args := make([]any, 0, strings.Count(text, "#{"))
	state := sText

	for i := 0; i < len(text); {
		c := text[i]
		switch state {
		case sText:
			switch {
			case c == '\'':
				state = sSQ
			case c == '"':
				state = sDQ
			case c == '`':
				state = sBT
			case c == '-' && i+1 < len(text) && text[i+1] == '-':
				state = sLC
			case c == '/' && i+1 < len(text) && text[i+1] == '*':
				buf.WriteString("/*")
				i += 2
				state = sBC
				continue
			case c == '#' && i+1 < len(text) && text[i+1] == '{':
				end := strings.IndexByte(text[i+2:], '}')
				if end < 0 {
					return "", nil, fmt.Errorf("unterminated placeholder at offset %d", i)
				}
				expr := text[i+2 : i+2+end]
				name := strings.TrimSpace(expr)
				if comma := strings.IndexByte(name, ','); comma >= 0 {
					name = strings.TrimSpace(name[:comma])
				}
				if name == "" {
					return "", nil, fmt.Errorf("empty placeholder at offset %d", i)
				}
				v, ok := Lookup(param, name)
				if !ok {
					return "", nil, fmt.Errorf("parameter %q not found", name)
				}
				args = append(args, v)
				buf.WriteByte('?')
				i += end + 3
				continue
			}
		case sSQ:
			if c == '\'' {
				state = sText
			}
		case sDQ:
			if c == '"' {
				state = sText
			}
		case sBT:
			if c == '`' {
				state = sText
			}
		case sLC:
			if c == '\n' {
				state = sText
			}
		case sBC:
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				buf.WriteString("*/")
				i += 2
				state = sText
				continue
			}
		}
		buf.WriteByte(c)
		i++
	}
	return buf.String(), args, nil
}
