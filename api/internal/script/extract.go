package script

import "strings"

const fence = "```"

// Extract pulls the outermost JSON object out of a model reply and applies
// best-effort textual repairs. The result has balanced outer delimiters but
// may still fail to decode.
func Extract(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrEmptyInput
	}
	text = fencedBody(text)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", ErrNoStructureFound
	}
	slice := balancedObject(text[start:])

	slice = dropTrailingCommas(slice)
	slice = escapeControlChars(slice)
	slice = normalizeSingleQuotes(slice)
	return slice, nil
}

// fencedBody returns the content of the first ``` fence, or s unchanged when
// there is no fence or the fence holds no object. The language tag needs no
// special handling: extraction starts at the first '{' anyway. An unclosed
// fence yields everything after the opening marker.
func fencedBody(s string) string {
	open := strings.Index(s, fence)
	if open < 0 {
		return s
	}
	body := s[open+len(fence):]
	if end := strings.Index(body, fence); end >= 0 {
		body = body[:end]
	}
	if !strings.Contains(body, "{") {
		return s
	}
	return strings.TrimSpace(body)
}

// balancedObject returns s (which starts with '{') up to the brace that
// closes it. Delimiters inside string literals (either quote style) are
// ignored. A truncated object is closed by appending the missing delimiters
// in stack order.
//
// Byte iteration is safe: ASCII delimiters never occur inside multi-byte
// UTF-8 sequences.
func balancedObject(s string) string {
	var (
		stack  []byte
		quote  byte
		escape bool
	)
	for i := 0; i < len(s); i++ {
		b := s[i]
		if escape {
			escape = false
			continue
		}
		if quote != 0 {
			switch b {
			case '\\':
				escape = true
			case quote:
				quote = 0
			}
			continue
		}
		switch b {
		case '"', '\'':
			quote = b
		case '{', '[':
			stack = append(stack, b)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				return s[:i+1]
			}
		}
	}

	// Truncated reply.
	var sb strings.Builder
	sb.Grow(len(s) + len(stack) + 2)
	sb.WriteString(strings.TrimRight(s, " \t\r\n,"))
	if escape {
		sb.WriteByte('\\')
	}
	if quote != 0 {
		sb.WriteByte(quote)
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			sb.WriteByte('}')
		} else {
			sb.WriteByte(']')
		}
	}
	return sb.String()
}

// dropTrailingCommas removes a comma that is followed only by whitespace and
// a closing delimiter. Commas inside string literals (either quote style) are
// kept.
func dropTrailingCommas(s string) string {
	var (
		sb     strings.Builder
		quote  byte
		escape bool
	)
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case quote != 0:
			if escape {
				escape = false
			} else if b == '\\' {
				escape = true
			} else if b == quote {
				quote = 0
			}
		case b == '"' || b == '\'':
			quote = b
		case b == ',':
			j := i + 1
			for j < len(s) && strings.IndexByte(" \t\r\n", s[j]) >= 0 {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		sb.WriteByte(b)
	}
	return sb.String()
}

// escapeControlChars escapes raw newlines, carriage returns and tabs inside
// string literals (either quote style). Structural whitespace is untouched.
func escapeControlChars(s string) string {
	var (
		sb     strings.Builder
		quote  byte
		escape bool
	)
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		if quote == 0 {
			if b == '"' || b == '\'' {
				quote = b
			}
			sb.WriteByte(b)
			continue
		}
		if escape {
			escape = false
			sb.WriteByte(b)
			continue
		}
		switch b {
		case '\\':
			escape = true
			sb.WriteByte(b)
		case quote:
			quote = 0
			sb.WriteByte(b)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteByte(b)
		}
	}
	return sb.String()
}

// normalizeSingleQuotes rewrites 'single-quoted' literals that appear outside
// double-quoted strings into JSON strings. Apostrophes inside double-quoted
// strings are left alone.
func normalizeSingleQuotes(s string) string {
	if !strings.Contains(s, "'") {
		return s
	}
	var (
		sb     strings.Builder
		inDbl  bool
		inSgl  bool
		escape bool
	)
	sb.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case inDbl:
			sb.WriteByte(b)
			if escape {
				escape = false
			} else if b == '\\' {
				escape = true
			} else if b == '"' {
				inDbl = false
			}
		case inSgl:
			if escape {
				escape = false
				if b == '\'' {
					sb.WriteByte('\'')
				} else {
					sb.WriteByte('\\')
					sb.WriteByte(b)
				}
				continue
			}
			switch b {
			case '\\':
				escape = true
			case '\'':
				inSgl = false
				sb.WriteByte('"')
			case '"':
				sb.WriteString(`\"`)
			default:
				sb.WriteByte(b)
			}
		default:
			switch b {
			case '"':
				inDbl = true
				sb.WriteByte(b)
			case '\'':
				inSgl = true
				sb.WriteByte('"')
			default:
				sb.WriteByte(b)
			}
		}
	}
	if inSgl {
		sb.WriteByte('"')
	}
	return sb.String()
}
