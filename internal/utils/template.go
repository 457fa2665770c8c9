// Package utils provides small shared helpers: $placeholder template
// substitution for starter messages and ticket names, and rune-safe
// truncation to the platform's length limits.
package utils

import "strings"

// Substitute expands $name and ${name} placeholders in template using vars.
// "$$" escapes a literal dollar sign. Placeholders with no entry in vars are
// left verbatim, and malformed placeholders never cause an error; user
// supplied templates must round-trip safely.
func Substitute(template string, vars map[string]string) string {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); {
		c := template[i]
		if c != '$' {
			b.WriteByte(c)
			i++
			continue
		}

		// c is '$'; decide between escape, ${name}, $name, or literal.
		if i+1 < len(template) && template[i+1] == '$' {
			b.WriteByte('$')
			i += 2
			continue
		}

		if i+1 < len(template) && template[i+1] == '{' {
			end := strings.IndexByte(template[i+2:], '}')
			if end >= 0 {
				name := template[i+2 : i+2+end]
				if v, ok := lookup(vars, name); ok {
					b.WriteString(v)
					i += end + 3
					continue
				}
			}
			b.WriteByte('$')
			i++
			continue
		}

		name := identifierAt(template[i+1:])
		if name != "" {
			if v, ok := lookup(vars, name); ok {
				b.WriteString(v)
				i += len(name) + 1
				continue
			}
		}

		b.WriteByte('$')
		i++
	}
	return b.String()
}

func lookup(vars map[string]string, name string) (string, bool) {
	if !validIdentifier(name) {
		return "", false
	}
	v, ok := vars[name]
	return v, ok
}

// identifierAt returns the longest identifier prefix of s, or "".
func identifierAt(s string) string {
	n := 0
	for n < len(s) && isIdentByte(s[n], n == 0) {
		n++
	}
	return s[:n]
}

func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i], i == 0) {
			return false
		}
	}
	return true
}

func isIdentByte(c byte, first bool) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		return true
	case c >= '0' && c <= '9':
		return !first
	}
	return false
}

// TruncateRunes clips s to at most n runes.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
