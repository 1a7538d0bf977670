package exchange

import (
	"strconv"
	"strings"
	"unicode"
)

// IsSymbol reports whether r needs a client-supplied value: anything that is
// not an ASCII digit, whitespace, or one of + - * /.
func IsSymbol(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return false
	case unicode.IsSpace(r):
		return false
	case r == '+' || r == '-' || r == '*' || r == '/':
		return false
	default:
		return true
	}
}

// Symbols returns the distinct symbols of expr in order of first appearance.
func Symbols(expr string) []rune {
	var out []rune
	seen := make(map[rune]struct{})
	for _, r := range expr {
		if !IsSymbol(r) {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Substitute replaces every occurrence of each resolved symbol with the
// decimal rendering of its value. Symbols without a value are left as-is.
func Substitute(expr string, values map[rune]int64) string {
	var b strings.Builder
	b.Grow(len(expr))
	for _, r := range expr {
		if v, ok := values[r]; ok {
			b.WriteString(strconv.FormatInt(v, 10))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
