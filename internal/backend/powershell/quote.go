package powershell

import "strings"

// Quote renders s as a PowerShell single-quoted string literal. PowerShell
// also accepts the typographic single quotes as delimiters, so those are
// doubled too.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'', '‘', '’', '‚', '‛':
			b.WriteRune(r)
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// EscapeWQLLike neutralises the LIKE wildcards and string delimiters in s so
// it matches only itself inside a single-quoted WQL LIKE pattern.
func EscapeWQLLike(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch r {
		case '[':
			b.WriteString("[[]")
		case '%':
			b.WriteString("[%]")
		case '_':
			b.WriteString("[_]")
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// InstancePrefixPattern returns a LIKE pattern matching WMI instance names
// derived from a PnP device ID. Instance names append "_<n>", so the
// separator is required literally: `...\2` must not match `...\20_0`.
func InstancePrefixPattern(deviceID string) string {
	return EscapeWQLLike(deviceID) + "[_]%"
}
