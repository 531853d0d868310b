package powercfg

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	indexPattern  = regexp.MustCompile(`(?i)current\s+(ac|dc)\s+power\s+setting\s+index:\s*0x([0-9a-f]+)`)
	schemePattern = regexp.MustCompile(`(?i)([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})\s*\(([^)]*)\)`)
)

// Indices holds the two values powercfg keeps per setting: AC (plugged in)
// and DC (on battery).
type Indices struct {
	AC uint32
	DC uint32
}

// Matches reports whether both indices equal want.
func (i Indices) Matches(want uint32) bool {
	return i.AC == want && i.DC == want
}

// ParseIndices extracts the current AC and DC indices from /query output.
// Both must be present; ok is false otherwise.
func ParseIndices(output string) (Indices, bool) {
	var (
		idx            Indices
		seenAC, seenDC bool
	)
	for _, m := range indexPattern.FindAllStringSubmatch(output, -1) {
		v, err := strconv.ParseUint(m[2], 16, 32)
		if err != nil {
			return Indices{}, false
		}
		switch strings.ToLower(m[1]) {
		case "ac":
			idx.AC, seenAC = uint32(v), true
		case "dc":
			idx.DC, seenDC = uint32(v), true
		}
	}
	if seenAC && seenDC {
		return idx, true
	}
	return localizedIndices(output)
}

// ParseActiveScheme extracts the GUID and friendly name from
// /getactivescheme output.
func ParseActiveScheme(output string) (guid, name string, ok bool) {
	m := schemePattern.FindStringSubmatch(output)
	if m == nil {
		return "", "", false
	}
	return strings.ToLower(m[1]), strings.TrimSpace(m[2]), true
}
