package powercfg

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// powercfg has no structured error channel: every failure exits 1 and prints
// a localized sentence. Absence is therefore decided from the GUIDs in a
// /query listing, which are the same on every locale. The English phrases
// are consulted only when the listing itself is unavailable.

var (
	missingPhrases = []string{
		"does not exist",
		"invalid parameters",
	}
	hexValueLine = regexp.MustCompile(`(?m):\s*0x([0-9a-fA-F]{1,8})\s*$`)
	guidPattern  = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	anyGUID      = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
)

type presence int

const (
	presenceUnknown presence = iota
	presenceListed
	presenceMissing
)

// lookup decides whether settingID exists under scope after a direct query
// or write failed. It lists the subgroup, and the whole scheme when the
// subgroup listing fails, then searches the output for the identifiers.
// Only GUID identifiers can prove absence; an alias missing from a listing
// may simply not be printed by this powercfg release.
func (a *Adapter) lookup(ctx context.Context, schemeID, scope, settingID string) presence {
	res, err := a.runner.Run(ctx, a.executable, "/query", schemeID, scope)
	if err == nil && anyGUID.MatchString(res.Stdout) {
		return listed(res.Stdout, settingID)
	}
	if ctx.Err() != nil {
		return presenceUnknown
	}

	res, err = a.runner.Run(ctx, a.executable, "/query", schemeID)
	if err != nil || !anyGUID.MatchString(res.Stdout) {
		return presenceUnknown
	}
	if listed(res.Stdout, scope) == presenceMissing {
		return presenceMissing
	}
	return presenceUnknown
}

func listed(output, id string) presence {
	id = strings.TrimSpace(id)
	if id == "" {
		return presenceUnknown
	}
	token := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(id) + `\b`)
	switch {
	case token.MatchString(output):
		return presenceListed
	case guidPattern.MatchString(id):
		return presenceMissing
	default:
		return presenceUnknown
	}
}

// reportsMissing reports whether a failed powercfg call means the scheme,
// subgroup or setting is unknown on this host. English output only.
func reportsMissing(output string) bool {
	lower := strings.ToLower(output)
	for _, phrase := range missingPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// isMissing combines the listing lookup with the phrase fallback.
func (a *Adapter) isMissing(ctx context.Context, schemeID, scope, settingID, output string) bool {
	switch a.lookup(ctx, schemeID, scope, settingID) {
	case presenceMissing:
		return true
	case presenceListed:
		return false
	}
	return reportsMissing(output)
}

// localizedIndices handles non-English hosts where the index labels are
// translated. The current AC and DC indices are always the final two
// hexadecimal values of a single-setting query, after the range metadata.
func localizedIndices(output string) (Indices, bool) {
	if strings.Contains(strings.ToLower(output), "power setting index") {
		return Indices{}, false
	}
	matches := hexValueLine.FindAllStringSubmatch(output, -1)
	if len(matches) < 2 {
		return Indices{}, false
	}
	ac, err := strconv.ParseUint(matches[len(matches)-2][1], 16, 32)
	if err != nil {
		return Indices{}, false
	}
	dc, err := strconv.ParseUint(matches[len(matches)-1][1], 16, 32)
	if err != nil {
		return Indices{}, false
	}
	return Indices{AC: uint32(ac), DC: uint32(dc)}, true
}
