package setting

// CurrentSchemeID is the identifier of the implicit single target used by the
// settings store backend.
const CurrentSchemeID = "SCHEME_CURRENT"

// Target identifies one concrete object a descriptor applies to.
type Target struct {
	// ID is stable across runs (scheme alias, PnP device ID, interface GUID).
	ID string
	// Label is the human-readable name shown to the user.
	Label string
}

// CurrentScheme returns the synthetic target for the active power scheme.
func CurrentScheme(label string) Target {
	if label == "" {
		label = "Active power scheme"
	}
	return Target{ID: CurrentSchemeID, Label: label}
}

// DisplayName returns the label, falling back to the identifier.
func (t Target) DisplayName() string {
	if t.Label != "" {
		return t.Label
	}
	return t.ID
}
