package setting

// CheckResult is the outcome of a read-before-write probe.
type CheckResult int

const (
	// Indeterminate means the probe ran but its output could not be
	// interpreted. The engine treats it as Mismatch.
	Indeterminate CheckResult = iota
	// Matches means the target already holds the desired value.
	Matches
	// Mismatch means the value is present but wrong.
	Mismatch
	// Absent means the setting does not exist for the target.
	Absent
)

// String implements fmt.Stringer.
func (c CheckResult) String() string {
	switch c {
	case Matches:
		return "matches"
	case Mismatch:
		return "mismatch"
	case Absent:
		return "absent"
	default:
		return "indeterminate"
	}
}

// NeedsWrite reports whether the engine must attempt a write for this result.
func (c CheckResult) NeedsWrite() bool {
	return c == Mismatch || c == Indeterminate
}
