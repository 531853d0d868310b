package outcome

import (
	"time"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
)

// Kind is the terminal classification of one (target, descriptor) pair.
type Kind string

const (
	KindSkipped           Kind = "skipped"
	KindAbsent            Kind = "absent"
	KindCompliant         Kind = "compliant"
	KindApplied           Kind = "applied"
	KindAppliedUnverified Kind = "applied_unverified"
	KindNotSupported      Kind = "not_supported"
	KindFailed            Kind = "failed"
)

// Kinds lists every outcome in presentation order.
var Kinds = []Kind{
	KindCompliant,
	KindApplied,
	KindAppliedUnverified,
	KindSkipped,
	KindAbsent,
	KindNotSupported,
	KindFailed,
}

// Severity groups outcomes for presentation and exit handling.
type Severity string

const (
	SeverityOK      Severity = "ok"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityFailure Severity = "failure"
)

// Severity returns how the outcome should be surfaced.
func (k Kind) Severity() Severity {
	switch k {
	case KindCompliant, KindApplied:
		return SeverityOK
	case KindAppliedUnverified:
		return SeverityWarning
	case KindFailed:
		return SeverityFailure
	default:
		return SeverityInfo
	}
}

// IsFailure reports whether the outcome counts as a failure.
func (k Kind) IsFailure() bool {
	return k == KindFailed
}

// IsValid reports whether the kind is part of the taxonomy.
func (k Kind) IsValid() bool {
	for _, candidate := range Kinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// Event is emitted once per (target, descriptor) pair in processing order.
type Event struct {
	Backend      setting.BackendKind
	TargetID     string
	TargetLabel  string
	DescriptorID string
	Setting      string
	Scope        string
	Kind         Kind
	Message      string
	Duration     time.Duration
}

// Warning is a backend-level diagnostic that is not tied to a single pair,
// such as an enumeration failure.
type Warning struct {
	Backend setting.BackendKind
	Message string
}

// Fields describes the event as structured log fields.
func (e Event) Fields() []interface{} {
	fields := []interface{}{
		"backend", string(e.Backend),
		"target", e.TargetLabel,
		"descriptor_id", e.DescriptorID,
		"outcome", string(e.Kind),
	}
	if e.Scope != "" {
		fields = append(fields, "scope", e.Scope)
	}
	if e.Message != "" {
		fields = append(fields, "detail", e.Message)
	}
	if e.Duration > 0 {
		fields = append(fields, "duration_ms", e.Duration.Milliseconds())
	}
	return fields
}
