package engine

import (
	"context"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/outcome"
	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
	"github.com/alexisbeaulieu97/nosleep/internal/ports"
)

// FindingStatus classifies one pair during a probe-only pass.
type FindingStatus string

const (
	FindingCompliant    FindingStatus = "compliant"
	FindingDrifted      FindingStatus = "drifted"
	FindingAbsent       FindingStatus = "absent"
	FindingMissing      FindingStatus = "missing"
	FindingSkipped      FindingStatus = "skipped"
	FindingNotSupported FindingStatus = "not_supported"
	FindingUnknown      FindingStatus = "unknown"
)

// Finding is the probe-only view of one pair.
type Finding struct {
	Backend      setting.BackendKind
	TargetLabel  string
	DescriptorID string
	Setting      string
	Scope        string
	Status       FindingStatus
	Result       setting.CheckResult
	Message      string
}

// Verification is the result of a probe-only pass.
type Verification struct {
	Findings    []Finding
	Warnings    []outcome.Warning
	Interrupted bool
}

// Count returns the number of findings with status.
func (v Verification) Count(status FindingStatus) int {
	n := 0
	for _, f := range v.Findings {
		if f.Status == status {
			n++
		}
	}
	return n
}

// Compliant reports whether no finding drifted, was left undetermined or is a
// required setting missing from the host.
func (v Verification) Compliant() bool {
	return v.Count(FindingDrifted) == 0 && v.Count(FindingUnknown) == 0 && v.Count(FindingMissing) == 0
}

// Verify probes every pair without writing anything. Skip-check descriptors
// are reported as skipped without probing.
func (e *Engine) Verify(ctx context.Context, backends []ports.Backend) Verification {
	if ctx == nil {
		ctx = context.Background()
	}

	var result Verification
	for _, b := range backends {
		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}
		targets, err := e.enumerate(ctx, b)
		if err != nil {
			if ctx.Err() != nil {
				result.Interrupted = true
				break
			}
			result.Warnings = append(result.Warnings, outcome.Warning{
				Backend: b.Kind,
				Message: "target enumeration failed: " + err.Error(),
			})
			continue
		}
		if !e.verifyBackend(ctx, b, targets, &result) {
			result.Interrupted = true
			break
		}
	}
	return result
}

func (e *Engine) verifyBackend(ctx context.Context, b ports.Backend, targets []setting.Target, result *Verification) bool {
	for _, target := range targets {
		for _, desc := range b.Descriptors {
			if ctx.Err() != nil {
				return false
			}
			finding := Finding{
				Backend:      b.Kind,
				TargetLabel:  target.DisplayName(),
				DescriptorID: desc.ID,
				Setting:      desc.Label(),
				Scope:        desc.Scope,
			}
			if desc.SkipCheck {
				finding.Status = FindingSkipped
				finding.Message = skipMessage
				result.Findings = append(result.Findings, finding)
				continue
			}

			scope, res, err := e.probe(ctx, b.Adapter, target, desc)
			if isCancelled(ctx, err) {
				return false
			}
			finding.Scope = scope
			finding.Result = res
			finding.Status = classifyFinding(desc, res, err)
			if err != nil {
				finding.Message = err.Error()
			}
			result.Findings = append(result.Findings, finding)
		}
	}
	return true
}

// classifyFinding mirrors the apply classification: a missing setting is only
// acceptable when the descriptor is optional.
func classifyFinding(desc setting.Descriptor, res setting.CheckResult, err error) FindingStatus {
	switch {
	case setting.IsNotSupported(err):
		return FindingNotSupported
	case missing(res, err) && desc.Optional:
		return FindingAbsent
	case missing(res, err):
		return FindingMissing
	case err != nil:
		return FindingUnknown
	}
	switch res {
	case setting.Matches:
		return FindingCompliant
	case setting.Mismatch:
		return FindingDrifted
	default:
		return FindingUnknown
	}
}
