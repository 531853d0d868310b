package history

import (
	"time"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/outcome"
	"github.com/alexisbeaulieu97/nosleep/internal/engine"
)

// FromReport summarises an apply run.
func FromReport(runID string, started time.Time, report outcome.Report) Run {
	run := Run{
		RunID:       runID,
		Command:     "apply",
		StartedAt:   started.UTC(),
		DurationMS:  time.Since(started).Milliseconds(),
		Interrupted: report.Interrupted,
		Backends:    make(map[string]map[string]int, len(report.Summaries)),
	}
	warnings := 0
	for backend, summary := range report.Summaries {
		counts := make(map[string]int, len(summary))
		for kind, n := range summary {
			counts[string(kind)] = n
		}
		run.Backends[string(backend)] = counts
		warnings += summary.Warnings()
	}
	for _, w := range report.Warnings {
		run.Warnings = append(run.Warnings, string(w.Backend)+": "+w.Message)
	}

	switch {
	case report.Failures() > 0:
		run.Status = StatusFailed
	case report.Interrupted || warnings > 0:
		run.Status = StatusDrifted
	default:
		run.Status = StatusSatisfied
	}
	return run
}

// FromVerification summarises a probe-only run.
func FromVerification(runID string, started time.Time, v engine.Verification) Run {
	run := Run{
		RunID:       runID,
		Command:     "verify",
		StartedAt:   started.UTC(),
		DurationMS:  time.Since(started).Milliseconds(),
		Interrupted: v.Interrupted,
		Backends:    make(map[string]map[string]int),
	}
	for _, f := range v.Findings {
		counts, ok := run.Backends[string(f.Backend)]
		if !ok {
			counts = make(map[string]int)
			run.Backends[string(f.Backend)] = counts
		}
		counts[string(f.Status)]++
	}
	for _, w := range v.Warnings {
		run.Warnings = append(run.Warnings, string(w.Backend)+": "+w.Message)
	}

	switch {
	case v.Interrupted:
		run.Status = StatusUnknown
	case v.Compliant():
		run.Status = StatusSatisfied
	default:
		run.Status = StatusDrifted
	}
	return run
}
