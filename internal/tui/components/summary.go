package components

import (
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/outcome"
	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
)

// BackendSummary is one backend's counters in display order.
type BackendSummary struct {
	Backend setting.BackendKind
	Counts  outcome.Summary
}

// SummaryData aggregates what the final summary block shows.
type SummaryData struct {
	Backends    []BackendSummary
	Warnings    []outcome.Warning
	Finished    bool
	Interrupted bool
}

// Summary renders per-backend outcome counts.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary. Zero counters are omitted; a backend with no
// recorded pairs is shown as "nothing to do".
func (s Summary) View() string {
	var lines []string
	for _, b := range s.data.Backends {
		lines = append(lines, fmt.Sprintf("%s: %s", b.Backend, CountLine(b.Counts)))
	}

	for _, w := range s.data.Warnings {
		lines = append(lines, fmt.Sprintf("warning [%s]: %s", w.Backend, w.Message))
	}

	switch {
	case s.data.Interrupted:
		lines = append(lines, "Run interrupted; unfinished pairs were not recorded")
	case s.data.Finished:
		failures := 0
		for _, b := range s.data.Backends {
			failures += b.Counts.Failures()
		}
		if failures > 0 {
			lines = append(lines, fmt.Sprintf("Run finished with %d failed setting(s)", failures))
		} else {
			lines = append(lines, "Run finished")
		}
	}

	return strings.Join(lines, "\n")
}

// CountLine formats the non-zero counters of a summary in presentation order.
func CountLine(counts outcome.Summary) string {
	var parts []string
	for _, kind := range outcome.Kinds {
		if n := counts[kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, kind))
		}
	}
	if len(parts) == 0 {
		return "nothing to do"
	}
	return strings.Join(parts, ", ")
}
