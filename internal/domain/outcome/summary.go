package outcome

import (
	"sync"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
)

// Summary maps each outcome kind to its count for one backend.
type Summary map[Kind]int

// Total returns the number of recorded pairs.
func (s Summary) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// Failures returns the number of failed pairs.
func (s Summary) Failures() int {
	return s[KindFailed]
}

// Warnings returns the number of warning-class pairs.
func (s Summary) Warnings() int {
	return s[KindAppliedUnverified]
}

// Clone returns an independent copy.
func (s Summary) Clone() Summary {
	out := make(Summary, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Aggregator accumulates outcome events into per-backend summaries. Each
// Record updates the counter and the event log under a single lock, so
// readers never observe a half-recorded outcome.
type Aggregator struct {
	mu       sync.Mutex
	counts   map[setting.BackendKind]Summary
	events   []Event
	warnings []Warning
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{counts: make(map[setting.BackendKind]Summary)}
}

// Record appends the event and increments exactly one counter.
func (a *Aggregator) Record(event Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	summary, ok := a.counts[event.Backend]
	if !ok {
		summary = make(Summary)
		a.counts[event.Backend] = summary
	}
	summary[event.Kind]++
	a.events = append(a.events, event)
}

// Warn records a backend-level warning.
func (a *Aggregator) Warn(backend setting.BackendKind, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.warnings = append(a.warnings, Warning{Backend: backend, Message: message})
}

// Summary returns a copy of the counters for one backend.
func (a *Aggregator) Summary(backend setting.BackendKind) Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s, ok := a.counts[backend]; ok {
		return s.Clone()
	}
	return Summary{}
}

// Events returns the recorded events in emission order.
func (a *Aggregator) Events() []Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Event(nil), a.events...)
}

// Warnings returns backend-level warnings in emission order.
func (a *Aggregator) Warnings() []Warning {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Warning(nil), a.warnings...)
}

// Report snapshots the aggregator.
func (a *Aggregator) Report() Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	summaries := make(map[setting.BackendKind]Summary, len(a.counts))
	for k, s := range a.counts {
		summaries[k] = s.Clone()
	}
	return Report{
		Summaries: summaries,
		Events:    append([]Event(nil), a.events...),
		Warnings:  append([]Warning(nil), a.warnings...),
	}
}

// Report is the final, read-only result of a run.
type Report struct {
	Summaries map[setting.BackendKind]Summary
	Events    []Event
	Warnings  []Warning
	// Interrupted is set when the run stopped before every pair completed.
	Interrupted bool
}

// Summary returns the counters for one backend.
func (r Report) Summary(backend setting.BackendKind) Summary {
	if s, ok := r.Summaries[backend]; ok {
		return s
	}
	return Summary{}
}

// Failures returns the failed pair count across all backends.
func (r Report) Failures() int {
	total := 0
	for _, s := range r.Summaries {
		total += s.Failures()
	}
	return total
}

// Total returns the number of recorded pairs across all backends.
func (r Report) Total() int {
	total := 0
	for _, s := range r.Summaries {
		total += s.Total()
	}
	return total
}
