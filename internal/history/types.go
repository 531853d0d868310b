package history

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Status is the overall state a run left the host in.
type Status string

const (
	StatusUnknown   Status = "unknown"
	StatusSatisfied Status = "satisfied"
	StatusDrifted   Status = "drifted"
	StatusFailed    Status = "failed"
)

// Icon returns the Unicode icon for the status
func (s Status) Icon() string {
	switch s {
	case StatusSatisfied:
		return "🟢"
	case StatusDrifted:
		return "🟡"
	case StatusFailed:
		return "🔴"
	default:
		return "⚪"
	}
}

// IconFallback returns ASCII fallback when Unicode is not supported
func (s Status) IconFallback() string {
	switch s {
	case StatusSatisfied:
		return "[OK]"
	case StatusDrifted:
		return "[!!]"
	case StatusFailed:
		return "[XX]"
	default:
		return "[??]"
	}
}

// Color returns the Lipgloss color for the status
func (s Status) Color() lipgloss.Color {
	switch s {
	case StatusSatisfied:
		return lipgloss.Color("42") // green
	case StatusDrifted:
		return lipgloss.Color("226") // yellow
	case StatusFailed:
		return lipgloss.Color("196") // red
	default:
		return lipgloss.Color("250") // light gray
	}
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// Run is one persisted apply or verify invocation.
type Run struct {
	RunID       string                    `json:"run_id"`
	Command     string                    `json:"command"`
	StartedAt   time.Time                 `json:"started_at"`
	DurationMS  int64                     `json:"duration_ms"`
	Status      Status                    `json:"status"`
	Interrupted bool                      `json:"interrupted,omitempty"`
	Backends    map[string]map[string]int `json:"backends"`
	Warnings    []string                  `json:"warnings,omitempty"`
}

// File is the on-disk layout of the status cache.
type File struct {
	Version string `json:"version"`
	Runs    []Run  `json:"runs"`
}
