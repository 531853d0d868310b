package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/outcome"
	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
	"github.com/alexisbeaulieu97/nosleep/internal/tui/components"
)

// BackendStartedMsg reports that a backend's targets were enumerated.
type BackendStartedMsg struct {
	Backend     setting.BackendKind
	Targets     int
	Descriptors int
}

// PairStartedMsg reports that a (target, descriptor) pair is being processed.
type PairStartedMsg struct {
	Backend      setting.BackendKind
	Target       string
	DescriptorID string
}

// OutcomeMsg carries the terminal outcome of one pair.
type OutcomeMsg struct {
	Event outcome.Event
}

// WarningMsg carries a backend-level warning.
type WarningMsg struct {
	Warning outcome.Warning
}

// RunFinishedMsg carries the final report. It ends the interactive program.
type RunFinishedMsg struct {
	Report outcome.Report
}

// Model contains the Bubbletea state for a reconciliation run.
type Model struct {
	title          string
	spinner        spinner.Model
	progress       components.Progress
	order          []setting.BackendKind
	events         map[setting.BackendKind][]outcome.Event
	counts         map[setting.BackendKind]outcome.Summary
	warnings       []outcome.Warning
	current        string
	total          int
	completed      int
	finished       bool
	interrupted    bool
	cancelled      bool
	nonInteractive bool
	onCancel       func()
}

// Option configures a Model.
type Option func(*Model)

// WithCancel registers the function called when the user presses ctrl+c.
// The program keeps running until the run reports its interrupted result.
func WithCancel(cancel func()) Option {
	return func(m *Model) {
		m.onCancel = cancel
	}
}

// NewModel constructs a TUI model for a run titled title.
func NewModel(title string, nonInteractive bool, opts ...Option) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	m := Model{
		title:          title,
		spinner:        s,
		progress:       components.NewProgress(),
		events:         make(map[setting.BackendKind][]outcome.Event),
		counts:         make(map[setting.BackendKind]outcome.Summary),
		nonInteractive: nonInteractive,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts the spinner for interactive sessions.
func (m Model) Init() tea.Cmd {
	if m.nonInteractive {
		return nil
	}
	return m.spinner.Tick
}

// TotalPairs returns the number of pairs announced so far.
func (m Model) TotalPairs() int {
	return m.total
}

// CompletedPairs returns the number of pairs with a recorded outcome.
func (m Model) CompletedPairs() int {
	return m.completed
}

// IsFinished reports whether the run has completed.
func (m Model) IsFinished() bool {
	return m.finished
}

// IsCancelled reports whether the user asked to stop the run.
func (m Model) IsCancelled() bool {
	return m.cancelled
}

func (m *Model) ensureBackend(kind setting.BackendKind) {
	if kind == "" {
		return
	}
	if _, ok := m.counts[kind]; ok {
		return
	}
	m.counts[kind] = outcome.Summary{}
	m.order = append(m.order, kind)
}

func (m Model) summaries() []components.BackendSummary {
	out := make([]components.BackendSummary, 0, len(m.order))
	for _, kind := range m.order {
		out = append(out, components.BackendSummary{Backend: kind, Counts: m.counts[kind]})
	}
	return out
}
