package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case BackendStartedMsg:
		m.ensureBackend(msg.Backend)
		m.total += msg.Targets * msg.Descriptors
		return m, nil
	case PairStartedMsg:
		m.ensureBackend(msg.Backend)
		m.current = string(msg.Backend) + " › " + msg.Target + " › " + msg.DescriptorID
		return m, nil
	case OutcomeMsg:
		ev := msg.Event
		m.ensureBackend(ev.Backend)
		m.events[ev.Backend] = append(m.events[ev.Backend], ev)
		m.counts[ev.Backend][ev.Kind]++
		m.completed++
		m.current = ""
		return m, nil
	case WarningMsg:
		m.ensureBackend(msg.Warning.Backend)
		m.warnings = append(m.warnings, msg.Warning)
		return m, nil
	case RunFinishedMsg:
		report := msg.Report
		for _, kind := range setting.Kinds {
			if _, ok := report.Summaries[kind]; ok {
				m.ensureBackend(kind)
			}
		}
		for kind, summary := range report.Summaries {
			m.ensureBackend(kind)
			m.counts[kind] = summary.Clone()
		}
		m.warnings = append(m.warnings[:0], report.Warnings...)
		m.completed = report.Total()
		m.interrupted = report.Interrupted
		m.finished = true
		m.current = ""
		if m.nonInteractive {
			return m, nil
		}
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			if m.cancelled || m.finished {
				return m, tea.Quit
			}
			m.cancelled = true
			if m.onCancel != nil {
				m.onCancel()
			}
			return m, nil
		}
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}
