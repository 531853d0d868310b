package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/outcome"
	"github.com/alexisbeaulieu97/nosleep/internal/tui/components"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render(fmt.Sprintf("nosleep • %s", m.heading())))

	if !m.nonInteractive && !m.finished {
		progress := m.progress.View(m.completed, m.total)
		line := fmt.Sprintf("%s %s", m.spinner.View(), progress)
		if m.cancelled {
			line += " " + warningStyle.Render("stopping after the current setting…")
		}
		sections = append(sections, sectionStyle.Render("Progress"), line)
		if m.current != "" {
			sections = append(sections, runningStyle.Render("  "+m.current))
		}
	}

	if outcomes := m.renderOutcomes(); outcomes != "" {
		sections = append(sections, sectionStyle.Render("Outcomes"), outcomes)
	}

	summary := components.NewSummary(components.SummaryData{
		Backends:    m.summaries(),
		Warnings:    m.warnings,
		Finished:    m.finished,
		Interrupted: m.interrupted,
	}).View()
	if strings.TrimSpace(summary) != "" {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderOutcomes() string {
	var lines []string
	for _, kind := range m.order {
		events := m.events[kind]
		if len(events) == 0 {
			continue
		}
		lines = append(lines, backendStyle.Render(string(kind)))
		for _, ev := range events {
			lines = append(lines, renderEvent(ev))
		}
	}
	return strings.Join(lines, "\n")
}

func renderEvent(ev outcome.Event) string {
	line := fmt.Sprintf("  %s %s › %s (%s)", OutcomeIcon(ev.Kind), ev.TargetLabel, ev.DescriptorID, ev.Kind)
	if ev.Scope != "" {
		line += " [" + ev.Scope + "]"
	}
	if ev.Duration > 0 {
		line = fmt.Sprintf("%s %s", line, ev.Duration.Truncate(time.Millisecond))
	}
	if strings.TrimSpace(ev.Message) != "" {
		line += "\n      " + detailStyle.Render(ev.Message)
	}
	return line
}

func (m Model) heading() string {
	if strings.TrimSpace(m.title) != "" {
		return m.title
	}
	return "apply"
}

// OutcomeIcon returns the glyph representing an outcome kind.
func OutcomeIcon(kind outcome.Kind) string {
	switch kind {
	case outcome.KindCompliant:
		return successStyle.Render("✓")
	case outcome.KindApplied:
		return successStyle.Render("↻")
	case outcome.KindAppliedUnverified:
		return warningStyle.Render("!")
	case outcome.KindSkipped:
		return skippedStyle.Render("⊘")
	case outcome.KindAbsent:
		return pendingStyle.Render("∅")
	case outcome.KindNotSupported:
		return pendingStyle.Render("–")
	case outcome.KindFailed:
		return failureStyle.Render("✗")
	default:
		return pendingStyle.Render("…")
	}
}
