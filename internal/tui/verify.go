package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
	"github.com/alexisbeaulieu97/nosleep/internal/engine"
)

// RenderVerification renders the result of a probe-only pass.
func RenderVerification(v engine.Verification) string {
	sections := []string{titleStyle.Render("nosleep • verify")}

	var lines []string
	var current setting.BackendKind
	for _, f := range v.Findings {
		if f.Backend != current {
			current = f.Backend
			lines = append(lines, backendStyle.Render(string(current)))
		}
		line := fmt.Sprintf("  %s %s › %s (%s)", FindingIcon(f.Status), f.TargetLabel, f.DescriptorID, f.Status)
		if f.Scope != "" {
			line += " [" + f.Scope + "]"
		}
		if strings.TrimSpace(f.Message) != "" {
			line += "\n      " + detailStyle.Render(f.Message)
		}
		lines = append(lines, line)
	}
	if len(lines) > 0 {
		sections = append(sections, sectionStyle.Render("Findings"), strings.Join(lines, "\n"))
	}

	statuses := []engine.FindingStatus{
		engine.FindingCompliant,
		engine.FindingDrifted,
		engine.FindingUnknown,
		engine.FindingMissing,
		engine.FindingSkipped,
		engine.FindingAbsent,
		engine.FindingNotSupported,
	}
	var parts []string
	for _, status := range statuses {
		if n := v.Count(status); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, status))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "nothing to check")
	}
	summary := []string{strings.Join(parts, ", ")}
	for _, w := range v.Warnings {
		summary = append(summary, fmt.Sprintf("warning [%s]: %s", w.Backend, w.Message))
	}
	switch {
	case v.Interrupted:
		summary = append(summary, warningStyle.Render("Verification interrupted"))
	case v.Compliant():
		summary = append(summary, successStyle.Render("Host is compliant"))
	default:
		summary = append(summary, failureStyle.Render("Host has drifted; run apply to reconcile"))
	}
	sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(strings.Join(summary, "\n")))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// FindingIcon returns the glyph representing a verification finding.
func FindingIcon(status engine.FindingStatus) string {
	switch status {
	case engine.FindingCompliant:
		return successStyle.Render("✓")
	case engine.FindingDrifted:
		return failureStyle.Render("≠")
	case engine.FindingUnknown:
		return warningStyle.Render("?")
	case engine.FindingMissing:
		return failureStyle.Render("✗")
	case engine.FindingSkipped:
		return skippedStyle.Render("⊘")
	case engine.FindingAbsent:
		return pendingStyle.Render("∅")
	case engine.FindingNotSupported:
		return pendingStyle.Render("–")
	default:
		return pendingStyle.Render("…")
	}
}
