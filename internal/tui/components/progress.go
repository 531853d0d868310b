package components

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// Progress renders how many (target, descriptor) pairs have been processed.
// The total grows as backends report their targets, so the bar is rebuilt
// from the counts on every render.
type Progress struct {
	bar progress.Model
}

// NewProgress creates a progress component.
func NewProgress() Progress {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 30
	return Progress{bar: bar}
}

// View renders the bar for done out of total pairs. An unknown total renders
// only the counter.
func (p Progress) View(done, total int) string {
	label := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d/%d pairs", done, total))
	if total <= 0 {
		return label
	}
	ratio := math.Min(1.0, float64(done)/float64(total))
	return lipgloss.JoinHorizontal(lipgloss.Left, label, " ", p.bar.ViewAs(ratio))
}
