package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/nosleep/internal/history"
)

type historyOptions struct {
	jsonOutput bool
	clear      bool
	limit      int
}

func newHistoryCmd(_ *rootFlags) *cobra.Command {
	opts := &historyOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent apply and verify runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&opts.clear, "clear", false, "Forget every recorded run")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Number of runs to show")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *historyOptions) error {
	path, err := statusCachePath()
	if err != nil {
		return newCommandError("read history", "determining status cache path", err, "Ensure your user configuration directory is available.")
	}
	cache, err := history.NewStatusCache(path)
	if err != nil {
		return newCommandError("read history", "loading status cache", err, "Check status cache file permissions, or run 'nosleep history --clear'.")
	}

	if opts.clear {
		cache.Clear()
		if err := cache.Save(); err != nil {
			return newCommandError("clear history", "saving status cache", err, "Check status cache file permissions and try again.")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	}

	runs := cache.Runs()
	if opts.limit > 0 && len(runs) > opts.limit {
		runs = runs[:opts.limit]
	}

	if opts.jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(history.File{Version: "1.0", Runs: runs})
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
		fmt.Fprintln(cmd.OutOrStdout(), "\nRun 'nosleep verify' or 'nosleep apply' to record one.")
		return nil
	}

	useUnicode := isTerminal(cmd.OutOrStdout())
	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "WHEN\tCOMMAND\tSTATUS\tDURATION\tSUMMARY")
	for _, run := range runs {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
			formatRelativeTime(run.StartedAt),
			run.Command,
			formatStatus(run.Status, run.Interrupted, useUnicode),
			(time.Duration(run.DurationMS) * time.Millisecond).String(),
			summarizeRun(run),
		)
	}
	return writer.Flush()
}

func formatStatus(status history.Status, interrupted, useUnicode bool) string {
	label := status.String()
	if interrupted {
		label += " (interrupted)"
	}
	if useUnicode {
		return lipgloss.NewStyle().Foreground(status.Color()).Render(fmt.Sprintf("%s %s", status.Icon(), label))
	}
	return fmt.Sprintf("%s %s", status.IconFallback(), label)
}

// summarizeRun flattens the per-backend counters into one cell, e.g.
// "settings_store 1 applied 12 compliant; device_control 2 compliant".
func summarizeRun(run history.Run) string {
	backends := make([]string, 0, len(run.Backends))
	for backend := range run.Backends {
		backends = append(backends, backend)
	}
	sort.Strings(backends)

	var parts []string
	for _, backend := range backends {
		counts := run.Backends[backend]
		kinds := make([]string, 0, len(counts))
		for kind := range counts {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)

		cell := []string{backend}
		for _, kind := range kinds {
			cell = append(cell, fmt.Sprintf("%d %s", counts[kind], kind))
		}
		parts = append(parts, strings.Join(cell, " "))
	}
	if len(run.Warnings) > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", len(run.Warnings)))
	}
	return valueOrFallback(strings.Join(parts, "; "), "-")
}

func formatRelativeTime(ts time.Time) string {
	if ts.IsZero() {
		return "never"
	}

	delta := time.Since(ts)
	if delta < time.Minute {
		return "just now"
	}
	if delta < time.Hour {
		return fmt.Sprintf("%d minutes ago", int(delta.Minutes()))
	}
	if delta < 24*time.Hour {
		return fmt.Sprintf("%d hours ago", int(delta.Hours()))
	}

	return fmt.Sprintf("%d days ago", int(delta.Hours()/24))
}
