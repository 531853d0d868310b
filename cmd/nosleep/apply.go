package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/outcome"
	"github.com/alexisbeaulieu97/nosleep/internal/engine"
	"github.com/alexisbeaulieu97/nosleep/internal/events"
	"github.com/alexisbeaulieu97/nosleep/internal/history"
	"github.com/alexisbeaulieu97/nosleep/internal/ports"
	"github.com/alexisbeaulieu97/nosleep/internal/privilege"
	"github.com/alexisbeaulieu97/nosleep/internal/tui"
)

func newApplyCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Check every catalog setting and change the ones that drifted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, root)
		},
	}

	return cmd
}

// runApply returns an error only when the run could not start. A completed
// run exits zero even when some settings failed.
func runApply(cmd *cobra.Command, flags *rootFlags) error {
	if err := privilege.Require(elevationCheck); err != nil {
		if errors.Is(err, privilege.ErrNotElevated) {
			return newCommandError("apply settings", "checking administrator rights", err, "Open an elevated terminal (Run as administrator) and try again.")
		}
		return err
	}

	app, err := newAppContext(cmd, flags)
	if err != nil {
		return err
	}
	backends, err := app.backends()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	runID := ports.NewRunID()
	ctx = ports.WithRunID(ctx, runID)
	log := app.logger.With("command", "apply")

	publisher := events.NewLoggingPublisher(log)
	interactive := !flags.noTUI && isTerminal(cmd.OutOrStdout())
	state := tui.NewModel("apply", !interactive, tui.WithCancel(cancel))

	var program *tea.Program
	var programErr error
	done := make(chan struct{})

	if interactive {
		program = tea.NewProgram(state, tea.WithOutput(cmd.OutOrStdout()))
		go func() {
			_, programErr = program.Run()
			close(done)
		}()
	}

	unsubscribe, err := tui.Bridge(publisher, func(msg tea.Msg) {
		dispatchTuiMessage(interactive, program, &state, msg)
	})
	if err != nil {
		if program != nil {
			program.Quit()
			<-done
		}
		return err
	}

	eng := engine.New(
		engine.WithLogger(log),
		engine.WithEvents(publisher),
		engine.WithSettleDelay(app.catalog.SettleDelay()),
	)

	started := time.Now()
	log.Info(ctx, "apply started", "catalog", app.catalog.Name, "backends", len(backends))
	report := eng.Run(ctx, backends, outcome.NewAggregator())
	unsubscribe()

	dispatchTuiMessage(interactive, program, &state, tui.RunFinishedMsg{Report: report})

	if interactive {
		<-done
		if programErr != nil {
			log.Warn(ctx, "live view stopped with an error", "error", programErr)
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), state.View())
	}

	app.recordRun(context.WithoutCancel(ctx), history.FromReport(runID, started, report))
	log.Info(ctx, "apply finished",
		"pairs", report.Total(),
		"failures", report.Failures(),
		"interrupted", report.Interrupted,
	)
	return nil
}

// dispatchTuiMessage forwards msg to the live program, or folds it into state
// when running without one.
func dispatchTuiMessage(interactive bool, program *tea.Program, state *tui.Model, msg tea.Msg) {
	if interactive {
		if program != nil {
			program.Send(msg)
		}
		return
	}

	updated, _ := state.Update(msg)
	if m, ok := updated.(tui.Model); ok {
		*state = m
	}
}
