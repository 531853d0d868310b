package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/nosleep/internal/engine"
	"github.com/alexisbeaulieu97/nosleep/internal/history"
	"github.com/alexisbeaulieu97/nosleep/internal/ports"
	"github.com/alexisbeaulieu97/nosleep/internal/tui"
)

type verifyOptions struct {
	strict bool
}

func newVerifyCmd(root *rootFlags) *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Report drift without changing anything",
		Long: "verify probes every catalog setting and reports whether it already holds the\n" +
			"desired value. It never writes, so it does not need administrator rights,\n" +
			"although some values can only be read from an elevated shell.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, root, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit non-zero when the host has drifted")

	return cmd
}

var errDrifted = errors.New("host has drifted from the catalog")

func runVerify(cmd *cobra.Command, flags *rootFlags, opts *verifyOptions) error {
	app, err := newAppContext(cmd, flags)
	if err != nil {
		return err
	}
	backends, err := app.backends()
	if err != nil {
		return err
	}

	runID := ports.NewRunID()
	ctx := ports.WithRunID(cmd.Context(), runID)
	log := app.logger.With("command", "verify")

	eng := engine.New(engine.WithLogger(log))
	started := time.Now()
	result := eng.Verify(ctx, backends)

	fmt.Fprintln(cmd.OutOrStdout(), tui.RenderVerification(result))
	app.recordRun(context.WithoutCancel(ctx), history.FromVerification(runID, started, result))

	if opts.strict && !result.Compliant() {
		return errDrifted
	}
	return nil
}
