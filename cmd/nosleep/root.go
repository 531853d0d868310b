package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose     bool
	catalogPath string
	backends    []string
	noTUI       bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "nosleep",
		Short: "nosleep keeps Windows power management from putting devices and links to sleep",
		Long: "nosleep reconciles a catalog of power settings across the power scheme store,\n" +
			"WMI device power management and network adapter power management.\n" +
			"Without a subcommand it runs apply.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, flags)
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVarP(&flags.catalogPath, "catalog", "c", "", "Path to a catalog file (defaults to the embedded catalog)")
	cmd.PersistentFlags().StringSliceVarP(&flags.backends, "backend", "b", nil, "Restrict the run to these backends (settings_store, instrumentation, device_control)")
	cmd.PersistentFlags().BoolVar(&flags.noTUI, "no-tui", false, "Print a plain report instead of the live view")

	cmd.AddCommand(newApplyCmd(flags))
	cmd.AddCommand(newVerifyCmd(flags))
	cmd.AddCommand(newCatalogCmd(flags))
	cmd.AddCommand(newHistoryCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
