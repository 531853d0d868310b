package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/nosleep/internal/catalog"
	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
	"github.com/alexisbeaulieu97/nosleep/pkg/diff"
)

type catalogOptions struct {
	raw  bool
	diff bool
}

func newCatalogCmd(root *rootFlags) *cobra.Command {
	opts := &catalogOptions{}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the settings nosleep manages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(root.catalogPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if opts.diff {
				return runCatalogDiff(cmd, root.catalogPath, cat)
			}

			if opts.raw {
				data, err := catalog.Marshal(cat)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			fmt.Fprintf(out, "%s (catalog %s)\n", cat.Name, cat.Version)
			if cat.Description != "" {
				fmt.Fprintln(out, cat.Description)
			}

			descs := cat.Descriptors()
			for _, kind := range setting.Kinds {
				rows := setting.ForBackend(descs, kind)
				if len(rows) == 0 {
					continue
				}

				fmt.Fprintf(out, "\n%s\n", kind)
				writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(writer, "ID\tSCOPE\tSETTING\tDESIRED\tFLAGS\tDESCRIPTION")
				for _, d := range rows {
					fmt.Fprintf(writer, "%s\t%s\t%s\t%d\t%s\t%s\n",
						d.ID,
						valueOrFallback(scopeColumn(d), "-"),
						d.SettingID,
						d.Desired,
						valueOrFallback(flagsColumn(d), "-"),
						d.Description,
					)
				}
				if err := writer.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.raw, "yaml", false, "Print the catalog as YAML")
	cmd.Flags().BoolVar(&opts.diff, "diff", false, "Show how the --catalog file differs from the embedded catalog")

	return cmd
}

// runCatalogDiff compares canonical renderings, so comments and key order in
// the custom file do not show up as changes.
func runCatalogDiff(cmd *cobra.Command, path string, custom *catalog.Catalog) error {
	if path == "" {
		return newCommandError("diff catalog", "no custom catalog given", errors.New("--diff requires --catalog"), "Pass --catalog <path> together with --diff.")
	}
	embedded, err := catalog.Default()
	if err != nil {
		return err
	}
	from, err := catalog.Marshal(embedded)
	if err != nil {
		return err
	}
	to, err := catalog.Marshal(custom)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	unified := diff.Unified(from, to, catalog.DefaultSource, path)
	if unified == "" {
		fmt.Fprintln(out, "Catalog matches the embedded default.")
		return nil
	}
	added, removed := diff.Stat(unified)
	fmt.Fprint(out, unified)
	fmt.Fprintf(out, "%d line(s) added, %d removed\n", added, removed)
	return nil
}

func scopeColumn(d setting.Descriptor) string {
	if d.FallbackScope == "" {
		return d.Scope
	}
	return d.Scope + " | " + d.FallbackScope
}

func flagsColumn(d setting.Descriptor) string {
	switch {
	case d.SkipCheck && d.Optional:
		return "skip-check,optional"
	case d.SkipCheck:
		return "skip-check"
	case d.Optional:
		return "optional"
	default:
		return ""
	}
}

func valueOrFallback(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
