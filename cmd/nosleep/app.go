package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/nosleep/internal/backend/netadapter"
	"github.com/alexisbeaulieu97/nosleep/internal/backend/powercfg"
	"github.com/alexisbeaulieu97/nosleep/internal/backend/powershell"
	"github.com/alexisbeaulieu97/nosleep/internal/backend/wmi"
	"github.com/alexisbeaulieu97/nosleep/internal/catalog"
	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
	"github.com/alexisbeaulieu97/nosleep/internal/history"
	"github.com/alexisbeaulieu97/nosleep/internal/logger"
	"github.com/alexisbeaulieu97/nosleep/internal/ports"
	"github.com/alexisbeaulieu97/nosleep/internal/privilege"
	"github.com/alexisbeaulieu97/nosleep/internal/sysexec"
)

// Process-wide seams replaced by tests.
var (
	newRunner       = func() sysexec.Runner { return sysexec.NewExecRunner() }
	elevationCheck  = privilege.Default
	statusCachePath = history.DefaultPath
)

// appContext bundles what every command builds from the root flags.
type appContext struct {
	flags   *rootFlags
	logger  ports.Logger
	catalog *catalog.Catalog
	runner  sysexec.Runner
}

func newAppContext(cmd *cobra.Command, flags *rootFlags) (*appContext, error) {
	log, err := newLogger(cmd.ErrOrStderr(), flags.verbose)
	if err != nil {
		return nil, err
	}

	cat, err := loadCatalog(flags.catalogPath)
	if err != nil {
		return nil, err
	}

	return &appContext{
		flags:   flags,
		logger:  log,
		catalog: cat,
		runner:  newRunner(),
	}, nil
}

func newLogger(w io.Writer, verbose bool) (ports.Logger, error) {
	level := "warn"
	if verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{
		Level:         level,
		HumanReadable: isTerminal(w),
		Writer:        w,
		Component:     "nosleep",
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		cat, err := catalog.Default()
		if err != nil {
			return nil, newCommandError("load catalog", "parsing the embedded catalog", err, "This is a build defect; please report it.")
		}
		return cat, nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, newCommandError("load catalog", path, err, "Fix the catalog file or omit --catalog to use the embedded one.")
	}
	return cat, nil
}

// selectedKinds returns the backends to run in processing order, honouring
// the --backend filter.
func selectedKinds(filter []string) ([]setting.BackendKind, error) {
	if len(filter) == 0 {
		return setting.Kinds, nil
	}
	wanted := make(map[setting.BackendKind]bool, len(filter))
	for _, raw := range filter {
		kind := setting.BackendKind(strings.TrimSpace(raw))
		if !setting.IsValidKind(kind) {
			return nil, newCommandError("select backends", fmt.Sprintf("unknown backend %q", raw), setting.NewError(setting.ErrCodeValidation, "unknown backend", nil),
				"Use one of settings_store, instrumentation, device_control.")
		}
		wanted[kind] = true
	}
	var out []setting.BackendKind
	for _, kind := range setting.Kinds {
		if wanted[kind] {
			out = append(out, kind)
		}
	}
	return out, nil
}

// backends wires one ports.Backend per selected kind that has at least one
// catalog entry.
func (a *appContext) backends() ([]ports.Backend, error) {
	kinds, err := selectedKinds(a.flags.backends)
	if err != nil {
		return nil, err
	}

	all := a.catalog.Descriptors()
	shell := powershell.New(a.runner, powershell.WithLogger(a.logger.With("component", "powershell")))

	var out []ports.Backend
	for _, kind := range kinds {
		descs := setting.ForBackend(all, kind)
		if len(descs) == 0 {
			a.logger.Debug(context.Background(), "backend has no catalog entries", "backend", string(kind))
			continue
		}
		log := a.logger.With("backend", string(kind))

		b := ports.Backend{Kind: kind, Descriptors: descs}
		switch kind {
		case setting.BackendSettingsStore:
			b.Adapter = powercfg.New(a.runner, powercfg.WithLogger(log))
		case setting.BackendInstrumentation:
			b.Adapter = wmi.New(shell, wmi.WithLogger(log))
			b.Enumerator = wmi.NewEnumerator(shell, a.catalog.Settings.Instrumentation.DeviceFilter, log)
		case setting.BackendDeviceControl:
			en, err := netadapter.NewEnumerator(shell, a.catalog.Settings.DeviceControl.ExcludePattern, log)
			if err != nil {
				return nil, newCommandError("wire backends", "device_control exclude pattern", err, "Fix settings.device_control.exclude_pattern in the catalog.")
			}
			b.Adapter = netadapter.New(shell, netadapter.WithLogger(log))
			b.Enumerator = en
		}
		out = append(out, b)
	}
	return out, nil
}

// recordRun appends run to the status cache. Failures are logged and never
// change the exit code.
func (a *appContext) recordRun(ctx context.Context, run history.Run) {
	path, err := statusCachePath()
	if err != nil {
		a.logger.Warn(ctx, "status cache unavailable", "error", err)
		return
	}
	cache, err := history.NewStatusCache(path)
	if err != nil {
		a.logger.Warn(ctx, "status cache unavailable", "path", path, "error", err)
		return
	}
	cache.Record(run)
	if err := cache.Save(); err != nil {
		a.logger.Warn(ctx, "failed to save status cache", "path", path, "error", err)
	}
}

func isTerminal(w io.Writer) bool {
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}
