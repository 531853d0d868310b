// Package powercfg reconciles power scheme settings through powercfg.exe.
package powercfg

import (
	"context"
	"strconv"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
	"github.com/alexisbeaulieu97/nosleep/internal/logger"
	"github.com/alexisbeaulieu97/nosleep/internal/ports"
	"github.com/alexisbeaulieu97/nosleep/internal/sysexec"
)

// DefaultExecutable is the powercfg binary resolved through PATH.
const DefaultExecutable = "powercfg.exe"

// Adapter implements ports.Adapter and ports.Enumerator for the settings
// store.
type Adapter struct {
	runner     sysexec.Runner
	executable string
	logger     ports.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter logger.
func WithLogger(l ports.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithExecutable overrides the powercfg binary.
func WithExecutable(name string) Option {
	return func(a *Adapter) {
		if name != "" {
			a.executable = name
		}
	}
}

// New constructs an Adapter.
func New(runner sysexec.Runner, opts ...Option) *Adapter {
	a := &Adapter{
		runner:     runner,
		executable: DefaultExecutable,
		logger:     logger.NewNoOp(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Kind implements ports.Adapter.
func (a *Adapter) Kind() setting.BackendKind {
	return setting.BackendSettingsStore
}

// Probe reads both indices of desc.SettingID under scope. A single matching
// index is a Mismatch.
func (a *Adapter) Probe(ctx context.Context, target setting.Target, desc setting.Descriptor, scope string) (setting.CheckResult, error) {
	res, err := a.runner.Run(ctx, a.executable, "/query", target.ID, scope, desc.SettingID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return setting.Indeterminate, ctxErr
		}
		if a.isMissing(ctx, target.ID, scope, desc.SettingID, res.Stdout+"\n"+res.Stderr) {
			return setting.Absent, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return setting.Indeterminate, ctxErr
		}
		return setting.Indeterminate, a.failure("query", desc, scope, res, err)
	}

	idx, ok := ParseIndices(res.Stdout)
	if !ok {
		a.logger.Debug(ctx, "powercfg output not understood",
			"descriptor_id", desc.ID,
			"scope", scope,
			"output", res.Stdout,
		)
		return setting.Indeterminate, setting.ParseFailure("current AC/DC indices not found in powercfg output", nil)
	}

	a.logger.Debug(ctx, "powercfg indices read",
		"descriptor_id", desc.ID,
		"scope", scope,
		"ac", idx.AC,
		"dc", idx.DC,
	)
	if idx.Matches(desc.Desired) {
		return setting.Matches, nil
	}
	return setting.Mismatch, nil
}

// Apply writes both indices and reactivates the scheme. Any failed call fails
// the whole apply.
func (a *Adapter) Apply(ctx context.Context, target setting.Target, desc setting.Descriptor, scope string) error {
	value := strconv.FormatUint(uint64(desc.Desired), 10)
	steps := [][]string{
		{"/setacvalueindex", target.ID, scope, desc.SettingID, value},
		{"/setdcvalueindex", target.ID, scope, desc.SettingID, value},
		{"/setactive", target.ID},
	}
	for _, args := range steps {
		res, err := a.runner.Run(ctx, a.executable, args...)
		if err == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if args[0] != "/setactive" && a.isMissing(ctx, target.ID, scope, desc.SettingID, res.Stdout+"\n"+res.Stderr) {
			return setting.NotFound("setting does not exist in scheme", err).WithContext(map[string]interface{}{
				"descriptor_id": desc.ID,
				"scope":         scope,
			})
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return a.failure(args[0], desc, scope, res, err)
	}
	return nil
}

// Enumerate yields the single synthetic current-scheme target, labelled with
// the active scheme name when powercfg reports it.
func (a *Adapter) Enumerate(ctx context.Context) ([]setting.Target, error) {
	res, err := a.runner.Run(ctx, a.executable, "/getactivescheme")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		a.logger.Debug(ctx, "active scheme lookup failed", "error", err)
		return []setting.Target{setting.CurrentScheme("")}, nil
	}
	label := ""
	if _, name, ok := ParseActiveScheme(res.Stdout); ok && name != "" {
		label = name
	}
	return []setting.Target{setting.CurrentScheme(label)}, nil
}

func (a *Adapter) failure(op string, desc setting.Descriptor, scope string, res sysexec.Result, err error) error {
	return setting.ExecutionFailure("powercfg "+op+" failed", err).WithContext(map[string]interface{}{
		"descriptor_id": desc.ID,
		"scope":         scope,
		"exit_code":     res.ExitCode,
	})
}

var (
	_ ports.Adapter    = (*Adapter)(nil)
	_ ports.Enumerator = (*Adapter)(nil)
)
