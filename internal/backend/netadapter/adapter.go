// Package netadapter reconciles network adapter power management through the
// NetAdapter PowerShell module.
package netadapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/nosleep/internal/backend/powershell"
	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
	"github.com/alexisbeaulieu97/nosleep/internal/logger"
	"github.com/alexisbeaulieu97/nosleep/internal/ports"
)

// Capabilities lists the power management fields the adapter manages, in the
// order they are passed to Set-NetAdapterPowerManagement.
var Capabilities = []string{
	"AllowComputerToTurnOffDevice",
	"DeviceSleepOnDisconnect",
	"SelectiveSuspend",
	"WakeOnMagicPacket",
}

const (
	stateEnabled     = "Enabled"
	stateDisabled    = "Disabled"
	stateUnsupported = "Unsupported"
)

// Runner is the subset of powershell.Shell the adapter needs.
type Runner interface {
	Run(ctx context.Context, script string, out interface{}) error
}

// Adapter implements ports.Adapter for the device control backend.
type Adapter struct {
	shell  Runner
	logger ports.Logger
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

// New constructs an Adapter.
func New(shell Runner, opts ...Option) *Adapter {
	a := &Adapter{shell: shell, logger: logger.NewNoOp()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Kind implements ports.Adapter.
func (a *Adapter) Kind() setting.BackendKind {
	return setting.BackendDeviceControl
}

// PowerState is the adapter's power management configuration keyed by
// capability name. Values are Enabled, Disabled or Unsupported.
type PowerState map[string]string

// Supported returns the capabilities the driver implements.
func (s PowerState) Supported() []string {
	out := make([]string, 0, len(Capabilities))
	for _, c := range Capabilities {
		if v, ok := s[c]; ok && v != "" && !strings.EqualFold(v, stateUnsupported) {
			out = append(out, c)
		}
	}
	return out
}

// Holds reports whether every supported capability is in the wanted state.
func (s PowerState) Holds(want string) bool {
	for _, c := range s.Supported() {
		if !strings.EqualFold(s[c], want) {
			return false
		}
	}
	return true
}

// Probe reads the four capabilities. Unsupported capabilities are ignored; an
// adapter that supports none of them reports NotSupported.
func (a *Adapter) Probe(ctx context.Context, target setting.Target, desc setting.Descriptor, _ string) (setting.CheckResult, error) {
	var state PowerState
	if err := a.shell.Run(ctx, readScript(target.ID), &state); err != nil {
		return setting.Indeterminate, err
	}
	if len(state) == 0 {
		return setting.Indeterminate, setting.ParseFailure("empty power management state", nil)
	}
	if len(state.Supported()) == 0 {
		return setting.Indeterminate, setting.NotSupported("adapter exposes no power management capabilities", nil)
	}

	if state.Holds(desiredState(desc.Desired)) {
		return setting.Matches, nil
	}
	a.logger.Debug(ctx, "adapter out of compliance",
		"descriptor_id", desc.ID,
		"adapter", target.DisplayName(),
		"state", map[string]string(state),
	)
	return setting.Mismatch, nil
}

// Apply sets every supported capability in one Set-NetAdapterPowerManagement
// call. Capabilities the driver reports as Unsupported are left out so the
// cmdlet does not reject the whole call.
func (a *Adapter) Apply(ctx context.Context, target setting.Target, desc setting.Descriptor, _ string) error {
	return a.shell.Run(ctx, applyScript(target.ID, desiredState(desc.Desired)), nil)
}

func desiredState(v uint32) string {
	if v == 0 {
		return stateDisabled
	}
	return stateEnabled
}

func quotedCapabilities() string {
	quoted := make([]string, len(Capabilities))
	for i, c := range Capabilities {
		quoted[i] = powershell.Quote(c)
	}
	return strings.Join(quoted, ", ")
}

// selectAdapter binds $pm to the power management settings of the adapter
// whose InterfaceGuid is guid.
func selectAdapter(guid string) string {
	return fmt.Sprintf(`$na = @(Get-NetAdapter | Where-Object { [string]$_.InterfaceGuid -eq %s })
if ($na.Count -eq 0) { throw [System.Management.Automation.ItemNotFoundException]::new('network adapter not found') }
$pm = $na[0] | Get-NetAdapterPowerManagement`, powershell.Quote(guid))
}

func readScript(guid string) string {
	return fmt.Sprintf(`%s
$state = [ordered]@{}
foreach ($cap in @(%s)) { $state[$cap] = [string]$pm.$cap }
[pscustomobject]$state`, selectAdapter(guid), quotedCapabilities())
}

func applyScript(guid, want string) string {
	return fmt.Sprintf(`%s
$params = @{ NoRestart = $true }
foreach ($cap in @(%s)) { if ([string]$pm.$cap -ne 'Unsupported') { $params[$cap] = %s } }
if ($params.Count -le 1) { Write-Error -Message 'adapter exposes no power management capabilities' -Category NotImplemented }
$pm | Set-NetAdapterPowerManagement @params`, selectAdapter(guid), quotedCapabilities(), powershell.Quote(want))
}

var _ ports.Adapter = (*Adapter)(nil)
