// Package wmi reconciles per-device power flags exposed by the root\wmi
// MSPower_* classes.
package wmi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/nosleep/internal/backend/powershell"
	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
	"github.com/alexisbeaulieu97/nosleep/internal/logger"
	"github.com/alexisbeaulieu97/nosleep/internal/ports"
)

const (
	// Namespace hosts the MSPower_* classes.
	Namespace = `root\wmi`

	// ClassDeviceEnable lets the OS turn the device off to save power.
	ClassDeviceEnable = "MSPower_DeviceEnable"
	// ClassDeviceWakeEnable lets the device wake the computer.
	ClassDeviceWakeEnable = "MSPower_DeviceWakeEnable"
)

// Runner is the subset of powershell.Shell the adapter needs.
type Runner interface {
	Run(ctx context.Context, script string, out interface{}) error
}

// Adapter implements ports.Adapter for the instrumentation backend. The
// descriptor's SettingID names the MSPower class; Desired 0 means the
// class's Enable flag must be false.
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
	return setting.BackendInstrumentation
}

type instance struct {
	InstanceName string `json:"InstanceName"`
	Enable       bool   `json:"Enable"`
}

// Probe reads the Enable flag of every class instance belonging to the
// device. No instance means the device does not expose the capability.
func (a *Adapter) Probe(ctx context.Context, target setting.Target, desc setting.Descriptor, _ string) (setting.CheckResult, error) {
	var raw json.RawMessage
	script := fmt.Sprintf(`@(%s) | ForEach-Object { [pscustomobject]@{ InstanceName = [string]$_.InstanceName; Enable = [bool]$_.Enable } }`,
		instanceQuery(desc.SettingID, target.ID))
	if err := a.shell.Run(ctx, script, &raw); err != nil {
		return setting.Indeterminate, err
	}

	instances, err := powershell.DecodeList[instance](raw)
	if err != nil {
		return setting.Indeterminate, setting.ParseFailure("decode "+desc.SettingID+" instances", err)
	}
	if len(instances) == 0 {
		return setting.Absent, nil
	}

	want := desc.Desired != 0
	for _, inst := range instances {
		if inst.Enable != want {
			a.logger.Debug(ctx, "instance out of compliance",
				"descriptor_id", desc.ID,
				"instance", inst.InstanceName,
				"enable", inst.Enable,
			)
			return setting.Mismatch, nil
		}
	}
	return setting.Matches, nil
}

// Apply sets the Enable flag on every matching instance in one script.
func (a *Adapter) Apply(ctx context.Context, target setting.Target, desc setting.Descriptor, _ string) error {
	script := fmt.Sprintf(`$items = @(%s)
if ($items.Count -eq 0) { throw [System.Management.Automation.ItemNotFoundException]::new(%s) }
foreach ($item in $items) { Set-CimInstance -InputObject $item -Property @{ Enable = %s } }
$items.Count`,
		instanceQuery(desc.SettingID, target.ID),
		powershell.Quote("no "+desc.SettingID+" instance for device"),
		boolLiteral(desc.Desired != 0),
	)
	var updated int
	if err := a.shell.Run(ctx, script, &updated); err != nil {
		return err
	}
	a.logger.Debug(ctx, "instances updated", "descriptor_id", desc.ID, "count", updated)
	return nil
}

// instanceQuery selects the class instances whose InstanceName starts with
// deviceID followed by the "_<n>" suffix.
func instanceQuery(class, deviceID string) string {
	filter := fmt.Sprintf("InstanceName LIKE '%s'", powershell.InstancePrefixPattern(deviceID))
	return fmt.Sprintf("Get-CimInstance -Namespace %s -ClassName %s -Filter %s",
		powershell.Quote(Namespace),
		powershell.Quote(class),
		powershell.Quote(filter),
	)
}

func boolLiteral(v bool) string {
	if v {
		return "$true"
	}
	return "$false"
}

// ValidClassName reports whether name is safe to use as a CIM class name.
func ValidClassName(name string) bool {
	if name == "" {
		return false
	}
	return strings.IndexFunc(name, func(r rune) bool {
		return !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	}) < 0
}

var _ ports.Adapter = (*Adapter)(nil)
