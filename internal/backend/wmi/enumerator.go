package wmi

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/alexisbeaulieu97/nosleep/internal/backend/powershell"
	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
	"github.com/alexisbeaulieu97/nosleep/internal/logger"
	"github.com/alexisbeaulieu97/nosleep/internal/ports"
)

// DefaultDeviceFilter selects the device classes that commonly carry
// MSPower flags.
const DefaultDeviceFilter = "PNPClass = 'USB' OR PNPClass = 'HIDClass' OR PNPClass = 'Net' OR PNPClass = 'Bluetooth'"

// Enumerator lists Win32_PnPEntity devices matching a WQL filter. Devices
// whose Status is not OK are excluded.
type Enumerator struct {
	shell  Runner
	filter string
	logger ports.Logger
}

// NewEnumerator constructs an Enumerator. An empty filter selects
// DefaultDeviceFilter.
func NewEnumerator(shell Runner, filter string, l ports.Logger) *Enumerator {
	if filter == "" {
		filter = DefaultDeviceFilter
	}
	if l == nil {
		l = logger.NewNoOp()
	}
	return &Enumerator{shell: shell, filter: filter, logger: l}
}

type pnpEntity struct {
	DeviceID string `json:"DeviceID"`
	Name     string `json:"Name"`
	Status   string `json:"Status"`
}

// Enumerate implements ports.Enumerator.
func (e *Enumerator) Enumerate(ctx context.Context) ([]setting.Target, error) {
	script := "Get-CimInstance -ClassName Win32_PnPEntity -Filter " + powershell.Quote(e.filter) +
		" | Select-Object DeviceID, Name, Status"

	var raw json.RawMessage
	if err := e.shell.Run(ctx, script, &raw); err != nil {
		return nil, setting.NewError(setting.ErrCodeEnumeration, "list Win32_PnPEntity devices", err)
	}
	entities, err := powershell.DecodeList[pnpEntity](raw)
	if err != nil {
		return nil, setting.NewError(setting.ErrCodeEnumeration, "decode Win32_PnPEntity devices", err)
	}

	targets := make([]setting.Target, 0, len(entities))
	for _, entity := range entities {
		if entity.DeviceID == "" {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(entity.Status), "OK") {
			e.logger.Debug(ctx, "device excluded", "device", entity.DeviceID, "status", entity.Status)
			continue
		}
		targets = append(targets, setting.Target{ID: entity.DeviceID, Label: entity.Name})
	}
	return targets, nil
}

var _ ports.Enumerator = (*Enumerator)(nil)
