package netadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/alexisbeaulieu97/nosleep/internal/backend/powershell"
	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
	"github.com/alexisbeaulieu97/nosleep/internal/logger"
	"github.com/alexisbeaulieu97/nosleep/internal/ports"
)

// DefaultExcludePattern drops loopback pseudo-interfaces.
const DefaultExcludePattern = `(?i)loopback`

const listScript = `Get-NetAdapter | ForEach-Object { [pscustomobject]@{
  InterfaceGuid = [string]$_.InterfaceGuid
  Name = [string]$_.Name
  InterfaceDescription = [string]$_.InterfaceDescription
  Status = [string]$_.Status
  AdminStatus = [string]$_.AdminStatus
} }`

// Enumerator lists network adapters that are administratively and
// operationally up and whose description does not match the exclusion
// pattern.
type Enumerator struct {
	shell   Runner
	exclude *regexp.Regexp
	logger  ports.Logger
}

// NewEnumerator compiles pattern, falling back to DefaultExcludePattern when
// it is empty.
func NewEnumerator(shell Runner, pattern string, l ports.Logger) (*Enumerator, error) {
	if pattern == "" {
		pattern = DefaultExcludePattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile exclude pattern: %w", err)
	}
	if l == nil {
		l = logger.NewNoOp()
	}
	return &Enumerator{shell: shell, exclude: re, logger: l}, nil
}

type netAdapter struct {
	InterfaceGuid        string `json:"InterfaceGuid"`
	Name                 string `json:"Name"`
	InterfaceDescription string `json:"InterfaceDescription"`
	Status               string `json:"Status"`
	AdminStatus          string `json:"AdminStatus"`
}

// Enumerate implements ports.Enumerator. Targets are keyed by InterfaceGuid;
// adapter names can be renamed by the user and carry localized text.
func (e *Enumerator) Enumerate(ctx context.Context) ([]setting.Target, error) {
	var raw json.RawMessage
	if err := e.shell.Run(ctx, listScript, &raw); err != nil {
		return nil, setting.NewError(setting.ErrCodeEnumeration, "list network adapters", err)
	}
	adapters, err := powershell.DecodeList[netAdapter](raw)
	if err != nil {
		return nil, setting.NewError(setting.ErrCodeEnumeration, "decode network adapters", err)
	}

	targets := make([]setting.Target, 0, len(adapters))
	for _, na := range adapters {
		switch {
		case na.InterfaceGuid == "":
			e.logger.Debug(ctx, "adapter without interface guid skipped", "adapter", na.Name)
			continue
		case !isUp(na.AdminStatus) || !isUp(na.Status):
			e.logger.Debug(ctx, "adapter excluded", "adapter", na.Name, "status", na.Status, "admin_status", na.AdminStatus)
			continue
		case e.exclude.MatchString(na.InterfaceDescription):
			e.logger.Debug(ctx, "adapter excluded", "adapter", na.Name, "description", na.InterfaceDescription)
			continue
		}
		targets = append(targets, setting.Target{ID: na.InterfaceGuid, Label: label(na)})
	}
	return targets, nil
}

func isUp(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), "Up")
}

func label(na netAdapter) string {
	name := na.Name
	if name == "" {
		name = na.InterfaceGuid
	}
	if na.InterfaceDescription == "" {
		return name
	}
	return name + " (" + na.InterfaceDescription + ")"
}

var _ ports.Enumerator = (*Enumerator)(nil)
