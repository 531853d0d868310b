package catalog

import (
	"time"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
)

// DefaultSettleDelay is the wait between a successful apply and the verifying
// probe when the catalog does not set one.
const DefaultSettleDelay = 125 * time.Millisecond

// Catalog is the YAML document listing every managed setting.
type Catalog struct {
	Version     string   `yaml:"version" validate:"required,semver"`
	Name        string   `yaml:"name" validate:"required,min=1,max=100"`
	Description string   `yaml:"description,omitempty"`
	Settings    Settings `yaml:"settings,omitempty"`
	Entries     []Entry  `yaml:"entries" validate:"required,min=1,dive"`
}

// Settings holds run-wide parameters.
type Settings struct {
	SettleDelayMS   *int                    `yaml:"settle_delay_ms,omitempty" validate:"omitempty,min=50,max=5000"`
	Instrumentation InstrumentationSettings `yaml:"instrumentation,omitempty"`
	DeviceControl   DeviceControlSettings   `yaml:"device_control,omitempty"`
}

// InstrumentationSettings configures device enumeration for the
// instrumentation backend.
type InstrumentationSettings struct {
	DeviceFilter string `yaml:"device_filter,omitempty"`
}

// DeviceControlSettings configures adapter enumeration for the device control
// backend.
type DeviceControlSettings struct {
	ExcludePattern string `yaml:"exclude_pattern,omitempty" validate:"omitempty,regexp"`
}

// Entry is one managed setting.
type Entry struct {
	ID            string `yaml:"id" validate:"required,descriptor_id"`
	Backend       string `yaml:"backend" validate:"required,oneof=settings_store instrumentation device_control"`
	Scope         string `yaml:"scope,omitempty" validate:"omitempty,setting_id"`
	FallbackScope string `yaml:"fallback_scope,omitempty" validate:"omitempty,setting_id"`
	Setting       string `yaml:"setting" validate:"required"`
	Desired       uint32 `yaml:"desired"`
	Description   string `yaml:"description" validate:"required,max=200"`
	Optional      bool   `yaml:"optional,omitempty"`
	SkipCheck     bool   `yaml:"skip_check,omitempty"`
}

// Descriptor converts the entry into its domain form.
func (e Entry) Descriptor() setting.Descriptor {
	return setting.Descriptor{
		ID:            e.ID,
		Backend:       setting.BackendKind(e.Backend),
		Scope:         e.Scope,
		FallbackScope: e.FallbackScope,
		SettingID:     e.Setting,
		Desired:       e.Desired,
		Description:   e.Description,
		Optional:      e.Optional,
		SkipCheck:     e.SkipCheck,
	}
}

// Descriptors returns every entry in catalog order.
func (c *Catalog) Descriptors() []setting.Descriptor {
	if c == nil {
		return nil
	}
	out := make([]setting.Descriptor, 0, len(c.Entries))
	for _, e := range c.Entries {
		out = append(out, e.Descriptor())
	}
	return out
}

// SettleDelay returns the configured settle delay.
func (c *Catalog) SettleDelay() time.Duration {
	if c == nil || c.Settings.SettleDelayMS == nil {
		return DefaultSettleDelay
	}
	return time.Duration(*c.Settings.SettleDelayMS) * time.Millisecond
}
