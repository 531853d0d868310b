package setting

// BackendKind identifies the control plane a descriptor is reconciled through.
type BackendKind string

const (
	BackendSettingsStore   BackendKind = "settings_store"
	BackendInstrumentation BackendKind = "instrumentation"
	BackendDeviceControl   BackendKind = "device_control"
)

// Kinds lists every backend in the order a run processes them.
var Kinds = []BackendKind{
	BackendSettingsStore,
	BackendInstrumentation,
	BackendDeviceControl,
}

// IsValidKind reports whether the provided kind is recognised.
func IsValidKind(k BackendKind) bool {
	for _, candidate := range Kinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (k BackendKind) String() string {
	return string(k)
}
