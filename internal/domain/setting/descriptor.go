package setting

import (
	"fmt"
	"regexp"
)

var descriptorIDPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Descriptor is one static catalog entry describing the desired state of a
// managed setting.
type Descriptor struct {
	ID            string
	Backend       BackendKind
	Scope         string
	FallbackScope string
	SettingID     string
	Desired       uint32
	Description   string
	Optional      bool
	SkipCheck     bool
}

// Validate ensures the descriptor satisfies the catalog invariants.
func (d Descriptor) Validate() error {
	if d.ID == "" {
		return newMissingFieldError("id")
	}
	if !descriptorIDPattern.MatchString(d.ID) {
		return newValidationError("descriptor id must match ^[a-z0-9_-]+$", map[string]interface{}{"descriptor_id": d.ID})
	}
	if d.Backend == "" {
		return newMissingFieldError("backend")
	}
	if !IsValidKind(d.Backend) {
		return newValidationError(fmt.Sprintf("backend must be one of %v", Kinds), map[string]interface{}{"descriptor_id": d.ID, "backend": string(d.Backend)})
	}
	if d.SettingID == "" {
		return newMissingFieldError("setting").WithContext(map[string]interface{}{"descriptor_id": d.ID})
	}
	if d.Backend == BackendSettingsStore && d.Scope == "" {
		return newMissingFieldError("scope").WithContext(map[string]interface{}{"descriptor_id": d.ID})
	}
	if d.FallbackScope != "" && d.FallbackScope == d.Scope {
		return newValidationError("fallback scope must differ from scope", map[string]interface{}{"descriptor_id": d.ID, "field": "fallback_scope"})
	}
	return nil
}

// Scopes returns the primary scope followed by the fallback, when configured.
func (d Descriptor) Scopes() []string {
	if d.FallbackScope == "" {
		return []string{d.Scope}
	}
	return []string{d.Scope, d.FallbackScope}
}

// Label returns the description, falling back to the setting identifier.
func (d Descriptor) Label() string {
	if d.Description != "" {
		return d.Description
	}
	return d.SettingID
}

// ForBackend filters descriptors down to one backend, preserving order.
func ForBackend(descriptors []Descriptor, kind BackendKind) []Descriptor {
	out := make([]Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if d.Backend == kind {
			out = append(out, d)
		}
	}
	return out
}
