package setting

import (
	"errors"
	"testing"
)

func TestDescriptorValidate(t *testing.T) {
	tests := []struct {
		name     string
		desc     Descriptor
		wantErr  bool
		wantCode ErrorCode
	}{
		{
			name: "valid settings store entry",
			desc: Descriptor{ID: "usb_selective_suspend", Backend: BackendSettingsStore, Scope: "SUB_USB", SettingID: "USBSELECTIVE"},
		},
		{
			name: "valid device entry without scope",
			desc: Descriptor{ID: "nic_power", Backend: BackendDeviceControl, SettingID: "power_management"},
		},
		{
			name:     "missing id",
			desc:     Descriptor{Backend: BackendSettingsStore},
			wantErr:  true,
			wantCode: ErrCodeMissing,
		},
		{
			name:     "bad id",
			desc:     Descriptor{ID: "Bad ID", Backend: BackendSettingsStore},
			wantErr:  true,
			wantCode: ErrCodeValidation,
		},
		{
			name:     "unknown backend",
			desc:     Descriptor{ID: "x", Backend: BackendKind("registry"), SettingID: "y"},
			wantErr:  true,
			wantCode: ErrCodeValidation,
		},
		{
			name:     "missing setting",
			desc:     Descriptor{ID: "x", Backend: BackendInstrumentation},
			wantErr:  true,
			wantCode: ErrCodeMissing,
		},
		{
			name:     "settings store without scope",
			desc:     Descriptor{ID: "x", Backend: BackendSettingsStore, SettingID: "y"},
			wantErr:  true,
			wantCode: ErrCodeMissing,
		},
		{
			name:     "fallback equals scope",
			desc:     Descriptor{ID: "x", Backend: BackendSettingsStore, Scope: "SUB_DISK", FallbackScope: "SUB_DISK", SettingID: "y"},
			wantErr:  true,
			wantCode: ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.desc.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				var derr *DomainError
				if !errors.As(err, &derr) {
					t.Fatalf("expected DomainError, got %T", err)
				}
				if derr.Code != tt.wantCode {
					t.Fatalf("expected code %s, got %s", tt.wantCode, derr.Code)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDescriptorScopes(t *testing.T) {
	d := Descriptor{Scope: "SUB_DISK"}
	if got := d.Scopes(); len(got) != 1 || got[0] != "SUB_DISK" {
		t.Fatalf("unexpected scopes %v", got)
	}

	d.FallbackScope = "0012ee47-9041-4b5d-9b77-535fba8b1442"
	got := d.Scopes()
	if len(got) != 2 || got[1] != d.FallbackScope {
		t.Fatalf("unexpected scopes %v", got)
	}
}

func TestForBackendPreservesOrder(t *testing.T) {
	all := []Descriptor{
		{ID: "a", Backend: BackendSettingsStore},
		{ID: "b", Backend: BackendDeviceControl},
		{ID: "c", Backend: BackendSettingsStore},
	}
	got := ForBackend(all, BackendSettingsStore)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("unexpected filter result %+v", got)
	}
}

func TestCheckResultNeedsWrite(t *testing.T) {
	if !Mismatch.NeedsWrite() || !Indeterminate.NeedsWrite() {
		t.Fatal("mismatch and indeterminate must trigger a write")
	}
	if Matches.NeedsWrite() || Absent.NeedsWrite() {
		t.Fatal("matches and absent must not trigger a write")
	}
}

func TestTargetDisplayName(t *testing.T) {
	if got := CurrentScheme("").DisplayName(); got != "Active power scheme" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := (Target{ID: "{guid}"}).DisplayName(); got != "{guid}" {
		t.Fatalf("expected id fallback, got %q", got)
	}
}
