package powercfg

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
	"github.com/alexisbeaulieu97/nosleep/internal/sysexec"
)

// fakeStore emulates powercfg against an in-memory scheme.
type fakeStore struct {
	mu     sync.Mutex
	values map[string]Indices
	deny   map[string]bool
	// missingText is the sentence printed for unknown identifiers; hosts
	// running another display language print it translated.
	missingText string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		values:      map[string]Indices{},
		deny:        map[string]bool{},
		missingText: "The power scheme, subgroup or setting specified does not exist.",
	}
}

func (s *fakeStore) set(scope, id string, idx Indices) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[scope+"/"+id] = idx
}

func (s *fakeStore) get(scope, id string) Indices {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[scope+"/"+id]
}

func (s *fakeStore) handle(call sysexec.Call) sysexec.Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	missing := sysexec.Response{Result: sysexec.Result{Stdout: s.missingText, ExitCode: 1}}
	switch call.Args[0] {
	case "/getactivescheme":
		return sysexec.Response{Result: sysexec.Result{Stdout: "Power Scheme GUID: 381b4222-f694-41f0-9685-ff5bb260df2e  (Balanced)"}}
	case "/setactive":
		return sysexec.Response{}
	case "/query":
		if len(call.Args) < 4 {
			return s.listing(call.Args[1:], missing)
		}
		idx, ok := s.values[call.Args[2]+"/"+call.Args[3]]
		if !ok {
			return missing
		}
		return sysexec.Response{Result: sysexec.Result{Stdout: queryOutput(idx.AC, idx.DC)}}
	case "/setacvalueindex", "/setdcvalueindex":
		if s.deny[call.Args[0]] {
			return sysexec.Response{Result: sysexec.Result{Stdout: "Access is denied.", ExitCode: 5}}
		}
		key := call.Args[2] + "/" + call.Args[3]
		idx, ok := s.values[key]
		if !ok {
			return missing
		}
		var v uint32
		if call.Args[4] != "0" {
			v = 1
		}
		if call.Args[0] == "/setacvalueindex" {
			idx.AC = v
		} else {
			idx.DC = v
		}
		s.values[key] = idx
		return sysexec.Response{}
	}
	return sysexec.Response{Result: sysexec.Result{Stdout: "Invalid Parameters", ExitCode: 1}}
}

// listing answers /query <scheme> [<scope>] with the subgroups and settings
// the store knows about.
func (s *fakeStore) listing(args []string, missing sysexec.Response) sysexec.Response {
	var b strings.Builder
	b.WriteString("Power Scheme GUID: 381b4222-f694-41f0-9685-ff5bb260df2e  (Balanced)\n")
	found := false
	for key := range s.values {
		parts := strings.SplitN(key, "/", 2)
		if len(args) == 2 && !strings.EqualFold(parts[0], args[1]) {
			continue
		}
		found = true
		b.WriteString("  Subgroup GUID: " + parts[0] + "  (Subgroup)\n")
		b.WriteString("    Power Setting GUID: " + parts[1] + "  (Setting)\n")
	}
	if len(args) == 2 && !found {
		return missing
	}
	return sysexec.Response{Result: sysexec.Result{Stdout: b.String()}}
}

const (
	usbScope   = "2a737441-1930-4402-8d77-b2bebba308a3"
	usbSuspend = "48e6b7a6-50f5-4782-a5d4-53bb8f07e226"
)

func usbDescriptor() setting.Descriptor {
	return setting.Descriptor{
		ID:        "usb-selective-suspend",
		Backend:   setting.BackendSettingsStore,
		Scope:     usbScope,
		SettingID: usbSuspend,
	}
}

func newAdapter(store *fakeStore) (*Adapter, *sysexec.Fake) {
	fake := &sysexec.Fake{Handler: store.handle}
	return New(fake), fake
}

func TestProbe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		present bool
		idx     Indices
		want    setting.CheckResult
	}{
		{name: "both match", present: true, idx: Indices{}, want: setting.Matches},
		{name: "both wrong", present: true, idx: Indices{AC: 1, DC: 1}, want: setting.Mismatch},
		{name: "battery wrong", present: true, idx: Indices{AC: 0, DC: 1}, want: setting.Mismatch},
		{name: "missing setting", present: false, want: setting.Absent},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore()
			if tt.present {
				store.set(usbScope, usbSuspend, tt.idx)
			}
			adapter, fake := newAdapter(store)

			got, err := adapter.Probe(context.Background(), setting.CurrentScheme(""), usbDescriptor(), usbScope)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, fake.CallsMatching("/set"), "probe must not write")
		})
	}
}

func TestProbeMissingOnLocalizedHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(*fakeStore)
	}{
		{name: "setting missing from subgroup", setup: func(s *fakeStore) {
			s.set(usbScope, "0853a681-27c8-4100-a2fd-82013e970683", Indices{})
		}},
		{name: "subgroup missing from scheme", setup: func(s *fakeStore) {
			s.set("238c9fa8-0aad-41ed-83f4-97be242c8f20", "29f6c1db-86da-48c5-9fdb-f2b67b1f44da", Indices{})
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore()
			store.missingText = "Le mode de gestion de l'alimentation, le sous-groupe ou le paramètre spécifié n'existe pas."
			tt.setup(store)
			adapter, fake := newAdapter(store)

			got, err := adapter.Probe(context.Background(), setting.CurrentScheme(""), usbDescriptor(), usbScope)
			require.NoError(t, err)
			assert.Equal(t, setting.Absent, got)
			assert.NotEmpty(t, fake.CallsMatching("/query SCHEME_CURRENT "+usbScope))
			assert.Empty(t, fake.CallsMatching("/set"))

			err = adapter.Apply(context.Background(), setting.CurrentScheme(""), usbDescriptor(), usbScope)
			assert.True(t, setting.IsNotFound(err))
		})
	}
}

func TestProbeListedSettingFailureIsNotAbsent(t *testing.T) {
	t.Parallel()

	fake := &sysexec.Fake{Handler: func(call sysexec.Call) sysexec.Response {
		if len(call.Args) == 3 {
			return sysexec.Response{Result: sysexec.Result{Stdout: "  Subgroup GUID: " + usbScope + "\n    Power Setting GUID: " + usbSuspend + "\n"}}
		}
		return sysexec.Response{Result: sysexec.Result{Stdout: "Zugriff verweigert. Der Parameter existiert nicht.", ExitCode: 1}}
	}}
	got, err := New(fake).Probe(context.Background(), setting.CurrentScheme(""), usbDescriptor(), usbScope)
	assert.Equal(t, setting.Indeterminate, got)
	assert.Equal(t, setting.ErrCodeExecution, setting.CodeOf(err))
}

func TestListedOnlyTrustsGUIDsForAbsence(t *testing.T) {
	t.Parallel()

	output := "Subgroup GUID: 2a737441-1930-4402-8d77-b2bebba308a3  (USB settings)\n  GUID Alias: SUB_USB\n"
	assert.Equal(t, presenceListed, listed(output, "SUB_USB"))
	assert.Equal(t, presenceListed, listed(output, "2A737441-1930-4402-8D77-B2BEBBA308A3"))
	assert.Equal(t, presenceUnknown, listed(output, "SUB_SLEEP"))
	assert.Equal(t, presenceUnknown, listed(output, "SUB_US"))
	assert.Equal(t, presenceMissing, listed(output, usbSuspend))
}

func TestProbeUnparseableOutputIsIndeterminate(t *testing.T) {
	t.Parallel()

	fake := &sysexec.Fake{Handler: func(sysexec.Call) sysexec.Response {
		return sysexec.Response{Result: sysexec.Result{Stdout: "Power Setting GUID: x\n    Current AC Power Setting Index: 0x00000000"}}
	}}
	got, err := New(fake).Probe(context.Background(), setting.CurrentScheme(""), usbDescriptor(), usbScope)
	assert.Equal(t, setting.Indeterminate, got)
	assert.Equal(t, setting.ErrCodeParse, setting.CodeOf(err))
}

func TestProbeExecutionFailure(t *testing.T) {
	t.Parallel()

	fake := &sysexec.Fake{Handler: func(sysexec.Call) sysexec.Response {
		return sysexec.Response{Result: sysexec.Result{Stdout: "Access is denied.", ExitCode: 5}}
	}}
	got, err := New(fake).Probe(context.Background(), setting.CurrentScheme(""), usbDescriptor(), usbScope)
	assert.Equal(t, setting.Indeterminate, got)
	assert.Equal(t, setting.ErrCodeExecution, setting.CodeOf(err))
}

func TestApplyWritesBothIndicesAndReactivates(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.set(usbScope, usbSuspend, Indices{AC: 1, DC: 1})
	adapter, fake := newAdapter(store)

	require.NoError(t, adapter.Apply(context.Background(), setting.CurrentScheme(""), usbDescriptor(), usbScope))
	assert.Equal(t, Indices{}, store.get(usbScope, usbSuspend))

	calls := fake.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "powercfg.exe /setacvalueindex SCHEME_CURRENT "+usbScope+" "+usbSuspend+" 0", calls[0].CommandLine())
	assert.True(t, strings.HasPrefix(calls[1].CommandLine(), "powercfg.exe /setdcvalueindex"))
	assert.Equal(t, "powercfg.exe /setactive SCHEME_CURRENT", calls[2].CommandLine())
}

func TestApplyFailsWhenEitherWriteFails(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.set(usbScope, usbSuspend, Indices{AC: 1, DC: 1})
	store.deny["/setdcvalueindex"] = true
	adapter, fake := newAdapter(store)

	err := adapter.Apply(context.Background(), setting.CurrentScheme(""), usbDescriptor(), usbScope)
	require.Error(t, err)
	assert.Equal(t, setting.ErrCodeExecution, setting.CodeOf(err))
	assert.Empty(t, fake.CallsMatching("/setactive"))
}

func TestApplyMissingSettingIsNotFound(t *testing.T) {
	t.Parallel()

	adapter, _ := newAdapter(newFakeStore())
	err := adapter.Apply(context.Background(), setting.CurrentScheme(""), usbDescriptor(), usbScope)
	assert.True(t, setting.IsNotFound(err))
}

func TestEnumerateLabelsActiveScheme(t *testing.T) {
	t.Parallel()

	adapter, _ := newAdapter(newFakeStore())
	targets, err := adapter.Enumerate(context.Background())
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, setting.CurrentSchemeID, targets[0].ID)
	assert.Equal(t, "Balanced", targets[0].Label)
}

func TestEnumerateFallsBackToDefaultLabel(t *testing.T) {
	t.Parallel()

	fake := &sysexec.Fake{Handler: func(sysexec.Call) sysexec.Response {
		return sysexec.Response{Result: sysexec.Result{ExitCode: 1}}
	}}
	targets, err := New(fake).Enumerate(context.Background())
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "Active power scheme", targets[0].Label)
}
