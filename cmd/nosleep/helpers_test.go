package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/nosleep/internal/sysexec"
)

const testCatalog = `version: "1.0"
name: test
settings:
  settle_delay_ms: 50
entries:
  - id: usb-selective-suspend
    backend: settings_store
    scope: 2a737441-1930-4402-8d77-b2bebba308a3
    setting: 48e6b7a6-50f5-4782-a5d4-53bb8f07e226
    desired: 0
    description: USB selective suspend
  - id: connectivity-in-standby
    backend: settings_store
    scope: SUB_NONE
    setting: f15576e8-98b7-4186-b944-eafa664402d9
    desired: 1
    description: Networking connectivity in standby
    skip_check: true
  - id: device-power-off
    backend: instrumentation
    setting: MSPower_DeviceEnable
    desired: 0
    description: Allow the computer to turn off this device to save power
    optional: true
  - id: nic-power-management
    backend: device_control
    setting: PowerManagement
    desired: 0
    description: Network adapter power management
`

const queryTemplate = `Power Scheme GUID: 381b4222-f694-41f0-9685-ff5bb260df2e  (Balanced)
  Subgroup GUID: S  (Subgroup)
    Power Setting GUID: T  (Setting)
    Current AC Power Setting Index: 0x%08x
    Current DC Power Setting Index: 0x%08x
`

// fakeHost answers powercfg from an in-memory store where every unseen
// setting starts at 99, and answers every PowerShell script with an empty list.
type fakeHost struct {
	mu     sync.Mutex
	values map[string][2]uint32
}

func newFakeHost() *fakeHost {
	return &fakeHost{values: make(map[string][2]uint32)}
}

func (h *fakeHost) handle(call sysexec.Call) sysexec.Response {
	h.mu.Lock()
	defer h.mu.Unlock()

	if strings.HasPrefix(call.Name, "powershell") {
		return sysexec.Response{Result: sysexec.Result{Stdout: `{"ok":true,"data":[]}`}}
	}
	switch call.Args[0] {
	case "/getactivescheme":
		return sysexec.Response{Result: sysexec.Result{Stdout: "Power Scheme GUID: 381b4222-f694-41f0-9685-ff5bb260df2e  (Balanced)"}}
	case "/query":
		v := h.value(call.Args[2], call.Args[3])
		return sysexec.Response{Result: sysexec.Result{Stdout: fmt.Sprintf(queryTemplate, v[0], v[1])}}
	case "/setacvalueindex", "/setdcvalueindex":
		v := h.value(call.Args[2], call.Args[3])
		n, _ := strconv.ParseUint(call.Args[4], 10, 32)
		if call.Args[0] == "/setacvalueindex" {
			v[0] = uint32(n)
		} else {
			v[1] = uint32(n)
		}
		h.values[call.Args[2]+"/"+call.Args[3]] = v
	}
	return sysexec.Response{}
}

func (h *fakeHost) value(scope, id string) [2]uint32 {
	key := scope + "/" + id
	v, ok := h.values[key]
	if !ok {
		v = [2]uint32{99, 99}
		h.values[key] = v
	}
	return v
}

type testEnv struct {
	runner      *sysexec.Fake
	catalogPath string
	historyPath string
	elevated    bool
}

// setupTestEnv swaps the process seams for fakes and restores them when the
// test ends. Tests using it must not run in parallel.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		runner:      &sysexec.Fake{Handler: newFakeHost().handle},
		catalogPath: filepath.Join(dir, "catalog.yaml"),
		historyPath: filepath.Join(dir, "state", "status.json"),
		elevated:    true,
	}
	require.NoError(t, os.WriteFile(env.catalogPath, []byte(testCatalog), 0o644))

	origRunner, origCheck, origPath := newRunner, elevationCheck, statusCachePath
	t.Cleanup(func() {
		newRunner, elevationCheck, statusCachePath = origRunner, origCheck, origPath
	})
	newRunner = func() sysexec.Runner { return env.runner }
	elevationCheck = func() (bool, error) { return env.elevated, nil }
	statusCachePath = func() (string, error) { return env.historyPath, nil }
	return env
}

func executeCommand(args ...string) (string, string, error) {
	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
