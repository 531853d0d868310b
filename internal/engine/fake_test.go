package engine

import (
	"context"
	"sync"
	"time"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
	"github.com/alexisbeaulieu97/nosleep/internal/ports"
)

type fakeValue struct {
	ac, dc uint32
}

// fakeAdapter keeps dual-index values per target, setting and scope.
type fakeAdapter struct {
	kind setting.BackendKind

	mu       sync.Mutex
	values   map[string]*fakeValue
	probeErr map[string]error
	applyErr map[string]error
	// sticky makes writes succeed without changing anything.
	sticky     bool
	afterApply func()
	probes     []string
	applies    []string
}

func newFakeAdapter(kind setting.BackendKind) *fakeAdapter {
	return &fakeAdapter{
		kind:     kind,
		values:   map[string]*fakeValue{},
		probeErr: map[string]error{},
		applyErr: map[string]error{},
	}
}

func key(target setting.Target, desc setting.Descriptor, scope string) string {
	return target.ID + "|" + scope + "|" + desc.SettingID
}

func (f *fakeAdapter) set(target setting.Target, desc setting.Descriptor, scope string, ac, dc uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key(target, desc, scope)] = &fakeValue{ac: ac, dc: dc}
}

func (f *fakeAdapter) Kind() setting.BackendKind { return f.kind }

func (f *fakeAdapter) Probe(ctx context.Context, target setting.Target, desc setting.Descriptor, scope string) (setting.CheckResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes = append(f.probes, key(target, desc, scope))
	if err := ctx.Err(); err != nil {
		return setting.Indeterminate, err
	}
	if err := f.probeErr[desc.SettingID]; err != nil {
		return setting.Indeterminate, err
	}
	v, ok := f.values[key(target, desc, scope)]
	if !ok {
		return setting.Absent, nil
	}
	if v.ac == desc.Desired && v.dc == desc.Desired {
		return setting.Matches, nil
	}
	return setting.Mismatch, nil
}

func (f *fakeAdapter) Apply(ctx context.Context, target setting.Target, desc setting.Descriptor, scope string) error {
	f.mu.Lock()
	f.applies = append(f.applies, key(target, desc, scope))
	hook := f.afterApply
	err := f.apply(target, desc, scope)
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return err
}

func (f *fakeAdapter) apply(target setting.Target, desc setting.Descriptor, scope string) error {
	if err := f.applyErr[desc.SettingID]; err != nil {
		return err
	}
	v, ok := f.values[key(target, desc, scope)]
	if !ok {
		return setting.NotFound("no such setting", nil)
	}
	if !f.sticky {
		v.ac, v.dc = desc.Desired, desc.Desired
	}
	return nil
}

func (f *fakeAdapter) probeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.probes)
}

func (f *fakeAdapter) applyCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.applies...)
}

func staticTargets(targets ...setting.Target) ports.Enumerator {
	return ports.EnumeratorFunc(func(context.Context) ([]setting.Target, error) {
		return targets, nil
	})
}

// recordingSleeper captures settle-delay waits without sleeping.
type recordingSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.waits = append(r.waits, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *recordingSleeper) calls() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.waits...)
}
