package ports

import (
	"context"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
)

// Adapter translates the engine's abstract verbs into calls against one
// control plane. Implementations must:
//   - never mutate state from Probe;
//   - classify "capability not supported" as setting.ErrCodeNotSupported from
//     structured backend data where the backend exposes it;
//   - report a missing setting either as setting.Absent or as
//     setting.ErrCodeNotFound;
//   - honour ctx on every blocking call.
type Adapter interface {
	Kind() setting.BackendKind
	Probe(ctx context.Context, target setting.Target, desc setting.Descriptor, scope string) (setting.CheckResult, error)
	Apply(ctx context.Context, target setting.Target, desc setting.Descriptor, scope string) error
}

// Enumerator produces the targets a backend applies to, with inclusion and
// exclusion filters already applied. A returned error means the listing call
// itself failed.
type Enumerator interface {
	Enumerate(ctx context.Context) ([]setting.Target, error)
}

// EnumeratorFunc adapts a function to the Enumerator interface.
type EnumeratorFunc func(ctx context.Context) ([]setting.Target, error)

// Enumerate implements Enumerator.
func (f EnumeratorFunc) Enumerate(ctx context.Context) ([]setting.Target, error) {
	return f(ctx)
}

// Backend bundles everything the engine needs to reconcile one backend kind.
type Backend struct {
	Kind        setting.BackendKind
	Adapter     Adapter
	Enumerator  Enumerator
	Descriptors []setting.Descriptor
}
