package engine

import (
	"context"
	"time"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/outcome"
	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
	"github.com/alexisbeaulieu97/nosleep/internal/ports"
)

const skipMessage = "value cannot be read back reliably; not changed automatically"

// reconcile drives one pair to a terminal outcome. It returns false when the
// context was cancelled before the pair completed; such pairs are not
// recorded.
func (e *Engine) reconcile(ctx context.Context, b ports.Backend, target setting.Target, desc setting.Descriptor) (outcome.Event, bool) {
	start := time.Now()
	event := outcome.Event{
		Backend:      b.Kind,
		TargetID:     target.ID,
		TargetLabel:  target.DisplayName(),
		DescriptorID: desc.ID,
		Setting:      desc.Label(),
		Scope:        desc.Scope,
	}
	finish := func(kind outcome.Kind, msg string) (outcome.Event, bool) {
		event.Kind = kind
		event.Message = msg
		event.Duration = time.Since(start)
		return event, true
	}
	log := e.logger.With("backend", string(b.Kind), "target", target.DisplayName(), "descriptor_id", desc.ID)

	if desc.SkipCheck {
		return finish(outcome.KindSkipped, skipMessage)
	}

	scope, res, err := e.probe(ctx, b.Adapter, target, desc)
	event.Scope = scope
	if isCancelled(ctx, err) {
		return event, false
	}

	switch {
	case setting.IsNotSupported(err):
		return finish(outcome.KindNotSupported, err.Error())
	case missing(res, err):
		return e.absent(finish, desc, err)
	case err == nil && res == setting.Matches:
		return finish(outcome.KindCompliant, "")
	}

	if err != nil {
		log.Warn(ctx, "probe failed, writing desired value", "scope", scope, "error", err)
	} else {
		log.Debug(ctx, "probe requires write", "scope", scope, "result", res.String())
	}

	if applyErr := b.Adapter.Apply(ctx, target, desc, scope); applyErr != nil {
		if isCancelled(ctx, applyErr) {
			return event, false
		}
		switch {
		case setting.IsNotSupported(applyErr):
			return finish(outcome.KindNotSupported, applyErr.Error())
		case setting.IsNotFound(applyErr):
			return e.absent(finish, desc, applyErr)
		}
		log.Error(ctx, "apply failed", "scope", scope, "error", applyErr)
		return finish(outcome.KindFailed, applyErr.Error())
	}

	if err := e.sleep(ctx, e.settleDelay); err != nil {
		log.Warn(ctx, "interrupted while waiting to verify a completed write", "scope", scope)
		return event, false
	}

	verified, verr := b.Adapter.Probe(ctx, target, desc, scope)
	if isCancelled(ctx, verr) {
		return event, false
	}
	switch {
	case verr != nil:
		log.Warn(ctx, "verification probe failed", "scope", scope, "error", verr)
		return finish(outcome.KindAppliedUnverified, "write succeeded but verification failed: "+verr.Error())
	case verified != setting.Matches:
		log.Warn(ctx, "value not observed after write", "scope", scope, "result", verified.String())
		return finish(outcome.KindAppliedUnverified, "write succeeded but the backend reports "+verified.String())
	}

	log.Info(ctx, "setting applied", "scope", scope)
	return finish(outcome.KindApplied, "")
}

// probe checks the primary scope and, when it is missing and a fallback is
// configured, the fallback scope. The returned scope is the one the rest of
// the pair must use.
func (e *Engine) probe(ctx context.Context, adapter ports.Adapter, target setting.Target, desc setting.Descriptor) (string, setting.CheckResult, error) {
	scopes := desc.Scopes()
	var (
		res setting.CheckResult
		err error
	)
	for i, scope := range scopes {
		res, err = adapter.Probe(ctx, target, desc, scope)
		if !missing(res, err) || i == len(scopes)-1 {
			return scope, res, err
		}
		e.logger.Debug(ctx, "scope does not host setting, trying fallback",
			"descriptor_id", desc.ID,
			"scope", scope,
			"fallback_scope", scopes[i+1],
		)
	}
	return desc.Scope, res, err
}

// absent classifies a missing setting. Optional descriptors expect absence;
// a required one that is missing is a failure.
func (e *Engine) absent(finish func(outcome.Kind, string) (outcome.Event, bool), desc setting.Descriptor, err error) (outcome.Event, bool) {
	if desc.Optional {
		msg := "not present on this host"
		if err != nil {
			msg = err.Error()
		}
		return finish(outcome.KindAbsent, msg)
	}
	msg := "required setting is not present on this host"
	if err != nil {
		msg += ": " + err.Error()
	}
	return finish(outcome.KindFailed, msg)
}

func missing(res setting.CheckResult, err error) bool {
	if err != nil {
		return setting.IsNotFound(err)
	}
	return res == setting.Absent
}

func isCancelled(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	return ctx.Err() != nil || setting.CodeOf(err) == setting.ErrCodeCancelled
}
