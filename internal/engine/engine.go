// Package engine runs the check, set and verify cycle for every
// (target, descriptor) pair of every backend.
package engine

import (
	"context"
	"time"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/outcome"
	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
	"github.com/alexisbeaulieu97/nosleep/internal/logger"
	"github.com/alexisbeaulieu97/nosleep/internal/ports"
)

// DefaultSettleDelay is the wait between a successful apply and the
// verifying probe.
const DefaultSettleDelay = 125 * time.Millisecond

// MinSettleDelay is the floor applied to any configured settle delay. Devices
// need time to commit a write before the verifying probe reads it back.
const MinSettleDelay = 50 * time.Millisecond

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Engine reconciles backends sequentially: backends in order, then targets,
// then descriptors. It holds no per-run state; all counters live in the
// aggregator passed to Run.
type Engine struct {
	logger      ports.Logger
	events      ports.EventPublisher
	settleDelay time.Duration
	sleep       Sleeper
}

// Option configures an engine instance.
type Option func(*Engine)

// WithLogger injects a logger into the engine.
func WithLogger(l ports.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithEvents injects an event publisher.
func WithEvents(events ports.EventPublisher) Option {
	return func(e *Engine) {
		e.events = events
	}
}

// WithSettleDelay overrides the delay between apply and verification. Values
// below MinSettleDelay are raised to it.
func WithSettleDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d < MinSettleDelay {
			d = MinSettleDelay
		}
		e.settleDelay = d
	}
}

// WithSleeper replaces the settle-delay wait, mainly for tests.
func WithSleeper(s Sleeper) Option {
	return func(e *Engine) {
		if s != nil {
			e.sleep = s
		}
	}
}

// New constructs an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:      logger.NewNoOp(),
		settleDelay: DefaultSettleDelay,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run reconciles every backend and returns the final report. Per-pair and
// per-backend failures are recorded, never returned. The context is checked
// between pairs; on cancellation the report holds only completed pairs and is
// marked Interrupted.
func (e *Engine) Run(ctx context.Context, backends []ports.Backend, agg *outcome.Aggregator) outcome.Report {
	if ctx == nil {
		ctx = context.Background()
	}
	if agg == nil {
		agg = outcome.NewAggregator()
	}

	start := time.Now()
	e.publish(ctx, ports.EventRunStarted, map[string]interface{}{"backends": len(backends)})

	interrupted := false
	for _, b := range backends {
		if ctx.Err() != nil {
			interrupted = true
			break
		}
		if !e.runBackend(ctx, b, agg) {
			interrupted = true
			break
		}
	}

	report := agg.Report()
	report.Interrupted = interrupted
	if interrupted {
		e.logger.Warn(ctx, "run interrupted", "completed_pairs", report.Total())
	}
	e.publish(ctx, ports.EventRunCompleted, map[string]interface{}{
		"pairs":       report.Total(),
		"failures":    report.Failures(),
		"interrupted": interrupted,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return report
}

// runBackend returns false when the run was interrupted.
func (e *Engine) runBackend(ctx context.Context, b ports.Backend, agg *outcome.Aggregator) bool {
	log := e.logger.With("backend", string(b.Kind))

	targets, err := e.enumerate(ctx, b)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		msg := "target enumeration failed: " + err.Error()
		log.Warn(ctx, "target enumeration failed", "error", err)
		agg.Warn(b.Kind, msg)
		e.publish(ctx, ports.EventBackendWarning, outcome.Warning{Backend: b.Kind, Message: msg})
		return true
	}

	e.publish(ctx, ports.EventBackendStarted, map[string]interface{}{
		"backend":     string(b.Kind),
		"targets":     len(targets),
		"descriptors": len(b.Descriptors),
	})
	log.Debug(ctx, "backend started", "targets", len(targets), "descriptors", len(b.Descriptors))

	for _, target := range targets {
		for _, desc := range b.Descriptors {
			if ctx.Err() != nil {
				return false
			}
			e.publish(ctx, ports.EventPairStarted, map[string]interface{}{
				"backend":       string(b.Kind),
				"target":        target.DisplayName(),
				"descriptor_id": desc.ID,
			})
			event, done := e.reconcile(ctx, b, target, desc)
			if !done {
				log.Warn(ctx, "pair interrupted", "target", target.DisplayName(), "descriptor_id", desc.ID)
				return false
			}
			agg.Record(event)
			e.publish(ctx, ports.EventPairCompleted, event)
		}
	}
	return true
}

func (e *Engine) enumerate(ctx context.Context, b ports.Backend) ([]setting.Target, error) {
	enumerator := b.Enumerator
	if enumerator == nil {
		if en, ok := b.Adapter.(ports.Enumerator); ok {
			enumerator = en
		}
	}
	if enumerator == nil || b.Adapter == nil {
		return nil, setting.NewError(setting.ErrCodeInternal, "backend is not wired", nil)
	}
	return enumerator.Enumerate(ctx)
}

func (e *Engine) publish(ctx context.Context, eventType string, payload interface{}) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish(ctx, ports.Event{Type: eventType, Data: payload}); err != nil {
		e.logger.Warn(ctx, "failed to publish engine event", "event_type", eventType, "error", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
