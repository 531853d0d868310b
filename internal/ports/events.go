package ports

import "context"

const (
	// EventRunStarted is emitted once before the first backend is processed.
	EventRunStarted = "run.started"
	// EventRunCompleted is emitted after every backend has been processed.
	EventRunCompleted = "run.completed"
	// EventBackendStarted is emitted when a backend's targets are enumerated.
	EventBackendStarted = "backend.started"
	// EventBackendWarning is emitted for backend-level problems such as a
	// failed enumeration.
	EventBackendWarning = "backend.warning"
	// EventPairStarted is emitted before a (target, descriptor) pair is processed.
	EventPairStarted = "pair.started"
	// EventPairCompleted is emitted once per pair with its terminal outcome.
	EventPairCompleted = "pair.completed"
)

// DomainEvent represents a significant occurrence during a run. Events carry
// structured payloads that subscribers use for logging and UI updates.
type DomainEvent interface {
	EventType() string
	Payload() interface{}
}

// EventPublisher distributes events to interested subscribers. Dispatch is
// synchronous: Publish blocks until all handlers run, so observers see events
// in emission order. Implementations must be thread-safe.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
}

// EventHandler processes an event of a specific type.
type EventHandler func(context.Context, DomainEvent) error

// Subscription represents a registered handler.
type Subscription interface {
	Unsubscribe()
}

// Event is the concrete DomainEvent published by the engine.
type Event struct {
	Type string
	Data interface{}
}

// EventType implements DomainEvent.
func (e Event) EventType() string { return e.Type }

// Payload implements DomainEvent.
func (e Event) Payload() interface{} { return e.Data }
