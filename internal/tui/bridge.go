package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/outcome"
	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
	"github.com/alexisbeaulieu97/nosleep/internal/ports"
)

// Bridge subscribes to engine events and forwards them as Bubbletea messages.
// The run's final report is not an event; callers send RunFinishedMsg.
func Bridge(events ports.EventPublisher, send func(tea.Msg)) (func(), error) {
	if events == nil || send == nil {
		return func() {}, nil
	}

	handlers := map[string]ports.EventHandler{
		ports.EventBackendStarted: func(_ context.Context, evt ports.DomainEvent) error {
			data, ok := evt.Payload().(map[string]interface{})
			if !ok {
				return fmt.Errorf("unexpected %s payload %T", evt.EventType(), evt.Payload())
			}
			send(BackendStartedMsg{
				Backend:     setting.BackendKind(stringField(data, "backend")),
				Targets:     intField(data, "targets"),
				Descriptors: intField(data, "descriptors"),
			})
			return nil
		},
		ports.EventPairStarted: func(_ context.Context, evt ports.DomainEvent) error {
			data, ok := evt.Payload().(map[string]interface{})
			if !ok {
				return fmt.Errorf("unexpected %s payload %T", evt.EventType(), evt.Payload())
			}
			send(PairStartedMsg{
				Backend:      setting.BackendKind(stringField(data, "backend")),
				Target:       stringField(data, "target"),
				DescriptorID: stringField(data, "descriptor_id"),
			})
			return nil
		},
		ports.EventPairCompleted: func(_ context.Context, evt ports.DomainEvent) error {
			ev, ok := evt.Payload().(outcome.Event)
			if !ok {
				return fmt.Errorf("unexpected %s payload %T", evt.EventType(), evt.Payload())
			}
			send(OutcomeMsg{Event: ev})
			return nil
		},
		ports.EventBackendWarning: func(_ context.Context, evt ports.DomainEvent) error {
			w, ok := evt.Payload().(outcome.Warning)
			if !ok {
				return fmt.Errorf("unexpected %s payload %T", evt.EventType(), evt.Payload())
			}
			send(WarningMsg{Warning: w})
			return nil
		},
	}

	var subs []ports.Subscription
	unsubscribe := func() {
		for _, s := range subs {
			s.Unsubscribe()
		}
	}
	for _, eventType := range []string{
		ports.EventBackendStarted,
		ports.EventPairStarted,
		ports.EventPairCompleted,
		ports.EventBackendWarning,
	} {
		sub, err := events.Subscribe(eventType, handlers[eventType])
		if err != nil {
			unsubscribe()
			return nil, fmt.Errorf("subscribe to %s: %w", eventType, err)
		}
		subs = append(subs, sub)
	}
	return unsubscribe, nil
}

func stringField(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func intField(data map[string]interface{}, key string) int {
	switch v := data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
