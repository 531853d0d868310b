package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/outcome"
	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
	"github.com/alexisbeaulieu97/nosleep/internal/logger"
	"github.com/alexisbeaulieu97/nosleep/internal/ports"
)

func newTestLogger(t *testing.T, buf *bytes.Buffer) ports.Logger {
	t.Helper()
	log, err := logger.New(logger.Options{Level: "debug", Writer: buf})
	require.NoError(t, err)
	return log
}

func TestLoggingPublisherIncludesRunIDAndPayload(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	publisher := NewLoggingPublisher(newTestLogger(t, buf))

	ctx := ports.WithRunID(context.Background(), "abc-123")
	err := publisher.Publish(ctx, ports.Event{
		Type: ports.EventBackendStarted,
		Data: map[string]interface{}{"backend": "settings_store", "targets": 1},
	})
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "event", entry["message"])
	require.Equal(t, ports.EventBackendStarted, entry["event_type"])
	require.Equal(t, "abc-123", entry["run_id"])
	require.Equal(t, "settings_store", entry["backend"])
}

func TestLoggingPublisherUsesPayloadFields(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	publisher := NewLoggingPublisher(newTestLogger(t, buf))

	err := publisher.Publish(context.Background(), ports.Event{
		Type: ports.EventPairCompleted,
		Data: outcome.Event{Backend: setting.BackendDeviceControl, TargetLabel: "Ethernet", Kind: outcome.KindApplied},
	})
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "applied", entry["outcome"])
	require.Equal(t, "Ethernet", entry["target"])
}

func TestLoggingPublisherInvokesSubscribersInOrder(t *testing.T) {
	t.Parallel()

	publisher := NewLoggingPublisher(logger.NewNoOp())

	var seen []string
	_, err := publisher.Subscribe(ports.EventPairCompleted, func(_ context.Context, e ports.DomainEvent) error {
		seen = append(seen, "first")
		return errors.New("ignored")
	})
	require.NoError(t, err)
	sub, err := publisher.Subscribe(ports.EventPairCompleted, func(_ context.Context, e ports.DomainEvent) error {
		seen = append(seen, "second")
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, publisher.Publish(context.Background(), ports.Event{Type: ports.EventPairCompleted}))
	require.Equal(t, []string{"first", "second"}, seen)

	sub.Unsubscribe()
	require.NoError(t, publisher.Publish(context.Background(), ports.Event{Type: ports.EventPairCompleted}))
	require.Equal(t, []string{"first", "second", "first"}, seen)
}

func TestLoggingPublisherIgnoresOtherTypes(t *testing.T) {
	t.Parallel()

	publisher := NewLoggingPublisher(nil)
	called := false
	_, err := publisher.Subscribe(ports.EventRunCompleted, func(context.Context, ports.DomainEvent) error {
		called = true
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, publisher.Publish(context.Background(), ports.Event{Type: ports.EventRunStarted}))
	require.False(t, called)
}
