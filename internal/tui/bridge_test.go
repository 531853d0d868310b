package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/outcome"
	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
	"github.com/alexisbeaulieu97/nosleep/internal/events"
	"github.com/alexisbeaulieu97/nosleep/internal/logger"
	"github.com/alexisbeaulieu97/nosleep/internal/ports"
)

func TestBridgeTranslatesEngineEvents(t *testing.T) {
	pub := events.NewLoggingPublisher(logger.NewNoOp())
	var got []tea.Msg
	unsubscribe, err := Bridge(pub, func(msg tea.Msg) { got = append(got, msg) })
	require.NoError(t, err)

	ctx := context.Background()
	ev := outcome.Event{Backend: setting.BackendSettingsStore, TargetLabel: "Balanced", DescriptorID: "sleep-timeout", Kind: outcome.KindCompliant}
	warning := outcome.Warning{Backend: setting.BackendInstrumentation, Message: "boom"}

	require.NoError(t, pub.Publish(ctx, ports.Event{Type: ports.EventRunStarted, Data: map[string]interface{}{"backends": 3}}))
	require.NoError(t, pub.Publish(ctx, ports.Event{Type: ports.EventBackendStarted, Data: map[string]interface{}{
		"backend": "settings_store", "targets": 2, "descriptors": 5,
	}}))
	require.NoError(t, pub.Publish(ctx, ports.Event{Type: ports.EventPairStarted, Data: map[string]interface{}{
		"backend": "settings_store", "target": "Balanced", "descriptor_id": "sleep-timeout",
	}}))
	require.NoError(t, pub.Publish(ctx, ports.Event{Type: ports.EventPairCompleted, Data: ev}))
	require.NoError(t, pub.Publish(ctx, ports.Event{Type: ports.EventBackendWarning, Data: warning}))

	require.Equal(t, []tea.Msg{
		BackendStartedMsg{Backend: setting.BackendSettingsStore, Targets: 2, Descriptors: 5},
		PairStartedMsg{Backend: setting.BackendSettingsStore, Target: "Balanced", DescriptorID: "sleep-timeout"},
		OutcomeMsg{Event: ev},
		WarningMsg{Warning: warning},
	}, got)

	unsubscribe()
	require.NoError(t, pub.Publish(ctx, ports.Event{Type: ports.EventPairCompleted, Data: ev}))
	require.Len(t, got, 4, "no messages after unsubscribe")
}

func TestBridgeNilPublisher(t *testing.T) {
	unsubscribe, err := Bridge(nil, func(tea.Msg) {})
	require.NoError(t, err)
	require.NotPanics(t, unsubscribe)
}
