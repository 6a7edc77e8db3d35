package bridge

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/normanking/neonlight/internal/bus"
	"github.com/normanking/neonlight/internal/remote"
)

// Connection events sent to the frontend
const (
	EventConnectionStatus = "connection:status"
	EventConnectionError  = "connection:error"
)

// ErrRemoteDisabled is returned when no state feed is configured
var ErrRemoteDisabled = errors.New("remote state feed is disabled")

// ConnectionBridge exposes the remote state feed to the frontend
type ConnectionBridge struct {
	ctx       context.Context
	client    *remote.Client // nil when the feed is disabled
	serverURL string
	eventBus  *bus.EventBus
	logger    zerolog.Logger
	emit      EmitFunc
}

// NewConnectionBridge creates the connection bridge. client may be nil.
func NewConnectionBridge(client *remote.Client, serverURL string, eventBus *bus.EventBus, logger zerolog.Logger) *ConnectionBridge {
	return &ConnectionBridge{
		client:    client,
		serverURL: serverURL,
		eventBus:  eventBus,
		logger:    logger.With().Str("component", "connection-bridge").Logger(),
		emit:      runtime.EventsEmit,
	}
}

// Bind sets the Wails runtime context and forwards feed events
func (b *ConnectionBridge) Bind(ctx context.Context) {
	b.ctx = ctx

	b.eventBus.SubscribeMultiple([]bus.EventType{
		bus.EventTypeConnected,
		bus.EventTypeDisconnected,
	}, func(e bus.Event) {
		b.emit(b.ctx, EventConnectionStatus, b.GetConnectionStatus())
	})

	b.eventBus.Subscribe(bus.EventTypeError, func(e bus.Event) {
		b.emit(b.ctx, EventConnectionError, e.Data)
	})
}

// Connect restarts the feed connection loop, skipping any pending backoff
func (b *ConnectionBridge) Connect() error {
	if b.client == nil {
		return ErrRemoteDisabled
	}
	if b.client.IsConnected() {
		return nil
	}
	b.client.Disconnect()
	return b.client.Connect(context.Background())
}

// Disconnect closes the feed connection
func (b *ConnectionBridge) Disconnect() error {
	if b.client == nil {
		return ErrRemoteDisabled
	}
	b.client.Disconnect()
	b.eventBus.Publish(bus.Event{Type: bus.EventTypeDisconnected, Data: map[string]any{"reason": "user"}})
	return nil
}

// IsConnected returns connection status
func (b *ConnectionBridge) IsConnected() bool {
	return b.client != nil && b.client.IsConnected()
}

// GetServerURL returns the configured feed URL
func (b *ConnectionBridge) GetServerURL() string {
	return b.serverURL
}

// GetConnectionStatus returns full connection status
func (b *ConnectionBridge) GetConnectionStatus() map[string]any {
	status := map[string]any{
		"enabled":     b.client != nil,
		"isConnected": b.IsConnected(),
		"serverUrl":   b.serverURL,
	}
	if b.client != nil {
		status["session"] = b.client.SessionID()
	}
	return status
}
