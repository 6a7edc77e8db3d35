// Package remote drives the light from an assistant backend over WebSocket.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/normanking/neonlight/internal/bus"
	"github.com/normanking/neonlight/internal/neon"
)

// Message types on the feed
const (
	TypeHello   = "hello"
	TypeState   = "state"
	TypePrivacy = "privacy"
	TypePing    = "ping"
	TypePong    = "pong"
	TypeStatus  = "status"
	TypeError   = "error"
)

// ErrNotConnected is returned when sending without a live connection
var ErrNotConnected = errors.New("not connected")

// Message is the envelope of every feed message
type Message struct {
	Type    string      `json:"type"`
	Session string      `json:"session,omitempty"`
	Client  string      `json:"client,omitempty"`
	State   *neon.State `json:"state,omitempty"`
	Privacy *bool       `json:"privacy,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Config configures the client
type Config struct {
	URL               string
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
}

// Client keeps a connection to the state feed and forwards requests to a
// StateSelector
type Client struct {
	cfg      Config
	selector neon.StateSelector
	events   bus.Publisher
	logger   zerolog.Logger
	session  string

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewClient creates a feed client. events may be nil.
func NewClient(cfg Config, selector neon.StateSelector, events bus.Publisher, logger zerolog.Logger) *Client {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 3 * time.Second
	}
	if cfg.MaxReconnectDelay < cfg.ReconnectDelay {
		cfg.MaxReconnectDelay = max(60*time.Second, cfg.ReconnectDelay)
	}
	return &Client{
		cfg:      cfg,
		selector: selector,
		events:   events,
		logger:   logger.With().Str("component", "remote").Logger(),
		session:  uuid.NewString(),
	}
}

// SessionID identifies this client to the backend across reconnects
func (c *Client) SessionID() string {
	return c.session
}

// Connect starts the connection loop in the background
func (c *Client) Connect(ctx context.Context) error {
	u, err := feedURL(c.cfg.URL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go func() {
		defer close(done)
		c.connectLoop(ctx, u)
	}()
	return nil
}

// Disconnect closes the connection and waits for the loop to stop
func (c *Client) Disconnect() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SendStatus reports the light's state back to the backend
func (c *Client) SendStatus(state neon.State, privacy bool) error {
	return c.send(Message{Type: TypeStatus, State: &state, Privacy: &privacy})
}

func (c *Client) send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected || c.conn == nil {
		return ErrNotConnected
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("write %s: %w", msg.Type, err)
	}
	return nil
}

// connectLoop maintains the WebSocket connection with reconnection
func (c *Client) connectLoop(ctx context.Context, u string) {
	backoff := c.cfg.ReconnectDelay
	consecutiveFailures := 0

	for {
		if ctx.Err() != nil {
			return
		}

		connected, err := c.connectWS(ctx, u)
		c.setDisconnected(err)
		if ctx.Err() != nil {
			return
		}

		if connected {
			backoff = c.cfg.ReconnectDelay
			consecutiveFailures = 0
		} else {
			consecutiveFailures++
		}

		if consecutiveFailures >= 3 {
			if consecutiveFailures == 3 {
				c.logger.Warn().Err(err).Int("failures", consecutiveFailures).Msg("State feed not available, will retry less frequently")
			}
			backoff = c.cfg.MaxReconnectDelay
		} else {
			c.logger.Warn().Err(err).Dur("retry", backoff).Msg("State feed connection lost, reconnecting")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		if backoff < c.cfg.MaxReconnectDelay {
			backoff = min(backoff*2, c.cfg.MaxReconnectDelay)
		}
	}
}

// connectWS dials and reads until the connection fails. connected reports
// whether the handshake succeeded.
func (c *Client) connectWS(ctx context.Context, u string) (connected bool, err error) {
	c.logger.Info().Str("url", u).Str("session", c.session).Msg("Connecting to state feed")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.send(Message{Type: TypeHello, Session: c.session, Client: "neonlight"}); err != nil {
		return true, err
	}

	c.logger.Info().Msg("Connected to state feed")
	c.publish(bus.EventTypeConnected, map[string]any{"url": u, "session": c.session})

	// Unblock ReadJSON when the context ends
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, neon.ErrUnknownState) {
				c.logger.Warn().Err(err).Msg("Ignoring malformed feed message")
				continue
			}
			return true, fmt.Errorf("read: %w", err)
		}
		c.handleMessage(msg)
	}
}

// handleMessage processes incoming WebSocket messages
func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case TypeState:
		if msg.State == nil {
			c.logger.Warn().Msg("State message without state")
			return
		}
		c.logger.Debug().Str("state", msg.State.String()).Msg("State requested by feed")
		c.selector.OnStateRequested(*msg.State)

	case TypePrivacy:
		if msg.Privacy == nil {
			c.logger.Warn().Msg("Privacy message without flag")
			return
		}
		c.selector.OnPrivacyToggled(*msg.Privacy)

	case TypePing:
		if err := c.send(Message{Type: TypePong, Session: c.session}); err != nil {
			c.logger.Debug().Err(err).Msg("Pong failed")
		}

	case TypeError:
		c.logger.Error().Str("message", msg.Message).Msg("State feed error")
		c.publish(bus.EventTypeError, map[string]any{"message": msg.Message})

	default:
		c.logger.Debug().Str("type", msg.Type).Msg("Unknown feed message type")
	}
}

func (c *Client) setDisconnected(err error) {
	c.mu.Lock()
	was := c.connected
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false
	c.mu.Unlock()

	if was {
		data := map[string]any{"session": c.session}
		if err != nil {
			data["error"] = err.Error()
		}
		c.publish(bus.EventTypeDisconnected, data)
	}
}

func (c *Client) publish(t bus.EventType, data map[string]any) {
	if c.events != nil {
		c.events.Publish(bus.Event{Type: t, Data: data})
	}
}

// feedURL maps http(s) URLs onto ws(s)
func feedURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported feed scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("feed url %q has no host", raw)
	}
	return u.String(), nil
}
