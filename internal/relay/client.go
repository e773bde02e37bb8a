/*
Package relay contains the core logic of the Wave Chat relay.

This file defines the Client struct, the WebSocket binding of a session. It
runs the read and write pumps, decodes inbound frames into typed events for
the Hub, and implements the Sink interface for outbound delivery.
*/
package relay

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"wavechat/internal/pkg/logx"
)

const (
	// timeout for a single write to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time to wait for a Pong from the client.
	pongWait = 60 * time.Second

	// frequency of server Ping messages.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of an inbound frame.
	maxMessageSize = 8192

	// sendQueueSize is the capacity of the per-client outbound queue.
	// A full queue drops, it never blocks the Hub.
	sendQueueSize = 256
)

// Client is one live WebSocket connection bound to an authenticated
// identity. The Hub holds it only through the Sink interface.
type Client struct {
	hub *Hub

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// identity is the authenticated user id, supplied by the auth
	// collaborator at upgrade time and trusted from then on.
	identity string

	// send queues marshaled frames waiting to go out on the connection.
	send chan []byte

	closeOnce sync.Once

	// structured logger with client context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an already-upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn, identity string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		identity: identity,
		send:     make(chan []byte, sendQueueSize),
		logger:   logx.Logger().With().Str("user_id", identity).Logger(),
	}
}

// Identity returns the authenticated user id bound to this connection.
func (c *Client) Identity() string {
	return c.identity
}

// Deliver implements Sink. It marshals one outbound frame and queues it
// without blocking; a full queue drops the event.
func (c *Client) Deliver(event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		c.logger.Error().Err(err).Str("event", event).Msg("Error marshaling outbound payload")
		return
	}

	frameBytes, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		c.logger.Error().Err(err).Str("event", event).Msg("Error marshaling outbound frame")
		return
	}

	select {
	case c.send <- frameBytes:
	default:
		c.logger.Warn().
			Str("event", event).
			Int("queue_len", len(c.send)).
			Msg("Client send queue full, dropping event")
	}
}

// ReadPump reads frames from the connection until it closes, dispatching
// each decoded event to the Hub. It handles heartbeats (Pong) and performs
// session teardown on exit.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frameBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		c.processInboundFrame(frameBytes)
	}
}

// cleanupOnDisconnect runs when the read pump terminates: the Hub unregisters
// the session (fanning out the offline presence change) and the connection is
// closed.
func (c *Client) cleanupOnDisconnect() {
	c.hub.Disconnect(c.identity, c)
	c.Close()
}

// Close shuts the send queue and the underlying connection exactly once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.send)

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error")
		}
	})
}

// processInboundFrame decodes one raw frame and hands it to the Hub.
// Invalid JSON and unknown or malformed events are dropped silently; the
// connection stays up.
func (c *Client) processInboundFrame(frameBytes []byte) {
	var frame Frame
	if err := json.Unmarshal(frameBytes, &frame); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON frame")
		return
	}

	ev, err := DecodeInbound(frame)
	if err != nil {
		c.logger.Debug().Err(err).Str("event", frame.Event).Msg("Dropping undecodable event")
		return
	}

	c.hub.Dispatch(c.identity, ev)
}

// WritePump drains the send queue onto the connection and keeps the
// heartbeat alive with periodic Pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frameBytes, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frameBytes); err != nil {
				c.logger.Error().Err(err).Msg("Error writing frame")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Error().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}
