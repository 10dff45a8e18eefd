// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mwenger0/cursora/internal/logging"
	"github.com/mwenger0/cursora/internal/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Clients only ever send ping keepalives and subscription updates,
	// so the inbound limit is deliberately small.
	maxInboundBytes = 32 * 1024
)

// clientIDCounter assigns monotonically increasing client ids. The hub
// sorts on them to keep broadcast order deterministic.
var clientIDCounter atomic.Uint64

// Client bridges one WebSocket connection and the hub. The hub pushes
// messages into send; writePump drains them onto the wire, applying the
// client's subscription filter. readPump accepts the small inbound
// protocol Cursora clients speak: ping keepalives and subscribe messages.
type Client struct {
	id   uint64
	hub  *Hub
	conn *websocket.Conn
	send chan Message

	// mu guards subs. A nil subs map means the client receives every
	// message type, which is the state a fresh connection starts in.
	mu   sync.Mutex
	subs map[string]struct{}
}

// NewClient creates a client for an upgraded connection. The caller still
// has to register it with the hub and call Start.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   clientIDCounter.Add(1),
		hub:  hub,
		conn: conn,
		send: make(chan Message, 256),
	}
}

// ID returns the client's unique identifier for deterministic ordering.
func (c *Client) ID() uint64 {
	return c.id
}

// subscribe replaces the client's message-type filter. An empty list
// restores the default of receiving everything.
func (c *Client) subscribe(types []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(types) == 0 {
		c.subs = nil
		return
	}
	subs := make(map[string]struct{}, len(types))
	for _, t := range types {
		subs[t] = struct{}{}
	}
	c.subs = subs
}

// wantsMessage reports whether the subscription filter admits the message
// type. Keepalive control messages always pass.
func (c *Client) wantsMessage(msgType string) bool {
	if msgType == MessageTypePing || msgType == MessageTypePong {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subs == nil {
		return true
	}
	_, ok := c.subs[msgType]
	return ok
}

// handleInbound processes one message from the client. Unknown types are
// ignored so protocol additions never break older servers.
func (c *Client) handleInbound(msg Message) {
	switch msg.Type {
	case MessageTypePing:
		select {
		case c.send <- Message{Type: MessageTypePong}:
		default:
			// Send queue full; the client will retry its keepalive.
		}
	case MessageTypeSubscribe:
		c.subscribe(subscriptionTypes(msg.Data))
	default:
		logging.Debug().Str("message_type", msg.Type).Msg("ignoring unknown client message")
	}
}

// subscriptionTypes extracts the "types" list from a subscribe payload.
// A missing or malformed payload yields nil, which subscribe treats as
// "everything" — a client can clear its filter by sending an empty list.
func subscriptionTypes(data interface{}) []string {
	payload, ok := data.(map[string]interface{})
	if !ok {
		return nil
	}
	raw, ok := payload["types"].([]interface{})
	if !ok {
		return nil
	}

	var types []string
	for _, v := range raw {
		if s, ok := v.(string); ok {
			types = append(types, s)
		}
	}
	return types
}

// readPump reads client messages until the connection drops, then
// unregisters the client from the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundBytes)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Msg("unexpected websocket close error")
			}
			return
		}
		c.handleInbound(msg)
	}
}

// writePump drains the send queue onto the wire, dropping messages the
// subscription filter rejects, and keeps the connection alive with
// protocol-level pings. WSMessagesSent counts actual socket writes, not
// hub enqueues.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// Hub closed the channel; say goodbye properly.
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logging.Error().Err(err).Msg("failed to write close message")
				}
				return
			}

			if !c.wantsMessage(message.Type) {
				continue
			}

			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				logging.Error().Err(err).Msg("failed to write JSON message")
				return
			}
			metrics.WSMessagesSent.WithLabelValues(message.Type).Inc()

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins the read and write pumps for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
