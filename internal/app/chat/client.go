/*
Package chat contains the realtime core: presence tracking, room membership,
conversation addressing, and the event router that ties them to the message store.

This file defines the Client struct, representing one live WebSocket connection.
It manages the connection's lifecycle and its message pumps (ReadPump and WritePump);
all inbound events are handed to the Hub for dispatch.
*/
package chat

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mountain-chan/security-chat-backend/internal/pkg/errs"
	"github.com/mountain-chan/security-chat-backend/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 8192

	// size of the per-connection outbound queue. A receiver that cannot drain
	// this buffer gets messages dropped rather than blocking the router.
	sendQueueSize = 256
)

// Client represents one live realtime connection. The pointer itself is the
// connection handle used by the presence and room tables; ID only exists for logs.
type Client struct {
	// ID is the opaque identifier of this connection, assigned on connect.
	ID string

	// hub dispatches every inbound event of this connection.
	hub *Hub

	// conn is the underlying WebSocket connection. Nil-safe until the pumps run,
	// which keeps the hub testable without a network.
	conn *websocket.Conn

	// send is the buffered queue of outbound frames drained by WritePump.
	send chan []byte

	// sendMu guards the closed flag so nothing writes to a closed send channel.
	sendMu sync.Mutex
	closed bool

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client around an upgraded WebSocket connection.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	id := uuid.New().String()

	return &Client{
		ID:     id,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		logger: logx.Logger().With().Str("conn_id", id).Logger(),
	}
}

// ReadPump reads messages from the WebSocket connection and dispatches them to
// the Hub, one at a time, so a connection's events are processed in arrival
// order. It handles heartbeats (Pong) and performs cleanup on connection close.
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
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		c.hub.Dispatch(c, messageBytes)
	}
}

// cleanupOnDisconnect unwinds the connection's shared state when ReadPump terminates.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.hub.HandleDisconnect(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// WritePump writes frames from the send queue to the WebSocket connection and
// keeps the heartbeat alive.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage handles messages pulled from the send channel, writing them to the WebSocket.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// Send enqueues one outbound frame without blocking. A full queue or a closed
// connection drops the frame and returns an error for the caller to log.
func (c *Client) Send(message []byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return errors.New("connection closed")
	}

	select {
	case c.send <- message:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping message")
		return fmt.Errorf("client send queue full")
	}
}

// SendError reports an error event to this connection only.
func (c *Client) SendError(err error) {
	var code int
	var message string

	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		code = customErr.Code
		message = customErr.Message
	} else {
		code = errs.ErrUnknown
		message = "Internal server error"
	}

	payload, marshalErr := NewEvent(EventError, ErrorPayload{Code: code, Message: message})
	if marshalErr != nil {
		c.logger.Error().Err(marshalErr).Msg("Failed to build error event")
		return
	}

	if sendErr := c.Send(payload); sendErr != nil {
		c.logger.Warn().Err(sendErr).Msg("Failed to queue error event")
	}
}

// closeSend closes the outbound queue, signalling WritePump to finish. Idempotent.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
