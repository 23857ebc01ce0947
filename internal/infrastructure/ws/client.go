package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024

	sendBufferSize = 64
)

// Event is the wire envelope for every socket frame, inbound and
// outbound.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewEvent marshals a payload into an outbound envelope.
func NewEvent(name string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Event: name, Data: data}, nil
}

// Client is one user's websocket connection. Writes go through the send
// channel so only the write pump touches the connection.
type Client struct {
	UserID uuid.UUID

	conn   *websocket.Conn
	send   chan Event
	mu     sync.Mutex
	closed bool
	logger zerolog.Logger
}

func NewClient(userID uuid.UUID, conn *websocket.Conn, logger zerolog.Logger) *Client {
	return &Client{
		UserID: userID,
		conn:   conn,
		send:   make(chan Event, sendBufferSize),
		logger: logger.With().Str("user_id", userID.String()).Logger(),
	}
}

// Enqueue queues an event for delivery without blocking. A full buffer
// means the consumer is too slow; the event is dropped and the caller
// told. The mutex orders Enqueue against Close so a send never hits a
// closed channel.
func (c *Client) Enqueue(event Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- event:
		return true
	default:
		c.logger.Warn().Str("event", event.Event).Msg("send buffer full, dropping event")
		return false
	}
}

// Close shuts the send channel down and closes the connection. Safe to
// call more than once and concurrently with Enqueue.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// ReadEvent blocks until the peer sends the next frame.
func (c *Client) ReadEvent() (Event, error) {
	var ev Event
	if err := c.conn.ReadJSON(&ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// WritePump drains the send channel onto the connection and keeps the
// peer alive with pings. Runs until the client is closed or the peer
// stops answering.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				c.logger.Debug().Err(err).Msg("write failed, dropping connection")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Prepare applies read limits and the pong handler. Called once before
// the read loop starts.
func (c *Client) Prepare() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}
