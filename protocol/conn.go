package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/gorilla/websocket"
)

// Conn is the transport both the relay and the clients speak.
type Conn interface {
	WriteEvent(ev Event) error
	ReadEvent() (*Event, error)
	Close() error
	RemoteAddr() net.Addr
}

// WSConn wraps a gorilla WebSocket connection. Writes are serialized with a
// mutex because the underlying connection supports one concurrent writer.
type WSConn struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
}

func NewWSConn(conn *websocket.Conn) *WSConn {
	return &WSConn{conn: conn}
}

func (c *WSConn) WriteEvent(ev Event) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()
	return c.conn.WriteJSON(ev)
}

// WriteClose sends a close control frame with the given code and reason.
func (c *WSConn) WriteClose(code int, reason string) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()
	return c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason))
}

// ReadEvent reads the next frame. A frame that is not a valid envelope
// returns ErrMalformedEvent; the connection itself remains usable.
func (c *WSConn) ReadEvent() (*Event, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil || ev.Name == "" {
		return nil, ErrMalformedEvent
	}
	return &ev, nil
}

func (c *WSConn) Close() error {
	return c.conn.Close()
}

func (c *WSConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Dial connects to a relay endpoint and wraps the connection.
func Dial(ctx context.Context, url string) (*WSConn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to relay: %w", err)
	}
	return NewWSConn(conn), nil
}
