package protocol

import (
	"net"
	"sync"

	"github.com/gorilla/websocket"
)

// Conn is the transport seen by the rest of the server: ordered delivery of
// event envelopes to and from one client.
type Conn interface {
	Send(evt Event) error
	ReadEvent() (*Event, error)
	Close() error
	RemoteAddr() net.Addr
}

// WSConn carries events over a gorilla websocket as JSON text frames. Reads
// stay single-goroutine; writes are serialized by the mutex because
// broadcasts and targeted replies can race.
type WSConn struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
}

func NewWSConn(conn *websocket.Conn) *WSConn {
	return &WSConn{conn: conn}
}

func (c *WSConn) Send(evt Event) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	return c.conn.WriteJSON(evt)
}

func (c *WSConn) ReadEvent() (*Event, error) {
	var evt Event
	if err := c.conn.ReadJSON(&evt); err != nil {
		return nil, err
	}
	return &evt, nil
}

func (c *WSConn) Close() error {
	return c.conn.Close()
}

func (c *WSConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
