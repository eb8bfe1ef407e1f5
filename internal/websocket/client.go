package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	// updateBacklog is how many list-change notices a slow viewer may fall
	// behind before the hub starts dropping them.
	updateBacklog = 16
	keepAlive     = 30 * time.Second
	writeTimeout  = 10 * time.Second
)

// Client is a browser tab watching for list changes.
type Client struct {
	hub     *Hub
	conn    *ws.Conn
	updates chan []byte
}

func NewClient(hub *Hub, conn *ws.Conn) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		updates: make(chan []byte, updateBacklog),
	}
}

// Serve subscribes the viewer to list changes and delivers them until the
// connection drops or ctx ends.
func (c *Client) Serve(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.deliver(ctx)
	c.awaitClose(ctx)
}

// awaitClose returns once the viewer goes away. Viewers never send list
// edits over this connection, so frames are read only to see the close.
func (c *Client) awaitClose(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

// deliver writes each queued list-change notice, pinging between them so an
// idle viewer that vanished is dropped from the hub.
func (c *Client) deliver(ctx context.Context) {
	ping := time.NewTicker(keepAlive)
	defer ping.Stop()

	for {
		select {
		case notice, open := <-c.updates:
			if !open {
				return
			}
			if err := c.write(ctx, notice); err != nil {
				return
			}
		case <-ping.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, notice []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, ws.MessageText, notice)
}
