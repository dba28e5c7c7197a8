package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 1 << 20
	sendBuffer = 64
)

// Client is one websocket connection attached to a session.
type Client struct {
	registry *Registry
	session  *Session
	conn     *websocket.Conn
	send     chan []byte
}

func NewClient(registry *Registry, s *Session, conn *websocket.Conn) *Client {
	return &Client{
		registry: registry,
		session:  s,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
	}
}

// ReadPump answers requests until the connection closes, then releases the
// session. It owns the send channel and closes it on return.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		close(c.send)
		if err := c.registry.Close(context.WithoutCancel(ctx), c.session); err != nil {
			c.conn.Close(websocket.StatusInternalError, "save failed")
			return
		}
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.Send(c.session.Welcome())

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "user", c.session.UserID())
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "user", c.session.UserID())
			c.Send(errorReply(0, fmt.Errorf("%w: %w", ErrBadPayload, err)))
			continue
		}

		c.Send(c.session.Handle(ctx, &msg))
	}
}

func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "user", c.session.UserID())
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "user", c.session.UserID())
	}
}
