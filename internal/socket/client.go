package socket

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/slotter-org/slotter-chat/internal/logger"
)

// InboundMessage is what the page sends to change its subscriptions.
type InboundMessage struct {
	Action  string `json:"action,omitempty"`  // "subscribe" | "unsubscribe"
	Channel string `json:"channel,omitempty"`
}

const (
	OutboundChanBuffer = 256

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type Client struct {
	ID        uuid.UUID
	Conn      *websocket.Conn
	Hub       *Hub
	Log       *logger.Logger
	cancelFn  context.CancelFunc
	Outbound  chan Message
	closeOnce sync.Once
}

// NewClient builds a client. cancel stops the sibling pump when one side ends.
func NewClient(conn *websocket.Conn, hub *Hub, uid uuid.UUID,
	cancel context.CancelFunc, log *logger.Logger) *Client {

	return &Client{
		ID:       uid,
		Conn:     conn,
		Hub:      hub,
		Log:      log.With("client", uid),
		cancelFn: cancel,
		Outbound: make(chan Message, OutboundChanBuffer),
	}
}

func (c *Client) ReadLoop(ctx context.Context)  { c.readLoop(ctx) }
func (c *Client) WriteLoop(ctx context.Context) { c.writeLoop(ctx) }

func (c *Client) readLoop(ctx context.Context) {
	defer c.close()

	c.Conn.SetReadLimit(1 << 20)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				c.Log.Debug("websocket read timeout, closing client")
				return
			}
			c.Log.Debug("websocket read error, closing client", "error", err)
			return
		}

		var inbound InboundMessage
		if err := json.Unmarshal(data, &inbound); err != nil {
			c.Log.Debug("failed to unmarshal inbound message", "error", err, "raw", string(data))
			continue
		}

		switch inbound.Action {
		case "subscribe":
			if inbound.Channel != "" {
				c.Hub.Subscribe(c, []string{inbound.Channel})
			}
		case "unsubscribe":
			if inbound.Channel != "" {
				c.Hub.UnsubscribeFromChannel(c, inbound.Channel)
			}
		default:
			c.Log.Debug("inbound WS message unhandled", "message", inbound)
		}
	}
}

func (c *Client) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.Log.Debug("writeLoop ctx done, shutting down")
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-c.Outbound:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.writeJSON(msg); err != nil {
				c.Log.Warn("failed writing JSON", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Log.Debug("ping error, shutting down", "error", err)
				return
			}
		}
	}
}

func (c *Client) writeJSON(v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w, err := c.Conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	if _, err = w.Write(payload); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// close is reached from both pumps; only the first call does anything.
// Outbound is never closed so a concurrent broadcast cannot panic.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.Log.Debug("closing client connection")
		if c.cancelFn != nil {
			c.cancelFn()
		}
		c.Hub.Unsubscribe(c)
		_ = c.Conn.Close()
	})
}
