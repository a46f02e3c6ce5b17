package handlers

import (
  "context"
  "net/http"
  "net/url"
  "strings"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/gorilla/websocket"

  "github.com/slotter-org/slotter-chat/internal/logger"
  "github.com/slotter-org/slotter-chat/internal/requestdata"
  "github.com/slotter-org/slotter-chat/internal/socket"
)

// newUpgrader accepts requests without an Origin header, same-origin requests
// and origins listed in allowOrigins.
func newUpgrader(allowOrigins []string) websocket.Upgrader {
  allowed := make(map[string]bool, len(allowOrigins))
  for _, o := range allowOrigins {
    allowed[strings.TrimRight(o, "/")] = true
  }
  return websocket.Upgrader{
    CheckOrigin: func(r *http.Request) bool {
      origin := r.Header.Get("Origin")
      if origin == "" || allowed[origin] {
        return true
      }
      u, err := url.Parse(origin)
      if err != nil {
        return false
      }
      return strings.EqualFold(u.Host, r.Host)
    },
  }
}

// WsHandler upgrades the page's connection and subscribes it to its current
// chat. The page may subscribe to more channels over the socket.
func WsHandler(hub *socket.Hub, log *logger.Logger, allowOrigins []string) gin.HandlerFunc {
  upgrader := newUpgrader(allowOrigins)
  return func(c *gin.Context) {
    conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
    if err != nil {
      log.Warn("Failed to upgrade to websocket", "origin", c.GetHeader("Origin"), "error", err)
      return
    }
    // The request context ends with this handler; the socket outlives it.
    ctx, cancel := context.WithCancel(context.Background())
    client := socket.NewClient(conn, hub, uuid.New(), cancel, log)

    if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil && rd.ChatID != "" {
      hub.Subscribe(client, []string{socket.ChatChannel(rd.ChatID)})
    }

    go client.WriteLoop(ctx)
    go client.ReadLoop(ctx)
  }
}
