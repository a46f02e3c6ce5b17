package handlers

import (
  "net/http"
  "net/http/httptest"
  "strings"
  "testing"

  "github.com/gin-gonic/gin"
  "github.com/gorilla/websocket"
  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "github.com/slotter-org/slotter-chat/internal/logger"
  "github.com/slotter-org/slotter-chat/internal/socket"
)

func newWsServer(t *testing.T, allowOrigins []string) (*httptest.Server, string) {
  t.Helper()
  gin.SetMode(gin.TestMode)
  log := logger.NewNop()
  r := gin.New()
  r.GET("/ws", WsHandler(socket.NewHub(log), log, allowOrigins))
  srv := httptest.NewServer(r)
  t.Cleanup(srv.Close)
  return srv, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dialWithOrigin(wsURL, origin string) (*websocket.Conn, *http.Response, error) {
  header := http.Header{}
  if origin != "" {
    header.Set("Origin", origin)
  }
  return websocket.DefaultDialer.Dial(wsURL, header)
}

func TestWsHandler_RejectsForeignOrigin(t *testing.T) {
  _, wsURL := newWsServer(t, []string{"http://allowed.test"})

  conn, resp, err := dialWithOrigin(wsURL, "http://evil.test")
  if conn != nil {
    conn.Close()
  }
  require.ErrorIs(t, err, websocket.ErrBadHandshake)
  require.NotNil(t, resp)
  assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWsHandler_AcceptsAllowedSameAndMissingOrigin(t *testing.T) {
  srv, wsURL := newWsServer(t, []string{"http://allowed.test/"})

  for _, origin := range []string{"http://allowed.test", srv.URL, ""} {
    conn, _, err := dialWithOrigin(wsURL, origin)
    require.NoError(t, err, "origin %q", origin)
    conn.Close()
  }
}
