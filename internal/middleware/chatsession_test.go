package middleware

import (
  "context"
  "net/http"
  "net/http/httptest"
  "testing"

  "github.com/gin-gonic/gin"
  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "github.com/slotter-org/slotter-chat/internal/logger"
  "github.com/slotter-org/slotter-chat/internal/requestdata"
  "github.com/slotter-org/slotter-chat/internal/services"
)

type stubChatService struct{}

func (stubChatService) Ask(context.Context, string, string) (*services.AskResult, error) {
  return nil, nil
}

func (stubChatService) NewChatID() string { return "20250101_120000" }

func newTestEngine() (*gin.Engine, *string) {
  gin.SetMode(gin.TestMode)
  var seen string
  r := gin.New()
  r.Use(NewChatSessionMiddleware(logger.NewNop(), stubChatService{}).AttachChat())
  r.GET("/", func(c *gin.Context) {
    if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
      seen = rd.ChatID
    }
    c.Status(http.StatusNoContent)
  })
  return r, &seen
}

func TestAttachChat_MintsCookieOnFirstVisit(t *testing.T) {
  r, seen := newTestEngine()
  w := httptest.NewRecorder()
  r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

  assert.Equal(t, "20250101_120000", *seen)
  cookies := w.Result().Cookies()
  require.Len(t, cookies, 1)
  assert.Equal(t, ChatCookieName, cookies[0].Name)
  assert.Equal(t, "20250101_120000", cookies[0].Value)
  assert.True(t, cookies[0].HttpOnly)
}

func TestAttachChat_ReusesExistingCookie(t *testing.T) {
  r, seen := newTestEngine()
  req := httptest.NewRequest(http.MethodGet, "/", nil)
  req.AddCookie(&http.Cookie{Name: ChatCookieName, Value: "existing"})
  w := httptest.NewRecorder()
  r.ServeHTTP(w, req)

  assert.Equal(t, "existing", *seen)
  assert.Empty(t, w.Result().Cookies())
}
