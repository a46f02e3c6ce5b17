package middleware

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/slotter-org/slotter-chat/internal/logger"
  "github.com/slotter-org/slotter-chat/internal/requestdata"
  "github.com/slotter-org/slotter-chat/internal/services"
)

const ChatCookieName = "chat_id"

// chatCookieMaxAge keeps the current conversation for 30 days.
const chatCookieMaxAge = 30 * 24 * 60 * 60

type ChatSessionMiddleware struct {
  log           *logger.Logger
  chatService   services.ChatService
}

func NewChatSessionMiddleware(log *logger.Logger, chatService services.ChatService) *ChatSessionMiddleware {
  return &ChatSessionMiddleware{
    log:          log.With("middleware", "ChatSession"),
    chatService:  chatService,
  }
}

// AttachChat resolves the browser's current chat id from its cookie, minting
// a new one on first visit, and stores it in the request context.
func (m *ChatSessionMiddleware) AttachChat() gin.HandlerFunc {
  return func(c *gin.Context) {
    rd := &requestdata.RequestData{}
    chatID, err := c.Cookie(ChatCookieName)
    if err != nil || chatID == "" {
      chatID = m.chatService.NewChatID()
      rd.NewChat = true
      SetChatCookie(c, chatID)
      m.log.Debug("Started new chat for browser", "chatID", chatID)
    }
    rd.ChatID = chatID
    c.Request = c.Request.WithContext(requestdata.WithRequestData(c.Request.Context(), rd))
    c.Next()
  }
}

func SetChatCookie(c *gin.Context, chatID string) {
  c.SetSameSite(http.SameSiteLaxMode)
  c.SetCookie(ChatCookieName, chatID, chatCookieMaxAge, "/", "", false, true)
}
