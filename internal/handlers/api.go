package handlers

import (
  "errors"
  "net/http"
  "strconv"

  "github.com/gin-gonic/gin"

  "github.com/slotter-org/slotter-chat/internal/logger"
  "github.com/slotter-org/slotter-chat/internal/repos"
  "github.com/slotter-org/slotter-chat/internal/services"
  "github.com/slotter-org/slotter-chat/internal/socket"
)

// APIHandler exposes the store operations as JSON.
type APIHandler struct {
  log           *logger.Logger
  store         services.ChatStoreService
  chatService   services.ChatService
  hub           *socket.Hub
}

func NewAPIHandler(log *logger.Logger, store services.ChatStoreService, chatService services.ChatService, hub *socket.Hub) *APIHandler {
  return &APIHandler{
    log:          log.With("handler", "APIHandler"),
    store:        store,
    chatService:  chatService,
    hub:          hub,
  }
}

// parseLimit reads ?limit=; missing means 0, which the store maps to its default.
func parseLimit(c *gin.Context) (int, bool) {
  raw := c.Query("limit")
  if raw == "" {
    return 0, true
  }
  limit, err := strconv.Atoi(raw)
  if err != nil || limit < 0 {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
    return 0, false
  }
  return limit, true
}

func (ah *APIHandler) GetFolders(c *gin.Context) {
  folders := ah.store.GetChatFolders(c.Request.Context())
  c.JSON(http.StatusOK, gin.H{"folders": folders})
}

func (ah *APIHandler) GetAllMessages(c *gin.Context) {
  limit, ok := parseLimit(c)
  if !ok {
    return
  }
  msgs := ah.store.GetChatHistory(c.Request.Context(), "", limit)
  c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (ah *APIHandler) GetChatMessages(c *gin.Context) {
  limit, ok := parseLimit(c)
  if !ok {
    return
  }
  msgs := ah.store.GetChatHistory(c.Request.Context(), c.Param("chatID"), limit)
  c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (ah *APIHandler) PostChatMessage(c *gin.Context) {
  var req struct {
    Question  string  `json:"question"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  res, err := ah.chatService.Ask(c.Request.Context(), c.Param("chatID"), req.Question)
  if err != nil {
    if errors.Is(err, repos.ErrEmptyQuestion) {
      c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
      return
    }
    c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
    return
  }
  if res.Saved {
    ah.hub.BroadcastChatEvent(c.Request.Context(), res.Message.ChatID, socket.ActionMessageSaved, res.Message)
  }
  c.JSON(http.StatusOK, gin.H{
    "saved":   res.Saved,
    "message": res.Message,
  })
}

func (ah *APIHandler) DeleteChat(c *gin.Context) {
  chatID := c.Param("chatID")
  deleted := ah.store.DeleteChat(c.Request.Context(), chatID)
  if deleted {
    ah.hub.BroadcastChatEvent(c.Request.Context(), chatID, socket.ActionChatDeleted, nil)
  }
  c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (ah *APIHandler) Search(c *gin.Context) {
  limit, ok := parseLimit(c)
  if !ok {
    return
  }
  query := c.Query("q")
  if query == "" {
    c.JSON(http.StatusBadRequest, gin.H{"error": "missing q"})
    return
  }
  msgs := ah.store.SearchMessages(c.Request.Context(), query, limit)
  c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
