package handlers

import (
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/slotter-org/slotter-chat/internal/logger"
  "github.com/slotter-org/slotter-chat/internal/middleware"
  "github.com/slotter-org/slotter-chat/internal/repos"
  "github.com/slotter-org/slotter-chat/internal/requestdata"
  "github.com/slotter-org/slotter-chat/internal/services"
  "github.com/slotter-org/slotter-chat/internal/socket"
  "github.com/slotter-org/slotter-chat/internal/templates"
)

// ChatHandler serves the browser page and its form actions.
type ChatHandler struct {
  log           *logger.Logger
  store         services.ChatStoreService
  chatService   services.ChatService
  hub           *socket.Hub
  historyLimit  int
}

func NewChatHandler(log *logger.Logger, store services.ChatStoreService, chatService services.ChatService, hub *socket.Hub, historyLimit int) *ChatHandler {
  if historyLimit <= 0 {
    historyLimit = services.DefaultHistoryLimit
  }
  return &ChatHandler{
    log:          log.With("handler", "ChatHandler"),
    store:        store,
    chatService:  chatService,
    hub:          hub,
    historyLimit: historyLimit,
  }
}

func currentChatID(c *gin.Context) string {
  if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
    return rd.ChatID
  }
  return ""
}

func (ch *ChatHandler) Page(c *gin.Context) {
  ctx := c.Request.Context()
  chatID := currentChatID(c)

  folders := ch.store.GetChatFolders(ctx)
  folderViews := make([]templates.FolderView, 0, len(folders))
  for _, f := range folders {
    msgs := ch.store.GetChatHistory(ctx, f.ChatID, ch.historyLimit)
    folderViews = append(folderViews, templates.NewFolderView(f, chatID, msgs))
  }

  var current []templates.MessageView
  if chatID != "" {
    current = templates.NewMessageViews(ch.store.GetChatHistory(ctx, chatID, ch.historyLimit))
  }

  html, err := templates.RenderChatHTML(templates.ChatPageData{
    ChatID:       chatID,
    Question:     c.Query("q"),
    Notice:       c.Query("notice"),
    Examples:     templates.ExamplePrompts,
    Folders:      folderViews,
    CurrentChat:  current,
  })
  if err != nil {
    ch.log.Error("Failed to render chat page :(", "error", err)
    c.String(http.StatusInternalServerError, "failed to render page")
    return
  }
  c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (ch *ChatHandler) Send(c *gin.Context) {
  chatID := currentChatID(c)
  question := c.PostForm("question")

  res, err := ch.chatService.Ask(c.Request.Context(), chatID, question)
  if err != nil {
    if errors.Is(err, repos.ErrEmptyQuestion) {
      c.Redirect(http.StatusSeeOther, "/")
      return
    }
    ch.log.Warn("Failed to answer question", "error", err)
    c.Redirect(http.StatusSeeOther, "/?notice=failed+to+answer+question")
    return
  }
  if !res.Saved {
    c.Redirect(http.StatusSeeOther, "/?notice=the+answer+could+not+be+saved")
    return
  }
  ch.hub.BroadcastChatEvent(c.Request.Context(), res.Message.ChatID, socket.ActionMessageSaved, res.Message)
  c.Redirect(http.StatusSeeOther, "/")
}

func (ch *ChatHandler) Clear(c *gin.Context) {
  chatID := currentChatID(c)
  if chatID != "" && ch.store.DeleteChat(c.Request.Context(), chatID) {
    ch.hub.BroadcastChatEvent(c.Request.Context(), chatID, socket.ActionChatDeleted, nil)
  }
  c.Redirect(http.StatusSeeOther, "/")
}

func (ch *ChatHandler) New(c *gin.Context) {
  middleware.SetChatCookie(c, ch.chatService.NewChatID())
  c.Redirect(http.StatusSeeOther, "/")
}
