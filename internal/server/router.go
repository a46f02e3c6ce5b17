package server

import (
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/cors"

  "github.com/slotter-org/slotter-chat/internal/handlers"
  "github.com/slotter-org/slotter-chat/internal/middleware"
)

// DefaultAllowOrigins is used when no origins are configured.
var DefaultAllowOrigins = []string{"http://localhost:8080", "http://127.0.0.1:8080"}

type RouterConfig struct {
  ChatHandler           *handlers.ChatHandler
  APIHandler            *handlers.APIHandler
  ChatSessionMiddleware *middleware.ChatSessionMiddleware
  WsHandler             gin.HandlerFunc
  AllowOrigins          []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  //-----------------------------------------
  // Cors Setup
  //-----------------------------------------
  allowOrigins := cfg.AllowOrigins
  if len(allowOrigins) == 0 {
    allowOrigins = DefaultAllowOrigins
  }
  router.Use(cors.New(cors.Config{
    AllowOrigins:     allowOrigins,
    AllowMethods:     []string{"GET","POST","DELETE","OPTIONS"},
    AllowHeaders:     []string{"Content-Type","X-Requested-With"},
    AllowCredentials: true,
  }))

  //-----------------------------------------
  // Health Routes
  //-----------------------------------------
  router.GET("/healthz", handlers.Healthz)

  //-----------------------------------------
  // Page Routes
  //-----------------------------------------
  page := router.Group("/")
  page.Use(cfg.ChatSessionMiddleware.AttachChat())
  {
    page.GET("/", cfg.ChatHandler.Page)
    page.POST("/chat/send", cfg.ChatHandler.Send)
    page.POST("/chat/clear", cfg.ChatHandler.Clear)
    page.POST("/chat/new", cfg.ChatHandler.New)
    page.GET("/ws", cfg.WsHandler)
  }

  //------------------------------------------
  // API Routes
  //------------------------------------------
  api := router.Group("/api")
  {
    api.GET("/chats", cfg.APIHandler.GetFolders)
    api.GET("/chats/:chatID/messages", cfg.APIHandler.GetChatMessages)
    api.POST("/chats/:chatID/messages", cfg.APIHandler.PostChatMessage)
    api.DELETE("/chats/:chatID", cfg.APIHandler.DeleteChat)
    api.GET("/messages", cfg.APIHandler.GetAllMessages)
    api.GET("/search", cfg.APIHandler.Search)
  }

  return router
}
