package main

import (
  "fmt"
  "os"
  "time"

  "github.com/slotter-org/slotter-chat/internal/db"
  "github.com/slotter-org/slotter-chat/internal/handlers"
  "github.com/slotter-org/slotter-chat/internal/logger"
  "github.com/slotter-org/slotter-chat/internal/middleware"
  "github.com/slotter-org/slotter-chat/internal/repos"
  "github.com/slotter-org/slotter-chat/internal/server"
  "github.com/slotter-org/slotter-chat/internal/services"
  "github.com/slotter-org/slotter-chat/internal/socket"
  "github.com/slotter-org/slotter-chat/internal/utils"
)

func main() {
  // Logger Setup
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Environment Variables
  log.Info("Attempting to load environment variables for Main now...")
  utils.LoadDotEnv(log)
  port := utils.GetEnv("PORT", "8080", log)
  ollamaURL := utils.GetEnv("OLLAMA_URL", "http://127.0.0.1:11434", log)
  ollamaModel := utils.GetEnv("OLLAMA_MODEL", "tinyllama", log)
  ollamaTimeout := utils.GetEnvAsDuration("OLLAMA_TIMEOUT", 120*time.Second, log)
  historyLimit := utils.GetEnvAsInt("HISTORY_LIMIT", services.DefaultHistoryLimit, log)
  redisAddress := utils.GetEnv("REDIS_ADDRESS", "", log)
  redisPassword := utils.GetEnv("REDIS_PASSWORD", "", log)
  corsOrigins := utils.GetEnvAsSlice("CORS_ORIGINS", server.DefaultAllowOrigins, log)
  log.Debug("Environment variables loaded for Main :)",
    "port", port,
    "ollamaURL", ollamaURL,
    "ollamaModel", ollamaModel,
    "ollamaTimeout", ollamaTimeout,
    "historyLimit", historyLimit,
    "redisAddress", redisAddress,
    "corsOrigins", corsOrigins,
  )

  // Sqlite Setup
  log.Info("Setting Up Sqlite from Main now...")
  dbPath, err := db.DefaultPath()
  if err != nil {
    log.Error("Could not resolve database path :(", "error", err)
    os.Exit(1)
  }
  sqliteService, err := db.NewSqliteService(log, dbPath)
  if err != nil {
    log.Error("DB init failed :(", "error", err)
    os.Exit(1)
  }
  defer sqliteService.Close()
  if err = sqliteService.AutoMigrateAll(); err != nil {
    log.Error("Sqlite auto migration failed :(", "error", err)
    os.Exit(1)
  }
  theDB := sqliteService.DB()
  log.Info("Sqlite Setup From Main Successful :)", "path", sqliteService.Path())

  // Repositories Setup
  log.Info("Setting Up Repositories from Main now...")
  messageRepo := repos.NewMessageRepo(theDB, log)
  log.Info("Repositories Set Up From Main Successful :)")

  // Websocket Setup
  log.Info("Setting Up Websocket Hub From Main Now :)")
  wsHub := socket.NewHub(log)
  log.Info("Websocket Hub Set Up From Main Successful :)")

  // Redis PubSub
  var redisPubSub *socket.RedisPubSub
  if redisAddress != "" {
    log.Info("Setting Up Redis PubSub From Main Now :)")
    redisChanName := "slotter_chat_broadcast"
    redisPubSub, err = socket.NewRedisPubSub(log, redisAddress, redisPassword, redisChanName)
    if err != nil {
      log.Warn("Failed to init redis pubsub", "error", err)
    } else if err := redisPubSub.StartSubscriber(wsHub); err != nil {
      log.Warn("Failed to subscribe to Redis pub/sub", "error", err)
      redisPubSub.Stop()
      redisPubSub = nil
    } else {
      wsHub.SetRelay(redisPubSub)
      log.Info("Redis pubsub is active!")
    }
  }

  // Services Setup
  log.Info("Setting up Services from Main now...")
  storeService := services.NewChatStoreService(theDB, log, messageRepo)
  generatorService, err := services.NewGeneratorService(log, services.GeneratorConfig{
    BaseURL:  ollamaURL,
    Model:    ollamaModel,
    Timeout:  ollamaTimeout,
    Options:  services.DefaultGenerationOptions(),
  })
  if err != nil {
    log.Error("Fatal error: Cannot init GeneratorService", "error", err)
    os.Exit(1)
  }
  chatService := services.NewChatService(log, storeService, generatorService)
  log.Info("Services Set Up From Main Successful :)")

  //  Handler Setup
  log.Info("Setting Up Handlers from Main now...")
  chatHandler := handlers.NewChatHandler(log, storeService, chatService, wsHub, historyLimit)
  apiHandler := handlers.NewAPIHandler(log, storeService, chatService, wsHub)
  wsHandler := handlers.WsHandler(wsHub, log, corsOrigins)
  log.Info("Handlers Set Up From Main Successful :)")

  // MiddleWare Setup
  log.Info("Setting Up Middleware from Main now...")
  chatSessionMiddleware := middleware.NewChatSessionMiddleware(log, chatService)
  log.Info("Middleware Set Up From Main Successful :)")

  // Router Setup
  log.Info("Setting Up Router from Main now...")
  router := server.NewRouter(server.RouterConfig{
    ChatHandler:            chatHandler,
    APIHandler:             apiHandler,
    ChatSessionMiddleware:  chatSessionMiddleware,
    WsHandler:              wsHandler,
    AllowOrigins:           corsOrigins,
  })
  log.Info("Router Set Up From Main Successful :)")

  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }

  // On Shutdown
  if redisPubSub != nil {
    redisPubSub.Stop()
  }
}
