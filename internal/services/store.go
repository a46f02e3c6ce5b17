package services

import (
  "context"
  "time"

  "gorm.io/gorm"

  "github.com/slotter-org/slotter-chat/internal/logger"
  "github.com/slotter-org/slotter-chat/internal/repos"
  "github.com/slotter-org/slotter-chat/internal/types"
)

const (
  DefaultHistoryLimit = 50
  DefaultSearchLimit  = 10
)

// ChatStoreService is the whole read/write surface over stored messages.
//
// The plain methods never fail: problems are logged and reported as false or
// an empty slice. The Try variants return the underlying *repos.StoreError so
// a caller can tell "no rows" from "query failed".
type ChatStoreService interface {
  SaveMessage(ctx context.Context, question, answer, chatID string) bool
  GetChatHistory(ctx context.Context, chatID string, limit int) []*types.Message
  DeleteChat(ctx context.Context, chatID string) bool
  GetChatFolders(ctx context.Context) []*types.ChatFolder
  SearchMessages(ctx context.Context, query string, limit int) []*types.Message

  TrySaveMessage(ctx context.Context, question, answer, chatID string) (*types.Message, error)
  TryGetChatHistory(ctx context.Context, chatID string, limit int) ([]*types.Message, error)
  TryDeleteChat(ctx context.Context, chatID string) (int64, error)
  TryGetChatFolders(ctx context.Context) ([]*types.ChatFolder, error)
  TrySearchMessages(ctx context.Context, query string, limit int) ([]*types.Message, error)
}

type StoreOption func(*chatStoreService)

// WithClock replaces time.Now as the source of message timestamps.
func WithClock(now func() time.Time) StoreOption {
  return func(s *chatStoreService) {
    s.now = now
  }
}

type chatStoreService struct {
  db            *gorm.DB
  log           *logger.Logger
  messageRepo   repos.MessageRepo
  now           func() time.Time
}

func NewChatStoreService(db *gorm.DB, log *logger.Logger, messageRepo repos.MessageRepo, opts ...StoreOption) ChatStoreService {
  s := &chatStoreService{
    db:           db,
    log:          log.With("service", "ChatStoreService"),
    messageRepo:  messageRepo,
    now:          time.Now,
  }
  for _, opt := range opts {
    opt(s)
  }
  return s
}

func (s *chatStoreService) SaveMessage(ctx context.Context, question, answer, chatID string) bool {
  if _, err := s.TrySaveMessage(ctx, question, answer, chatID); err != nil {
    s.log.Warn("Error saving message", "chatID", chatID, "reason", repos.ReasonOf(err).String(), "error", err)
    return false
  }
  return true
}

func (s *chatStoreService) TrySaveMessage(ctx context.Context, question, answer, chatID string) (*types.Message, error) {
  if chatID == "" {
    chatID = types.DefaultChatID
  }
  msg := &types.Message{
    Question:   question,
    Answer:     answer,
    ChatID:     chatID,
    Timestamp:  s.now().UTC(),
  }
  var saved *types.Message
  err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    m, createErr := s.messageRepo.Create(ctx, tx, msg)
    if createErr != nil {
      return createErr
    }
    saved = m
    return nil
  })
  if err != nil {
    return nil, txErr("save message", err)
  }
  return saved, nil
}

func (s *chatStoreService) GetChatHistory(ctx context.Context, chatID string, limit int) []*types.Message {
  msgs, err := s.TryGetChatHistory(ctx, chatID, limit)
  if err != nil {
    s.log.Warn("Error getting chat history", "chatID", chatID, "error", err)
    return []*types.Message{}
  }
  return msgs
}

func (s *chatStoreService) TryGetChatHistory(ctx context.Context, chatID string, limit int) ([]*types.Message, error) {
  if limit <= 0 {
    limit = DefaultHistoryLimit
  }
  return s.messageRepo.GetHistory(ctx, nil, chatID, limit)
}

func (s *chatStoreService) DeleteChat(ctx context.Context, chatID string) bool {
  n, err := s.TryDeleteChat(ctx, chatID)
  if err != nil {
    s.log.Warn("Error deleting chat", "chatID", chatID, "error", err)
    return false
  }
  return n > 0
}

func (s *chatStoreService) TryDeleteChat(ctx context.Context, chatID string) (int64, error) {
  var deleted int64
  err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    n, delErr := s.messageRepo.DeleteByChatID(ctx, tx, chatID)
    if delErr != nil {
      return delErr
    }
    deleted = n
    return nil
  })
  if err != nil {
    return 0, txErr("delete chat", err)
  }
  return deleted, nil
}

func (s *chatStoreService) GetChatFolders(ctx context.Context) []*types.ChatFolder {
  folders, err := s.TryGetChatFolders(ctx)
  if err != nil {
    s.log.Warn("Error getting chat folders", "error", err)
    return []*types.ChatFolder{}
  }
  return folders
}

func (s *chatStoreService) TryGetChatFolders(ctx context.Context) ([]*types.ChatFolder, error) {
  return s.messageRepo.GetFolders(ctx, nil)
}

func (s *chatStoreService) SearchMessages(ctx context.Context, query string, limit int) []*types.Message {
  msgs, err := s.TrySearchMessages(ctx, query, limit)
  if err != nil {
    s.log.Warn("Error searching messages", "query", query, "error", err)
    return []*types.Message{}
  }
  return msgs
}

func (s *chatStoreService) TrySearchMessages(ctx context.Context, query string, limit int) ([]*types.Message, error) {
  if limit <= 0 {
    limit = DefaultSearchLimit
  }
  return s.messageRepo.Search(ctx, nil, query, limit)
}

// txErr keeps repo errors as they are and classifies failures to begin or
// commit the transaction itself.
func txErr(op string, err error) error {
  if repos.ReasonOf(err) != repos.ReasonUnknown {
    return err
  }
  return &repos.StoreError{Op: op, Reason: repos.ReasonUnavailable, Err: err}
}
