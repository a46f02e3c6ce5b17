package services

import (
  "context"
  "strings"
  "time"

  "github.com/slotter-org/slotter-chat/internal/logger"
  "github.com/slotter-org/slotter-chat/internal/repos"
  "github.com/slotter-org/slotter-chat/internal/types"
)

const ChatIDLayout = "20060102_150405"

// AskResult is one answered question. Saved is false when the store refused
// the write; the answer is still returned so the page can show it.
type AskResult struct {
  Message   types.Message
  Saved     bool
}

// ChatService runs the question flow: generate, then persist.
type ChatService interface {
  Ask(ctx context.Context, chatID, question string) (*AskResult, error)
  NewChatID() string
}

type chatService struct {
  log         *logger.Logger
  store       ChatStoreService
  generator   GeneratorService
  now         func() time.Time
}

func NewChatService(log *logger.Logger, store ChatStoreService, generator GeneratorService) ChatService {
  return &chatService{
    log:        log.With("service", "ChatService"),
    store:      store,
    generator:  generator,
    now:        time.Now,
  }
}

func (cs *chatService) NewChatID() string {
  return cs.now().Format(ChatIDLayout)
}

func (cs *chatService) Ask(ctx context.Context, chatID, question string) (*AskResult, error) {
  if strings.TrimSpace(question) == "" {
    return nil, repos.ErrEmptyQuestion
  }
  if chatID == "" {
    chatID = types.DefaultChatID
  }
  cs.log.Info("Generating response now...", "chatID", chatID)
  answer := cs.generator.Generate(ctx, question)

  saved, err := cs.store.TrySaveMessage(ctx, question, answer, chatID)
  if err != nil {
    cs.log.Warn("Error saving message", "chatID", chatID, "reason", repos.ReasonOf(err).String(), "error", err)
    return &AskResult{
      Message: types.Message{
        Question:   question,
        Answer:     answer,
        ChatID:     chatID,
        Timestamp:  cs.now().UTC(),
      },
      Saved: false,
    }, nil
  }
  return &AskResult{Message: *saved, Saved: true}, nil
}
