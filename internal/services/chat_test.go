package services

import (
  "context"
  "regexp"
  "testing"
  "time"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "github.com/slotter-org/slotter-chat/internal/logger"
  "github.com/slotter-org/slotter-chat/internal/repos"
  "github.com/slotter-org/slotter-chat/internal/types"
)

type fakeGenerator struct {
  answer    string
  questions []string
}

func (f *fakeGenerator) Generate(_ context.Context, question string) string {
  f.questions = append(f.questions, question)
  return f.answer
}

func (f *fakeGenerator) Warmup(context.Context) error { return nil }

func TestChatService_AskGeneratesThenSaves(t *testing.T) {
  store, _ := newTestStore(t, WithClock(newStepClock().Now))
  gen := &fakeGenerator{answer: "AI is..."}
  chat := NewChatService(logger.NewNop(), store, gen)
  ctx := context.Background()

  res, err := chat.Ask(ctx, "c1", "What is AI?")
  require.NoError(t, err)
  assert.True(t, res.Saved)
  assert.NotZero(t, res.Message.ID)
  assert.Equal(t, "What is AI?", res.Message.Question)
  assert.Equal(t, "AI is...", res.Message.Answer)
  assert.Equal(t, []string{"What is AI?"}, gen.questions)

  history := store.GetChatHistory(ctx, "c1", 10)
  require.Len(t, history, 1)
  assert.Equal(t, res.Message.ID, history[0].ID)
}

func TestChatService_AskKeepsQuestionVerbatim(t *testing.T) {
  store, _ := newTestStore(t, WithClock(newStepClock().Now))
  gen := &fakeGenerator{answer: "ok"}
  chat := NewChatService(logger.NewNop(), store, gen)
  ctx := context.Background()
  raw := "  indented question\n"

  res, err := chat.Ask(ctx, "c1", raw)
  require.NoError(t, err)
  assert.Equal(t, raw, res.Message.Question)
  assert.Equal(t, []string{raw}, gen.questions)

  history := store.GetChatHistory(ctx, "c1", 10)
  require.Len(t, history, 1)
  assert.Equal(t, raw, history[0].Question)
}

func TestChatService_AskEmptyQuestion(t *testing.T) {
  store, _ := newTestStore(t)
  gen := &fakeGenerator{answer: "unused"}
  chat := NewChatService(logger.NewNop(), store, gen)

  _, err := chat.Ask(context.Background(), "c1", "   ")
  assert.ErrorIs(t, err, repos.ErrEmptyQuestion)
  assert.Empty(t, gen.questions)
}

func TestChatService_AskDefaultsChatID(t *testing.T) {
  store, _ := newTestStore(t)
  chat := NewChatService(logger.NewNop(), store, &fakeGenerator{answer: "a"})

  res, err := chat.Ask(context.Background(), "", "q")
  require.NoError(t, err)
  assert.Equal(t, types.DefaultChatID, res.Message.ChatID)
}

func TestChatService_AskFailedSaveStillAnswers(t *testing.T) {
  fixed := time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC)
  store, _ := newTestStore(t, WithClock(func() time.Time { return fixed }))
  chat := NewChatService(logger.NewNop(), store, &fakeGenerator{answer: "same tick"})
  ctx := context.Background()

  first, err := chat.Ask(ctx, "c1", "one")
  require.NoError(t, err)
  require.True(t, first.Saved)

  second, err := chat.Ask(ctx, "c1", "two")
  require.NoError(t, err)
  assert.False(t, second.Saved)
  assert.Equal(t, "same tick", second.Message.Answer)
  assert.Len(t, store.GetChatHistory(ctx, "c1", 10), 1)
}

func TestChatService_NewChatID(t *testing.T) {
  chat := NewChatService(logger.NewNop(), nil, nil)
  assert.Regexp(t, regexp.MustCompile(`^\d{8}_\d{6}$`), chat.NewChatID())
}
