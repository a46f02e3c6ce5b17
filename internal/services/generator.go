package services

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "strings"
  "sync/atomic"
  "time"

  "github.com/slotter-org/slotter-chat/internal/logger"
)

const (
  promptTemplate    = "<human>: %s\n<assistant>:"
  assistantMarker   = "<assistant>:"
  failureReplyFmt   = "I apologize, but I encountered an error: %s"
)

// GenerationOptions are the fixed sampling parameters sent with every prompt.
type GenerationOptions struct {
  Temperature   float64   `json:"temperature"`
  TopP          float64   `json:"top_p"`
  NumPredict    int       `json:"num_predict"`
}

func DefaultGenerationOptions() GenerationOptions {
  return GenerationOptions{
    Temperature:  0.7,
    TopP:         0.9,
    NumPredict:   512,
  }
}

type GeneratorConfig struct {
  BaseURL   string
  Model     string
  Timeout   time.Duration
  Options   GenerationOptions
}

// GeneratorService turns a question into an answer using a local model
// server. Generate always returns text: failures come back as an apology.
type GeneratorService interface {
  Generate(ctx context.Context, question string) string
  Warmup(ctx context.Context) error
}

type generatorService struct {
  log       *logger.Logger
  client    *http.Client
  baseURL   string
  model     string
  options   GenerationOptions
  loaded    atomic.Bool
}

type generateRequest struct {
  Model     string              `json:"model"`
  Prompt    string              `json:"prompt,omitempty"`
  Stream    bool                `json:"stream"`
  Options   *GenerationOptions  `json:"options,omitempty"`
}

type generateResponse struct {
  Model     string    `json:"model"`
  Response  string    `json:"response"`
  Done      bool      `json:"done"`
  Error     string    `json:"error,omitempty"`
}

func NewGeneratorService(log *logger.Logger, cfg GeneratorConfig) (GeneratorService, error) {
  serviceLog := log.With("service", "GeneratorService")
  if cfg.BaseURL == "" {
    return nil, fmt.Errorf("missing generator base URL")
  }
  if cfg.Model == "" {
    return nil, fmt.Errorf("missing generator model name")
  }
  if cfg.Timeout <= 0 {
    cfg.Timeout = 120 * time.Second
  }
  if cfg.Options == (GenerationOptions{}) {
    cfg.Options = DefaultGenerationOptions()
  }
  return &generatorService{
    log:      serviceLog,
    client:   &http.Client{Timeout: cfg.Timeout},
    baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
    model:    cfg.Model,
    options:  cfg.Options,
  }, nil
}

func BuildPrompt(question string) string {
  return fmt.Sprintf(promptTemplate, question)
}

// ExtractAnswer keeps only the text after the last assistant marker.
func ExtractAnswer(raw string) string {
  if i := strings.LastIndex(raw, assistantMarker); i >= 0 {
    raw = raw[i+len(assistantMarker):]
  }
  return strings.TrimSpace(raw)
}

func FailureReply(err error) string {
  return fmt.Sprintf(failureReplyFmt, err.Error())
}

// Warmup asks the server to load the model. An empty prompt loads it without
// generating anything.
func (gs *generatorService) Warmup(ctx context.Context) error {
  if gs.loaded.Load() {
    return nil
  }
  gs.log.Info("Loading AI model (this will only happen once)...", "model", gs.model)
  if _, err := gs.call(ctx, generateRequest{Model: gs.model, Stream: false}); err != nil {
    gs.log.Warn("failed to load model", "model", gs.model, "error", err)
    return err
  }
  gs.loaded.Store(true)
  gs.log.Info("AI model loaded :)", "model", gs.model)
  return nil
}

func (gs *generatorService) Generate(ctx context.Context, question string) string {
  if err := gs.Warmup(ctx); err != nil {
    return FailureReply(err)
  }
  opts := gs.options
  start := time.Now()
  out, err := gs.call(ctx, generateRequest{
    Model:    gs.model,
    Prompt:   BuildPrompt(question),
    Stream:   false,
    Options:  &opts,
  })
  if err != nil {
    gs.log.Warn("generation failed", "error", err)
    return FailureReply(err)
  }
  answer := ExtractAnswer(out.Response)
  gs.log.Info("Generation success", "model", gs.model, "duration", time.Since(start), "answerLen", len(answer))
  return answer
}

func (gs *generatorService) call(ctx context.Context, body generateRequest) (generateResponse, error) {
  var out generateResponse

  payload, err := json.Marshal(body)
  if err != nil {
    return out, fmt.Errorf("failed to encode generate request: %w", err)
  }
  req, err := http.NewRequestWithContext(ctx, http.MethodPost, gs.baseURL+"/api/generate", bytes.NewReader(payload))
  if err != nil {
    gs.log.Warn("failed to build new request", "error", err)
    return out, err
  }
  req.Header.Set("Content-Type", "application/json")

  resp, err := gs.client.Do(req)
  if err != nil {
    gs.log.Warn("failed to call model server", "error", err)
    return out, err
  }
  defer resp.Body.Close()

  bodyBytes, err := io.ReadAll(resp.Body)
  if err != nil {
    gs.log.Warn("failed to read model server response body", "error", err)
    return out, err
  }
  if resp.StatusCode < 200 || resp.StatusCode > 299 {
    gs.log.Warn("model server responded with non-2xx", "statusCode", resp.StatusCode, "body", string(bodyBytes))
    return out, fmt.Errorf("model server HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
  }
  if err := json.Unmarshal(bodyBytes, &out); err != nil {
    gs.log.Warn("failed to decode model server response", "error", err)
    return out, fmt.Errorf("invalid model server response: %w", err)
  }
  if out.Error != "" {
    return out, fmt.Errorf("model server error: %s", out.Error)
  }
  return out, nil
}
