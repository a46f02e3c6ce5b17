package logger

import (
  "fmt"

  "go.uber.org/zap"
  "go.uber.org/zap/zapcore"
)

type Logger struct {
  sugar *zap.SugaredLogger
}

// New builds a zap-backed logger. mode is "development" or "production".
func New(mode string) (*Logger, error) {
  var cfg zap.Config
  switch mode {
  case "production":
    cfg = zap.NewProductionConfig()
  case "development", "":
    cfg = zap.NewDevelopmentConfig()
    cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
  default:
    return nil, fmt.Errorf("unknown log mode %q", mode)
  }
  base, err := cfg.Build(zap.AddCallerSkip(1))
  if err != nil {
    return nil, fmt.Errorf("failed to build zap logger: %w", err)
  }
  return &Logger{sugar: base.Sugar()}, nil
}

// NewFromZap wraps an existing zap logger, mostly for tests (zaptest / observer).
func NewFromZap(z *zap.Logger) *Logger {
  return &Logger{sugar: z.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func NewNop() *Logger {
  return &Logger{sugar: zap.NewNop().Sugar()}
}

func (l *Logger) With(keysAndValues ...interface{}) *Logger {
  return &Logger{sugar: l.sugar.With(keysAndValues...)}
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
  l.sugar.Debugw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
  l.sugar.Infow(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
  l.sugar.Warnw(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
  l.sugar.Errorw(msg, keysAndValues...)
}

func (l *Logger) Sync() error {
  return l.sugar.Sync()
}

// Zap exposes the underlying logger for libraries that want a *zap.Logger.
func (l *Logger) Zap() *zap.Logger {
  return l.sugar.Desugar()
}
