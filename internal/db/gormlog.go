package db

import (
  "time"

  gormlogger "gorm.io/gorm/logger"

  "github.com/slotter-org/slotter-chat/internal/logger"
)

type gormWriter struct {
  log *logger.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
  w.log.Zap().Sugar().Warnf(format, args...)
}

// NewGormLogger routes gorm's slow query and error output through zap.
func NewGormLogger(log *logger.Logger) gormlogger.Interface {
  return gormlogger.New(gormWriter{log: log.With("component", "gorm")}, gormlogger.Config{
    SlowThreshold:              200 * time.Millisecond,
    LogLevel:                   gormlogger.Warn,
    IgnoreRecordNotFoundError:  true,
    Colorful:                   false,
  })
}
