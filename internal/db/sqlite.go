package db

import (
  "fmt"
  "net/url"
  "os"
  "path/filepath"
  "strings"
  "time"

  "gorm.io/driver/sqlite"
  "gorm.io/gorm"

  "github.com/slotter-org/slotter-chat/internal/logger"
  "github.com/slotter-org/slotter-chat/internal/types"
)

const DBFileName = "chat_history.db"

// Per-connection pragmas. They live in the DSN because connections are not
// kept idle, so every operation may be served by a fresh connection.
const sqlitePragmas = "_journal_mode=WAL&_synchronous=OFF&_cache_size=-65536&_foreign_keys=1&_busy_timeout=5000"

type SqliteService struct {
  db    *gorm.DB
  path  string
  log   *logger.Logger
}

// DefaultPath places the database file next to the running executable.
func DefaultPath() (string, error) {
  exe, err := os.Executable()
  if err != nil {
    return "", fmt.Errorf("failed to resolve executable path: %w", err)
  }
  exe, err = filepath.EvalSymlinks(exe)
  if err != nil {
    return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
  }
  return filepath.Join(filepath.Dir(exe), DBFileName), nil
}

// DSN builds a file: URI for path. The path is percent-encoded so characters
// like '?', '#' and '%' in a directory name stay part of the file name.
func DSN(path string) string {
  if abs, err := filepath.Abs(path); err == nil {
    path = abs
  }
  p := filepath.ToSlash(path)
  if !strings.HasPrefix(p, "/") {
    p = "/" + p
  }
  u := url.URL{Scheme: "file", Path: p, RawQuery: sqlitePragmas}
  return u.String()
}

func NewSqliteService(log *logger.Logger, path string) (*SqliteService, error) {
  serviceLog := log.With("service", "SqliteService")

  //1) Make sure the directory holding the file exists
  serviceLog.Info("Attempting to prepare SQLite directory now...", "path", path)
  if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
    serviceLog.Error("Failed to create SQLite directory :(", "error", err)
    return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
  }

  //2) Open the database
  dsn := DSN(path)
  serviceLog.Debug("SQLite DSN built :)", "dsn", dsn)
  db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
    Logger:         NewGormLogger(serviceLog),
    TranslateError: true,
    NowFunc:        func() time.Time { return time.Now().UTC() },
  })
  if err != nil {
    serviceLog.Error("Failed to open SQLite DB", "error", err)
    return nil, fmt.Errorf("failed to open sqlite db: %w", err)
  }

  //3) No idle connections: each operation opens and releases its own
  sqlDB, err := db.DB()
  if err != nil {
    serviceLog.Error("Failed to get sql.DB from gorm", "error", err)
    return nil, fmt.Errorf("failed to get sql.DB: %w", err)
  }
  sqlDB.SetMaxIdleConns(0)

  //4) Ping so an inaccessible file fails here and not on first use
  if err := sqlDB.Ping(); err != nil {
    serviceLog.Error("Failed to ping SQLite DB :(", "error", err)
    return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
  }
  serviceLog.Info("Successfully opened SQLite DB :)", "path", path)

  return &SqliteService{db: db, path: path, log: serviceLog}, nil
}

// AutoMigrateAll creates the messages table and its indexes when missing.
// Safe to run on every start.
func (s *SqliteService) AutoMigrateAll() error {
  s.log.Info("Starting AutoMigrateAll for all GORM models now...")
  if err := s.db.AutoMigrate(&types.Message{}); err != nil {
    s.log.Error("AutoMigrateAll failed :(", "error", err)
    return fmt.Errorf("failed to migrate messages table: %w", err)
  }
  s.log.Info("AutoMigrateAll completed successfully :)")
  return nil
}

func (s *SqliteService) DB() *gorm.DB {
  return s.db
}

func (s *SqliteService) Path() string {
  return s.path
}

func (s *SqliteService) Close() error {
  sqlDB, err := s.db.DB()
  if err != nil {
    return err
  }
  s.log.Info("Closing SQLite DB now...")
  return sqlDB.Close()
}
