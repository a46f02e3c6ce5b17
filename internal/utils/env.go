package utils

import (
  "os"
  "strconv"
  "strings"
  "time"

  "github.com/joho/godotenv"

  "github.com/slotter-org/slotter-chat/internal/logger"
)

// LoadDotEnv loads variables from the given .env files (default ".env").
// A missing file is not an error; variables already set in the process win.
func LoadDotEnv(log *logger.Logger, files ...string) {
  if len(files) == 0 {
    files = []string{".env"}
  }
  for _, f := range files {
    if _, err := os.Stat(f); err != nil {
      if log != nil {
        log.Debug("No env file found, skipping", "file", f)
      }
      continue
    }
    if err := godotenv.Load(f); err != nil {
      if log != nil {
        log.Warn("Failed to load env file", "file", f, "error", err)
      }
      continue
    }
    if log != nil {
      log.Info("Loaded env file :)", "file", f)
    }
  }
}

func GetEnv(key, defaultVal string, log *logger.Logger) string {
  if log != nil {
    log = log.With("env_var", key)
    log.Debug("Attempting to load environment variable (string)...")
  }
  val, ok := os.LookupEnv(key)
  if !ok {
    if log != nil {
      log.Debug("Environment variable not found, using default value", "defaultValue", defaultVal)
    }
    return defaultVal
  }
  if log != nil {
    log.Debug("Environment variable found (string), using environment variable value", "value", val)
  }
  return val
}

func GetEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
  if log != nil {
    log = log.With("env_var", key)
    log.Debug("Attempting to load environment variable (int)...")
  }
  valStr, ok := os.LookupEnv(key)
  if !ok {
    if log != nil {
      log.Debug("Environment variable not found, using default int", "defaultVal", defaultVal)
    }
    return defaultVal
  }
  i, err := strconv.Atoi(valStr)
  if err != nil {
    if log != nil {
      log.Debug("Environment variable could not be parsed as int, using default", "providedVal", valStr, "defaultVal", defaultVal, "error", err)
    }
    return defaultVal
  }
  if log != nil {
    log.Debug("Environment variable found (int), using environment variable value", "value", i)
  }
  return i
}

func GetEnvAsDuration(key string, defaultVal time.Duration, log *logger.Logger) time.Duration {
  if log != nil {
    log = log.With("env_var", key)
    log.Debug("Attempting to load environment variable (duration)...")
  }
  valStr, ok := os.LookupEnv(key)
  if !ok {
    if log != nil {
      log.Debug("Environment variable not found, using default duration", "defaultVal", defaultVal)
    }
    return defaultVal
  }
  d, err := time.ParseDuration(valStr)
  if err != nil {
    if log != nil {
      log.Debug("Environment variable could not be parsed as duration, using default", "providedVal", valStr, "defaultVal", defaultVal, "error", err)
    }
    return defaultVal
  }
  return d
}

// GetEnvAsSlice splits a comma separated variable, dropping empty entries.
func GetEnvAsSlice(key string, defaultVal []string, log *logger.Logger) []string {
  raw := GetEnv(key, "", log)
  if raw == "" {
    return defaultVal
  }
  var out []string
  for _, part := range strings.Split(raw, ",") {
    if p := strings.TrimSpace(part); p != "" {
      out = append(out, p)
    }
  }
  if len(out) == 0 {
    return defaultVal
  }
  return out
}
