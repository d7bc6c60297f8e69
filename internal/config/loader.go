package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the planner
// service.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	ShutdownTimeout time.Duration
}

// Load parses configuration values from the current process environment.
//
// When a .env file (or the file named by PLANNER_ENV_FILE) exists it is
// loaded first; real environment variables always win over file entries. The
// loader applies defaults for optional fields and reports localized error
// messages for invalid entries.
func Load() (Config, error) {
	envFile := strings.TrimSpace(os.Getenv("PLANNER_ENV_FILE"))
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("تعذر تحميل ملف البيئة %s: %w", envFile, err)
		}
	}

	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:planner.db?_foreign_keys=on",
		ShutdownTimeout: 10 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("PLANNER_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "PLANNER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("PLANNER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("PLANNER_SHUTDOWN_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "PLANNER_SHUTDOWN_TIMEOUT")
		} else {
			cfg.ShutdownTimeout = timeout
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("قيم متغيرات البيئة غير صالحة: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
