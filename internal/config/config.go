package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the immutable process configuration, loaded once at startup
// and passed explicitly into the store, service, and server
// constructors.
type Config struct {
	// HTTP Server
	Port string

	// Shared-secret keys accepted by the API gate.
	APIKeys []string

	// Database
	DBPath string

	// Readiness gate
	DBConnectAttempts int
	DBConnectInterval time.Duration

	// AMQP (optional; empty URL disables the export pipeline)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Export worker
	SyncBatchSize int
	SyncInterval  time.Duration

	// Google Sheets export target (optional)
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

func Load() *Config {
	return &Config{
		Port:    getEnv("PORT", "8080"),
		APIKeys: splitKeys(getEnv("API_KEYS", "")),

		DBPath:            getEnv("DB_PATH", "./data/bilancio.db"),
		DBConnectAttempts: getEnvInt("DB_CONNECT_ATTEMPTS", 20),
		DBConnectInterval: getEnvDuration("DB_CONNECT_INTERVAL", 3*time.Second),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "bilancio"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_records"),

		SyncBatchSize: getEnvInt("SYNC_BATCH_SIZE", 10),
		SyncInterval:  getEnvDuration("SYNC_INTERVAL", 30*time.Second),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Records"),
	}
}

// Validate checks the whole configuration and reports every problem in
// one error.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if len(c.APIKeys) == 0 {
		errors = append(errors, "at least one API key must be configured (API_KEYS)")
	}
	for _, key := range c.APIKeys {
		if strings.TrimSpace(key) == "" {
			errors = append(errors, "API keys must not be blank")
			break
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "database path cannot be empty")
	}
	if c.DBConnectAttempts < 1 {
		errors = append(errors, fmt.Sprintf("invalid db connect attempts %d: must be at least 1", c.DBConnectAttempts))
	}
	if c.DBConnectInterval < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid db connect interval %v: must be at least 100ms", c.DBConnectInterval))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SyncBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at least 1", c.SyncBatchSize))
	} else if c.SyncBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at most 1000", c.SyncBatchSize))
	}

	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func splitKeys(s string) []string {
	if s == "" {
		return nil
	}
	var keys []string
	for _, part := range strings.Split(s, ",") {
		if key := strings.TrimSpace(part); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
