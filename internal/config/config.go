package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection: remote, sqlite or memory
	DataBackend string

	// Remote data service (PostgREST-style API)
	RemoteURL         string
	RemoteAPIKey      string
	RemoteAccessToken string // logged-in user's JWT, scopes relationship lookups

	// Local database
	SQLiteDBPath string

	// AMQP (local-first sync queue)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Participant registry
	ParticipantAKey   string
	ParticipantAName  string
	ParticipantAEmail string
	ParticipantBKey   string
	ParticipantBName  string
	ParticipantBEmail string
	JointKey          string
	JointName         string

	// Reminder mail (bills worker)
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	// Spreadsheet export
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Workers
	OverdueCheckSpec string // cron spec for the bills worker
	SyncInterval     time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend: getEnv("DATA_BACKEND", "memory"),

		RemoteURL:         getEnv("REMOTE_URL", ""),
		RemoteAPIKey:      getEnv("REMOTE_API_KEY", ""),
		RemoteAccessToken: getEnv("REMOTE_ACCESS_TOKEN", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/financas.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "financas"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_transactions"),

		ParticipantAKey:   getEnv("PARTICIPANT_A_KEY", "franklin"),
		ParticipantAName:  getEnv("PARTICIPANT_A_NAME", "Franklim"),
		ParticipantAEmail: getEnv("PARTICIPANT_A_EMAIL", ""),
		ParticipantBKey:   getEnv("PARTICIPANT_B_KEY", "michele"),
		ParticipantBName:  getEnv("PARTICIPANT_B_NAME", "Michele"),
		ParticipantBEmail: getEnv("PARTICIPANT_B_EMAIL", ""),
		JointKey:          getEnv("JOINT_KEY", "casal"),
		JointName:         getEnv("JOINT_NAME", "Casal"),

		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: getEnvInt("SMTP_PORT", 587),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		MailFrom: getEnv("MAIL_FROM", ""),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Contas"),

		OverdueCheckSpec: getEnv("OVERDUE_CHECK_SPEC", "0 6 * * *"),
		SyncInterval:     getEnvDuration("SYNC_INTERVAL", 30*time.Second),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "memory", "sqlite", "remote":
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [memory sqlite remote]", c.DataBackend))
	}

	if c.DataBackend == "remote" {
		if c.RemoteURL == "" {
			errs = append(errs, "REMOTE_URL is required when using the remote backend")
		} else if u, err := url.Parse(c.RemoteURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Sprintf("invalid remote URL '%s': must be http(s)", c.RemoteURL))
		}
		if c.RemoteAPIKey == "" {
			errs = append(errs, "REMOTE_API_KEY is required when using the remote backend")
		}
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if strings.TrimSpace(c.ParticipantAKey) == "" || strings.TrimSpace(c.ParticipantBKey) == "" {
		errs = append(errs, "participant keys cannot be empty")
	} else if c.ParticipantAKey == c.ParticipantBKey {
		errs = append(errs, fmt.Sprintf("participant keys must differ, both are '%s'", c.ParticipantAKey))
	}

	if c.SMTPHost != "" {
		if c.SMTPPort < 1 || c.SMTPPort > 65535 {
			errs = append(errs, fmt.Sprintf("invalid SMTP port %d", c.SMTPPort))
		}
		if c.MailFrom == "" {
			errs = append(errs, "MAIL_FROM is required when SMTP_HOST is provided")
		}
	}

	if c.SyncInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
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
