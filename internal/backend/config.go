package backend

import (
	"fmt"

	"github.com/frankmaximo93/shared-financial-journey/internal/config"
)

// Config holds what each backend needs to come up.
type Config struct {
	Type Type

	// Remote data service
	RemoteURL         string
	RemoteAPIKey      string
	RemoteAccessToken string

	// Local-first store
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := Type(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		RemoteURL:         appConfig.RemoteURL,
		RemoteAPIKey:      appConfig.RemoteAPIKey,
		RemoteAccessToken: appConfig.RemoteAccessToken,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case RemoteBackend:
		if c.RemoteURL == "" {
			return fmt.Errorf("remote URL is required for the remote backend")
		}
		if c.RemoteAPIKey == "" {
			return fmt.Errorf("remote API key is required for the remote backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for the sqlite backend")
		}
		// AMQP stays optional: without it the poller still syncs.
	case MemoryBackend:
	}

	return nil
}
