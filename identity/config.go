package identity

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/xy-planning-network/budget"
)

// A Config is the static record identifying the hosted project
// the app authenticates against and stores documents in.
type Config struct {
	APIKey            string `env:"FIREBASE_API_KEY,required,notEmpty"`
	AuthDomain        string `env:"FIREBASE_AUTH_DOMAIN"`
	ProjectID         string `env:"FIREBASE_PROJECT_ID,required,notEmpty"`
	StorageBucket     string `env:"FIREBASE_STORAGE_BUCKET"`
	MessagingSenderID string `env:"FIREBASE_MESSAGING_SENDER_ID"`
	AppID             string `env:"FIREBASE_APP_ID"`
}

// ConfigFromEnv parses a Config out of FIREBASE_* environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %s", budget.ErrBadConfig, err)
	}

	return cfg, nil
}

// Valid asserts the Config carries the values the provider cannot work without.
func (c Config) Valid() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: APIKey cannot be %q", budget.ErrBadConfig, c.APIKey)
	}

	if c.ProjectID == "" {
		return fmt.Errorf("%w: ProjectID cannot be %q", budget.ErrBadConfig, c.ProjectID)
	}

	return nil
}
