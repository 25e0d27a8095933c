// Package config loads the process configuration from the environment.
// The signing secret and token lifetime live here and are injected into
// the token codec at startup; nothing reads them ambiently.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "MARKBOOK"

// Config is everything the service needs at startup.
type Config struct {
	ListenAddr  string        `envconfig:"LISTEN_ADDR" default:":8080"`
	DatabaseDSN string        `envconfig:"PG_DSN" required:"true"`
	AuthSecret  string        `envconfig:"AUTH_SECRET" required:"true"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"1h"`
	BcryptCost  int           `envconfig:"BCRYPT_COST" default:"10"`
	TraceStdout bool          `envconfig:"TRACE_STDOUT" default:"false"`
}

// Load reads MARKBOOK_-prefixed variables.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
