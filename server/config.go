// Package server is the MedAssist companion service: voice transcription
// for the client's raw-audio capture path and the drug-information
// endpoint both clients and typed queries go through.
package server

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the service configuration, read from the environment with
// an optional .env file underneath.
type Config struct {
	Port string `envconfig:"PORT" default:"5000"`

	// OpenAIAPIKey authenticates Whisper transcription. When empty the
	// /process-voice route answers 503 instead of failing at startup;
	// the drug endpoint works without it.
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY" default:""`

	// DBPath is the SQLite file caching OpenFDA results.
	DBPath string `envconfig:"MEDASSIST_DB" default:"medassist.db"`

	// OpenFDA toggles the upstream label lookup for drugs missing from
	// the embedded catalog.
	OpenFDA    bool   `envconfig:"MEDASSIST_OPENFDA" default:"true"`
	OpenFDAURL string `envconfig:"MEDASSIST_OPENFDA_URL" default:"https://api.fda.gov"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// LoadConfig reads a .env file when one exists, then the environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
