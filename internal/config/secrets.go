package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables carrying collaborator API keys.
const (
	EnvLLMKey    = "NOVITA_KEY"
	EnvTTSKey    = "ELEVAN_LAB"
	EnvSearchKey = "TAVILY"
)

// Secrets are the API keys of the external collaborators. An empty key
// disables the corresponding collaborator.
type Secrets struct {
	LLMKey    string
	TTSKey    string
	SearchKey string
}

// LoadEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored; with no arguments ".env" is tried.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// SecretsFromEnv reads the collaborator keys from the environment.
func SecretsFromEnv() Secrets {
	return Secrets{
		LLMKey:    os.Getenv(EnvLLMKey),
		TTSKey:    os.Getenv(EnvTTSKey),
		SearchKey: os.Getenv(EnvSearchKey),
	}
}
