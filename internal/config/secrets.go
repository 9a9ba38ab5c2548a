package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Secrets sensitive configuration loaded from a .secrets file in dotenv format
type Secrets struct {
	values map[string]string
}

// NewSecrets creates a new Secrets instance
func NewSecrets() *Secrets {
	return &Secrets{
		values: make(map[string]string),
	}
}

// SecretsPath returns the secrets file path inside dir
func SecretsPath(dir string) string {
	return filepath.Join(dir, ".secrets")
}

// LoadSecrets loads the .secrets file from dir. A missing file yields
// empty secrets and no error.
func LoadSecrets(dir string) (*Secrets, error) {
	secrets := NewSecrets()

	path := SecretsPath(dir)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return secrets, nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return secrets, err
	}
	secrets.values = values
	return secrets, nil
}

// Get returns the value for a key
func (s *Secrets) Get(key string) string {
	if s == nil || s.values == nil {
		return ""
	}
	return s.values[key]
}

// GetOrDefault returns the value for a key, or the default value if not found
func (s *Secrets) GetOrDefault(key, defaultValue string) string {
	if value := s.Get(key); value != "" {
		return value
	}
	return defaultValue
}

// GetSearchAPIKey returns the search provider API key. SEARXNG_API_KEY is
// accepted as an alias.
func (s *Secrets) GetSearchAPIKey() string {
	return s.GetOrDefault("SEARCH_API_KEY", s.Get("SEARXNG_API_KEY"))
}
