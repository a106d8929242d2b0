package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/domain"
)

// Config holds the application configuration
type Config struct {
	// Tracked repositories
	Repos []domain.Repository

	// Docker Hub
	HubBaseURL      string
	HubRequestPause time.Duration

	// Storage
	StorageType string // "sqlite", "postgres" or "memory"
	SQLitePath  string
	PostgresURL string

	// Sampling
	SampleInterval time.Duration

	// API Server
	APIPort string
	APIHost string

	// CLI
	APIEndpoint string
}

// reposFile is the shape of the optional TOML repository list
type reposFile struct {
	Repos []domain.Repository `toml:"repos"`
}

// Load loads the configuration from environment variables and the optional
// repository list file. It is called once at startup; the result is passed
// explicitly to every component that needs it.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		HubBaseURL:      getEnv("HUB_BASE_URL", "https://hub.docker.com"),
		HubRequestPause: getDuration("HUB_REQUEST_PAUSE", time.Second),
		StorageType:     getEnv("STORAGE_TYPE", "sqlite"),
		SQLitePath:      getEnv("SQLITE_PATH", "./pulls.db"),
		PostgresURL:     getEnv("POSTGRES_URL", ""),
		SampleInterval:  getDuration("SAMPLE_INTERVAL", time.Hour),
		APIPort:         getEnv("API_PORT", "8080"),
		APIHost:         getEnv("API_HOST", "localhost"),
		APIEndpoint:     getEnv("API_ENDPOINT", "http://localhost:8080"),
	}

	repos, err := loadRepos(getEnv("REPOS", ""), getEnv("REPOS_FILE", ""))
	if err != nil {
		return nil, err
	}
	cfg.Repos = repos

	return cfg, nil
}

// loadRepos merges the REPOS env list with the optional TOML file
func loadRepos(envList, filePath string) ([]domain.Repository, error) {
	var repos []domain.Repository
	seen := make(map[string]bool)

	if filePath != "" {
		var rf reposFile
		if _, err := toml.DecodeFile(filePath, &rf); err != nil {
			return nil, &ConfigError{Field: "REPOS_FILE", Message: err.Error()}
		}
		for _, r := range rf.Repos {
			if r.Org == "" || r.Name == "" {
				return nil, &ConfigError{Field: "REPOS_FILE", Message: "each [[repos]] entry needs org and name"}
			}
			if !seen[r.Key()] {
				seen[r.Key()] = true
				repos = append(repos, r)
			}
		}
	}

	if envList != "" {
		for _, item := range strings.Split(envList, ",") {
			r, err := domain.ParseRepository(item)
			if err != nil {
				return nil, &ConfigError{Field: "REPOS", Message: err.Error()}
			}
			if !seen[r.Key()] {
				seen[r.Key()] = true
				repos = append(repos, r)
			}
		}
	}

	return repos, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration returns a duration environment variable or a default value
func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.StorageType {
	case "sqlite", "postgres", "memory":
	default:
		return &ConfigError{Field: "STORAGE_TYPE", Message: "must be 'sqlite', 'postgres' or 'memory'"}
	}
	if c.StorageType == "postgres" && c.PostgresURL == "" {
		return &ConfigError{Field: "POSTGRES_URL", Message: "PostgreSQL URL is required when STORAGE_TYPE is 'postgres'"}
	}
	if c.HubRequestPause < 0 {
		return &ConfigError{Field: "HUB_REQUEST_PAUSE", Message: "must not be negative"}
	}
	if c.SampleInterval <= 0 {
		return &ConfigError{Field: "SAMPLE_INTERVAL", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
