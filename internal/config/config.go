package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"knowledge-ingest/internal/models"
)

const (
	ProviderOpenAI          = "openai"
	ProviderOllama          = "ollama"
	ProviderLangchainOpenAI = "langchain-openai"

	StoreNone     = "none"
	StoreChromem  = "chromem"
	StorePostgres = "postgres"

	DriverPgdriver = "pgdriver"
	DriverPQ       = "pq"

	defaultTimeout     = 30 * time.Second
	defaultConcurrency = 4
	defaultCollection  = "knowledge"
	defaultStorePath   = "./chromemdb"
	defaultLogLevel    = "info"
)

type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Store     StoreConfig     `yaml:"store"`
	Database  DatabaseConfig  `yaml:"database"`
}

// EmbeddingConfig selects the embedding provider. Model is fixed for the whole process.
type EmbeddingConfig struct {
	Provider string        `yaml:"provider"`
	BaseURL  string        `yaml:"base_url"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

type IngestConfig struct {
	Concurrency int `yaml:"concurrency"`
}

type StoreConfig struct {
	Kind          string `yaml:"kind"`
	Path          string `yaml:"path"`
	Collection    string `yaml:"collection"`
	InMemory      bool   `yaml:"in_memory"`
	Compress      bool   `yaml:"compress"`
	EncryptionKey string `yaml:"encryption_key"`
}

type DatabaseConfig struct {
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	Password   string `yaml:"password"`
	Debug      bool   `yaml:"debug"`
	VectorSize int    `yaml:"vector_size"`
}

// LoadConfig reads the yaml file, loads .env if present and applies env overrides.
// A missing file is not an error: defaults plus environment are enough to run.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %v", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	cfg.applyEnv()
	cfg.ApplyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		c.Embedding.APIKey = v
	}
	if v := os.Getenv("EMBEDDING_BASE_URL"); v != "" {
		c.Embedding.BaseURL = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		c.Embedding.Model = v
	}
	if v := os.Getenv("EMBEDDING_PROVIDER"); v != "" {
		c.Embedding.Provider = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// ApplyDefaults fills every unset value
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}

	c.Embedding.Provider = strings.ToLower(strings.TrimSpace(c.Embedding.Provider))
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderOpenAI
	}
	if c.Embedding.BaseURL == "" {
		if c.Embedding.Provider == ProviderOllama {
			c.Embedding.BaseURL = models.DefaultOllamaBase
		} else {
			c.Embedding.BaseURL = models.DefaultEmbeddingBase
		}
	}
	c.Embedding.BaseURL = strings.TrimSuffix(c.Embedding.BaseURL, "/")
	if c.Embedding.Model == "" {
		c.Embedding.Model = models.DefaultEmbeddingModel
	}
	if c.Embedding.Timeout <= 0 {
		c.Embedding.Timeout = defaultTimeout
	}

	if c.Ingest.Concurrency <= 0 {
		c.Ingest.Concurrency = defaultConcurrency
	}

	if c.Store.Kind == "" {
		c.Store.Kind = StoreNone
	}
	if c.Store.Path == "" {
		c.Store.Path = defaultStorePath
	}
	if c.Store.Collection == "" {
		c.Store.Collection = defaultCollection
	}

	if c.Database.Driver == "" {
		c.Database.Driver = DriverPgdriver
	}
}

// Validate checks the values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case ProviderOpenAI, ProviderOllama, ProviderLangchainOpenAI:
	default:
		return fmt.Errorf("%w: unknown embedding provider %q", models.ErrConfiguration, c.Embedding.Provider)
	}

	switch c.Store.Kind {
	case StoreNone, StoreChromem:
	case StorePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("%w: database dsn is required for the postgres store", models.ErrConfiguration)
		}
		if c.Database.Driver != DriverPgdriver && c.Database.Driver != DriverPQ {
			return fmt.Errorf("%w: unknown database driver %q", models.ErrConfiguration, c.Database.Driver)
		}
	default:
		return fmt.Errorf("%w: unknown store kind %q", models.ErrConfiguration, c.Store.Kind)
	}

	// chromem-go only accepts AES-256 keys
	if c.Store.EncryptionKey != "" && len(c.Store.EncryptionKey) != 32 {
		return fmt.Errorf("%w: store encryption key must be 32 bytes", models.ErrConfiguration)
	}
	return nil
}
