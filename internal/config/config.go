package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	StoreMemory   = "memory"
	StoreDynamoDB = "dynamodb"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	LLM LLMConfig

	// AWS Parameter Store prefix; the LLM token is read from <prefix>/llm-token
	ParamPrefix string `env:"PARAM_PREFIX"`

	Store StoreConfig

	// Environment (set from flag, not from env var)
	Environment string
}

type LLMConfig struct {
	Provider      string        `env:"LLM_PROVIDER" envDefault:"gemini"`
	Model         string        `env:"LLM_MODEL" envDefault:"gemini-2.0-flash"`
	Timeout       time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
	APIKey        string        `env:"LLM_API_KEY"`
	BaseURL       string        `env:"LLM_BASE_URL"`
	GeminiBackend string        `env:"GEMINI_BACKEND" envDefault:"gemini-api"`
	GCPProject    string        `env:"GCP_PROJECT"`
	GCPLocation   string        `env:"GCP_LOCATION"`
}

type StoreConfig struct {
	Backend string        `env:"STORE_BACKEND" envDefault:"memory"`
	Table   string        `env:"STATE_TABLE"`
	TTL     time.Duration `env:"STATE_TTL"`
}

// TokenParameter is the SSM parameter holding the LLM token, or "" when no
// prefix is configured.
func (c *Config) TokenParameter() string {
	prefix := strings.TrimRight(strings.TrimSpace(c.ParamPrefix), "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/llm-token"
}

// Load reads .env.<environment> when present, then parses the process
// environment. A missing env file is not an error.
func Load(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.Environment = environment

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var problems []string

	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	if cfg.LLM.Timeout <= 0 {
		problems = append(problems, fmt.Sprintf("LLM_TIMEOUT must be positive, got %s", cfg.LLM.Timeout))
	}

	if p := cfg.TokenParameter(); p != "" && !strings.HasPrefix(p, "/") {
		problems = append(problems, fmt.Sprintf("PARAM_PREFIX must start with /, got %q", cfg.ParamPrefix))
	}

	if !cfg.EnableMocks {
		switch cfg.LLM.Provider {
		case ProviderGemini:
			switch cfg.LLM.GeminiBackend {
			case "gemini-api":
				if cfg.LLM.APIKey == "" && cfg.TokenParameter() == "" {
					problems = append(problems, "LLM_API_KEY or PARAM_PREFIX is required for the gemini-api backend")
				}
			case "vertex":
				if cfg.LLM.GCPProject == "" || cfg.LLM.GCPLocation == "" {
					problems = append(problems, "GCP_PROJECT and GCP_LOCATION are required for the vertex backend")
				}
			default:
				problems = append(problems, fmt.Sprintf("GEMINI_BACKEND must be gemini-api or vertex, got %q", cfg.LLM.GeminiBackend))
			}
		case ProviderOpenAI:
			if cfg.LLM.APIKey == "" && cfg.TokenParameter() == "" {
				problems = append(problems, "LLM_API_KEY or PARAM_PREFIX is required for the openai provider")
			}
		default:
			problems = append(problems, fmt.Sprintf("LLM_PROVIDER must be gemini or openai, got %q", cfg.LLM.Provider))
		}
	}

	switch cfg.Store.Backend {
	case StoreMemory:
	case StoreDynamoDB:
		if cfg.Store.Table == "" {
			problems = append(problems, "STATE_TABLE is required when STORE_BACKEND=dynamodb")
		}
	default:
		problems = append(problems, fmt.Sprintf("STORE_BACKEND must be memory or dynamodb, got %q", cfg.Store.Backend))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "", "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
