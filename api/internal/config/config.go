package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           string        `yaml:"port"`
	LogLevel       string        `yaml:"log_level"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	DatabaseURL    string        `yaml:"database_url"`
	MigrationsPath string        `yaml:"migrations_path"`
	RedisURL       string        `yaml:"redis_url"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`

	// LLMProvider is the engine used when a request does not name one.
	LLMProvider string `yaml:"llm_provider"`

	OpenAIAPIKey string `yaml:"openai_api_key"`
	OpenAIModel  string `yaml:"openai_model"`
	GroqAPIKey   string `yaml:"groq_api_key"`
	GroqModel    string `yaml:"groq_model"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`
}

func Default() *Config {
	return &Config{
		Port:           "8000",
		LogLevel:       "info",
		RequestTimeout: 180 * time.Second,
		MigrationsPath: "migrations",
		CacheTTL:       24 * time.Hour,
		LLMProvider:    "openai",
		OpenAIModel:    "gpt-4o-mini",
		GroqModel:      "llama-3.1-70b-versatile",
		GeminiModel:    "gemini-2.5-flash",
	}
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", k, err)
	}
	return d, nil
}

// Load starts from defaults, applies the YAML file named by CONFIG_FILE (if
// set) and then environment variables, which always win.
func Load() (*Config, error) {
	cfg := Default()
	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.MigrationsPath = getEnv("MIGRATIONS_PATH", c.MigrationsPath)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.LLMProvider = strings.ToLower(getEnv("LLM_PROVIDER", c.LLMProvider))

	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.OpenAIModel = getEnv("OPENAI_MODEL", c.OpenAIModel)
	c.GroqAPIKey = getEnv("GROQ_API_KEY", c.GroqAPIKey)
	c.GroqModel = getEnv("GROQ_MODEL", c.GroqModel)
	c.GeminiAPIKey = getEnv("GEMINI_API_KEY", c.GeminiAPIKey)
	c.GeminiModel = getEnv("GEMINI_MODEL", c.GeminiModel)

	var err error
	if c.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", c.RequestTimeout); err != nil {
		return err
	}
	if c.CacheTTL, err = getDuration("CACHE_TTL", c.CacheTTL); err != nil {
		return err
	}
	return nil
}

// Validate checks what the HTTP server needs to start.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("config: PORT is empty"))
	}
	switch c.LLMProvider {
	case "openai", "gpt":
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("config: OPENAI_API_KEY is required for provider openai"))
		}
	case "groq":
		if c.GroqAPIKey == "" {
			errs = append(errs, errors.New("config: GROQ_API_KEY is required for provider groq"))
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("config: GEMINI_API_KEY is required for provider gemini"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown LLM_PROVIDER %q (use openai, groq or gemini)", c.LLMProvider))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("config: REQUEST_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}
