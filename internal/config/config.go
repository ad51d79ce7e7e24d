package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ArielDRighi/tarot/internal/domain"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	// placeholderAPIKey is the value shipped in example env files.
	placeholderAPIKey = "your_api_key"

	defaultOpenAIModel = "gpt-4-turbo"
	defaultGeminiModel = "gemini-2.0-flash"
)

type Config struct {
	HTTPAddr string
	LogLevel slog.Level

	DBDriver string
	DBDSN    string

	LLMProvider    string
	LLMAPIKey      string
	LLMBaseURL     string
	LLMModel       string
	LLMTemperature float64
	LLMMaxTokens   int
	LLMTimeout     time.Duration

	JWTSecret      string
	CORSOrigins    []string
	GenerationRate float64
	PublicBaseURL  string
	JaegerEndpoint string
}

// LoadDotEnv loads variables from path into the environment without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func Load() (Config, error) {
	c := Config{
		HTTPAddr:       envOr("HTTP_ADDR", ":8080"),
		DBDriver:       envOr("DB_DRIVER", "sqlite"),
		DBDSN:          envOr("DB_DSN", "tarot.db"),
		LLMProvider:    strings.ToLower(envOr("LLM_PROVIDER", ProviderOpenAI)),
		LLMAPIKey:      os.Getenv("LLM_API_KEY"),
		LLMBaseURL:     os.Getenv("LLM_BASE_URL"),
		LLMModel:       os.Getenv("LLM_MODEL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		CORSOrigins:    splitList(envOr("CORS_ORIGINS", "*")),
		PublicBaseURL:  envOr("PUBLIC_BASE_URL", "http://localhost:8080"),
		JaegerEndpoint: os.Getenv("OTEL_JAEGER_ENDPOINT"),
	}

	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.LLMBaseURL == "" {
			c.LLMBaseURL = "https://api.openai.com/v1"
		}
		if c.LLMModel == "" {
			c.LLMModel = defaultOpenAIModel
		}
	case ProviderGemini:
		if c.LLMModel == "" {
			c.LLMModel = defaultGeminiModel
		}
	default:
		return Config{}, fmt.Errorf("invalid LLM_PROVIDER %q: want %s or %s", c.LLMProvider, ProviderOpenAI, ProviderGemini)
	}

	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("invalid DB_DRIVER %q: want sqlite or postgres", c.DBDriver)
	}

	var err error
	if c.LLMTemperature, err = parseFloat("LLM_TEMPERATURE", 0.7); err != nil {
		return Config{}, err
	}
	if c.LLMMaxTokens, err = parseInt("LLM_MAX_TOKENS", 1500); err != nil {
		return Config{}, err
	}
	if c.GenerationRate, err = parseFloat("GENERATION_RATE", 2); err != nil {
		return Config{}, err
	}
	if c.GenerationRate <= 0 {
		return Config{}, fmt.Errorf("invalid GENERATION_RATE %v: must be positive", c.GenerationRate)
	}

	c.LLMTimeout = 60 * time.Second
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LLM_TIMEOUT %q: %w", v, err)
		}
		c.LLMTimeout = d
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	c.LogLevel = level

	return c, nil
}

// LLMConfigured reports whether a usable API key is set. Without one the
// service runs with interpretation disabled.
func (c Config) LLMConfigured() bool {
	return c.LLMAPIKey != "" && c.LLMAPIKey != placeholderAPIKey
}

// GenerationConfig is the fixed parameter set sent with every generation.
func (c Config) GenerationConfig() domain.GenerationConfig {
	return domain.GenerationConfig{
		Model:       c.LLMModel,
		Temperature: c.LLMTemperature,
		MaxTokens:   c.LLMMaxTokens,
	}
}

// GenerationBurst is the token bucket size for generation requests.
func (c Config) GenerationBurst() int {
	return max(1, int(2*c.GenerationRate))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func parseInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
