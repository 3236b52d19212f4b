package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "docsmith.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "DOCSMITH_PORT")
	setString(&cfg.Server.CORSOrigin, "DOCSMITH_CORS_ORIGIN")

	// Provider credentials use the conventional variable names so existing
	// shells and CI secrets work unchanged.
	setString(&cfg.Providers.Groq.APIKey, "GROQ_API_KEY")
	setString(&cfg.Providers.Groq.BaseURL, "GROQ_BASE_URL")
	setStringSlice(&cfg.Providers.Groq.Models, "DOCSMITH_GROQ_MODELS")
	setString(&cfg.Providers.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.Providers.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setStringSlice(&cfg.Providers.OpenAI.Models, "DOCSMITH_OPENAI_MODELS")
	setString(&cfg.Providers.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.Providers.Anthropic.BaseURL, "ANTHROPIC_BASE_URL")
	setStringSlice(&cfg.Providers.Anthropic.Models, "DOCSMITH_ANTHROPIC_MODELS")

	setInt(&cfg.Generation.MaxContentLength, "DOCSMITH_MAX_CONTENT_LENGTH")
	setBool(&cfg.Generation.TruncateOverflow, "DOCSMITH_TRUNCATE_OVERFLOW")
	setFloat64(&cfg.Generation.QualityThreshold, "DOCSMITH_QUALITY_THRESHOLD")
	setBool(&cfg.Generation.AutoImprovePrompts, "DOCSMITH_AUTO_IMPROVE_PROMPTS")
	setDuration(&cfg.Generation.Timeout, "DOCSMITH_GENERATION_TIMEOUT")
	setInt(&cfg.Generation.RetryAttempts, "DOCSMITH_RETRY_ATTEMPTS")
	setDuration(&cfg.Generation.RetryBaseDelay, "DOCSMITH_RETRY_BASE_DELAY")

	setString(&cfg.Store.Backend, "DOCSMITH_STORE_BACKEND")
	setInt(&cfg.Store.Capacity, "DOCSMITH_STORE_CAPACITY")

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "DOCSMITH_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "DOCSMITH_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "DOCSMITH_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "DOCSMITH_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "DOCSMITH_PG_HEALTH_CHECK")

	setString(&cfg.NATS.URL, "NATS_URL")

	setBool(&cfg.Cache.Enabled, "DOCSMITH_CACHE_ENABLED")
	setInt64(&cfg.Cache.MaxSizeMB, "DOCSMITH_CACHE_MAX_SIZE_MB")
	setDuration(&cfg.Cache.TTL, "DOCSMITH_CACHE_TTL")

	setInt(&cfg.Breaker.MaxFailures, "DOCSMITH_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "DOCSMITH_BREAKER_TIMEOUT")

	setString(&cfg.Telemetry.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")

	setString(&cfg.Logging.Level, "DOCSMITH_LOG_LEVEL")
	setString(&cfg.Logging.Service, "DOCSMITH_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "DOCSMITH_LOG_ASYNC")
}

// validate checks that required fields are set and within range.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Store.Backend != "memory" && cfg.Store.Backend != "postgres" {
		return fmt.Errorf("store.backend must be \"memory\" or \"postgres\", got %q", cfg.Store.Backend)
	}
	if cfg.Store.Capacity < 1 {
		return errors.New("store.capacity must be >= 1")
	}
	if cfg.Store.Backend == "postgres" && cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required when store.backend is postgres")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Generation.MaxContentLength < 1 {
		return errors.New("generation.max_content_length must be >= 1")
	}
	if cfg.Generation.QualityThreshold < 0 || cfg.Generation.QualityThreshold > 1 {
		return errors.New("generation.quality_threshold must be within [0, 1]")
	}
	if cfg.Generation.Timeout <= 0 {
		return errors.New("generation.timeout must be positive")
	}
	if cfg.Generation.RetryAttempts < 0 {
		return errors.New("generation.retry_attempts must be >= 0")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			*dst = out
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// ProviderFor returns the configured settings for the given provider name.
func (p *Providers) ProviderFor(name string) (Provider, bool) {
	switch name {
	case "groq":
		return p.Groq, true
	case "openai":
		return p.OpenAI, true
	case "anthropic":
		return p.Anthropic, true
	}
	return Provider{}, false
}
