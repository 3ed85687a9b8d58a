package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string   `env:"APP_ENV" envDefault:"development"`
	Port        string   `env:"PORT" envDefault:"8080"`
	DatabaseURL string   `env:"DATABASE_URL,notEmpty"`
	APIToken    string   `env:"API_TOKEN"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	RateLimitPerMin int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`

	LLMProvider     string `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIModel     string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIOrg       string `env:"OPENAI_ORG"`
	AzureEndpoint   string `env:"AZURE_OPENAI_ENDPOINT"`
	AzureDeployment string `env:"AZURE_OPENAI_DEPLOYMENT" envDefault:"gpt-5-nano"`
	AzureAPIVersion string `env:"AZURE_OPENAI_API_VERSION" envDefault:"2024-10-21"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	GeminiModel     string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	GeminiBaseURL   string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	LLMTimeoutSecs  int    `env:"LLM_TIMEOUT_SECONDS" envDefault:"120"`
	LLMMaxTokens    int    `env:"LLM_MAX_TOKENS" envDefault:"10000"`

	StorageDriver     string `env:"STORAGE_DRIVER" envDefault:"s3"`
	StoragePath       string `env:"STORAGE_PATH" envDefault:"./data"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3Bucket          string `env:"S3_BUCKET_NAME"`
	S3Region          string `env:"S3_REGION" envDefault:"auto"`

	DispatchMode      string `env:"DISPATCH_MODE" envDefault:"local"`
	RedisAddr         string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisQueue        string `env:"REDIS_QUEUE" envDefault:"descsvc:jobs"`
	WorkerConcurrency int    `env:"WORKER_CONCURRENCY" envDefault:"4"`

	HTTPReadTimeoutSecs  int `env:"HTTP_READ_TIMEOUT_SECONDS" envDefault:"15"`
	HTTPWriteTimeoutSecs int `env:"HTTP_WRITE_TIMEOUT_SECONDS" envDefault:"30"`
	HTTPIdleTimeoutSecs  int `env:"HTTP_IDLE_TIMEOUT_SECONDS" envDefault:"60"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	sqliteScheme = "sqlite://"
)

// LoadDotEnv reads a .env file when present. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if fileExists(p) {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// LoadConfig loads configuration from the process environment and applies defaults where needed.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return finish(&cfg)
}

// LoadConfigFrom parses configuration from an explicit set of variables.
func LoadConfigFrom(vars map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return nil, err
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.CORSOrigins = cleanList(cfg.CORSOrigins)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if _, _, err := c.Database(); err != nil {
		errs = append(errs, err)
	}
	switch c.LLMProvider {
	case "openai", "azure", "gemini":
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be one of openai, azure, gemini (got %q)", c.LLMProvider))
	}
	switch c.StorageDriver {
	case "s3", "fs":
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be s3 or fs (got %q)", c.StorageDriver))
	}
	switch c.DispatchMode {
	case "local", "redis":
	default:
		errs = append(errs, fmt.Errorf("DISPATCH_MODE must be local or redis (got %q)", c.DispatchMode))
	}
	if c.WorkerConcurrency < 1 {
		errs = append(errs, errors.New("WORKER_CONCURRENCY must be at least 1"))
	}
	if c.StorageDriver == "s3" && c.S3Bucket == "" {
		errs = append(errs, errors.New("S3_BUCKET_NAME is required when STORAGE_DRIVER=s3"))
	}
	return errors.Join(errs...)
}

// RequireAPIToken reports an error when the bearer token is unset. Only the
// HTTP API needs it.
func (c *Config) RequireAPIToken() error {
	if strings.TrimSpace(c.APIToken) == "" {
		return errors.New("API_TOKEN is required")
	}
	return nil
}

// Database returns the driver selected by DATABASE_URL and the DSN to hand to it.
func (c *Config) Database() (string, string, error) {
	url := strings.TrimSpace(c.DatabaseURL)
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres, url, nil
	case strings.HasPrefix(url, sqliteScheme):
		path := strings.TrimPrefix(url, sqliteScheme)
		if path == "" {
			return "", "", errors.New("DATABASE_URL sqlite:// needs a file path")
		}
		return DriverSQLite, path, nil
	default:
		return "", "", fmt.Errorf("DATABASE_URL must start with postgres:// or sqlite:// (got %q)", url)
	}
}

func (c *Config) HTTPReadTimeout() time.Duration {
	return time.Duration(c.HTTPReadTimeoutSecs) * time.Second
}

func (c *Config) HTTPWriteTimeout() time.Duration {
	return time.Duration(c.HTTPWriteTimeoutSecs) * time.Second
}

func (c *Config) HTTPIdleTimeout() time.Duration {
	return time.Duration(c.HTTPIdleTimeoutSecs) * time.Second
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSecs) * time.Second
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
