package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	hnerr "github.com/tenxer/handnav/internal/errors"
)

// Provider names a text-generation backend
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
)

// Default models per provider
const (
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
	DefaultOllamaModel    = "qwen3:8b"
	DefaultOllamaURL      = "http://localhost:11434"
)

// LLMConfig selects and tunes the classifier backend
type LLMConfig struct {
	Provider    Provider `yaml:"provider"`
	Model       string   `yaml:"model"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature float64  `yaml:"temperature"`
	BaseURL     string   `yaml:"base_url"` // Ollama only

	// Keys come from the environment only
	GeminiAPIKey    string `yaml:"-"`
	AnthropicAPIKey string `yaml:"-"`
}

// ClassifierConfig holds per-call limits for the AI classifier
type ClassifierConfig struct {
	Timeout   time.Duration `yaml:"timeout"`    // Per-call deadline
	CacheSize int           `yaml:"cache_size"` // General answers cached (0 disables)
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	MaxRetries         int           `yaml:"max_retries"`          // Maximum retries on 429
	BaseDelay          time.Duration `yaml:"base_delay"`           // Base delay for exponential backoff
	MaxDelay           time.Duration `yaml:"max_delay"`            // Maximum delay between retries
	TokensPerMinute    int           `yaml:"tokens_per_minute"`    // Rate limit (tokens/minute)
	EnableRateLimiting bool          `yaml:"enable_rate_limiting"` // Enable proactive rate limiting
}

// HTTPConfig configures the HTTP surface
type HTTPConfig struct {
	Addr      string `yaml:"addr"`
	BodyLimit int    `yaml:"body_limit"`
}

// S3Config points the file store at an S3-compatible bucket
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

// StoreConfig selects where user sketches live
type StoreConfig struct {
	Backend   string   `yaml:"backend"` // disk or s3
	UserDir   string   `yaml:"user_dir"`
	UploadDir string   `yaml:"upload_dir"`
	S3        S3Config `yaml:"s3"`
}

// LogTailConfig names the uploader log streamed to clients
type LogTailConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig mirrors logging.Config in YAML form
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Config holds the application configuration
type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	Classifier ClassifierConfig `yaml:"classifier"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	HTTP       HTTPConfig       `yaml:"http"`
	Store      StoreConfig      `yaml:"store"`
	LogTail    LogTailConfig    `yaml:"logtail"`
	Logging    LoggingConfig    `yaml:"logging"`

	// Internal: where config was loaded from
	configPath string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    ProviderGemini,
			MaxTokens:   2048,
			Temperature: 0.4,
		},
		Classifier: ClassifierConfig{
			Timeout:   20 * time.Second,
			CacheSize: 128,
			CacheTTL:  10 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			MaxRetries:         3,
			BaseDelay:          1 * time.Second,
			MaxDelay:           30 * time.Second,
			TokensPerMinute:    30000,
			EnableRateLimiting: true,
		},
		HTTP: HTTPConfig{
			Addr:      ":5000",
			BodyLimit: 10 * 1024 * 1024,
		},
		Store: StoreConfig{
			Backend:   "disk",
			UserDir:   ".handnav/user_folder",
			UploadDir: ".handnav/arduino_uploads",
			S3: S3Config{
				Region: "us-east-1",
				Bucket: "handnav-sketches",
				UseSSL: true,
			},
		},
		LogTail: LogTailConfig{
			Path: ".handnav/uploader.log",
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       ".handnav/logs/handnav.log",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

// Load loads configuration from .env, the first config file found and the
// environment, in that order of increasing priority. An explicit path must exist.
func Load(explicitPath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if explicitPath != "" {
		if err := cfg.loadFromFile(explicitPath); err != nil {
			return nil, hnerr.ConfigLoadFailed(explicitPath, err)
		}
		cfg.configPath = explicitPath
	} else {
		for _, path := range getConfigPaths() {
			if _, err := os.Stat(path); err == nil {
				if err := cfg.loadFromFile(path); err != nil {
					return nil, hnerr.ConfigLoadFailed(path, err)
				}
				cfg.configPath = path
				break
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getConfigPaths returns config file paths in priority order
func getConfigPaths() []string {
	paths := []string{
		"handnav.yaml",
		".handnav/config.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "handnav", "config.yaml"))
	}

	return paths
}

// loadFromFile loads config from a YAML file
func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv() {
	c.LLM.GeminiAPIKey = firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY"), os.Getenv("VITE_GEMINI_API_KEY"))
	c.LLM.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")

	if p := strings.TrimSpace(os.Getenv("HANDNAV_PROVIDER")); p != "" {
		c.LLM.Provider = Provider(strings.ToLower(p))
	}
	c.LLM.Model = firstNonEmpty(strings.TrimSpace(os.Getenv("HANDNAV_MODEL")), c.LLM.Model)
	c.LLM.BaseURL = firstNonEmpty(strings.TrimSpace(os.Getenv("OLLAMA_HOST")), c.LLM.BaseURL)
	c.HTTP.Addr = firstNonEmpty(strings.TrimSpace(os.Getenv("HANDNAV_HTTP_ADDR")), c.HTTP.Addr)
	c.Logging.Level = firstNonEmpty(strings.TrimSpace(os.Getenv("HANDNAV_LOG_LEVEL")), c.Logging.Level)

	if endpoint := strings.TrimSpace(os.Getenv("HANDNAV_S3_ENDPOINT")); endpoint != "" {
		c.Store.Backend = "s3"
		c.Store.S3.Endpoint = endpoint
	}
	c.Store.S3.Bucket = firstNonEmpty(strings.TrimSpace(os.Getenv("HANDNAV_S3_BUCKET")), c.Store.S3.Bucket)
	c.Store.S3.Region = firstNonEmpty(strings.TrimSpace(os.Getenv("HANDNAV_S3_REGION")), c.Store.S3.Region)
	c.Store.S3.AccessKey = firstNonEmpty(strings.TrimSpace(os.Getenv("HANDNAV_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER")))
	c.Store.S3.SecretKey = firstNonEmpty(strings.TrimSpace(os.Getenv("HANDNAV_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD")))
	if raw := strings.TrimSpace(os.Getenv("HANDNAV_S3_USE_SSL")); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			c.Store.S3.UseSSL = v
		}
	}
}

// Validate rejects configurations the rest of the program cannot honor.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderAnthropic, ProviderOllama:
	default:
		return hnerr.ConfigInvalid(fmt.Sprintf("unknown llm provider %q", c.LLM.Provider))
	}
	switch c.Store.Backend {
	case "disk", "s3":
	default:
		return hnerr.ConfigInvalid(fmt.Sprintf("unknown store backend %q", c.Store.Backend))
	}
	if c.Classifier.Timeout <= 0 {
		return hnerr.ConfigInvalid("classifier timeout must be positive")
	}
	if c.Store.Backend == "s3" && c.Store.S3.Endpoint == "" {
		return hnerr.ConfigInvalid("s3 store requires an endpoint")
	}
	return nil
}

// Save writes the config as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	content := "# handnav configuration\n# API keys are read from the environment (GEMINI_API_KEY, ANTHROPIC_API_KEY)\n\n" + string(data)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return err
	}
	c.configPath = path
	return nil
}

// GetModel returns the configured model or the provider default
func (c *Config) GetModel() string {
	if c.LLM.Model != "" {
		return c.LLM.Model
	}
	switch c.LLM.Provider {
	case ProviderAnthropic:
		return DefaultAnthropicModel
	case ProviderOllama:
		return DefaultOllamaModel
	default:
		return DefaultGeminiModel
	}
}

// APIKey returns the key for the selected provider ("" for Ollama)
func (c *Config) APIKey() string {
	switch c.LLM.Provider {
	case ProviderGemini:
		return c.LLM.GeminiAPIKey
	case ProviderAnthropic:
		return c.LLM.AnthropicAPIKey
	default:
		return ""
	}
}

// OllamaURL returns the Ollama base URL with a default
func (c *Config) OllamaURL() string {
	return firstNonEmpty(c.LLM.BaseURL, DefaultOllamaURL)
}

// ConfigPath returns where the config was loaded from
func (c *Config) ConfigPath() string {
	return c.configPath
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
