package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default resource identifiers of the product-search backend.
const (
	DefaultVisionEndpoint = "https://vision.googleapis.com/v1/images:annotate"
	DefaultProductSet     = "projects/project-id/locations/location-id/productSets/product-set-id"
	DefaultMaxResults     = 5
)

// Config holds the prodlens configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Vision   VisionConfig   `yaml:"vision"`
	Handoff  HandoffConfig  `yaml:"handoff"`
	Upload   UploadConfig   `yaml:"upload"`
	Session  SessionConfig  `yaml:"session"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds bearer keys for the JSON API. Pages are never authenticated.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds connection settings for the session store.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// VisionConfig describes the product-search endpoint and its resource identifiers.
type VisionConfig struct {
	Endpoint          string   `yaml:"endpoint"`
	APIKey            string   `yaml:"api_key"`
	ProductSet        string   `yaml:"product_set"`
	ProductCategories []string `yaml:"product_categories"`
	MaxResults        int      `yaml:"max_results"`
	TimeoutSec        int      `yaml:"timeout_sec"`
}

// Timeout returns the bounded wait for one search call.
func (v VisionConfig) Timeout() time.Duration {
	return time.Duration(v.TimeoutSec) * time.Second
}

// HandoffConfig holds TTLs and key layout of the per-session keys.
type HandoffConfig struct {
	TTLSec      int    `yaml:"ttl_sec"`
	DraftTTLSec int    `yaml:"draft_ttl_sec"`
	KeyPrefix   string `yaml:"key_prefix"`
}

// UploadConfig limits accepted images.
type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes"`
}

// SessionConfig holds the session cookie settings.
type SessionConfig struct {
	CookieName string `yaml:"cookie_name"`
	Secure     bool   `yaml:"secure"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config bytes, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Must outlive the vision call made while rendering /results.
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Vision.Endpoint == "" {
		c.Vision.Endpoint = DefaultVisionEndpoint
	}
	if c.Vision.ProductSet == "" {
		c.Vision.ProductSet = DefaultProductSet
	}
	if len(c.Vision.ProductCategories) == 0 {
		c.Vision.ProductCategories = []string{"apparel"}
	}
	if c.Vision.MaxResults <= 0 {
		c.Vision.MaxResults = DefaultMaxResults
	}
	if c.Vision.TimeoutSec <= 0 {
		c.Vision.TimeoutSec = 30
	}
	if c.Handoff.TTLSec <= 0 {
		c.Handoff.TTLSec = 600
	}
	if c.Handoff.DraftTTLSec <= 0 {
		c.Handoff.DraftTTLSec = 3600
	}
	if c.Handoff.KeyPrefix == "" {
		c.Handoff.KeyPrefix = "prodlens:"
	}
	if c.Upload.MaxBytes <= 0 {
		c.Upload.MaxBytes = 10 << 20
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "prodlens_session"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if !strings.HasPrefix(c.Vision.Endpoint, "http://") && !strings.HasPrefix(c.Vision.Endpoint, "https://") {
		return fmt.Errorf("vision.endpoint must be an http(s) URL, got %q", c.Vision.Endpoint)
	}
	for i, cat := range c.Vision.ProductCategories {
		if strings.TrimSpace(cat) == "" {
			return fmt.Errorf("vision.product_categories[%d] is empty", i)
		}
	}
	if c.Vision.TimeoutSec >= c.HTTP.WriteTimeoutSec {
		return fmt.Errorf(
			"vision.timeout_sec (%d) must be lower than http.write_timeout_sec (%d)",
			c.Vision.TimeoutSec, c.HTTP.WriteTimeoutSec,
		)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
