// ABOUTME: vkattach configuration management
// ABOUTME: Handles API credentials, rate limits and cache settings

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultAPIBaseURL is the method endpoint of the API
	DefaultAPIBaseURL = "https://api.vk.com/method"

	// DefaultAPIVersion is the API version sent with every call
	DefaultAPIVersion = "5.199"

	// DefaultRateLimit is the number of API calls per second
	DefaultRateLimit = 3

	// DefaultCacheTTL is how long badger keeps fetched payloads
	DefaultCacheTTL = 24 * time.Hour
)

// Cache backends
const (
	CacheSQLite = "sqlite"
	CacheBadger = "badger"
	CacheNone   = "none"
)

// Config stores vkattach configuration
type Config struct {
	AccessToken     string  `json:"access_token,omitempty"`
	APIBaseURL      string  `json:"api_base_url,omitempty"`
	APIVersion      string  `json:"api_version,omitempty"`
	RateLimit       float64 `json:"rate_limit,omitempty"`
	CacheBackend    string  `json:"cache_backend,omitempty"`
	CacheTTLSeconds int     `json:"cache_ttl_seconds,omitempty"`
	KVPath          string  `json:"kv_path,omitempty"`
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "vkattach", "config.json")
}

// Load reads config from disk. A .env file next to the config file, or in
// the working directory, is loaded into the environment first; variables
// already set are kept.
func Load() (*Config, error) {
	path := GetConfigPath()
	loadDotEnv(filepath.Join(filepath.Dir(path), ".env"), ".env")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// Save writes config to disk
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// GetAccessToken returns the API token, preferring VK_ACCESS_TOKEN.
func (c *Config) GetAccessToken() string {
	if token := os.Getenv("VK_ACCESS_TOKEN"); token != "" {
		return token
	}
	return c.AccessToken
}

// GetAPIBaseURL returns the API endpoint, preferring VK_API_BASE_URL.
func (c *Config) GetAPIBaseURL() string {
	if u := os.Getenv("VK_API_BASE_URL"); u != "" {
		return u
	}
	if c.APIBaseURL != "" {
		return c.APIBaseURL
	}
	return DefaultAPIBaseURL
}

// GetAPIVersion returns the API version, preferring VK_API_VERSION.
func (c *Config) GetAPIVersion() string {
	if v := os.Getenv("VK_API_VERSION"); v != "" {
		return v
	}
	if c.APIVersion != "" {
		return c.APIVersion
	}
	return DefaultAPIVersion
}

// GetRateLimit returns calls per second, preferring VK_RATE_LIMIT.
func (c *Config) GetRateLimit() float64 {
	if v := os.Getenv("VK_RATE_LIMIT"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil && rps > 0 {
			return rps
		}
	}
	if c.RateLimit > 0 {
		return c.RateLimit
	}
	return DefaultRateLimit
}

// GetCacheBackend returns the payload cache backend, preferring
// VKATTACH_CACHE. Unknown values fall back to sqlite.
func (c *Config) GetCacheBackend() string {
	backend := os.Getenv("VKATTACH_CACHE")
	if backend == "" {
		backend = c.CacheBackend
	}
	switch backend {
	case CacheBadger, CacheNone:
		return backend
	default:
		return CacheSQLite
	}
}

// GetCacheTTL returns how long cached payloads live in badger.
func (c *Config) GetCacheTTL() time.Duration {
	if c.CacheTTLSeconds > 0 {
		return time.Duration(c.CacheTTLSeconds) * time.Second
	}
	return DefaultCacheTTL
}

// GetKVPath returns the badger directory following XDG standards.
func (c *Config) GetKVPath() string {
	if c.KVPath != "" {
		return c.KVPath
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		cacheDir = filepath.Join(homeDir, ".cache")
	}
	return filepath.Join(cacheDir, "vkattach", "kv")
}

// IsConfigured returns true if an access token is available.
func (c *Config) IsConfigured() bool {
	return c.GetAccessToken() != ""
}
