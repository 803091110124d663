package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppName is used for config lookup, env prefixes and keyring service names
const AppName = "vkbackup"

// EnvPrefix prefixes every environment variable the tool reads
const EnvPrefix = "VKBACKUP_"

// Backend names accepted by destination.backend
const (
	BackendYandex = "yandex"
	BackendS3     = "s3"
	BackendMinio  = "minio"
	BackendLocal  = "local"
)

// MaxPhotoCount is the largest count photos.get accepts in one request
const MaxPhotoCount = 1000

// Config holds all configuration options for vkbackup
type Config struct {
	// Source API settings
	VK VKConfig `yaml:"vk" json:"vk"`

	// Where photos are uploaded
	Destination DestinationConfig `yaml:"destination" json:"destination"`

	// Local sync ledger
	Ledger LedgerConfig `yaml:"ledger" json:"ledger"`

	// Token file location
	Credentials CredentialsConfig `yaml:"credentials" json:"credentials"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Retry behaviour for downloads and uploads
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// VKConfig holds source API configuration
type VKConfig struct {
	BaseURL           string `yaml:"base_url" json:"base_url"`
	APIVersion        string `yaml:"api_version" json:"api_version"`
	DefaultAlbum      string `yaml:"default_album" json:"default_album"`
	DefaultCount      int    `yaml:"default_count" json:"default_count"`
	RequestsPerSecond int    `yaml:"requests_per_second" json:"requests_per_second"`
}

// DestinationConfig selects and configures the upload backend
type DestinationConfig struct {
	Backend string       `yaml:"backend" json:"backend"`
	Folder  string       `yaml:"folder" json:"folder"`
	Yandex  YandexConfig `yaml:"yandex" json:"yandex"`
	S3      S3Config     `yaml:"s3" json:"s3"`
	Minio   MinioConfig  `yaml:"minio" json:"minio"`
	Local   LocalConfig  `yaml:"local" json:"local"`
}

// YandexConfig holds Yandex.Disk REST API settings
type YandexConfig struct {
	BaseURL           string `yaml:"base_url" json:"base_url"`
	RequestsPerMinute int    `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// S3Config holds Amazon S3 (or compatible) settings
type S3Config struct {
	Bucket         string `yaml:"bucket" json:"bucket"`
	Region         string `yaml:"region" json:"region"`
	Endpoint       string `yaml:"endpoint" json:"endpoint"`
	Prefix         string `yaml:"prefix" json:"prefix"`
	ForcePathStyle bool   `yaml:"force_path_style" json:"force_path_style"`
}

// MinioConfig holds MinIO settings
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	Bucket    string `yaml:"bucket" json:"bucket"`
	AccessKey string `yaml:"access_key" json:"access_key"`
	SecretKey string `yaml:"secret_key" json:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl" json:"use_ssl"`
}

// LocalConfig holds settings for uploading into a local directory
type LocalConfig struct {
	Root string `yaml:"root" json:"root"`
}

// LedgerConfig holds the ledger file location
type LedgerConfig struct {
	Path string `yaml:"path" json:"path"`
}

// CredentialsConfig holds the token file location
type CredentialsConfig struct {
	File string `yaml:"file" json:"file"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	ConcurrentUploads int           `yaml:"concurrent_uploads" json:"concurrent_uploads"`
}

// RetryConfig holds retry configuration. MaxAttempts of 1 means a single try.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts" json:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff" json:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff" json:"max_backoff"`
	Multiplier     float64       `yaml:"multiplier" json:"multiplier"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		VK: VKConfig{
			BaseURL:           "https://api.vk.com/method",
			APIVersion:        "5.199",
			DefaultAlbum:      "profile",
			DefaultCount:      5,
			RequestsPerSecond: 3,
		},
		Destination: DestinationConfig{
			Backend: BackendYandex,
			Folder:  "vk_photos",
			Yandex: YandexConfig{
				BaseURL:           "https://cloud-api.yandex.net/v1/disk",
				RequestsPerMinute: 120,
			},
			S3: S3Config{
				Region: "us-east-1",
			},
			Local: LocalConfig{
				Root: "./backup",
			},
		},
		Ledger: LedgerConfig{
			Path: "photo_info.json",
		},
		Credentials: CredentialsConfig{
			File: "tokens.txt",
		},
		Download: DownloadConfig{
			Timeout:           30 * time.Second,
			ConcurrentUploads: 1,
		},
		Retry: RetryConfig{
			MaxAttempts:    1,
			InitialBackoff: time.Second,
			MaxBackoff:     30 * time.Second,
			Multiplier:     2.0,
		},
		Notifications: NotificationConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv(EnvPrefix + "VK_API_VERSION"); v != "" {
		c.VK.APIVersion = v
	}
	if v := os.Getenv(EnvPrefix + "VK_BASE_URL"); v != "" {
		c.VK.BaseURL = v
	}
	if v := os.Getenv(EnvPrefix + "BACKEND"); v != "" {
		c.Destination.Backend = strings.ToLower(v)
	}
	if v := os.Getenv(EnvPrefix + "FOLDER"); v != "" {
		c.Destination.Folder = v
	}
	if v := os.Getenv(EnvPrefix + "S3_BUCKET"); v != "" {
		c.Destination.S3.Bucket = v
	}
	if v := os.Getenv(EnvPrefix + "MINIO_ACCESS_KEY"); v != "" {
		c.Destination.Minio.AccessKey = v
	}
	if v := os.Getenv(EnvPrefix + "MINIO_SECRET_KEY"); v != "" {
		c.Destination.Minio.SecretKey = v
	}
	if v := os.Getenv(EnvPrefix + "LEDGER_PATH"); v != "" {
		c.Ledger.Path = v
	}
	if v := os.Getenv(EnvPrefix + "TOKENS_FILE"); v != "" {
		c.Credentials.File = v
	}

	var errs []error
	if v := os.Getenv(EnvPrefix + "CONCURRENT_UPLOADS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sCONCURRENT_UPLOADS: %w", EnvPrefix, err))
		} else if n > 0 {
			c.Download.ConcurrentUploads = n
		}
	}
	if v := os.Getenv(EnvPrefix + "MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMAX_ATTEMPTS: %w", EnvPrefix, err))
		} else if n > 0 {
			c.Retry.MaxAttempts = n
		}
	}
	if v := os.Getenv(EnvPrefix + "NOTIFICATIONS_ENABLED"); v != "" {
		c.Notifications.Enabled = strings.ToLower(v) == "true"
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FILE"); v != "" {
		c.Logging.File = v
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	locations := []string{
		".vkbackup.yaml",
		".vkbackup.yml",
	}
	if p, err := xdg.SearchConfigFile(filepath.Join(AppName, "config.yaml")); err == nil {
		locations = append(locations, p)
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".vkbackup.yaml"))
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.VK.BaseURL == "" {
		errs = append(errs, errors.New("vk base url is required"))
	}
	if c.VK.APIVersion == "" {
		errs = append(errs, errors.New("vk api version is required"))
	}
	if c.VK.DefaultCount < 1 || c.VK.DefaultCount > MaxPhotoCount {
		errs = append(errs, fmt.Errorf("default photo count must be between 1 and %d", MaxPhotoCount))
	}
	if c.VK.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("requests per second must be positive"))
	}

	if c.Destination.Folder == "" {
		errs = append(errs, errors.New("destination folder is required"))
	}
	c.Destination.Backend = strings.ToLower(strings.TrimSpace(c.Destination.Backend))
	switch c.Destination.Backend {
	case BackendYandex:
		if c.Destination.Yandex.BaseURL == "" {
			errs = append(errs, errors.New("yandex base url is required"))
		}
	case BackendS3:
		if c.Destination.S3.Bucket == "" {
			errs = append(errs, errors.New("s3 bucket is required"))
		}
	case BackendMinio:
		if c.Destination.Minio.Endpoint == "" || c.Destination.Minio.Bucket == "" {
			errs = append(errs, errors.New("minio endpoint and bucket are required"))
		}
	case BackendLocal:
		if c.Destination.Local.Root == "" {
			errs = append(errs, errors.New("local root directory is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown destination backend %q", c.Destination.Backend))
	}

	if c.Ledger.Path == "" {
		errs = append(errs, errors.New("ledger path is required"))
	}
	if c.Credentials.File == "" {
		errs = append(errs, errors.New("credentials file is required"))
	}

	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.ConcurrentUploads <= 0 {
		errs = append(errs, errors.New("concurrent uploads must be positive"))
	}
	if c.Download.ConcurrentUploads > 10 {
		errs = append(errs, errors.New("concurrent uploads should not exceed 10"))
	}

	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry max attempts must be at least 1"))
	}
	if c.Retry.Multiplier < 1 {
		errs = append(errs, errors.New("retry multiplier must be at least 1"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
	if backend, ok := flags["backend"].(string); ok && backend != "" {
		c.Destination.Backend = strings.ToLower(backend)
	}
	if ledgerPath, ok := flags["ledger"].(string); ok && ledgerPath != "" {
		c.Ledger.Path = ledgerPath
	}
	if tokens, ok := flags["tokens"].(string); ok && tokens != "" {
		c.Credentials.File = tokens
	}
	if concurrent, ok := flags["concurrent-uploads"].(int); ok && concurrent > 0 {
		c.Download.ConcurrentUploads = concurrent
	}
	if notify, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = notify
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load(".env")
	if home, err := os.UserHomeDir(); err == nil {
		_ = godotenv.Load(filepath.Join(home, ".vkbackup.env"))
	}

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
