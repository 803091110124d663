package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "5.199", config.VK.APIVersion)
	assert.Equal(t, "profile", config.VK.DefaultAlbum)
	assert.Equal(t, 5, config.VK.DefaultCount)
	assert.Equal(t, BackendYandex, config.Destination.Backend)
	assert.Equal(t, "vk_photos", config.Destination.Folder)
	assert.Equal(t, "photo_info.json", config.Ledger.Path)
	assert.Equal(t, "tokens.txt", config.Credentials.File)
	assert.Equal(t, 1, config.Download.ConcurrentUploads)
	assert.Equal(t, 1, config.Retry.MaxAttempts)
	assert.NoError(t, config.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("VKBACKUP_BACKEND", "S3")
	t.Setenv("VKBACKUP_S3_BUCKET", "photos")
	t.Setenv("VKBACKUP_FOLDER", "archive")
	t.Setenv("VKBACKUP_LEDGER_PATH", "/tmp/ledger.json")
	t.Setenv("VKBACKUP_CONCURRENT_UPLOADS", "4")
	t.Setenv("VKBACKUP_MAX_ATTEMPTS", "3")
	t.Setenv("VKBACKUP_NOTIFICATIONS_ENABLED", "true")
	t.Setenv("VKBACKUP_LOG_LEVEL", "debug")

	config := DefaultConfig()
	require.NoError(t, config.LoadFromEnv())

	assert.Equal(t, BackendS3, config.Destination.Backend)
	assert.Equal(t, "photos", config.Destination.S3.Bucket)
	assert.Equal(t, "archive", config.Destination.Folder)
	assert.Equal(t, "/tmp/ledger.json", config.Ledger.Path)
	assert.Equal(t, 4, config.Download.ConcurrentUploads)
	assert.Equal(t, 3, config.Retry.MaxAttempts)
	assert.True(t, config.Notifications.Enabled)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadFromEnvInvalidNumbers(t *testing.T) {
	t.Setenv("VKBACKUP_CONCURRENT_UPLOADS", "many")
	t.Setenv("VKBACKUP_MAX_ATTEMPTS", "x")

	config := DefaultConfig()
	err := config.LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VKBACKUP_CONCURRENT_UPLOADS")
	assert.Contains(t, err.Error(), "VKBACKUP_MAX_ATTEMPTS")
	assert.Equal(t, 1, config.Download.ConcurrentUploads)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
vk:
  default_count: 20
  requests_per_second: 1
destination:
  backend: minio
  folder: backups
  minio:
    endpoint: localhost:9000
    bucket: vk
download:
  timeout: 45s
retry:
  max_attempts: 4
  initial_backoff: 250ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config := DefaultConfig()
	require.NoError(t, config.LoadFromFile(path))

	assert.Equal(t, 20, config.VK.DefaultCount)
	assert.Equal(t, 1, config.VK.RequestsPerSecond)
	assert.Equal(t, BackendMinio, config.Destination.Backend)
	assert.Equal(t, "backups", config.Destination.Folder)
	assert.Equal(t, "localhost:9000", config.Destination.Minio.Endpoint)
	assert.Equal(t, 45*time.Second, config.Download.Timeout)
	assert.Equal(t, 4, config.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, config.Retry.InitialBackoff)

	// untouched sections keep defaults
	assert.Equal(t, "5.199", config.VK.APIVersion)
	assert.Equal(t, "photo_info.json", config.Ledger.Path)
	assert.NoError(t, config.Validate())
}

func TestLoadFromFileErrors(t *testing.T) {
	config := DefaultConfig()
	err := config.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("vk: [unclosed"), 0644))
	err = config.LoadFromFile(bad)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			modify: func(c *Config) {},
		},
		{
			name:    "count above provider maximum",
			modify:  func(c *Config) { c.VK.DefaultCount = 1001 },
			wantErr: "default photo count must be between 1 and 1000",
		},
		{
			name:    "zero count",
			modify:  func(c *Config) { c.VK.DefaultCount = 0 },
			wantErr: "default photo count",
		},
		{
			name:    "unknown backend",
			modify:  func(c *Config) { c.Destination.Backend = "ftp" },
			wantErr: `unknown destination backend "ftp"`,
		},
		{
			name:    "s3 without bucket",
			modify:  func(c *Config) { c.Destination.Backend = BackendS3 },
			wantErr: "s3 bucket is required",
		},
		{
			name:    "minio without endpoint",
			modify:  func(c *Config) { c.Destination.Backend = BackendMinio },
			wantErr: "minio endpoint and bucket are required",
		},
		{
			name:    "empty folder",
			modify:  func(c *Config) { c.Destination.Folder = "" },
			wantErr: "destination folder is required",
		},
		{
			name:    "zero attempts",
			modify:  func(c *Config) { c.Retry.MaxAttempts = 0 },
			wantErr: "retry max attempts must be at least 1",
		},
		{
			name:    "too many uploaders",
			modify:  func(c *Config) { c.Download.ConcurrentUploads = 11 },
			wantErr: "concurrent uploads should not exceed 10",
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			err := config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateAggregatesErrors(t *testing.T) {
	config := DefaultConfig()
	config.Ledger.Path = ""
	config.Credentials.File = ""

	err := config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger path is required")
	assert.Contains(t, err.Error(), "credentials file is required")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	config := DefaultConfig()
	config.Destination.Backend = BackendLocal
	config.Destination.Local.Root = "/srv/photos"
	require.NoError(t, config.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &raw))
	assert.Contains(t, raw, "destination")

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, "/srv/photos", loaded.Destination.Local.Root)
	assert.Equal(t, BackendLocal, loaded.Destination.Backend)
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()
	config.MergeCommandLineFlags(map[string]interface{}{
		"log-level":          "warn",
		"backend":            "LOCAL",
		"ledger":             "custom.json",
		"concurrent-uploads": 2,
		"notifications":      true,
		"tokens":             "",
	})

	assert.Equal(t, "warn", config.Logging.Level)
	assert.Equal(t, BackendLocal, config.Destination.Backend)
	assert.Equal(t, "custom.json", config.Ledger.Path)
	assert.Equal(t, 2, config.Download.ConcurrentUploads)
	assert.True(t, config.Notifications.Enabled)
	assert.Equal(t, "tokens.txt", config.Credentials.File)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\nledger:\n  path: from-file.json\n"), 0644))

	t.Setenv("VKBACKUP_LOG_LEVEL", "error")

	config, err := Load(path, map[string]interface{}{"ledger": "from-flag.json"})
	require.NoError(t, err)

	assert.Equal(t, "error", config.Logging.Level)
	assert.Equal(t, "from-flag.json", config.Ledger.Path)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("destination:\n  backend: carrier-pigeon\n"), 0644))

	_, err := Load(path, nil)
	assert.ErrorContains(t, err, "configuration validation failed")
}

func TestLoadNormalizesBackendName(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"destination:\n  backend: Local\n  local:\n    root: ./out\n", BackendLocal},
		{"destination:\n  backend: Yandex\n", BackendYandex},
		{"destination:\n  backend: \" MINIO \"\n  minio:\n    endpoint: localhost:9000\n    bucket: photos\n", BackendMinio},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			config, err := Load(path, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, config.Destination.Backend)
		})
	}
}
