package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/knowbase/internal/core/domain"
	"github.com/custodia-labs/knowbase/internal/core/ports/driven"
	"github.com/custodia-labs/knowbase/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyDataDir         = "storage.data_dir"
	KeyBlobDir         = "storage.blob_dir"
	KeyMaxChunkSize    = "ingest.max_chunk_size"
	KeyMaxUploadBytes  = "ingest.max_upload_bytes"
	KeyDefaultCategory = "ingest.default_category"
	KeyConcurrency     = "import.concurrency"
	KeyRatePerSecond   = "import.rate_per_second"
	KeyExtensions      = "import.extensions"
	KeySearchLimit     = "search.default_limit"
	KeyMCPPort         = "mcp.port"
)

// Environment variables that override the config file.
const (
	EnvDataDir      = "KNOWBASE_DATA_DIR"
	EnvBlobDir      = "KNOWBASE_BLOB_DIR"
	EnvMaxChunkSize = "KNOWBASE_MAX_CHUNK_SIZE"
)

// keyKind is the value type accepted for a config key.
type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindList
)

var knownKeys = map[string]keyKind{
	KeyDataDir:         kindString,
	KeyBlobDir:         kindString,
	KeyMaxChunkSize:    kindInt,
	KeyMaxUploadBytes:  kindInt,
	KeyDefaultCategory: kindString,
	KeyConcurrency:     kindInt,
	KeyRatePerSecond:   kindFloat,
	KeyExtensions:      kindList,
	KeySearchLimit:     kindInt,
	KeyMCPPort:         kindInt,
}

// SettingsService resolves application settings from a config store.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
	homeDir     func() (string, error)
}

// NewSettingsService creates a new settings service reading the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
		homeDir:     os.UserHomeDir,
	}
}

// SetEnv replaces the environment lookup. Used by tests.
func (s *SettingsService) SetEnv(lookup func(string) (string, bool)) {
	s.lookupEnv = lookup
}

// Get returns the effective settings: defaults, then the config store,
// then environment overrides.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Storage: domain.StorageSettings{
			DataDir: s.configStore.GetString(KeyDataDir),
			BlobDir: s.configStore.GetString(KeyBlobDir),
		},
		Ingest: domain.IngestSettings{
			MaxChunkSize:    s.getInt(KeyMaxChunkSize, defaults.Ingest.MaxChunkSize),
			MaxUploadBytes:  int64(s.getInt(KeyMaxUploadBytes, int(defaults.Ingest.MaxUploadBytes))),
			DefaultCategory: s.getString(KeyDefaultCategory, defaults.Ingest.DefaultCategory),
		},
		Import: domain.ImportSettings{
			Concurrency:   s.getInt(KeyConcurrency, defaults.Import.Concurrency),
			RatePerSecond: s.configStore.GetFloat(KeyRatePerSecond),
			Extensions:    s.getList(KeyExtensions, defaults.Import.Extensions),
		},
		Search: domain.SearchSettings{
			DefaultLimit: s.getInt(KeySearchLimit, defaults.Search.DefaultLimit),
		},
		MCP: domain.MCPSettings{
			Port: s.configStore.GetInt(KeyMCPPort),
		},
	}

	if v, ok := s.lookupEnv(EnvDataDir); ok && v != "" {
		settings.Storage.DataDir = v
	}
	if v, ok := s.lookupEnv(EnvBlobDir); ok && v != "" {
		settings.Storage.BlobDir = v
	}
	if v, ok := s.lookupEnv(EnvMaxChunkSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: %s must be a positive integer, got %q", domain.ErrInvalidInput, EnvMaxChunkSize, v)
		}
		settings.Ingest.MaxChunkSize = n
	}

	if settings.Storage.DataDir == "" {
		home, err := s.homeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		settings.Storage.DataDir = filepath.Join(home, ".knowbase", "data")
	}
	if settings.Storage.BlobDir == "" {
		settings.Storage.BlobDir = filepath.Join(settings.Storage.DataDir, "files")
	}

	return settings, nil
}

// Set validates value against the key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := knownKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}

	var typed any
	switch kind {
	case kindString:
		typed = strings.TrimSpace(value)
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		typed = n
	case kindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		typed = f
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		typed = items
	}

	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Values returns every stored key with its raw value.
func (s *SettingsService) Values() map[string]any {
	values := make(map[string]any)
	for _, key := range s.configStore.Keys() {
		if v, ok := s.configStore.Get(key); ok {
			values[key] = v
		}
	}
	return values
}

// Path returns the config file location.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getList(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}
