package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/knowbase/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/knowbase/internal/core/domain"
)

func newSettings(values map[string]any, env map[string]string) *SettingsService {
	s := NewSettingsService(memory.NewConfigStore(values))
	s.SetEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	s.homeDir = func() (string, error) { return "/home/kb", nil }
	return s
}

func TestSettingsService_Get_Defaults(t *testing.T) {
	settings, err := newSettings(nil, nil).Get()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/home/kb", ".knowbase", "data"), settings.Storage.DataDir)
	assert.Equal(t, filepath.Join("/home/kb", ".knowbase", "data", "files"), settings.Storage.BlobDir)
	assert.Equal(t, domain.DefaultMaxChunkSize, settings.Ingest.MaxChunkSize)
	assert.Equal(t, int64(domain.DefaultMaxUploadBytes), settings.Ingest.MaxUploadBytes)
	assert.Equal(t, domain.DefaultCategory, settings.Ingest.DefaultCategory)
	assert.Equal(t, domain.DefaultConcurrency, settings.Import.Concurrency)
	assert.Zero(t, settings.Import.RatePerSecond)
	assert.Equal(t, domain.DefaultImportExtensions(), settings.Import.Extensions)
	assert.Equal(t, domain.DefaultSearchLimit, settings.Search.DefaultLimit)
	assert.Zero(t, settings.MCP.Port)
}

func TestSettingsService_Get_StoredValues(t *testing.T) {
	settings, err := newSettings(map[string]any{
		KeyDataDir:         "/srv/kb",
		KeyMaxChunkSize:    int64(500),
		KeyDefaultCategory: "Ümumi",
		KeyConcurrency:     8,
		KeyRatePerSecond:   2.5,
		KeyExtensions:      []any{"txt", "pdf"},
		KeySearchLimit:     5,
		KeyMCPPort:         8080,
	}, nil).Get()
	require.NoError(t, err)

	assert.Equal(t, "/srv/kb", settings.Storage.DataDir)
	assert.Equal(t, filepath.Join("/srv/kb", "files"), settings.Storage.BlobDir)
	assert.Equal(t, 500, settings.Ingest.MaxChunkSize)
	assert.Equal(t, "Ümumi", settings.Ingest.DefaultCategory)
	assert.Equal(t, 8, settings.Import.Concurrency)
	assert.InDelta(t, 2.5, settings.Import.RatePerSecond, 1e-9)
	assert.Equal(t, []string{"txt", "pdf"}, settings.Import.Extensions)
	assert.Equal(t, 5, settings.Search.DefaultLimit)
	assert.Equal(t, 8080, settings.MCP.Port)
}

func TestSettingsService_Get_EnvOverrides(t *testing.T) {
	settings, err := newSettings(map[string]any{KeyDataDir: "/srv/kb", KeyMaxChunkSize: 500}, map[string]string{
		EnvDataDir:      "/env/data",
		EnvBlobDir:      "/env/blobs",
		EnvMaxChunkSize: "250",
	}).Get()
	require.NoError(t, err)

	assert.Equal(t, "/env/data", settings.Storage.DataDir)
	assert.Equal(t, "/env/blobs", settings.Storage.BlobDir)
	assert.Equal(t, 250, settings.Ingest.MaxChunkSize)
}

func TestSettingsService_Get_InvalidEnv(t *testing.T) {
	for _, v := range []string{"abc", "0", "-5"} {
		_, err := newSettings(nil, map[string]string{EnvMaxChunkSize: v}).Get()
		assert.ErrorIs(t, err, domain.ErrInvalidInput, v)
	}
}

func TestSettingsService_Set(t *testing.T) {
	s := newSettings(nil, nil)

	require.NoError(t, s.Set(KeyMaxChunkSize, " 750 "))
	require.NoError(t, s.Set(KeyRatePerSecond, "0.5"))
	require.NoError(t, s.Set(KeyExtensions, "txt, md,,pdf "))
	require.NoError(t, s.Set(KeyDefaultCategory, " Legal "))

	settings, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, 750, settings.Ingest.MaxChunkSize)
	assert.InDelta(t, 0.5, settings.Import.RatePerSecond, 1e-9)
	assert.Equal(t, []string{"txt", "md", "pdf"}, settings.Import.Extensions)
	assert.Equal(t, "Legal", settings.Ingest.DefaultCategory)

	values := s.Values()
	assert.Len(t, values, 4)
	assert.Equal(t, 750, values[KeyMaxChunkSize])
	assert.Equal(t, ":memory:", s.Path())
}

func TestSettingsService_Set_Invalid(t *testing.T) {
	s := newSettings(nil, nil)

	tests := []struct{ key, value string }{
		{"unknown.key", "x"},
		{KeyMaxChunkSize, "big"},
		{KeyMaxChunkSize, "-1"},
		{KeyRatePerSecond, "fast"},
		{KeyRatePerSecond, "-0.5"},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, s.Set(tt.key, tt.value), domain.ErrInvalidInput, "%s=%s", tt.key, tt.value)
	}
	assert.Empty(t, s.Values())
}
