package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".knowbase", "config.toml"), store.Path())
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("mcp.port", 9000))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0o600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_WritesTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("storage.data_dir", "/srv/kb"))
	require.NoError(t, store.Set("ingest.max_chunk_size", 800))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[storage]")
	assert.Contains(t, string(raw), "[ingest]")
	assert.Contains(t, string(raw), "/srv/kb")
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[storage]
data_dir = "/data/kb"

[ingest]
max_chunk_size = 1200
default_category = "Ümumi"

[import]
rate_per_second = 2.5
concurrency = 6
extensions = ["txt", "pdf"]
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0o600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "/data/kb", store.GetString("storage.data_dir"))
	assert.Equal(t, 1200, store.GetInt("ingest.max_chunk_size"))
	assert.Equal(t, "Ümumi", store.GetString("ingest.default_category"))
	assert.InDelta(t, 2.5, store.GetFloat("import.rate_per_second"), 1e-9)
	assert.InDelta(t, 6.0, store.GetFloat("import.concurrency"), 1e-9)
	assert.Equal(t, []string{"txt", "pdf"}, store.GetStringSlice("import.extensions"))
	assert.Equal(t, []string{
		"import.concurrency",
		"import.extensions",
		"import.rate_per_second",
		"ingest.default_category",
		"ingest.max_chunk_size",
		"storage.data_dir",
	}, store.Keys())
}

func TestConfigStore_SaveReload_PreservesData(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("storage.blob_dir", "/blobs"))
	require.NoError(t, store.Set("import.concurrency", 3))
	require.NoError(t, store.Set("import.rate_per_second", 0.5))
	require.NoError(t, store.Set("import.extensions", []string{"md", "txt"}))
	require.NoError(t, store.Set("verbose", true))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "/blobs", reloaded.GetString("storage.blob_dir"))
	assert.Equal(t, 3, reloaded.GetInt("import.concurrency"))
	assert.InDelta(t, 0.5, reloaded.GetFloat("import.rate_per_second"), 1e-9)
	assert.Equal(t, []string{"md", "txt"}, reloaded.GetStringSlice("import.extensions"))
	assert.True(t, reloaded.GetBool("verbose"))
	assert.Equal(t, store.Keys(), reloaded.Keys())
}

func TestConfigStore_TypeMismatch(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("key", "text"))

	assert.Zero(t, store.GetInt("key"))
	assert.Zero(t, store.GetFloat("key"))
	assert.False(t, store.GetBool("key"))
	assert.Nil(t, store.GetStringSlice("key"))
	assert.Empty(t, store.GetString("missing"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_ConflictingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("search", "plain"))

	err = store.Set("search.default_limit", 10)
	assert.Error(t, err)

	_, ok := store.Get("search.default_limit")
	assert.False(t, ok, "failed Set is rolled back")
	assert.Equal(t, "plain", store.GetString("search"))
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("channel", "before"))

	err = store.Set("channel", make(chan int))

	assert.Error(t, err)
	assert.Equal(t, "before", store.GetString("channel"))
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("test", "value"))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0o700))

	assert.Error(t, store.Set("another", "value"))
	assert.Error(t, store.Save())
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("valid", "data"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid toml syntax ][}{"), 0o600))

	assert.Error(t, store.Load())
}

func TestConfigStore_Load_NonExistent(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("key", "value"))
	require.NoError(t, os.Remove(store.Path()))

	require.NoError(t, store.Load())
	assert.Empty(t, store.Keys())
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("key", "value"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("import.concurrency", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("import.concurrency")
		}()
	}
	wg.Wait()

	_, ok := store.Get("import.concurrency")
	assert.True(t, ok)
}
