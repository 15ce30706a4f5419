package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/knowbase/internal/core/domain"
)

func TestImportCmd_DefaultExtensions(t *testing.T) {
	ts := setupTestServices(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")
	writeFile(t, dir, "b.md", "# beta")
	writeFile(t, dir, "c.bin", "gamma")
	writeFile(t, dir, "sub/d.txt", "delta")

	out, err := runCLI(t, "import", dir)

	require.NoError(t, err)
	assert.Contains(t, out, "Attempted: 2  Succeeded: 2  Failed: 0")

	files, err := ts.Files.List(context.Background(), domain.BulkImportCategory)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestImportCmd_RecursiveAllExtensions(t *testing.T) {
	ts := setupTestServices(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")
	writeFile(t, dir, "c.bin", "gamma")
	writeFile(t, dir, "sub/d.txt", "delta")

	out, err := runCLI(t, "import", dir, "-r", "--ext", "*", "--category", "Archive", "--output", "json")
	require.NoError(t, err)

	var report domain.ImportReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, 3, report.Succeeded)

	files, err := ts.Files.List(context.Background(), "Archive")
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestImportCmd_ExtensionFlag(t *testing.T) {
	setupTestServices(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")
	writeFile(t, dir, "b.md", "# beta")

	out, err := runCLI(t, "import", dir, "--ext", ".MD")

	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "b.md"))
	assert.NotContains(t, out, filepath.Join(dir, "a.txt"))
	assert.Contains(t, out, "Attempted: 1")
}

func TestImportCmd_MissingDir(t *testing.T) {
	setupTestServices(t)

	_, err := runCLI(t, "import", filepath.Join(t.TempDir(), "nope"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 2, ExitCode(err))
}

func TestParseExtensions(t *testing.T) {
	assert.Nil(t, parseExtensions("*"))
	assert.Nil(t, parseExtensions(""))
	assert.Equal(t, []string{"pdf", "md"}, parseExtensions(".PDF, md"))
}
