package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/erp/backoffice/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add obligations index", "add_obligations_index"},
		{"Add-Obligations-Index", "add_obligations_index"},
		{"ADD__INDEX", "add_index"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add products index", "Speeds up name search", testNow)
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_products_index.up.sql"), first.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_add_products_index.down.sql"), first.DownPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Speeds up name search")
	assert.Contains(t, string(up), "2026-03-14T10:00:00Z")

	second, err := CreateMigration(dir, "drop notes", "", testNow)
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)

	_, err = CreateMigration(dir, "!!!", "", testNow)
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000010_later.up.sql":      {},
		"000010_later.down.sql":    {},
		"000002_first.up.sql":      {},
		"000002_first.down.sql":    {},
		"README.md":                {},
		"notaversion_x.up.sql":     {},
		"sub/000003_nested.up.sql": {},
	}

	files, err := ListMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, uint(2), files[0].Version)
	assert.Equal(t, "first", files[0].Name)
	assert.Equal(t, uint(10), files[1].Version)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	files, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "absent")))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestEmbeddedSchema(t *testing.T) {
	files, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for i, f := range files {
		assert.Equal(t, uint(i+1), f.Version, "versions are contiguous")
		_, err := migrations.FS.Open(f.UpPath[:len(f.UpPath)-len(upSuffix)] + ".down.sql")
		assert.NoError(t, err, "every up migration has a down migration")
	}
}
