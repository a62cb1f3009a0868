package artifact

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestChecksumIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.bin")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	a, err := Checksum(path)
	require.NoError(t, err)
	b, err := Checksum(path)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestStorePackageFlattensWrappingDirectory(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "games"))
	require.NoError(t, err)

	zipPath := filepath.Join(dir, "upload.zip")
	writeTestZip(t, zipPath, map[string]string{
		"mygame-1.0/game_server.py": "# server",
		"mygame-1.0/assets/a.txt":   "asset",
	})

	require.NoError(t, store.StorePackage(42, "1.0.0", zipPath))

	versionDir := store.VersionDir(42, "1.0.0")
	assert.FileExists(t, filepath.Join(versionDir, "game_package.zip"))
	assert.FileExists(t, filepath.Join(versionDir, "game_server.py"))
	assert.FileExists(t, filepath.Join(versionDir, "assets", "a.txt"))
	assert.NoFileExists(t, filepath.Join(versionDir, "mygame-1.0"))

	link := store.CurrentLink(42)
	target, err := os.Readlink(link)
	if err == nil {
		assert.Equal(t, "1.0.0", target)
	} else {
		assert.FileExists(t, filepath.Join(link, "game_server.py"))
	}
}

func TestStorePackageWithoutSentinelExtractsEverything(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "games"))
	require.NoError(t, err)

	zipPath := filepath.Join(dir, "upload.zip")
	writeTestZip(t, zipPath, map[string]string{
		"readme.txt": "no sentinel here",
	})

	require.NoError(t, store.StorePackage(7, "1.0.0", zipPath))

	versionDir := store.VersionDir(7, "1.0.0")
	assert.FileExists(t, filepath.Join(versionDir, "readme.txt"))
}
