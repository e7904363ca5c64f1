package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestScanFindsBothVariants(t *testing.T) {
	dataDir := t.TempDir()
	root := filepath.Join(dataDir, "golfer")

	touch(t, filepath.Join(root, "pro"), "trackman_20240501_session1_pro.csv")
	touch(t, filepath.Join(root, "pro"), "trackman_20240501_session2_pro.csv")
	touch(t, filepath.Join(root, "range"), "trackman_20240501_session1_range.csv")

	pro, rng := Scan(dataDir, "golfer")
	require.Len(t, pro, 2)
	require.Len(t, rng, 1)
	require.True(t, pro[SessionKey{"20240501", 1}])
	require.True(t, pro[SessionKey{"20240501", 2}])
	require.True(t, rng[SessionKey{"20240501", 1}])
}

func TestScanSkipsForeignFiles(t *testing.T) {
	dataDir := t.TempDir()
	proDir := filepath.Join(dataDir, "pro")

	touch(t, proDir, "trackman_20240501_session1_pro.csv")
	touch(t, proDir, "notes.txt")
	touch(t, proDir, "trackman_20240501_session1_range.csv") // wrong variant for this dir
	require.NoError(t, os.MkdirAll(filepath.Join(proDir, "subdir"), 0o755))

	pro, rng := Scan(dataDir, "")
	require.Len(t, pro, 1)
	require.Empty(t, rng)
}

func TestScanMissingDirsAreEmpty(t *testing.T) {
	pro, rng := Scan(filepath.Join(t.TempDir(), "nope"), "nobody")
	require.Empty(t, pro)
	require.Empty(t, rng)
}

func TestRootWithAndWithoutUsername(t *testing.T) {
	require.Equal(t, "/data", Root("/data", ""))
	require.Equal(t, filepath.Join("/data", "golfer"), Root("/data", "golfer"))
}
