package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitChange(t *testing.T, w *Watcher) string {
	t.Helper()
	select {
	case p := <-w.Changes():
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
		return ""
	}
}

func TestReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.glsl")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	w, err := New(20*time.Millisecond, path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("b"), 0o644))
	assert.Equal(t, path, waitChange(t, w))
}

func TestIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.glsl")
	other := filepath.Join(dir, "notes.txt")

	w, err := New(20*time.Millisecond, path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("y"), 0o644))
	assert.Equal(t, path, waitChange(t, w))
}

func TestRenameIntoPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")

	w, err := New(20*time.Millisecond, path)
	require.NoError(t, err)
	defer w.Close()

	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte("[grid]"), 0o644))
	require.NoError(t, os.Rename(tmp, path))
	assert.Equal(t, path, waitChange(t, w))
}

func TestBurstIsCollapsed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.glsl")

	w, err := New(200*time.Millisecond, path)
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
	}
	assert.Equal(t, path, waitChange(t, w))

	select {
	case p := <-w.Changes():
		t.Fatalf("unexpected second change %s", p)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestCloseClosesChanges(t *testing.T) {
	w, err := New(DefaultDebounce, filepath.Join(t.TempDir(), "x"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-w.Changes()
	assert.False(t, ok)
}

func TestDrain(t *testing.T) {
	ch := make(chan string, 4)
	ch <- "a"
	ch <- "b"
	ch <- "a"
	assert.Equal(t, []string{"a", "b"}, Drain(ch))
	assert.Empty(t, Drain(ch))

	close(ch)
	assert.Empty(t, Drain(ch))
}
