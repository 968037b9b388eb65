package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFileAvailability(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "import.txt")

	f, err := New(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	assert.False(t, f.Available())

	require.NoError(t, os.WriteFile(path, []byte("Milk\n"), 0o600))
	require.Eventually(t, f.Available, 2*time.Second, 10*time.Millisecond)
	select {
	case present := <-f.Changes():
		assert.True(t, present)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported after create")
	}

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool { return !f.Available() }, 2*time.Second, 10*time.Millisecond)
}

func TestFileIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	f, err := New(filepath.Join(dir, "import.txt"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), nil, 0o600))
	select {
	case <-f.Changes():
		t.Fatal("sibling file reported as a change")
	case <-time.After(200 * time.Millisecond):
	}
	assert.False(t, f.Available())
}

func TestFileAlreadyPresent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "import.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	f, err := New(path, nil)
	require.NoError(t, err)
	assert.True(t, f.Available())
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	_, open := <-f.Changes()
	assert.False(t, open)
}
