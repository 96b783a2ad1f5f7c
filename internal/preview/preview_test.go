package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}

func TestPutOpenRelease(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	id, err := store.Put(pngBytes)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	data, contentType, err := store.Open(id)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
	assert.Equal(t, "image/png", contentType)

	store.Release(id)
	_, _, err = store.Open(id)
	assert.Error(t, err, "a released preview must be gone")
}

func TestPutRejectsNonImage(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Put([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestReleaseIsIdempotent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	id, err := store.Put(pngBytes)
	require.NoError(t, err)

	store.Release(id)
	store.Release(id) // second release is a no-op
	store.Release("") // empty ID is a no-op
	store.Release("never-existed")
}

func TestCloseSweepsEverything(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	a, err := store.Put(pngBytes)
	require.NoError(t, err)
	b, err := store.Put(pngBytes)
	require.NoError(t, err)

	store.Close()

	_, _, err = store.Open(a)
	assert.Error(t, err)
	_, _, err = store.Open(b)
	assert.Error(t, err)
}
