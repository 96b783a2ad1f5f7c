package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shopsphere-web/internal/models"
)

func TestGetReturnsIndependentState(t *testing.T) {
	store := NewStore(nil)

	state := models.NewSearchState()
	state.Query = "headphones"
	state.SearchPerformed = true
	store.Save("s1", state)

	a := store.Get("s1")
	b := store.Get("s1")
	require.NotSame(t, a, b, "each caller must get its own copy")

	// Mutating one caller's copy must not leak into another's.
	a.BeginSearch("speakers")
	assert.Equal(t, "headphones", b.Query)
	assert.Equal(t, "headphones", store.Get("s1").Query)
}

func TestGetUnknownSessionIsIdle(t *testing.T) {
	store := NewStore(nil)

	state := store.Get("never-seen")
	assert.Equal(t, models.ModePlain, state.Mode)
	assert.False(t, state.SearchActive())
}

func TestSaveThenGetRoundTrips(t *testing.T) {
	store := NewStore(nil)

	state := models.NewSearchState()
	state.Category = "Books"
	store.Save("s1", state)

	assert.Equal(t, "Books", store.Get("s1").Category)

	store.Delete("s1")
	assert.Empty(t, store.Get("s1").Category)
}

func TestDeleteKeepsSessionMutex(t *testing.T) {
	store := NewStore(nil)

	unlock := store.Lock("s1")
	store.mu.Lock()
	before := store.locks["s1"]
	store.mu.Unlock()

	store.Delete("s1")
	unlock()

	// The same mutex must still guard the session after a delete, so
	// a request racing the teardown is never granted a fresh one.
	store.mu.Lock()
	after, ok := store.locks["s1"]
	store.mu.Unlock()
	require.True(t, ok)
	assert.Same(t, before, after)
}
