package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"shopsphere-web/internal/models"
)

// A nil *RedisCache must behave as a cache miss everywhere so the
// server keeps serving when Redis is down.
func TestNilCacheIsSafe(t *testing.T) {
	var c *RedisCache

	assert.False(t, c.IsAvailable())

	_, err := c.GetCatalog()
	assert.Error(t, err)
	assert.Error(t, c.SetCatalog([]models.Product{{ID: "1"}}))

	_, err = c.GetSessionState("s1")
	assert.Error(t, err)
	assert.Error(t, c.SetSessionState("s1", models.NewSearchState()))
	assert.Error(t, c.DeleteSessionState("s1"))

	assert.Error(t, c.FlushCache())
	assert.NoError(t, c.Close())
	assert.Equal(t, "unavailable", c.GetStats()["status"])
}
