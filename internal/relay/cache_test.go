package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"swipeboard-utils/pkg/models"
)

func testCache(sessionTTL, boardsTTL time.Duration, now *time.Time) *Cache {
	c := NewCache(sessionTTL, boardsTTL)
	c.now = func() time.Time { return *now }
	return c
}

func TestCacheSessionStaleness(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := testCache(60*time.Second, 5*time.Minute, &now)

	assert.True(t, c.SessionStale(), "never-fetched session is stale")

	c.SetSession(true)
	assert.False(t, c.SessionStale())
	assert.True(t, c.SessionValid())

	now = now.Add(61 * time.Second)
	assert.True(t, c.SessionStale())
	assert.True(t, c.SessionValid(), "staleness does not erase the cached value")
}

func TestCacheBoardsStaleness(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := testCache(60*time.Second, 5*time.Minute, &now)

	assert.True(t, c.BoardsStale())

	c.SetBoards([]models.Board{{ID: "b1", Name: "Inspiration"}})
	assert.False(t, c.BoardsStale())

	now = now.Add(5*time.Minute + time.Second)
	assert.True(t, c.BoardsStale())
	assert.Len(t, c.Boards(), 1, "stale boards remain readable")
}

func TestCacheEmptyBoardsAlwaysStale(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := testCache(time.Minute, 5*time.Minute, &now)

	c.SetBoards([]models.Board{})
	assert.True(t, c.BoardsStale(), "a failed empty load retries next request")
}

func TestCacheInvalidateSession(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := testCache(time.Minute, 5*time.Minute, &now)

	c.SetSession(true)
	c.SetBoards([]models.Board{{ID: "b1"}})

	c.InvalidateSession()
	assert.False(t, c.SessionValid())
	assert.False(t, c.SessionStale(), "invalidation is a fresh observation")
	assert.Empty(t, c.Boards())
	assert.True(t, c.BoardsStale())
}

func TestCacheClear(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := testCache(time.Minute, 5*time.Minute, &now)

	c.SetSession(true)
	c.SetBoards([]models.Board{{ID: "b1"}})
	c.Clear()

	assert.True(t, c.SessionStale())
	assert.True(t, c.BoardsStale())
	assert.Empty(t, c.Boards())
}

func TestCacheBoardsCopyIsolation(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := testCache(time.Minute, 5*time.Minute, &now)

	c.SetBoards([]models.Board{{ID: "b1", Name: "Original"}})
	got := c.Boards()
	got[0].Name = "Mutated"

	assert.Equal(t, "Original", c.Boards()[0].Name)
}
