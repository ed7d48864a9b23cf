// Package relay mediates extension messages (session checks, board lists,
// ad saves) between content scripts and the web app API, caching session
// validity and board lists with short TTLs.
package relay

import (
	"sync"
	"time"

	"swipeboard-utils/pkg/models"
)

// Cache holds session validity and the boards list with per-entry fetch
// timestamps. One instance is owned by the relay for its lifetime; the zero
// timestamps mean "never fetched", which reads as stale.
type Cache struct {
	mu sync.RWMutex

	sessionValid   bool
	sessionFetched time.Time
	sessionTTL     time.Duration

	boards        []models.Board
	boardsFetched time.Time
	boardsTTL     time.Duration

	now func() time.Time
}

// NewCache creates a cache with the given TTLs.
func NewCache(sessionTTL, boardsTTL time.Duration) *Cache {
	return &Cache{
		sessionTTL: sessionTTL,
		boardsTTL:  boardsTTL,
		now:        time.Now,
	}
}

// SessionStale reports whether the cached session validity has expired.
func (c *Cache) SessionStale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionFetched.IsZero() || c.now().Sub(c.sessionFetched) > c.sessionTTL
}

// SessionValid returns the cached session validity.
func (c *Cache) SessionValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionValid
}

// SetSession records a fresh session validity observation.
func (c *Cache) SetSession(valid bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionValid = valid
	c.sessionFetched = c.now()
}

// BoardsStale reports whether the boards list has expired or was never
// fetched. An empty cached list is treated as stale so a failed first load
// retries on the next request.
func (c *Cache) BoardsStale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.boardsFetched.IsZero() || len(c.boards) == 0 {
		return true
	}
	return c.now().Sub(c.boardsFetched) > c.boardsTTL
}

// Boards returns the cached boards list (possibly stale).
func (c *Cache) Boards() []models.Board {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Board, len(c.boards))
	copy(out, c.boards)
	return out
}

// SetBoards replaces the cached boards list.
func (c *Cache) SetBoards(boards []models.Board) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.boards = boards
	c.boardsFetched = c.now()
}

// InvalidateSession marks the session invalid and clears the boards cache.
// Called on any 401 from the upstream API.
func (c *Cache) InvalidateSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionValid = false
	c.sessionFetched = c.now()
	c.boards = nil
	c.boardsFetched = time.Time{}
}

// Clear resets the cache to its never-fetched state.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionValid = false
	c.sessionFetched = time.Time{}
	c.boards = nil
	c.boardsFetched = time.Time{}
}
