package rag

import "sync"

// Cache keeps loaded sessions in memory keyed by document ID, so repeated
// chat calls for the same document reuse the index and conversation memory.
type Cache struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewCache returns an empty session cache.
func NewCache() *Cache {
	return &Cache{sessions: make(map[string]*Session)}
}

// Get returns the cached session for a document, if any.
func (c *Cache) Get(docID string) (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[docID]
	return s, ok
}

// Put stores a session for a document, replacing any previous one.
func (c *Cache) Put(docID string, s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[docID] = s
}

// Evict drops the cached session for a document. Deleting a document must
// evict its session or a stale index would keep answering for it.
func (c *Cache) Evict(docID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, docID)
}
