// Package identity resolves member and user rows into user-facing
// identities. It is a pure read-through to the store; the only correctness
// window is a single request.
package identity

import (
	"sync"

	"chatstore/pkg/models"
	"chatstore/pkg/store"
)

// ResolveMember returns the member row or store.ErrNotFound.
func ResolveMember(id string) (models.Member, error) {
	return store.GetMember(id)
}

// ResolveUser returns the user row or store.ErrNotFound.
func ResolveUser(id string) (models.User, error) {
	return store.GetUser(id)
}

// Cache memoizes lookups for the duration of one page request, bounding
// identity cost to O(distinct authors in the page). Safe for concurrent use
// by the enrichment workers. Failed lookups are cached too: a deleted
// author stays deleted for the whole page.
type Cache struct {
	mu      sync.Mutex
	members map[string]memberEntry
	users   map[string]userEntry
}

type memberEntry struct {
	m   models.Member
	err error
}

type userEntry struct {
	u   models.User
	err error
}

// NewCache returns an empty per-request cache.
func NewCache() *Cache {
	return &Cache{
		members: make(map[string]memberEntry),
		users:   make(map[string]userEntry),
	}
}

// Member resolves a member id through the cache.
func (c *Cache) Member(id string) (models.Member, error) {
	c.mu.Lock()
	e, ok := c.members[id]
	c.mu.Unlock()
	if ok {
		return e.m, e.err
	}
	m, err := ResolveMember(id)
	c.mu.Lock()
	c.members[id] = memberEntry{m: m, err: err}
	c.mu.Unlock()
	return m, err
}

// User resolves a user id through the cache.
func (c *Cache) User(id string) (models.User, error) {
	c.mu.Lock()
	e, ok := c.users[id]
	c.mu.Unlock()
	if ok {
		return e.u, e.err
	}
	u, err := ResolveUser(id)
	c.mu.Lock()
	c.users[id] = userEntry{u: u, err: err}
	c.mu.Unlock()
	return u, err
}
