// Package token tracks live session tokens and verifies their claims.
package token

import (
	"sync"

	"github.com/gofrs/uuid/v5"
)

// Lookup is the read-only view of the registry used by consumers that must
// never manage token lifecycle.
type Lookup interface {
	// TokenOf returns the live token of the user, if any.
	TokenOf(userID uuid.UUID) (string, bool)
}

// Registry maps live session tokens to their owners. At most one token is
// tracked per user; a newer login replaces the previous token.
type Registry struct {
	mu      sync.RWMutex
	byToken map[string]uuid.UUID
	byUser  map[uuid.UUID]string
}

var _ Lookup = (*Registry)(nil)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byToken: make(map[string]uuid.UUID),
		byUser:  make(map[uuid.UUID]string),
	}
}

// Put records token as the live token of userID.
func (r *Registry) Put(token string, userID uuid.UUID) {
	if token == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byUser[userID]; ok {
		delete(r.byToken, prev)
	}
	if prevUser, ok := r.byToken[token]; ok && prevUser != userID {
		delete(r.byUser, prevUser)
	}
	r.byToken[token] = userID
	r.byUser[userID] = token
}

// TokenOf returns the live token of userID.
func (r *Registry) TokenOf(userID uuid.UUID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byUser[userID]
	return t, ok
}

// UserOf returns the owner of token.
func (r *Registry) UserOf(token string) (uuid.UUID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byToken[token]
	return id, ok
}

// Remove forgets token. Unknown tokens are ignored.
func (r *Registry) Remove(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byToken[token]
	if !ok {
		return
	}
	delete(r.byToken, token)
	if r.byUser[id] == token {
		delete(r.byUser, id)
	}
}

// Len reports the number of live tokens.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byToken)
}
