// Package memory provides in-memory implementations of the storage ports.
package memory

import (
	"context"
	"sync"

	"github.com/artpar/commercekit/domain/oauth"
	"github.com/artpar/commercekit/ports"
)

// TokenStore is an in-memory implementation of ports.TokenStore.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]oauth.Token
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens: make(map[string]oauth.Token),
	}
}

// Get returns the cached token.
func (s *TokenStore) Get(ctx context.Context, key string) (oauth.Token, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tok, ok := s.tokens[key]
	return tok, ok, nil
}

// Set stores a token.
func (s *TokenStore) Set(ctx context.Context, key string, token oauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[key] = token
	return nil
}

// Delete removes a token.
func (s *TokenStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, key)
	return nil
}

// Len returns the number of cached tokens.
func (s *TokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// Ensure interface compliance.
var _ ports.TokenStore = (*TokenStore)(nil)
