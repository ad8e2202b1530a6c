// sessions/tokenstore.go
package sessions

import (
	"fmt"
	"sync"

	"github.com/boxtools/go-box-client/tokenmanager"
)

// TokenStore persists a token pair outside the process so refresh tokens
// survive restarts and can be shared between instances. Implementations must
// be safe for concurrent use.
type TokenStore interface {
	Read() (*tokenmanager.TokenInfo, error)
	Write(info *tokenmanager.TokenInfo) error
	Clear() error
}

// TokenStoreError wraps a failure from a TokenStore so callers can tell
// storage problems apart from authentication problems.
type TokenStoreError struct {
	Op  string // "read", "write" or "clear"
	Err error
}

func (e *TokenStoreError) Error() string {
	return fmt.Sprintf("token store %s failed: %v", e.Op, e.Err)
}

func (e *TokenStoreError) Unwrap() error {
	return e.Err
}

// MemoryTokenStore keeps the token pair in process memory. Useful for tests
// and single-process deployments where persistence across restarts is not
// needed.
type MemoryTokenStore struct {
	mu   sync.Mutex
	info *tokenmanager.TokenInfo
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Read() (*tokenmanager.TokenInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info, nil
}

func (s *MemoryTokenStore) Write(info *tokenmanager.TokenInfo) error {
	s.mu.Lock()
	s.info = info
	s.mu.Unlock()
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	s.info = nil
	s.mu.Unlock()
	return nil
}
