package sessions

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Store is the single source of truth for "am I logged in and as whom".
//
// Reads never fail: storage is assumed available, so a read error is logged
// and reported as an absent value. Writes return the storage error.
type Store interface {
	Token() (string, bool)
	SetToken(token string) error
	RefreshToken() (string, bool)
	SetRefreshToken(token string) error
	User() (*UserProfile, bool)
	SetUser(profile UserProfile) error
	// Clear removes the tokens and the cached user. Clearing an empty store is
	// not an error.
	Clear() error
}

// KVStore implements Store on top of a KV under the fixed keys.
type KVStore struct {
	kv KV
	mu sync.Mutex
}

var _ Store = (*KVStore)(nil)

func NewStore(kv KV) *KVStore {
	return &KVStore{kv: kv}
}

// NewMemoryStore is a Store that lives only as long as the process.
func NewMemoryStore() *KVStore {
	return NewStore(NewMemoryKV())
}

func (s *KVStore) Token() (string, bool) {
	return s.read(KeyAccessToken)
}

func (s *KVStore) SetToken(token string) error {
	return s.write(KeyAccessToken, token)
}

func (s *KVStore) RefreshToken() (string, bool) {
	return s.read(KeyRefreshToken)
}

func (s *KVStore) SetRefreshToken(token string) error {
	return s.write(KeyRefreshToken, token)
}

func (s *KVStore) User() (*UserProfile, bool) {
	raw, ok := s.read(KeyUser)
	if !ok {
		return nil, false
	}
	var u UserProfile
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		log.Err(err).Msg("Discarding unreadable cached user")
		return nil, false
	}
	return &u, true
}

func (s *KVStore) SetUser(profile UserProfile) error {
	b, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("[KVStore SetUser] encode user: %w", err)
	}
	return s.write(KeyUser, string(b))
}

func (s *KVStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(KeyAccessToken, KeyRefreshToken, KeyUser); err != nil {
		return fmt.Errorf("[KVStore Clear] %w", err)
	}
	return nil
}

func (s *KVStore) read(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok, err := s.kv.Get(key)
	if err != nil {
		log.Err(err).Str("key", key).Msg("Session read failed")
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (s *KVStore) write(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(key, value); err != nil {
		return fmt.Errorf("[KVStore] write %s: %w", key, err)
	}
	return nil
}
