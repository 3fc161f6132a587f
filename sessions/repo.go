package sessions

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/articulink/admin-dashboard/internal/errors"
)

// createdAtKey marks a namespace as an existing browser session. It is not
// touched by Store.Clear, so a logged out browser keeps its session id.
const (
	createdAtKey    = "_created_at"
	createdAtLayout = "2006-01-02T15:04:05.000000000Z"
)

// Repo hands out one Store per browser session id.
type Repo interface {
	// Create starts a new empty session and returns its id.
	Create() (id string, store Store, err error)
	// Get returns the store of an existing session.
	Get(id string) (Store, error)
	// Delete forgets a session entirely. Unknown ids are not an error.
	Delete(id string) error
	// DeleteExpired removes sessions created before the given time.
	DeleteExpired(before time.Time) error
}

type memoryEntry struct {
	store     *KVStore
	createdAt time.Time
}

// InMemoryRepo keeps browser sessions in process memory.
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
}

var _ Repo = (*InMemoryRepo)(nil)

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]memoryEntry),
	}
}

func (r *InMemoryRepo) Create() (string, Store, error) {
	id := uuid.New().String()
	store := NewMemoryStore()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = memoryEntry{store: store, createdAt: NowTimeFunc()}
	return id, store, nil
}

func (r *InMemoryRepo) Get(id string) (Store, error) {
	if id == "" {
		return nil, fmt.Errorf("session id is required: %w", apperrors.ErrInvalidRequest)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, apperrors.ErrNotFound)
	}
	return e.store, nil
}

func (r *InMemoryRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *InMemoryRepo) DeleteExpired(before time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.sessions {
		if e.createdAt.Before(before) {
			delete(r.sessions, id)
		}
	}
	return nil
}

// SQLRepo keeps browser sessions in the session_kv table so they survive a
// dashboard restart.
type SQLRepo struct {
	db *DB
}

var _ Repo = (*SQLRepo)(nil)

func NewSQLRepo(db *DB) *SQLRepo {
	return &SQLRepo{db: db}
}

func (r *SQLRepo) Create() (string, Store, error) {
	id := uuid.New().String()
	kv := NewSQLKV(r.db, id)
	if err := kv.Set(createdAtKey, NowTimeFunc().UTC().Format(createdAtLayout)); err != nil {
		return "", nil, fmt.Errorf("[SQLRepo Create] %w", err)
	}
	return id, NewStore(kv), nil
}

func (r *SQLRepo) Get(id string) (Store, error) {
	if id == "" {
		return nil, fmt.Errorf("session id is required: %w", apperrors.ErrInvalidRequest)
	}
	kv := NewSQLKV(r.db, id)
	_, ok, err := kv.Get(createdAtKey)
	if err != nil {
		return nil, fmt.Errorf("[SQLRepo Get] %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, apperrors.ErrNotFound)
	}
	return NewStore(kv), nil
}

func (r *SQLRepo) Delete(id string) error {
	return NewSQLKV(r.db, id).Drop()
}

func (r *SQLRepo) DeleteExpired(before time.Time) error {
	_, err := r.db.Exec(
		r.db.query(`DELETE FROM session_kv WHERE session_id IN (SELECT session_id FROM session_kv WHERE key = %s AND value < %s)`, 2),
		createdAtKey, before.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return fmt.Errorf("[SQLRepo DeleteExpired] %w", err)
	}
	return nil
}
