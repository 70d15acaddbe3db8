package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// ErrNotFound is returned by a Storage when nothing is stored under a key.
var ErrNotFound = errors.New("cart not found")

// Storage persists serialized baskets.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
}

const lockStripes = 64

// Store applies actions to persisted baskets. Every change is written back
// before Dispatch returns.
type Store struct {
	storage Storage
	locks   [lockStripes]sync.Mutex
}

func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Key is the storage key for a browser session.
func Key(sessionID string) string { return "cart:" + sessionID }

// Load rehydrates the basket stored under key. A missing key is an empty basket.
func (s *Store) Load(ctx context.Context, key string) (State, error) {
	data, err := s.storage.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return Reduce(State{}, Clear()), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("load cart: %w", err)
	}
	var snapshot State
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return State{}, fmt.Errorf("decode cart: %w", err)
	}
	return Reduce(State{}, Restore(snapshot)), nil
}

// Dispatch loads the basket, applies a, saves the result and returns it.
func (s *Store) Dispatch(ctx context.Context, key string, a Action) (State, error) {
	mu := s.lock(key)
	mu.Lock()
	defer mu.Unlock()

	cur, err := s.Load(ctx, key)
	if err != nil {
		return State{}, err
	}
	return s.save(ctx, key, Reduce(cur, a))
}

// Consume hands the basket to fn and clears it once fn succeeds. The key stays
// locked throughout, so concurrent callers see the basket one at a time and
// never the same contents twice.
func (s *Store) Consume(ctx context.Context, key string, fn func(State) error) error {
	mu := s.lock(key)
	mu.Lock()
	defer mu.Unlock()

	cur, err := s.Load(ctx, key)
	if err != nil {
		return err
	}
	if err := fn(cur); err != nil {
		return err
	}
	_, err = s.save(ctx, key, Reduce(cur, Clear()))
	return err
}

func (s *Store) lock(key string) *sync.Mutex {
	return &s.locks[xxhash.Sum64String(key)%lockStripes]
}

func (s *Store) save(ctx context.Context, key string, st State) (State, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return State{}, fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.Set(ctx, key, data); err != nil {
		return State{}, fmt.Errorf("save cart: %w", err)
	}
	return st, nil
}

// MemoryStorage keeps baskets in process memory.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: map[string][]byte{}}
}

func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *MemoryStorage) Set(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}
