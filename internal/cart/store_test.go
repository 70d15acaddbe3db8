package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStorage struct{ err error }

func (f failingStorage) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingStorage) Set(context.Context, string, []byte) error   { return f.err }

func TestLoadMissingIsEmpty(t *testing.T) {
	st := NewStore(NewMemoryStorage())
	s, err := st.Load(context.Background(), Key("sid-1"))
	require.NoError(t, err)
	assert.True(t, s.Empty())
	assert.NotNil(t, s.Items)
}

func TestDispatchPersistsEveryChange(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()
	st := NewStore(mem)
	key := Key("sid-1")

	_, err := st.Dispatch(ctx, key, AddItem(Item{ID: 1, Price: decimal.NewFromInt(10)}, 1))
	require.NoError(t, err)
	_, err = st.Dispatch(ctx, key, AddItem(Item{ID: 1, Price: decimal.NewFromInt(10)}, 2))
	require.NoError(t, err)

	raw, err := mem.Get(ctx, key)
	require.NoError(t, err)
	var persisted State
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Equal(t, 3, persisted.TotalItems)
	assert.True(t, decimal.NewFromInt(30).Equal(persisted.TotalPrice))

	// A fresh store over the same storage sees identical quantities.
	reloaded, err := NewStore(mem).Load(ctx, key)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, 3, reloaded.Items[0].Quantity)
}

func TestDispatchKeysAreIsolated(t *testing.T) {
	ctx := context.Background()
	st := NewStore(NewMemoryStorage())
	_, err := st.Dispatch(ctx, Key("a"), AddItem(Item{ID: 1, Price: decimal.NewFromInt(1)}, 1))
	require.NoError(t, err)

	b, err := st.Load(ctx, Key("b"))
	require.NoError(t, err)
	assert.True(t, b.Empty())
}

func TestConcurrentDispatchLosesNoUpdates(t *testing.T) {
	ctx := context.Background()
	st := NewStore(NewMemoryStorage())
	key := Key("busy")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.Dispatch(ctx, key, AddItem(Item{ID: 5, Price: decimal.NewFromInt(2)}, 1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, err := st.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 50, s.TotalItems)
}

func TestStorageErrorsSurface(t *testing.T) {
	boom := errors.New("boom")
	st := NewStore(failingStorage{err: boom})
	_, err := st.Dispatch(context.Background(), Key("x"), Open())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestCorruptSnapshotIsAnError(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()
	require.NoError(t, mem.Set(ctx, Key("bad"), []byte("{not json")))
	_, err := NewStore(mem).Load(ctx, Key("bad"))
	assert.Error(t, err)
}

func TestConsumeClearsOnlyOnSuccess(t *testing.T) {
	ctx := context.Background()
	st := NewStore(NewMemoryStorage())
	key := Key("sid-c")
	_, err := st.Dispatch(ctx, key, AddItem(item(1, "3"), 2))
	require.NoError(t, err)

	refused := errors.New("refused")
	err = st.Consume(ctx, key, func(s State) error {
		assert.Equal(t, 2, s.TotalItems)
		return refused
	})
	assert.ErrorIs(t, err, refused)
	kept, err := st.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, kept.TotalItems)

	require.NoError(t, st.Consume(ctx, key, func(State) error { return nil }))
	after, err := st.Load(ctx, key)
	require.NoError(t, err)
	assert.True(t, after.Empty())
	assert.True(t, after.IsOpen)
}

func TestConcurrentConsumeSeesBasketOnce(t *testing.T) {
	ctx := context.Background()
	st := NewStore(NewMemoryStorage())
	key := Key("sid-race")
	_, err := st.Dispatch(ctx, key, AddItem(item(1, "1"), 1))
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		full int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.Consume(ctx, key, func(s State) error {
				if !s.Empty() {
					mu.Lock()
					full++
					mu.Unlock()
				}
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, full)
}
