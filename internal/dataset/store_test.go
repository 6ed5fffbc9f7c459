package dataset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLoader struct {
	calls   atomic.Int32
	delay   time.Duration
	failFor int32
}

func (l *countingLoader) Load(ctx context.Context) (*Table, error) {
	n := l.calls.Add(1)
	if l.delay > 0 {
		select {
		case <-time.After(l.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if n <= l.failFor {
		return nil, errors.New("transient failure")
	}
	return SampleTable(), nil
}

func TestStoreLoadsOnce(t *testing.T) {
	loader := &countingLoader{delay: 20 * time.Millisecond}
	store := NewStore(loader, 0)
	assert.False(t, store.Loaded())
	assert.Equal(t, 0, store.Rows())

	var wg sync.WaitGroup
	tables := make([]*Table, 16)
	for i := range tables {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			table, err := store.Table(context.Background())
			assert.NoError(t, err)
			tables[i] = table
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), loader.calls.Load())
	for _, table := range tables {
		assert.Same(t, tables[0], table)
	}
	assert.True(t, store.Loaded())
	assert.Equal(t, 5, store.Rows())
}

func TestStoreRetriesAfterFailure(t *testing.T) {
	loader := &countingLoader{failFor: 1}
	store := NewStore(loader, 0)

	_, err := store.Table(context.Background())
	require.Error(t, err)
	assert.False(t, store.Loaded())

	table, err := store.Table(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, table.Len())
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestStoreCallerCancellation(t *testing.T) {
	loader := &countingLoader{delay: 100 * time.Millisecond}
	store := NewStore(loader, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.Table(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// The load started by the cancelled caller still completes.
	require.NoError(t, store.Preload(context.Background()))
	assert.True(t, store.Loaded())
}

func TestStoreLoadTimeout(t *testing.T) {
	loader := &countingLoader{delay: time.Second}
	store := NewStore(loader, 10*time.Millisecond)

	_, err := store.Table(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStaticStore(t *testing.T) {
	table := SampleTable()
	store := NewStaticStore(table)
	assert.True(t, store.Loaded())

	got, err := store.Table(context.Background())
	require.NoError(t, err)
	assert.Same(t, table, got)
}
