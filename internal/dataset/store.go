package dataset

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pageza/dietrec/backend/internal/metrics"
)

// TableLoader produces a dataset table.
type TableLoader interface {
	Load(ctx context.Context) (*Table, error)
}

// Store owns the process-wide dataset handle. The first successful load is
// kept for the life of the store; concurrent callers share one in-flight
// load, and a failed load is retried by the next caller.
type Store struct {
	loader  TableLoader
	timeout time.Duration

	group singleflight.Group
	table atomic.Pointer[Table]
}

// NewStore creates a lazily loading store. timeout bounds each load attempt;
// zero means no bound.
func NewStore(loader TableLoader, timeout time.Duration) *Store {
	return &Store{loader: loader, timeout: timeout}
}

// NewStaticStore returns a store already holding table.
func NewStaticStore(table *Table) *Store {
	s := &Store{}
	s.table.Store(table)
	return s
}

// Table returns the dataset, loading it on first use. The load itself is not
// tied to ctx so that one impatient caller cannot fail the load for everyone
// waiting on it; ctx only bounds how long this caller waits.
func (s *Store) Table(ctx context.Context) (*Table, error) {
	if t := s.table.Load(); t != nil {
		return t, nil
	}

	ch := s.group.DoChan("dataset", func() (any, error) {
		if t := s.table.Load(); t != nil {
			return t, nil
		}

		loadCtx := context.WithoutCancel(ctx)
		if s.timeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, s.timeout)
			defer cancel()
		}

		start := time.Now()
		t, err := s.loader.Load(loadCtx)
		metrics.RecordDatasetLoad(t.Len(), time.Since(start), err)
		if err != nil {
			return nil, err
		}
		s.table.Store(t)
		return t, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Table), nil
	}
}

// Preload loads the dataset eagerly.
func (s *Store) Preload(ctx context.Context) error {
	_, err := s.Table(ctx)
	return err
}

// Loaded reports whether the dataset is resident.
func (s *Store) Loaded() bool {
	return s.table.Load() != nil
}

// Rows returns the number of resident rows, or zero before the first load.
func (s *Store) Rows() int {
	return s.table.Load().Len()
}
