// ABOUTME: Test doubles shared by repository tests.
// ABOUTME: A store wrapper that counts calls and injects write faults or slow reads.

package repo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harper/tigercub/internal/docstore"
)

const waitFor = 2 * time.Second

var errInjected = errors.New("injected failure")

// faultyStore counts every store call and can be told to fail or stall
// writes until the caller's context expires, or to slow down reads.
type faultyStore struct {
	docstore.Store
	calls      atomic.Int64
	failWrites atomic.Bool
	stall      atomic.Bool
	getDelay   atomic.Int64
}

func (s *faultyStore) writeFault(ctx context.Context) error {
	if s.stall.Load() {
		<-ctx.Done()
		return ctx.Err()
	}
	if s.failWrites.Load() {
		return errInjected
	}
	return nil
}

func (s *faultyStore) Create(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	s.calls.Add(1)
	if err := s.writeFault(ctx); err != nil {
		return "", err
	}
	return s.Store.Create(ctx, collection, fields)
}

func (s *faultyStore) Update(ctx context.Context, docPath string, fields docstore.Fields) error {
	s.calls.Add(1)
	if err := s.writeFault(ctx); err != nil {
		return err
	}
	return s.Store.Update(ctx, docPath, fields)
}

func (s *faultyStore) Delete(ctx context.Context, docPath string) error {
	s.calls.Add(1)
	if err := s.writeFault(ctx); err != nil {
		return err
	}
	return s.Store.Delete(ctx, docPath)
}

func (s *faultyStore) Set(ctx context.Context, docPath string, fields docstore.Fields) error {
	s.calls.Add(1)
	return s.Store.Set(ctx, docPath, fields)
}

func (s *faultyStore) Get(ctx context.Context, docPath string) (*docstore.Document, error) {
	s.calls.Add(1)
	if d := time.Duration(s.getDelay.Load()); d > 0 {
		time.Sleep(d)
	}
	return s.Store.Get(ctx, docPath)
}

func (s *faultyStore) List(ctx context.Context, collection string, q docstore.Query) ([]*docstore.Document, error) {
	s.calls.Add(1)
	return s.Store.List(ctx, collection, q)
}

func (s *faultyStore) Subscribe(collection string, q docstore.Query, fn func(*docstore.Snapshot)) (*docstore.Subscription, error) {
	s.calls.Add(1)
	return s.Store.Subscribe(collection, q, fn)
}

func newTestStore(t *testing.T) *faultyStore {
	t.Helper()
	db, err := docstore.OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &faultyStore{Store: db}
}

// latest keeps the most recent value delivered by a subscription.
type latest[T any] struct {
	mu    sync.Mutex
	items []*T
	err   error
	n     int
}

func (l *latest[T]) set(items []*T, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items, l.err = items, err
	l.n++
}

func (l *latest[T]) get() ([]*T, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items, l.n
}
