// ABOUTME: DB implements Store over a pluggable key/value Backend.
// ABOUTME: Writes are serialized, stamped by a monotonic clock, and fanned out to subscribers.

package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/harper/tigercub/internal/logging"
)

// Entry is one key/value pair returned by Backend.Scan.
type Entry struct {
	Key   string
	Value []byte
}

// Backend is the raw key/value storage under a DB. Get returns ErrNotFound
// for a missing key; Delete of a missing key is not an error.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Scan(ctx context.Context, prefix string) ([]Entry, error)
	Close() error
}

type DB struct {
	backend Backend
	log     *log.Logger
	clock   *clock
	poll    time.Duration

	// writeMu serializes read-modify-write cycles.
	writeMu sync.Mutex
	hub     *hub

	closed atomic.Bool
	stop   chan struct{}
	pollWG sync.WaitGroup
}

// Option configures a DB.
type Option func(*DB)

// WithClock sets the time source for server timestamps.
func WithClock(now func() time.Time) Option {
	return func(db *DB) {
		db.clock = newClock(now)
	}
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(db *DB) {
		db.log = logging.OrDiscard(l)
	}
}

// WithPollInterval re-reads every live subscription on the interval so
// changes written by other processes are delivered. Zero disables polling.
func WithPollInterval(d time.Duration) Option {
	return func(db *DB) {
		db.poll = d
	}
}

// New wraps backend. The DB owns the backend and closes it on Close.
func New(backend Backend, opts ...Option) *DB {
	db := &DB{
		backend: backend,
		log:     logging.Discard(),
		clock:   newClock(nil),
		hub:     newHub(),
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.poll > 0 {
		db.pollWG.Add(1)
		go db.pollLoop()
	}
	return db
}

var _ Store = (*DB)(nil)

// Create adds a document with a generated ID to collection.
func (db *DB) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	if err := ValidateCollection(collection); err != nil {
		return "", err
	}
	id := uuid.NewString()
	docPath := collection + "/" + id

	err := db.write(ctx, collection, func() error {
		now := db.clock.Next()
		doc := &Document{CreateTime: now, UpdateTime: now, Fields: map[string]json.RawMessage{}}
		if err := mergeFields(doc.Fields, fields, now); err != nil {
			return err
		}
		return db.put(ctx, docPath, doc)
	})
	if err != nil {
		return "", err
	}
	db.log.Debug("document created", "path", docPath)
	return id, nil
}

// Set replaces the fields of docPath, creating it if needed. The original
// create time is kept.
func (db *DB) Set(ctx context.Context, docPath string, fields Fields) error {
	if err := ValidateDocument(docPath); err != nil {
		return err
	}
	collection, _ := Parent(docPath)

	return db.write(ctx, collection, func() error {
		now := db.clock.Next()
		doc := &Document{CreateTime: now, UpdateTime: now, Fields: map[string]json.RawMessage{}}
		existing, err := db.get(ctx, docPath)
		switch {
		case err == nil:
			doc.CreateTime = existing.CreateTime
		case !errors.Is(err, ErrNotFound):
			return err
		}
		if err := mergeFields(doc.Fields, fields, now); err != nil {
			return err
		}
		return db.put(ctx, docPath, doc)
	})
}

// Update merges fields into an existing document. Fields not named are
// left as stored.
func (db *DB) Update(ctx context.Context, docPath string, fields Fields) error {
	if err := ValidateDocument(docPath); err != nil {
		return err
	}
	collection, _ := Parent(docPath)

	return db.write(ctx, collection, func() error {
		doc, err := db.get(ctx, docPath)
		if err != nil {
			return err
		}
		now := db.clock.Next()
		if err := mergeFields(doc.Fields, fields, now); err != nil {
			return err
		}
		doc.UpdateTime = now
		return db.put(ctx, docPath, doc)
	})
}

// Delete removes docPath. Deleting a missing document succeeds. Documents in
// sub-collections are not removed.
func (db *DB) Delete(ctx context.Context, docPath string) error {
	if err := ValidateDocument(docPath); err != nil {
		return err
	}
	collection, _ := Parent(docPath)

	err := db.write(ctx, collection, func() error {
		return db.backend.Delete(ctx, docPath)
	})
	if err != nil {
		return err
	}
	db.log.Debug("document deleted", "path", docPath)
	return nil
}

func (db *DB) Get(ctx context.Context, docPath string) (*Document, error) {
	if err := db.check(ctx); err != nil {
		return nil, err
	}
	if err := ValidateDocument(docPath); err != nil {
		return nil, err
	}
	return db.get(ctx, docPath)
}

// List returns the documents directly inside collection, ordered by q.
func (db *DB) List(ctx context.Context, collection string, q Query) ([]*Document, error) {
	if err := db.check(ctx); err != nil {
		return nil, err
	}
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}

	entries, err := db.backend.Scan(ctx, collection+"/")
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}

	docs := make([]*Document, 0, len(entries))
	for _, e := range entries {
		if !isDirectChild(collection, e.Key) {
			continue
		}
		doc, err := decodeRecord(e.Key, e.Value)
		if err != nil {
			db.log.Warn("skipping unreadable document", "path", e.Key, "err", err)
			continue
		}
		docs = append(docs, doc)
	}

	sortDocuments(docs, q)
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

// Subscribe delivers a snapshot of collection to fn now and after every
// change. Callbacks for one subscription run on a single goroutine.
func (db *DB) Subscribe(collection string, q Query, fn func(*Snapshot)) (*Subscription, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, errors.New("subscribe: nil callback")
	}

	sub := newSubscription(db, collection, q, fn)
	if !db.hub.add(sub) {
		return nil, ErrClosed
	}
	sub.notify()
	go sub.run()

	db.log.Debug("subscribed", "collection", collection, "order", q.OrderBy)
	return sub, nil
}

// Refresh re-reads every live subscription. Used after changes arrive
// from outside this process, such as a cloud sync.
func (db *DB) Refresh() {
	db.hub.notifyAll()
}

// Close cancels all subscriptions, waits for their goroutines, and closes
// the backend.
func (db *DB) Close() error {
	if !db.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(db.stop)
	db.pollWG.Wait()
	db.hub.closeAll()
	return db.backend.Close()
}

func (db *DB) check(ctx context.Context) error {
	if db.closed.Load() {
		return ErrClosed
	}
	return ctx.Err()
}

func (db *DB) write(ctx context.Context, collection string, fn func() error) error {
	if err := db.check(ctx); err != nil {
		return err
	}

	db.writeMu.Lock()
	err := fn()
	db.writeMu.Unlock()
	if err != nil {
		return err
	}

	db.hub.notify(collection)
	return nil
}

func (db *DB) get(ctx context.Context, docPath string) (*Document, error) {
	data, err := db.backend.Get(ctx, docPath)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", docPath, ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", docPath, err)
	}
	return decodeRecord(docPath, data)
}

func (db *DB) put(ctx context.Context, docPath string, doc *Document) error {
	data, err := encodeRecord(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", docPath, err)
	}
	if err := db.backend.Put(ctx, docPath, data); err != nil {
		return fmt.Errorf("put %s: %w", docPath, err)
	}
	return nil
}

func (db *DB) pollLoop() {
	defer db.pollWG.Done()
	ticker := time.NewTicker(db.poll)
	defer ticker.Stop()
	for {
		select {
		case <-db.stop:
			return
		case <-ticker.C:
			db.hub.notifyAll()
		}
	}
}
