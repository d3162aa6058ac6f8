// ABOUTME: Live collection subscriptions and the hub that fans writes out to them.
// ABOUTME: Each subscription reloads a full snapshot per change on its own goroutine.

package docstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// Subscription is a live view of one collection. Callbacks never overlap
// and arrive in the order the store produced them.
type Subscription struct {
	db         *DB
	collection string
	query      Query
	fn         func(*Snapshot)

	// kick holds at most one pending change, so bursts of writes coalesce
	// into a single reload.
	kick   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
	closed atomic.Bool

	seq       uint64
	lastPrint uint64
	delivered bool
}

func newSubscription(db *DB, collection string, q Query, fn func(*Snapshot)) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	return &Subscription{
		db:         db,
		collection: collection,
		query:      q,
		fn:         fn,
		kick:       make(chan struct{}, 1),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Collection returns the subscribed collection path.
func (s *Subscription) Collection() string {
	return s.collection
}

// Unsubscribe stops delivery. It never blocks, is safe to call more than
// once, and may be called from inside the callback. A snapshot whose
// delivery has already begun may still reach the callback once after
// Unsubscribe returns; nothing is delivered after Done is closed.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.closed.Store(true)
		s.cancel()
	})
}

// Done is closed once the delivery goroutine has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) notify() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *Subscription) run() {
	defer s.db.hub.remove(s)
	defer close(s.done)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.kick:
		}

		docs, err := s.db.List(s.ctx, s.collection, s.query)
		if s.ctx.Err() != nil {
			return
		}

		if err == nil {
			fp := fingerprint(docs)
			if s.delivered && fp == s.lastPrint {
				continue
			}
			s.lastPrint = fp
		} else {
			s.db.log.Warn("subscription reload failed", "collection", s.collection, "err", err)
			s.lastPrint = 0
		}

		if s.closed.Load() {
			return
		}
		s.delivered = true
		s.seq++
		s.fn(&Snapshot{Collection: s.collection, Docs: docs, Err: err, Seq: s.seq})
	}
}

// fingerprint hashes what a consumer can observe of a snapshot.
func fingerprint(docs []*Document) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, doc := range docs {
		_, _ = d.WriteString(doc.Path)
		binary.LittleEndian.PutUint64(buf[:], uint64(doc.UpdateTime.UnixNano()))
		_, _ = d.Write(buf[:])
		fields, _ := json.Marshal(doc.Fields)
		_, _ = d.Write(fields)
	}
	binary.LittleEndian.PutUint64(buf[:], uint64(len(docs)))
	_, _ = d.Write(buf[:])
	return d.Sum64()
}

// hub tracks live subscriptions by collection.
type hub struct {
	mu     sync.Mutex
	subs   map[string]map[*Subscription]struct{}
	closed bool
	wg     sync.WaitGroup
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[*Subscription]struct{})}
}

func (h *hub) add(s *Subscription) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	set, ok := h.subs[s.collection]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[s.collection] = set
	}
	set[s] = struct{}{}
	h.wg.Add(1)
	return true
}

func (h *hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[s.collection]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.collection)
		}
	}
	h.wg.Done()
}

func (h *hub) notify(collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs[collection] {
		s.notify()
	}
}

func (h *hub) notifyAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.subs {
		for s := range set {
			s.notify()
		}
	}
}

// closeAll cancels every subscription and waits for their goroutines.
func (h *hub) closeAll() {
	h.mu.Lock()
	h.closed = true
	var all []*Subscription
	for _, set := range h.subs {
		for s := range set {
			all = append(all, s)
		}
	}
	h.mu.Unlock()

	for _, s := range all {
		s.Unsubscribe()
	}
	h.wg.Wait()
}

// count reports live subscriptions on collection.
func (h *hub) count(collection string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[collection])
}
