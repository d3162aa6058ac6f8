// ABOUTME: Charm KV backend for the document store using the transactional Do API.
// ABOUTME: Short-lived connections avoid lock contention with other tigercub processes.

package charm

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	charmproto "github.com/charmbracelet/charm/proto"
	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v3"

	"github.com/harper/tigercub/internal/docstore"
	"github.com/harper/tigercub/internal/logging"
)

const (
	// DBName is the name of the charm kv database for tigercub.
	DBName = "tigercub"
)

// Client is a docstore.Backend over charm KV. It does NOT hold a
// persistent connection; each operation opens the database, does its
// work, and closes it.
type Client struct {
	dbName         string
	host           string
	autoSync       bool
	staleThreshold time.Duration
	log            *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithDBName sets the database name.
func WithDBName(name string) Option {
	return func(c *Client) {
		c.dbName = name
	}
}

// WithHost points the client at a self-hosted charm server.
func WithHost(host string) Option {
	return func(c *Client) {
		c.host = host
	}
}

// WithAutoSync enables or disables auto-sync after writes.
func WithAutoSync(enabled bool) Option {
	return func(c *Client) {
		c.autoSync = enabled
	}
}

// WithStaleThreshold syncs before reads when the last sync is older than d.
// Zero disables the check.
func WithStaleThreshold(d time.Duration) Option {
	return func(c *Client) {
		c.staleThreshold = d
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.log = logging.OrDiscard(l)
	}
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		dbName:   DBName,
		autoSync: true,
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.host != "" {
		if err := os.Setenv("CHARM_HOST", c.host); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Open returns a document store backed by charm KV.
func Open(opts []Option, storeOpts ...docstore.Option) (*docstore.DB, *Client, error) {
	c, err := NewClient(opts...)
	if err != nil {
		return nil, nil, err
	}
	return docstore.New(c, storeOpts...), c, nil
}

var _ docstore.Backend = (*Client)(nil)

// Get retrieves a value by key (read-only, no lock contention).
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.SyncIfStale(); err != nil {
		return nil, err
	}
	var val []byte
	err := kv.DoReadOnly(c.dbName, func(k *kv.KV) error {
		var err error
		val, err = k.Get([]byte(key))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) || (err == nil && val == nil) {
		return nil, docstore.ErrNotFound
	}
	return val, err
}

// Put stores a value with the given key.
func (c *Client) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.do(func(k *kv.KV) error {
		return k.Set([]byte(key), value)
	})
}

// Delete removes a key.
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.do(func(k *kv.KV) error {
		err := k.Delete([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// Scan returns every key/value pair whose key starts with prefix, in key order.
func (c *Client) Scan(ctx context.Context, prefix string) ([]docstore.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.SyncIfStale(); err != nil {
		return nil, err
	}

	var entries []docstore.Entry
	err := kv.DoReadOnly(c.dbName, func(k *kv.KV) error {
		keys, err := k.Keys()
		if err != nil {
			return err
		}
		for _, key := range keys {
			if !strings.HasPrefix(string(key), prefix) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			val, err := k.Get(key)
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			entries = append(entries, docstore.Entry{Key: string(key), Value: val})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Close is a no-op; connections close after each operation.
func (c *Client) Close() error {
	return nil
}

// do executes fn with write access, syncing afterwards when auto-sync is on.
func (c *Client) do(fn func(k *kv.KV) error) error {
	return kv.Do(c.dbName, func(k *kv.KV) error {
		if err := fn(k); err != nil {
			return err
		}
		if c.autoSync {
			return k.Sync()
		}
		return nil
	})
}

// Sync triggers a manual sync with the charm server.
func (c *Client) Sync() error {
	return kv.Do(c.dbName, func(k *kv.KV) error {
		return k.Sync()
	})
}

// LastSyncTime returns the timestamp of the last sync operation.
func (c *Client) LastSyncTime() time.Time {
	var lastSync time.Time
	_ = kv.DoReadOnly(c.dbName, func(k *kv.KV) error {
		lastSync = k.LastSyncTime()
		return nil
	})
	return lastSync
}

// IsStale checks if the data is stale based on the configured threshold.
func (c *Client) IsStale() bool {
	if c.staleThreshold == 0 {
		return false
	}
	var isStale bool
	_ = kv.DoReadOnly(c.dbName, func(k *kv.KV) error {
		isStale = k.IsStale(c.staleThreshold)
		return nil
	})
	return isStale
}

// SyncIfStale syncs with the charm server if data is stale.
func (c *Client) SyncIfStale() error {
	if !c.IsStale() {
		return nil
	}
	c.log.Info("data stale, syncing", "threshold", c.staleThreshold)
	return c.Sync()
}

// Reset clears all local data. Cloud data is kept and re-synced.
func (c *Client) Reset() error {
	return kv.Reset(c.dbName)
}

// Database returns the charm kv database name, for kv.Repair and kv.Wipe.
func (c *Client) Database() string {
	return c.dbName
}

// ID returns the charm user ID for this device.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", err
	}
	return cc.ID()
}

// User returns the current charm user information.
func (c *Client) User() (*charmproto.User, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return nil, err
	}
	return cc.Bio()
}

// Link initiates the charm linking process for this device.
func (c *Client) Link() error {
	_, err := c.User()
	return err
}

// Host returns the configured charm host, or "" for the default.
func (c *Client) Host() string {
	return c.host
}

// AutoSync reports whether writes are synced immediately.
func (c *Client) AutoSync() bool {
	return c.autoSync
}
