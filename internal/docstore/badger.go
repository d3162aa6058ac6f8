// ABOUTME: Badger key/value backend for the document store.
// ABOUTME: An empty directory opens an in-memory database.

package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
)

type badgerBackend struct {
	db *badger.DB
}

// OpenBadger opens a badger-backed DB in dir. With dir == "" the data lives
// in memory and is lost on Close.
func OpenBadger(dir string, opts ...Option) (*DB, error) {
	backend, err := NewBadgerBackend(dir)
	if err != nil {
		return nil, err
	}
	return New(backend, opts...), nil
}

func NewBadgerBackend(dir string) (Backend, error) {
	bopts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		bopts = bopts.WithInMemory(true)
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &badgerBackend{db: db}, nil
}

func (b *badgerBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return val, err
}

func (b *badgerBackend) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (b *badgerBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (b *badgerBackend) Scan(ctx context.Context, prefix string) ([]Entry, error) {
	var entries []Entry
	searchPrefix := []byte(prefix)

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = searchPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(searchPrefix); it.ValidForPrefix(searchPrefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			entries = append(entries, Entry{Key: string(item.KeyCopy(nil)), Value: val})
		}
		return nil
	})
	return entries, err
}

func (b *badgerBackend) Close() error {
	return b.db.Close()
}
