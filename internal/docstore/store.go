// ABOUTME: Path-addressed document store contract with live snapshot subscriptions.
// ABOUTME: Collections hold JSON documents; writes notify subscribers of the collection.

package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidPath = errors.New("invalid path")
	ErrClosed      = errors.New("store closed")
)

// Fields is a document body as written. Values are JSON-encoded on write;
// ServerTimestamp and DeleteField are interpreted by the store.
type Fields map[string]any

type sentinel struct{ name string }

func (s *sentinel) String() string { return s.name }

var (
	// ServerTimestamp is replaced with the store clock's time on write.
	ServerTimestamp = &sentinel{"serverTimestamp"}

	// DeleteField removes the field from the stored document.
	DeleteField = &sentinel{"deleteField"}
)

// Document is one stored document. Fields stay raw until decoded.
type Document struct {
	ID         string
	Path       string
	CreateTime time.Time
	UpdateTime time.Time
	Fields     map[string]json.RawMessage
}

// Decode unmarshals the document fields into v.
func (d *Document) Decode(v any) error {
	data, err := json.Marshal(d.Fields)
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.Path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", d.Path, err)
	}
	return nil
}

// Has reports whether field is present and not null.
func (d *Document) Has(field string) bool {
	raw, ok := d.Fields[field]
	return ok && string(raw) != "null"
}

type Direction int

const (
	Asc Direction = iota
	Desc
)

// Query orders and limits a collection listing. The zero Query returns
// documents in creation order.
type Query struct {
	OrderBy   string
	Direction Direction
	Limit     int
}

// OrderBy is shorthand for a Query on field.
func OrderBy(field string, dir Direction) Query {
	return Query{OrderBy: field, Direction: dir}
}

// Snapshot is the full, ordered content of a collection at one moment.
// Err is set when the listing failed; Docs is then nil.
type Snapshot struct {
	Collection string
	Docs       []*Document
	Err        error
	Seq        uint64
}

// Store is implemented by DB. Repositories depend on this interface so
// tests can wrap or replace it.
type Store interface {
	Create(ctx context.Context, collection string, fields Fields) (string, error)
	Set(ctx context.Context, docPath string, fields Fields) error
	Get(ctx context.Context, docPath string) (*Document, error)
	Update(ctx context.Context, docPath string, fields Fields) error
	Delete(ctx context.Context, docPath string) error
	List(ctx context.Context, collection string, q Query) ([]*Document, error)
	Subscribe(collection string, q Query, fn func(*Snapshot)) (*Subscription, error)
	Close() error
}
