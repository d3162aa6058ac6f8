// ABOUTME: Generic per-child collection used by goals, favorites, and notes.
// ABOUTME: Handles paths, timestamps, decoding, ordering, and live subscriptions.

package repo

import (
	"context"
	"fmt"

	"github.com/harper/tigercub/internal/docstore"
)

// newestFirst is the display order for every per-child collection.
var newestFirst = docstore.OrderBy("createdAt", docstore.Desc)

type childCollection[T any] struct {
	base
	kind   string
	withID func(*T, *docstore.Document)
}

func (c *childCollection[T]) path(uid, childID string) (string, error) {
	if err := requireUser(uid); err != nil {
		return "", err
	}
	if err := checkID("child", childID); err != nil {
		return "", err
	}
	return childPath(uid, childID, c.kind), nil
}

func (c *childCollection[T]) add(ctx context.Context, uid, childID string, fields map[string]any) (string, error) {
	coll, err := c.path(uid, childID)
	if err != nil {
		return "", err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	body := docstore.Fields(fields)
	body["createdAt"] = docstore.ServerTimestamp
	id, err := c.store.Create(ctx, coll, body)
	if err != nil {
		return "", c.writeError("create", coll, err)
	}
	c.log.Debug("added", "kind", c.kind, "child", childID, "id", id)
	return id, nil
}

func (c *childCollection[T]) update(ctx context.Context, uid, childID, id string, fields map[string]any) error {
	coll, err := c.path(uid, childID)
	if err != nil {
		return err
	}
	if err := checkID(c.kind, id); err != nil {
		return err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	docPath := docstore.Join(coll, id)
	if err := c.store.Update(ctx, docPath, docstore.Fields(fields)); err != nil {
		return c.writeError("update", docPath, err)
	}
	return nil
}

func (c *childCollection[T]) remove(ctx context.Context, uid, childID, id string) error {
	coll, err := c.path(uid, childID)
	if err != nil {
		return err
	}
	if err := checkID(c.kind, id); err != nil {
		return err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	docPath := docstore.Join(coll, id)
	if err := c.store.Delete(ctx, docPath); err != nil {
		return c.writeError("delete", docPath, err)
	}
	return nil
}

func (c *childCollection[T]) list(ctx context.Context, uid, childID string) ([]*T, error) {
	coll, err := c.path(uid, childID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	docs, err := c.store.List(ctx, coll, newestFirst)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.kind, err)
	}
	return c.decode(docs), nil
}

// subscribe delivers the full, newest-first list on every change.
func (c *childCollection[T]) subscribe(uid, childID string, fn func([]*T, error)) (*docstore.Subscription, error) {
	coll, err := c.path(uid, childID)
	if err != nil {
		return nil, err
	}
	return c.store.Subscribe(coll, newestFirst, func(snap *docstore.Snapshot) {
		if snap.Err != nil {
			fn(nil, fmt.Errorf("watch %s: %w", c.kind, snap.Err))
			return
		}
		fn(c.decode(snap.Docs), nil)
	})
}

func (c *childCollection[T]) resolve(ctx context.Context, uid, childID, prefix string, idOf func(*T) string) (*T, error) {
	items, err := c.list(ctx, uid, childID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = idOf(item)
	}
	id, err := matchPrefix(ids, prefix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.kind, err)
	}
	for _, item := range items {
		if idOf(item) == id {
			return item, nil
		}
	}
	return nil, nil
}

func (c *childCollection[T]) decode(docs []*docstore.Document) []*T {
	items := make([]*T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := doc.Decode(&item); err != nil {
			c.log.Warn("skipping malformed document", "path", doc.Path, "err", err)
			continue // Skip invalid records
		}
		c.withID(&item, doc)
		items = append(items, &item)
	}
	return items
}
