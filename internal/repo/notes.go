// ABOUTME: Running log of notes about one child, newest first.
// ABOUTME: Text and tag can be edited independently; createdAt never changes.

package repo

import (
	"context"

	"github.com/harper/tigercub/internal/docstore"
	"github.com/harper/tigercub/internal/models"
)

type NoteRepository struct {
	coll childCollection[models.Note]
}

func NewNoteRepository(store docstore.Store, opts ...Option) *NoteRepository {
	return &NoteRepository{coll: childCollection[models.Note]{
		base: newBase(store, opts),
		kind: notesColl,
		withID: func(n *models.Note, doc *docstore.Document) {
			n.ID = doc.ID
			if n.CreatedAt.IsZero() {
				n.CreatedAt = doc.CreateTime
			}
		},
	}}
}

func (r *NoteRepository) Add(ctx context.Context, uid, childID string, in models.NoteInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	return r.coll.add(ctx, uid, childID, in.Fields())
}

func (r *NoteRepository) Update(ctx context.Context, uid, childID, noteID string, u models.NoteUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}
	return r.coll.update(ctx, uid, childID, noteID, u.Fields())
}

func (r *NoteRepository) Remove(ctx context.Context, uid, childID, noteID string) error {
	return r.coll.remove(ctx, uid, childID, noteID)
}

func (r *NoteRepository) List(ctx context.Context, uid, childID string) ([]*models.Note, error) {
	return r.coll.list(ctx, uid, childID)
}

func (r *NoteRepository) Subscribe(uid, childID string, fn func([]*models.Note, error)) (*docstore.Subscription, error) {
	return r.coll.subscribe(uid, childID, fn)
}

func (r *NoteRepository) Resolve(ctx context.Context, uid, childID, prefix string) (*models.Note, error) {
	return r.coll.resolve(ctx, uid, childID, prefix, func(n *models.Note) string { return n.ID })
}
