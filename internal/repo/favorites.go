// ABOUTME: Favorite activities saved for one child, newest first.
// ABOUTME: Favorites are added and removed but never edited.

package repo

import (
	"context"

	"github.com/harper/tigercub/internal/docstore"
	"github.com/harper/tigercub/internal/models"
)

type FavoriteRepository struct {
	coll childCollection[models.Favorite]
}

func NewFavoriteRepository(store docstore.Store, opts ...Option) *FavoriteRepository {
	return &FavoriteRepository{coll: childCollection[models.Favorite]{
		base: newBase(store, opts),
		kind: favoritesColl,
		withID: func(f *models.Favorite, doc *docstore.Document) {
			f.ID = doc.ID
			if f.CreatedAt.IsZero() {
				f.CreatedAt = doc.CreateTime
			}
		},
	}}
}

func (r *FavoriteRepository) Add(ctx context.Context, uid, childID string, in models.FavoriteInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	return r.coll.add(ctx, uid, childID, in.Fields())
}

func (r *FavoriteRepository) Remove(ctx context.Context, uid, childID, favoriteID string) error {
	return r.coll.remove(ctx, uid, childID, favoriteID)
}

func (r *FavoriteRepository) List(ctx context.Context, uid, childID string) ([]*models.Favorite, error) {
	return r.coll.list(ctx, uid, childID)
}

func (r *FavoriteRepository) Subscribe(uid, childID string, fn func([]*models.Favorite, error)) (*docstore.Subscription, error) {
	return r.coll.subscribe(uid, childID, fn)
}

func (r *FavoriteRepository) Resolve(ctx context.Context, uid, childID, prefix string) (*models.Favorite, error) {
	return r.coll.resolve(ctx, uid, childID, prefix, func(f *models.Favorite) string { return f.ID })
}
