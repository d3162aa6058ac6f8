// ABOUTME: Learning goals for one child, newest first.
// ABOUTME: Goals can be added, edited, toggled, removed, and watched live.

package repo

import (
	"context"

	"github.com/harper/tigercub/internal/docstore"
	"github.com/harper/tigercub/internal/models"
)

type GoalRepository struct {
	coll childCollection[models.Goal]
}

func NewGoalRepository(store docstore.Store, opts ...Option) *GoalRepository {
	return &GoalRepository{coll: childCollection[models.Goal]{
		base: newBase(store, opts),
		kind: goalsColl,
		withID: func(g *models.Goal, doc *docstore.Document) {
			g.ID = doc.ID
			if g.CreatedAt.IsZero() {
				g.CreatedAt = doc.CreateTime
			}
		},
	}}
}

// Add creates a goal that is not yet done.
func (r *GoalRepository) Add(ctx context.Context, uid, childID string, in models.GoalInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	return r.coll.add(ctx, uid, childID, in.Fields())
}

// Update applies a partial change; fields left nil keep their stored value.
func (r *GoalRepository) Update(ctx context.Context, uid, childID, goalID string, u models.GoalUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}
	return r.coll.update(ctx, uid, childID, goalID, u.Fields())
}

func (r *GoalRepository) SetDone(ctx context.Context, uid, childID, goalID string, done bool) error {
	return r.Update(ctx, uid, childID, goalID, models.GoalUpdate{Done: &done})
}

func (r *GoalRepository) Remove(ctx context.Context, uid, childID, goalID string) error {
	return r.coll.remove(ctx, uid, childID, goalID)
}

func (r *GoalRepository) List(ctx context.Context, uid, childID string) ([]*models.Goal, error) {
	return r.coll.list(ctx, uid, childID)
}

// Subscribe calls fn with the child's goals, newest first, now and after
// every change.
func (r *GoalRepository) Subscribe(uid, childID string, fn func([]*models.Goal, error)) (*docstore.Subscription, error) {
	return r.coll.subscribe(uid, childID, fn)
}

// Resolve finds a goal by full ID or unique prefix.
func (r *GoalRepository) Resolve(ctx context.Context, uid, childID, prefix string) (*models.Goal, error) {
	return r.coll.resolve(ctx, uid, childID, prefix, func(g *models.Goal) string { return g.ID })
}
