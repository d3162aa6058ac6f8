// ABOUTME: One-shot dashboard aggregation for callers without a live view.
// ABOUTME: Lists the child's collections concurrently and computes the same State.

package dashboard

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harper/tigercub/internal/catalog"
	"github.com/harper/tigercub/internal/models"
	"github.com/harper/tigercub/internal/repo"
)

// Load builds the dashboard for childID from fresh store reads. An unknown
// child yields State{NotFound: true} rather than an error.
func Load(ctx context.Context, repos *repo.Repositories, cat *catalog.Catalog, uid, childID string, now time.Time) (State, error) {
	s := State{UID: uid, ChildID: childID}

	profile, err := repos.Profiles.Get(ctx, uid, childID)
	if errors.Is(err, models.ErrNotFound) {
		s.NotFound = true
		return s, nil
	}
	if err != nil {
		return s, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		s.Goals, err = repos.Goals.List(gctx, uid, childID)
		return err
	})
	g.Go(func() error {
		var err error
		s.Favorites, err = repos.Favorites.List(gctx, uid, childID)
		return err
	})
	g.Go(func() error {
		var err error
		s.Notes, err = repos.Notes.List(gctx, uid, childID)
		return err
	})
	if err := g.Wait(); err != nil {
		return s, err
	}

	s.Profile = profile
	s.Loaded = true
	s.Progress = ComputeProgress(s.Goals)
	s.Suggestions = SuggestedModules(cat, profile.LearningStyle)
	if a, ok := DailyActivity(cat, profile.LearningStyle, now); ok {
		s.Daily = &a
	}
	return s, nil
}
