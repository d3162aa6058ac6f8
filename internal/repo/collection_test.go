// ABOUTME: Tests for the goal, favorite, and note repositories.
// ABOUTME: Exercises newest-first ordering, partial edits, and live subscriptions.

package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/tigercub/internal/models"
)

func TestGoalToggleReachesSubscriber(t *testing.T) {
	store := newTestStore(t)
	goals := NewGoalRepository(store)
	ctx := context.Background()

	id, err := goals.Add(ctx, "u1", "c1", models.GoalInput{Text: "Read 10 books"})
	require.NoError(t, err)

	var seen latest[models.Goal]
	sub, err := goals.Subscribe("u1", "c1", seen.set)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.Eventually(t, func() bool {
		items, _ := seen.get()
		return len(items) == 1 && !items[0].Done
	}, waitFor, 5*time.Millisecond)

	require.NoError(t, goals.SetDone(ctx, "u1", "c1", id, true))

	require.Eventually(t, func() bool {
		items, _ := seen.get()
		return len(items) == 1 && items[0].Done && items[0].Text == "Read 10 books"
	}, waitFor, 5*time.Millisecond)
}

func TestGoalUpdateIsPartial(t *testing.T) {
	store := newTestStore(t)
	goals := NewGoalRepository(store)
	ctx := context.Background()

	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	id, err := goals.Add(ctx, "u1", "c1", models.GoalInput{Text: "Swim", DueDate: &due})
	require.NoError(t, err)

	text := "Swim 25m"
	require.NoError(t, goals.Update(ctx, "u1", "c1", id, models.GoalUpdate{Text: &text}))

	got, err := goals.Resolve(ctx, "u1", "c1", id)
	require.NoError(t, err)
	assert.Equal(t, "Swim 25m", got.Text)
	assert.False(t, got.Done)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))

	require.NoError(t, goals.Update(ctx, "u1", "c1", id, models.GoalUpdate{ClearDueDate: true}))
	got, err = goals.Resolve(ctx, "u1", "c1", id)
	require.NoError(t, err)
	assert.Nil(t, got.DueDate)
}

func TestGoalUpdateMissingIsNotFound(t *testing.T) {
	store := newTestStore(t)
	goals := NewGoalRepository(store)

	err := goals.SetDone(context.Background(), "u1", "c1", "missing", true)
	assert.ErrorIs(t, err, models.ErrNotFound)

	var rw *models.RemoteWriteError
	assert.NotErrorAs(t, err, &rw)
}

func TestGoalValidation(t *testing.T) {
	store := newTestStore(t)
	goals := NewGoalRepository(store)

	_, err := goals.Add(context.Background(), "u1", "c1", models.GoalInput{Text: "   "})
	assert.NotEmpty(t, models.FieldError(err, "text"))

	err = goals.Update(context.Background(), "u1", "c1", "g1", models.GoalUpdate{})
	assert.True(t, models.IsValidation(err))
	assert.Equal(t, int64(0), store.calls.Load())
}

func TestRemovingOnlyFavoriteEmptiesSnapshot(t *testing.T) {
	store := newTestStore(t)
	favorites := NewFavoriteRepository(store)
	ctx := context.Background()

	id, err := favorites.Add(ctx, "u1", "c1", models.FavoriteInput{
		Name: "Nature Walk",
		Link: "https://example.com/nature-walk",
	})
	require.NoError(t, err)

	var seen latest[models.Favorite]
	sub, err := favorites.Subscribe("u1", "c1", seen.set)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.Eventually(t, func() bool {
		items, _ := seen.get()
		return len(items) == 1
	}, waitFor, 5*time.Millisecond)
	items, _ := seen.get()
	assert.Equal(t, id, items[0].ID)
	assert.Equal(t, "Nature Walk", items[0].Name)

	require.NoError(t, favorites.Remove(ctx, "u1", "c1", id))

	require.Eventually(t, func() bool {
		items, n := seen.get()
		return n >= 2 && len(items) == 0
	}, waitFor, 5*time.Millisecond)
}

func TestFavoriteRequiresAbsoluteLink(t *testing.T) {
	store := newTestStore(t)
	favorites := NewFavoriteRepository(store)

	_, err := favorites.Add(context.Background(), "u1", "c1", models.FavoriteInput{Name: "Lab", Link: "lab.html"})
	assert.NotEmpty(t, models.FieldError(err, "link"))
	assert.Equal(t, int64(0), store.calls.Load())
}

func TestNotesListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	notes := NewNoteRepository(store)
	ctx := context.Background()

	first, err := notes.Add(ctx, "u1", "c1", models.NoteInput{Text: "one"})
	require.NoError(t, err)
	second, err := notes.Add(ctx, "u1", "c1", models.NoteInput{Text: "two"})
	require.NoError(t, err)
	third, err := notes.Add(ctx, "u1", "c1", models.NoteInput{Text: "three"})
	require.NoError(t, err)

	list, err := notes.List(ctx, "u1", "c1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{third, second, first}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))
}

func TestNoteEditKeepsOtherFields(t *testing.T) {
	store := newTestStore(t)
	notes := NewNoteRepository(store)
	ctx := context.Background()

	id, err := notes.Add(ctx, "u1", "c1", models.NoteInput{Text: "  Loved the museum  ", Tag: "#outing"})
	require.NoError(t, err)
	before, err := notes.Resolve(ctx, "u1", "c1", id)
	require.NoError(t, err)
	assert.Equal(t, "Loved the museum", before.Text)
	assert.Equal(t, "outing", before.Tag)

	text := "Loved the science museum"
	require.NoError(t, notes.Update(ctx, "u1", "c1", id, models.NoteUpdate{Text: &text}))

	after, err := notes.Resolve(ctx, "u1", "c1", id)
	require.NoError(t, err)
	assert.Equal(t, text, after.Text)
	assert.Equal(t, "outing", after.Tag)
	assert.True(t, after.CreatedAt.Equal(before.CreatedAt))
}

func TestChildCollectionsRequireUserAndChild(t *testing.T) {
	store := newTestStore(t)
	repos := New(store)
	ctx := context.Background()

	_, err := repos.Notes.List(ctx, "", "c1")
	assert.ErrorIs(t, err, models.ErrNotAuthenticated)

	_, err = repos.Goals.List(ctx, "u1", "")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = repos.Favorites.Subscribe("u1", "a/b", func([]*models.Favorite, error) {})
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.Equal(t, int64(0), store.calls.Load())
}

func TestChildWriteFailureIsRemoteWriteError(t *testing.T) {
	store := newTestStore(t)
	notes := NewNoteRepository(store)
	store.failWrites.Store(true)

	_, err := notes.Add(context.Background(), "u1", "c1", models.NoteInput{Text: "hello"})
	var rw *models.RemoteWriteError
	require.ErrorAs(t, err, &rw)
	assert.Equal(t, "create", rw.Op)
	assert.ErrorIs(t, err, errInjected)
}
