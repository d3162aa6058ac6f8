// ABOUTME: Tests for the one-shot dashboard aggregation.
// ABOUTME: Checks a populated child and the not-found state.

package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/tigercub/internal/models"
)

func TestLoad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.child(t, "u1", "Mia", "auditory")

	g, err := f.repos.Goals.Add(ctx, "u1", id, models.GoalInput{Text: "Sing"})
	require.NoError(t, err)
	require.NoError(t, f.repos.Goals.SetDone(ctx, "u1", id, g, true))
	_, err = f.repos.Notes.Add(ctx, "u1", id, models.NoteInput{Text: "Loves rhymes", Tag: "music"})
	require.NoError(t, err)

	s, err := Load(ctx, f.repos, testCatalog(), "u1", id, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.False(t, s.NotFound)
	assert.True(t, s.Loaded)
	assert.Equal(t, "Mia", s.Profile.Name)
	assert.Equal(t, Progress{Completed: 1, Total: 1, Percent: 100}, s.Progress)
	require.Len(t, s.Notes, 1)
	assert.Equal(t, "music", s.Notes[0].Tag)
	require.Len(t, s.Suggestions, 1)
	assert.Equal(t, "Songs", s.Suggestions[0].Name)
	require.NotNil(t, s.Daily)
	assert.Equal(t, "Songs", s.Daily.Name)
}

func TestLoadUnknownChild(t *testing.T) {
	f := newFixture(t)

	s, err := Load(context.Background(), f.repos, testCatalog(), "u1", "missing", time.Now())
	require.NoError(t, err)
	assert.True(t, s.NotFound)
	assert.Nil(t, s.Profile)
}
