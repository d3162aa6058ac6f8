// ABOUTME: Tests for dashboard aggregations.
// ABOUTME: Progress bounds, suggestion order, and the daily pick's determinism.

package dashboard

import (
	"testing"
	"time"

	"github.com/harper/tigercub/internal/catalog"
	"github.com/harper/tigercub/internal/models"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Activity{
		{Name: "Paint", Link: "https://example.com/paint", LearningStyles: []string{"visual"}},
		{Name: "Songs", Link: "https://example.com/songs", LearningStyles: []string{"auditory"}},
		{Name: "Maps", Link: "https://example.com/maps", LearningStyles: []string{"visual", "mixed"}},
		{Name: "Blocks", Link: "https://example.com/blocks", LearningStyles: []string{"kinesthetic", "visual"}},
	})
}

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name    string
		done    []bool
		want    Progress
		percent float64
	}{
		{"no goals", nil, Progress{}, 0},
		{"none done", []bool{false, false}, Progress{Completed: 0, Total: 2}, 0},
		{"some done", []bool{true, false, false, true}, Progress{Completed: 2, Total: 4, Percent: 50}, 50},
		{"all done", []bool{true, true, true}, Progress{Completed: 3, Total: 3, Percent: 100}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goals := make([]*models.Goal, len(tt.done))
			for i, d := range tt.done {
				goals[i] = &models.Goal{Text: "g", Done: d}
			}
			got := ComputeProgress(goals)
			if got != tt.want {
				t.Errorf("ComputeProgress() = %+v, want %+v", got, tt.want)
			}
			if got.Completed > got.Total || got.Percent < 0 || got.Percent > 100 {
				t.Errorf("progress out of bounds: %+v", got)
			}
		})
	}
}

func TestComputeProgressThird(t *testing.T) {
	got := ComputeProgress([]*models.Goal{{Done: true}, {}, {}})
	if got.Percent < 33.3 || got.Percent > 33.4 {
		t.Errorf("Percent = %v, want about 33.33", got.Percent)
	}
}

func TestSuggestedModules(t *testing.T) {
	c := testCatalog()

	got := SuggestedModules(c, "visual")
	if len(got) != 2 || got[0].Name != "Paint" || got[1].Name != "Maps" {
		t.Errorf("SuggestedModules(visual) = %v, want [Paint Maps]", got)
	}

	if got := SuggestedModules(c, "auditory"); len(got) != 1 {
		t.Errorf("SuggestedModules(auditory) returned %d, want 1", len(got))
	}
	if got := SuggestedModules(c, ""); len(got) != 0 {
		t.Errorf("SuggestedModules(\"\") returned %d, want 0", len(got))
	}
}

func TestDailyActivityStableWithinDay(t *testing.T) {
	c := testCatalog()
	morning := time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 14, 22, 30, 0, 0, time.UTC)

	a, ok := DailyActivity(c, "visual", morning)
	if !ok {
		t.Fatal("expected a pick for visual")
	}
	b, _ := DailyActivity(c, "visual", evening)
	if a.Name != b.Name {
		t.Errorf("pick changed within a day: %q then %q", a.Name, b.Name)
	}

	matches := c.ForStyle("visual")
	want := matches[daySeed("Sat Mar 14 2026visual")%len(matches)]
	if a.Name != want.Name {
		t.Errorf("DailyActivity = %q, want %q", a.Name, want.Name)
	}
	if !a.Matches("visual") {
		t.Errorf("pick %q does not match the style", a.Name)
	}
}

func TestDailyActivityNoMatch(t *testing.T) {
	if _, ok := DailyActivity(testCatalog(), "", time.Now()); ok {
		t.Error("expected no pick for an empty style")
	}
	if _, ok := DailyActivity(catalog.New(nil), "visual", time.Now()); ok {
		t.Error("expected no pick from an empty catalog")
	}
}

func TestDaySeedCountsUTF16Units(t *testing.T) {
	if got := daySeed("ab"); got != 97+98 {
		t.Errorf("daySeed(ab) = %d", got)
	}
	// U+1F600 encodes as the surrogate pair D83D DE00.
	if got := daySeed("\U0001F600"); got != 0xD83D+0xDE00 {
		t.Errorf("daySeed(emoji) = %d", got)
	}
}
