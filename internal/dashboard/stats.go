// ABOUTME: Pure aggregations behind the child dashboard.
// ABOUTME: Goal progress, suggested activities, and the deterministic activity of the day.

package dashboard

import (
	"time"
	"unicode/utf16"

	"github.com/harper/tigercub/internal/catalog"
	"github.com/harper/tigercub/internal/models"
)

// suggestionCount is how many style-matched activities the dashboard offers.
const suggestionCount = 2

// dayLayout renders a calendar day as "Mon Jan 02 2006".
const dayLayout = "Mon Jan 02 2006"

type Progress struct {
	Completed int
	Total     int
	Percent   float64
}

func ComputeProgress(goals []*models.Goal) Progress {
	p := Progress{Total: len(goals)}
	for _, g := range goals {
		if g.Done {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percent = float64(p.Completed) / float64(p.Total) * 100
	}
	return p
}

// SuggestedModules returns the first activities in catalog order that match
// the learning style.
func SuggestedModules(c *catalog.Catalog, learningStyle string) []catalog.Activity {
	matches := c.ForStyle(learningStyle)
	if len(matches) > suggestionCount {
		matches = matches[:suggestionCount]
	}
	return matches
}

// DailyActivity picks one style-matched activity that stays the same for a
// whole calendar day. ok is false when nothing matches.
func DailyActivity(c *catalog.Catalog, learningStyle string, day time.Time) (catalog.Activity, bool) {
	matches := c.ForStyle(learningStyle)
	if len(matches) == 0 {
		return catalog.Activity{}, false
	}
	seed := daySeed(day.Format(dayLayout) + learningStyle)
	return matches[seed%len(matches)], true
}

// daySeed sums the UTF-16 code units of s.
func daySeed(s string) int {
	sum := 0
	for _, u := range utf16.Encode([]rune(s)) {
		sum += int(u)
	}
	return sum
}
