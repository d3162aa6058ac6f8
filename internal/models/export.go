// ABOUTME: Portable, ID-carrying shapes for exporting a child and its records.
// ABOUTME: Used by the CLI export command and MCP tool output.

package models

import "time"

type ProfileRecord struct {
	ID            string     `json:"id" yaml:"id"`
	Name          string     `json:"name" yaml:"name"`
	Age           string     `json:"age" yaml:"age"`
	Gender        string     `json:"gender,omitempty" yaml:"gender,omitempty"`
	LearningStyle string     `json:"learningStyle,omitempty" yaml:"learning_style,omitempty"`
	Challenges    string     `json:"challenges,omitempty" yaml:"challenges,omitempty"`
	Interests     []string   `json:"interests" yaml:"interests"`
	CreatedAt     time.Time  `json:"createdAt" yaml:"created_at"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty" yaml:"updated_at,omitempty"`
}

type GoalRecord struct {
	ID        string     `json:"id" yaml:"id"`
	Text      string     `json:"text" yaml:"text"`
	Done      bool       `json:"done" yaml:"done"`
	DueDate   *time.Time `json:"dueDate,omitempty" yaml:"due_date,omitempty"`
	CreatedAt time.Time  `json:"createdAt" yaml:"created_at"`
}

type FavoriteRecord struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Link      string    `json:"link" yaml:"link"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

type NoteRecord struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Tag       string    `json:"tag,omitempty" yaml:"tag,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

// ChildExport is everything stored about one child.
type ChildExport struct {
	ExportedAt time.Time        `json:"exportedAt" yaml:"exported_at"`
	Profile    ProfileRecord    `json:"profile" yaml:"profile"`
	Goals      []GoalRecord     `json:"goals" yaml:"goals"`
	Favorites  []FavoriteRecord `json:"favorites" yaml:"favorites"`
	Notes      []NoteRecord     `json:"notes" yaml:"notes"`
}

func (p *Profile) Record() ProfileRecord {
	return ProfileRecord{
		ID:            p.ID,
		Name:          p.Name,
		Age:           p.Age,
		Gender:        p.Gender,
		LearningStyle: p.LearningStyle,
		Challenges:    p.Challenges,
		Interests:     p.Interests,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (g *Goal) Record() GoalRecord {
	return GoalRecord{ID: g.ID, Text: g.Text, Done: g.Done, DueDate: g.DueDate, CreatedAt: g.CreatedAt}
}

func (f *Favorite) Record() FavoriteRecord {
	return FavoriteRecord{ID: f.ID, Name: f.Name, Link: f.Link, CreatedAt: f.CreatedAt}
}

func (n *Note) Record() NoteRecord {
	return NoteRecord{ID: n.ID, Text: n.Text, Tag: n.Tag, CreatedAt: n.CreatedAt}
}

func ProfileRecords(profiles []*Profile) []ProfileRecord {
	out := make([]ProfileRecord, len(profiles))
	for i, p := range profiles {
		out[i] = p.Record()
	}
	return out
}

func NewChildExport(p *Profile, goals []*Goal, favorites []*Favorite, notes []*Note, now time.Time) *ChildExport {
	e := &ChildExport{
		ExportedAt: now.UTC(),
		Profile:    p.Record(),
		Goals:      make([]GoalRecord, len(goals)),
		Favorites:  make([]FavoriteRecord, len(favorites)),
		Notes:      make([]NoteRecord, len(notes)),
	}
	for i, g := range goals {
		e.Goals[i] = g.Record()
	}
	for i, f := range favorites {
		e.Favorites[i] = f.Record()
	}
	for i, n := range notes {
		e.Notes[i] = n.Record()
	}
	return e
}
