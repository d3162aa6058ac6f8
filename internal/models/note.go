// ABOUTME: Free-text note about a child with an optional tag.
// ABOUTME: Text and tag are edited in place; createdAt never changes.

package models

import (
	"strings"
	"time"
)

type Note struct {
	ID        string    `json:"-"`
	Text      string    `json:"text"`
	Tag       string    `json:"tag,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type NoteInput struct {
	Text string
	Tag  string
}

func (in NoteInput) Validate() error {
	if strings.TrimSpace(in.Text) == "" {
		return &ValidationError{Field: "text", Message: "note text is required"}
	}
	return nil
}

func (in NoteInput) Fields() map[string]any {
	return map[string]any{
		"text": strings.TrimSpace(in.Text),
		"tag":  NormalizeTag(in.Tag),
	}
}

// NoteUpdate is a partial change; nil fields are left as stored.
type NoteUpdate struct {
	Text *string
	Tag  *string
}

func (u NoteUpdate) Validate() error {
	if u.Text != nil && strings.TrimSpace(*u.Text) == "" {
		return &ValidationError{Field: "text", Message: "note text is required"}
	}
	if u.Text == nil && u.Tag == nil {
		return &ValidationError{Field: "note", Message: "nothing to update"}
	}
	return nil
}

func (u NoteUpdate) Fields() map[string]any {
	fields := make(map[string]any)
	if u.Text != nil {
		fields["text"] = strings.TrimSpace(*u.Text)
	}
	if u.Tag != nil {
		fields["tag"] = NormalizeTag(*u.Tag)
	}
	return fields
}

// NormalizeTag trims whitespace and a leading '#'.
func NormalizeTag(tag string) string {
	return strings.TrimPrefix(strings.TrimSpace(tag), "#")
}
