// ABOUTME: Learning goal model with completion state and optional due date.
// ABOUTME: GoalUpdate carries only the fields being changed.

package models

import (
	"strings"
	"time"
)

type Goal struct {
	ID        string     `json:"-"`
	Text      string     `json:"text"`
	Done      bool       `json:"done"`
	DueDate   *time.Time `json:"dueDate"`
	CreatedAt time.Time  `json:"createdAt"`
}

type GoalInput struct {
	Text    string
	DueDate *time.Time
}

func (in GoalInput) Validate() error {
	if strings.TrimSpace(in.Text) == "" {
		return &ValidationError{Field: "text", Message: "goal text is required"}
	}
	return nil
}

// Fields returns the document body for a new goal. New goals are never done.
func (in GoalInput) Fields() map[string]any {
	return map[string]any{
		"text":    strings.TrimSpace(in.Text),
		"done":    false,
		"dueDate": in.DueDate,
	}
}

// GoalUpdate is a partial change; nil fields are left as stored.
type GoalUpdate struct {
	Text         *string
	Done         *bool
	DueDate      *time.Time
	ClearDueDate bool
}

func (u GoalUpdate) Validate() error {
	if u.Text != nil && strings.TrimSpace(*u.Text) == "" {
		return &ValidationError{Field: "text", Message: "goal text is required"}
	}
	if u.Text == nil && u.Done == nil && u.DueDate == nil && !u.ClearDueDate {
		return &ValidationError{Field: "goal", Message: "nothing to update"}
	}
	return nil
}

func (u GoalUpdate) Fields() map[string]any {
	fields := make(map[string]any)
	if u.Text != nil {
		fields["text"] = strings.TrimSpace(*u.Text)
	}
	if u.Done != nil {
		fields["done"] = *u.Done
	}
	switch {
	case u.ClearDueDate:
		fields["dueDate"] = nil
	case u.DueDate != nil:
		fields["dueDate"] = *u.DueDate
	}
	return fields
}
