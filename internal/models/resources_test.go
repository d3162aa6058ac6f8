// ABOUTME: Tests for goal, favorite, and note inputs and partial updates.
// ABOUTME: Checks which fields each write carries.

package models

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestGoalInputFields(t *testing.T) {
	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	fields := GoalInput{Text: "  Read a book ", DueDate: &due}.Fields()

	if fields["text"] != "Read a book" {
		t.Errorf("expected trimmed text, got %v", fields["text"])
	}
	if fields["done"] != false {
		t.Errorf("expected new goal to be not done, got %v", fields["done"])
	}
	if fields["dueDate"] != &due {
		t.Errorf("expected due date pointer to be carried")
	}
}

func TestGoalInputValidate(t *testing.T) {
	if err := (GoalInput{Text: " "}).Validate(); FieldError(err, "text") == "" {
		t.Errorf("expected text error, got %v", err)
	}
	if err := (GoalInput{Text: "Count to 20"}).Validate(); err != nil {
		t.Errorf("expected valid goal, got %v", err)
	}
}

func TestGoalUpdateFields(t *testing.T) {
	done := true
	fields := GoalUpdate{Done: &done}.Fields()
	if len(fields) != 1 || fields["done"] != true {
		t.Errorf("expected only done=true, got %v", fields)
	}

	fields = GoalUpdate{ClearDueDate: true}.Fields()
	v, ok := fields["dueDate"]
	if !ok || v != nil {
		t.Errorf("expected dueDate cleared, got %v", fields)
	}

	if err := (GoalUpdate{}).Validate(); err == nil {
		t.Error("expected empty update to be rejected")
	}
}

func TestFavoriteInputValidate(t *testing.T) {
	tests := []struct {
		input FavoriteInput
		field string
	}{
		{FavoriteInput{Name: "Leaf rubbing", Link: "https://example.com/leaf"}, ""},
		{FavoriteInput{Name: "", Link: "https://example.com/leaf"}, "name"},
		{FavoriteInput{Name: "Leaf rubbing"}, "link"},
		{FavoriteInput{Name: "Leaf rubbing", Link: "not a url"}, "link"},
	}

	for _, tt := range tests {
		err := tt.input.Validate()
		if tt.field == "" {
			if err != nil {
				t.Errorf("%+v: expected valid, got %v", tt.input, err)
			}
			continue
		}
		if FieldError(err, tt.field) == "" {
			t.Errorf("%+v: expected error on %q, got %v", tt.input, tt.field, err)
		}
	}
}

func TestNoteUpdateFields(t *testing.T) {
	tag := " #milestone "
	fields := NoteUpdate{Tag: &tag}.Fields()

	if len(fields) != 1 {
		t.Fatalf("expected only tag to change, got %v", fields)
	}
	if fields["tag"] != "milestone" {
		t.Errorf("expected normalized tag, got %q", fields["tag"])
	}

	if err := (NoteUpdate{}).Validate(); err == nil {
		t.Error("expected empty update to be rejected")
	}
	empty := "  "
	if err := (NoteUpdate{Text: &empty}).Validate(); FieldError(err, "text") == "" {
		t.Errorf("expected text error, got %v", err)
	}
}

func TestRemoteWriteErrorUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("add goal: %w", &RemoteWriteError{Op: "create", Path: "users/u/goals", Err: cause})

	if !errors.Is(err, cause) {
		t.Error("expected RemoteWriteError to unwrap to its cause")
	}
	var rw *RemoteWriteError
	if !errors.As(err, &rw) || rw.Op != "create" {
		t.Errorf("expected RemoteWriteError with op create, got %v", err)
	}
}
