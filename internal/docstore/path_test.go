// ABOUTME: Tests for path joining, parent lookup, and segment validation.
// ABOUTME: Table-driven over collection and document shapes.

package docstore

import (
	"errors"
	"testing"
)

func TestValidatePaths(t *testing.T) {
	tests := []struct {
		path       string
		collection bool
		document   bool
	}{
		{"users", true, false},
		{"users/u1", false, true},
		{"users/u1/childProfiles", true, false},
		{"users/u1/childProfiles/c1/goals/g1", false, true},
		{"", false, false},
		{"users//childProfiles", false, false},
		{"users/u1/", false, false},
	}

	for _, tt := range tests {
		if err := ValidateCollection(tt.path); (err == nil) != tt.collection {
			t.Errorf("ValidateCollection(%q) = %v, want ok=%v", tt.path, err, tt.collection)
		} else if err != nil && !errors.Is(err, ErrInvalidPath) {
			t.Errorf("ValidateCollection(%q) returned %v, want ErrInvalidPath", tt.path, err)
		}
		if err := ValidateDocument(tt.path); (err == nil) != tt.document {
			t.Errorf("ValidateDocument(%q) = %v, want ok=%v", tt.path, err, tt.document)
		}
	}
}

func TestParent(t *testing.T) {
	coll, id := Parent("users/u1/childProfiles/c1")
	if coll != "users/u1/childProfiles" || id != "c1" {
		t.Errorf("unexpected parent split: %q %q", coll, id)
	}
}

func TestIsDirectChild(t *testing.T) {
	if !isDirectChild("users/u1/goals", "users/u1/goals/g1") {
		t.Error("expected direct child")
	}
	if isDirectChild("users/u1/goals", "users/u1/goals/g1/sub/x") {
		t.Error("expected nested document to be excluded")
	}
	if isDirectChild("users/u1/goals", "users/u1/goalsx/g1") {
		t.Error("expected sibling collection to be excluded")
	}
}
