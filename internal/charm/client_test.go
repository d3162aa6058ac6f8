// ABOUTME: Tests for charm client construction and option handling.
// ABOUTME: Does not contact a charm server.

package charm

import (
	"os"
	"testing"
	"time"
)

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.Database() != DBName {
		t.Errorf("expected database %q, got %q", DBName, c.Database())
	}
	if !c.AutoSync() {
		t.Error("expected auto-sync on by default")
	}
	if c.IsStale() {
		t.Error("expected no staleness check without a threshold")
	}
}

func TestNewClientOptions(t *testing.T) {
	t.Setenv("CHARM_HOST", "")

	c, err := NewClient(
		WithDBName("tigercub-test"),
		WithHost("charm.example.com"),
		WithAutoSync(false),
		WithStaleThreshold(0),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.Database() != "tigercub-test" {
		t.Errorf("unexpected database %q", c.Database())
	}
	if c.AutoSync() {
		t.Error("expected auto-sync disabled")
	}
	if got := os.Getenv("CHARM_HOST"); got != "charm.example.com" {
		t.Errorf("expected CHARM_HOST to be exported, got %q", got)
	}
	if c.Host() != "charm.example.com" {
		t.Errorf("unexpected host %q", c.Host())
	}
}

func TestWithStaleThreshold(t *testing.T) {
	c, err := NewClient(WithStaleThreshold(time.Hour))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.staleThreshold != time.Hour {
		t.Errorf("expected threshold to be kept, got %v", c.staleThreshold)
	}
}
