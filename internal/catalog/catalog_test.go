// ABOUTME: Tests for catalog loading and style filtering.
// ABOUTME: Covers the embedded list and override files.

package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c := Default()
	if c.Len() == 0 {
		t.Fatal("expected embedded catalog to have activities")
	}
	for _, style := range []string{"visual", "auditory", "kinesthetic", "mixed"} {
		if len(c.ForStyle(style)) < 2 {
			t.Errorf("expected at least two %s activities", style)
		}
	}
}

func TestForStyleKeepsOrder(t *testing.T) {
	c := New([]Activity{
		{Name: "A", Link: "https://a", LearningStyles: []string{"visual"}},
		{Name: "B", Link: "https://b", LearningStyles: []string{"auditory"}},
		{Name: "C", Link: "https://c", LearningStyles: []string{"visual", "auditory"}},
	})

	got := c.ForStyle("visual")
	if len(got) != 2 || got[0].Name != "A" || got[1].Name != "C" {
		t.Errorf("unexpected visual activities: %+v", got)
	}
	if len(c.ForStyle("")) != 0 {
		t.Error("expected no matches for empty style")
	}
}

func TestAllReturnsCopy(t *testing.T) {
	c := New([]Activity{{Name: "A", Link: "https://a"}})
	all := c.All()
	all[0].Name = "changed"

	if c.All()[0].Name != "A" {
		t.Error("expected catalog to be unaffected by caller mutation")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.yaml")
	content := "- name: Puppet Show\n  link: https://example.com/puppets\n  learning_styles: [auditory, kinesthetic]\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := c.ForStyle("kinesthetic"); len(got) != 1 || got[0].Name != "Puppet Show" {
		t.Errorf("unexpected activities: %+v", got)
	}
}

func TestLoadRejectsIncompleteEntries(t *testing.T) {
	_, err := Load(strings.NewReader("- name: No Link\n"))
	if err == nil {
		t.Fatal("expected error for entry without link")
	}
}
