// ABOUTME: End-to-end tests for tigercub CLI commands.
// ABOUTME: Runs the root command in-process against a temporary badger store.

package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/harper/tigercub/internal/models"
)

func init() {
	color.NoColor = true
}

// setupEnv points config and data at fresh temp directories.
func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("TIGERCUB_BACKEND", "badger")
	t.Setenv("TIGERCUB_DATA_DIR", "")
	t.Setenv("TIGERCUB_LOG_LEVEL", "error")
}

// resetFlags restores every flag to its default so runs don't leak into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, "", args...)
	if err != nil {
		t.Fatalf("tigercub %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

var shortIDPattern = regexp.MustCompile(`\b([0-9a-f]{6})\b`)

// lastID pulls the short ID printed by an add command.
func lastID(t *testing.T, out string) string {
	t.Helper()
	m := shortIDPattern.FindAllStringSubmatch(out, -1)
	if len(m) == 0 {
		t.Fatalf("no ID in output: %q", out)
	}
	return m[len(m)-1][1]
}

func signup(t *testing.T) {
	t.Helper()
	out := mustRun(t, "signup", "parent@example.com", "--password", "hunter22")
	if !strings.Contains(out, "Signed up as parent@example.com") {
		t.Fatalf("unexpected signup output: %s", out)
	}
}

func TestProfileGoalDashboardWorkflow(t *testing.T) {
	setupEnv(t)
	signup(t)

	out := mustRun(t, "whoami")
	if !strings.Contains(out, "parent@example.com") {
		t.Errorf("session not restored: %s", out)
	}

	out = mustRun(t, "profile", "add", "--name", "Mia", "--age", "7", "--style", "visual", "--interests", "Art, Music")
	if !strings.Contains(out, "Created profile") {
		t.Fatalf("expected 'Created profile' in output: %s", out)
	}
	child := lastID(t, out)

	out = mustRun(t, "profile", "list")
	if !strings.Contains(out, "Mia") || !strings.Contains(out, "visual learner") {
		t.Errorf("expected Mia in list: %s", out)
	}

	out = mustRun(t, "goal", "add", child, "Read a picture book", "--due", "2026-11-01")
	goal := lastID(t, out)
	mustRun(t, "goal", "add", child, "Count to 20")
	mustRun(t, "goal", "done", child, goal)

	out = mustRun(t, "goal", "list", child)
	if !strings.Contains(out, "1 of 2 goals completed") {
		t.Errorf("expected progress in goal list: %s", out)
	}

	out = mustRun(t, "dashboard", child, "--raw")
	for _, want := range []string{
		"# Welcome to Mia's Dashboard",
		"a 7-year-old visual learner who loves Art, Music",
		"**1 of 2 goals completed**",
		"[x] Read a picture book (Due: Nov 1, 2026)",
		"No favorites saved yet.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q:\n%s", want, out)
		}
	}

	mustRun(t, "profile", "edit", child, "--age", "8")
	out = mustRun(t, "profile", "show", child)
	if !strings.Contains(out, "8-year-old visual learner") {
		t.Errorf("edit did not keep other fields: %s", out)
	}
}

func TestFavoritesAndNotes(t *testing.T) {
	setupEnv(t)
	signup(t)

	child := lastID(t, mustRun(t, "profile", "add", "--name", "Leo", "--age", "5", "--style", "kinesthetic"))

	out := mustRun(t, "fav", "save", child)
	if !strings.Contains(out, "Activity saved to favorites!") {
		t.Errorf("expected save notification: %s", out)
	}

	out = mustRun(t, "fav", "add", child, "Story Time", "https://example.com/story")
	fav := lastID(t, out)
	mustRun(t, "fav", "rm", child, fav)
	out = mustRun(t, "fav", "list", child)
	if strings.Contains(out, "Story Time") {
		t.Errorf("removed favorite still listed: %s", out)
	}

	if out, err := run(t, "", "fav", "add", child, "Bad", "not-a-url"); err == nil {
		t.Errorf("expected an error for a relative link: %s", out)
	}

	note := lastID(t, mustRun(t, "note", "add", child, "Built a tower", "--tag", "#blocks"))
	mustRun(t, "note", "edit", child, note, "--text", "Built a tall tower")
	out = mustRun(t, "note", "list", child)
	if !strings.Contains(out, "Built a tall tower #blocks") {
		t.Errorf("expected edited note with tag: %s", out)
	}
}

func TestProfileValidationErrors(t *testing.T) {
	setupEnv(t)
	signup(t)

	_, err := run(t, "", "profile", "add", "--age", "seven")
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"--name: Name is required", "--age: Valid age is required"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	}
}

func TestExportJSON(t *testing.T) {
	setupEnv(t)
	signup(t)

	child := lastID(t, mustRun(t, "profile", "add", "--name", "Ava", "--age", "9"))
	mustRun(t, "goal", "add", child, "Ride a bike")
	mustRun(t, "note", "add", child, "Loves maps")

	out := mustRun(t, "export", child, "--format", "json")
	var export models.ChildExport
	if err := json.Unmarshal([]byte(out), &export); err != nil {
		t.Fatalf("export is not JSON: %v\n%s", err, out)
	}
	if export.Profile.Name != "Ava" || len(export.Goals) != 1 || len(export.Notes) != 1 {
		t.Errorf("unexpected export: %+v", export)
	}
	if !strings.HasPrefix(export.Profile.ID, child) {
		t.Errorf("export ID %q does not match %q", export.Profile.ID, child)
	}
}

func TestDeleteProfileConfirm(t *testing.T) {
	setupEnv(t)
	signup(t)

	child := lastID(t, mustRun(t, "profile", "add", "--name", "Kai", "--age", "4"))
	mustRun(t, "goal", "add", child, "Brush teeth")

	out, err := run(t, "n\n", "profile", "rm", child)
	if err != nil || !strings.Contains(out, "Cancelled.") {
		t.Fatalf("expected cancel: %v\n%s", err, out)
	}

	out, err = run(t, "y\n", "profile", "rm", child)
	if err != nil || !strings.Contains(out, "Deleted profile") {
		t.Fatalf("expected delete: %v\n%s", err, out)
	}

	out = mustRun(t, "profile", "list")
	if !strings.Contains(out, "No children yet") {
		t.Errorf("profile still listed: %s", out)
	}
}

func TestLogoutRequiresLoginAgain(t *testing.T) {
	setupEnv(t)
	signup(t)
	mustRun(t, "logout")

	if _, err := run(t, "", "profile", "list"); err == nil {
		t.Fatal("expected not authenticated after logout")
	}

	out, err := run(t, "hunter22\n", "login", "parent@example.com")
	if err != nil {
		t.Fatalf("login with piped password: %v\n%s", err, out)
	}
	mustRun(t, "profile", "list")

	if _, err := run(t, "", "login", "parent@example.com", "--password", "wrongpass"); err == nil {
		t.Error("expected wrong password to fail")
	}
}
