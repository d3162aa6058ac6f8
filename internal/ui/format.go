// ABOUTME: Terminal UI formatting for tigercub output.
// ABOUTME: Uses glamour for the dashboard markdown and fatih/color for list styling.

package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/harper/tigercub/internal/catalog"
	"github.com/harper/tigercub/internal/dashboard"
	"github.com/harper/tigercub/internal/models"
)

var (
	faint = color.New(color.Faint).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
)

const (
	idWidth    = 6
	dateLayout = "Jan 2, 2006"
	timeLayout = "2006-01-02 15:04"
)

// ShortID is the prefix shown in lists and accepted by Resolve.
func ShortID(id string) string {
	if len(id) <= idWidth {
		return id
	}
	return id[:idWidth]
}

func FormatProfileListItem(p *models.Profile) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("  %s  %s %s\n", faint(ShortID(p.ID)), bold(p.Name), faint("("+p.Age+")")))

	var details []string
	if p.LearningStyle != "" {
		details = append(details, p.LearningStyle+" learner")
	}
	if len(p.Interests) > 0 {
		details = append(details, strings.Join(p.Interests, ", "))
	}
	if len(details) > 0 {
		sb.WriteString(fmt.Sprintf("          %s\n", cyan(strings.Join(details, " · "))))
	}

	sb.WriteString(fmt.Sprintf("          %s\n", faint(TouchedLine(p))))
	return sb.String()
}

// TouchedLine reports when the profile last changed.
func TouchedLine(p *models.Profile) string {
	if p.UpdatedAt != nil {
		return "Last updated: " + p.UpdatedAt.Local().Format(timeLayout)
	}
	return "Created: " + p.CreatedAt.Local().Format(timeLayout)
}

func FormatProfileHeader(p *models.Profile) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s\n", bold(p.Name)))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("ID:"), faint(p.ID)))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Age:"), p.Age))
	if p.Gender != "" {
		sb.WriteString(fmt.Sprintf("%s %s\n", faint("Gender:"), p.Gender))
	}
	if p.LearningStyle != "" {
		sb.WriteString(fmt.Sprintf("%s %s\n", faint("Learning style:"), p.LearningStyle))
	}
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Interests:"), cyan(interestsText(p))))
	if p.Challenges != "" {
		sb.WriteString(fmt.Sprintf("%s %s\n", faint("Challenges:"), p.Challenges))
	}
	sb.WriteString(faint(TouchedLine(p)) + "\n")

	sb.WriteString(Separator())
	return sb.String()
}

func interestsText(p *models.Profile) string {
	if len(p.Interests) == 0 {
		return "No interests saved"
	}
	return strings.Join(p.Interests, ", ")
}

// Banner is the one-line summary shown above the dashboard.
func Banner(p *models.Profile) string {
	loves := "exploring new things"
	if len(p.Interests) > 0 {
		loves = strings.Join(p.Interests, ", ")
	}
	style := p.LearningStyle
	if style == "" {
		style = "curious"
	}
	return fmt.Sprintf("You're supporting %s, a %s-year-old %s learner who loves %s.", p.Name, p.Age, style, loves)
}

func FormatGoalLine(g *models.Goal) string {
	box := "[ ]"
	text := g.Text
	if g.Done {
		box = green("[x]")
		text = faint(text)
	}
	line := fmt.Sprintf("  %s %s  %s", box, faint(ShortID(g.ID)), text)
	if g.DueDate != nil {
		line += " " + faint("(Due: "+g.DueDate.Format(dateLayout)+")")
	}
	return line + "\n"
}

func FormatFavoriteLine(f *models.Favorite) string {
	return fmt.Sprintf("  %s  %s %s\n", faint(ShortID(f.ID)), bold(f.Name), faint(f.Link))
}

func FormatNoteLine(n *models.Note) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %s  %s", faint(ShortID(n.ID)), n.Text))
	if n.Tag != "" {
		sb.WriteString(" " + cyan("#"+n.Tag))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("          %s\n", faint(n.CreatedAt.Local().Format(timeLayout))))
	return sb.String()
}

func FormatActivity(a catalog.Activity) string {
	return fmt.Sprintf("  %s %s\n          %s\n",
		bold(a.Name),
		faint("["+strings.Join(a.LearningStyles, ", ")+"]"),
		cyan(a.Link))
}

// DashboardMarkdown renders the state as markdown for glamour.
func DashboardMarkdown(s dashboard.State) string {
	if s.NotFound || s.Profile == nil {
		return "Child not found.\n"
	}
	p := s.Profile
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Welcome to %s's Dashboard\n\n", p.Name)
	fmt.Fprintf(&sb, "%s\n\n", Banner(p))
	fmt.Fprintf(&sb, "*%s*\n\n", TouchedLine(p))

	sb.WriteString("## Goals\n\n")
	fmt.Fprintf(&sb, "**%d of %d goals completed** (%.0f%%)\n\n", s.Progress.Completed, s.Progress.Total, s.Progress.Percent)
	for _, g := range s.Goals {
		box := "[ ]"
		if g.Done {
			box = "[x]"
		}
		fmt.Fprintf(&sb, "- %s %s", box, g.Text)
		if g.DueDate != nil {
			fmt.Fprintf(&sb, " (Due: %s)", g.DueDate.Format(dateLayout))
		}
		fmt.Fprintf(&sb, " `%s`\n", ShortID(g.ID))
	}
	sb.WriteString("\n")

	sb.WriteString("## Activity of the Day\n\n")
	if s.Daily != nil {
		fmt.Fprintf(&sb, "[%s](%s)\n\n", s.Daily.Name, s.Daily.Link)
	} else {
		sb.WriteString("Set a learning style to get a daily activity.\n\n")
	}

	if len(s.Suggestions) > 0 {
		sb.WriteString("## Suggested Modules\n\n")
		for _, a := range s.Suggestions {
			fmt.Fprintf(&sb, "- [%s](%s)\n", a.Name, a.Link)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Favorites\n\n")
	if len(s.Favorites) == 0 {
		sb.WriteString("No favorites saved yet. Find an activity to get started!\n\n")
	}
	for _, f := range s.Favorites {
		fmt.Fprintf(&sb, "- [%s](%s) `%s`\n", f.Name, f.Link, ShortID(f.ID))
	}
	if len(s.Favorites) > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString("## Notes\n\n")
	if len(s.Notes) == 0 {
		sb.WriteString("No notes yet.\n")
	}
	for _, n := range s.Notes {
		fmt.Fprintf(&sb, "- %s", n.Text)
		if n.Tag != "" {
			fmt.Fprintf(&sb, " #%s", n.Tag)
		}
		fmt.Fprintf(&sb, " *(%s)* `%s`\n", n.CreatedAt.Local().Format(dateLayout), ShortID(n.ID))
	}
	return sb.String()
}

// RenderMarkdown renders md for the terminal, falling back to the raw text.
func RenderMarkdown(md string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to raw content if renderer fails
		return md, nil //nolint:nilerr // Intentional fallback
	}

	out, err := renderer.Render(md)
	if err != nil {
		return md, nil //nolint:nilerr // Intentional fallback
	}
	return out, nil
}

func Separator() string {
	return faint(strings.Repeat("─", 50)) + "\n"
}

func Success(msg string) string {
	return color.New(color.FgGreen).Sprint("✓ ") + msg
}

func Error(msg string) string {
	return color.New(color.FgRed).Sprint("✗ ") + msg
}

// Notifier prints dashboard notifications to the terminal.
type Notifier struct {
	Out io.Writer
}

func (n Notifier) Success(msg string) {
	fmt.Fprintln(n.Out, Success(msg))
}

func (n Notifier) Error(msg string) {
	fmt.Fprintln(n.Out, Error(msg))
}
