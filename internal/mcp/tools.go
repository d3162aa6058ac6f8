// ABOUTME: MCP tools for profile, goal, favorite, and note operations.
// ABOUTME: Maps CLI functionality to MCP tool interface.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/tigercub/internal/dashboard"
	"github.com/harper/tigercub/internal/models"
	"github.com/harper/tigercub/internal/ui"
)

func (s *Server) registerTools() {
	// list_profiles
	s.server.AddTool(&mcp.Tool{
		Name:        "list_profiles",
		Description: "List child profiles, most recently updated first",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleListProfiles)

	// create_profile
	s.server.AddTool(&mcp.Tool{
		Name:        "create_profile",
		Description: "Create a child profile",
		InputSchema: json.RawMessage(profileSchema(`"required": ["name", "age"]`)),
	}, s.handleCreateProfile)

	// update_profile
	s.server.AddTool(&mcp.Tool{
		Name:        "update_profile",
		Description: "Update a child profile. Omitted fields keep their current value.",
		InputSchema: json.RawMessage(profileSchema(`"required": ["child_id"]`)),
	}, s.handleUpdateProfile)

	// delete_profile
	s.server.AddTool(&mcp.Tool{
		Name:        "delete_profile",
		Description: "Delete a child profile with its goals, favorites, and notes",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"child_id": {"type": "string", "description": "Child ID or prefix (6+ chars)"}
			},
			"required": ["child_id"]
		}`),
	}, s.handleDeleteProfile)

	// add_goal
	s.server.AddTool(&mcp.Tool{
		Name:        "add_goal",
		Description: "Add a learning goal for a child",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"child_id": {"type": "string", "description": "Child ID or prefix"},
				"text": {"type": "string", "description": "Goal text"},
				"due_date": {"type": "string", "description": "Optional due date (YYYY-MM-DD)"}
			},
			"required": ["child_id", "text"]
		}`),
	}, s.handleAddGoal)

	// toggle_goal
	s.server.AddTool(&mcp.Tool{
		Name:        "toggle_goal",
		Description: "Flip a goal between done and not done",
		InputSchema: json.RawMessage(childItemSchema("goal_id", "Goal ID or prefix")),
	}, s.handleToggleGoal)

	// delete_goal
	s.server.AddTool(&mcp.Tool{
		Name:        "delete_goal",
		Description: "Delete a goal",
		InputSchema: json.RawMessage(childItemSchema("goal_id", "Goal ID or prefix")),
	}, s.handleDeleteGoal)

	// add_favorite
	s.server.AddTool(&mcp.Tool{
		Name:        "add_favorite",
		Description: "Save an activity to a child's favorites",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"child_id": {"type": "string", "description": "Child ID or prefix"},
				"name": {"type": "string", "description": "Activity name"},
				"link": {"type": "string", "description": "Activity URL"}
			},
			"required": ["child_id", "name", "link"]
		}`),
	}, s.handleAddFavorite)

	// delete_favorite
	s.server.AddTool(&mcp.Tool{
		Name:        "delete_favorite",
		Description: "Remove a favorite",
		InputSchema: json.RawMessage(childItemSchema("favorite_id", "Favorite ID or prefix")),
	}, s.handleDeleteFavorite)

	// add_note
	s.server.AddTool(&mcp.Tool{
		Name:        "add_note",
		Description: "Add a note about a child",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"child_id": {"type": "string", "description": "Child ID or prefix"},
				"text": {"type": "string", "description": "Note text"},
				"tag": {"type": "string", "description": "Optional tag"}
			},
			"required": ["child_id", "text"]
		}`),
	}, s.handleAddNote)

	// edit_note
	s.server.AddTool(&mcp.Tool{
		Name:        "edit_note",
		Description: "Edit a note's text or tag",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"child_id": {"type": "string", "description": "Child ID or prefix"},
				"note_id": {"type": "string", "description": "Note ID or prefix"},
				"text": {"type": "string", "description": "New text"},
				"tag": {"type": "string", "description": "New tag"}
			},
			"required": ["child_id", "note_id"]
		}`),
	}, s.handleEditNote)

	// delete_note
	s.server.AddTool(&mcp.Tool{
		Name:        "delete_note",
		Description: "Delete a note",
		InputSchema: json.RawMessage(childItemSchema("note_id", "Note ID or prefix")),
	}, s.handleDeleteNote)

	// get_dashboard
	s.server.AddTool(&mcp.Tool{
		Name:        "get_dashboard",
		Description: "Get a child's dashboard: progress, suggestions, favorites, and notes",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"child_id": {"type": "string", "description": "Child ID or prefix"},
				"format": {"type": "string", "description": "Format: md or json", "default": "md"}
			},
			"required": ["child_id"]
		}`),
	}, s.handleGetDashboard)

	// list_activities
	s.server.AddTool(&mcp.Tool{
		Name:        "list_activities",
		Description: "List catalog activities, optionally for one learning style",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"learning_style": {"type": "string", "description": "visual, auditory, kinesthetic, or mixed"}
			}
		}`),
	}, s.handleListActivities)
}

func profileSchema(required string) string {
	return `{
		"type": "object",
		"properties": {
			"child_id": {"type": "string", "description": "Child ID or prefix"},
			"name": {"type": "string", "description": "Child's name"},
			"age": {"type": "string", "description": "Age in years"},
			"gender": {"type": "string", "description": "female, male, nonbinary, or preferNot"},
			"learning_style": {"type": "string", "description": "visual, auditory, kinesthetic, or mixed"},
			"challenges": {"type": "string", "description": "Learning challenges"},
			"interests": {"type": "array", "items": {"type": "string"}, "description": "Interests"}
		},
		` + required + `
	}`
}

func childItemSchema(field, description string) string {
	return fmt.Sprintf(`{
		"type": "object",
		"properties": {
			"child_id": {"type": "string", "description": "Child ID or prefix"},
			%q: {"type": "string", "description": %q}
		},
		"required": ["child_id", %q]
	}`, field, description, field)
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
		IsError: true,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(v, "", "  ")
	return textResult(string(data))
}

func decodeArgs(req *mcp.CallToolRequest, v any) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	return json.Unmarshal(req.Params.Arguments, v)
}

// child resolves the signed-in user and a child ID prefix.
func (s *Server) child(ctx context.Context, prefix string) (string, *models.Profile, error) {
	uid, err := s.uid()
	if err != nil {
		return "", nil, err
	}
	p, err := s.repos.Profiles.Resolve(ctx, uid, prefix)
	if err != nil {
		return "", nil, err
	}
	return uid, p, nil
}

// Tool handlers.
func (s *Server) handleListProfiles(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := s.uid()
	if err != nil {
		return errorResult("failed to list profiles: %v", err), nil
	}
	profiles, err := s.repos.Profiles.List(ctx, uid)
	if err != nil {
		return errorResult("failed to list profiles: %v", err), nil
	}
	return jsonResult(models.ProfileRecords(profiles)), nil
}

type profileParams struct {
	ChildID       string    `json:"child_id"`
	Name          *string   `json:"name"`
	Age           *string   `json:"age"`
	Gender        *string   `json:"gender"`
	LearningStyle *string   `json:"learning_style"`
	Challenges    *string   `json:"challenges"`
	Interests     *[]string `json:"interests"`
}

// apply overlays the supplied fields on in.
func (p profileParams) apply(in models.ProfileInput) models.ProfileInput {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&in.Name, p.Name)
	set(&in.Age, p.Age)
	set(&in.Gender, p.Gender)
	set(&in.LearningStyle, p.LearningStyle)
	set(&in.Challenges, p.Challenges)
	if p.Interests != nil {
		in.Interests = *p.Interests
	}
	return in
}

func (s *Server) handleCreateProfile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params profileParams
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}
	uid, err := s.uid()
	if err != nil {
		return errorResult("failed to create profile: %v", err), nil
	}

	id, err := s.repos.Profiles.Create(ctx, uid, params.apply(models.ProfileInput{}))
	if err != nil {
		return errorResult("failed to create profile: %v", err), nil
	}
	return textResult(fmt.Sprintf("Created profile %s", id)), nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params profileParams
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}
	uid, p, err := s.child(ctx, params.ChildID)
	if err != nil {
		return errorResult("failed to find child: %v", err), nil
	}

	in := params.apply(models.InputFromProfile(p))
	if err := s.repos.Profiles.Update(ctx, uid, p.ID, in); err != nil {
		return errorResult("failed to update profile: %v", err), nil
	}
	return textResult(fmt.Sprintf("Updated profile %s", p.ID)), nil
}

func (s *Server) handleDeleteProfile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ChildID string `json:"child_id"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}
	uid, p, err := s.child(ctx, params.ChildID)
	if err != nil {
		return errorResult("failed to find child: %v", err), nil
	}
	if err := s.repos.Profiles.Delete(ctx, uid, p.ID); err != nil {
		return errorResult("failed to delete profile: %v", err), nil
	}
	return textResult(fmt.Sprintf("Deleted profile %s (%s)", p.ID, p.Name)), nil
}

func (s *Server) handleAddGoal(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ChildID string `json:"child_id"`
		Text    string `json:"text"`
		DueDate string `json:"due_date"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}
	in := models.GoalInput{Text: params.Text}
	if params.DueDate != "" {
		due, err := time.Parse(time.DateOnly, params.DueDate)
		if err != nil {
			return errorResult("invalid due_date %q: use YYYY-MM-DD", params.DueDate), nil
		}
		in.DueDate = &due
	}

	uid, p, err := s.child(ctx, params.ChildID)
	if err != nil {
		return errorResult("failed to find child: %v", err), nil
	}
	id, err := s.repos.Goals.Add(ctx, uid, p.ID, in)
	if err != nil {
		return errorResult("failed to add goal: %v", err), nil
	}
	return textResult(fmt.Sprintf("Added goal %s", id)), nil
}

type childItemParams struct {
	ChildID    string `json:"child_id"`
	GoalID     string `json:"goal_id"`
	FavoriteID string `json:"favorite_id"`
	NoteID     string `json:"note_id"`
}

func (s *Server) handleToggleGoal(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params childItemParams
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}
	uid, p, err := s.child(ctx, params.ChildID)
	if err != nil {
		return errorResult("failed to find child: %v", err), nil
	}
	g, err := s.repos.Goals.Resolve(ctx, uid, p.ID, params.GoalID)
	if err != nil {
		return errorResult("failed to find goal: %v", err), nil
	}
	if err := s.repos.Goals.SetDone(ctx, uid, p.ID, g.ID, !g.Done); err != nil {
		return errorResult("failed to update goal: %v", err), nil
	}
	state := "done"
	if g.Done {
		state = "not done"
	}
	return textResult(fmt.Sprintf("Marked goal %s %s", g.ID, state)), nil
}

func (s *Server) handleDeleteGoal(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params childItemParams
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}
	uid, p, err := s.child(ctx, params.ChildID)
	if err != nil {
		return errorResult("failed to find child: %v", err), nil
	}
	g, err := s.repos.Goals.Resolve(ctx, uid, p.ID, params.GoalID)
	if err != nil {
		return errorResult("failed to find goal: %v", err), nil
	}
	if err := s.repos.Goals.Remove(ctx, uid, p.ID, g.ID); err != nil {
		return errorResult("failed to delete goal: %v", err), nil
	}
	return textResult(fmt.Sprintf("Deleted goal %s", g.ID)), nil
}

func (s *Server) handleAddFavorite(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ChildID string `json:"child_id"`
		Name    string `json:"name"`
		Link    string `json:"link"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}
	uid, p, err := s.child(ctx, params.ChildID)
	if err != nil {
		return errorResult("failed to find child: %v", err), nil
	}
	id, err := s.repos.Favorites.Add(ctx, uid, p.ID, models.FavoriteInput{Name: params.Name, Link: params.Link})
	if err != nil {
		return errorResult("failed to save favorite: %v", err), nil
	}
	return textResult(fmt.Sprintf("Saved favorite %s", id)), nil
}

func (s *Server) handleDeleteFavorite(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params childItemParams
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}
	uid, p, err := s.child(ctx, params.ChildID)
	if err != nil {
		return errorResult("failed to find child: %v", err), nil
	}
	f, err := s.repos.Favorites.Resolve(ctx, uid, p.ID, params.FavoriteID)
	if err != nil {
		return errorResult("failed to find favorite: %v", err), nil
	}
	if err := s.repos.Favorites.Remove(ctx, uid, p.ID, f.ID); err != nil {
		return errorResult("failed to remove favorite: %v", err), nil
	}
	return textResult(fmt.Sprintf("Removed favorite %s", f.ID)), nil
}

func (s *Server) handleAddNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ChildID string `json:"child_id"`
		Text    string `json:"text"`
		Tag     string `json:"tag"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}

	// Validate text is not empty
	if strings.TrimSpace(params.Text) == "" {
		return errorResult("note text cannot be empty"), nil
	}

	uid, p, err := s.child(ctx, params.ChildID)
	if err != nil {
		return errorResult("failed to find child: %v", err), nil
	}
	id, err := s.repos.Notes.Add(ctx, uid, p.ID, models.NoteInput{Text: params.Text, Tag: params.Tag})
	if err != nil {
		return errorResult("failed to add note: %v", err), nil
	}
	return textResult(fmt.Sprintf("Added note %s", id)), nil
}

func (s *Server) handleEditNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ChildID string  `json:"child_id"`
		NoteID  string  `json:"note_id"`
		Text    *string `json:"text"`
		Tag     *string `json:"tag"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}
	uid, p, err := s.child(ctx, params.ChildID)
	if err != nil {
		return errorResult("failed to find child: %v", err), nil
	}
	n, err := s.repos.Notes.Resolve(ctx, uid, p.ID, params.NoteID)
	if err != nil {
		return errorResult("failed to find note: %v", err), nil
	}
	u := models.NoteUpdate{Text: params.Text, Tag: params.Tag}
	if err := s.repos.Notes.Update(ctx, uid, p.ID, n.ID, u); err != nil {
		return errorResult("failed to update note: %v", err), nil
	}
	return textResult(fmt.Sprintf("Updated note %s", n.ID)), nil
}

func (s *Server) handleDeleteNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params childItemParams
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}
	uid, p, err := s.child(ctx, params.ChildID)
	if err != nil {
		return errorResult("failed to find child: %v", err), nil
	}
	n, err := s.repos.Notes.Resolve(ctx, uid, p.ID, params.NoteID)
	if err != nil {
		return errorResult("failed to find note: %v", err), nil
	}
	if err := s.repos.Notes.Remove(ctx, uid, p.ID, n.ID); err != nil {
		return errorResult("failed to delete note: %v", err), nil
	}
	return textResult(fmt.Sprintf("Deleted note %s", n.ID)), nil
}

func (s *Server) handleGetDashboard(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ChildID string `json:"child_id"`
		Format  string `json:"format"`
	}
	params.Format = "md" // default
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}

	state, err := s.dashboard(ctx, params.ChildID)
	if err != nil {
		return errorResult("failed to load dashboard: %v", err), nil
	}
	if params.Format == "json" && !state.NotFound {
		return jsonResult(dashboardJSON(state)), nil
	}
	return textResult(ui.DashboardMarkdown(state)), nil
}

// dashboard loads the state for a child prefix. An unknown child is a
// not-found state, not an error.
func (s *Server) dashboard(ctx context.Context, prefix string) (dashboard.State, error) {
	uid, p, err := s.child(ctx, prefix)
	if errors.Is(err, models.ErrNotFound) {
		return dashboard.State{ChildID: prefix, NotFound: true}, nil
	}
	if err != nil {
		return dashboard.State{}, err
	}
	return dashboard.Load(ctx, s.repos, s.catalog, uid, p.ID, s.now())
}

func dashboardJSON(s dashboard.State) map[string]any {
	export := models.NewChildExport(s.Profile, s.Goals, s.Favorites, s.Notes, time.Now())
	return map[string]any{
		"profile":     export.Profile,
		"goals":       export.Goals,
		"favorites":   export.Favorites,
		"notes":       export.Notes,
		"progress":    s.Progress,
		"suggestions": s.Suggestions,
		"daily":       s.Daily,
	}
}

func (s *Server) handleListActivities(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		LearningStyle string `json:"learning_style"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}
	if params.LearningStyle == "" {
		return jsonResult(s.catalog.All()), nil
	}
	return jsonResult(s.catalog.ForStyle(params.LearningStyle)), nil
}
