// ABOUTME: MCP prompts for common parenting-support workflows.
// ABOUTME: Provides pre-configured prompts for planning goals and reviewing notes.

package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerPrompts() {
	// Register individual prompts - SDK will automatically handle listing
	s.server.AddPrompt(&mcp.Prompt{
		Name:        "plan-weekly-goals",
		Description: "Plan a week of learning goals matched to a child's learning style and interests",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "child_id",
				Description: "ID or prefix of the child",
				Required:    true,
			},
			{
				Name:        "focus",
				Description: "Optional area to focus on this week",
				Required:    false,
			},
		},
	}, s.getPlanWeeklyGoalsPrompt)

	s.server.AddPrompt(&mcp.Prompt{
		Name:        "summarize-child-notes",
		Description: "Summarize the notes kept about a child and spot patterns",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "child_id",
				Description: "ID or prefix of the child",
				Required:    true,
			},
		},
	}, s.getSummarizeNotesPrompt)
}

func userPrompt(text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: text,
				},
			},
		},
	}
}

func (s *Server) getPlanWeeklyGoalsPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	childID, ok := req.Params.Arguments["child_id"]
	if !ok || childID == "" {
		return nil, fmt.Errorf("child_id argument is required")
	}
	focus := req.Params.Arguments["focus"]
	if focus == "" {
		focus = "whatever fits best"
	}

	template := fmt.Sprintf(`Plan this week's learning goals for the child with ID: %s
Focus: %s

1. Use the get_dashboard tool to read the child's profile, current goals, and favorites
2. Note the learning style, interests, and any challenges
3. Use the list_activities tool with that learning style to find matching activities
4. Propose three to five small, concrete goals for the week, each with a due date
5. Use the add_goal tool to add the goals the parent agrees to
6. Use the add_favorite tool to save any activity that supports a goal`, childID, focus)

	return userPrompt(template), nil
}

func (s *Server) getSummarizeNotesPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	childID, ok := req.Params.Arguments["child_id"]
	if !ok || childID == "" {
		return nil, fmt.Errorf("child_id argument is required")
	}

	template := fmt.Sprintf(`Please summarize the notes for the child with ID: %s

1. Use the get_dashboard tool with format "json" to retrieve the notes
2. Group the notes by tag and by time
3. Create a concise summary highlighting:
   - Recurring strengths and interests
   - Recurring difficulties
   - Changes over time
4. Suggest one goal that follows from the notes, and offer to add it with the add_goal tool`, childID)

	return userPrompt(template), nil
}
