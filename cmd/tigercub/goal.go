// ABOUTME: Goal commands for a child's learning goals.
// ABOUTME: Goals can be added, listed, completed, reopened, edited, and removed.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/tigercub/internal/dashboard"
	"github.com/harper/tigercub/internal/models"
	"github.com/harper/tigercub/internal/ui"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage a child's learning goals",
}

var goalAddCmd = &cobra.Command{
	Use:     "add <child-id> <text>",
	Short:   "Add a goal",
	Example: `  tigercub goal add 3f2a "Read one picture book a day" --due 2026-11-01`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, p, err := resolveChild(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		in := models.GoalInput{Text: args[1]}
		if due, _ := cmd.Flags().GetString("due"); due != "" {
			d, err := parseDue(due)
			if err != nil {
				return err
			}
			in.DueDate = &d
		}

		id, err := repos.Goals.Add(cmd.Context(), uid, p.ID, in)
		if err != nil {
			return formError("failed to add goal", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Goal added! (%s)", ui.ShortID(id))))
		return nil
	},
}

var goalListCmd = &cobra.Command{
	Use:     "list <child-id>",
	Aliases: []string{"ls"},
	Short:   "List goals with progress",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, p, err := resolveChild(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		goals, err := repos.Goals.List(cmd.Context(), uid, p.ID)
		if err != nil {
			return fmt.Errorf("failed to list goals: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(goals) == 0 {
			fmt.Fprintf(out, "No goals for %s yet.\n", p.Name)
			return nil
		}
		progress := dashboard.ComputeProgress(goals)
		fmt.Fprintf(out, "%d of %d goals completed (%.0f%%)\n", progress.Completed, progress.Total, progress.Percent)
		fmt.Fprint(out, ui.Separator())
		for _, g := range goals {
			fmt.Fprint(out, ui.FormatGoalLine(g))
		}
		return nil
	},
}

var goalDoneCmd = &cobra.Command{
	Use:   "done <child-id> <goal-id>",
	Short: "Mark a goal completed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setGoalDone(cmd, args, true)
	},
}

var goalUndoCmd = &cobra.Command{
	Use:   "undo <child-id> <goal-id>",
	Short: "Mark a goal not completed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setGoalDone(cmd, args, false)
	},
}

func setGoalDone(cmd *cobra.Command, args []string, done bool) error {
	uid, p, err := resolveChild(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	g, err := repos.Goals.Resolve(cmd.Context(), uid, p.ID, args[1])
	if err != nil {
		return fmt.Errorf("failed to find goal: %w", err)
	}
	if err := repos.Goals.SetDone(cmd.Context(), uid, p.ID, g.ID, done); err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Goal updated!"))
	return nil
}

var goalEditCmd = &cobra.Command{
	Use:   "edit <child-id> <goal-id>",
	Short: "Edit a goal's text or due date",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, p, err := resolveChild(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		g, err := repos.Goals.Resolve(cmd.Context(), uid, p.ID, args[1])
		if err != nil {
			return fmt.Errorf("failed to find goal: %w", err)
		}

		var u models.GoalUpdate
		flags := cmd.Flags()
		if flags.Changed("text") {
			text, _ := flags.GetString("text")
			u.Text = &text
		}
		if flags.Changed("due") {
			due, _ := flags.GetString("due")
			d, err := parseDue(due)
			if err != nil {
				return err
			}
			u.DueDate = &d
		}
		u.ClearDueDate, _ = flags.GetBool("clear-due")

		if err := repos.Goals.Update(cmd.Context(), uid, p.ID, g.ID, u); err != nil {
			return formError("failed to update goal", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Goal updated!"))
		return nil
	},
}

var goalRmCmd = &cobra.Command{
	Use:   "rm <child-id> <goal-id>",
	Short: "Remove a goal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, p, err := resolveChild(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		g, err := repos.Goals.Resolve(cmd.Context(), uid, p.ID, args[1])
		if err != nil {
			return fmt.Errorf("failed to find goal: %w", err)
		}
		if err := repos.Goals.Remove(cmd.Context(), uid, p.ID, g.ID); err != nil {
			return fmt.Errorf("failed to delete goal: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Goal deleted!"))
		return nil
	},
}

func parseDue(s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q: use YYYY-MM-DD", s)
	}
	return d, nil
}

func init() {
	goalAddCmd.Flags().String("due", "", "due date (YYYY-MM-DD)")
	goalEditCmd.Flags().String("text", "", "new goal text")
	goalEditCmd.Flags().String("due", "", "new due date (YYYY-MM-DD)")
	goalEditCmd.Flags().Bool("clear-due", false, "remove the due date")
	goalEditCmd.MarkFlagsMutuallyExclusive("due", "clear-due")

	goalCmd.AddCommand(goalAddCmd)
	goalCmd.AddCommand(goalListCmd)
	goalCmd.AddCommand(goalDoneCmd)
	goalCmd.AddCommand(goalUndoCmd)
	goalCmd.AddCommand(goalEditCmd)
	goalCmd.AddCommand(goalRmCmd)
	rootCmd.AddCommand(goalCmd)
}
