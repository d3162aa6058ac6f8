// ABOUTME: Note commands for free-text observations about a child.
// ABOUTME: Notes list newest first and carry an optional tag.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/tigercub/internal/models"
	"github.com/harper/tigercub/internal/ui"
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes about a child",
}

var noteAddCmd = &cobra.Command{
	Use:     "add <child-id> <text>",
	Short:   "Add a note",
	Example: `  tigercub note add 3f2a "Counted to 20 without help" --tag math`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, p, err := resolveChild(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		tag, _ := cmd.Flags().GetString("tag")
		id, err := repos.Notes.Add(cmd.Context(), uid, p.ID, models.NoteInput{Text: args[1], Tag: tag})
		if err != nil {
			return formError("failed to add note", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Note added! (%s)", ui.ShortID(id))))
		return nil
	},
}

var noteListCmd = &cobra.Command{
	Use:     "list <child-id>",
	Aliases: []string{"ls"},
	Short:   "List notes, newest first",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, p, err := resolveChild(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		notes, err := repos.Notes.List(cmd.Context(), uid, p.ID)
		if err != nil {
			return fmt.Errorf("failed to list notes: %w", err)
		}
		if len(notes) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No notes yet.")
			return nil
		}
		for _, n := range notes {
			fmt.Fprint(cmd.OutOrStdout(), ui.FormatNoteLine(n))
		}
		return nil
	},
}

var noteEditCmd = &cobra.Command{
	Use:   "edit <child-id> <note-id>",
	Short: "Edit a note's text or tag",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, p, err := resolveChild(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		n, err := repos.Notes.Resolve(cmd.Context(), uid, p.ID, args[1])
		if err != nil {
			return fmt.Errorf("failed to find note: %w", err)
		}

		var u models.NoteUpdate
		if cmd.Flags().Changed("text") {
			text, _ := cmd.Flags().GetString("text")
			u.Text = &text
		}
		if cmd.Flags().Changed("tag") {
			tag, _ := cmd.Flags().GetString("tag")
			u.Tag = &tag
		}

		if err := repos.Notes.Update(cmd.Context(), uid, p.ID, n.ID, u); err != nil {
			return formError("failed to update note", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Note updated!"))
		return nil
	},
}

var noteRmCmd = &cobra.Command{
	Use:   "rm <child-id> <note-id>",
	Short: "Remove a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, p, err := resolveChild(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		n, err := repos.Notes.Resolve(cmd.Context(), uid, p.ID, args[1])
		if err != nil {
			return fmt.Errorf("failed to find note: %w", err)
		}
		if err := repos.Notes.Remove(cmd.Context(), uid, p.ID, n.ID); err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Note deleted!"))
		return nil
	},
}

func init() {
	noteAddCmd.Flags().StringP("tag", "t", "", "tag for the note")
	noteEditCmd.Flags().String("text", "", "new note text")
	noteEditCmd.Flags().StringP("tag", "t", "", "new tag (empty to remove)")

	noteCmd.AddCommand(noteAddCmd)
	noteCmd.AddCommand(noteListCmd)
	noteCmd.AddCommand(noteEditCmd)
	noteCmd.AddCommand(noteRmCmd)
	rootCmd.AddCommand(noteCmd)
}
