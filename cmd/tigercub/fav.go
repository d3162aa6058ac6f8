// ABOUTME: Favorite activity commands for a child.
// ABOUTME: Save links directly or pick from the activity catalog.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/tigercub/internal/catalog"
	"github.com/harper/tigercub/internal/dashboard"
	"github.com/harper/tigercub/internal/models"
	"github.com/harper/tigercub/internal/ui"
)

var favCmd = &cobra.Command{
	Use:     "fav",
	Aliases: []string{"favorite"},
	Short:   "Manage a child's favorite activities",
}

var favAddCmd = &cobra.Command{
	Use:     "add <child-id> <name> <link>",
	Short:   "Save an activity link as a favorite",
	Example: `  tigercub fav add 3f2a "Story Time" https://example.com/story`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, p, err := resolveChild(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		id, err := repos.Favorites.Add(cmd.Context(), uid, p.ID, models.FavoriteInput{Name: args[1], Link: args[2]})
		if err != nil {
			return formError("failed to save favorite", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Activity saved to favorites! (%s)", ui.ShortID(id))))
		return nil
	},
}

var favListCmd = &cobra.Command{
	Use:     "list <child-id>",
	Aliases: []string{"ls"},
	Short:   "List favorite activities",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, p, err := resolveChild(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		favs, err := repos.Favorites.List(cmd.Context(), uid, p.ID)
		if err != nil {
			return fmt.Errorf("failed to list favorites: %w", err)
		}
		if len(favs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No favorites saved yet. Find an activity to get started!")
			return nil
		}
		for _, f := range favs {
			fmt.Fprint(cmd.OutOrStdout(), ui.FormatFavoriteLine(f))
		}
		return nil
	},
}

var favRmCmd = &cobra.Command{
	Use:   "rm <child-id> <favorite-id>",
	Short: "Remove a favorite",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, p, err := resolveChild(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		f, err := repos.Favorites.Resolve(cmd.Context(), uid, p.ID, args[1])
		if err != nil {
			return fmt.Errorf("failed to find favorite: %w", err)
		}
		if err := repos.Favorites.Remove(cmd.Context(), uid, p.ID, f.ID); err != nil {
			return fmt.Errorf("failed to remove favorite: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Favorite removed!"))
		return nil
	},
}

var favSaveCmd = &cobra.Command{
	Use:   "save <child-id> [activity name]",
	Short: "Save a catalog activity as a favorite",
	Long: `Save an activity from the catalog as a favorite. Without a name, saves
today's activity of the day for the child's learning style.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, p, err := resolveChild(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		var a catalog.Activity
		if len(args) > 1 {
			name := strings.Join(args[1:], " ")
			var ok bool
			if a, ok = findActivity(name); !ok {
				return fmt.Errorf("no activity named %q; see 'tigercub activities'", name)
			}
		} else {
			var ok bool
			if a, ok = dashboard.DailyActivity(activities, p.LearningStyle, time.Now()); !ok {
				return fmt.Errorf("no activity of the day for %s; set a learning style or name an activity", p.Name)
			}
		}

		view := dashboard.NewView(repos, activities,
			dashboard.WithNotifier(ui.Notifier{Out: cmd.OutOrStdout()}),
			dashboard.WithLogger(logger),
		)
		defer view.Close()
		if err := view.Select(uid, p.ID); err != nil {
			return err
		}
		return view.SaveActivity(cmd.Context(), a)
	},
}

func findActivity(name string) (catalog.Activity, bool) {
	for _, a := range activities.All() {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return catalog.Activity{}, false
}

func init() {
	favCmd.AddCommand(favAddCmd)
	favCmd.AddCommand(favListCmd)
	favCmd.AddCommand(favRmCmd)
	favCmd.AddCommand(favSaveCmd)
	rootCmd.AddCommand(favCmd)
}
