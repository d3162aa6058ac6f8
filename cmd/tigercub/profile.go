// ABOUTME: Profile commands for adding, listing, showing, editing, and removing children.
// ABOUTME: Children are addressed by ID prefix, as shown in the list.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/tigercub/internal/models"
	"github.com/harper/tigercub/internal/ui"
)

var profileCmd = &cobra.Command{
	Use:     "profile",
	Aliases: []string{"child"},
	Short:   "Manage child profiles",
}

var profileAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a child profile",
	Example: `  tigercub profile add --name Mia --age 7 --style visual --interests Art,Music
  tigercub profile add --name Leo --age 5 --challenges "Shy in groups"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUID()
		if err != nil {
			return err
		}

		in := profileFromFlags(cmd, models.ProfileInput{})
		id, err := repos.Profiles.Create(cmd.Context(), uid, in)
		if err != nil {
			return formError("failed to add profile", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Created profile %s", ui.ShortID(id))))
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List child profiles, most recently updated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUID()
		if err != nil {
			return err
		}
		profiles, err := repos.Profiles.List(cmd.Context(), uid)
		if err != nil {
			return fmt.Errorf("failed to list profiles: %w", err)
		}

		if len(profiles) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No children yet. Add one with 'tigercub profile add'.")
			return nil
		}
		for _, p := range profiles {
			fmt.Fprint(cmd.OutOrStdout(), ui.FormatProfileListItem(p))
		}
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show <child-id>",
	Short: "Show a child profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, p, err := resolveChild(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprint(out, ui.FormatProfileHeader(p))
		fmt.Fprintln(out, ui.Banner(p))
		return nil
	},
}

var profileEditCmd = &cobra.Command{
	Use:   "edit <child-id>",
	Short: "Edit a child profile",
	Long:  `Edit a child profile. Only the flags you pass change; everything else keeps its current value.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, p, err := resolveChild(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		in := profileFromFlags(cmd, models.InputFromProfile(p))
		if err := repos.Profiles.Update(cmd.Context(), uid, p.ID, in); err != nil {
			return formError("failed to update profile", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Updated profile %s", ui.ShortID(p.ID))))
		return nil
	},
}

var profileRmCmd = &cobra.Command{
	Use:   "rm <child-id>",
	Short: "Remove a child profile",
	Long:  `Delete a child profile with all of its goals, favorites, and notes.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		uid, p, err := resolveChild(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if !force && !confirm(cmd, fmt.Sprintf("Delete %s (%s) and everything saved for them?", p.Name, ui.ShortID(p.ID))) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}

		if err := repos.Profiles.Delete(cmd.Context(), uid, p.ID); err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Deleted profile %s", ui.ShortID(p.ID))))
		return nil
	},
}

// profileFromFlags overlays every flag the user set on base.
func profileFromFlags(cmd *cobra.Command, base models.ProfileInput) models.ProfileInput {
	flags := cmd.Flags()
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	str("name", &base.Name)
	str("age", &base.Age)
	str("gender", &base.Gender)
	str("style", &base.LearningStyle)
	str("challenges", &base.Challenges)
	if flags.Changed("interests") {
		v, _ := flags.GetString("interests")
		base.Interests = splitList(v)
	}
	return base
}

// formError lists every invalid field of a rejected form.
func formError(action string, err error) error {
	var many models.ValidationErrors
	var one *models.ValidationError
	switch {
	case errors.As(err, &many):
		msgs := make([]string, len(many))
		for i, e := range many {
			msgs[i] = fmt.Sprintf("--%s: %s", flagFor(e.Field), e.Message)
		}
		return fmt.Errorf("%s:\n  %s", action, strings.Join(msgs, "\n  "))
	case errors.As(err, &one):
		return fmt.Errorf("%s: --%s: %s", action, flagFor(one.Field), one.Message)
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}

func flagFor(field string) string {
	switch field {
	case "learningStyle":
		return "style"
	default:
		return field
	}
}

func init() {
	for _, c := range []*cobra.Command{profileAddCmd, profileEditCmd} {
		c.Flags().String("name", "", "child's name")
		c.Flags().String("age", "", "age in years")
		c.Flags().String("gender", "", "female, male, nonbinary, or preferNot")
		c.Flags().String("style", "", "learning style: visual, auditory, kinesthetic, or mixed")
		c.Flags().String("challenges", "", "learning challenges")
		c.Flags().String("interests", "", "comma-separated interests, e.g. Art,Music")
	}
	profileRmCmd.Flags().BoolP("force", "f", false, "skip confirmation")

	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileEditCmd)
	profileCmd.AddCommand(profileRmCmd)
	rootCmd.AddCommand(profileCmd)
}
