// ABOUTME: Dashboard command showing a child's profile, goals, favorites, and notes.
// ABOUTME: Renders markdown with glamour unless --raw is passed.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/tigercub/internal/dashboard"
	"github.com/harper/tigercub/internal/ui"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard <child-id>",
	Aliases: []string{"dash"},
	Short:   "Show a child's dashboard",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")

		uid, p, err := resolveChild(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		state, err := dashboard.Load(cmd.Context(), repos, activities, uid, p.ID, time.Now())
		if err != nil {
			return fmt.Errorf("failed to load dashboard: %w", err)
		}

		md := ui.DashboardMarkdown(state)
		if !raw {
			md, _ = ui.RenderMarkdown(md)
		}
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	dashboardCmd.Flags().Bool("raw", false, "print markdown without rendering")
	rootCmd.AddCommand(dashboardCmd)
}
