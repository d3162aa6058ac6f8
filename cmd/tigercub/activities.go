// ABOUTME: Activities command for browsing the learning activity catalog.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/tigercub/internal/catalog"
	"github.com/harper/tigercub/internal/ui"
)

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "List catalog activities",
	RunE: func(cmd *cobra.Command, args []string) error {
		style, _ := cmd.Flags().GetString("style")

		var list []catalog.Activity
		if style != "" {
			list = activities.ForStyle(style)
		} else {
			list = activities.All()
		}

		if len(list) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No activities for learning style %q.\n", style)
			return nil
		}
		for _, a := range list {
			fmt.Fprint(cmd.OutOrStdout(), ui.FormatActivity(a))
		}
		return nil
	},
}

func init() {
	activitiesCmd.Flags().StringP("style", "s", "", "only activities for this learning style")
	rootCmd.AddCommand(activitiesCmd)
}
