// ABOUTME: Export command for backing up everything saved about a child.
// ABOUTME: Supports JSON and YAML export formats.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harper/tigercub/internal/models"
	"github.com/harper/tigercub/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:   "export <child-id>",
	Short: "Export a child's data",
	Long:  `Export a child's profile, goals, favorites, and notes as JSON or YAML.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outputPath, _ := cmd.Flags().GetString("output")

		if format != "json" && format != "yaml" {
			return fmt.Errorf("unknown format: %s", format)
		}

		uid, p, err := resolveChild(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		goals, err := repos.Goals.List(ctx, uid, p.ID)
		if err != nil {
			return fmt.Errorf("failed to list goals: %w", err)
		}
		favs, err := repos.Favorites.List(ctx, uid, p.ID)
		if err != nil {
			return fmt.Errorf("failed to list favorites: %w", err)
		}
		notes, err := repos.Notes.List(ctx, uid, p.ID)
		if err != nil {
			return fmt.Errorf("failed to list notes: %w", err)
		}

		export := models.NewChildExport(p, goals, favs, notes, time.Now())

		var data []byte
		if format == "json" {
			data, err = json.MarshalIndent(export, "", "  ")
			data = append(data, '\n')
		} else {
			data, err = yaml.Marshal(export)
		}
		if err != nil {
			return fmt.Errorf("failed to encode export: %w", err)
		}

		if outputPath == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(outputPath, data, 0600); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Exported %s to %s", p.Name, outputPath)))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("format", "f", "json", "export format (json|yaml)")
	exportCmd.Flags().StringP("output", "o", "", "output path (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}
