// ABOUTME: Sync subcommand for Charm cloud integration.
// ABOUTME: Provides status, now, link, repair, reset, and wipe for the charm backend.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	charmkv "github.com/charmbracelet/charm/kv"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/tigercub/internal/config"
)

var errNoCharm = errors.New("sync needs the charm backend; set backend: charm in config or pass --backend charm")

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Manage Charm cloud sync",
	Long: `Sync your children's data to the Charm cloud.

Charm uses SSH key authentication - no passwords needed.
Data syncs automatically after each change when auto_sync is on.

Commands:
  status  - Show sync configuration and connection status
  now     - Sync immediately
  link    - Connect this device to Charm cloud
  repair  - Repair database corruption issues
  reset   - Reset local sync data (keeps cloud data)
  wipe    - Delete all synced data and start fresh

Examples:
  tigercub --backend charm sync status
  tigercub --backend charm sync link --host charm.example.com`,
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Charm Sync Status")
		fmt.Fprintln(out, strings.Repeat("-", 40))
		fmt.Fprintf(out, "Backend:   %s\n", cfg.Backend)

		if charmClient == nil {
			fmt.Fprintf(out, "Status:    %s\n", color.YellowString("sync disabled"))
			fmt.Fprintln(out, "\nSet backend: charm in your config to sync with Charm cloud.")
			return nil
		}

		if host := charmClient.Host(); host != "" {
			fmt.Fprintf(out, "Host:      %s\n", host)
		} else {
			fmt.Fprintf(out, "Host:      %s\n", color.New(color.Faint).Sprint("(default: cloud.charm.sh)"))
		}
		if charmClient.AutoSync() {
			fmt.Fprintf(out, "Auto-sync: %s\n", color.GreenString("enabled"))
		} else {
			fmt.Fprintf(out, "Auto-sync: %s\n", color.YellowString("disabled"))
		}
		if last := charmClient.LastSyncTime(); !last.IsZero() {
			fmt.Fprintf(out, "Last sync: %s\n", last.Local().Format("2006-01-02 15:04"))
		} else {
			fmt.Fprintf(out, "Last sync: %s\n", valueOrNone(""))
		}

		user, err := charmClient.User()
		fmt.Fprintln(out)
		if err == nil && user != nil {
			fmt.Fprintf(out, "User ID:   %s\n", user.CharmID)
			fmt.Fprintf(out, "Name:      %s\n", valueOrNone(user.Name))
			fmt.Fprintf(out, "Status:    %s\n", color.GreenString("connected"))
		} else {
			fmt.Fprintf(out, "Status:    %s\n", color.YellowString("not linked"))
			fmt.Fprintln(out, "\nRun 'tigercub sync link' to connect to Charm cloud.")
		}
		return nil
	},
}

var syncNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Sync with Charm cloud now",
	RunE: func(cmd *cobra.Command, args []string) error {
		if charmClient == nil {
			return errNoCharm
		}
		if err := charmClient.Sync(); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		store.Refresh()
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Synced"))
		return nil
	},
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Connect to Charm cloud",
	Long: `Link this device to Charm cloud for sync.

Charm uses SSH key authentication. Your SSH keys are used
automatically - no passwords needed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if charmClient == nil {
			return errNoCharm
		}

		if host, _ := cmd.Flags().GetString("host"); host != "" && host != cfg.Charm.Host {
			cfg.Charm.Host = host
			path := cfgFile
			if path == "" {
				path = config.Path()
			}
			if err := config.Save(cfg, path); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved host; run 'tigercub sync link' again to connect to it.")
			return nil
		}

		if err := charmClient.Link(); err != nil {
			return fmt.Errorf("link failed: %w", err)
		}
		user, err := charmClient.User()
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("\n✓ Linked to Charm cloud"))
		fmt.Fprintf(out, "  User ID: %s\n", user.CharmID)
		if user.Name != "" {
			fmt.Fprintf(out, "  Name:    %s\n", user.Name)
		}
		fmt.Fprintln(out, "\nYour data will now sync automatically.")
		return nil
	},
}

var syncRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair database corruption issues",
	Long: `Repair the local KV database if it's corrupted.

This command:
- Checkpoints the WAL (write-ahead log)
- Removes shared memory files
- Runs integrity checks
- Vacuums the database if needed

Use --force to attempt repair even if integrity check fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if charmClient == nil {
			return errNoCharm
		}
		force, _ := cmd.Flags().GetBool("force")
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "Repairing database...")
		result, err := charmkv.Repair(charmClient.Database(), force)
		if err != nil {
			return fmt.Errorf("repair failed: %w", err)
		}

		fmt.Fprintln(out, "\nRepair Results:")
		if result.WalCheckpointed {
			fmt.Fprintln(out, "  ✓ WAL checkpointed")
		}
		if result.ShmRemoved {
			fmt.Fprintln(out, "  ✓ SHM file removed")
		}
		if result.IntegrityOK {
			fmt.Fprintln(out, color.GreenString("  ✓ Integrity check passed"))
		} else {
			fmt.Fprintln(out, color.RedString("  ✗ Integrity check failed"))
		}
		if result.Vacuumed {
			fmt.Fprintln(out, "  ✓ Database vacuumed")
		}

		if result.IntegrityOK {
			fmt.Fprintln(out, color.GreenString("\n✓ Database repaired successfully"))
		} else {
			fmt.Fprintln(out, color.YellowString("\n⚠ Repair completed but integrity issues remain"))
			fmt.Fprintln(out, "Consider running 'tigercub sync reset' or 'tigercub sync wipe'")
		}
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset local sync data",
	Long: `Reset the local KV database while keeping cloud data intact.

This removes all local sync state and forces a fresh sync from the cloud.
Your cloud data is preserved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if charmClient == nil {
			return errNoCharm
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "This will reset local sync data.")
		fmt.Fprintln(out, "Cloud data will be preserved and re-synced.")
		if !confirm(cmd, "\nContinue?") {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}

		fmt.Fprintln(out, "\nResetting local data...")
		if err := charmClient.Reset(); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		fmt.Fprintln(out, color.GreenString("✓ Local sync data reset"))
		fmt.Fprintln(out, "\nRun any tigercub command to re-sync from cloud.")
		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Wipe all sync data and start fresh",
	Long: `Delete all synced data from Charm cloud and the local KV store.

This deletes BOTH cloud backups and local files, including every
account, child profile, goal, favorite, and note.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if charmClient == nil {
			return errNoCharm
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "This will DELETE all sync data:")
		fmt.Fprintln(out, "  - All data in Charm cloud")
		fmt.Fprintln(out, "  - Local KV database")
		fmt.Fprintln(out)
		fmt.Fprintln(out, color.YellowString("This cannot be undone!"))
		fmt.Fprint(out, "\nType 'wipe' to confirm: ")

		reader := bufio.NewReader(cmd.InOrStdin())
		confirmation, _ := reader.ReadString('\n')
		if strings.TrimSpace(confirmation) != "wipe" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}

		fmt.Fprintln(out, "\nWiping data...")
		result, err := charmkv.Wipe(charmClient.Database())
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}

		fmt.Fprintln(out, "\nWipe Results:")
		if result.CloudBackupsDeleted > 0 {
			fmt.Fprintf(out, "  ✓ Deleted %d cloud backups\n", result.CloudBackupsDeleted)
		}
		if result.LocalFilesDeleted > 0 {
			fmt.Fprintf(out, "  ✓ Deleted %d local files\n", result.LocalFilesDeleted)
		}
		fmt.Fprintln(out, color.GreenString("\n✓ All sync data wiped"))
		return nil
	},
}

// valueOrNone returns "(not set)" if the string is empty.
func valueOrNone(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func init() {
	syncLinkCmd.Flags().String("host", "", "Charm server host (default: cloud.charm.sh)")
	syncRepairCmd.Flags().Bool("force", false, "Force repair even if integrity check fails")

	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncNowCmd)
	syncCmd.AddCommand(syncLinkCmd)
	syncCmd.AddCommand(syncRepairCmd)
	syncCmd.AddCommand(syncResetCmd)
	syncCmd.AddCommand(syncWipeCmd)
	rootCmd.AddCommand(syncCmd)
}
