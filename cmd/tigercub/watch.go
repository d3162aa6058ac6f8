// ABOUTME: Watch command that keeps a child's dashboard on screen as data changes.
// ABOUTME: Redraws on every change from this or another tigercub process until interrupted.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/tigercub/internal/dashboard"
	"github.com/harper/tigercub/internal/ui"
)

const clearScreen = "\033[H\033[2J"

var watchCmd = &cobra.Command{
	Use:   "watch <child-id>",
	Short: "Live dashboard for a child",
	Long: `Show a child's dashboard and redraw it whenever goals, favorites,
notes, or the profile change. Press Ctrl-C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")

		uid, p, err := resolveChild(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		profilesSub, err := repos.Profiles.Watch(uid)
		if err != nil {
			return fmt.Errorf("watch profiles: %w", err)
		}
		defer profilesSub.Unsubscribe()

		view := dashboard.NewView(repos, activities,
			dashboard.WithNotifier(ui.Notifier{Out: cmd.ErrOrStderr()}),
			dashboard.WithLogger(logger),
		)
		defer view.Close()

		cancelAuth := gateway.OnAuthStateChanged(view.HandleAuthChange)
		defer cancelAuth()

		// One pending redraw is enough; bursts of changes coalesce.
		redraw := make(chan struct{}, 1)
		removeListener := view.OnChange(func() {
			select {
			case redraw <- struct{}{}:
			default:
			}
		})
		defer removeListener()

		if err := view.Select(uid, p.ID); err != nil {
			return err
		}
		return renderLoop(ctx, cmd, view, redraw, raw)
	},
}

func renderLoop(ctx context.Context, cmd *cobra.Command, view *dashboard.View, redraw <-chan struct{}, raw bool) error {
	out := cmd.OutOrStdout()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-redraw:
		}

		state := view.State()
		if state.UID == "" {
			fmt.Fprintln(out, "Signed out.")
			return nil
		}
		if !state.Loaded && !state.NotFound && state.Err == nil {
			continue
		}
		if state.Err != nil {
			logger.Warn("dashboard subscription failed", "err", state.Err)
		}

		md := ui.DashboardMarkdown(state)
		if !raw {
			md, _ = ui.RenderMarkdown(md)
			fmt.Fprint(out, clearScreen)
		} else {
			fmt.Fprint(out, ui.Separator())
		}
		fmt.Fprint(out, md)
	}
}

func init() {
	watchCmd.Flags().Bool("raw", false, "print markdown without rendering or clearing the screen")
	rootCmd.AddCommand(watchCmd)
}
