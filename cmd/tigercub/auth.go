// ABOUTME: Account commands: signup, login, logout, and whoami.
// ABOUTME: Passwords are prompted without echo; the session is saved for later runs.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/harper/tigercub/internal/auth"
	"github.com/harper/tigercub/internal/ui"
)

var signupCmd = &cobra.Command{
	Use:   "signup <email>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		user, err := gateway.SignUp(cmd.Context(), args[0], password)
		if err != nil {
			return fmt.Errorf("sign up failed: %w", err)
		}
		if err := saveSession(user); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Signed up as %s", user.Email)))
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		user, err := gateway.SignIn(cmd.Context(), args[0], password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if err := saveSession(user); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Logged in as %s", user.Email)))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		gateway.SignOut()
		if err := sessions.Clear(); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Logged out"))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		u := gateway.CurrentUser()
		if u == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", u.Email, u.UID)
		return nil
	},
}

func saveSession(user *auth.User) error {
	err := sessions.Save(&auth.Session{
		Token:   gateway.Token(),
		Email:   user.Email,
		SavedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// readPassword takes --password, prompts without echo on a terminal, or
// reads one line from piped input.
func readPassword(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("password"); p != "" {
		return p, nil
	}

	if cmd.InOrStdin() == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		data, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(data), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	for _, c := range []*cobra.Command{signupCmd, loginCmd} {
		c.Flags().String("password", "", "password (prompted when omitted)")
	}
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
