// ABOUTME: Root command and shared setup for the tigercub CLI.
// ABOUTME: Loads config, opens the configured store, and restores the saved session.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harper/tigercub/internal/auth"
	"github.com/harper/tigercub/internal/catalog"
	"github.com/harper/tigercub/internal/charm"
	"github.com/harper/tigercub/internal/config"
	"github.com/harper/tigercub/internal/docstore"
	"github.com/harper/tigercub/internal/logging"
	"github.com/harper/tigercub/internal/models"
	"github.com/harper/tigercub/internal/repo"
)

var (
	cfgFile     string
	backendFlag string
	dataDirFlag string
	logLevel    string

	cfg         *config.Config
	logger      *log.Logger
	store       *docstore.DB
	charmClient *charm.Client
	gateway     *auth.LocalGateway
	sessions    *auth.SessionFile
	repos       *repo.Repositories
	activities  *catalog.Catalog
)

var rootCmd = &cobra.Command{
	Use:   "tigercub",
	Short: "Support your child's learning from the terminal",
	Long: `tigercub keeps profiles for the children you support, with learning goals,
favorite activities, and notes, and builds a dashboard for each child.

Sign up or log in first:
  tigercub signup you@example.com
  tigercub profile add --name Mia --age 7 --style visual --interests Art,Music
  tigercub dashboard <child-id>`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command and always releases the store.
func Execute() error {
	defer closeStore()
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.Path()
	}
	c, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	if backendFlag != "" {
		c.Backend = backendFlag
	}
	if dataDirFlag != "" {
		c.DataDir = dataDirFlag
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	logger = logging.New(cmd.ErrOrStderr(), cfg.LogLevel)

	activities = catalog.Default()
	if cfg.Catalog != "" {
		if activities, err = catalog.LoadFile(cfg.Catalog); err != nil {
			return err
		}
	}

	if err := openStore(); err != nil {
		return err
	}

	gateway = auth.NewLocalGateway(store,
		auth.WithSessionTTL(cfg.Auth.SessionTTL),
		auth.WithLogger(logger),
	)
	sessions = auth.NewSessionFile(cfg.SessionPath())
	restoreSession(cmd.Context())

	repos = repo.New(store,
		repo.WithWriteTimeout(cfg.WriteTimeout),
		repo.WithLogger(logger),
	)
	return nil
}

func openStore() error {
	storeOpts := []docstore.Option{
		docstore.WithLogger(logger),
		docstore.WithPollInterval(cfg.PollInterval),
	}

	var err error
	switch cfg.Backend {
	case config.BackendSQLite:
		store, err = docstore.OpenSQLite(cfg.SQLitePath(), storeOpts...)
	case config.BackendCharm:
		store, charmClient, err = charm.Open([]charm.Option{
			charm.WithHost(cfg.Charm.Host),
			charm.WithAutoSync(cfg.Charm.AutoSync),
			charm.WithStaleThreshold(cfg.Charm.StaleThreshold),
			charm.WithLogger(logger),
		}, storeOpts...)
		if err == nil {
			if serr := charmClient.SyncIfStale(); serr != nil {
				logger.Warn("sync failed", "err", serr)
			} else {
				store.Refresh()
			}
		}
	default:
		store, err = docstore.OpenBadger(cfg.BadgerDir(), storeOpts...)
	}
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}
	logger.Debug("store opened", "backend", cfg.Backend)
	return nil
}

func restoreSession(ctx context.Context) {
	s, err := sessions.Load()
	if err != nil {
		logger.Warn("could not read session", "err", err)
		return
	}
	if s == nil {
		return
	}
	if _, err := gateway.Restore(ctx, s.Token); err != nil {
		if errors.Is(err, auth.ErrSessionInvalid) {
			logger.Info("session expired, please log in again")
			_ = sessions.Clear()
			return
		}
		logger.Warn("could not restore session", "err", err)
	}
}

func closeStore() {
	if store != nil {
		if err := store.Close(); err != nil && logger != nil {
			logger.Warn("close store", "err", err)
		}
		store = nil
	}
	charmClient = nil
}

// currentUID returns the signed-in user's ID.
func currentUID() (string, error) {
	u := gateway.CurrentUser()
	if u == nil {
		return "", fmt.Errorf("%w: run 'tigercub login' first", models.ErrNotAuthenticated)
	}
	return u.UID, nil
}

// resolveChild finds a child profile by ID prefix for the signed-in user.
func resolveChild(ctx context.Context, prefix string) (string, *models.Profile, error) {
	uid, err := currentUID()
	if err != nil {
		return "", nil, err
	}
	p, err := repos.Profiles.Resolve(ctx, uid, prefix)
	if err != nil {
		return "", nil, fmt.Errorf("failed to find child: %w", err)
	}
	return uid, p, nil
}

// confirm asks a yes/no question on the command's input.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// splitList parses a comma-separated flag value.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/tigercub/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "store backend: badger, sqlite, or charm")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "directory for local data")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
}
