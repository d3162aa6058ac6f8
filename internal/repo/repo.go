// ABOUTME: Shared plumbing for the profile and per-child repositories.
// ABOUTME: Path layout, write timeouts, error mapping, and ID prefix lookup.

package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harper/tigercub/internal/docstore"
	"github.com/harper/tigercub/internal/logging"
	"github.com/harper/tigercub/internal/models"
)

const (
	usersColl     = "users"
	profilesColl  = "childProfiles"
	goalsColl     = "goals"
	favoritesColl = "favorites"
	notesColl     = "notes"

	// MinPrefixLength is the shortest ID prefix Resolve accepts.
	MinPrefixLength = 6

	DefaultWriteTimeout = 10 * time.Second
)

var (
	ErrPrefixTooShort  = errors.New("prefix must be at least 6 characters")
	ErrAmbiguousPrefix = errors.New("prefix matches multiple records")
)

// childCollections are removed along with their profile.
var childCollections = []string{goalsColl, favoritesColl, notesColl}

func profilesPath(uid string) string {
	return docstore.Join(usersColl, uid, profilesColl)
}

func childPath(uid, childID, kind string) string {
	return docstore.Join(usersColl, uid, profilesColl, childID, kind)
}

type options struct {
	timeout time.Duration
	log     *log.Logger
}

// Option configures a repository.
type Option func(*options)

// WithWriteTimeout bounds every store round-trip. Zero means no bound
// beyond the caller's context.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.log = logging.OrDiscard(l)
	}
}

func buildOptions(opts []Option) options {
	o := options{timeout: DefaultWriteTimeout, log: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// base is embedded by every repository.
type base struct {
	store   docstore.Store
	timeout time.Duration
	log     *log.Logger
}

func newBase(store docstore.Store, opts []Option) base {
	o := buildOptions(opts)
	return base{store: store, timeout: o.timeout, log: o.log}
}

func (b *base) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.timeout)
}

// writeError maps a failed store write. A missing target becomes
// models.ErrNotFound; anything else is a RemoteWriteError.
func (b *base) writeError(op, path string, err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", op, path, models.ErrNotFound)
	}
	b.log.Warn("write failed", "op", op, "path", path, "err", err)
	return &models.RemoteWriteError{Op: op, Path: path, Err: err}
}

func requireUser(uid string) error {
	if uid == "" {
		return models.ErrNotAuthenticated
	}
	return nil
}

// checkID rejects IDs that could not name a single document.
func checkID(kind, id string) error {
	if id == "" || strings.Contains(id, "/") {
		return fmt.Errorf("%s %q: %w", kind, id, models.ErrNotFound)
	}
	return nil
}

// matchPrefix picks the single ID that equals or starts with prefix.
func matchPrefix(ids []string, prefix string) (string, error) {
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
	}
	if len(prefix) < MinPrefixLength {
		return "", ErrPrefixTooShort
	}
	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, prefix) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%q: %w", prefix, models.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %d matches", ErrAmbiguousPrefix, len(matches))
	}
}

// Repositories bundles every repository over one store.
type Repositories struct {
	Profiles  *ProfileRepository
	Goals     *GoalRepository
	Favorites *FavoriteRepository
	Notes     *NoteRepository
}

func New(store docstore.Store, opts ...Option) *Repositories {
	return &Repositories{
		Profiles:  NewProfileRepository(store, opts...),
		Goals:     NewGoalRepository(store, opts...),
		Favorites: NewFavoriteRepository(store, opts...),
		Notes:     NewNoteRepository(store, opts...),
	}
}
