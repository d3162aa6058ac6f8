// ABOUTME: Live dashboard for one selected child, fed by three subscriptions.
// ABOUTME: Mutation handlers do one round-trip each and report through a Notifier.

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harper/tigercub/internal/catalog"
	"github.com/harper/tigercub/internal/docstore"
	"github.com/harper/tigercub/internal/logging"
	"github.com/harper/tigercub/internal/models"
	"github.com/harper/tigercub/internal/repo"
)

var ErrNoChild = errors.New("no child selected")

// Notifier shows transient success and failure messages.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

// State is everything the dashboard renders for the selected child.
type State struct {
	UID      string
	ChildID  string
	NotFound bool

	Profile   *models.Profile
	Goals     []*models.Goal
	Favorites []*models.Favorite
	Notes     []*models.Note

	// Loaded is true once every subscription has delivered a snapshot.
	Loaded bool
	Err    error

	Progress    Progress
	Suggestions []catalog.Activity
	Daily       *catalog.Activity
}

type Option func(*View)

func WithNotifier(n Notifier) Option {
	return func(v *View) {
		if n != nil {
			v.notifier = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(v *View) {
		v.now = now
	}
}

func WithLogger(l *log.Logger) Option {
	return func(v *View) {
		v.log = logging.OrDiscard(l)
	}
}

// View tracks one child at a time. A generation number guards every
// callback so a late delivery for a previous child is dropped.
type View struct {
	repos    *repo.Repositories
	catalog  *catalog.Catalog
	notifier Notifier
	now      func() time.Time
	log      *log.Logger

	mu        sync.Mutex
	uid       string
	childID   string
	gen       uint64
	subs      []*docstore.Subscription
	goals     []*models.Goal
	favorites []*models.Favorite
	notes     []*models.Note
	loaded    int
	err       error
	closed    bool

	listenerMu sync.Mutex
	listeners  map[int]func()
	nextID     int

	stopProfiles func()
}

// loadedAll marks the three subscriptions as delivered.
const (
	loadedGoals = 1 << iota
	loadedFavorites
	loadedNotes
	loadedAll = loadedGoals | loadedFavorites | loadedNotes
)

func NewView(repos *repo.Repositories, cat *catalog.Catalog, opts ...Option) *View {
	v := &View{
		repos:     repos,
		catalog:   cat,
		notifier:  nopNotifier{},
		now:       time.Now,
		log:       logging.Discard(),
		listeners: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.stopProfiles = repos.Profiles.OnChange(func(uid string) {
		v.mu.Lock()
		mine := uid == v.uid && v.childID != ""
		v.mu.Unlock()
		if mine {
			v.changed()
		}
	})
	return v
}

// Select switches the view to childID for uid. Subscriptions for the
// previous child are torn down before the new ones start.
func (v *View) Select(uid, childID string) error {
	if uid == "" {
		return models.ErrNotAuthenticated
	}
	if childID == "" {
		return ErrNoChild
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return docstore.ErrClosed
	}
	v.resetLocked()
	v.uid, v.childID = uid, childID
	gen := v.gen

	err := v.subscribeLocked(gen, uid, childID)
	if err != nil {
		v.resetLocked()
	}
	v.mu.Unlock()

	v.changed()
	if err != nil {
		return fmt.Errorf("watch child %s: %w", childID, err)
	}
	v.log.Debug("dashboard selected", "child", childID)
	return nil
}

func (v *View) subscribeLocked(gen uint64, uid, childID string) error {
	goals, err := v.repos.Goals.Subscribe(uid, childID, func(items []*models.Goal, err error) {
		v.apply(gen, loadedGoals, err, func() { v.goals = items })
	})
	if err != nil {
		return err
	}
	v.subs = append(v.subs, goals)

	favorites, err := v.repos.Favorites.Subscribe(uid, childID, func(items []*models.Favorite, err error) {
		v.apply(gen, loadedFavorites, err, func() { v.favorites = items })
	})
	if err != nil {
		return err
	}
	v.subs = append(v.subs, favorites)

	notes, err := v.repos.Notes.Subscribe(uid, childID, func(items []*models.Note, err error) {
		v.apply(gen, loadedNotes, err, func() { v.notes = items })
	})
	if err != nil {
		return err
	}
	v.subs = append(v.subs, notes)
	return nil
}

// apply stores a snapshot unless it belongs to an earlier selection.
func (v *View) apply(gen uint64, part int, err error, set func()) {
	v.mu.Lock()
	if gen != v.gen || v.closed {
		v.mu.Unlock()
		return
	}
	if err != nil {
		v.err = err
		v.mu.Unlock()
		v.log.Warn("dashboard snapshot failed", "err", err)
		v.changed()
		return
	}
	set()
	v.loaded |= part
	v.mu.Unlock()
	v.changed()
}

// resetLocked unsubscribes everything and clears per-child state.
func (v *View) resetLocked() {
	for _, sub := range v.subs {
		sub.Unsubscribe()
	}
	v.subs = nil
	v.gen++
	v.uid, v.childID = "", ""
	v.goals, v.favorites, v.notes = nil, nil, nil
	v.loaded = 0
	v.err = nil
}

// HandleAuthChange drops the selection when the signed-in identity changes.
// Pass it to Gateway.OnAuthStateChanged.
func (v *View) HandleAuthChange(uid string) {
	v.mu.Lock()
	if v.uid == "" || v.uid == uid {
		v.mu.Unlock()
		return
	}
	v.resetLocked()
	v.mu.Unlock()
	v.log.Debug("dashboard cleared on auth change")
	v.changed()
}

// State computes the dashboard for the current selection. A child missing
// from the profile cache is reported as NotFound.
func (v *View) State() State {
	v.mu.Lock()
	s := State{
		UID:       v.uid,
		ChildID:   v.childID,
		Goals:     v.goals,
		Favorites: v.favorites,
		Notes:     v.notes,
		Loaded:    v.loaded == loadedAll,
		Err:       v.err,
	}
	v.mu.Unlock()

	if s.UID == "" || s.ChildID == "" {
		return s
	}
	profile, ok := v.repos.Profiles.Find(s.UID, s.ChildID)
	if !ok {
		return State{UID: s.UID, ChildID: s.ChildID, NotFound: true}
	}
	s.Profile = profile
	s.Progress = ComputeProgress(s.Goals)
	s.Suggestions = SuggestedModules(v.catalog, profile.LearningStyle)
	if a, ok := DailyActivity(v.catalog, profile.LearningStyle, v.now()); ok {
		s.Daily = &a
	}
	return s
}

// OnChange registers fn to run after every state change.
func (v *View) OnChange(fn func()) (remove func()) {
	v.listenerMu.Lock()
	id := v.nextID
	v.nextID++
	v.listeners[id] = fn
	v.listenerMu.Unlock()

	return func() {
		v.listenerMu.Lock()
		delete(v.listeners, id)
		v.listenerMu.Unlock()
	}
}

func (v *View) changed() {
	v.listenerMu.Lock()
	fns := make([]func(), 0, len(v.listeners))
	for _, fn := range v.listeners {
		fns = append(fns, fn)
	}
	v.listenerMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.resetLocked()
	v.closed = true
	v.mu.Unlock()
	v.stopProfiles()
}

func (v *View) selection() (uid, childID string, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.uid == "" {
		return "", "", models.ErrNotAuthenticated
	}
	return v.uid, v.childID, nil
}

// report turns a handler result into a notification. Validation failures
// are left for the form to show inline.
func (v *View) report(err error, ok, failed string) error {
	switch {
	case err == nil:
		v.notifier.Success(ok)
	case models.IsValidation(err):
	default:
		v.log.Warn(failed, "err", err)
		v.notifier.Error(failed)
	}
	return err
}

func (v *View) AddGoal(ctx context.Context, in models.GoalInput) error {
	uid, childID, err := v.selection()
	if err == nil {
		_, err = v.repos.Goals.Add(ctx, uid, childID, in)
	}
	return v.report(err, "Goal added!", "Failed to add goal.")
}

// ToggleGoal flips the done flag as last delivered by the subscription.
func (v *View) ToggleGoal(ctx context.Context, goalID string) error {
	uid, childID, err := v.selection()
	if err == nil {
		var done bool
		done, err = v.goalDone(goalID)
		if err == nil {
			err = v.repos.Goals.SetDone(ctx, uid, childID, goalID, !done)
		}
	}
	return v.report(err, "Goal updated!", "Failed to update goal.")
}

func (v *View) goalDone(goalID string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, g := range v.goals {
		if g.ID == goalID {
			return g.Done, nil
		}
	}
	return false, fmt.Errorf("goal %s: %w", goalID, models.ErrNotFound)
}

func (v *View) DeleteGoal(ctx context.Context, goalID string) error {
	uid, childID, err := v.selection()
	if err == nil {
		err = v.repos.Goals.Remove(ctx, uid, childID, goalID)
	}
	return v.report(err, "Goal deleted!", "Failed to delete goal.")
}

func (v *View) AddFavorite(ctx context.Context, in models.FavoriteInput) error {
	uid, childID, err := v.selection()
	if err == nil {
		_, err = v.repos.Favorites.Add(ctx, uid, childID, in)
	}
	return v.report(err, "Activity saved to favorites!", "Failed to save favorite.")
}

// SaveActivity stores a catalog activity as a favorite.
func (v *View) SaveActivity(ctx context.Context, a catalog.Activity) error {
	return v.AddFavorite(ctx, models.FavoriteInput{Name: a.Name, Link: a.Link})
}

func (v *View) DeleteFavorite(ctx context.Context, favoriteID string) error {
	uid, childID, err := v.selection()
	if err == nil {
		err = v.repos.Favorites.Remove(ctx, uid, childID, favoriteID)
	}
	return v.report(err, "Favorite removed!", "Failed to remove favorite.")
}

func (v *View) AddNote(ctx context.Context, in models.NoteInput) error {
	uid, childID, err := v.selection()
	if err == nil {
		_, err = v.repos.Notes.Add(ctx, uid, childID, in)
	}
	return v.report(err, "Note added!", "Failed to add note.")
}

func (v *View) EditNote(ctx context.Context, noteID string, u models.NoteUpdate) error {
	uid, childID, err := v.selection()
	if err == nil {
		err = v.repos.Notes.Update(ctx, uid, childID, noteID, u)
	}
	return v.report(err, "Note updated!", "Failed to update note.")
}

func (v *View) DeleteNote(ctx context.Context, noteID string) error {
	uid, childID, err := v.selection()
	if err == nil {
		err = v.repos.Notes.Remove(ctx, uid, childID, noteID)
	}
	return v.report(err, "Note deleted!", "Failed to delete note.")
}
